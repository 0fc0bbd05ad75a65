package materials

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func day(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func names(items []Material) []string {
	out := make([]string, 0, len(items))
	for _, m := range items {
		out = append(out, m.Name)
	}
	return out
}

func ids(items []Material) []string {
	out := make([]string, 0, len(items))
	for _, m := range items {
		out = append(out, m.ID)
	}
	return out
}

func TestSort_ByName(t *testing.T) {
	in := []Material{{ID: "1", Name: "Sand"}, {ID: "2", Name: "Cement"}, {ID: "3", Name: "Concrete Wire"}}
	got := Sort(in, SortName)
	assert.Equal(t, []string{"Cement", "Concrete Wire", "Sand"}, names(got))
	// исходный слайс не меняется
	assert.Equal(t, []string{"Sand", "Cement", "Concrete Wire"}, names(in))
}

func TestSort_NameIsCaseInsensitive(t *testing.T) {
	in := []Material{{ID: "1", Name: "sand"}, {ID: "2", Name: "Bricks"}, {ID: "3", Name: "cement"}}
	assert.Equal(t, []string{"2", "3", "1"}, ids(Sort(in, SortName)))
}

func TestSort_StableForEqualKeys(t *testing.T) {
	d1 := day("2024-01-01")
	d2 := day("2024-02-01")
	in := []Material{
		{ID: "a", Name: "Sand", ReceivedDate: d1},
		{ID: "b", Name: "sand", ReceivedDate: d2},
		{ID: "c", Name: "Sand", ReceivedDate: d1},
		{ID: "d", Name: "SAND", ReceivedDate: d2},
	}

	tests := []struct {
		name string
		mode SortMode
		want []string
	}{
		{"newest", SortNewest, []string{"b", "d", "a", "c"}},
		{"oldest", SortOldest, []string{"a", "c", "b", "d"}},
		{"name", SortName, []string{"a", "b", "c", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Sort(in, tt.mode)))
		})
	}
}

func TestFilter_MatchesAnyField(t *testing.T) {
	in := []Material{
		{ID: "1", Name: "Cement", Supplier: "Holcim"},
		{ID: "2", Name: "Sand", Supplier: "River Co", Description: "washed CEMENT grade"},
		{ID: "3", Name: "Bricks", Supplier: "cementworks"},
		{ID: "4", Name: "Gravel", Supplier: "Quarry"},
	}
	got := Filter(in, "  Cement ")
	assert.Equal(t, []string{"1", "2", "3"}, ids(got))

	assert.Len(t, Filter(in, ""), 4)
	assert.Empty(t, Filter(in, "steel"))
}

func TestFilter_PageOnlyContainsMatches(t *testing.T) {
	var in []Material
	for i := 0; i < 20; i++ {
		name := "Sand"
		if i%3 == 0 {
			name = "Cement"
		}
		in = append(in, Material{ID: string(rune('a' + i)), Name: name, Supplier: "S"})
	}
	for _, m := range Page(Filter(in, "cem"), 1, PageSize) {
		assert.Equal(t, "Cement", m.Name)
	}
}

func TestPage_Boundaries(t *testing.T) {
	in := make([]Material, 8)
	for i := range in {
		in[i] = Material{ID: string(rune('a' + i))}
	}
	assert.Len(t, Page(in, 1, PageSize), 8)
	assert.Empty(t, Page(in, 2, PageSize))
	assert.Empty(t, Page(in, 0, PageSize))
	assert.Empty(t, Page(in, -1, PageSize))
	assert.Empty(t, Page(in, math.MaxInt/8+2, 8))
	assert.Empty(t, Page(in, math.MaxInt, 1))
	assert.Empty(t, Page(nil, 1, PageSize))
	assert.Equal(t, 1, PageCount(len(in), PageSize))

	in = append(in, Material{ID: "z"})
	assert.Equal(t, []string{"z"}, ids(Page(in, 2, PageSize)))
	assert.Equal(t, 2, PageCount(len(in), PageSize))
	assert.Equal(t, 0, PageCount(0, PageSize))
}

func TestParseSortMode(t *testing.T) {
	m, err := ParseSortMode("")
	require.NoError(t, err)
	assert.Equal(t, SortNewest, m)

	m, err = ParseSortMode("Name")
	require.NoError(t, err)
	assert.Equal(t, SortName, m)

	_, err = ParseSortMode("price")
	assert.Error(t, err)

	assert.Equal(t, SortOldest, SortNewest.Next())
	assert.Equal(t, SortName, SortOldest.Next())
	assert.Equal(t, SortNewest, SortName.Next())
}

func TestExportXLSX_KeepsOrder(t *testing.T) {
	items := []Material{
		{ID: "1", Name: "Sand", Unit: UnitCubes, Quantity: decimal.NewFromInt(3), Supplier: "X", ReceivedDate: day("2024-01-02")},
		{ID: "2", Name: "Cement", Unit: UnitPacks, Quantity: decimal.RequireFromString("10.5"), Supplier: "Y", ReceivedDate: day("2024-01-01")},
	}
	data, err := ExportXLSX(items)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, "Sand", rows[1][1])
	assert.Equal(t, "2024-01-02", rows[1][5])
	assert.Equal(t, "Cement", rows[2][1])
	assert.Equal(t, "10.5", rows[2][3])
}
