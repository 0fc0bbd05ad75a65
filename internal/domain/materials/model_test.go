package materials

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitFor(t *testing.T) {
	assert.Equal(t, UnitPacks, UnitFor("Cement"))
	assert.Equal(t, UnitCubes, UnitFor(" sand "))
	assert.Equal(t, UnitRolls, UnitFor("Concrete Wire"))
	assert.Equal(t, UnitPieces, UnitFor("Something else"))
}

func TestCategory(t *testing.T) {
	assert.Equal(t, "concrete_wire", Category("Concrete Wire"))
	assert.Equal(t, "concrete_stones", Category("  Concrete   Stones "))
	assert.Equal(t, "cement", Category("Cement"))
}

func TestKnownNames_ReturnsCopy(t *testing.T) {
	a := KnownNames()
	a[0] = "changed"
	assert.Equal(t, "Cement", KnownNames()[0])
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2024-01-01", "01.01.2024", "2024-01-01T15:30:00Z", "2024-01-01T15:30:00"} {
		got, err := ParseDate(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), s)
	}

	_, err := ParseDate("2024-13-01")
	assert.True(t, errors.Is(err, ErrInvalidDate))
	_, err = ParseDate("")
	assert.True(t, errors.Is(err, ErrInvalidDate))
}

func TestParseQuantity(t *testing.T) {
	q, err := ParseQuantity("12,5")
	require.NoError(t, err)
	assert.True(t, q.Equal(decimal.RequireFromString("12.5")))

	q, err = ParseQuantity("0")
	require.NoError(t, err)
	assert.True(t, q.IsZero())

	_, err = ParseQuantity("-1")
	assert.True(t, errors.Is(err, ErrInvalidQuantity))
	_, err = ParseQuantity("abc")
	assert.True(t, errors.Is(err, ErrInvalidQuantity))
}

func TestParseDelta(t *testing.T) {
	q, err := ParseDelta("-3")
	require.NoError(t, err)
	assert.True(t, q.Equal(decimal.NewFromInt(-3)))

	_, err = ParseDelta("0")
	assert.True(t, errors.Is(err, ErrInvalidQuantity))
}

func TestDraftValidate(t *testing.T) {
	valid := Draft{
		Name:         "Cement",
		Unit:         UnitPacks,
		Quantity:     decimal.NewFromInt(10),
		Supplier:     "X",
		ReceivedDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, valid.Validate())

	// несовпадение name/unit допускается
	mismatched := valid
	mismatched.Unit = UnitTons
	assert.NoError(t, mismatched.Validate())

	tests := []struct {
		name   string
		mutate func(d *Draft)
	}{
		{"empty name", func(d *Draft) { d.Name = " " }},
		{"empty supplier", func(d *Draft) { d.Supplier = "" }},
		{"empty unit", func(d *Draft) { d.Unit = "" }},
		{"negative quantity", func(d *Draft) { d.Quantity = decimal.NewFromInt(-1) }},
		{"no date", func(d *Draft) { d.ReceivedDate = time.Time{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			assert.Error(t, d.Validate())
		})
	}
}
