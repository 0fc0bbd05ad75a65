package materials

import (
	"fmt"
	"slices"
	"strings"
)

// PageSize размер страницы списка материалов.
const PageSize = 8

type SortMode string

const (
	SortNewest SortMode = "newest"
	SortOldest SortMode = "oldest"
	SortName   SortMode = "name"
)

// ParseSortMode пустая строка даёт newest.
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortNewest:
		return SortNewest, nil
	case SortOldest:
		return SortOldest, nil
	case SortName:
		return SortName, nil
	}
	return "", fmt.Errorf("unknown sort mode %q", s)
}

// Next переключатель для кнопки сортировки: newest -> oldest -> name -> newest.
func (s SortMode) Next() SortMode {
	switch s {
	case SortNewest:
		return SortOldest
	case SortOldest:
		return SortName
	default:
		return SortNewest
	}
}

// Sort возвращает новый слайс; порядок равных ключей сохраняется.
func Sort(in []Material, mode SortMode) []Material {
	out := slices.Clone(in)
	switch mode {
	case SortOldest:
		slices.SortStableFunc(out, func(a, b Material) int {
			return a.ReceivedDate.Compare(b.ReceivedDate)
		})
	case SortName:
		slices.SortStableFunc(out, func(a, b Material) int {
			return strings.Compare(strings.ToLower(a.DisplayName()), strings.ToLower(b.DisplayName()))
		})
	default:
		slices.SortStableFunc(out, func(a, b Material) int {
			return b.ReceivedDate.Compare(a.ReceivedDate)
		})
	}
	return out
}

// Filter ищет подстроку без учёта регистра в названии, поставщике или описании.
func Filter(in []Material, term string) []Material {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return slices.Clone(in)
	}
	out := make([]Material, 0, len(in))
	for _, m := range in {
		if strings.Contains(strings.ToLower(m.DisplayName()), term) ||
			strings.Contains(strings.ToLower(m.Supplier), term) ||
			strings.Contains(strings.ToLower(m.Description), term) {
			out = append(out, m)
		}
	}
	return out
}

// Page страницы нумеруются с 1. За пределами диапазона пустой слайс.
func Page(in []Material, n, size int) []Material {
	if n < 1 || size < 1 {
		return []Material{}
	}
	// сравнение до умножения, иначе огромный n переполняет start
	if len(in) == 0 || n-1 > (len(in)-1)/size {
		return []Material{}
	}
	start := (n - 1) * size
	end := min(start+size, len(in))
	return slices.Clone(in[start:end])
}

func PageCount(total, size int) int {
	if total <= 0 || size < 1 {
		return 0
	}
	return (total + size - 1) / size
}
