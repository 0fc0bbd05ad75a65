package materials

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Unit string

const (
	UnitPacks  Unit = "packs"
	UnitCubes  Unit = "cubes"
	UnitPieces Unit = "pieces"
	UnitRolls  Unit = "rolls"
	UnitTons   Unit = "tons"
)

var (
	ErrInvalidDate     = errors.New("invalid received date")
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// Material каноническая запись склада. ID выдаёт удалённое хранилище.
type Material struct {
	ID           string
	Name         string
	Unit         Unit
	Quantity     decimal.Decimal
	Supplier     string
	ReceivedDate time.Time
	Description  string
}

// Draft данные формы добавления/редактирования (всё, кроме ID).
type Draft struct {
	Name         string
	Unit         Unit
	Quantity     decimal.Decimal
	Supplier     string
	ReceivedDate time.Time
	Description  string
}

// StockChange корректировка остатка, Delta > 0 приход, < 0 списание.
type StockChange struct {
	Delta decimal.Decimal
	Note  string
}

// DisplayName имя для списка и сортировки.
func (m Material) DisplayName() string {
	return strings.TrimSpace(m.Name)
}

// Draft возвращает копию полей записи для формы редактирования.
func (m Material) Draft() Draft {
	return Draft{
		Name:         m.Name,
		Unit:         m.Unit,
		Quantity:     m.Quantity,
		Supplier:     m.Supplier,
		ReceivedDate: m.ReceivedDate,
		Description:  m.Description,
	}
}

// Validate проверяет обязательные поля. Соответствие name/unit не проверяется:
// после создания единицу можно поменять на любую.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(d.Supplier) == "" {
		return fmt.Errorf("supplier is required")
	}
	if strings.TrimSpace(string(d.Unit)) == "" {
		return fmt.Errorf("unit is required")
	}
	if d.Quantity.IsNegative() {
		return fmt.Errorf("%w: must be >= 0", ErrInvalidQuantity)
	}
	if d.ReceivedDate.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

var knownNames = []string{
	"Cement",
	"Sand",
	"Concrete Stones",
	"Concrete Wire",
	"Gravel",
	"Bricks",
	"Steel Rebar",
}

var unitByName = map[string]Unit{
	"cement":          UnitPacks,
	"sand":            UnitCubes,
	"concrete stones": UnitCubes,
	"concrete wire":   UnitRolls,
	"gravel":          UnitCubes,
	"bricks":          UnitPieces,
	"steel rebar":     UnitTons,
}

// KnownNames фиксированный список материалов для формы добавления.
func KnownNames() []string {
	out := make([]string, len(knownNames))
	copy(out, knownNames)
	return out
}

// UnitFor подсказывает единицу по названию; для неизвестных pieces.
func UnitFor(name string) Unit {
	if u, ok := unitByName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return u
	}
	return UnitPieces
}

// Category slug названия: "Concrete Wire" -> "concrete_wire".
func Category(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// ParseDate приводит дату к полуночи UTC (точность до дня).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// Day отбрасывает время суток.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseQuantity принимает "12", "12.5" и "12,5"; отрицательные значения отклоняет.
func ParseQuantity(s string) (decimal.Decimal, error) {
	q, err := parseDecimal(s)
	if err != nil {
		return decimal.Zero, err
	}
	if q.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: must be >= 0", ErrInvalidQuantity)
	}
	return q, nil
}

// ParseDelta как ParseQuantity, но со знаком и без нуля.
func ParseDelta(s string) (decimal.Decimal, error) {
	q, err := parseDecimal(s)
	if err != nil {
		return decimal.Zero, err
	}
	if q.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: delta must not be zero", ErrInvalidQuantity)
	}
	return q, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return decimal.Zero, ErrInvalidQuantity
	}
	q, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidQuantity, s)
	}
	return q, nil
}
