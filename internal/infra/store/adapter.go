package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Spok95/material-desk/internal/domain/materials"
	"github.com/shopspring/decimal"
)

// Сервер отдаёт записи в двух схемах: текущей (name/quantity/unit/receivedDate)
// и старой (material/amount/amountType/recDate). Читаем обе, новая важнее.
var (
	idKeys       = []string{"id", "_id"}
	nameKeys     = []string{"name", "material"}
	quantityKeys = []string{"quantity", "amount"}
	unitKeys     = []string{"unit", "amountType"}
	dateKeys     = []string{"receivedDate", "recDate"}
	supplierKeys = []string{"supplier"}
	descKeys     = []string{"description"}
)

type rawRecord map[string]json.RawMessage

func (r rawRecord) pick(keys []string) (json.RawMessage, bool) {
	for _, k := range keys {
		v, ok := r[k]
		if !ok {
			continue
		}
		if t := bytes.TrimSpace(v); len(t) == 0 || bytes.Equal(t, []byte("null")) {
			continue
		}
		if s, ok := asString(v); ok && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

func asString(v json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}

// scalar строка или число в виде текста.
func scalar(v json.RawMessage) (string, error) {
	if s, ok := asString(v); ok {
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil {
		return "", fmt.Errorf("expected string or number, got %s", string(v))
	}
	return n.String(), nil
}

func (r rawRecord) text(keys []string) (string, error) {
	v, ok := r.pick(keys)
	if !ok {
		return "", nil
	}
	return scalar(v)
}

// decodeRecord нормализует запись хранилища в materials.Material.
func decodeRecord(raw json.RawMessage) (materials.Material, error) {
	var r rawRecord
	if err := json.Unmarshal(raw, &r); err != nil {
		return materials.Material{}, fmt.Errorf("decode record: %w", err)
	}
	if r == nil {
		return materials.Material{}, fmt.Errorf("decode record: empty object")
	}

	var m materials.Material
	var err error
	if m.ID, err = r.text(idKeys); err != nil {
		return m, fmt.Errorf("decode id: %w", err)
	}
	if m.ID == "" {
		return m, fmt.Errorf("decode record: missing id")
	}
	if m.Name, err = r.text(nameKeys); err != nil {
		return m, fmt.Errorf("decode name: %w", err)
	}
	unit, err := r.text(unitKeys)
	if err != nil {
		return m, fmt.Errorf("decode unit: %w", err)
	}
	m.Unit = materials.Unit(unit)
	if m.Supplier, err = r.text(supplierKeys); err != nil {
		return m, fmt.Errorf("decode supplier: %w", err)
	}
	if m.Description, err = r.text(descKeys); err != nil {
		return m, fmt.Errorf("decode description: %w", err)
	}

	qty, err := r.text(quantityKeys)
	if err != nil {
		return m, fmt.Errorf("decode quantity: %w", err)
	}
	if qty != "" {
		if m.Quantity, err = decimal.NewFromString(qty); err != nil {
			return m, fmt.Errorf("decode quantity %q: %w", qty, err)
		}
	}

	date, err := r.text(dateKeys)
	if err != nil {
		return m, fmt.Errorf("decode received date: %w", err)
	}
	if date != "" {
		// дату, которую не удалось разобрать, оставляем пустой: запись всё равно показываем
		if d, perr := materials.ParseDate(date); perr == nil {
			m.ReceivedDate = d
		} else if ms, ierr := strconv.ParseInt(date, 10, 64); ierr == nil {
			m.ReceivedDate = materials.Day(time.UnixMilli(ms))
		}
	}
	return m, nil
}

// decodeCollection принимает массив или {"materials": [...]}.
func decodeCollection(body []byte) ([]materials.Material, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("empty body")
	}

	var items []json.RawMessage
	switch body[0] {
	case '[':
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("decode array: %w", err)
		}
	case '{':
		var wrapped struct {
			Materials *[]json.RawMessage `json:"materials"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, fmt.Errorf("decode object: %w", err)
		}
		if wrapped.Materials == nil {
			return nil, fmt.Errorf("response has no materials field")
		}
		items = *wrapped.Materials
	default:
		return nil, fmt.Errorf("unexpected payload")
	}

	out := make([]materials.Material, 0, len(items))
	for i, it := range items {
		m, err := decodeRecord(it)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// decodeSingle принимает запись как есть или обёрнутую в {"material": {...}}.
func decodeSingle(body []byte) (materials.Material, error) {
	var wrapped struct {
		Material json.RawMessage `json:"material"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && len(wrapped.Material) > 0 && wrapped.Material[0] == '{' {
		return decodeRecord(wrapped.Material)
	}
	return decodeRecord(body)
}

type createBody struct {
	Name         string      `json:"name"`
	Category     string      `json:"category"`
	Unit         string      `json:"unit"`
	Quantity     json.Number `json:"quantity"`
	Supplier     string      `json:"supplier"`
	ReceivedDate string      `json:"receivedDate"`
	Description  string      `json:"description"`
}

type updateBody struct {
	Name         string      `json:"name"`
	Supplier     string      `json:"supplier"`
	Quantity     json.Number `json:"quantity"`
	Unit         string      `json:"unit"`
	ReceivedDate string      `json:"receivedDate"`
	Description  string      `json:"description"`
}

type stockBody struct {
	Delta json.Number `json:"delta"`
	Note  string      `json:"note,omitempty"`
}

func encodeCreate(d materials.Draft) createBody {
	return createBody{
		Name:         strings.TrimSpace(d.Name),
		Category:     materials.Category(d.Name),
		Unit:         strings.TrimSpace(string(d.Unit)),
		Quantity:     json.Number(d.Quantity.String()),
		Supplier:     strings.TrimSpace(d.Supplier),
		ReceivedDate: d.ReceivedDate.Format("2006-01-02"),
		Description:  strings.TrimSpace(d.Description),
	}
}

func encodeUpdate(d materials.Draft) updateBody {
	return updateBody{
		Name:         strings.TrimSpace(d.Name),
		Supplier:     strings.TrimSpace(d.Supplier),
		Quantity:     json.Number(d.Quantity.String()),
		Unit:         strings.TrimSpace(string(d.Unit)),
		ReceivedDate: d.ReceivedDate.Format("2006-01-02"),
		Description:  strings.TrimSpace(d.Description),
	}
}

func encodeStock(c materials.StockChange) stockBody {
	return stockBody{Delta: json.Number(c.Delta.String()), Note: strings.TrimSpace(c.Note)}
}
