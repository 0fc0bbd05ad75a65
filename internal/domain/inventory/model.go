package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

type MoveType string

const (
	MoveIn  MoveType = "in"
	MoveOut MoveType = "out"
)

// Movement запись журнала корректировок остатка, сделанных через бота.
// Сам остаток хранится в удалённом складе, здесь только история.
type Movement struct {
	ID           int64
	CreatedAt    time.Time
	ActorID      int64
	MaterialID   string
	MaterialName string
	Qty          decimal.Decimal // со знаком: приход > 0, списание < 0
	Type         MoveType
	Note         string
}

// TypeFor направление по знаку корректировки.
func TypeFor(delta decimal.Decimal) MoveType {
	if delta.IsNegative() {
		return MoveOut
	}
	return MoveIn
}
