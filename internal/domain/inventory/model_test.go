package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTypeFor(t *testing.T) {
	assert.Equal(t, MoveIn, TypeFor(decimal.NewFromInt(5)))
	assert.Equal(t, MoveOut, TypeFor(decimal.RequireFromString("-0.5")))
}
