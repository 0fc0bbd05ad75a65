package dialog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadHelpers_AfterJSONRoundTrip(t *testing.T) {
	raw, err := json.Marshal(Payload{"mat_id": "m1", "page": 3})
	require.NoError(t, err)

	var p Payload
	require.NoError(t, json.Unmarshal(raw, &p))

	id, ok := GetString(p, "mat_id")
	assert.True(t, ok)
	assert.Equal(t, "m1", id)

	page, ok := GetInt(p, "page")
	assert.True(t, ok)
	assert.Equal(t, 3, page)

	_, ok = GetInt(p, "mat_id")
	assert.False(t, ok)
	_, ok = GetString(p, "missing")
	assert.False(t, ok)
}

func TestPayloadClone(t *testing.T) {
	p := Payload{"a": "1"}
	c := p.Clone()
	c["a"] = "2"
	c["b"] = "3"
	assert.Equal(t, "1", p["a"])
	_, ok := p["b"]
	assert.False(t, ok)
}
