package bot

import (
	"strings"
	"testing"

	"github.com/Spok95/material-desk/internal/dialog"
	"github.com/Spok95/material-desk/internal/domain/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallbackIDs_EncodeDecode(t *testing.T) {
	c := newCallbackIDs()
	assert.Equal(t, "m1", c.encode("m1"))

	long := strings.Repeat("x", 100)
	key := c.encode(long)
	assert.True(t, strings.HasPrefix(key, keyPrefix))
	assert.LessOrEqual(t, len("mat:stock:"+key), 64)

	id, ok := c.decode(key, nil)
	require.True(t, ok)
	assert.Equal(t, long, id)

	// id, похожий на ключ, тоже кодируется
	assert.NotEqual(t, "~abc", c.encode("~abc"))

	// после перезапуска ключ находится по текущему списку
	fresh := newCallbackIDs()
	id, ok = fresh.decode(key, []string{"m1", long})
	require.True(t, ok)
	assert.Equal(t, long, id)

	_, ok = fresh.decode(callbackKey("gone"), []string{"m1"})
	assert.False(t, ok)
}

func TestLongStoreID_ButtonsFitAndResolve(t *testing.T) {
	m := sand()
	m.ID = "material/" + strings.Repeat("0123456789", 8)
	h := newHarness(users.RoleEditor, m)

	h.say(btnMaterials)
	cbs := h.api.callbacks()
	require.NotEmpty(t, cbs)
	var item string
	for _, d := range cbs {
		assert.LessOrEqual(t, len(d), 64, d)
		if strings.HasPrefix(d, "mat:item:") {
			item = d
		}
	}
	require.NotEmpty(t, item)

	h.press(item)
	require.Equal(t, dialog.StateMatItem, h.states.state(chat))
	assert.Contains(t, h.api.lastText(), "Sand")
	var del string
	for _, d := range h.api.callbacks() {
		assert.LessOrEqual(t, len(d), 64, d)
		if strings.HasPrefix(d, "mat:del:") {
			del = d
		}
	}
	require.NotEmpty(t, del)

	withPassword(t, h, "secret")
	h.press(del)
	h.say("secret")
	assert.Equal(t, []string{m.ID}, h.store.deleted)
}
