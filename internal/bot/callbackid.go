package bot

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/Spok95/material-desk/internal/domain/materials"
)

// Telegram принимает callback_data не длиннее 64 байт. Самый длинный префикс
// "mat:stock:" занимает 10, поэтому id длиннее maxCallbackID подменяется ключом.
const (
	maxCallbackID = 48
	keyPrefix     = "~"
)

// callbackIDs ключи для длинных id хранилища. Ключ детерминирован (хеш id),
// поэтому кнопки одного и того же материала совпадают во всех чатах.
type callbackIDs struct {
	mu   sync.Mutex
	byKey map[string]string
}

func newCallbackIDs() *callbackIDs {
	return &callbackIDs{byKey: map[string]string{}}
}

func snapshotIDs(items []materials.Material) []string {
	out := make([]string, len(items))
	for i, m := range items {
		out[i] = m.ID
	}
	return out
}

func callbackKey(id string) string {
	sum := sha256.Sum256([]byte(id))
	return keyPrefix + hex.EncodeToString(sum[:8])
}

// encode id как есть, если он влезает в callback_data, иначе ключ.
func (c *callbackIDs) encode(id string) string {
	if len(id) <= maxCallbackID && !strings.HasPrefix(id, keyPrefix) {
		return id
	}
	key := callbackKey(id)
	c.mu.Lock()
	c.byKey[key] = id
	c.mu.Unlock()
	return key
}

// decode обратное преобразование. Ключ, выданный до перезапуска, ищется
// среди записей текущего списка; ok=false, если id не найден.
func (c *callbackIDs) decode(arg string, known []string) (string, bool) {
	if !strings.HasPrefix(arg, keyPrefix) {
		return arg, true
	}
	c.mu.Lock()
	id, ok := c.byKey[arg]
	c.mu.Unlock()
	if ok {
		return id, true
	}
	for _, id := range known {
		if callbackKey(id) == arg {
			c.encode(id)
			return id, true
		}
	}
	return "", false
}
