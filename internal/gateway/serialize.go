// ABOUTME: Flattens store objects into wire-safe JSON field maps
// ABOUTME: Omits internal underscore-prefixed fields and unrepresentable values

package gateway

import (
	"encoding/json"
	"strings"

	"github.com/2389/vault-gateway/internal/store"
)

// Serialize flattens an object's fields into a JSON-safe map. Fields whose
// names start with "_" are store bookkeeping and are omitted, as is any
// value that cannot be represented in JSON. The object's id is not injected
// into the map: the fields that went in are exactly the fields that come
// out.
func Serialize(obj *store.Object) map[string]any {
	out := make(map[string]any, len(obj.Fields))
	for name, value := range obj.Fields {
		if strings.HasPrefix(name, "_") {
			continue
		}
		if _, err := json.Marshal(value); err != nil {
			continue
		}
		out[name] = value
	}
	return out
}
