// ABOUTME: QuerySpec pairs compiled criteria with pagination and sort parameters
// ABOUTME: Sort keys parse from "field", "-field", or a single-entry {field: direction} mapping

package query

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Spec is a compiled, executable query: criteria plus pagination and sort.
// Skip and Limit are independent; a nil Limit means unbounded within store
// defaults. Criteria may be nil, meaning every object matches.
type Spec struct {
	Criteria   Expr
	Skip       int
	Limit      *int
	SortField  string
	Descending bool
}

// ParseSort parses a wire sort specification. Accepted forms:
//
//	"title"          ascending
//	"-title"         descending
//	{"title": 1}     ascending (any non-negative direction)
//	{"title": -1}    descending
//
// Exactly one sort key is supported; a multi-entry mapping is a client error.
func ParseSort(raw json.RawMessage) (field string, descending bool, err error) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		if after, ok := strings.CutPrefix(name, "-"); ok {
			name = after
			descending = true
		}
		if name == "" {
			return "", false, fmt.Errorf("sort field is empty")
		}
		return name, descending, nil
	}

	var mapping map[string]float64
	if err := json.Unmarshal(raw, &mapping); err != nil {
		return "", false, fmt.Errorf("sort must be a string or a single-entry mapping")
	}
	if len(mapping) != 1 {
		return "", false, fmt.Errorf("sort mapping must have exactly one entry, got %d", len(mapping))
	}
	for name, direction := range mapping {
		if name == "" {
			return "", false, fmt.Errorf("sort field is empty")
		}
		return name, direction < 0, nil
	}
	return "", false, fmt.Errorf("sort mapping must have exactly one entry")
}
