// ABOUTME: Tests for sort-key parsing
// ABOUTME: Covers bare fields, negation-prefixed fields, mappings, and multi-entry rejection

package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSort(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		field      string
		descending bool
	}{
		{"bare field", `"title"`, "title", false},
		{"negated field", `"-title"`, "title", true},
		{"mapping ascending", `{"num": 1}`, "num", false},
		{"mapping zero is ascending", `{"num": 0}`, "num", false},
		{"mapping descending", `{"num": -1}`, "num", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, descending, err := ParseSort(json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.field, field)
			assert.Equal(t, tt.descending, descending)
		})
	}
}

func TestParseSort_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty string", `""`},
		{"bare negation", `"-"`},
		{"multi-entry mapping", `{"a": 1, "b": -1}`},
		{"empty mapping", `{}`},
		{"wrong type", `42`},
		{"list", `["title"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseSort(json.RawMessage(tt.raw))
			assert.Error(t, err)
		})
	}
}
