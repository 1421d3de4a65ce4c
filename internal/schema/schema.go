// ABOUTME: Resource schema definitions and wire-body coercion
// ABOUTME: A Schema describes one storable object kind; coercion builds store fields from JSON

package schema

import (
	"fmt"
	"math"
)

// FieldType enumerates the value types a schema field can carry.
type FieldType string

const (
	FieldString FieldType = "string"
	FieldText   FieldType = "text" // like string, but intended for substring search
	FieldInt    FieldType = "int"
	FieldFloat  FieldType = "float"
	FieldBool   FieldType = "bool"
)

// Field is one attribute of a resource schema.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
}

// Schema describes one object kind: its wire-level resource name and its
// attribute declarations. Schemas are immutable after server startup.
type Schema struct {
	Name   string
	Fields []Field
}

// ValidationError reports a wire body that does not fit the schema.
// The gateway maps it to a 400 response.
type ValidationError struct {
	Resource string
	Field    string
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Resource, e.Reason)
	}
	return fmt.Sprintf("%s.%s: %s", e.Resource, e.Field, e.Reason)
}

// Coerce builds a store object's fields from a decoded JSON body.
// JSON numbers arrive as float64; integer-typed fields accept only whole
// values. Unknown field names and missing required fields are errors; no
// partial result is ever returned.
func (s *Schema) Coerce(body map[string]any) (map[string]any, error) {
	declared := make(map[string]Field, len(s.Fields))
	for _, f := range s.Fields {
		declared[f.Name] = f
	}

	for name := range body {
		if _, ok := declared[name]; !ok {
			return nil, &ValidationError{Resource: s.Name, Field: name, Reason: "unknown field"}
		}
	}

	fields := make(map[string]any, len(body))
	for _, f := range s.Fields {
		raw, present := body[f.Name]
		if !present {
			if f.Required {
				return nil, &ValidationError{Resource: s.Name, Field: f.Name, Reason: "required field is missing"}
			}
			continue
		}

		value, err := coerceValue(f.Type, raw)
		if err != nil {
			return nil, &ValidationError{Resource: s.Name, Field: f.Name, Reason: err.Error()}
		}
		fields[f.Name] = value
	}

	return fields, nil
}

// coerceValue converts one decoded JSON value to the field's native type.
func coerceValue(t FieldType, raw any) (any, error) {
	switch t {
	case FieldString, FieldText:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", raw)
		}
		return s, nil
	case FieldInt:
		f, ok := raw.(float64)
		if !ok || f != math.Trunc(f) {
			return nil, fmt.Errorf("expected integer, got %v", raw)
		}
		return int64(f), nil
	case FieldFloat:
		f, ok := raw.(float64)
		if !ok {
			return nil, fmt.Errorf("expected number, got %T", raw)
		}
		return f, nil
	case FieldBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", raw)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported field type %q", t)
	}
}
