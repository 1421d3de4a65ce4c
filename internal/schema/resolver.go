// ABOUTME: Resolver maps wire-level resource names to registered schemas
// ABOUTME: Pure lookup against an immutable table; unknown names fail closed

package schema

import "errors"

// ErrUnknownResource is returned when no schema is registered under a name.
// It is a client-visible "not found", not a server fault.
var ErrUnknownResource = errors.New("unknown resource")

// Resolver resolves resource names against a table populated at startup.
// The table is immutable afterwards, so lookups need no synchronization.
type Resolver struct {
	schemas map[string]*Schema
}

// NewResolver builds a resolver from the given schemas.
// A duplicate resource name is a configuration error.
func NewResolver(schemas []*Schema) (*Resolver, error) {
	table := make(map[string]*Schema, len(schemas))
	for _, s := range schemas {
		if _, exists := table[s.Name]; exists {
			return nil, errors.New("duplicate resource name: " + s.Name)
		}
		table[s.Name] = s
	}
	return &Resolver{schemas: table}, nil
}

// Resolve returns the schema registered under name, or ErrUnknownResource.
func (r *Resolver) Resolve(name string) (*Schema, error) {
	s, ok := r.schemas[name]
	if !ok {
		return nil, ErrUnknownResource
	}
	return s, nil
}

// Names returns the registered resource names, for logging at startup.
func (r *Resolver) Names() []string {
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	return names
}
