// ABOUTME: Loads resource schema definitions from a TOML models file
// ABOUTME: The models file is read once at startup; the resulting table is immutable

package schema

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// modelsFile is the TOML shape of a models file:
//
//	[[resource]]
//	name = "Page"
//
//	  [[resource.field]]
//	  name = "title"
//	  type = "string"
//	  required = true
type modelsFile struct {
	Resources []resourceDef `toml:"resource"`
}

type resourceDef struct {
	Name   string     `toml:"name"`
	Fields []fieldDef `toml:"field"`
}

type fieldDef struct {
	Name     string `toml:"name"`
	Type     string `toml:"type"`
	Required bool   `toml:"required"`
}

var validFieldTypes = map[FieldType]bool{
	FieldString: true,
	FieldText:   true,
	FieldInt:    true,
	FieldFloat:  true,
	FieldBool:   true,
}

// LoadModels reads a TOML models file and builds the schema table.
func LoadModels(path string) ([]*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading models file: %w", err)
	}
	return ParseModels(data)
}

// ParseModels parses TOML models content into schemas.
func ParseModels(data []byte) ([]*Schema, error) {
	var file modelsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing models file: %w", err)
	}

	if len(file.Resources) == 0 {
		return nil, fmt.Errorf("models file defines no resources")
	}

	schemas := make([]*Schema, 0, len(file.Resources))
	for _, res := range file.Resources {
		if res.Name == "" {
			return nil, fmt.Errorf("resource with empty name")
		}
		if len(res.Fields) == 0 {
			return nil, fmt.Errorf("resource %q has no fields", res.Name)
		}

		fields := make([]Field, 0, len(res.Fields))
		seen := make(map[string]bool, len(res.Fields))
		for _, fd := range res.Fields {
			if fd.Name == "" {
				return nil, fmt.Errorf("resource %q has a field with empty name", res.Name)
			}
			if seen[fd.Name] {
				return nil, fmt.Errorf("resource %q declares field %q twice", res.Name, fd.Name)
			}
			seen[fd.Name] = true

			ft := FieldType(fd.Type)
			if !validFieldTypes[ft] {
				return nil, fmt.Errorf("resource %q field %q: unknown type %q", res.Name, fd.Name, fd.Type)
			}
			fields = append(fields, Field{Name: fd.Name, Type: ft, Required: fd.Required})
		}

		schemas = append(schemas, &Schema{Name: res.Name, Fields: fields})
	}

	return schemas, nil
}
