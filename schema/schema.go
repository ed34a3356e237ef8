// Package schema describes the four canonical record schemas and validates
// assembled records against them.
//
// Schemas are declared in YAML and embedded; a deployment can load its own
// definitions over them. Validation is the last step of the pipeline and
// reports every failing field at once.
package schema

import (
	"fmt"
	"strings"
)

// FieldType identifies the kind of value a field holds.
type FieldType string

const (
	FieldText   FieldType = "text"
	FieldInt    FieldType = "int"
	FieldNumber FieldType = "number"
	FieldDate   FieldType = "date"
	FieldList   FieldType = "list"
	FieldObject FieldType = "object"
)

// Field describes one field in a schema.
type Field struct {
	// Name is the field path; dots address sub-records ("vessel.name") and
	// apply to every element of a list ("cargoes.product")
	Name string `yaml:"name" json:"name"`

	// Type is the expected value type
	Type FieldType `yaml:"type" json:"type"`

	// Required indicates the field must have a value
	Required bool `yaml:"required,omitempty" json:"required,omitempty"`

	// Choices restricts text values to a closed vocabulary
	Choices []string `yaml:"choices,omitempty" json:"choices,omitempty"`

	// Validators names extra checks from the validator registry
	Validators []string `yaml:"validators,omitempty" json:"validators,omitempty"`

	// Min is the lower bound for "positive" and "year_range" checks
	Min float64 `yaml:"min,omitempty" json:"min,omitempty"`

	// Description provides documentation
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Checks returns the validator names applied to the field, derived from its
// type and settings plus any listed explicitly.
func (f Field) Checks() []string {
	var checks []string
	if f.Required {
		checks = append(checks, "required")
	}
	if f.Type == FieldDate {
		checks = append(checks, "iso8601")
	}
	if len(f.Choices) > 0 {
		checks = append(checks, "choice")
	}
	return append(checks, f.Validators...)
}

// Schema describes one canonical record kind.
type Schema struct {
	// Name is the record kind (e.g., "spot_charter")
	Name string `yaml:"name" json:"name"`

	// Description provides documentation
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Fields defines the schema
	Fields []Field `yaml:"fields" json:"fields"`

	// fieldIndex is built lazily for fast lookups
	fieldIndex map[string]*Field
}

// GetField returns a field by name.
func (s *Schema) GetField(name string) (*Field, bool) {
	s.buildIndex()
	f, ok := s.fieldIndex[name]
	return f, ok
}

// FieldNames returns all field names.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// RequiredFields returns all required field names.
func (s *Schema) RequiredFields() []string {
	var result []string
	for _, f := range s.Fields {
		if f.Required {
			result = append(result, f.Name)
		}
	}
	return result
}

func (s *Schema) buildIndex() {
	if s.fieldIndex != nil {
		return
	}
	s.fieldIndex = make(map[string]*Field, len(s.Fields))
	for i := range s.Fields {
		s.fieldIndex[s.Fields[i].Name] = &s.Fields[i]
	}
}

// check reports schema definitions that can never validate anything.
func (s *Schema) check(reg *ValidatorRegistry) error {
	if s.Name == "" {
		return fmt.Errorf("%w: schema without a name", ErrInvalidSchema)
	}
	for _, f := range s.Fields {
		switch f.Type {
		case FieldText, FieldInt, FieldNumber, FieldDate, FieldList, FieldObject:
		default:
			return fmt.Errorf("%w: %s.%s has unknown type %q", ErrInvalidSchema, s.Name, f.Name, f.Type)
		}
		for _, name := range f.Validators {
			if _, ok := reg.Get(name); !ok {
				return fmt.Errorf("%w: %s.%s uses unknown validator %q", ErrInvalidSchema, s.Name, f.Name, name)
			}
		}
	}
	return nil
}

// lookup collects the values at a dotted path. A list along the path fans
// out to its elements; missing values are skipped.
func lookup(fields map[string]any, path string) []any {
	parts := strings.Split(path, ".")
	current := []any{fields}
	for _, part := range parts {
		var next []any
		for _, v := range current {
			m, ok := v.(map[string]any)
			if !ok {
				continue
			}
			child, ok := m[part]
			if !ok || child == nil {
				continue
			}
			if list, ok := child.([]any); ok && part != parts[len(parts)-1] {
				next = append(next, list...)
				continue
			}
			next = append(next, child)
		}
		current = next
	}
	return current
}
