package schema

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/seaport-data/fixturewalk/value"
)

// FieldError represents a validation failure for one field.
type FieldError struct {
	Field   string
	Value   any
	Rule    string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s (rule: %s)", e.Field, e.Message, e.Rule)
}

// ValidationError collects the field errors of one record.
type ValidationError struct {
	Kind   string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i := range e.Fields {
		msgs[i] = e.Fields[i].Error()
	}
	return fmt.Sprintf("%s validation failed: %s", e.Kind, strings.Join(msgs, "; "))
}

// AsError returns nil for no field errors, otherwise a *ValidationError.
func AsError(kind string, errs []FieldError) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Kind: kind, Fields: errs}
}

// Validator checks a record's plain fields against the schema for its kind.
type Validator interface {
	Validate(kind string, fields map[string]any) []FieldError
}

// Validate checks fields against the schema registered for kind. Every
// failing field is reported; an unregistered kind is itself an error.
func (r *Registry) Validate(kind string, fields map[string]any) []FieldError {
	s, ok := r.Get(kind)
	if !ok {
		return []FieldError{{Field: "kind", Value: kind, Rule: "schema", Message: ErrUnknownSchema.Error()}}
	}

	r.mu.RLock()
	validators := r.validators
	r.mu.RUnlock()

	var errs []FieldError
	for _, f := range s.Fields {
		values := lookup(fields, f.Name)
		opts := &ValidatorOptions{FieldName: f.Name, Choices: f.Choices, Min: f.Min}

		if f.Required && len(values) == 0 {
			values = []any{nil}
		}
		for _, v := range values {
			if fe := typeCheck(f, v); fe != nil {
				errs = append(errs, *fe)
				continue
			}
			for _, name := range f.Checks() {
				if err := validators.Validate(name, v, opts); err != nil {
					errs = append(errs, asFieldError(err, f.Name, v, name))
				}
			}
		}
	}
	return errs
}

func asFieldError(err error, field string, v any, rule string) FieldError {
	if fe, ok := err.(*FieldError); ok {
		return *fe
	}
	return FieldError{Field: field, Value: v, Rule: rule, Message: err.Error()}
}

func typeCheck(f Field, v any) *FieldError {
	if v == nil {
		return nil
	}
	ok := true
	switch f.Type {
	case FieldText, FieldDate:
		_, ok = v.(string)
	case FieldInt:
		switch n := v.(type) {
		case int, int64:
		case float64:
			ok = n == float64(int64(n))
		default:
			ok = false
		}
	case FieldNumber:
		switch v.(type) {
		case int, int64, float64:
		default:
			ok = false
		}
	case FieldList:
		_, ok = v.([]any)
	case FieldObject:
		_, ok = v.(map[string]any)
	}
	if ok {
		return nil
	}
	return &FieldError{Field: f.Name, Value: v, Rule: "type", Message: fmt.Sprintf("expected %s, got %T", f.Type, v)}
}

// ValidatorFunc validates one value. It returns nil if valid, or a
// *FieldError if invalid.
type ValidatorFunc func(v any, opts *ValidatorOptions) error

// ValidatorOptions contains configuration for validators.
type ValidatorOptions struct {
	// FieldName is the name of the field being validated (for error messages)
	FieldName string

	// Choices is the closed vocabulary for the choice validator
	Choices []string

	// Min is the lower bound for numeric validators
	Min float64
}

// ValidatorRegistry manages registered validators.
type ValidatorRegistry struct {
	mu         sync.RWMutex
	validators map[string]ValidatorFunc
}

// NewValidatorRegistry creates a new validator registry with default validators.
func NewValidatorRegistry() *ValidatorRegistry {
	r := &ValidatorRegistry{
		validators: make(map[string]ValidatorFunc),
	}
	r.registerDefaults()
	return r
}

// Register adds a validator to the registry.
func (r *ValidatorRegistry) Register(name string, fn ValidatorFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators[name] = fn
}

// Get retrieves a validator by name.
func (r *ValidatorRegistry) Get(name string) (ValidatorFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.validators[name]
	return fn, ok
}

// Validate applies a named validator to a value.
func (r *ValidatorRegistry) Validate(name string, v any, opts *ValidatorOptions) error {
	fn, ok := r.Get(name)
	if !ok {
		return fmt.Errorf("validator not found: %s", name)
	}
	if opts == nil {
		opts = &ValidatorOptions{}
	}
	return fn(v, opts)
}

// Names returns all registered validator names, sorted.
func (r *ValidatorRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.validators))
	for name := range r.validators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// registerDefaults registers all built-in validators.
func (r *ValidatorRegistry) registerDefaults() {
	r.Register("required", validateRequired)
	r.Register("iso8601", validateISO8601)
	r.Register("choice", validateChoice)
	r.Register("imo", validateIMO)
	r.Register("positive", validatePositive)
	r.Register("year_range", validateYearRange)
}

// Default validator registry instance.
var defaultValidatorRegistry = NewValidatorRegistry()

// DefaultValidators returns the default validator registry.
func DefaultValidators() *ValidatorRegistry {
	return defaultValidatorRegistry
}

// validateRequired checks that a value is not empty.
func validateRequired(v any, opts *ValidatorOptions) error {
	empty := false
	switch val := v.(type) {
	case nil:
		empty = true
	case string:
		empty = strings.TrimSpace(val) == ""
	case []any:
		empty = len(val) == 0
	case map[string]any:
		empty = len(val) == 0
	}
	if empty {
		return &FieldError{
			Field:   opts.FieldName,
			Value:   v,
			Rule:    "required",
			Message: "value is required",
		}
	}
	return nil
}

// validateISO8601 accepts the date layouts records are emitted with.
func validateISO8601(v any, opts *ValidatorOptions) error {
	str, ok := v.(string)
	if !ok || str == "" {
		return nil // Empty values are not invalid, use required for that
	}

	formats := []string{
		"2006-01-02T15:04:05",
		time.RFC3339,
		time.DateOnly,
	}
	for _, format := range formats {
		if _, err := time.Parse(format, str); err == nil {
			return nil
		}
	}

	return &FieldError{
		Field:   opts.FieldName,
		Value:   v,
		Rule:    "iso8601",
		Message: "invalid ISO 8601 date format",
	}
}

// validateChoice checks a text value against the field's vocabulary.
func validateChoice(v any, opts *ValidatorOptions) error {
	str, ok := v.(string)
	if !ok || str == "" || len(opts.Choices) == 0 {
		return nil
	}
	for _, c := range opts.Choices {
		if str == c {
			return nil
		}
	}
	return &FieldError{
		Field:   opts.FieldName,
		Value:   v,
		Rule:    "choice",
		Message: fmt.Sprintf("must be one of %s", strings.Join(opts.Choices, ", ")),
	}
}

// validateIMO checks the IMO number check digit.
func validateIMO(v any, opts *ValidatorOptions) error {
	str, ok := v.(string)
	if !ok || str == "" {
		return nil
	}
	if !value.ValidIMO(str) {
		return &FieldError{
			Field:   opts.FieldName,
			Value:   v,
			Rule:    "imo",
			Message: "invalid IMO number",
		}
	}
	return nil
}

// validatePositive checks a number is greater than zero, or at least Min
// when Min is set.
func validatePositive(v any, opts *ValidatorOptions) error {
	if v == nil {
		return nil
	}
	n := value.Float(v)
	if (opts.Min == 0 && n <= 0) || (opts.Min != 0 && n < opts.Min) {
		return &FieldError{
			Field:   opts.FieldName,
			Value:   v,
			Rule:    "positive",
			Message: "must be positive",
		}
	}
	return nil
}

// validateYearRange checks a build year is plausible.
func validateYearRange(v any, opts *ValidatorOptions) error {
	if v == nil {
		return nil
	}
	year := value.Int(v)
	lower := int(opts.Min)
	if lower == 0 {
		lower = 1900
	}
	if year < lower || year > time.Now().Year()+1 {
		return &FieldError{
			Field:   opts.FieldName,
			Value:   v,
			Rule:    "year_range",
			Message: fmt.Sprintf("year must be between %d and %d", lower, time.Now().Year()+1),
		}
	}
	return nil
}
