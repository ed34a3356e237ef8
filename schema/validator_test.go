package schema

import (
	"errors"
	"testing"
)

func TestValidatorRegistry_Register(t *testing.T) {
	r := NewValidatorRegistry()

	r.Register("no_tbn", func(v any, opts *ValidatorOptions) error {
		if v == "TBN" {
			return &FieldError{
				Field:   opts.FieldName,
				Value:   v,
				Rule:    "no_tbn",
				Message: "placeholder vessel",
			}
		}
		return nil
	})

	fn, ok := r.Get("no_tbn")
	if !ok {
		t.Fatal("custom validator not found")
	}
	if err := fn("OCEAN STAR", &ValidatorOptions{FieldName: "vessel.name"}); err != nil {
		t.Errorf("expected nil error for valid value, got %v", err)
	}
	if err := fn("TBN", &ValidatorOptions{FieldName: "vessel.name"}); err == nil {
		t.Error("expected error for placeholder value")
	}
}

func TestValidatorRegistry_DefaultValidators(t *testing.T) {
	r := DefaultValidators()

	expected := []string{"choice", "imo", "iso8601", "positive", "required", "year_range"}
	names := r.Names()
	if len(names) != len(expected) {
		t.Fatalf("Names() = %v, want %v", names, expected)
	}
	for i, name := range expected {
		if names[i] != name {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], name)
		}
	}
}

func TestValidatorRegistry_UnknownValidator(t *testing.T) {
	if err := NewValidatorRegistry().Validate("doi", "x", nil); err == nil {
		t.Error("expected error for unknown validator")
	}
}

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		wantErr bool
	}{
		{"non-empty string", "ENI", false},
		{"empty string", "", true},
		{"whitespace only", "   ", true},
		{"nil", nil, true},
		{"zero number", 0.0, false},
		{"non-empty list", []any{"a"}, false},
		{"empty list", []any{}, true},
		{"empty object", map[string]any{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRequired(tt.value, &ValidatorOptions{FieldName: "test"})
			if (err != nil) != tt.wantErr {
				t.Errorf("validateRequired(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateISO8601(t *testing.T) {
	tests := []struct {
		value   any
		wantErr bool
	}{
		{"2018-11-29T00:00:00", false},
		{"2018-11-29", false},
		{"2018-11-29T10:00:00Z", false},
		{"", false},
		{"29/11/2018", true},
		{"2018-13-01", true},
	}

	for _, tt := range tests {
		err := validateISO8601(tt.value, &ValidatorOptions{FieldName: "lay_can_start"})
		if (err != nil) != tt.wantErr {
			t.Errorf("validateISO8601(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestValidateChoice(t *testing.T) {
	opts := &ValidatorOptions{FieldName: "status", Choices: []string{"fully_fixed", "on_subs"}}

	if err := validateChoice("on_subs", opts); err != nil {
		t.Errorf("validateChoice(on_subs) error = %v", err)
	}
	if err := validateChoice("FXD", opts); err == nil {
		t.Error("validateChoice(FXD) expected error")
	}
	if err := validateChoice("anything", &ValidatorOptions{}); err != nil {
		t.Errorf("validateChoice without choices error = %v", err)
	}
}

func TestValidateIMO(t *testing.T) {
	tests := []struct {
		value   any
		wantErr bool
	}{
		{"9074729", false},
		{"9321483", false},
		{"9321484", true},
		{"93214", true},
		{"", false},
		{nil, false},
	}

	for _, tt := range tests {
		err := validateIMO(tt.value, &ValidatorOptions{FieldName: "vessel.imo"})
		if (err != nil) != tt.wantErr {
			t.Errorf("validateIMO(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestValidatePositive(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		min     float64
		wantErr bool
	}{
		{"positive float", 44.0, 0, false},
		{"positive int", 115000, 0, false},
		{"zero", 0.0, 0, true},
		{"negative", -3.5, 0, true},
		{"below min", 500.0, 1000, true},
		{"at min", 1000.0, 1000, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePositive(tt.value, &ValidatorOptions{FieldName: "cargo.volume", Min: tt.min})
			if (err != nil) != tt.wantErr {
				t.Errorf("validatePositive(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateYearRange(t *testing.T) {
	tests := []struct {
		value   any
		wantErr bool
	}{
		{2005, false},
		{1899, true},
		{3000, true},
		{nil, false},
	}

	for _, tt := range tests {
		err := validateYearRange(tt.value, &ValidatorOptions{FieldName: "vessel.build_year"})
		if (err != nil) != tt.wantErr {
			t.Errorf("validateYearRange(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestAsError(t *testing.T) {
	if err := AsError("spot_charter", nil); err != nil {
		t.Errorf("AsError(nil) = %v, want nil", err)
	}

	err := AsError("spot_charter", []FieldError{{Field: "status", Rule: "choice", Message: "bad"}})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("AsError() = %T, want *ValidationError", err)
	}
	if ve.Kind != "spot_charter" || len(ve.Fields) != 1 {
		t.Errorf("ValidationError = %+v", ve)
	}
}
