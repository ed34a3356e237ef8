package value

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestText(t *testing.T) {
	tests := []struct {
		input any
		want  string
	}{
		{nil, ""},
		{"KRITI", "KRITI"},
		{80000.0, "80000"},
		{92.5, "92.5"},
		{json.Number("12"), "12"},
		{true, "true"},
		{[]byte("abc"), "abc"},
	}

	for _, tt := range tests {
		if got := Text(tt.input); got != tt.want {
			t.Errorf("Text(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTextSlice(t *testing.T) {
	tests := []struct {
		input any
		sep   string
		want  []string
	}{
		{nil, "", nil},
		{"USG/ARA", "/", []string{"USG", "ARA"}},
		{"USG", "", []string{"USG"}},
		{" ", "", nil},
		{[]any{"a", 1, ""}, "", []string{"a", "1"}},
	}

	for _, tt := range tests {
		got := TextSlice(tt.input, tt.sep)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("TextSlice(%v, %q) = %v, want %v", tt.input, tt.sep, got, tt.want)
		}
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"80000", 80000, false},
		{"80,000", 80000, false},
		{"80.000", 80000, false},
		{"1,234,567", 1234567, false},
		{"1.234.567", 1234567, false},
		{"80,000.5", 80000.5, false},
		{"80.000,5", 80000.5, false},
		{"92,5", 92.5, false},
		{"92.5", 92.5, false},
		{"0.125", 0.125, false},
		{"1 234", 1234, false},
		{"-12", -12, false},
		{"", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := Number(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrNotNumber) {
				t.Errorf("Number(%q) err = %v, want ErrNotNumber", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Number(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Number(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestIntOr(t *testing.T) {
	if got := IntOr("2,009", 0); got != 2009 {
		t.Errorf("IntOr = %d, want 2009", got)
	}
	if got := IntOr("n/a", -1); got != -1 {
		t.Errorf("IntOr = %d, want -1", got)
	}
	if got := Int("9.9"); got != 9 {
		t.Errorf("Int = %d, want 9", got)
	}
}

func TestBool(t *testing.T) {
	for _, v := range []any{true, 1, "yes", "TRUE", "on"} {
		if !Bool(v) {
			t.Errorf("Bool(%v) = false, want true", v)
		}
	}
	for _, v := range []any{nil, false, 0, "no", "maybe"} {
		if Bool(v) {
			t.Errorf("Bool(%v) = true, want false", v)
		}
	}
}
