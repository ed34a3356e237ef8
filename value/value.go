// Package value provides primitives for coercing the loosely typed strings
// in scraped reports into numbers, quantities and rates.
//
// These helpers solve common problems:
//   - Type coercion (string "123" → int)
//   - Thousands separators in either convention ("80,000", "80.000,5")
//   - Quantities with units ("80KT", "500 KB", "30,000 CBM")
//   - Freight rates in worldscale, lump sum and per-ton forms
package value

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotNumber is returned when a string holds no parseable number.
var ErrNotNumber = errors.New("not a number")

// =============================================================================
// TEXT VALUES
// =============================================================================

// Text extracts a string from various representations.
// Handles: string, []byte, fmt.Stringer, json.Number, numeric types, nil
func Text(v any) string {
	if v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case json.Number:
		return val.String()
	case fmt.Stringer:
		return val.String()
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		if val == float32(int32(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// TextOr extracts a string with a default for empty/nil values.
func TextOr(v any, defaultVal string) string {
	s := Text(v)
	if s == "" {
		return defaultVal
	}
	return s
}

// TextSlice normalizes a value to []string. Strings are split on sep when
// it is non-empty; parts are trimmed and empty parts dropped.
func TextSlice(v any, sep string) []string {
	var parts []string

	switch val := v.(type) {
	case nil:
		return nil
	case []string:
		parts = val
	case []any:
		for _, item := range val {
			parts = append(parts, Text(item))
		}
	default:
		s := Text(v)
		if sep != "" {
			parts = strings.Split(s, sep)
		} else {
			parts = []string{s}
		}
	}

	var result []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

// =============================================================================
// NUMERIC VALUES
// =============================================================================

// Int extracts an integer from various representations.
// Handles: int, float64, string ("123", "1,234"), json.Number, nil (→ 0)
func Int(v any) int {
	if v == nil {
		return 0
	}
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case int32:
		return int(val)
	case float64:
		return int(val)
	case float32:
		return int(val)
	case json.Number:
		i, _ := val.Int64()
		return int(i)
	case string:
		f, _ := Number(val)
		return int(f)
	case bool:
		if val {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// IntOr extracts an integer with a default for unparseable values.
func IntOr(v any, defaultVal int) int {
	if v == nil {
		return defaultVal
	}
	switch val := v.(type) {
	case int, int64, int32, float64, float32, json.Number:
		return Int(v)
	case string:
		if f, err := Number(val); err == nil {
			return int(f)
		}
		return defaultVal
	default:
		return defaultVal
	}
}

// Float extracts a float64 from various representations.
func Float(v any) float64 {
	if v == nil {
		return 0
	}
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case int32:
		return float64(val)
	case json.Number:
		f, _ := val.Float64()
		return f
	case string:
		f, _ := Number(val)
		return f
	default:
		return 0
	}
}

// Number parses a decimal number written with either thousands convention:
// "80,000", "80,000.5", "80.000,5", "1 234". A lone separator followed by
// exactly three digits is a thousands separator ("80,000" and "80.000" are
// both 80000); otherwise it is the decimal point.
func Number(s string) (float64, error) {
	raw := s
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(" ", "", "\u00a0", "", "'", "", "_", "").Replace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: %q", ErrNotNumber, raw)
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			// 80.000,5
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 || len(s)-lastComma-1 == 3 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		} else if len(s)-lastDot-1 == 3 && !strings.HasPrefix(s, "0") && !strings.HasPrefix(s, "-0") {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotNumber, raw)
	}
	return f, nil
}

// =============================================================================
// BOOLEAN VALUES
// =============================================================================

// Bool extracts a boolean from various representations.
// Handles: bool, int (0/1), string ("true"/"false"/"1"/"0"/"yes"/"no"), nil
func Bool(v any) bool {
	if v == nil {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	case json.Number:
		i, _ := val.Int64()
		return i != 0
	case string:
		s := strings.ToLower(strings.TrimSpace(val))
		return s == "true" || s == "1" || s == "yes" || s == "on"
	default:
		return false
	}
}
