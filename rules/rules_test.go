package rules

import (
	"errors"
	"testing"
)

func boolPtr(b bool) *bool { return &b }

func TestConditionEvaluate(t *testing.T) {
	values := map[string]string{
		"charterer":   "DNR",
		"status":      "on_subs",
		"vessel.name": "KRITI RUBY",
		"country":     "PADD 3",
	}

	tests := []struct {
		name string
		cond Condition
		want bool
	}{
		{"empty condition", Condition{}, true},
		{"equals ignores case", Condition{Field: "status", Equals: "ON_SUBS"}, true},
		{"equals mismatch", Condition{Field: "status", Equals: "failed"}, false},
		{"contains", Condition{Field: "vessel.name", Contains: "kriti"}, true},
		{"matches", Condition{Field: "country", Matches: `^PADD\s*\d$`}, true},
		{"bad pattern never matches", Condition{Field: "country", Matches: `(`}, false},
		{"in", Condition{Field: "charterer", In: []string{"CNR", "dnr"}}, true},
		{"in mismatch", Condition{Field: "charterer", In: []string{"CNR"}}, false},
		{"exists", Condition{Field: "charterer", Exists: boolPtr(true)}, true},
		{"not exists", Condition{Field: "rate", Exists: boolPtr(false)}, true},
		{"missing field", Condition{Field: "rate", Equals: "RNR"}, false},
		{"field only", Condition{Field: "status"}, true},
		{
			"all",
			Condition{All: []Condition{{Field: "status", Equals: "on_subs"}, {Field: "charterer", Exists: boolPtr(true)}}},
			true,
		},
		{
			"any",
			Condition{Any: []Condition{{Field: "status", Equals: "failed"}, {Field: "charterer", Equals: "DNR"}}},
			true,
		},
		{"not", Condition{Not: &Condition{Field: "status", Equals: "on_subs"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cond.Evaluate(values); got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluate_PriorityAndChaining(t *testing.T) {
	rules := []Rule{
		{
			Name: "region_from_padd",
			When: Condition{Field: "country_type", Equals: "region"},
			Then: Action{SetField: "unit", SetValue: "kb/d"},
		},
		{
			Name:     "padd_is_region",
			Priority: 10,
			When:     Condition{Field: "country", Matches: `(?i)^PADD`},
			Then:     Action{SetField: "country_type", SetValue: "region"},
		},
	}

	result := Evaluate(rules, map[string]string{"country": "PADD 1", "country_type": "country"})

	if result.Skip {
		t.Fatal("unexpected skip")
	}
	if got := result.Fields["country_type"]; got != "region" {
		t.Errorf("country_type = %q, want %q", got, "region")
	}
	if got := result.Fields["unit"]; got != "kb/d" {
		t.Errorf("unit = %q, want %q (later rule sees earlier result)", got, "kb/d")
	}
	if len(result.Matched) != 2 || result.Matched[0] != "padd_is_region" {
		t.Errorf("Matched = %v, want padd_is_region first", result.Matched)
	}
}

func TestEvaluate_Skip(t *testing.T) {
	rules := []Rule{
		{Name: "failed_fixture", When: Condition{Field: "status", Equals: "failed"}, Then: Action{Skip: true}},
		{Name: "after", Then: Action{SetField: "x", SetValue: "y"}},
	}

	result := Evaluate(rules, map[string]string{"status": "failed"})
	if !result.Skip {
		t.Fatal("expected skip")
	}
	if result.SkipRule != "failed_fixture" {
		t.Errorf("SkipRule = %q, want %q", result.SkipRule, "failed_fixture")
	}
	if _, ok := result.Fields["x"]; ok {
		t.Error("rules after a skip should not run")
	}
}

func TestActionApply(t *testing.T) {
	values := map[string]string{"op": "Exp"}

	tests := []struct {
		name   string
		action Action
		field  string
		want   map[string]string
		unset  []string
	}{
		{
			name:   "set value",
			action: Action{SetField: "status", SetValue: "fully_fixed"},
			want:   map[string]string{"status": "fully_fixed"},
		},
		{
			name:   "map value folds case",
			action: Action{SetField: "cargo.movement", MapValue: map[string]string{"EXP": "load", "IMP": "discharge"}},
			field:  "op",
			want:   map[string]string{"cargo.movement": "load"},
		},
		{
			name:   "map value without match",
			action: Action{SetField: "cargo.movement", MapValue: map[string]string{"IMP": "discharge"}},
			field:  "op",
			want:   map[string]string{},
		},
		{
			name:   "nested actions",
			action: Action{Actions: []Action{{SetField: "a", SetValue: "1"}, {Unset: []string{"charterer"}}}},
			want:   map[string]string{"a": "1"},
			unset:  []string{"charterer"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &Result{Fields: make(map[string]string)}
			tt.action.Apply(result, tt.field, values)

			if len(result.Fields) != len(tt.want) {
				t.Fatalf("Fields = %v, want %v", result.Fields, tt.want)
			}
			for k, v := range tt.want {
				if result.Fields[k] != v {
					t.Errorf("Fields[%q] = %q, want %q", k, result.Fields[k], v)
				}
			}
			if len(result.Unset) != len(tt.unset) {
				t.Errorf("Unset = %v, want %v", result.Unset, tt.unset)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		rules   []Rule
		wantErr bool
	}{
		{"empty", nil, false},
		{"valid", []Rule{{Name: "ok", When: Condition{Field: "a", Matches: `^x$`}}}, false},
		{"missing name", []Rule{{When: Condition{Field: "a"}}}, true},
		{"bad pattern", []Rule{{Name: "bad", When: Condition{Field: "a", Matches: `[`}}}, true},
		{"bad nested pattern", []Rule{{Name: "bad", When: Condition{Any: []Condition{{Field: "a", Matches: `(`}}}}}, true},
		{"map_value without field", []Rule{{Name: "bad", Then: Action{SetField: "x", MapValue: map[string]string{"a": "b"}}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.rules)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRule) {
				t.Errorf("Validate() error = %v, want ErrInvalidRule", err)
			}
		})
	}
}

func TestLoadRuleSetFromBytes(t *testing.T) {
	data := []byte(`
name: santos
rules:
  - name: operation_column
    when:
      field: op
      exists: true
    then:
      set_field: cargo.movement
      map_value:
        EXP: load
        IMP: discharge
`)
	rs, err := LoadRuleSetFromBytes(data)
	if err != nil {
		t.Fatalf("LoadRuleSetFromBytes() error = %v", err)
	}

	result := rs.Evaluate(map[string]string{"op": "IMP"})
	if got := result.Fields["cargo.movement"]; got != "discharge" {
		t.Errorf("cargo.movement = %q, want %q", got, "discharge")
	}

	if _, err := LoadRuleSetFromBytes([]byte("rules:\n  - when: {field: a}\n")); !errors.Is(err, ErrInvalidRule) {
		t.Errorf("unnamed rule error = %v, want ErrInvalidRule", err)
	}
}
