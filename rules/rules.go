// Package rules provides record-level conditional rules applied after field
// mapping.
//
// Rules let a profile express vendor quirks without code. For example, a
// fixture list that writes "DNR" in the charterer column for undisclosed
// deals can drop those rows, and a port bulletin whose "OP" column holds
// "EXP"/"IMP" can set the cargo movement from it.
package rules

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrInvalidRule is returned for rules that can never be applied.
var ErrInvalidRule = errors.New("invalid rule")

// RuleSet contains an ordered list of rules.
type RuleSet struct {
	// Name identifies this rule set
	Name string `yaml:"name" json:"name"`

	// Description documents what these rules are for
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Rules is the ordered list of rules
	Rules []Rule `yaml:"rules" json:"rules"`
}

// Rule defines a single conditional action.
type Rule struct {
	// Name identifies this rule in logs and rejection reasons
	Name string `yaml:"name" json:"name"`

	// Description documents what this rule does
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Priority determines rule evaluation order (higher = first). Default is 0.
	Priority int `yaml:"priority,omitempty" json:"priority,omitempty"`

	// When defines the conditions that must be met for this rule to apply
	When Condition `yaml:"when" json:"when"`

	// Then defines the actions to apply when conditions are met
	Then Action `yaml:"then" json:"then"`
}

// Condition defines when a rule should be applied.
type Condition struct {
	// Field is the keyed field to check (e.g., "charterer", "vessel.name")
	Field string `yaml:"field,omitempty" json:"field,omitempty"`

	// Equals matches exact value, ignoring case
	Equals string `yaml:"equals,omitempty" json:"equals,omitempty"`

	// Contains matches if the field contains this substring
	Contains string `yaml:"contains,omitempty" json:"contains,omitempty"`

	// Matches is a regex pattern to match against
	Matches string `yaml:"matches,omitempty" json:"matches,omitempty"`

	// In matches if the field value is in this list
	In []string `yaml:"in,omitempty" json:"in,omitempty"`

	// Exists checks if the field has any value
	Exists *bool `yaml:"exists,omitempty" json:"exists,omitempty"`

	// All requires all sub-conditions to match (AND)
	All []Condition `yaml:"all,omitempty" json:"all,omitempty"`

	// Any requires at least one sub-condition to match (OR)
	Any []Condition `yaml:"any,omitempty" json:"any,omitempty"`

	// Not inverts the sub-condition
	Not *Condition `yaml:"not,omitempty" json:"not,omitempty"`
}

// Action defines what to do when a rule matches.
type Action struct {
	// SetField sets a specific keyed field
	SetField string `yaml:"set_field,omitempty" json:"set_field,omitempty"`

	// SetValue sets the value for SetField
	SetValue string `yaml:"set_value,omitempty" json:"set_value,omitempty"`

	// MapValue maps the value of the condition's field through a table into
	// SetField
	MapValue map[string]string `yaml:"map_value,omitempty" json:"map_value,omitempty"`

	// Unset removes fields from the record
	Unset []string `yaml:"unset,omitempty" json:"unset,omitempty"`

	// Skip drops the record
	Skip bool `yaml:"skip,omitempty" json:"skip,omitempty"`

	// Multiple actions can be combined
	Actions []Action `yaml:"actions,omitempty" json:"actions,omitempty"`
}

// Result holds the outcome of rule evaluation.
type Result struct {
	// Matched lists the names of the rules that applied, in order
	Matched []string

	// Fields contains the field/value pairs to set
	Fields map[string]string

	// Unset lists the fields to remove
	Unset []string

	// Skip indicates the record should be dropped
	Skip bool

	// SkipRule is the name of the rule that dropped the record
	SkipRule string
}

// Evaluate applies every matching rule, highest priority first, to the
// record's string view. Fields set by one rule are visible to the next. A
// skip stops evaluation.
func Evaluate(rules []Rule, fieldValues map[string]string) *Result {
	result := &Result{
		Fields: make(map[string]string),
	}

	view := make(map[string]string, len(fieldValues))
	for k, v := range fieldValues {
		view[k] = v
	}

	for _, rule := range ordered(rules) {
		if !rule.When.Evaluate(view) {
			continue
		}
		result.Matched = append(result.Matched, rule.Name)
		rule.Then.Apply(result, rule.When.Field, view)

		for _, k := range result.Unset {
			delete(view, k)
		}
		for k, v := range result.Fields {
			view[k] = v
		}

		if result.Skip {
			result.SkipRule = rule.Name
			break
		}
	}

	return result
}

// Evaluate runs the rule set's rules.
func (rs *RuleSet) Evaluate(fieldValues map[string]string) *Result {
	return Evaluate(rs.Rules, fieldValues)
}

func ordered(rules []Rule) []Rule {
	out := append([]Rule(nil), rules...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}

// Evaluate checks if the condition matches the given field values.
func (c *Condition) Evaluate(fieldValues map[string]string) bool {
	// Handle composite conditions first
	if len(c.All) > 0 {
		for _, sub := range c.All {
			if !sub.Evaluate(fieldValues) {
				return false
			}
		}
		return true
	}

	if len(c.Any) > 0 {
		for _, sub := range c.Any {
			if sub.Evaluate(fieldValues) {
				return true
			}
		}
		return false
	}

	if c.Not != nil {
		return !c.Not.Evaluate(fieldValues)
	}

	// Simple field condition
	if c.Field == "" {
		return true // No condition means always match
	}

	value, exists := fieldValues[c.Field]
	exists = exists && value != ""

	if c.Exists != nil {
		return exists == *c.Exists
	}

	if !exists {
		return false
	}

	if c.Equals != "" {
		return strings.EqualFold(value, c.Equals)
	}

	if c.Contains != "" {
		return strings.Contains(strings.ToLower(value), strings.ToLower(c.Contains))
	}

	if c.Matches != "" {
		re, err := compile(c.Matches)
		return err == nil && re.MatchString(value)
	}

	if len(c.In) > 0 {
		for _, v := range c.In {
			if strings.EqualFold(value, v) {
				return true
			}
		}
		return false
	}

	// No specific condition, just check field exists
	return true
}

// Apply executes the action and updates the result. field is the rule's
// condition field, the source for MapValue.
func (a *Action) Apply(result *Result, field string, fieldValues map[string]string) {
	if a.SetField != "" && a.SetValue != "" {
		result.Fields[a.SetField] = a.SetValue
	}

	if len(a.MapValue) > 0 && a.SetField != "" && field != "" {
		if mapped, ok := lookupFold(a.MapValue, fieldValues[field]); ok {
			result.Fields[a.SetField] = mapped
		}
	}

	if len(a.Unset) > 0 {
		result.Unset = append(result.Unset, a.Unset...)
		for _, k := range a.Unset {
			delete(result.Fields, k)
		}
	}

	if a.Skip {
		result.Skip = true
	}

	// Apply nested actions
	for _, sub := range a.Actions {
		sub.Apply(result, field, fieldValues)
	}
}

func lookupFold(table map[string]string, key string) (string, bool) {
	if v, ok := table[key]; ok {
		return v, true
	}
	for k, v := range table {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// Validate checks that rules are named, that their patterns compile and
// that map_value has a condition field to read from.
func Validate(rules []Rule) error {
	var errs []error
	for i, r := range rules {
		if r.Name == "" {
			errs = append(errs, fmt.Errorf("%w: rule %d has no name", ErrInvalidRule, i))
		}
		if err := r.When.validate(); err != nil {
			errs = append(errs, fmt.Errorf("%w %q: %w", ErrInvalidRule, r.Name, err))
		}
		if len(r.Then.MapValue) > 0 && r.When.Field == "" {
			errs = append(errs, fmt.Errorf("%w %q: map_value needs a when.field", ErrInvalidRule, r.Name))
		}
	}
	return errors.Join(errs...)
}

func (c *Condition) validate() error {
	if c.Matches != "" {
		if _, err := compile(c.Matches); err != nil {
			return err
		}
	}
	for i := range c.All {
		if err := c.All[i].validate(); err != nil {
			return err
		}
	}
	for i := range c.Any {
		if err := c.Any[i].validate(); err != nil {
			return err
		}
	}
	if c.Not != nil {
		return c.Not.validate()
	}
	return nil
}

// LoadRuleSet loads a rule set from a YAML file.
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	return LoadRuleSetFromBytes(data)
}

// LoadRuleSetFromBytes loads a rule set from YAML bytes.
func LoadRuleSetFromBytes(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parsing rules YAML: %w", err)
	}
	if err := Validate(rs.Rules); err != nil {
		return nil, err
	}
	return &rs, nil
}

var patternCache = struct {
	sync.RWMutex
	m map[string]*regexp.Regexp
}{m: make(map[string]*regexp.Regexp)}

// compile caches patterns; conditions are evaluated once per record.
func compile(pattern string) (*regexp.Regexp, error) {
	patternCache.RLock()
	re, ok := patternCache.m[pattern]
	patternCache.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	patternCache.Lock()
	patternCache.m[pattern] = re
	patternCache.Unlock()
	return re, nil
}
