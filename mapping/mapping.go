// Package mapping provides the declarative field-mapping tables that turn a
// vendor's raw columns into the keyed fields of a canonical record.
package mapping

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/seaport-data/fixturewalk/helpers"
	"github.com/seaport-data/fixturewalk/laycan"
	"github.com/seaport-data/fixturewalk/rules"
	"github.com/seaport-data/fixturewalk/value"
)

// Profile errors.
var (
	ErrInvalidProfile   = errors.New("invalid profile")
	ErrUnknownTransform = errors.New("unknown transform")
	ErrUnknownKind      = errors.New("unknown record kind")
)

// Kinds lists the canonical record kinds a profile may target.
var Kinds = []string{"spot_charter", "cargo_movement", "market_figure", "bill_of_lading"}

// Profile represents a complete mapping configuration for one vendor format.
type Profile struct {
	// Name is the profile identifier
	Name string `yaml:"name" json:"name"`

	// Kind is the canonical record kind produced (e.g., "spot_charter")
	Kind string `yaml:"kind" json:"kind"`

	// Version is the vendor layout version this profile targets
	Version string `yaml:"version,omitempty" json:"version,omitempty"`

	// Description provides human-readable documentation
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Fields maps vendor column headers to destination fields
	Fields map[string]FieldMapping `yaml:"fields" json:"fields"`

	// Options contains vendor-specific options
	Options ProfileOptions `yaml:"options,omitempty" json:"options,omitempty"`

	// Rules are record-level conditional rules applied after mapping
	Rules []rules.Rule `yaml:"rules,omitempty" json:"rules,omitempty"`
}

// VersionedName returns the profile name with version (e.g., "gibson_lpg@2019")
func (p *Profile) VersionedName() string {
	if p.Version != "" {
		return p.Name + "@" + p.Version
	}
	return p.Name
}

// FieldMapping describes how a vendor column maps to a destination field.
type FieldMapping struct {
	// Dest is the destination field; dots denote sub-records ("vessel.name")
	Dest string `yaml:"dest" json:"dest"`

	// Transform names a registered transform (e.g., "laycan", "clean_vessel")
	Transform string `yaml:"transform,omitempty" json:"transform,omitempty"`

	// Default is used when the column is absent or empty
	Default string `yaml:"default,omitempty" json:"default,omitempty"`

	// Required fails the record when no value (or default) is available
	Required bool `yaml:"required,omitempty" json:"required,omitempty"`

	// Skip marks a known column that is deliberately ignored
	Skip bool `yaml:"skip,omitempty" json:"skip,omitempty"`

	// Delimiter splits multi-value cells for list transforms
	Delimiter string `yaml:"delimiter,omitempty" json:"delimiter,omitempty"`
}

// ProfileOptions contains vendor-specific configuration options.
type ProfileOptions struct {
	// Provider is written to provider_name on every record
	Provider string `yaml:"provider,omitempty" json:"provider,omitempty"`

	// AnchorField is the raw column holding the report's publication date
	AnchorField string `yaml:"anchor_field,omitempty" json:"anchor_field,omitempty"`

	// Rollover selects the previous-month policy ("month_end", "shift_month")
	Rollover string `yaml:"rollover,omitempty" json:"rollover,omitempty"`

	// Locales enables localized month names ("it", "es", "pt")
	Locales []string `yaml:"locales,omitempty" json:"locales,omitempty"`

	// Strict rejects columns that have no mapping instead of dropping them
	Strict bool `yaml:"strict,omitempty" json:"strict,omitempty"`

	// StripHTML strips markup from text fields
	StripHTML bool `yaml:"strip_html,omitempty" json:"strip_html,omitempty"`

	// Blacklist adds vendor-specific noise tokens to the text cleaner
	Blacklist []string `yaml:"blacklist,omitempty" json:"blacklist,omitempty"`

	// Patterns adds vendor-specific prefix/suffix expressions to the text cleaner
	Patterns []string `yaml:"patterns,omitempty" json:"patterns,omitempty"`

	// Casing applies "upper" or "title" casing to cleaned text
	Casing string `yaml:"casing,omitempty" json:"casing,omitempty"`

	// DefaultUnit is used for volumes written without a unit
	DefaultUnit string `yaml:"default_unit,omitempty" json:"default_unit,omitempty"`

	// MultiValueSeparator splits list fields without their own delimiter
	MultiValueSeparator string `yaml:"multi_value_separator,omitempty" json:"multi_value_separator,omitempty"`
}

// GetMultiValueSeparator returns the multi-value separator with a default.
func (p *Profile) GetMultiValueSeparator() string {
	if p.Options.MultiValueSeparator != "" {
		return p.Options.MultiValueSeparator
	}
	return "/"
}

// Validate checks the profile against a transform registry: the kind must be
// known, every mapped field needs a destination, transforms must exist and
// options must parse. All problems are reported together.
func (p *Profile) Validate(reg *TransformRegistry) error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, fmt.Errorf("%w: missing name", ErrInvalidProfile))
	}
	if !knownKind(p.Kind) {
		errs = append(errs, fmt.Errorf("%w %q", ErrUnknownKind, p.Kind))
	}

	for _, header := range p.Headers() {
		fm := p.Fields[header]
		if fm.Skip {
			continue
		}
		if fm.Dest == "" {
			errs = append(errs, fmt.Errorf("%w: field %q has no dest", ErrInvalidProfile, header))
		}
		if fm.Transform != "" {
			if _, ok := reg.Get(fm.Transform); !ok {
				errs = append(errs, fmt.Errorf("%w %q for field %q", ErrUnknownTransform, fm.Transform, header))
			}
		}
	}

	if _, err := laycan.ParseRollover(p.Options.Rollover); err != nil {
		errs = append(errs, err)
	}
	for _, loc := range p.Options.Locales {
		if !knownLocale(loc) {
			errs = append(errs, fmt.Errorf("%w: unknown locale %q", ErrInvalidProfile, loc))
		}
	}
	if _, err := helpers.ParseCasing(p.Options.Casing); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidProfile, err))
	}
	if _, err := helpers.CompilePatterns(p.Options.Patterns...); err != nil {
		errs = append(errs, err)
	}
	if p.Options.DefaultUnit != "" {
		if _, err := value.ParseUnit(p.Options.DefaultUnit); err != nil {
			errs = append(errs, err)
		}
	}
	if err := rules.Validate(p.Rules); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("profile %s: %w", p.Name, errors.Join(errs...))
	}
	return nil
}

// Headers returns the mapped vendor headers in sorted order.
func (p *Profile) Headers() []string {
	headers := make([]string, 0, len(p.Fields))
	for h := range p.Fields {
		headers = append(headers, h)
	}
	sort.Strings(headers)
	return headers
}

// GetFieldMapping retrieves the mapping for a vendor header. Matching ignores
// case, surrounding space and the separator style ("Lay Can", "LAY_CAN").
func (p *Profile) GetFieldMapping(header string) (FieldMapping, string, bool) {
	if m, ok := p.Fields[header]; ok {
		return m, header, true
	}
	key := HeaderKey(header)
	for h, m := range p.Fields {
		if HeaderKey(h) == key {
			return m, h, true
		}
	}
	return FieldMapping{}, "", false
}

// FieldsForDest returns the headers that write to a destination field.
func (p *Profile) FieldsForDest(dest string) []string {
	var headers []string
	for _, h := range p.Headers() {
		if p.Fields[h].Dest == dest {
			headers = append(headers, h)
		}
	}
	return headers
}

var headerSeparators = regexp.MustCompile(`[\s_.\-/]+`)

// HeaderKey normalizes a vendor header for comparison.
func HeaderKey(h string) string {
	return headerSeparators.ReplaceAllString(strings.ToLower(strings.TrimSpace(h)), " ")
}

// DestPath splits a dotted destination into the sub-record and field
// (e.g., "cargo.buyer.name" → "cargo.buyer", "name").
func DestPath(dest string) (parent string, field string) {
	idx := strings.LastIndex(dest, ".")
	if idx < 0 {
		return "", dest
	}
	return dest[:idx], dest[idx+1:]
}

func knownKind(kind string) bool {
	for _, k := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func knownLocale(loc string) bool {
	for _, l := range laycan.Locales() {
		if strings.EqualFold(l, loc) {
			return true
		}
	}
	return false
}
