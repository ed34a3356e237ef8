package mapping

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/seaport-data/fixturewalk/helpers"
	"github.com/seaport-data/fixturewalk/laycan"
	"github.com/seaport-data/fixturewalk/value"
)

// Mapper errors.
var (
	ErrUnmappedField = errors.New("unmapped field")
	ErrMissingField  = errors.New("missing required field")
	ErrNoAnchor      = errors.New("no reported date")
)

// ReportedDateKey is the keyed field holding the record's anchor date.
const ReportedDateKey = "reported_date"

// RawRecord is one scraped row: vendor column header to string value.
type RawRecord map[string]string

// Keyed is a mapped record: destination field to typed value. Values are
// strings, []string, numbers, time.Time, laycan.Range, value.Quantity or
// value.Rate depending on the transform that produced them.
type Keyed map[string]any

// String returns the field as text. Dates are ISO formatted and lists are
// joined with "/".
func (k Keyed) String(key string) string {
	switch v := k[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, "/")
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(laycan.ISOLayout)
	case laycan.Range:
		start, _ := v.ISO()
		return start
	case value.Rate:
		return v.Raw
	default:
		return value.Text(v)
	}
}

// Strings returns a list field. A single string is a one-element list.
func (k Keyed) Strings(key string) []string {
	switch v := k[key].(type) {
	case []string:
		return v
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}

// Range returns a date range field. A single date is a one-day range.
func (k Keyed) Range(key string) laycan.Range {
	switch v := k[key].(type) {
	case laycan.Range:
		return v
	case time.Time:
		return laycan.Range{Start: v, End: v}
	case string:
		if t, err := laycan.ParseISO(v); err == nil {
			return laycan.Range{Start: t, End: t}
		}
	}
	return laycan.Range{}
}

// Time returns a date field, or the start of a range field.
func (k Keyed) Time(key string) time.Time {
	return k.Range(key).Start
}

// Has reports whether the field holds a non-empty value.
func (k Keyed) Has(key string) bool {
	switch v := k[key].(type) {
	case nil:
		return false
	case string:
		return v != ""
	case []string:
		return len(v) > 0
	case laycan.Range:
		return !v.IsZero()
	case time.Time:
		return !v.IsZero()
	}
	return true
}

// Flatten returns the string view used by rules.
func (k Keyed) Flatten() map[string]string {
	out := make(map[string]string, len(k))
	for key := range k {
		if s := k.String(key); s != "" {
			out[key] = s
		}
	}
	return out
}

// Keys returns the field names in sorted order.
func (k Keyed) Keys() []string {
	keys := make([]string, 0, len(k))
	for key := range k {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Env carries what transforms need besides the cell value. An Env is
// read-only once built and may be shared across goroutines.
type Env struct {
	Anchor      time.Time
	Resolver    *laycan.Resolver
	Text        *helpers.Cleaner
	Vessel      *helpers.Cleaner
	Separator   string
	DefaultUnit value.Unit
	Strict      bool
	Registry    *TransformRegistry
	Logger      *slog.Logger
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithAnchor sets the batch anchor used when a record has no reported date
// of its own.
func WithAnchor(t time.Time) EnvOption {
	return func(e *Env) {
		e.Anchor = t
	}
}

// WithStrict rejects unmapped columns regardless of the profile setting.
func WithStrict(strict bool) EnvOption {
	return func(e *Env) {
		e.Strict = e.Strict || strict
	}
}

// WithLogger sets the logger transforms report to.
func WithLogger(l *slog.Logger) EnvOption {
	return func(e *Env) {
		e.Logger = l
	}
}

// WithRegistry replaces the default transform registry.
func WithRegistry(r *TransformRegistry) EnvOption {
	return func(e *Env) {
		e.Registry = r
	}
}

// WithResolverCache memoizes date resolutions for the lifetime of the Env.
func WithResolverCache(ttl time.Duration) EnvOption {
	return func(e *Env) {
		e.Resolver = laycan.New(append(resolverOptions(e), laycan.WithCache(ttl))...)
	}
}

// resolverOptions rebuilds the profile-derived resolver settings.
func resolverOptions(e *Env) []laycan.Option {
	return []laycan.Option{
		laycan.WithLocales(e.Resolver.Locales()...),
		laycan.WithRollover(e.Resolver.Rollover()),
	}
}

// NewEnv builds the transform environment for a profile.
func NewEnv(p *Profile, opts ...EnvOption) (*Env, error) {
	rollover, err := laycan.ParseRollover(p.Options.Rollover)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", p.Name, err)
	}
	casing, err := helpers.ParseCasing(p.Options.Casing)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", p.Name, err)
	}
	patterns, err := helpers.CompilePatterns(p.Options.Patterns...)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", p.Name, err)
	}

	textOpts := []helpers.CleanerOption{
		helpers.WithPatterns(helpers.PartyPatterns...),
		helpers.WithPatterns(patterns...),
		helpers.WithBlacklist(p.Options.Blacklist...),
		helpers.WithCasing(casing),
	}
	if p.Options.StripHTML {
		textOpts = append(textOpts, helpers.WithHTML())
	}

	env := &Env{
		Resolver:  laycan.New(laycan.WithLocales(p.Options.Locales...), laycan.WithRollover(rollover)),
		Text:      helpers.NewCleaner(textOpts...),
		Vessel:    helpers.VesselCleaner(),
		Separator: p.GetMultiValueSeparator(),
		Strict:    p.Options.Strict,
		Registry:  DefaultTransforms(),
		Logger:    slog.Default(),
	}
	if p.Options.DefaultUnit != "" {
		if env.DefaultUnit, err = value.ParseUnit(p.Options.DefaultUnit); err != nil {
			return nil, fmt.Errorf("profile %s: %w", p.Name, err)
		}
	}

	for _, opt := range opts {
		opt(env)
	}
	return env, nil
}

// withAnchor returns a copy of the env for one record.
func (e *Env) withAnchor(anchor time.Time) *Env {
	c := *e
	c.Anchor = anchor
	return &c
}

// AnchorFor selects the anchor for one record: the profile's anchor field
// when present and parseable, otherwise the batch anchor.
func (e *Env) AnchorFor(raw RawRecord, p *Profile) (time.Time, error) {
	if p.Options.AnchorField != "" {
		if s, ok := lookup(raw, p.Options.AnchorField); ok && strings.TrimSpace(s) != "" {
			t, err := laycan.ParseAnchor(s)
			if err == nil {
				return t, nil
			}
			if e.Anchor.IsZero() {
				return time.Time{}, fmt.Errorf("%w: %w", ErrNoAnchor, err)
			}
			e.Logger.Warn("unparseable reported date, using batch anchor",
				"profile", p.Name, "value", s, "anchor", e.Anchor.Format(time.DateOnly))
		}
	}
	if e.Anchor.IsZero() {
		return time.Time{}, ErrNoAnchor
	}
	return e.Anchor, nil
}

// Map re-keys a raw record according to the profile, applying each field's
// transform. Columns without a mapping are dropped, or rejected with
// ErrUnmappedField when the profile or env is strict. Defaults fill absent
// or empty columns; a required field left empty fails with ErrMissingField.
func Map(raw RawRecord, p *Profile, env *Env) (Keyed, error) {
	anchor, err := env.AnchorFor(raw, p)
	if err != nil {
		return nil, err
	}
	env = env.withAnchor(anchor)

	out := Keyed{ReportedDateKey: anchor}
	seen := make(map[string]bool, len(p.Fields))

	headers := make([]string, 0, len(raw))
	for h := range raw {
		headers = append(headers, h)
	}
	sort.Strings(headers)

	for _, header := range headers {
		fm, canonical, ok := p.GetFieldMapping(header)
		if !ok {
			if HeaderKey(header) == HeaderKey(p.Options.AnchorField) {
				continue
			}
			if env.Strict {
				return nil, fmt.Errorf("%w: %q", ErrUnmappedField, header)
			}
			env.Logger.Debug("dropping unmapped field", "profile", p.Name, "field", header)
			continue
		}
		seen[canonical] = true
		if fm.Skip {
			continue
		}

		in := strings.TrimSpace(raw[header])
		if in == "" {
			in = fm.Default
		}
		if in == "" {
			continue
		}
		if err := apply(out, fm, in, env); err != nil {
			return nil, fmt.Errorf("field %q: %w", header, err)
		}
	}

	for _, header := range p.Headers() {
		fm := p.Fields[header]
		if fm.Skip || seen[header] || fm.Default == "" {
			continue
		}
		if err := apply(out, fm, fm.Default, env); err != nil {
			return nil, fmt.Errorf("default for %q: %w", header, err)
		}
	}

	for _, header := range p.Headers() {
		fm := p.Fields[header]
		if fm.Required && !out.Has(fm.Dest) {
			return nil, fmt.Errorf("%w: %s (%q)", ErrMissingField, fm.Dest, header)
		}
	}

	return out, nil
}

func apply(out Keyed, fm FieldMapping, in string, env *Env) error {
	v, err := env.Registry.Apply(fm.Transform, in, fm, env)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	// Two columns may feed one destination; the first non-empty value wins.
	if out.Has(fm.Dest) {
		return nil
	}
	out[fm.Dest] = v
	return nil
}

func lookup(raw RawRecord, header string) (string, bool) {
	if v, ok := raw[header]; ok {
		return v, true
	}
	key := HeaderKey(header)
	for h, v := range raw {
		if HeaderKey(h) == key {
			return v, true
		}
	}
	return "", false
}
