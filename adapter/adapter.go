// Package adapter turns one vendor's raw rows into canonical records.
//
// An adapter is a mapping profile plus the steps around it: the profile's
// field table re-keys the row, its rules patch or drop it, and the hub
// assembler builds the typed record. Every shipped adapter is defined by an
// embedded profile; new vendor layouts need YAML, not code.
package adapter

import (
	"errors"
	"fmt"

	"github.com/seaport-data/fixturewalk/hub"
	"github.com/seaport-data/fixturewalk/mapping"
	"github.com/seaport-data/fixturewalk/rules"
)

// ErrSkipped is returned when a profile rule drops the record.
var ErrSkipped = errors.New("skipped by rule")

// Stage names the step of normalization a record failed at.
type Stage string

const (
	StageMap      Stage = "map"
	StageRules    Stage = "rules"
	StageAssemble Stage = "assemble"
	StageValidate Stage = "validate"
)

// Error reports which stage rejected a record.
type Error struct {
	Stage Stage
	// Rule is set when a profile rule skipped the record.
	Rule string
	Err  error
}

func (e *Error) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("%s: %v (rule %s)", e.Stage, e.Err, e.Rule)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// StageOf returns the stage recorded in err, or "" if err did not come from
// an adapter.
func StageOf(err error) Stage {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Stage
	}
	return ""
}

// Adapter normalizes the rows of one vendor format.
type Adapter interface {
	// Name returns the adapter identifier (e.g., "gibson_lpg")
	Name() string

	// Description returns a human-readable description
	Description() string

	// Kind returns the canonical record kind produced
	Kind() hub.Kind

	// NewEnv builds the transform environment for a batch
	NewEnv(opts ...mapping.EnvOption) (*mapping.Env, error)

	// Normalize maps, patches and assembles one raw row.
	Normalize(raw mapping.RawRecord, env *mapping.Env) (hub.Record, error)
}

// ProfileAdapter is an Adapter defined entirely by a mapping profile.
type ProfileAdapter struct {
	profile *mapping.Profile
	kind    hub.Kind
}

// FromProfile builds an adapter from a profile. The profile must target a
// known record kind and pass validation against the default transforms.
func FromProfile(p *mapping.Profile) (*ProfileAdapter, error) {
	kind, err := hub.ParseKind(p.Kind)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", p.Name, err)
	}
	if err := p.Validate(mapping.DefaultTransforms()); err != nil {
		return nil, err
	}
	return &ProfileAdapter{profile: p, kind: kind}, nil
}

func (a *ProfileAdapter) Name() string { return a.profile.Name }
func (a *ProfileAdapter) Description() string { return a.profile.Description }
func (a *ProfileAdapter) Kind() hub.Kind { return a.kind }
func (a *ProfileAdapter) Profile() *mapping.Profile { return a.profile }

// NewEnv builds a transform environment from the adapter's profile.
func (a *ProfileAdapter) NewEnv(opts ...mapping.EnvOption) (*mapping.Env, error) {
	return mapping.NewEnv(a.profile, opts...)
}

// Normalize runs the row through the profile's field table, then its rules,
// then the assembler. Failures are returned as *Error carrying the stage.
func (a *ProfileAdapter) Normalize(raw mapping.RawRecord, env *mapping.Env) (hub.Record, error) {
	k, err := mapping.Map(raw, a.profile, env)
	if err != nil {
		return nil, &Error{Stage: StageMap, Err: err}
	}

	if len(a.profile.Rules) > 0 {
		res := rules.Evaluate(a.profile.Rules, k.Flatten())
		if res.Skip {
			return nil, &Error{Stage: StageRules, Rule: res.SkipRule, Err: ErrSkipped}
		}
		applyResult(k, res)
	}

	meta := hub.Meta{Provider: a.Provider(), Source: a.profile.VersionedName()}
	rec, err := hub.Assemble(a.kind, k, meta)
	if err != nil {
		return nil, &Error{Stage: StageAssemble, Err: err}
	}
	return rec, nil
}

// Provider returns the provider name written on records, defaulting to the
// profile name.
func (a *ProfileAdapter) Provider() string {
	if a.profile.Options.Provider != "" {
		return a.profile.Options.Provider
	}
	return a.profile.Name
}

// applyResult writes rule output back into the keyed record. Removals go
// first so a later rule can set a field an earlier one unset.
func applyResult(k mapping.Keyed, res *rules.Result) {
	for _, field := range res.Unset {
		delete(k, field)
	}
	for field, v := range res.Fields {
		k[field] = v
	}
}
