package mapping

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed profiles/*.yaml
var embeddedProfiles embed.FS

// ProfileRegistry holds loaded profiles.
type ProfileRegistry struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

// NewProfileRegistry creates a new profile registry with embedded profiles loaded.
func NewProfileRegistry() (*ProfileRegistry, error) {
	r := &ProfileRegistry{
		profiles: make(map[string]*Profile),
	}

	entries, err := embeddedProfiles.ReadDir("profiles")
	if err != nil {
		return nil, fmt.Errorf("reading embedded profiles: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := embeddedProfiles.ReadFile("profiles/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading embedded profile %s: %w", entry.Name(), err)
		}

		profile, err := parseProfile(data)
		if err != nil {
			return nil, fmt.Errorf("embedded profile %s: %w", entry.Name(), err)
		}

		// Use filename without extension as profile name if not set
		if profile.Name == "" {
			profile.Name = strings.TrimSuffix(entry.Name(), ".yaml")
		}
		r.profiles[profile.Name] = profile
	}

	return r, nil
}

// LoadProfile loads a profile from a file path.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile file: %w", err)
	}

	profile, err := parseProfile(data)
	if err != nil {
		return nil, err
	}
	if profile.Name == "" {
		profile.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return profile, nil
}

// LoadProfileFromString loads a profile from YAML content.
func LoadProfileFromString(content string) (*Profile, error) {
	return parseProfile([]byte(content))
}

func parseProfile(data []byte) (*Profile, error) {
	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parsing profile YAML: %w", err)
	}
	return &profile, nil
}

// Get retrieves a profile by name.
func (r *ProfileRegistry) Get(name string) (*Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[name]
	return p, ok
}

// Register adds a profile to the registry.
func (r *ProfileRegistry) Register(profile *Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.Name] = profile
}

// List returns all registered profile names, sorted.
func (r *ProfileRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadFromDirectory loads all profiles from a directory. A profile whose name
// matches a registered one is merged over it, so an override file only needs
// the fields it changes.
func (r *ProfileRegistry) LoadFromDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading profile directory: %w", err)
	}

	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}

		profile, err := LoadProfile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("%s: %w", entry.Name(), err)
		}

		if base, ok := r.Get(profile.Name); ok {
			profile = MergeProfiles(base, profile)
		}
		r.Register(profile)
	}

	return nil
}

// MergeProfiles merges a custom profile over a base profile.
// Custom fields override base fields; custom rules run after base rules.
func MergeProfiles(base, custom *Profile) *Profile {
	merged := &Profile{
		Name:        custom.Name,
		Kind:        custom.Kind,
		Version:     custom.Version,
		Description: custom.Description,
		Fields:      make(map[string]FieldMapping),
		Options:     base.Options,
	}

	if merged.Name == "" {
		merged.Name = base.Name
	}
	if merged.Kind == "" {
		merged.Kind = base.Kind
	}
	if merged.Version == "" {
		merged.Version = base.Version
	}
	if merged.Description == "" {
		merged.Description = base.Description
	}

	// Copy base fields
	for k, v := range base.Fields {
		merged.Fields[k] = v
	}

	// Override with custom fields
	for k, v := range custom.Fields {
		merged.Fields[k] = v
	}

	merged.Rules = append(merged.Rules, base.Rules...)
	merged.Rules = append(merged.Rules, custom.Rules...)

	// Merge options
	if custom.Options.Provider != "" {
		merged.Options.Provider = custom.Options.Provider
	}
	if custom.Options.AnchorField != "" {
		merged.Options.AnchorField = custom.Options.AnchorField
	}
	if custom.Options.Rollover != "" {
		merged.Options.Rollover = custom.Options.Rollover
	}
	if len(custom.Options.Locales) > 0 {
		merged.Options.Locales = custom.Options.Locales
	}
	if custom.Options.Strict {
		merged.Options.Strict = true
	}
	if custom.Options.StripHTML {
		merged.Options.StripHTML = true
	}
	if len(custom.Options.Blacklist) > 0 {
		merged.Options.Blacklist = append(append([]string(nil), base.Options.Blacklist...), custom.Options.Blacklist...)
	}
	if len(custom.Options.Patterns) > 0 {
		merged.Options.Patterns = append(append([]string(nil), base.Options.Patterns...), custom.Options.Patterns...)
	}
	if custom.Options.Casing != "" {
		merged.Options.Casing = custom.Options.Casing
	}
	if custom.Options.DefaultUnit != "" {
		merged.Options.DefaultUnit = custom.Options.DefaultUnit
	}
	if custom.Options.MultiValueSeparator != "" {
		merged.Options.MultiValueSeparator = custom.Options.MultiValueSeparator
	}

	return merged
}

// MarshalYAML renders a profile as YAML for display.
func MarshalYAML(p *Profile) ([]byte, error) {
	return yaml.Marshal(p)
}
