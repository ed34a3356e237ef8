package schema

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed schemas/*.yaml
var embeddedSchemas embed.FS

// Schema errors.
var (
	ErrInvalidSchema = errors.New("invalid schema")
	ErrUnknownSchema = errors.New("unknown schema")
)

// Registry holds schema definitions by record kind and validates records
// against them.
type Registry struct {
	mu         sync.RWMutex
	schemas    map[string]*Schema
	validators *ValidatorRegistry
}

// NewRegistry creates an empty schema registry using the default validators.
func NewRegistry() *Registry {
	return &Registry{
		schemas:    make(map[string]*Schema),
		validators: DefaultValidators(),
	}
}

// NewDefaultRegistry creates a registry with the embedded canonical schemas.
func NewDefaultRegistry() (*Registry, error) {
	r := NewRegistry()
	if err := r.LoadEmbedded(embeddedSchemas, "schemas"); err != nil {
		return nil, err
	}
	return r, nil
}

// WithValidators replaces the validator registry.
func (r *Registry) WithValidators(v *ValidatorRegistry) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators = v
	return r
}

// Register adds or replaces a schema.
func (r *Registry) Register(s *Schema) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[s.Name] = s
}

// Get retrieves a schema by record kind.
func (r *Registry) Get(name string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[name]
	return s, ok
}

// List returns the registered schema names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// =============================================================================
// YAML LOADING
// =============================================================================

// SchemaConfig is the top-level YAML format.
type SchemaConfig struct {
	Version string   `yaml:"version"`
	Schemas []Schema `yaml:"schemas"`
}

// LoadFromYAML loads schema definitions from YAML bytes.
func (r *Registry) LoadFromYAML(data []byte) error {
	var config SchemaConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	for i := range config.Schemas {
		s := &config.Schemas[i]
		if err := s.check(r.validators); err != nil {
			return err
		}
		r.Register(s)
	}
	return nil
}

// LoadFromPath loads schema definitions from a file or directory.
func (r *Registry) LoadFromPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if info.IsDir() {
		return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !isYAMLFile(p) {
				return nil
			}
			return r.loadFile(p)
		})
	}

	return r.loadFile(path)
}

// LoadEmbedded loads schema definitions from an embedded filesystem.
func (r *Registry) LoadEmbedded(fsys embed.FS, dir string) error {
	return fs.WalkDir(fsys, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAMLFile(path) {
			return nil
		}

		data, err := fsys.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if err := r.LoadFromYAML(data); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		return nil
	})
}

func (r *Registry) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := r.LoadFromYAML(data); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func isYAMLFile(path string) bool {
	return strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")
}
