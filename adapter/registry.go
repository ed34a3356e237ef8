package adapter

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/seaport-data/fixturewalk/mapping"
)

// Registry holds adapters by name.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
	}
}

// NewDefaultRegistry creates a registry with one adapter per embedded profile.
func NewDefaultRegistry() (*Registry, error) {
	profiles, err := mapping.NewProfileRegistry()
	if err != nil {
		return nil, err
	}
	return FromProfiles(profiles)
}

// FromProfiles creates a registry with one adapter per profile.
func FromProfiles(profiles *mapping.ProfileRegistry) (*Registry, error) {
	r := NewRegistry()
	for _, name := range profiles.List() {
		p, _ := profiles.Get(name)
		a, err := FromProfile(p)
		if err != nil {
			return nil, fmt.Errorf("adapter %s: %w", name, err)
		}
		r.Register(a)
	}
	return r, nil
}

// Register adds or replaces an adapter.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Name()] = a
}

// Get retrieves an adapter by name, ignoring case.
func (r *Registry) Get(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[strings.ToLower(name)]
	return a, ok
}

// Lookup retrieves an adapter by name or returns an error listing the
// available adapters.
func (r *Registry) Lookup(name string) (Adapter, error) {
	if a, ok := r.Get(name); ok {
		return a, nil
	}
	return nil, fmt.Errorf("unknown adapter %q (available: %s)", name, strings.Join(r.List(), ", "))
}

// List returns all registered adapter names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
