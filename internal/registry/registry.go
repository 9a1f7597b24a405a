// Package registry holds the authoritative per-plugin state: one Record
// per discovered plugin, keyed by its unique name.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hoistdev/hoist/api"
	"github.com/hoistdev/hoist/internal/dynlib"
)

// DepStatus is the memoized result of dependency checking. DepUnknown
// means "not yet computed" and is distinct from a negative result.
// DepChecking marks a record whose check is still on the stack, so a
// cyclic dependency terminates instead of recursing forever.
type DepStatus uint8

const (
	DepUnknown DepStatus = iota
	DepSatisfied
	DepUnsatisfied
	DepChecking
)

func (s DepStatus) String() string {
	switch s {
	case DepSatisfied:
		return "satisfied"
	case DepUnsatisfied:
		return "unsatisfied"
	case DepChecking:
		return "checking"
	}
	return "unknown"
}

// Record owns one discovered plugin: its library handle, parsed metadata,
// source path, and, once loaded, its live instance. A record never holds a
// live instance with a closed handle.
type Record struct {
	Path string
	Lib  dynlib.Library
	Meta api.Metadata

	// DepStatus memoizes dependency checking for one load pass; DepErr
	// holds the failure behind a DepUnsatisfied result.
	DepStatus DepStatus
	DepErr    error
	// GraphID is the record's node index, valid only during one pass.
	GraphID int

	// Instance is the live plugin object, nil until loaded.
	Instance api.Plugin
}

// Loaded reports whether the record holds a live plugin instance.
func (r *Record) Loaded() bool { return r.Instance != nil }

// Registry maps plugin names to records. All access goes through the
// mutex: request routing reads the registry from inside plugin lifecycle
// callbacks while a load pass is underway.
type Registry struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{records: make(map[string]*Record)}
}

// Register adds a record under its metadata name. This is the only place
// plugin-name uniqueness is enforced.
func (r *Registry) Register(rec *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := rec.Meta.Name
	if _, exists := r.records[name]; exists {
		return fmt.Errorf("plugin name already exists: %s", name)
	}
	rec.GraphID = -1
	r.records[name] = rec
	return nil
}

// Get returns the record for name, or nil.
func (r *Registry) Get(name string) *Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.records[name]
}

// Names returns all registered plugin names, sorted for deterministic
// iteration.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.records))
	for name := range r.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Remove drops the record for name. Removing an absent name is a no-op.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, name)
}

// SetInstance publishes the live instance for name.
func (r *Registry) SetInstance(name string, p api.Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec := r.records[name]; rec != nil {
		rec.Instance = p
	}
}

// ResetPass clears the per-pass flags (dependency status and graph index)
// on every record, so a new load pass recomputes them from scratch.
func (r *Registry) ResetPass() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		rec.DepStatus = DepUnknown
		rec.DepErr = nil
		rec.GraphID = -1
	}
}
