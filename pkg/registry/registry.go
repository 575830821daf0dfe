// Package registry maps module type names to factory functions, adapted
// from pkg/param.Registry's map+mutex+order pattern to string keys and
// Factory values: a static, link-time table of constructors rather than
// per-module dynamic libraries loaded at runtime.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/halvorsen-audio/patchrack/pkg/module"
)

// Registry resolves module type names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]module.Factory
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{factories: make(map[string]module.Factory)}
}

// global is the process-wide default registry concrete module packages
// register themselves into via init().
var global = New()

// Global returns the process-wide registry.
func Global() *Registry { return global }

// Register adds a factory under a type name. Re-registering the same
// name replaces the previous factory (useful for tests).
func (r *Registry) Register(typeName string, factory module.Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[typeName] = factory
}

// Create instantiates a module of typeName with the given alias, config
// string, and sample rate.
func (r *Registry) Create(typeName, alias, config string, sampleRate float64) (module.Module, error) {
	r.mu.RLock()
	factory, ok := r.factories[typeName]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("registry: unknown module type %q", typeName)
	}
	return factory(alias, config, sampleRate)
}

// Has reports whether a type name is registered.
func (r *Registry) Has(typeName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[typeName]
	return ok
}

// TypeNames returns the registered type names, sorted, for diagnostics
// and --list-modules style tooling.
func (r *Registry) TypeNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register is a convenience for registering into the global registry,
// the form module packages call from init().
func Register(typeName string, factory module.Factory) {
	global.Register(typeName, factory)
}
