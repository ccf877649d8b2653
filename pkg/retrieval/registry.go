package retrieval

import (
	"sort"
	"sync"
)

// Registry holds named engines with explicit lifecycle. It replaces the
// implicit module-level singletons of earlier designs: the host constructs
// one Registry, threads it where needed, and closes it on shutdown.
type Registry struct {
	mu       sync.Mutex
	defaults []Option
	engines  map[string]*Engine
}

// NewRegistry creates a registry. The given options apply to every engine
// it opens, before any per-Open options.
func NewRegistry(defaults ...Option) *Registry {
	return &Registry{
		defaults: defaults,
		engines:  make(map[string]*Engine),
	}
}

// Open returns the engine named name, creating (and snapshot-restoring) it
// on first use.
func (r *Registry) Open(name string, opts ...Option) *Engine {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.engines[name]; ok {
		return e
	}
	combined := make([]Option, 0, len(r.defaults)+len(opts))
	combined = append(combined, r.defaults...)
	combined = append(combined, opts...)

	e := New(name, combined...)
	r.engines[name] = e
	return e
}

// Get returns the engine named name if it is open.
func (r *Registry) Get(name string) (*Engine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.engines[name]
	return e, ok
}

// Names returns the open engine names, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close closes and removes the engine named name. No-op if absent.
// Returns the engine's close error, if any.
func (r *Registry) Close(name string) error {
	r.mu.Lock()
	e, ok := r.engines[name]
	delete(r.engines, name)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	return e.Close()
}

// CloseAll closes every open engine, returning the first error encountered.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	engines := make([]*Engine, 0, len(r.engines))
	for _, e := range r.engines {
		engines = append(engines, e)
	}
	r.engines = make(map[string]*Engine)
	r.mu.Unlock()

	var first error
	for _, e := range engines {
		if err := e.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
