package dataset

import (
	"fmt"
	"sync"
)

// Registry is an ordered, name-keyed collection of datasets.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	byName map[string]Dataset
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Dataset)}
}

// Register adds ds. Names must be unique.
func (r *Registry) Register(ds Dataset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := ds.Name()
	if name == "" {
		return fmt.Errorf("dataset name is required")
	}
	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("dataset %q already registered", name)
	}
	r.byName[name] = ds
	r.order = append(r.order, name)
	return nil
}

// Lookup returns the dataset registered under name.
func (r *Registry) Lookup(name string) (Dataset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ds, ok := r.byName[name]
	return ds, ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// All returns the registered datasets in registration order.
func (r *Registry) All() []Dataset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Dataset, len(r.order))
	for i, name := range r.order {
		out[i] = r.byName[name]
	}
	return out
}
