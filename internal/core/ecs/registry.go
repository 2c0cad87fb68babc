package ecs

import (
	"fmt"
	"reflect"
)

// Registry tracks all component stores by component type and supports bulk
// cleanup on entity destroy. Registration order is kept for deterministic
// teardown.
type Registry struct {
	byType map[reflect.Type]Storage
	stores []Storage
}

func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[reflect.Type]Storage, 16),
		stores: make([]Storage, 0, 16),
	}
}

// Register adds a component store under type t. Registering a type twice
// keeps the first store.
func (r *Registry) Register(t reflect.Type, store Storage) Storage {
	if existing, ok := r.byType[t]; ok {
		return existing
	}
	r.byType[t] = store
	r.stores = append(r.stores, store)
	return store
}

// Lookup returns the store registered for t.
func (r *Registry) Lookup(t reflect.Type) (Storage, bool) {
	s, ok := r.byType[t]
	return s, ok
}

// Stores returns the registered stores in registration order.
func (r *Registry) Stores() []Storage { return r.stores }

// CanRemoveAll reports ErrStructuralMutation if any store holding e is
// currently being iterated.
func (r *Registry) CanRemoveAll(e Entity) error {
	for _, s := range r.stores {
		if s.Iterating() && s.Has(e) {
			return fmt.Errorf("destroy entity in %s: %w", s.Name(), ErrStructuralMutation)
		}
	}
	return nil
}

// RemoveAll clears the given entity from every registered component store.
func (r *Registry) RemoveAll(e Entity) error {
	if err := r.CanRemoveAll(e); err != nil {
		return err
	}
	for _, s := range r.stores {
		if err := s.Discard(e); err != nil {
			return err
		}
	}
	return nil
}
