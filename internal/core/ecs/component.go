package ecs

import (
	"fmt"
	"iter"
	"reflect"
)

// Storage is the type-erased view of a Store used by the Registry for bulk
// cleanup and by World.Query for intersection.
type Storage interface {
	Name() string
	Len() int
	Has(e Entity) bool
	Discard(e Entity) error
	Iterating() bool

	entityAt(i int) Entity
	acquire()
	release()
}

// Store is a sparse-set component store. Components live densely packed in
// insertion order; sparse maps an entity index to its dense slot.
//
// Pointers returned by Get or yielded by All stay valid until the next
// structural change (Add, Remove, Discard, Clear) to the same store.
type Store[T any] struct {
	name     string
	pool     *EntityPool
	dense    []T
	entities []Entity // dense slot -> owner
	sparse   []int32  // entity index -> dense slot, -1 when absent

	iterating int
}

// NewStore creates a store whose writes are validated against pool. A nil
// pool disables liveness checks.
func NewStore[T any](pool *EntityPool) *Store[T] {
	return &Store[T]{
		name:     reflect.TypeOf((*T)(nil)).Elem().String(),
		pool:     pool,
		dense:    make([]T, 0, 256),
		entities: make([]Entity, 0, 256),
	}
}

func (s *Store[T]) Name() string { return s.name }

func (s *Store[T]) Len() int { return len(s.dense) }

func (s *Store[T]) slot(e Entity) (int, bool) {
	idx := e.Index()
	if int(idx) >= len(s.sparse) {
		return 0, false
	}
	slot := s.sparse[idx]
	if slot < 0 || s.entities[slot] != e {
		return 0, false
	}
	return int(slot), true
}

func (s *Store[T]) alive(e Entity) bool {
	return s.pool == nil || s.pool.Alive(e)
}

func (s *Store[T]) Has(e Entity) bool {
	if !s.alive(e) {
		return false
	}
	_, ok := s.slot(e)
	return ok
}

// Get returns a pointer to e's component for in-place mutation.
func (s *Store[T]) Get(e Entity) (*T, bool) {
	if !s.alive(e) {
		return nil, false
	}
	slot, ok := s.slot(e)
	if !ok {
		return nil, false
	}
	return &s.dense[slot], true
}

// Add appends v for e. It never overwrites; use Set for that.
func (s *Store[T]) Add(e Entity, v T) error {
	if !s.alive(e) {
		return fmt.Errorf("add %s: %w", s.name, ErrStaleEntity)
	}
	if _, ok := s.slot(e); ok {
		return fmt.Errorf("add %s: %w", s.name, ErrDuplicateComponent)
	}
	if s.iterating > 0 {
		return fmt.Errorf("add %s: %w", s.name, ErrStructuralMutation)
	}
	idx := int(e.Index())
	for len(s.sparse) <= idx {
		s.sparse = append(s.sparse, -1)
	}
	s.sparse[idx] = int32(len(s.dense))
	s.dense = append(s.dense, v)
	s.entities = append(s.entities, e)
	return nil
}

// Set overwrites e's component in place, or adds it when absent.
func (s *Store[T]) Set(e Entity, v T) error {
	if !s.alive(e) {
		return fmt.Errorf("set %s: %w", s.name, ErrStaleEntity)
	}
	if slot, ok := s.slot(e); ok {
		s.dense[slot] = v
		return nil
	}
	return s.Add(e, v)
}

// Remove deletes e's component by moving the last element into its slot.
func (s *Store[T]) Remove(e Entity) (T, error) {
	var zero T
	if !s.alive(e) {
		return zero, fmt.Errorf("remove %s: %w", s.name, ErrStaleEntity)
	}
	slot, ok := s.slot(e)
	if !ok {
		return zero, fmt.Errorf("remove %s: %w", s.name, ErrComponentNotFound)
	}
	if s.iterating > 0 {
		return zero, fmt.Errorf("remove %s: %w", s.name, ErrStructuralMutation)
	}
	return s.swapRemove(slot), nil
}

// Discard removes e's component without the liveness check. The World uses
// it while tearing down an entity whose slot is about to be freed.
func (s *Store[T]) Discard(e Entity) error {
	slot, ok := s.slot(e)
	if !ok {
		return nil
	}
	if s.iterating > 0 {
		return fmt.Errorf("discard %s: %w", s.name, ErrStructuralMutation)
	}
	s.swapRemove(slot)
	return nil
}

func (s *Store[T]) swapRemove(slot int) T {
	removed := s.dense[slot]
	gone := s.entities[slot]
	last := len(s.dense) - 1

	if slot != last {
		moved := s.entities[last]
		s.dense[slot] = s.dense[last]
		s.entities[slot] = moved
		s.sparse[moved.Index()] = int32(slot)
	}

	var zero T
	s.dense[last] = zero
	s.dense = s.dense[:last]
	s.entities = s.entities[:last]
	s.sparse[gone.Index()] = -1
	return removed
}

// Clear drops every component.
func (s *Store[T]) Clear() error {
	if s.iterating > 0 {
		return fmt.Errorf("clear %s: %w", s.name, ErrStructuralMutation)
	}
	clear(s.dense)
	s.dense = s.dense[:0]
	s.entities = s.entities[:0]
	for i := range s.sparse {
		s.sparse[i] = -1
	}
	return nil
}

// All yields every (entity, component) pair in dense order. The store
// rejects Add/Remove until the sequence returns.
func (s *Store[T]) All() iter.Seq2[Entity, *T] {
	return func(yield func(Entity, *T) bool) {
		s.acquire()
		defer s.release()
		for i := 0; i < len(s.dense); i++ {
			if !yield(s.entities[i], &s.dense[i]) {
				return
			}
		}
	}
}

// Entities returns a copy of the dense owner list.
func (s *Store[T]) Entities() []Entity {
	out := make([]Entity, len(s.entities))
	copy(out, s.entities)
	return out
}

// Iterating reports whether a sequence over this store is in flight.
func (s *Store[T]) Iterating() bool { return s.iterating > 0 }

func (s *Store[T]) entityAt(i int) Entity { return s.entities[i] }
func (s *Store[T]) acquire()              { s.iterating++ }
func (s *Store[T]) release()              { s.iterating-- }
