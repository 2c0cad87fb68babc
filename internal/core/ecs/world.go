package ecs

import (
	"fmt"
	"reflect"
)

// World is the top-level ECS container. It owns the entity pool, the component
// registry, and a deferred destruction queue flushed by CleanupSystem each frame.
type World struct {
	pool         *EntityPool
	registry     *Registry
	destroyQueue []Entity
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		destroyQueue: make([]Entity, 0, 64),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() Entity {
	return w.pool.Create()
}

func (w *World) Alive(e Entity) bool {
	return w.pool.Alive(e)
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int {
	return w.pool.Len()
}

// DestroyEntity removes every component of e and frees its slot. It fails
// without side effects if e is stale or one of its stores is being iterated.
func (w *World) DestroyEntity(e Entity) error {
	if !w.pool.Alive(e) {
		return fmt.Errorf("destroy: %w", ErrStaleEntity)
	}
	if err := w.registry.RemoveAll(e); err != nil {
		return err
	}
	w.pool.Destroy(e)
	return nil
}

// MarkForDestruction queues an entity for end-of-frame cleanup. Systems use
// it to destroy entities they are iterating over.
func (w *World) MarkForDestruction(e Entity) {
	w.destroyQueue = append(w.destroyQueue, e)
}

// FlushDestroyQueue destroys all queued entities and clears their components.
// Called by CleanupSystem at the end of each frame. Returns the entities that
// were actually destroyed; duplicates and stale handles are skipped.
func (w *World) FlushDestroyQueue() []Entity {
	if len(w.destroyQueue) == 0 {
		return nil
	}
	destroyed := make([]Entity, 0, len(w.destroyQueue))
	for _, e := range w.destroyQueue {
		if err := w.DestroyEntity(e); err == nil {
			destroyed = append(destroyed, e)
		}
	}
	w.destroyQueue = w.destroyQueue[:0]
	return destroyed
}

// Register returns the store for T, creating and registering it on first use.
func Register[T any](w *World) *Store[T] {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if s, ok := w.registry.Lookup(t); ok {
		return s.(*Store[T])
	}
	return w.registry.Register(t, NewStore[T](w.pool)).(*Store[T])
}

// Add attaches v to e. See Store.Add.
func Add[T any](w *World, e Entity, v T) error {
	return Register[T](w).Add(e, v)
}

// Set overwrites or inserts e's T component.
func Set[T any](w *World, e Entity, v T) error {
	return Register[T](w).Set(e, v)
}

// Get returns e's T component for reading or in-place mutation.
func Get[T any](w *World, e Entity) (*T, bool) {
	return Register[T](w).Get(e)
}

func Has[T any](w *World, e Entity) bool {
	return Register[T](w).Has(e)
}

// Remove detaches and returns e's T component.
func Remove[T any](w *World, e Entity) (T, error) {
	return Register[T](w).Remove(e)
}
