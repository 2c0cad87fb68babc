// Package scene keeps the parent/child relation between entities. The
// relation lives beside the ECS stores rather than in them; the hierarchy
// system reads it to compose transforms.
package scene

import (
	"errors"
	"fmt"
	"slices"

	"github.com/greyengine/grey/internal/core/ecs"
	"github.com/greyengine/grey/internal/core/event"
)

var (
	ErrCycle    = errors.New("attach would create a cycle")
	ErrNotFound = errors.New("entity has no parent")
)

// Graph is a forest of entities. Entities not in the graph are roots.
type Graph struct {
	parent   map[ecs.Entity]ecs.Entity
	children map[ecs.Entity][]ecs.Entity
}

func NewGraph() *Graph {
	return &Graph{
		parent:   make(map[ecs.Entity]ecs.Entity),
		children: make(map[ecs.Entity][]ecs.Entity),
	}
}

// Attach makes parent the parent of child, detaching child from any previous
// parent. Attaching an entity under itself or under one of its descendants
// fails with ErrCycle.
func (g *Graph) Attach(child, parent ecs.Entity) error {
	for a := parent; ; {
		if a == child {
			return fmt.Errorf("attach %d under %d: %w", child, parent, ErrCycle)
		}
		next, ok := g.parent[a]
		if !ok {
			break
		}
		a = next
	}
	if old, ok := g.parent[child]; ok {
		if old == parent {
			return nil
		}
		g.unlink(child, old)
	}
	g.parent[child] = parent
	g.children[parent] = append(g.children[parent], child)
	return nil
}

// Detach makes child a root again.
func (g *Graph) Detach(child ecs.Entity) error {
	p, ok := g.parent[child]
	if !ok {
		return fmt.Errorf("detach %d: %w", child, ErrNotFound)
	}
	g.unlink(child, p)
	return nil
}

func (g *Graph) unlink(child, parent ecs.Entity) {
	delete(g.parent, child)
	kids := g.children[parent]
	if i := slices.Index(kids, child); i >= 0 {
		kids = slices.Delete(kids, i, i+1)
	}
	if len(kids) == 0 {
		delete(g.children, parent)
	} else {
		g.children[parent] = kids
	}
}

// Remove drops e from the graph. Its children become roots.
func (g *Graph) Remove(e ecs.Entity) {
	if p, ok := g.parent[e]; ok {
		g.unlink(e, p)
	}
	for _, c := range g.children[e] {
		delete(g.parent, c)
	}
	delete(g.children, e)
}

// Parent returns e's parent.
func (g *Graph) Parent(e ecs.Entity) (ecs.Entity, bool) {
	p, ok := g.parent[e]
	return p, ok
}

// Children returns e's children in attach order. The slice must not be
// modified.
func (g *Graph) Children(e ecs.Entity) []ecs.Entity {
	return g.children[e]
}

// IsRoot reports whether e has no parent.
func (g *Graph) IsRoot(e ecs.Entity) bool {
	_, ok := g.parent[e]
	return !ok
}

// Len returns the number of parent links.
func (g *Graph) Len() int { return len(g.parent) }

// Walk visits e and then its descendants depth-first, parents before
// children. Returning false from fn skips that entity's subtree.
func (g *Graph) Walk(e ecs.Entity, fn func(e ecs.Entity) bool) {
	if !fn(e) {
		return
	}
	for _, c := range g.children[e] {
		g.Walk(c, fn)
	}
}

// Subscribe keeps the graph free of destroyed entities.
func (g *Graph) Subscribe(bus *event.Bus) {
	event.Subscribe(bus, func(ev event.EntityDestroyed) {
		g.Remove(ev.Entity)
	})
}
