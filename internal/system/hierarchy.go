package system

import (
	"time"

	"github.com/greyengine/grey/internal/component"
	"github.com/greyengine/grey/internal/core/ecs"
	coresys "github.com/greyengine/grey/internal/core/system"
	"github.com/greyengine/grey/internal/scene"
)

// HierarchySystem writes GlobalTransform2D for every entity with a
// Transform2D by composing it with its ancestors, and drops the
// GlobalTransform2D of entities that lost their Transform2D. Phase 2
// (PostUpdate).
type HierarchySystem struct {
	world *ecs.World
	graph *scene.Graph
	roots []ecs.Entity
	stale []ecs.Entity
}

func NewHierarchySystem(world *ecs.World, graph *scene.Graph) *HierarchySystem {
	return &HierarchySystem{world: world, graph: graph}
}

func (s *HierarchySystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *HierarchySystem) Update(_ time.Duration) error {
	globals := ecs.Register[component.GlobalTransform2D](s.world)
	s.stale = s.stale[:0]
	for e := range globals.All() {
		if !ecs.Has[component.Transform2D](s.world, e) {
			s.stale = append(s.stale, e)
		}
	}
	for _, e := range s.stale {
		if _, err := globals.Remove(e); err != nil {
			return err
		}
	}

	s.roots = s.roots[:0]
	for e := range ecs.Query1[component.Transform2D](s.world) {
		if p, ok := s.graph.Parent(e); ok && ecs.Has[component.Transform2D](s.world, p) {
			continue
		}
		s.roots = append(s.roots, e)
	}

	var err error
	for _, root := range s.roots {
		s.graph.Walk(root, func(e ecs.Entity) bool {
			local, ok := ecs.Get[component.Transform2D](s.world, e)
			if !ok {
				return false
			}
			global := *local
			if p, ok := s.graph.Parent(e); ok && e != root {
				if pg, ok := ecs.Get[component.GlobalTransform2D](s.world, p); ok {
					global = pg.Compose(*local)
				}
			}
			if err = ecs.Set(s.world, e, component.GlobalTransform2D{Transform2D: global}); err != nil {
				return false
			}
			return true
		})
		if err != nil {
			return err
		}
	}
	return nil
}
