package system

import (
	"time"

	"github.com/greyengine/grey/internal/component"
	"github.com/greyengine/grey/internal/core/ecs"
	coresys "github.com/greyengine/grey/internal/core/system"
)

// MovementSystem integrates Velocity2D into Transform2D. Phase 1 (Update).
type MovementSystem struct {
	world *ecs.World
}

func NewMovementSystem(world *ecs.World) *MovementSystem {
	return &MovementSystem{world: world}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MovementSystem) Update(dt time.Duration) error {
	secs := float32(dt.Seconds())
	ecs.Each2(s.world, func(_ ecs.Entity, v *component.Velocity2D, tr *component.Transform2D) {
		tr.Position = tr.Position.Add(v.Linear.Mul(secs))
		tr.Rotation += v.Angular * secs
	})
	return nil
}
