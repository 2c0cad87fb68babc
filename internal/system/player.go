package system

import (
	"time"

	"github.com/greyengine/grey/internal/component"
	"github.com/greyengine/grey/internal/core/ecs"
	coresys "github.com/greyengine/grey/internal/core/system"
	"github.com/greyengine/grey/internal/input"
)

// PlayerControlSystem moves PlayerControlled entities along the input
// movement axis. Phase 1 (Update).
type PlayerControlSystem struct {
	world *ecs.World
	input *input.State
}

func NewPlayerControlSystem(world *ecs.World, in *input.State) *PlayerControlSystem {
	return &PlayerControlSystem{world: world, input: in}
}

func (s *PlayerControlSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *PlayerControlSystem) Update(dt time.Duration) error {
	axis := s.input.MovementAxis()
	if axis[0] == 0 && axis[1] == 0 {
		return nil
	}
	secs := float32(dt.Seconds())
	ecs.Each2(s.world, func(_ ecs.Entity, pc *component.PlayerControlled, tr *component.Transform2D) {
		tr.Position = tr.Position.Add(axis.Mul(pc.Speed * secs))
	})
	return nil
}
