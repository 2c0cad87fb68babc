package system

import (
	"time"

	"github.com/greyengine/grey/internal/core/ecs"
	"github.com/greyengine/grey/internal/core/event"
	coresys "github.com/greyengine/grey/internal/core/system"
)

// CleanupSystem flushes the deferred entity destruction queue at frame end
// and announces each destroyed entity. Phase 4 (Cleanup).
type CleanupSystem struct {
	world *ecs.World
	bus   *event.Bus
}

func NewCleanupSystem(world *ecs.World, bus *event.Bus) *CleanupSystem {
	return &CleanupSystem{world: world, bus: bus}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) error {
	for _, e := range s.world.FlushDestroyQueue() {
		event.Emit(s.bus, event.EntityDestroyed{Entity: e})
	}
	return nil
}
