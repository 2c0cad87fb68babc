package system

import "time"

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhaseInput      Phase = iota // 0: swap event buffers, dispatch last frame's events
	PhaseUpdate                  // 1: gameplay (movement, app systems)
	PhasePostUpdate              // 2: hierarchy propagation, camera follow
	PhaseRender                  // 3: batch + submit draws
	PhaseCleanup                 // 4: destroy queued entities
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post_update"
	case PhaseRender:
		return "render"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every ECS system implements. Systems get their
// World, Camera or Renderer through their constructor, never from globals.
type System interface {
	Phase() Phase
	Update(dt time.Duration) error
}
