package system

import (
	"time"

	coresys "github.com/greyengine/grey/internal/core/system"
	"github.com/greyengine/grey/internal/input"
)

// InputSystem folds the platform events queued since the last frame into
// the shared input state. Phase 0 (Input).
type InputSystem struct {
	state *input.State
	queue []input.Event
}

func NewInputSystem(state *input.State) *InputSystem {
	return &InputSystem{state: state, queue: make([]input.Event, 0, 32)}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

// Push queues platform events for the next Update.
func (s *InputSystem) Push(events ...input.Event) {
	s.queue = append(s.queue, events...)
}

func (s *InputSystem) Update(_ time.Duration) error {
	s.state.BeginFrame()
	for _, ev := range s.queue {
		s.state.Apply(ev)
	}
	s.queue = s.queue[:0]
	return nil
}

// State returns the input state the system writes.
func (s *InputSystem) State() *input.State { return s.state }
