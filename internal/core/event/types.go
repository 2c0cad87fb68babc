package event

import "github.com/greyengine/grey/internal/core/ecs"

// EntityDestroyed is emitted by CleanupSystem for every entity freed by the
// deferred destroy queue.
type EntityDestroyed struct {
	Entity ecs.Entity
}

// ViewportResized is emitted when the platform reports a new surface size.
type ViewportResized struct {
	Width  float32
	Height float32
}
