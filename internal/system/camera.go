package system

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/greyengine/grey/internal/component"
	"github.com/greyengine/grey/internal/core/ecs"
	"github.com/greyengine/grey/internal/core/event"
	coresys "github.com/greyengine/grey/internal/core/system"
	"github.com/greyengine/grey/internal/render"
)

// CameraSystem keeps the camera viewport in step with ViewportResized and
// centres a 2D camera on the first CameraFollow entity. Phase 2
// (PostUpdate), after the hierarchy.
type CameraSystem struct {
	world  *ecs.World
	camera *render.Camera
}

func NewCameraSystem(world *ecs.World, camera *render.Camera, bus *event.Bus) *CameraSystem {
	s := &CameraSystem{world: world, camera: camera}
	event.Subscribe(bus, func(ev event.ViewportResized) {
		s.camera.SetViewport(ev.Width, ev.Height)
	})
	return s
}

func (s *CameraSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *CameraSystem) Update(_ time.Duration) error {
	if s.camera.Projection() != render.Orthographic {
		return nil
	}
	for e, follow := range ecs.Register[component.CameraFollow](s.world).All() {
		tr, ok := worldTransform2D(s.world, e)
		if !ok {
			continue
		}
		s.camera.SetPosition(tr.Position.Add(follow.Offset))
		break
	}
	return nil
}

// worldTransform2D prefers the hierarchy's global placement over the local
// one.
func worldTransform2D(w *ecs.World, e ecs.Entity) (component.Transform2D, bool) {
	t, ok := ecs.Get[component.Transform2D](w, e)
	if !ok {
		return component.Transform2D{Scale: mgl32.Vec2{1, 1}}, false
	}
	if g, ok := ecs.Get[component.GlobalTransform2D](w, e); ok {
		return g.Transform2D, true
	}
	return *t, true
}
