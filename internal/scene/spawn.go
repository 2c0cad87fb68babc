package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"

	"github.com/greyengine/grey/internal/asset"
	"github.com/greyengine/grey/internal/component"
	"github.com/greyengine/grey/internal/core/ecs"
	"github.com/greyengine/grey/internal/data"
	"github.com/greyengine/grey/internal/render"
)

// Spawn creates one entity per description, attaches its components and
// links parents. Texture names become handles through asset.HandleFor, so
// the textures may be loaded before or after spawning. It returns named
// entities by name.
func Spawn(w *ecs.World, g *Graph, desc *data.SceneDesc) (map[string]ecs.Entity, error) {
	named := make(map[string]ecs.Entity, len(desc.Entities))
	for i := range desc.Entities {
		d := &desc.Entities[i]
		label := d.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		e := w.CreateEntity()
		if err := spawnEntity(w, g, e, d, named); err != nil {
			err = multierr.Append(err, w.DestroyEntity(e))
			return named, fmt.Errorf("spawn %s: %w", label, err)
		}
		if d.Name != "" {
			named[d.Name] = e
		}
	}
	return named, nil
}

// spawnEntity fills in e. On error the caller destroys e, so nothing half
// built stays in the world.
func spawnEntity(w *ecs.World, g *Graph, e ecs.Entity, d *data.EntityDesc, named map[string]ecs.Entity) error {
	if err := spawnComponents(w, e, d); err != nil {
		return err
	}
	if d.Parent == "" {
		return nil
	}
	parent, ok := named[d.Parent]
	if !ok {
		return fmt.Errorf("unknown parent %q", d.Parent)
	}
	return g.Attach(e, parent)
}

func spawnComponents(w *ecs.World, e ecs.Entity, d *data.EntityDesc) error {
	if d.Name != "" {
		if err := ecs.Add(w, e, component.Name{Value: d.Name}); err != nil {
			return err
		}
	}
	if t := d.Transform; t != nil {
		pos, err := t.Position.Vec2(mgl32.Vec2{})
		if err != nil {
			return fmt.Errorf("transform position: %w", err)
		}
		scale, err := t.Scale.Vec2(mgl32.Vec2{1, 1})
		if err != nil {
			return fmt.Errorf("transform scale: %w", err)
		}
		if err := ecs.Add(w, e, component.Transform2D{Position: pos, Rotation: t.Rotation, Scale: scale}); err != nil {
			return err
		}
	}
	if t := d.Transform3D; t != nil {
		pos, err := t.Position.Vec3(mgl32.Vec3{})
		if err != nil {
			return fmt.Errorf("transform3d position: %w", err)
		}
		rot, err := t.Rotation.Vec3(mgl32.Vec3{})
		if err != nil {
			return fmt.Errorf("transform3d rotation: %w", err)
		}
		scale, err := t.Scale.Vec3(mgl32.Vec3{1, 1, 1})
		if err != nil {
			return fmt.Errorf("transform3d scale: %w", err)
		}
		if err := ecs.Add(w, e, component.Transform3D{Position: pos, Rotation: rot, Scale: scale}); err != nil {
			return err
		}
	}
	if s := d.Sprite; s != nil {
		sprite, err := spriteFrom(s)
		if err != nil {
			return err
		}
		if err := ecs.Add(w, e, sprite); err != nil {
			return err
		}
	}
	if m := d.Mesh; m != nil {
		mesh, err := meshFrom(m)
		if err != nil {
			return err
		}
		if err := ecs.Add(w, e, mesh); err != nil {
			return err
		}
	}
	if v := d.Velocity; v != nil {
		lin, err := v.Linear.Vec2(mgl32.Vec2{})
		if err != nil {
			return fmt.Errorf("velocity: %w", err)
		}
		if err := ecs.Add(w, e, component.Velocity2D{Linear: lin, Angular: v.Angular}); err != nil {
			return err
		}
	}
	if d.PlayerSpeed > 0 {
		if err := ecs.Add(w, e, component.PlayerControlled{Speed: d.PlayerSpeed}); err != nil {
			return err
		}
	}
	if d.Follow {
		if err := ecs.Add(w, e, component.CameraFollow{}); err != nil {
			return err
		}
	}
	return nil
}

func parseColor(s string) (render.Color, error) {
	if s == "" {
		return render.White, nil
	}
	return render.ParseColor(s)
}

func spriteFrom(s *data.SpriteDesc) (component.Sprite, error) {
	color, err := parseColor(s.Color)
	if err != nil {
		return component.Sprite{}, fmt.Errorf("sprite: %w", err)
	}
	size, err := s.Size.Vec2(mgl32.Vec2{1, 1})
	if err != nil {
		return component.Sprite{}, fmt.Errorf("sprite size: %w", err)
	}
	sprite := component.Sprite{Color: color, Size: size}
	if s.Texture != "" {
		sprite.Texture = asset.HandleFor(s.Texture)
	}
	switch len(s.UV) {
	case 0:
	case 4:
		sprite.UV = render.Rect{X: s.UV[0], Y: s.UV[1], W: s.UV[2], H: s.UV[3]}
	default:
		return component.Sprite{}, fmt.Errorf("sprite uv: want 4 numbers, got %d", len(s.UV))
	}
	if s.Opaque {
		sprite.Blend = render.BlendOpaque
	}
	return sprite, nil
}

func meshFrom(m *data.MeshDesc) (component.Mesh, error) {
	color, err := parseColor(m.Color)
	if err != nil {
		return component.Mesh{}, fmt.Errorf("mesh: %w", err)
	}
	size := m.Size
	if size <= 0 {
		size = 1
	}
	var mesh *render.Mesh3D
	switch m.Shape {
	case "cube", "":
		mesh = render.Cube(size, color)
	case "plane":
		mesh = render.Plane(size, color)
	default:
		return component.Mesh{}, fmt.Errorf("mesh: unknown shape %q", m.Shape)
	}
	return component.Mesh{Mesh: mesh}, nil
}

// ApplyCamera copies the scene's camera settings onto cam. Unset fields keep
// the camera's current values.
func ApplyCamera(cam *render.Camera, d data.CameraDesc) error {
	if cam.Projection() == render.Perspective {
		eye, err := d.Eye.Vec3(cam.Eye())
		if err != nil {
			return fmt.Errorf("camera eye: %w", err)
		}
		target, err := d.Target.Vec3(cam.Target())
		if err != nil {
			return fmt.Errorf("camera target: %w", err)
		}
		cam.LookAt(eye, target)
		return nil
	}
	pos, err := d.Position.Vec2(cam.Position())
	if err != nil {
		return fmt.Errorf("camera position: %w", err)
	}
	cam.SetPosition(pos)
	if d.Zoom > 0 {
		cam.SetZoom(d.Zoom)
	}
	if d.Rotation != 0 {
		cam.SetRotation(d.Rotation)
	}
	return nil
}
