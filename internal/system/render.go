package system

import (
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/greyengine/grey/internal/component"
	"github.com/greyengine/grey/internal/core/ecs"
	coresys "github.com/greyengine/grey/internal/core/system"
	"github.com/greyengine/grey/internal/gpu"
	"github.com/greyengine/grey/internal/input"
	"github.com/greyengine/grey/internal/render"
)

type spriteItem struct {
	position mgl32.Vec2
	size     mgl32.Vec2
	rotation float32
	color    render.Color
	uv       render.Rect
}

type meshItem struct {
	mesh  *render.Mesh3D
	model mgl32.Mat4
}

// RenderSystem draws every Mesh and Sprite through the batch renderer, then
// the optional FPS overlay. Draws are grouped by material so batches only
// break where the material changes. Phase 3 (Render).
//
// The platform hands the system a render pass and clear colour each frame
// with SetPass; a frame without a pass draws nothing.
type RenderSystem struct {
	world    *ecs.World
	renderer *render.Renderer
	camera   *render.Camera
	input    *input.State
	log      *zap.Logger

	pass    gpu.RenderPass
	clear   render.Color
	hook    func(r *render.Renderer) error
	sprites *render.DrawList[spriteItem]
	meshes  *render.DrawList[meshItem]

	overlay bool
	fps     func() float64
}

func NewRenderSystem(world *ecs.World, renderer *render.Renderer, camera *render.Camera, log *zap.Logger) *RenderSystem {
	return &RenderSystem{
		world:    world,
		renderer: renderer,
		camera:   camera,
		log:      log,
		sprites:  render.NewDrawList[spriteItem](),
		meshes:   render.NewDrawList[meshItem](),
	}
}

func (s *RenderSystem) Phase() coresys.Phase { return coresys.PhaseRender }

// SetPass sets the pass the next Update records into and the colour it is
// cleared to first.
func (s *RenderSystem) SetPass(pass gpu.RenderPass, clear render.Color) {
	s.pass = pass
	s.clear = clear
}

// SetHook registers fn to draw after the scene and before the overlay.
func (s *RenderSystem) SetHook(fn func(r *render.Renderer) error) { s.hook = fn }

// SetOverlay shows or hides the FPS overlay.
func (s *RenderSystem) SetOverlay(on bool) { s.overlay = on }

func (s *RenderSystem) Overlay() bool { return s.overlay }

// ToggleOverlayWith makes an F3 press in the given input state toggle the
// overlay.
func (s *RenderSystem) ToggleOverlayWith(in *input.State) { s.input = in }

// ReadFPSFrom sets where the overlay reads the frame rate from.
func (s *RenderSystem) ReadFPSFrom(fn func() float64) { s.fps = fn }

func (s *RenderSystem) Update(_ time.Duration) error {
	if s.input != nil && s.input.KeyPressed(input.KeyF3) {
		s.overlay = !s.overlay
		s.log.Debug("overlay toggled", zap.Bool("on", s.overlay))
	}
	if s.pass == nil {
		return nil
	}
	pass := s.pass
	s.pass = nil
	pass.Clear(s.clear.R, s.clear.G, s.clear.B, s.clear.A)

	if err := s.renderer.BeginFrame(pass, s.camera.Uniform()); err != nil {
		return err
	}
	err := s.draw()
	return multierr.Append(err, s.renderer.EndFrame())
}

func (s *RenderSystem) draw() error {
	s.meshes.Reset()
	for e, m := range ecs.Register[component.Mesh](s.world).All() {
		if m.Mesh == nil {
			continue
		}
		model := mgl32.Ident4()
		if t, ok := ecs.Get[component.Transform3D](s.world, e); ok {
			model = t.Matrix()
		}
		s.meshes.Push(m.Material, meshItem{mesh: m.Mesh, model: model})
	}
	err := s.meshes.Each(func(m render.Material, items []meshItem) error {
		for _, it := range items {
			if err := s.renderer.DrawMesh(it.mesh, it.model, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("draw meshes: %w", err)
	}

	s.sprites.Reset()
	for e, sp := range ecs.Register[component.Sprite](s.world).All() {
		tr, _ := worldTransform2D(s.world, e)
		s.sprites.Push(sp.Material(), spriteItem{
			position: tr.Position,
			size:     mgl32.Vec2{sp.Size[0] * tr.Scale[0], sp.Size[1] * tr.Scale[1]},
			rotation: tr.Rotation,
			color:    sp.Color,
			uv:       sp.UVRect(),
		})
	}
	err = s.sprites.Each(func(m render.Material, items []spriteItem) error {
		for _, it := range items {
			if err := s.renderer.DrawSprite(it.position, it.size, it.rotation, it.color, it.uv, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("draw sprites: %w", err)
	}

	if s.hook != nil {
		if err := s.hook(s.renderer); err != nil {
			return fmt.Errorf("render hook: %w", err)
		}
	}

	if s.overlay && s.camera.Projection() == render.Orthographic {
		scale := 1 / s.camera.Zoom()
		at := s.camera.ScreenToWorld(mgl32.Vec2{10, 20})
		var fps float64
		if s.fps != nil {
			fps = s.fps()
		}
		label := fmt.Sprintf("fps: %d", int(math.Round(fps)))
		if _, err := s.renderer.DrawText(at, label, scale, render.Yellow); err != nil {
			return fmt.Errorf("draw overlay: %w", err)
		}
	}
	return nil
}
