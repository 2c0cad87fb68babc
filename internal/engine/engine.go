package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/greyengine/grey/internal/asset"
	"github.com/greyengine/grey/internal/config"
	"github.com/greyengine/grey/internal/core/ecs"
	"github.com/greyengine/grey/internal/core/event"
	coresys "github.com/greyengine/grey/internal/core/system"
	"github.com/greyengine/grey/internal/data"
	"github.com/greyengine/grey/internal/gpu"
	"github.com/greyengine/grey/internal/input"
	"github.com/greyengine/grey/internal/render"
	"github.com/greyengine/grey/internal/scene"
	"github.com/greyengine/grey/internal/system"
)

// Application is the game code driven by Run. Init runs once before the
// first frame; Update runs every frame in the update phase, after the
// built-in gameplay systems.
type Application interface {
	Init(e *Engine) error
	Update(e *Engine, dt time.Duration) error
}

// RenderHook is implemented by applications that draw directly with the
// renderer after the scene.
type RenderHook interface {
	Render(e *Engine, r *render.Renderer) error
}

// Engine wires the world, the renderer and the built-in systems around a
// Platform.
type Engine struct {
	cfg      *config.Config
	platform Platform
	log      *zap.Logger

	world     *ecs.World
	bus       *event.Bus
	graph     *scene.Graph
	input     *input.State
	camera    *render.Camera
	pipelines *render.PipelineSet
	textures  *asset.TextureTable
	renderer  *render.Renderer
	runner    *coresys.Runner
	time      Time

	inputSys  *system.InputSystem
	renderSys *system.RenderSystem

	viewport mgl32.Vec2
}

// New builds the GPU resources on the platform's device and registers the
// built-in systems.
func New(cfg *config.Config, platform Platform, log *zap.Logger) (*Engine, error) {
	device := platform.Device()
	pipelines, err := render.NewPipelineSet(device, render.EngineShader(), log)
	if err != nil {
		return nil, fmt.Errorf("pipelines: %w", err)
	}
	filter := gpu.FilterNearest
	if cfg.Render.TextureFilter == "linear" {
		filter = gpu.FilterLinear
	}
	textures, err := asset.NewTextureTable(device, pipelines.TextureLayout(), filter, log)
	if err != nil {
		return nil, fmt.Errorf("textures: %w", err)
	}
	renderer, err := render.NewRenderer(device, pipelines, textures, cfg.Render.MaxQuads, log)
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}

	e := &Engine{
		cfg:       cfg,
		platform:  platform,
		log:       log,
		world:     ecs.NewWorld(),
		bus:       event.NewBus(),
		graph:     scene.NewGraph(),
		input:     input.NewState(),
		camera:    newCamera(cfg),
		pipelines: pipelines,
		textures:  textures,
		renderer:  renderer,
		runner:    coresys.NewRunner(),
	}
	e.viewport = e.camera.Viewport()
	e.graph.Subscribe(e.bus)

	e.inputSys = system.NewInputSystem(e.input)
	e.renderSys = system.NewRenderSystem(e.world, renderer, e.camera, log)
	e.renderSys.SetOverlay(cfg.Debug.ShowFPS)
	e.renderSys.ToggleOverlayWith(e.input)
	e.renderSys.ReadFPSFrom(e.time.FPS)

	e.runner.Register(system.NewEventDispatchSystem(e.bus))
	e.runner.Register(e.inputSys)
	e.runner.Register(system.NewPlayerControlSystem(e.world, e.input))
	e.runner.Register(system.NewMovementSystem(e.world))
	e.runner.Register(system.NewHierarchySystem(e.world, e.graph))
	e.runner.Register(system.NewCameraSystem(e.world, e.camera, e.bus))
	e.runner.Register(e.renderSys)
	e.runner.Register(system.NewCleanupSystem(e.world, e.bus))
	return e, nil
}

func newCamera(cfg *config.Config) *render.Camera {
	w, h := float32(cfg.Window.Width), float32(cfg.Window.Height)
	if cfg.Camera.Mode == "3d" {
		eye := mgl32.Vec3{cfg.Camera.Eye[0], cfg.Camera.Eye[1], cfg.Camera.Eye[2]}
		target := mgl32.Vec3{cfg.Camera.Target[0], cfg.Camera.Target[1], cfg.Camera.Target[2]}
		cam := render.NewPerspective(w, h, eye, target)
		cam.SetFOV(mgl32.DegToRad(cfg.Camera.FOVDegrees))
		cam.SetClip(cfg.Camera.Near, cfg.Camera.Far)
		return cam
	}
	cam := render.NewOrthographic(w, h)
	if cfg.Camera.Zoom > 0 {
		cam.SetZoom(cfg.Camera.Zoom)
	}
	return cam
}

func (e *Engine) World() *ecs.World                  { return e.world }
func (e *Engine) Bus() *event.Bus                    { return e.bus }
func (e *Engine) Graph() *scene.Graph                { return e.graph }
func (e *Engine) Input() *input.State                { return e.input }
func (e *Engine) Camera() *render.Camera             { return e.camera }
func (e *Engine) Pipelines() *render.PipelineSet     { return e.pipelines }
func (e *Engine) Textures() *asset.TextureTable      { return e.textures }
func (e *Engine) Renderer() *render.Renderer         { return e.renderer }
func (e *Engine) Time() *Time                        { return &e.time }
func (e *Engine) Log() *zap.Logger                   { return e.log }
func (e *Engine) RenderSystem() *system.RenderSystem { return e.renderSys }

// AddSystem registers an extra system. Systems added before Run take part
// from the first frame.
func (e *Engine) AddSystem(s coresys.System) { e.runner.Register(s) }

// LoadTextures uploads every manifest entry. It returns the number loaded.
func (e *Engine) LoadTextures(m *data.TextureManifest) (int, error) {
	for _, t := range m.Entries() {
		if _, err := e.textures.Load(t.Name, t.Width, t.Height, t.Pixels()); err != nil {
			return 0, fmt.Errorf("load texture %s: %w", t.Name, err)
		}
	}
	return m.Count(), nil
}

// LoadScene spawns desc into the world and applies its camera settings.
func (e *Engine) LoadScene(desc *data.SceneDesc) (map[string]ecs.Entity, error) {
	named, err := scene.Spawn(e.world, e.graph, desc)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", desc.Name, err)
	}
	if err := scene.ApplyCamera(e.camera, desc.Camera); err != nil {
		return nil, fmt.Errorf("scene %s: %w", desc.Name, err)
	}
	return named, nil
}

// appSystem runs the application's Update in the update phase.
type appSystem struct {
	engine *Engine
	app    Application
}

func (s *appSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *appSystem) Update(dt time.Duration) error {
	return s.app.Update(s.engine, dt)
}

// Run drives frames until ctx is cancelled, the platform closes or
// loop.max_frames is reached. app may be nil.
func (e *Engine) Run(ctx context.Context, app Application) error {
	if app != nil {
		if err := app.Init(e); err != nil {
			return fmt.Errorf("init application: %w", err)
		}
		e.runner.Register(&appSystem{engine: e, app: app})
		if hook, ok := app.(RenderHook); ok {
			e.renderSys.SetHook(func(r *render.Renderer) error {
				return hook.Render(e, r)
			})
		}
	}
	e.log.Info("engine running",
		zap.String("title", e.cfg.Window.Title),
		zap.Stringer("camera", e.camera.Projection()),
		zap.Int("systems", e.runner.Len()),
		zap.String("shader", e.pipelines.Digest()[:12]),
	)

	for {
		if limit := e.cfg.Loop.MaxFrames; limit > 0 && e.time.Frames() >= uint64(limit) {
			e.log.Info("frame limit reached", zap.Uint64("frames", e.time.Frames()))
			return nil
		}
		f, err := e.platform.NextFrame(ctx)
		switch {
		case errors.Is(err, ErrClosed):
			e.log.Info("platform closed")
			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			e.log.Info("engine stopped", zap.Error(err))
			return nil
		case err != nil:
			return fmt.Errorf("next frame: %w", err)
		}
		if err := e.Step(f); err != nil {
			e.log.Error("frame failed", zap.Uint64("frame", e.time.Frames()), zap.Error(err))
			return err
		}
	}
}

// Step runs one frame: input, systems, render and present.
func (e *Engine) Step(f Frame) error {
	e.time.advance(f.Delta)
	if size := (mgl32.Vec2{f.Width, f.Height}); f.Width > 0 && f.Height > 0 && size != e.viewport {
		e.viewport = size
		event.Emit(e.bus, event.ViewportResized{Width: f.Width, Height: f.Height})
	}
	e.inputSys.Push(f.Events...)
	e.renderSys.SetPass(f.Pass, f.Clear)
	if err := e.runner.Tick(f.Delta); err != nil {
		return fmt.Errorf("frame %d: %w", e.time.Frames(), err)
	}
	if err := e.platform.Present(f); err != nil {
		return err
	}
	if e.time.Frames()%600 == 0 {
		st := e.renderer.Stats()
		e.log.Debug("frame stats",
			zap.Uint64("frame", e.time.Frames()),
			zap.Float64("fps", e.time.FPS()),
			zap.Int("draws", st.Draws),
			zap.Int("entities", e.world.EntityCount()),
		)
	}
	return nil
}
