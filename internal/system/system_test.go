package system

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/greyengine/grey/internal/asset"
	"github.com/greyengine/grey/internal/component"
	"github.com/greyengine/grey/internal/core/ecs"
	"github.com/greyengine/grey/internal/core/event"
	coresys "github.com/greyengine/grey/internal/core/system"
	"github.com/greyengine/grey/internal/gpu"
	"github.com/greyengine/grey/internal/input"
	"github.com/greyengine/grey/internal/render"
	"github.com/greyengine/grey/internal/scene"
)

const frame = 16 * time.Millisecond

type harness struct {
	world    *ecs.World
	bus      *event.Bus
	graph    *scene.Graph
	input    *InputSystem
	camera   *render.Camera
	rec      *gpu.Recorder
	pipes    *render.PipelineSet
	textures *asset.TextureTable
	renderer *render.Renderer
	render   *RenderSystem
	runner   *coresys.Runner
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := zap.NewNop()
	rec := gpu.NewRecorder()
	ps, err := render.NewPipelineSet(rec, render.EngineShader(), log)
	require.NoError(t, err)
	textures, err := asset.NewTextureTable(rec, ps.TextureLayout(), gpu.FilterNearest, log)
	require.NoError(t, err)
	r, err := render.NewRenderer(rec, ps, textures, 64, log)
	require.NoError(t, err)

	h := &harness{
		world:    ecs.NewWorld(),
		bus:      event.NewBus(),
		graph:    scene.NewGraph(),
		camera:   render.NewOrthographic(800, 600),
		rec:      rec,
		pipes:    ps,
		textures: textures,
		renderer: r,
		runner:   coresys.NewRunner(),
	}
	h.graph.Subscribe(h.bus)
	h.input = NewInputSystem(input.NewState())
	h.render = NewRenderSystem(h.world, r, h.camera, log)

	// Registered out of phase order on purpose; the runner sorts.
	h.runner.Register(NewCleanupSystem(h.world, h.bus))
	h.runner.Register(h.render)
	h.runner.Register(NewEventDispatchSystem(h.bus))
	h.runner.Register(h.input)
	h.runner.Register(NewPlayerControlSystem(h.world, h.input.State()))
	h.runner.Register(NewMovementSystem(h.world))
	h.runner.Register(NewHierarchySystem(h.world, h.graph))
	h.runner.Register(NewCameraSystem(h.world, h.camera, h.bus))
	return h
}

// tick runs one frame recording into the harness recorder and submits it.
func (h *harness) tick(t *testing.T, dt time.Duration) {
	t.Helper()
	h.render.SetPass(h.rec, render.Black)
	require.NoError(t, h.runner.Tick(dt))
	require.NoError(t, h.rec.Submit())
}

func (h *harness) spawn(t *testing.T, comps ...any) ecs.Entity {
	t.Helper()
	e := h.world.CreateEntity()
	for _, c := range comps {
		var err error
		switch c := c.(type) {
		case component.Transform2D:
			err = ecs.Add(h.world, e, c)
		case component.Sprite:
			err = ecs.Add(h.world, e, c)
		case component.Velocity2D:
			err = ecs.Add(h.world, e, c)
		case component.PlayerControlled:
			err = ecs.Add(h.world, e, c)
		case component.CameraFollow:
			err = ecs.Add(h.world, e, c)
		case component.Transform3D:
			err = ecs.Add(h.world, e, c)
		case component.Mesh:
			err = ecs.Add(h.world, e, c)
		default:
			t.Fatalf("unsupported component %T", c)
		}
		require.NoError(t, err)
	}
	return e
}

func TestRedSpriteIsOneColorBatch(t *testing.T) {
	h := newHarness(t)
	h.spawn(t,
		component.NewTransform2D(mgl32.Vec2{0, 0}),
		component.Sprite{Color: render.Red, Size: mgl32.Vec2{50, 50}},
	)

	h.tick(t, frame)

	draws := h.rec.Draws()
	require.Len(t, draws, 1)
	d := draws[0]
	require.Same(t, h.pipes.Pipeline(render.Pipeline2DColor, render.BlendAlpha), d.Pipeline)
	require.Equal(t, uint32(6), d.IndexCount)
	require.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, render.DecodeIndices(d.Indices))

	verts := render.DecodeVertices2D(d.Vertices)
	require.Len(t, verts, 4)
	want := []mgl32.Vec2{{-25, -25}, {25, -25}, {25, 25}, {-25, 25}}
	for i, v := range verts {
		require.True(t, v.Position.ApproxEqual(want[i]), "vertex %d at %v", i, v.Position)
		require.Equal(t, render.Red, v.Color)
	}
}

func TestSpritesBatchByMaterial(t *testing.T) {
	h := newHarness(t)
	a, err := h.textures.LoadSolid("a", render.White)
	require.NoError(t, err)
	b, err := h.textures.LoadSolid("b", render.White)
	require.NoError(t, err)
	for i, tex := range []render.TextureHandle{a, b, a, b, a} {
		h.spawn(t,
			component.NewTransform2D(mgl32.Vec2{float32(i) * 20, 0}),
			component.Sprite{Color: render.White, Size: mgl32.Vec2{10, 10}, Texture: tex},
		)
	}

	h.tick(t, frame)

	draws := h.rec.Draws()
	require.Len(t, draws, 2)
	require.Equal(t, uint32(18), draws[0].IndexCount)
	require.Equal(t, uint32(12), draws[1].IndexCount)
	for _, d := range draws {
		require.Same(t, h.pipes.Pipeline(render.Pipeline2DTextured, render.BlendAlpha), d.Pipeline)
	}
	ga, _ := h.textures.BindGroup(a)
	gb, _ := h.textures.BindGroup(b)
	require.Same(t, ga, draws[0].BindGroups[render.GroupTexture])
	require.Same(t, gb, draws[1].BindGroups[render.GroupTexture])
}

func TestMeshesDrawBeforeSprites(t *testing.T) {
	h := newHarness(t)
	h.spawn(t, component.NewTransform2D(mgl32.Vec2{}), component.Sprite{Color: render.Blue, Size: mgl32.Vec2{4, 4}})
	h.spawn(t, component.NewTransform3D(mgl32.Vec3{0, 0, -2}), component.Mesh{Mesh: render.Cube(1, render.Green)})

	h.tick(t, frame)

	draws := h.rec.Draws()
	require.Len(t, draws, 2)
	require.Same(t, h.pipes.Pipeline(render.Pipeline3DLit, render.BlendAlpha), draws[0].Pipeline)
	require.Equal(t, uint32(36), draws[0].IndexCount)
	require.Same(t, h.pipes.Pipeline(render.Pipeline2DColor, render.BlendAlpha), draws[1].Pipeline)

	verts := render.DecodeVertices3D(draws[0].Vertices)
	require.Len(t, verts, 24)
	for _, v := range verts {
		require.InDelta(t, -2, v.Position[2], 0.5+1e-5)
	}
}

func TestMovementIntegratesVelocity(t *testing.T) {
	h := newHarness(t)
	e := h.spawn(t,
		component.NewTransform2D(mgl32.Vec2{1, 1}),
		component.Velocity2D{Linear: mgl32.Vec2{10, -4}, Angular: 2},
	)

	require.NoError(t, NewMovementSystem(h.world).Update(500*time.Millisecond))

	tr, _ := ecs.Get[component.Transform2D](h.world, e)
	require.True(t, tr.Position.ApproxEqual(mgl32.Vec2{6, -1}), "got %v", tr.Position)
	require.InDelta(t, 1, tr.Rotation, 1e-6)
}

func TestPlayerMovesAlongInputAxis(t *testing.T) {
	h := newHarness(t)
	e := h.spawn(t, component.NewTransform2D(mgl32.Vec2{}), component.PlayerControlled{Speed: 100})

	h.input.Push(input.Event{Kind: input.EventKeyPressed, Key: input.KeyD})
	require.NoError(t, h.runner.TickPhase(coresys.PhaseInput, 0))
	require.NoError(t, h.runner.TickPhase(coresys.PhaseUpdate, 500*time.Millisecond))

	tr, _ := ecs.Get[component.Transform2D](h.world, e)
	require.True(t, tr.Position.ApproxEqual(mgl32.Vec2{50, 0}), "got %v", tr.Position)

	h.input.Push(input.Event{Kind: input.EventKeyReleased, Key: input.KeyD})
	require.NoError(t, h.runner.TickPhase(coresys.PhaseInput, 0))
	require.NoError(t, h.runner.TickPhase(coresys.PhaseUpdate, 500*time.Millisecond))
	require.True(t, tr.Position.ApproxEqual(mgl32.Vec2{50, 0}), "released key must stop movement")
}

func TestHierarchyComposesParents(t *testing.T) {
	h := newHarness(t)
	parent := h.spawn(t, component.Transform2D{Position: mgl32.Vec2{100, 0}, Scale: mgl32.Vec2{2, 2}})
	child := h.spawn(t, component.NewTransform2D(mgl32.Vec2{5, 0}))
	grandchild := h.spawn(t, component.NewTransform2D(mgl32.Vec2{0, 1}))
	require.NoError(t, h.graph.Attach(child, parent))
	require.NoError(t, h.graph.Attach(grandchild, child))

	require.NoError(t, h.runner.TickPhase(coresys.PhasePostUpdate, frame))

	g, ok := ecs.Get[component.GlobalTransform2D](h.world, grandchild)
	require.True(t, ok)
	require.True(t, g.Position.ApproxEqual(mgl32.Vec2{110, 2}), "got %v", g.Position)
	require.Equal(t, mgl32.Vec2{2, 2}, g.Scale)

	root, _ := ecs.Get[component.GlobalTransform2D](h.world, parent)
	require.Equal(t, mgl32.Vec2{100, 0}, root.Position)
}

func TestHierarchySkipsParentsWithoutTransform(t *testing.T) {
	h := newHarness(t)
	group := h.world.CreateEntity()
	child := h.spawn(t, component.NewTransform2D(mgl32.Vec2{3, 4}))
	require.NoError(t, h.graph.Attach(child, group))

	require.NoError(t, h.runner.TickPhase(coresys.PhasePostUpdate, frame))

	g, ok := ecs.Get[component.GlobalTransform2D](h.world, child)
	require.True(t, ok)
	require.Equal(t, mgl32.Vec2{3, 4}, g.Position)
}

func TestHierarchyDropsGlobalWhenTransformRemoved(t *testing.T) {
	h := newHarness(t)
	e := h.spawn(t,
		component.NewTransform2D(mgl32.Vec2{200, 100}),
		component.Sprite{Color: render.Red, Size: mgl32.Vec2{10, 10}},
	)
	h.tick(t, frame)
	require.True(t, ecs.Has[component.GlobalTransform2D](h.world, e))

	_, err := ecs.Remove[component.Transform2D](h.world, e)
	require.NoError(t, err)
	h.rec.Reset()
	h.tick(t, frame)

	require.False(t, ecs.Has[component.GlobalTransform2D](h.world, e))
	draws := h.rec.Draws()
	require.Len(t, draws, 1)
	verts := render.DecodeVertices2D(draws[0].Vertices)
	require.True(t, verts[0].Position.ApproxEqual(mgl32.Vec2{-5, -5}), "sprite drawn at %v", verts[0].Position)
}

func TestCameraFollowsAndResizes(t *testing.T) {
	h := newHarness(t)
	h.spawn(t, component.NewTransform2D(mgl32.Vec2{100, 50}), component.CameraFollow{Offset: mgl32.Vec2{0, 10}})
	event.Emit(h.bus, event.ViewportResized{Width: 1024, Height: 768})

	h.tick(t, frame)

	require.Equal(t, mgl32.Vec2{100, 60}, h.camera.Position())
	require.Equal(t, mgl32.Vec2{1024, 768}, h.camera.Viewport())
}

func TestCleanupAnnouncesDestroyedEntities(t *testing.T) {
	h := newHarness(t)
	parent := h.spawn(t, component.NewTransform2D(mgl32.Vec2{}))
	child := h.spawn(t, component.NewTransform2D(mgl32.Vec2{}))
	require.NoError(t, h.graph.Attach(child, parent))

	var destroyed []ecs.Entity
	event.Subscribe(h.bus, func(ev event.EntityDestroyed) { destroyed = append(destroyed, ev.Entity) })

	h.world.MarkForDestruction(parent)
	h.world.MarkForDestruction(parent)
	h.tick(t, frame)
	require.False(t, h.world.Alive(parent))
	require.Empty(t, destroyed, "events are readable the frame after emission")

	h.tick(t, frame)
	require.Equal(t, []ecs.Entity{parent}, destroyed)
	require.True(t, h.graph.IsRoot(child))
}

func TestFrameWithoutPassDrawsNothing(t *testing.T) {
	h := newHarness(t)
	h.spawn(t, component.NewTransform2D(mgl32.Vec2{}), component.Sprite{Color: render.Red, Size: mgl32.Vec2{1, 1}})

	require.NoError(t, h.runner.Tick(frame))
	require.Empty(t, h.rec.Draws())
}

func TestOverlayToggledByF3(t *testing.T) {
	h := newHarness(t)
	h.render.ToggleOverlayWith(h.input.State())

	h.input.Push(input.Event{Kind: input.EventKeyPressed, Key: input.KeyF3})
	h.tick(t, frame)
	require.True(t, h.render.Overlay())
	draws := h.rec.Draws()
	require.Len(t, draws, 1)
	require.Greater(t, draws[0].IndexCount, uint32(0))

	h.input.Push(input.Event{Kind: input.EventKeyReleased, Key: input.KeyF3})
	h.tick(t, frame)
	require.True(t, h.render.Overlay(), "release must not toggle")

	h.input.Push(input.Event{Kind: input.EventKeyPressed, Key: input.KeyF3})
	h.rec.Reset()
	h.tick(t, frame)
	require.False(t, h.render.Overlay())
	require.Empty(t, h.rec.Draws())
}

func TestOverlayReadsSharedFPS(t *testing.T) {
	h := newHarness(t)
	reads := 0
	h.render.SetOverlay(true)
	h.render.ReadFPSFrom(func() float64 {
		reads++
		return 42.4
	})
	h.tick(t, frame)
	require.Equal(t, 1, reads)
	draws := h.rec.Draws()
	require.Len(t, draws, 1)

	want := newHarness(t)
	require.NoError(t, want.renderer.BeginFrame(want.rec, want.camera.Uniform()))
	_, err := want.renderer.DrawText(want.camera.ScreenToWorld(mgl32.Vec2{10, 20}), "fps: 42", 1, render.Yellow)
	require.NoError(t, err)
	require.NoError(t, want.renderer.EndFrame())
	require.NoError(t, want.rec.Submit())
	require.Equal(t, want.rec.Draws()[0].Vertices, draws[0].Vertices)
}

func TestRenderClearsBeforeDrawing(t *testing.T) {
	h := newHarness(t)
	h.spawn(t, component.NewTransform2D(mgl32.Vec2{}), component.Sprite{Color: render.Red, Size: mgl32.Vec2{1, 1}})
	h.render.SetPass(h.rec, render.Color{R: 0.2, G: 0.4, B: 0.6, A: 1})
	require.NoError(t, h.runner.Tick(frame))
	require.NoError(t, h.rec.Submit())

	clearAt, drawAt := -1, -1
	for i, c := range h.rec.Commands() {
		switch {
		case c.Op == gpu.OpClear && clearAt < 0:
			clearAt = i
			require.Equal(t, [4]float32{0.2, 0.4, 0.6, 1}, c.Color)
		case c.Op == gpu.OpDrawIndexed && drawAt < 0:
			drawAt = i
		}
	}
	require.GreaterOrEqual(t, clearAt, 0)
	require.Less(t, clearAt, drawAt)
}

func TestRenderHookDrawsAfterScene(t *testing.T) {
	h := newHarness(t)
	h.spawn(t, component.NewTransform2D(mgl32.Vec2{}), component.Sprite{Color: render.Red, Size: mgl32.Vec2{2, 2}})
	h.render.SetHook(func(r *render.Renderer) error {
		return r.DrawQuad(mgl32.Vec2{5, 5}, mgl32.Vec2{1, 1}, 0, render.Green)
	})

	h.tick(t, frame)

	draws := h.rec.Draws()
	require.Len(t, draws, 1, "hook quads share the sprite batch")
	verts := render.DecodeVertices2D(draws[0].Vertices)
	require.Len(t, verts, 8)
	require.Equal(t, render.Red, verts[0].Color)
	require.Equal(t, render.Green, verts[4].Color)
}
