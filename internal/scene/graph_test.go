package scene

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/greyengine/grey/internal/core/ecs"
	"github.com/greyengine/grey/internal/core/event"
)

func TestAttachAndReparent(t *testing.T) {
	g := NewGraph()
	a, b, c := ecs.NewEntity(1, 0), ecs.NewEntity(2, 0), ecs.NewEntity(3, 0)

	require.NoError(t, g.Attach(b, a))
	require.NoError(t, g.Attach(c, a))
	require.Equal(t, []ecs.Entity{b, c}, g.Children(a))

	require.NoError(t, g.Attach(c, b))
	require.Equal(t, []ecs.Entity{b}, g.Children(a))
	require.Equal(t, []ecs.Entity{c}, g.Children(b))
	p, ok := g.Parent(c)
	require.True(t, ok)
	require.Equal(t, b, p)
	require.True(t, g.IsRoot(a))
	require.Equal(t, 2, g.Len())
}

func TestAttachRejectsCycles(t *testing.T) {
	g := NewGraph()
	a, b, c := ecs.NewEntity(1, 0), ecs.NewEntity(2, 0), ecs.NewEntity(3, 0)
	require.NoError(t, g.Attach(b, a))
	require.NoError(t, g.Attach(c, b))

	require.ErrorIs(t, g.Attach(a, c), ErrCycle)
	require.ErrorIs(t, g.Attach(a, a), ErrCycle)
	require.True(t, g.IsRoot(a), "failed attach leaves the graph unchanged")
}

func TestDetachAndRemove(t *testing.T) {
	g := NewGraph()
	a, b, c := ecs.NewEntity(1, 0), ecs.NewEntity(2, 0), ecs.NewEntity(3, 0)
	require.ErrorIs(t, g.Detach(a), ErrNotFound)

	require.NoError(t, g.Attach(b, a))
	require.NoError(t, g.Attach(c, b))
	g.Remove(b)
	require.True(t, g.IsRoot(c))
	require.Empty(t, g.Children(a))
	require.Zero(t, g.Len())
}

func TestWalkDepthFirst(t *testing.T) {
	g := NewGraph()
	e := func(i uint32) ecs.Entity { return ecs.NewEntity(i, 0) }
	require.NoError(t, g.Attach(e(2), e(1)))
	require.NoError(t, g.Attach(e(4), e(2)))
	require.NoError(t, g.Attach(e(3), e(1)))

	var order []uint32
	g.Walk(e(1), func(x ecs.Entity) bool {
		order = append(order, x.Index())
		return x != e(2)
	})
	require.Equal(t, []uint32{1, 2, 3}, order, "subtree of 2 skipped")
}

func TestDestroyedEntitiesLeaveGraph(t *testing.T) {
	g := NewGraph()
	bus := event.NewBus()
	g.Subscribe(bus)
	parent, child := ecs.NewEntity(1, 0), ecs.NewEntity(2, 0)
	require.NoError(t, g.Attach(child, parent))

	event.Emit(bus, event.EntityDestroyed{Entity: parent})
	bus.SwapBuffers()
	bus.DispatchAll()
	require.True(t, g.IsRoot(child))
	require.Empty(t, g.Children(parent))
}
