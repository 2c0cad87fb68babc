package input

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func TestKeyEdgesLastOneFrame(t *testing.T) {
	s := NewState()
	s.BeginFrame()
	s.Apply(Event{Kind: EventKeyPressed, Key: KeyW})
	require.True(t, s.KeyDown(KeyW))
	require.True(t, s.KeyPressed(KeyW))

	s.BeginFrame()
	s.Apply(Event{Kind: EventKeyPressed, Key: KeyW}) // key repeat
	require.True(t, s.KeyDown(KeyW))
	require.False(t, s.KeyPressed(KeyW))

	s.BeginFrame()
	s.Apply(Event{Kind: EventKeyReleased, Key: KeyW})
	require.False(t, s.KeyDown(KeyW))
	require.True(t, s.KeyReleased(KeyW))

	s.BeginFrame()
	require.False(t, s.KeyReleased(KeyW))
}

func TestMovementAxis(t *testing.T) {
	s := NewState()
	require.Equal(t, mgl32.Vec2{}, s.MovementAxis())

	s.Apply(Event{Kind: EventKeyPressed, Key: KeyD})
	s.Apply(Event{Kind: EventKeyPressed, Key: KeyUp})
	axis := s.MovementAxis()
	require.InDelta(t, 1/math.Sqrt2, axis[0], 1e-6)
	require.InDelta(t, 1/math.Sqrt2, axis[1], 1e-6)

	s.Apply(Event{Kind: EventKeyPressed, Key: KeyLeft})
	require.Equal(t, mgl32.Vec2{0, 1}, s.MovementAxis(), "left and right cancel")
}

func TestMouseState(t *testing.T) {
	s := NewState()
	s.Apply(Event{Kind: EventMouseMoved, Position: mgl32.Vec2{10, 20}})
	s.BeginFrame()
	require.Equal(t, mgl32.Vec2{10, 20}, s.MouseDelta())

	s.Apply(Event{Kind: EventMousePressed, Button: MouseLeft})
	s.Apply(Event{Kind: EventScrolled, Delta: mgl32.Vec2{0, 1}})
	s.Apply(Event{Kind: EventScrolled, Delta: mgl32.Vec2{0, 2}})
	require.True(t, s.MousePressed(MouseLeft))
	require.True(t, s.MouseDown(MouseLeft))
	require.Equal(t, mgl32.Vec2{0, 3}, s.ScrollDelta())

	s.BeginFrame()
	require.Equal(t, mgl32.Vec2{}, s.MouseDelta())
	require.Equal(t, mgl32.Vec2{}, s.ScrollDelta())
	require.False(t, s.MousePressed(MouseLeft))
	require.True(t, s.MouseDown(MouseLeft))
}

func TestParseKey(t *testing.T) {
	k, err := ParseKey(" Space ")
	require.NoError(t, err)
	require.Equal(t, KeySpace, k)
	require.Equal(t, "space", k.String())

	_, err = ParseKey("unknown")
	require.Error(t, err)
	_, err = ParseKey("hyper")
	require.Error(t, err)
}
