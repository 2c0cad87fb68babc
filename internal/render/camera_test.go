package render

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

const eps = 1e-5

func clipXY(t *testing.T, c *Camera, x, y float32) mgl32.Vec2 {
	t.Helper()
	v := c.ViewProj().Mul4x1(mgl32.Vec4{x, y, 0, 1})
	require.InDelta(t, 1, v[3], eps, "orthographic w stays 1")
	return mgl32.Vec2{v[0], v[1]}
}

func TestOrthographicMapsViewportToClip(t *testing.T) {
	c := NewOrthographic(800, 600)

	cases := []struct {
		world mgl32.Vec2
		clip  mgl32.Vec2
	}{
		{mgl32.Vec2{400, 300}, mgl32.Vec2{1, 1}},
		{mgl32.Vec2{-400, -300}, mgl32.Vec2{-1, -1}},
		{mgl32.Vec2{0, 0}, mgl32.Vec2{0, 0}},
		{mgl32.Vec2{0, 150}, mgl32.Vec2{0, 0.5}},
	}
	for _, tc := range cases {
		got := clipXY(t, c, tc.world[0], tc.world[1])
		require.True(t, got.ApproxEqualThreshold(tc.clip, eps), "world %v: got %v want %v", tc.world, got, tc.clip)
	}
}

func TestOrthographicZoomAndPosition(t *testing.T) {
	c := NewOrthographic(800, 600)
	c.SetPosition(mgl32.Vec2{100, 0})
	c.SetZoom(2)

	got := clipXY(t, c, 300, 0)
	require.InDelta(t, 1, got[0], eps)
	got = clipXY(t, c, 100, 150)
	require.InDelta(t, 0, got[0], eps)
	require.InDelta(t, 1, got[1], eps)
}

func TestOrthographicRotationRollsWorld(t *testing.T) {
	c := NewOrthographic(800, 600)
	c.SetRotation(math.Pi / 2)

	// Rolling the camera a quarter turn left brings world +Y to screen +X.
	got := clipXY(t, c, 0, 100)
	require.InDelta(t, 0.25, got[0], eps)
	require.InDelta(t, 0, got[1], eps)
}

func TestViewProjRecomputedOnlyWhenDirty(t *testing.T) {
	c := NewOrthographic(800, 600)
	require.True(t, c.Dirty())

	first := c.ViewProj()
	_ = c.ViewProj()
	require.Equal(t, 1, c.Recomputes())
	require.False(t, c.Dirty())

	c.SetZoom(2)
	require.True(t, c.Dirty())
	second := c.ViewProj()
	require.Equal(t, 2, c.Recomputes())
	require.NotEqual(t, first, second)

	c.SetViewport(0, 600)
	require.False(t, c.Dirty(), "invalid viewport is ignored")
}

func TestZoomIsClampedPositive(t *testing.T) {
	c := NewOrthographic(800, 600)
	c.SetZoom(0)
	require.Greater(t, c.Zoom(), float32(0))
}

func TestScreenWorldRoundTrip(t *testing.T) {
	c := NewOrthographic(800, 600)
	c.SetPosition(mgl32.Vec2{50, -20})

	topLeft := c.ScreenToWorld(mgl32.Vec2{0, 0})
	require.True(t, topLeft.ApproxEqualThreshold(mgl32.Vec2{-350, 280}, 1e-3), "got %v", topLeft)

	for _, p := range []mgl32.Vec2{{0, 0}, {123, 456}, {800, 600}} {
		back := c.WorldToScreen(c.ScreenToWorld(p))
		require.True(t, back.ApproxEqualThreshold(p, 1e-2), "screen %v round-tripped to %v", p, back)
	}
}

func TestPerspectiveCamera(t *testing.T) {
	c := NewPerspective(1280, 720, mgl32.Vec3{0, 0, 5}, mgl32.Vec3{})
	require.Equal(t, Perspective, c.Projection())

	v := c.ViewProj().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	ndc := v.Vec3().Mul(1 / v[3])
	require.InDelta(t, 0, ndc[0], eps)
	require.InDelta(t, 0, ndc[1], eps)
	require.True(t, ndc[2] > 0 && ndc[2] < 1, "depth %v within [0,1]", ndc[2])

	require.True(t, c.Forward().ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, eps))
	require.True(t, c.Right().ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, eps))
}

func TestCameraUniformBytes(t *testing.T) {
	c := NewOrthographic(800, 600)
	u := c.Uniform()
	b := u.Bytes()
	require.Len(t, b, CameraUniformSize)
	require.Equal(t, u.ViewProj[0], readFloat(b, 0))
	require.Equal(t, u.ViewProj[15], readFloat(b, 60))
}
