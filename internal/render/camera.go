package render

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Projection selects how a Camera maps view space to clip space.
type Projection int

const (
	Orthographic Projection = iota
	Perspective
)

func (p Projection) String() string {
	if p == Perspective {
		return "perspective"
	}
	return "orthographic"
}

const minZoom = 1e-4

// depthRemap maps OpenGL clip depth [-w, w] to WebGPU's [0, w].
var depthRemap = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// CameraUniform is the 64-byte block bound at group 0 binding 0.
type CameraUniform struct {
	ViewProj mgl32.Mat4
}

const CameraUniformSize = 64

// Bytes packs the matrix column-major, little-endian.
func (u CameraUniform) Bytes() []byte {
	b := make([]byte, 0, CameraUniformSize)
	for _, f := range u.ViewProj {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
	}
	return b
}

// Camera produces the view-projection matrix shared by every pipeline.
// Setters mark the matrix dirty; ViewProj recomputes it on demand.
type Camera struct {
	projection Projection
	viewport   mgl32.Vec2

	// orthographic
	position mgl32.Vec2
	zoom     float32
	rotation float32

	// perspective
	eye    mgl32.Vec3
	target mgl32.Vec3
	up     mgl32.Vec3
	fovY   float32
	near   float32
	far    float32

	dirty      bool
	viewProj   mgl32.Mat4
	recomputes int
}

// NewOrthographic returns a 2D camera centred on the origin whose visible
// extents equal the viewport in world units at zoom 1.
func NewOrthographic(width, height float32) *Camera {
	return &Camera{
		projection: Orthographic,
		viewport:   mgl32.Vec2{width, height},
		zoom:       1,
		up:         mgl32.Vec3{0, 1, 0},
		dirty:      true,
	}
}

// NewPerspective returns a 3D camera at eye looking at target with a 60
// degree vertical field of view.
func NewPerspective(width, height float32, eye, target mgl32.Vec3) *Camera {
	return &Camera{
		projection: Perspective,
		viewport:   mgl32.Vec2{width, height},
		zoom:       1,
		eye:        eye,
		target:     target,
		up:         mgl32.Vec3{0, 1, 0},
		fovY:       mgl32.DegToRad(60),
		near:       0.1,
		far:        1000,
		dirty:      true,
	}
}

func (c *Camera) Projection() Projection { return c.projection }
func (c *Camera) Viewport() mgl32.Vec2   { return c.viewport }
func (c *Camera) Position() mgl32.Vec2   { return c.position }
func (c *Camera) Zoom() float32          { return c.zoom }
func (c *Camera) Rotation() float32      { return c.rotation }
func (c *Camera) Eye() mgl32.Vec3        { return c.eye }
func (c *Camera) Target() mgl32.Vec3     { return c.target }

// SetViewport updates the extents (orthographic) or aspect ratio (perspective).
// Non-positive sizes are ignored.
func (c *Camera) SetViewport(width, height float32) {
	if width <= 0 || height <= 0 {
		return
	}
	c.viewport = mgl32.Vec2{width, height}
	c.dirty = true
}

func (c *Camera) SetPosition(p mgl32.Vec2) {
	c.position = p
	c.dirty = true
}

func (c *Camera) Translate(d mgl32.Vec2) {
	c.position = c.position.Add(d)
	c.dirty = true
}

// SetZoom scales the visible area; values above 1 zoom in.
func (c *Camera) SetZoom(z float32) {
	c.zoom = max(z, minZoom)
	c.dirty = true
}

// SetRotation sets the camera roll in radians.
func (c *Camera) SetRotation(rad float32) {
	c.rotation = rad
	c.dirty = true
}

// LookAt moves a perspective camera.
func (c *Camera) LookAt(eye, target mgl32.Vec3) {
	c.eye, c.target = eye, target
	c.dirty = true
}

func (c *Camera) SetUp(up mgl32.Vec3) {
	c.up = up
	c.dirty = true
}

// SetFOV sets the vertical field of view in radians.
func (c *Camera) SetFOV(fovY float32) {
	c.fovY = fovY
	c.dirty = true
}

func (c *Camera) SetClip(near, far float32) {
	c.near, c.far = near, far
	c.dirty = true
}

// Dirty reports whether the next ViewProj call recomputes.
func (c *Camera) Dirty() bool { return c.dirty }

// Recomputes counts matrix rebuilds since construction.
func (c *Camera) Recomputes() int { return c.recomputes }

// ViewProj returns projection × view.
func (c *Camera) ViewProj() mgl32.Mat4 {
	if c.dirty {
		c.viewProj = depthRemap.Mul4(c.projectionMatrix()).Mul4(c.viewMatrix())
		c.dirty = false
		c.recomputes++
	}
	return c.viewProj
}

// Uniform returns the value uploaded once per frame by Renderer.BeginFrame.
func (c *Camera) Uniform() CameraUniform {
	return CameraUniform{ViewProj: c.ViewProj()}
}

func (c *Camera) projectionMatrix() mgl32.Mat4 {
	if c.projection == Perspective {
		return mgl32.Perspective(c.fovY, c.viewport[0]/c.viewport[1], c.near, c.far)
	}
	hw := c.viewport[0] / 2 / c.zoom
	hh := c.viewport[1] / 2 / c.zoom
	return mgl32.Ortho(-hw, hw, -hh, hh, -1, 1)
}

// viewMatrix undoes the camera transform: translate by -position, then roll
// by -rotation.
func (c *Camera) viewMatrix() mgl32.Mat4 {
	if c.projection == Perspective {
		return mgl32.LookAtV(c.eye, c.target, c.up)
	}
	return mgl32.HomogRotate3DZ(-c.rotation).
		Mul4(mgl32.Translate3D(-c.position[0], -c.position[1], 0))
}

// Forward is the unit view direction of a perspective camera.
func (c *Camera) Forward() mgl32.Vec3 {
	return c.target.Sub(c.eye).Normalize()
}

// Right is perpendicular to Forward and Up.
func (c *Camera) Right() mgl32.Vec3 {
	return c.Forward().Cross(c.up).Normalize()
}

// WorldToScreen projects a point on the z=0 plane to pixel coordinates with
// the origin at the top-left of the viewport.
func (c *Camera) WorldToScreen(p mgl32.Vec2) mgl32.Vec2 {
	clip := c.ViewProj().Mul4x1(mgl32.Vec4{p[0], p[1], 0, 1})
	if clip[3] != 0 {
		clip = clip.Mul(1 / clip[3])
	}
	return mgl32.Vec2{
		(clip[0] + 1) * 0.5 * c.viewport[0],
		(1 - clip[1]) * 0.5 * c.viewport[1],
	}
}

// ScreenToWorld inverts WorldToScreen for orthographic cameras.
func (c *Camera) ScreenToWorld(s mgl32.Vec2) mgl32.Vec2 {
	ndc := mgl32.Vec4{
		s[0]/c.viewport[0]*2 - 1,
		1 - s[1]/c.viewport[1]*2,
		0.5,
		1,
	}
	w := c.ViewProj().Inv().Mul4x1(ndc)
	if w[3] != 0 {
		w = w.Mul(1 / w[3])
	}
	return mgl32.Vec2{w[0], w[1]}
}
