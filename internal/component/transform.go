package component

import "github.com/go-gl/mathgl/mgl32"

// Transform2D is an entity's local 2D placement. Rotation is in radians,
// counter-clockwise, Y up.
type Transform2D struct {
	Position mgl32.Vec2
	Rotation float32
	Scale    mgl32.Vec2
}

// NewTransform2D returns a transform at pos with unit scale.
func NewTransform2D(pos mgl32.Vec2) Transform2D {
	return Transform2D{Position: pos, Scale: mgl32.Vec2{1, 1}}
}

// Compose places local inside t: scale, then rotate, then translate by t.
func (t Transform2D) Compose(local Transform2D) Transform2D {
	scaled := mgl32.Vec2{local.Position[0] * t.Scale[0], local.Position[1] * t.Scale[1]}
	return Transform2D{
		Position: t.Position.Add(mgl32.Rotate2D(t.Rotation).Mul2x1(scaled)),
		Rotation: t.Rotation + local.Rotation,
		Scale:    mgl32.Vec2{t.Scale[0] * local.Scale[0], t.Scale[1] * local.Scale[1]},
	}
}

// GlobalTransform2D is written by the hierarchy system: the entity's
// Transform2D composed with every ancestor's.
type GlobalTransform2D struct {
	Transform2D
}

// Transform3D is an entity's local 3D placement. Rotation holds Euler
// angles in radians applied X, then Y, then Z.
type Transform3D struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
}

func NewTransform3D(pos mgl32.Vec3) Transform3D {
	return Transform3D{Position: pos, Scale: mgl32.Vec3{1, 1, 1}}
}

// Matrix returns T · Rz · Ry · Rx · S.
func (t Transform3D) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Position[0], t.Position[1], t.Position[2]).
		Mul4(mgl32.HomogRotate3DZ(t.Rotation[2])).
		Mul4(mgl32.HomogRotate3DY(t.Rotation[1])).
		Mul4(mgl32.HomogRotate3DX(t.Rotation[0])).
		Mul4(mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}
