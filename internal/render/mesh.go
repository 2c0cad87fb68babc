package render

import "github.com/go-gl/mathgl/mgl32"

// Rect is a sub-rectangle in normalised texture space.
type Rect struct {
	X, Y, W, H float32
}

// FullRect covers the whole texture.
var FullRect = Rect{0, 0, 1, 1}

// quadIndices are the two counter-clockwise triangles of a quad whose
// corners are bottom-left, bottom-right, top-right, top-left.
var quadIndices = []uint32{0, 1, 2, 0, 2, 3}

type Mesh2D struct {
	Vertices []Vertex2D
	Indices  []uint32
}

// Mesh3D is CPU-side geometry in model space.
type Mesh3D struct {
	Name     string
	Vertices []Vertex3D
	Indices  []uint32
}

// Quad builds an axis-aligned quad centred on the origin.
func Quad(size mgl32.Vec2, color Color) Mesh2D {
	h := size.Mul(0.5)
	return Mesh2D{
		Vertices: []Vertex2D{
			{Position: mgl32.Vec2{-h[0], -h[1]}, UV: mgl32.Vec2{0, 1}, Color: color},
			{Position: mgl32.Vec2{h[0], -h[1]}, UV: mgl32.Vec2{1, 1}, Color: color},
			{Position: mgl32.Vec2{h[0], h[1]}, UV: mgl32.Vec2{1, 0}, Color: color},
			{Position: mgl32.Vec2{-h[0], h[1]}, UV: mgl32.Vec2{0, 0}, Color: color},
		},
		Indices: append([]uint32(nil), quadIndices...),
	}
}

// Cube builds a unit-normal cube of edge length size, four vertices per face.
func Cube(size float32, color Color) *Mesh3D {
	h := size / 2
	faces := []struct {
		normal  mgl32.Vec3
		corners [4]mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h}}},
		{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{h, -h, -h}, {-h, -h, -h}, {-h, h, -h}, {h, h, -h}}},
		{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{-h, h, h}, {h, h, h}, {h, h, -h}, {-h, h, -h}}},
		{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{-h, -h, -h}, {h, -h, -h}, {h, -h, h}, {-h, -h, h}}},
		{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{h, -h, h}, {h, -h, -h}, {h, h, -h}, {h, h, h}}},
		{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{-h, -h, -h}, {-h, -h, h}, {-h, h, h}, {-h, h, -h}}},
	}
	uvs := [4]mgl32.Vec2{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	m := &Mesh3D{
		Name:     "cube",
		Vertices: make([]Vertex3D, 0, 24),
		Indices:  make([]uint32, 0, 36),
	}
	for f, face := range faces {
		base := uint32(f * 4)
		for i, p := range face.corners {
			m.Vertices = append(m.Vertices, Vertex3D{Position: p, Normal: face.normal, UV: uvs[i], Color: color})
		}
		for _, i := range quadIndices {
			m.Indices = append(m.Indices, base+i)
		}
	}
	return m
}

// Plane builds a horizontal square facing +Y.
func Plane(size float32, color Color) *Mesh3D {
	h := size / 2
	up := mgl32.Vec3{0, 1, 0}
	return &Mesh3D{
		Name: "plane",
		Vertices: []Vertex3D{
			{Position: mgl32.Vec3{-h, 0, h}, Normal: up, UV: mgl32.Vec2{0, 1}, Color: color},
			{Position: mgl32.Vec3{h, 0, h}, Normal: up, UV: mgl32.Vec2{1, 1}, Color: color},
			{Position: mgl32.Vec3{h, 0, -h}, Normal: up, UV: mgl32.Vec2{1, 0}, Color: color},
			{Position: mgl32.Vec3{-h, 0, -h}, Normal: up, UV: mgl32.Vec2{0, 0}, Color: color},
		},
		Indices: append([]uint32(nil), quadIndices...),
	}
}
