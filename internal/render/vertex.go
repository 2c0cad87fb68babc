package render

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/greyengine/grey/internal/gpu"
)

// Vertex2D is position, uv and colour, packed as 32 bytes.
type Vertex2D struct {
	Position mgl32.Vec2
	UV       mgl32.Vec2
	Color    Color
}

// Vertex3D is position, normal, uv and colour, packed as 48 bytes.
type Vertex3D struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
	Color    Color
}

const (
	Vertex2DSize = 32
	Vertex3DSize = 48
	IndexSize    = 4
)

// VertexLayout2D and VertexLayout3D are the attribute layouts the shaders
// read. They are part of the binding contract checked by ValidateContract.
var (
	VertexLayout2D = gpu.VertexBufferLayout{
		ArrayStride: Vertex2DSize,
		Attributes: []gpu.VertexAttribute{
			{Format: gpu.Float32x2, Offset: 0, ShaderLocation: 0},
			{Format: gpu.Float32x2, Offset: 8, ShaderLocation: 1},
			{Format: gpu.Float32x4, Offset: 16, ShaderLocation: 2},
		},
	}
	VertexLayout3D = gpu.VertexBufferLayout{
		ArrayStride: Vertex3DSize,
		Attributes: []gpu.VertexAttribute{
			{Format: gpu.Float32x3, Offset: 0, ShaderLocation: 0},
			{Format: gpu.Float32x3, Offset: 12, ShaderLocation: 1},
			{Format: gpu.Float32x2, Offset: 24, ShaderLocation: 2},
			{Format: gpu.Float32x4, Offset: 32, ShaderLocation: 3},
		},
	}
)

func appendFloats(dst []byte, fs ...float32) []byte {
	for _, f := range fs {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
	}
	return dst
}

func appendVertex2D(dst []byte, v Vertex2D) []byte {
	return appendFloats(dst,
		v.Position[0], v.Position[1],
		v.UV[0], v.UV[1],
		v.Color.R, v.Color.G, v.Color.B, v.Color.A)
}

func appendVertex3D(dst []byte, v Vertex3D) []byte {
	return appendFloats(dst,
		v.Position[0], v.Position[1], v.Position[2],
		v.Normal[0], v.Normal[1], v.Normal[2],
		v.UV[0], v.UV[1],
		v.Color.R, v.Color.G, v.Color.B, v.Color.A)
}

func appendIndices(dst []byte, indices []uint32, base uint32) []byte {
	for _, i := range indices {
		dst = binary.LittleEndian.AppendUint32(dst, i+base)
	}
	return dst
}

func readFloat(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

// DecodeVertices2D unpacks a buffer written in VertexLayout2D.
func DecodeVertices2D(b []byte) []Vertex2D {
	out := make([]Vertex2D, 0, len(b)/Vertex2DSize)
	for off := 0; off+Vertex2DSize <= len(b); off += Vertex2DSize {
		out = append(out, Vertex2D{
			Position: mgl32.Vec2{readFloat(b, off), readFloat(b, off+4)},
			UV:       mgl32.Vec2{readFloat(b, off+8), readFloat(b, off+12)},
			Color:    Color{readFloat(b, off+16), readFloat(b, off+20), readFloat(b, off+24), readFloat(b, off+28)},
		})
	}
	return out
}

// DecodeVertices3D unpacks a buffer written in VertexLayout3D.
func DecodeVertices3D(b []byte) []Vertex3D {
	out := make([]Vertex3D, 0, len(b)/Vertex3DSize)
	for off := 0; off+Vertex3DSize <= len(b); off += Vertex3DSize {
		out = append(out, Vertex3D{
			Position: mgl32.Vec3{readFloat(b, off), readFloat(b, off+4), readFloat(b, off+8)},
			Normal:   mgl32.Vec3{readFloat(b, off+12), readFloat(b, off+16), readFloat(b, off+20)},
			UV:       mgl32.Vec2{readFloat(b, off+24), readFloat(b, off+28)},
			Color:    Color{readFloat(b, off+32), readFloat(b, off+36), readFloat(b, off+40), readFloat(b, off+44)},
		})
	}
	return out
}

// DecodeIndices unpacks a uint32 index buffer.
func DecodeIndices(b []byte) []uint32 {
	out := make([]uint32, 0, len(b)/IndexSize)
	for off := 0; off+IndexSize <= len(b); off += IndexSize {
		out = append(out, binary.LittleEndian.Uint32(b[off:]))
	}
	return out
}
