package render

import "github.com/greyengine/grey/internal/gpu"

// TextureHandle is an opaque reference to a texture already resident on the
// GPU. Zero means no texture.
type TextureHandle uint64

// NoTexture is the zero handle.
const NoTexture TextureHandle = 0

// TextureSource resolves texture handles to the bind group the textured
// pipeline consumes at group 1.
type TextureSource interface {
	BindGroup(h TextureHandle) (*gpu.BindGroup, bool)
}

// PipelineKind selects one of the three pipeline programs.
type PipelineKind int

const (
	Pipeline2DColor PipelineKind = iota
	Pipeline2DTextured
	Pipeline3DLit
	pipelineKindCount
)

func (k PipelineKind) String() string {
	switch k {
	case Pipeline2DColor:
		return "2d_color"
	case Pipeline2DTextured:
		return "2d_textured"
	case Pipeline3DLit:
		return "3d_lit"
	}
	return "unknown"
}

// Is3D reports whether the pipeline consumes Vertex3D.
func (k PipelineKind) Is3D() bool { return k == Pipeline3DLit }

// BlendMode mirrors gpu.BlendState at the material level.
type BlendMode = gpu.BlendState

const (
	BlendAlpha  = gpu.BlendAlpha
	BlendOpaque = gpu.BlendReplace
)

// Material is what a drawable asks for. The renderer turns it into a
// batchKey by choosing the pipeline.
type Material struct {
	Texture TextureHandle
	Blend   BlendMode
}

// batchKey is the resolved pipeline, texture and blend state of a batch.
// Two draws share a batch only if their keys are equal.
type batchKey struct {
	kind    PipelineKind
	texture TextureHandle
	blend   BlendMode
}
