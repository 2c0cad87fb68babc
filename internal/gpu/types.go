// Package gpu is the thin GPU abstraction the renderer talks to. Descriptor
// shapes follow WebGPU: buffers, shader modules, bind group layouts, pipeline
// layouts, render pipelines and bind groups. A backend implements Device and
// RenderPass; Recorder is the headless backend used by tests and by the
// headless platform.
package gpu

// BufferUsage is a bit set of the ways a buffer may be bound.
type BufferUsage uint32

const (
	UsageVertex BufferUsage = 1 << iota
	UsageIndex
	UsageUniform
	UsageCopyDst
)

// VertexFormat names the type of one vertex attribute.
type VertexFormat int

const (
	Float32x2 VertexFormat = iota
	Float32x3
	Float32x4
)

// Size returns the byte size of one attribute of the format.
func (f VertexFormat) Size() uint64 {
	switch f {
	case Float32x2:
		return 8
	case Float32x3:
		return 12
	case Float32x4:
		return 16
	}
	return 0
}

func (f VertexFormat) String() string {
	switch f {
	case Float32x2:
		return "float32x2"
	case Float32x3:
		return "float32x3"
	case Float32x4:
		return "float32x4"
	}
	return "unknown"
}

// IndexFormat is the element type of an index buffer.
type IndexFormat int

const (
	IndexUint16 IndexFormat = iota
	IndexUint32
)

// Size returns the byte size of one index.
func (f IndexFormat) Size() uint64 {
	if f == IndexUint16 {
		return 2
	}
	return 4
}

// ShaderStage is a bit set of pipeline stages.
type ShaderStage uint32

const (
	StageVertex ShaderStage = 1 << iota
	StageFragment
)

// BindingType is the kind of resource bound at a bind group slot.
type BindingType int

const (
	BindingUniformBuffer BindingType = iota
	BindingTexture
	BindingSampler
)

func (t BindingType) String() string {
	switch t {
	case BindingUniformBuffer:
		return "uniform"
	case BindingTexture:
		return "texture"
	case BindingSampler:
		return "sampler"
	}
	return "unknown"
}

// FilterMode selects texture sampling.
type FilterMode int

const (
	FilterNearest FilterMode = iota
	FilterLinear
)

// VertexAttribute places one shader input inside a vertex.
type VertexAttribute struct {
	Format         VertexFormat
	Offset         uint64
	ShaderLocation uint32
}

// VertexBufferLayout describes the memory layout of one vertex buffer.
type VertexBufferLayout struct {
	ArrayStride uint64
	Attributes  []VertexAttribute
}

type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage BufferUsage
}

type TextureDescriptor struct {
	Label  string
	Width  uint32
	Height uint32
}

type SamplerDescriptor struct {
	Label  string
	Filter FilterMode
}

type ShaderModuleDescriptor struct {
	Label string
	Code  string
}

type BindGroupLayoutEntry struct {
	Binding    uint32
	Visibility ShaderStage
	Type       BindingType
}

type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []BindGroupLayoutEntry
}

type PipelineLayoutDescriptor struct {
	Label            string
	BindGroupLayouts []*BindGroupLayout
}

// BlendState is either alpha blending or opaque replacement.
type BlendState int

const (
	BlendAlpha BlendState = iota
	BlendReplace
)

type RenderPipelineDescriptor struct {
	Label         string
	Layout        *PipelineLayout
	Module        *ShaderModule
	VertexEntry   string
	FragmentEntry string
	Buffers       []VertexBufferLayout
	Blend         BlendState
	DepthTest     bool
	CullBackFaces bool
}

// BindGroupEntry binds exactly one of Buffer, Texture or Sampler.
type BindGroupEntry struct {
	Binding uint32
	Buffer  *Buffer
	Texture *Texture
	Sampler *Sampler
}

type BindGroupDescriptor struct {
	Label   string
	Layout  *BindGroupLayout
	Entries []BindGroupEntry
}

// Resources. IDs are unique per device.

type Buffer struct {
	ID    uint32
	Label string
	Size  uint64
	Usage BufferUsage
}

type Texture struct {
	ID     uint32
	Label  string
	Width  uint32
	Height uint32
}

type Sampler struct {
	ID     uint32
	Label  string
	Filter FilterMode
}

type ShaderModule struct {
	ID          uint32
	Label       string
	Code        string
	EntryPoints []string
}

// HasEntryPoint reports whether the module declares the named entry point.
func (m *ShaderModule) HasEntryPoint(name string) bool {
	for _, ep := range m.EntryPoints {
		if ep == name {
			return true
		}
	}
	return false
}

type BindGroupLayout struct {
	ID      uint32
	Label   string
	Entries []BindGroupLayoutEntry
}

type PipelineLayout struct {
	ID               uint32
	Label            string
	BindGroupLayouts []*BindGroupLayout
}

type RenderPipeline struct {
	ID         uint32
	Label      string
	Descriptor RenderPipelineDescriptor
}

type BindGroup struct {
	ID      uint32
	Label   string
	Layout  *BindGroupLayout
	Entries []BindGroupEntry
}
