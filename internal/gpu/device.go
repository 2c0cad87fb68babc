package gpu

import "errors"

var (
	ErrOutOfBounds       = errors.New("gpu: write out of buffer bounds")
	ErrUsage             = errors.New("gpu: buffer usage does not permit operation")
	ErrMissingEntryPoint = errors.New("gpu: shader entry point not found")
	ErrLayoutMismatch    = errors.New("gpu: bind group does not match its layout")
	ErrWriteHazard       = errors.New("gpu: write overlaps a range read by a pending draw")
)

// Device creates GPU resources and uploads data.
//
// WriteBuffer behaves like a queue write: it lands before the pass is
// submitted, so every draw of the pass sees the final contents. Writing a
// range that a draw recorded since the last submit still reads is a hazard
// and fails with ErrWriteHazard.
type Device interface {
	CreateBuffer(desc BufferDescriptor) (*Buffer, error)
	WriteBuffer(buf *Buffer, offset uint64, data []byte) error
	CreateTexture(desc TextureDescriptor) (*Texture, error)
	WriteTexture(tex *Texture, rgba []byte) error
	CreateSampler(desc SamplerDescriptor) (*Sampler, error)
	CreateShaderModule(desc ShaderModuleDescriptor) (*ShaderModule, error)
	CreateBindGroupLayout(desc BindGroupLayoutDescriptor) (*BindGroupLayout, error)
	CreatePipelineLayout(desc PipelineLayoutDescriptor) (*PipelineLayout, error)
	CreateRenderPipeline(desc RenderPipelineDescriptor) (*RenderPipeline, error)
	CreateBindGroup(desc BindGroupDescriptor) (*BindGroup, error)
}

// RenderPass records draw state and draw calls for one frame. Like WebGPU,
// pass methods do not return errors; backends report invalid usage when the
// pass is ended.
type RenderPass interface {
	// Clear fills the colour target with an RGBA colour in [0,1]. It is
	// recorded before any draw of the frame.
	Clear(r, g, b, a float32)
	SetPipeline(p *RenderPipeline)
	SetBindGroup(index uint32, group *BindGroup)
	SetVertexBuffer(slot uint32, buf *Buffer, offset, size uint64)
	SetIndexBuffer(buf *Buffer, format IndexFormat, offset, size uint64)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
}
