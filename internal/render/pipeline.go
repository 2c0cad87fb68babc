package render

import (
	_ "embed"
	"encoding/hex"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/greyengine/grey/internal/gpu"
)

//go:embed shaders/engine.wgsl
var engineWGSL string

// Shader entry points. Their names are part of the GPU contract.
const (
	EntryVertex2D        = "vs_main_2d"
	EntryFragment2D      = "fs_main_2d"
	EntryFragment2DColor = "fs_main_2d_color"
	EntryVertex3D        = "vs_main_3d"
	EntryFragment3D      = "fs_main_3d"
)

var entryPoints = []string{EntryVertex2D, EntryFragment2D, EntryFragment2DColor, EntryVertex3D, EntryFragment3D}

// ShaderSource is WGSL code plus a label.
type ShaderSource struct {
	Label string
	Code  string
}

// EngineShader returns the embedded shader holding all five entry points.
func EngineShader() ShaderSource {
	return ShaderSource{Label: "engine", Code: engineWGSL}
}

// Digest is the hex blake2b-256 of the code, used to tell shader revisions
// apart in logs and pipeline labels.
func (s ShaderSource) Digest() string {
	sum := blake2b.Sum256([]byte(s.Code))
	return hex.EncodeToString(sum[:])
}

// Bind group slots.
const (
	GroupCamera  = 0
	GroupTexture = 1
)

var (
	cameraGroupLayout = gpu.BindGroupLayoutDescriptor{
		Label: "camera",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gpu.StageVertex, Type: gpu.BindingUniformBuffer},
		},
	}
	textureGroupLayout = gpu.BindGroupLayoutDescriptor{
		Label: "texture",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gpu.StageFragment, Type: gpu.BindingTexture},
			{Binding: 1, Visibility: gpu.StageFragment, Type: gpu.BindingSampler},
		},
	}
)

// Contract is everything the CPU side and the shaders must agree on.
type Contract struct {
	Layout2D     gpu.VertexBufferLayout
	Layout3D     gpu.VertexBufferLayout
	CameraGroup  gpu.BindGroupLayoutDescriptor
	TextureGroup gpu.BindGroupLayoutDescriptor
	Shader       *gpu.ShaderModule
}

// DefaultContract pairs the package layouts with a compiled shader module.
func DefaultContract(shader *gpu.ShaderModule) Contract {
	return Contract{
		Layout2D:     VertexLayout2D,
		Layout3D:     VertexLayout3D,
		CameraGroup:  cameraGroupLayout,
		TextureGroup: textureGroupLayout,
		Shader:       shader,
	}
}

// Sample vertices carry distinct values per float so a misplaced attribute
// offset decodes the wrong field.
var (
	sample2D = Vertex2D{
		Position: [2]float32{1, 2},
		UV:       [2]float32{3, 4},
		Color:    Color{5, 6, 7, 8},
	}
	sample2DAttrs = [][]float32{{1, 2}, {3, 4}, {5, 6, 7, 8}}

	sample3D = Vertex3D{
		Position: [3]float32{1, 2, 3},
		Normal:   [3]float32{4, 5, 6},
		UV:       [2]float32{7, 8},
		Color:    Color{9, 10, 11, 12},
	}
	sample3DAttrs = [][]float32{{1, 2, 3}, {4, 5, 6}, {7, 8}, {9, 10, 11, 12}}
)

// ValidateContract checks vertex layouts against the packed vertex bytes,
// the bind group slots and the shader entry points. Every failure wraps
// ErrBindingContract.
func ValidateContract(c Contract) error {
	if err := checkLayout("2d", c.Layout2D, appendVertex2D(nil, sample2D), sample2DAttrs); err != nil {
		return err
	}
	if err := checkLayout("3d", c.Layout3D, appendVertex3D(nil, sample3D), sample3DAttrs); err != nil {
		return err
	}
	if err := checkGroup(c.CameraGroup, cameraGroupLayout); err != nil {
		return err
	}
	if err := checkGroup(c.TextureGroup, textureGroupLayout); err != nil {
		return err
	}
	if c.Shader == nil {
		return fmt.Errorf("%w: no shader module", ErrBindingContract)
	}
	for _, ep := range entryPoints {
		if !c.Shader.HasEntryPoint(ep) {
			return fmt.Errorf("%w: shader %q lacks entry point %s", ErrBindingContract, c.Shader.Label, ep)
		}
	}
	return nil
}

func checkLayout(name string, l gpu.VertexBufferLayout, packed []byte, want [][]float32) error {
	if l.ArrayStride != uint64(len(packed)) {
		return fmt.Errorf("%w: %s stride %d, vertex packs %d bytes", ErrBindingContract, name, l.ArrayStride, len(packed))
	}
	if len(l.Attributes) != len(want) {
		return fmt.Errorf("%w: %s has %d attributes, want %d", ErrBindingContract, name, len(l.Attributes), len(want))
	}
	seen := make([]bool, len(want))
	for _, a := range l.Attributes {
		loc := int(a.ShaderLocation)
		if loc >= len(want) {
			return fmt.Errorf("%w: %s location %d out of range", ErrBindingContract, name, loc)
		}
		if seen[loc] {
			return fmt.Errorf("%w: %s location %d declared twice", ErrBindingContract, name, loc)
		}
		seen[loc] = true
		if a.Format.Size() != uint64(len(want[loc]))*4 {
			return fmt.Errorf("%w: %s location %d format %s", ErrBindingContract, name, loc, a.Format)
		}
		if a.Offset+a.Format.Size() > l.ArrayStride {
			return fmt.Errorf("%w: %s location %d overruns stride", ErrBindingContract, name, loc)
		}
		for i, f := range want[loc] {
			if got := readFloat(packed, int(a.Offset)+i*4); got != f {
				return fmt.Errorf("%w: %s location %d at offset %d reads %v, want %v",
					ErrBindingContract, name, loc, a.Offset, got, f)
			}
		}
	}
	return nil
}

func checkGroup(got, want gpu.BindGroupLayoutDescriptor) error {
	if len(got.Entries) != len(want.Entries) {
		return fmt.Errorf("%w: %s group has %d bindings, want %d", ErrBindingContract, want.Label, len(got.Entries), len(want.Entries))
	}
	for i, e := range want.Entries {
		g := got.Entries[i]
		if g.Binding != e.Binding || g.Type != e.Type || g.Visibility&e.Visibility == 0 {
			return fmt.Errorf("%w: %s binding %d is %s, want %s at %d",
				ErrBindingContract, want.Label, g.Binding, g.Type, e.Type, e.Binding)
		}
	}
	return nil
}

// PipelineSet owns the shader module, the two bind group layouts and one
// pipeline per kind and blend mode.
type PipelineSet struct {
	shader        *gpu.ShaderModule
	digest        string
	cameraLayout  *gpu.BindGroupLayout
	textureLayout *gpu.BindGroupLayout
	pipelines     [pipelineKindCount][2]*gpu.RenderPipeline
}

// NewPipelineSet compiles src, validates the binding contract and builds all
// pipelines. A contract violation is fatal at startup.
func NewPipelineSet(device gpu.Device, src ShaderSource, log *zap.Logger) (*PipelineSet, error) {
	digest := src.Digest()
	shader, err := device.CreateShaderModule(gpu.ShaderModuleDescriptor{Label: src.Label, Code: src.Code})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBindingContract, err)
	}
	contract := DefaultContract(shader)
	if err := ValidateContract(contract); err != nil {
		return nil, err
	}

	ps := &PipelineSet{shader: shader, digest: digest}
	if ps.cameraLayout, err = device.CreateBindGroupLayout(contract.CameraGroup); err != nil {
		return nil, fmt.Errorf("camera layout: %w", err)
	}
	if ps.textureLayout, err = device.CreateBindGroupLayout(contract.TextureGroup); err != nil {
		return nil, fmt.Errorf("texture layout: %w", err)
	}

	cameraOnly, err := device.CreatePipelineLayout(gpu.PipelineLayoutDescriptor{
		Label:            "camera_only",
		BindGroupLayouts: []*gpu.BindGroupLayout{ps.cameraLayout},
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline layout: %w", err)
	}
	textured, err := device.CreatePipelineLayout(gpu.PipelineLayoutDescriptor{
		Label:            "camera_texture",
		BindGroupLayouts: []*gpu.BindGroupLayout{ps.cameraLayout, ps.textureLayout},
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline layout: %w", err)
	}

	short := digest[:12]
	for kind := PipelineKind(0); kind < pipelineKindCount; kind++ {
		for _, blend := range []BlendMode{BlendAlpha, BlendOpaque} {
			desc := gpu.RenderPipelineDescriptor{
				Label:  fmt.Sprintf("%s/%d@%s", kind, blend, short),
				Module: shader,
				Blend:  blend,
			}
			switch kind {
			case Pipeline2DColor:
				desc.Layout = cameraOnly
				desc.VertexEntry, desc.FragmentEntry = EntryVertex2D, EntryFragment2DColor
				desc.Buffers = []gpu.VertexBufferLayout{contract.Layout2D}
			case Pipeline2DTextured:
				desc.Layout = textured
				desc.VertexEntry, desc.FragmentEntry = EntryVertex2D, EntryFragment2D
				desc.Buffers = []gpu.VertexBufferLayout{contract.Layout2D}
			case Pipeline3DLit:
				desc.Layout = cameraOnly
				desc.VertexEntry, desc.FragmentEntry = EntryVertex3D, EntryFragment3D
				desc.Buffers = []gpu.VertexBufferLayout{contract.Layout3D}
				desc.DepthTest = true
				desc.CullBackFaces = true
			}
			p, err := device.CreateRenderPipeline(desc)
			if err != nil {
				return nil, fmt.Errorf("%w: pipeline %s: %w", ErrBindingContract, desc.Label, err)
			}
			ps.pipelines[kind][blend] = p
		}
	}

	log.Info("pipelines ready",
		zap.String("shader", src.Label),
		zap.String("digest", short),
		zap.Int("pipelines", int(pipelineKindCount)*2),
	)
	return ps, nil
}

// Pipeline returns the pipeline for kind and blend.
func (ps *PipelineSet) Pipeline(kind PipelineKind, blend BlendMode) *gpu.RenderPipeline {
	return ps.pipelines[kind][blend]
}

func (ps *PipelineSet) CameraLayout() *gpu.BindGroupLayout  { return ps.cameraLayout }
func (ps *PipelineSet) TextureLayout() *gpu.BindGroupLayout { return ps.textureLayout }
func (ps *PipelineSet) Shader() *gpu.ShaderModule           { return ps.shader }
func (ps *PipelineSet) Digest() string                      { return ps.digest }
