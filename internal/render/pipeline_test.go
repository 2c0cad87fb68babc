package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/greyengine/grey/internal/gpu"
)

func TestPipelineSetBuildsEveryKind(t *testing.T) {
	rec := gpu.NewRecorder()
	ps, err := NewPipelineSet(rec, EngineShader(), zap.NewNop())
	require.NoError(t, err)

	for kind := PipelineKind(0); kind < pipelineKindCount; kind++ {
		for _, blend := range []BlendMode{BlendAlpha, BlendOpaque} {
			p := ps.Pipeline(kind, blend)
			require.NotNil(t, p, "%s/%d", kind, blend)
			require.Contains(t, p.Label, ps.Digest()[:12])
		}
	}

	textured := ps.Pipeline(Pipeline2DTextured, BlendAlpha).Descriptor
	require.Len(t, textured.Layout.BindGroupLayouts, 2)
	require.Equal(t, ps.TextureLayout(), textured.Layout.BindGroupLayouts[GroupTexture])
	require.Equal(t, EntryFragment2D, textured.FragmentEntry)

	color := ps.Pipeline(Pipeline2DColor, BlendAlpha).Descriptor
	require.Len(t, color.Layout.BindGroupLayouts, 1)
	require.Equal(t, EntryFragment2DColor, color.FragmentEntry)
	require.Equal(t, uint64(Vertex2DSize), color.Buffers[0].ArrayStride)

	lit := ps.Pipeline(Pipeline3DLit, BlendOpaque).Descriptor
	require.Len(t, lit.Layout.BindGroupLayouts, 1)
	require.Equal(t, uint64(Vertex3DSize), lit.Buffers[0].ArrayStride)
	require.True(t, lit.DepthTest)
}

func TestNewPipelineSetRejectsMissingEntryPoint(t *testing.T) {
	src := EngineShader()
	src.Code = strings.Replace(src.Code, "fn fs_main_3d", "fn fs_main_3d_old", 1)
	_, err := NewPipelineSet(gpu.NewRecorder(), src, zap.NewNop())
	require.ErrorIs(t, err, ErrBindingContract)
	require.Contains(t, err.Error(), "fs_main_3d")
}

func TestValidateContract(t *testing.T) {
	module, err := gpu.NewRecorder().CreateShaderModule(gpu.ShaderModuleDescriptor{Label: "engine", Code: engineWGSL})
	require.NoError(t, err)
	require.NoError(t, ValidateContract(DefaultContract(module)))

	cloneLayout := func(l gpu.VertexBufferLayout) gpu.VertexBufferLayout {
		l.Attributes = append([]gpu.VertexAttribute(nil), l.Attributes...)
		return l
	}

	cases := map[string]func(c *Contract){
		"2d stride": func(c *Contract) { c.Layout2D.ArrayStride = 36 },
		"3d stride": func(c *Contract) { c.Layout3D.ArrayStride = 44 },
		"2d uv offset": func(c *Contract) {
			c.Layout2D = cloneLayout(c.Layout2D)
			c.Layout2D.Attributes[1].Offset = 16
		},
		"2d duplicate location": func(c *Contract) {
			// Same format and offset as position, so only the location repeats.
			c.Layout2D = cloneLayout(c.Layout2D)
			c.Layout2D.Attributes[1].ShaderLocation = 0
			c.Layout2D.Attributes[1].Offset = 0
		},
		"3d normal format": func(c *Contract) {
			c.Layout3D = cloneLayout(c.Layout3D)
			c.Layout3D.Attributes[1].Format = gpu.Float32x4
		},
		"3d missing attribute": func(c *Contract) {
			c.Layout3D = cloneLayout(c.Layout3D)
			c.Layout3D.Attributes = c.Layout3D.Attributes[:3]
		},
		"camera binding": func(c *Contract) {
			c.CameraGroup.Entries = []gpu.BindGroupLayoutEntry{
				{Binding: 1, Visibility: gpu.StageVertex, Type: gpu.BindingUniformBuffer},
			}
		},
		"texture without sampler": func(c *Contract) {
			c.TextureGroup.Entries = c.TextureGroup.Entries[:1]
		},
		"no shader": func(c *Contract) { c.Shader = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := DefaultContract(module)
			mutate(&c)
			require.ErrorIs(t, ValidateContract(c), ErrBindingContract)
		})
	}
	require.Equal(t, uint64(Vertex2DSize), VertexLayout2D.ArrayStride, "cases must not mutate package layouts")
	require.Equal(t, uint64(12), VertexLayout3D.Attributes[1].Offset)
}

func TestShaderDigest(t *testing.T) {
	a := EngineShader().Digest()
	require.Len(t, a, 64)
	require.Equal(t, a, EngineShader().Digest())
	require.NotEqual(t, a, ShaderSource{Code: engineWGSL + "\n"}.Digest())
}

func TestEngineShaderDeclaresEntryPoints(t *testing.T) {
	module, err := gpu.NewRecorder().CreateShaderModule(gpu.ShaderModuleDescriptor{Code: engineWGSL})
	require.NoError(t, err)
	require.ElementsMatch(t, entryPoints, module.EntryPoints)
}
