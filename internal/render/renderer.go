package render

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/greyengine/grey/internal/gpu"
)

// State is the renderer's per-frame state.
type State int

const (
	StateIdle State = iota
	StateAccumulating
	StateFlushing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAccumulating:
		return "accumulating"
	case StateFlushing:
		return "flushing"
	}
	return "unknown"
}

// DefaultMaxQuads sizes the batch buffers when no capacity is configured.
const DefaultMaxQuads = 10000

// Stats counts what one frame submitted.
type Stats struct {
	Draws            int
	Flushes          int
	MaterialFlushes  int
	CapacityFlushes  int
	Vertices         int
	Indices          int
	PipelineSwitches int
	TextureBinds     int
	// StreamBuffers is how many vertex and index buffers exist after the
	// frame. It only grows when a frame outruns the buffers it has.
	StreamBuffers    int
}

func (s Stats) fields() []zap.Field {
	return []zap.Field{
		zap.Int("draws", s.Draws),
		zap.Int("flushes", s.Flushes),
		zap.Int("vertices", s.Vertices),
		zap.Int("indices", s.Indices),
		zap.Int("pipeline_switches", s.PipelineSwitches),
	}
}

type batch struct {
	key         batchKey
	vertices    []byte
	indices     []byte
	vertexCount int
	indexCount  int
}

func (b *batch) empty() bool { return b.indexCount == 0 }

func (b *batch) reset() {
	b.vertices = b.vertices[:0]
	b.indices = b.indices[:0]
	b.vertexCount = 0
	b.indexCount = 0
}

// Renderer accumulates draws into batches and turns each batch into one
// indexed draw call. A frame is BeginFrame, any number of draws, EndFrame.
type Renderer struct {
	log       *zap.Logger
	device    gpu.Device
	pipelines *PipelineSet
	textures  TextureSource

	maxVertices int
	maxIndices  int

	vertex2D    *stream
	vertex3D    *stream
	index       *stream
	camera      *gpu.Buffer
	cameraGroup *gpu.BindGroup

	state        State
	pass         gpu.RenderPass
	batch        batch
	lastPipeline *gpu.RenderPipeline
	stats        Stats
	frames       int
	warned       map[TextureHandle]bool

	scratch2D []Vertex2D
	scratch3D []Vertex3D
}

// NewRenderer allocates vertex, index and camera buffers sized for maxQuads
// quads. textures may be nil, in which case every 2D draw uses the colour
// pipeline.
//
// Each batch of a frame is uploaded to its own buffer region. A frame that
// flushes more than one buffer's worth of geometry gets extra buffers, which
// later frames reuse.
func NewRenderer(device gpu.Device, pipelines *PipelineSet, textures TextureSource, maxQuads int, log *zap.Logger) (*Renderer, error) {
	if maxQuads <= 0 {
		maxQuads = DefaultMaxQuads
	}
	r := &Renderer{
		log:         log,
		device:      device,
		pipelines:   pipelines,
		textures:    textures,
		maxVertices: maxQuads * 4,
		maxIndices:  maxQuads * 6,
		warned:      make(map[TextureHandle]bool),
	}

	var err error
	if r.vertex2D, err = newStream(device, "vertices_2d",
		gpu.UsageVertex|gpu.UsageCopyDst, uint64(r.maxVertices*Vertex2DSize)); err != nil {
		return nil, err
	}
	if r.vertex3D, err = newStream(device, "vertices_3d",
		gpu.UsageVertex|gpu.UsageCopyDst, uint64(r.maxVertices*Vertex3DSize)); err != nil {
		return nil, err
	}
	if r.index, err = newStream(device, "indices",
		gpu.UsageIndex|gpu.UsageCopyDst, uint64(r.maxIndices*IndexSize)); err != nil {
		return nil, err
	}
	if r.camera, err = device.CreateBuffer(gpu.BufferDescriptor{
		Label: "camera",
		Size:  CameraUniformSize,
		Usage: gpu.UsageUniform | gpu.UsageCopyDst,
	}); err != nil {
		return nil, fmt.Errorf("create camera buffer: %w", err)
	}
	if r.cameraGroup, err = device.CreateBindGroup(gpu.BindGroupDescriptor{
		Label:   "camera",
		Layout:  pipelines.CameraLayout(),
		Entries: []gpu.BindGroupEntry{{Binding: 0, Buffer: r.camera}},
	}); err != nil {
		return nil, fmt.Errorf("create camera bind group: %w", err)
	}

	r.batch.vertices = make([]byte, 0, r.maxVertices*Vertex3DSize)
	r.batch.indices = make([]byte, 0, r.maxIndices*IndexSize)
	return r, nil
}

func (r *Renderer) State() State { return r.state }

// Stats returns the counters of the current or most recent frame.
func (r *Renderer) Stats() Stats { return r.stats }

// Capacity returns the vertex and index limits of one batch.
func (r *Renderer) Capacity() (vertices, indices int) { return r.maxVertices, r.maxIndices }

// BeginFrame uploads the camera uniform and starts accumulating draws into
// pass.
func (r *Renderer) BeginFrame(pass gpu.RenderPass, camera CameraUniform) error {
	if r.state != StateIdle {
		return fmt.Errorf("begin frame in state %s: %w", r.state, ErrFrameInProgress)
	}
	if err := r.device.WriteBuffer(r.camera, 0, camera.Bytes()); err != nil {
		return fmt.Errorf("upload camera uniform: %w", err)
	}
	r.pass = pass
	r.stats = Stats{}
	r.lastPipeline = nil
	r.batch.reset()
	r.vertex2D.reset()
	r.vertex3D.reset()
	r.index.reset()
	r.state = StateAccumulating
	return nil
}

// EndFrame flushes the remaining batch and returns to Idle. The renderer is
// Idle afterwards even when the flush fails.
func (r *Renderer) EndFrame() error {
	if r.state != StateAccumulating {
		return fmt.Errorf("end frame in state %s: %w", r.state, ErrNotAccumulating)
	}
	err := r.flush()
	r.stats.StreamBuffers = r.vertex2D.buffers() + r.vertex3D.buffers() + r.index.buffers()
	r.state = StateIdle
	r.pass = nil
	r.frames++
	if ce := r.log.Check(zap.DebugLevel, "frame submitted"); ce != nil {
		ce.Write(append(r.stats.fields(), zap.Int("frame", r.frames))...)
	}
	return err
}

// Draw2D appends 2D geometry. Indices are relative to vertices.
func (r *Renderer) Draw2D(vertices []Vertex2D, indices []uint32, m Material) error {
	key := r.resolve2D(m)
	if err := r.reserve(key, len(vertices), indices); err != nil {
		return err
	}
	base := uint32(r.batch.vertexCount)
	for _, v := range vertices {
		r.batch.vertices = appendVertex2D(r.batch.vertices, v)
	}
	r.commit(len(vertices), indices, base)
	return nil
}

// Draw3D appends 3D geometry. It always uses the lit pipeline.
func (r *Renderer) Draw3D(vertices []Vertex3D, indices []uint32, m Material) error {
	key := batchKey{kind: Pipeline3DLit, blend: m.Blend}
	if err := r.reserve(key, len(vertices), indices); err != nil {
		return err
	}
	base := uint32(r.batch.vertexCount)
	for _, v := range vertices {
		r.batch.vertices = appendVertex3D(r.batch.vertices, v)
	}
	r.commit(len(vertices), indices, base)
	return nil
}

// reserve checks state and geometry and makes room in the active batch,
// flushing on a material change or when capacity would be exceeded.
func (r *Renderer) reserve(key batchKey, nv int, indices []uint32) error {
	if r.state != StateAccumulating {
		return fmt.Errorf("draw in state %s: %w", r.state, ErrNotAccumulating)
	}
	if nv > r.maxVertices || len(indices) > r.maxIndices {
		return fmt.Errorf("%d vertices, %d indices (capacity %d/%d): %w",
			nv, len(indices), r.maxVertices, r.maxIndices, ErrBatchTooLarge)
	}
	for _, i := range indices {
		if int(i) >= nv {
			return fmt.Errorf("index %d with %d vertices: %w", i, nv, ErrInvalidGeometry)
		}
	}

	switch {
	case r.batch.empty():
	case r.batch.key != key:
		r.stats.MaterialFlushes++
		if err := r.flush(); err != nil {
			return err
		}
	case r.batch.vertexCount+nv > r.maxVertices || r.batch.indexCount+len(indices) > r.maxIndices:
		r.stats.CapacityFlushes++
		if err := r.flush(); err != nil {
			return err
		}
	}
	r.batch.key = key
	return nil
}

func (r *Renderer) commit(nv int, indices []uint32, base uint32) {
	r.batch.indices = appendIndices(r.batch.indices, indices, base)
	r.batch.vertexCount += nv
	r.batch.indexCount += len(indices)
	r.stats.Draws++
}

// resolve2D picks the textured pipeline only when the texture is resident.
func (r *Renderer) resolve2D(m Material) batchKey {
	key := batchKey{kind: Pipeline2DColor, blend: m.Blend}
	if m.Texture == NoTexture {
		return key
	}
	if r.textures != nil {
		if _, ok := r.textures.BindGroup(m.Texture); ok {
			key.kind = Pipeline2DTextured
			key.texture = m.Texture
			return key
		}
	}
	if !r.warned[m.Texture] {
		r.warned[m.Texture] = true
		r.log.Warn("texture not resident, drawing untextured",
			zap.Uint64("texture", uint64(m.Texture)))
	}
	return key
}

// flush uploads the active batch and issues one indexed draw for it.
func (r *Renderer) flush() error {
	if r.batch.empty() {
		return nil
	}
	r.state = StateFlushing
	defer func() {
		r.batch.reset()
		r.state = StateAccumulating
	}()

	key := r.batch.key
	vertices := r.vertex2D
	if key.kind.Is3D() {
		vertices = r.vertex3D
	}
	vbuf, voff, err := vertices.write(r.batch.vertices)
	if err != nil {
		return fmt.Errorf("flush %s: %w", key.kind, err)
	}
	ibuf, ioff, err := r.index.write(r.batch.indices)
	if err != nil {
		return fmt.Errorf("flush %s: %w", key.kind, err)
	}

	pipeline := r.pipelines.Pipeline(key.kind, key.blend)
	if pipeline != r.lastPipeline {
		r.pass.SetPipeline(pipeline)
		r.pass.SetBindGroup(GroupCamera, r.cameraGroup)
		r.lastPipeline = pipeline
		r.stats.PipelineSwitches++
	}
	if key.kind == Pipeline2DTextured {
		group, ok := r.textures.BindGroup(key.texture)
		if !ok {
			return fmt.Errorf("flush: texture %d evicted mid-frame", key.texture)
		}
		r.pass.SetBindGroup(GroupTexture, group)
		r.stats.TextureBinds++
	}
	r.pass.SetVertexBuffer(0, vbuf, voff, uint64(len(r.batch.vertices)))
	r.pass.SetIndexBuffer(ibuf, gpu.IndexUint32, ioff, uint64(len(r.batch.indices)))
	r.pass.DrawIndexed(uint32(r.batch.indexCount), 1, 0, 0, 0)

	r.stats.Flushes++
	r.stats.Vertices += r.batch.vertexCount
	r.stats.Indices += r.batch.indexCount
	return nil
}

// DrawQuad draws an untextured rotated rectangle centred on position.
func (r *Renderer) DrawQuad(position, size mgl32.Vec2, rotation float32, color Color) error {
	return r.DrawSprite(position, size, rotation, color, FullRect, Material{})
}

// DrawSprite draws a rotated rectangle sampling uv from m's texture.
func (r *Renderer) DrawSprite(position, size mgl32.Vec2, rotation float32, color Color, uv Rect, m Material) error {
	h := size.Mul(0.5)
	rot := mgl32.Rotate2D(rotation)
	corners := [4]mgl32.Vec2{{-h[0], -h[1]}, {h[0], -h[1]}, {h[0], h[1]}, {-h[0], h[1]}}
	uvs := [4]mgl32.Vec2{
		{uv.X, uv.Y + uv.H},
		{uv.X + uv.W, uv.Y + uv.H},
		{uv.X + uv.W, uv.Y},
		{uv.X, uv.Y},
	}
	r.scratch2D = r.scratch2D[:0]
	for i, c := range corners {
		r.scratch2D = append(r.scratch2D, Vertex2D{
			Position: position.Add(rot.Mul2x1(c)),
			UV:       uvs[i],
			Color:    color,
		})
	}
	return r.Draw2D(r.scratch2D, quadIndices, m)
}

// DrawMesh draws mesh transformed by model. Normals are transformed by the
// inverse transpose so non-uniform scale keeps them perpendicular.
func (r *Renderer) DrawMesh(mesh *Mesh3D, model mgl32.Mat4, m Material) error {
	normalMat := model.Mat3().Inv().Transpose()
	r.scratch3D = r.scratch3D[:0]
	for _, v := range mesh.Vertices {
		v.Position = model.Mul4x1(v.Position.Vec4(1)).Vec3()
		if n := normalMat.Mul3x1(v.Normal); n.Len() > 0 {
			v.Normal = n.Normalize()
		}
		r.scratch3D = append(r.scratch3D, v)
	}
	return r.Draw3D(r.scratch3D, mesh.Indices, m)
}
