package gpu

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
)

// Op identifies a recorded command.
type Op int

const (
	OpWriteBuffer Op = iota
	OpWriteTexture
	OpClear
	OpSetPipeline
	OpSetBindGroup
	OpSetVertexBuffer
	OpSetIndexBuffer
	OpDrawIndexed
	OpSubmit
)

func (o Op) String() string {
	switch o {
	case OpWriteBuffer:
		return "write_buffer"
	case OpWriteTexture:
		return "write_texture"
	case OpClear:
		return "clear"
	case OpSetPipeline:
		return "set_pipeline"
	case OpSetBindGroup:
		return "set_bind_group"
	case OpSetVertexBuffer:
		return "set_vertex_buffer"
	case OpSetIndexBuffer:
		return "set_index_buffer"
	case OpDrawIndexed:
		return "draw_indexed"
	case OpSubmit:
		return "submit"
	}
	return "unknown"
}

// Command is one entry of the recorded stream. Only the fields relevant to
// Op are set.
type Command struct {
	Op          Op
	Pipeline    *RenderPipeline
	Index       uint32
	BindGroup   *BindGroup
	Buffer      *Buffer
	Texture     *Texture
	Offset      uint64
	Size        uint64
	IndexFormat IndexFormat
	Data        []byte
	IndexCount  uint32
	FirstIndex  uint32
	BaseVertex  int32
	Color       [4]float32
}

// DrawCall is a DrawIndexed resolved against the state bound when it was
// recorded. Vertices and Indices are copies of the bound buffer ranges.
type DrawCall struct {
	Pipeline     *RenderPipeline
	BindGroups   map[uint32]*BindGroup
	VertexBuffer *Buffer
	Vertices     []byte
	IndexFormat  IndexFormat
	Indices      []byte
	IndexCount   uint32
	BaseVertex   int32
}

var entryPointRe = regexp.MustCompile(`@(?:vertex|fragment)\s+fn\s+([A-Za-z_][A-Za-z0-9_]*)`)

// Recorder is a headless Device and RenderPass. It keeps buffer contents in
// memory, validates usage the way a WebGPU backend would and records every
// command in order.
type Recorder struct {
	nextID   uint32
	contents map[uint32][]byte
	texels   map[uint32][]byte
	commands []Command
	draws    []DrawCall
	submits  int
	err      error
	pending  []span
	drawn    bool

	clearColor [4]float32

	pipeline *RenderPipeline
	groups   map[uint32]*BindGroup
	vbuf     *Buffer
	voff     uint64
	vsize    uint64
	ibuf     *Buffer
	ioff     uint64
	isize    uint64
	ifmt     IndexFormat
}

// span is a buffer range read by a draw that has not been submitted yet.
type span struct {
	buffer   uint32
	from, to uint64
}

func (s span) overlaps(buffer uint32, from, to uint64) bool {
	return s.buffer == buffer && from < s.to && s.from < to
}

func NewRecorder() *Recorder {
	return &Recorder{
		contents: make(map[uint32][]byte),
		texels:   make(map[uint32][]byte),
		groups:   make(map[uint32]*BindGroup),
	}
}

func (r *Recorder) id() uint32 {
	r.nextID++
	return r.nextID
}

// --- Device ---

func (r *Recorder) CreateBuffer(desc BufferDescriptor) (*Buffer, error) {
	if desc.Size == 0 {
		return nil, fmt.Errorf("create buffer %q: zero size", desc.Label)
	}
	b := &Buffer{ID: r.id(), Label: desc.Label, Size: desc.Size, Usage: desc.Usage}
	r.contents[b.ID] = make([]byte, desc.Size)
	return b, nil
}

func (r *Recorder) WriteBuffer(buf *Buffer, offset uint64, data []byte) error {
	if buf == nil {
		return fmt.Errorf("write buffer: %w", ErrOutOfBounds)
	}
	if buf.Usage&UsageCopyDst == 0 {
		return fmt.Errorf("write buffer %q: %w", buf.Label, ErrUsage)
	}
	if offset+uint64(len(data)) > buf.Size {
		return fmt.Errorf("write buffer %q [%d:%d] size %d: %w",
			buf.Label, offset, offset+uint64(len(data)), buf.Size, ErrOutOfBounds)
	}
	end := offset + uint64(len(data))
	for _, p := range r.pending {
		if p.overlaps(buf.ID, offset, end) {
			err := fmt.Errorf("write buffer %q [%d:%d]: %w", buf.Label, offset, end, ErrWriteHazard)
			r.fail(err)
			return err
		}
	}
	copy(r.contents[buf.ID][offset:], data)
	r.commands = append(r.commands, Command{
		Op: OpWriteBuffer, Buffer: buf, Offset: offset,
		Size: uint64(len(data)), Data: slices.Clone(data),
	})
	return nil
}

func (r *Recorder) CreateTexture(desc TextureDescriptor) (*Texture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("create texture %q: empty extent %dx%d", desc.Label, desc.Width, desc.Height)
	}
	t := &Texture{ID: r.id(), Label: desc.Label, Width: desc.Width, Height: desc.Height}
	r.texels[t.ID] = make([]byte, int(desc.Width)*int(desc.Height)*4)
	return t, nil
}

func (r *Recorder) WriteTexture(tex *Texture, rgba []byte) error {
	if tex == nil {
		return fmt.Errorf("write texture: %w", ErrOutOfBounds)
	}
	want := int(tex.Width) * int(tex.Height) * 4
	if len(rgba) != want {
		return fmt.Errorf("write texture %q: got %d bytes, want %d: %w", tex.Label, len(rgba), want, ErrOutOfBounds)
	}
	copy(r.texels[tex.ID], rgba)
	r.commands = append(r.commands, Command{Op: OpWriteTexture, Texture: tex, Size: uint64(want)})
	return nil
}

func (r *Recorder) CreateSampler(desc SamplerDescriptor) (*Sampler, error) {
	return &Sampler{ID: r.id(), Label: desc.Label, Filter: desc.Filter}, nil
}

func (r *Recorder) CreateShaderModule(desc ShaderModuleDescriptor) (*ShaderModule, error) {
	matches := entryPointRe.FindAllStringSubmatch(desc.Code, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("create shader module %q: no entry points", desc.Label)
	}
	m := &ShaderModule{ID: r.id(), Label: desc.Label, Code: desc.Code}
	for _, match := range matches {
		m.EntryPoints = append(m.EntryPoints, match[1])
	}
	return m, nil
}

func (r *Recorder) CreateBindGroupLayout(desc BindGroupLayoutDescriptor) (*BindGroupLayout, error) {
	seen := make(map[uint32]bool, len(desc.Entries))
	for _, e := range desc.Entries {
		if seen[e.Binding] {
			return nil, fmt.Errorf("create bind group layout %q: duplicate binding %d", desc.Label, e.Binding)
		}
		seen[e.Binding] = true
	}
	return &BindGroupLayout{
		ID:      r.id(),
		Label:   desc.Label,
		Entries: slices.Clone(desc.Entries),
	}, nil
}

func (r *Recorder) CreatePipelineLayout(desc PipelineLayoutDescriptor) (*PipelineLayout, error) {
	for i, l := range desc.BindGroupLayouts {
		if l == nil {
			return nil, fmt.Errorf("create pipeline layout %q: group %d has no layout", desc.Label, i)
		}
	}
	return &PipelineLayout{
		ID:               r.id(),
		Label:            desc.Label,
		BindGroupLayouts: slices.Clone(desc.BindGroupLayouts),
	}, nil
}

func (r *Recorder) CreateRenderPipeline(desc RenderPipelineDescriptor) (*RenderPipeline, error) {
	if desc.Layout == nil || desc.Module == nil {
		return nil, fmt.Errorf("create render pipeline %q: layout and module are required", desc.Label)
	}
	for _, ep := range []string{desc.VertexEntry, desc.FragmentEntry} {
		if !desc.Module.HasEntryPoint(ep) {
			return nil, fmt.Errorf("create render pipeline %q: %q: %w", desc.Label, ep, ErrMissingEntryPoint)
		}
	}
	if len(desc.Buffers) == 0 {
		return nil, fmt.Errorf("create render pipeline %q: no vertex buffer layout", desc.Label)
	}
	return &RenderPipeline{ID: r.id(), Label: desc.Label, Descriptor: desc}, nil
}

func (r *Recorder) CreateBindGroup(desc BindGroupDescriptor) (*BindGroup, error) {
	if desc.Layout == nil {
		return nil, fmt.Errorf("create bind group %q: %w", desc.Label, ErrLayoutMismatch)
	}
	if len(desc.Entries) != len(desc.Layout.Entries) {
		return nil, fmt.Errorf("create bind group %q: %d entries for %d layout slots: %w",
			desc.Label, len(desc.Entries), len(desc.Layout.Entries), ErrLayoutMismatch)
	}
	for _, e := range desc.Entries {
		if err := checkEntry(desc.Layout, e); err != nil {
			return nil, fmt.Errorf("create bind group %q: %w", desc.Label, err)
		}
	}
	return &BindGroup{
		ID:      r.id(),
		Label:   desc.Label,
		Layout:  desc.Layout,
		Entries: slices.Clone(desc.Entries),
	}, nil
}

func checkEntry(layout *BindGroupLayout, e BindGroupEntry) error {
	for _, le := range layout.Entries {
		if le.Binding != e.Binding {
			continue
		}
		var ok bool
		switch le.Type {
		case BindingUniformBuffer:
			ok = e.Buffer != nil && e.Buffer.Usage&UsageUniform != 0
		case BindingTexture:
			ok = e.Texture != nil
		case BindingSampler:
			ok = e.Sampler != nil
		}
		if !ok {
			return fmt.Errorf("binding %d expects %s: %w", e.Binding, le.Type, ErrLayoutMismatch)
		}
		return nil
	}
	return fmt.Errorf("binding %d not in layout %q: %w", e.Binding, layout.Label, ErrLayoutMismatch)
}

// --- RenderPass ---

func (r *Recorder) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Recorder) Clear(red, green, blue, alpha float32) {
	if r.drawn {
		r.fail(errors.New("clear after draw in the same pass"))
	}
	r.clearColor = [4]float32{red, green, blue, alpha}
	r.commands = append(r.commands, Command{Op: OpClear, Color: r.clearColor})
}

func (r *Recorder) SetPipeline(p *RenderPipeline) {
	r.pipeline = p
	r.commands = append(r.commands, Command{Op: OpSetPipeline, Pipeline: p})
}

func (r *Recorder) SetBindGroup(index uint32, group *BindGroup) {
	r.groups[index] = group
	r.commands = append(r.commands, Command{Op: OpSetBindGroup, Index: index, BindGroup: group})
}

func (r *Recorder) SetVertexBuffer(slot uint32, buf *Buffer, offset, size uint64) {
	if buf == nil || buf.Usage&UsageVertex == 0 {
		r.fail(fmt.Errorf("set vertex buffer: %w", ErrUsage))
	} else if offset+size > buf.Size {
		r.fail(fmt.Errorf("set vertex buffer %q: %w", buf.Label, ErrOutOfBounds))
	}
	r.vbuf, r.voff, r.vsize = buf, offset, size
	r.commands = append(r.commands, Command{Op: OpSetVertexBuffer, Index: slot, Buffer: buf, Offset: offset, Size: size})
}

func (r *Recorder) SetIndexBuffer(buf *Buffer, format IndexFormat, offset, size uint64) {
	if buf == nil || buf.Usage&UsageIndex == 0 {
		r.fail(fmt.Errorf("set index buffer: %w", ErrUsage))
	} else if offset+size > buf.Size {
		r.fail(fmt.Errorf("set index buffer %q: %w", buf.Label, ErrOutOfBounds))
	}
	r.ibuf, r.ioff, r.isize, r.ifmt = buf, offset, size, format
	r.commands = append(r.commands, Command{Op: OpSetIndexBuffer, Buffer: buf, IndexFormat: format, Offset: offset, Size: size})
}

func (r *Recorder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	r.drawn = true
	r.commands = append(r.commands, Command{
		Op: OpDrawIndexed, IndexCount: indexCount, FirstIndex: firstIndex, BaseVertex: baseVertex,
	})
	if err := r.checkDrawState(indexCount, firstIndex); err != nil {
		r.fail(err)
		return
	}
	groups := make(map[uint32]*BindGroup, len(r.groups))
	for k, v := range r.groups {
		groups[k] = v
	}
	isz := r.ifmt.Size()
	start := r.ioff + uint64(firstIndex)*isz
	r.pending = append(r.pending,
		span{buffer: r.vbuf.ID, from: r.voff, to: r.voff + r.vsize},
		span{buffer: r.ibuf.ID, from: start, to: start + uint64(indexCount)*isz},
	)
	r.draws = append(r.draws, DrawCall{
		Pipeline:     r.pipeline,
		BindGroups:   groups,
		VertexBuffer: r.vbuf,
		Vertices:     slices.Clone(r.contents[r.vbuf.ID][r.voff : r.voff+r.vsize]),
		IndexFormat:  r.ifmt,
		Indices:      slices.Clone(r.contents[r.ibuf.ID][start : start+uint64(indexCount)*isz]),
		IndexCount:   indexCount,
		BaseVertex:   baseVertex,
	})
}

func (r *Recorder) checkDrawState(indexCount, firstIndex uint32) error {
	if r.pipeline == nil {
		return errors.New("draw indexed: no pipeline set")
	}
	if r.vbuf == nil || r.ibuf == nil {
		return errors.New("draw indexed: vertex and index buffers must be set")
	}
	if uint64(firstIndex+indexCount)*r.ifmt.Size() > r.isize {
		return fmt.Errorf("draw indexed: %d indices past bound range: %w", indexCount, ErrOutOfBounds)
	}
	for i, layout := range r.pipeline.Descriptor.Layout.BindGroupLayouts {
		g := r.groups[uint32(i)]
		if g == nil || g.Layout != layout {
			return fmt.Errorf("draw indexed with %q: group %d: %w", r.pipeline.Label, i, ErrLayoutMismatch)
		}
	}
	stride := r.pipeline.Descriptor.Buffers[0].ArrayStride
	if stride == 0 || r.vsize%stride != 0 {
		return fmt.Errorf("draw indexed with %q: vertex range %d not a multiple of stride %d",
			r.pipeline.Label, r.vsize, stride)
	}
	return nil
}

// Submit ends the current pass. It returns the first invalid usage seen since
// the previous submit and clears bound state.
func (r *Recorder) Submit() error {
	r.commands = append(r.commands, Command{Op: OpSubmit})
	r.submits++
	err := r.err
	r.err = nil
	r.pipeline, r.vbuf, r.ibuf = nil, nil, nil
	r.pending = r.pending[:0]
	r.drawn = false
	clear(r.groups)
	return err
}

// Reset drops recorded commands and draws. Resources and buffer contents are
// kept.
func (r *Recorder) Reset() {
	r.commands = r.commands[:0]
	r.draws = r.draws[:0]
}

func (r *Recorder) Commands() []Command { return r.commands }

func (r *Recorder) Draws() []DrawCall { return r.draws }

func (r *Recorder) Submits() int { return r.submits }

// ClearColor returns the colour of the most recent Clear.
func (r *Recorder) ClearColor() [4]float32 { return r.clearColor }

// Err returns the first invalid usage recorded since the last Submit.
func (r *Recorder) Err() error { return r.err }

// Count returns how many commands of the given kind were recorded.
func (r *Recorder) Count(op Op) int {
	n := 0
	for _, c := range r.commands {
		if c.Op == op {
			n++
		}
	}
	return n
}

// BufferContents returns the current bytes of buf.
func (r *Recorder) BufferContents(buf *Buffer) []byte {
	return r.contents[buf.ID]
}
