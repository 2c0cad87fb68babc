// Package asset keeps GPU-resident textures addressable by name. It never
// decodes image files; callers hand it raw RGBA8 pixels.
package asset

import (
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/greyengine/grey/internal/gpu"
	"github.com/greyengine/grey/internal/render"
)

var (
	ErrTextureExists = errors.New("texture already loaded")
	ErrBadPixels     = errors.New("pixel data does not match extent")
)

type entry struct {
	name    string
	texture *gpu.Texture
	group   *gpu.BindGroup
}

// TextureTable uploads textures and resolves handles to their bind groups.
// It implements render.TextureSource.
type TextureTable struct {
	log     *zap.Logger
	device  gpu.Device
	layout  *gpu.BindGroupLayout
	sampler *gpu.Sampler
	entries map[render.TextureHandle]*entry
}

// NewTextureTable creates the shared sampler. layout is the pipeline set's
// texture bind group layout.
func NewTextureTable(device gpu.Device, layout *gpu.BindGroupLayout, filter gpu.FilterMode, log *zap.Logger) (*TextureTable, error) {
	sampler, err := device.CreateSampler(gpu.SamplerDescriptor{Label: "default", Filter: filter})
	if err != nil {
		return nil, fmt.Errorf("create sampler: %w", err)
	}
	return &TextureTable{
		log:     log,
		device:  device,
		layout:  layout,
		sampler: sampler,
		entries: make(map[render.TextureHandle]*entry),
	}, nil
}

// HandleFor derives the stable handle of a texture name. The same name maps
// to the same handle across runs, so scenes can refer to textures before
// they are loaded.
func HandleFor(name string) render.TextureHandle {
	h := xxhash.Sum64String(name)
	if h == 0 {
		h = 1
	}
	return render.TextureHandle(h)
}

// Load uploads width×height RGBA8 pixels under name.
func (t *TextureTable) Load(name string, width, height uint32, rgba []byte) (render.TextureHandle, error) {
	h := HandleFor(name)
	if e, ok := t.entries[h]; ok {
		return h, fmt.Errorf("load %q (handle of %q): %w", name, e.name, ErrTextureExists)
	}
	if want := int(width) * int(height) * 4; want == 0 || len(rgba) != want {
		return 0, fmt.Errorf("load %q: %d bytes for %dx%d: %w", name, len(rgba), width, height, ErrBadPixels)
	}
	tex, err := t.device.CreateTexture(gpu.TextureDescriptor{Label: name, Width: width, Height: height})
	if err != nil {
		return 0, fmt.Errorf("load %q: %w", name, err)
	}
	if err := t.device.WriteTexture(tex, rgba); err != nil {
		return 0, fmt.Errorf("load %q: %w", name, err)
	}
	group, err := t.device.CreateBindGroup(gpu.BindGroupDescriptor{
		Label:  name,
		Layout: t.layout,
		Entries: []gpu.BindGroupEntry{
			{Binding: 0, Texture: tex},
			{Binding: 1, Sampler: t.sampler},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("load %q: %w", name, err)
	}
	t.entries[h] = &entry{name: name, texture: tex, group: group}
	t.log.Debug("texture loaded",
		zap.String("name", name),
		zap.Uint32("width", width),
		zap.Uint32("height", height),
	)
	return h, nil
}

// LoadSolid uploads a 1×1 texture of colour c.
func (t *TextureTable) LoadSolid(name string, c render.Color) (render.TextureHandle, error) {
	px := []byte{unorm8(c.R), unorm8(c.G), unorm8(c.B), unorm8(c.A)}
	return t.Load(name, 1, 1, px)
}

func unorm8(f float32) byte {
	return byte(min(max(f, 0), 1)*255 + 0.5)
}

// Unload forgets a texture. Draws referring to it fall back to the colour
// pipeline.
func (t *TextureTable) Unload(h render.TextureHandle) bool {
	if _, ok := t.entries[h]; !ok {
		return false
	}
	delete(t.entries, h)
	return true
}

// BindGroup implements render.TextureSource.
func (t *TextureTable) BindGroup(h render.TextureHandle) (*gpu.BindGroup, bool) {
	e, ok := t.entries[h]
	if !ok {
		return nil, false
	}
	return e.group, true
}

// Lookup returns the handle of a loaded texture by name.
func (t *TextureTable) Lookup(name string) (render.TextureHandle, bool) {
	h := HandleFor(name)
	e, ok := t.entries[h]
	return h, ok && e.name == name
}

// Count returns the number of loaded textures.
func (t *TextureTable) Count() int { return len(t.entries) }
