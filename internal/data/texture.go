package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TextureEntry describes a procedurally filled texture. The engine core does
// not decode image formats; a manifest entry is a solid colour or a two
// colour checkerboard.
type TextureEntry struct {
	Name    string    `yaml:"name"`
	Width   uint32    `yaml:"width"`
	Height  uint32    `yaml:"height"`
	Color   [4]uint8  `yaml:"color"`
	Checker *[4]uint8 `yaml:"checker"`
	Cell    uint32    `yaml:"cell"`
}

// Pixels returns width×height RGBA8 texels.
func (e *TextureEntry) Pixels() []byte {
	px := make([]byte, 0, int(e.Width)*int(e.Height)*4)
	cell := max(e.Cell, 1)
	for y := uint32(0); y < e.Height; y++ {
		for x := uint32(0); x < e.Width; x++ {
			c := e.Color
			if e.Checker != nil && (x/cell+y/cell)%2 == 1 {
				c = *e.Checker
			}
			px = append(px, c[:]...)
		}
	}
	return px
}

// TextureManifest lists the textures to upload at startup.
type TextureManifest struct {
	entries []TextureEntry
	byName  map[string]*TextureEntry
}

// LoadTextureManifest loads a texture manifest YAML file.
func LoadTextureManifest(path string) (*TextureManifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read texture manifest: %w", err)
	}
	return ParseTextureManifest(raw)
}

// ParseTextureManifest decodes manifest YAML. Names must be unique and
// extents non-zero.
func ParseTextureManifest(raw []byte) (*TextureManifest, error) {
	var entries []TextureEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse texture manifest: %w", err)
	}
	m := &TextureManifest{
		entries: entries,
		byName:  make(map[string]*TextureEntry, len(entries)),
	}
	for i := range m.entries {
		e := &m.entries[i]
		if e.Name == "" {
			return nil, fmt.Errorf("texture manifest entry %d: missing name", i)
		}
		if e.Width == 0 || e.Height == 0 {
			return nil, fmt.Errorf("texture %q: empty extent %dx%d", e.Name, e.Width, e.Height)
		}
		if _, dup := m.byName[e.Name]; dup {
			return nil, fmt.Errorf("texture %q: duplicate name", e.Name)
		}
		m.byName[e.Name] = e
	}
	return m, nil
}

// Entries returns the textures in file order.
func (m *TextureManifest) Entries() []TextureEntry { return m.entries }

// Get returns the named entry, or nil.
func (m *TextureManifest) Get(name string) *TextureEntry { return m.byName[name] }

// Count returns the number of textures.
func (m *TextureManifest) Count() int { return len(m.entries) }
