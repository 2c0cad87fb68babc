package data

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// Floats is a YAML sequence of numbers, converted to a fixed-size vector on
// use. An empty sequence means "use the default".
type Floats []float32

// Vec2 returns f as a 2-vector, or def when f is empty.
func (f Floats) Vec2(def mgl32.Vec2) (mgl32.Vec2, error) {
	switch len(f) {
	case 0:
		return def, nil
	case 2:
		return mgl32.Vec2{f[0], f[1]}, nil
	}
	return def, fmt.Errorf("want 2 numbers, got %d", len(f))
}

// Vec3 returns f as a 3-vector, or def when f is empty.
func (f Floats) Vec3(def mgl32.Vec3) (mgl32.Vec3, error) {
	switch len(f) {
	case 0:
		return def, nil
	case 3:
		return mgl32.Vec3{f[0], f[1], f[2]}, nil
	}
	return def, fmt.Errorf("want 3 numbers, got %d", len(f))
}

type TransformDesc struct {
	Position Floats  `yaml:"position"`
	Rotation float32 `yaml:"rotation"`
	Scale    Floats  `yaml:"scale"`
}

type Transform3DDesc struct {
	Position Floats `yaml:"position"`
	Rotation Floats `yaml:"rotation"`
	Scale    Floats `yaml:"scale"`
}

type SpriteDesc struct {
	Color   string `yaml:"color"`
	Size    Floats `yaml:"size"`
	Texture string `yaml:"texture"`
	UV      Floats `yaml:"uv"`
	Opaque  bool   `yaml:"opaque"`
}

type MeshDesc struct {
	Shape string  `yaml:"shape"` // cube | plane
	Size  float32 `yaml:"size"`
	Color string  `yaml:"color"`
}

type VelocityDesc struct {
	Linear  Floats  `yaml:"linear"`
	Angular float32 `yaml:"angular"`
}

// EntityDesc is one entity of a scene file. Every component block is
// optional.
type EntityDesc struct {
	Name        string           `yaml:"name"`
	Parent      string           `yaml:"parent"`
	Transform   *TransformDesc   `yaml:"transform"`
	Transform3D *Transform3DDesc `yaml:"transform3d"`
	Sprite      *SpriteDesc      `yaml:"sprite"`
	Mesh        *MeshDesc        `yaml:"mesh"`
	Velocity    *VelocityDesc    `yaml:"velocity"`
	PlayerSpeed float32          `yaml:"player_speed"`
	Follow      bool             `yaml:"camera_follow"`
}

type CameraDesc struct {
	Position Floats  `yaml:"position"`
	Zoom     float32 `yaml:"zoom"`
	Rotation float32 `yaml:"rotation"`
	Eye      Floats  `yaml:"eye"`
	Target   Floats  `yaml:"target"`
}

// SceneDesc is the decoded form of a scene YAML file.
type SceneDesc struct {
	Name     string       `yaml:"name"`
	Camera   CameraDesc   `yaml:"camera"`
	Entities []EntityDesc `yaml:"entities"`
}

// LoadScene reads and validates a scene file.
func LoadScene(path string) (*SceneDesc, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return ParseScene(raw)
}

// ParseScene decodes scene YAML. Names must be unique and parents must name
// an entity declared earlier in the file.
func ParseScene(raw []byte) (*SceneDesc, error) {
	var s SceneDesc
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	seen := make(map[string]bool, len(s.Entities))
	for i, e := range s.Entities {
		if e.Parent != "" && !seen[e.Parent] {
			return nil, fmt.Errorf("scene entity %d (%q): parent %q not declared before it", i, e.Name, e.Parent)
		}
		if e.Name == "" {
			continue
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("scene entity %d: duplicate name %q", i, e.Name)
		}
		seen[e.Name] = true
	}
	return &s, nil
}

// Count returns the number of entities in the scene.
func (s *SceneDesc) Count() int {
	return len(s.Entities)
}
