package component

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/greyengine/grey/internal/render"
)

// Sprite is a coloured, optionally textured rectangle drawn at the entity's
// transform. A zero UV rect samples the whole texture.
type Sprite struct {
	Color   render.Color
	Size    mgl32.Vec2
	Texture render.TextureHandle
	UV      render.Rect
	Blend   render.BlendMode
}

// Material returns the render material the sprite asks for.
func (s *Sprite) Material() render.Material {
	return render.Material{Texture: s.Texture, Blend: s.Blend}
}

// UVRect returns UV, or the full texture when UV is unset.
func (s *Sprite) UVRect() render.Rect {
	if s.UV.W == 0 && s.UV.H == 0 {
		return render.FullRect
	}
	return s.UV
}

// Mesh draws shared geometry with the lit 3D pipeline.
type Mesh struct {
	Mesh     *render.Mesh3D
	Material render.Material
}
