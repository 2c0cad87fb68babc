package render

import "github.com/go-gl/mathgl/mgl32"

// Fixed directional light used by fs_main_3d. The shader hardcodes the same
// values; TestShaderLightMatchesGo keeps them in step.
const (
	Ambient = 0.2
	Diffuse = 0.8
)

// LightDirection points from the surface towards the light.
var LightDirection = mgl32.Vec3{1, 2, 1}.Normalize()

// ShadeLit is the CPU reference of the lit fragment stage: the vertex colour's
// RGB scaled by ambient plus clamped diffuse, alpha kept.
func ShadeLit(normal mgl32.Vec3, c Color) Color {
	var diffuse float32
	if normal.Len() > 0 {
		diffuse = max(normal.Normalize().Dot(LightDirection), 0) * Diffuse
	}
	k := float32(Ambient) + diffuse
	return Color{c.R * k, c.G * k, c.B * k, c.A}
}
