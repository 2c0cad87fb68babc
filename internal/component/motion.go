package component

import "github.com/go-gl/mathgl/mgl32"

// Velocity2D is integrated into Transform2D by the movement system.
// Linear is in world units per second, Angular in radians per second.
type Velocity2D struct {
	Linear  mgl32.Vec2
	Angular float32
}

// PlayerControlled entities move along the input movement axis at Speed
// world units per second.
type PlayerControlled struct {
	Speed float32
}

// CameraFollow centres the 2D camera on the entity plus Offset.
type CameraFollow struct {
	Offset mgl32.Vec2
}

// Name is a human-readable label, unique per scene by convention.
type Name struct {
	Value string
}
