package draw

import "github.com/tomz197/crystals/internal/physics"

// Camera projects world positions onto the logical canvas plane. The camera
// looks down -Z; objects closer than Near are not drawn.
type Camera struct {
	Position physics.Vec3
	Focal    float64 // Logical units per world unit at depth 1
	Near     float64
	Width    float64 // Logical canvas size
	Height   float64
	Offset   Point // Screen-space offset, used for shake
}

// NewCamera returns a camera behind the craft plane, centered on a logical
// canvas of the given size.
func NewCamera(width, height float64) Camera {
	return Camera{
		Position: physics.Vec3{Z: 32},
		Focal:    46,
		Near:     1,
		Width:    width,
		Height:   height,
	}
}

// Project returns the canvas position of p and the scale factor at its
// depth. ok is false for points behind the near plane.
func (c Camera) Project(p physics.Vec3) (pt Point, scale float64, ok bool) {
	depth := c.Position.Z - p.Z
	if depth < c.Near {
		return Point{}, 0, false
	}
	scale = c.Focal / depth
	pt = Point{
		X: c.Width/2 + (p.X-c.Position.X)*scale + c.Offset.X,
		Y: c.Height/2 - (p.Y-c.Position.Y)*scale + c.Offset.Y,
	}
	return pt, scale, true
}
