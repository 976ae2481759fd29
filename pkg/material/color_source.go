package material

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// ColorSource provides spatially-varying colors for materials
type ColorSource interface {
	// Evaluate returns color at the given texture coordinate
	Evaluate(uv core.Vec2) core.Vec3
}

// SolidColor provides uniform color
type SolidColor struct {
	Color core.Vec3
}

// NewSolidColor creates a new solid color source
func NewSolidColor(color core.Vec3) *SolidColor {
	return &SolidColor{Color: color}
}

// Evaluate returns the solid color regardless of UV
func (s *SolidColor) Evaluate(uv core.Vec2) core.Vec3 {
	return s.Color
}

// Checkerboard alternates two colors on a UV grid
type Checkerboard struct {
	Even  core.Vec3
	Odd   core.Vec3
	Scale float64 // Checks per unit of UV
}

// NewCheckerboard creates a procedural checkerboard
func NewCheckerboard(even, odd core.Vec3, scale float64) *Checkerboard {
	return &Checkerboard{Even: even, Odd: odd, Scale: scale}
}

// Evaluate picks the check color for the given UV
func (c *Checkerboard) Evaluate(uv core.Vec2) core.Vec3 {
	cx := int(math.Floor(uv.X * c.Scale))
	cy := int(math.Floor(uv.Y * c.Scale))
	if (cx+cy)%2 == 0 {
		return c.Even
	}
	return c.Odd
}
