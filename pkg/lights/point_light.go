package lights

import "github.com/df07/go-whitted-raytracer/pkg/core"

// PointLight is an infinitely small light at a fixed position
type PointLight struct {
	Location  core.Vec3
	Intensity core.Vec3 // RGB color/intensity
}

// NewPointLight creates a new point light
func NewPointLight(position, color core.Vec3) *PointLight {
	return &PointLight{
		Location:  position,
		Intensity: color,
	}
}

// Position returns the light position
func (l *PointLight) Position() core.Vec3 {
	return l.Location
}

// Color returns the light color
func (l *PointLight) Color() core.Vec3 {
	return l.Intensity
}
