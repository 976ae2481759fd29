package material

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// AirIndex is the default refraction index of non-refractive materials
const AirIndex = core.AirIndex

// Phong is a material with a diffuse color source, a specular highlight,
// mirror reflection and transparency. Coefficients are not validated.
type Phong struct {
	Color         ColorSource // Diffuse color
	SpecularColor core.Vec3
	Exponent      float64 // Specular exponent
	Reflection    float64 // 0 = none, 1 = perfect mirror
	Refraction    float64 // Index of refraction
	Alpha         float64 // Opacity: 1 = opaque, 0 = fully transparent
}

// NewPhong creates a fully specified material
func NewPhong(color ColorSource, specular core.Vec3, exponent, reflection, refraction, opacity float64) *Phong {
	return &Phong{
		Color:         color,
		SpecularColor: specular,
		Exponent:      exponent,
		Reflection:    reflection,
		Refraction:    refraction,
		Alpha:         opacity,
	}
}

// NewMatte creates an opaque diffuse-only material
func NewMatte(albedo core.Vec3) *Phong {
	return NewPhong(NewSolidColor(albedo), core.Vec3{}, 1, 0, AirIndex, 1)
}

// NewMirror creates an opaque mirror tinted by albedo with the given reflection factor
func NewMirror(albedo core.Vec3, reflection float64) *Phong {
	return NewPhong(NewSolidColor(albedo), core.NewVec3(1, 1, 1), 64, reflection, AirIndex, 1)
}

// NewGlass creates a transparent material with a sharp highlight
func NewGlass(tint core.Vec3, refractiveIndex, opacity float64) *Phong {
	return NewPhong(NewSolidColor(tint), core.NewVec3(1, 1, 1), 128, 0, refractiveIndex, opacity)
}

// Diffuse evaluates the diffuse color at a texture coordinate
func (p *Phong) Diffuse(uv core.Vec2) core.Vec3 {
	if p.Color == nil {
		return core.Vec3{}
	}
	return p.Color.Evaluate(uv)
}

// Specular returns the specular color
func (p *Phong) Specular() core.Vec3 { return p.SpecularColor }

// SpecularExponent returns the Phong exponent
func (p *Phong) SpecularExponent() float64 { return p.Exponent }

// ReflectionFactor returns the mirror reflection weight
func (p *Phong) ReflectionFactor() float64 { return p.Reflection }

// RefractionIndex returns the index of refraction
func (p *Phong) RefractionIndex() float64 { return p.Refraction }

// Opacity returns 1 for opaque surfaces, 0 for fully transparent ones
func (p *Phong) Opacity() float64 { return p.Alpha }
