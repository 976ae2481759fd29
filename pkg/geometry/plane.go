package geometry

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Plane represents an infinite plane defined by a point and normal
type Plane struct {
	Point    core.Vec3 // A point on the plane
	Normal   core.Vec3 // Normal vector (normalized)
	Material int       // Index into the scene material table
	u, v     core.Vec3 // Tangent basis for texture coordinates
}

// NewPlane creates a new plane
func NewPlane(point, normal core.Vec3, materialID int) *Plane {
	n := normal.Normalize()

	// Pick any axis that is not parallel to the normal to build the tangent basis
	var axis core.Vec3
	if math.Abs(n.X) > 0.9 {
		axis = core.NewVec3(0, 1, 0)
	} else {
		axis = core.NewVec3(1, 0, 0)
	}
	u := axis.Cross(n).Normalize()
	v := n.Cross(u)

	return &Plane{
		Point:    point,
		Normal:   n,
		Material: materialID,
		u:        u,
		v:        v,
	}
}

// Intersect tests if a ray intersects with the plane.
// A ray starting on the plane reports t=0 and is left to the caller's epsilon.
func (p *Plane) Intersect(ray core.Ray) (float64, bool) {
	denominator := ray.Direction.Dot(p.Normal)

	// Ray parallel to plane
	if math.Abs(denominator) < 1e-12 {
		return 0, false
	}

	// t = (point_on_plane - ray_origin) · normal / (ray_direction · normal)
	t := p.Point.Subtract(ray.Origin).Dot(p.Normal) / denominator
	if t < 0 {
		return 0, false
	}
	return t, true
}

// NormalAt returns the fixed plane normal. The plane is one-sided: hits from
// behind are shaded with the same normal.
func (p *Plane) NormalAt(point core.Vec3) core.Vec3 {
	return p.Normal
}

// TextureCoordAt projects the point onto the tangent basis
func (p *Plane) TextureCoordAt(point core.Vec3) core.Vec2 {
	d := point.Subtract(p.Point)
	return core.NewVec2(d.Dot(p.u), d.Dot(p.v))
}

// ExitPoint returns the entry point: the plane has no thickness
func (p *Plane) ExitPoint(point, direction core.Vec3) core.Vec3 {
	return point
}

// MaterialID returns the material table index
func (p *Plane) MaterialID() int {
	return p.Material
}
