package geometry

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// selfHitTolerance discards roots that are numerically at the ray origin
const selfHitTolerance = 1e-9

// Sphere represents a sphere shape
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material int // Index into the scene material table
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, materialID int) *Sphere {
	return &Sphere{
		Center:   center,
		Radius:   radius,
		Material: materialID,
	}
}

// roots returns both solutions of the ray/sphere quadratic, nearest first
func (s *Sphere) roots(ray core.Ray) (float64, float64, bool) {
	// Vector from ray origin to sphere center
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 || a == 0 {
		return 0, 0, false
	}

	sqrtD := math.Sqrt(discriminant)
	return (-halfB - sqrtD) / a, (-halfB + sqrtD) / a, true
}

// Intersect returns the distance to the nearest root in front of the ray origin
func (s *Sphere) Intersect(ray core.Ray) (float64, bool) {
	near, far, ok := s.roots(ray)
	if !ok {
		return 0, false
	}
	if near > selfHitTolerance {
		return near, true
	}
	if far > selfHitTolerance {
		return far, true
	}
	return 0, false
}

// NormalAt returns the outward normal (from center to point)
func (s *Sphere) NormalAt(point core.Vec3) core.Vec3 {
	return point.Subtract(s.Center).Multiply(1.0 / s.Radius)
}

// TextureCoordAt maps the point to spherical (u, v) coordinates
func (s *Sphere) TextureCoordAt(point core.Vec3) core.Vec2 {
	p := point.Subtract(s.Center).Normalize()
	theta := math.Acos(max(-1, min(1, -p.Y)))
	phi := math.Atan2(-p.Z, p.X) + math.Pi
	return core.NewVec2(phi/(2*math.Pi), theta/math.Pi)
}

// ExitPoint returns where a ray travelling inside the sphere leaves it
func (s *Sphere) ExitPoint(point, direction core.Vec3) core.Vec3 {
	_, far, ok := s.roots(core.NewRay(point, direction))
	if !ok || far < 0 {
		return point
	}
	return point.Add(direction.Multiply(far))
}

// MaterialID returns the material table index
func (s *Sphere) MaterialID() int {
	return s.Material
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox() core.AABB {
	r := math.Abs(s.Radius)
	radius := core.NewVec3(r, r, r)
	return core.NewAABB(
		s.Center.Subtract(radius),
		s.Center.Add(radius),
	)
}
