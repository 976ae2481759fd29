package geometry

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

const (
	sdfSurfaceEpsilon = 1e-6
	sdfNormalDelta    = 1e-5
	sdfMaxSteps       = 512
)

// SDFSolid is a solid described by a signed distance field
type SDFSolid struct {
	Field    sdf.SDF3
	Material int // Index into the scene material table
	bounds   core.AABB
}

// NewSDFSolid wraps a signed distance field as a scene object
func NewSDFSolid(field sdf.SDF3, materialID int) *SDFSolid {
	bb := field.BoundingBox()
	bounds := core.NewAABB(fromV3(bb.Min), fromV3(bb.Max))
	return &SDFSolid{
		Field:    field,
		Material: materialID,
		bounds:   bounds.Expand(10 * sdfSurfaceEpsilon),
	}
}

// NewSDFSphere creates a sphere distance field centered at center
func NewSDFSphere(center core.Vec3, radius float64, materialID int) (*SDFSolid, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sdf sphere: %w", err)
	}
	return NewSDFSolid(sdf.Transform3D(s, sdf.Translate3d(toV3(center))), materialID), nil
}

// NewSDFRoundedBox creates a box with full dimensions size and rounded edges
func NewSDFRoundedBox(center, size core.Vec3, round float64, materialID int) (*SDFSolid, error) {
	s, err := sdf.Box3D(toV3(size), round)
	if err != nil {
		return nil, fmt.Errorf("sdf rounded box: %w", err)
	}
	return NewSDFSolid(sdf.Transform3D(s, sdf.Translate3d(toV3(center))), materialID), nil
}

// NewSDFCylinder creates a Y-up cylinder of the given height centered at center
func NewSDFCylinder(center core.Vec3, height, radius float64, materialID int) (*SDFSolid, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdf cylinder: %w", err)
	}
	// sdfx cylinders run along Z
	m := sdf.Translate3d(toV3(center)).Mul(sdf.RotateX(-math.Pi / 2))
	return NewSDFSolid(sdf.Transform3D(s, m), materialID), nil
}

// NewSDFUnion joins solids into one object using the given material
func NewSDFUnion(materialID int, solids ...*SDFSolid) (*SDFSolid, error) {
	if len(solids) == 0 {
		return nil, fmt.Errorf("sdf union: no solids")
	}
	fields := make([]sdf.SDF3, len(solids))
	for i, s := range solids {
		fields[i] = s.Field
	}
	return NewSDFSolid(sdf.Union3D(fields...), materialID), nil
}

func (s *SDFSolid) eval(p core.Vec3) float64 {
	return s.Field.Evaluate(toV3(p))
}

// Intersect sphere-traces the ray inside the bounding box
func (s *SDFSolid) Intersect(ray core.Ray) (float64, bool) {
	length := ray.Direction.Length()
	if length == 0 {
		return 0, false
	}
	dir := ray.Direction.Multiply(1 / length)
	unit := core.NewRay(ray.Origin, dir)

	tNear, tFar, ok := s.bounds.Slabs(unit)
	if !ok || tFar < 0 {
		return 0, false
	}
	t := math.Max(tNear, 0)

	// Starting on the surface: step off before marching
	if math.Abs(s.eval(unit.At(t))) < sdfSurfaceEpsilon {
		t += 10 * sdfSurfaceEpsilon
	}

	for i := 0; i < sdfMaxSteps && t <= tFar; i++ {
		d := math.Abs(s.eval(unit.At(t)))
		if d < sdfSurfaceEpsilon {
			if t <= selfHitTolerance {
				return 0, false
			}
			return t / length, true
		}
		t += d
	}
	return 0, false
}

// NormalAt estimates the gradient with central differences
func (s *SDFSolid) NormalAt(point core.Vec3) core.Vec3 {
	h := sdfNormalDelta
	dx := core.NewVec3(h, 0, 0)
	dy := core.NewVec3(0, h, 0)
	dz := core.NewVec3(0, 0, h)
	n := core.NewVec3(
		s.eval(point.Add(dx))-s.eval(point.Subtract(dx)),
		s.eval(point.Add(dy))-s.eval(point.Subtract(dy)),
		s.eval(point.Add(dz))-s.eval(point.Subtract(dz)),
	)
	return n.Normalize()
}

// TextureCoordAt maps the point to spherical coordinates about the bounds center
func (s *SDFSolid) TextureCoordAt(point core.Vec3) core.Vec2 {
	p := point.Subtract(s.bounds.Center()).Normalize()
	theta := math.Acos(max(-1, min(1, -p.Y)))
	phi := math.Atan2(-p.Z, p.X) + math.Pi
	return core.NewVec2(phi/(2*math.Pi), theta/math.Pi)
}

// ExitPoint marches through the interior until the field changes sign
func (s *SDFSolid) ExitPoint(point, direction core.Vec3) core.Vec3 {
	dir := direction.Normalize()
	if dir.LengthSquared() == 0 {
		return point
	}
	unit := core.NewRay(point, dir)
	_, tFar, ok := s.bounds.Slabs(unit)
	if !ok || tFar <= 0 {
		return point
	}

	t := 10 * sdfSurfaceEpsilon
	for i := 0; i < sdfMaxSteps && t <= tFar; i++ {
		d := s.eval(unit.At(t))
		if d >= -sdfSurfaceEpsilon {
			return unit.At(t)
		}
		t += math.Max(-d, sdfSurfaceEpsilon)
	}
	return unit.At(math.Min(t, tFar))
}

// MaterialID returns the material table index
func (s *SDFSolid) MaterialID() int {
	return s.Material
}

// BoundingBox returns the (slightly padded) field bounds
func (s *SDFSolid) BoundingBox() core.AABB {
	return s.bounds
}

func toV3(v core.Vec3) v3.Vec {
	return v3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

func fromV3(v v3.Vec) core.Vec3 {
	return core.NewVec3(v.X, v.Y, v.Z)
}
