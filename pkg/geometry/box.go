package geometry

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Box represents a solid axis-aligned box
type Box struct {
	Bounds   core.AABB
	Material int // Index into the scene material table
}

// NewBox creates a box from its minimum and maximum corners
func NewBox(min, max core.Vec3, materialID int) *Box {
	return &Box{
		Bounds:   core.NewAABBFromPoints(min, max),
		Material: materialID,
	}
}

// NewAxisAlignedBox creates a box from a center and half-extents
func NewAxisAlignedBox(center, size core.Vec3, materialID int) *Box {
	return NewBox(center.Subtract(size), center.Add(size), materialID)
}

// Intersect returns the entry distance, or the exit distance for rays starting inside
func (b *Box) Intersect(ray core.Ray) (float64, bool) {
	tNear, tFar, ok := b.Bounds.Slabs(ray)
	if !ok {
		return 0, false
	}
	if tNear > selfHitTolerance {
		return tNear, true
	}
	if tFar > selfHitTolerance {
		return tFar, true
	}
	return 0, false
}

// dominantAxis returns the axis of the face nearest to point and the side (-1 or +1)
func (b *Box) dominantAxis(point core.Vec3) (int, float64) {
	center := b.Bounds.Center()
	half := b.Bounds.Size().Multiply(0.5)
	rel := point.Subtract(center)

	scaled := [3]float64{
		safeDiv(rel.X, half.X),
		safeDiv(rel.Y, half.Y),
		safeDiv(rel.Z, half.Z),
	}

	axis := 0
	for i := 1; i < 3; i++ {
		if math.Abs(scaled[i]) > math.Abs(scaled[axis]) {
			axis = i
		}
	}
	return axis, math.Copysign(1, scaled[axis])
}

// NormalAt returns the outward normal of the face containing point
func (b *Box) NormalAt(point core.Vec3) core.Vec3 {
	axis, side := b.dominantAxis(point)
	switch axis {
	case 0:
		return core.NewVec3(side, 0, 0)
	case 1:
		return core.NewVec3(0, side, 0)
	default:
		return core.NewVec3(0, 0, side)
	}
}

// TextureCoordAt maps the point to [0,1]² on its face
func (b *Box) TextureCoordAt(point core.Vec3) core.Vec2 {
	axis, _ := b.dominantAxis(point)
	size := b.Bounds.Size()
	rel := point.Subtract(b.Bounds.Min)
	switch axis {
	case 0:
		return core.NewVec2(safeDiv(rel.Z, size.Z), safeDiv(rel.Y, size.Y))
	case 1:
		return core.NewVec2(safeDiv(rel.X, size.X), safeDiv(rel.Z, size.Z))
	default:
		return core.NewVec2(safeDiv(rel.X, size.X), safeDiv(rel.Y, size.Y))
	}
}

// ExitPoint returns where a ray travelling inside the box leaves it
func (b *Box) ExitPoint(point, direction core.Vec3) core.Vec3 {
	_, tFar, ok := b.Bounds.Slabs(core.NewRay(point, direction))
	if !ok || tFar < 0 {
		return point
	}
	return point.Add(direction.Multiply(tFar))
}

// MaterialID returns the material table index
func (b *Box) MaterialID() int {
	return b.Material
}

// BoundingBox returns the box itself
func (b *Box) BoundingBox() core.AABB {
	return b.Bounds
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
