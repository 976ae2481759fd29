package scene

import "github.com/df07/go-whitted-raytracer/pkg/core"

// Background colors rays that leave the scene
type Background interface {
	At(ray core.Ray) core.Vec3
}

// SolidBackground is a single flat color
type SolidBackground struct {
	Color core.Vec3
}

func (b SolidBackground) At(ray core.Ray) core.Vec3 {
	return b.Color
}

// GradientBackground blends from Bottom (looking straight down) to Top (straight up)
type GradientBackground struct {
	Top    core.Vec3
	Bottom core.Vec3
}

func (b GradientBackground) At(ray core.Ray) core.Vec3 {
	unitDirection := ray.Direction.Normalize()

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1.0)

	return b.Bottom.Multiply(1.0 - t).Add(b.Top.Multiply(t))
}
