package core

// Logger interface for raytracer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// Object is a surface that can be placed in a scene and shaded
type Object interface {
	// Intersect returns the distance along the ray to the surface, if any.
	// Rays starting on or near the surface must be handled; callers apply their own epsilon.
	Intersect(ray Ray) (float64, bool)

	// NormalAt returns the outward normal at a surface point (not necessarily unit length)
	NormalAt(point Vec3) Vec3

	// TextureCoordAt maps a surface point to texture space
	TextureCoordAt(point Vec3) Vec2

	// ExitPoint returns where a ray that entered the object at point along the
	// interior direction leaves it again. Only used for transparent materials.
	ExitPoint(point, direction Vec3) Vec3

	// MaterialID is the key into the scene material table
	MaterialID() int
}

// Material describes the local lighting model of a surface
type Material interface {
	Diffuse(uv Vec2) Vec3
	Specular() Vec3
	SpecularExponent() float64
	ReflectionFactor() float64 // 0 = none, 1 = perfect mirror
	RefractionIndex() float64
	Opacity() float64 // 1 = fully opaque, 0 = fully transparent
}

// Light is a point light source
type Light interface {
	Position() Vec3
	Color() Vec3
}

// Scene is the read-only aggregate queried while tracing
type Scene interface {
	ObjectCount() int
	Object(i int) Object
	LightCount() int
	Light(i int) Light
	Material(id int) (Material, bool)
	AmbientLight() Vec3
	// Background is evaluated for rays that hit nothing, allowing procedural skies
	Background(ray Ray) Vec3
}
