package integrator

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// ErrUnknownMaterial is returned when an object's material id is not in the scene table
var ErrUnknownMaterial = errors.New("unknown material")

// DepthPolicy controls how much recursion budget each secondary ray consumes
type DepthPolicy int

const (
	// DepthUniform charges one level for every nested trace, transmitted or reflected
	DepthUniform DepthPolicy = iota
	// DepthLegacy charges one level for transmission and two for reflection
	DepthLegacy
)

func (p DepthPolicy) String() string {
	switch p {
	case DepthUniform:
		return "uniform"
	case DepthLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("DepthPolicy(%d)", int(p))
	}
}

// TerminalPolicy selects the color returned when a trace hits the depth limit
type TerminalPolicy int

const (
	// TerminalCaller returns the color the spawning shader had accumulated so far.
	// A top-level call at the limit has no caller and returns black.
	TerminalCaller TerminalPolicy = iota
	// TerminalBlack always returns black
	TerminalBlack
	// TerminalAmbient returns the scene ambient light
	TerminalAmbient
)

func (p TerminalPolicy) String() string {
	switch p {
	case TerminalCaller:
		return "caller"
	case TerminalBlack:
		return "black"
	case TerminalAmbient:
		return "ambient"
	default:
		return fmt.Sprintf("TerminalPolicy(%d)", int(p))
	}
}

// Config holds the tracing parameters
type Config struct {
	MaxDepth      int     // Number of nested traces allowed below a primary ray
	HitEpsilon    float64 // Minimum accepted hit distance for shading rays
	ShadowEpsilon float64 // Minimum blocker distance for shadow rays
	ClampShadow   bool    // Cap the summed blocker opacity at 1
	UseLightColor bool    // Modulate diffuse and specular terms by the light color
	Depth         DepthPolicy
	Terminal      TerminalPolicy
}

// DefaultConfig returns the standard Whitted configuration
func DefaultConfig() Config {
	return Config{
		MaxDepth:      6,
		HitEpsilon:    1e-5,
		ShadowEpsilon: 0.1,
		ClampShadow:   true,
		UseLightColor: false,
		Depth:         DepthUniform,
		Terminal:      TerminalCaller,
	}
}

// Stats is a snapshot of the tracer's counters
type Stats struct {
	Traces            int64 // trace calls, including those cut off at the depth limit
	Hits              int64
	Misses            int64
	DepthTerminations int64
	ShadowTests       int64
}

// Whitted is a recursive ray tracer with Phong shading, hard shadows,
// mirror reflection and Snell refraction. It keeps no per-trace state,
// so one instance can serve many goroutines.
type Whitted struct {
	config Config

	traces       atomic.Int64
	hits         atomic.Int64
	misses       atomic.Int64
	terminations atomic.Int64
	shadowTests  atomic.Int64
}

// NewWhitted creates a tracer with the given configuration
func NewWhitted(config Config) *Whitted {
	return &Whitted{config: config}
}

// Config returns the tracer configuration
func (w *Whitted) Config() Config {
	return w.config
}

// Stats returns the current counter values
func (w *Whitted) Stats() Stats {
	return Stats{
		Traces:            w.traces.Load(),
		Hits:              w.hits.Load(),
		Misses:            w.misses.Load(),
		DepthTerminations: w.terminations.Load(),
		ShadowTests:       w.shadowTests.Load(),
	}
}

// ResetStats zeroes all counters
func (w *Whitted) ResetStats() {
	w.traces.Store(0)
	w.hits.Store(0)
	w.misses.Store(0)
	w.terminations.Store(0)
	w.shadowTests.Store(0)
}

// TraceRay returns the color seen along the ray from origin in direction.
// Primary rays start at depth 0.
func (w *Whitted) TraceRay(scene core.Scene, origin, direction core.Vec3, depth int) (core.Vec3, error) {
	return w.trace(scene, core.NewRay(origin, direction), depth, core.Vec3{})
}

// trace is TraceRay with the caller's accumulated color as the depth-limit fallback
func (w *Whitted) trace(scene core.Scene, ray core.Ray, depth int, fallback core.Vec3) (core.Vec3, error) {
	w.traces.Add(1)

	if depth >= w.config.MaxDepth {
		w.terminations.Add(1)
		return w.terminalColor(scene, fallback), nil
	}
	depth++

	hit, ok := w.findNearest(scene, ray)
	if !ok {
		w.misses.Add(1)
		return scene.Background(ray), nil
	}
	w.hits.Add(1)

	point := ray.At(hit.t)
	normal := hit.object.NormalAt(point).Normalize()
	return w.shade(scene, ray, hit.object, point, normal, depth)
}

func (w *Whitted) terminalColor(scene core.Scene, fallback core.Vec3) core.Vec3 {
	switch w.config.Terminal {
	case TerminalBlack:
		return core.Vec3{}
	case TerminalAmbient:
		return scene.AmbientLight()
	default:
		return fallback
	}
}

type nearestHit struct {
	t      float64
	object core.Object
}

// Intersection describes the closest surface along a ray
type Intersection struct {
	T      float64
	Object core.Object
	Point  core.Vec3
	Normal core.Vec3 // unit outward normal
}

// Nearest returns the surface a primary ray from origin would shade, without shading it
func (w *Whitted) Nearest(scene core.Scene, origin, direction core.Vec3) (Intersection, bool) {
	ray := core.NewRay(origin, direction)
	hit, ok := w.findNearest(scene, ray)
	if !ok {
		return Intersection{}, false
	}
	point := ray.At(hit.t)
	return Intersection{
		T:      hit.t,
		Object: hit.object,
		Point:  point,
		Normal: hit.object.NormalAt(point).Normalize(),
	}, true
}

// findNearest scans every object and keeps the closest hit beyond HitEpsilon.
// Ties go to the object with the lower index.
func (w *Whitted) findNearest(scene core.Scene, ray core.Ray) (nearestHit, bool) {
	var closest nearestHit
	found := false

	for i := 0; i < scene.ObjectCount(); i++ {
		object := scene.Object(i)
		t, ok := object.Intersect(ray)
		if !ok || t <= w.config.HitEpsilon {
			continue
		}
		if !found || t < closest.t {
			closest = nearestHit{t: t, object: object}
			found = true
		}
	}
	return closest, found
}

// shadowFactor sums the opacity of every object strictly between point and the light
func (w *Whitted) shadowFactor(scene core.Scene, point, toLight, lightPos core.Vec3) (float64, error) {
	w.shadowTests.Add(1)

	maxDistance := lightPos.Subtract(point).Length()
	ray := core.NewRay(point, toLight.Normalize())

	factor := 0.0
	for i := 0; i < scene.ObjectCount(); i++ {
		object := scene.Object(i)
		t, ok := object.Intersect(ray)
		if !ok || t <= w.config.ShadowEpsilon || t >= maxDistance {
			continue
		}
		mat, err := materialOf(scene, object)
		if err != nil {
			return 0, err
		}
		factor += mat.Opacity()
	}

	if w.config.ClampShadow && factor > 1 {
		factor = 1
	}
	return factor, nil
}

// shade evaluates the local lighting model at a confirmed hit and adds the
// transmitted and reflected contributions once per light.
func (w *Whitted) shade(scene core.Scene, ray core.Ray, object core.Object, point, normal core.Vec3, depth int) (core.Vec3, error) {
	mat, err := materialOf(scene, object)
	if err != nil {
		return core.Vec3{}, err
	}

	diffuse := mat.Diffuse(object.TextureCoordAt(point))
	opacity := mat.Opacity()
	reflection := mat.ReflectionFactor()

	color := diffuse.MultiplyVec(scene.AmbientLight())
	toEye := ray.Origin.Subtract(point).Normalize()

	// Secondary rays do not depend on the light, so each is traced at most once
	var transmitted, reflected core.Vec3
	haveTransmitted, haveReflected := false, false

	for i := 0; i < scene.LightCount(); i++ {
		light := scene.Light(i)
		lightPos := light.Position()
		toLight := lightPos.Subtract(point).Normalize()

		if opacity < 1 {
			if !haveTransmitted {
				transmitted, err = w.transmit(scene, ray, object, mat, point, normal, depth, color)
				if err != nil {
					return core.Vec3{}, err
				}
				haveTransmitted = true
			}
			color = color.Multiply(opacity).Add(transmitted.Multiply(1 - opacity))
		}

		shadow, err := w.shadowFactor(scene, point, toLight, lightPos)
		if err != nil {
			return core.Vec3{}, err
		}

		tint := core.NewVec3(1, 1, 1)
		if w.config.UseLightColor {
			tint = light.Color()
		}

		if nDotL := normal.Dot(toLight); opacity > 0 && nDotL > 0 {
			term := diffuse.Multiply(nDotL * opacity).MultiplyVec(tint)
			color = color.Add(attenuate(term, shadow))
		}

		mirrored := core.ReflectAbout(toLight, normal)
		if rDotE := mirrored.Dot(toEye); rDotE > 0 {
			term := mat.Specular().Multiply(math.Pow(rDotE, mat.SpecularExponent())).MultiplyVec(tint)
			color = color.Add(attenuate(term, shadow))
		}

		if reflection > 0 {
			if !haveReflected {
				bounce := core.NewRay(point, core.ReflectAbout(toEye, normal))
				reflected, err = w.trace(scene, bounce, w.reflectionDepth(depth), color)
				if err != nil {
					return core.Vec3{}, err
				}
				haveReflected = true
			}
			color = color.Add(reflected.Multiply(reflection))
		}
	}

	return color, nil
}

// transmit refracts the incoming ray through the object and traces it from the exit point
func (w *Whitted) transmit(scene core.Scene, ray core.Ray, object core.Object, mat core.Material,
	point, normal core.Vec3, depth int, fallback core.Vec3) (core.Vec3, error) {

	index := mat.RefractionIndex()
	incident := ray.Direction.Normalize()

	inside, _ := core.Snell(incident, faceForward(normal, incident), core.AirIndex, index)
	inside = inside.Normalize()

	exitPoint := object.ExitPoint(point, inside)
	exitNormal := object.NormalAt(exitPoint).Normalize()

	outside, _ := core.Snell(inside, faceForward(exitNormal, inside), index, core.AirIndex)
	return w.trace(scene, core.NewRay(exitPoint, outside.Normalize()), depth, fallback)
}

func (w *Whitted) reflectionDepth(depth int) int {
	if w.config.Depth == DepthLegacy {
		return depth + 1
	}
	return depth
}

// faceForward orients n against the direction of travel
func faceForward(n, direction core.Vec3) core.Vec3 {
	if n.Dot(direction) > 0 {
		return n.Negate()
	}
	return n
}

func attenuate(term core.Vec3, shadow float64) core.Vec3 {
	if shadow != 0 {
		return term.Multiply(1 - shadow)
	}
	return term
}

func materialOf(scene core.Scene, object core.Object) (core.Material, error) {
	id := object.MaterialID()
	mat, ok := scene.Material(id)
	if !ok {
		return nil, fmt.Errorf("material id %d: %w", id, ErrUnknownMaterial)
	}
	return mat, nil
}
