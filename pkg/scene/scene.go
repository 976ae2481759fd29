package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/integrator"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name      string
	Objects   []core.Object   // Objects in the scene
	Lights    []core.Light    // Lights in the scene
	Materials []core.Material // Material table, indexed by material id
	Ambient   core.Vec3       // Ambient light color
	Sky       Background      // Color for rays that hit nothing; nil is black
	Camera    renderer.CameraConfig
}

// NewScene creates an empty scene with the default camera and a black sky
func NewScene(name string) *Scene {
	return &Scene{
		Name:   name,
		Camera: renderer.DefaultCameraConfig(),
	}
}

// AddMaterial appends a material to the table and returns its id
func (s *Scene) AddMaterial(m core.Material) int {
	s.Materials = append(s.Materials, m)
	return len(s.Materials) - 1
}

// AddObject adds objects to the scene
func (s *Scene) AddObject(objects ...core.Object) {
	s.Objects = append(s.Objects, objects...)
}

// AddLight adds a point light to the scene
func (s *Scene) AddLight(position, color core.Vec3) {
	s.Lights = append(s.Lights, lights.NewPointLight(position, color))
}

func (s *Scene) ObjectCount() int         { return len(s.Objects) }
func (s *Scene) Object(i int) core.Object { return s.Objects[i] }
func (s *Scene) LightCount() int          { return len(s.Lights) }
func (s *Scene) Light(i int) core.Light   { return s.Lights[i] }
func (s *Scene) AmbientLight() core.Vec3  { return s.Ambient }

// Material looks up a material by id
func (s *Scene) Material(id int) (core.Material, bool) {
	if id < 0 || id >= len(s.Materials) || s.Materials[id] == nil {
		return nil, false
	}
	return s.Materials[id], true
}

// Background returns the sky color seen along a ray that hit nothing
func (s *Scene) Background(ray core.Ray) core.Vec3 {
	if s.Sky == nil {
		return core.Vec3{}
	}
	return s.Sky.At(ray)
}

// CameraConfig returns the scene's camera placement
func (s *Scene) CameraConfig() renderer.CameraConfig {
	return s.Camera
}

// Validate reports every object whose material id does not resolve
func (s *Scene) Validate() error {
	var errs []error
	for i, obj := range s.Objects {
		if _, ok := s.Material(obj.MaterialID()); !ok {
			errs = append(errs, fmt.Errorf("object %d (%T): material id %d: %w",
				i, obj, obj.MaterialID(), integrator.ErrUnknownMaterial))
		}
	}
	return errors.Join(errs...)
}
