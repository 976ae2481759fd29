package scene

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
)

// skyTop and skyBottom are the gradient used by most scenes
var (
	skyTop    = core.NewVec3(0.5, 0.7, 1.0)
	skyBottom = core.NewVec3(1.0, 1.0, 1.0)
)

// applyCamera merges the first override, if any, into the scene default
func applyCamera(defaults renderer.CameraConfig, cameraOverrides []renderer.CameraConfig) renderer.CameraConfig {
	if len(cameraOverrides) > 0 {
		return renderer.MergeCameraConfig(defaults, cameraOverrides[0])
	}
	return defaults
}

// NewDefaultScene creates a default scene with spheres, a checker floor, a mirror and glass
func NewDefaultScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	s := NewScene("default")
	s.Camera = applyCamera(renderer.CameraConfig{
		Center:      core.NewVec3(0, 0.75, 2), // Position camera higher and farther back
		LookAt:      core.NewVec3(0, 0.5, -1), // Look at the center sphere
		Up:          core.NewVec3(0, 1, 0),
		Width:       400,
		AspectRatio: 16.0 / 9.0,
		VFov:        40.0,
	}, cameraOverrides)
	s.Ambient = core.NewVec3(0.1, 0.1, 0.1)
	s.Sky = GradientBackground{Top: skyTop, Bottom: skyBottom}

	floor := s.AddMaterial(material.NewPhong(
		material.NewCheckerboard(core.NewVec3(0.9, 0.9, 0.9), core.NewVec3(0.2, 0.2, 0.2), 2),
		core.Vec3{}, 1, 0.1, material.AirIndex, 1))
	red := s.AddMaterial(material.NewPhong(
		material.NewSolidColor(core.NewVec3(0.65, 0.25, 0.2)),
		core.NewVec3(0.6, 0.6, 0.6), 32, 0, material.AirIndex, 1))
	silver := s.AddMaterial(material.NewMirror(core.NewVec3(0.2, 0.2, 0.2), 0.8))
	gold := s.AddMaterial(material.NewPhong(
		material.NewSolidColor(core.NewVec3(0.8, 0.6, 0.2)),
		core.NewVec3(1, 0.9, 0.6), 64, 0.3, material.AirIndex, 1))
	glass := s.AddMaterial(material.NewGlass(core.NewVec3(0.9, 0.9, 1.0), 1.5, 0.15))

	s.AddObject(
		geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), floor),
		geometry.NewSphere(core.NewVec3(0, 0.5, -1), 0.5, red),
		geometry.NewSphere(core.NewVec3(-1, 0.5, -1), 0.5, silver),
		geometry.NewSphere(core.NewVec3(1, 0.5, -1), 0.5, gold),
		geometry.NewSphere(core.NewVec3(0.5, 0.25, -0.3), 0.25, glass),
	)

	s.AddLight(core.NewVec3(5, 5, 5), core.NewVec3(1, 1, 1))
	s.AddLight(core.NewVec3(-3, 4, 2), core.NewVec3(0.5, 0.5, 0.5))

	return s
}

// NewMirrorsScene places a sphere between two facing mirrors
func NewMirrorsScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	s := NewScene("mirrors")
	s.Camera = applyCamera(renderer.CameraConfig{
		Center:      core.NewVec3(0.6, 1.0, 1.2),
		LookAt:      core.NewVec3(0, 0.5, -1.5),
		Up:          core.NewVec3(0, 1, 0),
		Width:       400,
		AspectRatio: 16.0 / 9.0,
		VFov:        50.0,
	}, cameraOverrides)
	s.Ambient = core.NewVec3(0.05, 0.05, 0.05)
	s.Sky = SolidBackground{Color: core.NewVec3(0.05, 0.05, 0.1)}

	floor := s.AddMaterial(material.NewPhong(
		material.NewCheckerboard(core.NewVec3(0.8, 0.8, 0.8), core.NewVec3(0.1, 0.1, 0.1), 4),
		core.Vec3{}, 1, 0, material.AirIndex, 1))
	mirror := s.AddMaterial(material.NewMirror(core.NewVec3(0.05, 0.05, 0.05), 0.9))
	blue := s.AddMaterial(material.NewPhong(
		material.NewSolidColor(core.NewVec3(0.1, 0.2, 0.7)),
		core.NewVec3(1, 1, 1), 48, 0, material.AirIndex, 1))

	s.AddObject(
		geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), floor),
		geometry.NewPlane(core.NewVec3(0, 0, -3), core.NewVec3(0, 0, 1), mirror),
		geometry.NewPlane(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1), mirror),
		geometry.NewSphere(core.NewVec3(0, 0.5, -1.5), 0.5, blue),
	)

	s.AddLight(core.NewVec3(2, 4, 0), core.NewVec3(1, 1, 1))

	return s
}

// NewGlassScene shows refraction through a transparent slab and sphere
func NewGlassScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	s := NewScene("glass")
	s.Camera = applyCamera(renderer.CameraConfig{
		Center:      core.NewVec3(0, 1, 3),
		LookAt:      core.NewVec3(0, 0.6, 0),
		Up:          core.NewVec3(0, 1, 0),
		Width:       400,
		AspectRatio: 16.0 / 9.0,
		VFov:        45.0,
	}, cameraOverrides)
	s.Ambient = core.NewVec3(0.1, 0.1, 0.1)
	s.Sky = GradientBackground{Top: skyTop, Bottom: skyBottom}

	floor := s.AddMaterial(material.NewPhong(
		material.NewCheckerboard(core.NewVec3(1, 1, 1), core.NewVec3(0.15, 0.15, 0.15), 4),
		core.Vec3{}, 1, 0, material.AirIndex, 1))
	wall := s.AddMaterial(material.NewPhong(
		material.NewCheckerboard(core.NewVec3(0.9, 0.3, 0.2), core.NewVec3(0.9, 0.9, 0.8), 2),
		core.Vec3{}, 1, 0, material.AirIndex, 1))
	slab := s.AddMaterial(material.NewGlass(core.NewVec3(0.8, 0.9, 1.0), 1.5, 0.2))
	crystal := s.AddMaterial(material.NewGlass(core.NewVec3(1, 1, 1), 1.33, 0.1))

	s.AddObject(
		geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), floor),
		geometry.NewPlane(core.NewVec3(0, 0, -3), core.NewVec3(0, 0, 1), wall),
		geometry.NewBox(core.NewVec3(-1.2, 0, -0.6), core.NewVec3(-0.2, 1.2, -0.4), slab),
		geometry.NewSphere(core.NewVec3(0.7, 0.5, 0), 0.5, crystal),
	)

	s.AddLight(core.NewVec3(3, 5, 4), core.NewVec3(1, 1, 1))

	return s
}

// NewSDFScene shows signed distance solids: a rounded box, a cylinder and a blob of joined spheres
func NewSDFScene(cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	s := NewScene("sdf")
	s.Camera = applyCamera(renderer.CameraConfig{
		Center:      core.NewVec3(0, 1.5, 3.5),
		LookAt:      core.NewVec3(0, 0.5, 0),
		Up:          core.NewVec3(0, 1, 0),
		Width:       400,
		AspectRatio: 16.0 / 9.0,
		VFov:        40.0,
	}, cameraOverrides)
	s.Ambient = core.NewVec3(0.1, 0.1, 0.1)
	s.Sky = GradientBackground{Top: skyTop, Bottom: skyBottom}

	floor := s.AddMaterial(material.NewPhong(
		material.NewCheckerboard(core.NewVec3(0.9, 0.9, 0.9), core.NewVec3(0.3, 0.3, 0.3), 2),
		core.Vec3{}, 1, 0, material.AirIndex, 1))
	teal := s.AddMaterial(material.NewPhong(
		material.NewSolidColor(core.NewVec3(0.1, 0.6, 0.6)),
		core.NewVec3(0.8, 0.8, 0.8), 32, 0, material.AirIndex, 1))
	chrome := s.AddMaterial(material.NewMirror(core.NewVec3(0.3, 0.3, 0.3), 0.6))
	wax := s.AddMaterial(material.NewPhong(
		material.NewSolidColor(core.NewVec3(0.9, 0.7, 0.2)),
		core.NewVec3(1, 1, 1), 16, 0, material.AirIndex, 1))

	box, err := geometry.NewSDFRoundedBox(core.NewVec3(-1.2, 0.4, 0), core.NewVec3(0.8, 0.8, 0.8), 0.1, teal)
	if err != nil {
		return nil, err
	}
	cylinder, err := geometry.NewSDFCylinder(core.NewVec3(1.2, 0.5, 0), 1.0, 0.35, chrome)
	if err != nil {
		return nil, err
	}

	left, err := geometry.NewSDFSphere(core.NewVec3(-0.2, 0.4, 0.3), 0.35, wax)
	if err != nil {
		return nil, err
	}
	right, err := geometry.NewSDFSphere(core.NewVec3(0.25, 0.55, 0.2), 0.3, wax)
	if err != nil {
		return nil, err
	}
	blob, err := geometry.NewSDFUnion(wax, left, right)
	if err != nil {
		return nil, err
	}

	s.AddObject(
		geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), floor),
		box, cylinder, blob,
	)

	s.AddLight(core.NewVec3(4, 6, 4), core.NewVec3(1, 1, 1))
	s.AddLight(core.NewVec3(-4, 3, 2), core.NewVec3(0.4, 0.4, 0.4))

	return s, nil
}
