package scene

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/loaders"
	"github.com/df07/go-whitted-raytracer/pkg/material"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
)

// defaultAmbient is used when a scene file does not declare one
var defaultAmbient = core.NewVec3(0.1, 0.1, 0.1)

// LoadSceneFile evaluates a scene file and builds the scene it describes
func LoadSceneFile(ctx context.Context, path string, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	desc, err := loaders.LoadSceneFile(ctx, path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return FromDescription(name, desc, cameraOverrides...)
}

// FromDescription builds a scene from an evaluated scene description
func FromDescription(name string, desc *loaders.SceneDescription, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	s := NewScene(name)

	s.Ambient = defaultAmbient
	if desc.Ambient != nil {
		s.Ambient = *desc.Ambient
	}

	s.Sky = GradientBackground{Top: skyTop, Bottom: skyBottom}
	if bg := desc.Background; bg != nil {
		if bg.Gradient {
			s.Sky = GradientBackground{Top: bg.Top, Bottom: bg.Bottom}
		} else {
			s.Sky = SolidBackground{Color: bg.Top}
		}
	}

	camera := renderer.DefaultCameraConfig()
	if c := desc.Camera; c != nil {
		camera = renderer.MergeCameraConfig(camera, renderer.CameraConfig{
			Center: c.Center,
			LookAt: c.LookAt,
			Up:     c.Up,
			VFov:   c.VFov,
		})
	}
	s.Camera = applyCamera(camera, cameraOverrides)

	ids := make(map[string]int, len(desc.Materials))
	for _, spec := range desc.Materials {
		m, err := buildMaterial(spec)
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", spec.Name, err)
		}
		ids[spec.Name] = s.AddMaterial(m)
	}

	for i, spec := range desc.Objects {
		id, ok := ids[spec.Material]
		if !ok {
			return nil, fmt.Errorf("object %d (%s): %w %q", i, spec.Kind, loaders.ErrUndefinedMaterial, spec.Material)
		}
		obj, err := buildObject(spec, id)
		if err != nil {
			return nil, fmt.Errorf("object %d (%s): %w", i, spec.Kind, err)
		}
		s.AddObject(obj)
	}

	for _, l := range desc.Lights {
		s.AddLight(l.Position, l.Color)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func buildMaterial(spec loaders.MaterialSpec) (*material.Phong, error) {
	var color material.ColorSource = material.NewSolidColor(spec.Diffuse)

	switch {
	case spec.Texture != "":
		data, err := loaders.LoadImage(spec.Texture)
		if err != nil {
			return nil, err
		}
		tex, err := material.NewImageTexture(data.Width, data.Height, data.Pixels)
		if err != nil {
			return nil, err
		}
		color = tex
	case spec.Checker != nil:
		color = material.NewCheckerboard(spec.Checker.Even, spec.Checker.Odd, spec.Checker.Scale)
	}

	return material.NewPhong(color, spec.Specular, spec.Exponent, spec.Reflection, spec.Refraction, spec.Opacity), nil
}

func buildObject(spec loaders.ObjectSpec, materialID int) (core.Object, error) {
	switch spec.Kind {
	case "sphere":
		return geometry.NewSphere(spec.Center, spec.Radius, materialID), nil
	case "plane":
		return geometry.NewPlane(spec.Point, spec.Normal, materialID), nil
	case "box":
		return geometry.NewBox(spec.Min, spec.Max, materialID), nil
	case "rounded-box", "cylinder", "blob":
		return buildSolid(spec, materialID)
	default:
		return nil, fmt.Errorf("unsupported object kind %q", spec.Kind)
	}
}

// buildSolid builds the distance field solids, including blob members
func buildSolid(spec loaders.ObjectSpec, materialID int) (*geometry.SDFSolid, error) {
	switch spec.Kind {
	case "sphere":
		return geometry.NewSDFSphere(spec.Center, spec.Radius, materialID)
	case "rounded-box":
		return geometry.NewSDFRoundedBox(spec.Center, spec.Size, spec.Round, materialID)
	case "cylinder":
		return geometry.NewSDFCylinder(spec.Center, spec.Height, spec.Radius, materialID)
	case "blob":
		parts := make([]*geometry.SDFSolid, 0, len(spec.Parts))
		for i, p := range spec.Parts {
			part, err := buildSolid(p, materialID)
			if err != nil {
				return nil, fmt.Errorf("blob part %d: %w", i, err)
			}
			parts = append(parts, part)
		}
		return geometry.NewSDFUnion(materialID, parts...)
	default:
		return nil, fmt.Errorf("%s cannot be a distance field", spec.Kind)
	}
}
