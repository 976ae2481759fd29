package scene

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fogleman/gg"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/integrator"
	"github.com/df07/go-whitted-raytracer/pkg/loaders"
	"github.com/df07/go-whitted-raytracer/pkg/material"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
)

// Compile-time checks
var (
	_ core.Scene     = (*Scene)(nil)
	_ renderer.Scene = (*Scene)(nil)
	_ Background     = SolidBackground{}
	_ Background     = GradientBackground{}
)

func TestScene_MaterialTable(t *testing.T) {
	s := NewScene("test")
	a := s.AddMaterial(material.NewMatte(core.NewVec3(1, 0, 0)))
	b := s.AddMaterial(material.NewMatte(core.NewVec3(0, 1, 0)))

	if a != 0 || b != 1 {
		t.Fatalf("Expected sequential ids 0,1, got %d,%d", a, b)
	}
	if m, ok := s.Material(b); !ok || m.Diffuse(core.Vec2{}) != core.NewVec3(0, 1, 0) {
		t.Errorf("Material(%d) returned wrong material", b)
	}
	for _, id := range []int{-1, 2, 100} {
		if _, ok := s.Material(id); ok {
			t.Errorf("Material(%d) should not resolve", id)
		}
	}
}

func TestScene_Accessors(t *testing.T) {
	s := NewScene("test")
	id := s.AddMaterial(material.NewMatte(core.NewVec3(1, 1, 1)))
	sphere := geometry.NewSphere(core.NewVec3(0, 0, 0), 1, id)
	s.AddObject(sphere)
	s.AddLight(core.NewVec3(1, 2, 3), core.NewVec3(0.5, 0.5, 0.5))
	s.Ambient = core.NewVec3(0.2, 0.2, 0.2)

	if s.ObjectCount() != 1 || s.Object(0) != sphere {
		t.Error("Object accessors do not match")
	}
	if s.LightCount() != 1 || s.Light(0).Position() != core.NewVec3(1, 2, 3) {
		t.Error("Light accessors do not match")
	}
	if s.AmbientLight() != s.Ambient {
		t.Error("AmbientLight does not return Ambient")
	}
	if s.CameraConfig() != renderer.DefaultCameraConfig() {
		t.Errorf("Expected default camera, got %+v", s.CameraConfig())
	}
	if got := s.Background(core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0))); got != (core.Vec3{}) {
		t.Errorf("Expected black with no sky, got %v", got)
	}
}

func TestScene_Validate(t *testing.T) {
	s := NewScene("test")
	id := s.AddMaterial(material.NewMatte(core.NewVec3(1, 1, 1)))
	s.AddObject(geometry.NewSphere(core.NewVec3(0, 0, 0), 1, id))

	if err := s.Validate(); err != nil {
		t.Fatalf("Expected valid scene, got %v", err)
	}

	s.AddObject(
		geometry.NewSphere(core.NewVec3(0, 0, 0), 1, 7),
		geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), -1),
	)
	err := s.Validate()
	if !errors.Is(err, integrator.ErrUnknownMaterial) {
		t.Fatalf("Expected ErrUnknownMaterial, got %v", err)
	}
	if !strings.Contains(err.Error(), "object 1") || !strings.Contains(err.Error(), "object 2") {
		t.Errorf("Expected both bad objects named, got %v", err)
	}
}

func TestBackgrounds(t *testing.T) {
	top := core.NewVec3(0, 0, 1)
	bottom := core.NewVec3(1, 1, 1)
	g := GradientBackground{Top: top, Bottom: bottom}

	tests := []struct {
		name      string
		direction core.Vec3
		expected  core.Vec3
	}{
		{"straight up", core.NewVec3(0, 5, 0), top},
		{"straight down", core.NewVec3(0, -2, 0), bottom},
		{"horizon", core.NewVec3(1, 0, 0), core.NewVec3(0.5, 0.5, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.At(core.NewRay(core.Vec3{}, tt.direction))
			if math.Abs(got.X-tt.expected.X) > 1e-12 || math.Abs(got.Y-tt.expected.Y) > 1e-12 || math.Abs(got.Z-tt.expected.Z) > 1e-12 {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}

	solid := SolidBackground{Color: core.NewVec3(0.3, 0.2, 0.1)}
	if got := solid.At(core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0))); got != solid.Color {
		t.Errorf("Expected %v, got %v", solid.Color, got)
	}
}

func TestBuiltinScenes(t *testing.T) {
	for _, name := range BuiltinNames() {
		t.Run(name, func(t *testing.T) {
			s, err := Builtin(name)
			if err != nil {
				t.Fatalf("Builtin(%q) failed: %v", name, err)
			}
			if s.Name != name {
				t.Errorf("Expected scene name %q, got %q", name, s.Name)
			}
			if s.ObjectCount() == 0 || s.LightCount() == 0 {
				t.Error("Expected objects and lights")
			}
			if err := s.Validate(); err != nil {
				t.Errorf("Built-in scene is invalid: %v", err)
			}
		})
	}

	if _, err := Builtin("nope"); !errors.Is(err, ErrUnknownScene) {
		t.Errorf("Expected ErrUnknownScene, got %v", err)
	}
}

func TestBuiltinScenes_CameraOverride(t *testing.T) {
	s, err := Builtin("default", renderer.CameraConfig{VFov: 20})
	if err != nil {
		t.Fatalf("Builtin failed: %v", err)
	}
	if s.Camera.VFov != 20 {
		t.Errorf("Expected overridden fov 20, got %v", s.Camera.VFov)
	}
	if s.Camera.Center != core.NewVec3(0, 0.75, 2) {
		t.Errorf("Expected default scene camera center kept, got %v", s.Camera.Center)
	}
}

// The whole pipeline, tiny: every built-in scene renders without error
func TestBuiltinScenes_Render(t *testing.T) {
	tracer := integrator.NewWhitted(integrator.DefaultConfig())
	for _, name := range BuiltinNames() {
		t.Run(name, func(t *testing.T) {
			s, err := Builtin(name)
			if err != nil {
				t.Fatalf("Builtin failed: %v", err)
			}
			config := renderer.DefaultConfig()
			config.Width, config.Height = 16, 9
			rt := renderer.NewRaytracer(s, tracer, config, quietLogger{})
			img, stats, err := rt.Render(context.Background())
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if img.Bounds().Dx() != 16 || stats.TotalSamples != 144 {
				t.Errorf("Unexpected render result %v, %+v", img.Bounds(), stats)
			}
		})
	}
}

type quietLogger struct{}

func (quietLogger) Printf(format string, args ...interface{}) {}

const litSphere = `
(ambient (rgb 0 0 0))
(background (rgb 0.2 0.3 0.4))
(camera :center (vec3 0 0 1) :look-at (vec3 0 0 0))
(material "red" :diffuse (rgb 1 0 0))
(sphere :center (vec3 0 0 0) :radius 0.5 :material "red")
(light :position (vec3 0 0 5))
`

func TestFromDescription_Traces(t *testing.T) {
	desc, err := loaders.EvaluateSceneDSL(context.Background(), litSphere)
	if err != nil {
		t.Fatalf("EvaluateSceneDSL failed: %v", err)
	}
	s, err := FromDescription("lit", desc)
	if err != nil {
		t.Fatalf("FromDescription failed: %v", err)
	}

	tracer := integrator.NewWhitted(integrator.DefaultConfig())

	// Head-on hit, lit from behind the camera: pure diffuse red
	got, err := tracer.TraceRay(s, core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1), 0)
	if err != nil {
		t.Fatalf("TraceRay failed: %v", err)
	}
	if got != core.NewVec3(1, 0, 0) {
		t.Errorf("Expected (1,0,0), got %v", got)
	}

	// A miss sees the flat background
	got, err = tracer.TraceRay(s, core.NewVec3(0, 0, 1), core.NewVec3(0, 1, 0), 0)
	if err != nil {
		t.Fatalf("TraceRay failed: %v", err)
	}
	if got != core.NewVec3(0.2, 0.3, 0.4) {
		t.Errorf("Expected background, got %v", got)
	}
}

func TestFromDescription_AllKinds(t *testing.T) {
	source := `
(camera :center (vec3 0 2 5) :fov 30)
(material "m" :diffuse (rgb 0.5 0.5 0.5))
(material "floor" :checker (rgb 1 1 1) :scale 2)
(sphere :center (vec3 0 0 0) :radius 1 :material "m")
(plane :point (vec3 0 -1 0) :normal (vec3 0 1 0) :material "floor")
(box :min (vec3 -1 -1 -1) :max (vec3 1 1 1) :material "m")
(rounded-box :center (vec3 2 0 0) :size (vec3 1 1 1) :round 0.1 :material "m")
(cylinder :center (vec3 -2 0 0) :height 1 :radius 0.5 :material "m")
(blob :material "m"
  (sphere :center (vec3 0 2 0) :radius 0.5)
  (blob (sphere :center (vec3 0.5 2 0) :radius 0.4)))
`
	desc, err := loaders.EvaluateSceneDSL(context.Background(), source)
	if err != nil {
		t.Fatalf("EvaluateSceneDSL failed: %v", err)
	}
	s, err := FromDescription("kinds", desc)
	if err != nil {
		t.Fatalf("FromDescription failed: %v", err)
	}

	if s.ObjectCount() != 6 {
		t.Fatalf("Expected 6 objects, got %d", s.ObjectCount())
	}
	checks := []func(core.Object) bool{
		func(o core.Object) bool { _, ok := o.(*geometry.Sphere); return ok },
		func(o core.Object) bool { _, ok := o.(*geometry.Plane); return ok },
		func(o core.Object) bool { _, ok := o.(*geometry.Box); return ok },
		func(o core.Object) bool { _, ok := o.(*geometry.SDFSolid); return ok },
		func(o core.Object) bool { _, ok := o.(*geometry.SDFSolid); return ok },
		func(o core.Object) bool { _, ok := o.(*geometry.SDFSolid); return ok },
	}
	for i, check := range checks {
		if !check(s.Object(i)) {
			t.Errorf("Object %d has unexpected type %T", i, s.Object(i))
		}
	}

	if s.Camera.VFov != 30 || s.Camera.LookAt != renderer.DefaultCameraConfig().LookAt {
		t.Errorf("Expected camera merged over defaults, got %+v", s.Camera)
	}
	if _, ok := s.Sky.(GradientBackground); !ok {
		t.Errorf("Expected default gradient sky, got %T", s.Sky)
	}
	if s.Ambient != defaultAmbient {
		t.Errorf("Expected default ambient, got %v", s.Ambient)
	}
}

func TestFromDescription_UndefinedMaterial(t *testing.T) {
	desc := &loaders.SceneDescription{
		Objects: []loaders.ObjectSpec{{Kind: "sphere", Radius: 1, Material: "ghost"}},
	}
	if _, err := FromDescription("bad", desc); !errors.Is(err, loaders.ErrUndefinedMaterial) {
		t.Errorf("Expected ErrUndefinedMaterial, got %v", err)
	}
}

func TestLoadSceneFile_Textured(t *testing.T) {
	dir := t.TempDir()

	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{0, 0, 255, 255})
	if err := gg.SavePNG(filepath.Join(dir, "stripes.png"), img); err != nil {
		t.Fatalf("Failed to save texture: %v", err)
	}

	path := writeSceneFile(t, dir, "textured-ball.zy", `;; Scene: Textured Ball
(material "striped" :texture "stripes.png")
(sphere :center (vec3 0 0 0) :radius 1 :material "striped")
(light :position (vec3 0 5 5))
`)

	s, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Name != "textured-ball" {
		t.Errorf("Expected name from file, got %q", s.Name)
	}

	m, ok := s.Material(0)
	if !ok {
		t.Fatal("Expected material 0")
	}
	phong := m.(*material.Phong)
	tex, ok := phong.Color.(*material.ImageTexture)
	if !ok {
		t.Fatalf("Expected image texture, got %T", phong.Color)
	}
	if tex.Width != 2 || tex.Height != 1 {
		t.Errorf("Expected 2x1 texture, got %dx%d", tex.Width, tex.Height)
	}
}

func TestLoadSceneFile_MissingTexture(t *testing.T) {
	dir := t.TempDir()
	path := writeSceneFile(t, dir, "broken.zy", `(material "m" :texture "nope.png")
(sphere :center (vec3 0 0 0) :radius 1 :material "m")`)

	if _, err := LoadSceneFile(context.Background(), path); err == nil {
		t.Error("Expected error for missing texture")
	}
}

func TestLoad(t *testing.T) {
	s, err := Load(context.Background(), "mirrors")
	if err != nil || s.Name != "mirrors" {
		t.Fatalf("Expected built-in mirrors scene, got %v, %v", s, err)
	}

	if _, err := Load(context.Background(), "no-such-scene"); !errors.Is(err, ErrUnknownScene) {
		t.Errorf("Expected ErrUnknownScene, got %v", err)
	}

	if _, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.zy")); err == nil {
		t.Error("Expected error for missing scene file")
	}
}

func TestShippedSceneFiles(t *testing.T) {
	files, err := ListSceneFiles(filepath.Join("..", "..", "scenes"))
	if err != nil {
		t.Fatalf("ListSceneFiles failed: %v", err)
	}
	if len(files) == 0 {
		t.Skip("no scene files found")
	}
	for _, info := range files {
		t.Run(info.Name, func(t *testing.T) {
			if _, err := LoadSceneFile(context.Background(), info.FilePath); err != nil {
				t.Errorf("%s does not load: %v", info.FilePath, err)
			}
		})
	}
}
