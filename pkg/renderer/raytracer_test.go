package renderer

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"sync/atomic"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// MockScene implements Scene with no objects or lights
type MockScene struct {
	camera CameraConfig
}

func (m *MockScene) ObjectCount() int                     { return 0 }
func (m *MockScene) Object(i int) core.Object             { return nil }
func (m *MockScene) LightCount() int                      { return 0 }
func (m *MockScene) Light(i int) core.Light               { return nil }
func (m *MockScene) Material(id int) (core.Material, bool) { return nil, false }
func (m *MockScene) AmbientLight() core.Vec3              { return core.Vec3{} }
func (m *MockScene) Background(ray core.Ray) core.Vec3    { return core.Vec3{} }
func (m *MockScene) CameraConfig() CameraConfig           { return m.camera }

// MockTracer delegates to traceFn and counts calls
type MockTracer struct {
	traceFn func(origin, direction core.Vec3) (core.Vec3, error)
	calls   atomic.Int64
}

func (m *MockTracer) TraceRay(scene core.Scene, origin, direction core.Vec3, depth int) (core.Vec3, error) {
	m.calls.Add(1)
	if depth != 0 {
		return core.Vec3{}, errors.New("primary rays must start at depth 0")
	}
	return m.traceFn(origin, direction)
}

func constantTracer(c core.Vec3) *MockTracer {
	return &MockTracer{traceFn: func(origin, direction core.Vec3) (core.Vec3, error) { return c, nil }}
}

type silentLogger struct{}

func (silentLogger) Printf(format string, args ...interface{}) {}

func newTestRaytracer(tracer Tracer, width, height, samples int) *Raytracer {
	config := Config{
		Width:           width,
		Height:          height,
		SamplesPerPixel: samples,
		TileSize:        3,
		NumWorkers:      2,
		Gamma:           1,
	}
	return NewRaytracer(&MockScene{camera: DefaultCameraConfig()}, tracer, config, silentLogger{})
}

func TestRender_ConstantColor(t *testing.T) {
	tracer := constantTracer(core.NewVec3(0.25, 0.5, 1))
	rt := newTestRaytracer(tracer, 7, 5, 2)

	img, stats, err := rt.Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if img.Bounds() != image.Rect(0, 0, 7, 5) {
		t.Fatalf("Unexpected image bounds %v", img.Bounds())
	}
	expected := color.RGBA{R: 64, G: 128, B: 255, A: 255}
	for y := 0; y < 5; y++ {
		for x := 0; x < 7; x++ {
			if got := img.RGBAAt(x, y); got != expected {
				t.Fatalf("Pixel (%d,%d): expected %v, got %v", x, y, expected, got)
			}
		}
	}

	if stats.TotalPixels != 35 {
		t.Errorf("Expected 35 pixels, got %d", stats.TotalPixels)
	}
	if stats.SamplesPerPixel != 4 || stats.TotalSamples != 140 {
		t.Errorf("Expected 4 samples per pixel and 140 total, got %d and %d", stats.SamplesPerPixel, stats.TotalSamples)
	}
	if got := tracer.calls.Load(); got != 140 {
		t.Errorf("Expected 140 traced rays, got %d", got)
	}
	// 7x5 with 3px tiles is 3x2 tiles
	if stats.Tiles != 6 {
		t.Errorf("Expected 6 tiles, got %d", stats.Tiles)
	}
}

func TestRender_TopRowLooksUp(t *testing.T) {
	tracer := &MockTracer{traceFn: func(origin, direction core.Vec3) (core.Vec3, error) {
		if direction.Y > 0 {
			return core.NewVec3(1, 1, 1), nil
		}
		return core.Vec3{}, nil
	}}
	rt := newTestRaytracer(tracer, 2, 4, 1)

	img, _, err := rt.Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	white := color.RGBA{255, 255, 255, 255}
	black := color.RGBA{0, 0, 0, 255}
	for y, expected := range []color.RGBA{white, white, black, black} {
		if got := img.RGBAAt(0, y); got != expected {
			t.Errorf("Row %d: expected %v, got %v", y, expected, got)
		}
	}
}

func TestRender_TracerErrorStopsRender(t *testing.T) {
	boom := errors.New("boom")
	tracer := &MockTracer{traceFn: func(origin, direction core.Vec3) (core.Vec3, error) {
		return core.Vec3{}, boom
	}}
	rt := newTestRaytracer(tracer, 8, 8, 1)

	img, _, err := rt.Render(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Expected tracer error, got %v", err)
	}
	if img != nil {
		t.Error("Expected no image on error")
	}
}

func TestRender_CancelledContext(t *testing.T) {
	tracer := constantTracer(core.NewVec3(1, 1, 1))
	rt := newTestRaytracer(tracer, 8, 8, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := rt.Render(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if got := tracer.calls.Load(); got != 0 {
		t.Errorf("Expected no rays traced after cancel, got %d", got)
	}
}

func TestNewRaytracer_Defaults(t *testing.T) {
	camera := DefaultCameraConfig()
	camera.Width = 200
	camera.AspectRatio = 2.0

	rt := NewRaytracer(&MockScene{camera: camera}, constantTracer(core.Vec3{}), Config{}, silentLogger{})
	config := rt.Config()

	if config.Width != 200 || config.Height != 100 {
		t.Errorf("Expected 200x100 from camera, got %dx%d", config.Width, config.Height)
	}
	if config.SamplesPerPixel != 1 {
		t.Errorf("Expected 1 sample per pixel, got %d", config.SamplesPerPixel)
	}
	if config.NumWorkers <= 0 {
		t.Errorf("Expected worker count to default to CPU count, got %d", config.NumWorkers)
	}

	rt = NewRaytracer(&MockScene{camera: camera}, constantTracer(core.Vec3{}), Config{Width: 100, Height: 100}, silentLogger{})
	if got := rt.Camera().Config().AspectRatio; got != 1.0 {
		t.Errorf("Expected camera aspect ratio to follow the image, got %v", got)
	}
}

func TestVec3ToColor(t *testing.T) {
	tests := []struct {
		name     string
		input    core.Vec3
		gamma    float64
		expected color.RGBA
	}{
		{"black", core.Vec3{}, 2, color.RGBA{0, 0, 0, 255}},
		{"white", core.NewVec3(1, 1, 1), 2, color.RGBA{255, 255, 255, 255}},
		{"negative clamps to zero", core.NewVec3(-0.5, -2, 0), 2, color.RGBA{0, 0, 0, 255}},
		{"overbright clamps", core.NewVec3(3, 1.5, 1), 1, color.RGBA{255, 255, 255, 255}},
		{"gamma 2 brightens", core.NewVec3(0.25, 0.25, 0.25), 2, color.RGBA{128, 128, 128, 255}},
		{"gamma disabled", core.NewVec3(0.25, 0.25, 0.25), 0, color.RGBA{64, 64, 64, 255}},
		{"NaN is black", core.NewVec3(math.NaN(), 1, 1), 2, color.RGBA{0, 0, 0, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vec3ToColor(tt.input, tt.gamma); got != tt.expected {
				t.Errorf("vec3ToColor(%v, %v) = %v, want %v", tt.input, tt.gamma, got, tt.expected)
			}
		})
	}
}
