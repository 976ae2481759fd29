package renderer

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// Tracer computes the color carried along a single ray
type Tracer interface {
	TraceRay(scene core.Scene, origin, direction core.Vec3, depth int) (core.Vec3, error)
}

// Scene interface to avoid circular imports
type Scene interface {
	core.Scene
	CameraConfig() CameraConfig
}

// Config contains rendering configuration
type Config struct {
	Width           int     // Image width (0 = camera width)
	Height          int     // Image height (0 = derived from the camera aspect ratio)
	SamplesPerPixel int     // Rays per pixel along each axis; n gives an n×n grid
	TileSize        int     // Size of each square tile
	NumWorkers      int     // Number of tiles rendered at once (0 = use CPU count)
	Gamma           float64 // Output gamma; values <= 1 disable correction
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		SamplesPerPixel: 1,
		TileSize:        32,
		NumWorkers:      0,
		Gamma:           2.0,
	}
}

// Raytracer renders a scene by tracing primary rays through a camera
type Raytracer struct {
	scene  Scene
	tracer Tracer
	config Config
	camera *Camera
	logger core.Logger
}

// NewRaytracer creates a raytracer. Missing image dimensions are filled in
// from the scene camera, and the camera aspect ratio follows the image.
func NewRaytracer(scene Scene, tracer Tracer, config Config, logger core.Logger) *Raytracer {
	cameraConfig := scene.CameraConfig()

	if config.Width <= 0 {
		config.Width = cameraConfig.Width
	}
	if config.Width <= 0 {
		config.Width = DefaultCameraConfig().Width
	}
	if config.Height <= 0 {
		cameraConfig.Width = config.Width
		config.Height = cameraConfig.ImageHeight()
	}
	if config.SamplesPerPixel <= 0 {
		config.SamplesPerPixel = 1
	}
	if config.NumWorkers <= 0 {
		config.NumWorkers = runtime.NumCPU()
	}
	if logger == nil {
		logger = NewDefaultLogger()
	}

	cameraConfig.Width = config.Width
	cameraConfig.AspectRatio = float64(config.Width) / float64(config.Height)

	return &Raytracer{
		scene:  scene,
		tracer: tracer,
		config: config,
		camera: NewCamera(cameraConfig),
		logger: logger,
	}
}

// Config returns the effective render configuration
func (rt *Raytracer) Config() Config {
	return rt.config
}

// Camera returns the camera used for primary rays
func (rt *Raytracer) Camera() *Camera {
	return rt.camera
}

// Render traces every pixel and returns the finished image. Tiles are rendered
// in parallel; the first tracer error or a cancelled ctx stops the render.
func (rt *Raytracer) Render(ctx context.Context) (*image.RGBA, RenderStats, error) {
	start := time.Now()
	width, height := rt.config.Width, rt.config.Height
	tiles := NewTileGrid(width, height, rt.config.TileSize)

	stats := RenderStats{
		TotalPixels:     width * height,
		SamplesPerPixel: rt.config.SamplesPerPixel * rt.config.SamplesPerPixel,
		Tiles:           len(tiles),
		Workers:         rt.config.NumWorkers,
	}

	rt.logger.Printf("Rendering %dx%d in %d tiles (using %d workers)...\n",
		width, height, len(tiles), rt.config.NumWorkers)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var samples atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rt.config.NumWorkers)
	for _, tile := range tiles {
		g.Go(func() error {
			n, err := rt.renderTile(gctx, tile, img)
			samples.Add(int64(n))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stats, err
	}

	stats.TotalSamples = int(samples.Load())
	stats.Duration = time.Since(start)
	rt.logger.Printf("Render completed in %v\n", stats.Duration)
	return img, stats, nil
}

// renderTile writes the pixels inside the tile bounds. Tiles never overlap,
// so concurrent tiles write to disjoint parts of img.
func (rt *Raytracer) renderTile(ctx context.Context, tile *Tile, img *image.RGBA) (int, error) {
	samples := 0
	for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
		if err := ctx.Err(); err != nil {
			return samples, err
		}
		for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
			var ps PixelStats
			if err := rt.samplePixel(x, y, &ps); err != nil {
				return samples, fmt.Errorf("pixel (%d,%d): %w", x, y, err)
			}
			samples += ps.SampleCount
			img.SetRGBA(x, y, vec3ToColor(ps.GetColor(), rt.config.Gamma))
		}
	}
	return samples, nil
}

// samplePixel traces an n×n grid of rays through pixel (x, y). Image row 0
// is the top of the viewport.
func (rt *Raytracer) samplePixel(x, y int, ps *PixelStats) error {
	n := rt.config.SamplesPerPixel

	for sy := 0; sy < n; sy++ {
		for sx := 0; sx < n; sx++ {
			ray := rt.rayThrough(
				float64(x)+(float64(sx)+0.5)/float64(n),
				float64(y)+(float64(sy)+0.5)/float64(n))
			c, err := rt.tracer.TraceRay(rt.scene, ray.Origin, ray.Direction, 0)
			if err != nil {
				return err
			}
			ps.AddSample(c)
		}
	}
	return nil
}

// PixelRay returns the primary ray through the center of pixel (x, y)
func (rt *Raytracer) PixelRay(x, y int) core.Ray {
	return rt.rayThrough(float64(x)+0.5, float64(y)+0.5)
}

// rayThrough maps continuous image coordinates, y down, to a camera ray
func (rt *Raytracer) rayThrough(px, py float64) core.Ray {
	s := px / float64(rt.config.Width)
	t := 1 - py/float64(rt.config.Height)
	return rt.camera.GetRay(s, t)
}

// vec3ToColor converts a Vec3 color to RGBA with clamping and gamma correction
func vec3ToColor(colorVec core.Vec3, gamma float64) color.RGBA {
	// Clamp first: unclamped shading can go negative, and Pow of a negative is NaN
	if !colorVec.IsFinite() {
		colorVec = core.Vec3{}
	}
	colorVec = colorVec.Clamp(0.0, 1.0)
	if gamma > 1 {
		colorVec = colorVec.GammaCorrect(gamma)
	}

	return color.RGBA{
		R: uint8(255*colorVec.X + 0.5),
		G: uint8(255*colorVec.Y + 0.5),
		B: uint8(255*colorVec.Z + 0.5),
		A: 255,
	}
}
