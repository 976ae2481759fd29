package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fogleman/gg"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/integrator"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// options holds the command line settings for a single render
type options struct {
	scene   string
	width   int
	height  int
	depth   int
	samples int
	workers int
	out     string // Output file; empty writes to output/<scene>/render_<timestamp>.png
}

func main() {
	// Parse command line flags
	var opts options
	flag.StringVar(&opts.scene, "scene", "default", "Built-in scene name or path to a .zy scene file")
	flag.IntVar(&opts.width, "width", 0, "Image width (0 = scene camera width)")
	flag.IntVar(&opts.height, "height", 0, "Image height (0 = from the camera aspect ratio)")
	flag.IntVar(&opts.depth, "depth", integrator.DefaultConfig().MaxDepth, "Maximum recursion depth for reflection and refraction")
	flag.IntVar(&opts.samples, "samples", 1, "Samples per pixel along each axis (n gives n×n rays)")
	flag.IntVar(&opts.workers, "workers", 0, "Number of parallel tile workers (0 = CPU count)")
	flag.StringVar(&opts.out, "out", "", "Output PNG path")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	// Show help if requested
	if *help {
		printHelp()
		return
	}

	fmt.Println("Starting Whitted Raytracer...")

	filename, err := run(context.Background(), opts, renderer.NewDefaultLogger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Render saved as %s\n", filename)
}

func printHelp() {
	fmt.Println("Whitted Raytracer")
	fmt.Println("Usage: raytracer [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Available scenes:")
	for _, info := range scene.ListBuiltinScenes() {
		fmt.Printf("  %-8s - %s\n", info.ID, info.Description)
	}
	fmt.Println("  <file>.zy - Scene description file, see scenes/")
	fmt.Println()
	fmt.Println("Output will be saved to output/<scene>/render_<timestamp>.png unless -out is given")
}

// run renders the scene described by opts and returns the written file name
func run(ctx context.Context, opts options, logger core.Logger) (string, error) {
	sc, err := createScene(ctx, opts.scene)
	if err != nil {
		return "", err
	}

	tracerConfig := integrator.DefaultConfig()
	if opts.depth > 0 {
		tracerConfig.MaxDepth = opts.depth
	}
	tracer := integrator.NewWhitted(tracerConfig)

	config := renderer.DefaultConfig()
	config.Width = opts.width
	config.Height = opts.height
	config.NumWorkers = opts.workers
	if opts.samples > 0 {
		config.SamplesPerPixel = opts.samples
	}

	raytracer := renderer.NewRaytracer(sc, tracer, config, logger)
	img, stats, err := raytracer.Render(ctx)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", sc.Name, err)
	}

	traceStats := tracer.Stats()
	logger.Printf("Samples: %d (%.1f per pixel), traces: %d, hits: %d, shadow tests: %d\n",
		stats.TotalSamples, stats.AverageSamples(), traceStats.Traces, traceStats.Hits, traceStats.ShadowTests)
	logger.Printf("Average luminance: %.3f\n", renderer.CalculateAverageLuminance(img))

	filename := opts.out
	if filename == "" {
		outputDir := createOutputDir(opts.scene)
		timestamp := time.Now().Format("20060102_150405")
		filename = filepath.Join(outputDir, fmt.Sprintf("render_%s.png", timestamp))
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return "", fmt.Errorf("error creating output directory: %w", err)
	}
	if err := gg.SavePNG(filename, img); err != nil {
		return "", fmt.Errorf("error saving PNG: %w", err)
	}
	return filename, nil
}

// createScene resolves a built-in scene name or a scene file path
func createScene(ctx context.Context, name string) (*scene.Scene, error) {
	return scene.Load(ctx, name)
}

// createOutputDir returns the output directory for a scene: its name, or
// the file name without extension for scene files
func createOutputDir(sceneName string) string {
	base := strings.TrimSuffix(filepath.Base(sceneName), filepath.Ext(sceneName))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "scene"
	}
	return filepath.Join("output", base)
}
