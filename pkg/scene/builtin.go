package scene

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/df07/go-whitted-raytracer/pkg/renderer"
)

// ErrUnknownScene is returned for a scene name that is neither built in nor a scene file
var ErrUnknownScene = errors.New("unknown scene")

// SceneFileExt is the extension of scene description files
const SceneFileExt = ".zy"

type builtinScene struct {
	displayName string
	description string
	build       func(cameraOverrides ...renderer.CameraConfig) (*Scene, error)
}

func infallible(f func(...renderer.CameraConfig) *Scene) func(...renderer.CameraConfig) (*Scene, error) {
	return func(overrides ...renderer.CameraConfig) (*Scene, error) {
		return f(overrides...), nil
	}
}

var builtins = map[string]builtinScene{
	"default": {"Default Scene", "Spheres on a checker floor with a mirror, gold and glass", infallible(NewDefaultScene)},
	"mirrors": {"Facing Mirrors", "A sphere between two parallel mirrors", infallible(NewMirrorsScene)},
	"glass":   {"Glass", "Refraction through a glass slab and a water sphere", infallible(NewGlassScene)},
	"sdf":     {"Distance Fields", "Rounded box, cylinder and joined spheres from signed distance fields", NewSDFScene},
}

// BuiltinNames returns the built-in scene names in sorted order
func BuiltinNames() []string {
	names := lo.Keys(builtins)
	slices.Sort(names)
	return names
}

// Builtin creates the named built-in scene
func Builtin(name string, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	return b.build(cameraOverrides...)
}

// Load resolves a scene by built-in name or by path to a scene file
func Load(ctx context.Context, name string, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	if _, ok := builtins[name]; ok {
		return Builtin(name, cameraOverrides...)
	}
	if strings.HasSuffix(name, SceneFileExt) {
		return LoadSceneFile(ctx, name, cameraOverrides...)
	}
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		return LoadSceneFile(ctx, name, cameraOverrides...)
	}
	return nil, fmt.Errorf("%w: %q (built-in scenes: %s)", ErrUnknownScene, filepath.Base(name),
		strings.Join(BuiltinNames(), ", "))
}
