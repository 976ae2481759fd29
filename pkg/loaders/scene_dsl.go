package loaders

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/samber/lo"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// DSLTimeout is the hard limit for evaluating one scene description
const DSLTimeout = 5 * time.Second

// ErrUndefinedMaterial is returned when an object names a material that was never declared
var ErrUndefinedMaterial = errors.New("undefined material")

// EvalError is a parse or runtime error in scene source, with the line when known
type EvalError struct {
	Line    int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// SceneDescription is the plain-data result of evaluating a scene file.
// Colors and points are both carried as core.Vec3.
type SceneDescription struct {
	Ambient    *core.Vec3
	Background *BackgroundSpec
	Camera     *CameraSpec
	Materials  []MaterialSpec // in declaration order
	Objects    []ObjectSpec   // top-level objects only
	Lights     []LightSpec
}

// BackgroundSpec is either a flat color (Top only) or a vertical gradient
type BackgroundSpec struct {
	Top      core.Vec3
	Bottom   core.Vec3
	Gradient bool
}

// CameraSpec holds the camera placement; zero fields keep scene defaults
type CameraSpec struct {
	Center core.Vec3
	LookAt core.Vec3
	Up     core.Vec3
	VFov   float64
}

// MaterialSpec describes a Phong material by name
type MaterialSpec struct {
	Name       string
	Diffuse    core.Vec3
	Specular   core.Vec3
	Exponent   float64
	Reflection float64
	Refraction float64
	Opacity    float64
	Checker    *CheckerSpec
	Texture    string // image path, resolved against the scene file directory
}

// CheckerSpec describes a procedural checkerboard diffuse color
type CheckerSpec struct {
	Even  core.Vec3
	Odd   core.Vec3
	Scale float64
}

// ObjectSpec describes one scene object. Which fields are meaningful depends on Kind.
type ObjectSpec struct {
	Kind     string // sphere, plane, box, rounded-box, cylinder, blob
	Center   core.Vec3
	Point    core.Vec3
	Normal   core.Vec3
	Min      core.Vec3
	Max      core.Vec3
	Size     core.Vec3
	Radius   float64
	Height   float64
	Round    float64
	Material string
	Parts    []ObjectSpec // blob members

	absorbed bool // consumed by an enclosing blob
}

// LightSpec describes a point light
type LightSpec struct {
	Position core.Vec3
	Color    core.Vec3
}

// MaterialByName returns the named material spec
func (d *SceneDescription) MaterialByName(name string) (MaterialSpec, bool) {
	for _, m := range d.Materials {
		if m.Name == name {
			return m, true
		}
	}
	return MaterialSpec{}, false
}

type dslResult struct {
	desc *SceneDescription
	err  error
}

var evaluateSource = evaluateSceneDSL

// EvaluateSceneDSL evaluates scene source in a fresh sandbox. Evaluation is
// abandoned after DSLTimeout or when ctx is done.
func EvaluateSceneDSL(ctx context.Context, source string) (*SceneDescription, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scene evaluation: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, DSLTimeout)
	defer cancel()

	// The sandbox cannot be interrupted; on timeout the goroutine is left to
	// finish on its own and its result is dropped into the buffered channel.
	ch := make(chan dslResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- dslResult{err: fmt.Errorf("panic during scene evaluation: %v", r)}
			}
		}()
		desc, err := evaluateSource(source)
		ch <- dslResult{desc: desc, err: err}
	}()

	select {
	case res := <-ch:
		return res.desc, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("scene evaluation: %w", ctx.Err())
	}
}

// LoadSceneFile reads and evaluates a scene file. Relative texture paths are
// resolved against the file's directory.
func LoadSceneFile(ctx context.Context, path string) (*SceneDescription, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}

	desc, err := EvaluateSceneDSL(ctx, string(source))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range desc.Materials {
		tex := desc.Materials[i].Texture
		if tex != "" && !filepath.IsAbs(tex) {
			desc.Materials[i].Texture = filepath.Join(dir, tex)
		}
	}
	return desc, nil
}

func evaluateSceneDSL(source string) (*SceneDescription, error) {
	b := &descriptionBuilder{}
	if strings.TrimSpace(source) == "" {
		return b.finish()
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerSceneBuiltins(env, b)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err)
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err)
	}
	return b.finish()
}

// descriptionBuilder accumulates forms while the sandbox runs
type descriptionBuilder struct {
	desc    SceneDescription
	objects []*ObjectSpec
}

func (b *descriptionBuilder) addObject(spec *ObjectSpec) {
	b.objects = append(b.objects, spec)
}

func (b *descriptionBuilder) finish() (*SceneDescription, error) {
	desc := b.desc
	standalone := lo.Reject(b.objects, func(obj *ObjectSpec, _ int) bool { return obj.absorbed })
	for _, obj := range standalone {
		if _, ok := desc.MaterialByName(obj.Material); !ok {
			return nil, fmt.Errorf("%s: %w %q", obj.Kind, ErrUndefinedMaterial, obj.Material)
		}
		desc.Objects = append(desc.Objects, *obj)
	}
	return &desc, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into an EvalError with line info when present
func parseZygomysError(err error) EvalError {
	msg := err.Error()

	for _, pattern := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := pattern.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return EvalError{Line: line, Message: strings.TrimSpace(m[2])}
		}
	}
	return EvalError{Message: strings.TrimSpace(msg)}
}
