package loaders

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/samber/lo"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource
const kwPrefix = "__kw_"

// preprocessSource rewrites scene source for zygomys:
//
//  1. :keyword becomes the string literal "__kw_keyword"
//  2. kebab-case identifiers become snake_case (rounded-box -> rounded_box)
//  3. ; line comments become // comments
//
// String literals are left untouched.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		switch {
		case b[i] == '"':
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}

		case b[i] == ';':
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}

		case b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, kwPrefix...)
			result = append(result, b[i+1:j]...)
			result = append(result, '"')
			i = j

		case b[i] == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			result = append(result, '_')
			i++

		default:
			result = append(result, b[i])
			i++
		}
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types
// ---------------------------------------------------------------------------

// sexpVec3 carries a point, direction or color between builtins
type sexpVec3 struct {
	vec core.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpObject carries an object spec so blob can absorb it
type sexpObject struct {
	spec *ObjectSpec
}

func (o *sexpObject) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s :material %q)", o.spec.Kind, o.spec.Material)
}
func (o *sexpObject) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Argument helpers
// ---------------------------------------------------------------------------

// kwArgs holds a mixed positional and keyword argument list
type kwArgs struct {
	form       string
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

func parseArgs(form string, args []zygo.Sexp) kwArgs {
	result := kwArgs{form: form, kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		if name, ok := isKW(args[i]); ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i++
			} else {
				result.kw[name] = zygo.SexpNull
			}
			continue
		}
		result.positional = append(result.positional, args[i])
	}
	return result
}

func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T", s)
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T", s)
}

func toVec3(s zygo.Sexp) (core.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return core.Vec3{}, fmt.Errorf("expected vec3 or rgb, got %T", s)
}

// vec reads an optional vector keyword into dst
func (a kwArgs) vec(name string, dst *core.Vec3) error {
	v, ok := a.kw[name]
	if !ok {
		return nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", a.form, name, err)
	}
	*dst = vec
	return nil
}

// num reads an optional numeric keyword into dst
func (a kwArgs) num(name string, dst *float64) error {
	v, ok := a.kw[name]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", a.form, name, err)
	}
	*dst = f
	return nil
}

// str reads an optional string keyword into dst
func (a kwArgs) str(name string, dst *string) error {
	v, ok := a.kw[name]
	if !ok {
		return nil
	}
	s, err := toString(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", a.form, name, err)
	}
	*dst = s
	return nil
}

// require reports the first missing keyword
func (a kwArgs) require(names ...string) error {
	if name, missing := lo.Find(names, func(name string) bool {
		_, ok := a.kw[name]
		return !ok
	}); missing {
		return fmt.Errorf("%s: missing :%s", a.form, name)
	}
	return nil
}

// firstErr returns the first non-nil error
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerSceneBuiltins installs the scene forms into env. Source must be
// preprocessed so keywords and kebab-case names are recognizable.
func registerSceneBuiltins(env *zygo.Zlisp, b *descriptionBuilder) {
	vecForm := func(form string) func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error) {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 3 {
				return zygo.SexpNull, fmt.Errorf("%s requires exactly 3 arguments, got %d", form, len(args))
			}
			var xyz [3]float64
			for i, arg := range args {
				f, err := toFloat64(arg)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: component %d: %w", form, i, err)
				}
				xyz[i] = f
			}
			return &sexpVec3{vec: core.NewVec3(xyz[0], xyz[1], xyz[2])}, nil
		}
	}

	// (vec3 x y z) and (rgb r g b)
	env.AddFunction("vec3", vecForm("vec3"))
	env.AddFunction("rgb", vecForm("rgb"))

	// (ambient (rgb 0.1 0.1 0.1))
	env.AddFunction("ambient", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("ambient requires one color")
		}
		c, err := toVec3(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ambient: %w", err)
		}
		b.desc.Ambient = &c
		return zygo.SexpNull, nil
	})

	// (background (rgb ...)) or (background :top (rgb ...) :bottom (rgb ...))
	env.AddFunction("background", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("background", args)
		spec := &BackgroundSpec{}
		if len(pa.positional) == 1 {
			c, err := toVec3(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("background: %w", err)
			}
			spec.Top, spec.Bottom = c, c
		} else {
			if err := pa.require("top", "bottom"); err != nil {
				return zygo.SexpNull, err
			}
			if err := firstErr(pa.vec("top", &spec.Top), pa.vec("bottom", &spec.Bottom)); err != nil {
				return zygo.SexpNull, err
			}
			spec.Gradient = true
		}
		b.desc.Background = spec
		return zygo.SexpNull, nil
	})

	// (camera :center (vec3 ...) :look-at (vec3 ...) :up (vec3 ...) :fov 45)
	env.AddFunction("camera", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("camera", args)
		spec := &CameraSpec{}
		if err := firstErr(
			pa.vec("center", &spec.Center),
			pa.vec("look-at", &spec.LookAt),
			pa.vec("up", &spec.Up),
			pa.num("fov", &spec.VFov),
		); err != nil {
			return zygo.SexpNull, err
		}
		b.desc.Camera = spec
		return zygo.SexpNull, nil
	})

	// (material "name" :diffuse (rgb ...) :specular (rgb ...) :exponent 32
	//           :reflection 0.5 :refraction 1.5 :opacity 0.3
	//           :checker (rgb ...) :checker-alt (rgb ...) :scale 4 :texture "file.png")
	env.AddFunction("material", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("material", args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("material requires a name")
		}
		matName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("material: name: %w", err)
		}
		if _, exists := b.desc.MaterialByName(matName); exists {
			return zygo.SexpNull, fmt.Errorf("material %q declared twice", matName)
		}

		spec := MaterialSpec{
			Name:       matName,
			Diffuse:    core.NewVec3(0.8, 0.8, 0.8),
			Exponent:   1,
			Refraction: core.AirIndex,
			Opacity:    1,
		}
		if err := firstErr(
			pa.vec("diffuse", &spec.Diffuse),
			pa.vec("specular", &spec.Specular),
			pa.num("exponent", &spec.Exponent),
			pa.num("reflection", &spec.Reflection),
			pa.num("refraction", &spec.Refraction),
			pa.num("opacity", &spec.Opacity),
			pa.str("texture", &spec.Texture),
		); err != nil {
			return zygo.SexpNull, err
		}

		if _, ok := pa.kw["checker"]; ok {
			checker := &CheckerSpec{Odd: core.NewVec3(0.1, 0.1, 0.1), Scale: 1}
			if err := firstErr(
				pa.vec("checker", &checker.Even),
				pa.vec("checker-alt", &checker.Odd),
				pa.num("scale", &checker.Scale),
			); err != nil {
				return zygo.SexpNull, err
			}
			spec.Checker = checker
		}

		b.desc.Materials = append(b.desc.Materials, spec)
		return &zygo.SexpStr{S: matName}, nil
	})

	// objectForm registers a shape form with its required keywords
	objectForm := func(kind string, required []string, fill func(pa kwArgs, spec *ObjectSpec) error) {
		env.AddFunction(strings.ReplaceAll(kind, "-", "_"), func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(kind, args)
			if err := pa.require(required...); err != nil {
				return zygo.SexpNull, err
			}
			spec := &ObjectSpec{Kind: kind}
			if err := pa.str("material", &spec.Material); err != nil {
				return zygo.SexpNull, err
			}
			if err := fill(pa, spec); err != nil {
				return zygo.SexpNull, err
			}
			b.addObject(spec)
			return &sexpObject{spec: spec}, nil
		})
	}

	// (sphere :center (vec3 ...) :radius 0.5 :material "m")
	objectForm("sphere", []string{"center", "radius"}, func(pa kwArgs, spec *ObjectSpec) error {
		return firstErr(pa.vec("center", &spec.Center), pa.num("radius", &spec.Radius))
	})

	// (plane :point (vec3 ...) :normal (vec3 ...) :material "m")
	objectForm("plane", []string{"point", "normal"}, func(pa kwArgs, spec *ObjectSpec) error {
		return firstErr(pa.vec("point", &spec.Point), pa.vec("normal", &spec.Normal))
	})

	// (box :min (vec3 ...) :max (vec3 ...) :material "m")
	objectForm("box", []string{"min", "max"}, func(pa kwArgs, spec *ObjectSpec) error {
		return firstErr(pa.vec("min", &spec.Min), pa.vec("max", &spec.Max))
	})

	// (rounded-box :center (vec3 ...) :size (vec3 ...) :round 0.1 :material "m")
	objectForm("rounded-box", []string{"center", "size"}, func(pa kwArgs, spec *ObjectSpec) error {
		return firstErr(pa.vec("center", &spec.Center), pa.vec("size", &spec.Size), pa.num("round", &spec.Round))
	})

	// (cylinder :center (vec3 ...) :height 1 :radius 0.3 :material "m")
	objectForm("cylinder", []string{"center", "height", "radius"}, func(pa kwArgs, spec *ObjectSpec) error {
		return firstErr(pa.vec("center", &spec.Center), pa.num("height", &spec.Height), pa.num("radius", &spec.Radius))
	})

	// (blob :material "m" (sphere ...) (rounded-box ...) ...)
	objectForm("blob", nil, func(pa kwArgs, spec *ObjectSpec) error {
		if len(pa.positional) == 0 {
			return fmt.Errorf("blob requires at least one part")
		}
		for i, arg := range pa.positional {
			part, ok := arg.(*sexpObject)
			if !ok {
				return fmt.Errorf("blob: part %d: expected object, got %T", i, arg)
			}
			switch part.spec.Kind {
			case "sphere", "rounded-box", "cylinder", "blob":
			default:
				return fmt.Errorf("blob: part %d: %s cannot be joined", i, part.spec.Kind)
			}
			part.spec.absorbed = true
			spec.Parts = append(spec.Parts, *part.spec)
		}
		return nil
	})

	// (light :position (vec3 ...) :color (rgb ...))
	env.AddFunction("light", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("light", args)
		if err := pa.require("position"); err != nil {
			return zygo.SexpNull, err
		}
		spec := LightSpec{Color: core.NewVec3(1, 1, 1)}
		if err := firstErr(pa.vec("position", &spec.Position), pa.vec("color", &spec.Color)); err != nil {
			return zygo.SexpNull, err
		}
		b.desc.Lights = append(b.desc.Lights, spec)
		return zygo.SexpNull, nil
	})
}
