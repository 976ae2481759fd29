package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType,omitempty"`
	GeometryType string                 `json:"geometryType,omitempty"`
	MaterialID   int                    `json:"materialId"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	Color        [3]float64             `json:"color"` // Traced radiance before gamma
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

func vec3Array(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(v core.Vec3) string {
	c := v.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// extractMaterialInfo describes a material as seen at texture coordinate uv
func extractMaterialInfo(mat core.Material, uv core.Vec2) (string, map[string]interface{}) {
	properties := map[string]interface{}{
		"diffuse":          vec3Array(mat.Diffuse(uv)),
		"color":            hexColor(mat.Diffuse(uv)),
		"specular":         vec3Array(mat.Specular()),
		"specularExponent": mat.SpecularExponent(),
		"reflection":       mat.ReflectionFactor(),
		"refractiveIndex":  mat.RefractionIndex(),
		"opacity":          mat.Opacity(),
	}

	m, ok := mat.(*material.Phong)
	if !ok {
		return "unknown", properties
	}
	switch src := m.Color.(type) {
	case *material.SolidColor:
		properties["colorSource"] = "solid"
	case *material.Checkerboard:
		properties["colorSource"] = "checkerboard"
		properties["checkerScale"] = src.Scale
	case *material.ImageTexture:
		properties["colorSource"] = "texture"
	}

	switch {
	case m.Alpha < 1:
		return "glass", properties
	case m.Reflection > 0:
		return "mirror", properties
	default:
		return "phong", properties
	}
}

// extractGeometryInfo extracts detailed geometry information
func extractGeometryInfo(obj core.Object) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch geom := obj.(type) {
	case *geometry.Sphere:
		properties["center"] = vec3Array(geom.Center)
		properties["radius"] = geom.Radius
		return "sphere", properties

	case *geometry.Plane:
		properties["point"] = vec3Array(geom.Point)
		properties["normal"] = vec3Array(geom.Normal)
		return "plane", properties

	case *geometry.Box:
		properties["min"] = vec3Array(geom.Bounds.Min)
		properties["max"] = vec3Array(geom.Bounds.Max)
		return "box", properties

	case *geometry.SDFSolid:
		return "sdf", properties

	default:
		return "unknown", properties
	}
}

// handleInspect reports the surface seen through a pixel of the requested render
func (s *Server) handleInspect(c echo.Context) error {
	req, err := parseRenderRequest(c.QueryParams())
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
	}

	pixelX, err := strconv.Atoi(c.QueryParam("x"))
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid x coordinate")
	}
	pixelY, err := strconv.Atoi(c.QueryParam("y"))
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid y coordinate")
	}

	sc, tracer, rt, err := s.newRaytracer(c, req)
	if err != nil {
		return sceneError(c, err)
	}

	config := rt.Config()
	if pixelX < 0 || pixelX >= config.Width || pixelY < 0 || pixelY >= config.Height {
		return jsonError(c, http.StatusBadRequest, "Pixel coordinates out of bounds")
	}

	ray := rt.PixelRay(pixelX, pixelY)
	color, err := tracer.TraceRay(sc, ray.Origin, ray.Direction, 0)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}

	hit, ok := tracer.Nearest(sc, ray.Origin, ray.Direction)
	if !ok {
		return c.JSON(http.StatusOK, InspectResponse{Hit: false, Color: vec3Array(color)})
	}

	mat, ok := sc.Material(hit.Object.MaterialID())
	if !ok {
		return jsonError(c, http.StatusInternalServerError, fmt.Sprintf("material id %d not found", hit.Object.MaterialID()))
	}
	materialType, materialProps := extractMaterialInfo(mat, hit.Object.TextureCoordAt(hit.Point))
	geometryType, geometryProps := extractGeometryInfo(hit.Object)

	return c.JSON(http.StatusOK, InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: geometryType,
		MaterialID:   hit.Object.MaterialID(),
		Point:        vec3Array(hit.Point),
		Normal:       vec3Array(hit.Normal),
		Distance:     hit.Point.Subtract(ray.Origin).Length(),
		Color:        vec3Array(color),
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": geometryProps,
		},
	})
}
