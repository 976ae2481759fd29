package server

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-whitted-raytracer/pkg/integrator"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// defaultScene is rendered when the request names none
const defaultScene = "default"

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene    string  `json:"scene"`    // Built-in name or scene file id
	Width    int     `json:"width"`    // Image width
	Height   int     `json:"height"`   // Image height (0 = camera aspect ratio)
	MaxDepth int     `json:"maxDepth"` // Recursion limit for reflection and refraction
	Samples  int     `json:"samples"`  // Samples per pixel along each axis
	Gamma    float64 `json:"gamma"`    // Output gamma
	VFov     float64 `json:"vfov"`     // Camera field of view override (0 = scene default)
}

// parseRenderRequest parses the query parameters shared by render and inspect
func parseRenderRequest(values url.Values) (*RenderRequest, error) {
	req := &RenderRequest{Scene: defaultScene}
	if name := values.Get("scene"); name != "" {
		req.Scene = name
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", 400, 16, 2000); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", 0, 16, 2000); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(values, "depth", integrator.DefaultConfig().MaxDepth, 1, 32); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(values, "samples", 1, 1, 16); err != nil {
		return nil, err
	}
	if req.Gamma, err = parseFloatParam(values, "gamma", renderer.DefaultConfig().Gamma, 1, 4); err != nil {
		return nil, err
	}
	if req.VFov, err = parseFloatParam(values, "fov", 0, 1, 179); err != nil {
		return nil, err
	}
	return req, nil
}

// newRaytracer loads the requested scene and builds the tracer and renderer for it
func (s *Server) newRaytracer(c echo.Context, req *RenderRequest) (*scene.Scene, *integrator.Whitted, *renderer.Raytracer, error) {
	sc, err := s.loadScene(c.Request().Context(), req.Scene, renderer.CameraConfig{VFov: req.VFov})
	if err != nil {
		return nil, nil, nil, err
	}

	tracerConfig := integrator.DefaultConfig()
	tracerConfig.MaxDepth = req.MaxDepth
	tracer := integrator.NewWhitted(tracerConfig)

	config := renderer.DefaultConfig()
	config.Width = req.Width
	config.Height = req.Height
	config.SamplesPerPixel = req.Samples
	config.Gamma = req.Gamma

	rt := renderer.NewRaytracer(sc, tracer, config, NewWebLogger(requestID(c), nil))
	return sc, tracer, rt, nil
}

// sceneError maps scene loading failures to a JSON error response
func sceneError(c echo.Context, err error) error {
	if errors.Is(err, scene.ErrUnknownScene) {
		return jsonError(c, http.StatusNotFound, err.Error())
	}
	return jsonError(c, http.StatusUnprocessableEntity, err.Error())
}

// handleRender renders the requested scene and responds with a PNG image
func (s *Server) handleRender(c echo.Context) error {
	req, err := parseRenderRequest(c.QueryParams())
	if err != nil {
		return jsonError(c, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
	}

	_, tracer, rt, err := s.newRaytracer(c, req)
	if err != nil {
		return sceneError(c, err)
	}

	img, stats, err := rt.Render(c.Request().Context())
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, fmt.Sprintf("Render error: %v", err))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return jsonError(c, http.StatusInternalServerError, fmt.Sprintf("failed to encode image: %v", err))
	}

	h := c.Response().Header()
	h.Set("X-Render-Duration-Ms", strconv.FormatInt(stats.Duration.Milliseconds(), 10))
	h.Set("X-Render-Samples", strconv.Itoa(stats.TotalSamples))
	h.Set("X-Render-Traces", strconv.FormatInt(tracer.Stats().Traces, 10))
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}
