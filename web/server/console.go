package server

import (
	"fmt"
	"log"
	"strings"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// WebLogger implements core.Logger by writing render messages to the server log,
// tagged with the request that started the render
type WebLogger struct {
	renderID string
	out      *log.Logger
}

// NewWebLogger creates a logger for a specific render. A nil out uses the standard logger.
func NewWebLogger(renderID string, out *log.Logger) core.Logger {
	if out == nil {
		out = log.Default()
	}
	return &WebLogger{
		renderID: renderID,
		out:      out,
	}
}

// Printf implements core.Logger interface
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	if message == "" {
		return
	}
	wl.out.Printf("[render %s] %s", wl.renderID, message)
}
