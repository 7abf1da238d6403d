// Package render turns a backend-neutral engine.ChartConfig into native
// chart output for each supported charting library.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/spektr-org/mpgexplorer/engine"
)

var (
	// ErrUnknownBackend is returned for a backend name that is not registered.
	ErrUnknownBackend = errors.New("unknown chart backend")
	// ErrUnsupportedFormat is returned when a backend cannot produce a format.
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// Format is an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatPNG  Format = "png"
	FormatSVG  Format = "svg"
)

// ContentType returns the HTTP content type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatPNG:
		return "image/png"
	case FormatSVG:
		return "image/svg+xml"
	}
	return "application/octet-stream"
}

// Renderer draws a ChartConfig with one charting library.
type Renderer interface {
	// Name is the registry key, also used in URLs.
	Name() string
	// Label is the tab caption shown in the dashboard.
	Label() string
	// Policy returns the cosmetic settings the chart is built with.
	Policy() engine.ChartPolicy
	// Formats lists the supported outputs; the first is the default.
	Formats() []Format
	// Render writes cfg in the given format.
	Render(w io.Writer, cfg *engine.ChartConfig, format Format) error
}

// Render resolves the default format, checks support, and wraps any error
// with the backend name.
func Render(r Renderer, w io.Writer, cfg *engine.ChartConfig, format Format) (Format, error) {
	format, err := ResolveFormat(r, format)
	if err != nil {
		return "", err
	}
	if err := r.Render(w, cfg, format); err != nil {
		return "", fmt.Errorf("%s: render %s: %w", r.Name(), format, err)
	}
	return format, nil
}

// ResolveFormat returns format if r supports it, or r's default when format
// is empty.
func ResolveFormat(r Renderer, format Format) (Format, error) {
	formats := r.Formats()
	if format == "" {
		return formats[0], nil
	}
	format = Format(strings.ToLower(string(format)))
	for _, f := range formats {
		if f == format {
			return f, nil
		}
	}
	return "", fmt.Errorf("%s: %w %q", r.Name(), ErrUnsupportedFormat, format)
}

// ============================================================================
// REGISTRY
// ============================================================================

// Registry holds renderers in display order.
type Registry struct {
	order  []Renderer
	byName map[string]Renderer
}

// NewRegistry creates a registry. Later renderers with a duplicate name
// replace earlier ones.
func NewRegistry(renderers ...Renderer) *Registry {
	r := &Registry{byName: make(map[string]Renderer)}
	for _, rr := range renderers {
		r.Register(rr)
	}
	return r
}

// Default returns the registry with every built-in backend.
func Default() *Registry {
	return NewRegistry(Plotly{}, Gonum{}, GoChart{})
}

// Register adds or replaces a renderer.
func (r *Registry) Register(rr Renderer) {
	name := rr.Name()
	if _, exists := r.byName[name]; exists {
		for i, old := range r.order {
			if old.Name() == name {
				r.order[i] = rr
			}
		}
	} else {
		r.order = append(r.order, rr)
	}
	r.byName[name] = rr
}

// Get looks up a renderer by name, case-insensitively.
func (r *Registry) Get(name string) (Renderer, error) {
	if rr, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return rr, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
}

// Names returns renderer names in display order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	for i, rr := range r.order {
		names[i] = rr.Name()
	}
	return names
}

// All returns renderers in display order.
func (r *Registry) All() []Renderer {
	return append([]Renderer(nil), r.order...)
}

// ============================================================================
// COLORS
// ============================================================================

// parseColor converts "#RRGGBB" or "#RGB" plus an opacity in [0,1] to a
// drawing.Color. Opacity 0 means opaque; anything unparseable is black.
func parseColor(hex string, opacity float64) drawing.Color {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 3 && len(hex) != 6 {
		return drawing.ColorBlack
	}
	c := drawing.ColorFromHex(hex)
	if opacity <= 0 || opacity >= 1 {
		return c
	}
	return c.WithAlpha(uint8(opacity*255 + 0.5))
}

// stdColor is parseColor for image/color consumers.
func stdColor(hex string, opacity float64) color.Color {
	return parseColor(hex, opacity)
}
