package render

import (
	"encoding/json"
	"io"

	"github.com/spektr-org/mpgexplorer/engine"
)

// ============================================================================
// PLOTLY — JSON figure drawn client-side by plotly.js
// ============================================================================

// Figure is a Plotly figure: traces plus layout.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one Plotly trace. Scatter traces use X/Y; map traces use Lat/Lon.
type Trace struct {
	Type         string    `json:"type"`
	Mode         string    `json:"mode"`
	Name         string    `json:"name,omitempty"`
	X            []float64 `json:"x,omitempty"`
	Y            []float64 `json:"y,omitempty"`
	Lat          []float64 `json:"lat,omitempty"`
	Lon          []float64 `json:"lon,omitempty"`
	Text         []string  `json:"text,omitempty"`
	TextPosition string    `json:"textposition,omitempty"`
	TextFont     *Font     `json:"textfont,omitempty"`
	HoverInfo    string    `json:"hoverinfo,omitempty"`
	Marker       Marker    `json:"marker"`
}

// Marker styles trace markers.
type Marker struct {
	Color   string  `json:"color"`
	Size    float64 `json:"size,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
}

// Font styles trace text.
type Font struct {
	Color string  `json:"color,omitempty"`
	Size  float64 `json:"size,omitempty"`
}

// Layout is the figure layout.
type Layout struct {
	Title      *Title  `json:"title,omitempty"`
	XAxis      *Axis   `json:"xaxis,omitempty"`
	YAxis      *Axis   `json:"yaxis,omitempty"`
	ShowLegend bool    `json:"showlegend"`
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
	Margin     *Margin `json:"margin,omitempty"`
	Mapbox     *Mapbox `json:"mapbox,omitempty"`
}

// Title is a layout or axis title.
type Title struct {
	Text string `json:"text"`
}

// Axis configures one cartesian axis.
type Axis struct {
	Title    Title     `json:"title"`
	Range    []float64 `json:"range,omitempty"`
	ShowGrid bool      `json:"showgrid"`
}

// Margin is the plot margin in pixels.
type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

// Mapbox configures a map layout.
type Mapbox struct {
	Style  string  `json:"style"`
	Zoom   int     `json:"zoom"`
	Center *LatLon `json:"center,omitempty"`
}

// LatLon is a map coordinate.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PlotlyPolicy: data-derived ranges with padding, class names to the right
// of each mean marker.
var PlotlyPolicy = engine.ChartPolicy{
	Name:      "plotly",
	Ranges:    engine.RangeData,
	PadX:      0.5,
	PadY:      2,
	Opacity:   0.8,
	PointSize: 6,
	MeanSize:  10,
	Labels:    engine.LabelStyle{Position: "middle right", FontSize: engine.LabelSizePt},
	ShowGrid:  true,
	Width:     750,
	Height:    800,
	SizeUnit:  "px",
}

// Plotly renders Plotly JSON figures.
type Plotly struct{}

func (Plotly) Name() string               { return "plotly" }
func (Plotly) Label() string              { return "Plotly" }
func (Plotly) Policy() engine.ChartPolicy { return PlotlyPolicy }
func (Plotly) Formats() []Format          { return []Format{FormatJSON} }

func (Plotly) Render(w io.Writer, cfg *engine.ChartConfig, format Format) error {
	return json.NewEncoder(w).Encode(BuildPlotlyFigure(cfg))
}

// BuildPlotlyFigure converts cfg into a Plotly figure.
func BuildPlotlyFigure(cfg *engine.ChartConfig) *Figure {
	fig := &Figure{
		Data: make([]Trace, 0, len(cfg.Series)),
		Layout: Layout{
			Title:      &Title{Text: cfg.Title},
			XAxis:      &Axis{Title: Title{Text: cfg.XAxis}, Range: axisRange(cfg.XRange), ShowGrid: cfg.ShowGrid},
			YAxis:      &Axis{Title: Title{Text: cfg.YAxis}, Range: axisRange(cfg.YRange), ShowGrid: cfg.ShowGrid},
			ShowLegend: cfg.ShowLegend,
			Width:      int(cfg.Width),
			Height:     int(cfg.Height),
		},
	}

	for _, s := range cfg.Series {
		tr := Trace{
			Type: "scatter",
			Mode: "markers",
			Name: s.Name,
			X:    make([]float64, len(s.Data)),
			Y:    make([]float64, len(s.Data)),
			Marker: Marker{
				Color:   s.Color,
				Size:    s.MarkerSize,
				Opacity: s.Opacity,
			},
		}
		for i, p := range s.Data {
			tr.X[i] = p.X
			tr.Y[i] = p.Y
		}
		if s.Labels != nil {
			tr.Mode = "markers+text"
			tr.Text = make([]string, len(s.Data))
			for i, p := range s.Data {
				tr.Text[i] = p.Label
			}
			tr.TextPosition = s.Labels.Position
			tr.TextFont = &Font{Color: s.Labels.Color, Size: s.Labels.FontSize}
		}
		fig.Data = append(fig.Data, tr)
	}
	return fig
}

func axisRange(r *engine.AxisRange) []float64 {
	if r == nil {
		return nil
	}
	return []float64{r.Min, r.Max}
}
