// Package geo provides the map demo: a sample of car-share usage points
// drawn as a Plotly map in one of a few tile styles.
package geo

import (
	"bytes"
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/spektr-org/mpgexplorer/engine"
	"github.com/spektr-org/mpgexplorer/helpers"
	"github.com/spektr-org/mpgexplorer/render"
	"github.com/spektr-org/mpgexplorer/schema"
)

//go:embed data/carshare.csv
var carshareCSV []byte

// Map figure settings.
const (
	MarkerColor = engine.PointColor
	DefaultZoom = 12
	MapHeight   = 500
)

// Point is one car-share area centroid.
type Point struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	CarHours float64 `json:"car_hours"`
	PeakHour int     `json:"peak_hour"`
}

var pointAdapter = engine.NewDomainAdapter[Point]().
	Dimension("peak_hour", func(p Point) string { return strconv.Itoa(p.PeakHour) }).
	Measure("lat", func(p Point) float64 { return p.Lat }).
	Measure("lon", func(p Point) float64 { return p.Lon }).
	Measure("car_hours", func(p Point) float64 { return p.CarHours })

// View exposes points to the engine without copying them.
func View(points []Point) engine.RecordView {
	return pointAdapter.Bind(points)
}

// renames maps source column keys to the names the map reads.
var renames = map[string]string{
	"centroid_lat": "lat",
	"centroid_lon": "lon",
}

// SamplePoints parses the embedded car-share sample.
func SamplePoints() ([]Point, error) {
	return ParsePoints(carshareCSV)
}

// ParsePoints reads points from CSV with centroid_lat/centroid_lon (or
// lat/lon) columns. Rows without both coordinates are dropped.
func ParsePoints(data []byte) ([]Point, error) {
	headers, rows, err := helpers.ReadCSV(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("read map points: %w", err)
	}

	index := make(map[string]int, len(headers))
	for i, key := range schema.ColumnKeys(headers) {
		if renamed, ok := renames[key]; ok {
			key = renamed
		}
		index[key] = i
	}
	latCol, okLat := index["lat"]
	lonCol, okLon := index["lon"]
	if !okLat || !okLon {
		return nil, fmt.Errorf("read map points: %w: lat, lon", schema.ErrMissingColumns)
	}

	points := make([]Point, 0, len(rows))
	for _, row := range rows {
		lat, ok1 := schema.ParseNumber(row[latCol])
		lon, ok2 := schema.ParseNumber(row[lonCol])
		if !ok1 || !ok2 {
			continue
		}
		p := Point{Lat: lat, Lon: lon}
		if i, ok := index["car_hours"]; ok {
			p.CarHours, _ = schema.ParseNumber(row[i])
		}
		if i, ok := index["peak_hour"]; ok {
			if v, ok := schema.ParseNumber(row[i]); ok {
				p.PeakHour = int(v)
			}
		}
		points = append(points, p)
	}
	return points, nil
}

// ============================================================================
// STYLES
// ============================================================================

// Style is a selectable map tile style.
type Style struct {
	Name   string `json:"name"`
	Mapbox string `json:"mapbox"`
}

// Styles lists the map styles in menu order; the first is the default.
var Styles = []Style{
	{Name: "Dark", Mapbox: "carto-darkmatter"},
	{Name: "Light", Mapbox: "open-street-map"},
	{Name: "Minimalistic", Mapbox: "carto-positron"},
}

// DefaultStyle returns the style selected when none is given.
func DefaultStyle() Style { return Styles[0] }

// ResolveStyle looks a style up by display name, case-insensitively.
// Unknown names fall back to the default.
func ResolveStyle(name string) Style {
	name = strings.TrimSpace(name)
	for _, s := range Styles {
		if strings.EqualFold(s.Name, name) {
			return s
		}
	}
	return DefaultStyle()
}

// StyleNames returns the display names in menu order.
func StyleNames() []string {
	names := make([]string, len(Styles))
	for i, s := range Styles {
		names[i] = s.Name
	}
	return names
}

// ============================================================================
// FIGURE
// ============================================================================

// BuildMapFigure draws points on a map centred on their mean position.
// Hovering a point shows its car hours and peak hour.
func BuildMapFigure(points []Point, style Style) *render.Figure {
	view := View(points)
	n := view.Len()
	trace := render.Trace{
		Type:      "scattermapbox",
		Mode:      "markers",
		Lat:       make([]float64, n),
		Lon:       make([]float64, n),
		Text:      make([]string, n),
		HoverInfo: "lat+lon+text",
		Marker:    render.Marker{Color: MarkerColor},
	}
	for i := 0; i < n; i++ {
		trace.Lat[i] = view.Measure(i, "lat")
		trace.Lon[i] = view.Measure(i, "lon")
		trace.Text[i] = hoverText(view, i)
	}

	mapbox := &render.Mapbox{Style: style.Mapbox, Zoom: DefaultZoom}
	lat, okLat := engine.MeanMeasure(view, "lat")
	lon, okLon := engine.MeanMeasure(view, "lon")
	if okLat && okLon {
		mapbox.Center = &render.LatLon{Lat: lat, Lon: lon}
	}

	return &render.Figure{
		Data: []render.Trace{trace},
		Layout: render.Layout{
			ShowLegend: false,
			Height:     MapHeight,
			Margin:     &render.Margin{},
			Mapbox:     mapbox,
		},
	}
}

func hoverText(view engine.RecordView, i int) string {
	return fmt.Sprintf("%s car hours, peak hour %s",
		engine.FormatMeasure(view.Measure(i, "car_hours")), view.Dimension(i, "peak_hour"))
}
