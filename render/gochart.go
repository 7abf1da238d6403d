package render

import (
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/spektr-org/mpgexplorer/engine"
)

// ============================================================================
// GO-CHART — static PNG/SVG via github.com/wcharczuk/go-chart
// ============================================================================

// GoChartPolicy: fixed axis extents that cover the full Auto MPG range and
// annotation boxes for class names.
var GoChartPolicy = engine.ChartPolicy{
	Name:      "gochart",
	Ranges:    engine.RangeFixed,
	FixedX:    engine.AxisRange{Min: 1, Max: 7.5},
	FixedY:    engine.AxisRange{Min: 10, Max: 46},
	Opacity:   0.7,
	PointSize: 5,
	MeanSize:  8,
	Labels:    engine.LabelStyle{FontSize: engine.LabelSizePt},
	Width:     1024,
	Height:    640,
	SizeUnit:  "px",
}

// GoChart renders static images with go-chart.
type GoChart struct{}

func (GoChart) Name() string               { return "gochart" }
func (GoChart) Label() string              { return "go-chart" }
func (GoChart) Policy() engine.ChartPolicy { return GoChartPolicy }
func (GoChart) Formats() []Format          { return []Format{FormatPNG, FormatSVG} }

func (GoChart) Render(w io.Writer, cfg *engine.ChartConfig, format Format) error {
	ch := BuildGoChart(cfg)
	provider := chart.PNG
	if format == FormatSVG {
		provider = chart.SVG
	}
	return ch.Render(provider, w)
}

// pointStyle returns a style that renders points only (no connecting line).
func pointStyle(col drawing.Color, width float64) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    width,
		DotColor:    col,
	}
}

// BuildGoChart converts cfg into a go-chart chart. go-chart refuses to
// render without data, so an empty selection gets an invisible series that
// spans the axis ranges.
func BuildGoChart(cfg *engine.ChartConfig) chart.Chart {
	var series []chart.Series
	for _, s := range cfg.Series {
		if len(s.Data) == 0 {
			continue
		}
		xs := make([]float64, len(s.Data))
		ys := make([]float64, len(s.Data))
		for i, p := range s.Data {
			xs[i], ys[i] = p.X, p.Y
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style:   pointStyle(parseColor(s.Color, s.Opacity), s.MarkerSize),
		})

		if s.Labels == nil {
			continue
		}
		annotations := make([]chart.Value2, len(s.Data))
		for i, p := range s.Data {
			annotations[i] = chart.Value2{XValue: p.X, YValue: p.Y, Label: p.Label}
		}
		series = append(series, chart.AnnotationSeries{
			Name:        s.Name + " labels",
			Annotations: annotations,
			Style: chart.Style{
				FontSize:    s.Labels.FontSize,
				FontColor:   drawing.ColorBlack,
				FillColor:   parseColor(s.Labels.Color, 0.35),
				StrokeColor: parseColor(s.Labels.Color, 1),
				StrokeWidth: 1,
			},
		})
	}

	if len(series) == 0 {
		series = append(series, frameSeries(cfg))
	}

	ch := chart.Chart{
		Title:      cfg.Title,
		Width:      int(cfg.Width),
		Height:     int(cfg.Height),
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 24, Bottom: 16}},
		XAxis:      chart.XAxis{Name: cfg.XAxis},
		YAxis:      chart.YAxis{Name: cfg.YAxis},
		Series:     series,
	}
	if cfg.XRange != nil {
		ch.XAxis.Range = &chart.ContinuousRange{Min: cfg.XRange.Min, Max: cfg.XRange.Max}
	}
	if cfg.YRange != nil {
		ch.YAxis.Range = &chart.ContinuousRange{Min: cfg.YRange.Min, Max: cfg.YRange.Max}
	}
	if cfg.ShowGrid {
		grid := chart.Style{StrokeColor: drawing.ColorFromHex("e5e5e5"), StrokeWidth: 1}
		ch.XAxis.GridMajorStyle = grid
		ch.YAxis.GridMajorStyle = grid
	}
	return ch
}

func frameSeries(cfg *engine.ChartConfig) chart.Series {
	x := engine.AxisRange{Min: 0, Max: 1}
	y := engine.AxisRange{Min: 0, Max: 1}
	if cfg.XRange != nil {
		x = *cfg.XRange
	}
	if cfg.YRange != nil {
		y = *cfg.YRange
	}
	return chart.ContinuousSeries{
		Name:    "frame",
		XValues: []float64{x.Min, x.Max},
		YValues: []float64{y.Min, y.Max},
		Style: chart.Style{
			StrokeColor: drawing.ColorTransparent,
			StrokeWidth: chart.Disabled,
		},
	}
}
