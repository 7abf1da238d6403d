package render

import (
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/spektr-org/mpgexplorer/engine"
)

// ============================================================================
// GONUM — static PNG/SVG via gonum.org/v1/plot
// ============================================================================

// GonumPolicy: library autoscale, larger mean markers, labels offset up and
// to the right of each mean.
var GonumPolicy = engine.ChartPolicy{
	Name:      "gonum",
	Ranges:    engine.RangeAuto,
	Opacity:   0.8,
	PointSize: 6,
	MeanSize:  10,
	Labels:    engine.LabelStyle{OffsetX: 5, OffsetY: 5, FontSize: engine.LabelSizePt},
	ShowGrid:  true,
	Width:     14,
	Height:    8,
	SizeUnit:  "in",
}

// Gonum renders static images with gonum/plot.
type Gonum struct{}

func (Gonum) Name() string               { return "gonum" }
func (Gonum) Label() string              { return "Gonum Plot" }
func (Gonum) Policy() engine.ChartPolicy { return GonumPolicy }
func (Gonum) Formats() []Format          { return []Format{FormatPNG, FormatSVG} }

func (Gonum) Render(w io.Writer, cfg *engine.ChartConfig, format Format) error {
	p, err := BuildGonumPlot(cfg)
	if err != nil {
		return err
	}
	width, height := canvasSize(cfg)
	wt, err := p.WriterTo(width, height, string(format))
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// BuildGonumPlot converts cfg into a gonum plot. Series without points are
// skipped so an empty selection still yields labelled axes.
func BuildGonumPlot(cfg *engine.ChartConfig) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = cfg.Title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = cfg.XAxis
	p.Y.Label.Text = cfg.YAxis

	if cfg.ShowGrid {
		p.Add(plotter.NewGrid())
	}

	for _, s := range cfg.Series {
		if len(s.Data) == 0 {
			continue
		}
		points := make(plotter.XYs, len(s.Data))
		for i, pt := range s.Data {
			points[i].X = pt.X
			points[i].Y = pt.Y
		}

		scatter, err := plotter.NewScatter(points)
		if err != nil {
			return nil, err
		}
		scatter.GlyphStyle.Color = stdColor(s.Color, s.Opacity)
		scatter.GlyphStyle.Radius = vg.Points(s.MarkerSize / 2)
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(scatter)

		if s.Labels == nil {
			continue
		}
		labels := make([]string, len(s.Data))
		for i, pt := range s.Data {
			labels[i] = pt.Label
		}
		labelPoints, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    points,
			Labels: labels,
		})
		if err != nil {
			return nil, err
		}
		for i := range labelPoints.TextStyle {
			labelPoints.TextStyle[i].Color = stdColor(s.Labels.Color, 1)
			if s.Labels.FontSize > 0 {
				labelPoints.TextStyle[i].Font.Size = vg.Points(s.Labels.FontSize)
			}
		}
		labelPoints.Offset = vg.Point{X: vg.Points(s.Labels.OffsetX), Y: vg.Points(s.Labels.OffsetY)}
		p.Add(labelPoints)
	}

	if cfg.XRange != nil {
		p.X.Min, p.X.Max = cfg.XRange.Min, cfg.XRange.Max
	}
	if cfg.YRange != nil {
		p.Y.Min, p.Y.Max = cfg.YRange.Min, cfg.YRange.Max
	}
	return p, nil
}

// canvasSize converts the chart size to vg lengths. Pixel sizes assume 96 dpi.
func canvasSize(cfg *engine.ChartConfig) (vg.Length, vg.Length) {
	w, h := cfg.Width, cfg.Height
	if w <= 0 || h <= 0 {
		return 14 * vg.Inch, 8 * vg.Inch
	}
	if cfg.SizeUnit == "px" {
		return vg.Length(w) * vg.Inch / 96, vg.Length(h) * vg.Inch / 96
	}
	return vg.Length(w) * vg.Inch, vg.Length(h) * vg.Inch
}
