package engine

// ============================================================================
// CHART BUILDER — Produces ChartConfig from a filtered view + class means
// ============================================================================
// The config is backend-neutral. Each rendering backend supplies a
// ChartPolicy with its cosmetic choices (axis ranges, opacity, marker and
// label placement, canvas size); everything else is shared.
// ============================================================================

// Chart text and accent colors shared by every backend.
const (
	ChartTitle  = "Engine Size vs Highway Fuel Mileage"
	XAxisLabel  = "Displacement (Liters)"
	YAxisLabel  = "Highway MPG"
	PointColor  = "#DA70D6" // orchid
	MeanColor   = "#7FFF00" // chartreuse
	PointsName  = "Vehicles"
	MeansName   = "Class Means"
	LabelSizePt = 10
)

// RangeMode selects how axis extents are chosen.
type RangeMode int

const (
	// RangeAuto leaves the extents to the backend.
	RangeAuto RangeMode = iota
	// RangeFixed uses ChartPolicy.FixedX / FixedY.
	RangeFixed
	// RangeData uses the filtered data's min/max widened by PadX / PadY.
	RangeData
)

// ChartPolicy holds one backend's cosmetic settings.
type ChartPolicy struct {
	Name      string
	Ranges    RangeMode
	FixedX    AxisRange
	FixedY    AxisRange
	PadX      float64
	PadY      float64
	Opacity   float64
	PointSize float64
	MeanSize  float64
	Labels    LabelStyle
	ShowGrid  bool
	Width     float64
	Height    float64
	SizeUnit  string
}

// BuildChart produces the scatter chart for one render pass: one point per
// filtered record and, when showMeans is set, one labelled point per class
// mean. The legend is never shown.
func BuildChart(filtered RecordView, means ClassMeans, showMeans bool, policy ChartPolicy, opts ...Option) *ChartConfig {
	cfg := applyOptions(opts)

	chart := &ChartConfig{
		ChartType:  "scatter",
		Title:      ChartTitle,
		XAxis:      XAxisLabel,
		YAxis:      YAxisLabel,
		ShowLegend: false,
		ShowGrid:   policy.ShowGrid,
		Width:      policy.Width,
		Height:     policy.Height,
		SizeUnit:   policy.SizeUnit,
	}

	chart.Series = append(chart.Series, ChartSeries{
		Name:       PointsName,
		Role:       RolePoints,
		Data:       buildPoints(filtered, cfg.XMeasure, cfg.YMeasure),
		Color:      PointColor,
		Opacity:    policy.Opacity,
		MarkerSize: policy.PointSize,
	})

	if showMeans {
		if overlay := buildMeanPoints(means, cfg.XMeasure, cfg.YMeasure); len(overlay) > 0 {
			labels := policy.Labels
			labels.Color = MeanColor
			if labels.FontSize == 0 {
				labels.FontSize = LabelSizePt
			}
			chart.Series = append(chart.Series, ChartSeries{
				Name:       MeansName,
				Role:       RoleMeans,
				Data:       overlay,
				Color:      MeanColor,
				Opacity:    policy.Opacity,
				MarkerSize: policy.MeanSize,
				Labels:     &labels,
			})
		}
	}

	chart.XRange, chart.YRange = axisRanges(filtered, policy, cfg)
	return chart
}

// ============================================================================
// SERIES BUILDERS
// ============================================================================

func buildPoints(view RecordView, xKey, yKey string) []ChartPoint {
	points := make([]ChartPoint, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		if !hasFinite(view, i, xKey) || !hasFinite(view, i, yKey) {
			continue
		}
		points = append(points, ChartPoint{
			X: view.Measure(i, xKey),
			Y: view.Measure(i, yKey),
		})
	}
	return points
}

func buildMeanPoints(means ClassMeans, xKey, yKey string) []ChartPoint {
	points := make([]ChartPoint, 0, means.Len())
	for _, g := range means.Groups {
		x, okX := g.Means[xKey]
		y, okY := g.Means[yKey]
		if !okX || !okY {
			continue
		}
		points = append(points, ChartPoint{X: x, Y: y, Label: g.Label})
	}
	return points
}

func axisRanges(view RecordView, policy ChartPolicy, cfg *config) (*AxisRange, *AxisRange) {
	switch policy.Ranges {
	case RangeFixed:
		x, y := policy.FixedX, policy.FixedY
		return &x, &y
	case RangeData:
		return paddedExtent(view, cfg.XMeasure, policy.PadX), paddedExtent(view, cfg.YMeasure, policy.PadY)
	default:
		return nil, nil
	}
}

func paddedExtent(view RecordView, measure string, pad float64) *AxisRange {
	lo, hi, ok := MeasureExtent(view, measure)
	if !ok {
		return nil
	}
	return &AxisRange{Min: lo - pad, Max: hi + pad}
}
