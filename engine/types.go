package engine

import "strings"

// ============================================================================
// MPG EXPLORER ENGINE TYPES
// ============================================================================
// Record keeps every source column as raw text (Dimensions) so rows can be
// displayed verbatim, and every numeric column parsed (Measures) so the
// pipeline can average it.
//
// Dependency: engine has ZERO external dependencies.
// ============================================================================

// ============================================================================
// RECORD — One vehicle row
// ============================================================================

// Record is a single data row with string dimensions and numeric measures.
//
//	Record{Dimensions["class"]="compact", Measures["displ"]=1.8}
type Record struct {
	Dimensions map[string]string  `json:"dimensions"`
	Measures   map[string]float64 `json:"measures"`
}

// ============================================================================
// SELECTION — What the user picked in the UI
// ============================================================================

// AllYearsLabel is the display value of the "do not filter by year" option.
const AllYearsLabel = "All"

// YearSelector is either the "All" sentinel or one year value.
type YearSelector struct {
	All   bool   `json:"all"`
	Value string `json:"value,omitempty"`
}

// AllYears returns the sentinel selector.
func AllYears() YearSelector { return YearSelector{All: true} }

// YearOf selects a single year.
func YearOf(value string) YearSelector { return YearSelector{Value: value} }

// ParseYearSelector maps a UI value to a selector. Empty and "All"
// (any case) mean all years; anything else is taken as a year value.
func ParseYearSelector(s string) YearSelector {
	if s == "" || strings.EqualFold(s, AllYearsLabel) {
		return AllYears()
	}
	return YearOf(s)
}

// String returns the UI label for the selector.
func (y YearSelector) String() string {
	if y.All {
		return AllYearsLabel
	}
	return y.Value
}

// Selection is one render request: year filter, means overlay toggle, and
// the backend that will draw the chart.
type Selection struct {
	Year      YearSelector `json:"year"`
	ShowMeans bool         `json:"showMeans"`
	Backend   string       `json:"backend"`
}

// ============================================================================
// RESULT — Render-ready output of one pass
// ============================================================================

// Result is the output of one Execute pass. Nothing in it is retained
// between renders.
type Result struct {
	Selection   Selection    `json:"selection"`
	Caption     string       `json:"caption"`
	Count       int          `json:"count"`
	ChartConfig *ChartConfig `json:"chartConfig"`
	MeansTable  *TableData   `json:"meansTable"`

	Filtered RecordView `json:"-"`
	Means    ClassMeans `json:"-"`
}

// ============================================================================
// GROUP — Intermediate computation result
// ============================================================================

// Group represents the records sharing one grouping key.
type Group struct {
	Key   string             `json:"key"`
	Label string             `json:"label"`
	Count int                `json:"count"`
	Means map[string]float64 `json:"means,omitempty"`
	View  RecordView         `json:"-"` // Sub-view for records in this group (zero-copy)
}

// ============================================================================
// CHART TYPES
// ============================================================================

// Series roles.
const (
	RolePoints = "points"
	RoleMeans  = "means"
)

// ChartConfig is a backend-neutral scatter chart description.
// Renderers translate it into their own chart objects.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis"`
	YAxis      string        `json:"yAxis"`
	XRange     *AxisRange    `json:"xRange,omitempty"`
	YRange     *AxisRange    `json:"yRange,omitempty"`
	Series     []ChartSeries `json:"series"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
	SizeUnit   string        `json:"sizeUnit"` // "px" or "in"
}

// AxisRange is an inclusive axis extent.
type AxisRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ChartSeries is one set of markers.
type ChartSeries struct {
	Name       string       `json:"name"`
	Role       string       `json:"role"`
	Data       []ChartPoint `json:"data"`
	Color      string       `json:"color"`
	Opacity    float64      `json:"opacity"`
	MarkerSize float64      `json:"markerSize"`
	Labels     *LabelStyle  `json:"labels,omitempty"`
}

// ChartPoint represents a single data point.
type ChartPoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label,omitempty"`
}

// LabelStyle describes text drawn next to each point of a series.
type LabelStyle struct {
	Position string  `json:"position,omitempty"` // e.g. "middle right"
	OffsetX  float64 `json:"offsetX,omitempty"`  // points
	OffsetY  float64 `json:"offsetY,omitempty"`  // points
	Color    string  `json:"color"`
	FontSize float64 `json:"fontSize"`
}

// PointCount returns the number of points in series with the given role.
func (c *ChartConfig) PointCount(role string) int {
	n := 0
	for _, s := range c.Series {
		if s.Role == role {
			n += len(s.Data)
		}
	}
	return n
}

// LabelCount returns the number of labelled points.
func (c *ChartConfig) LabelCount() int {
	n := 0
	for _, s := range c.Series {
		if s.Labels == nil {
			continue
		}
		for _, p := range s.Data {
			if p.Label != "" {
				n++
			}
		}
	}
	return n
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number", "index"
	Align string `json:"align"` // "left", "center", "right"
}

// Summary provides totals or aggregations for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}
