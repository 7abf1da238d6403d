package render

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/spektr-org/mpgexplorer/engine"
	"github.com/spektr-org/mpgexplorer/helpers"
)

var mpgCSV = []byte(`manufacturer,model,displ,year,cyl,trans,drv,cty,hwy,fl,class
audi,a4,1.8,1999,4,auto(l5),f,18,29,p,compact
audi,a4,2,2008,4,manual(m6),f,20,31,p,compact
chevrolet,corvette,5.7,1999,8,manual(m6),r,16,26,p,2seater
dodge,caravan 2wd,3.3,2008,6,auto(l4),f,17,24,r,minivan
audi,a4 quattro,2.4,2008,4,manual(m6),4,20,30,p,compact
ford,f150 pickup 4wd,4.2,1999,6,auto(l4),4,14,17,r,pickup
toyota,land cruiser wagon 4wd,4.7,2008,8,auto(l5),4,13,18,r,suv
`)

func chartFor(t *testing.T, year string, showMeans bool, policy engine.ChartPolicy) *engine.ChartConfig {
	t.Helper()
	view, _, err := helpers.ParseCSVAuto(mpgCSV)
	require.NoError(t, err)
	res := engine.Execute(view, engine.Selection{Year: engine.ParseYearSelector(year), ShowMeans: showMeans}, policy)
	return res.ChartConfig
}

// ============================================================================
// REGISTRY
// ============================================================================

func TestRegistry(t *testing.T) {
	reg := Default()
	assert.Equal(t, []string{"plotly", "gonum", "gochart"}, reg.Names())

	r, err := reg.Get(" Plotly ")
	require.NoError(t, err)
	assert.Equal(t, "plotly", r.Name())

	_, err = reg.Get("bokeh")
	require.ErrorIs(t, err, ErrUnknownBackend)
	assert.Contains(t, err.Error(), "bokeh")

	reg.Register(Plotly{})
	assert.Len(t, reg.All(), 3)
}

func TestResolveFormat(t *testing.T) {
	f, err := ResolveFormat(Gonum{}, "")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)

	f, err = ResolveFormat(GoChart{}, "SVG")
	require.NoError(t, err)
	assert.Equal(t, FormatSVG, f)

	_, err = ResolveFormat(Plotly{}, FormatPNG)
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	assert.Equal(t, "image/svg+xml", FormatSVG.ContentType())
	assert.Equal(t, "application/json", FormatJSON.ContentType())
}

func TestParseColor(t *testing.T) {
	c := parseColor(engine.PointColor, 0.8)
	assert.Equal(t, uint8(0xDA), c.R)
	assert.Equal(t, uint8(0x70), c.G)
	assert.Equal(t, uint8(0xD6), c.B)
	assert.Equal(t, uint8(204), c.A)

	assert.Equal(t, uint8(255), parseColor(engine.MeanColor, 0).A)
	assert.Equal(t, parseColor("#000000", 1), parseColor("", 1))
}

// ============================================================================
// PLOTLY
// ============================================================================

func TestBuildPlotlyFigure_WithMeans(t *testing.T) {
	fig := BuildPlotlyFigure(chartFor(t, "2008", true, PlotlyPolicy))

	require.Len(t, fig.Data, 2)
	points, means := fig.Data[0], fig.Data[1]

	assert.Equal(t, "markers", points.Mode)
	assert.Equal(t, []float64{2, 3.3, 2.4, 4.7}, points.X)
	assert.Equal(t, []float64{31, 24, 30, 18}, points.Y)
	assert.Equal(t, engine.PointColor, points.Marker.Color)
	assert.Equal(t, 0.8, points.Marker.Opacity)

	assert.Equal(t, "markers+text", means.Mode)
	assert.Equal(t, []string{"compact", "minivan", "suv"}, means.Text)
	assert.Equal(t, "middle right", means.TextPosition)
	assert.Equal(t, engine.MeanColor, means.Marker.Color)
	assert.Equal(t, engine.MeanColor, means.TextFont.Color)

	assert.False(t, fig.Layout.ShowLegend)
	assert.Equal(t, engine.ChartTitle, fig.Layout.Title.Text)
	assert.Equal(t, 750, fig.Layout.Width)
	assert.Equal(t, 800, fig.Layout.Height)
	require.Len(t, fig.Layout.XAxis.Range, 2)
	assert.InDelta(t, 1.5, fig.Layout.XAxis.Range[0], 1e-9)
	assert.InDelta(t, 5.2, fig.Layout.XAxis.Range[1], 1e-9)
}

func TestBuildPlotlyFigure_WithoutMeans(t *testing.T) {
	on := BuildPlotlyFigure(chartFor(t, "All", true, PlotlyPolicy))
	off := BuildPlotlyFigure(chartFor(t, "All", false, PlotlyPolicy))

	require.Len(t, off.Data, 1)
	assert.Empty(t, off.Data[0].Text)
	assert.Equal(t, on.Data[0], off.Data[0])
	assert.Equal(t, on.Layout, off.Layout)
}

func TestBuildPlotlyFigure_Empty(t *testing.T) {
	fig := BuildPlotlyFigure(chartFor(t, "1975", true, PlotlyPolicy))

	require.Len(t, fig.Data, 1)
	assert.Empty(t, fig.Data[0].X)
	assert.Nil(t, fig.Layout.XAxis.Range)
	assert.Equal(t, engine.XAxisLabel, fig.Layout.XAxis.Title.Text)
	assert.Equal(t, engine.YAxisLabel, fig.Layout.YAxis.Title.Text)
}

func TestPlotlyRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	format, err := Render(Plotly{}, &buf, chartFor(t, "1999", true, PlotlyPolicy), "")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, format)

	var decoded struct {
		Data []struct {
			Type string   `json:"type"`
			Text []string `json:"text"`
		} `json:"data"`
		Layout struct {
			ShowLegend *bool `json:"showlegend"`
			Title      struct {
				Text string `json:"text"`
			} `json:"title"`
		} `json:"layout"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Data, 2)
	assert.Equal(t, "scatter", decoded.Data[0].Type)
	assert.Equal(t, []string{"2seater", "compact", "pickup"}, decoded.Data[1].Text)
	require.NotNil(t, decoded.Layout.ShowLegend)
	assert.False(t, *decoded.Layout.ShowLegend)
	assert.Equal(t, engine.ChartTitle, decoded.Layout.Title.Text)
}

// ============================================================================
// STATIC BACKENDS
// ============================================================================

func TestBuildGonumPlot(t *testing.T) {
	p, err := BuildGonumPlot(chartFor(t, "2008", true, GonumPolicy))
	require.NoError(t, err)

	assert.Equal(t, engine.ChartTitle, p.Title.Text)
	assert.Equal(t, engine.XAxisLabel, p.X.Label.Text)
	assert.Equal(t, engine.YAxisLabel, p.Y.Label.Text)
}

func TestBuildGonumPlot_FixedRange(t *testing.T) {
	p, err := BuildGonumPlot(chartFor(t, "All", false, GoChartPolicy))
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.X.Min)
	assert.Equal(t, 7.5, p.X.Max)
	assert.Equal(t, 10.0, p.Y.Min)
	assert.Equal(t, 46.0, p.Y.Max)
}

func TestBuildGoChart(t *testing.T) {
	with := BuildGoChart(chartFor(t, "2008", true, GoChartPolicy))
	require.Len(t, with.Series, 3)
	assert.Equal(t, engine.ChartTitle, with.Title)
	assert.Equal(t, engine.XAxisLabel, with.XAxis.Name)
	assert.Equal(t, engine.YAxisLabel, with.YAxis.Name)
	assert.Equal(t, 1024, with.Width)

	rng, ok := with.XAxis.Range.(*chart.ContinuousRange)
	require.True(t, ok)
	assert.Equal(t, 1.0, rng.Min)
	assert.Equal(t, 7.5, rng.Max)

	ann, ok := with.Series[2].(chart.AnnotationSeries)
	require.True(t, ok)
	require.Len(t, ann.Annotations, 3)
	assert.Equal(t, "compact", ann.Annotations[0].Label)

	without := BuildGoChart(chartFor(t, "2008", false, GoChartPolicy))
	assert.Len(t, without.Series, 1)

	empty := BuildGoChart(chartFor(t, "1975", true, GoChartPolicy))
	require.Len(t, empty.Series, 1)
	frame, ok := empty.Series[0].(chart.ContinuousSeries)
	require.True(t, ok)
	assert.Equal(t, []float64{1, 7.5}, frame.XValues)
}

func TestStaticBackends_RenderEveryFormat(t *testing.T) {
	for _, r := range []Renderer{Gonum{}, GoChart{}} {
		for _, year := range []string{"All", "2008", "1975"} {
			for _, showMeans := range []bool{true, false} {
				cfg := chartFor(t, year, showMeans, r.Policy())

				var png bytes.Buffer
				_, err := Render(r, &png, cfg, FormatPNG)
				require.NoError(t, err, "%s png year=%s means=%v", r.Name(), year, showMeans)
				assert.True(t, bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")), r.Name())

				var svg bytes.Buffer
				_, err = Render(r, &svg, cfg, FormatSVG)
				require.NoError(t, err, "%s svg year=%s means=%v", r.Name(), year, showMeans)
				assert.Contains(t, svg.String(), "<svg", r.Name())
			}
		}
	}
}

func TestStaticBackends_LabelsOnlyWithMeans(t *testing.T) {
	for _, r := range []Renderer{Gonum{}, GoChart{}} {
		var on, off bytes.Buffer
		_, err := Render(r, &on, chartFor(t, "2008", true, r.Policy()), FormatSVG)
		require.NoError(t, err)
		_, err = Render(r, &off, chartFor(t, "2008", false, r.Policy()), FormatSVG)
		require.NoError(t, err)

		assert.Contains(t, on.String(), "minivan", r.Name())
		assert.NotContains(t, off.String(), "minivan", r.Name())
	}
}

func TestRender_NonFiniteCellsAcrossBackends(t *testing.T) {
	data := append(append([]byte{}, mpgCSV...),
		[]byte("honda,civic,1.8,2008,4,manual(m5),f,26,inf,r,subcompact\nhonda,civic,-Infinity,1999,4,manual(m5),f,24,32,r,subcompact\n")...)
	view, _, err := helpers.ParseCSVAuto(data)
	require.NoError(t, err)

	for _, r := range Default().All() {
		for _, year := range []string{"All", "2008", "1999"} {
			res := engine.Execute(view, engine.Selection{Year: engine.ParseYearSelector(year), ShowMeans: true}, r.Policy())

			done := make(chan error, 1)
			var buf bytes.Buffer
			go func() {
				_, err := Render(r, &buf, res.ChartConfig, "")
				done <- err
			}()
			select {
			case err := <-done:
				require.NoError(t, err, "%s year=%s", r.Name(), year)
				assert.NotZero(t, buf.Len(), "%s year=%s", r.Name(), year)
			case <-time.After(30 * time.Second):
				t.Fatalf("%s year=%s: render did not return", r.Name(), year)
			}
		}
	}
}
