package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPolicy = ChartPolicy{
	Name:      "test",
	Ranges:    RangeData,
	PadX:      0.5,
	PadY:      2,
	Opacity:   0.8,
	PointSize: 6,
	MeanSize:  10,
	Labels:    LabelStyle{Position: "middle right"},
	Width:     750,
	Height:    800,
	SizeUnit:  "px",
}

func buildFor(t *testing.T, sel YearSelector, showMeans bool, policy ChartPolicy) *ChartConfig {
	t.Helper()
	filtered, means := FilterAndAggregate(sampleView(), sel)
	chart := BuildChart(filtered, means, showMeans, policy)
	require.NotNil(t, chart)
	return chart
}

func TestBuildChart_OnePointPerRecord(t *testing.T) {
	chart := buildFor(t, YearOf("2008"), false, testPolicy)

	require.Len(t, chart.Series, 1)
	s := chart.Series[0]
	assert.Equal(t, RolePoints, s.Role)
	assert.Equal(t, PointColor, s.Color)
	assert.Equal(t, []ChartPoint{{X: 2.0, Y: 31}, {X: 3.3, Y: 24}, {X: 2.4, Y: 30}, {X: 4.7, Y: 18}}, s.Data)
}

func TestBuildChart_SkipsNonFinitePoints(t *testing.T) {
	vehicles := append([]vehicle{}, sampleVehicles...)
	vehicles = append(vehicles, vehicle{"honda", "civic", 1.8, 2008, "subcompact", math.Inf(1)})
	filtered, means := FilterAndAggregate(vehicleAdapter.Bind(vehicles), YearOf("2008"))

	chart := BuildChart(filtered, means, true, testPolicy)

	require.Len(t, chart.Series, 2)
	assert.Len(t, chart.Series[0].Data, 4)
	for _, s := range chart.Series {
		for _, p := range s.Data {
			assert.False(t, math.IsInf(p.Y, 0), "series %s", s.Name)
		}
	}
	assert.Len(t, chart.Series[1].Data, 3)
	require.NotNil(t, chart.YRange)
	assert.InDelta(t, 33, chart.YRange.Max, 1e-9)
	assert.InDelta(t, 16, chart.YRange.Min, 1e-9)
}

func TestBuildChart_MeansOverlayLabelledByClass(t *testing.T) {
	chart := buildFor(t, YearOf("2008"), true, testPolicy)

	require.Len(t, chart.Series, 2)
	overlay := chart.Series[1]
	assert.Equal(t, RoleMeans, overlay.Role)
	assert.Equal(t, MeanColor, overlay.Color)
	require.NotNil(t, overlay.Labels)
	assert.Equal(t, MeanColor, overlay.Labels.Color)
	assert.Equal(t, "middle right", overlay.Labels.Position)
	assert.Equal(t, float64(LabelSizePt), overlay.Labels.FontSize)

	require.Len(t, overlay.Data, 3)
	assert.Equal(t, "compact", overlay.Data[0].Label)
	assert.InDelta(t, 2.2, overlay.Data[0].X, 1e-9)
	assert.InDelta(t, 30.5, overlay.Data[0].Y, 1e-9)
	assert.Equal(t, "minivan", overlay.Data[1].Label)
	assert.Equal(t, "suv", overlay.Data[2].Label)

	assert.Equal(t, 3, chart.LabelCount())
	assert.False(t, chart.ShowLegend)
}

func TestBuildChart_ShowMeansOffDropsOverlayOnly(t *testing.T) {
	on := buildFor(t, AllYears(), true, testPolicy)
	off := buildFor(t, AllYears(), false, testPolicy)

	assert.Equal(t, on.PointCount(RolePoints), off.PointCount(RolePoints))
	assert.Equal(t, on.Series[0].Data, off.Series[0].Data)
	assert.Equal(t, 0, off.PointCount(RoleMeans))
	assert.Equal(t, 0, off.LabelCount())
	assert.Equal(t, 5, on.PointCount(RoleMeans))

	assert.Equal(t, on.Title, off.Title)
	assert.Equal(t, on.XAxis, off.XAxis)
	assert.Equal(t, on.YAxis, off.YAxis)
	assert.Equal(t, on.XRange, off.XRange)
	assert.Equal(t, on.YRange, off.YRange)
	assert.Equal(t, on.ShowLegend, off.ShowLegend)

	assert.Equal(t, ChartTitle, off.Title)
	assert.Equal(t, XAxisLabel, off.XAxis)
	assert.Equal(t, YAxisLabel, off.YAxis)
}

func TestBuildChart_EmptySelection(t *testing.T) {
	for _, showMeans := range []bool{true, false} {
		chart := buildFor(t, YearOf("1975"), showMeans, testPolicy)

		assert.Equal(t, 0, chart.PointCount(RolePoints))
		assert.Equal(t, 0, chart.PointCount(RoleMeans))
		assert.Equal(t, XAxisLabel, chart.XAxis)
		assert.Equal(t, YAxisLabel, chart.YAxis)
		assert.Nil(t, chart.XRange)
		assert.Nil(t, chart.YRange)
	}
}

func TestBuildChart_RangePolicies(t *testing.T) {
	t.Run("data", func(t *testing.T) {
		chart := buildFor(t, AllYears(), true, testPolicy)
		require.NotNil(t, chart.XRange)
		assert.InDelta(t, 1.3, chart.XRange.Min, 1e-9)
		assert.InDelta(t, 6.2, chart.XRange.Max, 1e-9)
		assert.InDelta(t, 15, chart.YRange.Min, 1e-9)
		assert.InDelta(t, 33, chart.YRange.Max, 1e-9)
	})

	t.Run("fixed", func(t *testing.T) {
		p := testPolicy
		p.Ranges = RangeFixed
		p.FixedX = AxisRange{Min: 1, Max: 7.5}
		p.FixedY = AxisRange{Min: 10, Max: 46}
		chart := buildFor(t, YearOf("1975"), false, p)
		assert.Equal(t, &AxisRange{Min: 1, Max: 7.5}, chart.XRange)
		assert.Equal(t, &AxisRange{Min: 10, Max: 46}, chart.YRange)
	})

	t.Run("auto", func(t *testing.T) {
		p := testPolicy
		p.Ranges = RangeAuto
		chart := buildFor(t, AllYears(), false, p)
		assert.Nil(t, chart.XRange)
		assert.Nil(t, chart.YRange)
	})
}

func TestBuildChart_CarriesPolicyCosmetics(t *testing.T) {
	chart := buildFor(t, AllYears(), true, testPolicy)

	assert.Equal(t, 750.0, chart.Width)
	assert.Equal(t, 800.0, chart.Height)
	assert.Equal(t, "px", chart.SizeUnit)
	for _, s := range chart.Series {
		assert.Equal(t, 0.8, s.Opacity)
	}
	assert.Equal(t, 6.0, chart.Series[0].MarkerSize)
	assert.Equal(t, 10.0, chart.Series[1].MarkerSize)
}

func TestExecute(t *testing.T) {
	res := Execute(sampleView(), Selection{Year: YearOf("2008"), ShowMeans: true, Backend: "test"}, testPolicy)

	assert.Equal(t, 4, res.Count)
	assert.Equal(t, "Showing 4 vehicles from 2008 across 3 classes.", res.Caption)
	assert.Equal(t, 3, res.Means.Len())
	assert.Equal(t, 4, res.ChartConfig.PointCount(RolePoints))
	assert.Len(t, res.MeansTable.Rows, 3)
	assert.Equal(t, "test", res.Selection.Backend)
}

func TestBuildCaption(t *testing.T) {
	view := sampleView()

	filtered, means := FilterAndAggregate(view, AllYears())
	assert.Equal(t, "Showing 7 vehicles from all years across 5 classes.", BuildCaption(filtered, means, AllYears()))

	filtered, means = FilterAndAggregate(view, YearOf("1975"))
	assert.Equal(t, "No vehicles match the selected year.", BuildCaption(filtered, means, YearOf("1975")))
}
