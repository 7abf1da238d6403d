package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/mpgexplorer/engine"
	"github.com/spektr-org/mpgexplorer/schema"
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

func TestParseCSVAuto_KeepsRawTextAndParsesNumbers(t *testing.T) {
	view, sch, err := ParseCSVAuto(mpgCSV)
	require.NoError(t, err)

	require.Equal(t, 7, view.Len())
	assert.Equal(t, sch.ColumnKeys(), view.DimensionKeys())
	assert.Equal(t, []string{"displ", "year", "cyl", "cty", "hwy"}, view.MeasureKeys())

	assert.Equal(t, "2", view.Dimension(1, "displ"))
	assert.Equal(t, 2.0, view.Measure(1, "displ"))
	assert.Equal(t, "1999", view.Dimension(0, "year"))
	assert.Equal(t, 1999.0, view.Measure(0, "year"))
	assert.Equal(t, "compact", view.Dimension(0, "class"))
	assert.False(t, view.HasMeasure(0, "class"))
}

func TestParseCSVAuto_FeedsPipeline(t *testing.T) {
	view, _, err := ParseCSVAuto(mpgCSV)
	require.NoError(t, err)

	assert.Equal(t, []string{"All", "1999", "2008"}, engine.YearOptions(view, "year"))

	filtered, means := engine.FilterAndAggregate(view, engine.YearOf("2008"))
	assert.Equal(t, 4, filtered.Len())
	got, ok := means.Mean("compact", "displ")
	require.True(t, ok)
	assert.InDelta(t, 2.2, got, 1e-9)
	assert.NotContains(t, means.Measures, "manufacturer")
	assert.Contains(t, means.Measures, "cty")
}

func TestBuildRecords_MissingNumericCell(t *testing.T) {
	data := []byte("class,displ,hwy\nsuv,5.0,\nsuv,4.0,20\n")
	view, _, err := ParseCSVAuto(data)
	require.NoError(t, err)

	assert.False(t, view.HasMeasure(0, "hwy"))
	assert.Equal(t, "", view.Dimension(0, "hwy"))

	means := engine.ClassMeansOf(view, "class")
	hwy, ok := means.Mean("suv", "hwy")
	require.True(t, ok)
	assert.Equal(t, 20.0, hwy)
}

func TestBuildRecords_InfiniteCellIsMissing(t *testing.T) {
	data := []byte("class,displ,hwy\nsuv,5.0,inf\nsuv,4.0,20\n")
	view, _, err := ParseCSVAuto(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"displ", "hwy"}, view.MeasureKeys())
	assert.False(t, view.HasMeasure(0, "hwy"))
	assert.Equal(t, "inf", view.Dimension(0, "hwy"))
}

func TestParseCSV_WithSchema(t *testing.T) {
	sch, err := schema.DiscoverFromCSV(mpgCSV)
	require.NoError(t, err)

	records, err := ParseCSV(mpgCSV, *sch)
	require.NoError(t, err)
	require.Len(t, records, 7)
	assert.Equal(t, "land cruiser wagon 4wd", records[6].Dimensions["model"])
	assert.Equal(t, 18.0, records[6].Measures["hwy"])

	view, err := ParseCSVView(mpgCSV, *sch)
	require.NoError(t, err)
	assert.Equal(t, 7, view.Len())
}

func TestReadCSV_Errors(t *testing.T) {
	_, _, err := ReadCSV(strings.NewReader(""))
	require.Error(t, err)

	_, _, err = ReadCSV(strings.NewReader("a,b\n1,2\n3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read CSV row")
}
