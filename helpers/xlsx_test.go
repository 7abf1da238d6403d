package helpers

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/mpgexplorer/engine"
)

func TestWriteXLSX(t *testing.T) {
	view, _, err := ParseCSVAuto(mpgCSV)
	require.NoError(t, err)
	filtered, means := engine.FilterAndAggregate(view, engine.YearOf("2008"))

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, engine.BuildDatasetTable(filtered, "Vehicles"), means))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{VehiclesSheet, MeansSheet}, f.GetSheetList())

	rows, err := f.GetRows(VehiclesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "#", rows[0][0])
	assert.Equal(t, "manufacturer", rows[0][1])
	assert.Equal(t, "2", rows[1][0])
	assert.Equal(t, "audi", rows[1][1])
	assert.Equal(t, "minivan", rows[2][11])

	mrows, err := f.GetRows(MeansSheet)
	require.NoError(t, err)
	require.Len(t, mrows, 4)
	assert.Equal(t, []string{"class", "count", "displ", "year", "cyl", "cty", "hwy"}, mrows[0])
	assert.Equal(t, "compact", mrows[1][0])
	assert.Equal(t, "2", mrows[1][1])

	raw, err := f.GetCellValue(MeansSheet, "C2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	displ, err := strconv.ParseFloat(raw, 64)
	require.NoError(t, err)
	assert.InDelta(t, 2.2, displ, 1e-9)
}

func TestWriteXLSX_EmptySelection(t *testing.T) {
	view, _, err := ParseCSVAuto(mpgCSV)
	require.NoError(t, err)
	filtered, means := engine.FilterAndAggregate(view, engine.YearOf("1975"))

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, engine.BuildDatasetTable(filtered, "Vehicles"), means))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(VehiclesSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
