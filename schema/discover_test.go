package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// DISCOVERY TESTS
// ============================================================================

var mpgCSV = []byte(`manufacturer,model,displ,year,cyl,trans,drv,cty,hwy,fl,class
audi,a4,1.8,1999,4,auto(l5),f,18,29,p,compact
audi,a4,2,2008,4,manual(m6),f,20,31,p,compact
chevrolet,corvette,5.7,1999,8,manual(m6),r,16,26,p,2seater
dodge,caravan 2wd,3.3,2008,6,auto(l4),f,17,24,r,minivan
audi,a4 quattro,2,2008,4,manual(m6),4,20,28,p,compact
ford,f150 pickup 4wd,4.2,1999,6,auto(l4),4,14,17,r,pickup
toyota,land cruiser wagon 4wd,4.7,2008,8,auto(l5),4,13,18,r,suv
honda,civic,1.8,2008,4,manual(m5),f,26,34,r,subcompact
`)

func TestDiscoverMPG_ColumnsInSourceOrder(t *testing.T) {
	config, err := DiscoverFromCSV(mpgCSV)
	require.NoError(t, err)

	assert.Equal(t, []string{"manufacturer", "model", "displ", "year", "cyl", "trans", "drv", "cty", "hwy", "fl", "class"}, config.ColumnKeys())
	assert.Equal(t, 8, config.RowCount)
	assert.Equal(t, "CSV", config.DiscoveredFrom)

	for i, col := range config.Columns {
		assert.Equal(t, i, col.Index)
	}
}

func TestDiscoverMPG_NumericColumns(t *testing.T) {
	config, err := DiscoverFromCSV(mpgCSV)
	require.NoError(t, err)

	assert.Equal(t, []string{"displ", "year", "cyl", "cty", "hwy"}, config.NumericKeys())

	// drv mixes "f"/"r" with "4"
	drv, ok := config.Column("drv")
	require.True(t, ok)
	assert.False(t, drv.Numeric)
	assert.Equal(t, TypeString, drv.Type)
}

func TestDiscoverMPG_YearIsNumericTemporalDimension(t *testing.T) {
	config, err := DiscoverFromCSV(mpgCSV)
	require.NoError(t, err)

	year, ok := config.Column("year")
	require.True(t, ok)
	assert.True(t, year.Numeric)
	assert.Equal(t, TypeNumeric, year.Type)
	assert.Equal(t, RoleDimension, year.Role)

	var found bool
	for _, d := range config.Dimensions {
		if d.Key == "year" {
			found = true
			assert.True(t, d.IsTemporal)
			assert.Equal(t, []string{"1999", "2008"}, d.SampleValues)
		}
	}
	assert.True(t, found, "year should be listed as a dimension")
}

func TestDiscoverMPG_Roles(t *testing.T) {
	config, err := DiscoverFromCSV(mpgCSV)
	require.NoError(t, err)

	assert.Contains(t, config.MeasureKeys(), "displ")
	assert.Contains(t, config.MeasureKeys(), "hwy")
	assert.Contains(t, config.DimensionKeys(), "class")
	assert.Contains(t, config.DimensionKeys(), "manufacturer")
	assert.NotContains(t, config.MeasureKeys(), "class")
}

func TestDiscover_EmptyCellsKeepColumnNumeric(t *testing.T) {
	data := []byte("class,hwy,note\ncompact,29,\nsuv,,\ncompact,NA,\n")
	config, err := DiscoverFromCSV(data)
	require.NoError(t, err)

	hwy, _ := config.Column("hwy")
	assert.True(t, hwy.Numeric)

	note, _ := config.Column("note")
	assert.False(t, note.Numeric)
	assert.Equal(t, RoleSkipped, note.Role)
	require.Len(t, config.SkippedColumns, 1)
	assert.Equal(t, "note", config.SkippedColumns[0].Column)
}

func TestDiscover_MalformedRow(t *testing.T) {
	_, err := DiscoverFromCSV([]byte("class,hwy\ncompact,29\nsuv\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read CSV row")
}

func TestDiscover_NoHeader(t *testing.T) {
	_, err := DiscoverFromCSV(nil)
	require.Error(t, err)
}

func TestDiscover_HeaderOnly(t *testing.T) {
	config, err := DiscoverFromCSV([]byte("class,displ,hwy\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, config.RowCount)
	assert.Empty(t, config.NumericKeys())
	assert.Len(t, config.Columns, 3)
}

func TestDiscover_NameOption(t *testing.T) {
	config, err := DiscoverFromCSV(mpgCSV, DiscoverOptions{Name: "Fuel Economy"})
	require.NoError(t, err)
	assert.Equal(t, "Fuel Economy", config.Name)
}

// ============================================================================
// KEYS & NAMES
// ============================================================================

func TestColumnKeys(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    []string
	}{
		{"plain", []string{"displ", "hwy"}, []string{"displ", "hwy"}},
		{"spaces", []string{"Highway MPG", "Engine Size"}, []string{"highway_mpg", "engine_size"}},
		{"camel", []string{"cityMpg"}, []string{"city_mpg"}},
		{"blank", []string{"", "class"}, []string{"unnamed_0", "class"}},
		{"duplicates", []string{"class", "Class"}, []string{"class", "class_2"}},
		{"bom", []string{"\ufeffmanufacturer"}, []string{"manufacturer"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ColumnKeys(tt.headers))
		})
	}
}

func TestToDisplayName(t *testing.T) {
	assert.Equal(t, "Highway Mpg", toDisplayName("highway_mpg"))
	assert.Equal(t, "Class", toDisplayName("class"))
	assert.Equal(t, "Engine Size", toDisplayName(" Engine Size "))
}

func TestParseNumber(t *testing.T) {
	v, ok := ParseNumber(" 1.8 ")
	assert.True(t, ok)
	assert.Equal(t, 1.8, v)

	_, ok = ParseNumber("auto(l5)")
	assert.False(t, ok)
	assert.True(t, IsNull(" NA "))
	assert.False(t, IsNull("0"))
}

func TestParseNumber_NonFiniteIsMissing(t *testing.T) {
	for _, cell := range []string{"inf", "+Inf", "-Infinity", "nan", "1e999"} {
		t.Run(cell, func(t *testing.T) {
			_, ok := ParseNumber(cell)
			assert.False(t, ok)
			assert.True(t, IsNull(cell))
		})
	}
	assert.False(t, IsNull("info"))
}

func TestDiscover_InfCellKeepsColumnNumeric(t *testing.T) {
	config, err := DiscoverFromCSV([]byte("class,hwy\ncompact,29\nsuv,inf\nsuv,-Infinity\n"))
	require.NoError(t, err)

	hwy, ok := config.Column("hwy")
	require.True(t, ok)
	assert.True(t, hwy.Numeric)
	assert.Equal(t, TypeNumeric, hwy.Type)
}

// ============================================================================
// VALIDATION
// ============================================================================

func TestValidate(t *testing.T) {
	config, err := DiscoverFromCSV(mpgCSV)
	require.NoError(t, err)

	t.Run("ok", func(t *testing.T) {
		assert.NoError(t, config.Validate([]string{"displ", "hwy", "class", "year"}, []string{"displ", "hwy"}))
	})

	t.Run("missing", func(t *testing.T) {
		err := config.Validate([]string{"displ", "weight", "colour"}, nil)
		require.ErrorIs(t, err, ErrMissingColumns)
		assert.Contains(t, err.Error(), "weight, colour")
	})

	t.Run("not numeric", func(t *testing.T) {
		err := config.Validate([]string{"class"}, []string{"class"})
		require.ErrorIs(t, err, ErrMissingColumns)
		assert.Contains(t, err.Error(), "class")
	})
}
