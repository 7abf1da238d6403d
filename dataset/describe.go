package dataset

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"github.com/spektr-org/mpgexplorer/engine"
)

// ColumnStats summarizes one numeric column.
type ColumnStats struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"stdDev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Describe summarizes every numeric column of view in source order.
// Columns without a single value in view are left out.
func Describe(view engine.RecordView) ([]ColumnStats, error) {
	var out []ColumnStats
	for _, key := range view.MeasureKeys() {
		var data stats.Float64Data
		for i := 0; i < view.Len(); i++ {
			if view.HasMeasure(i, key) {
				data = append(data, view.Measure(i, key))
			}
		}
		if len(data) == 0 {
			continue
		}

		cs := ColumnStats{Column: key, Count: len(data)}
		var err error
		if cs.Mean, err = data.Mean(); err != nil {
			return nil, fmt.Errorf("%s: mean computation failed: %w", key, err)
		}
		if cs.Median, err = data.Median(); err != nil {
			return nil, fmt.Errorf("%s: median computation failed: %w", key, err)
		}
		if cs.StdDev, err = data.StandardDeviation(); err != nil {
			return nil, fmt.Errorf("%s: standard deviation computation failed: %w", key, err)
		}
		if cs.Min, err = data.Min(); err != nil {
			return nil, fmt.Errorf("%s: min computation failed: %w", key, err)
		}
		if cs.Max, err = data.Max(); err != nil {
			return nil, fmt.Errorf("%s: max computation failed: %w", key, err)
		}
		out = append(out, cs)
	}
	return out, nil
}

// DescribeTable renders Describe output as table data, one row per column.
func DescribeTable(cols []ColumnStats) *engine.TableData {
	t := &engine.TableData{
		Title: "Summary Statistics",
		Columns: []engine.Column{
			{Key: "column", Label: "Column", Type: "text", Align: "left"},
			{Key: "count", Label: "Count", Type: "number", Align: "right"},
			{Key: "mean", Label: "Mean", Type: "number", Align: "right"},
			{Key: "median", Label: "Median", Type: "number", Align: "right"},
			{Key: "std_dev", Label: "Std Dev", Type: "number", Align: "right"},
			{Key: "min", Label: "Min", Type: "number", Align: "right"},
			{Key: "max", Label: "Max", Type: "number", Align: "right"},
		},
	}
	for _, c := range cols {
		t.Rows = append(t.Rows, []string{
			c.Column,
			engine.FormatInt(c.Count),
			engine.FormatMeasure(c.Mean),
			engine.FormatMeasure(c.Median),
			engine.FormatMeasure(c.StdDev),
			engine.FormatMeasure(c.Min),
			engine.FormatMeasure(c.Max),
		})
	}
	return t
}
