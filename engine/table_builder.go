package engine

import (
	"fmt"
)

// ============================================================================
// TABLE BUILDER — Produces TableData for the dataset and means views
// ============================================================================
// Column discovery uses view.DimensionKeys(), which keeps source column
// order, so rows are shown exactly as they were read.
// ============================================================================

// BuildDatasetTable lists every record of view verbatim. The first column is
// the 1-based row number of the record in the loaded file, which filtered
// views keep.
func BuildDatasetTable(view RecordView, title string) *TableData {
	dimKeys := view.DimensionKeys()
	columns := make([]Column, 0, len(dimKeys)+1)
	columns = append(columns, Column{Key: "#", Label: "", Type: "index", Align: "right"})

	measureSet := make(map[string]bool, len(view.MeasureKeys()))
	for _, k := range view.MeasureKeys() {
		measureSet[k] = true
	}
	for _, key := range dimKeys {
		col := Column{Key: key, Label: key, Type: "text", Align: "left"}
		if measureSet[key] {
			col.Type, col.Align = "number", "right"
		}
		columns = append(columns, col)
	}

	rows := make([][]string, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		row := make([]string, 0, len(columns))
		row = append(row, fmt.Sprintf("%d", SourceIndex(view, i)+1))
		for _, key := range dimKeys {
			row = append(row, view.Dimension(i, key))
		}
		rows = append(rows, row)
	}

	return &TableData{
		Title:   title,
		Columns: columns,
		Rows:    rows,
		Summary: &Summary{
			Label:  "Records",
			Values: map[string]string{"#": FormatInt(view.Len())},
		},
	}
}

// BuildMeansTable renders class means: one row per class with its record
// count and the mean of each numeric column.
func BuildMeansTable(means ClassMeans) *TableData {
	groupLabel := LabelForDimension(means.GroupBy)
	if groupLabel == "" {
		groupLabel = "Group"
	}

	columns := make([]Column, 0, len(means.Measures)+2)
	columns = append(columns,
		Column{Key: means.GroupBy, Label: groupLabel, Type: "text", Align: "left"},
		Column{Key: "count", Label: "Count", Type: "number", Align: "center"},
	)
	for _, m := range means.Measures {
		columns = append(columns, Column{Key: m, Label: m, Type: "number", Align: "right"})
	}

	rows := make([][]string, 0, means.Len())
	total := 0
	for _, g := range means.Groups {
		row := []string{g.Label, fmt.Sprintf("%d", g.Count)}
		for _, m := range means.Measures {
			if v, ok := g.Means[m]; ok {
				row = append(row, FormatMeasure(v))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
		total += g.Count
	}

	return &TableData{
		Title:   "Class Means",
		Columns: columns,
		Rows:    rows,
		Summary: &Summary{
			Label:  "Total",
			Values: map[string]string{"count": fmt.Sprintf("%d", total)},
		},
	}
}
