package helpers

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/mpgexplorer/engine"
)

// Sheet names of the exported workbook.
const (
	VehiclesSheet = "Vehicles"
	MeansSheet    = "Class Means"
)

// WriteXLSX writes a workbook with the filtered vehicles on one sheet and
// the class means on another. Numeric cells are written as numbers.
func WriteXLSX(w io.Writer, vehicles *engine.TableData, means engine.ClassMeans) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", VehiclesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeTableSheet(f, VehiclesSheet, vehicles); err != nil {
		return err
	}

	if _, err := f.NewSheet(MeansSheet); err != nil {
		return fmt.Errorf("create sheet %q: %w", MeansSheet, err)
	}
	if err := writeMeansSheet(f, means); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeTableSheet(f *excelize.File, sheet string, table *engine.TableData) error {
	if table == nil {
		return nil
	}
	for i, col := range table.Columns {
		label := col.Label
		if label == "" {
			label = col.Key
		}
		if err := setCell(f, sheet, i+1, 1, label); err != nil {
			return err
		}
	}
	for r, row := range table.Rows {
		for c, val := range row {
			var cell any = val
			if c < len(table.Columns) && table.Columns[c].Type != "text" {
				if n, err := strconv.ParseFloat(val, 64); err == nil {
					cell = n
				}
			}
			if err := setCell(f, sheet, c+1, r+2, cell); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeMeansSheet(f *excelize.File, means engine.ClassMeans) error {
	header := append([]string{means.GroupBy, "count"}, means.Measures...)
	for i, h := range header {
		if err := setCell(f, MeansSheet, i+1, 1, h); err != nil {
			return err
		}
	}
	for r, g := range means.Groups {
		row := r + 2
		if err := setCell(f, MeansSheet, 1, row, g.Label); err != nil {
			return err
		}
		if err := setCell(f, MeansSheet, 2, row, g.Count); err != nil {
			return err
		}
		for i, m := range means.Measures {
			v, ok := g.Means[m]
			if !ok {
				continue
			}
			if err := setCell(f, MeansSheet, i+3, row, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
	}
	return nil
}
