package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spektr-org/mpgexplorer/dataset"
	"github.com/spektr-org/mpgexplorer/engine"
	"github.com/spektr-org/mpgexplorer/helpers"
)

var (
	meansYear      string
	meansFormat    string
	describeYear   string
	describeFormat string
	exportYear     string
	exportOut      string
	schemaFormat   string
)

var meansCmd = &cobra.Command{
	Use:   "means",
	Short: "Print the per-class means for a year as CSV",
	Args:  cobra.NoArgs,
	RunE:  runMeans,
}

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print count, mean, median, std dev, min and max of each numeric column",
	Args:  cobra.NoArgs,
	RunE:  runDescribe,
}

var yearsCmd = &cobra.Command{
	Use:   "years",
	Short: "List the selectable years",
	Args:  cobra.NoArgs,
	RunE:  runYears,
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the discovered column types and roles",
	Args:  cobra.NoArgs,
	RunE:  runSchema,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the filtered vehicles and class means to .xlsx",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func runMeans(cmd *cobra.Command, args []string) error {
	table, err := loadTable()
	if err != nil {
		return err
	}
	_, means := engine.FilterAndAggregate(table.View, engine.ParseYearSelector(meansYear), table.Columns.Options()...)
	return writeTable(cmd.OutOrStdout(), engine.BuildMeansTable(means), meansFormat)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	table, err := loadTable()
	if err != nil {
		return err
	}
	filtered := engine.FilterYear(table.View, table.Columns.Year, engine.ParseYearSelector(describeYear))
	cols, err := dataset.Describe(filtered)
	if err != nil {
		return err
	}
	return writeTable(cmd.OutOrStdout(), dataset.DescribeTable(cols), describeFormat)
}

func runYears(cmd *cobra.Command, args []string) error {
	table, err := loadTable()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(table.Years, "\n"))
	return err
}

func runSchema(cmd *cobra.Command, args []string) error {
	table, err := loadTable()
	if err != nil {
		return err
	}
	if strings.EqualFold(schemaFormat, "json") {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(table.Schema)
	}
	return writeTable(cmd.OutOrStdout(), dataset.SchemaTable(table.Schema), schemaFormat)
}

func runExport(cmd *cobra.Command, args []string) error {
	table, err := loadTable()
	if err != nil {
		return err
	}
	sel := engine.ParseYearSelector(exportYear)
	filtered, means := engine.FilterAndAggregate(table.View, sel, table.Columns.Options()...)

	path := exportOut
	if path == "" {
		path = fmt.Sprintf("mpg-%s.xlsx", strings.ToLower(sel.String()))
	}
	err = writeFileAtomic(path, func(w io.Writer) error {
		return helpers.WriteXLSX(w, engine.BuildDatasetTable(filtered, helpers.VehiclesSheet), means)
	})
	if err != nil {
		return err
	}
	logger.Info("workbook written",
		zap.String("path", path),
		zap.Int("vehicles", filtered.Len()),
		zap.Int("classes", means.Len()))
	return nil
}

// writeFileAtomic buffers write's output and moves it into place only when
// write succeeds. An existing file at path is left alone on failure.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// writeTable writes table as CSV or as an aligned text table.
func writeTable(w io.Writer, table *engine.TableData, format string) error {
	header := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col.Label
	}

	switch strings.ToLower(format) {
	case "", "csv":
		return writeCSV(w, header, table.Rows)
	case "table":
		writeText(w, header, table)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want csv or table)", format)
	}
}

func writeText(w io.Writer, header []string, table *engine.TableData) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(header)
	aligns := make([]int, len(table.Columns))
	for i, col := range table.Columns {
		switch col.Align {
		case "right":
			aligns[i] = tablewriter.ALIGN_RIGHT
		case "center":
			aligns[i] = tablewriter.ALIGN_CENTER
		default:
			aligns[i] = tablewriter.ALIGN_LEFT
		}
	}
	tw.SetColumnAlignment(aligns)
	tw.AppendBulk(table.Rows)
	tw.Render()
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
