package helpers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/spektr-org/mpgexplorer/engine"
	"github.com/spektr-org/mpgexplorer/schema"
)

// ============================================================================
// CSV HELPER — Parses CSV data into []engine.Record
// ============================================================================
// Every column keeps its raw text as a dimension so rows round-trip verbatim.
// Columns the schema marks numeric are additionally parsed into measures;
// empty or unparseable cells are left out of Measures.
// ============================================================================

// ReadCSV reads the header and all rows. A row with the wrong number of
// fields is an error.
func ReadCSV(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)

	headers, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

// BuildRecords converts raw rows into Records using the schema's columns.
func BuildRecords(rows [][]string, sch schema.Config) []engine.Record {
	records := make([]engine.Record, 0, len(rows))
	for _, row := range rows {
		rec := engine.Record{
			Dimensions: make(map[string]string, len(sch.Columns)),
			Measures:   make(map[string]float64),
		}
		for _, col := range sch.Columns {
			if col.Index >= len(row) {
				continue
			}
			val := row[col.Index]
			rec.Dimensions[col.Key] = val

			if !col.Numeric || schema.IsNull(val) {
				continue
			}
			if f, ok := schema.ParseNumber(val); ok {
				rec.Measures[col.Key] = f
			}
		}
		records = append(records, rec)
	}
	return records
}

// ParseCSV parses CSV bytes into Records using sch for classification.
func ParseCSV(data []byte, sch schema.Config) ([]engine.Record, error) {
	_, rows, err := ReadCSV(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return BuildRecords(rows, sch), nil
}

// ParseCSVView parses CSV into a RecordView with columns in source order.
func ParseCSVView(data []byte, sch schema.Config) (engine.RecordView, error) {
	records, err := ParseCSV(data, sch)
	if err != nil {
		return nil, err
	}
	return NewView(records, sch), nil
}

// ParseCSVAuto discovers the schema and parses in a single read.
func ParseCSVAuto(data []byte, opts ...schema.DiscoverOptions) (engine.RecordView, *schema.Config, error) {
	headers, rows, err := ReadCSV(bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}
	sch, err := schema.Discover(headers, rows, opts...)
	if err != nil {
		return nil, nil, err
	}
	return NewView(BuildRecords(rows, *sch), *sch), sch, nil
}

// NewView wraps records in a view whose key order follows the CSV header.
func NewView(records []engine.Record, sch schema.Config) engine.RecordView {
	return engine.NewSliceViewWithKeys(records, sch.ColumnKeys(), sch.NumericKeys())
}
