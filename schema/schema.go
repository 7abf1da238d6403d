package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ============================================================================
// SCHEMA — Describes the shape of a loaded dataset
// ============================================================================
// Auto-discovered from the CSV header and rows. The loader uses it to decide
// which columns are parsed as numbers; the engine averages exactly those.
// The role classification is reported by the schema endpoint and command.
// ============================================================================

// Column types.
const (
	TypeString  = "string"
	TypeNumeric = "numeric"
	TypeDate    = "date"
	TypeBool    = "bool"
)

// Column roles.
const (
	RoleDimension = "dimension"
	RoleMeasure   = "measure"
	RoleSkipped   = "skipped"
)

// ErrMissingColumns is returned by Validate when required columns are absent.
var ErrMissingColumns = errors.New("missing required columns")

// Config describes the complete shape of a dataset.
type Config struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Every column in source order.
	Columns []ColumnMeta `json:"columns" yaml:"columns"`

	Dimensions []DimensionMeta `json:"dimensions" yaml:"dimensions"`
	Measures   []MeasureMeta   `json:"measures" yaml:"measures"`

	// Auto-discovery metadata
	DiscoveredFrom string `json:"discoveredFrom,omitempty" yaml:"discoveredFrom,omitempty"`
	RowCount       int    `json:"rowCount" yaml:"rowCount"`

	// Columns skipped as grouping candidates during auto-discovery.
	// They are still loaded and displayed.
	SkippedColumns []SkippedColumn `json:"skippedColumns,omitempty" yaml:"skippedColumns,omitempty"`
}

// ColumnMeta describes one source column.
type ColumnMeta struct {
	Key    string `json:"key" yaml:"key"`
	Header string `json:"header" yaml:"header"`
	Index  int    `json:"index" yaml:"index"`
	Type   string `json:"type" yaml:"type"`
	Role   string `json:"role" yaml:"role"`

	// Numeric is set when every non-empty value parses as a number.
	Numeric bool `json:"numeric" yaml:"numeric"`
}

// DimensionMeta describes a string field used for grouping/filtering.
type DimensionMeta struct {
	Key             string   `json:"key" yaml:"key"`
	DisplayName     string   `json:"displayName" yaml:"displayName"`
	SampleValues    []string `json:"sampleValues" yaml:"sampleValues"`
	Groupable       bool     `json:"groupable" yaml:"groupable"`
	Filterable      bool     `json:"filterable" yaml:"filterable"`
	IsTemporal      bool     `json:"isTemporal,omitempty" yaml:"isTemporal,omitempty"`
	CardinalityHint string   `json:"cardinalityHint,omitempty" yaml:"cardinalityHint,omitempty"` // "low", "medium", "high"
}

// MeasureMeta describes a numeric field used for aggregation.
type MeasureMeta struct {
	Key                string   `json:"key" yaml:"key"`
	DisplayName        string   `json:"displayName" yaml:"displayName"`
	Aggregations       []string `json:"aggregations,omitempty" yaml:"aggregations,omitempty"`
	DefaultAggregation string   `json:"defaultAggregation,omitempty" yaml:"defaultAggregation,omitempty"`
}

// SkippedColumn records why a column was excluded during auto-discovery.
type SkippedColumn struct {
	Column string `json:"column" yaml:"column"`
	Reason string `json:"reason" yaml:"reason"`
}

// ColumnKeys returns all column keys in source order.
func (c Config) ColumnKeys() []string {
	keys := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		keys[i] = col.Key
	}
	return keys
}

// NumericKeys returns the keys of numeric columns in source order.
func (c Config) NumericKeys() []string {
	var keys []string
	for _, col := range c.Columns {
		if col.Numeric {
			keys = append(keys, col.Key)
		}
	}
	return keys
}

// Column looks up a column by key.
func (c Config) Column(key string) (ColumnMeta, bool) {
	for _, col := range c.Columns {
		if col.Key == key {
			return col, true
		}
	}
	return ColumnMeta{}, false
}

// Dimension looks up a dimension by key.
func (c Config) Dimension(key string) (DimensionMeta, bool) {
	for _, d := range c.Dimensions {
		if d.Key == key {
			return d, true
		}
	}
	return DimensionMeta{}, false
}

// Measure looks up a measure by key.
func (c Config) Measure(key string) (MeasureMeta, bool) {
	for _, m := range c.Measures {
		if m.Key == key {
			return m, true
		}
	}
	return MeasureMeta{}, false
}

// SkipReason returns why the column with the given header was skipped.
func (c Config) SkipReason(header string) (string, bool) {
	for _, sc := range c.SkippedColumns {
		if sc.Column == header {
			return sc.Reason, true
		}
	}
	return "", false
}

// DimensionKeys returns all dimension keys.
func (c Config) DimensionKeys() []string {
	keys := make([]string, len(c.Dimensions))
	for i, d := range c.Dimensions {
		keys[i] = d.Key
	}
	return keys
}

// MeasureKeys returns all measure keys.
func (c Config) MeasureKeys() []string {
	keys := make([]string, len(c.Measures))
	for i, m := range c.Measures {
		keys[i] = m.Key
	}
	return keys
}

// Validate checks that every required column is present. Columns listed in
// numeric must also be numeric. The error wraps ErrMissingColumns.
func (c Config) Validate(required []string, numeric []string) error {
	var missing, notNumeric []string
	for _, key := range required {
		if _, ok := c.Column(key); !ok {
			missing = append(missing, key)
		}
	}
	for _, key := range numeric {
		if col, ok := c.Column(key); ok && !col.Numeric {
			notNumeric = append(notNumeric, key)
		}
	}

	switch {
	case len(missing) > 0 && len(notNumeric) > 0:
		return fmt.Errorf("%w: %s (non-numeric: %s)", ErrMissingColumns,
			strings.Join(missing, ", "), strings.Join(notNumeric, ", "))
	case len(missing) > 0:
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	case len(notNumeric) > 0:
		return fmt.Errorf("%w: no numeric values in %s", ErrMissingColumns, strings.Join(notNumeric, ", "))
	}
	return nil
}

// DefaultDimension creates a DimensionMeta with sensible defaults.
func DefaultDimension(key, displayName string, samples []string) DimensionMeta {
	return DimensionMeta{
		Key:          key,
		DisplayName:  displayName,
		SampleValues: samples,
		Groupable:    true,
		Filterable:   true,
	}
}

// DefaultMeasure creates a MeasureMeta with sensible defaults.
func DefaultMeasure(key, displayName string) MeasureMeta {
	return MeasureMeta{
		Key:                key,
		DisplayName:        displayName,
		Aggregations:       []string{"avg", "min", "max", "count"},
		DefaultAggregation: "avg",
	}
}
