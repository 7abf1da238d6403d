package schema

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ============================================================================
// AUTO-DISCOVERY — Heuristic Column Classification
// ============================================================================
// Inspects the CSV header and rows and generates a schema.Config.
//
// Classification pipeline per column:
//   1. Values → strict numeric check (every non-empty value parses)
//   2. Values → detect type (numeric, date, bool, string)
//   3. Type + cardinality → classify role (dimension, measure, skip)
// ============================================================================

// DiscoverOptions controls discovery behavior.
type DiscoverOptions struct {
	SampleSize int    // Max rows to inspect for roles (0 = all)
	Name       string // Dataset name override
}

// DefaultDiscoverOptions returns sensible defaults.
func DefaultDiscoverOptions() DiscoverOptions {
	return DiscoverOptions{Name: "Dataset"}
}

// DiscoverFromCSV generates a schema.Config by inspecting CSV data.
// A row with the wrong number of fields is an error.
func DiscoverFromCSV(data []byte, opts ...DiscoverOptions) (*Config, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		rows = append(rows, row)
	}

	return Discover(headers, rows, opts...)
}

// Discover classifies already-read CSV headers and rows.
func Discover(headers []string, rows [][]string, opts ...DiscoverOptions) (*Config, error) {
	opt := DefaultDiscoverOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	if len(headers) == 0 {
		return nil, fmt.Errorf("CSV has no columns")
	}

	sample := rows
	if opt.SampleSize > 0 && len(sample) > opt.SampleSize {
		sample = sample[:opt.SampleSize]
	}

	name := opt.Name
	if name == "" {
		name = "Dataset"
	}
	config := &Config{
		Name:           name,
		Version:        "1.0",
		DiscoveredFrom: "CSV",
		RowCount:       len(rows),
	}

	keys := ColumnKeys(headers)
	for i, header := range headers {
		col := analyzeColumn(header, keys[i], i, rows, sample)

		config.Columns = append(config.Columns, ColumnMeta{
			Key:     col.key,
			Header:  header,
			Index:   i,
			Type:    col.colType.String(),
			Role:    col.role.String(),
			Numeric: col.numeric,
		})

		switch col.role {
		case roleDimension:
			config.Dimensions = append(config.Dimensions, col.toDimension())
		case roleMeasure:
			config.Measures = append(config.Measures, col.toMeasure())
		case roleSkipped:
			config.SkippedColumns = append(config.SkippedColumns, SkippedColumn{
				Column: header,
				Reason: col.skipReason,
			})
		}
	}

	return config, nil
}

// ColumnKeys converts headers to unique snake_case keys. Blank headers
// become "unnamed_<index>"; repeated keys get a numeric suffix.
func ColumnKeys(headers []string) []string {
	keys := make([]string, len(headers))
	seen := make(map[string]int)
	for i, h := range headers {
		key := toSnakeCase(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if key == "" {
			key = fmt.Sprintf("unnamed_%d", i)
		}
		seen[key]++
		if n := seen[key]; n > 1 {
			key = fmt.Sprintf("%s_%d", key, n)
		}
		keys[i] = key
	}
	return keys
}

// ============================================================================
// COLUMN ANALYSIS
// ============================================================================

type columnRole int

const (
	roleDimension columnRole = iota
	roleMeasure
	roleSkipped
)

func (r columnRole) String() string {
	switch r {
	case roleMeasure:
		return RoleMeasure
	case roleSkipped:
		return RoleSkipped
	default:
		return RoleDimension
	}
}

type columnType int

const (
	typeString columnType = iota
	typeNumeric
	typeDate
	typeBool
)

func (t columnType) String() string {
	switch t {
	case typeNumeric:
		return TypeNumeric
	case typeDate:
		return TypeDate
	case typeBool:
		return TypeBool
	default:
		return TypeString
	}
}

type columnAnalysis struct {
	header     string
	key        string
	index      int
	colType    columnType
	role       columnRole
	numeric    bool
	skipReason string

	// Stats
	uniqueCount int
	totalCount  int
	sampleVals  []string

	isTemporal      bool
	hasDecimals     bool
	cardinalityHint string
}

// analyzeColumn checks numeric-ness over all rows and classifies the role
// from the sample.
func analyzeColumn(header, key string, index int, rows, sample [][]string) columnAnalysis {
	col := columnAnalysis{
		header:     header,
		key:        key,
		index:      index,
		totalCount: len(sample),
	}

	col.numeric = allNumeric(rows, index)

	values := make([]string, 0, len(sample))
	uniqueSet := make(map[string]bool)
	for _, row := range sample {
		if index >= len(row) {
			continue
		}
		val := strings.TrimSpace(row[index])
		if IsNull(val) {
			continue
		}
		values = append(values, val)
		uniqueSet[val] = true
	}
	col.uniqueCount = len(uniqueSet)

	if len(values) == 0 {
		col.role = roleSkipped
		col.skipReason = "All values are empty/null"
		return col
	}

	col.sampleVals = collectSamples(uniqueSet, 10)

	if col.numeric {
		col.colType = typeNumeric
	} else {
		col.colType = detectType(values)
	}

	if col.colType == typeNumeric {
		for _, v := range values {
			if strings.Contains(v, ".") {
				col.hasDecimals = true
				break
			}
		}
	}
	if col.colType == typeDate {
		col.isTemporal = true
	}

	col.classifyRole(len(sample))

	switch {
	case col.uniqueCount <= 10:
		col.cardinalityHint = "low"
	case col.uniqueCount <= 100:
		col.cardinalityHint = "medium"
	default:
		col.cardinalityHint = "high"
	}

	return col
}

// classifyRole determines dimension vs measure vs skip.
func (col *columnAnalysis) classifyRole(totalRows int) {
	switch col.colType {

	case typeNumeric:
		if col.uniqueCount == totalRows && totalRows > 10 && !col.hasDecimals {
			col.role = roleSkipped
			col.skipReason = "Unique per row — likely an ID column"
			return
		}
		if col.hasDecimals {
			col.role = roleMeasure
			return
		}
		// Few distinct integers (year, cylinders) → coded dimension
		uniqueRatio := float64(col.uniqueCount) / float64(totalRows)
		if col.uniqueCount < 20 && uniqueRatio < 0.3 {
			col.role = roleDimension
			col.isTemporal = looksLikeYears(col.sampleVals)
			return
		}
		col.role = roleMeasure

	case typeDate, typeBool:
		col.role = roleDimension

	case typeString:
		if col.uniqueCount == totalRows && totalRows > 10 {
			col.role = roleSkipped
			col.skipReason = "Unique per row — likely an identifier"
			return
		}
		if col.uniqueCount > totalRows/2 && col.uniqueCount > 50 {
			col.role = roleSkipped
			col.skipReason = fmt.Sprintf("High cardinality (%d unique values) — not useful for grouping", col.uniqueCount)
			return
		}
		col.role = roleDimension
	}
}

// ============================================================================
// TYPE DETECTION
// ============================================================================

// IsNull reports whether a raw cell counts as missing. Cells that parse to
// a non-finite number (inf, -Infinity, 1e999) are missing too.
func IsNull(val string) bool {
	v := strings.TrimSpace(val)
	switch v {
	case "", "null", "NULL", "NaN", "nan", "N/A", "n/a", "NA":
		return true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return false
	}
	return math.IsInf(f, 0) || math.IsNaN(f)
}

// ParseNumber parses a cell the way numeric columns are read. Only finite
// values are accepted.
func ParseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// allNumeric reports whether every non-null value in the column parses as a
// number and at least one does.
func allNumeric(rows [][]string, index int) bool {
	seen := false
	for _, row := range rows {
		if index >= len(row) || IsNull(row[index]) {
			continue
		}
		if _, ok := ParseNumber(row[index]); !ok {
			return false
		}
		seen = true
	}
	return seen
}

// detectType inspects values to determine column type.
// Requires 80%+ of non-null values to match for date/bool.
func detectType(values []string) columnType {
	if len(values) == 0 {
		return typeString
	}

	dateCount := 0
	boolCount := 0
	for _, v := range values {
		if isDate(v) {
			dateCount++
		}
		if isBool(v) {
			boolCount++
		}
	}

	threshold := int(float64(len(values)) * 0.8)

	if boolCount >= threshold {
		return typeBool
	}
	if dateCount >= threshold {
		return typeDate
	}
	return typeString
}

var dateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"Jan-2006",
	"January 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

func isDate(s string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func isBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "false" || s == "yes" || s == "no"
}

func looksLikeYears(samples []string) bool {
	if len(samples) == 0 {
		return false
	}
	for _, s := range samples {
		if _, err := time.Parse("2006", s); err != nil {
			return false
		}
	}
	return true
}

// ============================================================================
// CONVERSION HELPERS
// ============================================================================

// toDimension converts a column analysis into DimensionMeta.
func (col *columnAnalysis) toDimension() DimensionMeta {
	d := DefaultDimension(col.key, toDisplayName(col.header), col.sampleVals)
	d.IsTemporal = col.isTemporal
	d.CardinalityHint = col.cardinalityHint
	return d
}

// toMeasure converts a column analysis into MeasureMeta.
func (col *columnAnalysis) toMeasure() MeasureMeta {
	return DefaultMeasure(col.key, toDisplayName(col.header))
}

// ============================================================================
// STRING UTILITIES
// ============================================================================

// toSnakeCase converts "Column Name" or "columnName" → "column_name".
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) && i > 0 {
			prev := rune(s[i-1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				result.WriteRune('_')
			}
		}
		result.WriteRune(r)
	}

	s = result.String()
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "__", "_")
	s = strings.Trim(s, "_")
	return s
}

// toDisplayName cleans a header for human display.
// "highway_mpg" → "Highway Mpg", "class" → "Class"
func toDisplayName(s string) string {
	if strings.Contains(s, " ") {
		return strings.TrimSpace(s)
	}

	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")

	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}

// collectSamples picks up to maxSamples representative values.
func collectSamples(uniqueSet map[string]bool, maxSamples int) []string {
	samples := make([]string, 0, len(uniqueSet))
	for v := range uniqueSet {
		samples = append(samples, v)
	}

	sort.Strings(samples)

	if len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	return samples
}
