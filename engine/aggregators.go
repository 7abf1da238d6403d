package engine

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ============================================================================
// AGGREGATORS — Grouping and Means via RecordView
// ============================================================================
// All functions operate on RecordView — zero-copy access to any data source.
// Grouping produces SubViews (index lists into parent view).
// ============================================================================

// ClassMeans is the per-class mean table derived from a filtered view.
// Groups are sorted ascending by key; each Group.Means holds the mean of
// every numeric column except the grouping column.
type ClassMeans struct {
	GroupBy  string   `json:"groupBy"`
	Measures []string `json:"measures"`
	Groups   []Group  `json:"groups"`
}

// Len returns the number of classes.
func (m ClassMeans) Len() int { return len(m.Groups) }

// Classes returns the class names in table order.
func (m ClassMeans) Classes() []string {
	out := make([]string, len(m.Groups))
	for i, g := range m.Groups {
		out[i] = g.Key
	}
	return out
}

// Lookup returns the row for one class.
func (m ClassMeans) Lookup(class string) (Group, bool) {
	for _, g := range m.Groups {
		if g.Key == class {
			return g, true
		}
	}
	return Group{}, false
}

// Mean returns the mean of measure for class, and whether it exists.
func (m ClassMeans) Mean(class, measure string) (float64, bool) {
	g, ok := m.Lookup(class)
	if !ok {
		return 0, false
	}
	v, ok := g.Means[measure]
	return v, ok
}

// ClassMeansOf groups view by the groupBy dimension and averages every
// numeric column. Rows with an empty group value are left out, so no class
// appears without contributing records. An empty view gives an empty table.
func ClassMeansOf(view RecordView, groupBy string) ClassMeans {
	measures := make([]string, 0, len(view.MeasureKeys()))
	for _, key := range view.MeasureKeys() {
		if key != groupBy {
			measures = append(measures, key)
		}
	}

	out := ClassMeans{GroupBy: groupBy, Measures: measures}
	if view.Len() == 0 {
		return out
	}

	groups := groupBySingle(view, groupBy)
	kept := groups[:0]
	for _, g := range groups {
		if strings.TrimSpace(g.Key) == "" {
			continue
		}
		g.Count = g.View.Len()
		g.Means = make(map[string]float64, len(measures))
		for _, m := range measures {
			if avg, ok := MeanMeasure(g.View, m); ok {
				g.Means[m] = avg
			}
		}
		kept = append(kept, g)
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Key < kept[j].Key })
	out.Groups = kept
	return out
}

// ============================================================================
// GROUPING
// ============================================================================

func groupBySingle(view RecordView, dimension string) []Group {
	grouped := make(map[string][]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key := view.Dimension(i, dimension)
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{
			Key:   key,
			Label: key,
			View:  newSubView(view, grouped[key]),
		})
	}
	return groups
}

// ============================================================================
// MEASURE STATISTICS
// ============================================================================

// hasFinite reports whether row i carries a finite value for measure.
// Infinite and NaN values count as missing.
func hasFinite(view RecordView, i int, measure string) bool {
	if !view.HasMeasure(i, measure) {
		return false
	}
	v := view.Measure(i, measure)
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

// MeanMeasure averages a measure over the rows that carry a finite value.
// The second result is false when no row has one.
func MeanMeasure(view RecordView, measure string) (float64, bool) {
	var total float64
	n := 0
	for i := 0; i < view.Len(); i++ {
		if !hasFinite(view, i, measure) {
			continue
		}
		total += view.Measure(i, measure)
		n++
	}
	if n == 0 {
		return 0, false
	}
	return total / float64(n), true
}

// MeasureExtent returns the smallest and largest value of a measure.
// ok is false when no row carries the measure.
func MeasureExtent(view RecordView, measure string) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for i := 0; i < view.Len(); i++ {
		if !hasFinite(view, i, measure) {
			continue
		}
		v := view.Measure(i, measure)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
		ok = true
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}

// FormatMeasure renders a mean for tables: whole numbers without decimals,
// everything else with two.
func FormatMeasure(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// UniqueValues returns distinct non-empty values for a dimension, in first
// seen order.
func UniqueValues(view RecordView, dimension string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		val := strings.TrimSpace(view.Dimension(i, dimension))
		if val != "" && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	return result
}

// LabelForDimension returns a capitalized label for a dimension.
func LabelForDimension(dimension string) string {
	if len(dimension) == 0 {
		return ""
	}
	return strings.ToUpper(dimension[:1]) + dimension[1:]
}
