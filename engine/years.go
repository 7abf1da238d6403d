package engine

import (
	"sort"
	"strconv"
)

// YearOptions lists the selectable years: the distinct values of the year
// dimension sorted ascending, with the "All" sentinel first. Values that
// parse as numbers sort numerically and ahead of any that don't.
func YearOptions(view RecordView, yearDimension string) []string {
	years := UniqueValues(view, yearDimension)
	sort.SliceStable(years, func(i, j int) bool {
		a, aErr := strconv.ParseFloat(years[i], 64)
		b, bErr := strconv.ParseFloat(years[j], 64)
		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		default:
			return years[i] < years[j]
		}
	})
	return append([]string{AllYearsLabel}, years...)
}
