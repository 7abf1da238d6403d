package engine

import (
	"fmt"
)

// BuildCaption summarises one render pass for the line under the chart.
func BuildCaption(filtered RecordView, means ClassMeans, sel YearSelector) string {
	n := filtered.Len()
	if n == 0 {
		return "No vehicles match the selected year."
	}

	period := "all years"
	if !sel.All {
		period = sel.Value
	}

	return fmt.Sprintf("Showing %s %s from %s across %d %s.",
		FormatInt(n), plural(n, "vehicle", "vehicles"),
		period,
		means.Len(), plural(means.Len(), "class", "classes"))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
