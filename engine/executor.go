package engine

// ============================================================================
// EXECUTOR — One render pass
// ============================================================================
// Entry point: Execute(view, selection, policy, opts...)
//
// Pipeline:
//   1. Filter by year → SubView (or the view itself for "All")
//   2. Group by class → ClassMeans
//   3. Build the chart config under the backend's policy
//   4. Build the means table and caption
//
// Pure: the same inputs always give the same Result, and the loaded view is
// only read. The hosting shell calls this once per user interaction.
// ============================================================================

// FilterAndAggregate returns the rows matching the year selector and the
// per-class means over those rows.
func FilterAndAggregate(view RecordView, sel YearSelector, opts ...Option) (RecordView, ClassMeans) {
	cfg := applyOptions(opts)
	filtered := FilterYear(view, cfg.YearDimension, sel)
	return filtered, ClassMeansOf(filtered, cfg.GroupBy)
}

// Execute runs one full render pass for a selection.
func Execute(view RecordView, sel Selection, policy ChartPolicy, opts ...Option) *Result {
	filtered, means := FilterAndAggregate(view, sel.Year, opts...)

	return &Result{
		Selection:   sel,
		Caption:     BuildCaption(filtered, means, sel.Year),
		Count:       filtered.Len(),
		ChartConfig: BuildChart(filtered, means, sel.ShowMeans, policy, opts...),
		MeansTable:  BuildMeansTable(means),
		Filtered:    filtered,
		Means:       means,
	}
}
