package engine

// ============================================================================
// ENGINE OPTIONS — Functional options for Execute()
// ============================================================================

// Default column keys of the MPG dataset.
const (
	DefaultXMeasure      = "displ"
	DefaultYMeasure      = "hwy"
	DefaultGroupBy       = "class"
	DefaultYearDimension = "year"
)

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	XMeasure      string // plotted on the x axis
	YMeasure      string // plotted on the y axis
	GroupBy       string // dimension the means are grouped by
	YearDimension string // dimension the year selector filters on
}

// WithXMeasure sets the measure plotted on the x axis.
func WithXMeasure(key string) Option {
	return func(c *config) {
		if key != "" {
			c.XMeasure = key
		}
	}
}

// WithYMeasure sets the measure plotted on the y axis.
func WithYMeasure(key string) Option {
	return func(c *config) {
		if key != "" {
			c.YMeasure = key
		}
	}
}

// WithGroupBy sets the dimension class means are grouped by.
func WithGroupBy(key string) Option {
	return func(c *config) {
		if key != "" {
			c.GroupBy = key
		}
	}
}

// WithYearDimension sets the dimension the year selector filters on.
func WithYearDimension(key string) Option {
	return func(c *config) {
		if key != "" {
			c.YearDimension = key
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		XMeasure:      DefaultXMeasure,
		YMeasure:      DefaultYMeasure,
		GroupBy:       DefaultGroupBy,
		YearDimension: DefaultYearDimension,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
