// Package dataset loads the vehicle CSV into an engine view and keeps it
// cached between requests.
package dataset

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spektr-org/mpgexplorer/engine"
	"github.com/spektr-org/mpgexplorer/helpers"
	"github.com/spektr-org/mpgexplorer/schema"
)

// Columns names the columns the dashboard reads.
type Columns struct {
	X     string `yaml:"x"`
	Y     string `yaml:"y"`
	Group string `yaml:"group"`
	Year  string `yaml:"year"`
}

// DefaultColumns returns the Auto MPG column names.
func DefaultColumns() Columns {
	return Columns{
		X:     engine.DefaultXMeasure,
		Y:     engine.DefaultYMeasure,
		Group: engine.DefaultGroupBy,
		Year:  engine.DefaultYearDimension,
	}
}

// withDefaults fills blank names from DefaultColumns.
func (c Columns) withDefaults() Columns {
	d := DefaultColumns()
	if c.X == "" {
		c.X = d.X
	}
	if c.Y == "" {
		c.Y = d.Y
	}
	if c.Group == "" {
		c.Group = d.Group
	}
	if c.Year == "" {
		c.Year = d.Year
	}
	return c
}

// Options converts the column names into engine options.
func (c Columns) Options() []engine.Option {
	c = c.withDefaults()
	return []engine.Option{
		engine.WithXMeasure(c.X),
		engine.WithYMeasure(c.Y),
		engine.WithGroupBy(c.Group),
		engine.WithYearDimension(c.Year),
	}
}

// Table is one loaded dataset. It is read-only once returned.
type Table struct {
	Path    string
	ModTime time.Time
	Columns Columns
	Schema  *schema.Config
	View    engine.RecordView
	Years   []string
}

// Len returns the number of vehicles.
func (t *Table) Len() int { return t.View.Len() }

// Execute runs the pipeline and chart build for one selection.
func (t *Table) Execute(sel engine.Selection, policy engine.ChartPolicy) *engine.Result {
	return engine.Execute(t.View, sel, policy, t.Columns.Options()...)
}

// Load reads the CSV at path, discovers its schema and checks that the
// configured columns are present.
func Load(path string, cols Columns) (*Table, error) {
	cols = cols.withDefaults()

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat dataset %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}

	headers, rows, err := helpers.ReadCSV(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	sch, err := schema.Discover(headers, rows, schema.DiscoverOptions{Name: name})
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}

	required := []string{cols.X, cols.Y, cols.Group, cols.Year}
	if err := sch.Validate(required, []string{cols.X, cols.Y}); err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}

	view := helpers.NewView(helpers.BuildRecords(rows, *sch), *sch)
	return &Table{
		Path:    path,
		ModTime: info.ModTime(),
		Columns: cols,
		Schema:  sch,
		View:    view,
		Years:   engine.YearOptions(view, cols.Year),
	}, nil
}
