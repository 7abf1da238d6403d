package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spektr-org/mpgexplorer/dataset"
	"github.com/spektr-org/mpgexplorer/engine"
	"github.com/spektr-org/mpgexplorer/render"
)

var (
	renderBackend string
	renderYear    string
	renderMeans   bool
	renderFormat  string
	renderOut     string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the scatter chart with one backend or all of them",
	Long: `Renders displacement vs highway mileage for the selected year.

With --backend all every registered backend renders concurrently into the
--out directory, each in its default format, as <backend>-<year>.<ext>.

Example:
  mpgexplorer render --backend gonum --year 2008 --format svg -o chart.svg
  mpgexplorer render --backend all --means=false -o charts/`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func runRender(cmd *cobra.Command, args []string) error {
	table, err := loadTable()
	if err != nil {
		return err
	}

	registry := render.Default()
	sel := engine.Selection{
		Year:      engine.ParseYearSelector(renderYear),
		ShowMeans: renderMeans,
	}

	if strings.EqualFold(renderBackend, "all") {
		return renderAll(commandContext(cmd), table, registry, sel, renderOut)
	}

	rr, err := registry.Get(renderBackend)
	if err != nil {
		return err
	}
	if renderOut == "" || renderOut == "-" {
		_, err := renderChart(cmd.OutOrStdout(), table, rr, sel, render.Format(renderFormat))
		return err
	}
	return renderToFile(renderOut, table, rr, sel, render.Format(renderFormat))
}

func renderChart(w io.Writer, table *dataset.Table, rr render.Renderer, sel engine.Selection, format render.Format) (render.Format, error) {
	sel.Backend = rr.Name()
	res := table.Execute(sel, rr.Policy())
	return render.Render(rr, w, res.ChartConfig, format)
}

func renderToFile(path string, table *dataset.Table, rr render.Renderer, sel engine.Selection, format render.Format) error {
	var buf bytes.Buffer
	if _, err := renderChart(&buf, table, rr, sel, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	logger.Info("chart written",
		zap.String("backend", rr.Name()),
		zap.String("year", sel.Year.String()),
		zap.String("path", path),
		zap.Int("bytes", buf.Len()))
	return nil
}

// renderAll renders every backend concurrently into dir. The first failure
// cancels the rest.
func renderAll(ctx context.Context, table *dataset.Table, registry *render.Registry, sel engine.Selection, dir string) error {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, rr := range registry.All() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			format, err := render.ResolveFormat(rr, "")
			if err != nil {
				return err
			}
			name := fmt.Sprintf("%s-%s.%s", rr.Name(), strings.ToLower(sel.Year.String()), format)
			return renderToFile(filepath.Join(dir, name), table, rr, sel, format)
		})
	}
	return g.Wait()
}
