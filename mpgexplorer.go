// Package mpgexplorer is an MPG dashboard: a scatter of engine displacement
// against highway mileage, filterable by model year, with an optional
// overlay of per-class means.
//
// Usage:
//
//	table, err := dataset.Load("data/mpg.csv", dataset.DefaultColumns())
//	res := table.Execute(engine.Selection{
//	    Year:      engine.YearOf("2008"),
//	    ShowMeans: true,
//	}, render.GonumPolicy)
//	_, err = render.Render(render.Gonum{}, w, res.ChartConfig, render.FormatPNG)
//
// The engine is pure: it filters, averages and builds a backend-neutral
// chart description. Packages render (Plotly, gonum/plot, go-chart), server
// (HTTP dashboard) and cmd/mpgexplorer (CLI) sit on top of it.
package mpgexplorer
