package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/spektr-org/mpgexplorer/dataset"
	"github.com/spektr-org/mpgexplorer/engine"
	"github.com/spektr-org/mpgexplorer/geo"
	"github.com/spektr-org/mpgexplorer/helpers"
	"github.com/spektr-org/mpgexplorer/render"
)

// DefaultBackend is used when a request names none.
const DefaultBackend = "plotly"

var templateFuncs = template.FuncMap{
	"lower": strings.ToLower,
}

// ============================================================================
// REQUEST PARSING
// ============================================================================

// selectionFrom reads year, means and backend query parameters. The means
// overlay is on unless means is No/false/0/off.
func selectionFrom(r *http.Request, backend string) engine.Selection {
	q := r.URL.Query()
	return engine.Selection{
		Year:      engine.ParseYearSelector(strings.TrimSpace(q.Get("year"))),
		ShowMeans: parseShowMeans(q.Get("means")),
		Backend:   backend,
	}
}

func parseShowMeans(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "no", "false", "0", "off":
		return false
	}
	return true
}

func selectionQuery(sel engine.Selection) string {
	means := "Yes"
	if !sel.ShowMeans {
		means = "No"
	}
	return url.Values{"year": {sel.Year.String()}, "means": {means}}.Encode()
}

// table fetches the current dataset, writing a 500 on failure.
func (s *Server) table(w http.ResponseWriter, r *http.Request) (*dataset.Table, bool) {
	t, err := s.tables.Get(r.Context(), s.opts.DataPath)
	if err != nil {
		s.logger.Error("dataset unavailable", zap.String("path", s.opts.DataPath), zap.Error(err))
		http.Error(w, "dataset unavailable: "+err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return t, true
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", zap.Error(err))
	}
}

// ============================================================================
// PAGE
// ============================================================================

type backendTab struct {
	Name   string
	Label  string
	Static bool
	Format string
}

type pageData struct {
	Title        string
	Years        []string
	SelectedYear string
	ShowMeans    bool
	Query        template.URL
	Caption      string
	Dataset      *engine.TableData
	Means        *engine.TableData
	Backends     []backendTab
	MapStyles    []string
	DataPath     string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	t, ok := s.table(w, r)
	if !ok {
		return
	}
	sel := selectionFrom(r, "")
	filtered, means := engine.FilterAndAggregate(t.View, sel.Year, t.Columns.Options()...)

	data := pageData{
		Title:        "MPG Data Explorer",
		Years:        t.Years,
		SelectedYear: sel.Year.String(),
		ShowMeans:    sel.ShowMeans,
		Query:        template.URL(selectionQuery(sel)),
		Caption:      engine.BuildCaption(filtered, means, sel.Year),
		Dataset:      engine.BuildDatasetTable(t.View, "Vehicles"),
		Means:        engine.BuildMeansTable(means),
		MapStyles:    geo.StyleNames(),
		DataPath:     s.opts.DataPath,
	}
	for _, rr := range s.renderers.All() {
		formats := rr.Formats()
		data.Backends = append(data.Backends, backendTab{
			Name:   rr.Name(),
			Label:  rr.Label(),
			Static: formats[0] != render.FormatJSON,
			Format: string(formats[0]),
		})
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		s.logger.Error("render page", zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// ============================================================================
// CHARTS & DATA
// ============================================================================

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	rr, err := s.renderers.Get(r.PathValue("backend"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	t, ok := s.table(w, r)
	if !ok {
		return
	}

	res := t.Execute(selectionFrom(r, rr.Name()), rr.Policy())

	var buf bytes.Buffer
	format, err := render.Render(rr, &buf, res.ChartConfig, render.Format(r.URL.Query().Get("format")))
	if err != nil {
		if errors.Is(err, render.ErrUnsupportedFormat) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.logger.Error("render chart", zap.String("backend", rr.Name()), zap.Error(err))
		http.Error(w, "failed to render chart", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

type renderResponse struct {
	*engine.Result
	Years []string `json:"years"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("backend")
	if name == "" {
		name = DefaultBackend
	}
	rr, err := s.renderers.Get(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	t, ok := s.table(w, r)
	if !ok {
		return
	}
	res := t.Execute(selectionFrom(r, rr.Name()), rr.Policy())
	s.writeJSON(w, renderResponse{Result: res, Years: t.Years})
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	t, ok := s.table(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, map[string][]string{"years": t.Years})
}

type describeResponse struct {
	Year    string                `json:"year"`
	Count   int                   `json:"count"`
	Columns []dataset.ColumnStats `json:"columns"`
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	t, ok := s.table(w, r)
	if !ok {
		return
	}
	sel := selectionFrom(r, "")
	filtered := engine.FilterYear(t.View, t.Columns.Year, sel.Year)
	cols, err := dataset.Describe(filtered)
	if err != nil {
		s.logger.Error("describe dataset", zap.Error(err))
		http.Error(w, "failed to describe dataset", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, describeResponse{Year: sel.Year.String(), Count: filtered.Len(), Columns: cols})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	t, ok := s.table(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, t.Schema)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	t, ok := s.table(w, r)
	if !ok {
		return
	}
	sel := selectionFrom(r, "")
	filtered, means := engine.FilterAndAggregate(t.View, sel.Year, t.Columns.Options()...)

	var buf bytes.Buffer
	if err := helpers.WriteXLSX(&buf, engine.BuildDatasetTable(filtered, "Vehicles"), means); err != nil {
		s.logger.Error("export workbook", zap.Error(err))
		http.Error(w, "failed to export workbook", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("mpg-%s.xlsx", strings.ToLower(sel.Year.String()))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	style := geo.ResolveStyle(r.URL.Query().Get("style"))
	s.writeJSON(w, geo.BuildMapFigure(s.mapPoints, style))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}
