package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/yildizm/DataSum/internal/analyzer"
	"github.com/yildizm/DataSum/internal/chart"
	"github.com/yildizm/DataSum/internal/dashboard"
	"github.com/yildizm/DataSum/internal/dataset"
	"github.com/yildizm/DataSum/internal/export"
	"github.com/yildizm/DataSum/internal/filter"
	"github.com/yildizm/DataSum/internal/formatter"
	"github.com/yildizm/DataSum/internal/monitor"
	"github.com/yildizm/DataSum/internal/session"
)

// Query parameters that are not filters
const (
	paramPreview   = "preview"
	paramDelimiter = "delimiter"
	paramColumns   = "columns"
)

var reservedParams = []string{paramPreview, paramDelimiter, paramColumns}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps pipeline errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, filter.ErrUnknownFilter),
		errors.Is(err, filter.ErrInvalidValue),
		errors.Is(err, export.ErrUnknownColumn):
		return http.StatusBadRequest
	case errors.Is(err, chart.ErrUnsupportedChart), errors.Is(err, chart.ErrEmptyChart):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// analyze computes the request's view from its query string
func (s *Server) analyze(r *http.Request) (*analyzer.Analysis, error) {
	ds := s.data.Load()

	base, err := filter.DefaultState(s.def.Filters)
	if err != nil {
		return nil, err
	}
	state, err := filter.FromQuery(s.def.Filters, base, r.URL.Query(), reservedParams...)
	if err != nil {
		return nil, err
	}
	return session.Compute(r.Context(), ds, s.def, state, s.sessionOptions())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ds := s.data.Load()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"dataset": ds.Name(),
		"rows":    ds.Len(),
	})
}

// DatasetResponse describes the dataset and the dashboard's widgets
type DatasetResponse struct {
	Name    string                `json:"name"`
	Title   string                `json:"title"`
	Rows    int                   `json:"rows"`
	Columns []dataset.Column      `json:"columns"`
	Filters []dashboard.Widget    `json:"filters"`
	Metrics []analyzer.MetricSpec `json:"metrics"`
	Charts  []analyzer.ChartSpec  `json:"charts"`
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	ds := s.data.Load()
	writeJSON(w, http.StatusOK, DatasetResponse{
		Name:    ds.Name(),
		Title:   s.def.Title,
		Rows:    ds.Len(),
		Columns: ds.Columns(),
		Filters: s.def.Widgets(ds),
		Metrics: s.def.Metrics,
		Charts:  s.def.Charts,
	})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	preview := s.cfg.PreviewRows
	if raw := r.URL.Query().Get(paramPreview); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid %s: %q", paramPreview, raw))
			return
		}
		preview = n
	}

	a, err := s.analyze(r)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	var out []byte
	err = s.collector.TrackOperation(monitor.OperationRender, func() error {
		var err error
		out, err = formatter.NewJSONWithPreview(preview).Format(a)
		return err
	})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(out)
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	a, err := s.analyze(r)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rows":        a.Rows,
		"describe":    a.Describe,
		"correlation": a.Correlation,
	})
}

func (s *Server) exportOptions(r *http.Request) (export.Options, error) {
	opts := export.Options{Delimiter: s.cfg.Delimiter}
	q := r.URL.Query()
	if raw := q.Get(paramDelimiter); raw != "" {
		d, err := export.ParseDelimiter(raw)
		if err != nil {
			return opts, fmt.Errorf("%w: %v", filter.ErrInvalidValue, err)
		}
		opts.Delimiter = d
	}
	if raw := q.Get(paramColumns); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				opts.Columns = append(opts.Columns, c)
			}
		}
	}
	return opts, nil
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	opts, err := s.exportOptions(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	a, err := s.analyze(r)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	var buf bytes.Buffer
	err = s.collector.TrackOperation(monitor.OperationExport, func() error {
		return export.Write(&buf, a.View, opts)
	})
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	contentType := "text/csv; charset=utf-8"
	if opts.Delimiter == '\t' {
		contentType = "text/tab-separated-values; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(a.Dataset, opts.Delimiter)))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	opts, err := s.exportOptions(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	a, err := s.analyze(r)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	var buf bytes.Buffer
	err = s.collector.TrackOperation(monitor.OperationExport, func() error {
		return export.WriteXLSX(&buf, a.View, opts)
	})
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	name := strings.TrimSuffix(export.Filename(a.Dataset, ','), ".csv") + ".xlsx"
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	format, err := chart.FormatFromPath(file)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	name := strings.TrimSuffix(file, path.Ext(file))

	a, err := s.analyze(r)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	c, ok := a.Chart(name)
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("unknown chart: %s", name))
		return
	}

	var buf bytes.Buffer
	err = s.collector.TrackOperation(monitor.OperationRender, func() error {
		return chart.RenderImage(&buf, c, format, s.cfg.Image)
	})
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	a, err := s.analyze(r)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	var page []byte
	err = s.collector.TrackOperation(monitor.OperationRender, func() error {
		md, err := formatter.NewMarkdown().Format(a)
		if err != nil {
			return err
		}
		page = renderHTML(md, a.Title)
		return nil
	})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// renderHTML turns a markdown report into a complete HTML page
func renderHTML(md []byte, title string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: title,
		Flags: html.CommonFlags | html.CompletePage | html.HrefTargetBlank,
	})
	return markdown.ToHTML(md, p, renderer)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	report := monitor.NewReportGenerator(s.collector).GenerateReport(time.Hour)
	writeJSON(w, http.StatusOK, report)
}
