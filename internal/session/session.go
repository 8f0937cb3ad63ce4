// Package session holds one user's dashboard state: the shared dataset,
// the dashboard definition and the current filter state. Every change
// replaces the filter state and recomputes the view and its analysis.
package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/yildizm/DataSum/internal/analyzer"
	"github.com/yildizm/DataSum/internal/dashboard"
	"github.com/yildizm/DataSum/internal/dataset"
	"github.com/yildizm/DataSum/internal/export"
	"github.com/yildizm/DataSum/internal/filter"
	"github.com/yildizm/DataSum/internal/logger"
	"github.com/yildizm/DataSum/internal/monitor"
)

// Options configures the recompute pipeline
type Options struct {
	// HistogramBins is used by histograms that do not set their own
	HistogramBins int

	// Collector times filter/analyze/export; nil disables tracking
	Collector *monitor.MetricsCollector

	// Logger receives debug output; nil discards it
	Logger *logger.Logger
}

func (o Options) log() *logger.Logger {
	if o.Logger == nil {
		return logger.Nop()
	}
	return o.Logger
}

func (o Options) track(op monitor.OperationType, fn func() error) error {
	if o.Collector == nil {
		return fn()
	}
	return o.Collector.TrackOperation(op, fn)
}

// Compute derives the filtered view of ds under state and analyzes it
// with def's metrics and charts. It has no side effects beyond metrics.
func Compute(ctx context.Context, ds *dataset.Dataset, def *dashboard.Definition, state filter.State, opts Options) (*analyzer.Analysis, error) {
	var view dataset.View
	_ = opts.track(monitor.OperationFilter, func() error {
		view = filter.Evaluate(ds, state)
		return nil
	})
	if opts.Collector != nil {
		opts.Collector.RecordView(ds.Len(), view.Len())
	}

	engine := def.NewEngine(opts.HistogramBins)
	engine.SetFilters(state.Describe())

	var analysis *analyzer.Analysis
	err := opts.track(monitor.OperationAnalyze, func() error {
		var err error
		analysis, err = engine.Analyze(ctx, view)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to analyze view: %w", err)
	}

	opts.log().DebugWithFields("view recomputed", []logger.Field{
		logger.F("rows", view.Len()),
		logger.F("filters", len(state.Active())),
		logger.Duration(analysis.Duration),
	})
	return analysis, nil
}

// Session is the state holder behind one dashboard. It is not safe for
// concurrent use; the dataset it reads is shared read-only.
type Session struct {
	id       string
	ds       *dataset.Dataset
	def      *dashboard.Definition
	opts     Options
	initial  filter.State
	state    filter.State
	analysis *analyzer.Analysis
}

// New validates def against ds, builds the default filter state and
// computes the first view
func New(ctx context.Context, ds *dataset.Dataset, def *dashboard.Definition, opts Options) (*Session, error) {
	if err := def.Validate(ds); err != nil {
		return nil, err
	}
	initial, err := filter.DefaultState(def.Filters)
	if err != nil {
		return nil, fmt.Errorf("invalid filter default: %w", err)
	}

	s := &Session{
		id:      uuid.NewString(),
		ds:      ds,
		def:     def,
		opts:    opts,
		initial: initial,
	}
	if err := s.replace(ctx, initial); err != nil {
		return nil, err
	}
	opts.log().Debug("session %s started on %s (%d records)", s.id, ds.Name(), ds.Len())
	return s, nil
}

// ID returns the session's unique id
func (s *Session) ID() string { return s.id }

// Dataset returns the shared dataset
func (s *Session) Dataset() *dataset.Dataset { return s.ds }

// Definition returns the dashboard definition
func (s *Session) Definition() *dashboard.Definition { return s.def }

// State returns the current filter state
func (s *Session) State() filter.State { return s.state }

// Analysis returns the analysis of the current view
func (s *Session) Analysis() *analyzer.Analysis { return s.analysis }

// View returns the current filtered view
func (s *Session) View() dataset.View { return s.analysis.View }

// Apply sets one filter and recomputes
func (s *Session) Apply(ctx context.Context, name string, p filter.Predicate) (*analyzer.Analysis, error) {
	if _, ok := s.def.Filter(name); !ok {
		return nil, fmt.Errorf("%w: %s", filter.ErrUnknownFilter, name)
	}
	if err := s.replace(ctx, s.state.With(name, p)); err != nil {
		return nil, err
	}
	return s.analysis, nil
}

// Set parses raw with the named filter's spec and applies it
func (s *Session) Set(ctx context.Context, name, raw string) (*analyzer.Analysis, error) {
	sp, ok := s.def.Filter(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", filter.ErrUnknownFilter, name)
	}
	p, err := sp.Parse(raw)
	if err != nil {
		return nil, err
	}
	return s.Apply(ctx, name, p)
}

// Replace swaps in a whole new filter state. Filters missing from state
// keep their defaults.
func (s *Session) Replace(ctx context.Context, state filter.State) (*analyzer.Analysis, error) {
	next := s.initial
	for _, name := range state.Names() {
		if _, ok := s.def.Filter(name); !ok {
			return nil, fmt.Errorf("%w: %s", filter.ErrUnknownFilter, name)
		}
		p, _ := state.Get(name)
		next = next.With(name, p)
	}
	if err := s.replace(ctx, next); err != nil {
		return nil, err
	}
	return s.analysis, nil
}

// Reset restores every filter to its default
func (s *Session) Reset(ctx context.Context) (*analyzer.Analysis, error) {
	if err := s.replace(ctx, s.initial); err != nil {
		return nil, err
	}
	return s.analysis, nil
}

func (s *Session) replace(ctx context.Context, state filter.State) error {
	analysis, err := Compute(ctx, s.ds, s.def, state, s.opts)
	if err != nil {
		return err
	}
	s.state = state
	s.analysis = analysis
	return nil
}

// Export writes the current view as delimited text
func (s *Session) Export(w io.Writer, opts export.Options) error {
	return s.opts.track(monitor.OperationExport, func() error {
		return export.Write(w, s.View(), opts)
	})
}

// ExportFile writes the current view into dir under the default export
// file name and returns the path written
func (s *Session) ExportFile(dir string, delim rune) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, export.Filename(s.ds.Name(), delim))
	f, err := os.Create(path) // #nosec G304 -- path is built from the configured export dir
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}

	if err := s.Export(f, export.Options{Delimiter: delim}); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close export file: %w", err)
	}

	s.opts.log().Info("exported %d records to %s", s.View().Len(), path)
	return path, nil
}
