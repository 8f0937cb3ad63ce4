package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yildizm/DataSum/internal/chart"
	"github.com/yildizm/DataSum/internal/config"
	"github.com/yildizm/DataSum/internal/dashboard"
	"github.com/yildizm/DataSum/internal/dataset"
	"github.com/yildizm/DataSum/internal/dataset/source"
	"github.com/yildizm/DataSum/internal/export"
	"github.com/yildizm/DataSum/internal/filter"
	"github.com/yildizm/DataSum/internal/logger"
	"github.com/yildizm/DataSum/internal/monitor"
	"github.com/yildizm/DataSum/internal/session"
)

// sourceFlags are the flags every dataset-reading command shares
type sourceFlags struct {
	maxRows int
	sheet   string
	timeout time.Duration
	filters []string
}

func (f *sourceFlags) register(cmd *cobra.Command, withFilters bool) {
	cmd.Flags().IntVar(&f.maxRows, "max-rows", 0, "stop reading after this many records (0 = no limit)")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "spreadsheet tab for .xlsx sources")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "dataset load timeout")
	if withFilters {
		cmd.Flags().StringArrayVarP(&f.filters, "filter", "f", nil, "filter assignment name=value (repeatable)")
	}
}

// app bundles what a command needs to load and analyze a dataset
type app struct {
	cfg       *config.Config
	collector *monitor.MetricsCollector
	log       *logger.Logger
	flags     *sourceFlags

	// def is the definition file named by --dashboard or the config
	def       *dashboard.Definition
	defLoaded bool
}

func newApp(flags *sourceFlags) *app {
	if flags == nil {
		flags = &sourceFlags{}
	}
	return &app{
		cfg:       GetGlobalConfig(),
		collector: monitor.New(),
		log:       newLogger("cli"),
		flags:     flags,
	}
}

// definitionFile loads the dashboard named by --dashboard or the config,
// once. It returns nil when neither names one.
func (a *app) definitionFile() (*dashboard.Definition, error) {
	if a.defLoaded {
		return a.def, nil
	}
	path := dashboardPath
	if path == "" {
		path = a.cfg.Dashboard.Path
	}
	if path != "" {
		def, err := dashboard.Load(path)
		if err != nil {
			return nil, err
		}
		a.def = def
	}
	a.defLoaded = true
	return a.def, nil
}

// sourceURI picks the dataset: the argument, the definition file's source,
// the configured source or the built-in sample
func (a *app) sourceURI(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	if def, err := a.definitionFile(); err == nil && def != nil && def.Source != "" {
		return def.Source
	}
	if a.cfg.Dataset.Source != "" {
		return a.cfg.Dataset.Source
	}
	return source.SampleURI
}

func (a *app) sourceOptions() source.Options {
	opts := source.Options{
		MaxRows: a.cfg.Dataset.MaxRows,
		Sheet:   a.cfg.Dataset.Sheet,
		Stdin:   os.Stdin,
	}
	if a.flags.maxRows > 0 {
		opts.MaxRows = a.flags.maxRows
	}
	if a.flags.sheet != "" {
		opts.Sheet = a.flags.sheet
	}
	if a.def != nil {
		opts.Overrides = a.def.Kinds
	}
	return opts
}

// open loads uri within the configured timeout
func (a *app) open(ctx context.Context, uri string) (*dataset.Dataset, error) {
	timeout := a.cfg.Dataset.Timeout
	if a.flags.timeout > 0 {
		timeout = a.flags.timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if _, err := a.definitionFile(); err != nil {
		return nil, err
	}

	var ds *dataset.Dataset
	err := a.collector.TrackOperation(monitor.OperationLoad, func() error {
		var err error
		ds, err = source.Open(ctx, uri, a.sourceOptions())
		return err
	})
	if err != nil {
		return nil, err
	}
	a.log.DebugWithFields("dataset loaded", []logger.Field{
		logger.F("source", uri),
		logger.Count(ds.Len()),
	})
	return ds, nil
}

// definition returns the definition file, or picks one for the dataset
func (a *app) definition(ds *dataset.Dataset) (*dashboard.Definition, error) {
	def, err := a.definitionFile()
	if err != nil {
		return nil, err
	}
	return dashboard.Resolve(def, ds), nil
}

func (a *app) sessionOptions() session.Options {
	return session.Options{
		HistogramBins: a.cfg.Charts.HistogramBins,
		Collector:     a.collector,
		Logger:        a.log,
	}
}

// session opens the dataset and starts a session with --filter applied
func (a *app) session(ctx context.Context, args []string) (*session.Session, error) {
	ds, err := a.open(ctx, a.sourceURI(args))
	if err != nil {
		return nil, err
	}
	return a.sessionFor(ctx, ds)
}

func (a *app) sessionFor(ctx context.Context, ds *dataset.Dataset) (*session.Session, error) {
	def, err := a.definition(ds)
	if err != nil {
		return nil, err
	}
	sess, err := session.New(ctx, ds, def, a.sessionOptions())
	if err != nil {
		return nil, err
	}
	if len(a.flags.filters) == 0 {
		return sess, nil
	}

	state, err := filter.ParseAssignments(def.Filters, sess.State(), a.flags.filters)
	if err != nil {
		return nil, err
	}
	if _, err := sess.Replace(ctx, state); err != nil {
		return nil, err
	}
	return sess, nil
}

func (a *app) delimiter() (rune, error) {
	return export.ParseDelimiter(a.cfg.Output.Delimiter)
}

func (a *app) textChartOptions() chart.TextOptions {
	opts := chart.DefaultTextOptions()
	if a.cfg.Charts.TerminalWidth > 0 {
		opts.Width = a.cfg.Charts.TerminalWidth
	}
	if a.cfg.Charts.MaxCategories > 0 {
		opts.MaxCategories = a.cfg.Charts.MaxCategories
	}
	opts.Color = colorEnabled()
	return opts
}

// finish prints the operation timings when --profile is set
func (a *app) finish() {
	if !profile {
		return
	}
	if err := writeProfile(os.Stderr, a.collector); err != nil {
		a.log.Warn("failed to write profile: %v", err)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func requireFile(uri, action string) error {
	if !source.IsFile(uri) {
		return fmt.Errorf("cannot %s %s: not a local file", action, uri)
	}
	return nil
}
