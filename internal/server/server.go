// Package server exposes a dashboard over HTTP. Every request builds its
// own filter state from the query string and computes its own view of the
// shared, read-only dataset.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/yildizm/DataSum/internal/chart"
	"github.com/yildizm/DataSum/internal/dashboard"
	"github.com/yildizm/DataSum/internal/dataset"
	"github.com/yildizm/DataSum/internal/logger"
	"github.com/yildizm/DataSum/internal/monitor"
	"github.com/yildizm/DataSum/internal/session"
	"github.com/yildizm/DataSum/internal/watch"
)

const shutdownTimeout = 5 * time.Second

// Config holds server settings
type Config struct {
	Addr          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	PreviewRows   int
	HistogramBins int
	Image         chart.ImageOptions
	Delimiter     rune
}

// Loader loads the dataset again after its source changed
type Loader func(ctx context.Context) (*dataset.Dataset, error)

// Server serves one dashboard definition over a swappable dataset
type Server struct {
	cfg       Config
	def       *dashboard.Definition
	data      atomic.Pointer[dataset.Dataset]
	collector *monitor.MetricsCollector
	log       *logger.Logger
	router    *chi.Mux
	requests  *prometheus.CounterVec
	reloads   prometheus.Counter
}

// New validates def against ds and builds the router
func New(ds *dataset.Dataset, def *dashboard.Definition, cfg Config, collector *monitor.MetricsCollector, log *logger.Logger) (*Server, error) {
	if err := def.Validate(ds); err != nil {
		return nil, err
	}
	if collector == nil {
		collector = monitor.New()
	}
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Image.Width == 0 || cfg.Image.Height == 0 {
		cfg.Image = chart.DefaultImageOptions()
	}

	factory := promauto.With(collector.Registry())
	s := &Server{
		cfg:       cfg,
		def:       def,
		collector: collector,
		log:       log,
		router:    chi.NewRouter(),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "datasum",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		reloads: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "datasum",
			Name:      "dataset_reloads_total",
			Help:      "Successful dataset reloads",
		}),
	}
	s.data.Store(ds)

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.countRequests)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/", s.handleReport)
	s.router.Get("/report", s.handleReport)
	s.router.Get("/export.csv", s.handleExportCSV)
	s.router.Get("/export.xlsx", s.handleExportXLSX)
	s.router.Get("/charts/{file}", s.handleChart)
	s.router.Method(http.MethodGet, "/metrics", s.collector.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/dataset", s.handleDataset)
		r.Get("/view", s.handleView)
		r.Get("/describe", s.handleDescribe)
		r.Get("/stats", s.handleStats)
	})
}

// countRequests records every response under its route pattern
func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.requests.WithLabelValues(route, fmt.Sprint(status)).Inc()
	})
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Dataset returns the dataset new requests will read
func (s *Server) Dataset() *dataset.Dataset {
	return s.data.Load()
}

// Swap replaces the dataset. The new dataset must still satisfy the
// definition; otherwise the current one is kept. Requests already running
// keep the dataset they started with.
func (s *Server) Swap(ds *dataset.Dataset) error {
	if err := s.def.Validate(ds); err != nil {
		return fmt.Errorf("reloaded dataset no longer fits the dashboard: %w", err)
	}
	s.data.Store(ds)
	s.reloads.Inc()
	s.log.Info("dataset swapped: %d records", ds.Len())
	return nil
}

func (s *Server) sessionOptions() session.Options {
	return session.Options{
		HistogramBins: s.cfg.HistogramBins,
		Collector:     s.collector,
		Logger:        s.log,
	}
}

// Run serves until ctx is cancelled. When watcher is set, the dataset is
// reloaded with load whenever the watched file changes.
func (s *Server) Run(ctx context.Context, watcher *watch.Watcher, load Loader) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("listening on %s", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if watcher != nil && load != nil {
		g.Go(func() error {
			return watcher.Run(gctx, func(ctx context.Context) error {
				var ds *dataset.Dataset
				err := s.collector.TrackOperation(monitor.OperationLoad, func() error {
					var err error
					ds, err = load(ctx)
					return err
				})
				if err != nil {
					return err
				}
				return s.Swap(ds)
			})
		})
	}

	return g.Wait()
}
