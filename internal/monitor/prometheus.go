package monitor

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "datasum"

// promMetrics mirrors the collector's timers as Prometheus series
type promMetrics struct {
	registry          *prometheus.Registry
	operationDuration *prometheus.HistogramVec
	operationsTotal   *prometheus.CounterVec
	recordsProcessed  prometheus.Counter
	viewRows          prometheus.Gauge
}

func newPromMetrics() *promMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &promMetrics{
		registry: reg,
		operationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of load, filter, analyze, render and export operations",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"operation"}),
		operationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Operations run, by outcome",
		}, []string{"operation", "status"}),
		recordsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_processed_total",
			Help:      "Records scanned by the filter evaluator",
		}),
		viewRows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "view_rows",
			Help:      "Rows in the most recently computed filtered view",
		}),
	}
}

func (pm *promMetrics) observe(op OperationType, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	pm.operationDuration.WithLabelValues(string(op)).Observe(d.Seconds())
	pm.operationsTotal.WithLabelValues(string(op), status).Inc()
}

// Registry returns the registry holding the collector's series; callers may
// register their own metrics on it
func (mc *MetricsCollector) Registry() *prometheus.Registry {
	return mc.prom.registry
}

// Handler serves the registry in the Prometheus exposition format
func (mc *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(mc.prom.registry, promhttp.HandlerOpts{Registry: mc.prom.registry})
}
