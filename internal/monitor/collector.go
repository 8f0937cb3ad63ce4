package monitor

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrBufferFull is returned when a custom metric cannot be queued
var ErrBufferFull = errors.New("metric buffer is full")

// Collector interface for collecting metrics
type Collector interface {
	// Start begins periodic runtime sampling
	Start(ctx context.Context) error

	// Stop stops sampling and drains queued metrics
	Stop() error

	// TrackOperation times fn and records its outcome under operation
	TrackOperation(operation OperationType, fn func() error) error

	// RecordMetric records a custom metric
	RecordMetric(metric *Metric) error

	// GetSnapshot returns a current metrics snapshot
	GetSnapshot() MetricsSnapshot

	// IsRunning returns true if the collector is actively sampling
	IsRunning() bool
}

// MonitorConfig holds configuration for the monitor
type MonitorConfig struct {
	// CollectionInterval is how often runtime metrics are sampled
	CollectionInterval time.Duration

	// RetentionPeriod is how long to keep sampled data
	RetentionPeriod time.Duration

	// MaxDataPoints is the maximum number of data points per series
	MaxDataPoints int

	// BufferSize is the size of the metric collection buffer
	BufferSize int

	// EnableMemoryMetrics enables memory sampling
	EnableMemoryMetrics bool
}

// DefaultConfig returns a default monitor configuration
func DefaultConfig() MonitorConfig {
	return MonitorConfig{
		CollectionInterval:  5 * time.Second,
		RetentionPeriod:     1 * time.Hour,
		MaxDataPoints:       1000,
		BufferSize:          100,
		EnableMemoryMetrics: true,
	}
}

// MetricsCollector implements the Collector interface
type MetricsCollector struct {
	config          MonitorConfig
	store           *MetricsStore
	prom            *promMetrics
	operationTimers map[OperationType]*Timer
	records         *Counter
	viewRows        *Gauge
	metricBuffer    chan Metric
	started         time.Time

	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mutex   sync.RWMutex
}

// New creates a new metrics collector with default configuration
func New() *MetricsCollector {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a new metrics collector with custom configuration
func NewWithConfig(config MonitorConfig) *MetricsCollector {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultConfig().BufferSize
	}
	if config.CollectionInterval <= 0 {
		config.CollectionInterval = DefaultConfig().CollectionInterval
	}

	timers := make(map[OperationType]*Timer)
	for _, op := range Operations() {
		timers[op] = NewTimer(string(op))
	}

	return &MetricsCollector{
		config:          config,
		store:           NewMetricsStore(config.RetentionPeriod, config.MaxDataPoints),
		prom:            newPromMetrics(),
		operationTimers: timers,
		records:         NewCounter("records_processed"),
		viewRows:        NewGauge("view_rows"),
		started:         time.Now(),
	}
}

// Start begins periodic runtime sampling
func (mc *MetricsCollector) Start(ctx context.Context) error {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	if mc.running {
		return nil
	}

	ctx, mc.cancel = context.WithCancel(ctx)
	mc.metricBuffer = make(chan Metric, mc.config.BufferSize)
	mc.running = true

	mc.wg.Add(2)
	go mc.collectSystemMetrics(ctx)
	go mc.processMetricBuffer(mc.metricBuffer)

	return nil
}

// Stop stops sampling and waits for the background goroutines
func (mc *MetricsCollector) Stop() error {
	mc.mutex.Lock()
	if !mc.running {
		mc.mutex.Unlock()
		return nil
	}
	mc.running = false
	mc.cancel()
	close(mc.metricBuffer)
	mc.mutex.Unlock()

	mc.wg.Wait()
	return nil
}

// IsRunning returns true if the collector is actively sampling
func (mc *MetricsCollector) IsRunning() bool {
	mc.mutex.RLock()
	defer mc.mutex.RUnlock()
	return mc.running
}

func (mc *MetricsCollector) collectSystemMetrics(ctx context.Context) {
	defer mc.wg.Done()

	ticker := time.NewTicker(mc.config.CollectionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mc.collectAndRecord()
		}
	}
}

func (mc *MetricsCollector) collectAndRecord() {
	now := time.Now()

	rt := collectRuntime()
	metrics := []Metric{
		{Name: "runtime.goroutines", Type: MetricTypeGauge, Value: float64(rt.Goroutines), Timestamp: now},
		{Name: "view.rows", Type: MetricTypeGauge, Value: mc.viewRows.Get(), Timestamp: now},
	}

	if mc.config.EnableMemoryMetrics {
		mem := collectMemory()
		metrics = append(metrics,
			Metric{Name: "memory.heap_alloc", Type: MetricTypeGauge, Value: float64(mem.HeapAlloc), Timestamp: now},
			Metric{Name: "memory.sys", Type: MetricTypeGauge, Value: float64(mem.Sys), Timestamp: now},
			Metric{Name: "memory.num_gc", Type: MetricTypeCounter, Value: float64(mem.NumGC), Timestamp: now},
		)
	}

	for i := range metrics {
		mc.enqueue(&metrics[i])
	}

	mc.store.Prune()
}

func (mc *MetricsCollector) processMetricBuffer(buffer <-chan Metric) {
	defer mc.wg.Done()

	for metric := range buffer {
		mc.store.Record(&metric)
	}
}

// enqueue hands a metric to the background writer, or records it directly
// when the collector is not running. It reports false when the buffer is full.
func (mc *MetricsCollector) enqueue(metric *Metric) bool {
	mc.mutex.RLock()
	defer mc.mutex.RUnlock()

	if !mc.running {
		mc.store.Record(metric)
		return true
	}

	select {
	case mc.metricBuffer <- *metric:
		return true
	default:
		return false
	}
}

// TrackOperation times fn and records its duration and outcome
func (mc *MetricsCollector) TrackOperation(operation OperationType, fn func() error) error {
	start := time.Now()
	err := fn()
	duration := time.Since(start)

	if timer, ok := mc.operationTimers[operation]; ok {
		timer.Record(duration, err != nil)
	}
	mc.prom.observe(operation, duration, err)

	status := "success"
	if err != nil {
		status = "error"
	}
	mc.enqueue(&Metric{
		Name:      "operation.duration",
		Type:      MetricTypeTiming,
		Value:     float64(duration.Nanoseconds()),
		Timestamp: start,
		Labels:    map[string]string{"operation": string(operation), "status": status},
	})

	return err
}

// RecordMetric records a custom metric
func (mc *MetricsCollector) RecordMetric(metric *Metric) error {
	if metric.Timestamp.IsZero() {
		metric.Timestamp = time.Now()
	}
	if !mc.enqueue(metric) {
		return ErrBufferFull
	}
	return nil
}

// RecordView notes a filter pass that scanned scanned records and kept rows
func (mc *MetricsCollector) RecordView(scanned, rows int) {
	mc.records.Add(int64(scanned))
	mc.viewRows.Set(float64(rows))
	mc.prom.recordsProcessed.Add(float64(scanned))
	mc.prom.viewRows.Set(float64(rows))
}

// GetSnapshot returns a current metrics snapshot
func (mc *MetricsCollector) GetSnapshot() MetricsSnapshot {
	now := time.Now()
	snapshot := MetricsSnapshot{
		Timestamp:        now,
		Uptime:           now.Sub(mc.started),
		Runtime:          collectRuntime(),
		RecordsProcessed: mc.records.Get(),
		ViewRows:         mc.viewRows.Get(),
	}
	if mc.config.EnableMemoryMetrics {
		snapshot.Memory = collectMemory()
	}

	for _, op := range Operations() {
		snapshot.Operations = append(snapshot.Operations, mc.operationTimers[op].Metrics(op))
	}

	return snapshot
}

// GetStore returns the metrics store for advanced queries
func (mc *MetricsCollector) GetStore() *MetricsStore {
	return mc.store
}
