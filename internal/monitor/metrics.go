package monitor

import (
	"math"
	"runtime"
	"sync/atomic"
	"time"
)

// MetricType represents the type of metric being collected
type MetricType string

const (
	MetricTypeCounter MetricType = "counter"
	MetricTypeGauge   MetricType = "gauge"
	MetricTypeTiming  MetricType = "timing"
)

// OperationType names a stage of the filter/recompute loop
type OperationType string

const (
	OperationLoad    OperationType = "load"
	OperationFilter  OperationType = "filter"
	OperationAnalyze OperationType = "analyze"
	OperationRender  OperationType = "render"
	OperationExport  OperationType = "export"
)

// Operations lists every tracked operation in pipeline order
func Operations() []OperationType {
	return []OperationType{
		OperationLoad, OperationFilter, OperationAnalyze, OperationRender, OperationExport,
	}
}

// Metric represents a single metric data point
type Metric struct {
	Name      string            `json:"name"`
	Type      MetricType        `json:"type"`
	Value     float64           `json:"value"`
	Timestamp time.Time         `json:"timestamp"`
	Labels    map[string]string `json:"labels,omitempty"`
}

// MemoryMetrics holds memory-related performance metrics
type MemoryMetrics struct {
	HeapAlloc    uint64 `json:"heap_alloc"`     // bytes allocated in heap
	HeapInuse    uint64 `json:"heap_inuse"`     // bytes in in-use spans
	Sys          uint64 `json:"sys"`            // total bytes from system
	NumGC        uint32 `json:"num_gc"`         // number of garbage collections
	PauseTotalNs uint64 `json:"pause_total_ns"` // total GC pause time
}

// RuntimeMetrics holds scheduler metrics
type RuntimeMetrics struct {
	Goroutines int `json:"goroutines"`
	NumCPU     int `json:"num_cpu"`
}

// OperationMetrics holds timings for one operation
type OperationMetrics struct {
	Operation OperationType `json:"operation"`
	Count     int64         `json:"count"`
	Errors    int64         `json:"errors"`
	TotalTime int64         `json:"total_time_ns"`
	MinTime   int64         `json:"min_time_ns"`
	MaxTime   int64         `json:"max_time_ns"`
	LastTime  int64         `json:"last_time_ns"`
}

// AvgTime returns the mean duration, zero before the first run
func (om OperationMetrics) AvgTime() time.Duration {
	if om.Count == 0 {
		return 0
	}
	return time.Duration(om.TotalTime / om.Count)
}

// MetricsSnapshot represents a point-in-time snapshot of all metrics
type MetricsSnapshot struct {
	Timestamp        time.Time          `json:"timestamp"`
	Uptime           time.Duration      `json:"uptime_ns"`
	Memory           MemoryMetrics      `json:"memory"`
	Runtime          RuntimeMetrics     `json:"runtime"`
	RecordsProcessed int64              `json:"records_processed"`
	ViewRows         float64            `json:"view_rows"`
	Operations       []OperationMetrics `json:"operations"`
}

// Operation returns the metrics of op from the snapshot
func (s MetricsSnapshot) Operation(op OperationType) (OperationMetrics, bool) {
	for _, om := range s.Operations {
		if om.Operation == op {
			return om, true
		}
	}
	return OperationMetrics{}, false
}

// Counter is a thread-safe counter metric
type Counter struct {
	value int64
	name  string
}

// NewCounter creates a new counter metric
func NewCounter(name string) *Counter {
	return &Counter{name: name}
}

// Inc increments the counter by 1
func (c *Counter) Inc() {
	atomic.AddInt64(&c.value, 1)
}

// Add adds the given value to the counter
func (c *Counter) Add(value int64) {
	atomic.AddInt64(&c.value, value)
}

// Get returns the current counter value
func (c *Counter) Get() int64 {
	return atomic.LoadInt64(&c.value)
}

// Reset resets the counter to 0
func (c *Counter) Reset() {
	atomic.StoreInt64(&c.value, 0)
}

// Name returns the counter name
func (c *Counter) Name() string {
	return c.name
}

// Gauge is a thread-safe gauge metric that can go up and down
type Gauge struct {
	value uint64 // float64 bits
	name  string
}

// NewGauge creates a new gauge metric
func NewGauge(name string) *Gauge {
	return &Gauge{name: name}
}

// Set sets the gauge to the given value
func (g *Gauge) Set(value float64) {
	atomic.StoreUint64(&g.value, math.Float64bits(value))
}

// Get returns the current gauge value
func (g *Gauge) Get() float64 {
	return math.Float64frombits(atomic.LoadUint64(&g.value))
}

// Name returns the gauge name
func (g *Gauge) Name() string {
	return g.name
}

const unsetMin = int64(^uint64(0) >> 1)

// Timer is a thread-safe timer for measuring operation durations
type Timer struct {
	count     int64
	errors    int64
	totalTime int64
	minTime   int64
	maxTime   int64
	lastTime  int64
	name      string
}

// NewTimer creates a new timer metric
func NewTimer(name string) *Timer {
	return &Timer{name: name, minTime: unsetMin}
}

// Record records a duration measurement
func (t *Timer) Record(duration time.Duration, failed bool) {
	nanos := duration.Nanoseconds()

	atomic.AddInt64(&t.count, 1)
	atomic.AddInt64(&t.totalTime, nanos)
	atomic.StoreInt64(&t.lastTime, nanos)
	if failed {
		atomic.AddInt64(&t.errors, 1)
	}

	for {
		current := atomic.LoadInt64(&t.minTime)
		if nanos >= current || atomic.CompareAndSwapInt64(&t.minTime, current, nanos) {
			break
		}
	}
	for {
		current := atomic.LoadInt64(&t.maxTime)
		if nanos <= current || atomic.CompareAndSwapInt64(&t.maxTime, current, nanos) {
			break
		}
	}
}

// Count returns the number of recorded measurements
func (t *Timer) Count() int64 {
	return atomic.LoadInt64(&t.count)
}

// MinTime returns the minimum recorded time
func (t *Timer) MinTime() time.Duration {
	minTime := atomic.LoadInt64(&t.minTime)
	if minTime == unsetMin {
		return 0
	}
	return time.Duration(minTime)
}

// MaxTime returns the maximum recorded time
func (t *Timer) MaxTime() time.Duration {
	return time.Duration(atomic.LoadInt64(&t.maxTime))
}

// Metrics copies the timer state for a snapshot
func (t *Timer) Metrics(op OperationType) OperationMetrics {
	return OperationMetrics{
		Operation: op,
		Count:     atomic.LoadInt64(&t.count),
		Errors:    atomic.LoadInt64(&t.errors),
		TotalTime: atomic.LoadInt64(&t.totalTime),
		MinTime:   t.MinTime().Nanoseconds(),
		MaxTime:   atomic.LoadInt64(&t.maxTime),
		LastTime:  atomic.LoadInt64(&t.lastTime),
	}
}

// Name returns the timer name
func (t *Timer) Name() string {
	return t.name
}

// collectMemory reads memory metrics from the Go runtime
func collectMemory() MemoryMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return MemoryMetrics{
		HeapAlloc:    m.HeapAlloc,
		HeapInuse:    m.HeapInuse,
		Sys:          m.Sys,
		NumGC:        m.NumGC,
		PauseTotalNs: m.PauseTotalNs,
	}
}

func collectRuntime() RuntimeMetrics {
	return RuntimeMetrics{
		Goroutines: runtime.NumGoroutine(),
		NumCPU:     runtime.NumCPU(),
	}
}
