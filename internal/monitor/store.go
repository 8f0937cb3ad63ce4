package monitor

import (
	"sort"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
)

// TimeSeriesDataPoint represents a single data point in a time series
type TimeSeriesDataPoint struct {
	Timestamp time.Time         `json:"timestamp"`
	Value     float64           `json:"value"`
	Labels    map[string]string `json:"labels,omitempty"`
}

// TimeSeries is an append-mostly series kept in timestamp order
type TimeSeries struct {
	Name       string                `json:"name"`
	MetricType MetricType            `json:"type"`
	DataPoints []TimeSeriesDataPoint `json:"data_points"`
}

func (ts *TimeSeries) add(dp TimeSeriesDataPoint) {
	n := len(ts.DataPoints)
	ts.DataPoints = append(ts.DataPoints, dp)
	if n > 0 && dp.Timestamp.Before(ts.DataPoints[n-1].Timestamp) {
		sort.SliceStable(ts.DataPoints, func(i, j int) bool {
			return ts.DataPoints[i].Timestamp.Before(ts.DataPoints[j].Timestamp)
		})
	}
}

func (ts *TimeSeries) inRange(start, end time.Time) []TimeSeriesDataPoint {
	var result []TimeSeriesDataPoint
	for _, dp := range ts.DataPoints {
		if !dp.Timestamp.Before(start) && !dp.Timestamp.After(end) {
			result = append(result, dp)
		}
	}
	return result
}

// Aggregates represents statistical aggregates for a time series
type Aggregates struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	Sum   float64 `json:"sum"`
	Count int     `json:"count"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
}

// aggregate summarizes values; errors from the stats package only occur
// on empty input, which is handled up front
func aggregate(values []float64) Aggregates {
	if len(values) == 0 {
		return Aggregates{}
	}
	data := stats.Float64Data(values)

	minVal, _ := data.Min()
	maxVal, _ := data.Max()
	sum, _ := data.Sum()
	avg, _ := data.Mean()
	p50, _ := data.Median()
	p95, _ := data.Percentile(95)
	p99, _ := data.Percentile(99)

	return Aggregates{
		Min:   minVal,
		Max:   maxVal,
		Avg:   avg,
		Sum:   sum,
		Count: len(values),
		P50:   p50,
		P95:   p95,
		P99:   p99,
	}
}

// MetricsStore keeps bounded time series keyed by metric name
type MetricsStore struct {
	series          map[string]*TimeSeries
	retentionPeriod time.Duration
	maxDataPoints   int
	mutex           sync.RWMutex
}

// NewMetricsStore creates a new metrics store
func NewMetricsStore(retentionPeriod time.Duration, maxDataPoints int) *MetricsStore {
	return &MetricsStore{
		series:          make(map[string]*TimeSeries),
		retentionPeriod: retentionPeriod,
		maxDataPoints:   maxDataPoints,
	}
}

// Record records a metric data point
func (ms *MetricsStore) Record(metric *Metric) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	ts, exists := ms.series[metric.Name]
	if !exists {
		ts = &TimeSeries{Name: metric.Name, MetricType: metric.Type}
		ms.series[metric.Name] = ts
	}

	ts.add(TimeSeriesDataPoint{Timestamp: metric.Timestamp, Value: metric.Value, Labels: metric.Labels})

	if ms.maxDataPoints > 0 && len(ts.DataPoints) > ms.maxDataPoints {
		ts.DataPoints = ts.DataPoints[len(ts.DataPoints)-ms.maxDataPoints:]
	}
}

// GetTimeSeries returns a copy of the named series
func (ms *MetricsStore) GetTimeSeries(name string) (*TimeSeries, bool) {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	ts, exists := ms.series[name]
	if !exists {
		return nil, false
	}

	tsCopy := &TimeSeries{
		Name:       ts.Name,
		MetricType: ts.MetricType,
		DataPoints: make([]TimeSeriesDataPoint, len(ts.DataPoints)),
	}
	copy(tsCopy.DataPoints, ts.DataPoints)
	return tsCopy, true
}

// GetAllSeries returns all time series names, sorted
func (ms *MetricsStore) GetAllSeries() []string {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	names := make([]string, 0, len(ms.series))
	for name := range ms.series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CalculateAggregates summarizes a series within a time range. When
// labels are given only points carrying all of them are included.
func (ms *MetricsStore) CalculateAggregates(seriesName string, start, end time.Time, labels map[string]string) (Aggregates, bool) {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	ts, exists := ms.series[seriesName]
	if !exists {
		return Aggregates{}, false
	}

	var values []float64
	for _, dp := range ts.inRange(start, end) {
		if matchLabels(dp.Labels, labels) {
			values = append(values, dp.Value)
		}
	}
	return aggregate(values), true
}

func matchLabels(have, want map[string]string) bool {
	for k, v := range want {
		if have[k] != v {
			return false
		}
	}
	return true
}

// Prune removes data points older than the retention period
func (ms *MetricsStore) Prune() {
	if ms.retentionPeriod <= 0 {
		return
	}
	cutoff := time.Now().Add(-ms.retentionPeriod)

	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	for _, ts := range ms.series {
		keep := sort.Search(len(ts.DataPoints), func(i int) bool {
			return ts.DataPoints[i].Timestamp.After(cutoff)
		})
		ts.DataPoints = ts.DataPoints[keep:]
	}
}

// Size returns the total number of data points across all series
func (ms *MetricsStore) Size() int {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	total := 0
	for _, ts := range ms.series {
		total += len(ts.DataPoints)
	}
	return total
}
