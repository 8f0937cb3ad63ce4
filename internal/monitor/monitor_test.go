package monitor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounter(t *testing.T) {
	counter := NewCounter("test_counter")

	counter.Inc()
	counter.Add(5)
	if counter.Get() != 6 {
		t.Errorf("Expected value 6, got %d", counter.Get())
	}

	counter.Reset()
	if counter.Get() != 0 {
		t.Errorf("Expected value 0 after Reset(), got %d", counter.Get())
	}
}

func TestGauge(t *testing.T) {
	gauge := NewGauge("view_rows")

	gauge.Set(891)
	if gauge.Get() != 891 {
		t.Errorf("Expected 891, got %f", gauge.Get())
	}
	if gauge.Name() != "view_rows" {
		t.Errorf("unexpected name %s", gauge.Name())
	}
}

func TestTimer(t *testing.T) {
	timer := NewTimer("filter")

	if timer.MinTime() != 0 {
		t.Errorf("Expected zero min before any record, got %v", timer.MinTime())
	}

	timer.Record(30*time.Millisecond, false)
	timer.Record(10*time.Millisecond, true)
	timer.Record(20*time.Millisecond, false)

	m := timer.Metrics(OperationFilter)
	if m.Count != 3 || m.Errors != 1 {
		t.Errorf("Expected 3 runs with 1 error, got %+v", m)
	}
	if timer.MinTime() != 10*time.Millisecond || timer.MaxTime() != 30*time.Millisecond {
		t.Errorf("unexpected min/max %v/%v", timer.MinTime(), timer.MaxTime())
	}
	if time.Duration(m.LastTime) != 20*time.Millisecond {
		t.Errorf("Expected last 20ms, got %v", time.Duration(m.LastTime))
	}
	if m.AvgTime() != 20*time.Millisecond {
		t.Errorf("Expected avg 20ms, got %v", m.AvgTime())
	}
}

func TestMetricsStore(t *testing.T) {
	store := NewMetricsStore(time.Hour, 3)
	base := time.Now()

	for i := 0; i < 5; i++ {
		store.Record(&Metric{Name: "view.rows", Type: MetricTypeGauge, Value: float64(i), Timestamp: base.Add(time.Duration(i) * time.Second)})
	}

	ts, ok := store.GetTimeSeries("view.rows")
	if !ok {
		t.Fatal("series should exist")
	}
	if len(ts.DataPoints) != 3 || ts.DataPoints[0].Value != 2 {
		t.Errorf("Expected the 3 newest points, got %+v", ts.DataPoints)
	}

	if _, ok := store.GetTimeSeries("missing"); ok {
		t.Error("unknown series should not exist")
	}
}

func TestMetricsStore_OutOfOrder(t *testing.T) {
	store := NewMetricsStore(time.Hour, 0)
	now := time.Now()

	store.Record(&Metric{Name: "a", Value: 2, Timestamp: now})
	store.Record(&Metric{Name: "a", Value: 1, Timestamp: now.Add(-time.Second)})

	ts, _ := store.GetTimeSeries("a")
	if ts.DataPoints[0].Value != 1 {
		t.Errorf("points should be kept in timestamp order, got %+v", ts.DataPoints)
	}
}

func TestMetricsStore_CalculateAggregates(t *testing.T) {
	store := NewMetricsStore(time.Hour, 0)
	now := time.Now()

	for i, v := range []float64{10, 20, 30, 40} {
		status := "success"
		if i == 3 {
			status = "error"
		}
		store.Record(&Metric{
			Name: "operation.duration", Value: v, Timestamp: now,
			Labels: map[string]string{"operation": "filter", "status": status},
		})
	}

	agg, ok := store.CalculateAggregates("operation.duration", now.Add(-time.Minute), now, nil)
	if !ok {
		t.Fatal("series should exist")
	}
	if agg.Count != 4 || agg.Min != 10 || agg.Max != 40 || agg.Sum != 100 || agg.Avg != 25 {
		t.Errorf("unexpected aggregates %+v", agg)
	}

	agg, _ = store.CalculateAggregates("operation.duration", now.Add(-time.Minute), now,
		map[string]string{"status": "success"})
	if agg.Count != 3 || agg.Max != 30 {
		t.Errorf("label filter should keep the 3 successes, got %+v", agg)
	}

	agg, _ = store.CalculateAggregates("operation.duration", now.Add(time.Minute), now.Add(2*time.Minute), nil)
	if agg.Count != 0 {
		t.Errorf("empty range should aggregate nothing, got %+v", agg)
	}
}

func TestMetricsStore_Prune(t *testing.T) {
	store := NewMetricsStore(time.Minute, 0)
	now := time.Now()

	store.Record(&Metric{Name: "a", Value: 1, Timestamp: now.Add(-2 * time.Minute)})
	store.Record(&Metric{Name: "a", Value: 2, Timestamp: now})
	store.Prune()

	if store.Size() != 1 {
		t.Errorf("Expected 1 point after prune, got %d", store.Size())
	}
}

func TestMetricsCollector_TrackOperation(t *testing.T) {
	collector := New()

	if err := collector.TrackOperation(OperationFilter, func() error {
		time.Sleep(time.Millisecond)
		return nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	failure := errors.New("bad source")
	if err := collector.TrackOperation(OperationLoad, func() error { return failure }); !errors.Is(err, failure) {
		t.Errorf("TrackOperation should return fn's error, got %v", err)
	}

	collector.RecordView(891, 216)

	snapshot := collector.GetSnapshot()
	filter, ok := snapshot.Operation(OperationFilter)
	if !ok || filter.Count != 1 || filter.LastTime < int64(time.Millisecond) {
		t.Errorf("unexpected filter metrics %+v", filter)
	}
	load, _ := snapshot.Operation(OperationLoad)
	if load.Errors != 1 {
		t.Errorf("Expected a failed load, got %+v", load)
	}
	if snapshot.RecordsProcessed != 891 || snapshot.ViewRows != 216 {
		t.Errorf("unexpected view metrics %+v", snapshot)
	}

	// not started: metrics are recorded synchronously
	if collector.GetStore().Size() != 2 {
		t.Errorf("Expected 2 operation points in store, got %d", collector.GetStore().Size())
	}
}

func TestMetricsCollector_Prometheus(t *testing.T) {
	collector := New()

	_ = collector.TrackOperation(OperationAnalyze, func() error { return nil })
	_ = collector.TrackOperation(OperationAnalyze, func() error { return errors.New("boom") })
	collector.RecordView(100, 40)

	if got := testutil.ToFloat64(collector.prom.operationsTotal.WithLabelValues("analyze", "error")); got != 1 {
		t.Errorf("Expected 1 failed analyze, got %v", got)
	}
	if got := testutil.ToFloat64(collector.prom.viewRows); got != 40 {
		t.Errorf("Expected view_rows 40, got %v", got)
	}

	families, err := collector.Registry().Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "datasum_operation_duration_seconds" {
			found = true
		}
	}
	if !found {
		t.Error("operation histogram should be registered")
	}
}

func TestMetricsCollector_StartStop(t *testing.T) {
	collector := NewWithConfig(MonitorConfig{
		CollectionInterval:  5 * time.Millisecond,
		RetentionPeriod:     time.Minute,
		MaxDataPoints:       100,
		BufferSize:          10,
		EnableMemoryMetrics: true,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := collector.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if !collector.IsRunning() {
		t.Error("collector should be running")
	}

	time.Sleep(30 * time.Millisecond)
	_ = collector.TrackOperation(OperationRender, func() error { return nil })

	if err := collector.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if collector.IsRunning() {
		t.Error("collector should be stopped")
	}
	if err := collector.Stop(); err != nil {
		t.Errorf("second stop should be a no-op, got %v", err)
	}

	if _, ok := collector.GetStore().GetTimeSeries("memory.heap_alloc"); !ok {
		t.Error("memory should have been sampled")
	}
}

func TestReportGenerator(t *testing.T) {
	collector := New()
	_ = collector.TrackOperation(OperationFilter, func() error { return nil })
	_ = collector.TrackOperation(OperationExport, func() error { return errors.New("disk full") })

	gen := NewReportGenerator(collector)
	report := gen.GenerateReport(time.Hour)

	if report.Summary.TotalOperations != 2 || report.Summary.FailedOps != 1 {
		t.Errorf("unexpected summary %+v", report.Summary)
	}
	if len(report.Operations) != 2 {
		t.Errorf("only operations that ran should be reported, got %d", len(report.Operations))
	}
	if report.Summary.OverallHealth != HealthStatusWarning {
		t.Errorf("a failing export should warn, got %s", report.Summary.OverallHealth)
	}
	if _, ok := report.Aggregates["operation.duration"]; !ok {
		t.Error("operation durations should be aggregated")
	}

	joined := strings.Join(report.Recommendations, "\n")
	if !strings.Contains(joined, "export operation(s) failed") {
		t.Errorf("expected a failure recommendation, got %v", report.Recommendations)
	}
}

func TestReportFormatting(t *testing.T) {
	collector := New()
	_ = collector.TrackOperation(OperationAnalyze, func() error { return nil })
	gen := NewReportGenerator(collector)
	report := gen.GenerateReport(time.Hour)

	tests := []struct {
		format ReportFormat
		want   string
	}{
		{ReportFormatText, "DataSum Performance Report"},
		{ReportFormatMarkdown, "| analyze | 1 | 0 |"},
		{ReportFormatJSON, `"overall_health": "good"`},
	}

	for _, tt := range tests {
		out, err := gen.FormatReport(report, tt.format)
		if err != nil {
			t.Errorf("%s: %v", tt.format, err)
			continue
		}
		if !strings.Contains(out, tt.want) {
			t.Errorf("%s output missing %q:\n%s", tt.format, tt.want, out)
		}
	}

	if _, err := gen.FormatReport(report, "xml"); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestAssess(t *testing.T) {
	tests := []struct {
		metrics OperationMetrics
		want    string
	}{
		{OperationMetrics{Count: 2, TotalTime: int64(2 * time.Millisecond)}, "good"},
		{OperationMetrics{Count: 1, TotalTime: int64(700 * time.Millisecond)}, "fair"},
		{OperationMetrics{Count: 1, TotalTime: int64(3 * time.Second)}, "slow"},
		{OperationMetrics{Count: 2, Errors: 2}, "failing"},
	}

	for _, tt := range tests {
		if got := assess(tt.metrics); got != tt.want {
			t.Errorf("assess(%+v) = %s, want %s", tt.metrics, got, tt.want)
		}
	}
}

func BenchmarkTimer(b *testing.B) {
	timer := NewTimer("bench")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		timer.Record(time.Microsecond, false)
	}
}

func BenchmarkMetricsStore(b *testing.B) {
	store := NewMetricsStore(time.Hour, 1000)
	now := time.Now()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		store.Record(&Metric{Name: "bench", Value: float64(i), Timestamp: now.Add(time.Duration(i))})
	}
}
