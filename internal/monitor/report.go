package monitor

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ReportFormat represents the output format for reports
type ReportFormat string

const (
	ReportFormatJSON     ReportFormat = "json"
	ReportFormatText     ReportFormat = "text"
	ReportFormatMarkdown ReportFormat = "markdown"
)

// slowOperation is the mean duration above which an operation is flagged
const slowOperation = 500 * time.Millisecond

// HealthStatus represents the overall health of the recompute loop
type HealthStatus string

const (
	HealthStatusGood     HealthStatus = "good"
	HealthStatusWarning  HealthStatus = "warning"
	HealthStatusCritical HealthStatus = "critical"
)

// PerformanceReport summarizes collected timings
type PerformanceReport struct {
	GeneratedAt     time.Time             `json:"generated_at"`
	Summary         ReportSummary         `json:"summary"`
	Operations      []OperationReport     `json:"operations"`
	Aggregates      map[string]Aggregates `json:"aggregates,omitempty"`
	Recommendations []string              `json:"recommendations,omitempty"`
}

// ReportSummary provides a high-level summary of performance
type ReportSummary struct {
	Uptime           time.Duration `json:"uptime"`
	TotalOperations  int64         `json:"total_operations"`
	FailedOps        int64         `json:"failed_operations"`
	RecordsProcessed int64         `json:"records_processed"`
	HeapAlloc        uint64        `json:"heap_alloc_bytes"`
	Goroutines       int           `json:"goroutines"`
	OverallHealth    HealthStatus  `json:"overall_health"`
}

// OperationReport contains one operation's timings and assessment
type OperationReport struct {
	Operation   OperationType    `json:"operation"`
	Metrics     OperationMetrics `json:"metrics"`
	AvgTime     time.Duration    `json:"avg_time"`
	Performance string           `json:"performance_assessment"`
}

// ReportGenerator generates performance reports from a collector
type ReportGenerator struct {
	collector *MetricsCollector
}

// NewReportGenerator creates a new report generator
func NewReportGenerator(collector *MetricsCollector) *ReportGenerator {
	return &ReportGenerator{collector: collector}
}

// GenerateReport builds a report from the current snapshot and the sampled
// series recorded within window
func (rg *ReportGenerator) GenerateReport(window time.Duration) *PerformanceReport {
	snapshot := rg.collector.GetSnapshot()
	report := &PerformanceReport{
		GeneratedAt: snapshot.Timestamp,
		Summary: ReportSummary{
			Uptime:           snapshot.Uptime,
			RecordsProcessed: snapshot.RecordsProcessed,
			HeapAlloc:        snapshot.Memory.HeapAlloc,
			Goroutines:       snapshot.Runtime.Goroutines,
		},
	}

	for _, om := range snapshot.Operations {
		report.Summary.TotalOperations += om.Count
		report.Summary.FailedOps += om.Errors
		if om.Count == 0 {
			continue
		}
		report.Operations = append(report.Operations, OperationReport{
			Operation:   om.Operation,
			Metrics:     om,
			AvgTime:     om.AvgTime(),
			Performance: assess(om),
		})
	}

	start := snapshot.Timestamp.Add(-window)
	store := rg.collector.GetStore()
	report.Aggregates = make(map[string]Aggregates)
	for _, name := range store.GetAllSeries() {
		if agg, ok := store.CalculateAggregates(name, start, snapshot.Timestamp, nil); ok && agg.Count > 0 {
			report.Aggregates[name] = agg
		}
	}

	report.Summary.OverallHealth = overallHealth(report)
	report.Recommendations = recommendations(report)
	return report
}

func assess(om OperationMetrics) string {
	switch avg := om.AvgTime(); {
	case om.Errors > 0 && om.Errors == om.Count:
		return "failing"
	case avg > 2*slowOperation:
		return "slow"
	case avg > slowOperation:
		return "fair"
	default:
		return "good"
	}
}

func overallHealth(report *PerformanceReport) HealthStatus {
	issues := 0
	for _, op := range report.Operations {
		if op.Performance != "good" {
			issues++
		}
	}
	if total := report.Summary.TotalOperations; total > 0 {
		if float64(report.Summary.FailedOps)/float64(total) > 0.05 {
			issues++
		}
	}

	switch {
	case issues >= 3:
		return HealthStatusCritical
	case issues >= 1:
		return HealthStatusWarning
	default:
		return HealthStatusGood
	}
}

func recommendations(report *PerformanceReport) []string {
	var recs []string

	for _, op := range report.Operations {
		switch {
		case op.Operation == OperationLoad && op.Performance != "good":
			recs = append(recs, "Dataset loading is slow; set dataset.max_rows or convert the source to CSV")
		case op.Operation == OperationFilter && op.Performance != "good":
			recs = append(recs, "Filtering is slow; narrow search filters to fewer columns")
		case op.Operation == OperationRender && op.Performance != "good":
			recs = append(recs, "Chart rendering is slow; lower charts.width and charts.height")
		case op.Metrics.Errors > 0:
			recs = append(recs, fmt.Sprintf("%d %s operation(s) failed; rerun with --verbose for details",
				op.Metrics.Errors, op.Operation))
		}
	}

	if len(recs) == 0 {
		recs = append(recs, "Recompute loop is within normal parameters")
	}
	return recs
}

// FormatReport formats a report according to the specified format
func (rg *ReportGenerator) FormatReport(report *PerformanceReport, format ReportFormat) (string, error) {
	switch format {
	case ReportFormatJSON:
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	case ReportFormatText, "":
		return formatText(report), nil
	case ReportFormatMarkdown:
		return formatMarkdown(report), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatText(report *PerformanceReport) string {
	var sb strings.Builder

	sb.WriteString("DataSum Performance Report\n")
	sb.WriteString("==========================\n\n")
	fmt.Fprintf(&sb, "Generated: %s\n", report.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Uptime: %s\n\n", report.Summary.Uptime.Round(time.Millisecond))

	sb.WriteString("Summary:\n")
	fmt.Fprintf(&sb, "  Operations: %d (%d failed)\n", report.Summary.TotalOperations, report.Summary.FailedOps)
	fmt.Fprintf(&sb, "  Records Processed: %d\n", report.Summary.RecordsProcessed)
	fmt.Fprintf(&sb, "  Heap: %d bytes\n", report.Summary.HeapAlloc)
	fmt.Fprintf(&sb, "  Goroutines: %d\n", report.Summary.Goroutines)
	fmt.Fprintf(&sb, "  Overall Health: %s\n\n", report.Summary.OverallHealth)

	if len(report.Operations) > 0 {
		sb.WriteString("Operations:\n")
		for _, op := range report.Operations {
			fmt.Fprintf(&sb, "  %-8s n=%-5d avg=%-10s max=%-10s %s\n",
				op.Operation, op.Metrics.Count, op.AvgTime,
				time.Duration(op.Metrics.MaxTime), op.Performance)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Recommendations:\n")
	for _, rec := range report.Recommendations {
		fmt.Fprintf(&sb, "  - %s\n", rec)
	}

	return sb.String()
}

func formatMarkdown(report *PerformanceReport) string {
	var sb strings.Builder

	sb.WriteString("# DataSum Performance Report\n\n")
	fmt.Fprintf(&sb, "**Generated:** %s  \n", report.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "**Health:** %s\n\n", report.Summary.OverallHealth)

	sb.WriteString("| Operation | Count | Errors | Avg | Max |\n")
	sb.WriteString("|-----------|-------|--------|-----|-----|\n")
	for _, op := range report.Operations {
		fmt.Fprintf(&sb, "| %s | %d | %d | %s | %s |\n",
			op.Operation, op.Metrics.Count, op.Metrics.Errors, op.AvgTime, time.Duration(op.Metrics.MaxTime))
	}
	sb.WriteString("\n## Recommendations\n\n")
	for _, rec := range report.Recommendations {
		fmt.Fprintf(&sb, "- %s\n", rec)
	}

	return sb.String()
}
