package analyzer

import (
	"context"
	"time"

	"github.com/yildizm/DataSum/internal/dataset"
)

// AnalyzerEngine implements the Analyzer and Engine interfaces
type AnalyzerEngine struct {
	metrics        []MetricSpec
	charts         []ChartSpec
	bins           int
	insightGen     *InsightGenerator
	enableInsights bool
	title          string
	noun           string
	filters        []string
	now            func() time.Time
}

// NewEngine creates an engine with no metrics or charts configured
func NewEngine() *AnalyzerEngine {
	return &AnalyzerEngine{
		bins:           DefaultBins,
		insightGen:     NewInsightGenerator(),
		enableInsights: true,
		now:            time.Now,
	}
}

// Analyze computes the analysis of a view. Metrics, charts, statistics
// and insights are computed in that order, checking ctx between stages.
func (e *AnalyzerEngine) Analyze(ctx context.Context, view dataset.View) (*Analysis, error) {
	start := e.now()
	ds := view.Dataset()

	analysis := &Analysis{
		Rows:        view.Len(),
		Title:       e.title,
		Noun:        e.noun,
		Filters:     append([]string{}, e.filters...),
		Metrics:     []Metric{},
		Charts:      []ChartData{},
		Describe:    []ColumnStats{},
		Insights:    []Insight{},
		GeneratedAt: start,
		View:        view,
	}
	if ds == nil {
		return analysis, nil
	}
	analysis.Dataset = ds.Name()
	analysis.Total = ds.Len()
	analysis.Columns = ds.Columns()

	// Key metrics
	for _, spec := range e.metrics {
		m, err := ComputeMetric(spec, view)
		if err != nil {
			return analysis, err
		}
		analysis.Metrics = append(analysis.Metrics, m)
	}

	// Check for context cancellation
	select {
	case <-ctx.Done():
		return analysis, ctx.Err()
	default:
	}

	// Charts
	numeric := ds.ColumnsOfKind(dataset.KindNumeric)
	for _, spec := range e.charts {
		if spec.Kind == ChartHistogram && spec.Bins == 0 {
			spec.Bins = e.bins
		}
		c, err := BuildChart(spec, view, numeric)
		if err != nil {
			return analysis, err
		}
		analysis.Charts = append(analysis.Charts, c)
	}

	// Check for context cancellation
	select {
	case <-ctx.Done():
		return analysis, ctx.Err()
	default:
	}

	// Descriptive statistics and correlation
	analysis.Describe = Describe(view, numeric)
	if len(numeric) > 0 {
		analysis.Correlation = Correlation(view, numeric)
	}

	// Check for context cancellation
	select {
	case <-ctx.Done():
		return analysis, ctx.Err()
	default:
	}

	// Insights
	if e.enableInsights {
		analysis.Insights = e.insightGen.GenerateInsights(analysis)
	}

	analysis.Duration = e.now().Sub(start)
	return analysis, nil
}

// WithMetrics sets the key metrics
func (e *AnalyzerEngine) WithMetrics(specs []MetricSpec) Engine {
	e.metrics = append([]MetricSpec(nil), specs...)
	return e
}

// WithCharts sets the charts
func (e *AnalyzerEngine) WithCharts(specs []ChartSpec) Engine {
	e.charts = append([]ChartSpec(nil), specs...)
	return e
}

// WithInsights enables insight generation
func (e *AnalyzerEngine) WithInsights() Engine {
	e.enableInsights = true
	return e
}

// DisableInsights disables insight generation
func (e *AnalyzerEngine) DisableInsights() Engine {
	e.enableInsights = false
	return e
}

// SetHistogramBins sets the bin count for histograms that do not set one
func (e *AnalyzerEngine) SetHistogramBins(bins int) {
	if bins > 0 {
		e.bins = bins
	}
}

// SetTitle sets the report title carried into the analysis
func (e *AnalyzerEngine) SetTitle(title string) {
	e.title = title
}

// SetNoun sets the record noun used in "Showing X of Y" lines
func (e *AnalyzerEngine) SetNoun(noun string) {
	e.noun = noun
}

// SetFilters records the active filter descriptions carried into the analysis
func (e *AnalyzerEngine) SetFilters(descriptions []string) {
	e.filters = append([]string(nil), descriptions...)
}
