package analyzer

import (
	"context"

	"github.com/yildizm/DataSum/internal/dataset"
)

// Analyzer derives metrics and chart data from a filtered view
type Analyzer interface {
	// Analyze computes every configured metric and chart for the view
	Analyze(ctx context.Context, view dataset.View) (*Analysis, error)
}

// Engine is an Analyzer with configurable stages
type Engine interface {
	Analyzer

	// WithMetrics sets the key metrics
	WithMetrics(specs []MetricSpec) Engine

	// WithCharts sets the charts
	WithCharts(specs []ChartSpec) Engine

	// WithInsights enables insight generation
	WithInsights() Engine
}
