package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-promptfmt"

	"github.com/yildizm/DataSum/internal/analyzer"
	"github.com/yildizm/DataSum/internal/chart"
)

// promptFormatter renders an analysis as an LLM-ready prompt
type promptFormatter struct {
	maxInsights int
}

// NewPrompt creates a formatter that emits a prompt asking a model to
// interpret the current view
func NewPrompt() Formatter {
	return &promptFormatter{maxInsights: 5}
}

// ViewFindingsResponse is the JSON shape the prompt asks for
type ViewFindingsResponse struct {
	Summary  string `json:"summary"`
	Findings []struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Confidence  float64  `json:"confidence"` // 0-1 scale
		Evidence    []string `json:"evidence"`   // metric or chart names
	} `json:"findings"`
	SuggestedFilters []struct {
		Filter string `json:"filter"` // name=value
		Reason string `json:"reason"`
	} `json:"suggested_filters"`
	Caveats []string `json:"caveats"`
}

func (f *promptFormatter) Format(analysis *analyzer.Analysis) ([]byte, error) {
	prompt := f.build(analysis)

	var b strings.Builder
	text := prompt.String()
	if prompt.SystemPrompt != "" && !strings.Contains(text, prompt.SystemPrompt) {
		b.WriteString(prompt.SystemPrompt + "\n\n")
	}
	b.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		b.WriteString("\n")
	}
	return []byte(b.String()), nil
}

func (f *promptFormatter) build(analysis *analyzer.Analysis) *promptfmt.Prompt {
	filters := "none"
	if len(analysis.Filters) > 0 {
		filters = strings.Join(analysis.Filters, "; ")
	}

	pb := promptfmt.New().
		System("You are a data analyst. Interpret summary statistics of a filtered tabular dataset and report findings that the numbers support. Treat N/A as missing, never as zero.").
		User("Analyze this dataset view:\n\nDataset: %s\n%s\nFilters: %s",
			analysis.Dataset, analysis.Showing(), filters)

	f.addMetricsContext(pb, analysis)
	if len(analysis.Charts) > 0 {
		f.addChartsContext(pb, analysis.Charts)
	}
	if len(analysis.Describe) > 0 {
		f.addStatisticsContext(pb, analysis.Describe)
	}
	if len(analysis.Insights) > 0 {
		f.addInsightsContext(pb, analysis.Insights)
	}

	return pb.ExpectJSON(&ViewFindingsResponse{}).Build()
}

func (f *promptFormatter) addMetricsContext(pb *promptfmt.PromptBuilder, analysis *analyzer.Analysis) {
	var b strings.Builder
	b.WriteString("Key Metrics:\n")
	for _, m := range analysis.Metrics {
		fmt.Fprintf(&b, "- %s: %s\n", m.Label, m.String())
	}
	pb.AddContext("metrics", b.String())
}

func (f *promptFormatter) addChartsContext(pb *promptfmt.PromptBuilder, charts []analyzer.ChartData) {
	var b strings.Builder
	b.WriteString("Charts:\n")
	for _, c := range charts {
		switch c.Kind {
		case analyzer.ChartHeatmap, analyzer.ChartBoxPlot:
			continue
		}
		fmt.Fprintf(&b, "%s:\n", c.Title)
		for i, cat := range c.Categories {
			parts := make([]string, len(c.Series))
			for si, s := range c.Series {
				parts[si] = s.Name + "=" + chart.FormatValue(s.Values[i])
			}
			fmt.Fprintf(&b, "  %s: %s\n", cat, strings.Join(parts, ", "))
		}
	}
	pb.AddContext("charts", b.String())
}

func (f *promptFormatter) addStatisticsContext(pb *promptfmt.PromptBuilder, stats []analyzer.ColumnStats) {
	var b strings.Builder
	b.WriteString("Descriptive Statistics:\n")
	for _, cs := range stats {
		fmt.Fprintf(&b, "- %s: count=%d mean=%s std=%s min=%s median=%s max=%s\n",
			cs.Column, cs.Count,
			scalarText(cs.Mean, "%.2f"), scalarText(cs.Std, "%.2f"), scalarText(cs.Min, "%.2f"),
			scalarText(cs.Median, "%.2f"), scalarText(cs.Max, "%.2f"))
	}
	pb.AddContext("statistics", b.String())
}

func (f *promptFormatter) addInsightsContext(pb *promptfmt.PromptBuilder, insights []analyzer.Insight) {
	var b strings.Builder
	b.WriteString("Automated Insights:\n")
	for i, insight := range insights {
		if i >= f.maxInsights {
			break
		}
		fmt.Fprintf(&b, "- %s (%s): %s\n", insight.Title, insight.Type, insight.Description)
	}
	pb.AddContext("insights", b.String())
}
