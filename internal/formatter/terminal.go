package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/DataSum/internal/analyzer"
	"github.com/yildizm/DataSum/internal/chart"
)

// terminalFormatter formats output as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts      *termfmt.TerminalOptions
	chartOpts chart.TextOptions
}

// NewTerminal creates a new terminal formatter with optional color support
func NewTerminal(color bool) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = true

	chartOpts := chart.DefaultTextOptions()
	chartOpts.Width = 30
	chartOpts.Color = color
	return &terminalFormatter{opts: opts, chartOpts: chartOpts}
}

func (f *terminalFormatter) Format(analysis *analyzer.Analysis) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b, analysis)
	f.writeMetrics(&b, analysis)
	f.writeFilters(&b, analysis)

	if len(analysis.Charts) > 0 {
		f.writeCharts(&b, analysis.Charts)
	}

	if len(analysis.Describe) > 0 {
		f.writeStatistics(&b, analysis.Describe)
	}

	if len(analysis.Insights) > 0 {
		f.writeKeyInsights(&b, analysis.Insights)
	}

	f.writeTextRecommendations(&b, analysis)

	return []byte(b.String()), nil
}

// writeHeader writes the report title in a box
func (f *terminalFormatter) writeHeader(b *strings.Builder, analysis *analyzer.Analysis) {
	header := analysis.Title
	if header == "" {
		header = analysis.Dataset + " Summary"
	}
	width := len([]rune(header))

	b.WriteString("╔" + strings.Repeat("═", width+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", width+2) + "╝\n\n")
}

// writeMetrics writes the key metrics as a tree
func (f *terminalFormatter) writeMetrics(b *strings.Builder, analysis *analyzer.Analysis) {
	symbol := termfmt.GetEmoji("statistics", f.opts)
	b.WriteString(symbol + " Key Metrics\n")

	items := make([]termfmt.TreeItem, 0, len(analysis.Metrics)+1)
	for _, m := range analysis.Metrics {
		items = append(items, termfmt.TreeItem{Label: m.Label, Value: m.String()})
	}
	items = append(items, termfmt.TreeItem{Label: "View", Value: analysis.Showing(), Last: true})

	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n\n")
}

// writeFilters lists the active filters
func (f *terminalFormatter) writeFilters(b *strings.Builder, analysis *analyzer.Analysis) {
	symbol := termfmt.GetEmoji("pattern", f.opts)
	b.WriteString(symbol + " Filters\n")

	if len(analysis.Filters) == 0 {
		b.WriteString("└─ none (showing all " + formatNumber(analysis.Total) + ")\n\n")
		return
	}

	items := make([]termfmt.TreeItem, 0, len(analysis.Filters))
	for i, desc := range analysis.Filters {
		items = append(items, termfmt.TreeItem{Label: desc, Last: i == len(analysis.Filters)-1})
	}
	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n\n")
}

func (f *terminalFormatter) writeCharts(b *strings.Builder, charts []analyzer.ChartData) {
	for _, c := range charts {
		b.WriteString(chart.RenderText(c, f.chartOpts))
		b.WriteString("\n")
	}
}

// writeStatistics writes the describe table, one row per statistic
func (f *terminalFormatter) writeStatistics(b *strings.Builder, stats []analyzer.ColumnStats) {
	symbol := termfmt.GetEmoji("number", f.opts)
	b.WriteString(symbol + " Statistics\n")

	const cell = 10
	fmt.Fprintf(b, "%-6s", "")
	for _, cs := range stats {
		fmt.Fprintf(b, "%*s", cell, truncateText(cs.Column, cell-1))
	}
	b.WriteString("\n")

	rows := []struct {
		name string
		get  func(analyzer.ColumnStats) string
	}{
		{"count", func(cs analyzer.ColumnStats) string { return formatNumber(cs.Count) }},
		{"mean", func(cs analyzer.ColumnStats) string { return scalarText(cs.Mean, "%.2f") }},
		{"std", func(cs analyzer.ColumnStats) string { return scalarText(cs.Std, "%.2f") }},
		{"min", func(cs analyzer.ColumnStats) string { return scalarText(cs.Min, "%.2f") }},
		{"25%", func(cs analyzer.ColumnStats) string { return scalarText(cs.Q1, "%.2f") }},
		{"50%", func(cs analyzer.ColumnStats) string { return scalarText(cs.Median, "%.2f") }},
		{"75%", func(cs analyzer.ColumnStats) string { return scalarText(cs.Q3, "%.2f") }},
		{"max", func(cs analyzer.ColumnStats) string { return scalarText(cs.Max, "%.2f") }},
	}
	for _, row := range rows {
		fmt.Fprintf(b, "%-6s", row.name)
		for _, cs := range stats {
			fmt.Fprintf(b, "%*s", cell, row.get(cs))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// writeKeyInsights writes key insights with confidence indicators using go-termfmt
func (f *terminalFormatter) writeKeyInsights(b *strings.Builder, insights []analyzer.Insight) {
	symbol := termfmt.GetEmoji("insights", f.opts)
	b.WriteString(symbol + " Key Insights\n")

	items := make([]termfmt.TreeItem, 0, len(insights))
	for i, insight := range insights {
		emoji := getInsightEmoji(insight.Type)
		confidenceBar := termfmt.CreateConfidenceBar(insight.Confidence, f.opts)

		item := termfmt.TreeItem{
			Label: fmt.Sprintf("%s %s", emoji, insight.Title),
			Value: fmt.Sprintf("(%.0f%% confidence)", insight.Confidence*100),
			Children: []termfmt.TreeItem{
				{Label: confidenceBar + " " + insight.Description, Value: ""},
			},
			Last: i == len(insights)-1,
		}
		items = append(items, item)
	}

	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n\n")
}

// writeTextRecommendations writes recommendations for text format using go-termfmt
func (f *terminalFormatter) writeTextRecommendations(b *strings.Builder, analysis *analyzer.Analysis) {
	recommendations := generateRecommendations(analysis)

	symbol := termfmt.GetEmoji("recommendations", f.opts)
	b.WriteString(symbol + " Recommendations\n")

	for i, rec := range recommendations {
		if i < 3 { // Limit to top 3 recommendations for text format
			b.WriteString("• " + rec + "\n")
		}
	}
}

func truncateText(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
