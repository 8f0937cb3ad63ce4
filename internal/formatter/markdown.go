package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/DataSum/internal/analyzer"
	"github.com/yildizm/DataSum/internal/chart"
)

// markdownPreviewRows is the number of records in the data preview table
const markdownPreviewRows = 10

// markdownFormatter formats output as Markdown
type markdownFormatter struct{}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{}
}

func (f *markdownFormatter) Format(analysis *analyzer.Analysis) ([]byte, error) {
	var b strings.Builder

	// Header with generation timestamp
	title := analysis.Title
	if title == "" {
		title = analysis.Dataset + " Report"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Generated: %s\n\n", analysis.GeneratedAt.Format("2006-01-02 15:04:05"))

	f.writeTableOfContents(&b, analysis)
	f.writeSummaryTable(&b, analysis)

	if len(analysis.Charts) > 0 {
		f.writeChartSections(&b, analysis.Charts)
	}

	if len(analysis.Describe) > 0 {
		f.writeStatisticsTable(&b, analysis.Describe)
	}

	if len(analysis.Insights) > 0 {
		f.writeInsightSections(&b, analysis.Insights)
	}

	f.writeRecommendations(&b, analysis)
	f.writePreview(&b, analysis)

	return []byte(b.String()), nil
}

// writeTableOfContents writes the table of contents
func (f *markdownFormatter) writeTableOfContents(b *strings.Builder, analysis *analyzer.Analysis) {
	b.WriteString("## Table of Contents\n")
	b.WriteString("- [Summary](#summary)\n")

	if len(analysis.Charts) > 0 {
		b.WriteString("- [Charts](#charts)\n")
	}

	if len(analysis.Describe) > 0 {
		b.WriteString("- [Statistics](#statistics)\n")
	}

	if len(analysis.Insights) > 0 {
		b.WriteString("- [Insights](#insights)\n")
	}

	b.WriteString("- [Recommendations](#recommendations)\n")
	b.WriteString("- [Data Preview](#data-preview)\n\n")
}

// writeSummaryTable writes the key metrics table and the active filters
func (f *markdownFormatter) writeSummaryTable(b *strings.Builder, analysis *analyzer.Analysis) {
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(b, "%s\n\n", analysis.Showing())

	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	for _, m := range analysis.Metrics {
		fmt.Fprintf(b, "| %s | %s |\n", escapeCell(m.Label), escapeCell(m.String()))
	}
	b.WriteString("\n")

	if len(analysis.Filters) == 0 {
		b.WriteString("**Filters:** none\n\n")
		return
	}
	b.WriteString("**Filters:**\n\n")
	for _, desc := range analysis.Filters {
		fmt.Fprintf(b, "- `%s`\n", desc)
	}
	b.WriteString("\n")
}

// writeChartSections writes each chart as a table
func (f *markdownFormatter) writeChartSections(b *strings.Builder, charts []analyzer.ChartData) {
	b.WriteString("## Charts\n\n")

	for _, c := range charts {
		fmt.Fprintf(b, "### %s\n\n", c.Title)
		if c.Empty() {
			b.WriteString("_No data to display_\n\n")
			continue
		}

		switch c.Kind {
		case analyzer.ChartHeatmap:
			writeMatrixTable(b, c.Matrix)
		case analyzer.ChartBoxPlot:
			box := c.Box
			b.WriteString("| count | min | q1 | median | q3 | max | outliers |\n")
			b.WriteString("|-------|-----|----|--------|----|-----|----------|\n")
			fmt.Fprintf(b, "| %d | %.2f | %.2f | %.2f | %.2f | %.2f | %d |\n",
				box.Count, box.Min, box.Q1, box.Median, box.Q3, box.Max, len(box.Outliers))
		default:
			header := c.XLabel
			if header == "" {
				header = "Category"
			}
			b.WriteString("| " + escapeCell(header))
			for _, s := range c.Series {
				b.WriteString(" | " + escapeCell(s.Name))
			}
			b.WriteString(" |\n|---" + strings.Repeat("|---", len(c.Series)) + "|\n")
			for i, cat := range c.Categories {
				b.WriteString("| " + escapeCell(cat))
				for _, s := range c.Series {
					b.WriteString(" | " + chart.FormatValue(s.Values[i]))
				}
				b.WriteString(" |\n")
			}
		}
		b.WriteString("\n")
	}
}

func writeMatrixTable(b *strings.Builder, m *analyzer.Matrix) {
	b.WriteString("| |")
	for _, c := range m.Columns {
		b.WriteString(" " + escapeCell(c) + " |")
	}
	b.WriteString("\n|---" + strings.Repeat("|---", len(m.Columns)) + "|\n")
	for i, row := range m.Columns {
		b.WriteString("| **" + escapeCell(row) + "** |")
		for j := range m.Columns {
			b.WriteString(" " + scalarText(m.Values[i][j], "%.2f") + " |")
		}
		b.WriteString("\n")
	}
}

// writeStatisticsTable writes the describe table
func (f *markdownFormatter) writeStatisticsTable(b *strings.Builder, stats []analyzer.ColumnStats) {
	b.WriteString("## Statistics\n\n")
	b.WriteString("| Column | count | mean | std | min | 25% | 50% | 75% | max |\n")
	b.WriteString("|--------|-------|------|-----|-----|-----|-----|-----|-----|\n")
	for _, cs := range stats {
		fmt.Fprintf(b, "| %s | %d | %s | %s | %s | %s | %s | %s | %s |\n",
			escapeCell(cs.Column), cs.Count,
			scalarText(cs.Mean, "%.2f"), scalarText(cs.Std, "%.2f"), scalarText(cs.Min, "%.2f"),
			scalarText(cs.Q1, "%.2f"), scalarText(cs.Median, "%.2f"), scalarText(cs.Q3, "%.2f"),
			scalarText(cs.Max, "%.2f"))
	}
	b.WriteString("\n")
}

// writeInsightSections writes insights with confidence indicators
func (f *markdownFormatter) writeInsightSections(b *strings.Builder, insights []analyzer.Insight) {
	b.WriteString("## Insights\n\n")
	for _, insight := range insights {
		fmt.Fprintf(b, "### %s\n\n", insight.Title)
		fmt.Fprintf(b, "%s\n\n", insight.Description)
		fmt.Fprintf(b, "**Confidence:** %.0f%% `%s`\n\n", insight.Confidence*100, createConfidenceBar(insight.Confidence))
	}
}

// writeRecommendations writes suggested next steps
func (f *markdownFormatter) writeRecommendations(b *strings.Builder, analysis *analyzer.Analysis) {
	b.WriteString("## Recommendations\n\n")
	for i, rec := range generateRecommendations(analysis) {
		fmt.Fprintf(b, "%d. %s\n", i+1, rec)
	}
	b.WriteString("\n")
}

// writePreview writes the first records of the view
func (f *markdownFormatter) writePreview(b *strings.Builder, analysis *analyzer.Analysis) {
	b.WriteString("## Data Preview\n\n")
	if analysis.Rows == 0 {
		b.WriteString("_No records match the current filters._\n")
		return
	}

	cols := columnNames(analysis.Columns)
	b.WriteString("|")
	for _, c := range cols {
		b.WriteString(" " + escapeCell(c) + " |")
	}
	b.WriteString("\n|" + strings.Repeat("---|", len(cols)) + "\n")
	for _, row := range previewRows(analysis.View, cols, markdownPreviewRows) {
		b.WriteString("|")
		for _, cell := range row {
			b.WriteString(" " + escapeCell(cell) + " |")
		}
		b.WriteString("\n")
	}
	if analysis.Rows > markdownPreviewRows {
		fmt.Fprintf(b, "\n_%s more records not shown._\n", formatNumber(analysis.Rows-markdownPreviewRows))
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", "\\|"), "\n", " ")
}
