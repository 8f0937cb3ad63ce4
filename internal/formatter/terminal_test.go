package formatter

import (
	"context"
	"strings"
	"testing"

	"github.com/yildizm/DataSum/internal/analyzer"
	"github.com/yildizm/DataSum/internal/dataset"
)

func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.FromRecords("people", []string{"name", "group", "age", "survived"}, [][]string{
		{"Ann", "a", "22", "1"},
		{"Bob", "b", "38", "0"},
		{"Cy", "a", "", "1"},
		{"Di", "b", "54", "0"},
		{"Ed", "a", "4", "1"},
	}, nil)
	if err != nil {
		t.Fatalf("failed to build dataset: %v", err)
	}
	return ds
}

func testAnalysis(t *testing.T, view dataset.View, filters ...string) *analyzer.Analysis {
	t.Helper()
	engine := analyzer.NewEngine()
	engine.SetTitle("People Explorer")
	engine.SetNoun("people")
	engine.SetFilters(filters)
	engine.WithMetrics([]analyzer.MetricSpec{
		{Name: "total", Label: "Total People", Kind: analyzer.MetricCount},
		{Name: "rate", Label: "Survival Rate", Kind: analyzer.MetricRate, Column: "survived"},
		{Name: "age", Label: "Average age", Kind: analyzer.MetricMean, Column: "age"},
	})
	engine.WithCharts([]analyzer.ChartSpec{
		{Name: "by_group", Title: "Survival by Group", Kind: analyzer.ChartBar, Column: "group", Value: "survived", Agg: analyzer.AggRate},
		{Name: "corr", Title: "Correlation Matrix", Kind: analyzer.ChartHeatmap},
	})

	a, err := engine.Analyze(context.Background(), view)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	return a
}

func TestTerminalFormat_Sections(t *testing.T) {
	ds := testDataset(t)
	out, err := NewTerminal(false).Format(testAnalysis(t, dataset.All(ds)))
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	output := string(out)

	for _, want := range []string{
		"║ People Explorer ║",
		"Key Metrics",
		"Total People",
		"60.0%",
		"Showing 5 of 5 people",
		"none (showing all 5)",
		"Survival by Group",
		"Correlation Matrix",
		"Statistics",
		"Recommendations",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q\n%s", want, output)
		}
	}
}

func TestTerminalFormat_EmptyView(t *testing.T) {
	ds := testDataset(t)
	a := testAnalysis(t, dataset.NewView(ds, nil), "age ≥ 100")

	out, err := NewTerminal(false).Format(a)
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	output := string(out)

	if !strings.Contains(output, "N/A") {
		t.Errorf("empty view metrics should render N/A\n%s", output)
	}
	if !strings.Contains(output, "age ≥ 100") {
		t.Errorf("active filter should be listed\n%s", output)
	}
	if !strings.Contains(output, "No records match") {
		t.Errorf("empty view should recommend relaxing filters\n%s", output)
	}
	if !strings.Contains(output, "No data to display") {
		t.Errorf("empty charts should say so\n%s", output)
	}
}

func TestWriteStatistics_Layout(t *testing.T) {
	formatter := NewTerminal(false).(*terminalFormatter)

	stats := []analyzer.ColumnStats{
		{Column: "age", Count: 714, Mean: analyzer.Some(29.7), Std: analyzer.Some(14.5),
			Min: analyzer.Some(0.42), Q1: analyzer.Some(20), Median: analyzer.Some(28), Q3: analyzer.Some(38), Max: analyzer.Some(80)},
		{Column: "a_very_long_column", Count: 0},
	}

	var b strings.Builder
	formatter.writeStatistics(&b, stats)
	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")

	// header + column row + 8 statistics
	if len(lines) != 10 {
		t.Fatalf("expected 10 lines, got %d:\n%s", len(lines), b.String())
	}
	if !strings.Contains(lines[1], "a_very_l…") {
		t.Errorf("long column names should be truncated: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "count") || !strings.Contains(lines[2], "714") {
		t.Errorf("unexpected count row: %q", lines[2])
	}
	if !strings.Contains(lines[3], "29.70") || !strings.Contains(lines[3], "N/A") {
		t.Errorf("unexpected mean row: %q", lines[3])
	}
}

func TestWriteKeyInsights_Order(t *testing.T) {
	formatter := NewTerminal(false).(*terminalFormatter)

	insights := []analyzer.Insight{
		{Type: analyzer.InsightCorrelation, Title: "Correlation: a / b", Description: "strong", Confidence: 0.9},
		{Type: analyzer.InsightMissingData, Title: "Missing Values: deck", Description: "many", Confidence: 0.8},
	}

	var b strings.Builder
	formatter.writeKeyInsights(&b, insights)
	output := b.String()

	if !strings.Contains(output, "(90% confidence)") {
		t.Errorf("confidence should be shown as a percentage\n%s", output)
	}
	if strings.Index(output, "Correlation: a / b") > strings.Index(output, "Missing Values: deck") {
		t.Errorf("insights should keep their order\n%s", output)
	}
}
