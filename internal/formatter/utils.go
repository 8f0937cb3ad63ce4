package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/DataSum/internal/analyzer"
	"github.com/yildizm/DataSum/internal/dataset"
)

// formatNumber formats numbers with commas for readability
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return addCommas(fmt.Sprintf("%d", n))
}

// addCommas adds commas to number strings
func addCommas(s string) string {
	if len(s) <= 3 {
		return s
	}
	return addCommas(s[:len(s)-3]) + "," + s[len(s)-3:]
}

// getInsightEmoji returns emoji for insight types using go-termfmt
func getInsightEmoji(t analyzer.InsightType) string {
	opts := termfmt.DefaultOptions()
	switch t {
	case analyzer.InsightMissingData:
		return termfmt.GetEmoji("warning", opts)
	case analyzer.InsightSmallView:
		return termfmt.GetEmoji("info", opts)
	case analyzer.InsightCorrelation:
		return termfmt.GetEmoji("scale", opts)
	default:
		return termfmt.GetEmoji("insight", opts)
	}
}

// createConfidenceBar creates ASCII confidence bar using go-termfmt
func createConfidenceBar(confidence float64) string {
	opts := termfmt.DefaultOptions()
	return termfmt.CreateConfidenceBar(confidence, opts)
}

// generateRecommendations suggests next steps for exploring the view
func generateRecommendations(analysis *analyzer.Analysis) []string {
	var recommendations []string

	if analysis.Rows == 0 {
		recommendations = append(recommendations, "No records match the current filters; relax or reset them")
		if len(analysis.Filters) > 0 {
			recommendations = append(recommendations,
				fmt.Sprintf("Try removing the most selective filter: %s", analysis.Filters[len(analysis.Filters)-1]))
		}
		return recommendations
	}

	for _, insight := range analysis.Insights {
		switch insight.Type {
		case analyzer.InsightSmallView:
			recommendations = append(recommendations, "Broaden the filters before drawing conclusions from averages")
		case analyzer.InsightMissingData:
			col := strings.TrimPrefix(insight.Title, "Missing Values: ")
			recommendations = append(recommendations,
				fmt.Sprintf("Range filters on %s drop records where it is missing", col))
		case analyzer.InsightGroupGap:
			recommendations = append(recommendations,
				fmt.Sprintf("Filter on the groups in %q to compare them directly", strings.TrimPrefix(insight.Title, "Group Gap: ")))
		}
	}

	if len(recommendations) == 0 {
		recommendations = append(recommendations,
			"Combine filters to compare subgroups",
			"Export the filtered view for further analysis",
			"Open the Details tab for the correlation matrix")
	}

	return recommendations
}

// previewRows returns the first n records of the view as display strings
func previewRows(view dataset.View, columns []string, n int) [][]string {
	head := view.Head(n)
	rows := make([][]string, head.Len())
	for i := range rows {
		row := make([]string, len(columns))
		for j, c := range columns {
			row[j] = head.Value(i, c).String()
		}
		rows[i] = row
	}
	return rows
}

func columnNames(cols []dataset.Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

func scalarText(s analyzer.Scalar, format string) string {
	if !s.Valid {
		return analyzer.NA
	}
	return fmt.Sprintf(format, s.Value)
}
