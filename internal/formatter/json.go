package formatter

import (
	"encoding/json"
	"time"

	"github.com/yildizm/DataSum/internal/analyzer"
	"github.com/yildizm/DataSum/internal/dataset"
)

// defaultPreviewRows is the number of records included in JSON output
const defaultPreviewRows = 10

// jsonFormatter formats output as JSON
type jsonFormatter struct {
	previewRows int
}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{previewRows: defaultPreviewRows}
}

// NewJSONWithPreview creates a JSON formatter that includes the first rows
// of the view; zero uses the default and a negative count omits the preview
func NewJSONWithPreview(rows int) Formatter {
	if rows == 0 {
		rows = defaultPreviewRows
	}
	return &jsonFormatter{previewRows: rows}
}

func (f *jsonFormatter) Format(analysis *analyzer.Analysis) ([]byte, error) {
	output := &ReportOutput{
		Summary:     createSummary(analysis),
		Metrics:     analysis.Metrics,
		Charts:      analysis.Charts,
		Describe:    analysis.Describe,
		Correlation: analysis.Correlation,
		Insights:    createInsightOutputs(analysis.Insights),
	}
	if f.previewRows > 0 {
		output.Preview = createPreview(analysis, f.previewRows)
	}

	return json.MarshalIndent(output, "", "  ")
}

// ReportOutput is the JSON document for one analysis
type ReportOutput struct {
	Summary     *SummaryOutput         `json:"summary"`
	Metrics     []analyzer.Metric      `json:"metrics"`
	Charts      []analyzer.ChartData   `json:"charts"`
	Describe    []analyzer.ColumnStats `json:"describe"`
	Correlation *analyzer.Matrix       `json:"correlation,omitempty"`
	Insights    []*InsightOutput       `json:"insights"`
	Preview     *PreviewOutput         `json:"preview,omitempty"`
}

// SummaryOutput represents the summary section
type SummaryOutput struct {
	Title       string           `json:"title,omitempty"`
	Dataset     string           `json:"dataset"`
	Total       int              `json:"total"`
	Rows        int              `json:"rows"`
	Showing     string           `json:"showing"`
	Filters     []string         `json:"filters"`
	Columns     []dataset.Column `json:"columns"`
	GeneratedAt time.Time        `json:"generated_at"`
	Duration    string           `json:"duration"`
}

// InsightOutput represents insight output
type InsightOutput struct {
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// PreviewOutput holds the first records of the view
type PreviewOutput struct {
	Columns []string          `json:"columns"`
	Rows    [][]dataset.Value `json:"rows"`
}

// createSummary creates summary output
func createSummary(analysis *analyzer.Analysis) *SummaryOutput {
	return &SummaryOutput{
		Title:       analysis.Title,
		Dataset:     analysis.Dataset,
		Total:       analysis.Total,
		Rows:        analysis.Rows,
		Showing:     analysis.Showing(),
		Filters:     analysis.Filters,
		Columns:     analysis.Columns,
		GeneratedAt: analysis.GeneratedAt,
		Duration:    analysis.Duration.String(),
	}
}

// createInsightOutputs creates insight outputs
func createInsightOutputs(insights []analyzer.Insight) []*InsightOutput {
	outputs := make([]*InsightOutput, 0, len(insights))

	for _, insight := range insights {
		outputs = append(outputs, &InsightOutput{
			Type:        string(insight.Type),
			Title:       insight.Title,
			Description: insight.Description,
			Confidence:  insight.Confidence,
		})
	}

	return outputs
}

// createPreview keeps typed values so numbers stay numeric and missing is null
func createPreview(analysis *analyzer.Analysis, n int) *PreviewOutput {
	cols := columnNames(analysis.Columns)
	head := analysis.View.Head(n)
	out := &PreviewOutput{Columns: cols, Rows: make([][]dataset.Value, head.Len())}
	for i := range out.Rows {
		row := make([]dataset.Value, len(cols))
		for j, c := range cols {
			row[j] = head.Value(i, c)
		}
		out.Rows[i] = row
	}
	return out
}
