package analyzer

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/yildizm/DataSum/internal/dataset"
)

// NA is how an undefined metric is displayed
const NA = "N/A"

// Scalar is a number that may be undefined, such as the mean of an empty
// view. The zero Scalar is undefined.
type Scalar struct {
	Value float64
	Valid bool
}

// Some returns a defined scalar, treating NaN and Inf as undefined
func Some(f float64) Scalar {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Scalar{}
	}
	return Scalar{Value: f, Valid: true}
}

// MarshalJSON encodes undefined scalars as null
func (s Scalar) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// String formats the scalar with two decimals, or N/A
func (s Scalar) String() string {
	if !s.Valid {
		return NA
	}
	return strconv.FormatFloat(s.Value, 'f', 2, 64)
}

// MetricKind selects the aggregation of a key metric
type MetricKind string

const (
	MetricCount MetricKind = "count"
	MetricMean  MetricKind = "mean"
	MetricRate  MetricKind = "rate"
	MetricSum   MetricKind = "sum"
)

// Format controls how a metric value is displayed
type Format string

const (
	FormatInteger  Format = "integer"
	FormatDecimal  Format = "decimal"
	FormatPercent  Format = "percent"
	FormatCurrency Format = "currency"
)

// MetricSpec declares a key metric
type MetricSpec struct {
	Name   string     `yaml:"name" json:"name"`
	Label  string     `yaml:"label,omitempty" json:"label,omitempty"`
	Kind   MetricKind `yaml:"kind" json:"kind"`
	Column string     `yaml:"column,omitempty" json:"column,omitempty"`
	Format Format     `yaml:"format,omitempty" json:"format,omitempty"`
}

// Validate checks the spec is self consistent
func (s MetricSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("metric has no name")
	}
	switch s.Kind {
	case MetricCount:
	case MetricMean, MetricRate, MetricSum:
		if s.Column == "" {
			return fmt.Errorf("metric %s: column is required", s.Name)
		}
	default:
		return fmt.Errorf("metric %s: unknown kind %q", s.Name, s.Kind)
	}
	switch s.Format {
	case "", FormatInteger, FormatDecimal, FormatPercent, FormatCurrency:
	default:
		return fmt.Errorf("metric %s: unknown format %q", s.Name, s.Format)
	}
	return nil
}

// Metric is a computed key metric
type Metric struct {
	Name   string     `json:"name"`
	Label  string     `json:"label"`
	Kind   MetricKind `json:"kind"`
	Format Format     `json:"format"`
	Value  Scalar     `json:"value"`
}

// Valid reports whether the metric is defined
func (m Metric) Valid() bool { return m.Value.Valid }

// String renders the metric for display, N/A when undefined
func (m Metric) String() string {
	if !m.Value.Valid {
		return NA
	}
	v := m.Value.Value
	switch m.Format {
	case FormatInteger:
		return addCommas(strconv.FormatInt(int64(math.Round(v)), 10))
	case FormatPercent:
		return fmt.Sprintf("%.1f%%", v)
	case FormatCurrency:
		return fmt.Sprintf("$%.2f", v)
	default:
		return fmt.Sprintf("%.1f", v)
	}
}

// ChartKind selects the chart type
type ChartKind string

const (
	ChartBar        ChartKind = "bar"
	ChartHistogram  ChartKind = "histogram"
	ChartGroupedBar ChartKind = "grouped_bar"
	ChartHeatmap    ChartKind = "heatmap"
	ChartBoxPlot    ChartKind = "boxplot"
)

// Aggregation is how a bar chart summarizes each group
type Aggregation string

const (
	AggRate  Aggregation = "rate"
	AggMean  Aggregation = "mean"
	AggCount Aggregation = "count"
)

// ChartSpec declares a chart
type ChartSpec struct {
	Name    string            `yaml:"name" json:"name"`
	Title   string            `yaml:"title,omitempty" json:"title,omitempty"`
	Kind    ChartKind         `yaml:"kind" json:"kind"`
	Column  string            `yaml:"column,omitempty" json:"column,omitempty"`
	Value   string            `yaml:"value,omitempty" json:"value,omitempty"`
	Agg     Aggregation       `yaml:"agg,omitempty" json:"agg,omitempty"`
	Bins    int               `yaml:"bins,omitempty" json:"bins,omitempty"`
	Columns []string          `yaml:"columns,omitempty" json:"columns,omitempty"`
	Labels  map[string]string `yaml:"labels,omitempty" json:"labels,omitempty"`
	XLabel  string            `yaml:"x_label,omitempty" json:"x_label,omitempty"`
	YLabel  string            `yaml:"y_label,omitempty" json:"y_label,omitempty"`
}

// Validate checks the spec is self consistent
func (s ChartSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("chart has no name")
	}
	switch s.Kind {
	case ChartBar:
		if s.Column == "" {
			return fmt.Errorf("chart %s: column is required", s.Name)
		}
		switch s.Agg {
		case "", AggCount:
		case AggRate, AggMean:
			if s.Value == "" {
				return fmt.Errorf("chart %s: value column is required for %s", s.Name, s.Agg)
			}
		default:
			return fmt.Errorf("chart %s: unknown aggregation %q", s.Name, s.Agg)
		}
	case ChartGroupedBar:
		if s.Column == "" || s.Value == "" {
			return fmt.Errorf("chart %s: column and value are required", s.Name)
		}
	case ChartHistogram, ChartBoxPlot:
		if s.Column == "" {
			return fmt.Errorf("chart %s: column is required", s.Name)
		}
		if s.Bins < 0 {
			return fmt.Errorf("chart %s: bins must be positive", s.Name)
		}
	case ChartHeatmap:
	default:
		return fmt.Errorf("chart %s: unknown kind %q", s.Name, s.Kind)
	}
	return nil
}

// Referenced returns every column the chart reads
func (s ChartSpec) Referenced() []string {
	var cols []string
	if s.Column != "" {
		cols = append(cols, s.Column)
	}
	if s.Value != "" {
		cols = append(cols, s.Value)
	}
	return append(cols, s.Columns...)
}

// Series is one named row of values aligned with ChartData.Categories
type Series struct {
	Name   string   `json:"name"`
	Values []Scalar `json:"values"`
}

// BoxStats is a five-number summary with Tukey whiskers
type BoxStats struct {
	Label    string    `json:"label"`
	Count    int       `json:"count"`
	Min      float64   `json:"min"`
	Q1       float64   `json:"q1"`
	Median   float64   `json:"median"`
	Q3       float64   `json:"q3"`
	Max      float64   `json:"max"`
	LowerFen float64   `json:"lower_whisker"`
	UpperFen float64   `json:"upper_whisker"`
	Outliers []float64 `json:"outliers,omitempty"`
}

// ChartData is the computed content of a chart, independent of rendering
type ChartData struct {
	Name       string    `json:"name"`
	Title      string    `json:"title"`
	Kind       ChartKind `json:"kind"`
	XLabel     string    `json:"x_label,omitempty"`
	YLabel     string    `json:"y_label,omitempty"`
	Categories []string  `json:"categories,omitempty"`
	Series     []Series  `json:"series,omitempty"`
	Edges      []float64 `json:"edges,omitempty"`
	Box        *BoxStats `json:"box,omitempty"`
	Matrix     *Matrix   `json:"matrix,omitempty"`
}

// Empty reports whether the chart has nothing to draw
func (c ChartData) Empty() bool {
	switch c.Kind {
	case ChartHeatmap:
		return c.Matrix == nil || len(c.Matrix.Columns) == 0
	case ChartBoxPlot:
		return c.Box == nil || c.Box.Count == 0
	default:
		for _, s := range c.Series {
			for _, v := range s.Values {
				if v.Valid && v.Value != 0 {
					return false
				}
			}
		}
		return true
	}
}

// Matrix is a square matrix over named columns
type Matrix struct {
	Columns []string   `json:"columns"`
	Values  [][]Scalar `json:"values"`
}

// At returns the cell for a pair of column names
func (m *Matrix) At(a, b string) Scalar {
	i, j := -1, -1
	for k, c := range m.Columns {
		if c == a {
			i = k
		}
		if c == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return Scalar{}
	}
	return m.Values[i][j]
}

// ColumnStats is one column of a describe table
type ColumnStats struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
	Mean   Scalar `json:"mean"`
	Std    Scalar `json:"std"`
	Min    Scalar `json:"min"`
	Q1     Scalar `json:"25%"`
	Median Scalar `json:"50%"`
	Q3     Scalar `json:"75%"`
	Max    Scalar `json:"max"`
}

// InsightType categorizes insights
type InsightType string

const (
	InsightMissingData InsightType = "missing_data"
	InsightCorrelation InsightType = "correlation"
	InsightGroupGap    InsightType = "group_gap"
	InsightSmallView   InsightType = "small_view"
)

// Insight is an observation about the current view
type Insight struct {
	Type        InsightType `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Confidence  float64     `json:"confidence"`
}

// Analysis is everything derived from one filtered view
type Analysis struct {
	Title       string           `json:"title,omitempty"`
	Dataset     string           `json:"dataset"`
	Total       int              `json:"total"`
	Rows        int              `json:"rows"`
	Noun        string           `json:"noun,omitempty"`
	Filters     []string         `json:"filters"`
	Metrics     []Metric         `json:"metrics"`
	Charts      []ChartData      `json:"charts"`
	Describe    []ColumnStats    `json:"describe"`
	Correlation *Matrix          `json:"correlation,omitempty"`
	Insights    []Insight        `json:"insights"`
	Columns     []dataset.Column `json:"columns"`
	GeneratedAt time.Time        `json:"generated_at"`
	Duration    time.Duration    `json:"duration"`

	// View is the filtered view the analysis was computed from
	View dataset.View `json:"-"`
}

// Showing returns "Showing X of Y noun"
func (a *Analysis) Showing() string {
	noun := a.Noun
	if noun == "" {
		noun = "records"
	}
	return fmt.Sprintf("Showing %s of %s %s", addCommas(strconv.Itoa(a.Rows)), addCommas(strconv.Itoa(a.Total)), noun)
}

// Metric returns the metric with the given name
func (a *Analysis) Metric(name string) (Metric, bool) {
	for _, m := range a.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// Chart returns the chart with the given name
func (a *Analysis) Chart(name string) (ChartData, bool) {
	for _, c := range a.Charts {
		if c.Name == name {
			return c, true
		}
	}
	return ChartData{}, false
}

// addCommas inserts thousands separators into an integer string
func addCommas(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
