// Package dashboard describes what a dashboard shows: the filter widgets,
// key metrics, charts and about text for one dataset. Definitions are YAML
// documents; a built-in definition reproduces the Titanic explorer.
package dashboard

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yildizm/DataSum/internal/analyzer"
	"github.com/yildizm/DataSum/internal/dataset"
	"github.com/yildizm/DataSum/internal/filter"
)

// Definition is a dashboard document
type Definition struct {
	Title       string                  `yaml:"title" json:"title"`
	Description string                  `yaml:"description,omitempty" json:"description,omitempty"`
	Icon        string                  `yaml:"icon,omitempty" json:"icon,omitempty"`
	Noun        string                  `yaml:"noun,omitempty" json:"noun,omitempty"`
	Source      string                  `yaml:"source,omitempty" json:"source,omitempty"`
	Kinds       map[string]dataset.Kind `yaml:"kinds,omitempty" json:"kinds,omitempty"`
	Filters     []filter.Spec           `yaml:"filters" json:"filters"`
	Metrics     []analyzer.MetricSpec   `yaml:"metrics" json:"metrics"`
	Charts      []analyzer.ChartSpec    `yaml:"charts" json:"charts"`
	Table       []string                `yaml:"table,omitempty" json:"table,omitempty"`
	About       string                  `yaml:"about,omitempty" json:"about,omitempty"`
}

// ValidationError lists every problem found in a definition
type ValidationError struct {
	Problems []string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid dashboard: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid dashboard (%d problems):\n  - %s", len(e.Problems), strings.Join(e.Problems, "\n  - "))
}

// Load reads a definition file
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path) // #nosec G304 - user supplied definition path
	if err != nil {
		return nil, fmt.Errorf("failed to read dashboard %s: %w", path, err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard %s: %w", path, err)
	}
	return def, nil
}

// Parse decodes a definition, rejecting unknown fields
func Parse(data []byte) (*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty document")
		}
		return nil, err
	}

	for col, k := range def.Kinds {
		kind, err := dataset.ParseKind(string(k))
		if err != nil {
			return nil, fmt.Errorf("kinds.%s: %w", col, err)
		}
		def.Kinds[col] = kind
	}
	return &def, nil
}

// Marshal encodes a definition as YAML
func Marshal(def *Definition) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(def); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Validate checks the definition on its own and, when ds is not nil,
// that every referenced column exists with a usable kind.
func (d *Definition) Validate(ds *dataset.Dataset) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(d.Title) == "" {
		add("title is required")
	}

	seen := map[string]bool{}
	for _, f := range d.Filters {
		if err := f.Validate(); err != nil {
			add("%v", err)
			continue
		}
		if seen[f.Name] {
			add("duplicate filter name %s", f.Name)
		}
		seen[f.Name] = true
		for _, col := range f.Columns() {
			d.checkColumn(ds, "filter "+f.Name, col, add)
		}
		if ds != nil && (f.Kind == filter.KindRange || f.Kind == filter.KindMin) {
			if c, ok := ds.Column(f.Column); ok && c.Kind != dataset.KindNumeric {
				add("filter %s: column %s is %s, range filters need a numeric column", f.Name, f.Column, c.Kind)
			}
		}
	}

	seen = map[string]bool{}
	for _, m := range d.Metrics {
		if err := m.Validate(); err != nil {
			add("%v", err)
			continue
		}
		if seen[m.Name] {
			add("duplicate metric name %s", m.Name)
		}
		seen[m.Name] = true
		if m.Column != "" {
			d.checkColumn(ds, "metric "+m.Name, m.Column, add)
		}
	}

	seen = map[string]bool{}
	for _, c := range d.Charts {
		if err := c.Validate(); err != nil {
			add("%v", err)
			continue
		}
		if seen[c.Name] {
			add("duplicate chart name %s", c.Name)
		}
		seen[c.Name] = true
		for _, col := range c.Referenced() {
			d.checkColumn(ds, "chart "+c.Name, col, add)
		}
	}

	for _, col := range d.Table {
		d.checkColumn(ds, "table", col, add)
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func (d *Definition) checkColumn(ds *dataset.Dataset, where, col string, add func(string, ...any)) {
	if ds == nil {
		return
	}
	if _, ok := ds.Column(col); !ok {
		add("%s: unknown column %s", where, col)
	}
}

// Matches reports whether every column the definition references exists
func (d *Definition) Matches(ds *dataset.Dataset) bool {
	for _, col := range d.Referenced() {
		if _, ok := ds.Column(col); !ok {
			return false
		}
	}
	return true
}

// Referenced returns the distinct columns read by filters, metrics,
// charts and the table, in first-use order
func (d *Definition) Referenced() []string {
	var out []string
	seen := map[string]bool{}
	add := func(cols ...string) {
		for _, c := range cols {
			if c != "" && !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	for _, f := range d.Filters {
		add(f.Columns()...)
	}
	for _, m := range d.Metrics {
		add(m.Column)
	}
	for _, c := range d.Charts {
		add(c.Referenced()...)
	}
	add(d.Table...)
	return out
}

// Filter returns the filter spec with the given name
func (d *Definition) Filter(name string) (filter.Spec, bool) {
	for _, f := range d.Filters {
		if f.Name == name {
			return f, true
		}
	}
	return filter.Spec{}, false
}

// TableColumns returns the columns shown in the raw table
func (d *Definition) TableColumns(ds *dataset.Dataset) []string {
	if len(d.Table) > 0 {
		return append([]string(nil), d.Table...)
	}
	return ds.ColumnNames()
}

// NewEngine returns an analyzer configured with the definition's metrics
// and charts
func (d *Definition) NewEngine(histogramBins int) *analyzer.AnalyzerEngine {
	e := analyzer.NewEngine()
	e.WithMetrics(d.Metrics)
	e.WithCharts(d.Charts)
	e.SetHistogramBins(histogramBins)
	e.SetTitle(d.Title)
	e.SetNoun(d.Noun)
	return e
}
