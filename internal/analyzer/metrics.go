package analyzer

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"github.com/yildizm/DataSum/internal/dataset"
)

// Count returns the number of records in the view. It is always defined.
func Count(v dataset.View) Scalar {
	return Scalar{Value: float64(v.Len()), Valid: true}
}

// Mean returns the arithmetic mean of a column over its non-missing
// values. It is undefined when the view is empty or every value is missing.
func Mean(v dataset.View, column string) Scalar {
	vals := v.Floats(column)
	if len(vals) == 0 {
		return Scalar{}
	}
	m, err := stats.Mean(vals)
	if err != nil {
		return Scalar{}
	}
	return Some(m)
}

// Sum returns the total of a column; undefined for an empty view
func Sum(v dataset.View, column string) Scalar {
	if v.Len() == 0 {
		return Scalar{}
	}
	s, err := stats.Sum(v.Floats(column))
	if err != nil {
		return Scalar{Value: 0, Valid: true}
	}
	return Some(s)
}

// Rate returns sum(column) / rows * 100 for a 0/1 or boolean column.
// Missing values count as zero. Undefined for an empty view.
func Rate(v dataset.View, column string) Scalar {
	if v.Len() == 0 {
		return Scalar{}
	}
	total := 0.0
	for i := 0; i < v.Len(); i++ {
		if b, ok := v.Value(i, column).Truth(); ok && b {
			total++
		}
	}
	return Some(total / float64(v.Len()) * 100)
}

// ComputeMetric evaluates one metric spec over the view
func ComputeMetric(spec MetricSpec, v dataset.View) (Metric, error) {
	m := Metric{Name: spec.Name, Label: spec.Label, Kind: spec.Kind, Format: spec.Format}
	if m.Label == "" {
		m.Label = spec.Name
	}

	switch spec.Kind {
	case MetricCount:
		m.Value = Count(v)
		if m.Format == "" {
			m.Format = FormatInteger
		}
	case MetricMean:
		m.Value = Mean(v, spec.Column)
	case MetricSum:
		m.Value = Sum(v, spec.Column)
	case MetricRate:
		m.Value = Rate(v, spec.Column)
		if m.Format == "" {
			m.Format = FormatPercent
		}
	default:
		return m, fmt.Errorf("metric %s: unknown kind %q", spec.Name, spec.Kind)
	}
	if m.Format == "" {
		m.Format = FormatDecimal
	}
	return m, nil
}
