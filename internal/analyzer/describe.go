package analyzer

import (
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/yildizm/DataSum/internal/dataset"
)

// Describe summarizes each numeric column over the view: count, mean,
// sample standard deviation, min, quartiles and max. Columns with no
// values report a zero count and undefined statistics.
func Describe(v dataset.View, columns []string) []ColumnStats {
	out := make([]ColumnStats, 0, len(columns))
	for _, col := range columns {
		data := stats.Float64Data(v.Floats(col))
		cs := ColumnStats{Column: col, Count: len(data)}
		if len(data) > 0 {
			cs.Mean = fromStats(stats.Mean(data))
			cs.Std = fromStats(stats.StandardDeviationSample(data))
			cs.Min = fromStats(stats.Min(data))
			cs.Max = fromStats(stats.Max(data))
			cs.Q1 = quantile(data, 25)
			cs.Median = fromStats(stats.Median(data))
			cs.Q3 = quantile(data, 75)
		}
		out = append(out, cs)
	}
	return out
}

func fromStats(f float64, err error) Scalar {
	if err != nil {
		return Scalar{}
	}
	return Some(f)
}

// quantile falls back to nearest rank where the interpolated percentile
// is out of bounds for very small samples
func quantile(data stats.Float64Data, p float64) Scalar {
	q, err := stats.Percentile(data, p)
	if err != nil {
		q, err = stats.PercentileNearestRank(data, p)
	}
	return fromStats(q, err)
}

// Correlation returns the Pearson correlation matrix of the columns.
// Each pair uses the rows where both values are present; pairs with fewer
// than two such rows or zero variance are undefined.
func Correlation(v dataset.View, columns []string) *Matrix {
	m := &Matrix{
		Columns: append([]string(nil), columns...),
		Values:  make([][]Scalar, len(columns)),
	}
	for i := range m.Values {
		m.Values[i] = make([]Scalar, len(columns))
	}

	for i, a := range columns {
		for j := i; j < len(columns); j++ {
			b := columns[j]
			x, y := pairs(v, a, b)
			var c Scalar
			if len(x) >= 2 {
				c = Some(stat.Correlation(x, y, nil))
			}
			m.Values[i][j] = c
			m.Values[j][i] = c
		}
	}
	return m
}

// pairs returns the complete observations of two columns
func pairs(v dataset.View, a, b string) (x, y []float64) {
	for i := 0; i < v.Len(); i++ {
		fa, okA := v.Value(i, a).Float()
		fb, okB := v.Value(i, b).Float()
		if okA && okB {
			x = append(x, fa)
			y = append(y, fb)
		}
	}
	return x, y
}
