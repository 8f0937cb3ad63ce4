package analyzer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/yildizm/DataSum/internal/dataset"
)

// DefaultBins is the histogram bin count when a chart does not set one
const DefaultBins = 20

// groupKeys returns the distinct non-missing values of a column in the
// view, numerically ordered for numeric columns
func groupKeys(v dataset.View, column string) []string {
	seen := map[string]float64{}
	numeric := true
	for i := 0; i < v.Len(); i++ {
		val := v.Value(i, column)
		if val.IsMissing() {
			continue
		}
		f, ok := val.Float()
		if !ok {
			numeric = false
		}
		seen[val.String()] = f
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if numeric && seen[keys[a]] != seen[keys[b]] {
			return seen[keys[a]] < seen[keys[b]]
		}
		return strings.ToLower(keys[a]) < strings.ToLower(keys[b])
	})
	return keys
}

func label(labels map[string]string, key string) string {
	if l, ok := labels[key]; ok {
		return l
	}
	return key
}

func labelAll(labels map[string]string, keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = label(labels, k)
	}
	return out
}

// group aggregates value over each group of by
func group(v dataset.View, by string, agg func(rows []int) Scalar) ([]string, []Scalar) {
	keys := groupKeys(v, by)
	members := make(map[string][]int, len(keys))
	for i := 0; i < v.Len(); i++ {
		val := v.Value(i, by)
		if val.IsMissing() {
			continue
		}
		members[val.String()] = append(members[val.String()], v.Index(i))
	}
	values := make([]Scalar, len(keys))
	for i, k := range keys {
		values[i] = agg(members[k])
	}
	return keys, values
}

// GroupRate returns, per group of by, the share of records whose value
// column is true, over the records where it is present
func GroupRate(v dataset.View, by, value string) ([]string, []Scalar) {
	ds := v.Dataset()
	return group(v, by, func(rows []int) Scalar {
		n, hits := 0, 0
		for _, r := range rows {
			b, ok := ds.Bool(r, value)
			if !ok {
				continue
			}
			n++
			if b {
				hits++
			}
		}
		if n == 0 {
			return Scalar{}
		}
		return Some(float64(hits) / float64(n))
	})
}

// GroupMean returns the mean of value per group of by
func GroupMean(v dataset.View, by, value string) ([]string, []Scalar) {
	ds := v.Dataset()
	return group(v, by, func(rows []int) Scalar {
		return Mean(dataset.NewView(ds, rows), value)
	})
}

// GroupCount returns the number of records per group of by
func GroupCount(v dataset.View, by string) ([]string, []Scalar) {
	return group(v, by, func(rows []int) Scalar {
		return Some(float64(len(rows)))
	})
}

// CrossTab counts records per group of by, split by the values of of.
// Records missing either column are skipped.
func CrossTab(v dataset.View, by, of string) (groups, splits []string, counts [][]int) {
	groups = groupKeys(v, by)
	splits = groupKeys(v, of)
	gi := indexOf(groups)
	si := indexOf(splits)

	counts = make([][]int, len(splits))
	for i := range counts {
		counts[i] = make([]int, len(groups))
	}
	for i := 0; i < v.Len(); i++ {
		g, s := v.Value(i, by), v.Value(i, of)
		if g.IsMissing() || s.IsMissing() {
			continue
		}
		counts[si[s.String()]][gi[g.String()]]++
	}
	return groups, splits, counts
}

func indexOf(keys []string) map[string]int {
	idx := make(map[string]int, len(keys))
	for i, k := range keys {
		idx[k] = i
	}
	return idx
}

// Histogram counts the finite values of a column in equal width bins.
// The last bin includes its upper edge. A constant column gets one bin
// of width one centred on the value.
func Histogram(v dataset.View, column string, bins int) (edges []float64, counts []int) {
	if bins <= 0 {
		bins = DefaultBins
	}
	vals := finite(v.Floats(column))
	if len(vals) == 0 {
		return nil, nil
	}
	lo, hi := vals[0], vals[0]
	for _, f := range vals[1:] {
		lo = math.Min(lo, f)
		hi = math.Max(hi, f)
	}
	if lo == hi {
		return []float64{lo - 0.5, hi + 0.5}, []int{len(vals)}
	}

	// hi-lo overflows near ±MaxFloat64, so work with scaled bounds
	width := hi/float64(bins) - lo/float64(bins)
	edges = make([]float64, bins+1)
	for i := range edges {
		t := float64(i) / float64(bins)
		edges[i] = lo*(1-t) + hi*t
	}

	counts = make([]int, bins)
	for _, f := range vals {
		b := int(f/width - lo/width)
		counts[min(max(b, 0), bins-1)]++
	}
	return edges, counts
}

func finite(vals []float64) []float64 {
	out := vals[:0]
	for _, f := range vals {
		if !math.IsNaN(f) && !math.IsInf(f, 0) {
			out = append(out, f)
		}
	}
	return out
}

// BoxPlot computes quartiles, 1.5 IQR whiskers and outliers of a column
func BoxPlot(v dataset.View, column string) BoxStats {
	vals := append([]float64(nil), v.Floats(column)...)
	box := BoxStats{Label: column, Count: len(vals)}
	if len(vals) == 0 {
		return box
	}
	sort.Float64s(vals)

	box.Min, box.Max = vals[0], vals[len(vals)-1]
	box.Q1 = quantile(vals, 25).Value
	box.Median = median(vals)
	box.Q3 = quantile(vals, 75).Value

	iqr := box.Q3 - box.Q1
	lowFence, highFence := box.Q1-1.5*iqr, box.Q3+1.5*iqr
	box.LowerFen, box.UpperFen = box.Max, box.Min
	for _, f := range vals {
		if f < lowFence || f > highFence {
			box.Outliers = append(box.Outliers, f)
			continue
		}
		box.LowerFen = math.Min(box.LowerFen, f)
		box.UpperFen = math.Max(box.UpperFen, f)
	}
	return box
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// BuildChart computes the data for one chart spec. numeric lists the
// columns a heatmap covers when the spec does not name any.
func BuildChart(spec ChartSpec, v dataset.View, numeric []string) (ChartData, error) {
	c := ChartData{
		Name:   spec.Name,
		Title:  spec.Title,
		Kind:   spec.Kind,
		XLabel: spec.XLabel,
		YLabel: spec.YLabel,
	}
	if c.Title == "" {
		c.Title = spec.Name
	}

	switch spec.Kind {
	case ChartBar:
		var keys []string
		var vals []Scalar
		switch spec.Agg {
		case AggRate:
			keys, vals = GroupRate(v, spec.Column, spec.Value)
		case AggMean:
			keys, vals = GroupMean(v, spec.Column, spec.Value)
		default:
			keys, vals = GroupCount(v, spec.Column)
		}
		c.Categories = labelAll(spec.Labels, keys)
		c.Series = []Series{{Name: seriesName(spec), Values: vals}}
		setDefault(&c.XLabel, spec.Column)
		setDefault(&c.YLabel, seriesName(spec))

	case ChartGroupedBar:
		groups, splits, counts := CrossTab(v, spec.Column, spec.Value)
		c.Categories = labelAll(spec.Labels, groups)
		for i, s := range splits {
			vals := make([]Scalar, len(groups))
			for j, n := range counts[i] {
				vals[j] = Some(float64(n))
			}
			c.Series = append(c.Series, Series{Name: label(spec.Labels, s), Values: vals})
		}
		setDefault(&c.XLabel, spec.Column)
		setDefault(&c.YLabel, "Count")

	case ChartHistogram:
		bins := spec.Bins
		edges, counts := Histogram(v, spec.Column, bins)
		c.Edges = edges
		vals := make([]Scalar, len(counts))
		for i, n := range counts {
			vals[i] = Some(float64(n))
			c.Categories = append(c.Categories, fmt.Sprintf("%.1f-%.1f", edges[i], edges[i+1]))
		}
		c.Series = []Series{{Name: "count", Values: vals}}
		setDefault(&c.XLabel, spec.Column)
		setDefault(&c.YLabel, "Count")

	case ChartBoxPlot:
		box := BoxPlot(v, spec.Column)
		c.Box = &box

	case ChartHeatmap:
		cols := spec.Columns
		if len(cols) == 0 {
			cols = numeric
		}
		c.Matrix = Correlation(v, cols)

	default:
		return c, fmt.Errorf("chart %s: unknown kind %q", spec.Name, spec.Kind)
	}
	return c, nil
}

func seriesName(spec ChartSpec) string {
	switch spec.Agg {
	case AggRate:
		return spec.Value + " rate"
	case AggMean:
		return "mean " + spec.Value
	default:
		return "count"
	}
}

func setDefault(s *string, v string) {
	if *s == "" {
		*s = v
	}
}
