package dataset

// View is an ordered subsequence of a dataset, expressed as row indices.
// Views never copy records and are cheap to rebuild.
type View struct {
	ds   *Dataset
	rows []int
	all  bool
}

// All returns a view over every record
func All(ds *Dataset) View {
	return View{ds: ds, all: true}
}

// NewView returns a view over the given rows, which must be ascending
func NewView(ds *Dataset, rows []int) View {
	return View{ds: ds, rows: rows}
}

// Dataset returns the underlying dataset
func (v View) Dataset() *Dataset { return v.ds }

// Len returns the number of records in the view
func (v View) Len() int {
	if v.ds == nil {
		return 0
	}
	if v.all {
		return v.ds.Len()
	}
	return len(v.rows)
}

// Index maps a position in the view to a dataset row
func (v View) Index(i int) int {
	if v.all {
		return i
	}
	return v.rows[i]
}

// Rows returns the dataset row indices in view order
func (v View) Rows() []int {
	out := make([]int, v.Len())
	for i := range out {
		out[i] = v.Index(i)
	}
	return out
}

// Value returns the cell at view position i
func (v View) Value(i int, column string) Value {
	return v.ds.Value(v.Index(i), column)
}

// Head returns the first n records of the view
func (v View) Head(n int) View {
	if n < 0 || n >= v.Len() {
		return v
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = v.Index(i)
	}
	return View{ds: v.ds, rows: rows}
}

// Floats returns the non-missing numeric readings of a column in view order
func (v View) Floats(column string) []float64 {
	out := make([]float64, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		if f, ok := v.Value(i, column).Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

// NumericRange returns the min and max of a column within the view
func (v View) NumericRange(column string) (lo, hi float64, ok bool) {
	for _, f := range v.Floats(column) {
		if !ok {
			lo, hi, ok = f, f, true
			continue
		}
		if f < lo {
			lo = f
		}
		if f > hi {
			hi = f
		}
	}
	return lo, hi, ok
}
