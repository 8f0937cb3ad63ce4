// Package dataset holds the immutable in-memory table that every view,
// metric and export is derived from.
package dataset

import (
	"fmt"
	"sort"
	"strings"
)

// Column describes one named field of the dataset
type Column struct {
	Name string `json:"name" yaml:"name"`
	Kind Kind   `json:"kind" yaml:"kind"`
}

// Dataset is an ordered, immutable collection of records. Row order is the
// load order and never changes after construction.
type Dataset struct {
	name    string
	columns []Column
	index   map[string]int
	rows    [][]Value
}

// New builds a dataset, copying columns and rows so callers cannot mutate it
func New(name string, columns []Column, rows [][]Value) (*Dataset, error) {
	index := make(map[string]int, len(columns))
	cols := make([]Column, len(columns))
	for i, c := range columns {
		if c.Name == "" {
			return nil, fmt.Errorf("column %d has no name", i+1)
		}
		if _, dup := index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column name: %s", c.Name)
		}
		switch c.Kind {
		case KindCategorical, KindNumeric, KindBoolean:
		default:
			return nil, fmt.Errorf("column %s has unknown kind %q", c.Name, c.Kind)
		}
		index[c.Name] = i
		cols[i] = c
	}

	copied := make([][]Value, len(rows))
	for r, row := range rows {
		if len(row) != len(cols) {
			return nil, fmt.Errorf("row %d has %d values, expected %d", r+1, len(row), len(cols))
		}
		copied[r] = append([]Value(nil), row...)
	}

	return &Dataset{name: name, columns: cols, index: index, rows: copied}, nil
}

// Name returns the dataset name, usually the source file base name
func (d *Dataset) Name() string { return d.name }

// Len returns the number of records
func (d *Dataset) Len() int { return len(d.rows) }

// Columns returns a copy of the column list
func (d *Dataset) Columns() []Column {
	return append([]Column(nil), d.columns...)
}

// ColumnNames returns the column names in order
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column by name
func (d *Dataset) Column(name string) (Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return Column{}, false
	}
	return d.columns[i], true
}

// ColumnsOfKind returns the names of columns with the given kind
func (d *Dataset) ColumnsOfKind(kind Kind) []string {
	var names []string
	for _, c := range d.columns {
		if c.Kind == kind {
			names = append(names, c.Name)
		}
	}
	return names
}

// Value returns the cell at row for column. Unknown columns and out of
// range rows read as missing.
func (d *Dataset) Value(row int, column string) Value {
	i, ok := d.index[column]
	if !ok || row < 0 || row >= len(d.rows) {
		return Missing()
	}
	return d.rows[row][i]
}

// Row returns a copy of one record
func (d *Dataset) Row(row int) []Value {
	return append([]Value(nil), d.rows[row]...)
}

// Unique returns the distinct non-missing values of a column as strings,
// numerically ordered for numeric columns and lexically otherwise.
func (d *Dataset) Unique(column string) []string {
	i, ok := d.index[column]
	if !ok {
		return nil
	}
	seen := make(map[string]float64)
	for _, row := range d.rows {
		v := row[i]
		if v.IsMissing() {
			continue
		}
		f, _ := v.Float()
		seen[v.String()] = f
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	numeric := d.columns[i].Kind == KindNumeric
	sort.Slice(out, func(a, b int) bool {
		if numeric && seen[out[a]] != seen[out[b]] {
			return seen[out[a]] < seen[out[b]]
		}
		return strings.ToLower(out[a]) < strings.ToLower(out[b])
	})
	return out
}

// NumericRange returns the observed min and max of a column
func (d *Dataset) NumericRange(column string) (lo, hi float64, ok bool) {
	return All(d).NumericRange(column)
}

// Numeric returns the numeric reading of a cell
func (d *Dataset) Numeric(row int, column string) (float64, bool) {
	return d.Value(row, column).Float()
}

// Text returns the display text of a non-missing cell
func (d *Dataset) Text(row int, column string) (string, bool) {
	v := d.Value(row, column)
	if v.IsMissing() {
		return "", false
	}
	return v.String(), true
}

// Bool returns the boolean reading of a cell
func (d *Dataset) Bool(row int, column string) (bool, bool) {
	return d.Value(row, column).Truth()
}

// Range is NumericRange under the name used by slider widgets
func (d *Dataset) Range(column string) (lo, hi float64, ok bool) {
	return d.NumericRange(column)
}
