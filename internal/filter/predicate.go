// Package filter holds the filter panel: predicates over dataset columns,
// the immutable filter state and the evaluator that derives a view.
package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yildizm/DataSum/internal/dataset"
)

// Kind identifies a predicate type
type Kind string

const (
	KindIn     Kind = "in"
	KindEquals Kind = "equals"
	KindRange  Kind = "range"
	KindMin    Kind = "min"
	KindFlag   Kind = "flag"
	KindSearch Kind = "search"
)

// Predicate is one filter widget's constraint. An inactive predicate
// accepts every record, including records with missing values.
type Predicate interface {
	// Kind returns the predicate type
	Kind() Kind

	// Active reports whether the predicate constrains anything
	Active() bool

	// Columns returns the columns the predicate reads
	Columns() []string

	// Matcher compiles the predicate against a dataset
	Matcher(ds *dataset.Dataset) func(row int) bool

	// Raw returns the value in the form accepted by Spec.Parse
	Raw() string

	// Describe returns a short human readable form
	Describe() string
}

func matchNone(int) bool { return false }

// normalize makes "1", "1.0" and " 1 " compare equal, and folds case
func normalize(s string) string {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return dataset.FormatNumber(f)
	}
	return strings.ToLower(s)
}

// In keeps records whose column value is one of Values. With All set
// every value is selected and the filter is inactive; an empty selection
// without All matches nothing.
type In struct {
	Column string
	Values []string
	All    bool
}

// Kind returns KindIn
func (p In) Kind() Kind { return KindIn }

// Active reports whether the selection is narrower than every value
func (p In) Active() bool { return !p.All }

// Columns returns the filtered column
func (p In) Columns() []string { return []string{p.Column} }

// Matcher compiles the selection into a lookup set
func (p In) Matcher(ds *dataset.Dataset) func(int) bool {
	if p.All {
		return func(int) bool { return true }
	}
	if _, ok := ds.Column(p.Column); !ok || len(p.Values) == 0 {
		return matchNone
	}
	set := make(map[string]bool, len(p.Values))
	for _, v := range p.Values {
		set[normalize(v)] = true
	}
	return func(row int) bool {
		v := ds.Value(row, p.Column)
		if v.IsMissing() {
			return false
		}
		return set[normalize(v.String())]
	}
}

// Raw returns the comma separated selection, AllOption when unrestricted
func (p In) Raw() string {
	if p.All {
		return AllOption
	}
	return strings.Join(p.Values, ",")
}

// Describe returns "column in [a, b]"
func (p In) Describe() string {
	if p.All {
		return fmt.Sprintf("%s: %s", p.Column, strings.ToLower(AllOption))
	}
	return fmt.Sprintf("%s in [%s]", p.Column, strings.Join(p.Values, ", "))
}

// AllOption is the radio/selectbox choice that disables an Equals filter,
// and the text form of a multiselect with every value selected
const AllOption = "All"

// Equals keeps records whose column equals Value. An empty value or
// exactly AllOption is inactive; a category spelled "all" still filters.
type Equals struct {
	Column string
	Value  string
}

// Kind returns KindEquals
func (p Equals) Kind() Kind { return KindEquals }

// Active reports whether a concrete option is chosen
func (p Equals) Active() bool {
	v := strings.TrimSpace(p.Value)
	return v != "" && v != AllOption
}

// Columns returns the filtered column
func (p Equals) Columns() []string { return []string{p.Column} }

// Matcher compares normalized values
func (p Equals) Matcher(ds *dataset.Dataset) func(int) bool {
	if _, ok := ds.Column(p.Column); !ok {
		return matchNone
	}
	want := normalize(p.Value)
	return func(row int) bool {
		v := ds.Value(row, p.Column)
		return !v.IsMissing() && normalize(v.String()) == want
	}
}

// Raw returns the chosen option
func (p Equals) Raw() string { return p.Value }

// Describe returns "column = value"
func (p Equals) Describe() string { return fmt.Sprintf("%s = %s", p.Column, p.Value) }

// Range keeps records with Min <= value <= Max. Either bound may be nil;
// with both nil the range is inactive.
type Range struct {
	Column string
	Min    *float64
	Max    *float64
}

// Kind returns KindRange
func (p Range) Kind() Kind { return KindRange }

// Active reports whether either bound is set
func (p Range) Active() bool { return p.Min != nil || p.Max != nil }

// Columns returns the filtered column
func (p Range) Columns() []string { return []string{p.Column} }

// Matcher checks the inclusive bounds
func (p Range) Matcher(ds *dataset.Dataset) func(int) bool {
	if _, ok := ds.Column(p.Column); !ok {
		return matchNone
	}
	return func(row int) bool {
		f, ok := ds.Numeric(row, p.Column)
		if !ok {
			return false
		}
		if p.Min != nil && f < *p.Min {
			return false
		}
		if p.Max != nil && f > *p.Max {
			return false
		}
		return true
	}
}

// Raw returns "lo..hi" with open sides left empty
func (p Range) Raw() string {
	if !p.Active() {
		return ""
	}
	return boundString(p.Min) + ".." + boundString(p.Max)
}

// Describe returns "lo ≤ column ≤ hi"
func (p Range) Describe() string {
	switch {
	case p.Min != nil && p.Max != nil:
		return fmt.Sprintf("%s ≤ %s ≤ %s", boundString(p.Min), p.Column, boundString(p.Max))
	case p.Min != nil:
		return fmt.Sprintf("%s ≥ %s", p.Column, boundString(p.Min))
	case p.Max != nil:
		return fmt.Sprintf("%s ≤ %s", p.Column, boundString(p.Max))
	default:
		return p.Column + " any"
	}
}

func boundString(f *float64) string {
	if f == nil {
		return ""
	}
	return dataset.FormatNumber(*f)
}

// Min keeps records with value >= Value. A nil Value is inactive.
type Min struct {
	Column string
	Value  *float64
}

// Kind returns KindMin
func (p Min) Kind() Kind { return KindMin }

// Active reports whether a minimum is set
func (p Min) Active() bool { return p.Value != nil }

// Columns returns the filtered column
func (p Min) Columns() []string { return []string{p.Column} }

// Matcher checks the lower bound
func (p Min) Matcher(ds *dataset.Dataset) func(int) bool {
	return Range{Column: p.Column, Min: p.Value}.Matcher(ds)
}

// Raw returns the minimum
func (p Min) Raw() string { return boundString(p.Value) }

// Describe returns "column ≥ value"
func (p Min) Describe() string { return fmt.Sprintf("%s ≥ %s", p.Column, boundString(p.Value)) }

// Flag keeps records whose boolean column is true when Checked.
// An unchecked flag is inactive.
type Flag struct {
	Column  string
	Checked bool
}

// Kind returns KindFlag
func (p Flag) Kind() Kind { return KindFlag }

// Active reports whether the box is checked
func (p Flag) Active() bool { return p.Checked }

// Columns returns the filtered column
func (p Flag) Columns() []string { return []string{p.Column} }

// Matcher requires a true reading
func (p Flag) Matcher(ds *dataset.Dataset) func(int) bool {
	if _, ok := ds.Column(p.Column); !ok {
		return matchNone
	}
	return func(row int) bool {
		b, ok := ds.Bool(row, p.Column)
		return ok && b
	}
}

// Raw returns "true" or "false"
func (p Flag) Raw() string { return strconv.FormatBool(p.Checked) }

// Describe returns the column name when checked
func (p Flag) Describe() string {
	if p.Checked {
		return p.Column
	}
	return "not " + p.Column
}

// Search keeps records where Text occurs, case-insensitively, in any of
// Fields. Missing fields never match; empty text is inactive.
type Search struct {
	Fields []string
	Text   string
}

// Kind returns KindSearch
func (p Search) Kind() Kind { return KindSearch }

// Active reports whether there is search text
func (p Search) Active() bool { return strings.TrimSpace(p.Text) != "" }

// Columns returns the searched fields
func (p Search) Columns() []string { return append([]string(nil), p.Fields...) }

// Matcher scans the fields for the lowered needle
func (p Search) Matcher(ds *dataset.Dataset) func(int) bool {
	needle := strings.ToLower(strings.TrimSpace(p.Text))
	fields := make([]string, 0, len(p.Fields))
	for _, f := range p.Fields {
		if _, ok := ds.Column(f); ok {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return matchNone
	}
	return func(row int) bool {
		for _, f := range fields {
			v := ds.Value(row, f)
			if v.IsMissing() {
				continue
			}
			if strings.Contains(strings.ToLower(v.String()), needle) {
				return true
			}
		}
		return false
	}
}

// Raw returns the search text
func (p Search) Raw() string { return p.Text }

// Describe returns `fields contain "text"`
func (p Search) Describe() string {
	return fmt.Sprintf("%s contains %q", strings.Join(p.Fields, "|"), strings.TrimSpace(p.Text))
}
