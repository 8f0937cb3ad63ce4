package filter

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Widget names the control a filter is drawn with
type Widget string

const (
	WidgetMultiSelect Widget = "multiselect"
	WidgetSlider      Widget = "slider"
	WidgetRadio       Widget = "radio"
	WidgetSelectBox   Widget = "selectbox"
	WidgetCheckbox    Widget = "checkbox"
	WidgetNumber      Widget = "number"
	WidgetText        Widget = "text"
)

// Spec declares one filter of a dashboard
type Spec struct {
	Name    string   `yaml:"name" json:"name"`
	Kind    Kind     `yaml:"kind" json:"kind"`
	Column  string   `yaml:"column,omitempty" json:"column,omitempty"`
	Fields  []string `yaml:"fields,omitempty" json:"fields,omitempty"`
	Label   string   `yaml:"label,omitempty" json:"label,omitempty"`
	Widget  Widget   `yaml:"widget,omitempty" json:"widget,omitempty"`
	Options []string `yaml:"options,omitempty" json:"options,omitempty"`
	Default string   `yaml:"default,omitempty" json:"default,omitempty"`
	Step    float64  `yaml:"step,omitempty" json:"step,omitempty"`
}

// Validate checks the spec is self consistent
func (s Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("filter has no name")
	}
	switch s.Kind {
	case KindIn, KindEquals, KindRange, KindMin, KindFlag:
		if s.Column == "" {
			return fmt.Errorf("filter %s: column is required", s.Name)
		}
	case KindSearch:
		if len(s.Fields) == 0 {
			return fmt.Errorf("filter %s: fields are required", s.Name)
		}
	default:
		return fmt.Errorf("filter %s: unknown kind %q", s.Name, s.Kind)
	}
	if s.Default != "" {
		if _, err := s.Parse(s.Default); err != nil {
			return err
		}
	}
	return nil
}

// Columns returns the columns the filter reads
func (s Spec) Columns() []string {
	if s.Kind == KindSearch {
		return append([]string(nil), s.Fields...)
	}
	return []string{s.Column}
}

// Title returns the label, or the name when no label is set
func (s Spec) Title() string {
	if s.Label != "" {
		return s.Label
	}
	return s.Name
}

// WidgetOrDefault returns the configured widget or the natural one for the kind
func (s Spec) WidgetOrDefault() Widget {
	if s.Widget != "" {
		return s.Widget
	}
	switch s.Kind {
	case KindIn:
		return WidgetMultiSelect
	case KindEquals:
		if len(s.Options) > 0 && len(s.Options) <= 3 {
			return WidgetRadio
		}
		return WidgetSelectBox
	case KindRange:
		return WidgetSlider
	case KindMin:
		return WidgetNumber
	case KindFlag:
		return WidgetCheckbox
	default:
		return WidgetText
	}
}

// Parse builds a predicate from its text form:
//
//	in      a,b,c    ("All" selects every value, empty selects none)
//	equals  value    (empty or "All" is inactive)
//	range   lo..hi   (either side may be empty)
//	min     number
//	flag    true|false
//	search  text
func (s Spec) Parse(raw string) (Predicate, error) {
	raw = strings.TrimSpace(raw)
	switch s.Kind {
	case KindIn:
		if raw == AllOption {
			return In{Column: s.Column, All: true}, nil
		}
		var values []string
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		return In{Column: s.Column, Values: values}, nil

	case KindEquals:
		return Equals{Column: s.Column, Value: raw}, nil

	case KindRange:
		lo, hi, err := parseRange(raw)
		if err != nil {
			return nil, &ValueError{Filter: s.Name, Value: raw, Reason: err.Error()}
		}
		return Range{Column: s.Column, Min: lo, Max: hi}, nil

	case KindMin:
		if raw == "" {
			return Min{Column: s.Column}, nil
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, &ValueError{Filter: s.Name, Value: raw, Reason: "not a number"}
		}
		return Min{Column: s.Column, Value: &f}, nil

	case KindFlag:
		if raw == "" {
			return Flag{Column: s.Column}, nil
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, &ValueError{Filter: s.Name, Value: raw, Reason: "not a boolean"}
		}
		return Flag{Column: s.Column, Checked: b}, nil

	case KindSearch:
		return Search{Fields: append([]string(nil), s.Fields...), Text: raw}, nil

	default:
		return nil, fmt.Errorf("filter %s: unknown kind %q", s.Name, s.Kind)
	}
}

// Zero returns the inactive predicate for the filter
func (s Spec) Zero() Predicate {
	if s.Kind == KindIn {
		return In{Column: s.Column, All: true}
	}
	p, err := s.Parse("")
	if err != nil {
		// only reachable for an unknown kind, which Validate rejects
		return In{Column: s.Column, All: true}
	}
	return p
}

func parseRange(raw string) (lo, hi *float64, err error) {
	if raw == "" {
		return nil, nil, nil
	}
	left, right, ok := strings.Cut(raw, "..")
	if !ok {
		return nil, nil, fmt.Errorf("expected lo..hi")
	}
	if lo, err = parseBound(left); err != nil {
		return nil, nil, err
	}
	if hi, err = parseBound(right); err != nil {
		return nil, nil, err
	}
	return lo, hi, nil
}

func parseBound(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("bound %q is not a number", s)
	}
	return &f, nil
}

// DefaultState builds the initial state from each spec's default
func DefaultState(specs []Spec) (State, error) {
	st := NewState()
	for _, sp := range specs {
		if sp.Default == "" {
			st = st.With(sp.Name, sp.Zero())
			continue
		}
		p, err := sp.Parse(sp.Default)
		if err != nil {
			return State{}, err
		}
		st = st.With(sp.Name, p)
	}
	return st, nil
}

func specIndex(specs []Spec) map[string]Spec {
	idx := make(map[string]Spec, len(specs))
	for _, sp := range specs {
		idx[sp.Name] = sp
	}
	return idx
}

// ParseAssignments applies "name=value" assignments on top of base
func ParseAssignments(specs []Spec, base State, assignments []string) (State, error) {
	idx := specIndex(specs)
	st := base
	for _, a := range assignments {
		name, value, ok := strings.Cut(a, "=")
		name = strings.TrimSpace(name)
		if !ok {
			return State{}, &ValueError{Filter: name, Value: a, Reason: "expected name=value"}
		}
		sp, known := idx[name]
		if !known {
			return State{}, fmt.Errorf("%w: %s", ErrUnknownFilter, name)
		}
		p, err := sp.Parse(value)
		if err != nil {
			return State{}, err
		}
		st = st.With(name, p)
	}
	return st, nil
}

// FromQuery applies URL query values on top of base. Repeated keys are
// joined with commas. Keys listed in reserved are skipped; any other key
// that names no filter is an error.
func FromQuery(specs []Spec, base State, q url.Values, reserved ...string) (State, error) {
	idx := specIndex(specs)
	skip := make(map[string]bool, len(reserved))
	for _, r := range reserved {
		skip[r] = true
	}

	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	st := base
	for _, k := range keys {
		if skip[k] {
			continue
		}
		sp, ok := idx[k]
		if !ok {
			return State{}, fmt.Errorf("%w: %s", ErrUnknownFilter, k)
		}
		p, err := sp.Parse(strings.Join(q[k], ","))
		if err != nil {
			return State{}, err
		}
		st = st.With(k, p)
	}
	return st, nil
}
