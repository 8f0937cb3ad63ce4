package filter

import (
	"net/url"
)

// State maps filter names to predicates. It is immutable: With and
// Without return a new state and leave the receiver unchanged, so a state
// can be shared freely between the evaluator and its consumers.
type State struct {
	order []string
	preds map[string]Predicate
}

// NewState returns an empty state
func NewState() State {
	return State{}
}

// With returns a copy of the state with name set to p.
// Names keep the position of their first insertion.
func (s State) With(name string, p Predicate) State {
	preds := make(map[string]Predicate, len(s.preds)+1)
	for k, v := range s.preds {
		preds[k] = v
	}
	order := s.order
	if _, ok := preds[name]; !ok {
		order = append(append([]string(nil), s.order...), name)
	}
	preds[name] = p
	return State{order: order, preds: preds}
}

// Without returns a copy of the state with name removed
func (s State) Without(name string) State {
	if _, ok := s.preds[name]; !ok {
		return s
	}
	preds := make(map[string]Predicate, len(s.preds))
	order := make([]string, 0, len(s.order))
	for _, k := range s.order {
		if k == name {
			continue
		}
		order = append(order, k)
		preds[k] = s.preds[k]
	}
	return State{order: order, preds: preds}
}

// Get returns the predicate stored under name
func (s State) Get(name string) (Predicate, bool) {
	p, ok := s.preds[name]
	return p, ok
}

// Names returns every filter name in insertion order
func (s State) Names() []string {
	return append([]string(nil), s.order...)
}

// Active returns the names of predicates that constrain records
func (s State) Active() []string {
	var names []string
	for _, k := range s.order {
		if s.preds[k].Active() {
			names = append(names, k)
		}
	}
	return names
}

// Len returns the number of filters
func (s State) Len() int { return len(s.order) }

// Describe returns a description of each active predicate
func (s State) Describe() []string {
	var out []string
	for _, k := range s.Active() {
		out = append(out, s.preds[k].Describe())
	}
	return out
}

// Query encodes the active predicates as URL query values
func (s State) Query() url.Values {
	q := url.Values{}
	for _, k := range s.Active() {
		q.Set(k, s.preds[k].Raw())
	}
	return q
}
