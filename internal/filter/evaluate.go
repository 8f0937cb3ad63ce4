package filter

import (
	"github.com/yildizm/DataSum/internal/dataset"
)

// Evaluate returns the records that satisfy every active predicate, in
// dataset order. With no active predicate the view is the whole dataset.
func Evaluate(ds *dataset.Dataset, s State) dataset.View {
	matchers := compile(ds, s)
	if len(matchers) == 0 {
		return dataset.All(ds)
	}

	// Single pass, a record must pass all matchers
	rows := make([]int, 0, ds.Len())
	for r := 0; r < ds.Len(); r++ {
		pass := true
		for _, m := range matchers {
			if !m.match(r) {
				pass = false
				break
			}
		}
		if pass {
			rows = append(rows, r)
		}
	}
	return dataset.NewView(ds, rows)
}

// Explain returns the names of the active predicates that row fails.
// An empty result means the row is part of the view.
func Explain(ds *dataset.Dataset, s State, row int) []string {
	var failed []string
	for _, m := range compile(ds, s) {
		if !m.match(row) {
			failed = append(failed, m.name)
		}
	}
	return failed
}

type namedMatcher struct {
	name  string
	match func(int) bool
}

func compile(ds *dataset.Dataset, s State) []namedMatcher {
	var out []namedMatcher
	for _, name := range s.order {
		p := s.preds[name]
		if p == nil || !p.Active() {
			continue
		}
		out = append(out, namedMatcher{name: name, match: p.Matcher(ds)})
	}
	return out
}
