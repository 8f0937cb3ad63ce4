package filter

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yildizm/DataSum/internal/dataset"
	"github.com/yildizm/DataSum/internal/dataset/sample"
)

func ptr(f float64) *float64 { return &f }

func passengers(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.FromRecords("p",
		[]string{"name", "sex", "pclass", "age", "fare", "alone", "embarked"},
		[][]string{
			{"Braund, Mr. Owen", "male", "3", "22", "7.25", "false", "S"},
			{"Cumings, Mrs. John", "female", "1", "38", "71.28", "false", "C"},
			{"Heikkinen, Miss. Laina", "female", "3", "", "7.92", "true", "S"},
			{"Futrelle, Mrs. Jacques", "female", "1", "35", "53.1", "false", ""},
			{"Allen, Mr. William", "male", "3", "35", "8.05", "true", "S"},
			{"Moran, Mr. James", "male", "3", "", "8.46", "true", "Q"},
		}, nil)
	require.NoError(t, err)
	return ds
}

var titanicSpecs = []Spec{
	{Name: "pclass", Kind: KindIn, Column: "pclass"},
	{Name: "sex", Kind: KindEquals, Column: "sex", Options: []string{"All", "male", "female"}},
	{Name: "age", Kind: KindRange, Column: "age"},
	{Name: "fare", Kind: KindMin, Column: "fare"},
	{Name: "alone", Kind: KindFlag, Column: "alone"},
	{Name: "name", Kind: KindSearch, Fields: []string{"name"}},
}

func TestDefaultStateIsFullDataset(t *testing.T) {
	ds := passengers(t)
	st, err := DefaultState(titanicSpecs)
	require.NoError(t, err)

	view := Evaluate(ds, st)
	assert.Equal(t, ds.Len(), view.Len())
	assert.Empty(t, st.Active())
	assert.Equal(t, []string{"pclass", "sex", "age", "fare", "alone", "name"}, st.Names())
}

func TestPredicates(t *testing.T) {
	ds := passengers(t)

	tests := []struct {
		name string
		pred Predicate
		want []int
	}{
		{name: "in", pred: In{Column: "pclass", Values: []string{"1"}}, want: []int{1, 3}},
		{name: "in numeric format", pred: In{Column: "pclass", Values: []string{"1.0", "3"}}, want: []int{0, 1, 2, 3, 4, 5}},
		{name: "in case folded", pred: In{Column: "embarked", Values: []string{"s"}}, want: []int{0, 2, 4}},
		{name: "equals", pred: Equals{Column: "sex", Value: "Female"}, want: []int{1, 2, 3}},
		{name: "equals all", pred: Equals{Column: "sex", Value: "All"}, want: []int{0, 1, 2, 3, 4, 5}},
		{name: "range both", pred: Range{Column: "age", Min: ptr(30), Max: ptr(38)}, want: []int{1, 3, 4}},
		{name: "range inclusive", pred: Range{Column: "age", Min: ptr(22), Max: ptr(22)}, want: []int{0}},
		{name: "range open high", pred: Range{Column: "age", Min: ptr(36)}, want: []int{1}},
		{name: "range unbounded keeps missing", pred: Range{Column: "age"}, want: []int{0, 1, 2, 3, 4, 5}},
		{name: "min", pred: Min{Column: "fare", Value: ptr(8)}, want: []int{1, 3, 4, 5}},
		{name: "flag", pred: Flag{Column: "alone", Checked: true}, want: []int{2, 4, 5}},
		{name: "flag unchecked", pred: Flag{Column: "alone"}, want: []int{0, 1, 2, 3, 4, 5}},
		{name: "search", pred: Search{Fields: []string{"name"}, Text: "MRS"}, want: []int{1, 3}},
		{name: "search empty", pred: Search{Fields: []string{"name"}, Text: "  "}, want: []int{0, 1, 2, 3, 4, 5}},
		{name: "unknown column", pred: In{Column: "deck", Values: []string{"A"}}, want: []int{}},
		{name: "in every value keeps missing", pred: In{Column: "embarked", All: true}, want: []int{0, 1, 2, 3, 4, 5}},
		{name: "in nothing selected", pred: In{Column: "pclass", Values: []string{}}, want: []int{}},
		{name: "equals real all category", pred: Equals{Column: "embarked", Value: "all"}, want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := Evaluate(ds, NewState().With(tt.name, tt.pred))
			if diff := cmp.Diff(tt.want, view.Rows()); diff != "" {
				t.Errorf("rows mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMissingValueNeverMatchesActivePredicate(t *testing.T) {
	ds := passengers(t)

	st := NewState().With("age", Range{Column: "age", Min: ptr(0)})
	view := Evaluate(ds, st)
	assert.Equal(t, []int{0, 1, 3, 4}, view.Rows())

	st = NewState().With("embarked", In{Column: "embarked", Values: []string{"S", "C", "Q"}})
	assert.NotContains(t, Evaluate(ds, st).Rows(), 3)
}

func TestPredicatesAreANDed(t *testing.T) {
	ds := passengers(t)

	st := NewState().
		With("sex", Equals{Column: "sex", Value: "male"}).
		With("alone", Flag{Column: "alone", Checked: true}).
		With("age", Range{Column: "age", Max: ptr(40)})

	assert.Equal(t, []int{4}, Evaluate(ds, st).Rows())
	assert.Equal(t, []string{"age"}, Explain(ds, st, 5))
	assert.ElementsMatch(t, []string{"sex", "alone"}, Explain(ds, st, 1))
	assert.Empty(t, Explain(ds, st, 4))
}

func TestRangeBeyondObservedMaxIsEmpty(t *testing.T) {
	ds := passengers(t)
	st := NewState().With("age", Range{Column: "age", Min: ptr(1000)})
	assert.Equal(t, 0, Evaluate(ds, st).Len())
}

func TestStateIsImmutable(t *testing.T) {
	base := NewState().With("a", Flag{Column: "alone", Checked: true})
	next := base.With("b", In{Column: "pclass", Values: []string{"1"}})
	replaced := next.With("a", Flag{Column: "alone"})

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 2, next.Len())
	assert.Equal(t, []string{"a", "b"}, replaced.Names(), "replacing keeps position")

	p, _ := next.Get("a")
	assert.True(t, p.Active())
	p, _ = replaced.Get("a")
	assert.False(t, p.Active())

	removed := replaced.Without("a")
	assert.Equal(t, []string{"b"}, removed.Names())
	assert.Equal(t, 2, replaced.Len())
}

// Every record in the view satisfies every active predicate and every
// excluded record fails at least one.
func TestViewPartitionsDataset(t *testing.T) {
	ds, err := sample.Titanic()
	require.NoError(t, err)

	states := []State{
		NewState(),
		NewState().With("pclass", In{Column: "pclass", Values: []string{"1", "2"}}),
		NewState().
			With("sex", Equals{Column: "sex", Value: "female"}).
			With("age", Range{Column: "age", Min: ptr(10), Max: ptr(40)}),
		NewState().
			With("alone", Flag{Column: "alone", Checked: true}).
			With("fare", Min{Column: "fare", Value: ptr(20)}).
			With("town", Search{Fields: []string{"embark_town", "deck"}, Text: "s"}),
	}

	for i, st := range states {
		view := Evaluate(ds, st)
		require.LessOrEqual(t, view.Len(), ds.Len())

		in := make(map[int]bool, view.Len())
		prev := -1
		for _, r := range view.Rows() {
			assert.Greater(t, r, prev, "state %d: order preserved", i)
			prev = r
			in[r] = true
			assert.Empty(t, Explain(ds, st, r), "state %d row %d", i, r)
		}
		for r := 0; r < ds.Len(); r++ {
			if !in[r] {
				assert.NotEmpty(t, Explain(ds, st, r), "state %d row %d", i, r)
			}
		}
	}
}

func TestFirstClassSelectionMatchesGroupSize(t *testing.T) {
	ds, err := sample.Titanic()
	require.NoError(t, err)

	want := 0
	for r := 0; r < ds.Len(); r++ {
		if f, _ := ds.Numeric(r, "pclass"); f == 1 {
			want++
		}
	}

	view := Evaluate(ds, NewState().With("pclass", In{Column: "pclass", Values: []string{"1"}}))
	assert.Equal(t, want, view.Len())
	for i := 0; i < view.Len(); i++ {
		f, _ := view.Value(i, "pclass").Float()
		assert.Equal(t, 1.0, f)
	}
}

func TestSpecParse(t *testing.T) {
	byName := specIndex(titanicSpecs)

	tests := []struct {
		filter  string
		raw     string
		want    Predicate
		wantErr bool
	}{
		{filter: "pclass", raw: "1, 2,", want: In{Column: "pclass", Values: []string{"1", "2"}}},
		{filter: "pclass", raw: "", want: In{Column: "pclass"}},
		{filter: "pclass", raw: "All", want: In{Column: "pclass", All: true}},
		{filter: "sex", raw: " male ", want: Equals{Column: "sex", Value: "male"}},
		{filter: "age", raw: "10..40", want: Range{Column: "age", Min: ptr(10), Max: ptr(40)}},
		{filter: "age", raw: "..40", want: Range{Column: "age", Max: ptr(40)}},
		{filter: "age", raw: "5.5..", want: Range{Column: "age", Min: ptr(5.5)}},
		{filter: "age", raw: "40", wantErr: true},
		{filter: "age", raw: "a..b", wantErr: true},
		{filter: "fare", raw: "12.5", want: Min{Column: "fare", Value: ptr(12.5)}},
		{filter: "fare", raw: "cheap", wantErr: true},
		{filter: "alone", raw: "true", want: Flag{Column: "alone", Checked: true}},
		{filter: "alone", raw: "maybe", wantErr: true},
		{filter: "name", raw: "smith", want: Search{Fields: []string{"name"}, Text: "smith"}},
	}

	for _, tt := range tests {
		t.Run(tt.filter+"="+tt.raw, func(t *testing.T) {
			got, err := byName[tt.filter].Parse(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidValue)
				var ve *ValueError
				assert.ErrorAs(t, err, &ve)
				assert.Equal(t, tt.filter, ve.Filter)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("predicate mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRawRoundTrip(t *testing.T) {
	preds := map[string]Predicate{
		"pclass": In{Column: "pclass", Values: []string{"1", "3"}},
		"age":    Range{Column: "age", Min: ptr(1), Max: ptr(2.5)},
		"fare":   Min{Column: "fare", Value: ptr(7)},
		"alone":  Flag{Column: "alone", Checked: true},
	}
	byName := specIndex(titanicSpecs)
	for name, p := range preds {
		back, err := byName[name].Parse(p.Raw())
		require.NoError(t, err, name)
		assert.True(t, cmp.Equal(p, back), name)
	}

	all := In{Column: "pclass", All: true}
	back, err := byName["pclass"].Parse(all.Raw())
	require.NoError(t, err)
	assert.Equal(t, all, back)
}

func TestParseAssignments(t *testing.T) {
	base, err := DefaultState(titanicSpecs)
	require.NoError(t, err)

	st, err := ParseAssignments(titanicSpecs, base, []string{"pclass=1,2", "age=..30"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pclass", "age"}, st.Active())
	assert.Empty(t, base.Active(), "base state untouched")

	_, err = ParseAssignments(titanicSpecs, base, []string{"deck=A"})
	assert.ErrorIs(t, err, ErrUnknownFilter)

	_, err = ParseAssignments(titanicSpecs, base, []string{"pclass"})
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = ParseAssignments(titanicSpecs, base, []string{"fare=abc"})
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestEmptySelectionMatchesNothing(t *testing.T) {
	ds, err := sample.Titanic()
	require.NoError(t, err)
	base, err := DefaultState(titanicSpecs)
	require.NoError(t, err)

	p, _ := base.Get("pclass")
	assert.Equal(t, In{Column: "pclass", All: true}, p, "default selects every class")
	assert.Equal(t, ds.Len(), Evaluate(ds, base).Len())

	st, err := ParseAssignments(titanicSpecs, base, []string{"pclass="})
	require.NoError(t, err)
	assert.Equal(t, []string{"pclass"}, st.Active())
	assert.Equal(t, 0, Evaluate(ds, st).Len())

	st, err = ParseAssignments(titanicSpecs, st, []string{"pclass=All"})
	require.NoError(t, err)
	assert.Empty(t, st.Active())
	assert.Equal(t, ds.Len(), Evaluate(ds, st).Len())

	zero := titanicSpecs[0].Zero()
	assert.False(t, zero.Active())
	assert.Equal(t, AllOption, zero.Raw())
}

func TestEqualsAllSentinelIsExact(t *testing.T) {
	assert.False(t, Equals{Column: "sex", Value: "All"}.Active())
	assert.False(t, Equals{Column: "sex", Value: " "}.Active())
	assert.True(t, Equals{Column: "sex", Value: "all"}.Active())
	assert.True(t, Equals{Column: "sex", Value: "ALL"}.Active())
}

func TestFromQuery(t *testing.T) {
	base, err := DefaultState(titanicSpecs)
	require.NoError(t, err)

	q := url.Values{"pclass": {"1", "2"}, "sex": {"male"}, "rows": {"10"}}
	st, err := FromQuery(titanicSpecs, base, q, "rows")
	require.NoError(t, err)

	p, _ := st.Get("pclass")
	assert.Equal(t, In{Column: "pclass", Values: []string{"1", "2"}}, p)
	assert.Equal(t, []string{"pclass", "sex"}, st.Active())

	_, err = FromQuery(titanicSpecs, base, url.Values{"deck": {"A"}})
	assert.ErrorIs(t, err, ErrUnknownFilter)

	encoded := st.Query()
	assert.Equal(t, "1,2", encoded.Get("pclass"))
	assert.Equal(t, "male", encoded.Get("sex"))
	assert.Empty(t, encoded.Get("age"))
}

func TestSpecValidate(t *testing.T) {
	for _, sp := range titanicSpecs {
		assert.NoError(t, sp.Validate(), sp.Name)
	}
	assert.Error(t, Spec{Kind: KindIn, Column: "x"}.Validate())
	assert.Error(t, Spec{Name: "x", Kind: "between", Column: "x"}.Validate())
	assert.Error(t, Spec{Name: "x", Kind: KindRange}.Validate())
	assert.Error(t, Spec{Name: "x", Kind: KindSearch}.Validate())
	assert.Error(t, Spec{Name: "x", Kind: KindMin, Column: "x", Default: "abc"}.Validate())
}

func TestWidgetDefaults(t *testing.T) {
	assert.Equal(t, WidgetMultiSelect, titanicSpecs[0].WidgetOrDefault())
	assert.Equal(t, WidgetRadio, titanicSpecs[1].WidgetOrDefault())
	assert.Equal(t, WidgetSlider, titanicSpecs[2].WidgetOrDefault())
	assert.Equal(t, WidgetNumber, titanicSpecs[3].WidgetOrDefault())
	assert.Equal(t, WidgetCheckbox, titanicSpecs[4].WidgetOrDefault())
	assert.Equal(t, WidgetText, titanicSpecs[5].WidgetOrDefault())
	assert.Equal(t, WidgetSelectBox, Spec{Kind: KindEquals, Options: []string{"a", "b", "c", "d"}}.WidgetOrDefault())
}

func TestDescribe(t *testing.T) {
	st := NewState().
		With("pclass", In{Column: "pclass", Values: []string{"1", "2"}}).
		With("age", Range{Column: "age", Min: ptr(10), Max: ptr(40)}).
		With("alone", Flag{Column: "alone"})

	assert.Equal(t, []string{"pclass in [1, 2]", "10 ≤ age ≤ 40"}, st.Describe())
}
