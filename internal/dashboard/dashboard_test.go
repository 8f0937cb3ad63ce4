package dashboard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yildizm/DataSum/internal/analyzer"
	"github.com/yildizm/DataSum/internal/dataset"
	"github.com/yildizm/DataSum/internal/dataset/sample"
	"github.com/yildizm/DataSum/internal/filter"
)

func titanic(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := sample.Titanic()
	require.NoError(t, err)
	return ds
}

func TestTitanicDefinitionValidates(t *testing.T) {
	ds := titanic(t)
	def := Titanic()

	require.NoError(t, def.Validate(ds))
	assert.True(t, def.Matches(ds))

	names := make([]string, 0, len(def.Filters))
	for _, f := range def.Filters {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"pclass", "age", "sex", "embarked", "survived", "fare", "search"}, names)
}

func TestTitanicDefaultStateShowsEverything(t *testing.T) {
	ds := titanic(t)
	def := Titanic()

	st, err := filter.DefaultState(def.Filters)
	require.NoError(t, err)
	assert.Empty(t, st.Active())

	view := filter.Evaluate(ds, st)
	assert.Equal(t, ds.Len(), view.Len())

	a, err := def.NewEngine(analyzer.DefaultBins).Analyze(context.Background(), view)
	require.NoError(t, err)
	assert.Equal(t, "passengers", a.Noun)
	require.Len(t, a.Metrics, 4)
	total, ok := a.Metric("total")
	require.True(t, ok)
	assert.Equal(t, "891", total.String())
	assert.Len(t, a.Charts, len(def.Charts))

	byGender, ok := a.Chart("survival_by_gender")
	require.True(t, ok)
	require.Len(t, byGender.Series, 2)
	assert.Equal(t, "Did Not Survive", byGender.Series[0].Name)
	assert.Equal(t, "Survived", byGender.Series[1].Name)
}

func TestMarshalParseRoundTrip(t *testing.T) {
	def := Titanic()
	data, err := Marshal(def)
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, def.Title, back.Title)
	assert.Equal(t, def.Filters, back.Filters)
	assert.Equal(t, def.Metrics, back.Metrics)
	assert.Equal(t, def.Kinds, back.Kinds)
	assert.Equal(t, def.About, back.About)
}

func TestParse(t *testing.T) {
	t.Run("normalizes kinds", func(t *testing.T) {
		def, err := Parse([]byte("title: x\nkinds:\n  flag: bool\n  n: number\n"))
		require.NoError(t, err)
		assert.Equal(t, dataset.KindBoolean, def.Kinds["flag"])
		assert.Equal(t, dataset.KindNumeric, def.Kinds["n"])
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		_, err := Parse([]byte("title: x\nwidgets: []\n"))
		assert.Error(t, err)
	})

	t.Run("rejects bad kind", func(t *testing.T) {
		_, err := Parse([]byte("title: x\nkinds:\n  a: date\n"))
		assert.ErrorContains(t, err, "kinds.a")
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := Parse(nil)
		assert.ErrorContains(t, err, "empty")
	})
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dash.yaml")
	doc := `title: Sales
noun: orders
filters:
  - name: region
    kind: in
    column: region
metrics:
  - name: total
    kind: count
charts:
  - name: by_region
    kind: bar
    column: region
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	def, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Sales", def.Title)
	assert.Equal(t, "orders", def.Noun)
	require.Len(t, def.Filters, 1)
	assert.Equal(t, filter.KindIn, def.Filters[0].Kind)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateCollectsProblems(t *testing.T) {
	ds := titanic(t)
	def := &Definition{
		Filters: []filter.Spec{
			{Name: "a", Kind: filter.KindIn, Column: "nope"},
			{Name: "a", Kind: filter.KindIn, Column: "sex"},
			{Name: "r", Kind: filter.KindRange, Column: "sex"},
		},
		Metrics: []analyzer.MetricSpec{{Name: "m", Kind: analyzer.MetricMean, Column: "ghost"}},
		Charts:  []analyzer.ChartSpec{{Name: "c", Kind: analyzer.ChartBar}},
		Table:   []string{"missing_col"},
	}

	err := def.Validate(ds)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Problems, "title is required")
	assert.Contains(t, verr.Problems, "filter a: unknown column nope")
	assert.Contains(t, verr.Problems, "duplicate filter name a")
	assert.Contains(t, verr.Problems, "metric m: unknown column ghost")
	assert.Contains(t, verr.Problems, "table: unknown column missing_col")
	assert.Len(t, verr.Problems, 7)

	// Without a dataset only structural problems are reported
	err = def.Validate(nil)
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Problems, 3)
}

func TestInfer(t *testing.T) {
	ds, err := dataset.FromRecords("orders", []string{"region", "amount", "qty", "paid", "note"}, [][]string{
		{"north", "10.5", "1", "true", "first order"},
		{"south", "20", "2", "false", "rush"},
		{"north", "", "3", "true", "gift wrap please"},
		{"east", "7.25", "1", "false", "a"},
		{"west", "1", "4", "true", "b"},
		{"west", "2", "4", "true", "c"},
		{"south", "3", "1", "true", "d"},
		{"north", "4", "2", "false", "e"},
		{"east", "5", "1", "true", "f"},
		{"east", "6", "2", "true", "g"},
		{"south", "7", "3", "false", "h"},
		{"west", "8", "1", "true", "i"},
		{"north", "9", "1", "true", "j"},
	}, nil)
	require.NoError(t, err)

	def := Infer(ds)
	require.NoError(t, def.Validate(ds))
	assert.Equal(t, "orders Explorer", def.Title)

	kinds := map[string]filter.Kind{}
	for _, f := range def.Filters {
		kinds[f.Name] = f.Kind
	}
	assert.Equal(t, map[string]filter.Kind{
		"region": filter.KindIn,
		"amount": filter.KindRange,
		"qty":    filter.KindRange,
		"paid":   filter.KindFlag,
		"search": filter.KindSearch,
	}, kinds)

	search, ok := def.Filter("search")
	require.True(t, ok)
	assert.Equal(t, []string{"note"}, search.Fields)

	chartKinds := []analyzer.ChartKind{}
	for _, c := range def.Charts {
		chartKinds = append(chartKinds, c.Kind)
	}
	assert.Equal(t, []analyzer.ChartKind{
		analyzer.ChartBar, analyzer.ChartHistogram, analyzer.ChartBoxPlot, analyzer.ChartHeatmap,
	}, chartKinds)
}

func TestResolve(t *testing.T) {
	ds := titanic(t)
	assert.Equal(t, "Titanic Dataset Explorer", Resolve(nil, ds).Title)

	custom := &Definition{Title: "Mine"}
	assert.Same(t, custom, Resolve(custom, ds))

	other, err := dataset.FromRecords("x", []string{"a"}, [][]string{{"1"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "x Explorer", Resolve(nil, other).Title)
}

func TestTableColumns(t *testing.T) {
	ds := titanic(t)
	assert.Equal(t, ds.ColumnNames(), Titanic().TableColumns(ds))

	def := &Definition{Table: []string{"sex", "age"}}
	assert.Equal(t, []string{"sex", "age"}, def.TableColumns(ds))
}

func TestWidgets(t *testing.T) {
	ds := titanic(t)
	widgets := Titanic().Widgets(ds)
	require.Len(t, widgets, 7)

	byName := map[string]Widget{}
	for _, w := range widgets {
		byName[w.Name] = w
	}

	assert.Equal(t, []string{"1", "2", "3"}, byName["pclass"].Choices)
	assert.Equal(t, filter.WidgetMultiSelect, byName["pclass"].Widget)

	// declared options are kept as written
	assert.Equal(t, []string{filter.AllOption, "male", "female"}, byName["sex"].Choices)

	// selectboxes without options get "All" ahead of the distinct values
	assert.Equal(t, []string{filter.AllOption, "C", "Q", "S"}, byName["embarked"].Choices)

	age := byName["age"]
	require.NotNil(t, age.Min)
	require.NotNil(t, age.Max)
	lo, hi, ok := ds.NumericRange("age")
	require.True(t, ok)
	assert.Equal(t, lo, *age.Min)
	assert.Equal(t, hi, *age.Max)

	assert.NotNil(t, byName["fare"].Min)
	assert.Nil(t, byName["survived"].Min)
	assert.Empty(t, byName["search"].Choices)
	assert.Equal(t, filter.WidgetText, byName["search"].Widget)
}

func TestResolveWidgetDefaultsWidget(t *testing.T) {
	ds := titanic(t)
	w := ResolveWidget(filter.Spec{Name: "deck", Kind: filter.KindEquals, Column: "deck"}, ds)

	assert.Equal(t, filter.WidgetSelectBox, w.Widget)
	assert.Equal(t, filter.AllOption, w.Choices[0])
	assert.NotContains(t, w.Choices, "")
}
