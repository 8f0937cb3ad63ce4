package dashboard

import (
	"fmt"

	"github.com/yildizm/DataSum/internal/analyzer"
	"github.com/yildizm/DataSum/internal/dataset"
	"github.com/yildizm/DataSum/internal/filter"
)

// maxChoices is the most distinct values a column may have to get a
// multiselect filter or a bar chart
const maxChoices = 12

// Infer builds a generic dashboard for any dataset: a multiselect per
// low-cardinality categorical column, a range per numeric column, a
// checkbox per boolean column and a search over the other text columns.
func Infer(ds *dataset.Dataset) *Definition {
	def := &Definition{
		Title: fmt.Sprintf("%s Explorer", ds.Name()),
		Noun:  "records",
	}

	var search, groups []string
	for _, col := range ds.Columns() {
		switch col.Kind {
		case dataset.KindNumeric:
			def.Filters = append(def.Filters, filter.Spec{
				Name: col.Name, Kind: filter.KindRange, Column: col.Name, Label: col.Name,
			})
		case dataset.KindBoolean:
			def.Filters = append(def.Filters, filter.Spec{
				Name: col.Name, Kind: filter.KindFlag, Column: col.Name, Label: col.Name,
			})
		default:
			if n := len(ds.Unique(col.Name)); n > 0 && n <= maxChoices {
				def.Filters = append(def.Filters, filter.Spec{
					Name: col.Name, Kind: filter.KindIn, Column: col.Name, Label: col.Name,
				})
				groups = append(groups, col.Name)
			} else {
				search = append(search, col.Name)
			}
		}
	}
	if len(search) > 0 {
		def.Filters = append(def.Filters, filter.Spec{
			Name: "search", Kind: filter.KindSearch, Fields: search, Label: "Search",
		})
	}

	def.Metrics = []analyzer.MetricSpec{{Name: "total", Label: "Total Records", Kind: analyzer.MetricCount}}
	numeric := ds.ColumnsOfKind(dataset.KindNumeric)
	for i, col := range numeric {
		if i == 3 {
			break
		}
		def.Metrics = append(def.Metrics, analyzer.MetricSpec{
			Name: "avg_" + col, Label: "Average " + col, Kind: analyzer.MetricMean, Column: col,
		})
	}

	if len(groups) > 0 {
		def.Charts = append(def.Charts, analyzer.ChartSpec{
			Name: groups[0] + "_counts", Title: "Records by " + groups[0], Kind: analyzer.ChartBar, Column: groups[0],
		})
	}
	if len(numeric) > 0 {
		def.Charts = append(def.Charts,
			analyzer.ChartSpec{
				Name: numeric[0] + "_distribution", Title: numeric[0] + " Distribution",
				Kind: analyzer.ChartHistogram, Column: numeric[0],
			},
			analyzer.ChartSpec{
				Name: numeric[0] + "_spread", Title: numeric[0] + " Spread",
				Kind: analyzer.ChartBoxPlot, Column: numeric[0],
			})
	}
	if len(numeric) > 1 {
		def.Charts = append(def.Charts, analyzer.ChartSpec{
			Name: "correlation", Title: "Correlation Matrix", Kind: analyzer.ChartHeatmap,
		})
	}
	return def
}

// Resolve picks the definition for a dataset: the given one when set,
// the Titanic explorer when the dataset has its columns, else an
// inferred one
func Resolve(def *Definition, ds *dataset.Dataset) *Definition {
	if def != nil {
		return def
	}
	if t := Titanic(); t.Matches(ds) {
		return t
	}
	return Infer(ds)
}
