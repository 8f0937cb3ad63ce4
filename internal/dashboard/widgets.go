package dashboard

import (
	"github.com/yildizm/DataSum/internal/dataset"
	"github.com/yildizm/DataSum/internal/filter"
)

// Widget is a filter spec resolved against a dataset: the choices a
// multiselect, radio or selectbox offers and the bounds of a slider
type Widget struct {
	filter.Spec
	Widget  filter.Widget `json:"widget"`
	Title   string        `json:"title"`
	Choices []string      `json:"choices,omitempty"`
	Min     *float64      `json:"min,omitempty"`
	Max     *float64      `json:"max,omitempty"`
}

// Widgets resolves every filter of the definition against ds
func (d *Definition) Widgets(ds *dataset.Dataset) []Widget {
	widgets := make([]Widget, 0, len(d.Filters))
	for _, sp := range d.Filters {
		widgets = append(widgets, ResolveWidget(sp, ds))
	}
	return widgets
}

// ResolveWidget fills in choices and bounds for one filter. Declared
// options win; otherwise choices are the column's distinct values, with
// "All" first for single-choice widgets.
func ResolveWidget(sp filter.Spec, ds *dataset.Dataset) Widget {
	w := Widget{Spec: sp, Widget: sp.WidgetOrDefault(), Title: sp.Title()}

	switch sp.Kind {
	case filter.KindIn:
		w.Choices = sp.Options
		if len(w.Choices) == 0 {
			w.Choices = ds.Unique(sp.Column)
		}
	case filter.KindEquals:
		w.Choices = sp.Options
		if len(w.Choices) == 0 {
			w.Choices = append([]string{filter.AllOption}, ds.Unique(sp.Column)...)
		}
	case filter.KindRange, filter.KindMin:
		if lo, hi, ok := ds.NumericRange(sp.Column); ok {
			w.Min, w.Max = &lo, &hi
		}
	}
	return w
}
