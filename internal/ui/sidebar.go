package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/yildizm/DataSum/internal/dashboard"
	"github.com/yildizm/DataSum/internal/dataset"
	"github.com/yildizm/DataSum/internal/filter"
)

// control is one sidebar widget. It turns key presses into a new
// predicate for its filter; the filter state itself lives in the session.
type control struct {
	w      dashboard.Widget
	cursor int // highlighted choice
	upper  bool
}

func newControls(widgets []dashboard.Widget) []*control {
	out := make([]*control, 0, len(widgets))
	for _, w := range widgets {
		out = append(out, &control{w: w})
	}
	return out
}

func (c *control) step() float64 {
	if c.w.Step > 0 {
		return c.w.Step
	}
	return 1
}

// editsText reports whether the control takes typed input
func (c *control) editsText() bool {
	return c.w.Kind == filter.KindSearch
}

// update applies a key to the control. It returns the predicate to store
// and whether it differs from p.
func (c *control) update(key string, p filter.Predicate) (filter.Predicate, bool) {
	if key == "x" || key == "backspace" {
		zero := c.w.Spec.Zero()
		return zero, p.Active() != zero.Active() || p.Raw() != zero.Raw()
	}

	switch c.w.Kind {
	case filter.KindIn:
		return c.updateIn(key, p)
	case filter.KindEquals:
		return c.updateEquals(key, p)
	case filter.KindRange:
		return c.updateRange(key, p)
	case filter.KindMin:
		return c.updateMin(key, p)
	case filter.KindFlag:
		if key == " " || key == "enter" {
			f, _ := p.(filter.Flag)
			return filter.Flag{Column: c.w.Column, Checked: !f.Checked}, true
		}
	}
	return p, false
}

func (c *control) moveCursor(key string) bool {
	n := len(c.w.Choices)
	if n == 0 {
		return false
	}
	switch key {
	case "left", "h":
		c.cursor = (c.cursor + n - 1) % n
	case "right", "l":
		c.cursor = (c.cursor + 1) % n
	default:
		return false
	}
	return true
}

func (c *control) updateIn(key string, p filter.Predicate) (filter.Predicate, bool) {
	if c.moveCursor(key) || (key != " " && key != "enter") || len(c.w.Choices) == 0 {
		return p, false
	}
	in, _ := p.(filter.In)
	picked := c.w.Choices[c.cursor]

	selected := inSelection(in, c.w.Choices)
	selected[picked] = !selected[picked]

	// keep the widget's choice order
	values := []string{}
	for _, ch := range c.w.Choices {
		if selected[ch] {
			values = append(values, ch)
		}
	}
	if len(values) == len(c.w.Choices) {
		return filter.In{Column: c.w.Column, All: true}, true
	}
	return filter.In{Column: c.w.Column, Values: values}, true
}

// inSelection returns the checked choices; an unrestricted filter has
// every choice checked
func inSelection(in filter.In, choices []string) map[string]bool {
	selected := make(map[string]bool, len(choices))
	if in.All {
		for _, ch := range choices {
			selected[ch] = true
		}
		return selected
	}
	for _, v := range in.Values {
		selected[v] = true
	}
	return selected
}

func (c *control) updateEquals(key string, p filter.Predicate) (filter.Predicate, bool) {
	if !c.moveCursor(key) {
		return p, false
	}
	eq, _ := p.(filter.Equals)
	next := filter.Equals{Column: c.w.Column, Value: c.w.Choices[c.cursor]}
	return next, next.Value != eq.Value
}

func (c *control) updateRange(key string, p filter.Predicate) (filter.Predicate, bool) {
	if c.w.Min == nil || c.w.Max == nil {
		return p, false
	}
	r, _ := p.(filter.Range)
	lo, hi := *c.w.Min, *c.w.Max
	if r.Min != nil {
		lo = *r.Min
	}
	if r.Max != nil {
		hi = *r.Max
	}

	var delta float64
	switch key {
	case " ":
		c.upper = !c.upper
		return p, false
	case "left", "h":
		delta = -c.step()
	case "right", "l":
		delta = c.step()
	default:
		return p, false
	}

	if c.upper {
		hi = clamp(hi+delta, lo, *c.w.Max)
	} else {
		lo = clamp(lo+delta, *c.w.Min, hi)
	}

	// a handle resting on the observed bound leaves that side open
	next := filter.Range{Column: c.w.Column}
	if lo > *c.w.Min {
		next.Min = &lo
	}
	if hi < *c.w.Max {
		next.Max = &hi
	}
	return next, next.Raw() != r.Raw()
}

func (c *control) updateMin(key string, p filter.Predicate) (filter.Predicate, bool) {
	m, _ := p.(filter.Min)
	floor := 0.0
	if c.w.Min != nil {
		floor = math.Min(0, *c.w.Min)
	}

	switch key {
	case "right", "l":
		v := floor
		if m.Value != nil {
			v = *m.Value + c.step()
		}
		if c.w.Max != nil && v > *c.w.Max {
			v = *c.w.Max
		}
		return filter.Min{Column: c.w.Column, Value: &v}, true
	case "left", "h":
		if m.Value == nil {
			return p, false
		}
		v := *m.Value - c.step()
		if v < floor {
			return filter.Min{Column: c.w.Column}, true
		}
		return filter.Min{Column: c.w.Column, Value: &v}, true
	}
	return p, false
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// view draws the control for predicate p
func (c *control) view(p filter.Predicate, focused bool, st *Styles) string {
	label := st.Label
	marker := "  "
	if focused {
		label = st.FocusedLabel
		marker = "▸ "
	}

	var b strings.Builder
	b.WriteString(label.Render(marker + c.w.Title))
	b.WriteString("\n  ")

	switch c.w.Kind {
	case filter.KindIn:
		in, _ := p.(filter.In)
		chosen := inSelection(in, c.w.Choices)
		parts := make([]string, 0, len(c.w.Choices))
		for i, ch := range c.w.Choices {
			box := "[ ]"
			style := st.Choice
			if chosen[ch] {
				box = "[x]"
				style = st.ChoiceChecked
			}
			if focused && i == c.cursor {
				style = st.ChoiceCursor
			}
			parts = append(parts, style.Render(box+" "+ch))
		}
		b.WriteString(strings.Join(parts, " "))
		switch {
		case !in.Active():
			b.WriteString(st.Muted.Render("  (any)"))
		case len(in.Values) == 0:
			b.WriteString(st.Muted.Render("  (none)"))
		}

	case filter.KindEquals:
		eq, _ := p.(filter.Equals)
		value := eq.Value
		if value == "" {
			value = filter.AllOption
		}
		if c.w.Widget == filter.WidgetRadio {
			parts := make([]string, 0, len(c.w.Choices))
			for _, ch := range c.w.Choices {
				dot, style := "○", st.Choice
				if ch == value || (ch != filter.AllOption && strings.EqualFold(ch, value)) {
					dot, style = "●", st.ChoiceChecked
				}
				parts = append(parts, style.Render(dot+" "+ch))
			}
			b.WriteString(strings.Join(parts, " "))
		} else {
			b.WriteString(st.ChoiceChecked.Render("‹ " + value + " ›"))
		}

	case filter.KindRange:
		r, _ := p.(filter.Range)
		lo, hi := "min", "max"
		if c.w.Min != nil {
			lo = dataset.FormatNumber(*c.w.Min)
		}
		if c.w.Max != nil {
			hi = dataset.FormatNumber(*c.w.Max)
		}
		if r.Min != nil {
			lo = dataset.FormatNumber(*r.Min)
		}
		if r.Max != nil {
			hi = dataset.FormatNumber(*r.Max)
		}
		loStyle, hiStyle := st.ChoiceChecked, st.ChoiceChecked
		if focused {
			if c.upper {
				hiStyle = st.ChoiceCursor
			} else {
				loStyle = st.ChoiceCursor
			}
		}
		fmt.Fprintf(&b, "%s ── %s", loStyle.Render(lo), hiStyle.Render(hi))

	case filter.KindMin:
		m, _ := p.(filter.Min)
		if m.Value == nil {
			b.WriteString(st.Muted.Render("≥ (none)"))
		} else {
			b.WriteString(st.ChoiceChecked.Render("≥ " + dataset.FormatNumber(*m.Value)))
		}

	case filter.KindFlag:
		f, _ := p.(filter.Flag)
		if f.Checked {
			b.WriteString(st.ChoiceChecked.Render("[x] on"))
		} else {
			b.WriteString(st.Choice.Render("[ ] off"))
		}

	case filter.KindSearch:
		s, _ := p.(filter.Search)
		if s.Text == "" {
			b.WriteString(st.Muted.Render("(enter to type)"))
		} else {
			b.WriteString(st.ChoiceChecked.Render("“" + s.Text + "”"))
		}
	}
	return b.String()
}
