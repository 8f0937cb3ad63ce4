package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/yildizm/DataSum/internal/analyzer"
	"github.com/yildizm/DataSum/internal/chart"
	"github.com/yildizm/DataSum/internal/emoji"
	"github.com/yildizm/DataSum/internal/session"
)

const maxCellWidth = 14

func tableColumns(sess *session.Session) []table.Column {
	ds := sess.Dataset()
	names := sess.Definition().TableColumns(ds)
	cols := make([]table.Column, 0, len(names))
	for _, name := range names {
		width := max(utf8.RuneCountInString(name), 4)
		for row := 0; row < min(ds.Len(), 200); row++ {
			width = max(width, utf8.RuneCountInString(ds.Value(row, name).String()))
		}
		cols = append(cols, table.Column{Title: name, Width: min(width, maxCellWidth)})
	}
	return cols
}

func tableRows(sess *session.Session) []table.Row {
	view := sess.View()
	names := sess.Definition().TableColumns(sess.Dataset())
	rows := make([]table.Row, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		row := make(table.Row, len(names))
		for j, name := range names {
			row[j] = view.Value(i, name).String()
		}
		rows = append(rows, row)
	}
	return rows
}

// View implements tea.Model
func (m *DashboardModel) View() string {
	if m.quitting {
		return ""
	}

	sidebar := m.st.Sidebar.Width(sidebarWidth).Render(m.renderSidebar())
	main := lipgloss.JoinVertical(lipgloss.Left,
		renderCards(m.sess.Analysis().Metrics, m.viewport.Width, m.st),
		m.renderShowing(),
		m.renderTabs(),
		m.renderTab(),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", main)
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderStatus())
}

func (m *DashboardModel) renderHeader() string {
	def := m.sess.Definition()
	title := def.Title
	if icon := emoji.Icon(def.Icon, "dashboard"); icon != "" {
		title = icon + " " + title
	}
	lines := []string{m.st.Title.Render(title)}
	if def.Description != "" {
		lines = append(lines, m.st.Subtitle.Render(def.Description))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

func (m *DashboardModel) renderSidebar() string {
	lines := []string{m.st.Header.Render(withEmoji("filter", "Filters")), ""}
	state := m.sess.State()
	for i, c := range m.controls {
		p, _ := state.Get(c.w.Name)
		if p == nil {
			p = c.w.Spec.Zero()
		}
		focused := i == m.selected && m.focus != focusMain
		lines = append(lines, c.view(p, focused, m.st))
		if focused && m.focus == focusText {
			lines = append(lines, "  "+m.input.View())
		}
		lines = append(lines, "")
	}
	lines = append(lines, m.st.Muted.Render("↑↓ select  ←→ change\nspace toggle  x clear"))
	return strings.Join(lines, "\n")
}

func (m *DashboardModel) renderShowing() string {
	a := m.sess.Analysis()
	line := m.st.Muted.Render(a.Showing())
	if a.Rows == 0 {
		line += "  " + m.st.Warning.Render(withEmoji("warning", "No records match the current filters"))
	}
	return line
}

func (m *DashboardModel) renderTabs() string {
	tabs := make([]string, 0, len(tabNames))
	for t := TabData; t <= TabHelp; t++ {
		style := m.st.Tab
		if t == m.tab {
			style = m.st.ActiveTab
		}
		tabs = append(tabs, style.Render(t.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
}

func (m *DashboardModel) renderTab() string {
	if m.tab != TabData {
		return m.viewport.View()
	}
	if m.sess.Analysis().Rows == 0 {
		return m.st.Muted.Render("\nNothing to show.")
	}
	return m.st.Panel.Render(m.table.View())
}

func (m *DashboardModel) renderStatus() string {
	if m.status != "" {
		if m.statusErr {
			return m.st.Error.Render(withEmoji("error", m.status))
		}
		return m.st.Success.Render(withEmoji("success", m.status))
	}
	hint := "tab switch view • m focus table • e export • r reset • ? help • q quit"
	if m.focus == focusMain {
		hint = "↑↓ scroll • m back to filters • tab switch view • q quit"
	}
	return m.st.StatusBar.Render(hint)
}

func (m *DashboardModel) renderCharts() string {
	a := m.sess.Analysis()
	var b strings.Builder
	for _, c := range a.Charts {
		b.WriteString(chart.RenderText(c, m.opts.Chart))
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return m.st.Muted.Render("No charts configured.")
	}
	return b.String()
}

// renderDetails shows descriptive statistics, the correlation heatmap and
// the dashboard's about text
func (m *DashboardModel) renderDetails() string {
	a := m.sess.Analysis()
	var b strings.Builder

	b.WriteString(m.st.Header.Render(withEmoji("statistics", "Summary Statistics")) + "\n")
	b.WriteString(describeTable(a.Describe))
	b.WriteString("\n")

	if a.Correlation != nil && len(a.Correlation.Columns) > 1 {
		heat := analyzer.ChartData{
			Name:   "correlation",
			Title:  "Correlation Heatmap",
			Kind:   analyzer.ChartHeatmap,
			Matrix: a.Correlation,
		}
		b.WriteString(chart.RenderText(heat, m.opts.Chart))
		b.WriteString("\n")
	}

	if about := m.sess.Definition().About; about != "" {
		b.WriteString(m.st.Header.Render(withEmoji("details", "About")) + "\n")
		if r := m.renderer(); r != nil {
			if out, err := r.Render(about); err == nil {
				about = out
			}
		}
		b.WriteString(about)
	}
	return b.String()
}

func describeTable(stats []analyzer.ColumnStats) string {
	if len(stats) == 0 {
		return "No numeric columns.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %6s %9s %9s %9s %9s %9s %9s %9s\n",
		"", "count", "mean", "std", "min", "25%", "50%", "75%", "max")
	for _, s := range stats {
		fmt.Fprintf(&b, "%-12s %6d %9s %9s %9s %9s %9s %9s %9s\n",
			truncate(s.Column, 12), s.Count,
			chart.FormatValue(s.Mean), chart.FormatValue(s.Std),
			chart.FormatValue(s.Min), chart.FormatValue(s.Q1),
			chart.FormatValue(s.Median), chart.FormatValue(s.Q3),
			chart.FormatValue(s.Max))
	}
	return b.String()
}

func withEmoji(key, text string) string {
	return emoji.GetEmoji(key) + " " + text
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

func (m *DashboardModel) renderHelp() string {
	sections := []struct {
		title string
		lines []string
	}{
		{withEmoji("filter", "Filters"), []string{
			"↑/↓ or k/j      select a filter",
			"←/→ or h/l      move choice, step a value",
			"space           toggle a choice or checkbox, switch slider handle",
			"enter           edit a search box",
			"x               clear the selected filter",
			"r               reset every filter",
		}},
		{withEmoji("table", "Views"), []string{
			"tab/shift+tab   switch Data, Visualizations, Details",
			"m               move focus to the table or back",
			"e               export the filtered view",
		}},
		{withEmoji("door", "Exit"), []string{
			"q or ctrl+c     quit",
		}},
	}

	var b strings.Builder
	for _, s := range sections {
		b.WriteString(m.st.Header.Render(s.title) + "\n")
		for _, l := range s.lines {
			b.WriteString("  " + m.st.Body.Render(l) + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
