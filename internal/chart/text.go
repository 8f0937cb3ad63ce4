// Package chart renders computed chart data for terminals and as images.
package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yildizm/DataSum/internal/analyzer"
)

// TextOptions controls terminal rendering
type TextOptions struct {
	Width         int  // bar length in cells
	MaxCategories int  // categories shown before truncating, 0 shows all
	Color         bool // style output with lipgloss colors
}

// DefaultTextOptions returns options suited to an 80 column terminal
func DefaultTextOptions() TextOptions {
	return TextOptions{Width: 40, MaxCategories: 12, Color: false}
}

// seriesGlyphs distinguish series of a grouped bar without color
var seriesGlyphs = []string{"█", "▒", "░", "▓"}

var (
	infoColor    = lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#60A5FA"}
	mutedColor   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	seriesColors = []lipgloss.AdaptiveColor{
		{Light: "#EF4444", Dark: "#F87171"},
		{Light: "#10B981", Dark: "#34D399"},
		{Light: "#F59E0B", Dark: "#FBBF24"},
		{Light: "#8B5CF6", Dark: "#A78BFA"},
	}
)

type textStyles struct {
	title  lipgloss.Style
	muted  lipgloss.Style
	series []lipgloss.Style
}

func newTextStyles(color bool) textStyles {
	s := textStyles{title: lipgloss.NewStyle().Bold(color), muted: lipgloss.NewStyle()}
	for range seriesColors {
		s.series = append(s.series, lipgloss.NewStyle())
	}
	if !color {
		return s
	}
	s.title = s.title.Foreground(infoColor)
	s.muted = s.muted.Foreground(mutedColor)
	for i, c := range seriesColors {
		s.series[i] = s.series[i].Foreground(c)
	}
	return s
}

func (s textStyles) seriesStyle(i int) lipgloss.Style {
	return s.series[i%len(s.series)]
}

// RenderText draws a chart with box-drawing characters
func RenderText(c analyzer.ChartData, opts TextOptions) string {
	if opts.Width < 1 {
		opts.Width = DefaultTextOptions().Width
	}
	st := newTextStyles(opts.Color)

	var b strings.Builder
	b.WriteString(st.title.Render(c.Title) + "\n")
	if axes := axisLine(c); axes != "" {
		b.WriteString(st.muted.Render(axes) + "\n")
	}

	if c.Empty() {
		b.WriteString(st.muted.Render("No data to display") + "\n")
		return b.String()
	}

	switch c.Kind {
	case analyzer.ChartHeatmap:
		renderHeatmap(&b, c.Matrix, st, opts)
	case analyzer.ChartBoxPlot:
		renderBox(&b, c.Box, st, opts)
	default:
		renderBars(&b, c, st, opts)
	}
	return b.String()
}

func axisLine(c analyzer.ChartData) string {
	switch {
	case c.XLabel != "" && c.YLabel != "":
		return c.XLabel + " · " + c.YLabel
	case c.XLabel != "":
		return c.XLabel
	default:
		return c.YLabel
	}
}

// renderBars draws one horizontal bar per category and series
func renderBars(b *strings.Builder, c analyzer.ChartData, st textStyles, opts TextOptions) {
	maxVal := 0.0
	for _, s := range c.Series {
		for _, v := range s.Values {
			if v.Valid && v.Value > maxVal {
				maxVal = v.Value
			}
		}
	}

	shown := len(c.Categories)
	if opts.MaxCategories > 0 && shown > opts.MaxCategories {
		shown = opts.MaxCategories
	}
	labelWidth := 0
	for _, cat := range c.Categories[:shown] {
		labelWidth = max(labelWidth, lipgloss.Width(cat))
	}

	for i := 0; i < shown; i++ {
		for si, s := range c.Series {
			label := ""
			if si == 0 {
				label = c.Categories[i]
			}
			pad := strings.Repeat(" ", labelWidth-lipgloss.Width(label))
			v := s.Values[i]

			var bar string
			if v.Valid && maxVal > 0 {
				n := int(math.Round(math.Max(v.Value, 0) / maxVal * float64(opts.Width)))
				bar = strings.Repeat(seriesGlyphs[si%len(seriesGlyphs)], n)
			}
			fill := strings.Repeat(" ", opts.Width-lipgloss.Width(bar))
			fmt.Fprintf(b, "%s%s │%s%s %s\n", label, pad, st.seriesStyle(si).Render(bar), fill, FormatValue(v))
		}
	}
	if hidden := len(c.Categories) - shown; hidden > 0 {
		b.WriteString(st.muted.Render(fmt.Sprintf("… %d more", hidden)) + "\n")
	}

	if len(c.Series) > 1 {
		parts := make([]string, len(c.Series))
		for i, s := range c.Series {
			parts[i] = st.seriesStyle(i).Render(seriesGlyphs[i%len(seriesGlyphs)]) + " " + s.Name
		}
		b.WriteString(strings.Join(parts, "  ") + "\n")
	}
}

// heat shades from strong negative to strong positive correlation
var heat = []lipgloss.AdaptiveColor{
	{Light: "#1D4ED8", Dark: "#1E40AF"},
	{Light: "#93C5FD", Dark: "#3B82F6"},
	{Light: "#E5E7EB", Dark: "#374151"},
	{Light: "#FCA5A5", Dark: "#EF4444"},
	{Light: "#B91C1C", Dark: "#991B1B"},
}

func heatStyle(v float64) lipgloss.Style {
	i := int(math.Round((v + 1) / 2 * float64(len(heat)-1)))
	i = max(0, min(len(heat)-1, i))
	return lipgloss.NewStyle().Background(heat[i])
}

func renderHeatmap(b *strings.Builder, m *analyzer.Matrix, st textStyles, opts TextOptions) {
	const cell = 7
	labelWidth := 0
	for _, col := range m.Columns {
		labelWidth = max(labelWidth, lipgloss.Width(col))
	}

	b.WriteString(strings.Repeat(" ", labelWidth+1))
	for _, col := range m.Columns {
		b.WriteString(st.muted.Render(fmt.Sprintf("%*s", cell, truncate(col, cell-1))))
	}
	b.WriteString("\n")

	for i, row := range m.Columns {
		fmt.Fprintf(b, "%-*s ", labelWidth, row)
		for j := range m.Columns {
			v := m.Values[i][j]
			text := fmt.Sprintf("%*s", cell, "N/A")
			if v.Valid {
				text = fmt.Sprintf("%*.2f", cell, v.Value)
				if opts.Color {
					text = heatStyle(v.Value).Render(text)
				}
			}
			b.WriteString(text)
		}
		b.WriteString("\n")
	}
}

func renderBox(b *strings.Builder, box *analyzer.BoxStats, st textStyles, opts TextOptions) {
	lo, hi := box.Min, box.Max
	span := hi - lo
	pos := func(v float64) int {
		if span == 0 {
			return opts.Width / 2
		}
		p := int(math.Round((v - lo) / span * float64(opts.Width-1)))
		return max(0, min(opts.Width-1, p))
	}

	line := []rune(strings.Repeat(" ", opts.Width))
	lw, q1, med, q3, uw := pos(box.LowerFen), pos(box.Q1), pos(box.Median), pos(box.Q3), pos(box.UpperFen)
	for i := lw; i <= uw; i++ {
		line[i] = '─'
	}
	for i := q1; i <= q3; i++ {
		line[i] = '▒'
	}
	line[lw], line[uw] = '├', '┤'
	line[med] = '┃'
	for _, o := range box.Outliers {
		line[pos(o)] = '∘'
	}

	label := box.Label
	if label != "" {
		label += " "
	}
	b.WriteString(label + st.seriesStyle(1).Render(string(line)) + "\n")
	fmt.Fprintf(b, "%s\n", st.muted.Render(fmt.Sprintf("min %s  q1 %s  median %s  q3 %s  max %s  (n=%d, %d outliers)",
		formatFloat(box.Min), formatFloat(box.Q1), formatFloat(box.Median), formatFloat(box.Q3), formatFloat(box.Max),
		box.Count, len(box.Outliers))))
}

// Sparkline draws values as a one-line block chart
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width < 1 {
		return ""
	}
	chars := []string{"▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	step := len(values) / width
	if step == 0 {
		step = 1
	}

	var out strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		normalized := 0.0
		if hi > lo {
			normalized = (values[i*step] - lo) / (hi - lo)
		}
		idx := min(len(chars)-1, int(normalized*float64(len(chars)-1)))
		out.WriteString(chars[idx])
	}
	return out.String()
}

// FormatValue formats a chart value: integers with thousands separators,
// fractions with two decimals, N/A when absent
func FormatValue(v analyzer.Scalar) string {
	if !v.Valid {
		return analyzer.NA
	}
	return formatFloat(v.Value)
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		s := fmt.Sprintf("%d", int64(math.Abs(f)))
		for i := len(s) - 3; i > 0; i -= 3 {
			s = s[:i] + "," + s[i:]
		}
		if f < 0 {
			s = "-" + s
		}
		return s
	}
	return fmt.Sprintf("%.2f", f)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
