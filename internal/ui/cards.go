package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/yildizm/DataSum/internal/analyzer"
)

// MetricCard is one key metric box
type MetricCard struct {
	Title string
	Value string
	Width int
	NA    bool
}

// NewMetricCard builds a card from a computed metric
func NewMetricCard(m analyzer.Metric) MetricCard {
	title := m.Label
	if title == "" {
		title = m.Name
	}
	return MetricCard{Title: title, Value: m.String(), Width: 20, NA: !m.Valid()}
}

// Render draws the card
func (c MetricCard) Render(st *Styles) string {
	value := st.CardValue.Render(c.Value)
	if c.NA {
		value = st.Muted.Render(c.Value)
	}
	content := lipgloss.JoinVertical(lipgloss.Left, st.Muted.Render(c.Title), value)
	return st.Card.Width(c.Width).Render(content)
}

// renderCards lays metric cards out in a row, wrapping to keep within width
func renderCards(metrics []analyzer.Metric, width int, st *Styles) string {
	if len(metrics) == 0 {
		return ""
	}

	cardWidth := 20
	if width > 0 {
		// four per row when there is room
		perRow := min(len(metrics), 4)
		if w := width/perRow - 4; w > 12 {
			cardWidth = min(w, 28)
		}
	}
	columns := max(1, width/(cardWidth+4))

	var rows []string
	for i := 0; i < len(metrics); i += columns {
		end := min(i+columns, len(metrics))
		cells := make([]string, 0, end-i)
		for _, m := range metrics[i:end] {
			card := NewMetricCard(m)
			card.Width = cardWidth
			cells = append(cells, card.Render(st))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
