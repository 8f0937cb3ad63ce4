package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a color palette for the dashboard
type Theme struct {
	Name string

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Accent    lipgloss.AdaptiveColor

	Success lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor

	Border   lipgloss.AdaptiveColor
	Muted    lipgloss.AdaptiveColor
	Selected lipgloss.AdaptiveColor
}

func color(pair [2]string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: pair[0], Dark: pair[1]}
}

// buildTheme takes light/dark pairs in field order
func buildTheme(name string, primary, secondary, accent, success, warning, errorColor, border, muted, selected [2]string) Theme {
	return Theme{
		Name:      name,
		Primary:   color(primary),
		Secondary: color(secondary),
		Accent:    color(accent),
		Success:   color(success),
		Warning:   color(warning),
		Error:     color(errorColor),
		Border:    color(border),
		Muted:     color(muted),
		Selected:  color(selected),
	}
}

// Available themes
var (
	DefaultTheme = buildTheme("default",
		[2]string{"#1E40AF", "#3B82F6"}, [2]string{"#6B7280", "#9CA3AF"}, [2]string{"#7C3AED", "#A855F7"},
		[2]string{"#059669", "#10B981"}, [2]string{"#D97706", "#F59E0B"}, [2]string{"#DC2626", "#EF4444"},
		[2]string{"#D1D5DB", "#374151"}, [2]string{"#6B7280", "#9CA3AF"}, [2]string{"#DBEAFE", "#1E3A8A"})

	HighContrastTheme = buildTheme("high-contrast",
		[2]string{"#000000", "#FFFFFF"}, [2]string{"#666666", "#BBBBBB"}, [2]string{"#000080", "#8080FF"},
		[2]string{"#006600", "#00FF00"}, [2]string{"#CC6600", "#FFAA00"}, [2]string{"#CC0000", "#FF4444"},
		[2]string{"#000000", "#FFFFFF"}, [2]string{"#666666", "#BBBBBB"}, [2]string{"#CCCCCC", "#333333"})

	MinimalTheme = buildTheme("minimal",
		[2]string{"#2D3748", "#E2E8F0"}, [2]string{"#718096", "#A0AEC0"}, [2]string{"#4A5568", "#CBD5E0"},
		[2]string{"#2F855A", "#68D391"}, [2]string{"#C05621", "#F6AD55"}, [2]string{"#C53030", "#FC8181"},
		[2]string{"#E2E8F0", "#2D3748"}, [2]string{"#A0AEC0", "#718096"}, [2]string{"#EDF2F7", "#2D3748"})
)

var themes = map[string]*Theme{
	DefaultTheme.Name:      &DefaultTheme,
	HighContrastTheme.Name: &HighContrastTheme,
	MinimalTheme.Name:      &MinimalTheme,
}

// ThemeByName returns a named theme
func ThemeByName(name string) (Theme, bool) {
	t, ok := themes[name]
	if !ok {
		return Theme{}, false
	}
	return *t, true
}

// AvailableThemes lists the theme names accepted by ThemeByName
func AvailableThemes() []string {
	return []string{DefaultTheme.Name, HighContrastTheme.Name, MinimalTheme.Name}
}

// IsColorDisabled checks NO_COLOR
func IsColorDisabled() bool {
	return os.Getenv("NO_COLOR") != ""
}

// Styles are the lipgloss styles the dashboard draws with
type Styles struct {
	Theme Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Header   lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	Sidebar       lipgloss.Style
	Label         lipgloss.Style
	FocusedLabel  lipgloss.Style
	Choice        lipgloss.Style
	ChoiceCursor  lipgloss.Style
	ChoiceChecked lipgloss.Style

	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Panel     lipgloss.Style
	Card      lipgloss.Style
	CardValue lipgloss.Style
	StatusBar lipgloss.Style
}

// NewStyles derives the dashboard styles from a theme. With color off
// every style keeps its layout but drops colors.
func NewStyles(t Theme, colorOn bool) *Styles {
	fg := func(c lipgloss.AdaptiveColor) lipgloss.Style {
		if !colorOn {
			return lipgloss.NewStyle()
		}
		return lipgloss.NewStyle().Foreground(c)
	}
	border := func(s lipgloss.Style, c lipgloss.AdaptiveColor) lipgloss.Style {
		if !colorOn {
			return s
		}
		return s.BorderForeground(c)
	}

	s := &Styles{
		Theme:    t,
		Title:    fg(t.Primary).Bold(true),
		Subtitle: fg(t.Secondary).Italic(true),
		Header:   fg(t.Primary).Bold(true),
		Body:     lipgloss.NewStyle(),
		Muted:    fg(t.Muted),

		Success: fg(t.Success).Bold(true),
		Warning: fg(t.Warning).Bold(true),
		Error:   fg(t.Error).Bold(true),

		Sidebar:       border(lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, true, false, false).PaddingRight(1), t.Border),
		Label:         fg(t.Secondary).Bold(true),
		FocusedLabel:  fg(t.Accent).Bold(true),
		Choice:        fg(t.Secondary),
		ChoiceCursor:  fg(t.Primary).Bold(true),
		ChoiceChecked: fg(t.Success),

		Tab:       fg(t.Muted).Padding(0, 2),
		ActiveTab: border(fg(t.Primary).Bold(true).Padding(0, 1).Border(lipgloss.RoundedBorder(), false, false, true, false), t.Primary),
		Panel:     border(lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1), t.Border),
		Card:      border(lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1), t.Border),
		CardValue: fg(t.Primary).Bold(true),
		StatusBar: fg(t.Muted),
	}
	if colorOn {
		s.ChoiceCursor = s.ChoiceCursor.Background(t.Selected)
	}
	return s
}
