// Package ui is the terminal dashboard: a sidebar of filter widgets, the
// key metric cards and tabs for the raw table, the charts and the details.
// Every widget change goes through the session, which recomputes the view.
package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/yildizm/DataSum/internal/chart"
	"github.com/yildizm/DataSum/internal/filter"
	"github.com/yildizm/DataSum/internal/session"
)

const sidebarWidth = 38

// Options configures the dashboard
type Options struct {
	Theme     string
	Color     bool
	TableRows int
	ExportDir string
	Delimiter rune
	Chart     chart.TextOptions
}

// DefaultOptions returns options for a color terminal
func DefaultOptions() Options {
	return Options{
		Theme:     DefaultTheme.Name,
		Color:     !IsColorDisabled(),
		TableRows: 15,
		ExportDir: ".",
		Delimiter: ',',
		Chart:     chart.DefaultTextOptions(),
	}
}

// DashboardModel is the bubbletea model of the dashboard
type DashboardModel struct {
	ctx  context.Context
	sess *session.Session
	opts Options
	st   *Styles

	controls []*control
	selected int
	focus    focus
	tab      Tab

	table    table.Model
	input    textinput.Model
	viewport viewport.Model
	markdown *glamour.TermRenderer

	width  int
	height int

	status    string
	statusErr bool
	statusSeq int
	quitting  bool
}

// NewDashboardModel builds the model around a running session
func NewDashboardModel(ctx context.Context, sess *session.Session, opts Options) *DashboardModel {
	theme, ok := ThemeByName(opts.Theme)
	if !ok {
		theme = DefaultTheme
	}
	if opts.TableRows <= 0 {
		opts.TableRows = DefaultOptions().TableRows
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	opts.Chart.Color = opts.Color

	in := textinput.New()
	in.Placeholder = "type and press enter..."
	in.CharLimit = 80
	in.Width = sidebarWidth - 6

	m := &DashboardModel{
		ctx:      ctx,
		sess:     sess,
		opts:     opts,
		st:       NewStyles(theme, opts.Color),
		controls: newControls(sess.Definition().Widgets(sess.Dataset())),
		input:    in,
		viewport: viewport.New(80, 20),
	}
	m.table = m.newTable()
	m.refresh()
	return m
}

func (m *DashboardModel) newTable() table.Model {
	t := table.New(
		table.WithColumns(tableColumns(m.sess)),
		table.WithHeight(m.opts.TableRows),
	)
	styles := table.DefaultStyles()
	if m.opts.Color {
		styles.Header = styles.Header.BorderForeground(m.st.Theme.Border).Bold(true)
		styles.Selected = styles.Selected.Foreground(m.st.Theme.Primary).Background(m.st.Theme.Selected)
	}
	t.SetStyles(styles)
	return t
}

// Init implements tea.Model
func (m *DashboardModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case statusMsg:
		return m, m.setStatus(msg.text, msg.err)

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status, m.statusErr = "", false
		}
		return m, nil
	}
	return m, nil
}

func (m *DashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.focus == focusText {
		return m.handleTextKey(msg)
	}

	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "tab":
		m.switchTab(m.tab.next())
		return m, nil
	case "shift+tab":
		m.switchTab(m.tab.prev())
		return m, nil
	case "?":
		m.switchTab(TabHelp)
		return m, nil
	case "r":
		return m, m.reset()
	case "e":
		return m, m.export()
	case "m":
		m.toggleFocus()
		return m, nil
	}

	if m.focus == focusMain {
		return m, m.updateMain(msg)
	}
	return m, m.handleSidebarKey(key)
}

func (m *DashboardModel) handleSidebarKey(key string) tea.Cmd {
	switch key {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return nil
	case "down", "j":
		if m.selected < len(m.controls)-1 {
			m.selected++
		}
		return nil
	}
	if len(m.controls) == 0 {
		return nil
	}

	c := m.controls[m.selected]
	current, _ := m.sess.State().Get(c.w.Name)
	if current == nil {
		current = c.w.Spec.Zero()
	}

	if c.editsText() && key == "enter" {
		if s, ok := current.(filter.Search); ok {
			m.input.SetValue(s.Text)
		}
		m.focus = focusText
		return m.input.Focus()
	}

	next, changed := c.update(key, current)
	if !changed {
		return nil
	}
	return m.apply(c.w.Name, next)
}

func (m *DashboardModel) handleTextKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.focus = focusSidebar
		m.input.Blur()
		c := m.controls[m.selected]
		p, err := c.w.Spec.Parse(m.input.Value())
		if err != nil {
			return m, m.setStatus(err.Error(), true)
		}
		return m, m.apply(c.w.Name, p)
	case "esc":
		m.focus = focusSidebar
		m.input.Blur()
		return m, nil
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *DashboardModel) updateMain(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	if m.tab == TabData {
		m.table, cmd = m.table.Update(msg)
		return cmd
	}
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

func (m *DashboardModel) toggleFocus() {
	if m.focus == focusMain {
		m.focus = focusSidebar
		m.table.Blur()
		return
	}
	m.focus = focusMain
	if m.tab == TabData {
		m.table.Focus()
	}
}

func (m *DashboardModel) switchTab(t Tab) {
	m.tab = t
	if m.focus == focusMain && t == TabData {
		m.table.Focus()
	} else {
		m.table.Blur()
	}
	m.refreshViewport()
	m.viewport.GotoTop()
}

// apply stores a widget's new predicate in the session
func (m *DashboardModel) apply(name string, p filter.Predicate) tea.Cmd {
	if _, err := m.sess.Apply(m.ctx, name, p); err != nil {
		return m.setStatus(err.Error(), true)
	}
	m.refresh()
	return nil
}

func (m *DashboardModel) reset() tea.Cmd {
	if _, err := m.sess.Reset(m.ctx); err != nil {
		return m.setStatus(err.Error(), true)
	}
	for _, c := range m.controls {
		c.cursor, c.upper = 0, false
	}
	m.refresh()
	return m.setStatus("Filters reset", false)
}

func (m *DashboardModel) export() tea.Cmd {
	path, err := m.sess.ExportFile(m.opts.ExportDir, m.opts.Delimiter)
	if err != nil {
		return m.setStatus(fmt.Sprintf("Export failed: %v", err), true)
	}
	return m.setStatus(fmt.Sprintf("Exported %d rows to %s", m.sess.View().Len(), path), false)
}

func (m *DashboardModel) setStatus(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.status, m.statusErr = text, isErr
	return clearStatusAfter(m.statusSeq)
}

// refresh rebuilds everything derived from the session's analysis
func (m *DashboardModel) refresh() {
	m.table.SetRows(tableRows(m.sess))
	if len(m.table.Rows()) > 0 {
		m.table.SetCursor(0)
	}
	m.refreshViewport()
}

func (m *DashboardModel) refreshViewport() {
	switch m.tab {
	case TabCharts:
		m.viewport.SetContent(m.renderCharts())
	case TabDetails:
		m.viewport.SetContent(m.renderDetails())
	case TabHelp:
		m.viewport.SetContent(m.renderHelp())
	default:
		m.viewport.SetContent("")
	}
}

func (m *DashboardModel) resize() {
	mainWidth := max(40, m.width-sidebarWidth-4)
	// header, cards, showing line, tab bar and status bar
	bodyHeight := max(5, m.height-14)

	m.viewport.Width = mainWidth
	m.viewport.Height = bodyHeight
	m.table.SetWidth(mainWidth)
	m.table.SetHeight(min(m.opts.TableRows, bodyHeight-2))
	m.opts.Chart.Width = max(10, min(60, mainWidth-30))
	m.markdown = nil
	m.refreshViewport()
}

// renderer returns the glamour renderer for the current width
func (m *DashboardModel) renderer() *glamour.TermRenderer {
	if m.markdown != nil {
		return m.markdown
	}
	wrap := max(40, m.viewport.Width-4)
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(wrap)}
	if m.opts.Color {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil
	}
	m.markdown = r
	return r
}

// Run starts the dashboard and blocks until the user quits or ctx ends
func Run(ctx context.Context, sess *session.Session, opts Options) error {
	model := NewDashboardModel(ctx, sess, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
