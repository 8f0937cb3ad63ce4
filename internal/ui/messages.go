package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const statusTTL = 4 * time.Second

// statusMsg sets the status bar line
type statusMsg struct {
	text string
	err  bool
}

// clearStatusMsg clears the status line it was scheduled for
type clearStatusMsg struct {
	seq int
}

func clearStatusAfter(seq int) tea.Cmd {
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}
