package ui

// Tab is one of the main panel's views
type Tab int

const (
	TabData Tab = iota
	TabCharts
	TabDetails
	TabHelp
)

var tabNames = []string{"Data", "Visualizations", "Details", "Help"}

// String returns the tab's title
func (t Tab) String() string {
	if int(t) < 0 || int(t) >= len(tabNames) {
		return "?"
	}
	return tabNames[t]
}

func (t Tab) next() Tab { return (t + 1) % Tab(len(tabNames)) }

func (t Tab) prev() Tab { return (t + Tab(len(tabNames)) - 1) % Tab(len(tabNames)) }

// focus is where key presses go
type focus int

const (
	focusSidebar focus = iota
	focusMain
	focusText
)
