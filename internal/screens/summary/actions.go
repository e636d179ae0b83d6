package summary

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptiq/internal/ui/theme"
)

// action is one thing the learner can do from the results. key is its
// shortcut; disabled actions stay listed but are skipped by the cursor.
type action struct {
	key     string
	label   string
	hint    string
	run     func() tea.Cmd
	enabled bool
}

// actionList is a vertical list with a cursor on an enabled action.
type actionList struct {
	items  []action
	cursor int
}

func newActionList(items ...action) actionList {
	l := actionList{items: items}
	l.cursor = l.next(-1, 1)
	return l
}

// next returns the first enabled index after from in direction dir, or
// from itself when there is none.
func (l actionList) next(from, dir int) int {
	for i := from + dir; i >= 0 && i < len(l.items); i += dir {
		if l.items[i].enabled {
			return i
		}
	}
	return from
}

// handle moves the cursor or runs an action for key.
func (l *actionList) handle(key string) tea.Cmd {
	switch key {
	case "up", "k":
		l.cursor = l.next(l.cursor, -1)
		return nil
	case "down", "j":
		l.cursor = l.next(l.cursor, 1)
		return nil
	case "enter":
		return l.run(l.cursor)
	}
	for i, a := range l.items {
		if a.key == key {
			return l.run(i)
		}
	}
	return nil
}

func (l *actionList) run(i int) tea.Cmd {
	if i < 0 || i >= len(l.items) || !l.items[i].enabled || l.items[i].run == nil {
		return nil
	}
	l.cursor = i
	return l.items[i].run()
}

func (l actionList) view() string {
	cur := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	on := lipgloss.NewStyle().Foreground(theme.Text)
	off := lipgloss.NewStyle().Foreground(theme.TextDim).Faint(true)

	var b strings.Builder
	for i, a := range l.items {
		switch {
		case i == l.cursor:
			b.WriteString(cur.Render("  ▸ " + a.label))
		case a.enabled:
			b.WriteString(on.Render("    " + a.label))
		default:
			b.WriteString(off.Render("    " + a.label))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
