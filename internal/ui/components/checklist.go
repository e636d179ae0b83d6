package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptiq/internal/ui/theme"
)

// CheckItem is one toggleable row of a Checklist.
type CheckItem struct {
	Label   string
	Detail  string
	Checked bool
}

// Checklist is a vertical list of toggleable items.
type Checklist struct {
	Items  []CheckItem
	Cursor int
}

// NewChecklist creates a checklist with every item checked.
func NewChecklist(items []CheckItem) Checklist {
	for i := range items {
		items[i].Checked = true
	}
	return Checklist{Items: items}
}

// Update handles cursor movement and toggling. Space toggles the item under
// the cursor, "a" toggles all items at once.
func (c Checklist) Update(msg tea.Msg) (Checklist, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(c.Items) == 0 {
		return c, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if c.Cursor > 0 {
			c.Cursor--
		}
	case "down", "j":
		if c.Cursor < len(c.Items)-1 {
			c.Cursor++
		}
	case "space", " ", "x":
		c.Items[c.Cursor].Checked = !c.Items[c.Cursor].Checked
	case "a":
		all := len(c.Checked()) == len(c.Items)
		for i := range c.Items {
			c.Items[i].Checked = !all
		}
	}
	return c, nil
}

// Checked returns the labels of the checked items in list order.
func (c Checklist) Checked() []string {
	var out []string
	for _, it := range c.Items {
		if it.Checked {
			out = append(out, it.Label)
		}
	}
	return out
}

// View renders the checklist.
func (c Checklist) View() string {
	var b strings.Builder
	for i, it := range c.Items {
		box := "[ ]"
		if it.Checked {
			box = "[x]"
		}
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == c.Cursor {
			prefix = "▸ "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		line := fmt.Sprintf("%s%s %s", prefix, box, it.Label)
		b.WriteString(style.Render(line))
		if it.Detail != "" {
			b.WriteString(" " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(it.Detail))
		}
		b.WriteString("\n")
	}
	return b.String()
}
