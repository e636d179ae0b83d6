package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptiq/internal/bank"
	"github.com/abhisek/adaptiq/internal/ui/theme"
)

// MultiChoice is a labelled option selector for fixed-answer questions.
// Options are picked with the arrows or by typing their label.
type MultiChoice struct {
	Options  []bank.Option
	Selected int

	// Revealed marks Correct and Chosen after grading.
	Revealed bool
	Correct  string
	Chosen   string
}

// NewMultiChoice creates a selector over opts with the first option highlighted.
func NewMultiChoice(opts []bank.Option) MultiChoice {
	return MultiChoice{Options: opts}
}

// Init returns nil.
func (m MultiChoice) Init() tea.Cmd {
	return nil
}

// Update handles keyboard navigation. Typing an option label moves the
// highlight onto it.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Revealed || len(m.Options) == 0 {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	default:
		for i, o := range m.Options {
			if strings.EqualFold(o.Label, key) {
				m.Selected = i
				break
			}
		}
	}

	return m, nil
}

// Value returns the label of the highlighted option.
func (m MultiChoice) Value() string {
	if m.Selected < 0 || m.Selected >= len(m.Options) {
		return ""
	}
	return m.Options[m.Selected].Label
}

// Reveal freezes the selector and marks the expected and chosen labels.
func (m *MultiChoice) Reveal(correct, chosen string) {
	m.Revealed = true
	m.Correct = correct
	m.Chosen = chosen
}

// View renders the options, one per line.
func (m MultiChoice) View() string {
	var b strings.Builder
	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected && !m.Revealed {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s)  %s", prefix, opt.Label, opt.Text)

		var style lipgloss.Style
		switch {
		case m.Revealed && opt.Label == m.Correct:
			style = lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
		case m.Revealed && opt.Label == m.Chosen:
			style = lipgloss.NewStyle().Foreground(theme.Error).Bold(true)
		case m.Revealed:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Selected:
			style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		default:
			style = lipgloss.NewStyle().Foreground(theme.Text)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
