package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptiq/internal/ui/theme"
)

// CardWidth is the width of a card inside a Framed area w columns wide,
// kept between 20 and 60.
func CardWidth(w int) int {
	return min(max(w-6, 20), 60)
}

// Framed centres content in a double-bordered box filling w x h.
func Framed(content string, w, h int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(w-2).
		Height(h-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// Card boxes content w columns wide.
func Card(content string, w int) string {
	return cardStyle.Width(w - 2).Render(content)
}

// Button is a full-width button; the focused one is filled.
func Button(label string, focused bool, w int) string {
	if focused {
		return buttonFocused.Width(w).Render("▸ " + label)
	}
	return buttonIdle.Width(w).Render(label)
}

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Align(lipgloss.Center).
			Padding(1, 2)

	buttonIdle = lipgloss.NewStyle().
			Align(lipgloss.Center).
			Foreground(theme.Text).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1)

	buttonFocused = buttonIdle.
			Bold(true).
			Foreground(theme.BgDark).
			Background(theme.Highlight).
			BorderForeground(theme.Highlight)
)
