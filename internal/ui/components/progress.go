package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptiq/internal/ui/theme"
)

var (
	meterFull  = lipgloss.NewStyle().Foreground(theme.Secondary)
	meterEmpty = lipgloss.NewStyle().Foreground(theme.Border)
	meterText  = lipgloss.NewStyle().Foreground(theme.TextDim)
)

// Meter draws fraction (clamped to 0..1) as a bar width cells wide.
func Meter(fraction float64, width int) string {
	width = max(width, 4)
	full := min(max(int(fraction*float64(width)+0.5), 0), width)
	return meterFull.Render(strings.Repeat("█", full)) +
		meterEmpty.Render(strings.Repeat("░", width-full))
}

// ScoreMeter is a Meter for a 0..1 score with the percentage after it.
func ScoreMeter(score float64, width int) string {
	pct := fmt.Sprintf(" %3.0f%%", min(max(score, 0), 1)*100)
	return Meter(score, width-lipgloss.Width(pct)) + meterText.Render(pct)
}

// CountMeter prefixes a Meter of done/total with "label done/total".
func CountMeter(label string, done, total, width int) string {
	text := fmt.Sprintf("%d/%d", done, total)
	if label != "" {
		text = label + " " + text
	}
	text = lipgloss.NewStyle().Foreground(theme.Text).Render(text) + "  "

	fraction := 0.0
	if total > 0 {
		fraction = float64(done) / float64(total)
	}
	return text + Meter(fraction, width-lipgloss.Width(text))
}
