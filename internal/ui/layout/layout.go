package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptiq/internal/ui/theme"
)

// Smallest terminal the quiz screens are drawn for.
const (
	MinWidth  = 80
	MinHeight = 24
)

// KeyHint is one "key action" pair in the bottom bar.
type KeyHint struct {
	Key         string
	Description string
}

// Chrome is what the app draws around the active screen.
type Chrome struct {
	Title  string
	Status string // right side of the top bar, may be empty
	Hints  []KeyHint
}

// Fits reports whether the terminal is big enough for the quiz.
func Fits(width, height int) bool {
	return width >= MinWidth && height >= MinHeight
}

// TooSmall is shown instead of the quiz when Fits is false.
func TooSmall(width, height int) string {
	text := fmt.Sprintf("¡Terminal demasiado pequeña!\n\nSe necesitan al menos %d x %d\n(ahora %d x %d)",
		MinWidth, MinHeight, width, height)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Text).Align(lipgloss.Center).Render(text))
}

// Compose stacks the top bar, the screen body and the hint bar. body gets
// the width and the rows left between the two bars.
func Compose(width, height int, c Chrome, body func(w, h int) string) string {
	top := bar(width, titleLine(c.Title, c.Status, width-4))
	bottom := bar(width, "  "+hintLine(c.Hints))
	rows := max(height-lipgloss.Height(top)-lipgloss.Height(bottom), 0)

	middle := lipgloss.NewStyle().Width(width).Height(rows).MaxHeight(rows).Render(body(width, rows))
	return lipgloss.JoinVertical(lipgloss.Left, top, middle, bottom)
}

var barStyle = lipgloss.NewStyle().
	Background(theme.BgCard).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(theme.Border)

func bar(width int, content string) string {
	return barStyle.Width(width).Render(content)
}

// titleLine puts the brand on the left, the title centred and status on
// the right of an inner line that is width cells wide.
func titleLine(title, status string, width int) string {
	brand := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  adaptiq")
	right := lipgloss.NewStyle().Foreground(theme.Accent).Render(status)
	mid := lipgloss.NewStyle().Foreground(theme.Text).Render(title)

	free := max(width-lipgloss.Width(brand)-lipgloss.Width(right), lipgloss.Width(mid)+2)
	return brand + lipgloss.PlaceHorizontal(free, lipgloss.Center, mid) + right
}

func hintLine(hints []KeyHint) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = key.Render(h.Key) + " " + desc.Render(h.Description)
	}
	return strings.Join(parts, "   ")
}
