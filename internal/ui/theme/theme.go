package theme

import "charm.land/lipgloss/v2"

// Palette for a dark terminal.
var (
	Primary   = lipgloss.Color("#8B5CF6")
	Secondary = lipgloss.Color("#14B8A6")
	Accent    = lipgloss.Color("#F97316")
	Highlight = lipgloss.Color("#FACC15") // focused buttons

	Success = lipgloss.Color("#22C55E")
	Warning = lipgloss.Color("#EAB308")
	Error   = lipgloss.Color("#F43F5E")

	Text    = lipgloss.Color("#F8FAFC")
	TextDim = lipgloss.Color("#94A3B8")
	BgDark  = lipgloss.Color("#0F172A")
	BgCard  = lipgloss.Color("#1E293B")
	Border  = lipgloss.Color("#334155")
)

// Text styles shared by the screens.
var (
	Title    = lipgloss.NewStyle().Foreground(Primary).Bold(true).Align(lipgloss.Center)
	Subtitle = lipgloss.NewStyle().Foreground(TextDim).Align(lipgloss.Center)
	Hint     = lipgloss.NewStyle().Foreground(TextDim).Italic(true)
	Warn     = lipgloss.NewStyle().Foreground(Warning).Bold(true)

	Correct   = lipgloss.NewStyle().Foreground(Success).Bold(true)
	Incorrect = lipgloss.NewStyle().Foreground(Error).Bold(true)
)

// levels maps a difficulty level to its badge dot and colour.
var levels = map[int]struct {
	dot   string
	color lipgloss.Style
}{
	1: {"🟢", Correct},
	2: {"🟡", Warn},
	3: {"🔴", Incorrect},
}

// LevelColor is the badge style of a difficulty level.
func LevelColor(level int) lipgloss.Style {
	if l, ok := levels[level]; ok {
		return l.color
	}
	return lipgloss.NewStyle().Foreground(TextDim)
}

// LevelIcon is the dot drawn before a level badge.
func LevelIcon(level int) string {
	if l, ok := levels[level]; ok {
		return l.dot
	}
	return "⚪"
}
