// Package history shows a learner's past sessions with their answers.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptiq/internal/bank"
	"github.com/abhisek/adaptiq/internal/router"
	"github.com/abhisek/adaptiq/internal/screen"
	"github.com/abhisek/adaptiq/internal/store"
	"github.com/abhisek/adaptiq/internal/ui/layout"
	"github.com/abhisek/adaptiq/internal/ui/theme"
)

// recent caps how many past sessions are listed.
const recent = 20

// entry is one listed session and the answers given in it.
type entry struct {
	rec     store.SessionRecord
	answers []store.Attempt
	open    bool
}

type loadedMsg struct {
	entries []entry
	err     error
}

var (
	dim      = lipgloss.NewStyle().Foreground(theme.TextDim)
	rowStyle = lipgloss.NewStyle().Foreground(theme.Text)
	rowFocus = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
)

// Screen lists sessions newest first. Enter folds a session open.
type Screen struct {
	code     string
	sessions store.SessionRepo
	attempts store.AttemptRepo

	entries []entry
	cursor  int
	ready   bool
	err     error
}

var (
	_ screen.Screen          = (*Screen)(nil)
	_ screen.KeyHintProvider = (*Screen)(nil)
)

// New creates the history for code. With a nil attempts repo sessions
// open to an empty answer list.
func New(code string, sessions store.SessionRepo, attempts store.AttemptRepo) *Screen {
	return &Screen{code: code, sessions: sessions, attempts: attempts}
}

func (s *Screen) Init() tea.Cmd {
	code, sessions, attempts := s.code, s.sessions, s.attempts
	return func() tea.Msg {
		ctx := context.Background()
		recs, err := sessions.RecentSessions(ctx, code, recent)
		if err != nil {
			return loadedMsg{err: err}
		}
		bySession := map[string][]store.Attempt{}
		if attempts != nil {
			// A failed attempt query still shows the sessions.
			if all, err := attempts.AttemptsByStudent(ctx, code, store.QueryOpts{}); err == nil {
				for _, a := range all {
					bySession[a.SessionID] = append(bySession[a.SessionID], a)
				}
			}
		}
		entries := make([]entry, len(recs))
		for i, r := range recs {
			entries[i] = entry{rec: r, answers: bySession[r.ID]}
		}
		return loadedMsg{entries: entries}
	}
}

func (s *Screen) Title() string { return "Historial" }

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Detalle"},
		{Key: "↑↓", Description: "Mover"},
		{Key: "Esc", Description: "Volver"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.entries, s.err, s.ready = msg.entries, msg.err, true
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			s.cursor = max(s.cursor-1, 0)
		case "down", "j":
			s.cursor = min(s.cursor+1, max(len(s.entries)-1, 0))
		case "enter":
			if s.cursor < len(s.entries) {
				s.entries[s.cursor].open = !s.entries[s.cursor].open
			}
		}
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	center := func(style lipgloss.Style, text string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(text)) + "\n"
	}
	switch {
	case s.err != nil:
		return "\n\n" + center(lipgloss.NewStyle().Foreground(theme.Error), "Error: "+s.err.Error())
	case !s.ready:
		return "\n\n" + center(dim, "Cargando historial...")
	case len(s.entries) == 0:
		return "\n\n" + center(dim.Italic(true), "Aún no hay sesiones registradas.")
	}

	var b strings.Builder
	b.WriteString("\n")
	for i, e := range s.entries {
		style, marker := rowStyle, "  "
		if i == s.cursor {
			style, marker = rowFocus, "▸ "
		}
		b.WriteString(center(style, marker+summaryLine(e.rec)))
		if !e.open {
			continue
		}
		if len(e.answers) == 0 {
			b.WriteString(center(dim.Italic(true), "Sin respuestas registradas"))
		}
		for _, a := range e.answers {
			b.WriteString(center(answerStyle(a.Correct), answerLine(a)))
		}
	}
	return b.String()
}

func summaryLine(r store.SessionRecord) string {
	result := "sin terminar"
	if !r.FinishedAt.IsZero() {
		result = fmt.Sprintf("%d/%d correctas  %.1f%%", r.Correct, r.Total, r.Percentage)
	}
	return fmt.Sprintf("%s  %s  %s", r.StartedAt.Local().Format("02/01/2006 15:04"), result, strings.Join(r.Topics, ", "))
}

func answerLine(a store.Attempt) string {
	mark := "❌"
	if a.Correct {
		mark = "✅"
	}
	return fmt.Sprintf("  %s %s · %s · %s · %.2f", mark, a.Topic, a.QuestionID, bank.LevelName(a.Level), a.Score)
}

func answerStyle(correct bool) lipgloss.Style {
	if correct {
		return lipgloss.NewStyle().Foreground(theme.Success)
	}
	return lipgloss.NewStyle().Foreground(theme.Error)
}
