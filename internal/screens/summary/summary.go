package summary

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptiq/internal/bank"
	"github.com/abhisek/adaptiq/internal/resultlog"
	"github.com/abhisek/adaptiq/internal/router"
	"github.com/abhisek/adaptiq/internal/screen"
	"github.com/abhisek/adaptiq/internal/session"
	"github.com/abhisek/adaptiq/internal/ui/components"
	"github.com/abhisek/adaptiq/internal/ui/layout"
	"github.com/abhisek/adaptiq/internal/ui/theme"
)

// Options configures the actions offered on the summary screen.
type Options struct {
	// ResultsPath is the CSV result log exports are read from.
	ResultsPath string

	// ExportDir receives exported files; empty means the working directory.
	ExportDir string

	// Restart builds the screen a new session starts from.
	Restart func() screen.Screen

	// History builds the learner's session history screen. Optional.
	History func() screen.Screen
}

// exportedMsg reports the outcome of an export.
type exportedMsg struct {
	Path string
	Rows int
	Err  error
}

// SummaryScreen displays the session results.
type SummaryScreen struct {
	summary session.Summary
	opts    Options
	actions actionList
	notice  string
	failed  bool
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)
var _ screen.StatusProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(sum session.Summary, opts Options) *SummaryScreen {
	s := &SummaryScreen{summary: sum, opts: opts}
	exportable := opts.ResultsPath != ""
	s.actions = newActionList(
		action{key: "c", label: "📄 Exportar CSV", hint: "CSV", enabled: exportable, run: func() tea.Cmd { return s.export(resultlog.FormatCSV) }},
		action{key: "x", label: "📊 Exportar Excel", hint: "Excel", enabled: exportable, run: func() tea.Cmd { return s.export(resultlog.FormatXLSX) }},
		action{key: "n", label: "🔄 Nueva sesión", hint: "Nueva sesión", enabled: opts.Restart != nil, run: s.restart},
		action{key: "h", label: "📜 Historial", hint: "Historial", enabled: opts.History != nil, run: s.history},
		action{key: "q", label: "🚪 Salir", hint: "Salir", enabled: true, run: func() tea.Cmd { return tea.Quit }},
	)
	return s
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Resultados"
}

func (s *SummaryScreen) Status() string {
	return "👤 " + s.summary.Student.Code
}

// KeyHints lists the shortcut of every action, plus Esc.
func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	hints := make([]layout.KeyHint, 0, len(s.actions.items)+1)
	for _, a := range s.actions.items {
		hints = append(hints, layout.KeyHint{Key: strings.ToUpper(a.key), Description: a.hint})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Temas"})
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case exportedMsg:
		if msg.Err != nil {
			s.failed = true
			s.notice = "⚠️ No se pudo exportar: " + msg.Err.Error()
		} else {
			s.failed = false
			s.notice = fmt.Sprintf("✔ Exportado a %s (%d filas)", msg.Path, msg.Rows)
		}
		return s, nil

	case tea.KeyMsg:
		return s, s.actions.handle(msg.String())
	}
	return s, nil
}

// export writes the learner's rows of the result log in the background.
func (s *SummaryScreen) export(f resultlog.Format) tea.Cmd {
	logPath := s.opts.ResultsPath
	code := s.summary.Student.Code
	out := filepath.Join(s.opts.ExportDir, resultlog.ExportName(code, f))
	return func() tea.Msg {
		n, err := resultlog.ExportFile(logPath, code, f, out)
		return exportedMsg{Path: out, Rows: n, Err: err}
	}
}

func (s *SummaryScreen) restart() tea.Cmd {
	next := s.opts.Restart()
	return func() tea.Msg {
		return router.ResetScreenMsg{Screen: next}
	}
}

func (s *SummaryScreen) history() tea.Cmd {
	next := s.opts.History()
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: next}
	}
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	var b strings.Builder

	center := func(style lipgloss.Style, text string) {
		b.WriteString(style.Width(width).Align(lipgloss.Center).Render(text))
		b.WriteString("\n")
	}

	center(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true), "🏁 ¡Sesión completada!")
	center(lipgloss.NewStyle().Foreground(theme.Text), sum.Student.Name)

	mins := int(sum.Duration.Minutes())
	secs := int(sum.Duration.Seconds()) % 60
	center(lipgloss.NewStyle().Foreground(theme.TextDim), fmt.Sprintf("Duración: %d:%02d", mins, secs))
	b.WriteString("\n")

	center(lipgloss.NewStyle().Foreground(theme.Text),
		fmt.Sprintf("Preguntas: %d      Correctas: %d      Porcentaje: %.1f%%      Puntaje: %.2f",
			sum.Total, sum.Correct, sum.Percentage, sum.ScoreSum))
	center(ratingColor(sum.Rating).Bold(true), sum.Rating.Message())
	b.WriteString("\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", min(width-8, 60)))

	if len(sum.Topics) > 0 {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Render("Por tema")))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
		b.WriteString("\n")
		for _, ts := range sum.Topics {
			bar := components.CountMeter(fmt.Sprintf("%-24s", ts.Topic), ts.Correct, ts.Answered, min(width-8, 60))
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				bar+lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("  puntaje %.2f", ts.ScoreSum))))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(sum.History) > 0 {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Render("Detalle")))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
		b.WriteString("\n")
		for _, r := range detailRows(sum.History, height) {
			center(lipgloss.NewStyle().Foreground(theme.Text), r)
		}
		b.WriteString("\n")
	}

	if s.notice != "" {
		style := lipgloss.NewStyle().Foreground(theme.Success)
		if s.failed {
			style = theme.Warn
		}
		center(style, s.notice)
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.actions.view()))
	return b.String()
}

// detailRows formats one line per answer, keeping the latest ones when the
// screen is short.
func detailRows(history []session.AnsweredRecord, height int) []string {
	limit := max(height-20, 3)
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	rows := make([]string, 0, len(history))
	for _, r := range history {
		mark := "❌"
		if r.Correct {
			mark = "✅"
		}
		rows = append(rows, fmt.Sprintf("%s %s · %s · %s · %.2f",
			mark, r.Topic, r.QuestionID, bank.LevelName(r.Level), r.Score))
	}
	return rows
}

func ratingColor(r session.Rating) lipgloss.Style {
	switch r {
	case session.RatingExcellent:
		return lipgloss.NewStyle().Foreground(theme.Success)
	case session.RatingGood:
		return lipgloss.NewStyle().Foreground(theme.Warning)
	}
	return lipgloss.NewStyle().Foreground(theme.Error)
}
