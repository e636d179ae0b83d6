package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptiq/internal/bank"
	"github.com/abhisek/adaptiq/internal/ui/components"
	"github.com/abhisek/adaptiq/internal/ui/theme"
)

func topicCounter(pos, total int) string {
	return fmt.Sprintf("Tema %d de %d", pos, total)
}

func (s *QuizScreen) View(width, height int) string {
	if s.confirmQuit {
		return renderQuitConfirm(width)
	}
	if s.q.ID == "" {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\n  Preparando resultados...")
	}

	var b strings.Builder
	b.WriteString(s.renderInfoLine(width))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	textWidth := min(width-8, 76)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(textWidth).Foreground(theme.Text).Bold(true).Render(s.q.Prompt)))
	b.WriteString("\n\n")

	if s.q.Kind == bank.KindAnalogy && s.q.Analogy != "" {
		analogy := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("💡 Analogía de referencia") +
			"\n" + lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render(s.q.Analogy)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Width(textWidth).Render(analogy)))
		b.WriteString("\n\n")
	}

	b.WriteString(s.renderAnswer(width))

	switch {
	case s.grading:
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Accent).Render(s.spinner.View()+" 🤖 La IA evalúa tu respuesta...")))
	case s.feedback:
		b.WriteString("\n")
		b.WriteString(s.renderFeedback(width))
	}

	if s.warning != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Warn.Render(s.warning)))
	}

	return b.String()
}

// renderInfoLine shows the topic, the topic counter and the level badge.
func (s *QuizScreen) renderInfoLine(width int) string {
	left := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  📚 %s", s.q.Topic))

	badge := theme.LevelIcon(s.q.Level) + " " + theme.LevelColor(s.q.Level).Render(bank.LevelName(s.q.Level))
	if label := s.phase.Label(); label != "" {
		badge += "  " + lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(label)
	}
	right := lipgloss.NewStyle().Foreground(theme.TextDim).Render(topicCounter(s.topicPos, s.topicTotal)) + "   " + badge

	line := left
	if pad := width - lipgloss.Width(left) - lipgloss.Width(right) - 4; pad > 0 {
		line += strings.Repeat(" ", pad) + right
	} else {
		line += "\n  " + right
	}
	return line
}

func (s *QuizScreen) renderAnswer(width int) string {
	if s.q.Kind.IsFixed() {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, s.choice.View())
	}
	if s.feedback || s.grading {
		answer := lipgloss.NewStyle().
			Width(min(width-8, 76)).
			Foreground(theme.TextDim).
			Render("✍️ " + s.answer)
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, answer)
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s.area.View())
}

// renderFeedback renders the graded result panel.
func (s *QuizScreen) renderFeedback(width int) string {
	v := s.verdict
	cw := min(width-8, 76)

	var b strings.Builder
	if s.correct {
		b.WriteString(theme.Correct.Render("✅ ¡CORRECTO!"))
	} else {
		b.WriteString(theme.Incorrect.Render("❌ INCORRECTO"))
	}
	if !s.q.Kind.IsFixed() {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render(fmt.Sprintf("  Puntaje: %.1f", v.Score)))
		b.WriteString("\n")
		b.WriteString(components.ScoreMeter(v.Score, min(cw, 40)))
	}
	b.WriteString("\n")

	if s.q.Kind.IsFixed() && !s.correct {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).
			Render(fmt.Sprintf("Respuesta correcta: %s", s.q.CorrectLabel())))
		b.WriteString("\n")
	}

	heading := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	body := lipgloss.NewStyle().Foreground(theme.Text)

	if s.q.Explanation != "" {
		b.WriteString("\n" + heading.Render("📖 Explicación") + "\n")
		b.WriteString(body.Render(s.q.Explanation) + "\n")
	}

	if !s.q.Kind.IsFixed() {
		if v.Degraded {
			b.WriteString("\n" + theme.Hint.Render("La evaluación automática no estuvo disponible; se asignó un puntaje parcial.") + "\n")
		} else if v.Feedback != "" {
			b.WriteString("\n" + heading.Render("🤖 Evaluación IA") + "\n")
			b.WriteString(body.Render(v.Feedback) + "\n")
		}
		if len(v.MissingConcepts) > 0 {
			b.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.Accent).
				Render("💡 Reforzar: "+strings.Join(v.MissingConcepts, ", ")) + "\n")
		}
		if v.FollowUp != "" {
			b.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.Primary).
				Render("❓ "+v.FollowUp) + "\n")
		}
	}

	panel := lipgloss.NewStyle().
		Width(cw).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 2).
		Render(strings.TrimRight(b.String(), "\n"))

	button := continueButton.Render("▸ " + s.step.Label() + "  ⏎")

	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, panel, "", button))
}

var continueButton = lipgloss.NewStyle().
	Background(theme.Primary).
	Foreground(theme.Text).
	Bold(true).
	Padding(0, 2)

// renderQuitConfirm renders the end-early confirmation dialog.
func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render("¿Terminar la sesión ahora?"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("Tus respuestas ya quedaron registradas."))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Success).
		Render("[S] Sí, ver resultados"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Render("[N] No, seguir"))

	return b.String()
}
