package login

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptiq/internal/bank"
	"github.com/abhisek/adaptiq/internal/router"
	"github.com/abhisek/adaptiq/internal/screen"
	"github.com/abhisek/adaptiq/internal/session"
	"github.com/abhisek/adaptiq/internal/ui/components"
	"github.com/abhisek/adaptiq/internal/ui/layout"
	"github.com/abhisek/adaptiq/internal/ui/theme"
)

const logoArt = `  ╭─────────────────╮
  │   ┌─────────┐   │
  │   │ ◉     ◉ │   │
  │   │    ▽    │   │
  │   ├─────────┤   │
  │   │  ? ✓ ✗  │   │
  │   └─────────┘   │
  ╰─────────────────╯`

const (
	fieldCode = iota
	fieldName
)

const (
	warnCode = "⚠️ Ingresa tu código."
	warnName = "⚠️ Ingresa tu nombre."
)

// LoginScreen asks the learner for their code and name before a session.
type LoginScreen struct {
	questions int
	topics    int
	next      func(session.Student) screen.Screen

	fields  []components.TextInput
	focus   int
	warning string
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates a LoginScreen. next builds the screen shown once both fields
// are filled in.
func New(idx *bank.Index, next func(session.Student) screen.Screen) *LoginScreen {
	l := &LoginScreen{
		next: next,
		fields: []components.TextInput{
			components.NewTextInput("Código de estudiante", "p. ej. 20241234", 32),
			components.NewTextInput("Nombre completo", "p. ej. Ana Pérez", 80),
		},
	}
	if idx != nil {
		l.questions = idx.Len()
		l.topics = len(idx.TopicOrder())
	}
	return l
}

func (l *LoginScreen) Init() tea.Cmd {
	return l.fields[l.focus].Focus()
}

func (l *LoginScreen) Title() string {
	return "Ingreso"
}

func (l *LoginScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Siguiente campo"},
		{Key: "Enter", Description: "Comenzar"},
		{Key: "Ctrl+C", Description: "Salir"},
	}
}

func (l *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "tab", "down":
			return l, l.setFocus((l.focus + 1) % len(l.fields))
		case "shift+tab", "up":
			return l, l.setFocus((l.focus + len(l.fields) - 1) % len(l.fields))
		case "enter":
			return l, l.submit()
		}
	}

	var cmd tea.Cmd
	l.fields[l.focus], cmd = l.fields[l.focus].Update(msg)
	return l, cmd
}

func (l *LoginScreen) setFocus(i int) tea.Cmd {
	l.fields[l.focus].Blur()
	l.focus = i
	return l.fields[l.focus].Focus()
}

// submit moves from the code field to the name field, then validates both.
func (l *LoginScreen) submit() tea.Cmd {
	code := l.fields[fieldCode].Value()
	name := l.fields[fieldName].Value()

	if l.focus == fieldCode && code != "" && name == "" {
		l.warning = ""
		return l.setFocus(fieldName)
	}

	switch {
	case code == "":
		l.warning = warnCode
		return l.setFocus(fieldCode)
	case name == "":
		l.warning = warnName
		return l.setFocus(fieldName)
	}

	l.warning = ""
	next := l.next(session.Student{Code: code, Name: name})
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: next}
	}
}

// Student returns the values typed so far.
func (l *LoginScreen) Student() session.Student {
	return session.Student{
		Code: l.fields[fieldCode].Value(),
		Name: l.fields[fieldName].Value(),
	}
}

// Warning returns the blocking validation message, if any.
func (l *LoginScreen) Warning() string {
	return l.warning
}

func (l *LoginScreen) View(width, height int) string {
	var sections []string

	sections = append(sections,
		lipgloss.NewStyle().Foreground(theme.Primary).Render(logoArt),
		"",
		theme.Title.Render("adaptiq"),
		theme.Subtitle.Render("Cuestionario adaptativo"),
		"",
	)

	if l.questions > 0 {
		sections = append(sections, theme.Hint.Render(
			fmt.Sprintf("%d preguntas en %d temas", l.questions, l.topics)), "")
	}

	cw := components.CardWidth(width)
	var form strings.Builder
	for i, f := range l.fields {
		if i > 0 {
			form.WriteString("\n\n")
		}
		form.WriteString(f.View())
	}
	sections = append(sections, lipgloss.NewStyle().
		Width(cw).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(1, 2).
		Render(form.String()))

	sections = append(sections, "", components.Button("Entrar", l.focus == fieldName, cw))

	if l.warning != "" {
		sections = append(sections, "", theme.Warn.Render(l.warning))
	}

	block := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return components.Framed(block, width, height)
}
