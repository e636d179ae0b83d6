package topics

import (
	"fmt"

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

const warnNone = "⚠️ Selecciona al menos un tema."

// StartFunc builds the quiz screen for a learner and their chosen topics.
type StartFunc func(student session.Student, topics []string) (screen.Screen, error)

// TopicsScreen lets the learner pick which topics to practise.
type TopicsScreen struct {
	student session.Student
	start   StartFunc

	list    components.Checklist
	warning string
}

var _ screen.Screen = (*TopicsScreen)(nil)
var _ screen.KeyHintProvider = (*TopicsScreen)(nil)
var _ screen.StatusProvider = (*TopicsScreen)(nil)

// New creates a TopicsScreen listing every topic of idx, all selected.
func New(idx *bank.Index, student session.Student, start StartFunc) *TopicsScreen {
	var items []components.CheckItem
	for _, t := range idx.TopicOrder() {
		items = append(items, components.CheckItem{
			Label:  t,
			Detail: fmt.Sprintf("(%d preguntas)", idx.Count(t)),
		})
	}
	return &TopicsScreen{
		student: student,
		start:   start,
		list:    components.NewChecklist(items),
	}
}

func (s *TopicsScreen) Init() tea.Cmd {
	return nil
}

func (s *TopicsScreen) Title() string {
	return "Temas"
}

func (s *TopicsScreen) Status() string {
	return "👤 " + s.student.Code
}

func (s *TopicsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Mover"},
		{Key: "Espacio", Description: "Marcar"},
		{Key: "A", Description: "Todos"},
		{Key: "Enter", Description: "Comenzar"},
		{Key: "Esc", Description: "Volver"},
	}
}

// Selected returns the checked topics in bank order.
func (s *TopicsScreen) Selected() []string {
	return s.list.Checked()
}

// Warning returns the blocking validation message, if any.
func (s *TopicsScreen) Warning() string {
	return s.warning
}

func (s *TopicsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "enter" {
		return s, s.begin()
	}

	var cmd tea.Cmd
	s.list, cmd = s.list.Update(msg)
	if len(s.list.Checked()) > 0 {
		s.warning = ""
	}
	return s, cmd
}

func (s *TopicsScreen) begin() tea.Cmd {
	selected := s.list.Checked()
	if len(selected) == 0 {
		s.warning = warnNone
		return nil
	}
	quiz, err := s.start(s.student, selected)
	if err != nil {
		s.warning = "⚠️ " + err.Error()
		return nil
	}
	s.warning = ""
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: quiz}
	}
}

func (s *TopicsScreen) View(width, height int) string {
	cw := components.CardWidth(width)

	greeting := fmt.Sprintf("Hola, %s", s.student.Name)
	sections := []string{
		theme.Title.Render(greeting),
		theme.Subtitle.Render("Elige los temas de tu sesión"),
		"",
		components.Card(lipgloss.NewStyle().Align(lipgloss.Left).Render(s.list.View()), cw),
		"",
		theme.Hint.Render(fmt.Sprintf("%d de %d temas seleccionados", len(s.list.Checked()), len(s.list.Items))),
	}
	if s.warning != "" {
		sections = append(sections, "", theme.Warn.Render(s.warning))
	}

	block := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, block)
}
