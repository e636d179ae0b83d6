package quiz

import (
	"context"
	"errors"
	"log/slog"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/adaptiq/internal/bank"
	"github.com/abhisek/adaptiq/internal/grading"
	"github.com/abhisek/adaptiq/internal/router"
	"github.com/abhisek/adaptiq/internal/screen"
	"github.com/abhisek/adaptiq/internal/session"
	"github.com/abhisek/adaptiq/internal/ui/components"
	"github.com/abhisek/adaptiq/internal/ui/layout"
)

const (
	warnEmpty = "⚠️ Escribe una respuesta."

	answerWidth  = 60
	answerHeight = 5
)

// FinishFunc builds the screen shown once the session ends.
type FinishFunc func(*session.Session) screen.Screen

// QuizScreen presents the questions of one session and the feedback for
// each answer.
type QuizScreen struct {
	sess   *session.Session
	finish FinishFunc

	// Cached between questions so View never touches the session while
	// the grader runs.
	q          bank.Question
	phase      session.Phase
	topicPos   int
	topicTotal int

	choice  components.MultiChoice
	area    components.TextArea
	spinner spinner.Model

	grading     bool
	feedback    bool
	verdict     grading.Verdict
	correct     bool
	answer      string
	step        session.Step
	warning     string
	confirmQuit bool
	finished    bool
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.EscapeHandler = (*QuizScreen)(nil)
var _ screen.StatusProvider = (*QuizScreen)(nil)

// New creates a QuizScreen driving s. finish is called once, when s is done
// or the learner ends the session early.
func New(s *session.Session, finish FinishFunc) *QuizScreen {
	q := &QuizScreen{
		sess:    s,
		finish:  finish,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	q.load()
	return q
}

func (s *QuizScreen) Init() tea.Cmd {
	if s.sess.Done() {
		return s.end()
	}
	return s.focusAnswer()
}

func (s *QuizScreen) Title() string {
	return "Cuestionario"
}

func (s *QuizScreen) HandlesEscape() bool {
	return true
}

func (s *QuizScreen) Status() string {
	st := s.sess.Student()
	if s.topicTotal == 0 {
		return "👤 " + st.Code
	}
	return "👤 " + st.Code + " · " + topicCounter(s.topicPos, s.topicTotal)
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.confirmQuit:
		return []layout.KeyHint{
			{Key: "S", Description: "Terminar"},
			{Key: "N", Description: "Seguir"},
		}
	case s.grading:
		return []layout.KeyHint{{Key: "", Description: "Evaluando..."}}
	case s.feedback:
		return []layout.KeyHint{
			{Key: "Enter", Description: s.step.Label()},
			{Key: "Esc", Description: "Terminar"},
		}
	case s.q.Kind.IsFixed():
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Elegir"},
			{Key: "Enter", Description: "Responder"},
			{Key: "Esc", Description: "Terminar"},
		}
	}
	return []layout.KeyHint{
		{Key: "Ctrl+S", Description: "Enviar"},
		{Key: "Esc", Description: "Terminar"},
	}
}

// load caches the current question and resets the answer widgets.
func (s *QuizScreen) load() {
	s.feedback = false
	s.warning = ""
	s.answer = ""
	s.verdict = grading.Verdict{}
	s.topicPos, s.topicTotal = s.sess.Progress()
	s.phase = s.sess.Phase()

	q, ok := s.sess.Current()
	if !ok {
		s.q = bank.Question{}
		return
	}
	s.q = q
	if q.Kind.IsFixed() {
		s.choice = components.NewMultiChoice(q.Options())
	} else {
		s.area = components.NewTextArea("Escribe tu respuesta aquí...", answerWidth, answerHeight)
	}
}

func (s *QuizScreen) focusAnswer() tea.Cmd {
	if s.q.ID == "" || s.q.Kind.IsFixed() {
		return nil
	}
	return s.area.Focus()
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case gradedMsg:
		return s.handleGraded(msg)

	case spinner.TickMsg:
		if !s.grading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if !s.grading && !s.feedback && !s.q.Kind.IsFixed() && s.q.ID != "" {
		var cmd tea.Cmd
		s.area, cmd = s.area.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.grading || s.finished {
		return s, nil
	}

	if s.confirmQuit {
		switch key {
		case "s", "S", "y", "Y":
			s.confirmQuit = false
			return s, s.end()
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	if key == "esc" {
		s.confirmQuit = true
		return s, nil
	}

	if s.feedback {
		if key == "enter" || key == "space" || key == " " {
			return s, s.advance()
		}
		return s, nil
	}

	if s.q.Kind.IsFixed() {
		if key == "enter" {
			return s, s.submit(s.choice.Value())
		}
		var cmd tea.Cmd
		s.choice, cmd = s.choice.Update(msg)
		return s, cmd
	}

	if key == "ctrl+s" {
		return s, s.submit(s.area.Value())
	}
	var cmd tea.Cmd
	s.area, cmd = s.area.Update(msg)
	if s.area.Value() != "" {
		s.warning = ""
	}
	return s, cmd
}

// submit hands the answer to the session on a background command. Free-form
// answers may wait on the judge for several seconds.
func (s *QuizScreen) submit(answer string) tea.Cmd {
	if answer == "" {
		s.warning = warnEmpty
		return nil
	}
	s.warning = ""
	s.grading = true
	s.answer = answer
	if !s.q.Kind.IsFixed() {
		s.area.Blur()
	}

	sess := s.sess
	grade := func() tea.Msg {
		v, err := sess.Submit(context.Background(), answer)
		return gradedMsg{Verdict: v, Answer: answer, Err: err}
	}
	return tea.Batch(grade, s.spinner.Tick)
}

func (s *QuizScreen) handleGraded(msg gradedMsg) (screen.Screen, tea.Cmd) {
	s.grading = false
	if msg.Err != nil {
		if errors.Is(msg.Err, session.ErrEmptyAnswer) {
			s.warning = warnEmpty
			return s, s.focusAnswer()
		}
		slog.Error("submit answer", "question", s.q.ID, "error", msg.Err)
		s.warning = "⚠️ " + msg.Err.Error()
		return s, nil
	}

	s.verdict = msg.Verdict
	if rec, ok := s.sess.Last(); ok {
		s.correct = rec.Correct
	}
	if s.q.Kind.IsFixed() {
		s.choice.Reveal(s.q.CorrectLabel(), msg.Answer)
	}
	s.step = s.sess.Pending()
	s.feedback = true
	return s, nil
}

// advance performs the pending step and loads the next question, or ends
// the session.
func (s *QuizScreen) advance() tea.Cmd {
	if err := s.sess.Continue(); err != nil && !errors.Is(err, session.ErrSessionDone) {
		slog.Error("continue session", "error", err)
		s.warning = "⚠️ " + err.Error()
		return nil
	}
	if s.sess.Done() {
		return s.end()
	}
	s.load()
	return s.focusAnswer()
}

// end leaves the quiz for the screen built by finish.
func (s *QuizScreen) end() tea.Cmd {
	if s.finished {
		return nil
	}
	s.finished = true
	next := s.finish(s.sess)
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}
