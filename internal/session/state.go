package session

import (
	"time"

	"github.com/abhisek/adaptiq/internal/bank"
	"github.com/abhisek/adaptiq/internal/grading"
)

// Student identifies the learner taking a session.
type Student struct {
	Code string
	Name string
}

// AnsweredRecord is one graded answer in session history.
type AnsweredRecord struct {
	Time       time.Time
	Topic      string
	QuestionID string
	Level      int

	// Correct is the effective outcome after the pass threshold.
	Correct bool
	Score   float64

	// Phase is the phase the question was answered in.
	Phase    Phase
	Degraded bool

	Answer   string
	Feedback string
}

// State is the full per-learner session state. Nothing in it is shared
// between sessions.
type State struct {
	ID      string
	Student Student

	// Topics is the selected topic list in presentation order.
	Topics   []string
	TopicIdx int
	Active   string

	Phase Phase

	// Current is the question waiting for an answer; nil between questions.
	Current *bank.Question

	// Origin is the first question of the active topic.
	Origin *bank.Question

	// Pending is the question the next Continue will present.
	Pending *bank.Question

	Used    map[string]bool
	History []AnsweredRecord

	LastVerdict *grading.Verdict

	StartedAt  time.Time
	FinishedAt time.Time
	Done       bool
}
