// Package session runs one learner through the selected topics, adapting
// the difficulty of each next question to the previous outcome.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/adaptiq/internal/bank"
	"github.com/abhisek/adaptiq/internal/grading"
	"github.com/abhisek/adaptiq/internal/resultlog"
)

var (
	ErrNoTopics          = errors.New("session: no topics with questions selected")
	ErrInvalidStudent    = errors.New("session: student code and name are required")
	ErrEmptyAnswer       = errors.New("session: empty answer")
	ErrNotAwaitingAnswer = errors.New("session: no question is waiting for an answer")
	ErrAwaitingAnswer    = errors.New("session: answer the current question first")
	ErrSessionDone       = errors.New("session: already finished")
)

// Session is the orchestrator for one learner. It is not safe for
// concurrent use; each learner gets their own Session.
type Session struct {
	idx    *bank.Index
	grader *grading.Grader
	sink   resultlog.Sink

	now func() time.Time
	rng *rand.Rand

	state State
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithRand makes the topic shuffle draw from r.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.rng = r }
}

// WithID sets the session ID instead of generating one.
func WithID(id string) Option {
	return func(s *Session) { s.state.ID = id }
}

// New starts a session over the given topics. Unknown and duplicate topics
// are dropped, the rest are shuffled once and the first topic is opened.
// sink may be nil.
func New(idx *bank.Index, grader *grading.Grader, sink resultlog.Sink, student Student, topics []string, opts ...Option) (*Session, error) {
	student.Code = strings.TrimSpace(student.Code)
	student.Name = strings.TrimSpace(student.Name)
	if student.Code == "" || student.Name == "" {
		return nil, ErrInvalidStudent
	}

	var selected []string
	for _, t := range topics {
		if idx.HasTopic(t) && !slices.Contains(selected, t) {
			selected = append(selected, t)
		}
	}
	if len(selected) == 0 {
		return nil, ErrNoTopics
	}

	s := &Session{
		idx:    idx,
		grader: grader,
		sink:   sink,
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.state.ID == "" {
		s.state.ID = uuid.NewString()
	}

	shuffle := rand.Shuffle
	if s.rng != nil {
		shuffle = s.rng.Shuffle
	}
	shuffle(len(selected), func(i, j int) { selected[i], selected[j] = selected[j], selected[i] })

	s.state.Student = student
	s.state.Topics = selected
	s.state.Used = make(map[string]bool)
	s.state.StartedAt = s.now()
	s.openTopic(0)

	slog.Info("session started", "session", s.state.ID, "student", student.Code, "topics", len(selected))
	return s, nil
}

// openTopic starts the first topic at or after i that has a startable
// question, or finishes the session.
func (s *Session) openTopic(i int) {
	for ; i < len(s.state.Topics); i++ {
		topic := s.state.Topics[i]
		level, ok := s.idx.StartLevel(topic)
		if !ok {
			continue
		}
		q, ok := s.idx.NextUnused(topic, level, s.state.Used)
		if !ok {
			slog.Debug("skipping topic without a startable question", "topic", topic, "level", level)
			continue
		}
		s.state.TopicIdx = i
		s.state.Active = topic
		s.state.Phase = PhaseNew
		s.state.Current = &q
		s.state.Origin = &q
		s.state.Pending = nil
		s.state.LastVerdict = nil
		return
	}
	s.finish()
}

// startable reports whether openTopic would find a question for topic.
// It looks at the bucket directly so the random source is not consumed.
func (s *Session) startable(topic string) bool {
	level, ok := s.idx.StartLevel(topic)
	if !ok {
		return false
	}
	for _, q := range s.idx.Bucket(topic, level) {
		if !s.state.Used[q.ID] {
			return true
		}
	}
	return false
}

func (s *Session) finish() {
	s.state.TopicIdx = len(s.state.Topics)
	s.state.Active = ""
	s.state.Phase = PhaseTopicDone
	s.state.Current = nil
	s.state.Origin = nil
	s.state.Pending = nil
	s.state.Done = true
	s.state.FinishedAt = s.now()
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.state.ID }

// Student returns the learner of this session.
func (s *Session) Student() Student { return s.state.Student }

// Topics returns the topics in presentation order.
func (s *Session) Topics() []string { return slices.Clone(s.state.Topics) }

// Current returns the question waiting for an answer.
func (s *Session) Current() (bank.Question, bool) {
	if s.state.Current == nil {
		return bank.Question{}, false
	}
	return *s.state.Current, true
}

// Phase returns the adaptive phase of the active topic.
func (s *Session) Phase() Phase { return s.state.Phase }

// Topic returns the active topic, or "" once the session is done.
func (s *Session) Topic() string { return s.state.Active }

// Done reports whether every topic has been worked through.
func (s *Session) Done() bool { return s.state.Done }

// Progress returns the 1-based position of the active topic and the number
// of topics.
func (s *Session) Progress() (int, int) {
	n := len(s.state.Topics)
	return min(s.state.TopicIdx+1, n), n
}

// LastVerdict returns the verdict of the most recent answer.
func (s *Session) LastVerdict() (grading.Verdict, bool) {
	if s.state.LastVerdict == nil {
		return grading.Verdict{}, false
	}
	return *s.state.LastVerdict, true
}

// Last returns the most recent answered record.
func (s *Session) Last() (AnsweredRecord, bool) {
	if len(s.state.History) == 0 {
		return AnsweredRecord{}, false
	}
	return s.state.History[len(s.state.History)-1], true
}

// History returns a copy of every answered record.
func (s *Session) History() []AnsweredRecord {
	return slices.Clone(s.state.History)
}

// State returns a snapshot of the session state.
func (s *Session) State() State {
	st := s.state
	st.Topics = slices.Clone(st.Topics)
	st.History = slices.Clone(st.History)
	st.Used = make(map[string]bool, len(s.state.Used))
	for id := range s.state.Used {
		st.Used[id] = true
	}
	return st
}

// Submit grades answer for the current question, records it and advances
// the adaptive phase. An empty answer leaves the state untouched.
func (s *Session) Submit(ctx context.Context, answer string) (grading.Verdict, error) {
	if s.state.Done {
		return grading.Verdict{}, ErrSessionDone
	}
	if !s.state.Phase.Answering() || s.state.Current == nil {
		return grading.Verdict{}, ErrNotAwaitingAnswer
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return grading.Verdict{}, ErrEmptyAnswer
	}

	q := *s.state.Current
	s.state.Used[q.ID] = true

	v := s.grader.Score(ctx, q, answer)
	correct := s.grader.Effective(v)

	rec := AnsweredRecord{
		Time:       s.now(),
		Topic:      q.Topic,
		QuestionID: q.ID,
		Level:      q.Level,
		Correct:    correct,
		Score:      v.Score,
		Phase:      s.state.Phase,
		Degraded:   v.Degraded,
		Answer:     answer,
		Feedback:   v.Feedback,
	}
	s.state.History = append(s.state.History, rec)
	s.record(ctx, rec)

	next, action := Transition(s.state.Phase, correct)
	s.state.Phase = next
	s.state.Current = nil
	s.state.LastVerdict = &v

	switch action {
	case ActionPromote:
		s.prepare(s.state.Origin.Level + 1)
	case ActionRemediate:
		s.prepare(s.state.Origin.Level - 1)
	case ActionRetryOrigin:
		s.state.Pending = s.state.Origin
	case ActionNone:
		s.state.Pending = nil
	}

	slog.Debug("answer graded",
		"session", s.state.ID, "question", q.ID, "correct", correct,
		"score", v.Score, "degraded", v.Degraded, "phase", s.state.Phase)
	return v, nil
}

// prepare reserves an unused question of the active topic at level, or ends
// the topic when there is none.
func (s *Session) prepare(level int) {
	if level < bank.MinLevel || level > bank.MaxLevel {
		s.state.Phase = PhaseTopicDone
		s.state.Pending = nil
		return
	}
	q, ok := s.idx.NextUnused(s.state.Active, level, s.state.Used)
	if !ok {
		s.state.Phase = PhaseTopicDone
		s.state.Pending = nil
		return
	}
	s.state.Pending = &q
}

func (s *Session) record(ctx context.Context, rec AnsweredRecord) {
	if s.sink == nil {
		return
	}
	err := s.sink.Append(ctx, resultlog.Entry{
		Time:        rec.Time,
		SessionID:   s.state.ID,
		StudentCode: s.state.Student.Code,
		StudentName: s.state.Student.Name,
		Topic:       rec.Topic,
		QuestionID:  rec.QuestionID,
		Level:       rec.Level,
		Correct:     rec.Correct,
		Score:       rec.Score,
		Phase:       rec.Phase.String(),
		Degraded:    rec.Degraded,
	})
	if err != nil {
		slog.Error("append result", "session", s.state.ID, "question", rec.QuestionID, "error", err)
	}
}

// Pending returns what the next Continue call will do.
func (s *Session) Pending() Step {
	if s.state.Done {
		return StepNone
	}
	switch s.state.Phase {
	case PhaseAwaitingPromotion:
		return StepPromote
	case PhaseAwaitingRemediation:
		return StepRemediate
	case PhaseAwaitingRetry:
		return StepRetry
	case PhaseTopicDone:
		for _, topic := range s.state.Topics[s.state.TopicIdx+1:] {
			if s.startable(topic) {
				return StepNextTopic
			}
		}
		return StepFinish
	case PhaseNew, PhaseRaised, PhaseAnchor, PhaseRetry:
	}
	return StepNone
}

// Continue performs the pending step: presents the prepared question, or
// moves on to the next topic.
func (s *Session) Continue() error {
	if s.state.Done {
		return ErrSessionDone
	}
	switch s.state.Phase {
	case PhaseAwaitingPromotion:
		s.present(PhaseRaised)
	case PhaseAwaitingRemediation:
		s.present(PhaseAnchor)
	case PhaseAwaitingRetry:
		s.present(PhaseRetry)
	case PhaseTopicDone:
		s.openTopic(s.state.TopicIdx + 1)
	case PhaseNew, PhaseRaised, PhaseAnchor, PhaseRetry:
		return ErrAwaitingAnswer
	default:
		return fmt.Errorf("session: unexpected phase %s", s.state.Phase)
	}
	return nil
}

func (s *Session) present(p Phase) {
	s.state.Current = s.state.Pending
	s.state.Pending = nil
	s.state.Phase = p
}
