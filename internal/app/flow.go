package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/abhisek/adaptiq/internal/bank"
	"github.com/abhisek/adaptiq/internal/grading"
	"github.com/abhisek/adaptiq/internal/resultlog"
	"github.com/abhisek/adaptiq/internal/screen"
	"github.com/abhisek/adaptiq/internal/screens/history"
	"github.com/abhisek/adaptiq/internal/screens/login"
	"github.com/abhisek/adaptiq/internal/screens/quiz"
	"github.com/abhisek/adaptiq/internal/screens/summary"
	"github.com/abhisek/adaptiq/internal/screens/topics"
	"github.com/abhisek/adaptiq/internal/session"
	"github.com/abhisek/adaptiq/internal/store"
)

// Options carries the dependencies of the terminal UI.
type Options struct {
	Index  *bank.Index
	Grader *grading.Grader

	// Sink receives one entry per graded answer. Optional.
	Sink resultlog.Sink

	// Sessions records session starts and summaries. Optional.
	Sessions store.SessionRepo

	// Attempts backs the per-session detail of the history screen. Optional.
	Attempts store.AttemptRepo

	// ResultsPath is the CSV result log offered for export.
	ResultsPath string
	ExportDir   string

	// SessionOptions are passed to every new session.
	SessionOptions []session.Option
}

func (o Options) validate() error {
	if o.Index == nil || o.Index.Len() == 0 {
		return errors.New("app: question bank is empty")
	}
	if o.Grader == nil {
		return errors.New("app: grader is required")
	}
	return nil
}

// flow builds the screens of one learner's journey: login, topic choice,
// quiz and summary, then back to login.
type flow struct {
	opts Options
	now  func() time.Time
}

func newFlow(opts Options) *flow {
	return &flow{opts: opts, now: time.Now}
}

func (f *flow) login() screen.Screen {
	return login.New(f.opts.Index, f.topics)
}

func (f *flow) topics(st session.Student) screen.Screen {
	return topics.New(f.opts.Index, st, f.start)
}

func (f *flow) start(st session.Student, selected []string) (screen.Screen, error) {
	s, err := session.New(f.opts.Index, f.opts.Grader, f.opts.Sink, st, selected, f.opts.SessionOptions...)
	if err != nil {
		return nil, err
	}
	if f.opts.Sessions != nil {
		state := s.State()
		err := f.opts.Sessions.StartSession(context.Background(), store.SessionRecord{
			ID:          s.ID(),
			StudentCode: st.Code,
			StudentName: st.Name,
			Topics:      s.Topics(),
			StartedAt:   state.StartedAt,
		})
		if err != nil {
			slog.Warn("record session start", "session", s.ID(), "error", err)
		}
	}
	return quiz.New(s, f.finish), nil
}

func (f *flow) finish(s *session.Session) screen.Screen {
	sum := s.Summary()
	if f.opts.Sessions != nil {
		err := f.opts.Sessions.FinishSession(context.Background(), store.SessionRecord{
			ID:         sum.SessionID,
			FinishedAt: f.now(),
			Total:      sum.Total,
			Correct:    sum.Correct,
			ScoreSum:   sum.ScoreSum,
			Percentage: sum.Percentage,
		})
		if err != nil {
			slog.Warn("record session finish", "session", sum.SessionID, "error", err)
		}
	}
	slog.Info("session finished",
		"session", sum.SessionID, "student", sum.Student.Code,
		"total", sum.Total, "correct", sum.Correct, "percentage", sum.Percentage)

	opts := summary.Options{
		ResultsPath: f.opts.ResultsPath,
		ExportDir:   f.opts.ExportDir,
		Restart:     f.login,
	}
	if f.opts.Sessions != nil {
		code := sum.Student.Code
		opts.History = func() screen.Screen {
			return history.New(code, f.opts.Sessions, f.opts.Attempts)
		}
	}
	return summary.New(sum, opts)
}
