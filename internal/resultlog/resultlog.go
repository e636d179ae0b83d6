// Package resultlog is the append-only log of graded attempts shared by
// every session. The CSV file is the primary sink; Redis and the SQL store
// can mirror it.
package resultlog

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Entry is one graded attempt.
type Entry struct {
	Time        time.Time
	StudentCode string
	StudentName string
	Topic       string
	QuestionID  string
	Level       int
	Correct     bool
	Score       float64

	// Not written to the CSV log.
	SessionID string
	Phase     string
	Degraded  bool
}

// Sink receives graded attempts. Implementations must be safe for
// concurrent use by several sessions.
type Sink interface {
	Append(ctx context.Context, e Entry) error
}

// Filter returns the entries of one student, in log order.
func Filter(entries []Entry, studentCode string) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.StudentCode == studentCode {
			out = append(out, e)
		}
	}
	return out
}

type multiSink struct {
	primary Sink
	mirrors []Sink
}

// Multi appends to primary and then to every mirror. Only the primary error
// is returned; mirror failures are logged.
func Multi(primary Sink, mirrors ...Sink) Sink {
	var ms []Sink
	for _, m := range mirrors {
		if m != nil {
			ms = append(ms, m)
		}
	}
	if len(ms) == 0 {
		return primary
	}
	return &multiSink{primary: primary, mirrors: ms}
}

func (m *multiSink) Append(ctx context.Context, e Entry) error {
	err := m.primary.Append(ctx, e)
	for _, s := range m.mirrors {
		if merr := s.Append(ctx, e); merr != nil {
			slog.Warn("mirror result append failed", "question", e.QuestionID, "error", merr)
		}
	}
	return err
}

// ErrMalformedRow is returned by ReadCSV for rows it cannot decode.
var ErrMalformedRow = errors.New("malformed result row")
