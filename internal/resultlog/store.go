package resultlog

import (
	"context"

	"github.com/abhisek/adaptiq/internal/store"
)

// StoreSink mirrors entries into the attempts table of the SQL store.
type StoreSink struct {
	repo store.AttemptRepo
}

// NewStoreSink wraps repo.
func NewStoreSink(repo store.AttemptRepo) *StoreSink {
	return &StoreSink{repo: repo}
}

func (s *StoreSink) Append(ctx context.Context, e Entry) error {
	return s.repo.AppendAttempt(ctx, e.Time, store.AttemptData{
		SessionID:   e.SessionID,
		StudentCode: e.StudentCode,
		StudentName: e.StudentName,
		Topic:       e.Topic,
		QuestionID:  e.QuestionID,
		Level:       e.Level,
		Phase:       e.Phase,
		Correct:     e.Correct,
		Score:       e.Score,
		Degraded:    e.Degraded,
	})
}

// FromAttempts converts stored attempts back into entries.
func FromAttempts(attempts []store.Attempt) []Entry {
	out := make([]Entry, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, Entry{
			Time:        a.Timestamp,
			StudentCode: a.StudentCode,
			StudentName: a.StudentName,
			Topic:       a.Topic,
			QuestionID:  a.QuestionID,
			Level:       a.Level,
			Correct:     a.Correct,
			Score:       a.Score,
			SessionID:   a.SessionID,
			Phase:       a.Phase,
			Degraded:    a.Degraded,
		})
	}
	return out
}
