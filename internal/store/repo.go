package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact purpose match, "" for all (LLM events only)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request.
type LLMRequestEvent struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates token usage for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
	Failures     int
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo records and queries LLM requests.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int64) (*LLMRequestEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// AttemptData is one graded answer as persisted.
type AttemptData struct {
	SessionID   string
	StudentCode string
	StudentName string
	Topic       string
	QuestionID  string
	Level       int
	Phase       string
	Correct     bool
	Score       float64
	Degraded    bool
}

// Attempt is a stored AttemptData.
type Attempt struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	AttemptData
}

// AttemptRepo records graded attempts.
type AttemptRepo interface {
	AppendAttempt(ctx context.Context, at time.Time, data AttemptData) error

	// AttemptsByStudent returns a student's attempts in answer order.
	AttemptsByStudent(ctx context.Context, studentCode string, opts QueryOpts) ([]Attempt, error)
}

// SessionRecord is the stored outline of one quiz session.
type SessionRecord struct {
	ID          string
	StudentCode string
	StudentName string
	Topics      []string
	StartedAt   time.Time
	FinishedAt  time.Time // zero while the session is open
	Total       int
	Correct     int
	ScoreSum    float64
	Percentage  float64
}

// SessionRepo tracks session starts and final summaries.
type SessionRepo interface {
	StartSession(ctx context.Context, rec SessionRecord) error
	FinishSession(ctx context.Context, rec SessionRecord) error

	// RecentSessions returns sessions newest first; an empty studentCode
	// matches everyone.
	RecentSessions(ctx context.Context, studentCode string, limit int) ([]SessionRecord, error)
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
