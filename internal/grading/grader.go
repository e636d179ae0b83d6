package grading

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"

	"github.com/abhisek/adaptiq/internal/bank"
	"github.com/abhisek/adaptiq/internal/llm"
)

// Evaluator grades free-form answers. *Judge is the production
// implementation.
type Evaluator interface {
	Evaluate(ctx context.Context, q bank.Question, answer string) (Verdict, error)
}

// Grader routes each question kind to its scoring strategy.
type Grader struct {
	judge     Evaluator
	threshold float64
}

// NewGrader creates a Grader. judge may be nil when the bank holds only
// fixed-choice questions; free-form answers then receive the fallback
// verdict. A threshold outside (0, 1] selects DefaultPassThreshold.
func NewGrader(judge Evaluator, threshold float64) *Grader {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultPassThreshold
	}
	return &Grader{judge: judge, threshold: threshold}
}

// Threshold returns the pass threshold applied to undetermined verdicts.
func (g *Grader) Threshold() float64 {
	return g.threshold
}

// Effective resolves v with the grader's threshold.
func (g *Grader) Effective(v Verdict) bool {
	return Effective(v, g.threshold)
}

// Score grades answer against q. It never fails: judge errors are logged and
// replaced by the fallback verdict.
func (g *Grader) Score(ctx context.Context, q bank.Question, answer string) Verdict {
	switch q.Kind {
	case bank.KindChoice, bank.KindTrueFalse:
		return scoreFixed(q, answer)
	case bank.KindOpen, bank.KindAnalogy:
		if g.judge == nil {
			slog.Warn("no judge configured, using fallback verdict", "question", q.ID)
			return Fallback(q)
		}
		v, err := g.judge.Evaluate(ctx, q, answer)
		if err != nil {
			slog.Warn("judge failed, using fallback verdict",
				"question", q.ID, "timeout", llm.IsTimeout(err), "error", err)
			return Fallback(q)
		}
		return v
	}
	slog.Warn("unknown question kind, using fallback verdict", "question", q.ID, "kind", q.Kind)
	return Fallback(q)
}

// scoreFixed compares the answer with the stored label, ignoring case and
// surrounding whitespace.
func scoreFixed(q bank.Question, answer string) Verdict {
	fold := cases.Fold()
	got := fold.String(strings.TrimSpace(answer))
	want := fold.String(strings.TrimSpace(q.CorrectLabel()))

	correct := got != "" && got == want
	v := Verdict{Correct: &correct, Feedback: q.Explanation}
	if correct {
		v.Score = 1
	}
	return v
}
