// Package grading scores learner answers. Fixed-choice answers are compared
// against the stored label; free-form answers go to a language-model judge
// whose failures degrade to a neutral fallback verdict.
package grading

import "github.com/abhisek/adaptiq/internal/bank"

// DefaultPassThreshold is the score an undetermined verdict needs to count
// as correct.
const DefaultPassThreshold = 0.6

// Fallback verdict values.
const (
	FallbackScore    = 0.5
	FallbackFollowUp = "¿Puedes ampliar?"
)

// Verdict is the outcome of grading one answer.
type Verdict struct {
	// Correct is nil when the judge left correctness undetermined.
	Correct *bool

	// Score is in [0, 1].
	Score float64

	Feedback        string
	FollowUp        string
	MissingConcepts []string

	// Degraded marks a fallback verdict produced without the judge.
	Degraded bool
}

// Effective resolves the verdict to a single outcome: the explicit
// correctness when present, otherwise whether the score reaches threshold.
func Effective(v Verdict, threshold float64) bool {
	if v.Correct != nil {
		return *v.Correct
	}
	return v.Score >= threshold
}

// Fallback returns the neutral verdict used when the judge cannot be reached
// or its reply cannot be parsed.
func Fallback(q bank.Question) Verdict {
	return Verdict{
		Score:           FallbackScore,
		Feedback:        "Revisa: " + q.Explanation,
		FollowUp:        FallbackFollowUp,
		MissingConcepts: append([]string(nil), q.KeyConcepts()...),
		Degraded:        true,
	}
}

func clamp(score float64) float64 {
	return min(max(score, 0), 1)
}
