package llm

import "context"

// PurposeGrading labels judge calls in the event log.
const PurposeGrading = "grading"

type purposeKey struct{}

// WithPurpose tags ctx so logged requests can be grouped by what asked.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the tag set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if p, ok := ctx.Value(purposeKey{}).(string); ok && p != "" {
		return p
	}
	return "unknown"
}
