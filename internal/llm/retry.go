package llm

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"
)

// retryClass says how often a failure may be retried within one call.
type retryClass int

const (
	retryNever retryClass = iota
	retryOnce             // a bad reply may be a fluke, twice is not
	retryAlways
)

func classify(err error) retryClass {
	var (
		truncated *ErrMaxTokensExceeded
		invalid   *ErrInvalidResponse
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return retryNever
	case errors.As(err, &truncated):
		return retryNever
	case errors.As(err, &invalid):
		return retryOnce
	default:
		return retryAlways
	}
}

// RetryProvider retries failures with jittered exponential backoff inside
// the caller's deadline.
type RetryProvider struct {
	inner Provider
	cfg   RetryConfig
}

func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, cfg: cfg}
}

func (r *RetryProvider) ModelID() string { return r.inner.ModelID() }

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := max(r.cfg.MaxAttempts, 1)
	onceUsed := false
	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		switch classify(err) {
		case retryNever:
			return nil, err
		case retryOnce:
			if onceUsed {
				return nil, err
			}
			onceUsed = true
		}
		if attempt >= attempts {
			return nil, err
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		wait := r.delay(attempt, err)
		slog.Debug("LLM request failed, retrying", "purpose", PurposeFrom(ctx), "attempt", attempt, "wait", wait, "error", err)
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

// delay is the pause before attempt+1. A vendor's Retry-After wins.
func (r *RetryProvider) delay(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	d := float64(r.cfg.InitialWait)
	for range attempt - 1 {
		d *= r.cfg.Multiplier
	}
	if limit := float64(r.cfg.MaxWait); limit > 0 && d > limit {
		d = limit
	}
	// ±20%
	d *= 0.8 + 0.4*rand.Float64()
	return time.Duration(d)
}
