package upstream

import (
	"context"
	"log/slog"
	"time"

	ierrors "github.com/jamesprial/frontproxy/internal/errors"
)

const (
	// DefaultMaxAttempts is the per-call attempt budget.
	DefaultMaxAttempts = 3

	// DefaultBackoff is the linear backoff step: attempt k waits k*DefaultBackoff.
	DefaultBackoff = 500 * time.Millisecond
)

// Sleeper waits for d or until ctx is done, whichever comes first.
type Sleeper func(ctx context.Context, d time.Duration) error

// Attempt runs one try of an operation. attempt is 1-based.
type Attempt func(ctx context.Context, attempt int) Outcome

// RetryPolicy retries transport failures a fixed number of times with linear backoff.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Values below 1 are treated as 1.
	MaxAttempts int

	// Backoff is the delay step. Before attempt k+1 the policy waits k*Backoff.
	Backoff time.Duration

	// Sleep defaults to a timer-based sleep that honours ctx.
	Sleep Sleeper

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultRetryPolicy returns the 3-attempt, 500ms linear policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		Backoff:     DefaultBackoff,
	}
}

// WithMaxAttempts returns a copy of p with a different attempt budget.
// Non-positive values leave the budget unchanged.
func (p RetryPolicy) WithMaxAttempts(n int) RetryPolicy {
	if n > 0 {
		p.MaxAttempts = n
	}
	return p
}

// Budget is the longest a call can take when every attempt runs to timeout:
// MaxAttempts*timeout plus the backoff sleeps between attempts.
func (p RetryPolicy) Budget(timeout time.Duration) time.Duration {
	n := max(p.MaxAttempts, 1)
	sleeps := time.Duration(n*(n-1)/2) * p.Backoff
	return time.Duration(n)*timeout + sleeps
}

// Do runs op until it yields an HTTP response or the budget is spent.
//
// Only timeouts and transport errors are retried. Any HTTP status, including
// 4xx and 5xx, is a terminal outcome. After the last attempt the last failure
// is returned. Attempts are strictly sequential.
func (p RetryPolicy) Do(ctx context.Context, op Attempt) Outcome {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepWithContext
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var out Outcome
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		out = op(ctx, attempt)
		out.Attempts = attempt

		if !out.Failed() || !ierrors.IsTransient(out.Err) {
			return out
		}
		if attempt == maxAttempts {
			break
		}

		delay := time.Duration(attempt) * p.Backoff
		logger.Warn("retrying upstream call",
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"reason", out.Kind.String(),
			"backoff_ms", delay.Milliseconds(),
		)

		if err := sleep(ctx, delay); err != nil {
			// Caller gave up; report the failure we already have.
			return out
		}
	}

	return out
}

// sleepWithContext waits for d using a timer that is always stopped.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
