package postgres

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

const (
	// backoffMultiplier grows the delay between attempts.
	backoffMultiplier = 2.0

	// backoffJitterFactor is the jitter percentage for backoff calculation (±25%).
	backoffJitterFactor = 0.25
)

// RetryPolicy bounds retries of transient storage failures.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxDelay        time.Duration
}

// DefaultRetryPolicy allows five attempts with delays capped at 30 seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     5,
		InitialInterval: 200 * time.Millisecond,
		MaxDelay:        30 * time.Second,
	}
}

// retrier repeats a storage call while it fails with retryable errors.
type retrier struct {
	policy RetryPolicy
	logger *slog.Logger

	// jitter returns a value in [0,1).
	jitter func() float64
	sleep  func(ctx context.Context, d time.Duration) error
}

func newRetrier(policy RetryPolicy, logger *slog.Logger) *retrier {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	return &retrier{
		policy: policy,
		logger: logger,
		jitter: rand.Float64, //nolint:gosec // No need for crypto-grade randomness
		sleep:  sleepContext,
	}
}

// do runs fn until it succeeds, fails permanently, or the policy is used up.
// Exhaustion returns a RetryExhaustedError wrapping the last error.
func (r *retrier) do(ctx context.Context, op string, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil || !isRetryable(lastErr) {
			return lastErr
		}

		if attempt == r.policy.MaxAttempts {
			break
		}

		delay := r.backoff(attempt)
		r.logger.WarnContext(ctx, "transient storage failure, retrying",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.Duration("backoff", delay),
			slog.Any("error", lastErr),
		)

		if err := r.sleep(ctx, delay); err != nil {
			return err
		}
	}

	if r.policy.MaxAttempts == 1 {
		return lastErr
	}

	return &RetryExhaustedError{Attempts: r.policy.MaxAttempts, Cause: lastErr}
}

// backoff returns the delay after the given failed attempt (1-based).
// Exponential growth with ±25% jitter, never above MaxDelay.
func (r *retrier) backoff(attempt int) time.Duration {
	delay := float64(r.policy.InitialInterval) * math.Pow(backoffMultiplier, float64(attempt-1))
	delay += delay * backoffJitterFactor * (r.jitter()*2 - 1)

	if limit := float64(r.policy.MaxDelay); r.policy.MaxDelay > 0 && delay > limit {
		delay = limit
	}

	return time.Duration(delay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
