package leaderboard

import (
	"context"
	"time"
)

// RetryPolicy is a bounded-attempt schedule with exponential backoff.
// Keeping it a plain value (plus an injectable sleeper) makes attempt
// counting testable without real network calls or real clock time.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	sleep func(time.Duration)
}

// DefaultRetryPolicy mirrors the configured defaults: 3 attempts starting
// at one second, capped at ten.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 10 * time.Second}
}

// WithSleeper overrides how backoff sleeps are performed (tests pass a
// recorder instead of real time.Sleep).
func (p RetryPolicy) WithSleeper(sleep func(time.Duration)) RetryPolicy {
	p.sleep = sleep
	return p
}

// Delay returns the backoff before the given 1-based retry (the wait after
// attempt n). attempt 1 -> base, attempt 2 -> base*2, attempt 3 -> base*4.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if p.BaseDelay <= 0 {
		return 0
	}
	if attempt < 1 {
		attempt = 1
	}
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		if p.MaxDelay > 0 && delay > p.MaxDelay/2 {
			return p.MaxDelay
		}
		delay *= 2
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// Do runs fn up to MaxAttempts times, sleeping the backoff schedule between
// failures. It stops early when ctx is done and returns the last error once
// attempts are exhausted.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) (int, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			return attempt - 1, lastErr
		}

		lastErr = fn()
		if lastErr == nil {
			return attempt, nil
		}

		if attempt < attempts {
			sleep(p.Delay(attempt))
		}
	}
	return attempts, lastErr
}
