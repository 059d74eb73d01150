package apierr

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig holds retry parameters for exponential backoff.
//
// All fields must be non-negative. Invalid values are normalized:
//   - MaxRetries < 0 becomes 0 (single attempt)
//   - BaseDelay <= 0 becomes 1ms
//   - MaxDelay <= 0 becomes BaseDelay
//
// Backoff, when set, replaces the exponential schedule for the errors it
// claims: it receives the failed attempt number (1-based) and the error, and
// returns the delay plus true, or false to fall back to the exponential delay.
// Sleep, when set, replaces the real timer (tests use it to observe delays).
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Backoff    func(attempt int, err error) (time.Duration, bool)
	Sleep      func(ctx context.Context, d time.Duration) error
}

// normalize ensures all RetryConfig fields have valid values.
func (c *RetryConfig) normalize() {
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = c.BaseDelay
	}
	if c.Sleep == nil {
		c.Sleep = sleepContext
	}
}

// FixedBackoffFor returns a Backoff function that waits d after errors matched by match
// and defers to the exponential schedule for everything else.
func FixedBackoffFor(d time.Duration, match func(error) bool) func(int, error) (time.Duration, bool) {
	return func(_ int, err error) (time.Duration, bool) {
		if match(err) {
			return d, true
		}
		return 0, false
	}
}

// RetryWithBackoff executes fn with exponential backoff retry.
// It retries only if shouldRetry returns true for the error.
// Returns the result of the last attempt.
//
// Invalid RetryConfig values are normalized (see RetryConfig documentation).
func RetryWithBackoff[T any](
	ctx context.Context,
	cfg RetryConfig,
	fn func() (T, error),
	shouldRetry func(error) bool,
) (T, error) {
	cfg.normalize()

	var zero T
	var lastErr error
	delay := cfg.BaseDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := delay
			if cfg.Backoff != nil {
				if d, ok := cfg.Backoff(attempt, lastErr); ok {
					wait = d
				}
			}
			if err := cfg.Sleep(ctx, wait); err != nil {
				return zero, err
			}
			// Exponential backoff with cap.
			delay = min(delay*2, cfg.MaxDelay)
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !shouldRetry(lastErr) {
			return zero, lastErr
		}
	}

	return zero, fmt.Errorf("max retries (%d) exceeded: %w", cfg.MaxRetries, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		if !timer.Stop() {
			<-timer.C
		}
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
