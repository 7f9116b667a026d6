package genai

import (
	"context"
	"time"
)

const (
	// DefaultMaxAttempts bounds the total tries for a rate-limited call.
	DefaultMaxAttempts = 3
	// DefaultInitialDelay seeds the exponential backoff.
	DefaultInitialDelay = time.Second
)

// WithRetry runs call, retrying rate-limited failures with pure
// exponential backoff: initialDelay * 2^attempt, no jitter. Any other
// failure, or a rate limit with no attempts remaining, propagates
// immediately. The wrapper keeps no state between invocations.
func WithRetry[T any](ctx context.Context, call func() (T, error), maxAttempts int, initialDelay time.Duration) (T, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if initialDelay <= 0 {
		initialDelay = DefaultInitialDelay
	}

	var zero T
	for attempt := 0; ; attempt++ {
		result, err := call()
		if err == nil {
			return result, nil
		}
		if !IsRateLimit(err) || attempt >= maxAttempts-1 {
			return zero, err
		}

		delay := initialDelay << uint(attempt)
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}
}
