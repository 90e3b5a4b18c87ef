package errors

import (
	"context"
	"time"
)

// RetryConfig controls the exponential backoff applied to PersistenceError
// operations (spec.md §7): 3 attempts, base 100ms, doubling each attempt.
type RetryConfig struct {
	Attempts int
	Base     time.Duration
}

// DefaultRetryConfig matches spec.md §7's documented defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{Attempts: 3, Base: 100 * time.Millisecond}
}

// Retry runs fn up to cfg.Attempts times with exponential backoff between
// attempts, returning the last error wrapped as a PersistenceError if every
// attempt fails. It does not fail the caller's in-memory pipeline result;
// the caller decides what to do with a non-nil return.
func Retry(ctx context.Context, cfg RetryConfig, code string, fn func() error) error {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	var lastErr error
	delay := cfg.Base
	for attempt := 0; attempt < cfg.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Persistence(code, "retry aborted by context", ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
	}
	return Persistence(code, "operation failed after retries", lastErr)
}
