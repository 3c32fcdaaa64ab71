package mapper

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// RetryConfig controls retry behavior for transient request failures.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryConfig returns sensible retry defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
	}
}

// withRetry executes fn, retrying on transient errors with exponential
// backoff and jitter. Fatal errors and context cancellation abort
// immediately.
func withRetry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsTransient(lastErr) {
			return lastErr
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		// Jitter of up to ±25% avoids retry stampedes.
		jitter := time.Duration(rand.Int63n(int64(delay) / 2))
		sleep := delay - delay/4 + jitter

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return fmt.Errorf("request failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}
