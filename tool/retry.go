package tool

import (
	"context"
	"fmt"
	"time"
)

// DelayStrategy computes the delay before retry attempt n (1-based).
type DelayStrategy func(attempt int) time.Duration

// LinearBackoff returns a delay of base * attempt (1x, 2x, 3x, ...).
func LinearBackoff(base time.Duration) DelayStrategy {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * base
	}
}

// FixedDelay returns the same delay for every attempt.
func FixedDelay(d time.Duration) DelayStrategy {
	return func(int) time.Duration {
		return d
	}
}

// Permanent wraps an error that must not be retried.
type Permanent struct {
	Err error
}

func (p *Permanent) Error() string {
	return p.Err.Error()
}

func (p *Permanent) Unwrap() error {
	return p.Err
}

// Retry runs fn up to maxAttempts times, sleeping per the delay strategy
// between attempts. A *Permanent error stops immediately. Context
// cancellation aborts between attempts, never mid-call.
func Retry(ctx context.Context, maxAttempts int, delay DelayStrategy, fn func(attempt int) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}
		if p, ok := lastErr.(*Permanent); ok {
			return p.Err
		}
		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay(attempt)):
		}
	}

	return fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}
