package tool

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, FixedDelay(time.Millisecond), func(attempt int) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 2, FixedDelay(time.Millisecond), func(attempt int) error {
		calls++
		return errors.New("down")
	})

	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestRetry_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	target := errors.New("bad request")
	err := Retry(context.Background(), 5, FixedDelay(time.Millisecond), func(attempt int) error {
		calls++
		return &Permanent{Err: target}
	})

	if !errors.Is(err, target) {
		t.Errorf("expected unwrapped permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetry_ContextCancelAbortsBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, 5, FixedDelay(time.Minute), func(attempt int) error {
		calls++
		cancel()
		return errors.New("transient")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call before cancel, got %d", calls)
	}
}

func TestRetry_AttemptNumbersArePassed(t *testing.T) {
	var seen []int
	Retry(context.Background(), 3, FixedDelay(0), func(attempt int) error {
		seen = append(seen, attempt)
		return errors.New("x")
	})

	if len(seen) != 3 || seen[0] != 1 || seen[1] != 2 || seen[2] != 3 {
		t.Errorf("expected attempts [1 2 3], got %v", seen)
	}
}

func TestLinearBackoff(t *testing.T) {
	d := LinearBackoff(time.Second)
	if d(1) != time.Second {
		t.Errorf("attempt 1: expected 1s, got %v", d(1))
	}
	if d(3) != 3*time.Second {
		t.Errorf("attempt 3: expected 3s, got %v", d(3))
	}
}
