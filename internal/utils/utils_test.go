package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitForReturnsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWaitForNonPositiveDuration(t *testing.T) {
	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		attempt int
		expect  time.Duration
	}{
		{attempt: -1, expect: 200 * time.Millisecond},
		{attempt: 0, expect: 200 * time.Millisecond},
		{attempt: 2, expect: 800 * time.Millisecond},
		{attempt: 10, expect: 5 * time.Second},
		{attempt: 100, expect: 5 * time.Second},
	}

	for _, tt := range tests {
		if got := Backoff(tt.attempt, 200*time.Millisecond, 5*time.Second); got != tt.expect {
			t.Fatalf("attempt %d: expected %v, got %v", tt.attempt, tt.expect, got)
		}
	}
}
