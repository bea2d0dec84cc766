package utils

import (
	"context"
	"testing"
	"time"
)

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{
			name:   "returns empty when limit non-positive",
			input:  "hello world",
			limit:  0,
			expect: "",
		},
		{
			name:   "shorter than limit",
			input:  "hello",
			limit:  10,
			expect: "hello",
		},
		{
			name:   "truncates and adds ellipsis",
			input:  "hello world",
			limit:  5,
			expect: "hello...",
		},
		{
			name:   "counts runes not bytes",
			input:  "карьера",
			limit:  3,
			expect: "кар...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		attempt int
		expect  time.Duration
	}{
		{attempt: 0, expect: 0},
		{attempt: 1, expect: 100 * time.Millisecond},
		{attempt: 2, expect: 200 * time.Millisecond},
		{attempt: 3, expect: 400 * time.Millisecond},
		{attempt: 10, expect: time.Second},
	}

	for _, tt := range tests {
		if got := Backoff(tt.attempt, 100*time.Millisecond, time.Second); got != tt.expect {
			t.Fatalf("attempt %d: expected %s, got %s", tt.attempt, tt.expect, got)
		}
	}
}

func TestAttempts(t *testing.T) {
	t.Parallel()

	for retries, want := range map[int]int{-1: 1, 0: 1, 1: 2, 2: 3} {
		if got := Attempts(retries); got != want {
			t.Fatalf("retries %d: expected %d attempts, got %d", retries, want, got)
		}
	}
}

func TestWaitForReturnsOnCancel(t *testing.T) {
	original := sleep
	block := make(chan struct{})
	sleep = func(time.Duration) { <-block }
	defer func() {
		close(block)
		sleep = original
	}()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Hour); err == nil {
		t.Fatal("expected context error")
	}
}

func TestWaitForZeroDuration(t *testing.T) {
	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
