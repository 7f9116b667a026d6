package genai

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithRetry_SuccessFirstAttempt(t *testing.T) {
	calls := 0
	result, err := WithRetry(context.Background(), func() (string, error) {
		calls++
		return "ok", nil
	}, 3, time.Millisecond)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Errorf("unexpected result: %s", result)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestWithRetry_RateLimitThenSuccess(t *testing.T) {
	calls := 0
	start := time.Now()
	result, err := WithRetry(context.Background(), func() (int, error) {
		calls++
		if calls < 3 {
			return 0, &RateLimitError{StatusCode: 429, Message: "RESOURCE_EXHAUSTED"}
		}
		return 42, nil
	}, 3, 10*time.Millisecond)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != 42 {
		t.Errorf("unexpected result: %d", result)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	// Backoff: 10ms after attempt 0, 20ms after attempt 1.
	if elapsed < 30*time.Millisecond {
		t.Errorf("expected at least 30ms of backoff, got %v", elapsed)
	}
}

func TestWithRetry_AttemptBound(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), func() (int, error) {
		calls++
		return 0, &RateLimitError{StatusCode: 429, Message: "quota"}
	}, 3, time.Millisecond)

	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", calls)
	}
	var rle *RateLimitError
	if !errors.As(err, &rle) {
		t.Errorf("expected the final rate-limit error to propagate, got %v", err)
	}
}

func TestWithRetry_NonRateLimitShortCircuit(t *testing.T) {
	calls := 0
	boom := errors.New("schema violation")
	start := time.Now()
	_, err := WithRetry(context.Background(), func() (int, error) {
		calls++
		return 0, boom
	}, 3, 100*time.Millisecond)
	elapsed := time.Since(start)

	if !errors.Is(err, boom) {
		t.Fatalf("expected the original error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", calls)
	}
	if elapsed >= 100*time.Millisecond {
		t.Errorf("no backoff delay should be incurred, took %v", elapsed)
	}
}

func TestWithRetry_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := WithRetry(ctx, func() (int, error) {
		calls++
		return 0, &RateLimitError{StatusCode: 429, Message: "quota"}
	}, 3, time.Minute)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 attempt before cancellation, got %d", calls)
	}
}

func TestIsRateLimit(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"typed", &RateLimitError{StatusCode: 429}, true},
		{"wrapped typed", errors.Join(errors.New("call failed"), &RateLimitError{StatusCode: 429}), true},
		{"message 429", errors.New("upstream said: 429 Too Many Requests"), true},
		{"message resource exhausted", errors.New("status RESOURCE_EXHAUSTED"), true},
		{"other", errors.New("invalid format"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRateLimit(tc.err); got != tc.want {
				t.Errorf("IsRateLimit(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
