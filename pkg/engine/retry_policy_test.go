package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryPolicy_GetDelay(t *testing.T) {
	tests := []struct {
		name     string
		rp       *RetryPolicy
		attempt  int
		wantZero bool
		want     time.Duration
	}{
		{"attempt zero is immediate", &RetryPolicy{InitialDelay: time.Second}, 0, true, 0},
		{"constant", &RetryPolicy{InitialDelay: time.Second, BackoffStrategy: BackoffConstant}, 3, false, time.Second},
		{"linear", &RetryPolicy{InitialDelay: time.Second, BackoffStrategy: BackoffLinear}, 3, false, 3 * time.Second},
		{"exponential", &RetryPolicy{InitialDelay: time.Second, BackoffStrategy: BackoffExponential}, 3, false, 4 * time.Second},
		{"capped by MaxDelay", &RetryPolicy{InitialDelay: time.Second, BackoffStrategy: BackoffExponential, MaxDelay: 2 * time.Second}, 3, false, 2 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rp.GetDelay(tt.attempt)
			if tt.wantZero && got != 0 {
				t.Fatalf("GetDelay(%d) = %v, want 0", tt.attempt, got)
			}
			if !tt.wantZero && got != tt.want {
				t.Fatalf("GetDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}

func TestRetryPolicy_ShouldRetry(t *testing.T) {
	rp := &RetryPolicy{RetryableErrors: []string{"timeout", "unavailable"}}

	if rp.ShouldRetry(nil) {
		t.Fatal("ShouldRetry(nil) = true, want false")
	}
	if !rp.ShouldRetry(errors.New("connection timeout")) {
		t.Fatal("ShouldRetry(timeout) = false, want true")
	}
	if rp.ShouldRetry(errors.New("permission denied")) {
		t.Fatal("ShouldRetry(unmatched) = true, want false")
	}

	unrestricted := &RetryPolicy{}
	if !unrestricted.ShouldRetry(errors.New("anything")) {
		t.Fatal("ShouldRetry with no RetryableErrors configured = false, want true")
	}
}

func TestRetryPolicy_Execute_SucceedsAfterTransientFailures(t *testing.T) {
	rp := &RetryPolicy{MaxAttempts: 3, InitialDelay: time.Millisecond, BackoffStrategy: BackoffConstant}

	attempts := 0
	err := rp.Execute(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestRetryPolicy_Execute_ExhaustsMaxAttempts(t *testing.T) {
	rp := &RetryPolicy{MaxAttempts: 2, InitialDelay: time.Millisecond}

	attempts := 0
	err := rp.Execute(context.Background(), func() error {
		attempts++
		return errors.New("persistent")
	})
	if err == nil {
		t.Fatal("Execute() error = nil, want non-nil after exhausting attempts")
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2", attempts)
	}
}

func TestRetryPolicy_Execute_StopsOnNonRetryableError(t *testing.T) {
	rp := &RetryPolicy{MaxAttempts: 5, InitialDelay: time.Millisecond, RetryableErrors: []string{"timeout"}}

	attempts := 0
	err := rp.Execute(context.Background(), func() error {
		attempts++
		return errors.New("permission denied")
	})
	if err == nil {
		t.Fatal("Execute() error = nil, want non-nil")
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1 (non-retryable error stops immediately)", attempts)
	}
}

func TestRetryPolicy_Execute_RespectsContextCancellation(t *testing.T) {
	rp := &RetryPolicy{MaxAttempts: 5, InitialDelay: 50 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := rp.Execute(ctx, func() error {
		attempts++
		if attempts == 1 {
			cancel()
		}
		return errors.New("transient")
	})
	if err == nil {
		t.Fatal("Execute() error = nil, want non-nil after cancellation")
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1 (backoff should observe cancellation)", attempts)
	}
}

func TestNoRetryPolicy_RunsExactlyOnce(t *testing.T) {
	rp := NoRetryPolicy()

	attempts := 0
	err := rp.Execute(context.Background(), func() error {
		attempts++
		return errors.New("fails")
	})
	if err == nil {
		t.Fatal("Execute() error = nil, want non-nil")
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
}

func TestIsRetryableError(t *testing.T) {
	if IsRetryableError(nil) {
		t.Fatal("IsRetryableError(nil) = true, want false")
	}
	if IsRetryableError(context.Canceled) {
		t.Fatal("IsRetryableError(context.Canceled) = true, want false")
	}
	if IsRetryableError(context.DeadlineExceeded) {
		t.Fatal("IsRetryableError(context.DeadlineExceeded) = true, want false")
	}
	if !IsRetryableError(errors.New("some transient error")) {
		t.Fatal("IsRetryableError(generic error) = false, want true")
	}
}
