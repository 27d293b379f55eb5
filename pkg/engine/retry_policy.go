package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// BackoffStrategy selects how RetryPolicy spaces out retry attempts.
// The engine's own stepping never retries (spec.md §7: a repository or
// condition-evaluation error fails the step outright); RetryPolicy is a
// library surface a caller wraps around its own repository or transport
// calls instead, which is why pkg/telemetry.Pipeline takes one as an
// optional dependency rather than the engine invoking it internally.
type BackoffStrategy string

const (
	BackoffConstant    BackoffStrategy = "constant"
	BackoffLinear      BackoffStrategy = "linear"
	BackoffExponential BackoffStrategy = "exponential"
)

// RetryPolicy configures how Execute retries a caller-supplied function.
type RetryPolicy struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffStrategy BackoffStrategy

	// RetryableErrors restricts retries to errors whose message contains
	// one of these substrings. Empty means every error is retryable.
	RetryableErrors []string

	// OnRetry, if set, is called after each failed attempt that will be
	// retried, before the backoff delay is slept.
	OnRetry func(attempt int, err error)
}

// DefaultRetryPolicy returns the policy a telemetry repository write
// should retry under: three attempts, exponential backoff starting at
// one second.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:     3,
		InitialDelay:    1 * time.Second,
		MaxDelay:        30 * time.Second,
		BackoffStrategy: BackoffExponential,
	}
}

// NoRetryPolicy returns a policy that runs its function exactly once,
// the behavior a caller gets when it does not configure retries at all.
func NoRetryPolicy() *RetryPolicy {
	return &RetryPolicy{MaxAttempts: 1}
}

// ShouldRetry reports whether err matches one of the policy's
// RetryableErrors patterns (or any error, if none are configured).
func (rp *RetryPolicy) ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if len(rp.RetryableErrors) == 0 {
		return true
	}
	msg := err.Error()
	for _, pattern := range rp.RetryableErrors {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// GetDelay calculates the delay before the given retry attempt.
func (rp *RetryPolicy) GetDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	var delay time.Duration
	switch rp.BackoffStrategy {
	case BackoffConstant:
		delay = rp.InitialDelay
	case BackoffLinear:
		delay = rp.InitialDelay * time.Duration(attempt)
	case BackoffExponential:
		delay = time.Duration(float64(rp.InitialDelay) * math.Pow(2, float64(attempt-1)))
	default:
		delay = rp.InitialDelay
	}

	if rp.MaxDelay > 0 && delay > rp.MaxDelay {
		delay = rp.MaxDelay
	}
	return delay
}

// Execute runs fn, retrying according to the policy until it succeeds,
// MaxAttempts is exhausted, ctx is cancelled, or ShouldRetry rejects the
// error. pkg/telemetry.Pipeline wraps its repository writes with this so
// a transient persistence failure does not immediately count against
// the pipeline's per-record error total.
func (rp *RetryPolicy) Execute(ctx context.Context, fn func() error) error {
	if rp.MaxAttempts <= 0 {
		rp.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= rp.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		default:
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt >= rp.MaxAttempts || !rp.ShouldRetry(err) {
			break
		}
		if rp.OnRetry != nil {
			rp.OnRetry(attempt, err)
		}

		delay := rp.GetDelay(attempt)
		if delay > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("retry cancelled during backoff: %w", ctx.Err())
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("all retry attempts failed: %w", lastErr)
}

// IsRetryableError reports whether err looks transient: context
// cancellation/deadline is never retryable, Temporary()/Timeout() errors
// are, and anything else defaults to retryable.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	var temp interface{ Temporary() bool }
	if errors.As(err, &temp) {
		return temp.Temporary()
	}
	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) {
		return timeout.Timeout()
	}
	return true
}
