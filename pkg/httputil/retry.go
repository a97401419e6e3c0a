// Package httputil provides retry and status helpers for talking to a
// remote validation service.
//
// Transient failures (connection errors, timeouts, 5xx responses) are
// wrapped in [RetryableError] and retried by [Retry] with exponential
// backoff. Everything else is returned to the caller immediately.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrStatus is wrapped by [CheckStatus] for any non-2xx response.
var ErrStatus = errors.New("unexpected status")

// RetryableError wraps an error to indicate it should trigger a retry.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err carries a [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Backoff configures [Retry].
type Backoff struct {
	Attempts int           // total tries, at least 1
	Delay    time.Duration // wait before the second try
	MaxDelay time.Duration // cap for the doubled delay; 0 means no cap
}

// DefaultBackoff tries three times, waiting 250ms and then 500ms.
var DefaultBackoff = Backoff{Attempts: 3, Delay: 250 * time.Millisecond, MaxDelay: 2 * time.Second}

// Retry calls fn until it succeeds, returns a non-retryable error, or the
// attempts run out. fn receives the zero-based attempt number. The delay
// doubles after each failed attempt. Returns the last error if all attempts
// fail, or ctx.Err() if cancelled while waiting.
func Retry(ctx context.Context, b Backoff, fn func(attempt int) error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Delay
	var lastErr error

	for i := range attempts {
		if lastErr = fn(i); lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		if i == attempts-1 {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
		if b.MaxDelay > 0 && delay > b.MaxDelay {
			delay = b.MaxDelay
		}
	}
	return lastErr
}

// CheckStatus maps an HTTP status code to an error: nil for 2xx, a
// [RetryableError] for 5xx, and a plain error otherwise. All non-nil
// results wrap [ErrStatus].
func CheckStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code >= 500:
		return &RetryableError{Err: fmt.Errorf("%w %d %s", ErrStatus, code, http.StatusText(code))}
	default:
		return fmt.Errorf("%w %d %s", ErrStatus, code, http.StatusText(code))
	}
}
