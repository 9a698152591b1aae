package httputil

import (
	"context"
	"errors"
	"time"

	mmerrors "github.com/unixblacksteel/mindmap/pkg/errors"
)

// RetryableError wraps an error to indicate it should trigger a retry.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a RetryableError. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err is wrapped with RetryableError.
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Retry executes fn up to attempts times with exponential backoff.
// It only retries errors wrapped with [RetryableError]; other errors are
// returned immediately. The delay doubles after each failed attempt, unless
// the failure carries a Retry-After hint, which is used instead.
// Returns the last error if all attempts fail, or ctx.Err() if cancelled.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		wait := delay
		if after := retryAfter(lastErr); after > 0 {
			wait = after
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
			delay *= 2
		}
	}
	return lastErr
}

func retryAfter(err error) time.Duration {
	var rl *mmerrors.RateLimitedError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return time.Duration(rl.RetryAfter) * time.Second
	}
	return 0
}
