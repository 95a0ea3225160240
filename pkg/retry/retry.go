// Package retry re-runs operations that fail with transient errors.
//
// Remote backends (Redis, MongoDB) are often started alongside the server
// and refuse connections for the first few seconds. Wrap such failures with
// [Transient] and [Do] will try again with exponential backoff; any other
// error ends the loop at once.
package retry

import (
	"context"
	"errors"
	"time"
)

// TransientError marks an error as worth retrying.
type TransientError struct{ Err error }

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err so that [Do] retries it. A nil err stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err or anything it wraps is a [TransientError].
func IsTransient(err error) bool {
	return errors.As(err, new(*TransientError))
}

// Do runs fn up to attempts times, doubling delay after each transient
// failure. It returns the last error, or ctx.Err() if the context ends while
// waiting.
func Do(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsTransient(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// Connect is [Do] with the defaults used for backend dials: 3 attempts
// starting at 500ms.
func Connect(ctx context.Context, fn func() error) error {
	return Do(ctx, 3, 500*time.Millisecond, fn)
}
