package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// ErrNetwork marks a failure to reach a remote backend. Callers treat it like
// a miss and resolve the relation again.
var ErrNetwork = errors.New("cache backend unreachable")

// RetryableError marks a backend failure worth another attempt.
type RetryableError struct{ Err error }

// Retryable wraps err so [Retry.Do] tries again. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err carries a [RetryableError].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// networkError turns connection-level failures (dial, timeout, reset, EOF)
// into retryable [ErrNetwork] errors. Anything else is returned unchanged.
func networkError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, io.EOF) {
		return Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	return err
}

// Retry is how often, and how patiently, a remote cache call is repeated.
type Retry struct {
	Attempts int           // total calls, at least 1
	Backoff  time.Duration // wait before the second call; doubles afterwards
}

// DefaultRetry is used by the redis backend.
var DefaultRetry = Retry{Attempts: 3, Backoff: 100 * time.Millisecond}

// Do calls fn until it succeeds, returns an error that is not
// [Retryable], or the attempts run out. The last error is returned; a
// cancelled ctx ends the wait early with ctx.Err().
func (r Retry) Do(ctx context.Context, fn func() error) error {
	delay := r.Backoff
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !IsRetryable(err) || attempt >= r.Attempts {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}

// RetryWithBackoff runs fn under [DefaultRetry].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultRetry.Do(ctx, fn)
}
