package cache

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned by a [BreakerCache] while its backend is
// considered down.
var ErrCircuitOpen = errors.New("cache circuit breaker is open")

// BreakerOptions tunes a [BreakerCache].
type BreakerOptions struct {
	// MaxFailures is the number of consecutive backend errors that opens
	// the circuit. Default: 3.
	MaxFailures uint32

	// Timeout is how long the circuit stays open before a probe request is
	// let through. Default: 30s.
	Timeout time.Duration

	// OnStateChange is called on every transition, e.g. to log it.
	OnStateChange func(from, to string)
}

// BreakerCache guards a remote cache with a circuit breaker. While the
// circuit is open every call fails fast with [ErrCircuitOpen], which callers
// treat like any other cache error: a miss on read, a skipped write.
//
// Misses are successes. Only backend errors count towards tripping.
type BreakerCache struct {
	inner   Cache
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerCache wraps inner.
func NewBreakerCache(inner Cache, opts BreakerOptions) *BreakerCache {
	if opts.MaxFailures == 0 {
		opts.MaxFailures = 3
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	settings := gobreaker.Settings{
		Name:        "cache",
		MaxRequests: 1,
		Timeout:     opts.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			// A cancelled caller says nothing about the backend.
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
	}
	if opts.OnStateChange != nil {
		settings.OnStateChange = func(_ string, from, to gobreaker.State) {
			opts.OnStateChange(from.String(), to.String())
		}
	}
	return &BreakerCache{inner: inner, breaker: gobreaker.NewCircuitBreaker(settings)}
}

// State returns "closed", "half-open" or "open".
func (c *BreakerCache) State() string { return c.breaker.State().String() }

type getResult struct {
	data []byte
	hit  bool
}

// Get implements [Cache].
func (c *BreakerCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	res, err := c.breaker.Execute(func() (interface{}, error) {
		data, hit, err := c.inner.Get(ctx, key)
		return getResult{data, hit}, err
	})
	if err != nil {
		return nil, false, breakerError(err)
	}
	r := res.(getResult)
	return r.data, r.hit, nil
}

// Set implements [Cache].
func (c *BreakerCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.inner.Set(ctx, key, data, ttl)
	})
	return breakerError(err)
}

// Delete implements [Cache].
func (c *BreakerCache) Delete(ctx context.Context, key string) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.inner.Delete(ctx, key)
	})
	return breakerError(err)
}

// Clear empties the wrapped cache if it supports it. It bypasses the breaker
// so an explicit `cache clear` always reaches the backend.
func (c *BreakerCache) Clear(ctx context.Context) error {
	if cl, ok := c.inner.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return nil
}

// Close closes the wrapped cache.
func (c *BreakerCache) Close() error { return c.inner.Close() }

func breakerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrCircuitOpen
	}
	return err
}
