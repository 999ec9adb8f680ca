// Package cache stores resolved relations between runs.
//
// Resolution itself is cheap, but the CLI re-reads and re-indexes the family
// on every invocation and the HTTP server answers the same pairs repeatedly.
// Entries are keyed on the content of the family and of the lookup table
// (see [Keyer]), so editing either one simply produces new keys; stale
// entries age out through their TTL.
//
// Three backends are provided: [NullCache] (disabled), [FileCache] (the CLI
// default, under the user cache directory) and [RedisCache] (shared between
// server replicas).
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is reported as (nil, false, nil);
	// errors are reserved for backend failures.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}
