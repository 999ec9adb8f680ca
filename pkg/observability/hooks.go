// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries in this module emit events through the registered hooks and never
// import an observability backend themselves. The defaults are no-ops; the
// CLI registers logging hooks under --verbose, and an embedding program can
// register its own (Prometheus, OpenTelemetry, ...) at startup:
//
//	observability.SetQueryHooks(&myQueryHooks{})
//	observability.SetCacheHooks(&myCacheHooks{})
//
// Libraries call hooks around each unit of work:
//
//	observability.Query().OnResolveStart(ctx, from, to)
//	// ... resolve ...
//	observability.Query().OnResolveComplete(ctx, from, to, related, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Query Hooks
// =============================================================================

// QueryHooks receives events from the query pipeline.
type QueryHooks interface {
	// Load events. source is a file path or "store:<name>".
	OnLoadStart(ctx context.Context, source string)
	OnLoadComplete(ctx context.Context, source string, people int, duration time.Duration, err error)

	// Resolve events, one pair per relation query.
	OnResolveStart(ctx context.Context, from, to string)
	OnResolveComplete(ctx context.Context, from, to string, related bool, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Server Hooks
// =============================================================================

// ServerHooks receives events from the HTTP API.
type ServerHooks interface {
	// OnRequest records an incoming request. route is the matched pattern,
	// not the raw path, to keep cardinality bounded.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records the status written for a request.
	OnResponse(ctx context.Context, method, route string, status int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopQueryHooks is a no-op implementation of QueryHooks.
type NoopQueryHooks struct{}

func (NoopQueryHooks) OnLoadStart(context.Context, string)                               {}
func (NoopQueryHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {}
func (NoopQueryHooks) OnResolveStart(context.Context, string, string)                    {}
func (NoopQueryHooks) OnResolveComplete(context.Context, string, string, bool, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopServerHooks is a no-op implementation of ServerHooks.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string)                      {}
func (NoopServerHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	queryHooks  QueryHooks  = NoopQueryHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	serverHooks ServerHooks = NoopServerHooks{}
	hooksMu     sync.RWMutex
)

// SetQueryHooks registers custom query hooks. A nil argument is ignored.
func SetQueryHooks(h QueryHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		queryHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. A nil argument is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetServerHooks registers custom server hooks. A nil argument is ignored.
func SetServerHooks(h ServerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		serverHooks = h
	}
}

// Query returns the registered query hooks.
func Query() QueryHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return queryHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Server returns the registered server hooks.
func Server() ServerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return serverHooks
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	queryHooks = NoopQueryHooks{}
	cacheHooks = NoopCacheHooks{}
	serverHooks = NoopServerHooks{}
}
