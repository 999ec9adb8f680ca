package observability

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	q := NoopQueryHooks{}
	q.OnLoadStart(ctx, "family.json")
	q.OnLoadComplete(ctx, "family.json", 12, time.Millisecond, nil)
	q.OnResolveStart(ctx, "Alice", "Carol")
	q.OnResolveComplete(ctx, "Alice", "Carol", true, time.Millisecond, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "relation")
	c.OnCacheMiss(ctx, "relation")
	c.OnCacheSet(ctx, "relation", 128)

	s := NoopServerHooks{}
	s.OnRequest(ctx, "GET", "/relation")
	s.OnResponse(ctx, "GET", "/relation", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Query().(NoopQueryHooks); !ok {
		t.Error("Query() should return NoopQueryHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Server().(NoopServerHooks); !ok {
		t.Error("Server() should return NoopServerHooks by default")
	}

	customQuery := &testQueryHooks{}
	SetQueryHooks(customQuery)
	if Query() != customQuery {
		t.Error("SetQueryHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customServer := &testServerHooks{}
	SetServerHooks(customServer)
	if Server() != customServer {
		t.Error("SetServerHooks should set custom hooks")
	}

	Reset()
	if _, ok := Query().(NoopQueryHooks); !ok {
		t.Error("Reset() should restore NoopQueryHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testQueryHooks{}
	SetQueryHooks(custom)
	SetQueryHooks(nil)

	if Query() != custom {
		t.Error("SetQueryHooks(nil) should be ignored")
	}
}

func TestHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	h := &testQueryHooks{}
	SetQueryHooks(h)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Query().OnResolveStart(context.Background(), "a", "b")
		}()
	}
	wg.Wait()

	if h.count() != 8 {
		t.Errorf("resolve starts = %d, want 8", h.count())
	}
}

type testQueryHooks struct {
	NoopQueryHooks
	mu      sync.Mutex
	resolve int
}

func (h *testQueryHooks) OnResolveStart(context.Context, string, string) {
	h.mu.Lock()
	h.resolve++
	h.mu.Unlock()
}

func (h *testQueryHooks) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.resolve
}

type testCacheHooks struct{ NoopCacheHooks }
type testServerHooks struct{ NoopServerHooks }
