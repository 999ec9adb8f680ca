package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kinship/pkg/observability"
)

// logHooks reports pipeline and cache events at debug level. It is
// registered by --verbose.
type logHooks struct {
	logger *log.Logger
}

func registerLogHooks(l *log.Logger) {
	h := logHooks{logger: l.WithPrefix("hooks")}
	observability.SetQueryHooks(h)
	observability.SetCacheHooks(h)
}

func (h logHooks) OnLoadStart(_ context.Context, source string) {
	h.logger.Debug("load start", "source", source)
}

func (h logHooks) OnLoadComplete(_ context.Context, source string, people int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("load failed", "source", source, "err", err)
		return
	}
	h.logger.Debug("load done", "source", source, "people", people, "duration", d)
}

func (h logHooks) OnResolveStart(_ context.Context, from, to string) {
	h.logger.Debug("resolve start", "from", from, "to", to)
}

func (h logHooks) OnResolveComplete(_ context.Context, from, to string, related bool, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("resolve failed", "from", from, "to", to, "err", err)
		return
	}
	h.logger.Debug("resolve done", "from", from, "to", to, "related", related, "duration", d)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}
