package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger writes level-filtered log lines to w, stamped "15:04:05.00".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one batch of work, such as filling a relation matrix, and
// reports how many items it produced.
type progress struct {
	logger *log.Logger
	verb   string // "Resolved"
	unit   string // "pairs"
	start  time.Time
}

func newProgress(l *log.Logger, verb, unit string) *progress {
	return &progress{logger: l, verb: verb, unit: unit, start: time.Now()}
}

// done logs e.g. "Resolved 81 pairs took=12ms".
func (p *progress) done(n int) {
	p.logger.Info(fmt.Sprintf("%s %d %s", p.verb, n, p.unit),
		"took", time.Since(p.start).Round(time.Millisecond))
}

type loggerKey struct{}

// withLogger attaches l to ctx for commands and the server.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger set by the root command, or
// log.Default() when a command runs without it (as in tests).
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
