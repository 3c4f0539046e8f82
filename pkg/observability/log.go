package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug-level log lines.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks logging to l, or to log.Default() if l is nil.
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{logger: l.WithPrefix("hooks")}
}

func (h *LogHooks) OnParseStart(_ context.Context, source string, size int) {
	h.logger.Debug("parse start", "source", source, "bytes", size)
}

func (h *LogHooks) OnParseComplete(_ context.Context, source string, txCount int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("parse failed", "source", source, "duration", d, "err", err)
		return
	}
	h.logger.Debug("parse done", "source", source, "transactions", txCount, "duration", d)
}

func (h *LogHooks) OnAnalyzeComplete(_ context.Context, source string, d time.Duration) {
	h.logger.Debug("analysis done", "source", source, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}

var _ Hooks = (*LogHooks)(nil)
