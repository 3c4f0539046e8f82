package observability

import (
	"context"
	"time"
)

// Tee forwards every event to each of its hooks in order.
type Tee []Hooks

func (t Tee) OnParseStart(ctx context.Context, source string, size int) {
	for _, h := range t {
		h.OnParseStart(ctx, source, size)
	}
}

func (t Tee) OnParseComplete(ctx context.Context, source string, txCount int, d time.Duration, err error) {
	for _, h := range t {
		h.OnParseComplete(ctx, source, txCount, d, err)
	}
}

func (t Tee) OnAnalyzeComplete(ctx context.Context, source string, d time.Duration) {
	for _, h := range t {
		h.OnAnalyzeComplete(ctx, source, d)
	}
}

func (t Tee) OnCacheHit(ctx context.Context, keyType string) {
	for _, h := range t {
		h.OnCacheHit(ctx, keyType)
	}
}

func (t Tee) OnCacheMiss(ctx context.Context, keyType string) {
	for _, h := range t {
		h.OnCacheMiss(ctx, keyType)
	}
}

func (t Tee) OnCacheSet(ctx context.Context, keyType string, size int) {
	for _, h := range t {
		h.OnCacheSet(ctx, keyType, size)
	}
}

func (t Tee) OnRequest(ctx context.Context, method, path string) {
	for _, h := range t {
		h.OnRequest(ctx, method, path)
	}
}

func (t Tee) OnResponse(ctx context.Context, method, path string, status int, d time.Duration) {
	for _, h := range t {
		h.OnResponse(ctx, method, path, status, d)
	}
}

var _ Hooks = Tee(nil)
