// Package pipeline runs the load → analyze → report flow with caching.
//
// Both the CLI and the HTTP API go through a [Runner] so that parsing,
// error classification, caching and observability hooks behave the same
// everywhere. Reports are cached under the SHA-256 of the raw input: the
// statistics are a pure function of the bytes, so a hit is always valid.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tanglestat/pkg/cache"
	"github.com/matzehuels/tanglestat/pkg/errors"
	"github.com/matzehuels/tanglestat/pkg/observability"
	"github.com/matzehuels/tanglestat/pkg/report"
	"github.com/matzehuels/tanglestat/pkg/tangle"
)

// DefaultTTL is how long reports stay cached unless configured otherwise.
const DefaultTTL = 7 * 24 * time.Hour

const keyTypeReport = "report"

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store results. Multiple goroutines can safely use the same Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    DefaultTTL,
	}
}

// Close releases the cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

// Result is the outcome of [Runner.Analyze].
type Result struct {
	Report   *report.Report
	CacheHit bool
	Duration time.Duration
}

// Options tune a single analysis.
type Options struct {
	// Refresh skips the cache lookup; the fresh report still replaces the
	// cached one.
	Refresh bool
}

// Load parses data into a tangle. source labels the input in logs and hooks.
// Errors are classified into coded errors (see errors.Classify).
func (r *Runner) Load(ctx context.Context, source string, data []byte) (*tangle.Tangle, error) {
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, source, len(data))

	start := time.Now()
	t, err := tangle.Parse(bytes.NewReader(data))
	elapsed := time.Since(start)
	if err != nil {
		hooks.OnParseComplete(ctx, source, 0, elapsed, err)
		return nil, errors.Classify(err)
	}
	hooks.OnParseComplete(ctx, source, t.Len(), elapsed, nil)

	r.Logger.Debug("parsed tangle",
		"source", source,
		"transactions", t.Len(),
		"edges", t.EdgeCount(),
		"duration", elapsed)
	return t, nil
}

// LoadFile reads the file at path and parses it with [Runner.Load].
func (r *Runner) LoadFile(ctx context.Context, path string) (*tangle.Tangle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Classify(fmt.Errorf("read %s: %w", path, err))
	}
	return r.Load(ctx, path, data)
}

// Analyze returns the report for data, serving it from cache when possible.
// Cached reports are reissued with a fresh run ID and the caller's source.
func (r *Runner) Analyze(ctx context.Context, source string, data []byte, opts Options) (*Result, error) {
	start := time.Now()
	hash := cache.Hash(data)
	key := r.Keyer.ReportKey(hash)

	if !opts.Refresh {
		if rep, ok := r.cached(ctx, key); ok {
			rep.Source = source
			r.Logger.Debug("report cache hit", "source", source, "hash", hash[:12])
			return &Result{Report: rep, CacheHit: true, Duration: time.Since(start)}, nil
		}
	}

	t, err := r.Load(ctx, source, data)
	if err != nil {
		return nil, err
	}
	rep := report.Compute(t, source, hash)
	observability.Pipeline().OnAnalyzeComplete(ctx, source, time.Since(start))

	if raw, err := report.Marshal(rep); err == nil {
		if err := r.Cache.Set(ctx, key, raw, r.TTL); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyTypeReport, len(raw))
		}
	}

	return &Result{Report: rep, Duration: time.Since(start)}, nil
}

// AnalyzeFile reads the file at path and analyzes it with [Runner.Analyze].
func (r *Runner) AnalyzeFile(ctx context.Context, path string, opts Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Classify(fmt.Errorf("read %s: %w", path, err))
	}
	return r.Analyze(ctx, path, data, opts)
}

// cached looks up key, treating backend errors and undecodable entries as
// misses so a broken cache never fails an analysis.
func (r *Runner) cached(ctx context.Context, key string) (*report.Report, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyTypeReport)
		return nil, false
	}
	rep, err := report.ReadJSON(bytes.NewReader(data))
	if err != nil {
		r.Logger.Debug("discarding undecodable cache entry", "key", key, "err", err)
		_ = r.Cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, keyTypeReport)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyTypeReport)
	return rep.Rerun(), true
}
