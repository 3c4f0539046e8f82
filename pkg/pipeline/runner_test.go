package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tanglestat/pkg/cache"
	"github.com/matzehuels/tanglestat/pkg/errors"
)

const goodDatabase = "5\n1 1 0\n1 1 0\n2 3 1\n4 2 3\n4 3 2\n"

// memCache is a minimal in-memory Cache for tests.
type memCache struct {
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) Get(_ context.Context, k string) ([]byte, bool, error) {
	v, ok := m.data[k]
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, k string, v []byte, _ time.Duration) error {
	m.data[k] = v
	m.sets++
	return nil
}

func (m *memCache) Delete(_ context.Context, k string) error {
	delete(m.data, k)
	return nil
}

func (m *memCache) Close() error { return nil }

func newTestRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.New(&bytes.Buffer{}))
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if r.Cache == nil || r.Keyer == nil || r.Logger == nil {
		t.Fatal("NewRunner should fill nil dependencies")
	}
	if r.TTL != DefaultTTL {
		t.Errorf("TTL = %v, want %v", r.TTL, DefaultTTL)
	}
}

func TestAnalyzeCaches(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	r := newTestRunner(mc)

	first, err := r.Analyze(ctx, "a.txt", []byte(goodDatabase), Options{})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if first.CacheHit {
		t.Error("first run should miss the cache")
	}
	if first.Report.Tips != 2 {
		t.Errorf("Tips = %d, want 2", first.Report.Tips)
	}
	if mc.sets != 1 {
		t.Errorf("cache sets = %d, want 1", mc.sets)
	}

	second, err := r.Analyze(ctx, "b.txt", []byte(goodDatabase), Options{})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if !second.CacheHit {
		t.Error("second run should hit the cache")
	}
	if second.Report.Source != "b.txt" {
		t.Errorf("Source = %q, want caller's source", second.Report.Source)
	}
	if second.Report.RunID == first.Report.RunID {
		t.Error("cached report should get a fresh RunID")
	}
	if second.Report.AvgDepth != first.Report.AvgDepth {
		t.Error("cached statistics should match")
	}

	third, _ := r.Analyze(ctx, "c.txt", []byte(goodDatabase), Options{Refresh: true})
	if third.CacheHit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestAnalyzeCorruptCacheEntry(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	r := newTestRunner(mc)

	key := r.Keyer.ReportKey(cache.Hash([]byte(goodDatabase)))
	mc.data[key] = []byte("garbage")

	res, err := r.Analyze(ctx, "a.txt", []byte(goodDatabase), Options{})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if res.CacheHit {
		t.Error("corrupt entry should be treated as a miss")
	}
}

func TestAnalyzeNaNSurvivesCache(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(newMemCache())

	_, _ = r.Analyze(ctx, "zero", []byte("0\n"), Options{})
	res, err := r.Analyze(ctx, "zero", []byte("0\n"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.CacheHit || !res.Report.AvgTxsDepth.IsNaN() {
		t.Errorf("hit %v, AvgTxsDepth %v; want cached NaN", res.CacheHit, res.Report.AvgTxsDepth)
	}
}

func TestAnalyzeErrorsAreClassified(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(nil)

	tests := []struct {
		name  string
		input string
		code  errors.Code
	}{
		{"empty", "", errors.ErrCodeInvalidFormat},
		{"cycle", "1\n2 1 0\n", errors.ErrCodeCycle},
		{"trailing", "1\n1 1 0\nmore\n", errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Analyze(ctx, tt.name, []byte(tt.input), Options{})
			if !errors.Is(err, tt.code) {
				t.Errorf("Analyze() error = %v, want code %v", err, tt.code)
			}
		})
	}
}

func TestAnalyzeFile(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(nil)

	path := filepath.Join(t.TempDir(), "ledger.txt")
	if err := os.WriteFile(path, []byte(goodDatabase), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := r.AnalyzeFile(ctx, path, Options{})
	if err != nil {
		t.Fatalf("AnalyzeFile() error: %v", err)
	}
	if res.Report.Source != path {
		t.Errorf("Source = %q, want %q", res.Report.Source, path)
	}

	_, err = r.AnalyzeFile(ctx, filepath.Join(t.TempDir(), "missing.txt"), Options{})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadFile(t *testing.T) {
	r := newTestRunner(nil)
	path := filepath.Join(t.TempDir(), "ledger.txt")
	_ = os.WriteFile(path, []byte(goodDatabase), 0o644)

	g, err := r.LoadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if g.Len() != 6 {
		t.Errorf("Len() = %d, want 6", g.Len())
	}
}
