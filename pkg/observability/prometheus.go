package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "tanglestat"

// PromHooks records every event as Prometheus metrics.
type PromHooks struct {
	parses         *prometheus.CounterVec
	parseDuration  prometheus.Histogram
	transactions   prometheus.Histogram
	analyses       prometheus.Histogram
	cacheEvents    *prometheus.CounterVec
	cacheBytes     prometheus.Counter
	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	inFlight       prometheus.Gauge
}

// NewPromHooks creates the metrics and registers them with reg.
func NewPromHooks(reg prometheus.Registerer) (*PromHooks, error) {
	h := &PromHooks{
		parses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "parses_total",
			Help:      "Tangle descriptions parsed, by result.",
		}, []string{"result"}),
		parseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "parse_duration_seconds",
			Help:      "Time spent parsing and validating a tangle.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		transactions: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "parsed_transactions",
			Help:      "Transactions per successfully parsed tangle, origin included.",
			Buckets:   prometheus.ExponentialBuckets(1, 10, 7),
		}),
		analyses: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "analyze_duration_seconds",
			Help:      "Time from input to finished report on cache misses.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cache_events_total",
			Help:      "Report cache lookups and writes, by key type and event.",
		}, []string{"type", "event"}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the report cache.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method, route and status.",
		}, []string{"method", "path", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),
	}

	for _, c := range []prometheus.Collector{
		h.parses, h.parseDuration, h.transactions, h.analyses,
		h.cacheEvents, h.cacheBytes, h.requests, h.requestLatency, h.inFlight,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *PromHooks) OnParseStart(context.Context, string, int) {}

func (h *PromHooks) OnParseComplete(_ context.Context, _ string, txCount int, d time.Duration, err error) {
	h.parseDuration.Observe(d.Seconds())
	if err != nil {
		h.parses.WithLabelValues("error").Inc()
		return
	}
	h.parses.WithLabelValues("ok").Inc()
	h.transactions.Observe(float64(txCount))
}

func (h *PromHooks) OnAnalyzeComplete(_ context.Context, _ string, d time.Duration) {
	h.analyses.Observe(d.Seconds())
}

func (h *PromHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h *PromHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h *PromHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheEvents.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.Add(float64(size))
}

func (h *PromHooks) OnRequest(context.Context, string, string) {
	h.inFlight.Inc()
}

// OnResponse expects path to be a route pattern, not a raw URL, to keep
// label cardinality bounded.
func (h *PromHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.inFlight.Dec()
	h.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	h.requestLatency.WithLabelValues(method, path).Observe(d.Seconds())
}

var _ Hooks = (*PromHooks)(nil)
