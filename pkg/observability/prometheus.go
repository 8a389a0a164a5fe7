package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pydigger"

// PrometheusHooks counts ingestion, cache and HTTP events in a private
// registry. It implements IngestHooks, CacheHooks and HTTPHooks.
type PrometheusHooks struct {
	registry *prometheus.Registry

	entries     *prometheus.CounterVec
	fetches     *prometheus.HistogramVec
	probes      *prometheus.CounterVec
	cache       *prometheus.CounterVec
	requests    *prometheus.CounterVec
	feedSize    prometheus.Gauge
	lastRun     prometheus.Gauge
	runDuration prometheus.Gauge
}

// NewPrometheusHooks creates hooks backed by a fresh registry.
func NewPrometheusHooks() *PrometheusHooks {
	p := &PrometheusHooks{registry: prometheus.NewRegistry()}

	p.entries = p.counterVec("ingest", "entries_total", "Feed entries visited, by outcome.", "outcome")
	p.fetches = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "fetch_duration_seconds",
		Help:      "Metadata fetch latency, by result.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"result"})
	p.registry.MustRegister(p.fetches)
	p.probes = p.counterVec("probe", "total", "Repository probes, by host kind and result.", "host", "result")
	p.cache = p.counterVec("cache", "events_total", "Metadata cache events.", "key_type", "event")
	p.requests = p.counterVec("http", "responses_total", "HTTP responses, by host and status code.", "host", "code")
	p.feedSize = p.gauge("ingest", "feed_entries", "Entries in the most recent feed.")
	p.lastRun = p.gauge("ingest", "last_run_timestamp_seconds", "Completion time of the most recent run.")
	p.runDuration = p.gauge("ingest", "last_run_duration_seconds", "Duration of the most recent run.")
	return p
}

func (p *PrometheusHooks) counterVec(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	m := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labels)
	p.registry.MustRegister(m)
	return m
}

func (p *PrometheusHooks) gauge(subsystem, name, help string) prometheus.Gauge {
	m := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	})
	p.registry.MustRegister(m)
	return m
}

// Registry returns the underlying registry.
func (p *PrometheusHooks) Registry() *prometheus.Registry { return p.registry }

// WriteTextfile writes all metrics in the text exposition format to path,
// atomically, for the node_exporter textfile collector.
func (p *PrometheusHooks) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, p.registry)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (p *PrometheusHooks) OnRunStart(_ context.Context, _ string, entries int) {
	p.feedSize.Set(float64(entries))
}

func (p *PrometheusHooks) OnEntry(_ context.Context, _ string, outcome string, _ time.Duration) {
	p.entries.WithLabelValues(outcome).Inc()
}

func (p *PrometheusHooks) OnFetch(_ context.Context, _ string, d time.Duration, err error) {
	p.fetches.WithLabelValues(result(err)).Observe(d.Seconds())
}

func (p *PrometheusHooks) OnProbe(_ context.Context, host string, _ time.Duration, err error) {
	p.probes.WithLabelValues(host, result(err)).Inc()
}

func (p *PrometheusHooks) OnRunComplete(_ context.Context, _ string, _ int, d time.Duration) {
	p.lastRun.SetToCurrentTime()
	p.runDuration.Set(d.Seconds())
}

func (p *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	p.cache.WithLabelValues(keyType, "hit").Inc()
}

func (p *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	p.cache.WithLabelValues(keyType, "miss").Inc()
}

func (p *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	p.cache.WithLabelValues(keyType, "set").Inc()
}

func (p *PrometheusHooks) OnResponse(_ context.Context, _ string, host string, code int, _ time.Duration) {
	p.requests.WithLabelValues(host, strconv.Itoa(code)).Inc()
}

func (p *PrometheusHooks) OnError(_ context.Context, _ string, host string, _ error) {
	p.requests.WithLabelValues(host, "error").Inc()
}

var (
	_ IngestHooks = (*PrometheusHooks)(nil)
	_ CacheHooks  = (*PrometheusHooks)(nil)
	_ HTTPHooks   = (*PrometheusHooks)(nil)
)
