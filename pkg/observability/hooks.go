// Package observability provides hooks for metrics around ingestion runs.
//
// Components receive hooks explicitly (there is no global registry): the
// ingestion runner takes [IngestHooks], the HTTP client takes [CacheHooks]
// and [HTTPHooks]. The no-op implementations are the defaults, and
// [PrometheusHooks] implements all three for export as a node_exporter
// textfile after a run.
//
//	hooks := observability.NewPrometheusHooks()
//	runner := ingest.NewRunner(feed, client, store, ingest.WithHooks(hooks))
//	// ... run ...
//	_ = hooks.WriteTextfile("/var/lib/node_exporter/pydigger.prom")
package observability

import (
	"context"
	"time"
)

// =============================================================================
// Ingestion Hooks
// =============================================================================

// IngestHooks receives events from an ingestion run.
type IngestHooks interface {
	// OnRunStart is called once the feed has been read.
	OnRunStart(ctx context.Context, runID string, entries int)

	// OnEntry is called once per visited feed entry with its outcome name.
	OnEntry(ctx context.Context, name, outcome string, duration time.Duration)

	// OnFetch records a metadata fetch.
	OnFetch(ctx context.Context, name string, duration time.Duration, err error)

	// OnProbe records a repository probe for a host kind ("github", "gitlab", ...).
	OnProbe(ctx context.Context, host string, duration time.Duration, err error)

	// OnRunComplete is called when the run finishes.
	OnRunComplete(ctx context.Context, runID string, visited int, duration time.Duration)
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
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopIngestHooks is a no-op implementation of IngestHooks.
type NoopIngestHooks struct{}

func (NoopIngestHooks) OnRunStart(context.Context, string, int)                   {}
func (NoopIngestHooks) OnEntry(context.Context, string, string, time.Duration)    {}
func (NoopIngestHooks) OnFetch(context.Context, string, time.Duration, error)     {}
func (NoopIngestHooks) OnProbe(context.Context, string, time.Duration, error)     {}
func (NoopIngestHooks) OnRunComplete(context.Context, string, int, time.Duration) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}
