// Package cache stores raw response bodies keyed by string.
//
// pydigger caches PyPI metadata documents for a specific name and version.
// Those documents are immutable once published, so a cache hit can always
// stand in for a fetch. Three backends exist:
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance, for runs on several hosts
//   - [NullCache]: caching disabled
//
// Keys are produced by a [Keyer] so that backends never see raw URLs.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored data and true, or nil and false on a miss.
	// Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
