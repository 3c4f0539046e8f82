// Package cache stores computed tangle reports keyed by input hash.
//
// Analyzing the same bytes twice always yields the same statistics, so the
// pipeline can skip parsing and traversal when a report for the input's
// SHA-256 is already cached. Backends:
//   - [NullCache]: caching disabled
//   - [MemoryCache]: in-process LRU for a single server
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for server deployments
//   - [MongoCache]: shared cache backed by a MongoDB collection
//
// Keys are produced by a [Keyer] so backends never see raw inputs.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiration.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is reported as hit == false with
	// a nil error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl <= 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
