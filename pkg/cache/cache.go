// Package cache provides pluggable result caching for the map pipeline.
//
// Caching here is a politeness/performance optimization, never a
// correctness requirement: the geocoding and network data sources are
// public community services, and repeating identical queries against them
// is wasteful. Both the CLI (file backend) and the HTTP server (redis
// backend) share the same Cache interface, and a NullCache keeps every
// component testable without touching disk or network.
//
// Keys are produced by a Keyer so that the operation name and its
// serialized arguments fully determine the cache entry.
package cache

import (
	"context"
	"time"
)

// TTLs per operation. Geocode results are stable for a day; network
// extracts change more often as OpenStreetMap is edited.
const (
	TTLGeocode = 24 * time.Hour
	TTLNetwork = time.Hour
)

// Cache is the interface implemented by all cache backends.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value by key. The bool reports whether the key was
	// found and fresh; expired or missing entries are a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value under key. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}
