// Package cache stores validation reports so repeated submissions of the
// same pipeline can be answered without walking the graph again.
//
// The editor re-submits its whole canvas on every click of "Submit", and
// stress-test canvases can hold thousands of nodes, so identical payloads
// arrive often. [Cache] is a small byte-oriented interface with three
// backends:
//
//   - [NullCache]: caching disabled
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for one or more server replicas
//
// Keys are built by a [Keyer] so that every component namespaces entries the
// same way.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values by entry type.
const (
	// TTLReport is how long a validation report stays cached.
	TTLReport = 10 * time.Minute
)

// Cache is a key-value store with per-entry expiration.
//
// Get reports a miss as (nil, false, nil); an error means the backend itself
// failed. A ttl of zero asks Set to keep the entry until it is deleted or
// evicted. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
