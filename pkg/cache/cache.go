// Package cache stores rendered artifacts so repeated exports of an
// unchanged diagram skip Graphviz.
//
// Two implementations are provided: [FileCache] keeps entries under a
// directory (the CLI uses ~/.cache/flowboard) and [NullCache] stores
// nothing. Keys are built by a [Keyer] from content hashes, so an entry is
// never stale: an edited diagram hashes to a different key.
package cache

import (
	"context"
	"time"
)

// Time-to-live for cached entries.
const (
	// TTLArtifact applies to rendered SVG/PDF/PNG output.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiration.
type Cache interface {
	// Get returns the entry for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes the entry for key. Deleting a missing key is not an
	// error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
