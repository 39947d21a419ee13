// Package cache stores rendered artifacts keyed by the graph that produced
// them.
//
// Graphviz layout dominates the cost of a CLI run, so the pipeline caches
// SVG, PNG and PDF bytes under a key derived from the DOT fingerprint and the
// output format. Identical DOT text always lays out identically, so entries
// never need invalidating; the TTL only bounds disk use.
//
//	c, _ := cache.NewFileCache(dir)
//	key := cache.ArtifactKey(fingerprint, "svg")
//	if data, hit, _ := c.Get(ctx, key); hit { ... }
package cache

import (
	"context"
	"time"
)

// TTLArtifact is how long rendered artifacts are kept.
const TTLArtifact = 7 * 24 * time.Hour

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the data for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// ArtifactKey returns the cache key for a DOT fingerprint rendered in format.
func ArtifactKey(fingerprint, format string) string {
	return "artifact:" + format + ":" + fingerprint
}
