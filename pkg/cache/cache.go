// Package cache stores rendered artifacts keyed by snapshot content.
//
// Renders are pure functions of a snapshot's structure and the render
// options, so an unchanged graph polled twice renders from cache the second
// time. Keys come from a [Keyer]; values are opaque bytes.
//
// # Backends
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one JSON entry file per key, for the CLI
//   - [RedisCache]: shared cache for the HTTP server
//
// # Usage
//
//	c, _ := cache.NewFileCache(dir)
//	key := cache.NewDefaultKeyer().ArtifactKey(graph.Hash(s), cache.ArtifactKeyOpts{Format: "svg"})
//	if data, hit, _ := c.Get(ctx, key); hit {
//	    return data
//	}
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry type.
const (
	// TTLArtifact is the lifetime of a rendered artifact.
	TTLArtifact = 24 * time.Hour

	// TTLSnapshot is the lifetime of a serialized snapshot.
	TTLSnapshot = time.Hour
)

// Key types reported to observability hooks.
const (
	KeyTypeArtifact = "artifact"
	KeyTypeSnapshot = "snapshot"
)

// Cache is a byte store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A zero ttl means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// SnapshotKey keys a serialized capture by its content hash.
	SnapshotKey(snapshotHash string) string

	// ArtifactKey keys a rendered artifact by snapshot hash and render options.
	ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts holds every render option that changes the output bytes.
type ArtifactKeyOpts struct {
	Format        string  `json:"format"`
	ShowInspector bool    `json:"show_inspector,omitempty"`
	ShowLegend    bool    `json:"show_legend,omitempty"`
	Selected      int     `json:"selected,omitempty"`
	Title         string  `json:"title,omitempty"`
	Scale         float64 `json:"scale,omitempty"`
}

// DefaultKeyer hashes key components into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key derivation.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SnapshotKey returns "snapshot:<hash>".
func (DefaultKeyer) SnapshotKey(snapshotHash string) string {
	return "snapshot:" + snapshotHash
}

// ArtifactKey returns "artifact:<hash of snapshot hash and options>".
func (DefaultKeyer) ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string {
	return hashKey(KeyTypeArtifact, snapshotHash, opts)
}
