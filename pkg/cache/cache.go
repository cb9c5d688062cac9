// Package cache provides byte caches for fetched run data and computed views.
//
// # Backends
//
//   - [FileCache] stores entries as JSON files, for the CLI.
//   - [RedisCache] stores entries in Redis, for servers sharing a cache.
//   - [NullCache] never stores anything.
//
// # Keys
//
// A [Keyer] builds every key so the layout of the key space lives in one
// place. [ScopedKeyer] prefixes keys with a tenant scope.
//
// # Retries
//
// [RetryWithBackoff] retries functions whose errors are wrapped with
// [Retryable]; other errors stop immediately.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional TTL.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys.
type Keyer interface {
	// HTTPKey is the key of a raw HTTP response body.
	HTTPKey(namespace, key string) string

	// SnapshotKey is the key of a decoded run snapshot.
	SnapshotKey(tenant, runID string) string

	// ViewKey is the key of a computed view of a snapshot.
	ViewKey(snapshotHash string, opts ViewKeyOpts) string
}

// ViewKeyOpts are the inputs besides the snapshot that change a view.
type ViewKeyOpts struct {
	Mode       string  `json:"mode"`
	Engine     string  `json:"engine,omitempty"`
	RankDir    string  `json:"rankdir,omitempty"`
	NodeWidth  float64 `json:"node_width,omitempty"`
	NodeHeight float64 `json:"node_height,omitempty"`
	RankSep    float64 `json:"rank_sep,omitempty"`
	NodeSep    float64 `json:"node_sep,omitempty"`
}

// DefaultKeyer is the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// SnapshotKey returns "snapshot:<tenant>:<run>".
func (DefaultKeyer) SnapshotKey(tenant, runID string) string {
	return "snapshot:" + tenant + ":" + runID
}

// ViewKey hashes the snapshot hash together with the options.
func (DefaultKeyer) ViewKey(snapshotHash string, opts ViewKeyOpts) string {
	return hashKey("view", snapshotHash, opts)
}
