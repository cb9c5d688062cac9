package cache

import (
	"context"
	"time"

	"github.com/matzehuels/runshape/pkg/observability"
)

// Observed reports hits, misses and writes of a cache to the registered
// cache hooks under keyType.
type Observed struct {
	Cache
	keyType string
}

// NewObserved wraps c.
func NewObserved(c Cache, keyType string) *Observed {
	return &Observed{Cache: c, keyType: keyType}
}

// Get retrieves a value and records a hit or miss.
func (o *Observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := o.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, o.keyType)
		} else {
			observability.Cache().OnCacheMiss(ctx, o.keyType)
		}
	}
	return data, ok, err
}

// Set stores a value and records its size.
func (o *Observed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := o.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, o.keyType, len(data))
	return nil
}
