package cache

// ScopedKeyer wraps a Keyer with a prefix, isolating tenants that share one
// cache backend.
//
//	keys := NewScopedKeyer(NewDefaultKeyer(), "tenant:acme:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// SnapshotKey generates a prefixed key for snapshot caching.
func (k *ScopedKeyer) SnapshotKey(tenant, runID string) string {
	return k.prefix + k.inner.SnapshotKey(tenant, runID)
}

// ViewKey generates a prefixed key for view caching.
func (k *ScopedKeyer) ViewKey(snapshotHash string, opts ViewKeyOpts) string {
	return k.prefix + k.inner.ViewKey(snapshotHash, opts)
}
