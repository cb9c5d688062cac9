package view

import (
	"context"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/matzehuels/runshape/pkg/cache"
	"github.com/matzehuels/runshape/pkg/run"
)

// DefaultMemoSize is the number of views a [Memo] keeps by default.
const DefaultMemoSize = 128

// Memo caches built views by snapshot content and request options.
// It is safe for concurrent use.
type Memo struct {
	views  *lru.Cache[string, *View]
	keyer  cache.Keyer
	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemo creates a memo holding up to size views. A nil keyer means
// [cache.DefaultKeyer].
func NewMemo(size int, keyer cache.Keyer) (*Memo, error) {
	if size <= 0 {
		size = DefaultMemoSize
	}
	views, err := lru.New[string, *View](size)
	if err != nil {
		return nil, err
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Memo{views: views, keyer: keyer}, nil
}

// Build returns the memoized view for the query, building it on a miss.
// Errors are not cached. The returned view is a copy carrying the request's
// OnClick. Requests with a custom Layouter are never memoized.
func (m *Memo) Build(ctx context.Context, q run.Query, req Request) (*View, error) {
	snap, ok := q.Snapshot()
	if !ok {
		return nil, nil
	}
	if req.Layout.Layouter != nil {
		m.misses.Add(1)
		return Build(ctx, q, req)
	}
	key, err := m.key(snap, req)
	if err != nil {
		return nil, err
	}

	if v, ok := m.views.Get(key); ok {
		m.hits.Add(1)
		return withClick(v, req.OnClick), nil
	}
	m.misses.Add(1)

	v, err := Build(ctx, q, req)
	if err != nil || v == nil {
		return v, err
	}
	m.views.Add(key, withClick(v, nil))
	return v, nil
}

func (m *Memo) key(snap *run.Snapshot, req Request) (string, error) {
	hash, err := cache.HashJSON(snap)
	if err != nil {
		return "", err
	}
	mode := req.Mode
	if mode == "" {
		mode = DefaultMode
	}
	return m.keyer.ViewKey(hash, cache.ViewKeyOpts{
		Mode:       string(mode),
		Engine:     req.Layout.Engine,
		RankDir:    req.Layout.RankDir,
		NodeWidth:  req.Layout.NodeWidth,
		NodeHeight: req.Layout.NodeHeight,
		RankSep:    req.Layout.RankSep,
		NodeSep:    req.Layout.NodeSep,
	}), nil
}

func withClick(v *View, onClick func(string)) *View {
	cp := *v
	cp.OnClick = onClick
	return &cp
}

// Stats returns the hit and miss counts.
func (m *Memo) Stats() (hits, misses int64) {
	return m.hits.Load(), m.misses.Load()
}

// Len returns the number of cached views.
func (m *Memo) Len() int { return m.views.Len() }

// Purge drops every cached view.
func (m *Memo) Purge() { m.views.Purge() }
