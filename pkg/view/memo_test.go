package view

import (
	"context"
	"testing"

	"github.com/matzehuels/runshape/pkg/graphlayout"
	"github.com/matzehuels/runshape/pkg/run"
)

func TestMemo(t *testing.T) {
	ctx := context.Background()
	m, err := NewMemo(4, nil)
	if err != nil {
		t.Fatal(err)
	}

	v1, err := m.Build(ctx, run.Ready(diamond()), Request{Mode: ModeMinimap})
	if err != nil {
		t.Fatal(err)
	}
	// equal content in a fresh snapshot hits
	v2, _ := m.Build(ctx, run.Ready(diamond()), Request{Mode: ModeMinimap})
	if hits, misses := m.Stats(); hits != 1 || misses != 1 {
		t.Errorf("Stats() = %d hits, %d misses; want 1, 1", hits, misses)
	}
	if v1.Columns != v2.Columns {
		t.Error("memo hit should reuse the built columns")
	}

	// a different mode misses
	_, _ = m.Build(ctx, run.Ready(diamond()), Request{Mode: ModeGraph, Layout: layered})
	// changed data misses
	changed := diamond()
	changed.Tasks[0].Status = run.StatusFailed
	_, _ = m.Build(ctx, run.Ready(changed), Request{Mode: ModeMinimap})

	if _, misses := m.Stats(); misses != 3 {
		t.Errorf("misses = %d, want 3", misses)
	}
	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3", m.Len())
	}

	m.Purge()
	if m.Len() != 0 {
		t.Errorf("Len() after Purge = %d", m.Len())
	}
}

func TestMemoOnClickNotCached(t *testing.T) {
	ctx := context.Background()
	m, _ := NewMemo(0, nil)

	var first, second string
	_, _ = m.Build(ctx, run.Ready(diamond()), Request{Mode: ModeMinimap, OnClick: func(id string) { first = id }})
	v, _ := m.Build(ctx, run.Ready(diamond()), Request{Mode: ModeMinimap, OnClick: func(id string) { second = id }})

	v.Click("2")
	if first != "" || second != "2" {
		t.Errorf("first = %q, second = %q; want the second callback only", first, second)
	}
}

func TestMemoNothingToRender(t *testing.T) {
	m, _ := NewMemo(1, nil)
	v, err := m.Build(context.Background(), run.Loading(), Request{})
	if v != nil || err != nil {
		t.Errorf("Build(loading) = %v, %v", v, err)
	}
	if _, misses := m.Stats(); misses != 0 {
		t.Error("loading queries should not count as misses")
	}
}

func TestMemoSpacingMisses(t *testing.T) {
	ctx := context.Background()
	m, _ := NewMemo(4, nil)

	tight := Request{Mode: ModeGraph, Layout: graphlayout.Options{Engine: graphlayout.EngineLayered, RankSep: 10}}
	wide := Request{Mode: ModeGraph, Layout: graphlayout.Options{Engine: graphlayout.EngineLayered, RankSep: 500}}

	small, err := m.Build(ctx, run.Ready(diamond()), tight)
	if err != nil {
		t.Fatal(err)
	}
	large, err := m.Build(ctx, run.Ready(diamond()), wide)
	if err != nil {
		t.Fatal(err)
	}
	fresh, err := Build(ctx, run.Ready(diamond()), wide)
	if err != nil {
		t.Fatal(err)
	}

	if large.Graph.Width != fresh.Graph.Width {
		t.Errorf("memoized width = %v, fresh build = %v", large.Graph.Width, fresh.Graph.Width)
	}
	if small.Graph.Width >= large.Graph.Width {
		t.Errorf("rank_sep 10 width %v should be below rank_sep 500 width %v", small.Graph.Width, large.Graph.Width)
	}

	m.Build(ctx, run.Ready(diamond()), Request{Mode: ModeGraph, Layout: graphlayout.Options{Engine: graphlayout.EngineLayered, NodeSep: 90}})
	if hits, misses := m.Stats(); hits != 0 || misses != 3 {
		t.Errorf("Stats() = %d hits, %d misses; want 0, 3", hits, misses)
	}
}

type columnLayouter struct{ step float64 }

func (l columnLayouter) Layout(_ context.Context, g graphlayout.Graph) (map[string]graphlayout.Point, error) {
	out := make(map[string]graphlayout.Point, len(g.Nodes))
	for i, n := range g.Nodes {
		out[n.ID] = graphlayout.Point{X: float64(i) * l.step, Y: 100}
	}
	return out, nil
}

func TestMemoSkipsCustomLayouter(t *testing.T) {
	ctx := context.Background()
	m, _ := NewMemo(4, nil)

	near, err := m.Build(ctx, run.Ready(diamond()), Request{Mode: ModeGraph, Layout: graphlayout.Options{Layouter: columnLayouter{step: 300}}})
	if err != nil {
		t.Fatal(err)
	}
	far, err := m.Build(ctx, run.Ready(diamond()), Request{Mode: ModeGraph, Layout: graphlayout.Options{Layouter: columnLayouter{step: 600}}})
	if err != nil {
		t.Fatal(err)
	}
	if near.Graph.Width == far.Graph.Width {
		t.Errorf("custom layouters shared a memoized layout of width %v", near.Graph.Width)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, custom layouter views should not be stored", m.Len())
	}
}
