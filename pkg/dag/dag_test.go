package dag

import (
	"errors"
	"slices"
	"testing"
)

func build(t *testing.T, rows map[string]int, order []string, edges [][2]string) *DAG {
	t.Helper()
	g := New()
	for _, id := range order {
		if err := g.AddNode(Node{ID: id, Row: rows[id]}); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(Edge{From: e[0], To: e[1]}); err != nil {
			t.Fatalf("AddEdge(%s, %s): %v", e[0], e[1], err)
		}
	}
	return g
}

func TestAddNodeErrors(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty) = %v, want %v", err, ErrInvalidNodeID)
	}
	_ = g.AddNode(Node{ID: "a"})
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(dup) = %v, want %v", err, ErrDuplicateNodeID)
	}
}

func TestAddEdgeErrors(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: "a"})
	if err := g.AddEdge(Edge{From: "x", To: "a"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("AddEdge(unknown from) = %v", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "x"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("AddEdge(unknown to) = %v", err)
	}
}

func TestNodesInRowInsertionOrder(t *testing.T) {
	order := []string{"d", "b", "a", "c"}
	g := build(t, map[string]int{"c": 1}, order, [][2]string{{"a", "c"}})

	if got := NodeIDs(g.NodesInRow(0)); !slices.Equal(got, []string{"d", "b", "a"}) {
		t.Errorf("NodesInRow(0) = %v", got)
	}
	if got := g.RowIDs(); !slices.Equal(got, []int{0, 1}) {
		t.Errorf("RowIDs() = %v", got)
	}
	if n, _ := g.Node("c"); n.Row != 1 {
		t.Errorf("c.Row = %d, want 1", n.Row)
	}
}

func TestSetRowOrder(t *testing.T) {
	g := build(t, nil, []string{"a", "b", "c", "d"}, nil)
	g.SetRowOrder(0, []string{"c", "a", "zz"})

	want := []string{"c", "a", "b", "d"}
	if got := NodeIDs(g.NodesInRow(0)); !slices.Equal(got, want) {
		t.Errorf("NodesInRow(0) = %v, want %v", got, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		rows  map[string]int
		edges [][2]string
		want  error
	}{
		{"layered", map[string]int{"a": 0, "b": 1, "c": 3}, [][2]string{{"a", "b"}, {"a", "c"}}, nil},
		{"same row", map[string]int{"a": 0, "b": 0}, [][2]string{{"a", "b"}}, ErrBackwardEdge},
		{"backward", map[string]int{"a": 1, "b": 0}, [][2]string{{"a", "b"}}, ErrBackwardEdge},
		{"cycle", map[string]int{"a": 0, "b": 1}, [][2]string{{"a", "b"}, {"b", "a"}}, ErrBackwardEdge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, tt.rows, []string{"a", "b", "c"}, tt.edges)
			if err := g.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDetectCycles(t *testing.T) {
	g := build(t, nil, []string{"a", "b"}, [][2]string{{"a", "b"}, {"b", "a"}})
	if err := g.detectCycles(); !errors.Is(err, ErrGraphHasCycle) {
		t.Errorf("detectCycles() = %v, want %v", err, ErrGraphHasCycle)
	}
}

func TestParentsAndChildren(t *testing.T) {
	g := build(t, map[string]int{"c": 1}, []string{"b", "a", "c"}, [][2]string{{"a", "c"}, {"b", "c"}})
	if !slices.Equal(g.Parents("c"), []string{"a", "b"}) {
		t.Errorf("Parents(c) = %v", g.Parents("c"))
	}
	if !slices.Equal(g.Children("a"), []string{"c"}) {
		t.Errorf("Children(a) = %v", g.Children("a"))
	}
}

func TestCountLayerCrossings(t *testing.T) {
	g := build(t, map[string]int{"x": 1, "y": 1}, []string{"a", "b", "x", "y"},
		[][2]string{{"a", "y"}, {"b", "x"}})

	if got := CountLayerCrossings(g, []string{"a", "b"}, []string{"x", "y"}); got != 1 {
		t.Errorf("crossings = %d, want 1", got)
	}
	if got := CountLayerCrossings(g, []string{"b", "a"}, []string{"x", "y"}); got != 0 {
		t.Errorf("crossings after reorder = %d, want 0", got)
	}
	if got := CountLayerCrossings(g, nil, []string{"x"}); got != 0 {
		t.Errorf("crossings with empty row = %d, want 0", got)
	}
}

func TestReduceCrossings(t *testing.T) {
	g := build(t, map[string]int{"x": 1, "y": 1}, []string{"a", "b", "x", "y"},
		[][2]string{{"a", "y"}, {"b", "x"}})

	if before := CountCrossings(g); before != 1 {
		t.Fatalf("CountCrossings() = %d, want 1", before)
	}
	if got := ReduceCrossings(g, 4); got != 0 {
		t.Errorf("ReduceCrossings() = %d, want 0", got)
	}
	if got := CountCrossings(g); got != 0 {
		t.Errorf("CountCrossings() after reduce = %d, want 0", got)
	}
}

func TestReduceCrossingsKeepsPlanarOrder(t *testing.T) {
	g := build(t, map[string]int{"x": 1, "y": 1}, []string{"a", "b", "x", "y"},
		[][2]string{{"a", "x"}, {"b", "y"}})

	ReduceCrossings(g, 4)
	if got := NodeIDs(g.NodesInRow(1)); !slices.Equal(got, []string{"x", "y"}) {
		t.Errorf("NodesInRow(1) = %v, want unchanged", got)
	}
}
