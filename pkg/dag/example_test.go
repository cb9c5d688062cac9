package dag_test

import (
	"fmt"

	"github.com/matzehuels/runshape/pkg/dag"
)

func ExampleDAG() {
	g := dag.New()
	_ = g.AddNode(dag.Node{ID: "extract", Row: 0})
	_ = g.AddNode(dag.Node{ID: "transform", Row: 1})
	_ = g.AddNode(dag.Node{ID: "load", Row: 2})
	_ = g.AddEdge(dag.Edge{From: "extract", To: "transform"})
	_ = g.AddEdge(dag.Edge{From: "transform", To: "load"})

	fmt.Println("Row 1:", dag.NodeIDs(g.NodesInRow(1)))
	fmt.Println("Rows:", g.RowIDs())
	fmt.Println("Valid:", g.Validate() == nil)
	// Output:
	// Row 1: [transform]
	// Rows: [0 1 2]
	// Valid: true
}

func ExampleReduceCrossings() {
	g := dag.New()
	_ = g.AddNode(dag.Node{ID: "a", Row: 0})
	_ = g.AddNode(dag.Node{ID: "b", Row: 0})
	_ = g.AddNode(dag.Node{ID: "x", Row: 1})
	_ = g.AddNode(dag.Node{ID: "y", Row: 1})
	_ = g.AddEdge(dag.Edge{From: "a", To: "y"})
	_ = g.AddEdge(dag.Edge{From: "b", To: "x"})

	fmt.Println("Before:", dag.CountCrossings(g))
	fmt.Println("After:", dag.ReduceCrossings(g, 4))
	fmt.Println("Row 1:", dag.NodeIDs(g.NodesInRow(1)))
	// Output:
	// Before: 1
	// After: 0
	// Row 1: [y x]
}
