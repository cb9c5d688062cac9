// Package dag provides a directed acyclic graph whose nodes are indexed by
// column, used to place workflow-run tasks in layered layouts.
//
// # Overview
//
// Nodes carry a Row, which in runshape is the task's layering column. Rows
// keep a left-to-right order that layouters read to assign the cross-axis
// position of each task. Node, row and source iteration follow insertion
// order so the same input always yields the same picture.
//
// Edges may span several rows: a task whose parents sit in columns 0 and 2
// is placed in column 3, leaving a two-column edge from the first parent.
//
// # Basic Usage
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "extract", Row: 0})
//	g.AddNode(dag.Node{ID: "load", Row: 1})
//	g.AddEdge(dag.Edge{From: "extract", To: "load"})
//
// # Edge Crossings
//
// [CountLayerCrossings] counts crossings between two adjacent rows with a
// Fenwick tree in O(E log V). [ReduceCrossings] runs barycenter sweeps over
// the rows and keeps an ordering only when it lowers the crossing count.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use.
package dag
