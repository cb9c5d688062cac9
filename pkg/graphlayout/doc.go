// Package graphlayout builds the full node/edge view of a workflow run and
// positions it with a hierarchical layout engine.
//
// # Overview
//
// [Build] turns tasks and shape into a [Graph]: one node per task with a
// unique external id, one edge per parent/child pair. Every node gets the
// same fixed size ([NodeWidth] × [NodeHeight] unless overridden). A
// [Layouter] then computes a centre point per node, and Build re-anchors
// each node to its top-left corner:
//
//	position = centre - (width/2, height/2)
//
// Edges keep the direction given by the shape (parent → child). Edges whose
// parent or child is not a node are dropped and counted in
// [Layout.DroppedEdges]. When tasks or shape are empty there is nothing to
// render and Build returns a nil layout without error.
//
// # Engines
//
//   - [GraphvizLayouter] runs the Graphviz dot engine in-process through
//     go-graphviz. It renders the graph in Graphviz's plain text format and
//     reads node centres back, flipping the y axis to a top-left origin.
//   - [LayeredLayouter] places nodes on the columns computed by the layering
//     package and orders each column to reduce edge crossings. It needs no
//     Graphviz runtime and is the fallback engine.
//
// Both engines default to a left-to-right orientation, so children sit to
// the right of their parents.
//
// # DOT Output
//
// [ToDOT] exposes the Graphviz source for a graph, and [RenderSVG] renders it
// to SVG for the CLI.
package graphlayout
