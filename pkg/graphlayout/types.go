package graphlayout

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/runshape/pkg/run"
)

// Default node size in points.
const (
	NodeWidth  = 230
	NodeHeight = 70
)

// Default spacing in points between ranks and between nodes of one rank.
const (
	DefaultRankSep = 80
	DefaultNodeSep = 40
)

// Layout engines.
const (
	EngineGraphviz = "graphviz"
	EngineLayered  = "layered"
)

// Rank directions.
const (
	RankDirLR = "LR"
	RankDirTB = "TB"
)

// Point is a 2-D coordinate in points, with the origin at the top left.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Size is a node's width and height in points.
type Size struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Node is a positioned task. Position is the top-left corner.
type Node struct {
	ID       string   `json:"id" bson:"id"`
	Position Point    `json:"position" bson:"position"`
	Size     Size     `json:"size" bson:"size"`
	Payload  run.Task `json:"payload" bson:"payload"`
}

// Center returns the centre of the node's box.
func (n Node) Center() Point {
	return Point{X: n.Position.X + n.Size.Width/2, Y: n.Position.Y + n.Size.Height/2}
}

// Edge is a directed parent → child connection. ID is "parent-child", with a
// "#n" suffix when an earlier pair formatted to the same id.
type Edge struct {
	ID     string `json:"id" bson:"id"`
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
}

// EdgeID formats the id of the edge from parent to child.
func EdgeID(parent, child string) string { return parent + "-" + child }

// Graph is the unpositioned input handed to a [Layouter].
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// Layout is a positioned graph.
type Layout struct {
	Nodes  []Node  `json:"nodes" bson:"nodes"`
	Edges  []Edge  `json:"edges" bson:"edges"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	Engine string  `json:"engine" bson:"engine"`

	// DroppedEdges counts shape edges with an endpoint that is not a node.
	DroppedEdges int `json:"droppedEdges" bson:"dropped_edges"`
}

// Node returns the node with the given id.
func (l *Layout) Node(id string) (Node, bool) {
	if l == nil {
		return Node{}, false
	}
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Layouter computes the centre point of every node of a graph.
type Layouter interface {
	Layout(ctx context.Context, g Graph) (map[string]Point, error)
}

// Options configures [Build].
type Options struct {
	// Engine selects the layouter when Layouter is nil: "graphviz" (default)
	// or "layered".
	Engine string
	// RankDir is "LR" (default) or "TB".
	RankDir string

	NodeWidth  float64
	NodeHeight float64
	RankSep    float64
	NodeSep    float64

	// Layouter overrides Engine.
	Layouter Layouter
	// Logger receives debug output; nil discards it.
	Logger *log.Logger
}

// withDefaults fills zero fields with the package defaults.
func (o Options) withDefaults() Options {
	if o.Engine == "" {
		o.Engine = EngineGraphviz
	}
	if o.RankDir == "" {
		o.RankDir = RankDirLR
	}
	if o.NodeWidth <= 0 {
		o.NodeWidth = NodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = NodeHeight
	}
	if o.RankSep <= 0 {
		o.RankSep = DefaultRankSep
	}
	if o.NodeSep <= 0 {
		o.NodeSep = DefaultNodeSep
	}
	return o
}
