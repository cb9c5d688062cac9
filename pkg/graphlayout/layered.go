package graphlayout

import (
	"context"
	"fmt"
	"math"

	"github.com/matzehuels/runshape/pkg/dag"
	"github.com/matzehuels/runshape/pkg/layering"
	"github.com/matzehuels/runshape/pkg/relationship"
	"github.com/matzehuels/runshape/pkg/run"
)

// defaultSweeps bounds the barycenter sweeps per layout.
const defaultSweeps = 8

// LayeredLayouter places nodes on layering columns and orders each column
// with barycenter sweeps. Nodes the layering cannot place (cycles) go into
// one extra column after the last.
type LayeredLayouter struct {
	RankDir string
	RankSep float64
	NodeSep float64
	// Sweeps bounds crossing reduction; zero means a small default.
	Sweeps int
}

// Name implements the engine name lookup used by [Build].
func (l *LayeredLayouter) Name() string { return EngineLayered }

// Layout returns node centres with a top-left origin, in points.
func (l *LayeredLayouter) Layout(_ context.Context, g Graph) (map[string]Point, error) {
	out := make(map[string]Point, len(g.Nodes))
	if len(g.Nodes) == 0 {
		return out, nil
	}

	rankSep, nodeSep := l.RankSep, l.NodeSep
	if rankSep <= 0 {
		rankSep = DefaultRankSep
	}
	if nodeSep <= 0 {
		nodeSep = DefaultNodeSep
	}
	sweeps := l.Sweeps
	if sweeps <= 0 {
		sweeps = defaultSweeps
	}

	tasks := make([]run.Task, len(g.Nodes))
	for i, n := range g.Nodes {
		tasks[i] = run.Task{ID: n.ID, ExternalID: n.ID}
	}
	shape := make([]run.ShapeEdge, len(g.Edges))
	for i, e := range g.Edges {
		shape[i] = run.ShapeEdge{Parent: e.Source, Children: []string{e.Target}}
	}
	res := layering.Assign(tasks, relationship.Resolve(tasks, shape))

	d := dag.New()
	extra := len(res.Columns)
	var cellW, cellH float64
	for _, n := range g.Nodes {
		row, ok := res.Rank(n.ID)
		if !ok {
			row = extra
		}
		// node ids are unique in a Graph built by NewGraph
		_ = d.AddNode(dag.Node{ID: n.ID, Row: row})
		cellW = math.Max(cellW, n.Size.Width)
		cellH = math.Max(cellH, n.Size.Height)
	}
	for _, e := range g.Edges {
		_, fromPlaced := res.Rank(e.Source)
		_, toPlaced := res.Rank(e.Target)
		// edges inside the unplaced column form the cycles and never span rows
		if !fromPlaced && !toPlaced {
			continue
		}
		_ = d.AddEdge(dag.Edge{From: e.Source, To: e.Target})
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("column assignment: %w", err)
	}
	dag.ReduceCrossings(d, sweeps)

	widest := 0
	for _, r := range d.RowIDs() {
		widest = max(widest, len(d.NodesInRow(r)))
	}

	// rank axis is x for LR and y for TB
	rankStep, slotStep := cellW+rankSep, cellH+nodeSep
	rankCell, slotCell := cellW, cellH
	if l.RankDir == RankDirTB {
		rankStep, slotStep = cellH+rankSep, cellW+nodeSep
		rankCell, slotCell = cellH, cellW
	}

	for _, r := range d.RowIDs() {
		nodes := d.NodesInRow(r)
		offset := float64(widest-len(nodes)) * slotStep / 2
		for i, n := range nodes {
			rank := float64(r)*rankStep + rankCell/2
			slot := offset + float64(i)*slotStep + slotCell/2
			if l.RankDir == RankDirTB {
				out[n.ID] = Point{X: slot, Y: rank}
			} else {
				out[n.ID] = Point{X: rank, Y: slot}
			}
		}
	}
	return out, nil
}
