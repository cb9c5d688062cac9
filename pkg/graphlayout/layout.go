package graphlayout

import (
	"context"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/runshape/pkg/errors"
	"github.com/matzehuels/runshape/pkg/observability"
	"github.com/matzehuels/runshape/pkg/run"
)

// NewGraph builds the unpositioned graph of a run. It returns the number of
// shape edges dropped because an endpoint is not a node.
func NewGraph(tasks []run.Task, shape []run.ShapeEdge, size Size) (Graph, int) {
	g := Graph{
		Nodes: make([]Node, 0, len(tasks)),
		Edges: []Edge{},
	}

	nodes := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if t.ExternalID == "" || nodes[t.ExternalID] {
			continue
		}
		nodes[t.ExternalID] = true
		g.Nodes = append(g.Nodes, Node{ID: t.ExternalID, Size: size, Payload: t})
	}

	dropped := 0
	pairs := make(map[[2]string]bool)
	ids := make(map[string]int)
	for _, e := range shape {
		for _, c := range e.Children {
			pair := [2]string{e.Parent, c}
			if pairs[pair] {
				continue
			}
			pairs[pair] = true
			if !nodes[e.Parent] || !nodes[c] {
				dropped++
				continue
			}
			// "a-b"→"c" and "a"→"b-c" format alike; later ones get a suffix.
			id := EdgeID(e.Parent, c)
			if n := ids[id]; n > 0 {
				ids[id]++
				id = id + "#" + strconv.Itoa(n)
			} else {
				ids[id] = 1
			}
			g.Edges = append(g.Edges, Edge{ID: id, Source: e.Parent, Target: c})
		}
	}
	return g, dropped
}

// Build lays out the full graph of a run. It returns nil when tasks or shape
// are empty, meaning there is nothing to render yet.
func Build(ctx context.Context, tasks []run.Task, shape []run.ShapeEdge, opts Options) (*Layout, error) {
	if len(tasks) == 0 || len(shape) == 0 {
		return nil, nil
	}
	opts = opts.withDefaults()
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	g, dropped := NewGraph(tasks, shape, Size{Width: opts.NodeWidth, Height: opts.NodeHeight})
	if dropped > 0 {
		logger.Debug("dropped dangling edges", "count", dropped)
	}

	layouter, engine, err := layouterFor(opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	centres, err := layouter.Layout(ctx, g)
	observability.Layout().OnGraphLayout(ctx, engine, len(g.Nodes), time.Since(start), err)
	if err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "%s layout", engine)
	}

	out := &Layout{
		Nodes:        g.Nodes,
		Edges:        g.Edges,
		Engine:       engine,
		DroppedEdges: dropped,
	}
	for i := range out.Nodes {
		n := &out.Nodes[i]
		c, ok := centres[n.ID]
		if !ok {
			return nil, errors.New(errors.ErrCodeLayoutFailed, "%s layout: no position for node %q", engine, n.ID)
		}
		n.Position = Point{X: c.X - n.Size.Width/2, Y: c.Y - n.Size.Height/2}
		out.Width = math.Max(out.Width, n.Position.X+n.Size.Width)
		out.Height = math.Max(out.Height, n.Position.Y+n.Size.Height)
	}

	logger.Debug("graph layout", "engine", engine, "nodes", len(out.Nodes), "edges", len(out.Edges),
		"width", out.Width, "height", out.Height)
	return out, nil
}

func layouterFor(opts Options) (Layouter, string, error) {
	if opts.Layouter != nil {
		name := opts.Engine
		if n, ok := opts.Layouter.(interface{ Name() string }); ok {
			name = n.Name()
		}
		return opts.Layouter, name, nil
	}
	if opts.RankDir != RankDirLR && opts.RankDir != RankDirTB {
		return nil, "", errors.New(errors.ErrCodeInvalidInput, "unknown rank direction %q (want LR or TB)", opts.RankDir)
	}
	switch opts.Engine {
	case EngineGraphviz:
		return &GraphvizLayouter{RankDir: opts.RankDir, RankSep: opts.RankSep, NodeSep: opts.NodeSep}, EngineGraphviz, nil
	case EngineLayered:
		return &LayeredLayouter{RankDir: opts.RankDir, RankSep: opts.RankSep, NodeSep: opts.NodeSep}, EngineLayered, nil
	default:
		return nil, "", errors.New(errors.ErrCodeInvalidInput, "unknown layout engine %q (want graphviz or layered)", opts.Engine)
	}
}
