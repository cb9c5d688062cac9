package graphlayout

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
)

// plainFormat is Graphviz's line-oriented text output: a graph line with the
// bounding box, one line per node with its centre, then edges. All values
// are in inches with the origin at the bottom left.
const plainFormat graphviz.Format = "plain"

// GraphvizLayouter lays out graphs with the Graphviz dot engine.
type GraphvizLayouter struct {
	RankDir string
	RankSep float64
	NodeSep float64
}

// Name implements the engine name lookup used by [Build].
func (l *GraphvizLayouter) Name() string { return EngineGraphviz }

// Layout runs dot over the graph and returns node centres with a top-left
// origin, in points.
func (l *GraphvizLayouter) Layout(ctx context.Context, g Graph) (map[string]Point, error) {
	if len(g.Nodes) == 0 {
		return map[string]Point{}, nil
	}
	dot := ToDOT(g, Options{RankDir: l.RankDir, RankSep: l.RankSep, NodeSep: l.NodeSep})

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	pg, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer pg.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, pg, plainFormat, &buf); err != nil {
		return nil, fmt.Errorf("render plain: %w", err)
	}

	byName, err := parsePlain(buf.Bytes())
	if err != nil {
		return nil, err
	}

	out := make(map[string]Point, len(g.Nodes))
	for i, n := range g.Nodes {
		p, ok := byName[dotName(i)]
		if !ok {
			return nil, fmt.Errorf("graphviz returned no position for %q", n.ID)
		}
		out[n.ID] = p
	}
	return out, nil
}

// parsePlain reads node centres from plain-format output, converting inches
// to points and flipping y so the origin is the top left.
func parsePlain(data []byte) (map[string]Point, error) {
	var height float64
	haveGraph := false
	points := make(map[string]Point)

	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "graph":
			if len(fields) < 4 {
				return nil, fmt.Errorf("plain output: short graph line %q", sc.Text())
			}
			h, err := strconv.ParseFloat(fields[3], 64)
			if err != nil {
				return nil, fmt.Errorf("plain output: graph height: %w", err)
			}
			height = h
			haveGraph = true
		case "node":
			if !haveGraph {
				return nil, fmt.Errorf("plain output: node before graph line")
			}
			if len(fields) < 4 {
				return nil, fmt.Errorf("plain output: short node line %q", sc.Text())
			}
			x, errX := strconv.ParseFloat(fields[2], 64)
			y, errY := strconv.ParseFloat(fields[3], 64)
			if errX != nil || errY != nil {
				return nil, fmt.Errorf("plain output: bad node position %q", sc.Text())
			}
			points[fields[1]] = Point{
				X: x * pointsPerInch,
				Y: (height - y) * pointsPerInch,
			}
		case "stop":
			return points, nil
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("plain output: %w", err)
	}
	return points, nil
}
