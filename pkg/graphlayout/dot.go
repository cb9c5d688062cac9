package graphlayout

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/runshape/pkg/run"
)

const pointsPerInch = 72.0

var statusFill = map[run.Status]string{
	run.StatusQueued:    "#f1f5f9",
	run.StatusRunning:   "#dbeafe",
	run.StatusCompleted: "#dcfce7",
	run.StatusCancelled: "#fef9c3",
	run.StatusFailed:    "#fee2e2",
}

// dotName is the Graphviz node name of the i-th node. Plain names keep the
// plain-format output free of quoting.
func dotName(i int) string { return "n" + strconv.Itoa(i) }

// ToDOT converts a graph to Graphviz DOT source. Nodes have a fixed size
// taken from each node's Size, and carry the task id as their SVG id.
func ToDOT(g Graph, opts Options) string {
	opts = opts.withDefaults()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", opts.RankDir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(opts.RankSep))
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(opts.NodeSep))
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fixedsize=true, fontsize=14];\n")
	buf.WriteString("\n")

	names := make(map[string]string, len(g.Nodes))
	for i, n := range g.Nodes {
		name := dotName(i)
		names[n.ID] = name
		fill := statusFill[n.Payload.Status]
		if fill == "" {
			fill = "white"
		}
		fmt.Fprintf(&buf, "  %s [id=%q, label=%q, width=%s, height=%s, fillcolor=%q];\n",
			name, n.ID, nodeLabel(n.Payload), inches(n.Size.Width), inches(n.Size.Height), fill)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		from, okF := names[e.Source]
		to, okT := names[e.Target]
		if !okF || !okT {
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s [id=%q];\n", from, to, e.ID)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(t run.Task) string {
	if t.Status == "" {
		return t.Label()
	}
	return t.Label() + "\n" + string(t.Status)
}

func inches(points float64) string {
	return strconv.FormatFloat(points/pointsPerInch, 'f', 4, 64)
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg tag so the drawing scales with its
// container instead of Graphviz's fixed pt dimensions.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
