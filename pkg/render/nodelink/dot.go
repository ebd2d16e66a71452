package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/intentgraph/pkg/core/forest"
	"github.com/matzehuels/intentgraph/pkg/core/layout"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Orientation picks the rank direction: top-to-bottom for Stacked,
	// left-to-right for Columnar.
	Orientation layout.Orientation
	// Detailed adds the node type and record comment to labels.
	Detailed bool
}

// tierStyle is the node styling per tier.
var tierStyle = map[forest.NodeType]string{
	forest.HighIntent: `shape=box, style="rounded,filled", fillcolor="#dbeafe", fontsize=22`,
	forest.LowIntent:  `shape=box, style="rounded,filled", fillcolor="#e0f2fe", fontsize=18`,
	forest.Record:     `shape=note, style=filled, fillcolor=white, fontsize=14`,
}

// ToDOT converts an intent forest to Graphviz DOT. Each tier is a cluster,
// confirmed nodes get a bold border and an edge is dashed unless both
// endpoints are confirmed. Output order follows node insertion order, so the same
// forest always yields the same DOT.
func ToDOT(f *forest.Forest, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if opts.Orientation == layout.Columnar {
		buf.WriteString("  rankdir=LR;\n")
	} else {
		buf.WriteString("  rankdir=TB;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	if f.Scenario != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", f.Scenario)
	}

	for _, t := range forest.NodeTypes {
		var members []*forest.Node
		for _, n := range f.Nodes() {
			if n.Type == t {
				members = append(members, n)
			}
		}
		if len(members) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "\n  subgraph %q {\n", "cluster_"+t.String())
		fmt.Fprintf(&buf, "    label=%q;\n    style=dashed;\n    color=lightgrey;\n", t.String())
		for _, n := range members {
			fmt.Fprintf(&buf, "    %s [%s];\n", nodeName(n.ID), strings.Join(fmtAttrs(n, opts.Detailed), ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, e := range f.Edges() {
		style := "dashed"
		if f.EdgeConfirmed(e) {
			style = "solid"
		}
		fmt.Fprintf(&buf, "  %s -> %s [style=%s];\n", nodeName(e.From), nodeName(e.To), style)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeName(id forest.NodeID) string {
	return "n" + strconv.Itoa(int(id))
}

func fmtLabel(n *forest.Node, detailed bool) string {
	if !detailed {
		return n.Label
	}
	parts := []string{n.Label, n.Type.String()}
	if n.Record != nil && n.Record.Comment != "" {
		parts = append(parts, n.Record.Comment)
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n *forest.Node, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, detailed)), tierStyle[n.Type]}
	if n.Confirmed {
		attrs = append(attrs, "penwidth=3")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
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

// normalizeViewBox rewrites the root tag so the SVG scales from its origin.
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
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
