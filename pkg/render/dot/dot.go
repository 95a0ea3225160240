// Package dot converts snapshots to Graphviz DOT and renders them through
// Graphviz.
//
// Positions come from the snapshot's own layout: every node carries a pinned
// pos attribute and the graph is laid out with neato, which keeps pinned
// nodes in place and only routes edges. The picture therefore matches the
// SVG renderer's node placement.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/blendview/pkg/errors"
	"github.com/matzehuels/blendview/pkg/graph"
	"github.com/matzehuels/blendview/pkg/render"
)

const pointsPerInch = 72.0

// ToDOT converts s to DOT. Node positions are given in points with the y
// axis flipped, since Graphviz puts the origin at the bottom left.
func ToDOT(s *graph.Snapshot, opts render.Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  label=%q;\n", opts.TitleFor(s))
	buf.WriteString("  labelloc=t;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  notranslate=true;\n")
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontcolor=white, fixedsize=true];\n")
	buf.WriteString("\n")

	if !s.Normal() {
		msg := s.Message
		if msg == "" {
			msg = s.State
		}
		fmt.Fprintf(&buf, "  status [shape=plaintext, style=\"\", fontcolor=\"#666666\", fixedsize=false, label=%q];\n", msg)
		buf.WriteString("}\n")
		return buf.String()
	}

	for _, n := range s.Nodes {
		fmt.Fprintf(&buf, "  n%d [%s];\n", n.ID, strings.Join(nodeAttrs(s, n, opts), ", "))
	}
	buf.WriteString("\n")
	for _, e := range s.Edges {
		fmt.Fprintf(&buf, "  n%d -> n%d [penwidth=%.2f, label=\"%.2f\"];\n", e.From, e.To, 1+3*e.Weight, e.Weight)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(s *graph.Snapshot, n graph.Node, opts render.Options) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", n.DisplayLabel()),
		fmt.Sprintf("fillcolor=%q", render.KindColor(n.Kind)),
		fmt.Sprintf("pos=\"%.1f,%.1f!\"", n.Rect.CenterX(), s.Height-n.Rect.CenterY()),
		fmt.Sprintf("width=%.3f", n.Rect.W/pointsPerInch),
		fmt.Sprintf("height=%.3f", n.Rect.H/pointsPerInch),
		fmt.Sprintf("tooltip=%q", fmt.Sprintf("%s (%s) weight %.2f", n.DisplayLabel(), n.Kind, n.Weight)),
	}
	if n.ID == opts.Selected {
		attrs = append(attrs, "penwidth=3")
	}
	return attrs
}

// RenderSVG lays out and renders s as SVG.
func RenderSVG(ctx context.Context, s *graph.Snapshot, opts render.Options) ([]byte, error) {
	return renderFormat(ctx, s, opts, graphviz.SVG)
}

// RenderPNG lays out and renders s as PNG. opts.Scale multiplies the
// resolution.
func RenderPNG(ctx context.Context, s *graph.Snapshot, opts render.Options) ([]byte, error) {
	return renderFormat(ctx, s, opts, graphviz.PNG)
}

func renderFormat(ctx context.Context, s *graph.Snapshot, opts render.Options, format graphviz.Format) ([]byte, error) {
	if s == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nil snapshot")
	}
	src := ToDOT(s, opts)
	if format == graphviz.PNG {
		src = strings.Replace(src, "digraph G {\n", fmt.Sprintf("digraph G {\n  dpi=%.0f;\n", 96*opts.RasterScale()), 1)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
