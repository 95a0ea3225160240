// Package svg renders snapshots as standalone SVG documents.
//
// Nodes are drawn as rounded boxes filled by kind, edges as lines whose
// stroke width and opacity follow the input weight. Optional overlays are
// the kind legend (bottom left) and the inspector panel (right of the
// canvas). Snapshots that are not in the normal state render their status
// message centered on an empty canvas.
package svg

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/blendview/pkg/errors"
	"github.com/matzehuels/blendview/pkg/graph"
	"github.com/matzehuels/blendview/pkg/render"
)

// Canvas size used when a snapshot carries no geometry.
const (
	DefaultWidth  = 800.0
	DefaultHeight = 600.0
)

const (
	panelWidth   = 240.0
	panelPadding = 16.0
	lineHeight   = 20.0
	legendSwatch = 12.0

	fontFamily = `'Inter', 'Helvetica Neue', Arial, sans-serif`
)

const interactionCSS = `
    .node rect { transition: stroke-width 0.15s ease; }
    .node:hover rect, .node.selected rect { stroke-width: 3; }
    .edge { transition: stroke-opacity 0.15s ease; }
    .edge.highlight { stroke-opacity: 1; stroke: #222; }`

const interactionJS = `
    document.querySelectorAll('.node').forEach(el => {
      const id = el.dataset.node;
      el.addEventListener('mouseenter', () => document.querySelectorAll('.edge[data-to="' + id + '"], .edge[data-from="' + id + '"]').forEach(e => e.classList.add('highlight')));
      el.addEventListener('mouseleave', () => document.querySelectorAll('.edge.highlight').forEach(e => e.classList.remove('highlight')));
    });`

type renderer struct {
	s      *graph.Snapshot
	opts   render.Options
	width  float64
	height float64
}

// Render draws s. It fails only for a nil snapshot.
func Render(s *graph.Snapshot, opts render.Options) ([]byte, error) {
	if s == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nil snapshot")
	}
	r := renderer{s: s, opts: opts, width: s.Width, height: s.Height}
	if r.width <= 0 || r.height <= 0 {
		r.width, r.height = DefaultWidth, DefaultHeight
	}

	total := r.width
	if opts.ShowInspector {
		total += panelWidth
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" font-family="%s">`+"\n",
		total, r.height, total, r.height, fontFamily)
	fmt.Fprintf(&buf, "  <title>%s</title>\n", esc(opts.TitleFor(s)))
	fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%.1f" height="%.1f" fill="#FAFAFA"/>`+"\n", r.width, r.height)

	if s.Normal() {
		r.renderEdges(&buf)
		r.renderNodes(&buf)
	} else {
		r.renderMessage(&buf)
	}
	r.renderTitle(&buf)
	if opts.ShowLegend {
		r.renderLegend(&buf)
	}
	if opts.ShowInspector {
		r.renderInspector(&buf)
	}
	if s.Normal() {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", interactionCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", interactionJS)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

func (r *renderer) renderEdges(buf *bytes.Buffer) {
	buf.WriteString("  <g class=\"edges\">\n")
	for _, e := range r.s.Edges {
		from, to := r.s.Node(e.From), r.s.Node(e.To)
		if from == nil || to == nil {
			continue
		}
		fmt.Fprintf(buf, `    <line class="edge" data-from="%d" data-to="%d" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#555" stroke-width="%.2f" stroke-opacity="%.2f"/>`+"\n",
			e.From, e.To,
			from.Rect.CenterX(), from.Rect.CenterY(),
			to.Rect.CenterX(), to.Rect.CenterY(),
			edgeWidth(e.Weight), edgeOpacity(e.Weight))
	}
	buf.WriteString("  </g>\n")
}

func (r *renderer) renderNodes(buf *bytes.Buffer) {
	buf.WriteString("  <g class=\"nodes\">\n")
	for _, n := range r.s.Nodes {
		class := "node"
		if n.ID == r.opts.Selected {
			class += " selected"
		}
		rect := n.Rect
		fmt.Fprintf(buf, `    <g class="%s" id="node-%d" data-node="%d" data-kind="%s">`+"\n", class, n.ID, n.ID, esc(n.Kind))
		fmt.Fprintf(buf, `      <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" fill="%s" stroke="#222" stroke-width="1"/>`+"\n",
			rect.X, rect.Y, rect.W, rect.H, min(rect.W, rect.H)*0.15, render.KindColor(n.Kind))

		size := fontSize(rect.W, rect.H)
		fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle" font-size="%.1f" fill="#fff">%s</text>`+"\n",
			rect.CenterX(), rect.CenterY()-size*0.3, size, esc(n.DisplayLabel()))
		fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle" font-size="%.1f" fill="#fff" fill-opacity="0.8">%.2f</text>`+"\n",
			rect.CenterX(), rect.CenterY()+size*0.8, size*0.8, n.Weight)
		buf.WriteString("    </g>\n")
	}
	buf.WriteString("  </g>\n")
}

func (r *renderer) renderMessage(buf *bytes.Buffer) {
	msg := r.s.Message
	if msg == "" {
		msg = r.s.State
	}
	fmt.Fprintf(buf, `  <text class="status" x="%.1f" y="%.1f" text-anchor="middle" font-size="20" fill="#666">%s</text>`+"\n",
		r.width/2, r.height/2, esc(msg))
}

func (r *renderer) renderTitle(buf *bytes.Buffer) {
	fmt.Fprintf(buf, `  <text class="title" x="%.1f" y="%.1f" font-size="14" font-weight="bold" fill="#333">%s</text>`+"\n",
		panelPadding/2, panelPadding+2, esc(r.opts.TitleFor(r.s)))
}

func (r *renderer) renderLegend(buf *bytes.Buffer) {
	entries := render.Legend()
	top := r.height - panelPadding/2 - float64(len(entries))*lineHeight
	buf.WriteString("  <g class=\"legend\">\n")
	for i, e := range entries {
		y := top + float64(i)*lineHeight
		fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="2" fill="%s"/>`+"\n",
			panelPadding/2, y, legendSwatch, legendSwatch, e.Color)
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="12" dominant-baseline="middle" fill="#333">%s</text>`+"\n",
			panelPadding/2+legendSwatch+6, y+legendSwatch/2, esc(e.Label))
	}
	buf.WriteString("  </g>\n")
}

func (r *renderer) renderInspector(buf *bytes.Buffer) {
	x := r.width
	fmt.Fprintf(buf, `  <g class="inspector">`+"\n")
	fmt.Fprintf(buf, `    <rect x="%.1f" y="0" width="%.1f" height="%.1f" fill="#F0F0F0" stroke="#CCC"/>`+"\n",
		x, panelWidth, r.height)
	for i, line := range render.InspectorLines(r.s, r.opts.Selected) {
		weight := "normal"
		if i == 0 {
			weight = "bold"
		}
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="13" font-weight="%s" fill="#333">%s</text>`+"\n",
			x+panelPadding, panelPadding+float64(i+1)*lineHeight, weight, esc(line))
	}
	buf.WriteString("  </g>\n")
}

func edgeWidth(w float64) float64   { return 1 + 3*clamp01(w) }
func edgeOpacity(w float64) float64 { return 0.25 + 0.75*clamp01(w) }

func fontSize(w, h float64) float64 {
	return max(6, min(16, h/3, w/6))
}

func clamp01(v float64) float64 { return max(0, min(1, v)) }

func esc(s string) string { return html.EscapeString(s) }
