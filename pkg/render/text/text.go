// Package text renders snapshots for terminals: an indented tree and a
// character canvas that mirrors the layout positions.
package text

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/blendview/pkg/graph"
	"github.com/matzehuels/blendview/pkg/render"
)

// Options configures terminal output.
type Options struct {
	render.Options

	// Color enables lipgloss styling. Off produces plain text.
	Color bool

	// Columns and Rows size the canvas. Zero uses 80x24.
	Columns, Rows int
}

func (o Options) style(kind string) lipgloss.Style {
	if !o.Color {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(render.KindColor(kind)))
}

func (o Options) selectedStyle() lipgloss.Style {
	if !o.Color {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Bold(true).Reverse(true)
}

func (o Options) dim() lipgloss.Style {
	if !o.Color {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Faint(true)
}

// Tree renders s as an indented tree, one node per line:
//
//	Animation (output) 1.00
//	  blend (mixer) 1.00
//	    walk (clip) 0.30
//
// The selected node is marked with '>'. Snapshots that are not in the
// normal state render their status message.
func Tree(s *graph.Snapshot, opts Options) string {
	var b strings.Builder
	fmt.Fprintln(&b, heading(s, opts))
	if !s.Normal() {
		fmt.Fprintln(&b, statusLine(s))
		return b.String()
	}

	for _, n := range s.Nodes {
		marker := "  "
		line := fmt.Sprintf("%s (%s) %.2f", n.DisplayLabel(), opts.style(n.Kind).Render(n.Kind), n.Weight)
		if n.ID == opts.Selected {
			marker = "> "
			line = opts.selectedStyle().Render(line)
		}
		fmt.Fprintf(&b, "%s%s%s\n", marker, strings.Repeat("  ", n.Depth), line)
	}
	if opts.ShowLegend {
		b.WriteString(legend(opts))
	}
	if opts.ShowInspector {
		b.WriteString(inspector(s, opts))
	}
	return b.String()
}

// Canvas plots node labels at their normalized layout positions on a
// character grid. Labels that would overlap an earlier label are shifted
// right or dropped at the edge; the tree view is the lossless alternative.
func Canvas(s *graph.Snapshot, opts Options) string {
	cols, rows := opts.Columns, opts.Rows
	if cols <= 0 {
		cols = 80
	}
	if rows <= 0 {
		rows = 24
	}

	var b strings.Builder
	fmt.Fprintln(&b, heading(s, opts))
	if !s.Normal() {
		fmt.Fprintln(&b, statusLine(s))
		return b.String()
	}

	grid := make([][]rune, rows)
	kinds := make([][]string, rows)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", cols))
		kinds[r] = make([]string, cols)
	}

	for _, n := range s.Nodes {
		label := []rune(n.DisplayLabel())
		if n.ID == opts.Selected {
			label = append([]rune{'['}, append(label, ']')...)
		}
		if len(label) > cols {
			label = label[:cols]
		}
		row := clampInt(int(math.Floor(n.Y*float64(rows))), 0, rows-1)
		col := clampInt(int(math.Round(n.X*float64(cols)))-len(label)/2, 0, cols-len(label))
		for col+len(label) <= cols && !free(grid[row], col, len(label)) {
			col++
		}
		if col+len(label) > cols || !free(grid[row], col, len(label)) {
			continue
		}
		for i, r := range label {
			grid[row][col+i] = r
			kinds[row][col+i] = n.Kind
		}
	}

	for r := range grid {
		line := strings.TrimRight(paint(grid[r], kinds[r], opts), " ")
		fmt.Fprintln(&b, line)
	}
	if opts.ShowLegend {
		b.WriteString(legend(opts))
	}
	return b.String()
}

func heading(s *graph.Snapshot, opts Options) string {
	title := opts.TitleFor(s)
	if opts.Color {
		return lipgloss.NewStyle().Bold(true).Render(title)
	}
	return title
}

func statusLine(s *graph.Snapshot) string {
	if s.Message != "" {
		return s.Message
	}
	return s.State
}

func legend(opts Options) string {
	parts := make([]string, 0, 4)
	for _, e := range render.Legend() {
		parts = append(parts, opts.style(e.Kind).Render("■")+" "+e.Label)
	}
	return opts.dim().Render("legend:") + " " + strings.Join(parts, "  ") + "\n"
}

func inspector(s *graph.Snapshot, opts Options) string {
	var b strings.Builder
	for i, line := range render.InspectorLines(s, opts.Selected) {
		if i == 0 {
			fmt.Fprintf(&b, "%s\n", line)
			continue
		}
		fmt.Fprintf(&b, "  %s\n", opts.dim().Render(line))
	}
	return b.String()
}

// paint styles runs of cells that belong to the same node kind.
func paint(cells []rune, kinds []string, opts Options) string {
	if !opts.Color {
		return string(cells)
	}
	var b strings.Builder
	start := 0
	for i := 1; i <= len(cells); i++ {
		if i < len(cells) && kinds[i] == kinds[start] {
			continue
		}
		run := string(cells[start:i])
		if kinds[start] != "" {
			run = opts.style(kinds[start]).Render(run)
		}
		b.WriteString(run)
		start = i
	}
	return b.String()
}

func free(row []rune, col, n int) bool {
	lo, hi := max(col-1, 0), min(col+n+1, len(row))
	for i := lo; i < hi; i++ {
		if row[i] != ' ' {
			return false
		}
	}
	return true
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
