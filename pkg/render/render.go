// Package render holds what every snapshot renderer shares: render options,
// the node kind palette and the legend.
//
// Renderers live in subpackages and all consume a [graph.Snapshot]:
//
//   - [svg]: standalone SVG with legend and inspector panel
//   - [dot]: Graphviz DOT with pinned positions, plus SVG/PNG via Graphviz
//   - [text]: terminal tree and character canvas
//
//	out, err := svg.Render(s, render.DefaultOptions())
//
// [graph.Snapshot]: github.com/matzehuels/blendview/pkg/graph.Snapshot
// [svg]: github.com/matzehuels/blendview/pkg/render/svg
// [dot]: github.com/matzehuels/blendview/pkg/render/dot
// [text]: github.com/matzehuels/blendview/pkg/render/text
package render

import (
	"fmt"
	"strings"

	"github.com/matzehuels/blendview/pkg/cache"
	"github.com/matzehuels/blendview/pkg/errors"
	"github.com/matzehuels/blendview/pkg/graph"
	"github.com/matzehuels/blendview/pkg/snapshot"
)

// NoSelection is the Selected value when no node is highlighted.
const NoSelection = -1

// Output formats.
const (
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatPNG  = "png"
	FormatJSON = "json"
	FormatText = "txt"
)

// Formats lists every supported output format.
var Formats = []string{FormatSVG, FormatDOT, FormatPNG, FormatJSON, FormatText}

// ValidateFormat checks that format is one of [Formats].
func ValidateFormat(format string) error {
	for _, f := range Formats {
		if f == format {
			return nil
		}
	}
	return errors.New(errors.ErrCodeInvalidFormat,
		"invalid format: %q (must be one of: %s)", format, strings.Join(Formats, ", "))
}

// Options controls what a renderer draws.
type Options struct {
	// ShowInspector draws the details panel for the selected node, or graph
	// statistics when nothing is selected.
	ShowInspector bool `json:"show_inspector"`

	// ShowLegend draws the kind colour legend.
	ShowLegend bool `json:"show_legend"`

	// Selected is the highlighted node ID, or NoSelection.
	Selected int `json:"selected"`

	// Title replaces the graph name in headings.
	Title string `json:"title,omitempty"`

	// Scale multiplies raster output resolution. Zero means 1.
	Scale float64 `json:"scale,omitempty"`
}

// DefaultOptions returns the inspector defaults: legend and inspector on,
// nothing selected.
func DefaultOptions() Options {
	return Options{ShowInspector: true, ShowLegend: true, Selected: NoSelection}
}

// TitleFor returns the heading for s.
func (o Options) TitleFor(s *graph.Snapshot) string {
	if o.Title != "" {
		return o.Title
	}
	if s == nil || s.GraphName == "" {
		return "blendview"
	}
	return s.GraphName
}

// RasterScale returns Scale, defaulting to 1.
func (o Options) RasterScale() float64 {
	if o.Scale <= 0 {
		return 1
	}
	return o.Scale
}

// KeyOpts returns the cache key options for format.
func (o Options) KeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:        format,
		ShowInspector: o.ShowInspector,
		ShowLegend:    o.ShowLegend,
		Selected:      o.Selected,
		Title:         o.Title,
		Scale:         o.Scale,
	}
}

// =============================================================================
// Palette and Legend
// =============================================================================

var kindColors = map[snapshot.Kind]string{
	snapshot.KindOutput:   "#4C78A8",
	snapshot.KindMixer:    "#F58518",
	snapshot.KindLeafClip: "#54A24B",
	snapshot.KindGeneric:  "#9D9D9D",
}

// KindColor returns the fill colour for a wire kind name. Unknown kinds
// use the generic colour.
func KindColor(kind string) string {
	k, _ := snapshot.ParseKind(kind)
	return kindColors[k]
}

// LegendEntry is one row of the legend.
type LegendEntry struct {
	Kind  string
	Label string
	Color string
}

// Legend returns one entry per node kind in legend order.
func Legend() []LegendEntry {
	out := make([]LegendEntry, 0, len(snapshot.Kinds))
	for _, k := range snapshot.Kinds {
		name := k.String()
		out = append(out, LegendEntry{
			Kind:  name,
			Label: strings.ToUpper(name[:1]) + name[1:],
			Color: kindColors[k],
		})
	}
	return out
}

// InspectorLines returns the rows of the inspector panel: details of the
// selected node, or graph statistics when nothing valid is selected.
func InspectorLines(s *graph.Snapshot, selected int) []string {
	if n := s.Node(selected); n != nil && selected != NoSelection {
		lines := []string{
			"Node " + n.DisplayLabel(),
			"kind: " + n.Kind,
			fmt.Sprintf("weight: %.2f", n.Weight),
			fmt.Sprintf("depth: %d", n.Depth),
			fmt.Sprintf("inputs: %d", len(s.Children(n.ID))),
		}
		if p := s.Node(n.Parent); p != nil {
			lines = append(lines, "feeds: "+p.DisplayLabel())
		}
		return lines
	}

	parents := make(map[int]bool, len(s.Edges))
	for _, e := range s.Edges {
		parents[e.From] = true
	}
	leaves, depth := 0, 0
	for _, n := range s.Nodes {
		if !parents[n.ID] {
			leaves++
		}
		depth = max(depth, n.Depth)
	}
	return []string{
		"Graph " + s.GraphName,
		"state: " + s.State,
		fmt.Sprintf("nodes: %d", len(s.Nodes)),
		fmt.Sprintf("outputs: %d", len(s.Roots())),
		fmt.Sprintf("leaves: %d", leaves),
		fmt.Sprintf("depth: %d", depth),
	}
}
