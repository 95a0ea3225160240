package svg_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/blendview/pkg/graph"
	"github.com/matzehuels/blendview/pkg/render"
	"github.com/matzehuels/blendview/pkg/render/svg"
)

func ExampleRender() {
	s := &graph.Snapshot{
		GraphName: "idle",
		State:     "normal",
		Width:     200,
		Height:    100,
		Nodes: []graph.Node{
			{ID: 0, Kind: "output", Label: "Animation", Weight: 1, Parent: -1, Rect: graph.Rect{X: 50, Y: 10, W: 100, H: 30}},
			{ID: 1, Kind: "clip", Label: "idle", Weight: 1, Depth: 1, Parent: 0, Rect: graph.Rect{X: 50, Y: 60, W: 100, H: 30}},
		},
		Edges: []graph.Edge{{From: 0, To: 1, Weight: 1}},
	}

	out, _ := svg.Render(s, render.Options{Selected: render.NoSelection})
	fmt.Println(strings.Count(string(out), "<rect"), "rects")
	// Output: 3 rects
}
