package svg

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/matzehuels/blendview/pkg/graph"
	"github.com/matzehuels/blendview/pkg/render"
)

func blendSnapshot() *graph.Snapshot {
	return &graph.Snapshot{
		ID:        "cap-1",
		GraphName: "locomotion",
		State:     "normal",
		Width:     400,
		Height:    300,
		Nodes: []graph.Node{
			{ID: 0, Kind: "output", Label: "Animation", Weight: 1, Parent: -1, Rect: graph.Rect{X: 150, Y: 10, W: 100, H: 40}},
			{ID: 1, Kind: "mixer", Label: "blend", Weight: 1, Depth: 1, Parent: 0, Rect: graph.Rect{X: 150, Y: 130, W: 100, H: 40}},
			{ID: 2, Kind: "clip", Label: "walk", Weight: 0.3, Depth: 2, Parent: 1, Rect: graph.Rect{X: 50, Y: 250, W: 100, H: 40}},
			{ID: 3, Kind: "clip", Label: "<run>", Weight: 0.7, Depth: 2, Parent: 1, Rect: graph.Rect{X: 250, Y: 250, W: 100, H: 40}},
		},
		Edges: []graph.Edge{
			{From: 0, To: 1, Weight: 1},
			{From: 1, To: 2, Weight: 0.3},
			{From: 1, To: 3, Weight: 0.7},
		},
	}
}

func mustRender(t *testing.T, s *graph.Snapshot, opts render.Options) string {
	t.Helper()
	out, err := Render(s, opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if err := xml.Unmarshal(out, new(struct{})); err != nil {
		t.Fatalf("output is not well-formed XML: %v", err)
	}
	return string(out)
}

func TestRenderNodesAndEdges(t *testing.T) {
	out := mustRender(t, blendSnapshot(), render.Options{Selected: render.NoSelection})

	if got := strings.Count(out, `class="node"`); got != 4 {
		t.Errorf("node groups = %d, want 4", got)
	}
	if got := strings.Count(out, `class="edge"`); got != 3 {
		t.Errorf("edges = %d, want 3", got)
	}
	for _, want := range []string{
		`width="400" height="300"`,
		`fill="` + render.KindColor("mixer") + `"`,
		`&lt;run&gt;`,
		`<title>locomotion</title>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, `class="legend"`) || strings.Contains(out, `class="inspector"`) {
		t.Error("overlays should be off")
	}
}

func TestEdgeStrokeFollowsWeight(t *testing.T) {
	out := mustRender(t, blendSnapshot(), render.Options{Selected: render.NoSelection})
	light := `data-to="2" x1="200.0" y1="150.0" x2="100.0" y2="270.0" stroke="#555" stroke-width="1.90"`
	heavy := `data-to="3" x1="200.0" y1="150.0" x2="300.0" y2="270.0" stroke="#555" stroke-width="3.10"`
	for _, want := range []string{light, heavy} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing edge %q", want)
		}
	}
}

func TestRenderOverlays(t *testing.T) {
	opts := render.DefaultOptions()
	opts.Selected = 1
	opts.Title = "Player"
	out := mustRender(t, blendSnapshot(), opts)

	if !strings.Contains(out, `width="640" height="300"`) {
		t.Error("inspector panel should widen the document")
	}
	for _, e := range render.Legend() {
		if !strings.Contains(out, ">"+e.Label+"<") {
			t.Errorf("legend missing %q", e.Label)
		}
	}
	for _, want := range []string{
		`class="node selected" id="node-1"`,
		">Node blend<",
		">inputs: 2<",
		">feeds: Animation<",
		"<title>Player</title>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestInspectorWithoutSelection(t *testing.T) {
	out := mustRender(t, blendSnapshot(), render.DefaultOptions())
	for _, want := range []string{">Graph locomotion<", ">nodes: 4<", ">outputs: 1<", ">leaves: 2<", ">depth: 2<"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRenderStatusMessage(t *testing.T) {
	s := &graph.Snapshot{State: "invalid-graph", Message: "Graph is invalid"}
	out := mustRender(t, s, render.DefaultOptions())

	if !strings.Contains(out, ">Graph is invalid<") {
		t.Error("status message missing")
	}
	if !strings.Contains(out, `width="1040" height="600"`) {
		t.Error("empty snapshots should use the default canvas")
	}
	if strings.Contains(out, "<script") {
		t.Error("status documents need no interaction script")
	}
}

func TestRenderNil(t *testing.T) {
	if _, err := Render(nil, render.DefaultOptions()); err == nil {
		t.Error("expected error")
	}
}
