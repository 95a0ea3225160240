package render

import (
	"testing"

	"github.com/matzehuels/blendview/pkg/errors"
	"github.com/matzehuels/blendview/pkg/graph"
)

func TestValidateFormat(t *testing.T) {
	for _, f := range Formats {
		if err := ValidateFormat(f); err != nil {
			t.Errorf("ValidateFormat(%q): %v", f, err)
		}
	}
	if err := ValidateFormat("pdf"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ValidateFormat(pdf) = %v", err)
	}
}

func TestKindColor(t *testing.T) {
	if KindColor("mixer") == KindColor("clip") {
		t.Error("kinds should have distinct colours")
	}
	if KindColor("unheard-of") != KindColor("generic") {
		t.Error("unknown kinds should use the generic colour")
	}
}

func TestLegendOrder(t *testing.T) {
	var got []string
	for _, e := range Legend() {
		got = append(got, e.Label)
	}
	want := []string{"Output", "Mixer", "Clip", "Generic"}
	if len(got) != len(want) {
		t.Fatalf("Legend = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Legend = %v, want %v", got, want)
			break
		}
	}
}

func TestOptions(t *testing.T) {
	o := DefaultOptions()
	if !o.ShowInspector || !o.ShowLegend || o.Selected != NoSelection {
		t.Errorf("DefaultOptions = %+v", o)
	}
	if o.RasterScale() != 1 {
		t.Errorf("RasterScale = %v", o.RasterScale())
	}
	if got := o.TitleFor(&graph.Snapshot{GraphName: "g"}); got != "g" {
		t.Errorf("TitleFor = %q", got)
	}
	if got := o.TitleFor(nil); got != "blendview" {
		t.Errorf("TitleFor(nil) = %q", got)
	}
	o.Title = "custom"
	if o.TitleFor(&graph.Snapshot{GraphName: "g"}) != "custom" {
		t.Error("Title should win")
	}

	a, b := o.KeyOpts("svg"), o.KeyOpts("svg")
	if a != b || a.Format != "svg" || a.Title != "custom" {
		t.Errorf("KeyOpts = %+v", a)
	}
}

func TestInspectorLines(t *testing.T) {
	s := &graph.Snapshot{
		GraphName: "g",
		State:     "normal",
		Nodes: []graph.Node{
			{ID: 0, Kind: "output", Label: "out", Weight: 1, Parent: -1},
			{ID: 1, Kind: "clip", Label: "a", Weight: 0.25, Depth: 1, Parent: 0},
		},
		Edges: []graph.Edge{{From: 0, To: 1, Weight: 0.25}},
	}
	node := InspectorLines(s, 1)
	if node[0] != "Node a" || node[2] != "weight: 0.25" || node[len(node)-1] != "feeds: out" {
		t.Errorf("node lines = %q", node)
	}
	root := InspectorLines(s, 0)
	if root[len(root)-1] != "inputs: 1" {
		t.Errorf("root lines = %q", root)
	}
	stats := InspectorLines(s, NoSelection)
	if stats[0] != "Graph g" || stats[4] != "leaves: 1" {
		t.Errorf("stats lines = %q", stats)
	}
}
