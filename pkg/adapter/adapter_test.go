package adapter

import (
	stderrors "errors"
	"math"
	"testing"

	"github.com/matzehuels/blendview/pkg/host"
	"github.com/matzehuels/blendview/pkg/host/memory"
	"github.com/matzehuels/blendview/pkg/snapshot"
)

// blendTree builds one output feeding a mixer with two clips.
func blendTree(t *testing.T) (*memory.Graph, *memory.Playable) {
	t.Helper()
	g := memory.New("locomotion")
	out := g.AddOutput("Animation", "AnimationPlayableOutput")
	mixer := g.AddPlayable("blend", "AnimationMixerPlayable", 2)
	walk := g.AddPlayable("walk", "AnimationClipPlayable", 0)
	run := g.AddPlayable("run", "AnimationClipPlayable", 0)
	must(t, g.SetSource(out, mixer))
	must(t, g.Connect(mixer, 0, walk, 0.3))
	must(t, g.Connect(mixer, 1, run, 0.7))
	return g, mixer
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func TestSingleMixerWithClips(t *testing.T) {
	g, _ := blendTree(t)
	v := New(g)
	must(t, v.Refresh())

	if v.Len() != 4 {
		t.Fatalf("Len = %d, want 4", v.Len())
	}
	want := []struct {
		kind   snapshot.Kind
		label  string
		weight float64
		depth  int
	}{
		{snapshot.KindOutput, "Animation", 1, 0},
		{snapshot.KindMixer, "blend", 1, 1},
		{snapshot.KindLeafClip, "walk", 0.3, 2},
		{snapshot.KindLeafClip, "run", 0.7, 2},
	}
	for i, w := range want {
		n := v.Node(snapshot.ID(i))
		if n.Kind != w.kind || n.Label != w.label || n.Weight != w.weight || n.Depth != w.depth {
			t.Errorf("node %d = {%v %q %v %d}, want %+v", i, n.Kind, n.Label, n.Weight, n.Depth, w)
		}
	}
	if mixer := v.Node(1); len(mixer.Children) != 2 {
		t.Errorf("mixer children = %v, want 2", mixer.Children)
	}
}

func TestIndependentOutputs(t *testing.T) {
	g := memory.New("two")
	for _, name := range []string{"left", "right"} {
		out := g.AddOutput(name, "AnimationPlayableOutput")
		clip := g.AddPlayable(name+"-clip", "AnimationClipPlayable", 0)
		must(t, g.SetSource(out, clip))
	}

	v := New(g)
	must(t, v.Refresh())

	roots := v.Roots()
	if len(roots) != 2 {
		t.Fatalf("roots = %v, want 2", roots)
	}
	for _, r := range roots {
		n := v.Node(r)
		if len(n.Children) != 1 || v.Node(n.Children[0]).Depth != 1 {
			t.Errorf("root %q should have one depth-1 child", n.Label)
		}
	}
}

func TestInvalidGraphNotTraversed(t *testing.T) {
	g, _ := blendTree(t)
	g.Destroy()

	v := New(g)
	if v.IsValid() {
		t.Error("destroyed graph should be invalid")
	}
	must(t, v.Refresh())
	if !v.IsEmpty() {
		t.Errorf("invalid graph produced %d nodes", v.Len())
	}

	nilGraph := New(nil)
	if nilGraph.IsValid() {
		t.Error("nil host graph should be invalid")
	}
	must(t, nilGraph.Refresh())
}

func TestInvalidSourcesLeaveRoots(t *testing.T) {
	g := memory.New("orphans")
	for i := 0; i < 3; i++ {
		out := g.AddOutput("out", "AnimationPlayableOutput")
		p := g.AddPlayable("gone", "AnimationClipPlayable", 0)
		must(t, g.SetSource(out, p))
		g.DestroyPlayable(p)
	}
	g.AddOutput("disconnected", "AudioPlayableOutput")

	v := New(g)
	must(t, v.Refresh())
	if v.IsEmpty() {
		t.Fatal("outputs exist; snapshot must not be empty")
	}
	if v.Len() != 4 {
		t.Errorf("Len = %d, want 4 output roots", v.Len())
	}
	for _, n := range v.All() {
		if n.Kind != snapshot.KindOutput || !n.IsLeaf() {
			t.Errorf("unexpected node %q kind=%v children=%v", n.Label, n.Kind, n.Children)
		}
	}
}

func TestSkipsInvalidEntities(t *testing.T) {
	g, mixer := blendTree(t)
	dead := g.AddPlayable("dead", "AnimationClipPlayable", 0)
	must(t, g.Connect(mixer, 3, dead, 0.5))
	g.DestroyPlayable(dead)
	g.DestroyOutput(g.AddOutput("removed", ""))

	v := New(g)
	must(t, v.Refresh())
	if v.Len() != 4 {
		t.Errorf("Len = %d, want 4", v.Len())
	}
}

func TestOneNodePerEntity(t *testing.T) {
	g := memory.New("wide")
	out := g.AddOutput("o", "")
	layer := g.AddPlayable("layers", "AnimationLayerMixerPlayable", 3)
	must(t, g.SetSource(out, layer))
	entities := 2
	for i := 0; i < 3; i++ {
		m := g.AddPlayable("m", "AnimationMixerPlayable", 2)
		must(t, g.Connect(layer, i, m, 1))
		entities++
		for j := 0; j < 2; j++ {
			must(t, g.Connect(m, j, g.AddPlayable("c", "AnimationClipPlayable", 0), 0.5))
			entities++
		}
	}

	v := New(g)
	must(t, v.Refresh())
	if v.Len() != entities {
		t.Errorf("Len = %d, want %d", v.Len(), entities)
	}
}

func TestSharedInputIsDuplicated(t *testing.T) {
	g := memory.New("shared")
	out := g.AddOutput("o", "")
	mixer := g.AddPlayable("m", "AnimationMixerPlayable", 2)
	clip := g.AddPlayable("idle", "AnimationClipPlayable", 0)
	must(t, g.SetSource(out, mixer))
	must(t, g.Connect(mixer, 0, clip, 0.25))
	must(t, g.Connect(mixer, 1, clip, 0.75))

	v := New(g)
	must(t, v.Refresh())
	if v.Len() != 4 {
		t.Fatalf("Len = %d, want 4 (shared clip appears twice)", v.Len())
	}
	if v.Node(2).Weight != 0.25 || v.Node(3).Weight != 0.75 {
		t.Errorf("weights = %v, %v", v.Node(2).Weight, v.Node(3).Weight)
	}
}

func TestCycleFailsClosed(t *testing.T) {
	g := memory.New("loop")
	out := g.AddOutput("o", "")
	a := g.AddPlayable("a", "ScriptPlayable", 1)
	b := g.AddPlayable("b", "ScriptPlayable", 1)
	must(t, g.SetSource(out, a))
	must(t, g.Connect(a, 0, b, 1))
	must(t, g.Connect(b, 0, a, 1))

	v := New(g, snapshot.WithMaxDepth(32))
	err := v.Refresh()
	if !stderrors.Is(err, snapshot.ErrTooDeep) {
		t.Fatalf("err = %v, want ErrTooDeep", err)
	}
	if !v.IsEmpty() {
		t.Error("cyclic graph should leave the snapshot empty")
	}
}

func TestRefreshDeterministic(t *testing.T) {
	g, _ := blendTree(t)
	v := New(g)
	must(t, v.Refresh())
	first := v.Nodes()

	must(t, v.Refresh())
	second := v.Nodes()
	if len(first) != len(second) {
		t.Fatalf("len %d != %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.Label != b.Label || a.Kind != b.Kind || a.Weight != b.Weight || a.Parent != b.Parent || a.Depth != b.Depth {
			t.Errorf("node %d differs: %+v vs %+v", i, a, b)
		}
	}
}

func TestRefreshSeesMutations(t *testing.T) {
	g, mixer := blendTree(t)
	v := New(g)
	must(t, v.Refresh())

	must(t, g.SetInputWeight(mixer, 0, 0.9))
	must(t, g.Disconnect(mixer, 1))
	must(t, v.Refresh())

	if v.Len() != 3 {
		t.Fatalf("Len = %d, want 3", v.Len())
	}
	if w := v.Node(2).Weight; w != 0.9 {
		t.Errorf("weight = %v, want 0.9", w)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		typ  string
		want snapshot.Kind
	}{
		{"AnimationClipPlayable", snapshot.KindLeafClip},
		{"AudioClipPlayable", snapshot.KindLeafClip},
		{"AnimationMixerPlayable", snapshot.KindMixer},
		{"AnimationLayerMixerPlayable", snapshot.KindMixer},
		{"AudioMixerPlayable", snapshot.KindMixer},
		{"AnimatorControllerPlayable", snapshot.KindGeneric},
		{"ScriptPlayable", snapshot.KindGeneric},
		{"CustomBlendTree", snapshot.KindMixer},
		{"FootstepClip", snapshot.KindLeafClip},
		{"", snapshot.KindGeneric},
		{"Playable", snapshot.KindGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			if got := Classify(tt.typ); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.typ, got, tt.want)
			}
		})
	}
}

// skewed reports fixed port weights instead of the wrapped playable's.
type skewed struct {
	host.Playable
	weights []float64
}

func (p skewed) InputWeight(port int) float64 { return p.weights[port] }

type rewiredOutput struct {
	host.Output
	src host.Playable
}

func (o rewiredOutput) Source() host.Playable { return o.src }

type rewiredGraph struct {
	host.Graph
	out host.Output
}

func (g rewiredGraph) Output(i int) host.Output {
	if i == 0 {
		return g.out
	}
	return g.Graph.Output(i)
}

func TestOutOfRangeWeightsAreClamped(t *testing.T) {
	g := memory.New("noisy")
	out := g.AddOutput("Animation", "AnimationPlayableOutput")
	mixer := g.AddPlayable("blend", "AnimationMixerPlayable", 5)
	must(t, g.SetSource(out, mixer))
	for i := range 5 {
		must(t, g.Connect(mixer, i, g.AddPlayable("clip", "AnimationClipPlayable", 0), 0.5))
	}

	reported := []float64{math.NaN(), math.Inf(1), math.Inf(-1), 1.5, -0.2}
	h := rewiredGraph{
		Graph: g,
		out:   rewiredOutput{Output: g.Output(0), src: skewed{Playable: mixer, weights: reported}},
	}
	v := New(h)
	must(t, v.Refresh())

	want := []float64{0, 1, 0, 1, 0}
	kids := v.Node(1).Children
	if len(kids) != len(want) {
		t.Fatalf("children = %v, want %d", kids, len(want))
	}
	for i, id := range kids {
		if got := v.Node(id).Weight; got != want[i] {
			t.Errorf("port %d weight = %v, want %v (reported %v)", i, got, want[i], reported[i])
		}
	}
}
