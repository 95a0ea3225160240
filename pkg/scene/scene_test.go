package scene

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/blendview/pkg/adapter"
	"github.com/matzehuels/blendview/pkg/errors"
	"github.com/matzehuels/blendview/pkg/host"
	"github.com/matzehuels/blendview/pkg/inspect"
	"github.com/matzehuels/blendview/pkg/roster"
)

const locomotionYAML = `name: locomotion
outputs:
  - name: Animation
    type: AnimationPlayableOutput
    source: blend
playables:
  - id: blend
    type: AnimationMixerPlayable
    inputs:
      - {source: walk, weight: 0.3}
      - {source: run, weight: 0.7}
  - id: walk
    type: AnimationClipPlayable
  - id: run
    type: AnimationClipPlayable
`

const locomotionTOML = `name = "locomotion"

[[outputs]]
name = "Animation"
type = "AnimationPlayableOutput"
source = "blend"

[[playables]]
id = "blend"
type = "AnimationMixerPlayable"
inputs = [{source = "walk", weight = 0.3}, {source = "run", weight = 0.7}]

[[playables]]
id = "walk"
type = "AnimationClipPlayable"

[[playables]]
id = "run"
type = "AnimationClipPlayable"
`

const locomotionJSON = `{
  "name": "locomotion",
  "outputs": [{"name": "Animation", "type": "AnimationPlayableOutput", "source": "blend"}],
  "playables": [
    {"id": "blend", "type": "AnimationMixerPlayable", "inputs": [{"source": "walk", "weight": 0.3}, {"source": "run", "weight": 0.7}]},
    {"id": "walk", "type": "AnimationClipPlayable"},
    {"id": "run", "type": "AnimationClipPlayable"}
  ]
}`

// describe refreshes the built graph and returns label/weight per node.
func describe(t *testing.T, d *Description) []string {
	t.Helper()
	g, err := Build(d)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	v := adapter.New(g)
	if err := v.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	var out []string
	for _, n := range v.Nodes() {
		out = append(out, n.Label+"/"+n.Kind.String())
	}
	return out
}

func TestDecodeFormatsAgree(t *testing.T) {
	want := []string{"Animation/output", "blend/mixer", "walk/clip", "run/clip"}
	for _, tt := range []struct {
		format Format
		data   string
	}{
		{FormatYAML, locomotionYAML},
		{FormatTOML, locomotionTOML},
		{FormatJSON, locomotionJSON},
	} {
		t.Run(string(tt.format), func(t *testing.T) {
			d, err := Decode([]byte(tt.data), tt.format)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if d.Playables[0].Inputs[1].weight() != 0.7 {
				t.Errorf("weight = %v", d.Playables[0].Inputs[1].weight())
			}
			got := describe(t, d)
			if len(got) != len(want) {
				t.Fatalf("nodes = %v, want %v", got, want)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("node %d = %s, want %s", i, got[i], want[i])
				}
			}
		})
	}
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	for _, tt := range []struct {
		format Format
		data   string
	}{
		{FormatYAML, "name: x\nwieght: 1\n"},
		{FormatTOML, "name = \"x\"\nwieght = 1\n"},
		{FormatJSON, `{"name": "x", "wieght": 1}`},
		{Format("xml"), "<scene/>"},
	} {
		if _, err := Decode([]byte(tt.data), tt.format); err == nil {
			t.Errorf("%s: expected error", tt.format)
		}
	}
}

func TestValidate(t *testing.T) {
	half := 0.5
	over := 1.5
	tests := []struct {
		name string
		desc Description
		code errors.Code
	}{
		{"ok", Description{Name: "g", Playables: []Playable{{ID: "a", Type: "T", Inputs: []Input{{Source: "a", Weight: &half}}}}}, ""},
		{"unknown output source", Description{Outputs: []Output{{Name: "o", Source: "nope"}}}, errors.ErrCodeInvalidScene},
		{"unknown input source", Description{Playables: []Playable{{ID: "a", Inputs: []Input{{Source: "b"}}}}}, errors.ErrCodeInvalidScene},
		{"duplicate id", Description{Playables: []Playable{{ID: "a"}, {ID: "a"}}}, errors.ErrCodeInvalidScene},
		{"bad id", Description{Playables: []Playable{{ID: "has space"}}}, errors.ErrCodeInvalidScene},
		{"weight range", Description{Playables: []Playable{{ID: "a", Inputs: []Input{{Weight: &over}}}}}, errors.ErrCodeInvalidScene},
		{"control chars", Description{Name: "bad\x00name"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.desc.Validate()
			if tt.code == "" {
				if err != nil {
					t.Errorf("Validate: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestBuildDisconnectedAndDestroyed(t *testing.T) {
	quarter := 0.25
	d := &Description{
		Name: "partial",
		Outputs: []Output{
			{Name: "live", Source: "mix"},
			{Name: "unplugged"},
			{Name: "gone", Source: "mix", Destroyed: true},
		},
		Playables: []Playable{
			{ID: "mix", Type: "AnimationMixerPlayable", Inputs: []Input{{Source: "a"}, {Weight: &quarter}, {Source: "dead"}}},
			{ID: "a", Type: "AnimationClipPlayable"},
			{ID: "dead", Type: "AnimationClipPlayable", Destroyed: true},
		},
	}
	g, err := Build(d)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.OutputCount() != 3 || !g.IsValid() {
		t.Fatalf("outputs = %d valid = %v", g.OutputCount(), g.IsValid())
	}
	if g.Output(2).IsValid() {
		t.Error("destroyed output should be invalid")
	}

	v := adapter.New(g)
	if err := v.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	// live -> mix -> a, plus the unplugged output. The destroyed output and
	// playable are skipped.
	stats := v.Stats()
	if stats.Nodes != 4 || stats.Roots != 2 {
		t.Errorf("stats = %+v", stats)
	}
	mix := v.Node(1)
	if mix.Label != "mix" || len(mix.Children) != 1 {
		t.Errorf("mix = %+v", mix)
	}
	if g.Output(0).Source().InputWeight(1) != 0.25 {
		t.Error("disconnected port should keep its weight")
	}
}

func TestBuildDestroyedGraph(t *testing.T) {
	g, err := Build(&Description{Name: "dead", Destroyed: true})
	if err != nil {
		t.Fatal(err)
	}
	if g.IsValid() {
		t.Error("graph should be invalid")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "walk-cycle.yaml")
	writeFile(t, path, "playables:\n  - id: idle\n    type: AnimationClipPlayable\n")

	g, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if g.Name() != "walk-cycle" || g.PlayableCount() != 1 {
		t.Errorf("graph = %s with %d playables", g.Name(), g.PlayableCount())
	}

	if _, err := Load(filepath.Join(dir, "scene.txt")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("txt: err = %v", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("missing file should fail")
	}
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcherLifecycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), locomotionYAML)
	writeFile(t, filepath.Join(dir, "b.json"), `{"name": "b"}`)
	writeFile(t, filepath.Join(dir, "broken.toml"), "name = ")
	writeFile(t, filepath.Join(dir, "notes.md"), "ignored")

	r := roster.New()
	var events []roster.EventKind
	r.OnChange(func(e roster.Event) { events = append(events, e.Kind) })

	w, err := NewWatcher(dir, r)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	n, err := w.LoadAll()
	if err != nil || n != 2 || r.Len() != 2 {
		t.Fatalf("LoadAll = %d, %v; roster %d", n, err, r.Len())
	}
	if r.List()[0].Name() != "locomotion" || r.List()[1].Name() != "b" {
		t.Errorf("roster order = %s, %s", r.List()[0].Name(), r.List()[1].Name())
	}

	path := filepath.Join(dir, "a.yaml")
	old := w.Graph(path)
	writeFile(t, path, "name: rewritten\n")
	w.handle(fsnotify.Event{Name: path, Op: fsnotify.Write})

	if old.IsValid() {
		t.Error("replaced graph should be destroyed")
	}
	g := w.Graph(path)
	if g == nil || g.Name() != "rewritten" {
		t.Fatalf("Graph(a.yaml) = %v", g)
	}
	if got, ok := r.Lookup(old.ID()); !ok || got != host.Graph(g) {
		t.Error("rebuilt graph should take over the old ID")
	}
	if r.Len() != 2 || r.List()[0].ID() != old.ID() {
		t.Error("rebuilt graph should keep its roster position")
	}

	w.handle(fsnotify.Event{Name: filepath.Join(dir, "b.json"), Op: fsnotify.Remove})
	if r.Len() != 1 {
		t.Errorf("after remove: roster %d", r.Len())
	}

	want := []roster.EventKind{
		roster.Registered, roster.Registered,
		roster.Unregistered, roster.Registered,
		roster.Unregistered,
	}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, events[i], want[i])
		}
	}

	_ = w.Close()
	if r.Len() != 0 {
		t.Error("Close should unregister everything")
	}
}

func TestReloadKeepsSelection(t *testing.T) {
	dir := t.TempDir()
	first, second := filepath.Join(dir, "a.yaml"), filepath.Join(dir, "b.yaml")
	writeFile(t, first, locomotionYAML)
	writeFile(t, second, "name: second\n")

	r := roster.New()
	w, _ := NewWatcher(dir, r)
	_, _ = w.LoadAll()
	in, err := inspect.New(r, inspect.Options{})
	if err != nil {
		t.Fatal(err)
	}
	watched := w.Graph(second).ID()
	if !in.Select(watched) {
		t.Fatal("Select failed")
	}
	r.Pin(w.Graph(second))

	for i := range 3 {
		writeFile(t, second, fmt.Sprintf("name: second-%d\n", i))
		w.handle(fsnotify.Event{Name: second, Op: fsnotify.Write})

		f := in.Poll(context.Background())
		if f.Graph == nil || f.Graph.ID() != watched {
			t.Fatalf("reload %d: frame shows %s, want the rewritten file", i, f.GraphName())
		}
		if want := fmt.Sprintf("second-%d", i); f.GraphName() != want {
			t.Errorf("reload %d: frame shows %s, want %s", i, f.GraphName(), want)
		}
		if in.Selected() != watched || !r.Pinned(w.Graph(second)) {
			t.Errorf("reload %d: selection or pin lost", i)
		}
	}
	if names := []string{r.List()[0].Name(), r.List()[1].Name()}; names[0] != "locomotion" || names[1] != "second-2" {
		t.Errorf("roster order = %v", names)
	}
}

func TestWatcherKeepsGraphOnBadEdit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.yaml")
	writeFile(t, path, locomotionYAML)

	r := roster.New()
	w, _ := NewWatcher(dir, r)
	_, _ = w.LoadAll()
	before := w.Graph(path)

	writeFile(t, path, "outputs: [{name: o, source: missing}]\n")
	w.handle(fsnotify.Event{Name: path, Op: fsnotify.Write})

	if w.Graph(path) != before || !before.IsValid() || r.Len() != 1 {
		t.Error("a failed reload should keep the previous graph")
	}
}

func TestWatcherRun(t *testing.T) {
	dir := t.TempDir()
	r := roster.New()
	w, err := NewWatcher(dir, r)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run: %v", err)
		}
	}()

	// Run adds the directory watch before loading, so retry until the
	// create event lands.
	path := filepath.Join(dir, "late.yaml")
	deadline := time.Now().Add(5 * time.Second)
	for r.Len() == 0 && time.Now().Before(deadline) {
		writeFile(t, path, locomotionYAML)
		time.Sleep(50 * time.Millisecond)
	}
	if r.Len() != 1 {
		t.Fatalf("roster = %d after creating a scene", r.Len())
	}
}

func TestNewWatcherRejectsFiles(t *testing.T) {
	f := filepath.Join(t.TempDir(), "x.yaml")
	writeFile(t, f, "name: x\n")
	if _, err := NewWatcher(f, roster.New()); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("err = %v", err)
	}
}

func TestSampleScenes(t *testing.T) {
	dir := filepath.Join("..", "..", "examples", "scenes")
	r := roster.New()
	w, err := NewWatcher(dir, r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	n, err := w.LoadAll()
	if err != nil || n != 3 {
		t.Fatalf("LoadAll = %d, %v; want 3 scenes", n, err)
	}
	var names []string
	for _, g := range r.List() {
		names = append(names, g.Name())
	}
	if want := []string{"cutscene", "locomotion", "stale"}; !slices.Equal(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
	if g := w.Graph(filepath.Join(dir, "cutscene.toml")); g == nil || g.OutputCount() != 2 {
		t.Error("cutscene should load with two outputs")
	}
}
