package layout_test

import (
	"fmt"

	"github.com/matzehuels/blendview/pkg/adapter"
	"github.com/matzehuels/blendview/pkg/host/memory"
	"github.com/matzehuels/blendview/pkg/layout"
)

func ExampleReingoldTilford() {
	g := memory.New("locomotion")
	out := g.AddOutput("Animation", "AnimationPlayableOutput")
	mixer := g.AddPlayable("blend", "AnimationMixerPlayable", 2)
	_ = g.SetSource(out, mixer)
	_ = g.Connect(mixer, 0, g.AddPlayable("walk", "AnimationClipPlayable", 0), 0.3)
	_ = g.Connect(mixer, 1, g.AddPlayable("run", "AnimationClipPlayable", 0), 0.7)

	v := adapter.New(g)
	_ = v.Refresh()

	l, err := layout.Default.Compute(v.Graph, layout.DefaultSettings(), layout.Size(600, 300))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("grid: %vx%d, node %vx%v\n", l.Columns, l.Rows, l.NodeWidth, l.NodeHeight)
	for id, n := range v.All() {
		p := l.At(id)
		fmt.Printf("%-9s (%.3f, %.3f)\n", n.Label, p.X, p.Y)
	}
	// Output:
	// grid: 2x3, node 100x66.66666666666667
	// Animation (0.500, 0.167)
	// blend     (0.500, 0.500)
	// walk      (0.250, 0.833)
	// run       (0.750, 0.833)
}
