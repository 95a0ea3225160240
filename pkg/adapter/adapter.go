// Package adapter turns a live host graph into a snapshot.Graph.
//
// A Visualizer walks every valid output of one host graph, synthesizes an
// output root per output and descends through connected inputs. Validity is
// re-checked immediately before every read; entities that disappear between
// reads are skipped, never reported.
package adapter

import (
	"math"

	"github.com/matzehuels/blendview/pkg/host"
	"github.com/matzehuels/blendview/pkg/snapshot"
)

// Visualizer is a snapshot.Graph populated from one host graph.
type Visualizer struct {
	*snapshot.Graph
	host host.Graph
}

// New creates a Visualizer for g. The snapshot is empty until Refresh.
func New(g host.Graph, opts ...snapshot.Option) *Visualizer {
	v := &Visualizer{host: g}
	v.Graph = snapshot.New(v, opts...)
	return v
}

// Host returns the inspected host graph.
func (v *Visualizer) Host() host.Graph { return v.host }

// IsValid reports whether the host graph still exists.
func (v *Visualizer) IsValid() bool { return host.GraphValid(v.host) }

// Populate adds one hierarchy per valid output. An invalid host graph
// leaves the snapshot empty; a torn-down graph is not an error.
func (v *Visualizer) Populate(g *snapshot.Graph) error {
	if !host.GraphValid(v.host) {
		return nil
	}
	count := v.host.OutputCount()
	for i := 0; i < count; i++ {
		out := v.host.Output(i)
		if !host.OutputValid(out) {
			continue
		}
		if _, err := g.AddNodeHierarchy(outputNode(out)); err != nil {
			return err
		}
	}
	return nil
}

// Children returns the inputs feeding n.
func (v *Visualizer) Children(n *snapshot.Node) []snapshot.Node {
	if n.Kind == snapshot.KindOutput {
		o, _ := n.Content.(host.Output)
		return outputInputs(o)
	}
	p, _ := n.Content.(host.Playable)
	return playableInputs(p)
}

// outputInputs returns the single playable feeding an output, at weight 1.
func outputInputs(o host.Output) []snapshot.Node {
	if !host.OutputValid(o) {
		return nil
	}
	src := o.Source()
	if !host.PlayableValid(src) {
		return nil
	}
	return []snapshot.Node{playableNode(src, 1)}
}

// playableInputs returns every valid connected input in port order, each
// carrying its port weight. Weights are not normalized across ports.
func playableInputs(p host.Playable) []snapshot.Node {
	if !host.PlayableValid(p) {
		return nil
	}
	count := p.InputCount()
	var inputs []snapshot.Node
	for port := 0; port < count; port++ {
		in := p.Input(port)
		if !host.PlayableValid(in) {
			continue
		}
		inputs = append(inputs, playableNode(in, portWeight(p.InputWeight(port))))
	}
	return inputs
}

// portWeight clamps a reported weight into [0,1]. NaN is a bad read and
// counts as 0.
func portWeight(w float64) float64 {
	if math.IsNaN(w) {
		return 0
	}
	return max(0, min(1, w))
}

func outputNode(o host.Output) snapshot.Node {
	label := o.Name()
	if label == "" {
		label = o.Type()
	}
	return snapshot.NewNode(o, snapshot.KindOutput, label, 1)
}

func playableNode(p host.Playable, weight float64) snapshot.Node {
	return snapshot.NewNode(p, Classify(p.Type()), label(p), weight)
}

// named is implemented by hosts that can report a per-playable name.
type named interface {
	Name() string
}

func label(p host.Playable) string {
	if n, ok := p.(named); ok && n.Name() != "" {
		return n.Name()
	}
	return p.Type()
}

var _ snapshot.Source = (*Visualizer)(nil)
