// Package memory provides an in-process host graph that can be mutated
// concurrently with inspection.
//
// It backs scene files loaded from disk and serves as the fixture for every
// inspection test. All handles share their graph's lock, so a reader never
// observes a half-applied mutation, but a reader walking the graph across
// several calls can observe mutations between calls - exactly the stale
// handle races a real host produces.
//
// Destroying a playable does not disconnect it: ports that referenced it keep
// returning the handle, which then reports itself invalid.
package memory

import (
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/matzehuels/blendview/pkg/errors"
	"github.com/matzehuels/blendview/pkg/host"
)

// Graph is a mutable in-memory host graph.
type Graph struct {
	id   string
	name string

	mu        sync.RWMutex
	destroyed bool
	outputs   []*Output
	playables []*Playable
}

// Output is an output slot of a memory Graph.
type Output struct {
	g         *Graph
	name      string
	typ       string
	source    *Playable
	destroyed bool
}

// Playable is a node of a memory Graph.
type Playable struct {
	g         *Graph
	name      string
	typ       string
	inputs    []port
	destroyed bool
}

type port struct {
	src    *Playable
	weight float64
}

// New creates an empty graph with a fresh identifier.
func New(name string) *Graph {
	return &Graph{id: uuid.NewString(), name: name}
}

// ID returns the graph identifier.
func (g *Graph) ID() string { return g.id }

// SetID replaces the identifier, so a rebuilt graph can take over the ID of
// the graph it replaces. Call it before the graph is registered anywhere;
// ID is read without locking.
func (g *Graph) SetID(id string) { g.id = id }

// Name returns the graph name.
func (g *Graph) Name() string { return g.name }

// IsValid reports whether the graph has not been destroyed.
func (g *Graph) IsValid() bool {
	if g == nil {
		return false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return !g.destroyed
}

// OutputCount returns the number of output slots, including destroyed ones.
func (g *Graph) OutputCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.outputs)
}

// Output returns the output at index i, or nil if out of range.
func (g *Graph) Output(i int) host.Output {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if i < 0 || i >= len(g.outputs) {
		return nil
	}
	return g.outputs[i]
}

// PlayableCount returns the number of playables ever added, including destroyed ones.
func (g *Graph) PlayableCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.playables)
}

// AddOutput appends an output slot.
func (g *Graph) AddOutput(name, typ string) *Output {
	g.mu.Lock()
	defer g.mu.Unlock()
	o := &Output{g: g, name: name, typ: typ}
	g.outputs = append(g.outputs, o)
	return o
}

// AddPlayable adds a playable with the given type and inputCount empty ports.
func (g *Graph) AddPlayable(name, typ string, inputCount int) *Playable {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := &Playable{g: g, name: name, typ: typ, inputs: make([]port, max(inputCount, 0))}
	g.playables = append(g.playables, p)
	return p
}

// Connect wires src into dst's input port with the given weight, growing the
// port list if needed. Connecting a playable to itself is allowed; hosts can
// produce cycles and the inspector has to survive them.
func (g *Graph) Connect(dst *Playable, portIndex int, src *Playable, weight float64) error {
	if err := g.checkOwned(dst); err != nil {
		return err
	}
	if err := g.checkOwned(src); err != nil {
		return err
	}
	if portIndex < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "negative port index %d", portIndex)
	}
	if err := checkWeight(weight); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for len(dst.inputs) <= portIndex {
		dst.inputs = append(dst.inputs, port{})
	}
	dst.inputs[portIndex] = port{src: src, weight: weight}
	return nil
}

// Disconnect clears dst's input port. The port itself remains.
func (g *Graph) Disconnect(dst *Playable, portIndex int) error {
	if err := g.checkOwned(dst); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if portIndex < 0 || portIndex >= len(dst.inputs) {
		return errors.New(errors.ErrCodeInvalidInput, "port %d out of range", portIndex)
	}
	dst.inputs[portIndex] = port{}
	return nil
}

// SetInputWeight updates the weight reported for dst's port.
func (g *Graph) SetInputWeight(dst *Playable, portIndex int, weight float64) error {
	if err := g.checkOwned(dst); err != nil {
		return err
	}
	if err := checkWeight(weight); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if portIndex < 0 || portIndex >= len(dst.inputs) {
		return errors.New(errors.ErrCodeInvalidInput, "port %d out of range", portIndex)
	}
	dst.inputs[portIndex].weight = weight
	return nil
}

// SetSource connects p to output o. A nil p disconnects the output.
func (g *Graph) SetSource(o *Output, p *Playable) error {
	if o == nil || o.g != g {
		return errors.New(errors.ErrCodeInvalidInput, "output does not belong to graph %q", g.name)
	}
	if p != nil {
		if err := g.checkOwned(p); err != nil {
			return err
		}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	o.source = p
	return nil
}

// DestroyPlayable invalidates p. Ports referencing it keep the stale handle.
func (g *Graph) DestroyPlayable(p *Playable) {
	if p == nil || p.g != g {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	p.destroyed = true
}

// DestroyOutput invalidates o.
func (g *Graph) DestroyOutput(o *Output) {
	if o == nil || o.g != g {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	o.destroyed = true
}

// Destroy invalidates the graph and every handle it issued.
func (g *Graph) Destroy() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.destroyed = true
}

func (g *Graph) checkOwned(p *Playable) error {
	if p == nil || p.g != g {
		return errors.New(errors.ErrCodeInvalidInput, "playable does not belong to graph %q", g.name)
	}
	return nil
}

func checkWeight(w float64) error {
	if math.IsNaN(w) || w < 0 || w > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "weight %v outside [0,1]", w)
	}
	return nil
}

// IsValid reports whether the output and its graph still exist.
func (o *Output) IsValid() bool {
	if o == nil {
		return false
	}
	o.g.mu.RLock()
	defer o.g.mu.RUnlock()
	return !o.destroyed && !o.g.destroyed
}

// Name returns the output name.
func (o *Output) Name() string { return o.name }

// Type returns the output type name.
func (o *Output) Type() string { return o.typ }

// Source returns the connected playable, or nil.
func (o *Output) Source() host.Playable {
	o.g.mu.RLock()
	defer o.g.mu.RUnlock()
	if o.source == nil {
		return nil
	}
	return o.source
}

// IsValid reports whether the playable and its graph still exist.
func (p *Playable) IsValid() bool {
	if p == nil {
		return false
	}
	p.g.mu.RLock()
	defer p.g.mu.RUnlock()
	return !p.destroyed && !p.g.destroyed
}

// Name returns the playable's scene name.
func (p *Playable) Name() string { return p.name }

// Type returns the playable type name.
func (p *Playable) Type() string { return p.typ }

// InputCount returns the number of input ports.
func (p *Playable) InputCount() int {
	p.g.mu.RLock()
	defer p.g.mu.RUnlock()
	return len(p.inputs)
}

// Input returns the playable connected at portIndex, or nil.
func (p *Playable) Input(portIndex int) host.Playable {
	p.g.mu.RLock()
	defer p.g.mu.RUnlock()
	if portIndex < 0 || portIndex >= len(p.inputs) || p.inputs[portIndex].src == nil {
		return nil
	}
	return p.inputs[portIndex].src
}

// InputWeight returns the weight of portIndex, or 0 if out of range.
func (p *Playable) InputWeight(portIndex int) float64 {
	p.g.mu.RLock()
	defer p.g.mu.RUnlock()
	if portIndex < 0 || portIndex >= len(p.inputs) {
		return 0
	}
	return p.inputs[portIndex].weight
}

var (
	_ host.Graph    = (*Graph)(nil)
	_ host.Output   = (*Output)(nil)
	_ host.Playable = (*Playable)(nil)
)
