// Package inspect drives the poll cycle of the graph inspector.
//
// Every poll rebuilds the picture from scratch:
//
//  1. Select: pick one graph from the roster's candidates, keeping the current
//     selection while it is still offered.
//  2. Refresh: if the graph is valid, repopulate its snapshot.
//  3. Layout: position the snapshot inside the configured canvas.
//
// The outcome is a [Frame] whose [State] tells the caller what to draw.
// Poll never fails; problems are reported through the frame.
//
// # Usage
//
//	in, err := inspect.New(r, inspect.Options{Logger: logger})
//	if err != nil {
//	    return err
//	}
//	frame := in.Poll(ctx)
//	if frame.Normal() {
//	    out, err := svg.Render(graph.FromFrame(frame), render.DefaultOptions())
//	}
package inspect

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blendview/pkg/adapter"
	"github.com/matzehuels/blendview/pkg/errors"
	"github.com/matzehuels/blendview/pkg/host"
	"github.com/matzehuels/blendview/pkg/layout"
	"github.com/matzehuels/blendview/pkg/observability"
	"github.com/matzehuels/blendview/pkg/roster"
	"github.com/matzehuels/blendview/pkg/snapshot"
)

// Default canvas size in pixels.
const (
	DefaultWidth  = 800.0
	DefaultHeight = 600.0
)

// Limits bounds a single snapshot walk. Zero values use the snapshot defaults.
type Limits struct {
	MaxDepth int
	MaxNodes int
}

// Options configures an Inspector.
type Options struct {
	Settings layout.Settings
	Limits   Limits

	// Canvas is the pixel rectangle layouts are mapped into.
	Canvas layout.Rect

	// Engine computes layouts. Nil uses layout.Default.
	Engine layout.Engine

	Logger *log.Logger
}

// withDefaults fills unset fields.
func (o Options) withDefaults() Options {
	if o.Settings == (layout.Settings{}) {
		o.Settings = layout.DefaultSettings()
	}
	if o.Canvas == (layout.Rect{}) {
		o.Canvas = layout.Size(DefaultWidth, DefaultHeight)
	}
	if o.Engine == nil {
		o.Engine = layout.Default
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// Validate checks the settings and canvas.
func (o Options) Validate() error {
	if err := o.Settings.Validate(); err != nil {
		return err
	}
	if o.Canvas.Empty() {
		return errors.New(errors.ErrCodeInvalidSettings, "canvas is empty: %vx%v", o.Canvas.Width(), o.Canvas.Height())
	}
	if o.Limits.MaxDepth < 0 || o.Limits.MaxNodes < 0 {
		return errors.New(errors.ErrCodeInvalidSettings, "limits must not be negative")
	}
	return nil
}

// Inspector polls a roster and produces frames. Methods are safe for
// concurrent use; polls are serialized.
type Inspector struct {
	roster *roster.Roster
	opts   Options

	mu       sync.Mutex
	selected string
}

// New creates an Inspector over r.
func New(r *roster.Roster, opts Options) (*Inspector, error) {
	if r == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nil roster")
	}
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return &Inspector{roster: r, opts: opts}, nil
}

// Roster returns the roster being polled.
func (in *Inspector) Roster() *roster.Roster { return in.roster }

// Options returns the effective options.
func (in *Inspector) Options() Options {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.opts
}

// SetSettings replaces the layout settings used by later polls.
func (in *Inspector) SetSettings(s layout.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	in.opts.Settings = s
	return nil
}

// SetCanvas replaces the target rectangle used by later polls.
func (in *Inspector) SetCanvas(r layout.Rect) error {
	if r.Empty() {
		return errors.New(errors.ErrCodeInvalidSettings, "canvas is empty: %vx%v", r.Width(), r.Height())
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	in.opts.Canvas = r
	return nil
}

// Poll runs one select, refresh and layout cycle. Each frame owns its
// snapshot and layout; a later Poll never changes them.
//
// A context cancelled before the poll starts yields a StateNoGraph frame
// carrying ctx.Err() and no traversal takes place.
func (in *Inspector) Poll(ctx context.Context) *Frame {
	in.mu.Lock()
	defer in.mu.Unlock()

	f := &Frame{Selected: -1, CapturedAt: time.Now()}
	if err := ctx.Err(); err != nil {
		f.Err = err
		return finish(ctx, f, StateNoGraph)
	}

	f.Graphs = in.roster.Candidates()
	if len(f.Graphs) == 0 {
		in.selected = ""
		return finish(ctx, f, StateNoGraph)
	}

	idx := indexOf(f.Graphs, in.selected)
	if idx < 0 {
		idx = 0
	}
	g := f.Graphs[idx]
	in.selected = g.ID()
	f.Selected, f.Graph = idx, g

	return run(ctx, f, adapter.New(g, in.opts.snapshotOptions()...), in.opts)
}

// Inspect runs one refresh and layout cycle for g without touching the
// selection.
func (in *Inspector) Inspect(ctx context.Context, g host.Graph) *Frame {
	in.mu.Lock()
	opts := in.opts
	in.mu.Unlock()

	f := &Frame{Selected: -1, Graph: g, CapturedAt: time.Now()}
	if err := ctx.Err(); err != nil {
		f.Err = err
		return finish(ctx, f, StateNoGraph)
	}
	if g == nil {
		return finish(ctx, f, StateNoGraph)
	}
	f.Graphs = []host.Graph{g}
	f.Selected = 0
	return run(ctx, f, adapter.New(g, opts.snapshotOptions()...), opts)
}

func run(ctx context.Context, f *Frame, v *adapter.Visualizer, opts Options) *Frame {
	if !v.IsValid() {
		return finish(ctx, f, StateInvalidGraph)
	}

	start := time.Now()
	err := v.Refresh()
	f.Stats.RefreshTime = time.Since(start)
	observability.Inspect().OnRefresh(ctx, host.DisplayName(v.Host()), v.Len(), f.Stats.RefreshTime, err)

	switch {
	case errors.Is(err, errors.ErrCodeGraphTooLarge):
		f.Err = err
		opts.Logger.Warn("graph too large", "graph", host.DisplayName(v.Host()), "err", err)
		return finish(ctx, f, StateTooLarge)
	case err != nil:
		f.Err = err
		return finish(ctx, f, StateInvalidGraph)
	case !v.IsValid():
		// Torn down mid-walk; whatever was collected is not trustworthy.
		v.Clear()
		return finish(ctx, f, StateInvalidGraph)
	}

	f.Snapshot = v.Graph
	st := v.Stats()
	f.Stats.Nodes, f.Stats.Roots, f.Stats.Leaves, f.Stats.MaxDepth = st.Nodes, st.Roots, st.Leaves, st.MaxDepth
	if v.IsEmpty() {
		return finish(ctx, f, StateEmptyGraph)
	}

	start = time.Now()
	l, err := opts.Engine.Compute(v.Graph, opts.Settings, opts.Canvas)
	f.Stats.LayoutTime = time.Since(start)
	observability.Inspect().OnLayout(ctx, v.Len(), f.Stats.LayoutTime, err)
	if err != nil {
		f.Err = err
		opts.Logger.Error("layout failed", "err", err)
		return finish(ctx, f, StateInvalidGraph)
	}
	f.Layout = l

	opts.Logger.Debug("refreshed",
		"graph", host.DisplayName(v.Host()),
		"nodes", st.Nodes,
		"refresh", f.Stats.RefreshTime,
		"layout", f.Stats.LayoutTime)
	return finish(ctx, f, StateNormal)
}

func finish(ctx context.Context, f *Frame, s State) *Frame {
	f.State = s
	f.Message = s.Message()
	observability.Inspect().OnPoll(ctx, s.String())
	return f
}

func (o Options) snapshotOptions() []snapshot.Option {
	return []snapshot.Option{
		snapshot.WithMaxDepth(o.Limits.MaxDepth),
		snapshot.WithMaxNodes(o.Limits.MaxNodes),
	}
}

// =============================================================================
// Selection
// =============================================================================

// Selected returns the ID of the selected graph, or "".
func (in *Inspector) Selected() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.selected
}

// Select makes the registered graph with the given ID the selection.
func (in *Inspector) Select(id string) bool {
	if _, ok := in.roster.Lookup(id); !ok {
		return false
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	in.selected = id
	return true
}

// SelectIndex selects the i-th current candidate.
func (in *Inspector) SelectIndex(i int) bool {
	gs := in.roster.Candidates()
	if i < 0 || i >= len(gs) {
		return false
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	in.selected = gs[i].ID()
	return true
}

// Next advances the selection to the following candidate, wrapping around.
func (in *Inspector) Next() { in.step(1) }

// Prev moves the selection to the preceding candidate, wrapping around.
func (in *Inspector) Prev() { in.step(-1) }

func (in *Inspector) step(delta int) {
	gs := in.roster.Candidates()
	if len(gs) == 0 {
		return
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	i := indexOf(gs, in.selected)
	if i < 0 {
		i = 0
	} else {
		i = (i + delta + len(gs)) % len(gs)
	}
	in.selected = gs[i].ID()
}

func indexOf(gs []host.Graph, id string) int {
	if id == "" {
		return -1
	}
	for i, g := range gs {
		if g.ID() == id {
			return i
		}
	}
	return -1
}
