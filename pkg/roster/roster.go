// Package roster tracks the live host graphs available for inspection.
//
// A Roster is an explicit service: the host wires its own graph lifecycle
// events into Register and Unregister, and inspectors read the current list.
// Callbacks may arrive from any goroutine.
package roster

import (
	"context"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blendview/pkg/host"
	"github.com/matzehuels/blendview/pkg/observability"
)

// EventKind is the type of a roster change.
type EventKind uint8

const (
	Registered EventKind = iota
	Unregistered
)

func (k EventKind) String() string {
	if k == Registered {
		return "registered"
	}
	return "unregistered"
}

// Event describes one roster change.
type Event struct {
	Kind  EventKind
	Graph host.Graph
}

// Listener is notified after every roster change. Listeners run synchronously
// on the goroutine that made the change, after the roster lock is released.
type Listener func(Event)

// Roster is a concurrency-safe, ordered set of host graphs.
type Roster struct {
	mu        sync.RWMutex
	graphs    []host.Graph
	pinned    map[string]bool
	listeners []Listener
	logger    *log.Logger
}

// Option configures a Roster.
type Option func(*Roster)

// WithLogger sets the logger used for lifecycle messages.
func WithLogger(l *log.Logger) Option {
	return func(r *Roster) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates an empty roster.
func New(opts ...Option) *Roster {
	r := &Roster{
		pinned: make(map[string]bool),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds g. It reports false if g is nil or a graph with the same ID
// is already registered.
func (r *Roster) Register(g host.Graph) bool {
	if g == nil {
		return false
	}
	r.mu.Lock()
	if r.indexLocked(g.ID()) >= 0 {
		r.mu.Unlock()
		return false
	}
	r.graphs = append(r.graphs, g)
	total := len(r.graphs)
	listeners := slices.Clone(r.listeners)
	r.mu.Unlock()

	r.logger.Debug("graph registered", "id", g.ID(), "name", host.DisplayName(g), "total", total)
	observability.Roster().OnGraphRegistered(context.Background(), total)
	notify(listeners, Event{Kind: Registered, Graph: g})
	return true
}

// Unregister removes the graph with g's ID. It reports whether a graph was
// removed. Pins are dropped with the graph.
func (r *Roster) Unregister(g host.Graph) bool {
	if g == nil {
		return false
	}
	r.mu.Lock()
	i := r.indexLocked(g.ID())
	if i < 0 {
		r.mu.Unlock()
		return false
	}
	removed := r.graphs[i]
	r.graphs = slices.Delete(r.graphs, i, i+1)
	delete(r.pinned, g.ID())
	total := len(r.graphs)
	listeners := slices.Clone(r.listeners)
	r.mu.Unlock()

	r.logger.Debug("graph unregistered", "id", g.ID(), "total", total)
	observability.Roster().OnGraphUnregistered(context.Background(), total)
	notify(listeners, Event{Kind: Unregistered, Graph: removed})
	return true
}

// Replace swaps old for g at old's position, keeping old's pin. g may carry
// old's ID; otherwise its ID must not be registered yet. Listeners see old
// unregistered, then g registered. It reports false if old is not
// registered or g cannot take its place.
func (r *Roster) Replace(old, g host.Graph) bool {
	if old == nil || g == nil {
		return false
	}
	r.mu.Lock()
	i := r.indexLocked(old.ID())
	if i < 0 || (g.ID() != old.ID() && r.indexLocked(g.ID()) >= 0) {
		r.mu.Unlock()
		return false
	}
	removed := r.graphs[i]
	r.graphs[i] = g
	if r.pinned[old.ID()] {
		delete(r.pinned, old.ID())
		r.pinned[g.ID()] = true
	}
	total := len(r.graphs)
	listeners := slices.Clone(r.listeners)
	r.mu.Unlock()

	r.logger.Debug("graph replaced", "id", g.ID(), "name", host.DisplayName(g))
	observability.Roster().OnGraphUnregistered(context.Background(), total)
	observability.Roster().OnGraphRegistered(context.Background(), total)
	notify(listeners, Event{Kind: Unregistered, Graph: removed})
	notify(listeners, Event{Kind: Registered, Graph: g})
	return true
}

// List returns the registered graphs in registration order. Graphs that have
// since become invalid are still listed.
func (r *Roster) List() []host.Graph {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.graphs)
}

// Len returns the number of registered graphs.
func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.graphs)
}

// Lookup returns the registered graph with the given ID.
func (r *Roster) Lookup(id string) (host.Graph, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexLocked(id); i >= 0 {
		return r.graphs[i], true
	}
	return nil, false
}

// Pin marks a registered graph as explicitly exposed for inspection, the
// way a runtime component publishes the graph it owns. It reports false for
// unknown graphs.
func (r *Roster) Pin(g host.Graph) bool {
	if g == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexLocked(g.ID()) < 0 {
		return false
	}
	r.pinned[g.ID()] = true
	return true
}

// Unpin removes a pin. Unpinning an unpinned graph is a no-op.
func (r *Roster) Unpin(g host.Graph) {
	if g == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pinned, g.ID())
}

// Pinned reports whether g is pinned.
func (r *Roster) Pinned(g host.Graph) bool {
	if g == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pinned[g.ID()]
}

// Candidates returns the graphs offered for selection: the valid pinned
// graphs if there are any, otherwise every registered graph. Order follows
// registration.
func (r *Roster) Candidates() []host.Graph {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var pinned []host.Graph
	for _, g := range r.graphs {
		if r.pinned[g.ID()] && host.GraphValid(g) {
			pinned = append(pinned, g)
		}
	}
	if len(pinned) > 0 {
		return pinned
	}
	return slices.Clone(r.graphs)
}

// OnChange registers fn to be called after every Register, Unregister and
// Replace.
func (r *Roster) OnChange(fn Listener) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

func (r *Roster) indexLocked(id string) int {
	return slices.IndexFunc(r.graphs, func(g host.Graph) bool { return g.ID() == id })
}

func notify(listeners []Listener, ev Event) {
	for _, fn := range listeners {
		fn(ev)
	}
}
