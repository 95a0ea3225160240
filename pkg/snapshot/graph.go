package snapshot

import (
	"fmt"
	"iter"

	"github.com/google/uuid"

	"github.com/matzehuels/blendview/pkg/errors"
)

const (
	// DefaultMaxDepth is the deepest node depth a walk accepts. Real blend
	// trees are a handful of levels deep; anything near this is a cycle.
	DefaultMaxDepth = 256

	// DefaultMaxNodes bounds the number of nodes in one snapshot.
	DefaultMaxNodes = 10000
)

var (
	// ErrTooDeep is returned when a walk exceeds the depth ceiling,
	// typically because the host graph contains a cycle.
	ErrTooDeep = errors.New(errors.ErrCodeGraphTooLarge, "graph too deep to display")

	// ErrTooLarge is returned when a walk exceeds the node-count ceiling.
	ErrTooLarge = errors.New(errors.ErrCodeGraphTooLarge, "graph too large to display")
)

// Source supplies the shape of a concrete host graph.
//
// Populate is called by Refresh on an empty Graph and usually calls
// AddNodeHierarchy once per root. Children returns the ordered children of
// n, or nil if it has none; the returned nodes are detached and are linked
// by the Graph. Children must not retain n.
type Source interface {
	Populate(g *Graph) error
	Children(n *Node) []Node
}

// Graph is an ordered, append-only arena of nodes built by one population
// pass. Insertion order is pre-order depth-first from the roots, so every
// node's parent precedes it.
//
// A Graph is not safe for concurrent use.
type Graph struct {
	src      Source
	id       string
	nodes    []Node
	roots    []ID
	maxDepth int
	maxNodes int
}

// Option configures a Graph.
type Option func(*Graph)

// WithMaxDepth sets the deepest depth a walk accepts. Values <= 0 keep the default.
func WithMaxDepth(n int) Option {
	return func(g *Graph) {
		if n > 0 {
			g.maxDepth = n
		}
	}
}

// WithMaxNodes sets the node-count ceiling. Values <= 0 keep the default.
func WithMaxNodes(n int) Option {
	return func(g *Graph) {
		if n > 0 {
			g.maxNodes = n
		}
	}
}

// New creates an empty Graph whose children are discovered by src.
// src may be nil for graphs assembled by hand with AddNode.
func New(src Source, opts ...Option) *Graph {
	g := &Graph{
		src:      src,
		id:       uuid.NewString(),
		maxDepth: DefaultMaxDepth,
		maxNodes: DefaultMaxNodes,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ID identifies the current population pass. It changes on every Clear.
func (g *Graph) ID() string { return g.id }

// AddNode appends n as given. No uniqueness check is made and no links are
// created; Parent and Depth are taken from n.
func (g *Graph) AddNode(n Node) ID {
	id := ID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	if n.Parent == NoParent {
		g.roots = append(g.roots, id)
	}
	return id
}

// AddNodeHierarchy adds root and, depth first, every descendant the Source
// reports. Children keep the order the Source returns them in.
//
// The walk uses an explicit stack and stops with ErrTooDeep or ErrTooLarge
// when a ceiling is hit; nodes added before the failure stay in the graph.
// Refresh clears them.
func (g *Graph) AddNodeHierarchy(root Node) (ID, error) {
	type item struct {
		node   Node
		parent ID
	}

	rootID := NoParent
	stack := []item{{node: root, parent: NoParent}}

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		depth := 0
		if it.parent != NoParent {
			depth = g.nodes[it.parent].Depth + 1
		}
		if depth > g.maxDepth {
			return rootID, fmt.Errorf("%w: depth %d exceeds %d", ErrTooDeep, depth, g.maxDepth)
		}
		if len(g.nodes) >= g.maxNodes {
			return rootID, fmt.Errorf("%w: more than %d nodes", ErrTooLarge, g.maxNodes)
		}

		n := it.node
		n.Parent = it.parent
		n.Depth = depth
		n.Children = nil
		n.Placed = false

		id := g.AddNode(n)
		if it.parent == NoParent {
			rootID = id
		} else {
			g.nodes[it.parent].Children = append(g.nodes[it.parent].Children, id)
		}

		if g.src == nil {
			continue
		}
		children := g.src.Children(&g.nodes[id])
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, item{node: children[i], parent: id})
		}
	}

	return rootID, nil
}

// Clear drops every node and starts a new population pass.
func (g *Graph) Clear() {
	clear(g.nodes)
	g.nodes = g.nodes[:0]
	g.roots = g.roots[:0]
	g.id = uuid.NewString()
}

// Refresh clears the graph and repopulates it from the Source. If population
// fails the graph is left empty, so a truncated tree is never observable.
func (g *Graph) Refresh() error {
	g.Clear()
	if g.src == nil {
		return nil
	}
	if err := g.src.Populate(g); err != nil {
		g.Clear()
		return err
	}
	return nil
}

// IsEmpty reports whether the graph holds no nodes.
func (g *Graph) IsEmpty() bool { return len(g.nodes) == 0 }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Node returns the node with the given id, or nil if out of range.
// The pointer is invalidated by the next AddNode, Clear or Refresh.
func (g *Graph) Node(id ID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return &g.nodes[id]
}

// Nodes returns a copy of all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// All iterates over the nodes in insertion order.
func (g *Graph) All() iter.Seq2[ID, *Node] {
	return func(yield func(ID, *Node) bool) {
		for i := range g.nodes {
			if !yield(ID(i), &g.nodes[i]) {
				return
			}
		}
	}
}

// Roots returns the ids of parentless nodes in enumeration order.
func (g *Graph) Roots() []ID {
	out := make([]ID, len(g.roots))
	copy(out, g.roots)
	return out
}

// Parent returns the parent of id, or false for roots and unknown ids.
func (g *Graph) Parent(id ID) (ID, bool) {
	n := g.Node(id)
	if n == nil || n.Parent == NoParent {
		return NoParent, false
	}
	return n.Parent, true
}

// Stats summarizes a graph for inspectors and logs.
type Stats struct {
	Nodes    int
	Roots    int
	Leaves   int
	MaxDepth int
	ByKind   map[Kind]int
}

// Stats computes summary counts.
func (g *Graph) Stats() Stats {
	s := Stats{Nodes: len(g.nodes), Roots: len(g.roots), ByKind: make(map[Kind]int)}
	for i := range g.nodes {
		n := &g.nodes[i]
		s.ByKind[n.Kind]++
		if n.IsLeaf() {
			s.Leaves++
		}
		s.MaxDepth = max(s.MaxDepth, n.Depth)
	}
	return s
}
