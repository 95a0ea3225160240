package graph

import (
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/blendview/pkg/inspect"
	"github.com/matzehuels/blendview/pkg/snapshot"
)

// =============================================================================
// Snapshot - Captured Poll
// =============================================================================

// Snapshot is the canonical serialization format of one inspected graph.
// Used for API responses, storage, caching, and file exports.
type Snapshot struct {
	ID         string    `json:"id" bson:"id"`
	GraphID    string    `json:"graph_id,omitempty" bson:"graph_id,omitempty"`
	GraphName  string    `json:"graph_name" bson:"graph_name"`
	State      string    `json:"state" bson:"state"`
	Message    string    `json:"message,omitempty" bson:"message,omitempty"`
	CapturedAt time.Time `json:"captured_at" bson:"captured_at"`

	// Layout geometry in pixels. Zero when the snapshot was not laid out.
	Orientation string  `json:"orientation,omitempty" bson:"orientation,omitempty"`
	Width       float64 `json:"width,omitempty" bson:"width,omitempty"`
	Height      float64 `json:"height,omitempty" bson:"height,omitempty"`
	NodeWidth   float64 `json:"node_width,omitempty" bson:"node_width,omitempty"`
	NodeHeight  float64 `json:"node_height,omitempty" bson:"node_height,omitempty"`

	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Normal reports whether the snapshot holds a drawable layout.
func (s *Snapshot) Normal() bool {
	return s != nil && s.State == inspect.StateNormal.String()
}

// Roots returns the IDs of parentless nodes in order.
func (s *Snapshot) Roots() []int {
	var out []int
	for _, n := range s.Nodes {
		if n.IsRoot() {
			out = append(out, n.ID)
		}
	}
	return out
}

// Node returns the node with the given id, or nil.
func (s *Snapshot) Node(id int) *Node {
	if id >= 0 && id < len(s.Nodes) && s.Nodes[id].ID == id {
		return &s.Nodes[id]
	}
	for i := range s.Nodes {
		if s.Nodes[i].ID == id {
			return &s.Nodes[i]
		}
	}
	return nil
}

// Children returns the IDs of id's children in input order.
func (s *Snapshot) Children(id int) []int {
	var out []int
	for _, e := range s.Edges {
		if e.From == id {
			out = append(out, e.To)
		}
	}
	return out
}

// =============================================================================
// Node, Edge, Rect
// =============================================================================

// Node is one serialized snapshot node.
type Node struct {
	ID     int     `json:"id" bson:"id"`
	Kind   string  `json:"kind" bson:"kind"`
	Label  string  `json:"label" bson:"label"`
	Weight float64 `json:"weight" bson:"weight"`
	Depth  int     `json:"depth" bson:"depth"`
	Parent int     `json:"parent" bson:"parent"`

	// X and Y are normalized canvas coordinates in [0,1].
	X    float64 `json:"x" bson:"x"`
	Y    float64 `json:"y" bson:"y"`
	Rect Rect    `json:"rect" bson:"rect"`
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool { return n.Parent < 0 }

// DisplayLabel returns the label, or the kind for unlabeled nodes.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.Kind
}

// Edge is a parent to child link carrying the child's input weight.
type Edge struct {
	From   int     `json:"from" bson:"from"`
	To     int     `json:"to" bson:"to"`
	Weight float64 `json:"weight" bson:"weight"`
}

// Rect is a pixel rectangle.
type Rect struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
	W float64 `json:"w" bson:"w"`
	H float64 `json:"h" bson:"h"`
}

// CenterX returns the horizontal center point.
func (r Rect) CenterX() float64 { return r.X + r.W/2 }

// CenterY returns the vertical center point.
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// =============================================================================
// Frame → Snapshot Conversion
// =============================================================================

// FromFrame captures a poll outcome. The result shares nothing with the
// frame and stays valid after the next poll.
func FromFrame(f *inspect.Frame) *Snapshot {
	out := &Snapshot{
		ID:         uuid.NewString(),
		GraphName:  f.GraphName(),
		State:      f.State.String(),
		Message:    f.Message,
		CapturedAt: f.CapturedAt.UTC(),
		Nodes:      []Node{},
		Edges:      []Edge{},
	}
	if f.Graph != nil {
		out.GraphID = f.Graph.ID()
	}
	if f.Snapshot == nil {
		return out
	}
	out.ID = f.Snapshot.ID()

	if l := f.Layout; l != nil {
		out.Orientation = l.Orientation.String()
		out.Width, out.Height = l.Bounds.Width(), l.Bounds.Height()
		out.NodeWidth, out.NodeHeight = l.NodeWidth, l.NodeHeight
	}

	for id, n := range f.Snapshot.All() {
		node := Node{
			ID:     int(id),
			Kind:   n.Kind.String(),
			Label:  n.Label,
			Weight: n.Weight,
			Depth:  n.Depth,
			Parent: int(n.Parent),
		}
		if p := f.Layout.At(id); p != nil {
			node.X, node.Y = p.X, p.Y
			node.Rect = Rect{
				X: p.Rect.Left - f.Layout.Bounds.Left,
				Y: p.Rect.Top - f.Layout.Bounds.Top,
				W: p.Rect.Width(),
				H: p.Rect.Height(),
			}
		}
		out.Nodes = append(out.Nodes, node)
		if n.Parent != snapshot.NoParent {
			out.Edges = append(out.Edges, Edge{From: int(n.Parent), To: int(id), Weight: n.Weight})
		}
	}
	return out
}
