package snapshot

import "fmt"

// Kind classifies a node for rendering. It has no effect on layout.
type Kind uint8

const (
	// KindGeneric is any playable that is neither a clip nor a mixer.
	KindGeneric Kind = iota
	// KindOutput is a synthesized root standing for one graph output.
	KindOutput
	// KindLeafClip is a clip-like terminal playable.
	KindLeafClip
	// KindMixer is a blend or mixer playable.
	KindMixer
)

// Kinds lists every kind in legend order.
var Kinds = []Kind{KindOutput, KindMixer, KindLeafClip, KindGeneric}

// String returns the lowercase kind name used in wire formats.
func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindOutput:
		return "output"
	case KindLeafClip:
		return "clip"
	case KindMixer:
		return "mixer"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, true
		}
	}
	return KindGeneric, false
}

// ID identifies a node within one Graph. It is the node's index in the
// graph's insertion order and means nothing outside that graph instance.
type ID int

// NoParent is the Parent of a root node.
const NoParent ID = -1

// Point is a position in normalized layout space, both axes in [0,1].
type Point struct {
	X, Y float64
}

// Node wraps one host entity plus snapshot metadata.
//
// Content is an opaque host handle the snapshot does not own; it may become
// invalid at any moment and must be validity-checked before use. Parent is a
// lookup, never an ownership edge.
type Node struct {
	Content  any
	Kind     Kind
	Label    string
	Weight   float64
	Depth    int
	Parent   ID
	Children []ID

	// Position is set by the layout engine; Placed reports whether it has run.
	Position Point
	Placed   bool
}

// NewNode returns a detached node ready to be added to a Graph.
func NewNode(content any, kind Kind, label string, weight float64) Node {
	return Node{
		Content: content,
		Kind:    kind,
		Label:   label,
		Weight:  weight,
		Parent:  NoParent,
	}
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool { return n.Parent == NoParent }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }
