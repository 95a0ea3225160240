package layout

import (
	"math"

	"github.com/matzehuels/blendview/pkg/errors"
	"github.com/matzehuels/blendview/pkg/snapshot"
)

const eps = 1e-9

// Placement is the computed position of one snapshot node.
type Placement struct {
	ID snapshot.ID

	// X and Y are the node center in normalized canvas space, after
	// orientation has been applied. Both are in [0,1].
	X, Y float64

	// Breadth is the node position in sibling units before normalization.
	// Nodes at the same depth are at least one unit apart.
	Breadth float64
	Depth   int

	// Rect is the node footprint in pixels.
	Rect Rect
}

// Layout is the result of one Compute call.
type Layout struct {
	// Placements is indexed by snapshot.ID.
	Placements []Placement

	// Columns is the forest width in breadth units; Rows is max depth + 1.
	Columns float64
	Rows    int

	NodeWidth, NodeHeight float64

	Bounds      Rect
	Orientation Orientation
}

// At returns the placement of id, or nil if id is not part of the layout.
func (l *Layout) At(id snapshot.ID) *Placement {
	if l == nil || id < 0 || int(id) >= len(l.Placements) {
		return nil
	}
	return &l.Placements[id]
}

// Engine computes a layout for a populated snapshot.
type Engine interface {
	Compute(g *snapshot.Graph, s Settings, r Rect) (*Layout, error)
}

// ReingoldTilford is the tidy forest layout described in the package
// documentation.
type ReingoldTilford struct{}

// Default is the engine used by the inspector and renderers.
var Default Engine = ReingoldTilford{}

// Compute lays out every node of g inside r and records each normalized
// position in the snapshot. An empty snapshot yields an empty Layout.
func (ReingoldTilford) Compute(g *snapshot.Graph, s Settings, r Rect) (*Layout, error) {
	if g == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nil snapshot")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if r.Empty() {
		return nil, errors.New(errors.ErrCodeInvalidSettings, "target rectangle is empty: %vx%v", r.Width(), r.Height())
	}

	l := &Layout{Bounds: r, Orientation: s.Orientation}
	if g.IsEmpty() {
		return l, nil
	}

	xs, cols := breadth(g)
	rows := 0
	for _, n := range g.All() {
		rows = max(rows, n.Depth+1)
	}
	l.Columns, l.Rows = cols, rows
	l.NodeWidth, l.NodeHeight = footprint(s, r, cols, float64(rows))

	l.Placements = make([]Placement, g.Len())
	for id, n := range g.All() {
		bx := (xs[id] + 0.5) / cols
		dy := (float64(n.Depth) + 0.5) / float64(rows)
		x, y := orient(s.Orientation, bx, dy)

		l.Placements[id] = Placement{
			ID:      id,
			X:       x,
			Y:       y,
			Breadth: xs[id],
			Depth:   n.Depth,
			Rect: centered(
				r.Left+x*r.Width(),
				r.Top+y*r.Height(),
				l.NodeWidth, l.NodeHeight,
			),
		}
		n.Position = snapshot.Point{X: x, Y: y}
		n.Placed = true
	}
	return l, nil
}

// orient maps breadth/depth coordinates onto canvas axes.
func orient(o Orientation, b, d float64) (x, y float64) {
	switch o {
	case BottomUp:
		return b, 1 - d
	case LeftToRight:
		return d, b
	case RightToLeft:
		return 1 - d, b
	default:
		return b, d
	}
}

// footprint returns the node size in pixels: as wide as the lanes and the
// pixel cap allow, with the height following from the aspect ratio.
func footprint(s Settings, r Rect, cols, rows float64) (w, h float64) {
	laneW, laneH := r.Width()/cols, r.Height()/rows
	if s.Orientation.Horizontal() {
		laneW, laneH = r.Width()/rows, r.Height()/cols
	}
	w = math.Min(s.MaxNormalizedNodeSize*laneW, s.MaxNormalizedNodeSize*laneH*s.AspectRatio)
	w = math.Min(w, s.MaxNodeSizeInPixels)
	return w, w / s.AspectRatio
}

// contour holds the leftmost and rightmost breadth offset of a subtree at
// each depth below its root, relative to the root's own position.
type contour struct {
	left, right []float64
}

// breadth assigns every node a position in sibling units and returns the
// positions together with the total forest width. Positions start at 0.
func breadth(g *snapshot.Graph) ([]float64, float64) {
	n := g.Len()
	rel := make([]float64, n)
	cont := make([]contour, n)

	// Children always follow their parent in the arena, so a reverse scan
	// visits every subtree before its root.
	for i := n - 1; i >= 0; i-- {
		node := g.Node(snapshot.ID(i))
		if node.IsLeaf() {
			cont[i] = contour{left: []float64{0}, right: []float64{0}}
			continue
		}

		var left, right []float64
		offsets := make([]float64, len(node.Children))
		for k, c := range node.Children {
			sub := cont[c]
			if len(sub.left) == 0 {
				sub = contour{left: []float64{0}, right: []float64{0}}
			}
			shift := 0.0
			if k > 0 {
				shift = math.Inf(-1)
				for d := 0; d < min(len(right), len(sub.left)); d++ {
					shift = math.Max(shift, right[d]+1-sub.left[d])
				}
			}
			offsets[k] = shift
			left, right = merge(left, right, sub, shift)
			cont[c] = contour{}
		}

		mid := mean(offsets)
		for k, c := range node.Children {
			rel[c] = offsets[k] - mid
		}

		c := contour{left: make([]float64, len(left)+1), right: make([]float64, len(right)+1)}
		for d := range left {
			c.left[d+1] = left[d] - mid
			c.right[d+1] = right[d] - mid
		}
		cont[i] = c
	}

	xs := make([]float64, n)
	cursor := -1.0
	for _, root := range g.Roots() {
		c := cont[root]
		if len(c.left) == 0 {
			continue
		}
		xs[root] = cursor + 1 - minOf(c.left)
		cursor = xs[root] + maxOf(c.right)
	}

	for id, node := range g.All() {
		if !node.IsRoot() {
			xs[id] = xs[node.Parent] + rel[id]
		}
	}

	// Rounding in the offset arithmetic can leave -0 or tiny negatives.
	for i := range xs {
		if math.Abs(xs[i]) < eps {
			xs[i] = 0
		}
	}
	return xs, math.Max(cursor+1, 1)
}

// merge folds a shifted subtree contour into the running sibling contour.
func merge(left, right []float64, c contour, shift float64) ([]float64, []float64) {
	for d := range c.left {
		lo, hi := c.left[d]+shift, c.right[d]+shift
		if d < len(left) {
			left[d] = math.Min(left[d], lo)
			right[d] = math.Max(right[d], hi)
			continue
		}
		left = append(left, lo)
		right = append(right, hi)
	}
	return left, right
}

func mean(v []float64) float64 {
	var sum float64
	for _, f := range v {
		sum += f
	}
	return sum / float64(len(v))
}

func minOf(v []float64) float64 {
	m := v[0]
	for _, f := range v[1:] {
		m = math.Min(m, f)
	}
	return m
}

func maxOf(v []float64) float64 {
	m := v[0]
	for _, f := range v[1:] {
		m = math.Max(m, f)
	}
	return m
}
