package snapshot

import (
	stderrors "errors"
	"testing"

	"github.com/matzehuels/blendview/pkg/errors"
)

// treeSource describes children by label. Labels missing from the map are leaves.
type treeSource struct {
	roots    []string
	children map[string][]string
	populate int
}

func (s *treeSource) Populate(g *Graph) error {
	s.populate++
	for _, r := range s.roots {
		if _, err := g.AddNodeHierarchy(NewNode(r, KindOutput, r, 1)); err != nil {
			return err
		}
	}
	return nil
}

func (s *treeSource) Children(n *Node) []Node {
	var out []Node
	for _, c := range s.children[n.Label] {
		out = append(out, NewNode(c, KindGeneric, c, 0.5))
	}
	return out
}

func labels(g *Graph) []string {
	var out []string
	for _, n := range g.All() {
		out = append(out, n.Label)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAddNodeHierarchyPreOrder(t *testing.T) {
	src := &treeSource{
		roots: []string{"out"},
		children: map[string][]string{
			"out": {"a", "b"},
			"a":   {"a1", "a2"},
			"b":   {"b1"},
		},
	}
	g := New(src)
	if err := g.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	want := []string{"out", "a", "a1", "a2", "b", "b1"}
	if got := labels(g); !equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}

	root := g.Node(0)
	if len(root.Children) != 2 || g.Node(root.Children[0]).Label != "a" || g.Node(root.Children[1]).Label != "b" {
		t.Errorf("root children = %v, want [a b]", root.Children)
	}
}

func TestDepthRule(t *testing.T) {
	src := &treeSource{
		roots: []string{"o1", "o2"},
		children: map[string][]string{
			"o1": {"m"},
			"m":  {"c1", "c2"},
			"o2": {"c3"},
		},
	}
	g := New(src)
	if err := g.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	for id, n := range g.All() {
		if n.IsRoot() {
			if n.Depth != 0 {
				t.Errorf("root %s depth = %d, want 0", n.Label, n.Depth)
			}
			continue
		}
		p := g.Node(n.Parent)
		if n.Depth != p.Depth+1 {
			t.Errorf("%s depth = %d, parent depth = %d", n.Label, n.Depth, p.Depth)
		}
		if n.Parent >= id {
			t.Errorf("%s parent %d does not precede it (%d)", n.Label, n.Parent, id)
		}
	}
	if roots := g.Roots(); len(roots) != 2 {
		t.Errorf("roots = %v, want 2", roots)
	}
}

func TestRefreshIdempotent(t *testing.T) {
	src := &treeSource{
		roots:    []string{"out"},
		children: map[string][]string{"out": {"a", "b"}, "b": {"c"}},
	}
	g := New(src)
	_ = g.Refresh()
	first := labels(g)
	firstID := g.ID()

	_ = g.Refresh()
	if got := labels(g); !equal(got, first) {
		t.Errorf("second refresh = %v, want %v", got, first)
	}
	if g.ID() == firstID {
		t.Error("refresh should issue a new snapshot id")
	}
	if src.populate != 2 {
		t.Errorf("Populate called %d times, want 2", src.populate)
	}
}

func TestLimits(t *testing.T) {
	// "loop" lists itself as a child: an infinite chain.
	cyclic := &treeSource{
		roots:    []string{"loop"},
		children: map[string][]string{"loop": {"loop"}},
	}
	wide := &treeSource{
		roots:    []string{"out"},
		children: map[string][]string{"out": {"a", "b", "c", "d", "e"}},
	}

	tests := []struct {
		name string
		src  Source
		opts []Option
		want error
	}{
		{"cycle hits depth", cyclic, []Option{WithMaxDepth(8)}, ErrTooDeep},
		{"cycle default depth", cyclic, nil, ErrTooDeep},
		{"wide hits node count", wide, []Option{WithMaxNodes(4)}, ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(tt.src, tt.opts...)
			err := g.Refresh()
			if !stderrors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if !errors.Is(err, errors.ErrCodeGraphTooLarge) {
				t.Errorf("code = %q, want GRAPH_TOO_LARGE", errors.GetCode(err))
			}
			if !g.IsEmpty() {
				t.Errorf("failed refresh left %d nodes", g.Len())
			}
		})
	}
}

func TestLimitsBoundary(t *testing.T) {
	chain := &treeSource{
		roots:    []string{"0"},
		children: map[string][]string{"0": {"1"}, "1": {"2"}, "2": {"3"}},
	}
	g := New(chain, WithMaxDepth(3), WithMaxNodes(4))
	if err := g.Refresh(); err != nil {
		t.Fatalf("chain at exact limits: %v", err)
	}
	if g.Len() != 4 {
		t.Errorf("Len = %d, want 4", g.Len())
	}
}

func TestAddNodeManual(t *testing.T) {
	g := New(nil)
	root := g.AddNode(NewNode(nil, KindOutput, "out", 1))
	child := NewNode(nil, KindLeafClip, "clip", 0.4)
	child.Parent = root
	child.Depth = 1
	id := g.AddNode(child)

	if p, ok := g.Parent(id); !ok || p != root {
		t.Errorf("Parent(%d) = %d, %v", id, p, ok)
	}
	if _, ok := g.Parent(root); ok {
		t.Error("root should have no parent")
	}
	if g.Node(99) != nil || g.Node(-1) != nil {
		t.Error("out of range Node should be nil")
	}
	if err := g.Refresh(); err != nil || !g.IsEmpty() {
		t.Errorf("Refresh without source: err=%v len=%d", err, g.Len())
	}
}

func TestStats(t *testing.T) {
	src := &treeSource{
		roots:    []string{"o1", "o2"},
		children: map[string][]string{"o1": {"a", "b"}, "a": {"c"}},
	}
	g := New(src)
	_ = g.Refresh()

	s := g.Stats()
	if s.Nodes != 5 || s.Roots != 2 || s.Leaves != 3 || s.MaxDepth != 2 {
		t.Errorf("Stats = %+v", s)
	}
	if s.ByKind[KindOutput] != 2 || s.ByKind[KindGeneric] != 3 {
		t.Errorf("ByKind = %v", s.ByKind)
	}
}

func TestNodesReturnsCopy(t *testing.T) {
	src := &treeSource{roots: []string{"out"}}
	g := New(src)
	_ = g.Refresh()

	nodes := g.Nodes()
	nodes[0].Label = "changed"
	if g.Node(0).Label != "out" {
		t.Error("Nodes should return a copy")
	}
}

func TestKindString(t *testing.T) {
	for _, k := range Kinds {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := ParseKind("widget"); ok {
		t.Error("unknown kind should not parse")
	}
}
