// Package layout positions the nodes of a snapshot forest.
//
// # Overview
//
// The engine is a Reingold-Tilford style tidy-tree layout applied to every
// root of a [snapshot.Graph]. It runs in three stages:
//
//  1. Breadth: each subtree is laid out bottom-up. A leaf is one unit wide.
//     Siblings are placed left to right in child order, each shifted right by
//     the minimum amount that keeps one unit between it and every earlier
//     sibling at every shared depth. The parent sits at the arithmetic mean of
//     its children.
//  2. Forest: root trees are packed left to right in enumeration order by
//     their full extent, so no two trees ever share a horizontal lane.
//  3. Mapping: unit positions are normalized into [0,1]x[0,1], with node
//     centers at lane centers, and then mapped into the target pixel
//     rectangle according to the [Orientation].
//
// The depth axis is a pure function of [snapshot.Node.Depth].
//
// # Usage
//
//	v := adapter.New(hostGraph)
//	_ = v.Refresh()
//
//	l, err := layout.Default.Compute(v.Graph, layout.DefaultSettings(), layout.Size(800, 600))
//	for _, p := range l.Placements {
//	    fmt.Println(p.ID, p.Rect.CenterX(), p.Rect.CenterY())
//	}
//
// Every call recomputes the layout from scratch and writes the normalized
// position of each node back into the snapshot.
//
// [snapshot.Graph]: github.com/matzehuels/blendview/pkg/snapshot.Graph
// [snapshot.Node.Depth]: github.com/matzehuels/blendview/pkg/snapshot.Node
package layout
