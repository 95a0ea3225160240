// Package graph provides the serialization format for laid-out snapshots.
//
// This package defines the canonical wire format for blendview's graph data,
// used for JSON files, API responses, the render cache and the capture
// archive.
//
// # Architecture
//
// The package sits at the serialization boundary between the live inspector
// and everything that outlives a poll:
//
//   - [Snapshot], [Node], [Edge]: Serialization types (this package)
//   - pkg/snapshot.Graph: Internal node arena, valid for one poll
//   - pkg/layout.Layout: Internal placements, valid for one poll
//
// Use [FromFrame] to capture the outcome of a poll. Renderers consume
// [Snapshot] values, so a capture read back from disk or from the archive
// renders exactly like a live one.
//
// # Serialization
//
// Snapshots use a node-link JSON format. Node IDs are the arena indices of
// the originating snapshot; Parent is -1 for roots:
//
//	{
//	  "graph_name": "locomotion",
//	  "state": "normal",
//	  "nodes": [
//	    {"id": 0, "kind": "output", "label": "Animation", "weight": 1, "parent": -1, ...},
//	    {"id": 1, "kind": "mixer", "label": "blend", "weight": 1, "depth": 1, "parent": 0, ...}
//	  ],
//	  "edges": [{"from": 0, "to": 1, "weight": 1}]
//	}
//
// Common operations:
//
//	s := graph.FromFrame(frame)                  // Frame → Snapshot
//	graph.WriteFile(s, "capture.json")           // Snapshot → File
//	s, _ = graph.ReadFile("capture.json")        // File → Snapshot
//	key := graph.Hash(s)                         // Structure-only content hash
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
