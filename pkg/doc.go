// Package pkg holds blendview's libraries for inspecting live blend graphs.
//
// # Overview
//
// A host application (a game engine, an animation runtime) keeps one or
// more playable graphs alive: outputs pull from a tree of mixers and clips,
// each input weighted. blendview walks such a graph through a small read-only
// interface, turns it into a flat snapshot, lays it out as a tree and renders
// it. The walk is repeated on a cadence so the view follows the graph as it
// changes.
//
// # Architecture
//
// One poll flows through the packages in this order:
//
//	[host] graph (live, or [host/memory] for scenes and tests)
//	         ↓
//	    [roster] picks the graph to show
//	         ↓
//	    [adapter] walks it into a [snapshot] (bounded, cycle-safe)
//	         ↓
//	    [layout] assigns node rectangles
//	         ↓
//	    [inspect] bundles state, snapshot and layout into a Frame
//	         ↓
//	    [graph] wire format → [render] (svg, dot, txt)
//
// [pipeline] runs the last step with a [cache] in front of it; [store]
// archives captured snapshots.
//
// # Main Packages
//
// [host] - The read-only view of a host graph: outputs, playables, ports and
// weights. Handles can go stale at any time.
//
// [roster] - Registration and pinning of the graphs an inspector may show.
//
// [adapter] and [snapshot] - Validity checks, node classification and the
// depth-first walk into an immutable node list.
//
// [layout] - Tidy-tree placement with orientation and size settings.
//
// [inspect] - The poll loop: select a graph, snapshot it, lay it out, report
// the inspector state.
//
// [scene] - YAML, TOML and JSON scene files built into in-memory graphs, and
// a directory watcher that keeps a roster current.
//
// [config] - TOML file, .env and BLENDVIEW_* settings with validation.
//
// [errors] and [observability] - Coded errors and the hook interfaces the
// metrics collector implements.
//
// # Testing
//
//	go test ./pkg/...                          # All tests
//	BLENDVIEW_TEST_REDIS=localhost:6379 go test ./pkg/cache
//	BLENDVIEW_TEST_MONGO=mongodb://localhost go test ./pkg/store
//
// [host]: https://pkg.go.dev/github.com/matzehuels/blendview/pkg/host
// [host/memory]: https://pkg.go.dev/github.com/matzehuels/blendview/pkg/host/memory
// [roster]: https://pkg.go.dev/github.com/matzehuels/blendview/pkg/roster
// [adapter]: https://pkg.go.dev/github.com/matzehuels/blendview/pkg/adapter
// [snapshot]: https://pkg.go.dev/github.com/matzehuels/blendview/pkg/snapshot
// [layout]: https://pkg.go.dev/github.com/matzehuels/blendview/pkg/layout
// [inspect]: https://pkg.go.dev/github.com/matzehuels/blendview/pkg/inspect
// [graph]: https://pkg.go.dev/github.com/matzehuels/blendview/pkg/graph
// [render]: https://pkg.go.dev/github.com/matzehuels/blendview/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/blendview/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/blendview/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/blendview/pkg/store
// [scene]: https://pkg.go.dev/github.com/matzehuels/blendview/pkg/scene
// [config]: https://pkg.go.dev/github.com/matzehuels/blendview/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/blendview/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/blendview/pkg/observability
package pkg
