// Package host defines the read-only boundary between blendview and the
// externally owned execution graph it inspects.
//
// A host graph is a directed structure of playables (blend and animation
// nodes) feeding one or more outputs. The host owns every handle and may
// mutate or destroy the graph at any time, including while blendview is
// reading it. Every handle therefore exposes a validity check, and callers
// must re-check validity immediately before each read. A stale handle is
// never an error: it degrades to "skip this entity".
//
// blendview never mutates a host graph through these interfaces.
package host

// Graph is a handle to one live execution graph.
type Graph interface {
	// ID returns a stable identifier for the graph, unique within a process.
	ID() string

	// Name returns the graph's display name; it may be empty.
	Name() string

	// IsValid reports whether the graph still exists.
	IsValid() bool

	// OutputCount returns the number of output slots.
	OutputCount() int

	// Output returns the output at index i, or nil if i is out of range.
	Output(i int) Output
}

// Output is a terminal sink of a graph, e.g. one animated target.
type Output interface {
	// IsValid reports whether the output still exists.
	IsValid() bool

	// Name returns the output's display name.
	Name() string

	// Type returns the output's declared type name.
	Type() string

	// Source returns the playable feeding this output, or nil if disconnected.
	Source() Playable
}

// Playable is one node of the execution graph.
type Playable interface {
	// IsValid reports whether the playable still exists.
	IsValid() bool

	// Type returns the playable's declared sub-type name, used for
	// classification only.
	Type() string

	// InputCount returns the number of input ports.
	InputCount() int

	// Input returns the playable connected at port, or nil if the port is
	// empty or out of range.
	Input(port int) Playable

	// InputWeight returns the blend weight reported for port.
	InputWeight(port int) float64
}

// GraphValid reports whether g is non-nil and valid.
func GraphValid(g Graph) bool {
	return g != nil && g.IsValid()
}

// OutputValid reports whether o is non-nil and valid.
func OutputValid(o Output) bool {
	return o != nil && o.IsValid()
}

// PlayableValid reports whether p is non-nil and valid.
func PlayableValid(p Playable) bool {
	return p != nil && p.IsValid()
}

// DisplayName returns the graph name, or a placeholder for unnamed graphs.
func DisplayName(g Graph) string {
	if g == nil {
		return "[None]"
	}
	if name := g.Name(); name != "" {
		return name
	}
	return "[Unnamed]"
}
