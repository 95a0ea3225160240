package inspect

import (
	"time"

	"github.com/matzehuels/blendview/pkg/errors"
	"github.com/matzehuels/blendview/pkg/host"
	"github.com/matzehuels/blendview/pkg/layout"
	"github.com/matzehuels/blendview/pkg/snapshot"
)

// State is the display state a poll ends in.
type State uint8

const (
	// StateNoGraph means the roster offered nothing to inspect.
	StateNoGraph State = iota
	// StateInvalidGraph means the selected graph no longer exists.
	StateInvalidGraph
	// StateEmptyGraph means the selected graph has no valid outputs.
	StateEmptyGraph
	// StateTooLarge means the walk hit the depth or node ceiling.
	StateTooLarge
	// StateNormal means a snapshot and layout are available.
	StateNormal
)

var stateNames = [...]string{"no-graph", "invalid-graph", "empty-graph", "too-large", "normal"}

var stateMessages = [...]string{
	"No graph available",
	"Selected graph is invalid",
	"Selected graph is empty",
	"Selected graph is too large to display",
	"",
}

var stateCodes = [...]errors.Code{
	errors.ErrCodeNoGraph,
	errors.ErrCodeInvalidGraph,
	errors.ErrCodeEmptyGraph,
	errors.ErrCodeGraphTooLarge,
	"",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Message returns the text shown in place of the graph, or "" for StateNormal.
func (s State) Message() string {
	if int(s) < len(stateMessages) {
		return stateMessages[s]
	}
	return ""
}

// Code returns the error code matching a non-normal state.
func (s State) Code() errors.Code {
	if int(s) < len(stateCodes) {
		return stateCodes[s]
	}
	return errors.ErrCodeInternal
}

// Stats contains poll timing and size information.
type Stats struct {
	Nodes       int
	Roots       int
	Leaves      int
	MaxDepth    int
	RefreshTime time.Duration
	LayoutTime  time.Duration
}

// Frame is the outcome of one poll.
//
// Snapshot and Layout are only set for StateNormal, except that a
// StateEmptyGraph frame still carries its (empty) Snapshot. Every frame owns
// its Snapshot and Layout.
type Frame struct {
	State   State
	Message string
	Err     error

	// Graphs is the candidate list the selection was made from.
	Graphs []host.Graph
	// Selected is the index of Graph in Graphs, or -1.
	Selected int
	Graph    host.Graph

	Snapshot *snapshot.Graph
	Layout   *layout.Layout

	Stats      Stats
	CapturedAt time.Time
}

// Normal reports whether the frame holds a drawable snapshot.
func (f *Frame) Normal() bool { return f != nil && f.State == StateNormal }

// GraphName returns the display name of the selected graph.
func (f *Frame) GraphName() string {
	if f == nil {
		return host.DisplayName(nil)
	}
	return host.DisplayName(f.Graph)
}

// Error converts a non-normal frame into a coded error, or nil.
func (f *Frame) Error() error {
	if f == nil || f.State == StateNormal {
		return nil
	}
	if f.Err != nil {
		return errors.Wrap(f.State.Code(), f.Err, "%s", f.Message)
	}
	return errors.New(f.State.Code(), "%s", f.Message)
}
