// Package store archives captured snapshots.
//
// A capture is a [graph.Snapshot] taken from one poll. Captures are
// immutable once saved and are listed newest first.
//
// Backends:
//   - [Memory]: in-process, for tests and the single-binary server
//   - [FileStore]: one JSON file per capture, for the CLI
//   - [MongoStore]: shared archive for server deployments
//
// # Usage
//
//	st := store.NewMemory()
//	_ = st.Save(ctx, graph.FromFrame(frame))
//	recent, _ := st.List(ctx, frame.Graph.ID(), 10)
package store

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/matzehuels/blendview/pkg/errors"
	"github.com/matzehuels/blendview/pkg/graph"
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Store is the interface for capture archives.
type Store interface {
	// Save archives a snapshot. A snapshot without an ID is given one.
	// Saving an ID twice replaces the earlier capture.
	Save(ctx context.Context, s *graph.Snapshot) error

	// Get returns the capture with the given ID, or a NOT_FOUND error.
	Get(ctx context.Context, id string) (*graph.Snapshot, error)

	// List returns up to limit captures of one host graph, newest first.
	// An empty graphID lists captures of every graph.
	List(ctx context.Context, graphID string, limit int) ([]*graph.Snapshot, error)

	// Delete removes a capture. Deleting a missing capture is not an error.
	Delete(ctx context.Context, id string) error

	Close() error
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "capture %q not found", id)
}

// prepare assigns an ID to unidentified captures.
func prepare(s *graph.Snapshot) error {
	if s == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil snapshot")
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func normLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

// newestFirst sorts captures by capture time, newest first, breaking ties
// by ID so the order is stable.
func newestFirst(out []*graph.Snapshot) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CapturedAt.Equal(out[j].CapturedAt) {
			return out[i].CapturedAt.After(out[j].CapturedAt)
		}
		return out[i].ID < out[j].ID
	})
}
