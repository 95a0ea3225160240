package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/matzehuels/blendview/pkg/errors"
	"github.com/matzehuels/blendview/pkg/graph"
)

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func capture(id, graphID string, minute int) *graph.Snapshot {
	return &graph.Snapshot{
		ID:         id,
		GraphID:    graphID,
		GraphName:  "locomotion",
		State:      "normal",
		CapturedAt: epoch.Add(time.Duration(minute) * time.Minute),
		Nodes: []graph.Node{
			{ID: 0, Kind: "output", Label: "Animation", Weight: 1, Parent: -1},
			{ID: 1, Kind: "clip", Label: "walk", Weight: 1, Depth: 1, Parent: 0},
		},
		Edges: []graph.Edge{{From: 0, To: 1, Weight: 1}},
	}
}

// exercise runs the behaviour every backend shares.
func exercise(t *testing.T, st Store) {
	ctx := context.Background()

	for i, c := range []*graph.Snapshot{
		capture("a1", "g-a", 1),
		capture("a2", "g-a", 3),
		capture("b1", "g-b", 2),
	} {
		if err := st.Save(ctx, c); err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
	}

	got, err := st.Get(ctx, "a2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.GraphID != "g-a" || len(got.Nodes) != 2 || got.Nodes[1].Label != "walk" {
		t.Errorf("Get = %+v", got)
	}
	if !got.CapturedAt.Equal(epoch.Add(3 * time.Minute)) {
		t.Errorf("CapturedAt = %v", got.CapturedAt)
	}

	if _, err := st.Get(ctx, "missing"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get(missing) err = %v, want NOT_FOUND", err)
	}

	list, err := st.List(ctx, "g-a", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != "a2" || list[1].ID != "a1" {
		t.Errorf("List(g-a) = %v, want a2 a1", ids(list))
	}

	all, _ := st.List(ctx, "", 2)
	if len(all) != 2 || all[0].ID != "a2" || all[1].ID != "b1" {
		t.Errorf("List(all, 2) = %v, want a2 b1", ids(all))
	}

	if err := st.Delete(ctx, "a2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := st.Delete(ctx, "a2"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
	if list, _ := st.List(ctx, "g-a", 0); len(list) != 1 {
		t.Errorf("after Delete: %v", ids(list))
	}

	fresh := capture("", "g-c", 9)
	if err := st.Save(ctx, fresh); err != nil {
		t.Fatalf("Save without id: %v", err)
	}
	if fresh.ID == "" {
		t.Error("Save should assign an id")
	}
	if _, err := st.Get(ctx, fresh.ID); err != nil {
		t.Errorf("Get(assigned id): %v", err)
	}
}

func ids(ss []*graph.Snapshot) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.ID
	}
	return out
}

func TestMemory(t *testing.T) {
	st := NewMemory()
	defer st.Close()
	exercise(t, st)
}

func TestMemoryCopiesOnSave(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()
	c := capture("x", "g", 0)
	_ = st.Save(ctx, c)
	c.Nodes[1].Label = "changed"

	got, _ := st.Get(ctx, "x")
	if got.Nodes[1].Label != "walk" {
		t.Error("archived capture changed after Save")
	}
}

func TestFileStore(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer st.Close()
	exercise(t, st)
}

func TestFileStoreRejectsUnsafeIDs(t *testing.T) {
	st, _ := NewFileStore(t.TempDir())
	ctx := context.Background()
	if err := st.Save(ctx, capture("../escape", "g", 0)); err == nil {
		t.Error("Save should reject path-like ids")
	}
	if _, err := st.Get(ctx, "../escape"); err == nil {
		t.Error("Get should reject path-like ids")
	}
}

func TestSaveNil(t *testing.T) {
	if err := NewMemory().Save(context.Background(), nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v", err)
	}
}

// Runs against a live server when BLENDVIEW_TEST_MONGO names one.
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("BLENDVIEW_TEST_MONGO")
	if uri == "" {
		t.Skip("BLENDVIEW_TEST_MONGO not set")
	}
	ctx := context.Background()
	st, err := NewMongoStore(ctx, MongoConfig{URI: uri, Database: "blendview_test", Collection: t.Name()})
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	defer st.Close()
	defer st.coll.Drop(ctx)
	exercise(t, st)
}
