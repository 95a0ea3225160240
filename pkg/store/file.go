package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/blendview/pkg/errors"
	"github.com/matzehuels/blendview/pkg/graph"
)

// FileStore keeps one JSON file per capture in a directory.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates a file store. An empty dir defaults to
// ~/.config/blendview/captures.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		dir = filepath.Join(home, ".config", "blendview", "captures")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create capture dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the capture directory.
func (f *FileStore) Path() string { return f.dir }

func (f *FileStore) path(id string) (string, error) {
	if err := errors.ValidateGraphID(id); err != nil {
		return "", err
	}
	return filepath.Join(f.dir, id+".json"), nil
}

func (f *FileStore) Save(_ context.Context, s *graph.Snapshot) error {
	if err := prepare(s); err != nil {
		return err
	}
	path, err := f.path(s.ID)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return graph.WriteFile(s, path)
}

func (f *FileStore) Get(_ context.Context, id string) (*graph.Snapshot, error) {
	path, err := f.path(id)
	if err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	s, err := graph.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, notFound(id)
	}
	return s, err
}

// List reads every capture file. Unreadable files are skipped.
func (f *FileStore) List(_ context.Context, graphID string, limit int) ([]*graph.Snapshot, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("read capture dir: %w", err)
	}
	var out []*graph.Snapshot
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		s, err := graph.ReadFile(filepath.Join(f.dir, e.Name()))
		if err != nil {
			continue
		}
		if graphID == "" || s.GraphID == graphID {
			out = append(out, s)
		}
	}
	newestFirst(out)
	if n := normLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (f *FileStore) Delete(_ context.Context, id string) error {
	path, err := f.path(id)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(path); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove capture: %w", err)
	}
	return nil
}

func (f *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
