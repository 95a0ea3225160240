package store

import (
	"context"
	"sync"

	"github.com/matzehuels/blendview/pkg/graph"
)

// Memory keeps captures in process memory.
type Memory struct {
	mu       sync.RWMutex
	captures map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{captures: make(map[string][]byte)}
}

// Save stores an encoded copy, so later changes to s are not archived.
func (m *Memory) Save(_ context.Context, s *graph.Snapshot) error {
	if err := prepare(s); err != nil {
		return err
	}
	data, err := graph.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.captures[s.ID] = data
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*graph.Snapshot, error) {
	m.mu.RLock()
	data, ok := m.captures[id]
	m.mu.RUnlock()
	if !ok {
		return nil, notFound(id)
	}
	return graph.Unmarshal(data)
}

func (m *Memory) List(_ context.Context, graphID string, limit int) ([]*graph.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*graph.Snapshot
	for _, data := range m.captures {
		s, err := graph.Unmarshal(data)
		if err != nil {
			return nil, err
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

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.captures, id)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
