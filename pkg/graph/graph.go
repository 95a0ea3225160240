package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/matzehuels/blendview/pkg/cache"
)

// =============================================================================
// Snapshot Serialization API
// =============================================================================

// Marshal converts a snapshot to indented JSON bytes.
func Marshal(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes JSON bytes into a snapshot.
func Unmarshal(data []byte) (*Snapshot, error) {
	return Read(bytes.NewReader(data))
}

// Write writes a snapshot as JSON to an io.Writer.
func Write(s *Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Read decodes a JSON snapshot from an io.Reader.
func Read(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// WriteFile writes a snapshot to a JSON file.
// The file is created with 0644 permissions.
func WriteFile(s *Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(s, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads a JSON file and returns the decoded snapshot.
func ReadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Hash returns a content hash of the snapshot's structure and geometry.
// The snapshot ID and capture time are excluded, so two polls of an
// unchanged graph hash identically. Hash never fails: snapshots that differ
// hash differently even when they cannot be encoded.
func Hash(s *Snapshot) string {
	c := *s
	c.ID = ""
	c.CapturedAt = time.Time{}
	data, err := json.Marshal(&c)
	if err != nil {
		// Non-finite floats do not encode as JSON; the Go syntax form still
		// tells snapshots apart.
		data = fmt.Appendf(nil, "%#v", c)
	}
	return cache.Hash(data)
}

// =============================================================================
// Internal Implementation
// =============================================================================

// validate checks the links of a decoded snapshot.
func validate(s *Snapshot) error {
	ids := make(map[int]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		if ids[n.ID] {
			return fmt.Errorf("duplicate node id %d", n.ID)
		}
		ids[n.ID] = true
	}
	for _, n := range s.Nodes {
		if !n.IsRoot() && !ids[n.Parent] {
			return fmt.Errorf("node %d: unknown parent %d", n.ID, n.Parent)
		}
	}
	for _, e := range s.Edges {
		if !ids[e.From] || !ids[e.To] {
			return fmt.Errorf("edge %d->%d: unknown node", e.From, e.To)
		}
	}
	return nil
}
