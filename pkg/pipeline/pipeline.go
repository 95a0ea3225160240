// Package pipeline turns captured snapshots into rendered artifacts.
//
// The CLI, the HTTP server and the live view all render through a
// [Runner], which keys every artifact by the snapshot's content hash and
// the render options. Polling an unchanged graph therefore renders once and
// serves every later request from the cache.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Render(ctx, graph.FromFrame(frame), pipeline.Options{
//	    Options: render.DefaultOptions(),
//	    Formats: []string{render.FormatSVG},
//	})
//	svg := res.Artifacts[render.FormatSVG]
package pipeline

import (
	"fmt"
	"time"

	"github.com/matzehuels/blendview/pkg/graph"
	"github.com/matzehuels/blendview/pkg/render"
)

// Options configures one pipeline run.
type Options struct {
	render.Options

	// Formats lists the artifacts to produce. Empty means SVG only.
	Formats []string `json:"formats,omitempty"`

	// Refresh bypasses cached artifacts and re-renders.
	Refresh bool `json:"refresh,omitempty"`
}

// ValidateAndSetDefaults applies defaults and checks every format.
func (o *Options) ValidateAndSetDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{render.FormatSVG}
	}
	for _, f := range o.Formats {
		if err := render.ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Result holds the artifacts of one run.
type Result struct {
	// Snapshot is the rendered snapshot.
	Snapshot *graph.Snapshot

	// Hash is the snapshot's content hash used in cache keys.
	Hash string

	// Artifacts maps format to bytes.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains timing and size information.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	RenderTime time.Duration
}

// CacheInfo tracks cache hits per format.
type CacheInfo struct {
	// Hits lists formats served from cache.
	Hits []string

	// AllHit is true when no format had to be rendered.
	AllHit bool
}

func (r *Result) String() string {
	return fmt.Sprintf("%s: %d formats, %d nodes, cached=%v", r.Snapshot.GraphName, len(r.Artifacts), r.Stats.NodeCount, r.CacheInfo.AllHit)
}
