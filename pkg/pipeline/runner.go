package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blendview/pkg/cache"
	"github.com/matzehuels/blendview/pkg/errors"
	"github.com/matzehuels/blendview/pkg/graph"
	"github.com/matzehuels/blendview/pkg/observability"
)

// Runner renders snapshots through an artifact cache.
//
// The Runner keeps no per-run state, so one Runner may serve concurrent
// requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses the default keyer and a nil logger discards output.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{
		Cache:  cache.Observed(c, cache.KeyTypeArtifact),
		Keyer:  keyer,
		Logger: logger,
	}
}

// Render produces every requested format for s, serving what it can from
// the cache and caching what it renders. Cache failures are logged and
// otherwise ignored.
func (r *Runner) Render(ctx context.Context, s *graph.Snapshot, opts Options) (*Result, error) {
	if s == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nil snapshot")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	res := &Result{
		Snapshot:  s,
		Hash:      graph.Hash(s),
		Artifacts: make(map[string][]byte, len(opts.Formats)),
		Stats:     Stats{NodeCount: len(s.Nodes), EdgeCount: len(s.Edges)},
	}

	for _, format := range opts.Formats {
		if _, done := res.Artifacts[format]; done {
			continue
		}
		key := r.Keyer.ArtifactKey(res.Hash, opts.KeyOpts(format))

		if !opts.Refresh {
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil {
				r.Logger.Warn("cache read failed", "format", format, "err", err)
			}
			if hit {
				res.Artifacts[format] = data
				res.CacheInfo.Hits = append(res.CacheInfo.Hits, format)
				continue
			}
		}

		t := time.Now()
		data, err := RenderFormat(ctx, s, format, opts.Options)
		observability.Render().OnRender(ctx, format, len(data), time.Since(t), err)
		if err != nil {
			return nil, err
		}
		res.Artifacts[format] = data

		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "err", err)
		}
	}

	res.Stats.RenderTime = time.Since(start)
	res.CacheInfo.AllHit = len(res.CacheInfo.Hits) == len(res.Artifacts)
	r.Logger.Debug("rendered snapshot",
		"graph", s.GraphName,
		"formats", opts.Formats,
		"cached", len(res.CacheInfo.Hits),
		"duration", res.Stats.RenderTime)
	return res, nil
}

// RenderOne is a convenience wrapper returning a single artifact.
func (r *Runner) RenderOne(ctx context.Context, s *graph.Snapshot, format string, opts Options) ([]byte, bool, error) {
	opts.Formats = []string{format}
	res, err := r.Render(ctx, s, opts)
	if err != nil {
		return nil, false, err
	}
	data, ok := res.Artifacts[format]
	if !ok {
		return nil, false, fmt.Errorf("render %s: no artifact", format)
	}
	return data, res.CacheInfo.AllHit, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
