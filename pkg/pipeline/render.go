package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/blendview/pkg/graph"
	"github.com/matzehuels/blendview/pkg/render"
	"github.com/matzehuels/blendview/pkg/render/dot"
	"github.com/matzehuels/blendview/pkg/render/svg"
	"github.com/matzehuels/blendview/pkg/render/text"
)

// RenderFormat renders s in one format without caching.
func RenderFormat(ctx context.Context, s *graph.Snapshot, format string, opts render.Options) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case render.FormatSVG:
		data, err = svg.Render(s, opts)
	case render.FormatDOT:
		data = []byte(dot.ToDOT(s, opts))
	case render.FormatPNG:
		data, err = dot.RenderPNG(ctx, s, opts)
	case render.FormatJSON:
		data, err = graph.Marshal(s)
	case render.FormatText:
		data = []byte(text.Tree(s, text.Options{Options: opts}))
	default:
		return nil, render.ValidateFormat(format)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return data, nil
}
