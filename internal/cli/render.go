package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blendview/pkg/errors"
	"github.com/matzehuels/blendview/pkg/graph"
	"github.com/matzehuels/blendview/pkg/pipeline"
	"github.com/matzehuels/blendview/pkg/render"
)

// renderOpts holds the render command's own flags.
type renderOpts struct {
	formats  string
	output   string
	capture  string
	selected int
	title    string
	scale    float64
	noCache  bool
	refresh  bool
}

// renderCommand renders a scene, or an archived capture, to files.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{selected: render.NoSelection}

	cmd := &cobra.Command{
		Use:   "render [scene]",
		Short: "Render a scene to SVG, DOT, PNG, JSON or text",
		Long: `Render a scene to SVG, DOT, PNG, JSON or text.

The scene is inspected once and rendered in every requested format. Renders
are cached by snapshot content, so re-rendering an unchanged scene is free.
With --capture the snapshot comes from the configured store instead.

Output goes next to the scene (scene.svg, scene.png, ...) unless --output is
given; with a single format --output names the file, "-" writes to stdout.`,
		Args: cobra.MaximumNArgs(1),
	}
	display := bindDisplayFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if (len(args) == 0) == (opts.capture == "") {
			return errors.New(errors.ErrCodeInvalidInput, "give either a scene file or --capture")
		}
		if err := display.apply(c.Config); err != nil {
			return err
		}
		input := ""
		if len(args) == 1 {
			input = args[0]
		}
		return c.runRender(cmd.Context(), cmd.OutOrStdout(), input, opts)
	}

	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), dot, png, json, txt (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVar(&opts.capture, "capture", "", "render an archived capture by id")
	cmd.Flags().IntVar(&opts.selected, "selected", opts.selected, "highlight the node with this id")
	cmd.Flags().StringVar(&opts.title, "title", "", "heading (defaults to the graph name)")
	cmd.Flags().Float64Var(&opts.scale, "scale", 1, "PNG resolution multiplier")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached renders")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, w io.Writer, input string, opts renderOpts) error {
	popts := pipeline.Options{
		Options: c.Config.RenderOptions(),
		Formats: parseFormats(opts.formats),
		Refresh: opts.refresh,
	}
	popts.Selected, popts.Title, popts.Scale = opts.selected, opts.title, opts.scale
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	s, err := c.loadSnapshot(ctx, input, opts.capture)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := runner.Render(ctx, s, popts)
	if err != nil {
		return err
	}

	if opts.output == "-" {
		if len(popts.Formats) != 1 {
			return errors.New(errors.ErrCodeInvalidInput, "stdout output needs exactly one format")
		}
		_, err := w.Write(res.Artifacts[popts.Formats[0]])
		return err
	}

	name := input
	if name == "" {
		name = opts.capture
	}
	base := basePath(opts.output, name)
	printSuccess(w, "Rendered %s", s.GraphName)
	for _, format := range popts.Formats {
		path := base + "." + format
		if opts.output != "" && len(popts.Formats) == 1 {
			path = opts.output
		}
		if err := os.WriteFile(path, res.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(w, path)
	}
	printStats(w, res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheInfo.AllHit)
	if !s.Normal() {
		printWarning(w, "%s: %s", s.State, s.Message)
	}
	return nil
}

// loadSnapshot captures the scene at path, or fetches an archived capture.
func (c *CLI) loadSnapshot(ctx context.Context, path, captureID string) (*graph.Snapshot, error) {
	if captureID == "" {
		return c.captureScene(ctx, path)
	}
	st, err := c.Config.Store.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.Get(ctx, captureID)
}

// parseFormats splits the --format flag. Empty means svg.
func parseFormats(s string) []string {
	if s == "" {
		return []string{render.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// basePath returns the output path without extension: the --output value
// with its extension stripped, or the input path likewise.
func basePath(output, input string) string {
	p := output
	if p == "" {
		p = input
	}
	return strings.TrimSuffix(p, filepath.Ext(p))
}
