package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blendview/pkg/errors"
	"github.com/matzehuels/blendview/pkg/graph"
	"github.com/matzehuels/blendview/pkg/render/text"
)

const (
	snapshotTree = "tree"
	snapshotJSON = "json"
)

// snapshotCommand inspects one scene and prints the result.
func (c *CLI) snapshotCommand() *cobra.Command {
	var (
		format string
		save   bool
	)
	cmd := &cobra.Command{
		Use:   "snapshot [scene]",
		Short: "Inspect a scene once and print its node tree",
		Long: `Inspect a scene once and print its node tree.

The scene is built into a live graph, snapshotted and laid out exactly as the
live view would. --format json prints the wire snapshot instead of the tree.
--save archives the capture in the configured store.`,
		Args: cobra.ExactArgs(1),
	}
	display := bindDisplayFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if format != snapshotTree && format != snapshotJSON {
			return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be tree or json)", format)
		}
		if err := display.apply(c.Config); err != nil {
			return err
		}
		return c.runSnapshot(cmd.Context(), cmd.OutOrStdout(), args[0], format, save)
	}

	cmd.Flags().StringVarP(&format, "format", "f", snapshotTree, "output format: tree, json")
	cmd.Flags().BoolVar(&save, "save", false, "archive the capture in the configured store")
	return cmd
}

func (c *CLI) runSnapshot(ctx context.Context, w io.Writer, path, format string, save bool) error {
	s, err := c.captureScene(ctx, path)
	if err != nil {
		return err
	}

	if save {
		st, err := c.Config.Store.Open(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Save(ctx, s); err != nil {
			return err
		}
		c.Logger.Info("saved capture", "id", s.ID, "backend", c.Config.Store.Backend)
	}

	if format == snapshotJSON {
		return graph.Write(s, w)
	}
	_, err = io.WriteString(w, text.Tree(s, text.Options{
		Options: c.Config.RenderOptions(),
		Color:   shouldUseColor(w),
	}))
	return err
}

// captureScene loads, inspects and captures one scene file.
func (c *CLI) captureScene(ctx context.Context, path string) (*graph.Snapshot, error) {
	r, err := c.loadScene(path)
	if err != nil {
		return nil, err
	}
	in, err := c.newInspector(r)
	if err != nil {
		return nil, err
	}
	prog := newProgress(c.Logger)
	f := in.Poll(ctx)
	s := graph.FromFrame(f)
	if f.Normal() {
		prog.done("Inspected " + s.GraphName)
	} else {
		c.Logger.Warn("graph not drawable", "graph", s.GraphName, "state", s.State)
	}
	return s, nil
}
