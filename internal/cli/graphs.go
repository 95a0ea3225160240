package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blendview/pkg/host"
	"github.com/matzehuels/blendview/pkg/roster"
	"github.com/matzehuels/blendview/pkg/scene"
)

// graphsCommand lists the graphs a scene directory contributes to the roster.
func (c *CLI) graphsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "graphs [dir]",
		Short: "List the scene graphs in a directory",
		Long: `List the scene graphs in a directory.

Every .yaml, .yml, .toml and .json file is built into a live graph and
inspected once; the table shows each graph's display state and size.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraphs(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
}

func (c *CLI) runGraphs(ctx context.Context, w io.Writer, dir string) error {
	r := roster.New(roster.WithLogger(c.Logger))
	watcher, err := scene.NewWatcher(dir, r, scene.WithWatcherLogger(c.Logger))
	if err != nil {
		return err
	}
	defer watcher.Close()

	if _, err := watcher.LoadAll(); err != nil {
		return err
	}
	if r.Len() == 0 {
		printWarning(w, "No scene graphs in %s", dir)
		return nil
	}

	in, err := c.newInspector(r)
	if err != nil {
		return err
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	graphs := r.List()
	states := make([]string, len(graphs))
	rows := make([][]string, len(graphs))
	for i, g := range graphs {
		f := in.Inspect(ctx, g)
		states[i] = f.State.String()
		rows[i] = []string{
			host.DisplayName(g),
			states[i],
			strconv.Itoa(g.OutputCount()),
			strconv.Itoa(f.Stats.Nodes),
			strconv.Itoa(f.Stats.MaxDepth),
			shortID(g.ID()),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Graph", "State", "Outputs", "Nodes", "Depth", "ID").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return headerStyle.Padding(0, 1)
			case col == 1:
				return stateStyle(states[row]).Padding(0, 1)
			case col == 5:
				return base.Foreground(colorDim)
			}
			return base
		})

	fmt.Fprintln(w, t.Render())
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
