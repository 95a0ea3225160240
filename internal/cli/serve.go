package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blendview/internal/metrics"
	"github.com/matzehuels/blendview/internal/server"
	"github.com/matzehuels/blendview/pkg/roster"
	"github.com/matzehuels/blendview/pkg/scene"
)

// serveCommand exposes a scene directory over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)
	cmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Serve the graphs in a scene directory over HTTP",
		Long: `Serve the graphs in a scene directory over HTTP.

Scene files are watched as with 'watch'. Snapshots and renders are taken per
request; renders are cached in the configured cache and captures archived in
the configured store. Prometheus metrics are served on /metrics.`,
		Args: cobra.ExactArgs(1),
	}
	display := bindDisplayFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			c.Config.Server.Addr = addr
		}
		if err := display.apply(c.Config); err != nil {
			return err
		}
		return c.runServe(cmd.Context(), args[0], noCache)
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable render caching")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, dir string, noCache bool) error {
	metrics.New(nil).Install()

	r := roster.New(roster.WithLogger(c.Logger))
	watcher, err := scene.NewWatcher(dir, r, scene.WithWatcherLogger(c.Logger))
	if err != nil {
		return err
	}
	defer watcher.Close()

	in, err := c.newInspector(r)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	st, err := c.Config.Store.Open(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
			c.Logger.Error("scene watcher stopped", "err", err)
			cancel()
		}
	}()

	srv := server.New(in, runner, st,
		server.WithLogger(c.Logger),
		server.WithRenderDefaults(c.Config.RenderOptions()))
	c.Logger.Info("serving", "dir", dir, "cache", c.Config.Cache.Backend, "store", c.Config.Store.Backend)
	return srv.ListenAndServe(ctx, c.Config.Server.Addr)
}
