// Package cli implements the blendview command-line interface.
//
// # Commands
//
//   - graphs: list the scene graphs found in a directory
//   - snapshot: inspect one scene and print its node tree
//   - render: write SVG, DOT, PNG, JSON or text renderings
//   - watch: live terminal view of a scene directory
//   - serve: HTTP inspection surface over a scene directory
//
// Every command reads the configuration file given by --config (plus .env
// and BLENDVIEW_* variables); flags override it. --verbose switches the
// logger to debug level.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blendview/pkg/buildinfo"
	"github.com/matzehuels/blendview/pkg/cache"
	"github.com/matzehuels/blendview/pkg/config"
	"github.com/matzehuels/blendview/pkg/inspect"
	"github.com/matzehuels/blendview/pkg/pipeline"
	"github.com/matzehuels/blendview/pkg/roster"
	"github.com/matzehuels/blendview/pkg/scene"
)

const appName = "blendview"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config *config.Config

	configPath string
	envFile    string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "blendview inspects live blend graphs",
		Long:          `blendview snapshots live animation blend graphs, lays them out as node trees and renders them to the terminal, SVG, Graphviz or HTTP.`,
		Version:       buildinfo.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (TOML)")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", config.DefaultEnvFile, "dotenv file to load if present")

	root.AddCommand(c.graphsCommand())
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath, c.envFile)
	if err != nil {
		return err
	}
	c.Config = cfg
	if c.configPath != "" {
		c.Logger.Debug("loaded config", "path", c.configPath)
	}
	return nil
}

// =============================================================================
// Factories
// =============================================================================

// newRunner creates a pipeline runner on the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	if noCache {
		return pipeline.NewRunner(cache.NewNullCache(), nil, c.Logger), nil
	}
	ch, err := c.Config.Cache.Open(ctx)
	if err != nil {
		c.Logger.Warn("cache unavailable, rendering uncached", "backend", c.Config.Cache.Backend, "err", err)
		ch = cache.NewNullCache()
	}
	return pipeline.NewRunner(ch, nil, c.Logger), nil
}

// newInspector creates an inspector over r using the configured settings.
func (c *CLI) newInspector(r *roster.Roster) (*inspect.Inspector, error) {
	opts, err := c.Config.InspectOptions(c.Logger)
	if err != nil {
		return nil, err
	}
	return inspect.New(r, opts)
}

// loadScene builds a single scene file into a fresh roster.
func (c *CLI) loadScene(path string) (*roster.Roster, error) {
	g, err := scene.Load(path)
	if err != nil {
		return nil, err
	}
	r := roster.New(roster.WithLogger(c.Logger))
	r.Register(g)
	return r, nil
}
