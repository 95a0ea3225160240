// Command blendview inspects live blend graphs: scene snapshots, renders,
// a terminal live view and an HTTP inspection server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blendview/internal/cli"
)

// exitInterrupted follows the shell convention for SIGINT.
const exitInterrupted = 130

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	c := cli.New(stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	withVerbose(root, c)

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	default:
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
}

// withVerbose adds --verbose and raises the log level before the root's own
// pre-run loads the config, so config loading is logged at debug too.
func withVerbose(root *cobra.Command, c *cli.CLI) {
	verbose := root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	next := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if *verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if next == nil {
			return nil
		}
		return next(cmd, args)
	}
}
