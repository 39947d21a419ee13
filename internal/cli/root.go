package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/exprgraph/pkg/buildinfo"
	apperrors "github.com/matzehuels/exprgraph/pkg/errors"
)

// Exit codes returned by Run.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitInterrupted = 130 // shell convention for SIGINT
)

// RootCommand creates the root cobra command with all subcommands registered.
// The CLI's logger is attached to every command's context, at debug level
// when --verbose is set.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           appName,
		Short:         "exprgraph draws the computation graph behind a scalar expression",
		Long:          `exprgraph evaluates scalar expressions described in TOML, YAML, JSON or HCL documents and renders the graph of operations that produced the result as Graphviz DOT, SVG, PNG or PDF.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.traceCommand())
	root.AddCommand(c.evalCommand())
	root.AddCommand(c.gradCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// Run executes args and returns the process exit code. Errors are printed
// to stderr as user messages; cancellation maps to ExitInterrupted.
func (c *CLI) Run(ctx context.Context, args []string, stderr io.Writer) int {
	root := c.RootCommand()
	root.SetArgs(args)
	return exitCode(root.ExecuteContext(ctx), stderr)
}

func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	}
	fmt.Fprintln(stderr, apperrors.UserMessage(err))
	return ExitError
}
