package cli

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/exprgraph/pkg/pipeline"
)

// traceOpts holds the flags of the trace command.
type traceOpts struct {
	output    string
	formats   string
	grad      bool
	estimate  bool
	step      float64
	precision int
	rankDir   string
	set       []string
	scale     float64
	noCache   bool
	refresh   bool
}

// traceCommand creates the trace command, which renders an expression graph.
func (c *CLI) traceCommand() *cobra.Command {
	opts := traceOpts{}

	cmd := &cobra.Command{
		Use:   "trace <file>",
		Short: "Render the computation graph of an expression document",
		Long: `Trace evaluates an expression document and renders the graph of
operations behind its root value.

With no --output and the default dot format, the DOT text is written to
stdout. Otherwise one file per format is written next to --output (or named
after the input file in the current directory).`,
		Example: `  exprgraph trace examples/loss.toml
  exprgraph trace examples/loss.toml -f svg,json -o out/loss
  exprgraph trace examples/loss.toml --estimate --precision 2
  exprgraph trace examples/loss.hcl --set a=3 --grad`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: documentArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTrace(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output path or URL (extension added per format)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", pipeline.FormatDOT, "comma-separated output formats: dot, svg, png, pdf, json")
	cmd.Flags().BoolVar(&opts.grad, "grad", false, "show the grad segment on data nodes")
	cmd.Flags().BoolVar(&opts.estimate, "estimate", false, "annotate leaves with finite-difference gradients (implies --grad)")
	cmd.Flags().Float64Var(&opts.step, "step", 0, "finite-difference step (default 1e-4)")
	cmd.Flags().IntVar(&opts.precision, "precision", 0, "decimals shown for data and grad (default 4)")
	cmd.Flags().StringVar(&opts.rankDir, "rankdir", "", "graph direction: TB, LR, BT or RL")
	cmd.Flags().StringArrayVar(&opts.set, "set", nil, "override a leaf value (name=value, repeatable)")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "png resolution multiplier via rsvg-convert (e.g. 2 for high-DPI)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the rendered artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render svg, png and pdf even when cached")

	return cmd
}

func (c *CLI) runTrace(ctx context.Context, file string, opts traceOpts) error {
	formats, err := parseFormats(opts.formats)
	if err != nil {
		return err
	}
	inputs, err := parseInputs(opts.set)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Cache.Close()

	watch := startStopwatch(loggerFromContext(ctx))

	result, err := runner.Execute(ctx, pipeline.Options{
		Source:    file,
		Inputs:    inputs,
		Estimate:  opts.estimate,
		Step:      opts.step,
		ShowGrad:  opts.grad,
		Precision: opts.precision,
		Formats:   formats,
		RankDir:   opts.rankDir,
		Scale:     opts.scale,
		Refresh:   opts.refresh,
	})
	if err != nil {
		return err
	}

	if opts.output == "" && len(formats) == 1 && formats[0] == pipeline.FormatDOT {
		if _, err := fmt.Fprint(c.Out, result.DOT); err != nil {
			return err
		}
		watch.traced(result, 0)
		return nil
	}

	base := trimExt(path.Base(file))
	written, err := pipeline.WriteArtifacts(ctx, result.Artifacts, pipeline.OutputURLs(base, opts.output, formats))
	if err != nil {
		return err
	}
	watch.traced(result, len(written))

	printSuccess(c.Out, "Traced %s", StyleTitle.Render(rootName(result.Root)))
	printStats(c.Out, result.Stats.NodeCount, result.Stats.EdgeCount, result.Stats.OperatorCount)
	if len(result.CacheInfo.Hits) > 0 {
		printInfo(c.Out, "Cached: %s", strings.Join(result.CacheInfo.Hits, ", "))
	}
	for _, url := range written {
		printFile(c.Out, url)
	}
	return nil
}

func trimExt(name string) string {
	return name[:len(name)-len(path.Ext(name))]
}
