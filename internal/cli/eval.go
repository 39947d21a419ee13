package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/exprgraph/pkg/pipeline"
	"github.com/matzehuels/exprgraph/pkg/scalar"
)

// evalCommand creates the eval command, which prints values without rendering.
func (c *CLI) evalCommand() *cobra.Command {
	var (
		precision int
		set       []string
	)

	cmd := &cobra.Command{
		Use:   "eval <file>",
		Short: "Evaluate an expression document and print its labeled values",
		Example: `  exprgraph eval examples/loss.toml
  exprgraph eval examples/loss.yaml --set a=3 --precision 2`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: documentArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEval(cmd.Context(), args[0], set, precision)
		},
	}

	cmd.Flags().IntVar(&precision, "precision", scalar.DefaultPrecision, "decimals shown")
	cmd.Flags().StringArrayVar(&set, "set", nil, "override a leaf value (name=value, repeatable)")

	return cmd
}

func (c *CLI) runEval(ctx context.Context, file string, set []string, precision int) error {
	inputs, err := parseInputs(set)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(nil, c.Logger)
	root, _, err := runner.Build(ctx, pipeline.Options{Source: file, Inputs: inputs})
	if err != nil {
		return err
	}

	printKeyValue(c.Out, "root", rootName(root))
	printKeyValue(c.Out, "value", StyleNumber.Render(scalar.FormatFloat(root.Data(), precision)))
	printKeyValue(c.Out, "depth", strconv.Itoa(scalar.Depth(root)))

	printTable(c.Out, []string{"label", "kind", "data", "grad"}, valueRows(root, precision))
	return nil
}

// valueRows lists every labeled node reachable from root in walk order.
func valueRows(root scalar.Value, precision int) [][]string {
	var rows [][]string
	scalar.Walk(root, func(v scalar.Value, _ int) bool {
		label, ok := v.Label()
		if !ok {
			return true
		}
		kind := "input"
		if op, ok := v.Op(); ok {
			kind = op.String()
		}
		rows = append(rows, []string{label, kind, scalar.FormatFloat(v.Data(), precision), scalar.FormatFloat(v.Grad(), precision)})
		return true
	})
	return rows
}

func rootName(v scalar.Value) string {
	if label, ok := v.Label(); ok {
		return label
	}
	return "(unlabeled)"
}
