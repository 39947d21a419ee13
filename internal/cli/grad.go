package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/exprgraph/pkg/gradcheck"
	"github.com/matzehuels/exprgraph/pkg/pipeline"
	"github.com/matzehuels/exprgraph/pkg/scalar"
)

// gradCommand creates the grad command, which prints finite-difference
// estimates of the root's partial derivatives.
func (c *CLI) gradCommand() *cobra.Command {
	var (
		step      float64
		precision int
		set       []string
	)

	cmd := &cobra.Command{
		Use:   "grad <file>",
		Short: "Estimate partial derivatives of the root by finite differences",
		Long: `Grad nudges each leaf by --step, re-evaluates the expression and prints
(f(x+h) - f(x)) / h for every input. This is a numeric probe, not
backpropagation.`,
		Example: `  exprgraph grad examples/loss.toml
  exprgraph grad examples/loss.toml --step 1e-6 --precision 6`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: documentArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGrad(cmd.Context(), args[0], set, step, precision)
		},
	}

	cmd.Flags().Float64Var(&step, "step", 0, "finite-difference step (default 1e-4)")
	cmd.Flags().IntVar(&precision, "precision", scalar.DefaultPrecision, "decimals shown")
	cmd.Flags().StringArrayVar(&set, "set", nil, "override a leaf value (name=value, repeatable)")

	return cmd
}

func (c *CLI) runGrad(ctx context.Context, file string, set []string, step float64, precision int) error {
	inputs, err := parseInputs(set)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(nil, c.Logger)
	opts := pipeline.Options{Source: file, Inputs: inputs, Estimate: true, Step: step}
	root, partials, err := runner.Build(ctx, opts)
	if err != nil {
		return err
	}
	if len(partials) == 0 {
		printWarning(c.Out, "no inputs to differentiate")
		return nil
	}

	name := rootName(root)
	rows := make([][]string, 0, len(partials))
	for _, p := range partials {
		leaf := scalar.Find(root, p.Input)
		value := ""
		if len(leaf) > 0 {
			value = scalar.FormatFloat(leaf[0].Data(), precision)
		}
		rows = append(rows, []string{p.Input, value, scalar.FormatFloat(p.Value, precision)})
	}

	if step <= 0 {
		step = gradcheck.DefaultStep
	}
	printKeyValue(c.Out, "root", name)
	printKeyValue(c.Out, "value", StyleNumber.Render(scalar.FormatFloat(root.Data(), precision)))
	printInfo(c.Out, "forward difference, step %g", step)
	printTable(c.Out, []string{"input", "value", fmt.Sprintf("d%s/d(input)", name)}, rows)
	return nil
}
