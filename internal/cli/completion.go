package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// completionShells lists the shells a script can be generated for.
var completionShells = []string{"bash", "fish", "powershell", "zsh"}

func writeCompletion(root *cobra.Command, shell string, w io.Writer) error {
	switch shell {
	case "bash":
		return root.GenBashCompletionV2(w, true)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(w)
	case "zsh":
		return root.GenZshCompletion(w)
	}
	return fmt.Errorf("unsupported shell %q", shell)
}

// completionCommand writes a completion script for the named shell to the
// CLI's output. Document paths complete as files with a known extension.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <" + strings.Join(completionShells, "|") + ">",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for exprgraph. For example:

  source <(exprgraph completion bash)
  exprgraph completion fish > ~/.config/fish/completions/exprgraph.fish
  exprgraph completion zsh > "${fpath[1]}/_exprgraph"`,
		DisableFlagsInUseLine: true,
		ValidArgs:             completionShells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeCompletion(cmd.Root(), args[0], c.Out)
		},
	}
}

// documentArgs completes expression document paths for commands that take
// a single <file> argument.
func documentArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"toml", "yaml", "yml", "json", "hcl"}, cobra.ShellCompDirectiveFilterFileExt
}
