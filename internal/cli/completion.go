package cli

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kinship/pkg/family"
	kio "github.com/matzehuels/kinship/pkg/io"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for kinship. Person names are completed
from the family file given earlier on the command line.

Bash:
  $ source <(kinship completion bash)

Zsh:
  $ kinship completion zsh > "${fpath[1]}/_kinship"

Fish:
  $ kinship completion fish > ~/.config/fish/completions/kinship.fish

PowerShell:
  PS> kinship completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(stdout)
			}
			return nil
		},
	}

	return cmd
}

// completeNames completes a family file first and then up to maxNames
// person names read from it. Names of stored families are not completed.
func (c *CLI) completeNames(maxNames int) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if c.familyName != "" {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		if len(args) == 0 {
			return []string{"json", "toml", "yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
		}
		if len(args) > maxNames {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		data, err := kio.Import(args[0])
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return matchingNames(data, toComplete), cobra.ShellCompDirectiveNoFileComp
	}
}

func matchingNames(data family.Data, prefix string) []string {
	var names []string
	for name := range data.Individuals {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
