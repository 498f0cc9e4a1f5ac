package cmd

import (
	"github.com/msalah0e/gridmap/internal/fetch"
	"github.com/spf13/cobra"
)

// completionCmd generates shell completion scripts.
func completionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate completion scripts for your shell.

  # Bash (add to ~/.bashrc)
  eval "$(gridmap completion bash)"

  # Zsh (add to ~/.zshrc)
  eval "$(gridmap completion zsh)"

  # Fish
  gridmap completion fish | source

  # PowerShell
  gridmap completion powershell | Out-String | Invoke-Expression`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Run: func(cmd *cobra.Command, args []string) {
			switch args[0] {
			case "bash":
				_ = rootCmd.GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				_ = rootCmd.GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				_ = rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				_ = rootCmd.GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
		},
	}

	return cmd
}

// groupCompletionFunc completes the first argument with the group ids of the
// configured source.
func groupCompletionFunc(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 && cmd.Name() != "export" {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	src, err := fetch.FromConfig(cfg.Source, logger)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	groups, err := src.Groups(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var completions []string
	for _, g := range groups {
		completions = append(completions, g.ID+"\t"+g.Title())
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}
