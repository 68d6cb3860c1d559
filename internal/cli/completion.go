package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// completionCmd generates shell completion scripts for plotline.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for plotline.

To install completions:

  Bash (Linux):
    plotline completion bash | sudo tee /etc/bash_completion.d/plotline > /dev/null

  Bash (macOS with Homebrew):
    plotline completion bash > $(brew --prefix)/etc/bash_completion.d/plotline

  Zsh:
    plotline completion zsh > "${fpath[1]}/_plotline"

  Fish:
    plotline completion fish > ~/.config/fish/completions/plotline.fish

  PowerShell:
    plotline completion powershell > plotline.ps1
    # Then add ". plotline.ps1" to your PowerShell profile`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletionV2(out, true)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(out)
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// completeTaskIDs offers the ids of stored tasks, described by their titles.
func completeTaskIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ws, err := openWorkspace()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer ws.Close() //nolint:errcheck

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	tasks, err := ws.store.List(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []string
	for _, t := range tasks {
		if strings.HasPrefix(t.ID, toComplete) {
			out = append(out, t.ID+"\t"+t.Title)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
