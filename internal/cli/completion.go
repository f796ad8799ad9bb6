package cli

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/aurorus/pkg/config"
	"github.com/matzehuels/aurorus/pkg/registry"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for aurorus.

Bash (requires bash-completion):
  $ aurorus completion bash > ~/.local/share/bash-completion/completions/aurorus

Zsh:
  $ aurorus completion zsh > /usr/local/share/zsh/site-functions/_aurorus

Fish:
  $ aurorus completion fish > ~/.config/fish/completions/aurorus.fish

Start a new shell afterwards. Package names for uninstall are completed from
the registry.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			default:
				return cmd.Root().GenFishCompletion(out, true)
			}
		},
	}
}

// completeInstalled offers the registry's package names as the first argument.
// A registry that does not exist yet is not created.
func (c *CLI) completeInstalled(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	if _, err := os.Stat(cfg.DBPath); err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	reg, err := registry.Open(cfg.DBPath)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer reg.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	pkgs, err := reg.List(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var names []string
	for _, p := range pkgs {
		if strings.HasPrefix(p.Name, toComplete) {
			names = append(names, p.Name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
