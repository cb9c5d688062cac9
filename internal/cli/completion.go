package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/runshape/pkg/graphlayout"
	"github.com/matzehuels/runshape/pkg/run"
	"github.com/matzehuels/runshape/pkg/view"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for runshape. Flag values such as
--engine, --rankdir, --mode and --format complete as well.

  $ source <(runshape completion bash)
  $ runshape completion zsh > "${fpath[1]}/_runshape"
  $ runshape completion fish > ~/.config/fish/completions/runshape.fish
  PS> runshape completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(c.out, true)
			case "zsh":
				return root.GenZshCompletion(c.out)
			case "fish":
				return root.GenFishCompletion(c.out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(c.out)
			}
		},
	}
}

// flagChoices lists the accepted values of enumerated flags, per command.
func flagChoices() map[string]map[string][]string {
	modes := make([]string, len(view.Modes))
	for i, m := range view.Modes {
		modes[i] = string(m)
	}
	return map[string]map[string][]string{
		"columns": {"format": {formatText, formatJSON}},
		"graph": {
			"format":  {formatJSON, formatDOT, formatSVG},
			"engine":  {graphlayout.EngineGraphviz, graphlayout.EngineLayered},
			"rankdir": {graphlayout.RankDirLR, graphlayout.RankDirTB},
		},
		"view":     {"mode": modes},
		"generate": {"format": {string(run.FormatJSON), string(run.FormatYAML), string(run.FormatTOML)}},
	}
}

// registerFlagCompletions attaches value completion to enumerated flags of
// root's subcommands.
func registerFlagCompletions(root *cobra.Command) {
	choices := flagChoices()
	for _, cmd := range root.Commands() {
		for flag, values := range choices[cmd.Name()] {
			_ = cmd.RegisterFlagCompletionFunc(flag, cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
		}
	}
}
