package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/runshape/pkg/run"
	"github.com/matzehuels/runshape/pkg/view"
)

// viewCommand creates the interactive view command.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		in      inputFlags
		mode    string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "view [snapshot]",
		Short: "Browse a run as a graph or minimap",
		Long: `Show the effective view of a run. The graph is shown when requested and
the run has dependencies; otherwise the minimap columns are shown.

Selecting a task with enter prints its id, so the command composes with
other tools.`,
		Example: `  runshape view run.json
  runshape view run.json --mode minimap
  runshape view --tenant acme --run 8f1c... --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			requested := c.Config.DefaultMode()
			if mode != "" {
				m, err := view.ParseMode(mode)
				if err != nil {
					return err
				}
				requested = m
			}

			snap, err := c.load(ctx, args, in)
			if err != nil {
				return err
			}

			var clicked string
			opts := c.Config.LayoutOptions()
			memo, err := view.NewMemo(c.Config.Memo.Size, nil)
			if err != nil {
				return err
			}
			build := func(m view.Mode) (*view.View, error) {
				return memo.Build(ctx, run.Ready(snap), view.Request{
					Mode:    m,
					Layout:  opts,
					OnClick: func(id string) { clicked = id },
					Logger:  c.Logger,
				})
			}

			v, err := build(requested)
			if err != nil {
				return err
			}
			if v.Mode != requested {
				c.Logger.Debug("graph unavailable, showing minimap", "requested", requested)
			}

			if jsonOut {
				return writeJSON(c.out, v)
			}

			p := tea.NewProgram(NewViewModel(v, build, opts.RankDir), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("view: %w", err)
			}
			if clicked != "" {
				fmt.Fprintln(c.out, clicked)
			}
			return nil
		},
	}

	in.register(cmd)
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "view mode: graph or minimap (default from config)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the view as JSON instead of browsing it")
	return cmd
}
