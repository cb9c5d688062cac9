package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/runshape/pkg/errors"
	"github.com/matzehuels/runshape/pkg/graphlayout"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		in      inputFlags
		format  string
		output  string
		engine  string
		rankDir string
	)

	cmd := &cobra.Command{
		Use:   "graph [snapshot]",
		Short: "Lay out the full task graph",
		Long: `Lay out every task as a fixed-size node with an edge per parent/child
pair. JSON output carries top-left node positions; DOT and SVG output go
through Graphviz.`,
		Example: `  runshape graph run.json
  runshape graph run.json --engine layered --rankdir TB
  runshape graph run.json -f svg -o run.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			snap, err := c.load(ctx, args, in)
			if err != nil {
				return err
			}

			opts := c.Config.LayoutOptions()
			opts.Logger = c.Logger
			if engine != "" {
				opts.Engine = engine
			}
			if rankDir != "" {
				opts.RankDir = rankDir
			}

			var data []byte
			switch format {
			case formatJSON:
				prog := newProgress(c.Logger)
				layout, err := graphlayout.Build(ctx, snap.Tasks, snap.Shape, opts)
				if err != nil {
					return err
				}
				if layout == nil {
					printInfo("Nothing to lay out: the run has no tasks or no shape")
					return nil
				}
				prog.done(fmt.Sprintf("Laid out %d tasks with %s", len(layout.Nodes), layout.Engine))
				if layout.DroppedEdges > 0 {
					c.Logger.Debug("dangling edges dropped", "count", layout.DroppedEdges)
				}
				if data, err = marshalIndent(layout); err != nil {
					return err
				}

			case formatDOT, formatSVG:
				g, _ := graphlayout.NewGraph(snap.Tasks, snap.Shape,
					graphlayout.Size{Width: opts.NodeWidth, Height: opts.NodeHeight})
				data = []byte(graphlayout.ToDOT(g, opts))
				if format == formatSVG {
					if data, err = graphlayout.RenderSVG(ctx, string(data)); err != nil {
						return errors.Wrap(errors.ErrCodeLayoutFailed, err, "render svg")
					}
				}

			default:
				return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want json, dot or svg)", format)
			}

			if output == "" {
				_, err := c.out.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Wrote %s", format)
			printFile(output)
			return nil
		},
	}

	in.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json, dot or svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&engine, "engine", "", "layout engine: graphviz or layered (default from config)")
	cmd.Flags().StringVar(&rankDir, "rankdir", "", "rank direction: LR or TB (default from config)")
	return cmd
}
