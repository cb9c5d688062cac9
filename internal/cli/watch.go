package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/runshape/pkg/run"
	"github.com/matzehuels/runshape/pkg/source"
)

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <snapshot>",
		Short: "Re-layer a snapshot file whenever it changes",
		Long: `Print the column layering of a snapshot file, then print it again every
time the file is written. Stop with Ctrl+C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, err := source.NewWatcher(args[0])
			if err != nil {
				return err
			}

			c.printQuery(ctx, w.Path, w.Fetch(ctx))
			if err := w.Start(ctx); err != nil {
				return fmt.Errorf("watch %s: %w", args[0], err)
			}
			defer w.Stop()
			printInfo("Watching %s", filepath.Base(w.Path))

			for {
				select {
				case <-ctx.Done():
					return nil
				case q, ok := <-w.Updates:
					if !ok {
						return nil
					}
					c.printQuery(ctx, w.Path, q)
				}
			}
		},
	}
	return cmd
}

// printQuery prints the layering of a ready query, or why there is none.
func (c *CLI) printQuery(ctx context.Context, name string, q run.Query) {
	snap, ok := q.Snapshot()
	if !ok {
		if q.IsError {
			c.Logger.Warn("cannot read snapshot", "file", name, "err", q.Err)
		}
		return
	}
	fmt.Fprintln(c.out)
	fmt.Fprint(c.out, renderColumns(c.layer(ctx, name, snap)))
}
