package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/runshape/pkg/errors"
	"github.com/matzehuels/runshape/pkg/run"
	"github.com/matzehuels/runshape/pkg/view"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatDOT  = "dot"
	formatSVG  = "svg"

	// maxParallelFiles bounds concurrent snapshot loading.
	maxParallelFiles = 8
)

// columnsResult is the layering of one input.
type columnsResult struct {
	Name     string       `json:"name"`
	RunID    string       `json:"runId,omitempty"`
	Layering view.Columns `json:"layering"`
}

// columnsCommand creates the columns command.
func (c *CLI) columnsCommand() *cobra.Command {
	var (
		in     inputFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "columns [snapshot...]",
		Short: "Print the column layering of workflow runs",
		Long: `Assign every task to a column after all of its parents and print the
columns. Tasks waiting on a dependency cycle are listed as unplaced.

Several snapshot files are layered concurrently and printed in argument order.`,
		Example: `  runshape columns run.json
  runshape columns runs/*.yaml --format json
  runshape columns --tenant acme --run 8f1c...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatText && format != formatJSON {
				return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want text or json)", format)
			}
			results, err := c.layerAll(cmd.Context(), args, in)
			if err != nil {
				return err
			}
			if format == formatJSON {
				return writeJSON(c.out, results)
			}
			for i, r := range results {
				if i > 0 {
					fmt.Fprintln(c.out)
				}
				fmt.Fprint(c.out, renderColumns(r))
			}
			return nil
		},
	}

	in.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text or json")
	return cmd
}

// layerAll loads and layers every input, files concurrently.
func (c *CLI) layerAll(ctx context.Context, args []string, in inputFlags) ([]columnsResult, error) {
	if len(args) <= 1 {
		snap, err := c.load(ctx, args, in)
		if err != nil {
			return nil, err
		}
		name := snap.RunID
		if len(args) == 1 {
			name = args[0]
		}
		return []columnsResult{c.layer(ctx, name, snap)}, nil
	}
	if in.remote() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "--tenant/--run take no snapshot files")
	}

	prog := newProgress(c.Logger)
	results := make([]columnsResult, len(args))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFiles)
	for i, path := range args {
		g.Go(func() error {
			snap, err := c.load(ctx, []string{path}, in)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = c.layer(ctx, path, snap)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Layered %d runs", len(args)))
	return results, nil
}

func (c *CLI) layer(ctx context.Context, name string, snap *run.Snapshot) columnsResult {
	return columnsResult{
		Name:     name,
		RunID:    snap.RunID,
		Layering: view.BuildColumns(ctx, snap, c.Logger),
	}
}

// =============================================================================
// Rendering
// =============================================================================

var (
	styleColumnHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleColumn       = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
	styleSelected = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
)

// statusStyle colours a task by status.
func statusStyle(s run.Status) lipgloss.Style {
	switch s {
	case run.StatusCompleted:
		return lipgloss.NewStyle().Foreground(colorGreen)
	case run.StatusFailed:
		return lipgloss.NewStyle().Foreground(colorRed)
	case run.StatusRunning:
		return lipgloss.NewStyle().Foreground(colorCyan)
	case run.StatusCancelled:
		return lipgloss.NewStyle().Foreground(colorYellow)
	default:
		return lipgloss.NewStyle().Foreground(colorWhite)
	}
}

func statusIcon(s run.Status) string {
	switch s {
	case run.StatusCompleted:
		return iconSuccess
	case run.StatusFailed:
		return iconError
	case run.StatusRunning:
		return "●"
	case run.StatusCancelled:
		return iconWarning
	default:
		return "○"
	}
}

// taskLine renders one task of a column.
func taskLine(t run.Task, selected bool) string {
	line := statusStyle(t.Status).Render(statusIcon(t.Status)) + " " + t.Label()
	if selected {
		return styleSelected.Render("▸ " + statusIcon(t.Status) + " " + t.Label())
	}
	return "  " + line
}

// renderColumnBoxes draws the columns side by side. selected is the id of
// the highlighted task, or empty.
func renderColumnBoxes(cols [][]run.Task, selected string) string {
	boxes := make([]string, 0, len(cols))
	for i, col := range cols {
		lines := []string{styleColumnHeader.Render(fmt.Sprintf("Column %d", i))}
		for _, t := range col {
			lines = append(lines, taskLine(t, t.ID == selected))
		}
		boxes = append(boxes, styleColumn.Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

// renderColumns renders a layering result as text.
func renderColumns(r columnsResult) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(r.Name))
	b.WriteString("\n")
	b.WriteString(statsLine(countTasks(r.Layering), len(r.Layering.Columns), r.Layering.Passes))
	b.WriteString("\n")
	if len(r.Layering.Columns) > 0 {
		b.WriteString(renderColumnBoxes(r.Layering.Columns, ""))
		b.WriteString("\n")
	}
	if len(r.Layering.Unplaced) > 0 {
		labels := make([]string, len(r.Layering.Unplaced))
		for i, t := range r.Layering.Unplaced {
			labels[i] = t.Label()
		}
		b.WriteString(styleIconWarning.Render(iconWarning) + " " +
			StyleWarning.Render(fmt.Sprintf("%d unplaced (dependency cycle): %s", len(labels), strings.Join(labels, ", "))))
		b.WriteString("\n")
	}
	return b.String()
}

func countTasks(c view.Columns) int {
	n := 0
	for _, col := range c.Columns {
		n += len(col)
	}
	return n
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func marshalIndent(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
