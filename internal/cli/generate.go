package cli

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/runshape/pkg/errors"
	"github.com/matzehuels/runshape/pkg/run"
)

// sampleOptions shape a generated snapshot.
type sampleOptions struct {
	Tasks    int
	MaxFanIn int
	Seed     uint64
	Cycle    bool
	Dangling bool
	Now      time.Time
}

// generateSample builds a random layered run. Task i may depend only on
// tasks before it, so the shape is acyclic unless Cycle adds a back edge.
func generateSample(o sampleOptions) *run.Snapshot {
	rng := rand.New(rand.NewPCG(o.Seed, o.Seed^0x9e3779b97f4a7c15))
	id := func() string {
		u, _ := uuid.NewRandomFromReader(rngReader{rng})
		return u.String()
	}

	snap := &run.Snapshot{RunID: id()}
	children := make(map[string][]string)
	var parents []string

	for i := range o.Tasks {
		ext := fmt.Sprintf("step-%02d", i)
		started := o.Now.Add(time.Duration(i) * time.Minute)
		t := run.Task{ID: id(), ExternalID: ext, DisplayName: fmt.Sprintf("Step %d", i), CreatedAt: &started}
		switch {
		case i < o.Tasks/2:
			finished := started.Add(time.Duration(20+rng.IntN(40)) * time.Second)
			t.Status, t.StartedAt, t.FinishedAt = run.StatusCompleted, &started, &finished
		case i < o.Tasks*3/4:
			t.Status, t.StartedAt = run.StatusRunning, &started
		default:
			t.Status = run.StatusQueued
		}
		snap.Tasks = append(snap.Tasks, t)

		if i > 0 {
			fanIn := 1 + rng.IntN(max(o.MaxFanIn, 1))
			seen := make(map[string]bool)
			for range fanIn {
				p := parents[rng.IntN(len(parents))]
				if !seen[p] {
					seen[p] = true
					children[p] = append(children[p], ext)
				}
			}
		}
		parents = append(parents, ext)
	}

	if o.Cycle && len(parents) >= 2 {
		prev, last := parents[len(parents)-2], parents[len(parents)-1]
		if !slices.Contains(children[prev], last) {
			children[prev] = append(children[prev], last)
		}
		children[last] = append(children[last], prev)
	}
	if o.Dangling && len(parents) > 0 {
		children[parents[0]] = append(children[parents[0]], "missing-step")
	}

	for _, p := range parents {
		if len(children[p]) > 0 {
			snap.Shape = append(snap.Shape, run.ShapeEdge{Parent: p, Children: children[p]})
		}
	}
	return snap
}

// rngReader feeds uuid generation from a seeded source.
type rngReader struct{ rng *rand.Rand }

func (r rngReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r.rng.Uint32())
	}
	return len(p), nil
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		opts   sampleOptions
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a random sample snapshot",
		Long: `Generate a random workflow run for trying out the other commands. The
same seed always produces the same run.`,
		Example: `  runshape generate --tasks 20 -o run.json
  runshape generate --cycle --format yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Tasks < 1 {
				return errors.New(errors.ErrCodeInvalidInput, "--tasks must be at least 1")
			}
			if !cmd.Flags().Changed("seed") {
				opts.Seed = uint64(time.Now().UnixNano())
			}
			opts.Now = time.Now().UTC().Truncate(time.Second)
			snap := generateSample(opts)

			var buf bytes.Buffer
			if err := run.Encode(&buf, snap, run.Format(format)); err != nil {
				return err
			}
			if output == "" {
				_, err := c.out.Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Generated %d tasks (seed %d)", len(snap.Tasks), opts.Seed)
			printFile(output)
			printNextStep("Lay it out", "runshape columns "+output)
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.Tasks, "tasks", "n", 12, "number of tasks")
	cmd.Flags().IntVar(&opts.MaxFanIn, "max-fan-in", 2, "maximum parents per task")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed (default: time based)")
	cmd.Flags().BoolVar(&opts.Cycle, "cycle", false, "add a dependency cycle between the last two tasks")
	cmd.Flags().BoolVar(&opts.Dangling, "dangling", false, "add an edge to a task that does not exist")
	cmd.Flags().StringVarP(&format, "format", "f", string(run.FormatJSON), "output format: json, yaml or toml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}
