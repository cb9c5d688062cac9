package layering

import (
	"strings"

	"github.com/matzehuels/runshape/pkg/errors"
	"github.com/matzehuels/runshape/pkg/relationship"
	"github.com/matzehuels/runshape/pkg/run"
)

// Result is the column assignment of a task list.
type Result struct {
	// Columns lists the tasks of each rank, in the order they were placed.
	Columns [][]run.Task `json:"columns"`
	// Unplaced lists tasks whose parents never resolved, in task order.
	Unplaced []run.Task `json:"unplaced"`
	// Passes is the number of relaxation passes that ran.
	Passes int `json:"passes"`

	ranks map[string]int
}

type parentState int

const (
	parentAbsent parentState = iota
	parentPending
	parentPlaced
)

// Assign computes the column of every task with an external id.
func Assign(tasks []run.Task, rels relationship.Set) Result {
	res := Result{
		Columns:  [][]run.Task{},
		Unplaced: []run.Task{},
		ranks:    make(map[string]int, len(tasks)),
	}

	known := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if t.ExternalID != "" {
			known[t.ExternalID] = true
		}
	}

	state := func(id string) (parentState, int) {
		if r, ok := res.ranks[id]; ok {
			return parentPlaced, r
		}
		if known[id] {
			return parentPending, -1
		}
		return parentAbsent, -1
	}

	processed := make(map[string]bool, len(known))
	for len(processed) < len(known) {
		res.Passes++
		placed := 0

		for _, t := range tasks {
			id := t.ExternalID
			if id == "" || processed[id] {
				continue
			}

			target, ready := 0, true
			if rel, ok := rels.Lookup(id); ok {
				for _, p := range rel.Parents {
					st, r := state(p)
					if st == parentPending {
						ready = false
						break
					}
					if st == parentPlaced && r+1 > target {
						target = r + 1
					}
				}
			}
			if !ready {
				continue
			}

			res.place(t, target)
			processed[id] = true
			placed++
		}

		if placed == 0 {
			break
		}
	}

	for _, t := range tasks {
		if t.ExternalID != "" && !processed[t.ExternalID] {
			res.Unplaced = append(res.Unplaced, t)
			// only the first task of an external id is reported
			processed[t.ExternalID] = true
		}
	}
	return res
}

func (r *Result) place(t run.Task, col int) {
	for len(r.Columns) <= col {
		r.Columns = append(r.Columns, []run.Task{})
	}
	r.Columns[col] = append(r.Columns[col], t)
	r.ranks[t.ExternalID] = col
}

// Rank returns the column of the task with the given external id.
func (r Result) Rank(id string) (int, bool) {
	rank, ok := r.ranks[id]
	return rank, ok
}

// Ranks returns a copy of the external id to column mapping.
func (r Result) Ranks() map[string]int {
	out := make(map[string]int, len(r.ranks))
	for k, v := range r.ranks {
		out[k] = v
	}
	return out
}

// Placed returns the number of tasks assigned to a column.
func (r Result) Placed() int { return len(r.ranks) }

// Layerable reports whether every task with an external id was placed.
func (r Result) Layerable() bool { return len(r.Unplaced) == 0 }

// Err returns a GRAPH_NOT_LAYERABLE error naming the unplaced tasks, or nil.
func (r Result) Err() error {
	if r.Layerable() {
		return nil
	}
	ids := make([]string, len(r.Unplaced))
	for i, t := range r.Unplaced {
		ids[i] = t.ExternalID
	}
	return errors.New(errors.ErrCodeNotLayerable,
		"%d task(s) wait on a dependency cycle: %s", len(ids), strings.Join(ids, ", "))
}

// ColumnIDs returns the external ids of each column. Useful for logs and tests.
func (r Result) ColumnIDs() [][]string {
	out := make([][]string, len(r.Columns))
	for i, col := range r.Columns {
		out[i] = make([]string, len(col))
		for j, t := range col {
			out[i][j] = t.ExternalID
		}
	}
	return out
}
