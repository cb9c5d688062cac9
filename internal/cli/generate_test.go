package cli

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/runshape/pkg/view"
)

func TestGenerateSampleDeterministic(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	opts := sampleOptions{Tasks: 15, MaxFanIn: 3, Seed: 42, Now: now}

	a := generateSample(opts)
	b := generateSample(opts)

	if a.RunID != b.RunID {
		t.Errorf("run ids differ: %s vs %s", a.RunID, b.RunID)
	}
	if len(a.Shape) != len(b.Shape) {
		t.Fatalf("shape lengths differ: %d vs %d", len(a.Shape), len(b.Shape))
	}
	for i := range a.Shape {
		if a.Shape[i].Parent != b.Shape[i].Parent || !slices.Equal(a.Shape[i].Children, b.Shape[i].Children) {
			t.Errorf("shape[%d] differs: %+v vs %+v", i, a.Shape[i], b.Shape[i])
		}
	}

	c := generateSample(sampleOptions{Tasks: 15, MaxFanIn: 3, Seed: 43, Now: now})
	if c.RunID == a.RunID {
		t.Error("different seeds produced the same run id")
	}
}

func TestGenerateSampleIsLayerable(t *testing.T) {
	snap := generateSample(sampleOptions{Tasks: 30, MaxFanIn: 4, Seed: 1})
	if err := snap.Validate(); err != nil {
		t.Fatalf("generated snapshot invalid: %v", err)
	}

	cols := view.BuildColumns(context.Background(), snap, nil)
	if len(cols.Unplaced) != 0 {
		t.Errorf("acyclic sample left %d tasks unplaced", len(cols.Unplaced))
	}
	if countTasks(cols) != 30 {
		t.Errorf("placed %d tasks, want 30", countTasks(cols))
	}
	if len(cols.Columns[0]) == 0 || cols.Columns[0][0].ExternalID != "step-00" {
		t.Errorf("first column should start with step-00, got %v", cols.Columns[0])
	}
}

func TestGenerateSampleCycle(t *testing.T) {
	snap := generateSample(sampleOptions{Tasks: 8, MaxFanIn: 2, Seed: 9, Cycle: true})

	cols := view.BuildColumns(context.Background(), snap, nil)
	if got := ids(cols.Unplaced); !slices.Equal(got, []string{"step-06", "step-07"}) {
		t.Errorf("unplaced = %v, want [step-06 step-07]", got)
	}
	if countTasks(cols) != 6 {
		t.Errorf("placed %d tasks, want 6", countTasks(cols))
	}
}

func TestGenerateSampleDangling(t *testing.T) {
	snap := generateSample(sampleOptions{Tasks: 4, MaxFanIn: 1, Seed: 3, Dangling: true})

	found := false
	for _, e := range snap.Shape {
		if slices.Contains(e.Children, "missing-step") {
			found = true
		}
	}
	if !found {
		t.Fatal("dangling edge not generated")
	}

	// An edge to a task that does not exist is ignored by layering.
	cols := view.BuildColumns(context.Background(), snap, nil)
	if len(cols.Unplaced) != 0 || countTasks(cols) != 4 {
		t.Errorf("dangling edge changed layering: %d placed, %d unplaced", countTasks(cols), len(cols.Unplaced))
	}
}
