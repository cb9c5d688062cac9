package run

import (
	"testing"
	"time"

	"github.com/matzehuels/runshape/pkg/errors"
)

func TestStatusValid(t *testing.T) {
	for _, s := range Statuses {
		if !s.Valid() {
			t.Errorf("%q.Valid() = false, want true", s)
		}
	}
	if !Status("").Valid() {
		t.Error("empty status should be valid")
	}
	if Status("PAUSED").Valid() {
		t.Error("unknown status should be invalid")
	}
}

func TestStatusTerminal(t *testing.T) {
	if StatusRunning.Terminal() || StatusQueued.Terminal() {
		t.Error("queued/running should not be terminal")
	}
	if !StatusFailed.Terminal() || !StatusCompleted.Terminal() || !StatusCancelled.Terminal() {
		t.Error("failed/completed/cancelled should be terminal")
	}
}

func TestTaskLabel(t *testing.T) {
	tests := []struct {
		task Task
		want string
	}{
		{Task{ID: "1", ExternalID: "a", DisplayName: "build"}, "build"},
		{Task{ID: "1", ExternalID: "a"}, "a"},
		{Task{ID: "1"}, "1"},
	}
	for _, tt := range tests {
		if got := tt.task.Label(); got != tt.want {
			t.Errorf("Label() = %q, want %q", got, tt.want)
		}
	}
}

func TestTaskDuration(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Second)
	now := start.Add(5 * time.Minute)

	if d := (Task{}).Duration(now); d != 0 {
		t.Errorf("not started Duration() = %v, want 0", d)
	}
	if d := (Task{StartedAt: &start, FinishedAt: &end}).Duration(now); d != 90*time.Second {
		t.Errorf("finished Duration() = %v, want 90s", d)
	}
	if d := (Task{StartedAt: &start}).Duration(now); d != 5*time.Minute {
		t.Errorf("running Duration() = %v, want 5m", d)
	}
	if d := (Task{StartedAt: &end, FinishedAt: &start}).Duration(now); d != 0 {
		t.Errorf("inverted Duration() = %v, want 0", d)
	}
}

func TestSnapshotHasDependencies(t *testing.T) {
	var nilSnap *Snapshot
	if nilSnap.HasDependencies() {
		t.Error("nil snapshot should have no dependencies")
	}

	s := &Snapshot{Shape: []ShapeEdge{{Parent: "a"}, {Parent: "b", Children: []string{}}}}
	if s.HasDependencies() {
		t.Error("childless shape should have no dependencies")
	}

	s.Shape = append(s.Shape, ShapeEdge{Parent: "c", Children: []string{"d"}})
	if !s.HasDependencies() {
		t.Error("shape with children should have dependencies")
	}
}

func TestSnapshotValidate(t *testing.T) {
	tests := []struct {
		name    string
		snap    *Snapshot
		wantErr bool
	}{
		{"nil", nil, true},
		{"empty", &Snapshot{}, false},
		{"valid", &Snapshot{Tasks: []Task{{ID: "1", ExternalID: "a", Status: StatusQueued}}}, false},
		{"missing external id tolerated", &Snapshot{Tasks: []Task{{ID: "1"}}}, false},
		{"dangling shape tolerated", &Snapshot{
			Tasks: []Task{{ID: "1", ExternalID: "a"}},
			Shape: []ShapeEdge{{Parent: "a", Children: []string{"z"}}},
		}, false},
		{"missing id", &Snapshot{Tasks: []Task{{ExternalID: "a"}}}, true},
		{"duplicate id", &Snapshot{Tasks: []Task{{ID: "1"}, {ID: "1"}}}, true},
		{"unknown status", &Snapshot{Tasks: []Task{{ID: "1", Status: "PAUSED"}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.snap.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidSnapshot) {
				t.Errorf("Validate() code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidSnapshot)
			}
		})
	}
}

func TestSnapshotNormalize(t *testing.T) {
	s := Snapshot{
		RunID: "r1",
		Tasks: []Task{{ID: "1", ExternalID: "a"}},
		Shape: []ShapeEdge{
			{Parent: "", Children: []string{"a"}},
			{Parent: "a", Children: []string{"b", "", "c"}},
		},
	}

	out, stats := s.Normalize()

	if stats.EdgesDropped != 1 {
		t.Errorf("EdgesDropped = %d, want 1", stats.EdgesDropped)
	}
	if stats.ChildrenDropped != 1 {
		t.Errorf("ChildrenDropped = %d, want 1", stats.ChildrenDropped)
	}
	if len(out.Shape) != 1 || len(out.Shape[0].Children) != 2 {
		t.Fatalf("Normalize() shape = %+v", out.Shape)
	}
	if out.RunID != "r1" || len(out.Tasks) != 1 {
		t.Errorf("Normalize() lost run data: %+v", out)
	}
	if len(s.Shape[1].Children) != 3 {
		t.Error("Normalize() must not modify the receiver")
	}
}

func TestTaskByExternalID(t *testing.T) {
	s := &Snapshot{Tasks: []Task{{ID: "1", ExternalID: "a"}, {ID: "2", ExternalID: "a"}, {ID: "3"}}}

	task, ok := s.TaskByExternalID("a")
	if !ok || task.ID != "1" {
		t.Errorf("TaskByExternalID(a) = %v, %v; want first match", task, ok)
	}
	if _, ok := s.TaskByExternalID(""); ok {
		t.Error("TaskByExternalID(\"\") should not match tasks without external id")
	}
	if _, ok := s.TaskByExternalID("z"); ok {
		t.Error("TaskByExternalID(z) should not match")
	}
}

func TestQuerySnapshot(t *testing.T) {
	snap := &Snapshot{Tasks: []Task{{ID: "1"}}}

	tests := []struct {
		name  string
		q     Query
		ok    bool
		state string
	}{
		{"loading", Loading(), false, "loading"},
		{"failed", Failed(errors.New(errors.ErrCodeNetwork, "down")), false, "error"},
		{"empty", Query{}, false, "empty"},
		{"loading with stale data", Query{IsLoading: true, Data: snap}, false, "loading"},
		{"ready", Ready(snap), true, "ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.q.Snapshot()
			if ok != tt.ok {
				t.Errorf("Snapshot() ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != snap {
				t.Error("Snapshot() returned a different snapshot")
			}
			if s := tt.q.State(); s != tt.state {
				t.Errorf("State() = %q, want %q", s, tt.state)
			}
		})
	}
}
