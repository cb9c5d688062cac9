package run

import (
	"slices"
	"time"

	"github.com/matzehuels/runshape/pkg/errors"
)

// Status is the execution state of a task. It is carried as display payload
// and never interpreted by the layering engine.
type Status string

// Task statuses.
const (
	StatusQueued    Status = "QUEUED"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusFailed    Status = "FAILED"
)

// Statuses lists every known status in lifecycle order.
var Statuses = []Status{StatusQueued, StatusRunning, StatusCompleted, StatusCancelled, StatusFailed}

// Valid reports whether s is a known status. The empty status is valid and
// means "unknown yet".
func (s Status) Valid() bool {
	return s == "" || slices.Contains(Statuses, s)
}

// Terminal reports whether the task has finished, successfully or not.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusFailed
}

// Task is a unit of execution within a workflow run.
type Task struct {
	ID          string     `json:"id" yaml:"id" toml:"id" bson:"id"`
	ExternalID  string     `json:"externalId,omitempty" yaml:"externalId,omitempty" toml:"externalId,omitempty" bson:"external_id,omitempty"`
	DisplayName string     `json:"displayName,omitempty" yaml:"displayName,omitempty" toml:"displayName,omitempty" bson:"display_name,omitempty"`
	Status      Status     `json:"status,omitempty" yaml:"status,omitempty" toml:"status,omitempty" bson:"status,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty" yaml:"createdAt,omitempty" toml:"createdAt,omitempty" bson:"created_at,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty" yaml:"startedAt,omitempty" toml:"startedAt,omitempty" bson:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty" yaml:"finishedAt,omitempty" toml:"finishedAt,omitempty" bson:"finished_at,omitempty"`
}

// Label returns the display name if set, otherwise the external id, otherwise the id.
func (t Task) Label() string {
	switch {
	case t.DisplayName != "":
		return t.DisplayName
	case t.ExternalID != "":
		return t.ExternalID
	default:
		return t.ID
	}
}

// Duration returns how long the task ran. Running tasks are measured up to now;
// tasks that never started report zero.
func (t Task) Duration(now time.Time) time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	end := now
	if t.FinishedAt != nil {
		end = *t.FinishedAt
	}
	if end.Before(*t.StartedAt) {
		return 0
	}
	return end.Sub(*t.StartedAt)
}

// ShapeEdge is one entry of a run's shape: a parent and the ordered children
// it directs execution to. Both sides use task external ids.
type ShapeEdge struct {
	Parent   string   `json:"parent" yaml:"parent" toml:"parent" bson:"parent"`
	Children []string `json:"children" yaml:"children" toml:"children" bson:"children"`
}

// Snapshot is the data payload of a ready query: the tasks of one workflow
// run and its shape.
type Snapshot struct {
	RunID string      `json:"runId,omitempty" yaml:"runId,omitempty" toml:"runId,omitempty" bson:"run_id,omitempty"`
	Tasks []Task      `json:"tasks" yaml:"tasks" toml:"tasks" bson:"tasks"`
	Shape []ShapeEdge `json:"shape" yaml:"shape" toml:"shape" bson:"shape"`

	// Normalized reports what decoding removed from the shape. It is not
	// part of the serialized snapshot.
	Normalized NormalizeStats `json:"-" yaml:"-" toml:"-" bson:"-"`
}

// HasDependencies reports whether any shape entry has at least one child.
// Runs without dependencies have nothing to show beyond a single column.
func (s *Snapshot) HasDependencies() bool {
	if s == nil {
		return false
	}
	return slices.ContainsFunc(s.Shape, func(e ShapeEdge) bool { return len(e.Children) > 0 })
}

// Empty reports whether there is nothing to lay out.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Tasks) == 0
}

// Validate checks the required fields of every record. It rejects tasks
// without an id, duplicate task ids and unknown statuses. Missing external
// ids and dangling shape references are tolerated.
func (s *Snapshot) Validate() error {
	if s == nil {
		return errors.New(errors.ErrCodeInvalidSnapshot, "snapshot is nil")
	}
	seen := make(map[string]bool, len(s.Tasks))
	for i, t := range s.Tasks {
		if t.ID == "" {
			return errors.New(errors.ErrCodeInvalidSnapshot, "task %d: id is required", i)
		}
		if seen[t.ID] {
			return errors.New(errors.ErrCodeInvalidSnapshot, "task %d: duplicate id %q", i, t.ID)
		}
		seen[t.ID] = true
		if !t.Status.Valid() {
			return errors.New(errors.ErrCodeInvalidSnapshot, "task %q: unknown status %q", t.ID, t.Status)
		}
	}
	return nil
}

// NormalizeStats reports what [Snapshot.Normalize] removed.
type NormalizeStats struct {
	EdgesDropped    int // shape entries without a parent
	ChildrenDropped int // empty child references
}

// Any reports whether anything was removed.
func (n NormalizeStats) Any() bool { return n.EdgesDropped > 0 || n.ChildrenDropped > 0 }

// Normalize returns a copy of the snapshot with shape entries that have no
// parent removed and empty child references stripped. Task order and edge
// order are preserved.
func (s Snapshot) Normalize() (Snapshot, NormalizeStats) {
	var stats NormalizeStats
	out := Snapshot{
		RunID: s.RunID,
		Tasks: slices.Clone(s.Tasks),
		Shape: make([]ShapeEdge, 0, len(s.Shape)),
	}
	for _, e := range s.Shape {
		if e.Parent == "" {
			stats.EdgesDropped++
			continue
		}
		children := make([]string, 0, len(e.Children))
		for _, c := range e.Children {
			if c == "" {
				stats.ChildrenDropped++
				continue
			}
			children = append(children, c)
		}
		out.Shape = append(out.Shape, ShapeEdge{Parent: e.Parent, Children: children})
	}
	return out, stats
}

// TaskByExternalID returns the first task with the given external id.
func (s *Snapshot) TaskByExternalID(id string) (Task, bool) {
	if s == nil || id == "" {
		return Task{}, false
	}
	for _, t := range s.Tasks {
		if t.ExternalID == id {
			return t, true
		}
	}
	return Task{}, false
}
