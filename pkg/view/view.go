package view

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/runshape/pkg/graphlayout"
	"github.com/matzehuels/runshape/pkg/layering"
	"github.com/matzehuels/runshape/pkg/observability"
	"github.com/matzehuels/runshape/pkg/relationship"
	"github.com/matzehuels/runshape/pkg/run"
)

// Request is what the caller wants shown.
type Request struct {
	Mode   Mode
	Layout graphlayout.Options
	// OnClick is called with a task id when the user selects a task. It is
	// handed back unchanged on the View.
	OnClick func(taskID string)
	Logger  *log.Logger
}

// Columns is the minimap presentation.
type Columns struct {
	Columns  [][]run.Task `json:"columns"`
	Unplaced []run.Task   `json:"unplaced"`
	Passes   int          `json:"passes"`
}

// View is a built presentation. Exactly one of Columns and Graph is set.
type View struct {
	RunID           string              `json:"runId,omitempty"`
	Mode            Mode                `json:"mode"`
	Requested       Mode                `json:"requested"`
	ToggleAvailable bool                `json:"toggleAvailable"`
	Columns         *Columns            `json:"minimap,omitempty"`
	Graph           *graphlayout.Layout `json:"graph,omitempty"`

	OnClick func(taskID string) `json:"-"`
}

// Click forwards a selection to OnClick, if set.
func (v *View) Click(taskID string) {
	if v != nil && v.OnClick != nil {
		v.OnClick(taskID)
	}
}

// Build builds the effective view of a query. It returns nil when the query
// has nothing to render.
func Build(ctx context.Context, q run.Query, req Request) (*View, error) {
	snap, ok := q.Snapshot()
	if !ok {
		return nil, nil
	}
	requested := req.Mode
	if requested == "" {
		requested = DefaultMode
	}

	v := &View{
		RunID:           snap.RunID,
		Mode:            Effective(requested, snap),
		Requested:       requested,
		ToggleAvailable: ToggleAvailable(snap),
		OnClick:         req.OnClick,
	}

	if v.Mode == ModeGraph {
		if req.Layout.Logger == nil {
			req.Layout.Logger = req.Logger
		}
		g, err := graphlayout.Build(ctx, snap.Tasks, snap.Shape, req.Layout)
		if err != nil {
			return nil, err
		}
		v.Graph = g
		return v, nil
	}

	cols := BuildColumns(ctx, snap, req.Logger)
	v.Columns = &cols
	return v, nil
}

// BuildColumns resolves relationships and assigns columns.
func BuildColumns(ctx context.Context, snap *run.Snapshot, logger *log.Logger) Columns {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	rels := relationship.Resolve(snap.Tasks, snap.Shape)
	observability.Layout().OnResolve(ctx, rels.Len(), rels.Edges())

	start := time.Now()
	res := layering.Assign(snap.Tasks, rels)
	observability.Layout().OnLayering(ctx, res.Placed(), len(res.Unplaced), res.Passes, time.Since(start))

	if !res.Layerable() {
		logger.Warn("tasks left unplaced", "count", len(res.Unplaced), "err", res.Err())
	}
	logger.Debug("column layering", "tasks", len(snap.Tasks), "columns", len(res.Columns), "passes", res.Passes)

	return Columns{Columns: res.Columns, Unplaced: res.Unplaced, Passes: res.Passes}
}
