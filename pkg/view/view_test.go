package view

import (
	"context"
	"testing"

	"github.com/matzehuels/runshape/pkg/errors"
	"github.com/matzehuels/runshape/pkg/graphlayout"
	"github.com/matzehuels/runshape/pkg/run"
)

func diamond() *run.Snapshot {
	return &run.Snapshot{
		RunID: "run-1",
		Tasks: []run.Task{
			{ID: "1", ExternalID: "A"},
			{ID: "2", ExternalID: "B"},
			{ID: "3", ExternalID: "C"},
			{ID: "4", ExternalID: "D"},
		},
		Shape: []run.ShapeEdge{
			{Parent: "A", Children: []string{"B", "C"}},
			{Parent: "B", Children: []string{"D"}},
			{Parent: "C", Children: []string{"D"}},
		},
	}
}

func flat() *run.Snapshot {
	return &run.Snapshot{
		Tasks: []run.Task{{ID: "1", ExternalID: "A"}, {ID: "2", ExternalID: "B"}},
		Shape: []run.ShapeEdge{{Parent: "A", Children: []string{}}, {Parent: "B"}},
	}
}

var layered = graphlayout.Options{Engine: graphlayout.EngineLayered}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", DefaultMode, false},
		{"graph", ModeGraph, false},
		{" Minimap ", ModeMinimap, false},
		{"tower", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v", tt.in, err)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidViewMode) {
			t.Errorf("ParseMode(%q) code = %v", tt.in, errors.GetCode(err))
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestModeOther(t *testing.T) {
	if ModeGraph.Other() != ModeMinimap || ModeMinimap.Other() != ModeGraph {
		t.Error("Other() should toggle between graph and minimap")
	}
}

func TestEffective(t *testing.T) {
	tests := []struct {
		name      string
		requested Mode
		snap      *run.Snapshot
		want      Mode
	}{
		{"graph with dependencies", ModeGraph, diamond(), ModeGraph},
		{"graph without dependencies", ModeGraph, flat(), ModeMinimap},
		{"minimap with dependencies", ModeMinimap, diamond(), ModeMinimap},
		{"graph with nil snapshot", ModeGraph, nil, ModeMinimap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Effective(tt.requested, tt.snap); got != tt.want {
				t.Errorf("Effective() = %q, want %q", got, tt.want)
			}
		})
	}
	if !ToggleAvailable(diamond()) || ToggleAvailable(flat()) {
		t.Error("ToggleAvailable should follow shape children")
	}
}

func TestBuildNothingToRender(t *testing.T) {
	ctx := context.Background()
	for name, q := range map[string]run.Query{
		"loading": run.Loading(),
		"error":   run.Failed(errors.New(errors.ErrCodeNetwork, "down")),
		"empty":   {},
	} {
		t.Run(name, func(t *testing.T) {
			v, err := Build(ctx, q, Request{Mode: ModeGraph})
			if v != nil || err != nil {
				t.Errorf("Build() = %v, %v; want nil, nil", v, err)
			}
		})
	}
}

func TestBuildMinimap(t *testing.T) {
	v, err := Build(context.Background(), run.Ready(diamond()), Request{Mode: ModeMinimap})
	if err != nil {
		t.Fatal(err)
	}
	if v.Mode != ModeMinimap || v.Graph != nil || v.Columns == nil {
		t.Fatalf("view = %+v, want minimap", v)
	}
	if len(v.Columns.Columns) != 3 || len(v.Columns.Columns[1]) != 2 {
		t.Errorf("Columns = %+v", v.Columns.Columns)
	}
	if !v.ToggleAvailable || v.RunID != "run-1" {
		t.Errorf("ToggleAvailable = %v, RunID = %q", v.ToggleAvailable, v.RunID)
	}
}

func TestBuildGraph(t *testing.T) {
	v, err := Build(context.Background(), run.Ready(diamond()), Request{Mode: ModeGraph, Layout: layered})
	if err != nil {
		t.Fatal(err)
	}
	if v.Mode != ModeGraph || v.Graph == nil || v.Columns != nil {
		t.Fatalf("view = %+v, want graph", v)
	}
	if len(v.Graph.Nodes) != 4 || len(v.Graph.Edges) != 4 {
		t.Errorf("graph has %d nodes, %d edges", len(v.Graph.Nodes), len(v.Graph.Edges))
	}
}

func TestBuildGraphFallsBackToMinimap(t *testing.T) {
	v, err := Build(context.Background(), run.Ready(flat()), Request{Mode: ModeGraph, Layout: layered})
	if err != nil {
		t.Fatal(err)
	}
	if v.Mode != ModeMinimap || v.Requested != ModeGraph || v.ToggleAvailable {
		t.Errorf("view = %+v, want minimap fallback", v)
	}
}

func TestBuildCycleReportsUnplaced(t *testing.T) {
	snap := &run.Snapshot{
		Tasks: []run.Task{{ID: "1", ExternalID: "A"}, {ID: "2", ExternalID: "B"}},
		Shape: []run.ShapeEdge{{Parent: "A", Children: []string{"B"}}, {Parent: "B", Children: []string{"A"}}},
	}
	v, err := Build(context.Background(), run.Ready(snap), Request{Mode: ModeMinimap})
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Columns.Unplaced) != 2 || len(v.Columns.Columns) != 0 {
		t.Errorf("Columns = %+v", v.Columns)
	}
}

func TestOnClickPassthrough(t *testing.T) {
	var clicked string
	v, _ := Build(context.Background(), run.Ready(diamond()), Request{
		Mode:    ModeMinimap,
		OnClick: func(id string) { clicked = id },
	})
	v.Click("3")
	if clicked != "3" {
		t.Errorf("OnClick got %q, want 3", clicked)
	}

	var nilView *View
	nilView.Click("x")
}
