package cli

import (
	"context"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/runshape/pkg/graphlayout"
	"github.com/matzehuels/runshape/pkg/run"
	"github.com/matzehuels/runshape/pkg/view"
)

func diamondSnapshot(t *testing.T) *run.Snapshot {
	t.Helper()
	snap, err := run.Unmarshal([]byte(diamondJSON))
	if err != nil {
		t.Fatal(err)
	}
	return snap
}

func testBuild(t *testing.T, snap *run.Snapshot, onClick func(string)) buildFunc {
	t.Helper()
	return func(mode view.Mode) (*view.View, error) {
		return view.Build(context.Background(), run.Ready(snap), view.Request{
			Mode:    mode,
			Layout:  graphlayout.Options{Engine: graphlayout.EngineLayered},
			OnClick: onClick,
		})
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m ViewModel, keys ...string) (ViewModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(ViewModel)
	}
	return m, cmd
}

func gridIDs(grid [][]run.Task) [][]string {
	out := make([][]string, len(grid))
	for i, col := range grid {
		out[i] = ids(col)
	}
	return out
}

func TestGridForMinimap(t *testing.T) {
	build := testBuild(t, diamondSnapshot(t), nil)
	v, err := build(view.ModeMinimap)
	if err != nil {
		t.Fatal(err)
	}

	got := gridIDs(gridFor(v, graphlayout.RankDirLR))
	want := [][]string{{"A"}, {"B", "C"}, {"D"}}
	if !slices.EqualFunc(got, want, slices.Equal[[]string]) {
		t.Errorf("grid = %v, want %v", got, want)
	}
}

func TestGridForGraphGroupsRanks(t *testing.T) {
	build := testBuild(t, diamondSnapshot(t), nil)
	v, err := build(view.ModeGraph)
	if err != nil {
		t.Fatal(err)
	}
	if v.Graph == nil {
		t.Fatal("expected a graph view")
	}

	grid := gridIDs(gridFor(v, graphlayout.RankDirLR))
	if len(grid) != 3 {
		t.Fatalf("grid has %d ranks, want 3: %v", len(grid), grid)
	}
	if !slices.Equal(grid[0], []string{"A"}) || !slices.Equal(grid[2], []string{"D"}) {
		t.Errorf("grid = %v", grid)
	}
	middle := slices.Sorted(slices.Values(grid[1]))
	if !slices.Equal(middle, []string{"B", "C"}) {
		t.Errorf("middle rank = %v, want B and C", grid[1])
	}
}

func TestGridForNil(t *testing.T) {
	if grid := gridFor(nil, graphlayout.RankDirLR); grid != nil {
		t.Errorf("gridFor(nil) = %v", grid)
	}
}

func TestViewModelNavigation(t *testing.T) {
	build := testBuild(t, diamondSnapshot(t), nil)
	v, _ := build(view.ModeMinimap)
	m := NewViewModel(v, build, graphlayout.RankDirLR)

	if cur, _ := m.Current(); cur.ExternalID != "A" {
		t.Fatalf("initial task = %s, want A", cur.ExternalID)
	}

	m, _ = press(m, "right", "down")
	if cur, _ := m.Current(); cur.ExternalID != "C" {
		t.Errorf("after right, down: %s, want C", cur.ExternalID)
	}

	// Moving into a shorter column clamps the row.
	m, _ = press(m, "l")
	if cur, _ := m.Current(); cur.ExternalID != "D" || m.Row != 0 {
		t.Errorf("after l: %s row %d, want D row 0", cur.ExternalID, m.Row)
	}

	m, _ = press(m, "l", "j", "j")
	if cur, _ := m.Current(); cur.ExternalID != "D" {
		t.Errorf("cursor left the grid: %s", cur.ExternalID)
	}

	m, _ = press(m, "h", "k")
	if cur, _ := m.Current(); cur.ExternalID != "B" {
		t.Errorf("after h, k: %s, want B", cur.ExternalID)
	}
}

func TestViewModelToggle(t *testing.T) {
	build := testBuild(t, diamondSnapshot(t), nil)
	v, _ := build(view.ModeMinimap)
	m := NewViewModel(v, build, graphlayout.RankDirLR)

	m, _ = press(m, "right", "t")
	if m.Display.Mode != view.ModeGraph || m.Display.Graph == nil {
		t.Fatalf("toggle did not switch to graph: %+v", m.Display)
	}
	if m.Col != 0 || m.Row != 0 {
		t.Errorf("toggle should reset the cursor, got %d,%d", m.Col, m.Row)
	}

	m, _ = press(m, "t")
	if m.Display.Mode != view.ModeMinimap {
		t.Errorf("second toggle mode = %s, want minimap", m.Display.Mode)
	}
}

func TestViewModelToggleUnavailable(t *testing.T) {
	snap := &run.Snapshot{Tasks: []run.Task{{ID: "1", ExternalID: "solo"}}}
	build := testBuild(t, snap, nil)
	v, _ := build(view.ModeGraph)
	if v.Mode != view.ModeMinimap || v.ToggleAvailable {
		t.Fatalf("run without dependencies should fall back to a fixed minimap: %+v", v)
	}

	m := NewViewModel(v, build, graphlayout.RankDirLR)
	m, _ = press(m, "t")
	if m.Display.Mode != view.ModeMinimap {
		t.Errorf("toggle switched a run without dependencies to %s", m.Display.Mode)
	}
}

func TestViewModelEnterClicks(t *testing.T) {
	var clicked []string
	build := testBuild(t, diamondSnapshot(t), func(id string) { clicked = append(clicked, id) })
	v, _ := build(view.ModeMinimap)
	m := NewViewModel(v, build, graphlayout.RankDirLR)

	m, cmd := press(m, "right", "enter")
	if m.Clicked != "2" {
		t.Errorf("Clicked = %q, want task id 2", m.Clicked)
	}
	if !slices.Equal(clicked, []string{"2"}) {
		t.Errorf("OnClick calls = %v, want [2]", clicked)
	}
	if cmd == nil {
		t.Fatal("enter should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("enter should return tea.Quit")
	}
}

func TestViewModelRender(t *testing.T) {
	build := testBuild(t, diamondSnapshot(t), nil)
	v, _ := build(view.ModeMinimap)
	m := NewViewModel(v, build, graphlayout.RankDirLR)

	out := m.View()
	for _, want := range []string{"Run run-1", "minimap", "t toggle", "Column 1", "external"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
}

func TestViewModelEmpty(t *testing.T) {
	m := NewViewModel(nil, nil, graphlayout.RankDirLR)
	if _, ok := m.Current(); ok {
		t.Error("empty model should have no current task")
	}
	if !strings.Contains(m.View(), "Nothing to show yet.") {
		t.Error("empty model should say there is nothing to show")
	}
	m, cmd := press(m, "enter", "t", "j")
	if cmd != nil || m.Clicked != "" {
		t.Error("keys on an empty model should do nothing")
	}
}

func TestViewModelAllUnplaced(t *testing.T) {
	snap, err := run.Unmarshal([]byte(`{
	  "runId": "run-3",
	  "tasks": [
	    {"id": "1", "externalId": "A"},
	    {"id": "2", "externalId": "B"}
	  ],
	  "shape": [
	    {"parent": "A", "children": ["B"]},
	    {"parent": "B", "children": ["A"]}
	  ]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	build := testBuild(t, snap, nil)
	v, err := build(view.ModeMinimap)
	if err != nil {
		t.Fatal(err)
	}
	m := NewViewModel(v, build, graphlayout.RankDirLR)

	out := m.View()
	if !strings.Contains(out, "2 task(s) unplaced") {
		t.Errorf("render should warn about unplaced tasks:\n%s", out)
	}
	if strings.Contains(out, "Nothing to show yet.") {
		t.Errorf("render should not claim there is nothing to show:\n%s", out)
	}
}
