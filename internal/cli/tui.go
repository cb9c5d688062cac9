package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/runshape/pkg/graphlayout"
	"github.com/matzehuels/runshape/pkg/run"
	"github.com/matzehuels/runshape/pkg/view"
)

var (
	listDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	detailKeyStyle = lipgloss.NewStyle().Foreground(colorGray).Width(10)
)

// =============================================================================
// ViewModel - Interactive run browser
// =============================================================================

// buildFunc builds the view of the run for a mode.
type buildFunc func(mode view.Mode) (*view.View, error)

// ViewModel is the bubbletea model browsing a run's minimap or graph.
// Arrow keys move between columns and tasks, t toggles the mode when the run
// has dependencies, and enter selects the task under the cursor.
type ViewModel struct {
	Display *view.View
	Grid    [][]run.Task
	Col     int
	Row     int
	Err     error
	Clicked string

	build   buildFunc
	rankDir string
	now     func() time.Time
}

// NewViewModel creates a model showing v. build is used to switch modes.
func NewViewModel(v *view.View, build buildFunc, rankDir string) ViewModel {
	m := ViewModel{Display: v, build: build, rankDir: rankDir, now: time.Now}
	m.Grid = gridFor(v, rankDir)
	return m
}

// gridFor arranges the tasks of a view into navigable columns: the minimap
// columns, or graph nodes grouped by rank coordinate.
func gridFor(v *view.View, rankDir string) [][]run.Task {
	if v == nil {
		return nil
	}
	if v.Columns != nil {
		return v.Columns.Columns
	}
	if v.Graph == nil {
		return nil
	}

	rank := func(n graphlayout.Node) float64 { return n.Position.X }
	order := func(n graphlayout.Node) float64 { return n.Position.Y }
	if rankDir == graphlayout.RankDirTB {
		rank, order = order, rank
	}

	nodes := slices.Clone(v.Graph.Nodes)
	slices.SortStableFunc(nodes, func(a, b graphlayout.Node) int {
		if c := cmp.Compare(rank(a), rank(b)); c != 0 {
			return c
		}
		return cmp.Compare(order(a), order(b))
	})

	var grid [][]run.Task
	last := 0.0
	for i, n := range nodes {
		if i == 0 || rank(n) != last {
			grid = append(grid, nil)
			last = rank(n)
		}
		grid[len(grid)-1] = append(grid[len(grid)-1], n.Payload)
	}
	return grid
}

func (m ViewModel) Init() tea.Cmd {
	return nil
}

func (m ViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "left", "h":
		if m.Col > 0 {
			m.Col--
			m.Row = min(m.Row, len(m.Grid[m.Col])-1)
		}
	case "right", "l":
		if m.Col < len(m.Grid)-1 {
			m.Col++
			m.Row = min(m.Row, len(m.Grid[m.Col])-1)
		}
	case "up", "k":
		if m.Row > 0 {
			m.Row--
		}
	case "down", "j":
		if m.Col < len(m.Grid) && m.Row < len(m.Grid[m.Col])-1 {
			m.Row++
		}
	case "t":
		if m.Display == nil || !m.Display.ToggleAvailable || m.build == nil {
			return m, nil
		}
		v, err := m.build(m.Display.Mode.Other())
		if err != nil {
			m.Err = err
			return m, nil
		}
		m.Display, m.Err = v, nil
		m.Grid = gridFor(v, m.rankDir)
		m.Col, m.Row = 0, 0
	case "enter":
		if t, ok := m.Current(); ok {
			m.Clicked = t.ID
			m.Display.Click(t.ID)
			return m, tea.Quit
		}
	}
	return m, nil
}

// Current returns the task under the cursor.
func (m ViewModel) Current() (run.Task, bool) {
	if m.Col >= len(m.Grid) || m.Row < 0 || m.Row >= len(m.Grid[m.Col]) {
		return run.Task{}, false
	}
	return m.Grid[m.Col][m.Row], true
}

func (m ViewModel) View() string {
	var b strings.Builder

	title := "Run"
	if m.Display != nil && m.Display.RunID != "" {
		title = "Run " + m.Display.RunID
	}
	b.WriteString(StyleTitle.Render(title))
	if m.Display != nil {
		b.WriteString("  " + StyleHighlight.Render(string(m.Display.Mode)))
	}
	b.WriteString("\n")

	help := "←/→/↑/↓ navigate  ⏎ select  q quit"
	if m.Display != nil && m.Display.ToggleAvailable {
		help = "←/→/↑/↓ navigate  t toggle graph/minimap  ⏎ select  q quit"
	}
	b.WriteString(listDimStyle.Render(help))
	b.WriteString("\n\n")

	unplaced := 0
	if m.Display != nil && m.Display.Columns != nil {
		unplaced = len(m.Display.Columns.Unplaced)
	}

	switch {
	case len(m.Grid) > 0:
		selected := ""
		if t, ok := m.Current(); ok {
			selected = t.ID
		}
		b.WriteString(renderColumnBoxes(m.Grid, selected))
		b.WriteString("\n")
	case unplaced == 0 && m.Err == nil:
		b.WriteString(StyleDim.Render("Nothing to show yet."))
		b.WriteString("\n")
		return b.String()
	}

	if unplaced > 0 {
		b.WriteString(StyleWarning.Render(fmt.Sprintf("%d task(s) unplaced, waiting on a dependency cycle", unplaced)))
		b.WriteString("\n")
	}
	if m.Display != nil && m.Display.Graph != nil {
		b.WriteString(StyleDim.Render(fmt.Sprintf("%d nodes · %d edges · %.0f×%.0f pt · %s",
			len(m.Display.Graph.Nodes), len(m.Display.Graph.Edges), m.Display.Graph.Width, m.Display.Graph.Height, m.Display.Graph.Engine)))
		b.WriteString("\n")
	}

	if t, ok := m.Current(); ok {
		b.WriteString("\n")
		b.WriteString(m.details(t))
	}
	if m.Err != nil {
		b.WriteString("\n" + styleIconError.Render(iconError) + " " + m.Err.Error() + "\n")
	}
	return b.String()
}

func (m ViewModel) details(t run.Task) string {
	rows := [][2]string{
		{"id", t.ID},
		{"external", t.ExternalID},
		{"status", string(t.Status)},
	}
	if d := t.Duration(m.now()); d > 0 {
		rows = append(rows, [2]string{"duration", d.Round(time.Second).String()})
	}

	var b strings.Builder
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		b.WriteString(detailKeyStyle.Render(r[0]) + " " + StyleValue.Render(r[1]) + "\n")
	}
	return b.String()
}
