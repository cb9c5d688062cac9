package view

import (
	"strings"

	"github.com/matzehuels/runshape/pkg/errors"
	"github.com/matzehuels/runshape/pkg/run"
)

// Mode is a presentation of a run.
type Mode string

// View modes.
const (
	ModeGraph   Mode = "graph"
	ModeMinimap Mode = "minimap"
)

// DefaultMode is the mode used when none is requested.
const DefaultMode = ModeGraph

// Modes lists all modes.
var Modes = []Mode{ModeGraph, ModeMinimap}

// ParseMode parses a mode name, case-insensitively. The empty string yields
// [DefaultMode].
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultMode, nil
	case ModeGraph:
		return ModeGraph, nil
	case ModeMinimap:
		return ModeMinimap, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidViewMode, "unknown view mode %q (want graph or minimap)", s)
	}
}

// Other returns the mode a toggle switches to.
func (m Mode) Other() Mode {
	if m == ModeGraph {
		return ModeMinimap
	}
	return ModeGraph
}

// ToggleAvailable reports whether the run has dependencies to show, which is
// when switching to the graph makes a difference.
func ToggleAvailable(s *run.Snapshot) bool {
	return s.HasDependencies()
}

// Effective returns the mode actually shown for a requested mode.
func Effective(requested Mode, s *run.Snapshot) Mode {
	if requested == ModeGraph && ToggleAvailable(s) {
		return ModeGraph
	}
	return ModeMinimap
}
