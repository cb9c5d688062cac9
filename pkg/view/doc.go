// Package view selects and builds the presentation of a workflow run.
//
// A run is shown either as a compact minimap, its tasks grouped into
// layering columns, or as a full graph positioned by a layout engine. The
// caller passes the requested [Mode] explicitly; nothing here reads global
// state.
//
// # Effective Mode
//
// The graph is only worth showing when some task depends on another. The
// effective mode is [ModeGraph] when the graph was requested AND the shape
// has at least one entry with children; otherwise it is [ModeMinimap].
// [ToggleAvailable] reports whether switching modes would change anything,
// which is exactly the second condition.
//
// # Nothing To Render
//
// [Build] takes a [run.Query]. While the query is loading, failed or empty
// it returns a nil view and no error.
//
// # Memoization
//
// [Memo] caches built views in an LRU keyed by the hash of the snapshot and
// the options, so re-rendering an unchanged run skips layering and layout.
package view
