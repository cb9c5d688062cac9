// Package pkg provides the core libraries for runshape, which lays out the
// task graphs of workflow runs.
//
// # Overview
//
// A workflow run is a snapshot of tasks plus a "shape": for each parent task,
// the external ids of the tasks that depend on it. runshape turns a snapshot
// into one of two presentations:
//
//   - a minimap, where every task sits in a column strictly after all of its
//     parents, and tasks stuck on a dependency cycle are reported as unplaced
//   - a full graph, where every task is a fixed-size box positioned by a
//     layered layout engine, with parent → child edges
//
// # Architecture
//
// The data flow through runshape:
//
//	snapshot file / run-details API / MongoDB
//	         ↓
//	    [source] package (fetch a run as a [run.Query])
//	         ↓
//	    [relationship] package (task id → parents and children)
//	         ↓
//	    [layering] package (fixed-point column assignment)
//	    [graphlayout] package (Graphviz or built-in layered layout)
//	         ↓
//	    [view] package (graph or minimap, memoized)
//	         ↓
//	    CLI, terminal browser, or [server] JSON API
//
// # Quick Start
//
//	snap, _ := run.DecodeFile("run.json")
//
//	// Columns
//	rels := relationship.Resolve(snap.Tasks, snap.Shape)
//	res := layering.Assign(snap.Tasks, rels)
//	for i, ids := range res.ColumnIDs() {
//	    fmt.Println(i, ids)
//	}
//
//	// Full graph
//	l, _ := graphlayout.Build(ctx, snap.Tasks, snap.Shape, graphlayout.Options{})
//	for _, n := range l.Nodes {
//	    fmt.Println(n.ID, n.Position.X, n.Position.Y)
//	}
//
// # Main Packages
//
// ## Domain
//
// [run] - Snapshot, task and shape types, query states, and JSON, YAML and
// TOML codecs.
//
// [relationship] - Resolves the parent and child ids of every task from the
// shape.
//
// [layering] - Column assignment by repeated passes over the tasks.
//
// [dag] - Row-ordered DAG with crossing counting and barycentric crossing
// reduction, used by the layered engine.
//
// [graphlayout] - Full-graph layout with Graphviz or the built-in layered
// engine, plus DOT and SVG output.
//
// [view] - Chooses between graph and minimap and memoizes built views.
//
// ## Infrastructure
//
// [source] - Loads runs from files, the run-details HTTP API or MongoDB, and
// watches files for changes.
//
// [cache] - Response caches (file, Redis, null) with TTLs, key derivation
// and retry helpers.
//
// [config] - Layered configuration from defaults, a TOML file and RUNSHAPE_*
// environment variables.
//
// [server] - HTTP API serving columns, graphs and views.
//
// [observability] - Hooks for layout, cache and HTTP events, with a
// Prometheus implementation in observability/metrics.
//
// [errors] - Coded errors with user messages and HTTP status mapping.
//
// # Testing
//
// Run tests:
//
//	go test ./...                               # All tests
//	go test ./pkg/layering/...                  # Specific package
//	MONGO_URI=mongodb://localhost go test ./pkg/source/...
//	REDIS_ADDR=localhost:6379 go test ./pkg/cache/...
//
// [run]: https://pkg.go.dev/github.com/matzehuels/runshape/pkg/run
// [run.Query]: https://pkg.go.dev/github.com/matzehuels/runshape/pkg/run#Query
// [relationship]: https://pkg.go.dev/github.com/matzehuels/runshape/pkg/relationship
// [layering]: https://pkg.go.dev/github.com/matzehuels/runshape/pkg/layering
// [dag]: https://pkg.go.dev/github.com/matzehuels/runshape/pkg/dag
// [graphlayout]: https://pkg.go.dev/github.com/matzehuels/runshape/pkg/graphlayout
// [view]: https://pkg.go.dev/github.com/matzehuels/runshape/pkg/view
// [source]: https://pkg.go.dev/github.com/matzehuels/runshape/pkg/source
// [cache]: https://pkg.go.dev/github.com/matzehuels/runshape/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/runshape/pkg/config
// [server]: https://pkg.go.dev/github.com/matzehuels/runshape/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/runshape/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/runshape/pkg/errors
package pkg
