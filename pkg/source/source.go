// Package source loads run snapshots from files, HTTP APIs and MongoDB.
//
// Every source reports a [run.Query]: loading, failed or ready. Consumers
// render nothing for the first two states, so a source never has to
// distinguish "not yet" from "never" for its callers.
//
// # Sources
//
//   - [File] reads a JSON, YAML or TOML snapshot from disk.
//   - [HTTP] fetches workflow-run details for one tenant and run.
//   - [Mongo] reads snapshots stored by [MongoStore].
//
// [Watcher] re-reads a [File] whenever it changes.
package source

import (
	"context"

	"github.com/matzehuels/runshape/pkg/run"
)

// Source produces the current state of one run.
type Source interface {
	Fetch(ctx context.Context) run.Query
}

// Func adapts a function to a [Source].
type Func func(ctx context.Context) run.Query

// Fetch calls f.
func (f Func) Fetch(ctx context.Context) run.Query { return f(ctx) }

// Static returns a source that always reports q.
func Static(q run.Query) Source {
	return Func(func(context.Context) run.Query { return q })
}
