// Package run defines the typed records runshape consumes: tasks, shape edges,
// run snapshots and the loading/error/ready query wrapper that data sources
// hand to the layering core.
//
// # Records
//
// A [Task] is a unit of execution. It has two identifier spaces: [Task.ID] is
// the stable identifier used for selection callbacks, and [Task.ExternalID] is
// the identifier that [ShapeEdge] values refer to. A task without an external
// id is accepted but never placed by the layering engine.
//
// A [ShapeEdge] lists the children a parent task directs execution to. Edges
// may reference tasks that are not (yet) part of the task list; consumers drop
// such dangling references silently.
//
// # Boundary Validation
//
// Snapshots arrive as loosely shaped JSON, YAML or TOML. [Decode] and
// [DecodeFile] parse them into typed records and call [Snapshot.Validate]
// exactly once, so code behind the boundary can trust the field types:
//
//	snap, err := run.DecodeFile("run.json")
//	if err != nil {
//	    return err // coded INVALID_SNAPSHOT / INVALID_FORMAT error
//	}
//
// # Queries
//
// Data sources are asynchronous. They report their state as a [Query]; the
// core treats anything but a ready query as "nothing to render":
//
//	snap, ok := q.Snapshot()
//	if !ok {
//	    return nil // loading, failed, or no data yet
//	}
package run
