// Package layering assigns workflow-run tasks to columns.
//
// # Overview
//
// [Assign] places every task in the column after the furthest of its
// parents, with roots in column 0:
//
//	rank(t) = max(rank(p) for placed parents p) + 1
//
// The input needs no particular order and may be partial. Assign relaxes
// the task list pass by pass, in task order, until nothing changes.
//
// # Parent States
//
// Each parent reference is in one of two states while a task waits:
//
//   - pending: the parent is a task that has not been placed yet. The task
//     is retried on the next pass.
//   - absent: the parent names no task at all. It is ignored for good and
//     contributes nothing to the rank.
//
// A task is placed once all its parents are placed or absent. Placements are
// visible to later tasks within the same pass, so a shape listed in
// topological order resolves in a single pass.
//
// # Termination
//
// A pass that places nothing ends the relaxation. The tasks left over are
// waiting on each other, which only happens with a cycle or with a task that
// depends on a cycle. They are reported in [Result.Unplaced] in task order,
// and [Result.Err] turns them into a GRAPH_NOT_LAYERABLE error for callers
// that want to fail. At most len(tasks)+1 passes run.
//
// Tasks without an external id are skipped and appear in neither bucket.
// When two tasks share an external id, the first one wins.
package layering
