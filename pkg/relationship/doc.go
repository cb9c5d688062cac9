// Package relationship derives per-task adjacency from a run's shape.
//
// A run's shape is an unordered list of parent entries, each naming the
// children it directs execution to. [Resolve] turns that list into a
// symmetric view: for every task external id, its children and its parents.
//
// # Rules
//
//   - Children of a task come from the FIRST shape entry whose parent is the
//     task. Later entries for the same parent are ignored.
//   - Parents of a task are the parents of every entry listing it as a child,
//     in shape order and without duplicates.
//   - References to ids that are not tasks are kept. Deciding what they mean
//     is the layering engine's job.
//   - Tasks without an external id have no relationships.
//
// Resolve indexes the shape once, so the cost is linear in tasks plus edges.
// The result is derived fresh on every call and never cached here.
package relationship
