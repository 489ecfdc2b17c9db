// Package layout keeps a block tree geometrically consistent while it is
// being edited.
//
// A [Coordinator] owns the mapping from blocks to surface nodes and
// applies every committed change in three passes: subtree widths are
// recomputed bottom-up, child positions top-down from the affected root,
// and connectors are rerouted for every repositioned child. Overflow
// correction runs last.
//
// # Widths and centering
//
// A block's ChildWidth is the packed width of its children's rows:
//
//	ChildWidth = Σ MaxWidth(child) + spacing.X·(n−1)
//
// Children are packed left to right in tree order and the row is centered
// on the parent. Every child's top edge sits spacing.Y below its parent's
// bottom edge.
//
// # Commits
//
// [Coordinator.Snap], [Coordinator.MoveRoot] and [Coordinator.Delete] work
// on a clone of the tree, validate it, and only then replace the live
// tree, so a structural error leaves the tree untouched. Surface failures
// after a commit are logged and skipped.
//
// # Dragged trees
//
// [Coordinator.Detach] removes a block and its subtree from the tree into
// a [DraggedTree]. Member nodes are regrouped under the dragged root's
// node so the whole subtree follows a single position update.
// [Coordinator.Rearrange] previews a new position without touching the
// tree; [Coordinator.Restore] puts the exact pre-gesture tree back.
package layout
