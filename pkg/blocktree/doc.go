// Package blocktree provides the authoritative data model of a flowchart:
// a forest of [Block] values linked by parent ids.
//
// # Overview
//
// A [Tree] indexes blocks by id and remembers insertion order, which is
// also the left-to-right order of siblings during layout. A block whose
// Parent is [NoParent] is a root; a tree may hold several roots.
//
// # Invariants
//
// A valid tree satisfies three structural invariants, checked by
// [Tree.Validate] and [ValidateBlocks]:
//
//   - ids are pairwise distinct ([ErrDuplicateID])
//   - every Parent is NoParent or the id of a block in the same set
//     ([ErrDanglingParent])
//   - following Parent from any block reaches NoParent within Len steps
//     ([ErrCyclicParent])
//
// Mutators reject violations before changing anything: [Tree.Add] refuses
// duplicate ids and the bulk operations [Tree.ReplaceAll] and
// [Tree.AppendAll] validate the resulting set first. [Tree.Remove] does
// not cascade; callers remove descendants before removing an interior
// block (see [Tree.Descendants]).
//
// # Id allocation
//
// [Tree.NextID] returns 0 for a fresh tree and otherwise one past the
// highest id the tree has ever held, so ids are never reused while the
// tree is alive. [Tree.Reset] starts a new lifetime.
//
// # Errors
//
// The sentinel errors are coded [errors.Error] values, so callers can match
// them with the standard library or by code:
//
//	if errors.Is(err, blocktree.ErrNotFound) { ... }
//	if apperrors.Is(err, apperrors.ErrCodeNotFound) { ... }
//
// [errors.Error]: github.com/matzehuels/stackflow/pkg/errors.Error
package blocktree
