package layout

import (
	"slices"

	"github.com/matzehuels/stackflow/pkg/blocktree"
	"github.com/matzehuels/stackflow/pkg/geometry"
	"github.com/matzehuels/stackflow/pkg/surface"
)

// Moved is something that can be snapped onto a target block: a
// [NewBlock] or a [*DraggedTree].
type Moved interface {
	movedRoot() int
}

// NewBlock is a block that is not yet part of the tree, together with the
// surface node already created for it.
type NewBlock struct {
	Block blocktree.Block
	Node  surface.NodeRef
}

func (n NewBlock) movedRoot() int { return n.Block.ID }

// DraggedTree holds blocks detached from the tree for the length of a
// drag. Blocks[0] is the dragged root; the rest are its descendants in
// breadth-first order. Positions are canvas coordinates.
type DraggedTree struct {
	Blocks []blocktree.Block

	parent   int
	snapshot []blocktree.Block
	offset   float64 // overflow shift reverted by Detach
}

func (d *DraggedTree) movedRoot() int { return d.Blocks[0].ID }

// Root returns the dragged root block.
func (d *DraggedTree) Root() blocktree.Block { return d.Blocks[0] }

// Len returns the number of detached blocks.
func (d *DraggedTree) Len() int { return len(d.Blocks) }

// WasRoot reports whether the dragged block was a root before the drag.
func (d *DraggedTree) WasRoot() bool { return d.parent == blocktree.NoParent }

// Parent returns the dragged block's parent before the drag.
func (d *DraggedTree) Parent() int { return d.parent }

// Box returns the dragged root's rectangle.
func (d *DraggedTree) Box() geometry.Rect { return d.Blocks[0].Box() }

// Contains reports whether id is one of the detached blocks.
func (d *DraggedTree) Contains(id int) bool {
	return slices.ContainsFunc(d.Blocks, func(b blocktree.Block) bool { return b.ID == id })
}

func (d *DraggedTree) clone() []blocktree.Block {
	out := make([]blocktree.Block, len(d.Blocks))
	for i, b := range d.Blocks {
		out[i] = b.Clone()
	}
	return out
}

// subtree builds a standalone tree from the detached blocks with the
// dragged root as its only root.
func (d *DraggedTree) subtree() (*blocktree.Tree, error) {
	blocks := d.clone()
	blocks[0].Parent = blocktree.NoParent
	t := blocktree.New()
	if err := t.ReplaceAll(blocks); err != nil {
		return nil, err
	}
	return t, nil
}
