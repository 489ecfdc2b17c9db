package layout

import (
	"fmt"

	"github.com/matzehuels/stackflow/pkg/blocktree"
	"github.com/matzehuels/stackflow/pkg/geometry"
	"github.com/matzehuels/stackflow/pkg/observability"
	"github.com/matzehuels/stackflow/pkg/surface"
)

// Detach takes block id and its subtree out of the tree for dragging. The
// remaining tree is laid out again without them.
func (c *Coordinator) Detach(id int) (*DraggedTree, error) {
	if c.dragged != nil {
		return nil, ErrDragActive
	}
	b, err := c.tree.Find(id)
	if err != nil {
		return nil, err
	}
	dt := &DraggedTree{parent: b.Parent, snapshot: c.tree.Snapshot()}
	dt.Blocks = append(dt.Blocks, b.Clone())
	for _, d := range c.tree.Descendants(id) {
		dt.Blocks = append(dt.Blocks, d.Clone())
	}

	next := c.tree.Clone()
	for i := len(dt.Blocks) - 1; i >= 0; i-- {
		if err := next.Remove(dt.Blocks[i].ID); err != nil {
			return nil, err
		}
	}
	root := blocktree.NoParent
	if !dt.WasRoot() {
		if err := propagate(next, dt.parent, c.spacing.X); err != nil {
			return nil, err
		}
		r, err := next.RootOf(dt.parent)
		if err != nil {
			return nil, err
		}
		root = r.ID
		place(next, root, c.spacing, map[int]bool{})
	}
	if c.offset != 0 {
		for _, nb := range next.Blocks() {
			nb.X -= c.offset
		}
	}
	if err := c.tree.ReplaceAll(next.Snapshot()); err != nil {
		return nil, err
	}

	c.dragged = dt
	c.dropArrow(id)
	c.group(dt)
	switch {
	case c.offset != 0:
		dt.offset, c.offset = c.offset, 0
		c.sync(c.tree.IDs())
	case root != blocktree.NoParent:
		c.syncTree(root)
	}
	observability.Layout().OnDetach(id, dt.Len())
	return dt, nil
}

// Rearrange previews dt with its root at r. Only the dragged blocks and
// their nodes move; the tree is not touched.
func (c *Coordinator) Rearrange(dt *DraggedTree, r geometry.Rect) error {
	if dt == nil || dt != c.dragged {
		return ErrNotDragging
	}
	rootID := dt.Blocks[0].ID
	sub, err := dt.subtree()
	if err != nil {
		return fmt.Errorf("rearrange block %d: %w", rootID, err)
	}
	rb, err := sub.Find(rootID)
	if err != nil {
		return err
	}
	rb.X, rb.Y = r.CenterX(), r.CenterY()
	arrange(sub, rootID, c.spacing)
	for i := range dt.Blocks {
		b, err := sub.Find(dt.Blocks[i].ID)
		if err != nil {
			continue
		}
		dt.Blocks[i].X, dt.Blocks[i].Y, dt.Blocks[i].ChildWidth = b.X, b.Y, b.ChildWidth
	}
	c.drawDragged(dt)
	return nil
}

// Restore puts back the exact tree that existed before dt was detached.
func (c *Coordinator) Restore(dt *DraggedTree) error {
	if dt == nil || dt != c.dragged {
		return ErrNotDragging
	}
	if err := c.tree.ReplaceAll(dt.snapshot); err != nil {
		return err
	}
	c.dragged = nil
	c.offset = dt.offset
	c.ungroup(dt)
	c.HideIndicator()
	c.syncAll()
	observability.Layout().OnRestore(dt.Blocks[0].ID)
	return nil
}

// MoveRoot commits a dragged root, with its subtree, at r as a root again.
func (c *Coordinator) MoveRoot(dt *DraggedTree, r geometry.Rect) error {
	if dt == nil || dt != c.dragged {
		return ErrNotDragging
	}
	if !dt.WasRoot() {
		return ErrNotRoot
	}
	if err := c.Rearrange(dt, r); err != nil {
		return err
	}
	blocks := dt.clone()
	blocks[0].Parent = blocktree.NoParent
	next := c.tree.Clone()
	if err := next.AppendAll(blocks); err != nil {
		return err
	}
	arrange(next, blocks[0].ID, c.spacing)
	if err := c.tree.ReplaceAll(next.Snapshot()); err != nil {
		return err
	}
	c.dragged = nil
	c.ungroup(dt)
	c.HideIndicator()
	c.syncTree(blocks[0].ID)
	c.CheckOffset()
	observability.Layout().OnSnap(blocks[0].ID, blocktree.NoParent, len(blocks))
	return nil
}

// group moves member nodes and their connectors under the dragged root's
// node, in the root's local frame.
func (c *Coordinator) group(dt *DraggedTree) {
	rootRef, ok := c.nodes[dt.Blocks[0].ID]
	if !ok {
		c.fault("group", dt.Blocks[0].ID, ErrNoNode)
		return
	}
	for _, m := range dt.Blocks[1:] {
		if ref, ok := c.nodes[m.ID]; ok {
			if err := c.surf.AppendChild(rootRef, ref); err != nil {
				c.fault("append", m.ID, err)
			}
		}
		if a, ok := c.arrows[m.ID]; ok {
			if err := c.surf.AppendChild(rootRef, a.ref); err != nil {
				c.fault("append", m.ID, err)
			}
		}
	}
	c.drawDragged(dt)
}

// ungroup returns member nodes and connectors to the canvas.
func (c *Coordinator) ungroup(dt *DraggedTree) {
	for _, m := range dt.Blocks[1:] {
		if ref, ok := c.nodes[m.ID]; ok {
			if err := c.surf.AppendChild(surface.Canvas, ref); err != nil {
				c.fault("append", m.ID, err)
			}
		}
		if a, ok := c.arrows[m.ID]; ok {
			if err := c.surf.AppendChild(surface.Canvas, a.ref); err != nil {
				c.fault("append", m.ID, err)
			}
			if err := c.surf.ApplyStyle(a.ref, surface.Translate(0, 0)); err != nil {
				c.fault("style", m.ID, err)
			}
		}
	}
}

// drawDragged positions the dragged root in canvas space and every member
// relative to it.
func (c *Coordinator) drawDragged(dt *DraggedTree) {
	root := dt.Blocks[0]
	if ref, ok := c.nodes[root.ID]; ok {
		if err := c.surf.ApplyStyle(ref, surface.Place(root.Box())); err != nil {
			c.fault("style", root.ID, err)
		}
	}
	origin := geometry.Point{X: root.Left(), Y: root.Top()}
	byID := make(map[int]blocktree.Block, len(dt.Blocks))
	for _, b := range dt.Blocks {
		byID[b.ID] = b
	}
	for _, m := range dt.Blocks[1:] {
		if ref, ok := c.nodes[m.ID]; ok {
			local := m.Box().Translate(-origin.X, -origin.Y)
			if err := c.surf.ApplyStyle(ref, surface.Place(local)); err != nil {
				c.fault("style", m.ID, err)
			}
		}
		if p, ok := byID[m.Parent]; ok {
			c.syncArrow(p, m, geometry.Point{X: -origin.X, Y: -origin.Y})
		}
	}
}
