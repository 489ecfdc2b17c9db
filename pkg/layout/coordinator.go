package layout

import (
	"maps"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackflow/pkg/blocktree"
	"github.com/matzehuels/stackflow/pkg/connector"
	apperrors "github.com/matzehuels/stackflow/pkg/errors"
	"github.com/matzehuels/stackflow/pkg/geometry"
	"github.com/matzehuels/stackflow/pkg/observability"
	"github.com/matzehuels/stackflow/pkg/surface"
)

var (
	// ErrNoNode is logged when a block has no surface node to update.
	ErrNoNode = apperrors.New(apperrors.ErrCodeNotFound, "block has no surface node")

	// ErrNotDragging is returned when a dragged tree is not the active one.
	ErrNotDragging = apperrors.New(apperrors.ErrCodeInvalidState, "no such drag in progress")

	// ErrDragActive is returned by Detach while another drag is active.
	ErrDragActive = apperrors.New(apperrors.ErrCodeInvalidState, "a drag is already in progress")

	// ErrNotEmpty is returned by PlaceFirst on a non-empty tree.
	ErrNotEmpty = apperrors.New(apperrors.ErrCodeInvalidState, "chart already has blocks")

	// ErrNotRoot is returned by MoveRoot for a dragged non-root block.
	ErrNotRoot = apperrors.New(apperrors.ErrCodeInvalidState, "only a root block can be moved freely")
)

// Options configures a Coordinator.
type Options struct {
	Spacing  geometry.Spacing
	Viewport Viewport
	Logger   *log.Logger
}

type arrow struct {
	ref  surface.NodeRef
	path connector.Path
}

// Coordinator lays out a block tree on a surface.
type Coordinator struct {
	tree      *blocktree.Tree
	surf      surface.Surface
	spacing   geometry.Spacing
	view      Viewport
	logger    *log.Logger
	nodes     map[int]surface.NodeRef
	arrows    map[int]*arrow // keyed by child id
	indicator surface.NodeRef
	dragged   *DraggedTree
	offset    float64 // overflow shift applied since the last drag
}

// New returns a coordinator for tree drawing on surf. A zero Viewport is
// replaced by [DefaultViewport] and a nil Logger by log.Default().
func New(tree *blocktree.Tree, surf surface.Surface, opts Options) *Coordinator {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Viewport == (Viewport{}) {
		opts.Viewport = DefaultViewport()
	}
	return &Coordinator{
		tree:    tree,
		surf:    surf,
		spacing: opts.Spacing,
		view:    opts.Viewport,
		logger:  opts.Logger,
		nodes:   make(map[int]surface.NodeRef),
		arrows:  make(map[int]*arrow),
	}
}

// Tree returns the committed tree.
func (c *Coordinator) Tree() *blocktree.Tree { return c.tree }

// Spacing returns the layout spacing.
func (c *Coordinator) Spacing() geometry.Spacing { return c.spacing }

// Viewport returns the viewport used for overflow correction.
func (c *Coordinator) Viewport() Viewport { return c.view }

// SetViewport replaces the viewport. It takes effect on the next layout.
func (c *Coordinator) SetViewport(v Viewport) { c.view = v }

// Node returns the surface node of a block.
func (c *Coordinator) Node(id int) (surface.NodeRef, bool) {
	ref, ok := c.nodes[id]
	return ref, ok
}

// Dragged returns the active dragged tree, or nil.
func (c *Coordinator) Dragged() *DraggedTree { return c.dragged }

// Connectors returns the routed connectors of the committed tree ordered by
// child id.
func (c *Coordinator) Connectors() []connector.Path {
	var out []connector.Path
	for _, id := range slices.Sorted(maps.Keys(c.arrows)) {
		if c.tree.Has(id) {
			out = append(out, c.arrows[id].path)
		}
	}
	return out
}

// InDropRegion reports whether r's center lies in the first-block drop
// region.
func (c *Coordinator) InDropRegion(r geometry.Rect) bool {
	return c.view.Drop.Contains(r.Center())
}

// SnapTarget returns the committed block whose snap zone holds the anchor
// of a block dragged to r.
func (c *Coordinator) SnapTarget(r geometry.Rect) (int, bool) {
	blocks := c.tree.Blocks()
	cands := make([]geometry.Candidate, len(blocks))
	for i, b := range blocks {
		cands[i] = geometry.Candidate{ID: b.ID, Box: b.Box()}
	}
	return geometry.NearestSnapTarget(geometry.Anchor(r), cands, c.spacing)
}

// =============================================================================
// Commits
// =============================================================================

// Snap links moved under target and lays out target's whole tree.
// Nothing is committed if target is missing or the result is not a valid
// tree.
func (c *Coordinator) Snap(m Moved, target int) error {
	if _, err := c.tree.Find(target); err != nil {
		return err
	}

	var moved []blocktree.Block
	switch m := m.(type) {
	case NewBlock:
		b := m.Block.Clone()
		b.Parent, b.ChildWidth = target, 0
		moved = []blocktree.Block{b}
	case *DraggedTree:
		if m == nil || m != c.dragged {
			return ErrNotDragging
		}
		moved = m.clone()
		moved[0].Parent = target
	default:
		return apperrors.New(apperrors.ErrCodeUnsupported, "cannot snap %T", m)
	}

	next := c.tree.Clone()
	if err := next.AppendAll(moved); err != nil {
		return err
	}
	widths(next, moved[0].ID, c.spacing.X, map[int]bool{})
	if err := propagate(next, target, c.spacing.X); err != nil {
		return err
	}
	root, err := next.RootOf(target)
	if err != nil {
		return err
	}
	place(next, root.ID, c.spacing, map[int]bool{})
	if err := c.tree.ReplaceAll(next.Snapshot()); err != nil {
		return err
	}

	switch m := m.(type) {
	case NewBlock:
		c.attach(m.Block.ID, m.Node)
	case *DraggedTree:
		c.ungroup(m)
		c.dragged = nil
	}
	c.HideIndicator()
	c.syncTree(root.ID)
	c.CheckOffset()
	observability.Layout().OnSnap(moved[0].ID, target, len(moved))
	return nil
}

// PlaceFirst adds the first block of an empty chart as a root at its
// current position.
func (c *Coordinator) PlaceFirst(nb NewBlock) error {
	if c.tree.Len() != 0 {
		return ErrNotEmpty
	}
	b := nb.Block.Clone()
	b.Parent, b.ChildWidth = blocktree.NoParent, 0
	if err := c.tree.Add(b); err != nil {
		return err
	}
	c.attach(b.ID, nb.Node)
	c.HideIndicator()
	c.syncTree(b.ID)
	c.CheckOffset()
	observability.Layout().OnSnap(b.ID, blocktree.NoParent, 1)
	return nil
}

// Delete removes a block and all of its descendants, then lays out what
// remains of its tree.
func (c *Coordinator) Delete(id int) error {
	b, err := c.tree.Find(id)
	if err != nil {
		return err
	}
	doomed := append([]*blocktree.Block{b}, c.tree.Descendants(id)...)
	parent := b.Parent

	next := c.tree.Clone()
	for i := len(doomed) - 1; i >= 0; i-- {
		if err := next.Remove(doomed[i].ID); err != nil {
			return err
		}
	}
	root := blocktree.NoParent
	if parent != blocktree.NoParent {
		if err := propagate(next, parent, c.spacing.X); err != nil {
			return err
		}
		r, err := next.RootOf(parent)
		if err != nil {
			return err
		}
		root = r.ID
		place(next, root, c.spacing, map[int]bool{})
	}

	ids := make([]int, len(doomed))
	for i, d := range doomed {
		ids[i] = d.ID
	}
	if err := c.tree.ReplaceAll(next.Snapshot()); err != nil {
		return err
	}
	for _, d := range ids {
		c.dropArrow(d)
		c.dropNode(d)
	}
	if root != blocktree.NoParent {
		c.syncTree(root)
	}
	c.CheckOffset()
	return nil
}

// Load replaces the chart with blocks and runs a full layout. The set is
// validated first; on error nothing changes. Blocks without a size are
// measured after their node is created.
func (c *Coordinator) Load(blocks []blocktree.Block) error {
	if err := blocktree.ValidateBlocks(blocks); err != nil {
		return err
	}
	c.Clear()
	if err := c.tree.ReplaceAll(blocks); err != nil {
		return err
	}
	for _, b := range c.tree.Blocks() {
		ref, err := c.surf.CreateNode(surface.Markup{
			Class:   surface.ClassBlock,
			BlockID: b.ID,
			Width:   b.Width,
			Height:  b.Height,
			Content: b.Label(),
		})
		if err != nil {
			c.fault("create", b.ID, err)
			continue
		}
		if b.Width == 0 || b.Height == 0 {
			if r, err := c.surf.Measure(ref); err == nil {
				b.Width, b.Height = r.Width, r.Height
			}
		}
		c.attach(b.ID, ref)
	}
	c.Relayout()
	return nil
}

// Clear removes every block, connector and indicator and resets the tree.
func (c *Coordinator) Clear() {
	for _, a := range c.arrows {
		c.remove(a.ref)
	}
	for _, ref := range c.nodes {
		c.remove(ref)
	}
	if c.indicator != "" {
		c.remove(c.indicator)
		c.indicator = ""
	}
	c.nodes = make(map[int]surface.NodeRef)
	c.arrows = make(map[int]*arrow)
	c.dragged = nil
	c.offset = 0
	c.tree.Reset()
}

func (c *Coordinator) remove(ref surface.NodeRef) {
	if err := c.surf.RemoveNode(ref); err != nil {
		c.logger.Debug("node already gone", "ref", ref, "err", err)
	}
}

// Relayout recomputes widths and positions of every tree from its root
// and redraws all blocks and connectors.
func (c *Coordinator) Relayout() {
	start := time.Now()
	for _, r := range c.tree.Roots() {
		arrange(c.tree, r.ID, c.spacing)
	}
	c.syncAll()
	c.CheckOffset()
	observability.Layout().OnRelayout(c.tree.Len(), time.Since(start))
}

// CheckOffset shifts every committed block right when the leftmost one
// starts left of the visible area. Blocks of an active drag are exempt.
// The shift is reverted when the next existing block is detached, so a
// chart only stays shifted while something still overflows.
func (c *Coordinator) CheckOffset() (OverflowEvent, bool) {
	blocks := c.tree.Blocks()
	rects := make([]geometry.Rect, len(blocks))
	for i, b := range blocks {
		rects[i] = b.Box()
	}
	minLeft, ok := geometry.MinLeft(rects)
	if !ok {
		return OverflowEvent{}, false
	}
	shift, ok := geometry.OverflowShift(minLeft, c.view.VisibleLeft, c.view.Margin)
	if !ok {
		return OverflowEvent{}, false
	}
	for _, b := range blocks {
		b.X += shift
	}
	c.offset += shift
	c.sync(c.tree.IDs())
	observability.Layout().OnOverflow(shift)
	return OverflowEvent{Shift: shift, MinLeft: minLeft, VisibleLeft: c.view.VisibleLeft}, true
}

// =============================================================================
// Drag indicator
// =============================================================================

// ShowIndicator marks target as the block a release would snap to.
func (c *Coordinator) ShowIndicator(target int) {
	b, err := c.tree.Find(target)
	if err != nil {
		c.HideIndicator()
		return
	}
	if c.indicator == "" {
		ref, err := c.surf.CreateNode(surface.Markup{Class: surface.ClassIndicator, BlockID: target, Width: 10, Height: 10})
		if err != nil {
			c.fault("create", target, err)
			return
		}
		if err := c.surf.AppendChild(surface.Canvas, ref); err != nil {
			c.fault("append", target, err)
		}
		c.indicator = ref
	}
	r := geometry.Rect{Left: b.X - 5, Top: b.Bottom(), Width: 10, Height: 10}
	if err := c.surf.ApplyStyle(c.indicator, surface.Place(r)); err != nil {
		c.fault("style", target, err)
	}
}

// HideIndicator hides the drop indicator.
func (c *Coordinator) HideIndicator() {
	if c.indicator == "" {
		return
	}
	if err := c.surf.ApplyStyle(c.indicator, surface.Patch{}.Show(false)); err != nil {
		c.fault("style", blocktree.NoParent, err)
	}
}

// =============================================================================
// Surface synchronisation
// =============================================================================

func (c *Coordinator) fault(op string, id int, err error) {
	c.logger.Warn("surface update skipped", "op", op, "block", id, "err", err)
}

func (c *Coordinator) attach(id int, ref surface.NodeRef) {
	c.nodes[id] = ref
	if err := c.surf.AppendChild(surface.Canvas, ref); err != nil {
		c.fault("append", id, err)
	}
}

func (c *Coordinator) dropNode(id int) {
	ref, ok := c.nodes[id]
	if !ok {
		return
	}
	delete(c.nodes, id)
	if err := c.surf.RemoveNode(ref); err != nil {
		c.fault("remove", id, err)
	}
}

func (c *Coordinator) dropArrow(id int) {
	a, ok := c.arrows[id]
	if !ok {
		return
	}
	delete(c.arrows, id)
	if err := c.surf.RemoveNode(a.ref); err != nil {
		c.fault("remove", id, err)
	}
}

func (c *Coordinator) syncBlock(b *blocktree.Block) {
	ref, ok := c.nodes[b.ID]
	if !ok {
		c.fault("style", b.ID, ErrNoNode)
		return
	}
	if err := c.surf.ApplyStyle(ref, surface.Place(b.Box())); err != nil {
		c.fault("style", b.ID, err)
	}
}

// syncArrow routes the connector into child and creates its node on first
// use. local shifts the node into a dragged root's frame.
func (c *Coordinator) syncArrow(parent, child blocktree.Block, local geometry.Point) {
	p := connector.Route(parent, child, c.spacing.Y)
	bounds := p.Bounds()
	a, ok := c.arrows[child.ID]
	if !ok {
		ref, err := c.surf.CreateNode(surface.Markup{
			Class:   surface.ClassConnector,
			BlockID: child.ID,
			Width:   bounds.Width,
			Height:  bounds.Height,
			Content: p.D(),
		})
		if err != nil {
			c.fault("create", child.ID, err)
			return
		}
		if err := c.surf.AppendChild(surface.Canvas, ref); err != nil {
			c.fault("append", child.ID, err)
		}
		a = &arrow{ref: ref}
		c.arrows[child.ID] = a
	}
	a.path = p
	patch := surface.Place(bounds).WithContent(p.D())
	patch.TranslateX, patch.TranslateY = &local.X, &local.Y
	if err := c.surf.ApplyStyle(a.ref, patch); err != nil {
		c.fault("style", child.ID, err)
	}
}

// sync redraws the given committed blocks and the connectors into them.
func (c *Coordinator) sync(ids []int) {
	for _, id := range ids {
		b, err := c.tree.Find(id)
		if err != nil {
			c.fault("style", id, err)
			continue
		}
		c.syncBlock(b)
		if b.IsRoot() {
			c.dropArrow(id)
			continue
		}
		p, err := c.tree.Find(b.Parent)
		if err != nil {
			c.fault("route", id, err)
			continue
		}
		c.syncArrow(*p, *b, geometry.Point{})
	}
}

func (c *Coordinator) syncTree(root int) {
	ids := []int{root}
	for _, d := range c.tree.Descendants(root) {
		ids = append(ids, d.ID)
	}
	c.sync(ids)
}

func (c *Coordinator) syncAll() {
	c.sync(c.tree.IDs())
	for id := range c.arrows {
		if c.dragged != nil && c.dragged.Contains(id) {
			continue
		}
		if b, err := c.tree.Find(id); err != nil || b.IsRoot() {
			c.dropArrow(id)
		}
	}
}
