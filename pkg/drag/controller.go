// Package drag implements the pointer state machine that turns press,
// move and release events into flowchart edits.
//
// The controller is in exactly one of five states: idle, dragging a new
// palette block, dragging an existing block, rearranging a detached
// subtree, or panning the canvas. Each state is its own type carrying only
// the fields that state needs.
//
// Press on a palette item clones it into a new block. Press on a block
// grabs it; the first move detaches it (with its subtree when it has
// children). Press on empty canvas pans. On release a block snaps to the
// nearest snap zone under its anchor; without one, a new block is
// discarded, a dragged root moves with its chart to the release point, and
// any other block returns exactly to where it was.
//
// A right-button press is ignored. A right-button release cancels a drag
// or ends a pan.
package drag

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackflow/pkg/blocktree"
	apperrors "github.com/matzehuels/stackflow/pkg/errors"
	"github.com/matzehuels/stackflow/pkg/geometry"
	"github.com/matzehuels/stackflow/pkg/layout"
	"github.com/matzehuels/stackflow/pkg/surface"
)

// Template is a palette item that can be cloned into a new block.
type Template struct {
	Markup     surface.Markup
	Data       []blocktree.Field
	Attributes []blocktree.Field
}

// Validate checks that blocks cloned from t can be exported and imported
// again.
func (t Template) Validate() error {
	for _, group := range [][]blocktree.Field{t.Data, t.Attributes} {
		for _, f := range group {
			if err := apperrors.ValidateFieldName(f.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// Palette maps palette nodes to their templates.
type Palette map[surface.NodeRef]Template

// Callbacks let a host observe and veto gestures. Any of them may be nil.
type Callbacks struct {
	// OnGrab is called when a block is picked up.
	OnGrab func(b blocktree.Block)
	// OnRelease is called after every drag gesture ends.
	OnRelease func()
	// OnSnap is called before a block is committed. first is true for the
	// first block of an empty chart, when target is nil. Returning false
	// discards a new block. It is not called when existing blocks are
	// rearranged.
	OnSnap func(b blocktree.Block, first bool, target *blocktree.Block) bool
}

// Options configures a Controller.
type Options struct {
	Palette   Palette
	Callbacks Callbacks
	Logger    *log.Logger
}

// Controller dispatches pointer events for one chart.
type Controller struct {
	coord   *layout.Coordinator
	surf    surface.Surface
	palette Palette
	cb      Callbacks
	logger  *log.Logger
	state   state
	pan     geometry.Point
}

// New returns an idle controller editing coord's tree on surf.
func New(coord *layout.Coordinator, surf surface.Surface, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Palette == nil {
		opts.Palette = Palette{}
	}
	return &Controller{
		coord:   coord,
		surf:    surf,
		palette: opts.Palette,
		cb:      opts.Callbacks,
		logger:  opts.Logger,
		state:   idle{},
	}
}

// State returns the current gesture kind.
func (c *Controller) State() Kind { return c.state.kind() }

// Pan returns the committed canvas pan.
func (c *Controller) Pan() geometry.Point { return c.pan }

// SetPan sets the canvas pan and applies it to the surface.
func (c *Controller) SetPan(p geometry.Point) {
	c.pan = p
	c.translateCanvas(p)
}

// SetPalette replaces the palette. It is used by hosts that create
// palette nodes after the controller.
func (c *Controller) SetPalette(p Palette) { c.palette = p }

// Handle dispatches ev by kind.
func (c *Controller) Handle(ev surface.Event) error {
	switch ev.Kind {
	case surface.Down:
		return c.HandlePointerDown(ev)
	case surface.Move:
		return c.HandlePointerMove(ev)
	case surface.Up:
		return c.HandlePointerUp(ev)
	}
	return apperrors.New(apperrors.ErrCodeInvalidInput, "unknown event kind %v", ev.Kind)
}

func (c *Controller) toCanvas(ev surface.Event) geometry.Point {
	return geometry.Point{X: ev.X, Y: ev.Y}.Sub(c.pan)
}

// HandlePointerDown starts a gesture. Presses while a gesture is running
// and right-button presses are ignored.
func (c *Controller) HandlePointerDown(ev surface.Event) error {
	if _, ok := c.state.(idle); !ok || ev.Button == surface.ButtonRight {
		return nil
	}
	pt := c.toCanvas(ev)

	switch ev.Target.Kind {
	case surface.TargetPalette:
		return c.grabTemplate(ev.Target.Ref, pt)

	case surface.TargetBlock:
		b, err := c.coord.Tree().Find(ev.Target.BlockID)
		if err != nil {
			return err
		}
		c.state = &draggingExisting{
			id:    b.ID,
			grab:  pt.Sub(geometry.Point{X: b.Left(), Y: b.Top()}),
			press: pt,
			box:   b.Box(),
		}
		if c.cb.OnGrab != nil {
			c.cb.OnGrab(*b)
		}

	case surface.TargetCanvas:
		origin := geometry.Point{X: ev.X, Y: ev.Y}
		c.state = &panning{origin: origin, start: c.pan, offset: c.pan}
	}
	return nil
}

func (c *Controller) grabTemplate(ref surface.NodeRef, pt geometry.Point) error {
	tmpl, ok := c.palette[ref]
	if !ok {
		return apperrors.New(apperrors.ErrCodeNotFound, "unknown palette item %q", ref)
	}
	id := c.coord.Tree().NextID()
	mk := tmpl.Markup
	mk.Class, mk.BlockID = surface.ClassBlock, id

	node, err := c.surf.CreateNode(mk)
	if err != nil {
		return err
	}
	if err := c.surf.AppendChild(surface.Canvas, node); err != nil {
		c.logger.Warn("surface update skipped", "op", "append", "block", id, "err", err)
	}
	size := geometry.Rect{Width: mk.Width, Height: mk.Height}
	if r, err := c.surf.Measure(node); err == nil && r.Width > 0 && r.Height > 0 {
		size.Width, size.Height = r.Width, r.Height
	}

	grab := geometry.Point{X: size.Width / 2, Y: size.Height / 2}
	if r, err := c.surf.Measure(ref); err == nil {
		grab = pt.Sub(geometry.Point{X: r.Left, Y: r.Top})
	}

	s := &draggingNew{
		block: blocktree.Block{
			ID:         id,
			Parent:     blocktree.NoParent,
			Width:      size.Width,
			Height:     size.Height,
			Data:       tmpl.Data,
			Attributes: tmpl.Attributes,
		},
		node: node,
		grab: grab,
		box:  size.MoveTo(pt.Sub(grab)),
	}
	s.block = s.block.Clone()
	c.state = s
	c.place(s.node, s.box)
	if c.cb.OnGrab != nil {
		c.cb.OnGrab(s.block)
	}
	return nil
}

// HandlePointerMove updates the live position of the current gesture.
func (c *Controller) HandlePointerMove(ev surface.Event) error {
	switch s := c.state.(type) {
	case *panning:
		s.offset = s.start.Add(geometry.Point{X: ev.X, Y: ev.Y}.Sub(s.origin))
		c.translateCanvas(s.offset)
		return nil
	case idle:
		return nil
	}
	if err := c.track(c.toCanvas(ev)); err != nil {
		return err
	}
	c.hover()
	return nil
}

// track moves the dragged block to follow the pointer at pt, detaching a
// grabbed block on its first real move.
func (c *Controller) track(pt geometry.Point) error {
	switch s := c.state.(type) {
	case *draggingNew:
		s.box = s.box.MoveTo(pt.Sub(s.grab))
		c.place(s.node, s.box)

	case *draggingExisting:
		if s.tree == nil {
			if pt == s.press {
				return nil
			}
			dt, err := c.coord.Detach(s.id)
			if err != nil {
				c.state = idle{}
				return err
			}
			if dt.Len() > 1 {
				c.state = &rearranging{tree: dt, grab: s.grab, box: s.box}
				return c.track(pt)
			}
			s.tree = dt
		}
		s.box = s.box.MoveTo(pt.Sub(s.grab))
		return c.coord.Rearrange(s.tree, s.box)

	case *rearranging:
		s.box = s.box.MoveTo(pt.Sub(s.grab))
		return c.coord.Rearrange(s.tree, s.box)
	}
	return nil
}

func (c *Controller) hover() {
	var box geometry.Rect
	switch s := c.state.(type) {
	case *draggingNew:
		box = s.box
	case *draggingExisting:
		if s.tree == nil {
			return
		}
		box = s.box
	case *rearranging:
		box = s.box
	default:
		return
	}
	if target, ok := c.coord.SnapTarget(box); ok {
		c.coord.ShowIndicator(target)
	} else {
		c.coord.HideIndicator()
	}
}

// HandlePointerUp finishes the current gesture.
func (c *Controller) HandlePointerUp(ev surface.Event) error {
	if s, ok := c.state.(*panning); ok {
		s.offset = s.start.Add(geometry.Point{X: ev.X, Y: ev.Y}.Sub(s.origin))
		c.SetPan(s.offset)
		c.state = idle{}
		return nil
	}
	if _, ok := c.state.(idle); ok {
		return nil
	}
	defer c.released()

	if ev.Button == surface.ButtonRight {
		return c.cancel()
	}
	if err := c.track(c.toCanvas(ev)); err != nil {
		if cerr := c.cancel(); cerr != nil {
			c.logger.Warn("cancel after tracking error failed", "err", cerr)
		}
		return err
	}

	switch s := c.state.(type) {
	case *draggingNew:
		return c.dropNew(s)
	case *draggingExisting:
		if s.tree == nil {
			c.state = idle{}
			return nil
		}
		return c.dropTree(s.tree, s.box)
	case *rearranging:
		return c.dropTree(s.tree, s.box)
	}
	return nil
}

func (c *Controller) released() {
	c.state = idle{}
	c.coord.HideIndicator()
	if c.cb.OnRelease != nil {
		c.cb.OnRelease()
	}
}

func (c *Controller) dropNew(s *draggingNew) error {
	b := s.block
	b.X, b.Y = s.box.CenterX(), s.box.CenterY()
	nb := layout.NewBlock{Block: b, Node: s.node}

	if c.coord.Tree().Len() == 0 {
		if c.coord.InDropRegion(s.box) && c.allow(b, true, nil) {
			return c.discardOnError(s, c.coord.PlaceFirst(nb))
		}
		c.discard(s)
		return nil
	}

	target, ok := c.coord.SnapTarget(s.box)
	if !ok {
		c.discard(s)
		return nil
	}
	t, err := c.coord.Tree().Find(target)
	if err != nil {
		c.discard(s)
		return err
	}
	if !c.allow(b, false, t) {
		c.discard(s)
		return nil
	}
	return c.discardOnError(s, c.coord.Snap(nb, target))
}

func (c *Controller) dropTree(dt *layout.DraggedTree, box geometry.Rect) error {
	if target, ok := c.coord.SnapTarget(box); ok {
		if err := c.coord.Snap(dt, target); err != nil {
			if rerr := c.coord.Restore(dt); rerr != nil {
				c.logger.Error("restore failed", "block", dt.Root().ID, "err", rerr)
			}
			return err
		}
		return nil
	}
	if dt.WasRoot() {
		return c.coord.MoveRoot(dt, box)
	}
	return c.coord.Restore(dt)
}

func (c *Controller) allow(b blocktree.Block, first bool, target *blocktree.Block) bool {
	if c.cb.OnSnap == nil {
		return true
	}
	return c.cb.OnSnap(b, first, target)
}

func (c *Controller) discard(s *draggingNew) {
	if err := c.surf.RemoveNode(s.node); err != nil {
		c.logger.Warn("surface update skipped", "op", "remove", "block", s.block.ID, "err", err)
	}
}

func (c *Controller) discardOnError(s *draggingNew, err error) error {
	if err != nil {
		c.discard(s)
	}
	return err
}

// Cancel aborts the current gesture, discarding a new block, restoring a
// detached one, or reverting a live pan.
func (c *Controller) Cancel() error {
	if _, ok := c.state.(idle); ok {
		return nil
	}
	defer c.released()
	return c.cancel()
}

func (c *Controller) cancel() error {
	var err error
	switch s := c.state.(type) {
	case *draggingNew:
		c.discard(s)
	case *draggingExisting:
		if s.tree != nil {
			err = c.coord.Restore(s.tree)
		}
	case *rearranging:
		err = c.coord.Restore(s.tree)
	case *panning:
		c.translateCanvas(c.pan)
	}
	c.state = idle{}
	return err
}

func (c *Controller) place(node surface.NodeRef, box geometry.Rect) {
	if err := c.surf.ApplyStyle(node, surface.Place(box)); err != nil {
		c.logger.Warn("surface update skipped", "op", "style", "ref", node, "err", err)
	}
}

func (c *Controller) translateCanvas(p geometry.Point) {
	if err := c.surf.ApplyStyle(surface.Canvas, surface.Translate(p.X, p.Y)); err != nil {
		c.logger.Warn("surface update skipped", "op", "pan", "err", err)
	}
}
