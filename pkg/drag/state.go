package drag

import (
	"fmt"

	"github.com/matzehuels/stackflow/pkg/blocktree"
	"github.com/matzehuels/stackflow/pkg/geometry"
	"github.com/matzehuels/stackflow/pkg/layout"
	"github.com/matzehuels/stackflow/pkg/surface"
)

// Kind names the controller's current gesture.
type Kind int

const (
	Idle Kind = iota
	DraggingNew
	DraggingExisting
	Rearranging
	Panning
)

func (k Kind) String() string {
	switch k {
	case Idle:
		return "idle"
	case DraggingNew:
		return "dragging-new"
	case DraggingExisting:
		return "dragging-existing"
	case Rearranging:
		return "rearranging"
	case Panning:
		return "panning"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type state interface {
	kind() Kind
}

type idle struct{}

// draggingNew carries a palette clone that is not part of the tree yet.
type draggingNew struct {
	block blocktree.Block
	node  surface.NodeRef
	grab  geometry.Point
	box   geometry.Rect
}

// draggingExisting starts as a press on a committed block. tree stays nil
// until the pointer moves, so a press and release in place is a click.
type draggingExisting struct {
	id    int
	grab  geometry.Point
	press geometry.Point
	tree  *layout.DraggedTree
	box   geometry.Rect
}

// rearranging carries a detached interior block with its subtree.
type rearranging struct {
	tree *layout.DraggedTree
	grab geometry.Point
	box  geometry.Rect
}

// panning tracks a canvas drag. start is the pan at press and offset the
// live pan.
type panning struct {
	origin geometry.Point
	start  geometry.Point
	offset geometry.Point
}

func (idle) kind() Kind              { return Idle }
func (*draggingNew) kind() Kind      { return DraggingNew }
func (*draggingExisting) kind() Kind { return DraggingExisting }
func (*rearranging) kind() Kind      { return Rearranging }
func (*panning) kind() Kind          { return Panning }
