package layout

import (
	"bytes"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackflow/pkg/blocktree"
	"github.com/matzehuels/stackflow/pkg/geometry"
	"github.com/matzehuels/stackflow/pkg/observability"
	"github.com/matzehuels/stackflow/pkg/surface"
)

var testSpacing = geometry.Spacing{X: 20, Y: 80}

func newTestCoordinator(t *testing.T, s surface.Surface) (*Coordinator, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	c := New(blocktree.New(), s, Options{
		Spacing:  testSpacing,
		Viewport: Viewport{Margin: 20, Drop: geometry.Rect{Width: 1200, Height: 800}},
		Logger:   log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}),
	})
	return c, &buf
}

// fanOut is a root at x=500 with two children of width 40 and 60.
func fanOut() []blocktree.Block {
	return []blocktree.Block{
		{ID: 0, Parent: blocktree.NoParent, X: 500, Y: 100, Width: 100, Height: 40},
		{ID: 1, Parent: 0, Width: 40, Height: 30},
		{ID: 2, Parent: 0, Width: 60, Height: 30},
	}
}

func find(t *testing.T, c *Coordinator, id int) *blocktree.Block {
	t.Helper()
	b, err := c.Tree().Find(id)
	if err != nil {
		t.Fatalf("Find(%d): %v", id, err)
	}
	return b
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestLoadLaysOutChildren(t *testing.T) {
	c, _ := newTestCoordinator(t, surface.NewMemory(1200, 800))
	if err := c.Load(fanOut()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	root := find(t, c, 0)
	if !near(root.ChildWidth, 120) {
		t.Errorf("ChildWidth = %v, want 120", root.ChildWidth)
	}
	tests := []struct {
		id   int
		x, y float64
	}{
		{1, 460, 215},
		{2, 530, 215},
	}
	for _, tt := range tests {
		b := find(t, c, tt.id)
		if !near(b.X, tt.x) || !near(b.Y, tt.y) {
			t.Errorf("block %d at (%v, %v), want (%v, %v)", tt.id, b.X, b.Y, tt.x, tt.y)
		}
	}
	if got := len(c.Connectors()); got != 2 {
		t.Errorf("connectors = %d, want 2", got)
	}
}

func TestLoadRejectsInvalidWholesale(t *testing.T) {
	c, _ := newTestCoordinator(t, surface.NewMemory(1200, 800))
	_ = c.Load(fanOut())

	bad := []blocktree.Block{{ID: 0, Parent: blocktree.NoParent}, {ID: 1, Parent: 5}}
	if err := c.Load(bad); !errors.Is(err, blocktree.ErrDanglingParent) {
		t.Fatalf("Load = %v, want ErrDanglingParent", err)
	}
	if c.Tree().Len() != 3 {
		t.Errorf("tree len = %d after rejected load, want 3", c.Tree().Len())
	}
}

func TestSnapNewBlock(t *testing.T) {
	mem := surface.NewMemory(1200, 800)
	rec := surface.NewRecorder(mem, nil)
	c, _ := newTestCoordinator(t, rec)
	_ = c.Load(fanOut()[:1])

	ref, _ := rec.CreateNode(surface.Markup{Class: surface.ClassBlock, BlockID: 1, Width: 50, Height: 30})
	nb := NewBlock{Block: blocktree.Block{ID: 1, Width: 50, Height: 30}, Node: ref}
	if err := c.Snap(nb, 0); err != nil {
		t.Fatalf("Snap: %v", err)
	}

	b := find(t, c, 1)
	if b.Parent != 0 || !near(b.X, 500) || !near(b.Y, 215) {
		t.Errorf("snapped block = %+v", b)
	}
	conns := c.Connectors()
	if len(conns) != 1 || conns[0].ChildID != 1 || conns[0].ParentID != 0 {
		t.Fatalf("connectors = %+v", conns)
	}
	info, ok := mem.Node(ref)
	if !ok || info.Parent != surface.Canvas || info.Rect.Left != 475 {
		t.Errorf("block node = %+v", info)
	}
}

func TestSnapIsAtomic(t *testing.T) {
	c, _ := newTestCoordinator(t, surface.NewMemory(1200, 800))
	_ = c.Load(fanOut())
	before := c.Tree().Snapshot()

	tests := []struct {
		name   string
		block  blocktree.Block
		target int
		want   error
	}{
		{"missing target", blocktree.Block{ID: 9}, 42, blocktree.ErrNotFound},
		{"duplicate id", blocktree.Block{ID: 2}, 1, blocktree.ErrDuplicateID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Snap(NewBlock{Block: tt.block}, tt.target)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Snap = %v, want %v", err, tt.want)
			}
			if !reflect.DeepEqual(c.Tree().Snapshot(), before) {
				t.Error("tree changed by rejected snap")
			}
		})
	}
}

func TestSnapPropagatesWidthsToAncestors(t *testing.T) {
	c, _ := newTestCoordinator(t, surface.NewMemory(1200, 800))
	_ = c.Load(fanOut())

	// Two wide grandchildren under block 1 widen its subtree and the root's row.
	for _, id := range []int{3, 4} {
		if err := c.Snap(NewBlock{Block: blocktree.Block{ID: id, Width: 100, Height: 30}}, 1); err != nil {
			t.Fatalf("Snap(%d): %v", id, err)
		}
	}
	if got := find(t, c, 1).ChildWidth; !near(got, 220) {
		t.Errorf("ChildWidth(1) = %v, want 220", got)
	}
	if got := find(t, c, 0).ChildWidth; !near(got, 300) {
		t.Errorf("ChildWidth(0) = %v, want 300", got)
	}
	// Row of 220 + 20 + 60 centered on 500 starts at 350.
	if x := find(t, c, 1).X; !near(x, 460) {
		t.Errorf("block 1 x = %v, want 460", x)
	}
	if x := find(t, c, 2).X; !near(x, 620) {
		t.Errorf("block 2 x = %v, want 620", x)
	}
	if x := find(t, c, 3).X; !near(x, 400) {
		t.Errorf("block 3 x = %v, want 400", x)
	}
	if err := c.Tree().Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestDetachRestoreIsExact(t *testing.T) {
	mem := surface.NewMemory(1200, 800)
	c, _ := newTestCoordinator(t, mem)
	blocks := append(fanOut(), blocktree.Block{ID: 3, Parent: 1, Width: 40, Height: 30})
	_ = c.Load(blocks)
	before := c.Tree().Snapshot()
	conns := c.Connectors()

	dt, err := c.Detach(1)
	if err != nil {
		t.Fatalf("Detach: %v", err)
	}
	if dt.Len() != 2 || dt.Root().ID != 1 || dt.WasRoot() {
		t.Fatalf("dragged tree = %+v", dt.Blocks)
	}
	if c.Tree().Has(1) || c.Tree().Has(3) {
		t.Error("detached blocks still in tree")
	}
	if got := find(t, c, 0).ChildWidth; !near(got, 60) {
		t.Errorf("remaining ChildWidth = %v, want 60", got)
	}

	// Members travel with the dragged root.
	ref1, _ := c.Node(1)
	ref3, _ := c.Node(3)
	if info, _ := mem.Node(ref3); info.Parent != ref1 {
		t.Errorf("member parent = %s, want %s", info.Parent, ref1)
	}
	if err := c.Rearrange(dt, geometry.Rect{Left: 800, Top: 400, Width: 40, Height: 30}); err != nil {
		t.Fatalf("Rearrange: %v", err)
	}
	if info, _ := mem.Node(ref3); !near(info.Rect.CenterX(), 820) {
		t.Errorf("member did not follow root: %+v", info.Rect)
	}

	if err := c.Restore(dt); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if !reflect.DeepEqual(c.Tree().Snapshot(), before) {
		t.Errorf("restore not exact:\n got %+v\nwant %+v", c.Tree().Snapshot(), before)
	}
	if !reflect.DeepEqual(c.Connectors(), conns) {
		t.Error("connectors differ after restore")
	}
	if info, _ := mem.Node(ref3); info.Parent != surface.Canvas {
		t.Errorf("member not returned to canvas: %s", info.Parent)
	}
	if c.Dragged() != nil {
		t.Error("drag still active after restore")
	}
}

func TestRearrangeSnapMovesSubtree(t *testing.T) {
	c, _ := newTestCoordinator(t, surface.NewMemory(1200, 800))
	blocks := append(fanOut(), blocktree.Block{ID: 3, Parent: 1, Width: 40, Height: 30})
	_ = c.Load(blocks)

	dt, _ := c.Detach(1)
	before := c.Tree().Snapshot()
	_ = c.Rearrange(dt, geometry.Rect{Left: 510, Top: 230, Width: 40, Height: 30})
	if !reflect.DeepEqual(c.Tree().Snapshot(), before) {
		t.Fatal("Rearrange mutated the tree")
	}

	target, ok := c.SnapTarget(dt.Box())
	if !ok || target != 2 {
		t.Fatalf("SnapTarget = (%d, %v), want (2, true)", target, ok)
	}
	if err := c.Snap(dt, target); err != nil {
		t.Fatalf("Snap: %v", err)
	}
	if find(t, c, 1).Parent != 2 || find(t, c, 3).Parent != 1 {
		t.Error("subtree not re-linked under block 2")
	}
	if err := c.Tree().Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if got := len(c.Connectors()); got != 3 {
		t.Errorf("connectors = %d, want 3", got)
	}
	if err := c.Snap(dt, 0); !errors.Is(err, ErrNotDragging) {
		t.Errorf("second Snap of same drag = %v, want ErrNotDragging", err)
	}
}

func TestSnapNilDraggedTree(t *testing.T) {
	c, _ := newTestCoordinator(t, surface.NewMemory(1200, 800))
	_ = c.Load(fanOut())
	before := c.Tree().Snapshot()

	if err := c.Snap((*DraggedTree)(nil), 0); !errors.Is(err, ErrNotDragging) {
		t.Errorf("Snap(nil) without a drag = %v, want ErrNotDragging", err)
	}

	dt, _ := c.Detach(2)
	if err := c.Snap((*DraggedTree)(nil), 0); !errors.Is(err, ErrNotDragging) {
		t.Errorf("Snap(nil) during a drag = %v, want ErrNotDragging", err)
	}
	_ = c.Restore(dt)
	if !reflect.DeepEqual(c.Tree().Snapshot(), before) {
		t.Error("tree changed after rejected snaps")
	}
}

func TestRearrangeMalformedDraggedTree(t *testing.T) {
	c, _ := newTestCoordinator(t, surface.NewMemory(1200, 800))
	blocks := append(fanOut(), blocktree.Block{ID: 3, Parent: 1, Width: 40, Height: 30})
	_ = c.Load(blocks)

	dt, _ := c.Detach(1)
	dt.Blocks = append(dt.Blocks, dt.Blocks[1])
	err := c.Rearrange(dt, geometry.Rect{Left: 100, Top: 100, Width: 40, Height: 30})
	if !errors.Is(err, blocktree.ErrDuplicateID) {
		t.Errorf("Rearrange = %v, want ErrDuplicateID", err)
	}
	dt.Blocks = dt.Blocks[:2]
	if err := c.Restore(dt); err != nil {
		t.Errorf("Restore: %v", err)
	}
}

func TestMoveRoot(t *testing.T) {
	c, _ := newTestCoordinator(t, surface.NewMemory(1200, 800))
	_ = c.Load(fanOut())

	dt, err := c.Detach(0)
	if err != nil {
		t.Fatalf("Detach: %v", err)
	}
	if c.Tree().Len() != 0 {
		t.Fatalf("tree len = %d while dragging whole chart", c.Tree().Len())
	}
	if err := c.MoveRoot(dt, geometry.RectFromCenter(700, 300, 100, 40)); err != nil {
		t.Fatalf("MoveRoot: %v", err)
	}
	if r := find(t, c, 0); !near(r.X, 700) || !near(r.Y, 300) {
		t.Errorf("root at (%v, %v), want (700, 300)", r.X, r.Y)
	}
	if b := find(t, c, 1); !near(b.X, 660) || !near(b.Y, 415) {
		t.Errorf("child at (%v, %v), want (660, 415)", b.X, b.Y)
	}

	dt, _ = c.Detach(1)
	if err := c.MoveRoot(dt, geometry.Rect{}); !errors.Is(err, ErrNotRoot) {
		t.Errorf("MoveRoot non-root = %v, want ErrNotRoot", err)
	}
	_ = c.Restore(dt)
}

func TestDeleteSubtree(t *testing.T) {
	mem := surface.NewMemory(1200, 800)
	c, _ := newTestCoordinator(t, mem)
	blocks := append(fanOut(), blocktree.Block{ID: 3, Parent: 1, Width: 40, Height: 30})
	_ = c.Load(blocks)

	if err := c.Delete(1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if c.Tree().Len() != 2 || c.Tree().Has(3) {
		t.Errorf("remaining ids = %v", c.Tree().IDs())
	}
	if got := find(t, c, 2).X; !near(got, 500) {
		t.Errorf("remaining child x = %v, want 500", got)
	}
	if got := len(mem.Nodes(surface.ClassBlock)); got != 2 {
		t.Errorf("block nodes = %d, want 2", got)
	}
	if got := len(mem.Nodes(surface.ClassConnector)); got != 1 {
		t.Errorf("connector nodes = %d, want 1", got)
	}
	if err := c.Delete(1); !errors.Is(err, blocktree.ErrNotFound) {
		t.Errorf("Delete missing = %v", err)
	}
}

func TestPlaceFirst(t *testing.T) {
	mem := surface.NewMemory(1200, 800)
	c, _ := newTestCoordinator(t, mem)
	ref, _ := mem.CreateNode(surface.Markup{Class: surface.ClassBlock, Width: 50, Height: 30})

	nb := NewBlock{Block: blocktree.Block{ID: 0, Parent: 7, X: 125, Y: 115, Width: 50, Height: 30}, Node: ref}
	if err := c.PlaceFirst(nb); err != nil {
		t.Fatalf("PlaceFirst: %v", err)
	}
	b := find(t, c, 0)
	if b.Parent != blocktree.NoParent || b.X != 125 {
		t.Errorf("first block = %+v", b)
	}
	if err := c.PlaceFirst(nb); !errors.Is(err, ErrNotEmpty) {
		t.Errorf("second PlaceFirst = %v, want ErrNotEmpty", err)
	}
}

type overflowHooks struct {
	observability.NoopLayoutHooks
	shifts []float64
}

func (h *overflowHooks) OnOverflow(shift float64) { h.shifts = append(h.shifts, shift) }

func TestCheckOffset(t *testing.T) {
	hooks := &overflowHooks{}
	observability.SetLayoutHooks(hooks)
	defer observability.Reset()

	c, _ := newTestCoordinator(t, surface.NewMemory(1200, 800))
	_ = c.Load(fanOut())
	if len(hooks.shifts) != 0 {
		t.Fatalf("in-bounds tree produced shifts %v", hooks.shifts)
	}
	if _, ok := c.CheckOffset(); ok {
		t.Error("CheckOffset on in-bounds tree reported a shift")
	}

	// Push the root left of the visible edge: left edge at -40.
	find(t, c, 0).X = 10
	ev, ok := c.CheckOffset()
	if !ok {
		t.Fatal("CheckOffset did not trigger")
	}
	if !near(ev.MinLeft, -40) || !near(ev.Shift, 60) {
		t.Errorf("event = %+v, want minLeft -40 shift 60", ev)
	}
	if x := find(t, c, 0).X; !near(x, 70) {
		t.Errorf("root x = %v after shift, want 70", x)
	}
	if x := find(t, c, 1).X; !near(x, 520) {
		t.Errorf("child x = %v after shift, want 520", x)
	}
	if len(hooks.shifts) != 1 {
		t.Errorf("hook shifts = %v", hooks.shifts)
	}
}

func TestDetachRevertsOverflowShift(t *testing.T) {
	c, _ := newTestCoordinator(t, surface.NewMemory(1200, 800))
	_ = c.Load(fanOut())
	find(t, c, 0).X = 10
	if _, ok := c.CheckOffset(); !ok {
		t.Fatal("CheckOffset did not trigger")
	}

	tests := []struct {
		name   string
		finish func(*DraggedTree) error
		root   float64
	}{
		{"restore", c.Restore, 70},
		{"snap", func(dt *DraggedTree) error { return c.Snap(dt, 1) }, 70},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt, err := c.Detach(2)
			if err != nil {
				t.Fatalf("Detach: %v", err)
			}
			if x := find(t, c, 0).X; !near(x, 10) {
				t.Errorf("root x during drag = %v, want 10", x)
			}
			if x := find(t, c, 1).X; !near(x, 10) {
				t.Errorf("child x during drag = %v, want 10", x)
			}
			if err := tt.finish(dt); err != nil {
				t.Fatalf("finish: %v", err)
			}
			if x := find(t, c, 0).X; !near(x, tt.root) {
				t.Errorf("root x after drag = %v, want %v", x, tt.root)
			}
		})
	}
}

func TestCheckOffsetExemptsDraggedTree(t *testing.T) {
	c, _ := newTestCoordinator(t, surface.NewMemory(1200, 800))
	_ = c.Load(fanOut())
	dt, _ := c.Detach(2)
	_ = c.Rearrange(dt, geometry.Rect{Left: -300, Top: 0, Width: 60, Height: 30})
	if _, ok := c.CheckOffset(); ok {
		t.Error("dragged block triggered overflow correction")
	}
	_ = c.Restore(dt)
}

// faultySurface fails every style update.
type faultySurface struct{ *surface.Memory }

func (faultySurface) ApplyStyle(surface.NodeRef, surface.Patch) error {
	return errors.New("detached element")
}

func TestSurfaceFaultsAreLogged(t *testing.T) {
	c, logs := newTestCoordinator(t, faultySurface{surface.NewMemory(1200, 800)})
	if err := c.Load(fanOut()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := c.Snap(NewBlock{Block: blocktree.Block{ID: 3, Width: 10, Height: 10}}, 2); err != nil {
		t.Fatalf("Snap: %v", err)
	}
	if c.Tree().Len() != 4 {
		t.Errorf("len = %d, want 4", c.Tree().Len())
	}
	if !strings.Contains(logs.String(), "surface update skipped") {
		t.Error("surface fault not logged")
	}
}

func TestIndicator(t *testing.T) {
	mem := surface.NewMemory(1200, 800)
	c, _ := newTestCoordinator(t, mem)
	_ = c.Load(fanOut()[:1])

	c.ShowIndicator(0)
	ind := mem.Nodes(surface.ClassIndicator)
	if len(ind) != 1 || !ind[0].Visible || ind[0].Rect.Top != 120 {
		t.Fatalf("indicator = %+v", ind)
	}
	c.HideIndicator()
	if ind := mem.Nodes(surface.ClassIndicator); ind[0].Visible {
		t.Error("indicator still visible")
	}
}

func TestRelayoutHook(t *testing.T) {
	var calls int
	observability.SetLayoutHooks(relayoutCounter{&calls})
	defer observability.Reset()

	c, _ := newTestCoordinator(t, surface.NewMemory(1200, 800))
	_ = c.Load(fanOut())
	if calls != 1 {
		t.Errorf("OnRelayout calls = %d, want 1", calls)
	}
}

type relayoutCounter struct{ n *int }

func (relayoutCounter) OnSnap(int, int, int) {}
func (relayoutCounter) OnDetach(int, int)    {}
func (relayoutCounter) OnRestore(int)        {}
func (relayoutCounter) OnOverflow(float64)   {}

func (r relayoutCounter) OnRelayout(int, time.Duration) { *r.n++ }
