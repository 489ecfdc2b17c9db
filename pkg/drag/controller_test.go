package drag

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackflow/pkg/blocktree"
	apperrors "github.com/matzehuels/stackflow/pkg/errors"
	"github.com/matzehuels/stackflow/pkg/geometry"
	"github.com/matzehuels/stackflow/pkg/layout"
	"github.com/matzehuels/stackflow/pkg/surface"
)

type fixture struct {
	mem     *surface.Memory
	coord   *layout.Coordinator
	ctrl    *Controller
	palette surface.NodeRef
	logs    *bytes.Buffer
}

func newFixture(t *testing.T, cb Callbacks) *fixture {
	t.Helper()
	mem := surface.NewMemory(1200, 800)
	var logs bytes.Buffer
	logger := log.NewWithOptions(&logs, log.Options{})
	coord := layout.New(blocktree.New(), mem, layout.Options{
		Spacing:  geometry.Spacing{X: 20, Y: 80},
		Viewport: layout.Viewport{Margin: 20, Drop: geometry.Rect{Width: 1200, Height: 800}},
		Logger:   logger,
	})

	ref, _ := mem.CreateNode(surface.Markup{Class: surface.ClassPalette, Width: 50, Height: 30})
	_ = mem.AppendChild(surface.Root, ref)
	_ = mem.ApplyStyle(ref, surface.At(0, 0))

	ctrl := New(coord, mem, Options{
		Palette: Palette{ref: {
			Markup: surface.Markup{Width: 50, Height: 30},
			Data:   []blocktree.Field{{Name: "name", Value: "Step"}},
		}},
		Callbacks: cb,
		Logger:    logger,
	})
	return &fixture{mem: mem, coord: coord, ctrl: ctrl, palette: ref, logs: &logs}
}

// load replaces the chart: root 0 at (500,100) with children 1 (x 460) and
// 2 (x 530) at y 215, plus optional extra blocks.
func (f *fixture) load(t *testing.T, extra ...blocktree.Block) {
	t.Helper()
	blocks := append([]blocktree.Block{
		{ID: 0, Parent: blocktree.NoParent, X: 500, Y: 100, Width: 100, Height: 40},
		{ID: 1, Parent: 0, Width: 40, Height: 30},
		{ID: 2, Parent: 0, Width: 60, Height: 30},
	}, extra...)
	if err := f.coord.Load(blocks); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func (f *fixture) send(t *testing.T, evs ...surface.Event) {
	t.Helper()
	for _, ev := range evs {
		if err := f.ctrl.Handle(ev); err != nil {
			t.Fatalf("Handle(%v at %v,%v): %v", ev.Kind, ev.X, ev.Y, err)
		}
	}
}

func (f *fixture) block(t *testing.T, id int) *blocktree.Block {
	t.Helper()
	b, err := f.coord.Tree().Find(id)
	if err != nil {
		t.Fatalf("Find(%d): %v", id, err)
	}
	return b
}

func down(x, y float64, target surface.Target) surface.Event {
	return surface.Event{Kind: surface.Down, X: x, Y: y, Button: surface.ButtonLeft, Target: target}
}

func move(x, y float64) surface.Event {
	return surface.Event{Kind: surface.Move, X: x, Y: y, Button: surface.ButtonLeft}
}

func up(x, y float64) surface.Event {
	return surface.Event{Kind: surface.Up, X: x, Y: y, Button: surface.ButtonLeft}
}

func onBlock(id int) surface.Target {
	return surface.Target{Kind: surface.TargetBlock, BlockID: id}
}

func (f *fixture) onPalette() surface.Target {
	return surface.Target{Kind: surface.TargetPalette, Ref: f.palette}
}

var onCanvas = surface.Target{Kind: surface.TargetCanvas, Ref: surface.Canvas}

// dropFirst places block 0 with its top-left corner at (100,100).
func (f *fixture) dropFirst(t *testing.T) {
	t.Helper()
	f.send(t, down(10, 10, f.onPalette()), move(60, 60), up(110, 110))
}

func TestDropFirstBlock(t *testing.T) {
	f := newFixture(t, Callbacks{})
	f.send(t, down(10, 10, f.onPalette()))
	if f.ctrl.State() != DraggingNew {
		t.Fatalf("State = %v, want %v", f.ctrl.State(), DraggingNew)
	}
	f.send(t, move(60, 60), up(110, 110))

	if f.coord.Tree().Len() != 1 {
		t.Fatalf("tree len = %d, want 1", f.coord.Tree().Len())
	}
	b := f.block(t, 0)
	if b.Parent != blocktree.NoParent || b.X != 125 || b.Y != 115 {
		t.Errorf("block = %+v, want id 0 root at (125,115)", b)
	}
	if b.Label() != "Step" {
		t.Errorf("Label = %q, want template data", b.Label())
	}
	if f.ctrl.State() != Idle {
		t.Errorf("State = %v after release", f.ctrl.State())
	}
}

func TestDropFirstBlockOutsideDropRegion(t *testing.T) {
	f := newFixture(t, Callbacks{})
	f.send(t, down(10, 10, f.onPalette()), up(2000, 2000))

	if f.coord.Tree().Len() != 0 {
		t.Errorf("tree len = %d, want 0", f.coord.Tree().Len())
	}
	if n := len(f.mem.Nodes(surface.ClassBlock)); n != 0 {
		t.Errorf("block nodes = %d, want 0", n)
	}
}

func TestSnapNewBlockOntoExisting(t *testing.T) {
	f := newFixture(t, Callbacks{})
	f.dropFirst(t)

	// Box top-left (110,120): anchor (135,120) lies in block 0's zone.
	f.send(t, down(10, 10, f.onPalette()), move(100, 100), up(120, 130))

	if f.coord.Tree().Len() != 2 {
		t.Fatalf("tree len = %d, want 2", f.coord.Tree().Len())
	}
	if b := f.block(t, 1); b.Parent != 0 {
		t.Errorf("new block parent = %d, want 0", b.Parent)
	}
	conns := f.coord.Connectors()
	if len(conns) != 1 || conns[0].ChildID != 1 {
		t.Errorf("connectors = %+v, want one into block 1", conns)
	}
}

func TestNewBlockWithoutTargetIsDiscarded(t *testing.T) {
	f := newFixture(t, Callbacks{})
	f.dropFirst(t)
	f.send(t, down(10, 10, f.onPalette()), move(500, 500), up(900, 600))

	if f.coord.Tree().Len() != 1 {
		t.Errorf("tree len = %d, want 1", f.coord.Tree().Len())
	}
	if n := len(f.mem.Nodes(surface.ClassBlock)); n != 1 {
		t.Errorf("block nodes = %d, want 1", n)
	}
}

func TestClickChangesNothing(t *testing.T) {
	f := newFixture(t, Callbacks{})
	f.load(t)
	before := f.coord.Tree().Snapshot()

	f.send(t, down(530, 215, onBlock(2)))
	if f.ctrl.State() != DraggingExisting {
		t.Fatalf("State = %v, want %v", f.ctrl.State(), DraggingExisting)
	}
	f.send(t, move(530, 215), up(530, 215))

	if !reflect.DeepEqual(f.coord.Tree().Snapshot(), before) {
		t.Error("click modified the tree")
	}
	if f.coord.Dragged() != nil {
		t.Error("click detached a block")
	}
}

func TestMoveWithoutTargetRestoresExactly(t *testing.T) {
	f := newFixture(t, Callbacks{})
	f.load(t)
	before := f.coord.Tree().Snapshot()

	f.send(t, down(530, 215, onBlock(2)), move(700, 500))
	if f.ctrl.State() != DraggingExisting {
		t.Fatalf("leaf drag state = %v, want %v", f.ctrl.State(), DraggingExisting)
	}
	if f.coord.Tree().Has(2) {
		t.Fatal("moving leaf not detached")
	}
	f.send(t, up(900, 600))

	if !reflect.DeepEqual(f.coord.Tree().Snapshot(), before) {
		t.Errorf("tree not restored:\n got %+v\nwant %+v", f.coord.Tree().Snapshot(), before)
	}
}

func TestRearrangeSubtree(t *testing.T) {
	f := newFixture(t, Callbacks{})
	f.load(t, blocktree.Block{ID: 3, Parent: 1, Width: 40, Height: 30})

	f.send(t, down(460, 215, onBlock(1)), move(470, 225))
	if f.ctrl.State() != Rearranging {
		t.Fatalf("State = %v, want %v", f.ctrl.State(), Rearranging)
	}
	if f.coord.Tree().Has(3) {
		t.Error("subtree member still committed while rearranging")
	}

	// Box top-left (500,215): anchor (520,215) lies in block 2's zone.
	f.send(t, up(520, 230))

	if p := f.block(t, 1).Parent; p != 2 {
		t.Errorf("block 1 parent = %d, want 2", p)
	}
	if p := f.block(t, 3).Parent; p != 1 {
		t.Errorf("block 3 parent = %d, want 1", p)
	}
	if err := f.coord.Tree().Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestDraggingRootMovesChart(t *testing.T) {
	f := newFixture(t, Callbacks{})
	f.load(t)

	f.send(t, down(500, 100, onBlock(0)), move(600, 200), up(700, 300))

	if r := f.block(t, 0); r.X != 700 || r.Y != 300 || !r.IsRoot() {
		t.Errorf("root = %+v, want root at (700,300)", r)
	}
	if c := f.block(t, 1); c.X != 660 || c.Parent != 0 {
		t.Errorf("child = %+v, want x 660 under 0", c)
	}
}

func TestRightButton(t *testing.T) {
	f := newFixture(t, Callbacks{})
	f.load(t)
	before := f.coord.Tree().Snapshot()

	rightDown := down(530, 215, onBlock(2))
	rightDown.Button = surface.ButtonRight
	f.send(t, rightDown)
	if f.ctrl.State() != Idle {
		t.Fatalf("right press started %v", f.ctrl.State())
	}

	// A right release cancels a running drag.
	f.send(t, down(460, 215, onBlock(1)), move(700, 500))
	rightUp := up(520, 230)
	rightUp.Button = surface.ButtonRight
	f.send(t, rightUp)
	if f.ctrl.State() != Idle {
		t.Errorf("State = %v after right release", f.ctrl.State())
	}
	if !reflect.DeepEqual(f.coord.Tree().Snapshot(), before) {
		t.Error("cancelled drag changed the tree")
	}
}

func TestPanning(t *testing.T) {
	f := newFixture(t, Callbacks{})
	f.load(t)

	f.send(t, down(1000, 700, onCanvas), move(1050, 720))
	if f.ctrl.State() != Panning {
		t.Fatalf("State = %v, want %v", f.ctrl.State(), Panning)
	}
	if f.ctrl.Pan() != (geometry.Point{}) {
		t.Errorf("pan committed before release: %v", f.ctrl.Pan())
	}
	if f.mem.Pan() != (geometry.Point{X: 50, Y: 20}) {
		t.Errorf("live canvas translate = %v", f.mem.Pan())
	}

	rightUp := up(1050, 720)
	rightUp.Button = surface.ButtonRight
	f.send(t, rightUp)
	if f.ctrl.Pan() != (geometry.Point{X: 50, Y: 20}) {
		t.Errorf("Pan = %v, want {50 20}", f.ctrl.Pan())
	}

	// Pointer events are now offset by the pan: screen (550,120) is the
	// root's center. Dragging it moves the chart in canvas space.
	f.send(t, down(550, 120, onBlock(0)), move(560, 130), up(650, 220))
	if r := f.block(t, 0); r.X != 600 || r.Y != 200 {
		t.Errorf("root at (%v,%v), want (600,200)", r.X, r.Y)
	}
}

func TestCancelRevertsLivePan(t *testing.T) {
	f := newFixture(t, Callbacks{})
	f.send(t, down(100, 100, onCanvas), move(300, 100))
	if err := f.ctrl.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if f.mem.Pan() != (geometry.Point{}) {
		t.Errorf("canvas translate = %v after cancel", f.mem.Pan())
	}
}

func TestOnSnapVeto(t *testing.T) {
	var firsts []bool
	f := newFixture(t, Callbacks{
		OnSnap: func(b blocktree.Block, first bool, target *blocktree.Block) bool {
			firsts = append(firsts, first)
			return first // only the first block is accepted
		},
	})
	f.dropFirst(t)
	f.send(t, down(10, 10, f.onPalette()), up(120, 130))

	if f.coord.Tree().Len() != 1 {
		t.Errorf("vetoed snap committed: len = %d", f.coord.Tree().Len())
	}
	if !reflect.DeepEqual(firsts, []bool{true, false}) {
		t.Errorf("OnSnap first flags = %v", firsts)
	}
}

func TestRearrangeSkipsOnSnap(t *testing.T) {
	calls := 0
	f := newFixture(t, Callbacks{
		OnSnap: func(blocktree.Block, bool, *blocktree.Block) bool {
			calls++
			return false
		},
	})
	f.load(t, blocktree.Block{ID: 3, Parent: 1, Width: 40, Height: 30})

	f.send(t, down(460, 215, onBlock(1)), move(470, 225), up(520, 230))
	if calls != 0 {
		t.Errorf("OnSnap called %d times for a rearrange", calls)
	}
	if p := f.block(t, 1).Parent; p != 2 {
		t.Errorf("block 1 parent = %d, want 2", p)
	}
}

func TestFailedCancelIsLogged(t *testing.T) {
	f := newFixture(t, Callbacks{})
	f.load(t)

	f.send(t, down(530, 215, onBlock(2)), move(540, 225))
	dt := f.coord.Dragged()
	if dt == nil {
		t.Fatal("block 2 was not detached")
	}
	// Restoring behind the controller's back leaves it tracking a drag the
	// coordinator no longer knows about.
	if err := f.coord.Restore(dt); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	err := f.ctrl.Handle(up(600, 300))
	if !errors.Is(err, layout.ErrNotDragging) {
		t.Errorf("up = %v, want ErrNotDragging", err)
	}
	if f.ctrl.State() != Idle {
		t.Errorf("State = %v, want idle", f.ctrl.State())
	}
	if !strings.Contains(f.logs.String(), "cancel after tracking error failed") {
		t.Errorf("cancel failure not logged: %q", f.logs.String())
	}
}

func TestGrabReleaseCallbacks(t *testing.T) {
	var grabbed []int
	released := 0
	f := newFixture(t, Callbacks{
		OnGrab:    func(b blocktree.Block) { grabbed = append(grabbed, b.ID) },
		OnRelease: func() { released++ },
	})
	f.dropFirst(t)
	f.send(t, down(125, 115, onBlock(0)), up(125, 115))

	if !reflect.DeepEqual(grabbed, []int{0, 0}) {
		t.Errorf("grabbed = %v", grabbed)
	}
	if released != 2 {
		t.Errorf("released = %d, want 2", released)
	}
}

func TestPressErrors(t *testing.T) {
	f := newFixture(t, Callbacks{})

	err := f.ctrl.Handle(down(0, 0, surface.Target{Kind: surface.TargetPalette, Ref: "nope"}))
	if !apperrors.Is(err, apperrors.ErrCodeNotFound) {
		t.Errorf("unknown palette = %v, want NOT_FOUND", err)
	}
	err = f.ctrl.Handle(down(0, 0, onBlock(42)))
	if !errors.Is(err, blocktree.ErrNotFound) {
		t.Errorf("missing block = %v, want ErrNotFound", err)
	}
	if f.ctrl.State() != Idle {
		t.Errorf("State = %v after failed presses", f.ctrl.State())
	}
}

func TestPressDuringGestureIgnored(t *testing.T) {
	f := newFixture(t, Callbacks{})
	f.send(t, down(10, 10, f.onPalette()), down(500, 500, onCanvas))
	if f.ctrl.State() != DraggingNew {
		t.Errorf("State = %v, want %v", f.ctrl.State(), DraggingNew)
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{Idle, "idle"},
		{DraggingNew, "dragging-new"},
		{DraggingExisting, "dragging-existing"},
		{Rearranging, "rearranging"},
		{Panning, "panning"},
		{Kind(9), "Kind(9)"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int(tt.k), got, tt.want)
		}
	}
}
