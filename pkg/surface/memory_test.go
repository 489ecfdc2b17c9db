package surface

import (
	"errors"
	"testing"

	"github.com/matzehuels/stackflow/pkg/geometry"
)

func mustCreate(t *testing.T, s Surface, m Markup) NodeRef {
	t.Helper()
	ref, err := s.CreateNode(m)
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	return ref
}

func TestMemoryMeasureRelativeToCanvas(t *testing.T) {
	m := NewMemory(800, 600)
	blk := mustCreate(t, m, Markup{Class: ClassBlock, BlockID: 0, Width: 50, Height: 30})
	if err := m.AppendChild(Canvas, blk); err != nil {
		t.Fatalf("AppendChild: %v", err)
	}
	_ = m.ApplyStyle(blk, At(100, 100))

	r, err := m.Measure(blk)
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	if r != (geometry.Rect{Left: 100, Top: 100, Width: 50, Height: 30}) {
		t.Errorf("Measure = %+v", r)
	}

	// Panning moves the block on screen but not in canvas coordinates.
	_ = m.ApplyStyle(Canvas, Translate(-40, 10))
	r, _ = m.Measure(blk)
	if r.Left != 100 || r.Top != 100 {
		t.Errorf("Measure after pan = %+v", r)
	}
	info, _ := m.Node(blk)
	if info.Rect.Left != 60 || info.Rect.Top != 110 {
		t.Errorf("screen rect after pan = %+v", info.Rect)
	}
	if m.Pan() != (geometry.Point{X: -40, Y: 10}) {
		t.Errorf("Pan = %v", m.Pan())
	}
}

func TestMemoryNestedNodes(t *testing.T) {
	m := NewMemory(800, 600)
	parent := mustCreate(t, m, Markup{Class: ClassBlock, Width: 50, Height: 30})
	child := mustCreate(t, m, Markup{Class: ClassBlock, BlockID: 1, Width: 20, Height: 20})
	_ = m.AppendChild(Canvas, parent)
	_ = m.AppendChild(parent, child)
	_ = m.ApplyStyle(parent, At(200, 50))
	_ = m.ApplyStyle(child, At(10, 120))

	r, _ := m.Measure(child)
	if r.Left != 210 || r.Top != 170 {
		t.Errorf("nested Measure = %+v, want left 210 top 170", r)
	}

	if err := m.AppendChild(child, parent); err == nil {
		t.Error("AppendChild into own descendant succeeded")
	}

	if err := m.RemoveNode(parent); err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	if _, ok := m.Node(child); ok {
		t.Error("RemoveNode left a child behind")
	}
	if _, err := m.Measure(child); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("Measure removed = %v, want ErrUnknownNode", err)
	}
}

func TestMemoryHitTest(t *testing.T) {
	m := NewMemory(400, 300)
	pal := mustCreate(t, m, Markup{Class: ClassPalette, Width: 60, Height: 20})
	_ = m.AppendChild(Root, pal)
	_ = m.ApplyStyle(pal, At(0, 0))

	blk := mustCreate(t, m, Markup{Class: ClassBlock, BlockID: 4, Width: 50, Height: 30})
	_ = m.AppendChild(Canvas, blk)
	_ = m.ApplyStyle(blk, At(100, 100))

	hidden := mustCreate(t, m, Markup{Class: ClassBlock, BlockID: 9, Width: 50, Height: 30})
	_ = m.AppendChild(Canvas, hidden)
	_ = m.ApplyStyle(hidden, At(100, 100).Show(false))

	tests := []struct {
		name string
		x, y float64
		want Target
	}{
		{"palette", 10, 10, Target{Kind: TargetPalette, Ref: pal}},
		{"block under hidden", 120, 110, Target{Kind: TargetBlock, Ref: blk, BlockID: 4}},
		{"empty canvas", 300, 200, Target{Kind: TargetCanvas, Ref: Canvas}},
		{"outside", 500, 500, Target{Kind: TargetNone}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.HitTest(tt.x, tt.y); got != tt.want {
				t.Errorf("HitTest(%v, %v) = %+v, want %+v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestMemoryNodesFiltersDetached(t *testing.T) {
	m := NewMemory(400, 300)
	a := mustCreate(t, m, Markup{Class: ClassBlock})
	_ = mustCreate(t, m, Markup{Class: ClassBlock}) // never attached
	c := mustCreate(t, m, Markup{Class: ClassConnector})
	_ = m.AppendChild(Canvas, a)
	_ = m.AppendChild(Canvas, c)

	if got := m.Nodes(); len(got) != 2 {
		t.Errorf("Nodes() = %d, want 2", len(got))
	}
	if got := m.Nodes(ClassConnector); len(got) != 1 || got[0].Ref != c {
		t.Errorf("Nodes(arrow) = %+v", got)
	}
}

func TestMemoryProtectsWellKnownNodes(t *testing.T) {
	m := NewMemory(10, 10)
	if err := m.RemoveNode(Canvas); err == nil {
		t.Error("RemoveNode(Canvas) succeeded")
	}
	if err := m.ApplyStyle("missing", At(0, 0)); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("ApplyStyle missing = %v", err)
	}
}
