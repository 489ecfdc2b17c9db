package connector

import (
	"testing"

	"github.com/matzehuels/stackflow/pkg/blocktree"
	"github.com/matzehuels/stackflow/pkg/geometry"
)

func TestRoute(t *testing.T) {
	parent := blocktree.Block{ID: 0, Parent: -1, X: 500, Y: 100, Width: 100, Height: 40}

	tests := []struct {
		name     string
		childX   float64
		wantSide Side
	}{
		{"left child", 460, Left},
		{"right child", 530, Right},
		{"aligned child", 500, Right},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			child := blocktree.Block{ID: 1, Parent: 0, X: tt.childX, Y: 215, Width: 40, Height: 30}
			p := Route(parent, child, 80)

			if p.Side != tt.wantSide {
				t.Errorf("Side = %v, want %v", p.Side, tt.wantSide)
			}
			if p.ParentID != 0 || p.ChildID != 1 {
				t.Errorf("ids = %d→%d", p.ParentID, p.ChildID)
			}

			pts := p.Points()
			want := []geometry.Point{
				{X: 500, Y: 120},
				{X: 500, Y: 160},
				{X: tt.childX, Y: 160},
				{X: tt.childX, Y: 200},
			}
			if len(pts) != len(want) {
				t.Fatalf("points = %v", pts)
			}
			for i := range want {
				if pts[i] != want[i] {
					t.Errorf("point[%d] = %v, want %v", i, pts[i], want[i])
				}
			}
			if p.Arrow[2] != (geometry.Point{X: tt.childX, Y: 200}) {
				t.Errorf("arrow tip = %v", p.Arrow[2])
			}
			if p.Arrow[0].Y != 195 || p.Arrow[1].X-p.Arrow[0].X != 2*ArrowSize {
				t.Errorf("arrow base = %v %v", p.Arrow[0], p.Arrow[1])
			}
		})
	}
}

func TestPathD(t *testing.T) {
	parent := blocktree.Block{ID: 0, X: 100, Y: 20, Width: 40, Height: 40}
	child := blocktree.Block{ID: 1, X: 60.5, Y: 155, Width: 40, Height: 30}
	p := Route(parent, child, 80)

	if got, want := p.D(), "M 100 40 L 100 80 L 60.5 80 L 60.5 140"; got != want {
		t.Errorf("D() = %q, want %q", got, want)
	}
	if got, want := p.ArrowD(), "M 55.5 135 H 65.5 L 60.5 140 Z"; got != want {
		t.Errorf("ArrowD() = %q, want %q", got, want)
	}
}

func TestTranslateAndBounds(t *testing.T) {
	parent := blocktree.Block{ID: 0, X: 100, Y: 20, Width: 40, Height: 40}
	child := blocktree.Block{ID: 1, X: 140, Y: 155, Width: 40, Height: 30}
	p := Route(parent, child, 80)

	b := p.Bounds()
	if b != (geometry.Rect{Left: 100, Top: 40, Width: 45, Height: 100}) {
		t.Errorf("Bounds = %+v", b)
	}

	moved := p.Translate(10, -5)
	if moved.Segments[0].From != (geometry.Point{X: 110, Y: 35}) {
		t.Errorf("translated start = %v", moved.Segments[0].From)
	}
	if p.Segments[0].From != (geometry.Point{X: 100, Y: 40}) {
		t.Error("Translate mutated the receiver")
	}
}
