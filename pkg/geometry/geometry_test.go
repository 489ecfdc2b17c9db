package geometry

import (
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRowWidth(t *testing.T) {
	tests := []struct {
		name   string
		widths []float64
		sx     float64
		want   float64
	}{
		{"empty", nil, 20, 0},
		{"single", []float64{50}, 20, 50},
		{"two children", []float64{40, 60}, 20, 120},
		{"three children", []float64{40, 60, 20}, 20, 160},
		{"no spacing", []float64{10, 10}, 0, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RowWidth(tt.widths, tt.sx); !approx(got, tt.want) {
				t.Errorf("RowWidth(%v, %v) = %v, want %v", tt.widths, tt.sx, got, tt.want)
			}
		})
	}
}

func TestChildCenters(t *testing.T) {
	got := ChildCenters(500, []float64{40, 60}, 20)
	want := []float64{460, 530}
	for i := range want {
		if !approx(got[i], want[i]) {
			t.Errorf("center[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	// The row spans 440..560 and is centered on the parent.
	left := got[0] - 20
	right := got[1] + 30
	if !approx((left+right)/2, 500) {
		t.Errorf("row midpoint = %v, want 500", (left+right)/2)
	}
}

func TestChildCentersSingleChildAligned(t *testing.T) {
	got := ChildCenters(300, []float64{80}, 20)
	if len(got) != 1 || !approx(got[0], 300) {
		t.Errorf("ChildCenters single = %v, want [300]", got)
	}
}

func TestChildTop(t *testing.T) {
	if got := ChildTop(100, 40, 80); !approx(got, 200) {
		t.Errorf("ChildTop = %v, want 200", got)
	}
}

func TestInSnapZone(t *testing.T) {
	target := RectFromCenter(500, 100, 100, 40) // x 450..550, y 80..120
	sp := Spacing{X: 20, Y: 80}

	tests := []struct {
		name   string
		anchor Point
		want   bool
	}{
		{"center", Point{500, 100}, true},
		{"right boundary", Point{570, 100}, true},
		{"beyond right", Point{571, 100}, false},
		{"left boundary", Point{430, 100}, true},
		{"beyond left", Point{429, 100}, false},
		{"top boundary", Point{500, 80}, true},
		{"above top", Point{500, 79}, false},
		{"bottom boundary", Point{500, 140}, true},
		{"below bottom", Point{500, 141}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InSnapZone(tt.anchor, target, sp); got != tt.want {
				t.Errorf("InSnapZone(%v) = %v, want %v", tt.anchor, got, tt.want)
			}
		})
	}
}

func TestAnchor(t *testing.T) {
	a := Anchor(Rect{Left: 10, Top: 20, Width: 50, Height: 30})
	if a != (Point{35, 20}) {
		t.Errorf("Anchor = %v, want {35 20}", a)
	}
}

func TestNearestSnapTarget(t *testing.T) {
	sp := Spacing{X: 20, Y: 80}
	cands := []Candidate{
		{ID: 3, Box: RectFromCenter(500, 100, 100, 40)},
		{ID: 1, Box: RectFromCenter(560, 100, 100, 40)},
		{ID: 7, Box: RectFromCenter(900, 100, 100, 40)},
	}

	tests := []struct {
		name   string
		anchor Point
		wantID int
		wantOK bool
	}{
		{"closest of two overlapping zones", Point{545, 100}, 1, true},
		{"only one zone", Point{440, 100}, 3, true},
		{"equidistant resolves to lowest id", Point{530, 100}, 1, true},
		{"no zone", Point{700, 100}, -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := NearestSnapTarget(tt.anchor, cands, sp)
			if id != tt.wantID || ok != tt.wantOK {
				t.Errorf("NearestSnapTarget(%v) = (%d, %v), want (%d, %v)", tt.anchor, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestOverflowShift(t *testing.T) {
	tests := []struct {
		name      string
		minLeft   float64
		visible   float64
		margin    float64
		wantShift float64
		wantOK    bool
	}{
		{"inside bounds", 40, 0, 20, 0, false},
		{"exactly on edge", 0, 0, 20, 0, false},
		{"overflowing", -30, 0, 20, 50, true},
		{"custom visible edge", 90, 100, 20, 30, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shift, ok := OverflowShift(tt.minLeft, tt.visible, tt.margin)
			if ok != tt.wantOK || !approx(shift, tt.wantShift) {
				t.Errorf("OverflowShift = (%v, %v), want (%v, %v)", shift, ok, tt.wantShift, tt.wantOK)
			}
		})
	}
}

func TestMinLeft(t *testing.T) {
	if _, ok := MinLeft(nil); ok {
		t.Error("MinLeft(nil) ok = true, want false")
	}
	m, ok := MinLeft([]Rect{{Left: 5}, {Left: -3}, {Left: 10}})
	if !ok || m != -3 {
		t.Errorf("MinLeft = (%v, %v), want (-3, true)", m, ok)
	}
}

func TestRectUnion(t *testing.T) {
	u := Rect{}.Union(Rect{Left: 10, Top: 10, Width: 5, Height: 5})
	if u != (Rect{Left: 10, Top: 10, Width: 5, Height: 5}) {
		t.Errorf("empty union = %v", u)
	}
	u = Rect{Left: 0, Top: 0, Width: 10, Height: 10}.Union(Rect{Left: 20, Top: -5, Width: 5, Height: 5})
	if u != (Rect{Left: 0, Top: -5, Width: 25, Height: 15}) {
		t.Errorf("Union = %v", u)
	}
}
