// Package connector routes the elbow connectors drawn between a parent
// block and each of its children.
//
// A route leaves the parent's bottom-center, drops half the vertical gap,
// runs horizontally to the child's x, and drops again to the child's
// top-center where an arrowhead points down into the child. The result is
// a render-agnostic [Path]; [Path.D] and [Path.ArrowD] format it as SVG
// path data.
package connector

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/stackflow/pkg/blocktree"
	"github.com/matzehuels/stackflow/pkg/geometry"
)

// ArrowSize is the half-width and height of the arrowhead.
const ArrowSize = 5

// Side tells on which side of the parent's center line the elbow turns.
type Side int

const (
	Right Side = iota
	Left
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// Segment is a straight line from From to To.
type Segment struct {
	From geometry.Point `json:"from"`
	To   geometry.Point `json:"to"`
}

// Path is the routed connector into one child.
type Path struct {
	ParentID int              `json:"parentId"`
	ChildID  int              `json:"childId"`
	Side     Side             `json:"side"`
	Segments []Segment        `json:"segments"`
	Arrow    [3]geometry.Point `json:"arrow"`
}

// Route computes the connector from parent to child.
func Route(parent, child blocktree.Block, spacingY float64) Path {
	start := geometry.Point{X: parent.X, Y: parent.Bottom()}
	end := geometry.Point{X: child.X, Y: child.Top()}
	bendY := start.Y + spacingY/2

	side := Right
	if child.X-parent.X < 0 {
		side = Left
	}

	p1 := geometry.Point{X: start.X, Y: bendY}
	p2 := geometry.Point{X: end.X, Y: bendY}
	return Path{
		ParentID: parent.ID,
		ChildID:  child.ID,
		Side:     side,
		Segments: []Segment{{start, p1}, {p1, p2}, {p2, end}},
		Arrow: [3]geometry.Point{
			{X: end.X - ArrowSize, Y: end.Y - ArrowSize},
			{X: end.X + ArrowSize, Y: end.Y - ArrowSize},
			end,
		},
	}
}

// Points returns the polyline vertices of the path.
func (p Path) Points() []geometry.Point {
	if len(p.Segments) == 0 {
		return nil
	}
	pts := []geometry.Point{p.Segments[0].From}
	for _, s := range p.Segments {
		pts = append(pts, s.To)
	}
	return pts
}

// Bounds returns the rectangle covering the line and the arrowhead.
func (p Path) Bounds() geometry.Rect {
	pts := append(p.Points(), p.Arrow[:]...)
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, pt := range pts[1:] {
		minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
		minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
	}
	return geometry.Rect{Left: minX, Top: minY, Width: maxX - minX, Height: maxY - minY}
}

// Translate returns the path moved by (dx, dy).
func (p Path) Translate(dx, dy float64) Path {
	d := geometry.Point{X: dx, Y: dy}
	segs := make([]Segment, len(p.Segments))
	for i, s := range p.Segments {
		segs[i] = Segment{s.From.Add(d), s.To.Add(d)}
	}
	p.Segments = segs
	for i := range p.Arrow {
		p.Arrow[i] = p.Arrow[i].Add(d)
	}
	return p
}

// D formats the connector line as SVG path data.
func (p Path) D() string {
	var b strings.Builder
	for i, pt := range p.Points() {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s %s %s", cmd, num(pt.X), num(pt.Y))
	}
	return b.String()
}

// ArrowD formats the arrowhead as a closed SVG path.
func (p Path) ArrowD() string {
	a := p.Arrow
	return fmt.Sprintf("M %s %s H %s L %s %s Z",
		num(a[0].X), num(a[0].Y), num(a[1].X), num(a[2].X), num(a[2].Y))
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
