// Package geometry holds the pure coordinate math behind flowchart layout:
// rectangles, snap-zone containment, row centering, and overflow correction.
//
// All functions are side-effect free. Coordinates are canvas-space with the
// y axis growing downward; a block's stored position is its center.
package geometry

import "math"

// Spacing is the gap between sibling subtrees (X) and between a parent's
// bottom edge and its children's top edge (Y).
type Spacing struct {
	X float64 `json:"x" yaml:"x" toml:"spacing_x"`
	Y float64 `json:"y" yaml:"y" toml:"spacing_y"`
}

// DefaultSpacing returns the spacing used when none is configured.
func DefaultSpacing() Spacing { return Spacing{X: 20, Y: 80} }

// Point is a location in canvas space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p minus q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectFromCenter builds a rectangle of size w×h centered on (cx, cy).
func RectFromCenter(cx, cy, w, h float64) Rect {
	return Rect{Left: cx - w/2, Top: cy - h/2, Width: w, Height: h}
}

func (r Rect) Right() float64   { return r.Left + r.Width }
func (r Rect) Bottom() float64  { return r.Top + r.Height }
func (r Rect) CenterX() float64 { return r.Left + r.Width/2 }
func (r Rect) CenterY() float64 { return r.Top + r.Height/2 }

// Center returns the rectangle's center point.
func (r Rect) Center() Point { return Point{r.CenterX(), r.CenterY()} }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right() && p.Y >= r.Top && p.Y <= r.Bottom()
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.Left += dx
	r.Top += dy
	return r
}

// MoveTo returns r with its top-left corner at p.
func (r Rect) MoveTo(p Point) Rect {
	r.Left, r.Top = p.X, p.Y
	return r
}

// Union returns the smallest rectangle containing both r and o.
// A zero-sized r is treated as empty.
func (r Rect) Union(o Rect) Rect {
	if r.Width == 0 && r.Height == 0 {
		return o
	}
	left := math.Min(r.Left, o.Left)
	top := math.Min(r.Top, o.Top)
	right := math.Max(r.Right(), o.Right())
	bottom := math.Max(r.Bottom(), o.Bottom())
	return Rect{Left: left, Top: top, Width: right - left, Height: bottom - top}
}
