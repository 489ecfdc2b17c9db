package geometry

// Anchor returns the point of a dragged rectangle that is tested against
// snap zones: its horizontal center on its top edge.
func Anchor(r Rect) Point {
	return Point{X: r.CenterX(), Y: r.Top}
}

// InSnapZone reports whether anchor lies in target's snap zone. The zone
// extends spacing.X beyond each side of the target and reaches from the
// target's top edge down to one target height below its center.
// All bounds are inclusive.
func InSnapZone(anchor Point, target Rect, spacing Spacing) bool {
	cx, cy := target.CenterX(), target.CenterY()
	half := target.Width / 2
	return anchor.X >= cx-half-spacing.X &&
		anchor.X <= cx+half+spacing.X &&
		anchor.Y >= cy-target.Height/2 &&
		anchor.Y <= cy+target.Height
}

// Candidate is a block that a dragged anchor may snap to.
type Candidate struct {
	ID  int
	Box Rect
}

// NearestSnapTarget returns the id of the candidate whose snap zone contains
// anchor. When several zones match, the candidate whose center is closest
// to the anchor wins and equal distances resolve to the lowest id.
func NearestSnapTarget(anchor Point, candidates []Candidate, spacing Spacing) (int, bool) {
	best, found := -1, false
	var bestDist float64
	for _, c := range candidates {
		if !InSnapZone(anchor, c.Box, spacing) {
			continue
		}
		d := anchor.Dist(c.Box.Center())
		if !found || d < bestDist || (d == bestDist && c.ID < best) {
			best, bestDist, found = c.ID, d, true
		}
	}
	return best, found
}
