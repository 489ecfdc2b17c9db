package geometry

// MinLeft returns the smallest left edge among rects.
// The boolean is false when rects is empty.
func MinLeft(rects []Rect) (float64, bool) {
	if len(rects) == 0 {
		return 0, false
	}
	m := rects[0].Left
	for _, r := range rects[1:] {
		if r.Left < m {
			m = r.Left
		}
	}
	return m, true
}

// OverflowShift returns the horizontal shift that brings minLeft back
// inside the visible area plus margin. The boolean is false when no
// correction is needed.
func OverflowShift(minLeft, visibleLeft, margin float64) (float64, bool) {
	if minLeft >= visibleLeft {
		return 0, false
	}
	return visibleLeft - minLeft + margin, true
}
