package layout

import "github.com/matzehuels/stackflow/pkg/geometry"

// Viewport describes the visible canvas area.
type Viewport struct {
	// VisibleLeft is the leftmost canvas x that is on screen.
	VisibleLeft float64
	// Margin is added to overflow shifts so corrected blocks do not touch
	// the edge.
	Margin float64
	// Drop is the region where the first block of an empty chart may land.
	Drop geometry.Rect
}

// DefaultViewport returns a 1200×800 viewport with a 20 unit margin.
func DefaultViewport() Viewport {
	return Viewport{Margin: 20, Drop: geometry.Rect{Width: 1200, Height: 800}}
}

// OverflowEvent describes one overflow correction.
type OverflowEvent struct {
	Shift       float64 `json:"shift"`
	MinLeft     float64 `json:"minLeft"`
	VisibleLeft float64 `json:"visibleLeft"`
}
