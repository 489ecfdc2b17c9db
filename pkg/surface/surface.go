// Package surface defines the render-surface contract the layout engine
// drives, the normalized pointer events it consumes, and two
// implementations: [Memory], a headless scene graph used by the terminal
// editor, the server and tests, and [Recorder], which captures every
// mutating call for replay on a remote client.
package surface

import (
	"github.com/matzehuels/stackflow/pkg/geometry"
)

// NodeRef identifies a node created on a surface.
type NodeRef string

// Well-known nodes every surface provides.
const (
	Root   NodeRef = "root"
	Canvas NodeRef = "canvas"
)

// Node classes understood by the engine.
const (
	ClassBlock     = "block"
	ClassPalette   = "palette"
	ClassConnector = "arrow"
	ClassIndicator = "indicator"
)

// Markup describes a node to create.
type Markup struct {
	Class   string  `json:"class"`
	BlockID int     `json:"blockId"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Content string  `json:"content,omitempty"`
}

// Patch is a partial style update. Nil fields are left unchanged.
type Patch struct {
	Left       *float64 `json:"left,omitempty"`
	Top        *float64 `json:"top,omitempty"`
	Width      *float64 `json:"width,omitempty"`
	Height     *float64 `json:"height,omitempty"`
	TranslateX *float64 `json:"translateX,omitempty"`
	TranslateY *float64 `json:"translateY,omitempty"`
	Visible    *bool    `json:"visible,omitempty"`
	Content    *string  `json:"content,omitempty"`
}

// At returns a patch positioning a node's top-left corner.
func At(left, top float64) Patch {
	return Patch{Left: &left, Top: &top}
}

// Place returns a patch positioning and sizing a node and making it visible.
func Place(r geometry.Rect) Patch {
	p := At(r.Left, r.Top)
	p.Width, p.Height = &r.Width, &r.Height
	return p.Show(true)
}

// Translate returns a patch setting a node's translation.
func Translate(dx, dy float64) Patch {
	return Patch{TranslateX: &dx, TranslateY: &dy}
}

// Show returns p with visibility set.
func (p Patch) Show(v bool) Patch {
	p.Visible = &v
	return p
}

// WithContent returns p with content set.
func (p Patch) WithContent(s string) Patch {
	p.Content = &s
	return p
}

// Surface is the rendering capability consumed by the layout engine.
type Surface interface {
	// Measure returns the node's rectangle in canvas coordinates, with the
	// canvas pan already accounted for.
	Measure(ref NodeRef) (geometry.Rect, error)
	// ApplyStyle merges a style patch into the node.
	ApplyStyle(ref NodeRef, p Patch) error
	// CreateNode creates a detached node.
	CreateNode(m Markup) (NodeRef, error)
	// AppendChild attaches child under parent, detaching it from any
	// previous parent. Child positions are relative to the parent.
	AppendChild(parent, child NodeRef) error
	// RemoveNode removes a node and everything attached under it.
	RemoveNode(ref NodeRef) error
}

// HitTester resolves a screen point to the topmost interactive target.
type HitTester interface {
	HitTest(x, y float64) Target
}
