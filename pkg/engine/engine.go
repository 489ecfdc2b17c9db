// Package engine wires a block tree, a layout coordinator and a drag
// controller to one render surface.
//
// An Engine is the unit a host embeds: it receives pointer events, keeps
// the chart laid out on its surface, and imports and exports chart
// documents. All methods are safe for concurrent use; events are applied
// one at a time.
package engine

import (
	"fmt"
	"maps"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackflow/pkg/blocktree"
	"github.com/matzehuels/stackflow/pkg/connector"
	"github.com/matzehuels/stackflow/pkg/drag"
	apperrors "github.com/matzehuels/stackflow/pkg/errors"
	"github.com/matzehuels/stackflow/pkg/flowchart"
	"github.com/matzehuels/stackflow/pkg/geometry"
	"github.com/matzehuels/stackflow/pkg/layout"
	"github.com/matzehuels/stackflow/pkg/surface"
)

// DefaultBlockSize is the size given to imported blocks that have none.
var DefaultBlockSize = geometry.Rect{Width: 120, Height: 40}

// Options configures an Engine. The zero value uses default spacing, the
// default viewport and log.Default().
type Options struct {
	Spacing          geometry.Spacing
	Viewport         layout.Viewport
	Palette          drag.Palette
	Callbacks        drag.Callbacks
	Logger           *log.Logger
	DefaultBlockSize geometry.Rect
}

// Engine is an interactive flowchart bound to a surface.
type Engine struct {
	mu      sync.Mutex
	tree    *blocktree.Tree
	surf    surface.Surface
	coord   *layout.Coordinator
	ctrl    *drag.Controller
	palette drag.Palette
	size    geometry.Rect
}

// New returns an empty engine drawing on surf.
func New(surf surface.Surface, opts Options) (*Engine, error) {
	if opts.Spacing == (geometry.Spacing{}) {
		opts.Spacing = geometry.DefaultSpacing()
	}
	if err := apperrors.ValidateSpacing(opts.Spacing.X, opts.Spacing.Y); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	for ref, tmpl := range opts.Palette {
		if err := tmpl.Validate(); err != nil {
			return nil, fmt.Errorf("palette item %s: %w", ref, err)
		}
	}
	if opts.DefaultBlockSize.Width <= 0 || opts.DefaultBlockSize.Height <= 0 {
		opts.DefaultBlockSize = DefaultBlockSize
	}

	tree := blocktree.New()
	coord := layout.New(tree, surf, layout.Options{
		Spacing:  opts.Spacing,
		Viewport: opts.Viewport,
		Logger:   opts.Logger,
	})
	palette := make(drag.Palette, len(opts.Palette))
	maps.Copy(palette, opts.Palette)
	ctrl := drag.New(coord, surf, drag.Options{
		Palette:   palette,
		Callbacks: opts.Callbacks,
		Logger:    opts.Logger,
	})
	return &Engine{
		tree:    tree,
		surf:    surf,
		coord:   coord,
		ctrl:    ctrl,
		palette: palette,
		size:    opts.DefaultBlockSize,
	}, nil
}

// Handle applies one pointer event.
func (e *Engine) Handle(ev surface.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctrl.Handle(ev)
}

// HandlePointerDown applies a press.
func (e *Engine) HandlePointerDown(ev surface.Event) error {
	ev.Kind = surface.Down
	return e.Handle(ev)
}

// HandlePointerMove applies a move.
func (e *Engine) HandlePointerMove(ev surface.Event) error {
	ev.Kind = surface.Move
	return e.Handle(ev)
}

// HandlePointerUp applies a release.
func (e *Engine) HandlePointerUp(ev surface.Event) error {
	ev.Kind = surface.Up
	return e.Handle(ev)
}

// Cancel aborts the gesture in progress, if any.
func (e *Engine) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctrl.Cancel()
}

// AddTemplate creates a palette node for tmpl with its top-left corner at
// (left, top) in screen coordinates and registers it with the palette.
func (e *Engine) AddTemplate(tmpl drag.Template, left, top float64) (surface.NodeRef, error) {
	if err := tmpl.Validate(); err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	mk := tmpl.Markup
	mk.Class, mk.BlockID = surface.ClassPalette, blocktree.NoParent
	ref, err := e.surf.CreateNode(mk)
	if err != nil {
		return "", err
	}
	if err := e.surf.AppendChild(surface.Root, ref); err != nil {
		return "", err
	}
	box := geometry.Rect{Left: left, Top: top, Width: mk.Width, Height: mk.Height}
	if err := e.surf.ApplyStyle(ref, surface.Place(box)); err != nil {
		return "", err
	}
	e.palette[ref] = tmpl
	e.ctrl.SetPalette(e.palette)
	return ref, nil
}

// SetViewport changes the visible area and drop region and re-checks
// overflow.
func (e *Engine) SetViewport(v layout.Viewport) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.coord.SetViewport(v)
	e.coord.CheckOffset()
}

// Import replaces the chart with doc and lays it out. A running gesture
// is cancelled first. On a validation error the chart is unchanged.
func (e *Engine) Import(doc flowchart.Document) error {
	blocks, err := doc.ToBlocks()
	if err != nil {
		return err
	}
	for i := range blocks {
		if blocks[i].Width <= 0 {
			blocks[i].Width = e.size.Width
		}
		if blocks[i].Height <= 0 {
			blocks[i].Height = e.size.Height
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ctrl.Cancel(); err != nil {
		return err
	}
	return e.coord.Load(blocks)
}

// Export returns the committed chart. It reports false when the chart is
// empty.
func (e *Engine) Export() (flowchart.Document, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tree.Len() == 0 {
		return flowchart.Document{}, false
	}
	return flowchart.FromBlocks(e.tree.Snapshot()), true
}

// Reset cancels any gesture and removes every block and connector.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	_ = e.ctrl.Cancel()
	e.coord.Clear()
}

// Delete removes a block with its subtree and re-lays out the rest of
// its chart. It fails while a gesture is running.
func (e *Engine) Delete(id int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctrl.State() != drag.Idle {
		return layout.ErrDragActive
	}
	return e.coord.Delete(id)
}

// Blocks returns a copy of the committed blocks in insertion order.
func (e *Engine) Blocks() []blocktree.Block {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.Snapshot()
}

// Connectors returns the committed connector paths.
func (e *Engine) Connectors() []connector.Path {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.coord.Connectors()
}

// Len returns the number of committed blocks.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.Len()
}

// State returns the current gesture kind.
func (e *Engine) State() drag.Kind {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctrl.State()
}

// Pan returns the committed canvas pan.
func (e *Engine) Pan() geometry.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctrl.Pan()
}

// Spacing returns the layout spacing.
func (e *Engine) Spacing() geometry.Spacing { return e.coord.Spacing() }
