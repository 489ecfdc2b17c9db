package cli

import (
	"fmt"
	"math"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackflow/pkg/blocktree"
	"github.com/matzehuels/stackflow/pkg/config"
	"github.com/matzehuels/stackflow/pkg/connector"
	"github.com/matzehuels/stackflow/pkg/drag"
	"github.com/matzehuels/stackflow/pkg/engine"
	"github.com/matzehuels/stackflow/pkg/flowchart"
	"github.com/matzehuels/stackflow/pkg/geometry"
	"github.com/matzehuels/stackflow/pkg/layout"
	"github.com/matzehuels/stackflow/pkg/surface"
)

// Editor styles
var (
	editorBlockStyle     = lipgloss.NewStyle().Foreground(colorWhite)
	editorDraggedStyle   = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	editorPaletteStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	editorLineStyle      = lipgloss.NewStyle().Foreground(colorGray)
	editorIndicatorStyle = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	editorStatusStyle    = lipgloss.NewStyle().Foreground(colorDim)
	editorErrorStyle     = lipgloss.NewStyle().Foreground(colorRed)
)

// paletteLabels are the block kinds offered in the editor palette.
var paletteLabels = []string{"Action", "Condition", "Output"}

const (
	// editorSurfaceSize bounds the headless canvas, in cells. It only
	// needs to exceed any real terminal.
	editorSurfaceSize = 4096

	minBlockWidth = 8
	maxBlockWidth = 24
)

// =============================================================================
// editorModel - Interactive chart editing
// =============================================================================

// editorModel is the bubbletea model of the terminal editor. One cell is
// one layout unit, so the engine lays out in terminal cells directly.
type editorModel struct {
	cfg          config.EditorConfig
	engine       *engine.Engine
	surf         *surface.Memory
	palette      []surface.NodeRef
	paletteWidth int

	width  int
	height int
	mouse  geometry.Point

	save   func(flowchart.Document) error
	status string
	err    error
	dirty  bool
	saved  bool
}

// newEditorModel builds an editor for doc. save is called with the chart
// structure when the user saves.
func newEditorModel(cfg config.EditorConfig, doc flowchart.Document, logger *log.Logger, save func(flowchart.Document) error) (*editorModel, error) {
	if cfg.BlockHeight < 1 {
		cfg.BlockHeight = 3
	}
	m := &editorModel{
		cfg:    cfg,
		surf:   surface.NewMemory(editorSurfaceSize, editorSurfaceSize),
		save:   save,
		width:  80,
		height: 24,
	}
	for _, l := range paletteLabels {
		m.paletteWidth = max(m.paletteWidth, blockWidth(l))
	}

	e, err := engine.New(m.surf, engine.Options{
		Spacing:          geometry.Spacing{X: float64(max(cfg.SpacingX, 1)), Y: float64(max(cfg.SpacingY, 1))},
		Viewport:         m.viewport(),
		Logger:           logger,
		DefaultBlockSize: geometry.Rect{Width: minBlockWidth, Height: float64(cfg.BlockHeight)},
		Callbacks: drag.Callbacks{
			OnSnap: func(b blocktree.Block, first bool, target *blocktree.Block) bool {
				m.dirty = true
				if target != nil {
					m.status = fmt.Sprintf("attached %q under %q", b.Label(), target.Label())
				} else {
					m.status = fmt.Sprintf("placed %q", b.Label())
				}
				return true
			},
		},
	})
	if err != nil {
		return nil, err
	}
	m.engine = e

	for i, l := range paletteLabels {
		tmpl := drag.Template{
			Markup: surface.Markup{Width: float64(m.paletteWidth), Height: float64(cfg.BlockHeight), Content: l},
			Data:   []blocktree.Field{{Name: "name", Value: l}},
		}
		ref, err := e.AddTemplate(tmpl, 1, float64(1+i*(cfg.BlockHeight+1)))
		if err != nil {
			return nil, err
		}
		m.palette = append(m.palette, ref)
	}
	if err := m.load(doc); err != nil {
		return nil, err
	}
	return m, nil
}

// viewport keeps the chart right of the palette and above the status line.
func (m *editorModel) viewport() layout.Viewport {
	left := float64(m.paletteWidth + 2)
	return layout.Viewport{
		VisibleLeft: left,
		Margin:      1,
		Drop:        geometry.Rect{Left: left, Width: math.Max(float64(m.width)-left, 1), Height: float64(max(m.height-1, 1))},
	}
}

// blockWidth sizes a block to fit its label inside the border.
func blockWidth(label string) int {
	return min(max(len([]rune(label))+4, minBlockWidth), maxBlockWidth)
}

// load imports doc in cell units. Stored positions are in pixels, so
// sizes are recomputed from labels and the trees are placed side by side
// after a first layout pass has measured them.
func (m *editorModel) load(doc flowchart.Document) error {
	positions := make([]flowchart.Position, len(doc.Blocks))
	for i, b := range doc.Blocks {
		label := blocktree.Block{Data: b.Data}.Label()
		positions[i] = flowchart.Position{ID: b.ID, ParentID: b.ParentID, Width: float64(blockWidth(label)), Height: float64(m.cfg.BlockHeight)}
	}
	cells := flowchart.Document{Blocks: doc.Blocks, Positions: positions}
	if err := m.engine.Import(cells); err != nil {
		return err
	}

	byID := make(map[int]int, len(positions))
	for i, p := range positions {
		byID[p.ID] = i
	}
	left := float64(m.paletteWidth + 2 + m.cfg.SpacingX)
	for _, b := range m.engine.Blocks() {
		if !b.IsRoot() {
			continue
		}
		p := &positions[byID[b.ID]]
		p.X = left + b.MaxWidth()/2
		p.Y = 1 + b.Height/2
		left += b.MaxWidth() + float64(2*max(m.cfg.SpacingX, 1))
	}
	return m.engine.Import(cells)
}

func (m *editorModel) Init() tea.Cmd {
	return nil
}

func (m *editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.engine.SetViewport(m.viewport())

	case tea.MouseMsg:
		m.mouse = geometry.Point{X: float64(msg.X), Y: float64(msg.Y)}
		m.err = m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *editorModel) handleMouse(msg tea.MouseMsg) error {
	ev := surface.Event{X: m.mouse.X, Y: m.mouse.Y, Button: mouseButton(msg.Button)}
	switch msg.Action {
	case tea.MouseActionPress:
		if tea.MouseEvent(msg).IsWheel() {
			return nil
		}
		ev.Target = m.surf.HitTest(ev.X, ev.Y)
		return m.engine.HandlePointerDown(ev)
	case tea.MouseActionMotion:
		return m.engine.HandlePointerMove(ev)
	case tea.MouseActionRelease:
		if st := m.engine.State(); st != drag.DraggingExisting && st != drag.Rearranging {
			return m.engine.HandlePointerUp(ev)
		}
		before := m.structure()
		err := m.engine.HandlePointerUp(ev)
		if !slices.EqualFunc(before, m.structure(), sameBlock) {
			m.dirty = true
			m.status = "rearranged"
		}
		return err
	}
	return nil
}

// structure returns the committed blocks without geometry.
func (m *editorModel) structure() []flowchart.Block {
	doc, _ := m.engine.Export()
	return doc.Structure()
}

func sameBlock(a, b flowchart.Block) bool {
	return a.ID == b.ID && a.ParentID == b.ParentID
}

func mouseButton(b tea.MouseButton) surface.Button {
	switch b {
	case tea.MouseButtonLeft:
		return surface.ButtonLeft
	case tea.MouseButtonRight:
		return surface.ButtonRight
	case tea.MouseButtonMiddle:
		return surface.ButtonMiddle
	}
	return surface.ButtonNone
}

func (m *editorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc":
		if m.engine.State() != drag.Idle {
			m.err = m.engine.Cancel()
			m.status = "cancelled"
			return m, nil
		}
		return m, tea.Quit
	case "d", "delete", "backspace":
		t := m.surf.HitTest(m.mouse.X, m.mouse.Y)
		if t.Kind != surface.TargetBlock {
			m.status = "point at a block to delete it"
			return m, nil
		}
		if m.err = m.engine.Delete(t.BlockID); m.err == nil {
			m.dirty = true
			m.status = fmt.Sprintf("deleted block %d", t.BlockID)
		}
	case "ctrl+s", "s":
		m.err = m.commit()
	}
	return m, nil
}

// commit hands the chart structure to the save callback. Cell positions
// are dropped; the caller lays the chart out again in its own units.
func (m *editorModel) commit() error {
	doc, ok := m.engine.Export()
	if !ok {
		doc = emptyDocument()
	}
	doc.Positions = []flowchart.Position{}
	if err := m.save(doc); err != nil {
		return err
	}
	m.dirty, m.saved = false, true
	m.status = fmt.Sprintf("saved %d blocks", len(doc.Blocks))
	return nil
}

func (m *editorModel) View() string {
	g := newGrid(m.width, max(m.height-1, 0))
	pan := m.surf.Pan()
	for _, p := range m.engine.Connectors() {
		g.connector(p.Translate(pan.X, pan.Y))
	}

	committed := make(map[int]bool)
	for _, b := range m.engine.Blocks() {
		committed[b.ID] = true
	}
	for _, n := range m.surf.Nodes(surface.ClassPalette, surface.ClassBlock, surface.ClassIndicator) {
		if !n.Visible {
			continue
		}
		switch n.Markup.Class {
		case surface.ClassPalette:
			g.box(n.Rect, n.Markup.Content, cellPalette)
		case surface.ClassBlock:
			kind := cellBlock
			if !committed[n.Markup.BlockID] {
				kind = cellDragged
			}
			g.box(n.Rect, n.Markup.Content, kind)
		case surface.ClassIndicator:
			g.set(cellFloor(n.Rect.CenterX()), cellFloor(n.Rect.Top), '◆', cellIndicator)
		}
	}
	g.arrowheads()

	var b strings.Builder
	b.WriteString(g.render())
	b.WriteString(m.statusLine())
	return b.String()
}

func (m *editorModel) statusLine() string {
	parts := []string{m.engine.State().String(), fmt.Sprintf("%d blocks", m.engine.Len())}
	if m.dirty {
		parts = append(parts, "modified")
	}
	line := editorStatusStyle.Render(strings.Join(parts, " · "))
	switch {
	case m.err != nil:
		line += "  " + editorErrorStyle.Render(m.err.Error())
	case m.status != "":
		line += "  " + StyleValue.Render(m.status)
	}
	return line + "  " + editorStatusStyle.Render("[s save · d delete · esc cancel · q quit]")
}

// =============================================================================
// grid - Character canvas
// =============================================================================

type cellKind uint8

const (
	cellEmpty cellKind = iota
	cellLine
	cellBlock
	cellDragged
	cellPalette
	cellIndicator
)

func (k cellKind) style() lipgloss.Style {
	switch k {
	case cellLine:
		return editorLineStyle
	case cellBlock:
		return editorBlockStyle
	case cellDragged:
		return editorDraggedStyle
	case cellPalette:
		return editorPaletteStyle
	case cellIndicator:
		return editorIndicatorStyle
	}
	return lipgloss.NewStyle()
}

// Line directions leaving a cell.
const (
	dirUp uint8 = 1 << iota
	dirDown
	dirLeft
	dirRight
)

var lineRunes = map[uint8]rune{
	dirUp:                               '│',
	dirDown:                             '│',
	dirUp | dirDown:                     '│',
	dirLeft:                             '─',
	dirRight:                            '─',
	dirLeft | dirRight:                  '─',
	dirDown | dirRight:                  '┌',
	dirDown | dirLeft:                   '┐',
	dirUp | dirRight:                    '└',
	dirUp | dirLeft:                     '┘',
	dirUp | dirDown | dirRight:          '├',
	dirUp | dirDown | dirLeft:           '┤',
	dirLeft | dirRight | dirDown:        '┬',
	dirLeft | dirRight | dirUp:          '┴',
	dirUp | dirDown | dirLeft | dirRight: '┼',
}

type grid struct {
	w, h  int
	runes []rune
	kinds []cellKind
	lines []uint8
	heads []geometry.Point
}

func newGrid(w, h int) *grid {
	g := &grid{w: w, h: h, runes: make([]rune, w*h), kinds: make([]cellKind, w*h), lines: make([]uint8, w*h)}
	for i := range g.runes {
		g.runes[i] = ' '
	}
	return g
}

func cellFloor(v float64) int { return int(math.Floor(v)) }
func cellRound(v float64) int { return int(math.Floor(v + 0.5)) }

func (g *grid) in(x, y int) bool { return x >= 0 && y >= 0 && x < g.w && y < g.h }

func (g *grid) set(x, y int, r rune, k cellKind) {
	if g.in(x, y) {
		g.runes[y*g.w+x], g.kinds[y*g.w+x] = r, k
	}
}

func (g *grid) link(x, y int, dir uint8) {
	if !g.in(x, y) {
		return
	}
	i := y*g.w + x
	g.lines[i] |= dir
	g.runes[i], g.kinds[i] = lineRunes[g.lines[i]], cellLine
}

// connector draws an elbow path and queues its arrowhead.
func (g *grid) connector(p connector.Path) {
	pts := p.Points()
	for i := 1; i < len(pts); i++ {
		x0, y0 := cellFloor(pts[i-1].X), cellFloor(pts[i-1].Y)
		x1, y1 := cellFloor(pts[i].X), cellFloor(pts[i].Y)
		switch {
		case x0 == x1:
			lo, hi := min(y0, y1), max(y0, y1)
			for y := lo; y <= hi; y++ {
				var d uint8
				if y > lo {
					d |= dirUp
				}
				if y < hi {
					d |= dirDown
				}
				g.link(x0, y, d)
			}
		case y0 == y1:
			lo, hi := min(x0, x1), max(x0, x1)
			for x := lo; x <= hi; x++ {
				var d uint8
				if x > lo {
					d |= dirLeft
				}
				if x < hi {
					d |= dirRight
				}
				g.link(x, y0, d)
			}
		}
	}
	if n := len(pts); n > 0 {
		g.heads = append(g.heads, pts[n-1])
	}
}

// arrowheads marks where each connector enters its child. Call it after
// the boxes are drawn so the heads sit on the child's top border.
func (g *grid) arrowheads() {
	for _, p := range g.heads {
		g.set(cellFloor(p.X), cellFloor(p.Y), '▼', cellLine)
	}
}

// box draws a bordered block with its label centered on the middle row.
func (g *grid) box(r geometry.Rect, label string, k cellKind) {
	x0, y0 := cellRound(r.Left), cellRound(r.Top)
	w, h := cellRound(r.Width), cellRound(r.Height)
	if w <= 0 || h <= 0 {
		return
	}
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			g.set(x, y, ' ', k)
		}
	}
	if h >= 2 && w >= 2 {
		for x := x0 + 1; x < x0+w-1; x++ {
			g.set(x, y0, '─', k)
			g.set(x, y0+h-1, '─', k)
		}
		for y := y0 + 1; y < y0+h-1; y++ {
			g.set(x0, y, '│', k)
			g.set(x0+w-1, y, '│', k)
		}
		g.set(x0, y0, '╭', k)
		g.set(x0+w-1, y0, '╮', k)
		g.set(x0, y0+h-1, '╰', k)
		g.set(x0+w-1, y0+h-1, '╯', k)
	}

	inner := w - 2
	if h < 2 || w < 2 {
		inner = w
	}
	text := []rune(label)
	if len(text) > inner {
		if inner <= 1 {
			text = text[:max(inner, 0)]
		} else {
			text = append(text[:inner-1], '…')
		}
	}
	tx := x0 + (w-len(text))/2
	ty := y0 + h/2
	for i, c := range text {
		g.set(tx+i, ty, c, k)
	}
}

// render joins the grid rows, styling runs of cells of the same kind.
func (g *grid) render() string {
	var b strings.Builder
	for y := 0; y < g.h; y++ {
		row := y * g.w
		for x := 0; x < g.w; {
			k := g.kinds[row+x]
			end := x
			for end < g.w && g.kinds[row+end] == k {
				end++
			}
			run := string(g.runes[row+x : row+end])
			if k == cellEmpty {
				b.WriteString(run)
			} else {
				b.WriteString(k.style().Render(run))
			}
			x = end
		}
		b.WriteByte('\n')
	}
	return b.String()
}
