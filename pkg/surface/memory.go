package surface

import (
	"fmt"
	"slices"

	apperrors "github.com/matzehuels/stackflow/pkg/errors"
	"github.com/matzehuels/stackflow/pkg/geometry"
)

// ErrUnknownNode is returned for references the surface never created or
// has already removed.
var ErrUnknownNode = apperrors.New(apperrors.ErrCodeNotFound, "unknown surface node")

type node struct {
	ref      NodeRef
	parent   NodeRef
	children []NodeRef
	markup   Markup
	left     float64
	top      float64
	width    float64
	height   float64
	tx, ty   float64
	visible  bool
}

// NodeInfo is a read-only view of a node in screen coordinates.
type NodeInfo struct {
	Ref     NodeRef
	Parent  NodeRef
	Markup  Markup
	Rect    geometry.Rect
	Visible bool
}

// Memory is an in-memory scene graph. Node positions are relative to
// their parent plus the parent's translation, like absolutely positioned
// elements. The canvas node sits under the root; its translation is the
// canvas pan.
//
// Memory is not safe for concurrent use.
type Memory struct {
	nodes map[NodeRef]*node
	order []NodeRef
	seq   int
}

// NewMemory returns a surface whose canvas is width×height.
func NewMemory(width, height float64) *Memory {
	m := &Memory{nodes: make(map[NodeRef]*node)}
	m.add(&node{ref: Root, visible: true, width: width, height: height})
	m.add(&node{ref: Canvas, parent: Root, visible: true, width: width, height: height})
	m.nodes[Root].children = []NodeRef{Canvas}
	return m
}

func (m *Memory) add(n *node) {
	m.nodes[n.ref] = n
	m.order = append(m.order, n.ref)
}

func (m *Memory) get(ref NodeRef) (*node, error) {
	n, ok := m.nodes[ref]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ref, ErrUnknownNode)
	}
	return n, nil
}

// origin returns the screen position that children of ref are laid out
// from.
func (m *Memory) origin(ref NodeRef) geometry.Point {
	var p geometry.Point
	for n := m.nodes[ref]; n != nil; n = m.nodes[n.parent] {
		p.X += n.left + n.tx
		p.Y += n.top + n.ty
		if n.parent == "" {
			break
		}
	}
	return p
}

func (m *Memory) screenRect(n *node) geometry.Rect {
	o := geometry.Point{}
	if n.parent != "" {
		o = m.origin(n.parent)
	}
	return geometry.Rect{Left: o.X + n.left + n.tx, Top: o.Y + n.top + n.ty, Width: n.width, Height: n.height}
}

// Measure implements [Surface].
func (m *Memory) Measure(ref NodeRef) (geometry.Rect, error) {
	n, err := m.get(ref)
	if err != nil {
		return geometry.Rect{}, err
	}
	r := m.screenRect(n)
	pan := m.origin(Canvas)
	return r.Translate(-pan.X, -pan.Y), nil
}

// ApplyStyle implements [Surface].
func (m *Memory) ApplyStyle(ref NodeRef, p Patch) error {
	n, err := m.get(ref)
	if err != nil {
		return err
	}
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&n.left, p.Left)
	set(&n.top, p.Top)
	set(&n.width, p.Width)
	set(&n.height, p.Height)
	set(&n.tx, p.TranslateX)
	set(&n.ty, p.TranslateY)
	if p.Visible != nil {
		n.visible = *p.Visible
	}
	if p.Content != nil {
		n.markup.Content = *p.Content
	}
	return nil
}

// CreateNode implements [Surface].
func (m *Memory) CreateNode(mk Markup) (NodeRef, error) {
	m.seq++
	ref := NodeRef(fmt.Sprintf("n%d", m.seq))
	m.add(&node{ref: ref, markup: mk, width: mk.Width, height: mk.Height, visible: true})
	return ref, nil
}

// AppendChild implements [Surface].
func (m *Memory) AppendChild(parent, child NodeRef) error {
	p, err := m.get(parent)
	if err != nil {
		return err
	}
	c, err := m.get(child)
	if err != nil {
		return err
	}
	if child == Root || child == Canvas {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "cannot reparent %s", child)
	}
	for a := p; a != nil; a = m.nodes[a.parent] {
		if a.ref == child {
			return apperrors.New(apperrors.ErrCodeCyclicParent, "cannot append %s under its own descendant %s", child, parent)
		}
		if a.parent == "" {
			break
		}
	}
	m.detach(c)
	c.parent = parent
	p.children = append(p.children, child)
	return nil
}

func (m *Memory) detach(c *node) {
	if old, ok := m.nodes[c.parent]; ok {
		old.children = slices.DeleteFunc(old.children, func(r NodeRef) bool { return r == c.ref })
	}
	c.parent = ""
}

// RemoveNode implements [Surface].
func (m *Memory) RemoveNode(ref NodeRef) error {
	if ref == Root || ref == Canvas {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "cannot remove %s", ref)
	}
	n, err := m.get(ref)
	if err != nil {
		return err
	}
	m.detach(n)
	var drop func(r NodeRef)
	drop = func(r NodeRef) {
		if c, ok := m.nodes[r]; ok {
			for _, k := range c.children {
				drop(k)
			}
			delete(m.nodes, r)
		}
	}
	drop(ref)
	m.order = slices.DeleteFunc(m.order, func(r NodeRef) bool {
		_, ok := m.nodes[r]
		return !ok
	})
	return nil
}

// attached reports whether n hangs under the root.
func (m *Memory) attached(n *node) bool {
	for steps := 0; steps <= len(m.nodes); steps++ {
		if n.ref == Root {
			return true
		}
		p, ok := m.nodes[n.parent]
		if !ok {
			return false
		}
		n = p
	}
	return false
}

// Node returns a view of one node.
func (m *Memory) Node(ref NodeRef) (NodeInfo, bool) {
	n, ok := m.nodes[ref]
	if !ok {
		return NodeInfo{}, false
	}
	return m.info(n), true
}

func (m *Memory) info(n *node) NodeInfo {
	return NodeInfo{Ref: n.ref, Parent: n.parent, Markup: n.markup, Rect: m.screenRect(n), Visible: n.visible}
}

// Nodes returns attached nodes of the given classes in creation order.
// With no classes, every attached node except root and canvas is returned.
func (m *Memory) Nodes(classes ...string) []NodeInfo {
	var out []NodeInfo
	for _, ref := range m.order {
		n := m.nodes[ref]
		if ref == Root || ref == Canvas || !m.attached(n) {
			continue
		}
		if len(classes) > 0 && !slices.Contains(classes, n.markup.Class) {
			continue
		}
		out = append(out, m.info(n))
	}
	return out
}

// Pan returns the canvas translation.
func (m *Memory) Pan() geometry.Point {
	c := m.nodes[Canvas]
	return geometry.Point{X: c.tx, Y: c.ty}
}

// HitTest implements [HitTester]. Blocks and palette items are tested
// topmost first; a miss inside the canvas yields a canvas target.
func (m *Memory) HitTest(x, y float64) Target {
	pt := geometry.Point{X: x, Y: y}
	for i := len(m.order) - 1; i >= 0; i-- {
		n := m.nodes[m.order[i]]
		if !n.visible || !m.attached(n) || !m.screenRect(n).Contains(pt) {
			continue
		}
		switch n.markup.Class {
		case ClassBlock:
			return Target{Kind: TargetBlock, Ref: n.ref, BlockID: n.markup.BlockID}
		case ClassPalette:
			return Target{Kind: TargetPalette, Ref: n.ref}
		}
	}
	c := m.nodes[Canvas]
	if (geometry.Rect{Width: c.width, Height: c.height}).Contains(pt) {
		return Target{Kind: TargetCanvas, Ref: Canvas}
	}
	return Target{Kind: TargetNone}
}

var (
	_ Surface   = (*Memory)(nil)
	_ HitTester = (*Memory)(nil)
)
