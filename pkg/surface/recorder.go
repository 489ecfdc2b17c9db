package surface

import (
	"slices"

	"github.com/matzehuels/stackflow/pkg/geometry"
)

// OpKind names a recorded surface mutation.
type OpKind string

const (
	OpCreate OpKind = "create"
	OpStyle  OpKind = "style"
	OpAppend OpKind = "append"
	OpRemove OpKind = "remove"
)

// Op is one recorded mutation. Ref is the node created, styled, appended
// or removed; Parent is set for appends.
type Op struct {
	Kind   OpKind  `json:"op"`
	Ref    NodeRef `json:"ref"`
	Parent NodeRef `json:"parent,omitempty"`
	Markup *Markup `json:"markup,omitempty"`
	Patch  *Patch  `json:"patch,omitempty"`
}

// Recorder wraps a Surface and records every successful mutation.
// Measure is forwarded without being recorded.
type Recorder struct {
	inner Surface
	ops   []Op
	sink  func(Op)
}

// NewRecorder wraps inner. If sink is non-nil it receives each op as it
// is recorded.
func NewRecorder(inner Surface, sink func(Op)) *Recorder {
	return &Recorder{inner: inner, sink: sink}
}

func (r *Recorder) record(op Op) {
	r.ops = append(r.ops, op)
	if r.sink != nil {
		r.sink(op)
	}
}

// Measure implements [Surface].
func (r *Recorder) Measure(ref NodeRef) (geometry.Rect, error) {
	return r.inner.Measure(ref)
}

// ApplyStyle implements [Surface].
func (r *Recorder) ApplyStyle(ref NodeRef, p Patch) error {
	if err := r.inner.ApplyStyle(ref, p); err != nil {
		return err
	}
	r.record(Op{Kind: OpStyle, Ref: ref, Patch: &p})
	return nil
}

// CreateNode implements [Surface].
func (r *Recorder) CreateNode(m Markup) (NodeRef, error) {
	ref, err := r.inner.CreateNode(m)
	if err != nil {
		return "", err
	}
	r.record(Op{Kind: OpCreate, Ref: ref, Markup: &m})
	return ref, nil
}

// AppendChild implements [Surface].
func (r *Recorder) AppendChild(parent, child NodeRef) error {
	if err := r.inner.AppendChild(parent, child); err != nil {
		return err
	}
	r.record(Op{Kind: OpAppend, Ref: child, Parent: parent})
	return nil
}

// RemoveNode implements [Surface].
func (r *Recorder) RemoveNode(ref NodeRef) error {
	if err := r.inner.RemoveNode(ref); err != nil {
		return err
	}
	r.record(Op{Kind: OpRemove, Ref: ref})
	return nil
}

// HitTest forwards to the wrapped surface when it supports hit testing.
func (r *Recorder) HitTest(x, y float64) Target {
	if h, ok := r.inner.(HitTester); ok {
		return h.HitTest(x, y)
	}
	return Target{Kind: TargetNone}
}

// Ops returns a copy of the recorded ops.
func (r *Recorder) Ops() []Op { return slices.Clone(r.ops) }

// Count returns how many ops of kind were recorded.
func (r *Recorder) Count(kind OpKind) int {
	n := 0
	for _, op := range r.ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Reset discards recorded ops.
func (r *Recorder) Reset() { r.ops = nil }

var (
	_ Surface   = (*Recorder)(nil)
	_ HitTester = (*Recorder)(nil)
)
