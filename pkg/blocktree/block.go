package blocktree

import (
	"math"
	"slices"

	"github.com/matzehuels/stackflow/pkg/geometry"
)

// NoParent is the Parent value of a root block.
const NoParent = -1

// Field is a named value attached to a block. Data fields carry user
// content; attributes carry host-defined markers such as the block type.
type Field struct {
	Name  string `json:"name" yaml:"name" bson:"name"`
	Value string `json:"value" yaml:"value" bson:"value"`
}

// Block is one placed node of the flowchart.
//
// X and Y are the block's center in canvas space. Width and Height are
// measured once at placement. ChildWidth caches the horizontal footprint
// of the block's children and is 0 for a leaf.
type Block struct {
	ID         int
	Parent     int
	X, Y       float64
	Width      float64
	Height     float64
	ChildWidth float64
	Data       []Field
	Attributes []Field
}

// IsRoot reports whether the block has no parent.
func (b Block) IsRoot() bool { return b.Parent == NoParent }

// MaxWidth returns the wider of the block and its children's row.
func (b Block) MaxWidth() float64 { return math.Max(b.Width, b.ChildWidth) }

// Box returns the block's rectangle.
func (b Block) Box() geometry.Rect {
	return geometry.RectFromCenter(b.X, b.Y, b.Width, b.Height)
}

func (b Block) Left() float64   { return b.X - b.Width/2 }
func (b Block) Top() float64    { return b.Y - b.Height/2 }
func (b Block) Bottom() float64 { return b.Y + b.Height/2 }

// Field returns the value of the named data field.
func (b Block) Field(name string) (string, bool) {
	for _, f := range b.Data {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Label returns a short display text: the "name" or "label" data field,
// else the first data value, else the empty string.
func (b Block) Label() string {
	for _, key := range []string{"name", "label", "title"} {
		if v, ok := b.Field(key); ok && v != "" {
			return v
		}
	}
	if len(b.Data) > 0 {
		return b.Data[0].Value
	}
	return ""
}

// Clone returns a deep copy of b.
func (b Block) Clone() Block {
	b.Data = slices.Clone(b.Data)
	b.Attributes = slices.Clone(b.Attributes)
	return b
}
