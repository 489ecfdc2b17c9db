package flowchart

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/matzehuels/stackflow/pkg/blocktree"
	apperrors "github.com/matzehuels/stackflow/pkg/errors"
)

// Block is the structural record of one block.
type Block struct {
	ID         int               `json:"id" yaml:"id" bson:"id"`
	ParentID   int               `json:"parentId" yaml:"parentId" bson:"parentId"`
	Data       []blocktree.Field `json:"data" yaml:"data" bson:"data"`
	Attributes []blocktree.Field `json:"attributes" yaml:"attributes" bson:"attributes"`
}

// Position is the geometric record of one block. X and Y are its center.
type Position struct {
	ID       int     `json:"id" yaml:"id" bson:"id"`
	X        float64 `json:"x" yaml:"x" bson:"x"`
	Y        float64 `json:"y" yaml:"y" bson:"y"`
	Width    float64 `json:"width" yaml:"width" bson:"width"`
	Height   float64 `json:"height" yaml:"height" bson:"height"`
	ParentID int     `json:"parentId" yaml:"parentId" bson:"parentId"`
}

// Document is a complete exported chart.
type Document struct {
	Blocks    []Block    `json:"blocks" yaml:"blocks" bson:"blocks"`
	Positions []Position `json:"positions" yaml:"positions" bson:"positions"`
}

// FromBlocks builds a document from tree blocks, in the given order.
func FromBlocks(blocks []blocktree.Block) Document {
	doc := Document{
		Blocks:    make([]Block, len(blocks)),
		Positions: make([]Position, len(blocks)),
	}
	for i, b := range blocks {
		doc.Blocks[i] = Block{
			ID:         b.ID,
			ParentID:   b.Parent,
			Data:       nonNil(b.Data),
			Attributes: nonNil(b.Attributes),
		}
		doc.Positions[i] = Position{
			ID:       b.ID,
			X:        b.X,
			Y:        b.Y,
			Width:    b.Width,
			Height:   b.Height,
			ParentID: b.Parent,
		}
	}
	return doc
}

func nonNil(fs []blocktree.Field) []blocktree.Field {
	if fs == nil {
		return []blocktree.Field{}
	}
	return slices.Clone(fs)
}

// ToBlocks merges blocks and positions into tree blocks and validates the
// result. The parent link always comes from the blocks array.
func (d Document) ToBlocks() ([]blocktree.Block, error) {
	index := make(map[int]int, len(d.Blocks))
	out := make([]blocktree.Block, len(d.Blocks))
	for i, b := range d.Blocks {
		if err := validateFields(b); err != nil {
			return nil, err
		}
		index[b.ID] = i
		out[i] = blocktree.Block{
			ID:         b.ID,
			Parent:     b.ParentID,
			Data:       slices.Clone(b.Data),
			Attributes: slices.Clone(b.Attributes),
		}
	}
	if err := blocktree.ValidateBlocks(out); err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(d.Positions))
	for _, p := range d.Positions {
		i, ok := index[p.ID]
		if !ok {
			return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "position for unknown block %d", p.ID)
		}
		if seen[p.ID] {
			return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "duplicate position for block %d", p.ID)
		}
		if p.Width < 0 || p.Height < 0 {
			return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "block %d has a negative size", p.ID)
		}
		seen[p.ID] = true
		out[i].X, out[i].Y = p.X, p.Y
		out[i].Width, out[i].Height = p.Width, p.Height
	}
	return out, nil
}

func validateFields(b Block) error {
	for _, group := range [][]blocktree.Field{b.Data, b.Attributes} {
		for _, f := range group {
			if err := apperrors.ValidateFieldName(f.Name); err != nil {
				return fmt.Errorf("block %d: %w", b.ID, err)
			}
		}
	}
	return nil
}

// Validate reports whether the document can be imported.
func (d Document) Validate() error {
	_, err := d.ToBlocks()
	return err
}

// Empty reports whether the document has no blocks.
func (d Document) Empty() bool { return len(d.Blocks) == 0 }

// Structure returns the blocks sorted by id with nil field lists
// normalized, for comparing documents independent of geometry.
func (d Document) Structure() []Block {
	out := make([]Block, len(d.Blocks))
	for i, b := range d.Blocks {
		b.Data, b.Attributes = nonNil(b.Data), nonNil(b.Attributes)
		out[i] = b
	}
	slices.SortFunc(out, func(a, b Block) int { return cmp.Compare(a.ID, b.ID) })
	return out
}
