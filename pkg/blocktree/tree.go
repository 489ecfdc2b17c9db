package blocktree

import (
	"slices"
)

// Tree is an id-indexed forest of blocks that remembers insertion order.
//
// The zero value is not usable; use [New]. A Tree is not safe for
// concurrent use.
type Tree struct {
	blocks  map[int]*Block
	order   []int
	highest int // highest id ever held, -1 when none
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{blocks: make(map[int]*Block), highest: -1}
}

// Len returns the number of blocks.
func (t *Tree) Len() int { return len(t.order) }

// Add appends b to the tree. It fails with ErrDuplicateID if b.ID is
// already present and ErrInvalidID if it is negative. Add does not check
// that b.Parent exists; bulk callers validate the full set instead.
func (t *Tree) Add(b Block) error {
	if b.ID < 0 {
		return blockErr(b.ID, ErrInvalidID)
	}
	if _, ok := t.blocks[b.ID]; ok {
		return blockErr(b.ID, ErrDuplicateID)
	}
	t.insert(b)
	return nil
}

func (t *Tree) insert(b Block) {
	nb := b.Clone()
	t.blocks[b.ID] = &nb
	t.order = append(t.order, b.ID)
	t.highest = max(t.highest, b.ID)
}

// Remove deletes the block with the given id. It does not touch the
// block's children; removing an interior block without first removing or
// reparenting its descendants leaves them dangling.
func (t *Tree) Remove(id int) error {
	if _, ok := t.blocks[id]; !ok {
		return blockErr(id, ErrNotFound)
	}
	delete(t.blocks, id)
	t.order = slices.DeleteFunc(t.order, func(o int) bool { return o == id })
	return nil
}

// Find returns the block with the given id. The pointer refers to the
// stored block, so position and width updates are visible to the tree.
func (t *Tree) Find(id int) (*Block, error) {
	b, ok := t.blocks[id]
	if !ok {
		return nil, blockErr(id, ErrNotFound)
	}
	return b, nil
}

// Has reports whether id is present.
func (t *Tree) Has(id int) bool {
	_, ok := t.blocks[id]
	return ok
}

// Children returns the blocks whose Parent is id, in insertion order.
func (t *Tree) Children(id int) []*Block {
	var out []*Block
	for _, o := range t.order {
		if b := t.blocks[o]; b.Parent == id {
			out = append(out, b)
		}
	}
	return out
}

// HasChildren reports whether any block has id as its parent.
func (t *Tree) HasChildren(id int) bool {
	for _, b := range t.blocks {
		if b.Parent == id {
			return true
		}
	}
	return false
}

// NextID returns the id for the next new block: 0 for a fresh tree,
// otherwise one past the highest id the tree has held.
func (t *Tree) NextID() int { return t.highest + 1 }

// Blocks returns the stored blocks in insertion order.
func (t *Tree) Blocks() []*Block {
	out := make([]*Block, len(t.order))
	for i, id := range t.order {
		out[i] = t.blocks[id]
	}
	return out
}

// IDs returns all block ids in insertion order.
func (t *Tree) IDs() []int { return slices.Clone(t.order) }

// Roots returns the blocks without a parent, in insertion order.
func (t *Tree) Roots() []*Block {
	var out []*Block
	for _, id := range t.order {
		if b := t.blocks[id]; b.IsRoot() {
			out = append(out, b)
		}
	}
	return out
}

// Descendants returns every block below id in breadth-first order,
// excluding id itself. Blocks are visited at most once, so a malformed
// cyclic chain cannot loop forever.
func (t *Tree) Descendants(id int) []*Block {
	visited := map[int]bool{id: true}
	queue := []int{id}
	var out []*Block
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range t.Children(cur) {
			if visited[c.ID] {
				continue
			}
			visited[c.ID] = true
			out = append(out, c)
			queue = append(queue, c.ID)
		}
	}
	return out
}

// Ancestors returns the parent chain of id from its parent up to its root.
// It fails with ErrCyclicParent when the chain exceeds the tree size and
// ErrDanglingParent when it leaves the tree.
func (t *Tree) Ancestors(id int) ([]*Block, error) {
	b, err := t.Find(id)
	if err != nil {
		return nil, err
	}
	var out []*Block
	for steps := 0; !b.IsRoot(); steps++ {
		if steps >= len(t.blocks) {
			return nil, blockErr(id, ErrCyclicParent)
		}
		p, ok := t.blocks[b.Parent]
		if !ok {
			return nil, blockErr(b.ID, ErrDanglingParent)
		}
		out = append(out, p)
		b = p
	}
	return out, nil
}

// RootOf returns the root reached by following parents from id.
func (t *Tree) RootOf(id int) (*Block, error) {
	anc, err := t.Ancestors(id)
	if err != nil {
		return nil, err
	}
	if len(anc) == 0 {
		return t.blocks[id], nil
	}
	return anc[len(anc)-1], nil
}

// Snapshot returns deep copies of all blocks in insertion order.
func (t *Tree) Snapshot() []Block {
	out := make([]Block, len(t.order))
	for i, id := range t.order {
		out[i] = t.blocks[id].Clone()
	}
	return out
}

// Clone returns an independent deep copy of the tree, including its id
// high-water mark.
func (t *Tree) Clone() *Tree {
	c := New()
	for _, b := range t.Snapshot() {
		c.insert(b)
	}
	c.highest = t.highest
	return c
}

// ReplaceAll swaps the tree's contents for blocks after validating them.
// On error the tree is unchanged. The id high-water mark is kept, so ids
// used before the replacement are still not reissued.
func (t *Tree) ReplaceAll(blocks []Block) error {
	if err := ValidateBlocks(blocks); err != nil {
		return err
	}
	t.blocks = make(map[int]*Block, len(blocks))
	t.order = t.order[:0]
	for _, b := range blocks {
		t.insert(b)
	}
	return nil
}

// AppendAll adds blocks after the existing ones. The combined set is
// validated first; on error the tree is unchanged.
func (t *Tree) AppendAll(blocks []Block) error {
	combined := append(t.Snapshot(), blocks...)
	if err := ValidateBlocks(combined); err != nil {
		return err
	}
	for _, b := range blocks {
		t.insert(b)
	}
	return nil
}

// Reset removes every block and restarts id allocation at 0.
func (t *Tree) Reset() {
	t.blocks = make(map[int]*Block)
	t.order = nil
	t.highest = -1
}

// Validate checks the structural invariants of the stored blocks.
func (t *Tree) Validate() error {
	return ValidateBlocks(t.Snapshot())
}
