package blocktree

// ValidateBlocks checks a block set for negative or duplicate ids, parents
// missing from the set, and parent chains that never reach a root.
// It does not modify blocks.
func ValidateBlocks(blocks []Block) error {
	parent := make(map[int]int, len(blocks))
	for _, b := range blocks {
		if b.ID < 0 {
			return blockErr(b.ID, ErrInvalidID)
		}
		if _, dup := parent[b.ID]; dup {
			return blockErr(b.ID, ErrDuplicateID)
		}
		parent[b.ID] = b.Parent
	}
	for _, b := range blocks {
		if b.Parent == NoParent {
			continue
		}
		if _, ok := parent[b.Parent]; !ok {
			return blockErr(b.ID, ErrDanglingParent)
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[int]int, len(blocks))
	for _, b := range blocks {
		// Walk the chain, marking it visiting, until a root or a known-good
		// block. Meeting a visiting block closes a cycle.
		var chain []int
		for id := b.ID; id != NoParent && state[id] != done; id = parent[id] {
			if state[id] == visiting {
				return blockErr(b.ID, ErrCyclicParent)
			}
			state[id] = visiting
			chain = append(chain, id)
		}
		for _, id := range chain {
			state[id] = done
		}
	}
	return nil
}
