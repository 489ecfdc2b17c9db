package blocktree_test

import (
	"fmt"

	"github.com/matzehuels/stackflow/pkg/blocktree"
)

func ExampleTree_basic() {
	// start → check → done
	t := blocktree.New()
	_ = t.Add(blocktree.Block{ID: t.NextID(), Parent: blocktree.NoParent})
	_ = t.Add(blocktree.Block{ID: t.NextID(), Parent: 0})
	_ = t.Add(blocktree.Block{ID: t.NextID(), Parent: 1})

	root, _ := t.RootOf(2)
	fmt.Println("Blocks:", t.Len())
	fmt.Println("Root of 2:", root.ID)
	fmt.Println("Next id:", t.NextID())
	// Output:
	// Blocks: 3
	// Root of 2: 0
	// Next id: 3
}

func ExampleTree_Descendants() {
	t := blocktree.New()
	_ = t.Add(blocktree.Block{ID: 0, Parent: blocktree.NoParent})
	_ = t.Add(blocktree.Block{ID: 1, Parent: 0})
	_ = t.Add(blocktree.Block{ID: 2, Parent: 0})
	_ = t.Add(blocktree.Block{ID: 3, Parent: 1})

	for _, b := range t.Descendants(0) {
		fmt.Print(b.ID, " ")
	}
	fmt.Println()
	// Output:
	// 1 2 3
}

func ExampleValidateBlocks() {
	err := blocktree.ValidateBlocks([]blocktree.Block{
		{ID: 0, Parent: blocktree.NoParent},
		{ID: 1, Parent: 9},
	})
	fmt.Println(err)
	// Output:
	// block 1: DANGLING_PARENT: parent block does not exist
}
