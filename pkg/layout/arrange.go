package layout

import (
	"github.com/matzehuels/stackflow/pkg/blocktree"
	"github.com/matzehuels/stackflow/pkg/geometry"
)

// widths recomputes ChildWidth for every block under id and returns id's
// MaxWidth. Each block is visited once.
func widths(t *blocktree.Tree, id int, sx float64, seen map[int]bool) float64 {
	b, err := t.Find(id)
	if err != nil || seen[id] {
		return 0
	}
	seen[id] = true
	kids := t.Children(id)
	maxW := make([]float64, len(kids))
	for i, c := range kids {
		maxW[i] = widths(t, c.ID, sx, seen)
	}
	b.ChildWidth = geometry.RowWidth(maxW, sx)
	return b.MaxWidth()
}

// rowWidth recomputes ChildWidth of id from its direct children's cached
// widths.
func rowWidth(t *blocktree.Tree, id int, sx float64) {
	b, err := t.Find(id)
	if err != nil {
		return
	}
	kids := t.Children(id)
	maxW := make([]float64, len(kids))
	for i, c := range kids {
		maxW[i] = c.MaxWidth()
	}
	b.ChildWidth = geometry.RowWidth(maxW, sx)
}

// propagate recomputes ChildWidth for id and each of its ancestors.
func propagate(t *blocktree.Tree, id int, sx float64) error {
	anc, err := t.Ancestors(id)
	if err != nil {
		return err
	}
	rowWidth(t, id, sx)
	for _, a := range anc {
		rowWidth(t, a.ID, sx)
	}
	return nil
}

// place positions every block below id, keeping id where it is.
func place(t *blocktree.Tree, id int, sp geometry.Spacing, seen map[int]bool) {
	b, err := t.Find(id)
	if err != nil || seen[id] {
		return
	}
	seen[id] = true
	kids := t.Children(id)
	if len(kids) == 0 {
		return
	}
	maxW := make([]float64, len(kids))
	for i, c := range kids {
		maxW[i] = c.MaxWidth()
	}
	top := geometry.ChildTop(b.Y, b.Height, sp.Y)
	for i, x := range geometry.ChildCenters(b.X, maxW, sp.X) {
		kids[i].X = x
		kids[i].Y = top + kids[i].Height/2
		place(t, kids[i].ID, sp, seen)
	}
}

// arrange recomputes widths and positions for the tree rooted at root.
func arrange(t *blocktree.Tree, root int, sp geometry.Spacing) {
	widths(t, root, sp.X, map[int]bool{})
	place(t, root, sp, map[int]bool{})
}
