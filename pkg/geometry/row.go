package geometry

// RowWidth returns the horizontal footprint of a row of subtrees with the
// given max widths packed spacingX apart. An empty row has width 0.
func RowWidth(maxWidths []float64, spacingX float64) float64 {
	if len(maxWidths) == 0 {
		return 0
	}
	total := spacingX * float64(len(maxWidths)-1)
	for _, w := range maxWidths {
		total += w
	}
	return total
}

// ChildCenters returns the x-centers of a row of children packed left to
// right and centered as a whole on parentX.
func ChildCenters(parentX float64, maxWidths []float64, spacingX float64) []float64 {
	centers := make([]float64, len(maxWidths))
	left := parentX - RowWidth(maxWidths, spacingX)/2
	for i, w := range maxWidths {
		centers[i] = left + w/2
		left += w + spacingX
	}
	return centers
}

// ChildTop returns the top edge shared by every child of a parent centered
// at parentY. A child of height h is stored with center ChildTop + h/2.
func ChildTop(parentY, parentHeight, spacingY float64) float64 {
	return parentY + parentHeight/2 + spacingY
}
