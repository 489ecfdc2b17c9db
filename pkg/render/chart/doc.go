// Package chart renders a laid-out flowchart as SVG.
//
// The drawing uses the coordinates the layout computed: each block is a
// rounded rectangle centered on its (X, Y), and each connector is the
// elbow path from [connector.Route] with its arrowhead. The frame is the
// bounding box of everything drawn plus a padding.
//
//	c := chart.Chart{Blocks: e.Blocks(), Connectors: e.Connectors()}
//	svg := chart.RenderSVG(c, chart.WithPadding(40))
//
// Block labels come from [blocktree.Block.Label] and are shrunk or
// truncated to fit the block.
//
// [connector.Route]: github.com/matzehuels/stackflow/pkg/connector.Route
// [blocktree.Block.Label]: github.com/matzehuels/stackflow/pkg/blocktree.Block.Label
package chart
