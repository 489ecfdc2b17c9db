// Package nodelink renders flowcharts as Graphviz node-link diagrams.
//
// # Overview
//
// Instead of the editor's own layout, Graphviz places the blocks: each
// block becomes a box and each parent link an arrow, ranked top to bottom.
// This is useful for very wide charts and for feeding other tools.
//
// # Usage
//
//	dot := nodelink.ToDOT(blocks, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Options
//
//   - Detailed: node labels list every data field and attribute
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
