// Package render turns laid-out flowcharts into image files.
//
// # Overview
//
// Rendering is split by diagram style:
//
//   - [chart] draws the chart exactly as laid out: block rectangles,
//     elbow connectors and arrowheads at their computed coordinates
//   - [nodelink] hands the block tree to Graphviz, which lays it out on
//     its own as a top-to-bottom node-link diagram
//
// Both produce SVG. [ToPDF] and [ToPNG] convert any SVG to other formats
// using the external rsvg-convert tool (from librsvg):
//
//	svg := chart.RenderSVG(c)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [chart]: github.com/matzehuels/stackflow/pkg/render/chart
// [nodelink]: github.com/matzehuels/stackflow/pkg/render/nodelink
package render
