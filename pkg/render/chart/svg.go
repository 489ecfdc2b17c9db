package chart

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"

	"github.com/matzehuels/stackflow/pkg/blocktree"
	"github.com/matzehuels/stackflow/pkg/connector"
	"github.com/matzehuels/stackflow/pkg/geometry"
)

const chartCSS = `
    .block { fill: #ffffff; stroke: #217ce8; stroke-width: 2; }
    .block-text { fill: #393c44; font-family: Helvetica, Arial, sans-serif; }
    .arrow { fill: none; stroke: #c5ccd0; stroke-width: 2; }
    .arrowhead { fill: #c5ccd0; }`

// Chart is a laid-out chart ready to draw.
type Chart struct {
	Blocks     []blocktree.Block
	Connectors []connector.Path
}

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	padding float64
	labels  bool
	title   string
}

func WithPadding(p float64) SVGOption { return func(r *svgRenderer) { r.padding = p } }
func WithoutLabels() SVGOption        { return func(r *svgRenderer) { r.labels = false } }
func WithTitle(t string) SVGOption    { return func(r *svgRenderer) { r.title = t } }

// Frame returns the area covered by the chart, before padding.
func Frame(c Chart) geometry.Rect {
	var frame geometry.Rect
	for i, b := range c.Blocks {
		if i == 0 {
			frame = b.Box()
			continue
		}
		frame = frame.Union(b.Box())
	}
	if len(c.Blocks) == 0 {
		return frame
	}
	for _, p := range c.Connectors {
		frame = frame.Union(p.Bounds())
	}
	return frame
}

// RenderSVG draws c. An empty chart yields an empty frame of padding size.
func RenderSVG(c Chart, opts ...SVGOption) []byte {
	r := svgRenderer{padding: 20, labels: true}
	for _, opt := range opts {
		opt(&r)
	}

	frame := Frame(c)
	w, h := frame.Width+2*r.padding, frame.Height+2*r.padding
	dx, dy := r.padding-frame.Left, r.padding-frame.Top

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", EscapeXML(r.title))
	}
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", chartCSS)
	fmt.Fprintf(&buf, "  <g transform=\"translate(%s %s)\">\n", num(dx), num(dy))

	paths := slices.Clone(c.Connectors)
	slices.SortFunc(paths, func(a, b connector.Path) int { return cmp.Compare(a.ChildID, b.ChildID) })
	for _, p := range paths {
		renderConnector(&buf, p)
	}

	blocks := slices.Clone(c.Blocks)
	slices.SortFunc(blocks, func(a, b blocktree.Block) int { return cmp.Compare(a.ID, b.ID) })
	for _, b := range blocks {
		renderBlock(&buf, b)
		if r.labels {
			renderText(&buf, b)
		}
	}

	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}

func renderConnector(buf *bytes.Buffer, p connector.Path) {
	fmt.Fprintf(buf, `    <path class="arrow" data-parent="%d" data-child="%d" d="%s"/>`+"\n",
		p.ParentID, p.ChildID, p.D())
	fmt.Fprintf(buf, `    <path class="arrowhead" d="%s"/>`+"\n", p.ArrowD())
}

func renderBlock(buf *bytes.Buffer, b blocktree.Block) {
	fmt.Fprintf(buf, `    <rect id="block-%d" class="block" x="%s" y="%s" width="%s" height="%s" rx="4"/>`+"\n",
		b.ID, num(b.Left()), num(b.Top()), num(b.Width), num(b.Height))
}

func renderText(buf *bytes.Buffer, b blocktree.Block) {
	label := b.Label()
	if label == "" {
		return
	}
	size := FontSize(b.Width, b.Height, len(label))
	fmt.Fprintf(buf, `    <text class="block-text" data-block="%d" x="%s" y="%s" font-size="%.1f" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
		b.ID, num(b.X), num(b.Y), size, EscapeXML(Truncate(label, b.Width, size)))
}
