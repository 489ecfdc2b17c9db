package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stackflow/pkg/blocktree"
	"github.com/matzehuels/stackflow/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes every data field and attribute in node labels.
	// When false, only the block label is shown.
	Detailed bool
}

// ToDOT converts blocks to Graphviz DOT. Blocks are emitted in the given
// order, which Graphviz uses to order siblings.
func ToDOT(blocks []blocktree.Block, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, color=\"#217ce8\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=\"#c5ccd0\", arrowsize=0.6];\n")
	buf.WriteString("  splines=ortho;\n")
	buf.WriteString("\n")

	for _, b := range blocks {
		fmt.Fprintf(&buf, "  b%d [label=%q];\n", b.ID, fmtLabel(b, opts.Detailed))
	}

	buf.WriteString("\n")
	for _, b := range blocks {
		if !b.IsRoot() {
			fmt.Fprintf(&buf, "  b%d -> b%d;\n", b.Parent, b.ID)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(b blocktree.Block, detailed bool) string {
	label := b.Label()
	if label == "" {
		label = "#" + strconv.Itoa(b.ID)
	}
	if !detailed {
		return label
	}

	parts := []string{fmt.Sprintf("id: %d", b.ID)}
	for _, f := range b.Data {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Name, f.Value))
	}
	for _, f := range b.Attributes {
		parts = append(parts, fmt.Sprintf("@%s: %s", f.Name, f.Value))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one
// sized in pixels from its viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
