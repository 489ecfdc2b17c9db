package chart

import (
	"context"

	"github.com/matzehuels/stackflow/pkg/render"
)

// RenderPNG renders c as PNG via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, c Chart, scale float64, opts ...SVGOption) ([]byte, error) {
	return render.ToPNG(ctx, RenderSVG(c, opts...), scale)
}

// RenderPDF renders c as PDF via SVG conversion.
func RenderPDF(ctx context.Context, c Chart, opts ...SVGOption) ([]byte, error) {
	return render.ToPDF(ctx, RenderSVG(c, opts...))
}
