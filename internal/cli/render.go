package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackflow/pkg/engine"
	"github.com/matzehuels/stackflow/pkg/render"
	"github.com/matzehuels/stackflow/pkg/render/chart"
	"github.com/matzehuels/stackflow/pkg/render/nodelink"
)

const (
	styleChart = "chart" // the laid-out flowchart as drawn by the engine
	styleDOT   = "dot"   // a Graphviz node-link diagram of the same tree
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string  // output file; its extension picks the format
	format   string  // svg, png, pdf or dot; overrides the extension
	style    string  // chart or dot
	scale    float64 // PNG scale factor
	padding  float64 // frame padding around the chart
	title    string  // SVG title element
	noLabels bool    // omit block labels
	detailed bool    // show every field in dot labels
	spacingX float64
	spacingY float64
}

// newRenderCmd creates the render command.
//
// The chart style draws blocks and elbow connectors exactly where the
// layout placed them. The dot style hands the same tree to Graphviz.
func newRenderCmd() *cobra.Command {
	opts := renderOpts{style: styleChart, scale: 1, padding: 20}

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a chart document to SVG, PNG or PDF",
		Long: `Lay out a chart document and draw it.

The output format follows the --output extension (.svg, .png, .pdf, or .dot
with --style dot) unless --format is given. PNG and PDF need rsvg-convert.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateStyle(opts.style); err != nil {
				return err
			}
			ctx := withSpacingFlags(cmd, opts.spacingX, opts.spacingY)
			return runRender(ctx, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with .svg)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: svg, png, pdf, dot (default: from extension)")
	cmd.Flags().StringVar(&opts.style, "style", opts.style, "drawing style: chart (default), dot")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().Float64Var(&opts.padding, "padding", opts.padding, "padding around the chart (chart style)")
	cmd.Flags().StringVar(&opts.title, "title", "", "SVG title (chart style)")
	cmd.Flags().BoolVar(&opts.noLabels, "no-labels", false, "omit block labels (chart style)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show every field (dot style)")
	cmd.Flags().Float64Var(&opts.spacingX, "spacing-x", 0, "horizontal gap between siblings (overrides config)")
	cmd.Flags().Float64Var(&opts.spacingY, "spacing-y", 0, "vertical gap between levels (overrides config)")

	return cmd
}

func validateStyle(s string) error {
	if s != styleChart && s != styleDOT {
		return fmt.Errorf("invalid style: %s (must be 'chart' or 'dot')", s)
	}
	return nil
}

// outputPath derives the output path from the input when none is given.
func outputPath(output, input, format string) string {
	if output != "" {
		return output
	}
	if format == "" {
		format = string(render.FormatSVG)
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	if input == stdio {
		base = "chart"
	}
	return base + "." + format
}

// outputFormat resolves the format name from the flag or the extension.
func outputFormat(path, format string) string {
	if format != "" {
		return strings.ToLower(format)
	}
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

func runRender(ctx context.Context, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	e, err := loadChart(ctx, input, "")
	if err != nil {
		return err
	}
	if e.Len() == 0 {
		printWarning("%s has no blocks", input)
	}
	logger.Debugf("Loaded chart: %d blocks, %d connectors", e.Len(), len(e.Connectors()))

	out := outputPath(opts.output, input, opts.format)
	name := outputFormat(out, opts.format)

	var data []byte
	switch opts.style {
	case styleDOT:
		data, err = renderDOT(ctx, e, name, opts)
	default:
		data, err = renderChart(ctx, e, name, opts)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	prog.done(fmt.Sprintf("Rendered %d blocks", e.Len()))
	printFile(out)
	return nil
}

func renderChart(ctx context.Context, e *engine.Engine, name string, opts renderOpts) ([]byte, error) {
	f, err := render.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	c := chart.Chart{Blocks: e.Blocks(), Connectors: e.Connectors()}
	svgOpts := []chart.SVGOption{chart.WithPadding(opts.padding)}
	if opts.title != "" {
		svgOpts = append(svgOpts, chart.WithTitle(opts.title))
	}
	if opts.noLabels {
		svgOpts = append(svgOpts, chart.WithoutLabels())
	}

	switch f {
	case render.FormatPNG:
		return withSpinner(ctx, "Converting to PNG...", func() ([]byte, error) {
			return chart.RenderPNG(ctx, c, opts.scale, svgOpts...)
		})
	case render.FormatPDF:
		return withSpinner(ctx, "Converting to PDF...", func() ([]byte, error) {
			return chart.RenderPDF(ctx, c, svgOpts...)
		})
	default:
		return chart.RenderSVG(c, svgOpts...), nil
	}
}

func renderDOT(ctx context.Context, e *engine.Engine, name string, opts renderOpts) ([]byte, error) {
	dot := nodelink.ToDOT(e.Blocks(), nodelink.Options{Detailed: opts.detailed})
	if name == "dot" || name == "gv" {
		return []byte(dot), nil
	}
	f, err := render.ParseFormat(name)
	if err != nil {
		return nil, err
	}

	switch f {
	case render.FormatPNG:
		return withSpinner(ctx, "Rendering PNG with Graphviz...", func() ([]byte, error) {
			return nodelink.RenderPNG(ctx, dot, opts.scale)
		})
	case render.FormatPDF:
		return withSpinner(ctx, "Rendering PDF with Graphviz...", func() ([]byte, error) {
			return nodelink.RenderPDF(ctx, dot)
		})
	default:
		return nodelink.RenderSVG(ctx, dot)
	}
}
