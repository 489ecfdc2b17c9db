package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// layoutOpts holds the command-line flags for the layout command.
type layoutOpts struct {
	output    string // output file; stdout if empty
	inFormat  string // input format override: json or yaml
	outFormat string // output format override: json or yaml
	spacingX  float64
	spacingY  float64
}

// newLayoutCmd creates the layout command, which reads a chart document,
// arranges every tree and writes the document back with fresh positions.
func newLayoutCmd() *cobra.Command {
	var opts layoutOpts

	cmd := &cobra.Command{
		Use:   "layout <file>",
		Short: "Compute block positions for a chart document",
		Long: `Read a chart document, lay out every tree with the configured spacing
and write the document with recomputed positions.

Use "-" to read from stdin. Without --output the result goes to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withSpacingFlags(cmd, opts.spacingX, opts.spacingY)
			return runLayout(ctx, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&opts.inFormat, "input-format", "", "input format: json or yaml (default: from extension)")
	cmd.Flags().StringVarP(&opts.outFormat, "format", "f", "", "output format: json or yaml (default: from extension)")
	cmd.Flags().Float64Var(&opts.spacingX, "spacing-x", 0, "horizontal gap between siblings (overrides config)")
	cmd.Flags().Float64Var(&opts.spacingY, "spacing-y", 0, "vertical gap between levels (overrides config)")

	return cmd
}

// withSpacingFlags returns the command context with spacing overrides
// applied to the loaded configuration. Unset flags keep the config value.
func withSpacingFlags(cmd *cobra.Command, x, y float64) context.Context {
	ctx := cmd.Context()
	cfg := configFromContext(ctx)
	if cmd.Flags().Changed("spacing-x") {
		cfg.Layout.SpacingX = x
	}
	if cmd.Flags().Changed("spacing-y") {
		cfg.Layout.SpacingY = y
	}
	return withConfig(ctx, cfg)
}

func runLayout(ctx context.Context, input string, opts layoutOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	e, err := loadChart(ctx, input, opts.inFormat)
	if err != nil {
		return err
	}
	doc, ok := e.Export()
	if !ok {
		logger.Warn("chart is empty", "input", input)
		doc = emptyDocument()
	}
	if err := writeDocument(os.Stdout, opts.output, opts.outFormat, doc); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Laid out %d blocks", e.Len()))

	if opts.output != "" && opts.output != stdio {
		printFile(opts.output)
		printNextStep("Render it", fmt.Sprintf("%s render %s", appName, opts.output))
	}
	return nil
}
