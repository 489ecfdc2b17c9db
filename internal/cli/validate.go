package cli

import (
	"context"

	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/stackflow/pkg/errors"
)

// newValidateCmd creates the validate command.
func newValidateCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a chart document for structural errors",
		Long: `Check that a chart document decodes, that every block id is unique,
every parent exists and no block is its own ancestor.

The command exits non-zero and prints the error code when the document is
rejected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), args[0], format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "input format: json or yaml (default: from extension)")

	return cmd
}

func runValidate(ctx context.Context, input, format string) error {
	logger := loggerFromContext(ctx)

	doc, err := readDocument(input, format)
	if err != nil {
		reportInvalid(input, err)
		return err
	}
	blocks, err := doc.ToBlocks()
	if err != nil {
		reportInvalid(input, err)
		return err
	}
	logger.Debug("document decoded", "blocks", len(blocks), "positions", len(doc.Positions))

	roots := 0
	for _, b := range blocks {
		if b.IsRoot() {
			roots++
		}
	}
	printSuccess("%s is valid", input)
	printStats(len(blocks), roots, len(doc.Positions))
	return nil
}

func reportInvalid(input string, err error) {
	code := apperrors.GetCode(err)
	if code == "" {
		printError("%s: %s", input, apperrors.UserMessage(err))
		return
	}
	printError("%s: %s", input, StyleWarning.Render(string(code)))
	printDetail("%s", apperrors.UserMessage(err))
}
