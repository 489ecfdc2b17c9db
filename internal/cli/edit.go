package cli

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackflow/pkg/flowchart"
)

// newEditCmd creates the edit command, an interactive terminal editor.
func newEditCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "edit <file>",
		Short: "Edit a chart by dragging blocks in the terminal",
		Long: `Open a chart document in a mouse-driven terminal editor. A missing file
starts an empty chart.

Drag a palette item onto the canvas to place the first block, or next to an
existing block to attach it as a child. Drag a block to move it with its
subtree; drag empty canvas to pan.

Keys: s save, d delete the block under the pointer, esc cancel a drag,
q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = args[0]
			}
			return runEdit(cmd.Context(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "save to this file instead of the input")

	return cmd
}

func runEdit(ctx context.Context, input, output string) error {
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)

	doc, err := flowchart.ReadFile(input)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("starting a new chart", "file", input)
		doc = emptyDocument()
	case err != nil:
		return err
	}

	// The alternate screen owns the terminal until the editor exits, so
	// engine logs are held back and printed afterwards.
	var logs bytes.Buffer
	defer func() { _, _ = os.Stderr.Write(logs.Bytes()) }()

	save := func(d flowchart.Document) error {
		return saveLaidOut(ctx, output, d)
	}
	m, err := newEditorModel(cfg.Editor, doc, newLogger(&logs, logger.GetLevel()), save)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}
	if m.saved {
		printSuccess("Saved %d blocks", m.engine.Len())
		printFile(output)
	}
	if m.dirty {
		printWarning("Unsaved changes were discarded")
	}
	return nil
}

// saveLaidOut lays the chart structure out in document units and writes
// it to path.
func saveLaidOut(ctx context.Context, path string, structure flowchart.Document) error {
	e, err := newEngine(ctx)
	if err != nil {
		return err
	}
	if err := e.Import(structure); err != nil {
		return err
	}
	doc, ok := e.Export()
	if !ok {
		doc = emptyDocument()
	}
	return writeDocument(os.Stdout, path, "", doc)
}
