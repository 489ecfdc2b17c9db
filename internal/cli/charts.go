package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/stackflow/pkg/errors"
	"github.com/matzehuels/stackflow/pkg/store"
)

// newChartsCmd creates the charts command group for the configured store.
func newChartsCmd() *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "charts",
		Short: "Manage stored charts",
		Long: `List, fetch, store and delete charts in the configured store.

The backend comes from the [store] section of the config file and can be
overridden with --store.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			if backend != "" {
				cfg := configFromContext(cmd.Context())
				cfg.Store.Backend = backend
				cmd.SetContext(withConfig(cmd.Context(), cfg))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&backend, "store", "", "store backend: memory, file, sqlite, redis, mongo")

	cmd.AddCommand(newChartsListCmd())
	cmd.AddCommand(newChartsGetCmd())
	cmd.AddCommand(newChartsPutCmd())
	cmd.AddCommand(newChartsDeleteCmd())

	return cmd
}

// openStore opens the configured store. Callers must close it.
func openStore(ctx context.Context) (store.Store, error) {
	cfg := configFromContext(ctx)
	opts := cfg.StoreOptions()
	loggerFromContext(ctx).Debug("opening store", "backend", opts.Backend)
	return store.Open(ctx, opts)
}

func newChartsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored charts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			charts, err := st.List(ctx)
			if err != nil {
				return err
			}
			if len(charts) == 0 {
				printInfo("No charts stored")
				return nil
			}
			fmt.Println(chartTable(charts, time.Now()))
			return nil
		},
	}
}

// chartTable renders summaries as a bordered table.
func chartTable(charts []store.Summary, now time.Time) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, len(charts))
	for i, c := range charts {
		name := c.Name
		if name == "" {
			name = "—"
		}
		rows[i] = []string{c.ID, name, fmt.Sprintf("%d", c.Blocks), formatRelativeTime(c.UpdatedAt, now)}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Blocks", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorDim)
			case col == 2:
				return StyleNumber
			}
			return StyleValue
		})
	return t.Render()
}

// formatRelativeTime formats t relative to now, e.g. "5m ago".
func formatRelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
	return t.Format("2006-01-02")
}

func newChartsGetCmd() *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Print a stored chart document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			c, err := st.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if err := writeDocument(os.Stdout, output, format, c.Document); err != nil {
				return err
			}
			if output != "" && output != stdio {
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json or yaml (default: from extension)")

	return cmd
}

func newChartsPutCmd() *cobra.Command {
	var id, name string

	cmd := &cobra.Command{
		Use:   "put <file>",
		Short: "Lay out a chart document and store it",
		Long: `Lay out a chart document and store it. Without --id a new chart is
created; with --id an existing chart is replaced and keeps its creation time.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChartsPut(cmd.Context(), args[0], id, name)
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "chart ID to replace")
	cmd.Flags().StringVar(&name, "name", "", "chart name")

	return cmd
}

func runChartsPut(ctx context.Context, input, id, name string) error {
	e, err := loadChart(ctx, input, "")
	if err != nil {
		return err
	}
	doc, ok := e.Export()
	if !ok {
		doc = emptyDocument()
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	c := &store.Chart{ID: id, Name: name, Document: doc}
	if id != "" {
		prev, err := st.Get(ctx, id)
		switch {
		case err == nil:
			c.CreatedAt = prev.CreatedAt
			if c.Name == "" {
				c.Name = prev.Name
			}
		case !apperrors.Is(err, apperrors.ErrCodeNotFound):
			return err
		}
	}
	if err := st.Put(ctx, c); err != nil {
		return err
	}
	printSuccess("Stored %s", StyleHighlight.Render(c.ID))
	printDetail("%d blocks", len(doc.Blocks))
	return nil
}

func newChartsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Delete(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Deleted %s", args[0])
			return nil
		},
	}
}
