package cli

import (
	"context"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackflow/pkg/buildinfo"
	"github.com/matzehuels/stackflow/pkg/config"
)

// Execute runs the stackflow CLI until the command finishes or ctx is
// cancelled.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// Example:
//
//	func main() {
//	    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	    defer stop()
//	    if err := cli.Execute(ctx); err != nil {
//	        os.Exit(1)
//	    }
//	}
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:           appName,
		Short:         "Stackflow lays out and edits block-tree flowcharts",
		Long:          `Stackflow keeps flowcharts of parent/child blocks laid out as centered trees. It lays out and renders chart documents, edits them by dragging blocks in the terminal, and serves charts over HTTP.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			logger := newLogger(cmd.ErrOrStderr(), level)

			cfg, err := config.LoadOrDefault(configPath)
			if err != nil {
				return err
			}
			logger.Debug("configuration loaded", "path", configPath, "store", cfg.Store.Backend)

			ctx := withLogger(cmd.Context(), logger)
			cmd.SetContext(withConfig(ctx, cfg))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/stackflow/config.toml)")

	root.AddCommand(newLayoutCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newEditCmd())
	root.AddCommand(newChartsCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newCompletionCmd())

	return root
}
