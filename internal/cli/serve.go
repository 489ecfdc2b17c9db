package cli

import (
	"context"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackflow/internal/server"
	"github.com/matzehuels/stackflow/pkg/buildinfo"
	"github.com/matzehuels/stackflow/pkg/observability"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string   // listen address; overrides [server] addr
	backend string   // store backend; overrides [store] backend
	origins []string // extra origins allowed to open sessions
}

// newServeCmd creates the serve command, which runs the chart API until
// interrupted.
func newServeCmd() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chart HTTP and WebSocket API",
		Long: `Serve the chart API over HTTP.

Charts are kept in the configured store. Interactive editing sessions are
opened with a WebSocket upgrade on /api/charts/{id}/session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default: from config, :8080)")
	cmd.Flags().StringVar(&opts.backend, "store", "", "store backend: memory, file, sqlite, redis, mongo")
	cmd.Flags().StringSliceVar(&opts.origins, "allow-origin", nil, "additional origins allowed to open editing sessions")

	return cmd
}

func runServe(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	if opts.backend != "" {
		cfg.Store.Backend = opts.backend
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.Debug("starting server", "build", buildinfo.String())

	observability.SetHTTPHooks(&observability.LogHTTPHooks{Logger: logger})
	observability.SetLayoutHooks(observability.NewLogLayoutHooks(logger))
	defer observability.Reset()

	st, err := openStore(withConfig(ctx, cfg))
	if err != nil {
		return err
	}
	defer st.Close()

	srv := server.New(st, server.Options{
		Spacing:     cfg.Spacing(),
		Viewport:    cfg.Viewport(),
		Logger:      logger,
		AllowOrigin: originMatcher(opts.origins),
	})
	printInfo("Serving the chart API")
	printKeyValue("address", cfg.Server.Addr)
	printKeyValue("store", cfg.Store.Backend)
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

// originMatcher accepts the listed origins by host, plus requests without
// an Origin header. With none listed it returns nil, leaving the
// same-host default in place.
func originMatcher(origins []string) func(string) bool {
	if len(origins) == 0 {
		return nil
	}
	hosts := make(map[string]bool, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			hosts[u.Host] = true
		} else {
			hosts[o] = true
		}
	}
	return func(origin string) bool {
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return hosts[u.Host]
	}
}
