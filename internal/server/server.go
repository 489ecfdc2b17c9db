// Package server exposes stored charts over HTTP and runs live editing
// sessions over WebSocket.
//
// Routes:
//
//	GET    /api/health
//	GET    /api/charts
//	POST   /api/charts
//	GET    /api/charts/{id}
//	PUT    /api/charts/{id}
//	DELETE /api/charts/{id}
//	GET    /api/charts/{id}/svg
//	GET    /api/charts/{id}/dot
//	GET    /api/charts/{id}/session
//
// Every document written through the API is laid out before it is stored,
// so stored positions always match what an editor would show.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/stackflow/pkg/geometry"
	"github.com/matzehuels/stackflow/pkg/layout"
	"github.com/matzehuels/stackflow/pkg/store"
)

// Options configures a Server.
type Options struct {
	Spacing  geometry.Spacing
	Viewport layout.Viewport
	Logger   *log.Logger
	// AllowOrigin reports whether a WebSocket upgrade from origin is
	// accepted. Nil accepts same-host requests only.
	AllowOrigin func(origin string) bool
}

// Server serves the chart API.
type Server struct {
	store    store.Store
	spacing  geometry.Spacing
	view     layout.Viewport
	logger   *log.Logger
	upgrader websocket.Upgrader
	router   chi.Router
}

// New returns a server over st.
func New(st store.Store, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Spacing == (geometry.Spacing{}) {
		opts.Spacing = geometry.DefaultSpacing()
	}
	if opts.Viewport == (layout.Viewport{}) {
		opts.Viewport = layout.DefaultViewport()
	}
	s := &Server{
		store:   st,
		spacing: opts.Spacing,
		view:    opts.Viewport,
		logger:  opts.Logger,
	}
	if opts.AllowOrigin != nil {
		s.upgrader.CheckOrigin = func(r *http.Request) bool {
			return opts.AllowOrigin(r.Header.Get("Origin"))
		}
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/api/health", s.handleHealth)
	r.Route("/api/charts", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Put("/", s.handleUpdate)
			r.Delete("/", s.handleDelete)
			r.Get("/svg", s.handleSVG)
			r.Get("/dot", s.handleDOT)
			r.Get("/session", s.handleSession)
		})
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
