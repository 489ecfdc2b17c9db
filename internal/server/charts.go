package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stackflow/pkg/buildinfo"
	"github.com/matzehuels/stackflow/pkg/engine"
	"github.com/matzehuels/stackflow/pkg/flowchart"
	"github.com/matzehuels/stackflow/pkg/render/chart"
	"github.com/matzehuels/stackflow/pkg/render/nodelink"
	"github.com/matzehuels/stackflow/pkg/store"
	"github.com/matzehuels/stackflow/pkg/surface"
)

type chartRequest struct {
	Name     string             `json:"name"`
	Document flowchart.Document `json:"document"`
}

type createdResponse struct {
	ID string `json:"id"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if list == nil {
		list = []store.Summary{}
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req chartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	doc, err := s.layout(req.Document)
	if err != nil {
		s.writeError(w, err)
		return
	}
	c := &store.Chart{Name: req.Name, Document: doc}
	if err := s.store.Put(r.Context(), c); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Location", "/api/charts/"+c.ID)
	s.writeJSON(w, http.StatusCreated, createdResponse{ID: c.ID})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	existing, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req chartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	doc, err := s.layout(req.Document)
	if err != nil {
		s.writeError(w, err)
		return
	}
	existing.Document = doc
	if req.Name != "" {
		existing.Name = req.Name
	}
	if err := s.store.Put(r.Context(), existing); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, existing)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	e, err := s.load(c.Document)
	if err != nil {
		s.writeError(w, err)
		return
	}
	svg := chart.RenderSVG(chart.Chart{Blocks: e.Blocks(), Connectors: e.Connectors()}, chart.WithTitle(c.Name))
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	blocks, err := c.Document.ToBlocks()
	if err != nil {
		s.writeError(w, err)
		return
	}
	dot := nodelink.ToDOT(blocks, nodelink.Options{Detailed: r.URL.Query().Get("detailed") == "true"})
	if r.URL.Query().Get("format") == "svg" {
		svg, err := nodelink.RenderSVG(r.Context(), dot)
		if err != nil {
			s.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	_, _ = w.Write([]byte(dot))
}

// load lays doc out on a headless surface.
func (s *Server) load(doc flowchart.Document) (*engine.Engine, error) {
	e, err := s.newEngine(surface.NewMemory(s.view.Drop.Width, s.view.Drop.Height))
	if err != nil {
		return nil, err
	}
	if err := e.Import(doc); err != nil {
		return nil, err
	}
	return e, nil
}

// layout returns doc with positions recomputed. An empty document stays
// empty.
func (s *Server) layout(doc flowchart.Document) (flowchart.Document, error) {
	e, err := s.load(doc)
	if err != nil {
		return flowchart.Document{}, err
	}
	out, ok := e.Export()
	if !ok {
		return flowchart.Document{Blocks: []flowchart.Block{}, Positions: []flowchart.Position{}}, nil
	}
	return out, nil
}

func (s *Server) newEngine(surf surface.Surface) (*engine.Engine, error) {
	return engine.New(surf, engine.Options{
		Spacing:  s.spacing,
		Viewport: s.view,
		Logger:   s.logger,
	})
}
