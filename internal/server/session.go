package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/stackflow/pkg/blocktree"
	"github.com/matzehuels/stackflow/pkg/drag"
	"github.com/matzehuels/stackflow/pkg/engine"
	apperrors "github.com/matzehuels/stackflow/pkg/errors"
	"github.com/matzehuels/stackflow/pkg/flowchart"
	"github.com/matzehuels/stackflow/pkg/store"
	"github.com/matzehuels/stackflow/pkg/surface"
)

// Session message types.
const (
	MsgEvent  = "event"
	MsgCancel = "cancel"
	MsgReset  = "reset"
	MsgDelete = "delete"
	MsgSave   = "save"

	MsgHello = "hello"
	MsgOps   = "ops"
	MsgSaved = "saved"
	MsgError = "error"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 << 10
)

// ClientMessage is sent by the browser. Event is set for "event" messages
// and Block for "delete". A press without a target is hit-tested on the
// server.
type ClientMessage struct {
	Type  string         `json:"type"`
	Event *surface.Event `json:"event,omitempty"`
	Block int            `json:"block,omitempty"`
}

// ServerMessage carries the surface operations produced by one client
// message, so the client can replay them on its own scene.
type ServerMessage struct {
	Type    string            `json:"type"`
	Ops     []surface.Op      `json:"ops,omitempty"`
	Palette []surface.NodeRef `json:"palette,omitempty"`
	State   string            `json:"state,omitempty"`
	ID      string            `json:"id,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// DefaultPalette is offered to every session.
var DefaultPalette = []drag.Template{
	paletteItem("Action"),
	paletteItem("Condition"),
	paletteItem("Output"),
}

func paletteItem(label string) drag.Template {
	return drag.Template{
		Markup: surface.Markup{Width: 120, Height: 40, Content: label},
		Data:   []blocktree.Field{{Name: "name", Value: label}},
	}
}

type session struct {
	srv   *Server
	conn  *websocket.Conn
	mem   *surface.Memory
	rec   *surface.Recorder
	eng   *engine.Engine
	chart *store.Chart
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	mem := surface.NewMemory(s.view.Drop.Width, s.view.Drop.Height)
	rec := surface.NewRecorder(mem, nil)
	eng, err := s.newEngine(rec)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var palette []surface.NodeRef
	for i, tmpl := range DefaultPalette {
		ref, err := eng.AddTemplate(tmpl, 10, 10+float64(i)*50)
		if err != nil {
			s.writeError(w, err)
			return
		}
		palette = append(palette, ref)
	}
	if !c.Document.Empty() {
		if err := eng.Import(c.Document); err != nil {
			s.writeError(w, err)
			return
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	sess := &session{srv: s, conn: conn, mem: mem, rec: rec, eng: eng, chart: c}
	s.logger.Debug("session opened", "chart", c.ID)
	defer s.logger.Debug("session closed", "chart", c.ID)

	if err := sess.send(ServerMessage{Type: MsgHello, Palette: palette}); err != nil {
		return
	}
	sess.run(r)
}

func (ss *session) run(r *http.Request) {
	defer func() { _ = ss.eng.Cancel() }()
	for {
		var msg ClientMessage
		if err := ss.conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				ss.srv.logger.Debug("session read", "err", err)
			}
			return
		}

		reply := ServerMessage{Type: MsgOps}
		id, err := ss.apply(r, msg)
		switch {
		case err != nil:
			reply = ServerMessage{Type: MsgError, Error: err.Error()}
		case id != "":
			reply = ServerMessage{Type: MsgSaved, ID: id}
		}
		if err := ss.send(reply); err != nil {
			return
		}
	}
}

// apply handles one client message. It returns the chart ID after a save.
func (ss *session) apply(r *http.Request, msg ClientMessage) (string, error) {
	switch msg.Type {
	case MsgEvent:
		if msg.Event == nil {
			return "", apperrors.New(apperrors.ErrCodeInvalidInput, "event message without event")
		}
		ev := *msg.Event
		if ev.Kind == surface.Down && ev.Target.Kind == surface.TargetNone {
			ev.Target = ss.mem.HitTest(ev.X, ev.Y)
		}
		return "", ss.eng.Handle(ev)
	case MsgCancel:
		return "", ss.eng.Cancel()
	case MsgReset:
		ss.eng.Reset()
		return "", nil
	case MsgDelete:
		return "", ss.eng.Delete(msg.Block)
	case MsgSave:
		doc, ok := ss.eng.Export()
		if !ok {
			doc = flowchart.Document{Blocks: []flowchart.Block{}, Positions: []flowchart.Position{}}
		}
		ss.chart.Document = doc
		if err := ss.srv.store.Put(r.Context(), ss.chart); err != nil {
			return "", err
		}
		return ss.chart.ID, nil
	}
	return "", apperrors.New(apperrors.ErrCodeInvalidInput, "unknown message type %q", msg.Type)
}

// send writes msg with the operations recorded since the last send.
func (ss *session) send(msg ServerMessage) error {
	msg.Ops = ss.rec.Ops()
	ss.rec.Reset()
	msg.State = ss.eng.State().String()
	_ = ss.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := ss.conn.WriteJSON(msg); err != nil {
		if !errors.Is(err, websocket.ErrCloseSent) {
			ss.srv.logger.Debug("session write", "err", err)
		}
		return err
	}
	return nil
}
