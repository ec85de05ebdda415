package session

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/filkovsp/WEB-Drawing-App/internal/engine"
	"github.com/filkovsp/WEB-Drawing-App/internal/typeid"
)

// EngineFactory builds the engine for a new session.
type EngineFactory func() (*engine.Engine, error)

type Handler struct {
	hub       *Hub
	newEngine EngineFactory
	origins   []string
}

func NewHandler(hub *Hub, newEngine EngineFactory, origins []string) *Handler {
	return &Handler{hub: hub, newEngine: newEngine, origins: origins}
}

// ServeWS upgrades the request and runs a fresh session until the socket
// closes.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	eng, err := h.newEngine()
	if err != nil {
		slog.Error("create engine", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	sess := NewSession(typeid.NewSessionID(), eng)
	client := NewClient(h.hub, conn, sess, uuid.New().String())

	if !h.hub.Register(client) {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.hub.List())
}

// View reports the mirrored view state of one session.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Mirror())
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id := mux.Vars(r)["sessionId"]
	if err := typeid.Validate(id, typeid.PrefixSession); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
		return nil, false
	}
	sess, err := h.hub.Get(id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
			return nil, false
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return nil, false
	}
	return sess, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
