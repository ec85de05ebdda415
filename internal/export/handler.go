package export

import (
	"bytes"
	"errors"
	"image/color"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/filkovsp/WEB-Drawing-App/internal/engine"
	"github.com/filkovsp/WEB-Drawing-App/internal/session"
	"github.com/filkovsp/WEB-Drawing-App/internal/shape"
	"github.com/filkovsp/WEB-Drawing-App/internal/typeid"
)

const maxSnapshotWidth = 4096

// Sessions is the subset of the session hub the exporter needs.
type Sessions interface {
	Get(id string) (*session.Session, error)
}

type Handler struct {
	sessions Sessions
}

func NewHandler(sessions Sessions) *Handler {
	return &Handler{sessions: sessions}
}

// Snapshot serves GET /sessions/{sessionId}/snapshot.png.
//
// Query parameters: fit=content frames every stored shape, width=N scales
// the image, caption=1 stamps the view state, bg=#rrggbb sets the background.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["sessionId"]
	if err := typeid.Validate(id, typeid.PrefixSession); err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	opts, err := parseOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess, err := h.sessions.Get(id)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// Render into a buffer so a failure can still produce a proper status.
	var buf bytes.Buffer
	if err := sess.Snapshot(&buf, opts); err != nil {
		slog.Error("render snapshot", "error", err, "session", id)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("write snapshot", "error", err, "session", id)
	}
}

func parseOptions(r *http.Request) (engine.SnapshotOptions, error) {
	q := r.URL.Query()
	opts := engine.SnapshotOptions{
		Fit:     q.Get("fit") == "content",
		Caption: q.Get("caption") == "1" || q.Get("caption") == "true",
	}

	if s := q.Get("width"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > maxSnapshotWidth {
			return opts, errors.New("width must be between 1 and 4096")
		}
		opts.Width = n
	}

	if s := q.Get("bg"); s != "" {
		c, err := shape.ParseColor(s)
		if err != nil {
			return opts, errors.New("invalid bg color")
		}
		if c.A == 0 {
			opts.Background = color.Transparent
		} else {
			opts.Background = c
		}
	}
	return opts, nil
}
