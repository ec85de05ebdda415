package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/filkovsp/WEB-Drawing-App/internal/engine"
	"github.com/filkovsp/WEB-Drawing-App/internal/input"
)

func newTestServer(t *testing.T) (*httptest.Server, *Hub) {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	h := NewHandler(hub, func() (*engine.Engine, error) { return engine.New(200, 100) }, nil)
	r := mux.NewRouter()
	r.HandleFunc("/ws", h.ServeWS)
	r.HandleFunc("/sessions", h.List).Methods("GET")
	r.HandleFunc("/sessions/{sessionId}/view", h.View).Methods("GET")

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, hub
}

func dial(t *testing.T, ctx context.Context, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string) *Message {
	t.Helper()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read waiting for %s: %v", typ, err)
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatal(err)
		}
		if msg.Type == typ {
			return &msg
		}
	}
}

func write(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	msg, err := newMessage(typ, payload)
	if err != nil {
		t.Fatal(err)
	}
	data, _ := json.Marshal(msg)
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatal(err)
	}
}

func TestWebsocketSession(t *testing.T) {
	srv, hub := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dial(t, ctx, srv)
	welcome := readUntil(t, ctx, conn, TypeWelcome)
	var w WelcomePayload
	if err := json.Unmarshal(welcome.Payload, &w); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(w.SessionID, "sess_") || w.ClientID == "" {
		t.Fatalf("welcome = %+v", w)
	}

	write(t, ctx, conn, TypeSelect, SelectPayload{Kind: "circle"})
	write(t, ctx, conn, TypeEvent, input.ClickAt(input.Left, 50, 50))
	write(t, ctx, conn, TypeEvent, input.ClickAt(input.Left, 60, 50))
	readUntil(t, ctx, conn, TypeCommitted)

	if _, err := hub.Get(w.SessionID); err != nil {
		t.Fatalf("hub lookup: %v", err)
	}

	resp, err := http.Get(srv.URL + "/sessions")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var list []Summary
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].SessionID != w.SessionID || list[0].Shapes != 1 {
		t.Errorf("sessions = %+v", list)
	}

	resp2, err := http.Get(srv.URL + "/sessions/" + w.SessionID + "/view")
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Errorf("view status = %d", resp2.StatusCode)
	}
}

func TestViewLookupErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		path string
		want int
	}{
		{"/sessions/garbage/view", http.StatusBadRequest},
		{"/sessions/sess_01h455vb4pex5vsknk084sn02q/view", http.StatusNotFound},
	}
	for _, tt := range tests {
		resp, err := http.Get(srv.URL + tt.path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.path, resp.StatusCode, tt.want)
		}
	}
}

func TestSessionEndsOnClose(t *testing.T) {
	srv, hub := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dial(t, ctx, srv)
	welcome := readUntil(t, ctx, conn, TypeWelcome)
	conn.Close(websocket.StatusNormalClosure, "bye")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := hub.Get(welcome.SessionID); err != nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("session still registered after close")
}
