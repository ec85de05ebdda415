package session

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// Summary is what GET /sessions reports per session.
type Summary struct {
	SessionID string      `json:"sessionId"`
	ClientID  string      `json:"clientId"`
	Created   time.Time   `json:"created"`
	Shapes    int         `json:"shapes"`
	Mirror    MirrorState `json:"mirror"`
}

// Hub tracks live sessions. Registration goes through channels so a single
// goroutine owns attach/detach ordering; lookups take the read lock.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]*Client // sessionID -> client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			h.closeAll()
			return
		}
	}
}

// Stop ends Run and disconnects every client.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Register attaches client and waits until its welcome messages are queued,
// so nothing the read pump replies can overtake them. It reports false when
// the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.register <- client:
	case <-h.done:
		return false
	}
	select {
	case <-client.registered:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client.Session.ID] = client
	h.mu.Unlock()

	for _, msg := range client.Session.Welcome(client.ClientID) {
		client.Send(msg)
	}
	close(client.registered)

	slog.Info("session started", "session", client.Session.ID, "client", client.ClientID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	current, ok := h.clients[client.Session.ID]
	if !ok || current != client {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.Session.ID)
	close(client.send)
	h.mu.Unlock()

	slog.Info("session ended", "session", client.Session.ID, "client", client.ClientID)
}

// closeAll drops every client and closes its connection. Send queues stay
// open: a read pump may still be replying.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		c.conn.Close(websocket.StatusGoingAway, "server shutting down")
		delete(h.clients, id)
	}
}

// Get returns the session with the given id.
func (h *Hub) Get(id string) (*Session, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	return c.Session, nil
}

// List summarises every live session, oldest first.
func (h *Hub) List() []Summary {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	out := make([]Summary, 0, len(clients))
	for _, c := range clients {
		out = append(out, Summary{
			SessionID: c.Session.ID,
			ClientID:  c.ClientID,
			Created:   c.Session.Created,
			Shapes:    c.Session.ShapeCount(),
			Mirror:    c.Session.Mirror(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	return out
}

// handleMessage runs on the client's read goroutine.
func (h *Hub) handleMessage(sender *Client, msg *Message) {
	for _, reply := range sender.Session.Handle(msg) {
		sender.Send(reply)
	}
}
