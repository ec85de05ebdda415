package session

import (
	"encoding/json"

	"github.com/filkovsp/WEB-Drawing-App/internal/engine"
	"github.com/filkovsp/WEB-Drawing-App/internal/shape"
	"github.com/filkovsp/WEB-Drawing-App/internal/stage"
)

type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

const (
	// Client -> server
	TypeEvent   = "event"
	TypeSelect  = "select"
	TypeStyle   = "style"
	TypeCommand = "command"

	// Server -> client
	TypeWelcome   = "welcome"
	TypeFrame     = "frame"
	TypeView      = "view"
	TypePointer   = "pointer"
	TypeAdvisory  = "advisory"
	TypeCommitted = "committed"
	TypeLayers    = "layers"
	TypeError     = "error"
)

// Command names carried in CommandPayload.
const (
	CommandCenter      = "center"
	CommandClear       = "clear"
	CommandReset       = "reset"
	CommandAddLayer    = "addLayer"
	CommandRemoveLayer = "removeLayer"
)

type WelcomePayload struct {
	SessionID string            `json:"sessionId"`
	ClientID  string            `json:"clientId"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Layers    []string          `json:"layers"`
	View      stage.ViewChange  `json:"view"`
	Kinds     []shape.Kind      `json:"kinds"`
	Selection SelectionSnapshot `json:"selection"`
}

type SelectionSnapshot struct {
	Kind  shape.Kind  `json:"kind"`
	Style shape.Style `json:"style"`
}

type SelectPayload struct {
	Kind string `json:"kind"`
}

// StylePayload fields are optional; nil leaves the current value.
type StylePayload struct {
	Color *string  `json:"color,omitempty"`
	Fill  *string  `json:"fill,omitempty"`
	Width *float64 `json:"width,omitempty"`
}

type CommandPayload struct {
	Name  string `json:"name"`
	Layer string `json:"layer,omitempty"`
	Keep  bool   `json:"keep,omitempty"`
}

type FramePayload struct {
	Frames []engine.Frame `json:"frames"`
}

type LayersPayload struct {
	Layers []string `json:"layers"`
}

type AdvisoryPayload struct {
	Message string `json:"message"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

func newMessage(typ string, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: typ, Payload: data}, nil
}
