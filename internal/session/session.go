package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/filkovsp/WEB-Drawing-App/internal/engine"
	"github.com/filkovsp/WEB-Drawing-App/internal/geom"
	"github.com/filkovsp/WEB-Drawing-App/internal/input"
	"github.com/filkovsp/WEB-Drawing-App/internal/shape"
	"github.com/filkovsp/WEB-Drawing-App/internal/stage"
)

var (
	ErrUnknownMessage  = errors.New("unknown message type")
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownCommand  = errors.New("unknown command")
)

// Session is one independent drawing. The engine underneath is single
// threaded; every access goes through mu.
type Session struct {
	ID      string
	Created time.Time

	mu     sync.Mutex
	engine *engine.Engine
	mirror *Mirror
	seq    int64
	outbox []*Message
}

// NewSession wraps eng and mirrors its view and pointer changes.
func NewSession(id string, eng *engine.Engine) *Session {
	s := &Session{
		ID:      id,
		Created: time.Now(),
		engine:  eng,
		mirror:  NewMirror(eng.View()),
	}
	eng.OnViewChange(func(v stage.ViewChange) {
		s.mirror.UpdateView(v)
		s.queue(TypeView, v)
	})
	eng.OnPointer(func(p geom.Point) {
		s.mirror.UpdatePointer(p)
		s.queue(TypePointer, p)
	})
	return s
}

// queue is only called while mu is held, from engine observers.
func (s *Session) queue(typ string, payload any) {
	msg, err := newMessage(typ, payload)
	if err != nil {
		slog.Error("marshal message", "type", typ, "error", err)
		return
	}
	s.outbox = append(s.outbox, msg)
}

// flush stamps queued messages and hands them over. Caller holds mu.
func (s *Session) flush() []*Message {
	out := s.outbox
	s.outbox = nil
	for _, m := range out {
		s.seq++
		m.Seq = s.seq
		m.SessionID = s.ID
	}
	return out
}

// Welcome returns the greeting and a full frame for a newly attached client.
func (s *Session) Welcome(clientID string) []*Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, h := s.engine.Size()
	sel := s.engine.Selection()
	s.queue(TypeWelcome, WelcomePayload{
		SessionID: s.ID,
		ClientID:  clientID,
		Width:     w,
		Height:    h,
		Layers:    s.engine.LayerIDs(),
		View:      s.engine.View(),
		Kinds:     shape.Kinds(),
		Selection: SelectionSnapshot{Kind: sel.Kind, Style: sel.Style},
	})
	s.queue(TypeFrame, FramePayload{Frames: s.engine.Frames(false)})
	return s.flush()
}

// Handle applies one client message and returns every reply it produced,
// followed by a frame with the layers that changed.
func (s *Session) Handle(msg *Message) []*Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.handle(msg); err != nil {
		slog.Debug("message rejected", "session", s.ID, "type", msg.Type, "error", err)
		s.queue(TypeError, ErrorPayload{Error: err.Error()})
	}
	if frames := s.engine.Frames(true); len(frames) > 0 {
		s.queue(TypeFrame, FramePayload{Frames: frames})
	}
	return s.flush()
}

func (s *Session) handle(msg *Message) error {
	switch msg.Type {
	case TypeEvent:
		var ev input.Event
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			return fmt.Errorf("invalid event payload: %w", err)
		}
		out, err := s.engine.Dispatch(ev)
		if err != nil {
			return err
		}
		if out.Advisory != "" {
			s.mirror.UpdateAdvisory(out.Advisory)
			s.queue(TypeAdvisory, AdvisoryPayload{Message: out.Advisory})
		}
		if out.Committed != nil {
			s.queue(TypeCommitted, out.Committed)
		}
		return nil

	case TypeSelect:
		var p SelectPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid select payload: %w", err)
		}
		if err := s.engine.SelectName(p.Kind); err != nil {
			return err
		}
		s.mirror.UpdateAdvisory("")
		return nil

	case TypeStyle:
		var p StylePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid style payload: %w", err)
		}
		return s.applyStyle(p)

	case TypeCommand:
		var p CommandPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("invalid command payload: %w", err)
		}
		return s.command(p)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
}

// applyStyle validates every field before changing any of them.
func (s *Session) applyStyle(p StylePayload) error {
	if p.Color != nil {
		if _, err := shape.ParseColor(*p.Color); err != nil {
			return err
		}
	}
	if p.Fill != nil {
		if _, err := shape.ParseColor(*p.Fill); err != nil {
			return err
		}
	}
	if p.Width != nil && *p.Width <= 0 {
		return fmt.Errorf("stroke width must be positive, got %v", *p.Width)
	}

	if p.Color != nil {
		_ = s.engine.SetColor(*p.Color)
	}
	if p.Fill != nil {
		_ = s.engine.SetFill(*p.Fill)
	}
	if p.Width != nil {
		_ = s.engine.SetWidth(*p.Width)
	}
	return nil
}

func (s *Session) command(p CommandPayload) error {
	switch p.Name {
	case CommandCenter:
		return s.engine.Center()
	case CommandClear:
		return s.engine.Clear(p.Keep)
	case CommandReset:
		return s.engine.Reset()
	case CommandAddLayer:
		if _, err := s.engine.AddLayer(p.Layer); err != nil {
			return err
		}
	case CommandRemoveLayer:
		if err := s.engine.RemoveLayer(p.Layer); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, p.Name)
	}
	s.queue(TypeLayers, LayersPayload{Layers: s.engine.LayerIDs()})
	return nil
}

// Snapshot renders the session as PNG.
func (s *Session) Snapshot(w io.Writer, opts engine.SnapshotOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Snapshot(w, opts)
}

// Mirror returns the last mirrored display state.
func (s *Session) Mirror() MirrorState {
	return s.mirror.State()
}

// ShapeCount returns how many shapes are stored across all layers.
func (s *Session) ShapeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, id := range s.engine.LayerIDs() {
		recs, err := s.engine.Shapes(id)
		if err == nil {
			n += len(recs)
		}
	}
	return n
}
