package session

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/filkovsp/WEB-Drawing-App/internal/engine"
	"github.com/filkovsp/WEB-Drawing-App/internal/input"
	"github.com/filkovsp/WEB-Drawing-App/internal/shape"
	"github.com/filkovsp/WEB-Drawing-App/internal/stage"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	eng, err := engine.New(200, 100)
	if err != nil {
		t.Fatal(err)
	}
	return NewSession("sess_test", eng)
}

func mustMessage(t *testing.T, typ string, payload any) *Message {
	t.Helper()
	msg, err := newMessage(typ, payload)
	if err != nil {
		t.Fatal(err)
	}
	return msg
}

func types(msgs []*Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Type
	}
	return out
}

func find(msgs []*Message, typ string) *Message {
	for _, m := range msgs {
		if m.Type == typ {
			return m
		}
	}
	return nil
}

func TestWelcome(t *testing.T) {
	s := newTestSession(t)
	msgs := s.Welcome("client-1")

	if len(msgs) != 2 || msgs[0].Type != TypeWelcome || msgs[1].Type != TypeFrame {
		t.Fatalf("welcome = %v", types(msgs))
	}
	var w WelcomePayload
	if err := json.Unmarshal(msgs[0].Payload, &w); err != nil {
		t.Fatal(err)
	}
	if w.SessionID != "sess_test" || w.Width != 200 || w.Height != 100 || len(w.Layers) != 3 {
		t.Errorf("payload = %+v", w)
	}
	if msgs[0].Seq != 1 || msgs[1].Seq != 2 {
		t.Errorf("seq = %d, %d", msgs[0].Seq, msgs[1].Seq)
	}
}

func TestDrawOverMessages(t *testing.T) {
	s := newTestSession(t)
	s.Welcome("c")

	out := s.Handle(mustMessage(t, TypeEvent, input.ClickAt(input.Left, 5, 5)))
	if find(out, TypeAdvisory) == nil {
		t.Fatalf("expected advisory, got %v", types(out))
	}
	if s.Mirror().Advisory == "" {
		t.Error("advisory not mirrored")
	}

	out = s.Handle(mustMessage(t, TypeSelect, SelectPayload{Kind: "line"}))
	if find(out, TypeError) != nil {
		t.Fatalf("select failed: %v", types(out))
	}

	s.Handle(mustMessage(t, TypeEvent, input.ClickAt(input.Left, 10, 10)))
	s.Handle(mustMessage(t, TypeEvent, input.MoveTo(30, 20)))
	out = s.Handle(mustMessage(t, TypeEvent, input.ClickAt(input.Left, 30, 20)))

	committed := find(out, TypeCommitted)
	if committed == nil {
		t.Fatalf("no committed message in %v", types(out))
	}
	var rec struct {
		Kind   shape.Kind       `json:"kind"`
		Params shape.LineParams `json:"params"`
	}
	if err := json.Unmarshal(committed.Payload, &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Kind != shape.Line || rec.Params != (shape.LineParams{X: 10, Y: 10, W: 20, H: 10}) {
		t.Errorf("committed = %+v", rec)
	}
	if find(out, TypeFrame) == nil {
		t.Error("no frame after commit")
	}
	if s.ShapeCount() != 1 {
		t.Errorf("shape count = %d", s.ShapeCount())
	}
}

func TestViewMessages(t *testing.T) {
	s := newTestSession(t)
	s.Handle(mustMessage(t, TypeEvent, input.MoveTo(100, 50)))
	out := s.Handle(mustMessage(t, TypeEvent, input.WheelAt(100, 50, 1)))

	m := find(out, TypeView)
	if m == nil {
		t.Fatalf("no view message in %v", types(out))
	}
	var v stage.ViewChange
	_ = json.Unmarshal(m.Payload, &v)
	if v.Zoom != 1.2 {
		t.Errorf("zoom = %v", v.Zoom)
	}
	if s.Mirror().View != v {
		t.Errorf("mirror = %+v", s.Mirror().View)
	}
}

func TestErrors(t *testing.T) {
	s := newTestSession(t)

	tests := []struct {
		name string
		msg  *Message
	}{
		{"unknown type", &Message{Type: "doc.sync"}},
		{"bad event", &Message{Type: TypeEvent, Payload: json.RawMessage(`{"kind":"hover"}`)}},
		{"bad kind", mustMessage(t, TypeSelect, SelectPayload{Kind: "hexagon"})},
		{"bad command", mustMessage(t, TypeCommand, CommandPayload{Name: "explode"})},
		{"reserved layer", mustMessage(t, TypeCommand, CommandPayload{Name: CommandRemoveLayer, Layer: "main"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := s.Handle(tt.msg)
			if find(out, TypeError) == nil {
				t.Errorf("expected error message, got %v", types(out))
			}
		})
	}

	if err := s.handle(&Message{Type: "nope"}); !errors.Is(err, ErrUnknownMessage) {
		t.Errorf("err = %v", err)
	}
}

func TestStyleIsAtomic(t *testing.T) {
	s := newTestSession(t)
	red, bad := "#ff0000", "#xyz"

	out := s.Handle(mustMessage(t, TypeStyle, StylePayload{Color: &red, Fill: &bad}))
	if find(out, TypeError) == nil {
		t.Fatal("expected error")
	}
	if c := s.engine.Selection().Style.Color; shape.FormatColor(c) != "#000000" {
		t.Errorf("color changed to %v despite error", c)
	}

	out = s.Handle(mustMessage(t, TypeStyle, StylePayload{Color: &red}))
	if find(out, TypeError) != nil {
		t.Fatal(types(out))
	}
	if c := s.engine.Selection().Style.Color; shape.FormatColor(c) != "#ff0000" {
		t.Errorf("color = %v", c)
	}
}

func TestLayerCommands(t *testing.T) {
	s := newTestSession(t)
	out := s.Handle(mustMessage(t, TypeCommand, CommandPayload{Name: CommandAddLayer, Layer: "notes"}))

	m := find(out, TypeLayers)
	if m == nil {
		t.Fatalf("no layers message in %v", types(out))
	}
	var p LayersPayload
	_ = json.Unmarshal(m.Payload, &p)
	if len(p.Layers) != 4 || p.Layers[0] != "notes" {
		t.Errorf("layers = %v", p.Layers)
	}

	out = s.Handle(mustMessage(t, TypeCommand, CommandPayload{Name: CommandCenter}))
	if find(out, TypeView) == nil {
		t.Errorf("center produced %v", types(out))
	}
}

func TestRegisterQueuesWelcomeFirst(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	sess := newTestSession(t)
	client := NewClient(hub, nil, sess, "client-1")
	if !hub.Register(client) {
		t.Fatal("register on a running hub failed")
	}

	// A reply queued right after Register must come after the welcome.
	client.Send(mustMessage(t, TypeAdvisory, AdvisoryPayload{Message: "later"}))

	var got []string
	for len(client.send) > 0 {
		var m Message
		if err := json.Unmarshal(<-client.send, &m); err != nil {
			t.Fatal(err)
		}
		got = append(got, m.Type)
	}
	if len(got) != 3 || got[0] != TypeWelcome || got[1] != TypeFrame || got[2] != TypeAdvisory {
		t.Errorf("queued = %v, want welcome, frame, advisory", got)
	}
	if _, err := hub.Get(sess.ID); err != nil {
		t.Errorf("session not visible after Register: %v", err)
	}

	hub.Unregister(client)
	hub.Stop()
	if hub.Register(NewClient(hub, nil, newTestSession(t), "client-2")) {
		t.Error("register after stop reported success")
	}
}
