package session

import (
	"sync"
	"time"

	"github.com/filkovsp/WEB-Drawing-App/internal/geom"
	"github.com/filkovsp/WEB-Drawing-App/internal/stage"
)

// MirrorState is the read-only display state of one session.
type MirrorState struct {
	View     stage.ViewChange `json:"view"`
	Pointer  geom.Point       `json:"pointer"`
	Advisory string           `json:"advisory,omitempty"`
	Updated  time.Time        `json:"updated"`
}

// Mirror keeps the last view change and pointer position so HTTP handlers
// can read them without touching the engine.
type Mirror struct {
	mu    sync.RWMutex
	state MirrorState
}

func NewMirror(v stage.ViewChange) *Mirror {
	return &Mirror{state: MirrorState{View: v, Updated: time.Now()}}
}

func (m *Mirror) UpdateView(v stage.ViewChange) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.View = v
	m.state.Updated = time.Now()
}

func (m *Mirror) UpdatePointer(p geom.Point) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Pointer = p
	m.state.Updated = time.Now()
}

func (m *Mirror) UpdateAdvisory(a string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Advisory = a
	m.state.Updated = time.Now()
}

func (m *Mirror) State() MirrorState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}
