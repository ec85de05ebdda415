package engine

import (
	"github.com/filkovsp/WEB-Drawing-App/internal/surface/record"
)

// Frame is the full command list of one layer. Frontends clear their canvas
// for the layer and replay the commands.
type Frame struct {
	Layer    string               `json:"layer"`
	Version  uint64               `json:"version"`
	Commands []record.DrawCommand `json:"commands"`
}

// Frames returns one frame per layer in compositing order. With onlyDirty
// set, layers unchanged since the previous call are skipped. Layers whose
// surface does not record commands are never reported.
func (e *Engine) Frames(onlyDirty bool) []Frame {
	var frames []Frame
	for _, id := range e.stage.LayerIDs() {
		l, err := e.stage.Layer(id)
		if err != nil {
			continue
		}
		rec, ok := l.Surface().(*record.Surface)
		if !ok {
			continue
		}
		v := rec.Version()
		if last, seen := e.sent[id]; onlyDirty && seen && last == v {
			continue
		}
		e.sent[id] = v
		frames = append(frames, Frame{Layer: id, Version: v, Commands: rec.Frame()})
	}
	return frames
}
