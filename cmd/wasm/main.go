//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/filkovsp/WEB-Drawing-App/internal/engine"
	"github.com/filkovsp/WEB-Drawing-App/internal/geom"
	"github.com/filkovsp/WEB-Drawing-App/internal/input"
	"github.com/filkovsp/WEB-Drawing-App/internal/shape"
	"github.com/filkovsp/WEB-Drawing-App/internal/stage"
)

var eng *engine.Engine

func main() {
	api := js.Global().Get("Object").New()

	// --- Commands (page → engine) ---
	api.Set("init", js.FuncOf(initEngine))
	api.Set("dispatch", js.FuncOf(dispatchEvent))
	api.Set("select", js.FuncOf(selectShape))
	api.Set("setColor", js.FuncOf(setColor))
	api.Set("setFill", js.FuncOf(setFill))
	api.Set("setWidth", js.FuncOf(setWidth))
	api.Set("center", js.FuncOf(center))
	api.Set("clear", js.FuncOf(clearLayers))
	api.Set("reset", js.FuncOf(reset))
	api.Set("addLayer", js.FuncOf(addLayer))
	api.Set("removeLayer", js.FuncOf(removeLayer))

	// --- Queries (page ← engine) ---
	api.Set("getFrames", js.FuncOf(getFrames))
	api.Set("getView", js.FuncOf(getView))
	api.Set("getPointer", js.FuncOf(getPointer))
	api.Set("getSelection", js.FuncOf(getSelection))
	api.Set("getShapes", js.FuncOf(getShapes))
	api.Set("getLayers", js.FuncOf(getLayers))

	// --- Observers ---
	api.Set("onViewChange", js.FuncOf(onViewChange))
	api.Set("onPointer", js.FuncOf(onPointer))

	js.Global().Set("drawingEngine", api)
	js.Global().Set("drawingWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func ok() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func fail(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func failMsg(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": msg})
}

func toJSON(v any) interface{} {
	b, err := json.Marshal(v)
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(string(b))
}

func ready() bool { return eng != nil }

// --- Command Handlers ---

// initEngine(width, height, gridStep?) creates the engine. A grid step of
// zero or less disables the grid.
func initEngine(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return failMsg("missing canvas size")
	}
	opts := []engine.Option{}
	gridStep := float64(shape.DefaultGridStep)
	if len(args) > 2 && args[2].Type() == js.TypeNumber {
		gridStep = args[2].Float()
	}
	if gridStep > 0 {
		opts = append(opts, engine.WithGrid(gridStep))
	}

	e, err := engine.New(args[0].Int(), args[1].Int(), opts...)
	if err != nil {
		return fail(err)
	}
	eng = e
	return ok()
}

func dispatchEvent(this js.Value, args []js.Value) interface{} {
	if !ready() {
		return failMsg("engine not initialised")
	}
	if len(args) < 1 {
		return failMsg("missing event JSON")
	}
	var ev input.Event
	if err := json.Unmarshal([]byte(args[0].String()), &ev); err != nil {
		return fail(err)
	}
	out, err := eng.Dispatch(ev)
	if err != nil {
		return fail(err)
	}
	return toJSON(out)
}

func selectShape(this js.Value, args []js.Value) interface{} {
	if !ready() || len(args) < 1 {
		return nil
	}
	if err := eng.SelectName(args[0].String()); err != nil {
		return fail(err)
	}
	return ok()
}

func setColor(this js.Value, args []js.Value) interface{} {
	if !ready() || len(args) < 1 {
		return nil
	}
	if err := eng.SetColor(args[0].String()); err != nil {
		return fail(err)
	}
	return ok()
}

func setFill(this js.Value, args []js.Value) interface{} {
	if !ready() || len(args) < 1 {
		return nil
	}
	if err := eng.SetFill(args[0].String()); err != nil {
		return fail(err)
	}
	return ok()
}

func setWidth(this js.Value, args []js.Value) interface{} {
	if !ready() || len(args) < 1 {
		return nil
	}
	if err := eng.SetWidth(args[0].Float()); err != nil {
		return fail(err)
	}
	return ok()
}

func center(this js.Value, args []js.Value) interface{} {
	if !ready() {
		return nil
	}
	if err := eng.Center(); err != nil {
		return fail(err)
	}
	return ok()
}

func clearLayers(this js.Value, args []js.Value) interface{} {
	if !ready() {
		return nil
	}
	keep := len(args) > 0 && args[0].Truthy()
	if err := eng.Clear(keep); err != nil {
		return fail(err)
	}
	return ok()
}

func reset(this js.Value, args []js.Value) interface{} {
	if !ready() {
		return nil
	}
	if err := eng.Reset(); err != nil {
		return fail(err)
	}
	return ok()
}

func addLayer(this js.Value, args []js.Value) interface{} {
	if !ready() {
		return nil
	}
	id := ""
	if len(args) > 0 && args[0].Type() == js.TypeString {
		id = args[0].String()
	}
	got, err := eng.AddLayer(id)
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(got)
}

func removeLayer(this js.Value, args []js.Value) interface{} {
	if !ready() || len(args) < 1 {
		return nil
	}
	if err := eng.RemoveLayer(args[0].String()); err != nil {
		return fail(err)
	}
	return ok()
}

// --- Query Handlers ---

func getFrames(this js.Value, args []js.Value) interface{} {
	if !ready() {
		return js.ValueOf("[]")
	}
	onlyDirty := len(args) > 0 && args[0].Truthy()
	return toJSON(eng.Frames(onlyDirty))
}

func getView(this js.Value, args []js.Value) interface{} {
	if !ready() {
		return js.ValueOf("{}")
	}
	return toJSON(eng.View())
}

func getPointer(this js.Value, args []js.Value) interface{} {
	if !ready() {
		return js.ValueOf("{}")
	}
	return toJSON(eng.Pointer())
}

func getSelection(this js.Value, args []js.Value) interface{} {
	if !ready() {
		return js.ValueOf("{}")
	}
	return toJSON(eng.Selection())
}

func getShapes(this js.Value, args []js.Value) interface{} {
	if !ready() {
		return js.ValueOf("[]")
	}
	id := stage.MainLayer
	if len(args) > 0 && args[0].Type() == js.TypeString {
		id = args[0].String()
	}
	shapes, err := eng.Shapes(id)
	if err != nil {
		return fail(err)
	}
	return toJSON(shapes)
}

func getLayers(this js.Value, args []js.Value) interface{} {
	if !ready() {
		return js.ValueOf("[]")
	}
	return toJSON(eng.LayerIDs())
}

// --- Observers ---

// onViewChange(cb) calls cb with the view JSON after every pan or zoom and
// returns an unsubscribe function.
func onViewChange(this js.Value, args []js.Value) interface{} {
	if !ready() || len(args) < 1 || args[0].Type() != js.TypeFunction {
		return nil
	}
	cb := args[0]
	unsubscribe := eng.OnViewChange(func(v stage.ViewChange) {
		cb.Invoke(toJSON(v))
	})
	return unsubscribeFunc(unsubscribe)
}

func onPointer(this js.Value, args []js.Value) interface{} {
	if !ready() || len(args) < 1 || args[0].Type() != js.TypeFunction {
		return nil
	}
	cb := args[0]
	unsubscribe := eng.OnPointer(func(p geom.Point) {
		cb.Invoke(toJSON(p))
	})
	return unsubscribeFunc(unsubscribe)
}

func unsubscribeFunc(unsubscribe func()) js.Func {
	var fn js.Func
	fn = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		unsubscribe()
		fn.Release()
		return nil
	})
	return fn
}
