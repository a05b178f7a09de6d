//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/inamate/whiteboard/internal/document"
	"github.com/inamate/whiteboard/internal/whiteboard"
)

var (
	session *whiteboard.Session
	// onBroadcast is the JS function that forwards payloads to the relay.
	onBroadcast js.Value
)

func main() {
	session = whiteboard.NewSession(whiteboard.WithBroadcast(broadcast))

	// Create the whiteboard API object
	api := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	api.Set("onBroadcast", js.FuncOf(setBroadcast))
	api.Set("setTool", js.FuncOf(setTool))
	api.Set("pointerDown", js.FuncOf(pointerDown))
	api.Set("pointerMove", js.FuncOf(pointerMove))
	api.Set("pointerUp", js.FuncOf(pointerUp))
	api.Set("keyUp", js.FuncOf(keyUp))
	api.Set("setText", js.FuncOf(setText))
	api.Set("zoomIn", js.FuncOf(zoomIn))
	api.Set("zoomOut", js.FuncOf(zoomOut))
	api.Set("clear", js.FuncOf(clearBoard))
	api.Set("applyRemote", js.FuncOf(applyRemote))
	api.Set("loadSample", js.FuncOf(loadSample))
	api.Set("tick", js.FuncOf(tick))

	// --- Queries (frontend ← engine) ---
	api.Set("render", js.FuncOf(render))
	api.Set("getTool", js.FuncOf(getTool))
	api.Set("getSnapshot", js.FuncOf(getSnapshot))

	js.Global().Set("whiteboard", api)
	js.Global().Set("whiteboardWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func broadcast(payload string) {
	if onBroadcast.Type() == js.TypeFunction {
		onBroadcast.Invoke(payload)
	}
}

func errorResult(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func okResult() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// pointArgs reads an (x, y) pair from the first two arguments.
func pointArgs(args []js.Value) (float64, float64, bool) {
	if len(args) < 2 {
		return 0, 0, false
	}
	return args[0].Float(), args[1].Float(), true
}

// --- Command Handlers ---

func setBroadcast(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		onBroadcast = js.Undefined()
		return nil
	}
	onBroadcast = args[0]
	return nil
}

func setTool(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing tool name"})
	}
	name, err := whiteboard.ParseTool(args[0].String())
	if err != nil {
		return errorResult(err)
	}
	if err := session.SetTool(name); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func pointerDown(this js.Value, args []js.Value) interface{} {
	if x, y, ok := pointArgs(args); ok {
		session.PointerDown(x, y)
	}
	return nil
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	if x, y, ok := pointArgs(args); ok {
		session.PointerMove(x, y)
	}
	return nil
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	if x, y, ok := pointArgs(args); ok {
		session.PointerUp(x, y)
	}
	return nil
}

func keyUp(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(false)
	}
	return js.ValueOf(session.KeyUp(args[0].String()))
}

func setText(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	session.SetText(args[0].String())
	return nil
}

func zoomIn(this js.Value, args []js.Value) interface{} {
	session.ZoomIn()
	return nil
}

func zoomOut(this js.Value, args []js.Value) interface{} {
	session.ZoomOut()
	return nil
}

func clearBoard(this js.Value, args []js.Value) interface{} {
	session.Clear()
	return nil
}

func applyRemote(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing payload"})
	}
	if err := session.ApplyRemote(args[0].String()); err != nil {
		return errorResult(err)
	}
	return okResult()
}

// loadSample replaces the board with the demo drawing without broadcasting.
func loadSample(this js.Value, args []js.Value) interface{} {
	session.Engine().Load(document.NewSampleSnapshot())
	return okResult()
}

func tick(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(session.Tick())
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(session.RenderJSON())
}

func getTool(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(string(session.Tool()))
}

func getSnapshot(this js.Value, args []js.Value) interface{} {
	payload, err := session.Outbound()
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(payload)
}
