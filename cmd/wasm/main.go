//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/printloom/printloom/backend-go/internal/geometry"
	"github.com/printloom/printloom/backend-go/internal/layout"
)

// The wasm build exposes the layout engines to the browser so the editor can
// preview a nest instantly without a round trip. The server-side call is
// still the one that charges credits and persists the result.

type layoutRequest struct {
	SheetWidth  float64          `json:"sheetWidth"`
	SheetHeight float64          `json:"sheetHeight"`
	Layers      []geometry.Layer `json:"layers"`
	Padding     *float64         `json:"padding,omitempty"`
}

const defaultPadding = 0.125

func main() {
	engine := js.Global().Get("Object").New()
	engine.Set("autoNest", js.FuncOf(autoNest))
	engine.Set("smartFill", js.FuncOf(smartFill))

	js.Global().Set("printloomEngine", engine)
	js.Global().Set("printloomWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func autoNest(this js.Value, args []js.Value) interface{} {
	sheet, layers, padding, errVal := decodeRequest(args)
	if errVal != nil {
		return errVal
	}

	result := layout.AutoNest(sheet, layers, padding)
	return toJSON(result)
}

func smartFill(this js.Value, args []js.Value) interface{} {
	sheet, layers, padding, errVal := decodeRequest(args)
	if errVal != nil {
		return errVal
	}

	result := layout.SmartFill(sheet, layers, padding)
	return toJSON(result)
}

func decodeRequest(args []js.Value) (geometry.Sheet, []geometry.Layer, float64, interface{}) {
	if len(args) < 1 {
		return geometry.Sheet{}, nil, 0, errValue("missing request JSON")
	}

	var req layoutRequest
	if err := json.Unmarshal([]byte(args[0].String()), &req); err != nil {
		return geometry.Sheet{}, nil, 0, errValue("invalid request: " + err.Error())
	}

	sheet := geometry.Sheet{Width: req.SheetWidth, Height: req.SheetHeight}
	padding := defaultPadding
	if req.Padding != nil {
		padding = *req.Padding
	}

	if err := layout.Validate(sheet, req.Layers, padding); err != nil {
		return geometry.Sheet{}, nil, 0, errValue(err.Error())
	}

	return sheet, req.Layers, padding, nil
}

func toJSON(v interface{}) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return errValue(err.Error())
	}
	return js.ValueOf(string(data))
}

func errValue(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": msg})
}
