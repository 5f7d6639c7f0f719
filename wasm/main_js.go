//go:build js && wasm

package main

import (
	"encoding/hex"
	"syscall/js"

	"github.com/fekomat/fekomat/api"
	"github.com/fekomat/fekomat/export"
)

func bytesFromJS(v js.Value) []byte {
	buf := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(buf, v)
	return buf
}

// fekomatConvert(bytes, type, [varName]) returns a Uint8Array or an error string.
func fekomatConvert(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("missing matrix bytes or output type")
	}
	kind, err := export.ParseKind(args[1].String())
	if err != nil {
		return js.ValueOf(err.Error())
	}
	opts := export.DefaultOptions()
	if len(args) > 2 && args[2].Type() == js.TypeString {
		opts.VarName = args[2].String()
	}
	out, _, err := api.Convert(bytesFromJS(args[0]), kind, opts)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	uint8arr := js.Global().Get("Uint8Array").New(len(out))
	js.CopyBytesToJS(uint8arr, out)
	return uint8arr
}

func fekomatInspect(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing matrix bytes")
	}
	h, err := api.Inspect(bytesFromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	result := js.Global().Get("Object").New()
	result.Set("version", int(h.Version))
	result.Set("supported", h.CheckVersion() == nil)
	result.Set("checksum", hex.EncodeToString(h.Checksum[:]))
	result.Set("precision", h.Precision.String())
	result.Set("rows", h.Rows)
	result.Set("cols", h.Cols)
	return result
}

func main() {
	js.Global().Set("fekomatConvert", js.FuncOf(fekomatConvert))
	js.Global().Set("fekomatInspect", js.FuncOf(fekomatInspect))
	select {}
}
