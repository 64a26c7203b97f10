//go:build js && wasm

// Command fluidwasm exposes the simulator to JavaScript.
//
// Loading the module defines a global object:
//
//	const sim = fluid.create("canvas", 4, 2);
//	sim.splat(20, [x, y], [dx, dy], [1, 0, 0]);
//	sim.update(false, t, 0, 20, 0.5, 2, 0.25, 0.8);
//
// create returns an Error instead of a simulator when neither WebGL2 nor
// WebGL is available. Failing methods return an Error; successful ones
// return undefined.
package main

import (
	"log/slog"
	"syscall/js"

	"github.com/gogpu/fluid"
	"github.com/gogpu/fluid/backend/webgl"
)

func main() {
	fluid.SetLogger(slog.New(slog.NewTextHandler(console{}, &slog.HandlerOptions{Level: slog.LevelInfo})))

	api := js.Global().Get("Object").New()
	api.Set("create", js.FuncOf(create))
	api.Set("Mode", modes())
	js.Global().Set("fluid", api)

	if handler := js.Global().Get("onFluidReady"); handler.Type() == js.TypeFunction {
		handler.Invoke(api)
	}
	select {}
}

func modes() js.Value {
	m := js.Global().Get("Object").New()
	for _, mode := range []fluid.Mode{fluid.Dye, fluid.Velocity, fluid.Pressure} {
		m.Set(mode.String(), int(mode))
	}
	return m
}

// create(canvasId, sim, dye)
func create(_ js.Value, args []js.Value) any {
	if len(args) < 3 {
		return jsError("create(canvasId, sim, dye): missing arguments")
	}
	sim, dye := fluid.Resolution(args[1].Int()), fluid.Resolution(args[2].Int())

	dev, err := webgl.Open(args[0].String())
	if err != nil {
		return jsError(err.Error())
	}
	s, err := fluid.New(dev, sim, dye)
	if err != nil {
		dev.Close()
		return jsError(err.Error())
	}
	return newHandle(dev, s).object()
}

// console writes log lines to the browser console.
type console struct{}

func (console) Write(p []byte) (int, error) {
	js.Global().Get("console").Call("log", string(p))
	return len(p), nil
}

func jsError(msg string) js.Value {
	return js.Global().Get("Error").New("fluid: " + msg)
}
