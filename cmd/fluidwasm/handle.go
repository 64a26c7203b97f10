//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/gogpu/fluid"
	"github.com/gogpu/fluid/backend/webgl"
)

// handle is the JavaScript object returned by create.
type handle struct {
	dev *webgl.Device
	sim *fluid.Simulator
}

func newHandle(dev *webgl.Device, sim *fluid.Simulator) *handle {
	return &handle{dev: dev, sim: sim}
}

func (h *handle) object() js.Value {
	obj := js.Global().Get("Object").New()
	for name, fn := range map[string]func([]js.Value) error{
		"update":      h.update,
		"resize":      h.resize,
		"splat":       h.splat,
		"setObstacle": h.setObstacle,
		"close":       h.close,
	} {
		obj.Set(name, js.FuncOf(func(_ js.Value, args []js.Value) any {
			if err := fn(args); err != nil {
				return jsError(err.Error())
			}
			return js.Undefined()
		}))
	}
	obj.Set("webgl2", h.dev.WebGL2())
	return obj
}

// update(paused, time, mode, iterations, viscosity, dissipation, curl, pressure)
func (h *handle) update(args []js.Value) error {
	if len(args) < 8 {
		return errArgs("update(paused, time, mode, iterations, viscosity, dissipation, curl, pressure)")
	}
	return h.sim.Update(fluid.Frame{
		Paused:      args[0].Bool(),
		Time:        args[1].Float(),
		Mode:        fluid.Mode(args[2].Int()),
		Iterations:  args[3].Int(),
		Viscosity:   float32(args[4].Float()),
		Dissipation: float32(args[5].Float()),
		Curl:        float32(args[6].Float()),
		Pressure:    float32(args[7].Float()),
	})
}

// resize(sim, dye) picks up the current canvas size.
func (h *handle) resize(args []js.Value) error {
	if len(args) < 2 {
		return errArgs("resize(sim, dye)")
	}
	return h.sim.Resize(fluid.Resolution(args[0].Int()), fluid.Resolution(args[1].Int()))
}

// splat(radius, position, velocity, color)
func (h *handle) splat(args []js.Value) error {
	if len(args) < 4 {
		return errArgs("splat(radius, position, velocity, color)")
	}
	pos, vel, color := floats(args[1]), floats(args[2]), floats(args[3])
	if len(pos) < 2 || len(vel) < 2 || len(color) < 3 {
		return errArgs("splat: position and velocity need 2 components, color 3")
	}
	return h.sim.Splat(float32(args[0].Float()), pos, vel, color)
}

// setObstacle(radius, position, color, isCircle); a null radius removes
// the obstacle.
func (h *handle) setObstacle(args []js.Value) error {
	if len(args) < 4 {
		return errArgs("setObstacle(radius, position, color, isCircle)")
	}
	var radius *float32
	if r := args[0]; !r.IsNull() && !r.IsUndefined() {
		v := float32(r.Float())
		radius = &v
	}
	pos, color := floats(args[1]), floats(args[2])
	if len(pos) < 2 || len(color) < 3 {
		return errArgs("setObstacle: position needs 2 components, color 3")
	}
	return h.sim.SetObstacle(radius, pos, color, args[3].Truthy())
}

func (h *handle) close([]js.Value) error {
	err := h.sim.Close()
	if cerr := h.dev.Close(); err == nil {
		err = cerr
	}
	return err
}

// floats copies a JavaScript array or typed array.
func floats(v js.Value) []float32 {
	if v.IsNull() || v.IsUndefined() {
		return nil
	}
	n := v.Length()
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(v.Index(i).Float())
	}
	return out
}

type argsError string

func (e argsError) Error() string { return string(e) }

func errArgs(usage string) error { return argsError("bad arguments: " + usage) }
