//go:build js && wasm

package webgl

import (
	"github.com/gogpu/fluid/backend"
	"github.com/gogpu/fluid/gpucore"
)

// DefaultCanvas is the element id opened when Options.Canvas is empty.
const DefaultCanvas = "canvas"

func init() {
	backend.Register(backend.BackendWebGL, func(opts backend.Options) (gpucore.Device, error) {
		id := opts.Canvas
		if id == "" {
			id = DefaultCanvas
		}
		return Open(id)
	})
}
