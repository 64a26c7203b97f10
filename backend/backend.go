package backend

import (
	"errors"

	"github.com/gogpu/fluid/gpucore"
)

// Backend name constants.
const (
	// BackendSoftware is the name of the CPU fragment-emulation device.
	BackendSoftware = "software"
	// BackendWGPU is the name of the gogpu/wgpu HAL device.
	BackendWGPU = "wgpu"
	// BackendWebGL is the name of the browser WebGL device (js/wasm only).
	BackendWebGL = "webgl"
	// BackendOpenCL is the name of the OpenCL device (-tags opencl).
	BackendOpenCL = "opencl"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or cannot open a device.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Options configures the device a factory opens.
type Options struct {
	// Width and Height size the default framebuffer of headless devices.
	// Devices bound to a canvas take the canvas size instead.
	Width  int
	Height int

	// Canvas is the element id of the target canvas (webgl only).
	Canvas string
}

// Factory opens a device.
type Factory func(opts Options) (gpucore.Device, error)
