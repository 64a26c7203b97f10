// Package backend provides the registry of GPU devices the fluid simulator
// can run on.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime.
// Import the backends a program should be able to use:
//
//	import (
//		_ "github.com/gogpu/fluid/backend/software"
//		_ "github.com/gogpu/fluid/backend/wgpu"
//	)
//
// # Backend Selection
//
// Use OpenDefault to get the best available device, or Open to request a
// specific backend by name:
//
//	dev, err := backend.OpenDefault(backend.Options{Width: 800, Height: 600})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer dev.Close()
//
//	sim, err := fluid.New(dev, fluid.Four, fluid.Two)
//
// # Available Backends
//
//   - "webgl": WebGL2 with WebGL1 fallback (js/wasm)
//   - "wgpu": gogpu/wgpu HAL (Vulkan)
//   - "opencl": OpenCL 1.2 devices (build with -tags opencl)
//   - "software": CPU fragment emulation (always available)
package backend
