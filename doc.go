// Package fluid is a real-time incompressible fluid simulation that runs
// entirely on the GPU.
//
// # Overview
//
// Every frame is a fixed chain of full-screen fragment passes over
// offscreen float textures: vorticity confinement, semi-Lagrangian
// advection, a Jacobi pressure solve with gradient subtraction, and dye
// transport. Velocity, pressure and dye live in ping-pong texture pairs;
// an optional obstacle mask makes regions of the domain solid.
//
// # Quick Start
//
//	import (
//		"github.com/gogpu/fluid"
//		"github.com/gogpu/fluid/backend"
//		_ "github.com/gogpu/fluid/backend/software"
//	)
//
//	dev, err := backend.OpenDefault(backend.Options{Width: 400, Height: 400})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer dev.Close()
//
//	sim, err := fluid.New(dev, fluid.Four, fluid.Two)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer sim.Close()
//
//	_ = sim.Splat(20, []float32{200, 200}, []float32{0, 300}, []float32{1, 0, 0})
//	p := fluid.DefaultParams()
//	_ = sim.Update(p.Frame(time.Since(start).Seconds(), fluid.Dye, false))
//
// # Devices
//
// The simulator drives a [gpucore.Device]. Devices differ in shading
// language and in optional features (float or half-float render targets,
// linear filtering of them). The differences are resolved once in New by
// [gpucore.Negotiate]; the per-frame code is the same on every device.
// When the negotiated format cannot be filtered linearly, the programs are
// compiled with manual bilinear filtering.
//
// # Coordinates
//
// Positions passed to Splat and SetObstacle are canvas pixels with the
// origin at the bottom-left corner and y pointing up, the convention of
// gl_FragCoord. Hosts that receive top-down pointer coordinates flip y.
//
// # Hosts
//
// Package choreo holds the host-side pieces a front-end layers on top:
// pointer tracking and scripted jets. The commands under cmd run the
// simulator headless (fluidsim), in a desktop window (fluidview) and in
// the browser (fluidwasm).
//
// # Logging
//
// The package is silent by default. Use [SetLogger] to route diagnostics
// to a slog.Logger.
package fluid
