// Package gpucore provides the GPU abstraction the fluid pipeline runs on.
//
// This package defines the [Device] interface, a small GL-shaped capability
// surface that lets the same pass sequence run on:
//   - WebGL1 and WebGL2 (backend/webgl, js/wasm only)
//   - gogpu/wgpu HAL devices (backend/wgpu)
//   - OpenCL devices (backend/opencl, built with -tags opencl)
//   - a CPU fragment emulator (backend/software)
//
// # Architecture
//
//	               +-----------------+
//	               |      fluid      |
//	               |   (Simulator)   |
//	               +--------+--------+
//	                        |
//	               +--------v--------+
//	               |     gpucore     |
//	               |    (Device)     |
//	               +--------+--------+
//	                        |
//	     +------------+-----+------+------------+
//	     |            |            |            |
//	+----v----+  +----v----+  +----v----+  +----v-----+
//	|  webgl  |  |  wgpu   |  | opencl  |  | software |
//	+---------+  +---------+  +---------+  +----------+
//
// # Capability Negotiation
//
// Optional hardware features (float vs half-float render targets, linear
// filtering of float textures) are resolved once by [Negotiate] into a
// [Config]. Per-frame code never inspects [Capabilities].
//
// # Resource Management
//
// GPU resources are managed via opaque IDs ([TextureID], [FramebufferID],
// [ProgramID]). Devices are responsible for tracking the mapping between IDs
// and actual backend resources.
package gpucore
