// Package opencl runs the fluid pipeline as OpenCL C kernels.
//
// The device is compiled only with the opencl build tag, which links the
// system OpenCL ICD loader:
//
//	go build -tags opencl ./...
//
// Each pass is one kernel executed per output texel over float4 buffers
// stored bottom row first. Uniforms map to kernel arguments in
// declaration order: vec2 and vec3 uniforms take two and three float
// arguments, and a texture takes its buffer, width, height and linear
// flag. Sampling clamps to edge and filters in code, so the device
// reports linear filtering for full float targets. Half float targets are
// not offered.
//
// Without the tag, [Open] returns gpucore.ErrContextUnavailable and no
// backend is registered.
package opencl
