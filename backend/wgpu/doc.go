// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu runs the fluid pipeline on a gogpu/wgpu HAL device.
//
// Importing the package registers the "wgpu" backend, which opens a
// standalone Vulkan device:
//
//	import _ "github.com/gogpu/fluid/backend/wgpu"
//
//	dev, err := backend.Open(backend.BackendWGPU, backend.Options{Width: 800, Height: 600})
//
// Applications that already own a device share it through [New] or, for a
// gogpu window, [NewFromProvider].
//
// # Programs
//
// Passes are WGSL. Each program is validated and compiled to SPIR-V with
// gogpu/naga; its uniforms are reflected from the Params block and the
// texture bindings, so the GL-style uniform setters of gpucore.Device map
// onto a uniform buffer and a bind group built at draw time. A texture
// binding's location takes the texture unit it samples, as a sampler2D
// uniform would.
//
// # Formats
//
// Render targets are RGBA32Float or RGBA16Float. WebGPU does not filter
// either without optional features, so the device reports no linear
// support and the pipeline runs with manual bilinear filtering. The
// default framebuffer is an offscreen RGBA8Unorm texture; ReadPixels
// returns it normalized to [0,1].
//
// # Synchronization
//
// Every draw, clear and readback is submitted on its own and waited for.
// A submission that does not finish within five seconds is reported as
// gpucore.ErrDeviceLost.
package wgpu
