// Package pipeline implements the render-target and program building blocks
// of the fluid passes on top of a [gpucore.Device]: programs with reflected
// uniforms, single-attachment textures, ping-pong buffers and the
// full-screen blit every pass ends with.
package pipeline
