// Package webgl runs the fluid pipeline on a browser WebGL context.
//
// The package only has content when built with GOOS=js GOARCH=wasm.
// Importing it there registers the "webgl" backend:
//
//	import _ "github.com/gogpu/fluid/backend/webgl"
//
//	dev, err := webgl.Open("canvas")
//
// Open asks the canvas for a WebGL2 context and falls back to WebGL1 when
// WebGL2 is missing or cannot render to float textures. Contexts are
// requested without antialiasing, depth or stencil.
//
// Float support comes from extensions:
//
//   - WebGL2 renders to RGBA32F with EXT_color_buffer_float and filters it
//     with OES_texture_float_linear. RGBA16F filtering is core.
//   - WebGL1 needs OES_texture_float or OES_texture_half_float. Linear
//     filtering needs the matching _linear extension.
//
// A context with neither float nor half float targets yields
// gpucore.ErrContextUnavailable. Without linear filtering the pipeline
// switches to manual bilinear interpolation in the shaders.
package webgl
