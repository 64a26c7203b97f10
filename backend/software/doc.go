// Package software provides a CPU device that emulates the fragment
// pipeline of a GL-style GPU.
//
// The device reflects the uniforms of every GLSL program it is given and
// runs a Go rendition of the pass the program is labeled with, one fragment
// per texel of the bound framebuffer. Textures honor the requested format
// (RGBA16F targets store half-precision values) and filter (nearest or
// bilinear with clamp-to-edge), so the simulator behaves on this device as it
// does on real hardware, including the manual filtering path.
//
// Rows are shaded in parallel bands. A draw still completes before DrawQuad
// returns.
//
// Importing the package registers the "software" backend:
//
//	import _ "github.com/gogpu/fluid/backend/software"
package software
