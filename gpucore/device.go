package gpucore

// Device abstracts over the GPU APIs the simulation can run on.
//
// The interface mirrors the small slice of a GL-style state machine the
// fluid pipeline needs: render targets, programs with reflected uniforms,
// texture units, and a single full-screen quad draw. Each backend implements
// it once and the simulator selects the backend once at construction, so no
// per-frame code branches on the API in use.
//
// State is global per device, as in GL: the bound program, the textures bound
// to units and the bound framebuffer persist across calls until replaced.
// Devices are not safe for interleaved use from multiple goroutines.
//
// Resource lifecycle:
//   - Resources are created via Create*/Compile* methods
//   - Resources must be explicitly destroyed via Destroy* methods
//   - IDs become invalid after destruction and must not be reused
type Device interface {
	// Name returns the backend identifier (e.g., "software", "wgpu").
	Name() string

	// Capabilities reports the optional features of the device. The value
	// is fixed for the lifetime of the device.
	Capabilities() Capabilities

	// DrawingBufferSize returns the size of the default framebuffer in
	// pixels (the canvas backing store in WebGL).
	DrawingBufferSize() (width, height int)

	// === Render targets ===

	// CreateRenderTarget allocates a zero-filled, clamp-to-edge texture
	// attached as the only color attachment of a new framebuffer.
	CreateRenderTarget(desc TextureDescriptor) (RenderTarget, error)

	// DestroyRenderTarget releases both objects of a render target.
	DestroyRenderTarget(rt RenderTarget)

	// BindTexture activates the given unit and binds tex to it.
	BindTexture(unit int, tex TextureID) error

	// === Programs ===

	// CompileProgram compiles and links a program, returning its active
	// uniforms. Compile failures are reported as *ShaderCompileError and
	// link failures as *ProgramLinkError.
	CompileProgram(desc ProgramDescriptor) (ProgramID, []ActiveUniform, error)

	// DestroyProgram releases a program.
	DestroyProgram(id ProgramID)

	// UseProgram makes a program current for subsequent uniform and draw
	// calls.
	UseProgram(id ProgramID)

	// Uniform setters apply to the current program. Inactive locations
	// are ignored.
	Uniform1f(loc UniformLocation, v float32)
	Uniform2f(loc UniformLocation, x, y float32)
	Uniform3f(loc UniformLocation, x, y, z float32)
	Uniform1i(loc UniformLocation, v int32)

	// === Drawing ===

	// BindFramebuffer selects the draw target. DefaultFramebuffer selects
	// the visible surface.
	BindFramebuffer(fb FramebufferID)

	// Viewport sets the draw area in pixels.
	Viewport(width, height int)

	// Clear fills the bound framebuffer with a color.
	Clear(r, g, b, a float32)

	// DrawQuad draws the full-screen quad with the current program into
	// the bound framebuffer. Errors recorded since the previous draw are
	// reported here.
	DrawQuad() error

	// ReadPixels reads a rectangle of the given framebuffer as RGBA
	// float32 values, bottom row first.
	ReadPixels(fb FramebufferID, x, y, width, height int) ([]float32, error)

	// Close releases the device and everything it still owns.
	Close() error
}
