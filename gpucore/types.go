package gpucore

// Resource IDs
//
// These opaque IDs represent GPU resources. Each device implementation
// maintains a mapping between IDs and actual backend resources.
// IDs are uint64 to accommodate various backend handle sizes.

// TextureID is an opaque handle to a GPU texture.
type TextureID uint64

// FramebufferID is an opaque handle to a framebuffer with a single color
// attachment.
type FramebufferID uint64

// ProgramID is an opaque handle to a linked vertex+fragment program.
type ProgramID uint64

// InvalidID represents an invalid or null resource ID.
const InvalidID = 0

// DefaultFramebuffer addresses the visible surface (the canvas in WebGL,
// the presentation texture elsewhere).
const DefaultFramebuffer FramebufferID = InvalidID

// MaxTextureUnits is the texture unit ceiling every device honors.
const MaxTextureUnits = 32

// UniformLocation addresses an active uniform of a linked program.
// A negative location is inactive; setting it is a no-op, as in GL.
type UniformLocation int32

// NoLocation is the location returned for uniforms a program does not use.
const NoLocation UniformLocation = -1

// Valid reports whether the location refers to an active uniform.
func (l UniformLocation) Valid() bool { return l >= 0 }

// PixelFormat specifies the texel format of a render target.
type PixelFormat uint32

// Pixel formats.
const (
	// FormatRGBA32F is four 32-bit float channels.
	FormatRGBA32F PixelFormat = iota + 1

	// FormatRGBA16F is four 16-bit (half) float channels.
	FormatRGBA16F
)

// BytesPerTexel returns the storage size of one texel.
func (f PixelFormat) BytesPerTexel() int {
	switch f {
	case FormatRGBA32F:
		return 16
	case FormatRGBA16F:
		return 8
	default:
		return 0
	}
}

// String returns the format name.
func (f PixelFormat) String() string {
	switch f {
	case FormatRGBA32F:
		return "rgba32f"
	case FormatRGBA16F:
		return "rgba16f"
	default:
		return "unknown"
	}
}

// FilterMode specifies texture sampling.
type FilterMode uint32

// Filter modes.
const (
	FilterLinear FilterMode = iota + 1
	FilterNearest
)

// String returns the filter name.
func (f FilterMode) String() string {
	switch f {
	case FilterLinear:
		return "linear"
	case FilterNearest:
		return "nearest"
	default:
		return "unknown"
	}
}

// Dialect identifies the shading language a device consumes.
type Dialect uint32

// Shading dialects.
const (
	// DialectGLSL100 is GLSL ES 1.00 (WebGL1 and WebGL2 in compatibility mode).
	DialectGLSL100 Dialect = iota + 1

	// DialectWGSL is the WebGPU shading language.
	DialectWGSL

	// DialectOpenCLC is OpenCL C with one kernel per pass.
	DialectOpenCLC

	// DialectGLSLKernel is GLSL ES 1.00 reflected for uniforms and executed
	// by built-in CPU kernels keyed by program label.
	DialectGLSLKernel
)

// String returns the dialect name.
func (d Dialect) String() string {
	switch d {
	case DialectGLSL100:
		return "glsl100"
	case DialectWGSL:
		return "wgsl"
	case DialectOpenCLC:
		return "opencl-c"
	case DialectGLSLKernel:
		return "glsl-kernel"
	default:
		return "unknown"
	}
}

// TextureDescriptor describes a render target allocation.
type TextureDescriptor struct {
	Label  string
	Width  int
	Height int
	Format PixelFormat
	Filter FilterMode
}

// RenderTarget is a texture plus the framebuffer it is attached to.
type RenderTarget struct {
	Texture     TextureID
	Framebuffer FramebufferID
}

// ProgramDescriptor carries the shader sources of one program.
type ProgramDescriptor struct {
	// Label names the pass; devices use it for diagnostics and, for
	// kernel-based devices, to select the pass implementation.
	Label string

	Vertex   string
	Fragment string
}

// ShaderStage identifies a shader unit for compile diagnostics.
type ShaderStage uint32

// Shader stages.
const (
	StageVertex ShaderStage = iota + 1
	StageFragment
)

// String returns the stage name.
func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// UniformType is the declared type of an active uniform.
type UniformType uint32

// Uniform types.
const (
	UniformFloat UniformType = iota + 1
	UniformVec2
	UniformVec3
	UniformVec4
	UniformInt
	UniformSampler2D
)

// ActiveUniform is one entry of a program's uniform reflection.
type ActiveUniform struct {
	Name     string
	Type     UniformType
	Location UniformLocation
}

// QuadVertices is the full-screen quad every device draws: four vertices of
// (clip x, clip y, u, v) as a triangle strip covering [-1,1]² with texture
// coordinates over [0,1]².
var QuadVertices = [16]float32{
	-1, -1, 0, 0,
	1, -1, 1, 0,
	-1, 1, 0, 1,
	1, 1, 1, 1,
}

// QuadStride is the byte stride of one QuadVertices vertex.
const QuadStride = 16
