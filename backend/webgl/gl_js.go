//go:build js && wasm

package webgl

// GL enums used by the device. Values are shared by WebGL1 and WebGL2.
const (
	glDepthTest             = 0x0B71
	glBlend                 = 0x0BE2
	glTexture2D             = 0x0DE1
	glMaxTextureSize        = 0x0D33
	glUnsignedByte          = 0x1401
	glInt                   = 0x1404
	glFloat                 = 0x1406
	glHalfFloat             = 0x140B
	glRGBA                  = 0x1908
	glNearest               = 0x2600
	glLinear                = 0x2601
	glTextureMagFilter      = 0x2800
	glTextureMinFilter      = 0x2801
	glTextureWrapS          = 0x2802
	glTextureWrapT          = 0x2803
	glColorBufferBit        = 0x4000
	glTriangleStrip         = 0x0005
	glClampToEdge           = 0x812F
	glTexture0              = 0x84C0
	glRGBA32F               = 0x8814
	glRGBA16F               = 0x881A
	glMaxTextureImageUnits  = 0x8872
	glArrayBuffer           = 0x8892
	glStaticDraw            = 0x88E4
	glFragmentShader        = 0x8B30
	glVertexShader          = 0x8B31
	glFloatVec2             = 0x8B50
	glFloatVec3             = 0x8B51
	glFloatVec4             = 0x8B52
	glBool                  = 0x8B56
	glSampler2D             = 0x8B5E
	glCompileStatus         = 0x8B81
	glLinkStatus            = 0x8B82
	glActiveUniforms        = 0x8B86
	glFramebufferComplete   = 0x8CD5
	glColorAttachment0      = 0x8CE0
	glFramebuffer           = 0x8D40
	glHalfFloatOES          = 0x8D61
	glNoError               = 0
	glContextLostWebGL      = 0x9242
)
