//go:build js && wasm

package webgl

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"syscall/js"

	"github.com/gogpu/fluid"
	"github.com/gogpu/fluid/gpucore"
)

var (
	errNoCanvas          = errors.New("webgl: canvas not found")
	errInvalidSize       = errors.New("webgl: invalid size")
	errUnsupportedFormat = errors.New("webgl: format not renderable")
	errNotFilterable     = errors.New("webgl: format not linearly filterable")
	errIncomplete        = errors.New("webgl: framebuffer incomplete")
	errNoProgram         = errors.New("webgl: no program in use")
)

// contextAttributes are the attributes every context is requested with.
var contextAttributes = map[string]any{
	"antialias": false,
	"alpha":     true,
	"depth":     false,
	"stencil":   false,
}

type renderTarget struct {
	texture     js.Value
	framebuffer js.Value
	width       int
	height      int
	format      gpucore.PixelFormat
}

type program struct {
	label     string
	value     js.Value
	locations []js.Value
	uniforms  []gpucore.ActiveUniform
}

// Device implements gpucore.Device on a browser WebGL context.
//
// WebGL is single threaded; a Device must only be used from the goroutine
// that owns the JS event loop.
type Device struct {
	gl      js.Value
	canvas  js.Value
	webgl2  bool
	caps    gpucore.Capabilities
	maxSize int

	quad js.Value

	targets      map[gpucore.TextureID]*renderTarget
	framebuffers map[gpucore.FramebufferID]*renderTarget
	programs     map[gpucore.ProgramID]*program
	nextID       uint64

	current *program
	closed  bool
}

var _ gpucore.Device = (*Device)(nil)

// Open creates a device on the canvas with the given element id. A WebGL2
// context is preferred; WebGL1 is used when WebGL2 is missing or lacks
// float render targets.
func Open(canvasID string) (*Device, error) {
	canvas := js.Global().Get("document").Call("getElementById", canvasID)
	if canvas.IsNull() || canvas.IsUndefined() {
		return nil, fmt.Errorf("%w: %q", errNoCanvas, canvasID)
	}
	return OpenCanvas(canvas)
}

// OpenCanvas creates a device on a canvas element.
func OpenCanvas(canvas js.Value) (*Device, error) {
	attrs := js.ValueOf(contextAttributes)

	if gl := canvas.Call("getContext", "webgl2", attrs); !gl.IsNull() {
		caps := webgl2Capabilities(gl)
		if _, err := gpucore.Negotiate(caps); err == nil {
			return newDevice(canvas, gl, true, caps), nil
		}
		fluid.Logger().Info("webgl2 lacks float render targets, trying webgl")
	}
	if gl := canvas.Call("getContext", "webgl", attrs); !gl.IsNull() {
		caps := webgl1Capabilities(gl)
		if _, err := gpucore.Negotiate(caps); err == nil {
			return newDevice(canvas, gl, false, caps), nil
		}
	}
	return nil, fmt.Errorf("%w: neither webgl2 nor webgl with float textures", gpucore.ErrContextUnavailable)
}

func hasExtension(gl js.Value, name string) bool {
	ext := gl.Call("getExtension", name)
	return !ext.IsNull() && !ext.IsUndefined()
}

// webgl2Capabilities probes EXT_color_buffer_float and the optional float
// linear extension. Half float filtering is core in WebGL2.
func webgl2Capabilities(gl js.Value) gpucore.Capabilities {
	colorFloat := hasExtension(gl, "EXT_color_buffer_float")
	return gpucore.Capabilities{
		Dialect:             gpucore.DialectGLSL100,
		FloatRenderable:     colorFloat,
		HalfFloatRenderable: colorFloat || hasExtension(gl, "EXT_color_buffer_half_float"),
		FloatLinear:         hasExtension(gl, "OES_texture_float_linear"),
		HalfFloatLinear:     true,
		MaxTextureUnits:     gl.Call("getParameter", glMaxTextureImageUnits).Int(),
	}
}

// webgl1Capabilities probes the OES float texture extensions and their
// linear variants.
func webgl1Capabilities(gl js.Value) gpucore.Capabilities {
	float := hasExtension(gl, "OES_texture_float")
	halfFloat := hasExtension(gl, "OES_texture_half_float")
	caps := gpucore.Capabilities{
		Dialect:             gpucore.DialectGLSL100,
		FloatRenderable:     float,
		HalfFloatRenderable: halfFloat,
		MaxTextureUnits:     gl.Call("getParameter", glMaxTextureImageUnits).Int(),
	}
	if float {
		hasExtension(gl, "WEBGL_color_buffer_float")
		caps.FloatLinear = hasExtension(gl, "OES_texture_float_linear")
	}
	if halfFloat {
		hasExtension(gl, "EXT_color_buffer_half_float")
		caps.HalfFloatLinear = hasExtension(gl, "OES_texture_half_float_linear")
	}
	return caps
}

func newDevice(canvas, gl js.Value, webgl2 bool, caps gpucore.Capabilities) *Device {
	d := &Device{
		gl:           gl,
		canvas:       canvas,
		webgl2:       webgl2,
		caps:         caps,
		maxSize:      gl.Call("getParameter", glMaxTextureSize).Int(),
		targets:      make(map[gpucore.TextureID]*renderTarget),
		framebuffers: make(map[gpucore.FramebufferID]*renderTarget),
		programs:     make(map[gpucore.ProgramID]*program),
	}

	gl.Call("disable", glDepthTest)
	gl.Call("disable", glBlend)

	vertices := make([]byte, len(gpucore.QuadVertices)*4)
	for i, v := range gpucore.QuadVertices {
		binary.LittleEndian.PutUint32(vertices[i*4:], math.Float32bits(v))
	}
	d.quad = gl.Call("createBuffer")
	gl.Call("bindBuffer", glArrayBuffer, d.quad)
	gl.Call("bufferData", glArrayBuffer, float32Array(vertices), glStaticDraw)
	gl.Call("vertexAttribPointer", 0, 2, glFloat, false, gpucore.QuadStride, 0)
	gl.Call("vertexAttribPointer", 1, 2, glFloat, false, gpucore.QuadStride, 8)
	gl.Call("enableVertexAttribArray", 0)
	gl.Call("enableVertexAttribArray", 1)

	fluid.Logger().Info("webgl device created", "webgl2", webgl2, "caps", fmt.Sprintf("%+v", caps))
	return d
}

// float32Array copies little-endian float bytes into a new Float32Array.
func float32Array(b []byte) js.Value {
	u8 := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(u8, b)
	return js.Global().Get("Float32Array").New(u8.Get("buffer"))
}

// Name returns "webgl".
func (d *Device) Name() string { return "webgl" }

// Capabilities returns what the context and its extensions support.
func (d *Device) Capabilities() gpucore.Capabilities { return d.caps }

// WebGL2 reports whether the context is WebGL2.
func (d *Device) WebGL2() bool { return d.webgl2 }

// DrawingBufferSize returns the canvas backing store size.
func (d *Device) DrawingBufferSize() (int, int) {
	return d.gl.Get("drawingBufferWidth").Int(), d.gl.Get("drawingBufferHeight").Int()
}

func (d *Device) newID() uint64 {
	d.nextID++
	return d.nextID
}

func (d *Device) texelType(f gpucore.PixelFormat) (internal, typ int, ok bool) {
	switch {
	case f == gpucore.FormatRGBA32F && d.caps.FloatRenderable:
		if d.webgl2 {
			return glRGBA32F, glFloat, true
		}
		return glRGBA, glFloat, true
	case f == gpucore.FormatRGBA16F && d.caps.HalfFloatRenderable:
		if d.webgl2 {
			return glRGBA16F, glHalfFloat, true
		}
		return glRGBA, glHalfFloatOES, true
	}
	return 0, 0, false
}

// CreateRenderTarget allocates a float texture and a framebuffer with it as
// the only color attachment.
func (d *Device) CreateRenderTarget(desc gpucore.TextureDescriptor) (gpucore.RenderTarget, error) {
	fail := func(err error) (gpucore.RenderTarget, error) {
		return gpucore.RenderTarget{}, &gpucore.ResourceError{
			Resource: "render target " + desc.Label,
			Width:    desc.Width,
			Height:   desc.Height,
			Err:      err,
		}
	}
	if d.closed {
		return fail(gpucore.ErrDeviceClosed)
	}
	if desc.Width <= 0 || desc.Height <= 0 || desc.Width > d.maxSize || desc.Height > d.maxSize {
		return fail(errInvalidSize)
	}
	internal, typ, ok := d.texelType(desc.Format)
	if !ok {
		return fail(fmt.Errorf("%w: %s", errUnsupportedFormat, desc.Format))
	}
	filter := glNearest
	if desc.Filter == gpucore.FilterLinear {
		linear := d.caps.FloatLinear
		if desc.Format == gpucore.FormatRGBA16F {
			linear = d.caps.HalfFloatLinear
		}
		if !linear {
			return fail(fmt.Errorf("%w: %s", errNotFilterable, desc.Format))
		}
		filter = glLinear
	}

	gl := d.gl
	tex := gl.Call("createTexture")
	gl.Call("activeTexture", glTexture0)
	gl.Call("bindTexture", glTexture2D, tex)
	gl.Call("texParameteri", glTexture2D, glTextureMinFilter, filter)
	gl.Call("texParameteri", glTexture2D, glTextureMagFilter, filter)
	gl.Call("texParameteri", glTexture2D, glTextureWrapS, glClampToEdge)
	gl.Call("texParameteri", glTexture2D, glTextureWrapT, glClampToEdge)
	gl.Call("texImage2D", glTexture2D, 0, internal, desc.Width, desc.Height, 0, glRGBA, typ, js.Null())

	fb := gl.Call("createFramebuffer")
	gl.Call("bindFramebuffer", glFramebuffer, fb)
	gl.Call("framebufferTexture2D", glFramebuffer, glColorAttachment0, glTexture2D, tex, 0)
	status := gl.Call("checkFramebufferStatus", glFramebuffer).Int()
	if status != glFramebufferComplete {
		gl.Call("deleteFramebuffer", fb)
		gl.Call("deleteTexture", tex)
		return fail(fmt.Errorf("%w: status %#x", errIncomplete, status))
	}
	gl.Call("viewport", 0, 0, desc.Width, desc.Height)
	gl.Call("clearColor", 0, 0, 0, 0)
	gl.Call("clear", glColorBufferBit)

	rt := gpucore.RenderTarget{
		Texture:     gpucore.TextureID(d.newID()),
		Framebuffer: gpucore.FramebufferID(d.newID()),
	}
	t := &renderTarget{texture: tex, framebuffer: fb, width: desc.Width, height: desc.Height, format: desc.Format}
	d.targets[rt.Texture] = t
	d.framebuffers[rt.Framebuffer] = t
	return rt, nil
}

// DestroyRenderTarget deletes the texture and framebuffer. Destroying a
// target twice is a no-op.
func (d *Device) DestroyRenderTarget(rt gpucore.RenderTarget) {
	t, ok := d.targets[rt.Texture]
	if !ok {
		return
	}
	d.gl.Call("deleteFramebuffer", t.framebuffer)
	d.gl.Call("deleteTexture", t.texture)
	delete(d.targets, rt.Texture)
	delete(d.framebuffers, rt.Framebuffer)
}

// BindTexture activates unit and binds tex to it. InvalidID unbinds.
func (d *Device) BindTexture(unit int, tex gpucore.TextureID) error {
	if d.closed {
		return gpucore.ErrDeviceClosed
	}
	if unit < 0 || unit >= gpucore.MaxTextureUnits || unit >= d.caps.MaxTextureUnits {
		return fmt.Errorf("%w: %d", gpucore.ErrInvalidTextureUnit, unit)
	}
	value := js.Null()
	if tex != gpucore.InvalidID {
		t, ok := d.targets[tex]
		if !ok {
			return fmt.Errorf("%w: texture %d", gpucore.ErrUnknownResource, tex)
		}
		value = t.texture
	}
	d.gl.Call("activeTexture", glTexture0+unit)
	d.gl.Call("bindTexture", glTexture2D, value)
	return nil
}

// CompileProgram compiles both stages, binds the quad attributes and links.
func (d *Device) CompileProgram(desc gpucore.ProgramDescriptor) (gpucore.ProgramID, []gpucore.ActiveUniform, error) {
	if d.closed {
		return gpucore.InvalidID, nil, gpucore.ErrDeviceClosed
	}
	gl := d.gl

	vs, err := d.compileShader(desc.Label, gpucore.StageVertex, glVertexShader, desc.Vertex)
	if err != nil {
		return gpucore.InvalidID, nil, err
	}
	defer gl.Call("deleteShader", vs)
	fs, err := d.compileShader(desc.Label, gpucore.StageFragment, glFragmentShader, desc.Fragment)
	if err != nil {
		return gpucore.InvalidID, nil, err
	}
	defer gl.Call("deleteShader", fs)

	prog := gl.Call("createProgram")
	gl.Call("attachShader", prog, vs)
	gl.Call("attachShader", prog, fs)
	gl.Call("bindAttribLocation", prog, 0, "a_coordinates")
	gl.Call("bindAttribLocation", prog, 1, "a_uv")
	gl.Call("linkProgram", prog)
	if !gl.Call("getProgramParameter", prog, glLinkStatus).Bool() {
		log := gl.Call("getProgramInfoLog", prog).String()
		gl.Call("deleteProgram", prog)
		return gpucore.InvalidID, nil, &gpucore.ProgramLinkError{Label: desc.Label, Log: log}
	}

	p := &program{label: desc.Label, value: prog}
	n := gl.Call("getProgramParameter", prog, glActiveUniforms).Int()
	for i := range n {
		info := gl.Call("getActiveUniform", prog, i)
		name := info.Get("name").String()
		p.locations = append(p.locations, gl.Call("getUniformLocation", prog, name))
		p.uniforms = append(p.uniforms, gpucore.ActiveUniform{
			Name:     name,
			Type:     uniformType(info.Get("type").Int()),
			Location: gpucore.UniformLocation(i),
		})
	}

	id := gpucore.ProgramID(d.newID())
	d.programs[id] = p
	active := make([]gpucore.ActiveUniform, len(p.uniforms))
	copy(active, p.uniforms)
	return id, active, nil
}

func (d *Device) compileShader(label string, stage gpucore.ShaderStage, kind int, src string) (js.Value, error) {
	gl := d.gl
	s := gl.Call("createShader", kind)
	gl.Call("shaderSource", s, src)
	gl.Call("compileShader", s)
	if !gl.Call("getShaderParameter", s, glCompileStatus).Bool() {
		log := gl.Call("getShaderInfoLog", s).String()
		gl.Call("deleteShader", s)
		return js.Null(), &gpucore.ShaderCompileError{Label: label, Stage: stage, Log: log}
	}
	return s, nil
}

func uniformType(t int) gpucore.UniformType {
	switch t {
	case glFloat:
		return gpucore.UniformFloat
	case glFloatVec2:
		return gpucore.UniformVec2
	case glFloatVec3:
		return gpucore.UniformVec3
	case glFloatVec4:
		return gpucore.UniformVec4
	case glSampler2D:
		return gpucore.UniformSampler2D
	case glInt, glBool:
		return gpucore.UniformInt
	}
	return 0
}

// DestroyProgram deletes a program.
func (d *Device) DestroyProgram(id gpucore.ProgramID) {
	p, ok := d.programs[id]
	if !ok {
		return
	}
	if p == d.current {
		d.current = nil
	}
	d.gl.Call("deleteProgram", p.value)
	delete(d.programs, id)
}

// UseProgram makes a program current.
func (d *Device) UseProgram(id gpucore.ProgramID) {
	p, ok := d.programs[id]
	if !ok {
		d.current = nil
		d.gl.Call("useProgram", js.Null())
		return
	}
	d.current = p
	d.gl.Call("useProgram", p.value)
}

func (d *Device) location(loc gpucore.UniformLocation) (js.Value, bool) {
	if d.current == nil || !loc.Valid() || int(loc) >= len(d.current.locations) {
		return js.Null(), false
	}
	return d.current.locations[loc], true
}

// Uniform1f sets a float uniform.
func (d *Device) Uniform1f(loc gpucore.UniformLocation, v float32) {
	if l, ok := d.location(loc); ok {
		d.gl.Call("uniform1f", l, v)
	}
}

// Uniform2f sets a vec2 uniform.
func (d *Device) Uniform2f(loc gpucore.UniformLocation, x, y float32) {
	if l, ok := d.location(loc); ok {
		d.gl.Call("uniform2f", l, x, y)
	}
}

// Uniform3f sets a vec3 uniform.
func (d *Device) Uniform3f(loc gpucore.UniformLocation, x, y, z float32) {
	if l, ok := d.location(loc); ok {
		d.gl.Call("uniform3f", l, x, y, z)
	}
}

// Uniform1i sets an int or sampler uniform.
func (d *Device) Uniform1i(loc gpucore.UniformLocation, v int32) {
	if l, ok := d.location(loc); ok {
		d.gl.Call("uniform1i", l, v)
	}
}

func (d *Device) framebuffer(fb gpucore.FramebufferID) (js.Value, *renderTarget, error) {
	if fb == gpucore.DefaultFramebuffer {
		return js.Null(), nil, nil
	}
	t, ok := d.framebuffers[fb]
	if !ok {
		return js.Null(), nil, fmt.Errorf("%w: framebuffer %d", gpucore.ErrUnknownResource, fb)
	}
	return t.framebuffer, t, nil
}

// BindFramebuffer selects the draw target. Unknown IDs select the canvas.
func (d *Device) BindFramebuffer(fb gpucore.FramebufferID) {
	value, _, _ := d.framebuffer(fb)
	d.gl.Call("bindFramebuffer", glFramebuffer, value)
}

// Viewport sets the draw area.
func (d *Device) Viewport(width, height int) {
	d.gl.Call("viewport", 0, 0, width, height)
}

// Clear fills the bound framebuffer with a color.
func (d *Device) Clear(r, g, b, a float32) {
	d.gl.Call("clearColor", r, g, b, a)
	d.gl.Call("clear", glColorBufferBit)
}

// DrawQuad draws the quad and reports GL errors raised since the previous
// check.
func (d *Device) DrawQuad() error {
	if d.closed {
		return gpucore.ErrDeviceClosed
	}
	if d.current == nil {
		return errNoProgram
	}
	d.gl.Call("bindBuffer", glArrayBuffer, d.quad)
	d.gl.Call("drawArrays", glTriangleStrip, 0, 4)
	return d.checkError("draw " + d.current.label)
}

func (d *Device) checkError(op string) error {
	if d.gl.Call("isContextLost").Bool() {
		return fmt.Errorf("webgl: %s: %w", op, gpucore.ErrDeviceLost)
	}
	code := d.gl.Call("getError").Int()
	switch code {
	case glNoError:
		return nil
	case glContextLostWebGL:
		return fmt.Errorf("webgl: %s: %w", op, gpucore.ErrDeviceLost)
	default:
		return fmt.Errorf("webgl: %s: GL error %#x", op, code)
	}
}

// ReadPixels reads a rectangle of a framebuffer. Float targets are read as
// FLOAT; the canvas is read as UNSIGNED_BYTE and normalized.
func (d *Device) ReadPixels(fb gpucore.FramebufferID, x, y, width, height int) ([]float32, error) {
	if d.closed {
		return nil, gpucore.ErrDeviceClosed
	}
	value, t, err := d.framebuffer(fb)
	if err != nil {
		return nil, err
	}
	w, h := d.DrawingBufferSize()
	if t != nil {
		w, h = t.width, t.height
	}
	if x < 0 || y < 0 || width <= 0 || height <= 0 || x+width > w || y+height > h {
		return nil, fmt.Errorf("webgl: read %dx%d at (%d,%d) outside %dx%d", width, height, x, y, w, h)
	}

	d.gl.Call("bindFramebuffer", glFramebuffer, value)
	n := width * height * 4
	out := make([]float32, n)
	if t == nil {
		pixels := js.Global().Get("Uint8Array").New(n)
		d.gl.Call("readPixels", x, y, width, height, glRGBA, glUnsignedByte, pixels)
		raw := make([]byte, n)
		js.CopyBytesToGo(raw, pixels)
		for i, b := range raw {
			out[i] = float32(b) / 255
		}
	} else {
		pixels := js.Global().Get("Float32Array").New(n)
		d.gl.Call("readPixels", x, y, width, height, glRGBA, glFloat, pixels)
		raw := make([]byte, n*4)
		js.CopyBytesToGo(raw, js.Global().Get("Uint8Array").New(pixels.Get("buffer")))
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
	}
	if err := d.checkError("read pixels"); err != nil {
		return nil, err
	}
	return out, nil
}

// Close deletes everything the device created. The context itself belongs
// to the canvas.
func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	for id := range d.programs {
		d.DestroyProgram(id)
	}
	for id, t := range d.targets {
		d.DestroyRenderTarget(gpucore.RenderTarget{Texture: id})
		for fb, ft := range d.framebuffers {
			if ft == t {
				delete(d.framebuffers, fb)
			}
		}
	}
	d.gl.Call("deleteBuffer", d.quad)
	return nil
}
