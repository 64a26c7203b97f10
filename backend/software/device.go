package software

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/fluid"
	"github.com/gogpu/fluid/gpucore"
	"github.com/gogpu/fluid/internal/parallel"
)

// MaxTextureSize is the largest texture edge the device allocates.
const MaxTextureSize = 16384

var (
	errInvalidSize       = errors.New("software: invalid size")
	errUnsupportedFormat = errors.New("software: format not renderable")
	errNotFilterable     = errors.New("software: format not linearly filterable")
	errNoProgram         = errors.New("software: no program in use")
)

// DefaultCapabilities is what a device reports unless configured otherwise:
// full and half float targets, both filterable.
var DefaultCapabilities = gpucore.Capabilities{
	Dialect:             gpucore.DialectGLSLKernel,
	FloatRenderable:     true,
	HalfFloatRenderable: true,
	FloatLinear:         true,
	HalfFloatLinear:     true,
	MaxTextureUnits:     gpucore.MaxTextureUnits,
}

// Option configures a Device.
type Option func(*options)

type options struct {
	caps    gpucore.Capabilities
	workers int
}

// WithCapabilities makes the device report (and enforce) a reduced
// feature set, emulating hardware without float or linear support.
// The dialect is always GLSL.
func WithCapabilities(caps gpucore.Capabilities) Option {
	return func(o *options) {
		o.caps = caps
		o.caps.Dialect = gpucore.DialectGLSLKernel
	}
}

// WithWorkers sets the number of shading goroutines. Zero uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// Device is a CPU implementation of gpucore.Device.
//
// All methods are safe for concurrent use; draws are serialized.
type Device struct {
	mu   sync.Mutex
	caps gpucore.Capabilities
	pool *parallel.WorkerPool

	screen       *texture
	textures     map[gpucore.TextureID]*texture
	framebuffers map[gpucore.FramebufferID]*texture
	programs     map[gpucore.ProgramID]*program
	nextID       uint64

	current  *program
	units    [gpucore.MaxTextureUnits]gpucore.TextureID
	fb       gpucore.FramebufferID
	viewport [2]int

	draws  uint64
	closed bool
}

var _ gpucore.Device = (*Device)(nil)

// New creates a device whose default framebuffer is width x height.
func New(width, height int, opts ...Option) *Device {
	o := options{caps: DefaultCapabilities}
	for _, opt := range opts {
		opt(&o)
	}
	width, height = max(width, 1), max(height, 1)

	d := &Device{
		caps:         o.caps,
		pool:         parallel.NewWorkerPool(o.workers),
		screen:       newTexture("screen", width, height, gpucore.FormatRGBA32F, gpucore.FilterNearest),
		textures:     make(map[gpucore.TextureID]*texture),
		framebuffers: make(map[gpucore.FramebufferID]*texture),
		programs:     make(map[gpucore.ProgramID]*program),
		viewport:     [2]int{width, height},
	}
	fluid.Logger().Debug("software device created", "width", width, "height", height, "workers", d.pool.Workers())
	return d
}

// Name returns "software".
func (d *Device) Name() string { return "software" }

// Capabilities returns the configured feature set.
func (d *Device) Capabilities() gpucore.Capabilities { return d.caps }

// DrawingBufferSize returns the size of the default framebuffer.
func (d *Device) DrawingBufferSize() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.screen.width, d.screen.height
}

// SetDrawingBufferSize resizes the default framebuffer, the way a canvas
// backing store changes with its element. The content is cleared.
func (d *Device) SetDrawingBufferSize(width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.screen = newTexture("screen", max(width, 1), max(height, 1), gpucore.FormatRGBA32F, gpucore.FilterNearest)
}

// Draws returns the number of quads drawn since the device was created.
func (d *Device) Draws() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draws
}

func (d *Device) newID() uint64 {
	d.nextID++
	return d.nextID
}

// CreateRenderTarget allocates a texture and its framebuffer.
func (d *Device) CreateRenderTarget(desc gpucore.TextureDescriptor) (gpucore.RenderTarget, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

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
	if desc.Width <= 0 || desc.Height <= 0 || desc.Width > MaxTextureSize || desc.Height > MaxTextureSize {
		return fail(errInvalidSize)
	}

	var renderable, linear bool
	switch desc.Format {
	case gpucore.FormatRGBA32F:
		renderable, linear = d.caps.FloatRenderable, d.caps.FloatLinear
	case gpucore.FormatRGBA16F:
		renderable, linear = d.caps.HalfFloatRenderable, d.caps.HalfFloatLinear
	}
	if !renderable {
		return fail(fmt.Errorf("%w: %s", errUnsupportedFormat, desc.Format))
	}
	if desc.Filter == gpucore.FilterLinear && !linear {
		return fail(fmt.Errorf("%w: %s", errNotFilterable, desc.Format))
	}

	tex := newTexture(desc.Label, desc.Width, desc.Height, desc.Format, desc.Filter)
	rt := gpucore.RenderTarget{
		Texture:     gpucore.TextureID(d.newID()),
		Framebuffer: gpucore.FramebufferID(d.newID()),
	}
	d.textures[rt.Texture] = tex
	d.framebuffers[rt.Framebuffer] = tex
	return rt, nil
}

// DestroyRenderTarget releases a render target. Units that still hold the
// texture are unbound and a bound framebuffer reverts to the default one.
func (d *Device) DestroyRenderTarget(rt gpucore.RenderTarget) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.textures, rt.Texture)
	delete(d.framebuffers, rt.Framebuffer)
	for i, id := range d.units {
		if id == rt.Texture {
			d.units[i] = gpucore.InvalidID
		}
	}
	if d.fb == rt.Framebuffer {
		d.fb = gpucore.DefaultFramebuffer
	}
}

// BindTexture binds tex to a texture unit. InvalidID unbinds the unit.
func (d *Device) BindTexture(unit int, tex gpucore.TextureID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return gpucore.ErrDeviceClosed
	}
	if unit < 0 || unit >= gpucore.MaxTextureUnits || unit >= d.caps.MaxTextureUnits {
		return fmt.Errorf("%w: %d", gpucore.ErrInvalidTextureUnit, unit)
	}
	if tex != gpucore.InvalidID {
		if _, ok := d.textures[tex]; !ok {
			return fmt.Errorf("%w: texture %d", gpucore.ErrUnknownResource, tex)
		}
	}
	d.units[unit] = tex
	return nil
}

// CompileProgram reflects and links a GLSL program.
func (d *Device) CompileProgram(desc gpucore.ProgramDescriptor) (gpucore.ProgramID, []gpucore.ActiveUniform, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return gpucore.InvalidID, nil, gpucore.ErrDeviceClosed
	}
	p, err := compileProgram(desc)
	if err != nil {
		return gpucore.InvalidID, nil, err
	}
	id := gpucore.ProgramID(d.newID())
	d.programs[id] = p
	fluid.Logger().Debug("software program linked", "label", desc.Label, "uniforms", len(p.uniforms))

	active := make([]gpucore.ActiveUniform, len(p.uniforms))
	copy(active, p.uniforms)
	return id, active, nil
}

// DestroyProgram releases a program.
func (d *Device) DestroyProgram(id gpucore.ProgramID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.programs[id]; ok && p == d.current {
		d.current = nil
	}
	delete(d.programs, id)
}

// UseProgram makes a program current. Unknown IDs clear the current
// program.
func (d *Device) UseProgram(id gpucore.ProgramID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = d.programs[id]
}

func (d *Device) setUniform(loc gpucore.UniformLocation, v uniformValue) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current != nil {
		d.current.set(loc, v)
	}
}

// Uniform1f sets a float uniform of the current program.
func (d *Device) Uniform1f(loc gpucore.UniformLocation, v float32) {
	d.setUniform(loc, uniformValue{f: [4]float32{v}})
}

// Uniform2f sets a vec2 uniform of the current program.
func (d *Device) Uniform2f(loc gpucore.UniformLocation, x, y float32) {
	d.setUniform(loc, uniformValue{f: [4]float32{x, y}})
}

// Uniform3f sets a vec3 uniform of the current program.
func (d *Device) Uniform3f(loc gpucore.UniformLocation, x, y, z float32) {
	d.setUniform(loc, uniformValue{f: [4]float32{x, y, z}})
}

// Uniform1i sets an int or sampler uniform of the current program.
func (d *Device) Uniform1i(loc gpucore.UniformLocation, v int32) {
	d.setUniform(loc, uniformValue{i: v})
}

// BindFramebuffer selects the draw target.
func (d *Device) BindFramebuffer(fb gpucore.FramebufferID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fb = fb
}

// Viewport sets the draw area.
func (d *Device) Viewport(width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.viewport = [2]int{width, height}
}

func (d *Device) target(fb gpucore.FramebufferID) (*texture, error) {
	if fb == gpucore.DefaultFramebuffer {
		return d.screen, nil
	}
	tex, ok := d.framebuffers[fb]
	if !ok {
		return nil, fmt.Errorf("%w: framebuffer %d", gpucore.ErrUnknownResource, fb)
	}
	return tex, nil
}

// Clear fills the bound framebuffer. The scissor-free clear covers the
// whole attachment regardless of the viewport.
func (d *Device) Clear(r, g, b, a float32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	tex, err := d.target(d.fb)
	if err != nil {
		return
	}
	v := vec4{r, g, b, a}
	d.pool.Rows(tex.height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := range tex.width {
				tex.store(x, y, v)
			}
		}
	})
}

// DrawQuad shades every texel of the viewport with the current program.
func (d *Device) DrawQuad() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return gpucore.ErrDeviceClosed
	}
	if d.current == nil {
		return errNoProgram
	}
	target, err := d.target(d.fb)
	if err != nil {
		return err
	}

	in := &inputs{prog: d.current, dev: d, target: target}
	shade := d.current.kernel(in)
	if in.err != nil {
		return fmt.Errorf("draw %s: %w", d.current.label, in.err)
	}

	vw, vh := d.viewport[0], d.viewport[1]
	if vw <= 0 || vh <= 0 {
		return nil
	}
	w, h := min(vw, target.width), min(vh, target.height)
	screen := target == d.screen

	d.pool.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			fy := float32(y) + 0.5
			for x := range w {
				fx := float32(x) + 0.5
				v := shade(vec2{fx, fy}, vec2{fx / float32(vw), fy / float32(vh)})
				if screen {
					for c := range v {
						v[c] = min(max(v[c], 0), 1)
					}
				}
				target.store(x, y, v)
			}
		}
	})
	d.draws++
	return nil
}

// ReadPixels copies a rectangle of a framebuffer, bottom row first.
func (d *Device) ReadPixels(fb gpucore.FramebufferID, x, y, width, height int) ([]float32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, gpucore.ErrDeviceClosed
	}
	tex, err := d.target(fb)
	if err != nil {
		return nil, err
	}
	if x < 0 || y < 0 || width <= 0 || height <= 0 || x+width > tex.width || y+height > tex.height {
		return nil, fmt.Errorf("software: read %dx%d at (%d,%d) outside %dx%d", width, height, x, y, tex.width, tex.height)
	}

	out := make([]float32, 0, width*height*4)
	for row := y; row < y+height; row++ {
		i := (row*tex.width + x) * 4
		out = append(out, tex.texels[i:i+width*4]...)
	}
	return out, nil
}

// Close releases every resource and stops the shading workers.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	d.pool.Close()
	clear(d.textures)
	clear(d.framebuffers)
	clear(d.programs)
	d.current = nil
	return nil
}
