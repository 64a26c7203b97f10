//go:build opencl

package opencl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jgillich/go-opencl/cl"

	"github.com/gogpu/fluid"
	"github.com/gogpu/fluid/gpucore"
)

var (
	errInvalidSize       = errors.New("opencl: invalid size")
	errUnsupportedFormat = errors.New("opencl: format not renderable")
	errNoProgram         = errors.New("opencl: no program in use")
)

// Capabilities is what every device reports. Buffers hold float4 texels
// and the kernels filter in code, so linear sampling is always available.
var Capabilities = gpucore.Capabilities{
	Dialect:         gpucore.DialectOpenCLC,
	FloatRenderable: true,
	FloatLinear:     true,
	MaxTextureUnits: gpucore.MaxTextureUnits,
}

type target struct {
	mem    *cl.MemObject
	width  int
	height int
	linear bool
}

func (t *target) buffer() buffer {
	b := buffer{mem: t.mem, width: int32(t.width), height: int32(t.height)} //nolint:gosec // bounded sizes
	if t.linear {
		b.linear = 1
	}
	return b
}

type clProgram struct {
	*program
	prog   *cl.Program
	kernel *cl.Kernel
}

// Device implements gpucore.Device with OpenCL kernels over float4
// buffers. It is not safe for concurrent use.
type Device struct {
	context *cl.Context
	queue   *cl.CommandQueue
	device  *cl.Device

	screen       *target
	targets      map[gpucore.TextureID]*target
	framebuffers map[gpucore.FramebufferID]*target
	programs     map[gpucore.ProgramID]*clProgram
	nextID       uint64

	current  *clProgram
	units    [gpucore.MaxTextureUnits]gpucore.TextureID
	fb       gpucore.FramebufferID
	viewport [2]int
	closed   bool
}

var _ gpucore.Device = (*Device)(nil)

// Open creates a device on the first GPU of any platform, falling back to
// the first CPU device.
func Open(width, height int) (*Device, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms"
		}
		return nil, fmt.Errorf("%w: %s: %w", gpucore.ErrContextUnavailable, msg, err)
	}

	var device *cl.Device
	for _, kind := range []cl.DeviceType{cl.DeviceTypeGPU, cl.DeviceTypeCPU} {
		for _, p := range platforms {
			devices, derr := p.GetDevices(kind)
			if derr != nil && derr != cl.ErrDeviceNotFound {
				continue
			}
			if len(devices) > 0 {
				device = devices[0]
				break
			}
		}
		if device != nil {
			break
		}
	}
	if device == nil {
		return nil, fmt.Errorf("%w: no OpenCL devices found", gpucore.ErrContextUnavailable)
	}

	context, err := cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return nil, fmt.Errorf("%w: creating context: %w", gpucore.ErrContextUnavailable, err)
	}
	queue, err := context.CreateCommandQueue(device, 0)
	if err != nil {
		context.Release()
		return nil, fmt.Errorf("%w: creating command queue: %w", gpucore.ErrContextUnavailable, err)
	}

	width, height = max(width, 1), max(height, 1)
	d := &Device{
		context:      context,
		queue:        queue,
		device:       device,
		targets:      make(map[gpucore.TextureID]*target),
		framebuffers: make(map[gpucore.FramebufferID]*target),
		programs:     make(map[gpucore.ProgramID]*clProgram),
		viewport:     [2]int{width, height},
	}
	d.screen, err = d.newTarget(width, height, false)
	if err != nil {
		queue.Release()
		context.Release()
		return nil, &gpucore.ResourceError{Resource: "screen", Width: width, Height: height, Err: err}
	}
	fluid.Logger().Info("opencl device opened", "device", device.Name())
	return d, nil
}

// Name returns "opencl".
func (d *Device) Name() string { return "opencl" }

// Capabilities returns the package Capabilities.
func (d *Device) Capabilities() gpucore.Capabilities { return Capabilities }

// DrawingBufferSize returns the size of the default framebuffer buffer.
func (d *Device) DrawingBufferSize() (int, int) {
	return d.screen.width, d.screen.height
}

func (d *Device) newID() uint64 {
	d.nextID++
	return d.nextID
}

func (d *Device) newTarget(width, height int, linear bool) (*target, error) {
	mem, err := d.context.CreateEmptyBuffer(cl.MemReadWrite, width*height*16)
	if err != nil {
		return nil, err
	}
	t := &target{mem: mem, width: width, height: height, linear: linear}
	if err := d.fill(t, [4]float32{}); err != nil {
		mem.Release()
		return nil, err
	}
	return t, nil
}

func (d *Device) fill(t *target, c [4]float32) error {
	data := make([]float32, t.width*t.height*4)
	for i := range data {
		data[i] = c[i%4]
	}
	_, err := d.queue.EnqueueWriteBufferFloat32(t.mem, true, 0, data, nil)
	return err
}

// CreateRenderTarget allocates a zeroed float4 buffer.
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
	if desc.Width <= 0 || desc.Height <= 0 {
		return fail(errInvalidSize)
	}
	if desc.Format != gpucore.FormatRGBA32F {
		return fail(fmt.Errorf("%w: %s", errUnsupportedFormat, desc.Format))
	}
	t, err := d.newTarget(desc.Width, desc.Height, desc.Filter == gpucore.FilterLinear)
	if err != nil {
		return fail(err)
	}
	rt := gpucore.RenderTarget{
		Texture:     gpucore.TextureID(d.newID()),
		Framebuffer: gpucore.FramebufferID(d.newID()),
	}
	d.targets[rt.Texture] = t
	d.framebuffers[rt.Framebuffer] = t
	return rt, nil
}

// DestroyRenderTarget releases the buffer. Destroying twice is a no-op.
func (d *Device) DestroyRenderTarget(rt gpucore.RenderTarget) {
	t, ok := d.targets[rt.Texture]
	if !ok {
		return
	}
	t.mem.Release()
	delete(d.targets, rt.Texture)
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

// BindTexture binds tex to a unit. InvalidID unbinds.
func (d *Device) BindTexture(unit int, tex gpucore.TextureID) error {
	if d.closed {
		return gpucore.ErrDeviceClosed
	}
	if unit < 0 || unit >= gpucore.MaxTextureUnits {
		return fmt.Errorf("%w: %d", gpucore.ErrInvalidTextureUnit, unit)
	}
	if tex != gpucore.InvalidID {
		if _, ok := d.targets[tex]; !ok {
			return fmt.Errorf("%w: texture %d", gpucore.ErrUnknownResource, tex)
		}
	}
	d.units[unit] = tex
	return nil
}

// CompileProgram builds the OpenCL C source and creates the pass kernel
// named by the label.
func (d *Device) CompileProgram(desc gpucore.ProgramDescriptor) (gpucore.ProgramID, []gpucore.ActiveUniform, error) {
	if d.closed {
		return gpucore.InvalidID, nil, gpucore.ErrDeviceClosed
	}
	p, uniforms, err := newProgram(desc)
	if err != nil {
		return gpucore.InvalidID, nil, err
	}

	prog, err := d.context.CreateProgramWithSource([]string{desc.Fragment})
	if err != nil {
		return gpucore.InvalidID, nil, &gpucore.ShaderCompileError{Label: desc.Label, Stage: gpucore.StageFragment, Log: err.Error()}
	}
	if err := prog.BuildProgram([]*cl.Device{d.device}, ""); err != nil {
		prog.Release()
		log := err.Error()
		var buildErr cl.BuildError
		if errors.As(err, &buildErr) {
			log = string(buildErr)
		}
		return gpucore.InvalidID, nil, &gpucore.ShaderCompileError{Label: desc.Label, Stage: gpucore.StageFragment, Log: log}
	}
	kernel, err := prog.CreateKernel(p.kernel)
	if err != nil {
		prog.Release()
		return gpucore.InvalidID, nil, &gpucore.ProgramLinkError{Label: desc.Label, Log: err.Error()}
	}

	id := gpucore.ProgramID(d.newID())
	d.programs[id] = &clProgram{program: p, prog: prog, kernel: kernel}
	return id, uniforms, nil
}

// DestroyProgram releases the kernel and program.
func (d *Device) DestroyProgram(id gpucore.ProgramID) {
	p, ok := d.programs[id]
	if !ok {
		return
	}
	if p == d.current {
		d.current = nil
	}
	p.kernel.Release()
	p.prog.Release()
	delete(d.programs, id)
}

// UseProgram makes a program current.
func (d *Device) UseProgram(id gpucore.ProgramID) { d.current = d.programs[id] }

func (d *Device) setUniform(loc gpucore.UniformLocation, v value) {
	if d.current != nil {
		d.current.set(loc, v)
	}
}

// Uniform1f sets a float kernel argument.
func (d *Device) Uniform1f(loc gpucore.UniformLocation, v float32) {
	d.setUniform(loc, value{f: [4]float32{v}})
}

// Uniform2f sets a vec2 argument pair.
func (d *Device) Uniform2f(loc gpucore.UniformLocation, x, y float32) {
	d.setUniform(loc, value{f: [4]float32{x, y}})
}

// Uniform3f sets a vec3 argument triple.
func (d *Device) Uniform3f(loc gpucore.UniformLocation, x, y, z float32) {
	d.setUniform(loc, value{f: [4]float32{x, y, z}})
}

// Uniform1i sets an int argument or the unit a texture parameter reads.
func (d *Device) Uniform1i(loc gpucore.UniformLocation, v int32) {
	d.setUniform(loc, value{i: v})
}

// BindFramebuffer selects the output buffer.
func (d *Device) BindFramebuffer(fb gpucore.FramebufferID) { d.fb = fb }

// Viewport sets the draw area. Draws require it to match the target.
func (d *Device) Viewport(width, height int) { d.viewport = [2]int{width, height} }

func (d *Device) target(fb gpucore.FramebufferID) (*target, error) {
	if fb == gpucore.DefaultFramebuffer {
		return d.screen, nil
	}
	t, ok := d.framebuffers[fb]
	if !ok {
		return nil, fmt.Errorf("%w: framebuffer %d", gpucore.ErrUnknownResource, fb)
	}
	return t, nil
}

// Clear fills the bound buffer with a color.
func (d *Device) Clear(r, g, b, a float32) {
	t, err := d.target(d.fb)
	if err != nil || d.closed {
		return
	}
	if err := d.fill(t, [4]float32{r, g, b, a}); err != nil {
		fluid.Logger().Warn("opencl clear failed", "err", err)
	}
}

// DrawQuad runs the current kernel over every texel of the bound buffer
// and waits for it.
func (d *Device) DrawQuad() error {
	if d.closed {
		return gpucore.ErrDeviceClosed
	}
	p := d.current
	if p == nil {
		return errNoProgram
	}
	t, err := d.target(d.fb)
	if err != nil {
		return err
	}
	if d.viewport != [2]int{t.width, t.height} {
		return fmt.Errorf("opencl: draw %s: viewport %dx%d must cover the %dx%d target",
			p.label, d.viewport[0], d.viewport[1], t.width, t.height)
	}

	args, err := p.args(t.buffer(), func(unit int32) (buffer, error) {
		if unit < 0 || int(unit) >= len(d.units) {
			return buffer{}, fmt.Errorf("%w: %d", gpucore.ErrInvalidTextureUnit, unit)
		}
		src, ok := d.targets[d.units[unit]]
		if !ok {
			return buffer{}, fmt.Errorf("no texture bound to unit %d", unit)
		}
		return src.buffer(), nil
	})
	if err != nil {
		return err
	}
	if err := p.kernel.SetArgs(args...); err != nil {
		return fmt.Errorf("opencl: draw %s: set arguments: %w", p.label, err)
	}
	if _, err := d.queue.EnqueueNDRangeKernel(p.kernel, nil, []int{t.width, t.height}, nil, nil); err != nil {
		return fmt.Errorf("opencl: draw %s: enqueue: %w", p.label, err)
	}
	if err := d.queue.Finish(); err != nil {
		return fmt.Errorf("opencl: draw %s: %w: %w", p.label, gpucore.ErrDeviceLost, err)
	}

	if t == d.screen {
		return d.clampScreen()
	}
	return nil
}

// clampScreen saturates the default framebuffer the way a fixed point
// surface would.
func (d *Device) clampScreen() error {
	data := make([]float32, d.screen.width*d.screen.height*4)
	if _, err := d.queue.EnqueueReadBufferFloat32(d.screen.mem, true, 0, data, nil); err != nil {
		return fmt.Errorf("opencl: read screen: %w", err)
	}
	for i, v := range data {
		data[i] = min(max(v, 0), 1)
	}
	if _, err := d.queue.EnqueueWriteBufferFloat32(d.screen.mem, true, 0, data, nil); err != nil {
		return fmt.Errorf("opencl: write screen: %w", err)
	}
	return nil
}

// ReadPixels reads a rectangle of a buffer, bottom row first.
func (d *Device) ReadPixels(fb gpucore.FramebufferID, x, y, width, height int) ([]float32, error) {
	if d.closed {
		return nil, gpucore.ErrDeviceClosed
	}
	t, err := d.target(fb)
	if err != nil {
		return nil, err
	}
	if x < 0 || y < 0 || width <= 0 || height <= 0 || x+width > t.width || y+height > t.height {
		return nil, fmt.Errorf("opencl: read %dx%d at (%d,%d) outside %dx%d", width, height, x, y, t.width, t.height)
	}
	data := make([]float32, t.width*t.height*4)
	if _, err := d.queue.EnqueueReadBufferFloat32(t.mem, true, 0, data, nil); err != nil {
		return nil, fmt.Errorf("opencl: read buffer: %w", err)
	}
	out := make([]float32, 0, width*height*4)
	for row := y; row < y+height; row++ {
		i := (row*t.width + x) * 4
		out = append(out, data[i:i+width*4]...)
	}
	return out, nil
}

// Close releases every buffer, kernel and the context.
func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	for id := range d.programs {
		d.DestroyProgram(id)
	}
	for id, t := range d.targets {
		t.mem.Release()
		delete(d.targets, id)
	}
	clear(d.framebuffers)
	d.screen.mem.Release()
	d.queue.Release()
	d.context.Release()
	d.closed = true
	return nil
}
