package wgpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
	"unsafe"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Register the Vulkan HAL for standalone devices.
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/fluid"
	"github.com/gogpu/fluid/gpucore"
)

const (
	// maxTextureSize is the WebGPU default maxTextureDimension2D.
	maxTextureSize = 8192

	// maxTextureBindings is the WebGPU default
	// maxSampledTexturesPerShaderStage.
	maxTextureBindings = 16

	screenFormat = gputypes.TextureFormatRGBA8Unorm
)

// waitTimeout bounds how long a submission may take before the device is
// considered lost.
var waitTimeout = 5 * time.Second

var (
	errInvalidSize       = errors.New("wgpu: invalid size")
	errUnsupportedFormat = errors.New("wgpu: format not renderable")
	errNotFilterable     = errors.New("wgpu: float formats are not filterable")
	errNoProgram         = errors.New("wgpu: no program in use")
	errNoHAL             = errors.New("wgpu: provider does not expose HAL types")
)

// Capabilities is what every device reports. Float and half float targets
// are core WebGPU; filtering them is optional, so shaders interpolate
// manually.
var Capabilities = gpucore.Capabilities{
	Dialect:             gpucore.DialectWGSL,
	FloatRenderable:     true,
	HalfFloatRenderable: true,
	MaxTextureUnits:     maxTextureBindings,
}

// Device implements gpucore.Device on a gogpu/wgpu HAL device.
//
// Each DrawQuad records one render pass and waits for it, so resources
// referenced by a draw can be released as soon as it returns. All methods
// are safe for concurrent use.
type Device struct {
	mu     sync.Mutex
	device hal.Device
	queue  hal.Queue

	// Set when the device was opened here rather than borrowed.
	instance hal.Instance
	owned    bool

	quad    hal.Buffer
	sampler hal.Sampler

	screen       *target
	targets      map[gpucore.TextureID]*target
	framebuffers map[gpucore.FramebufferID]*target
	programs     map[gpucore.ProgramID]*program
	nextID       uint64

	current  *program
	units    [gpucore.MaxTextureUnits]gpucore.TextureID
	fb       gpucore.FramebufferID
	viewport [2]int

	closed bool
}

var _ gpucore.Device = (*Device)(nil)

// New wraps an open HAL device and queue. The caller keeps ownership of
// both; Close releases only what the Device created.
func New(device hal.Device, queue hal.Queue, width, height int) (*Device, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("%w: nil HAL device or queue", gpucore.ErrContextUnavailable)
	}
	width, height = max(width, 1), max(height, 1)

	d := &Device{
		device:       device,
		queue:        queue,
		targets:      make(map[gpucore.TextureID]*target),
		framebuffers: make(map[gpucore.FramebufferID]*target),
		programs:     make(map[gpucore.ProgramID]*program),
		viewport:     [2]int{width, height},
	}
	if err := d.init(width, height); err != nil {
		d.release()
		return nil, err
	}
	fluid.Logger().Debug("wgpu device created", "width", width, "height", height)
	return d, nil
}

// NewFromProvider borrows the HAL device of an external provider such as a
// gogpu window. The provider must expose HalDevice and HalQueue.
func NewFromProvider(provider gpucontext.DeviceProvider, width, height int) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, errNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", errNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", errNoHAL)
	}
	return New(device, queue, width, height)
}

// Open creates a standalone Vulkan device, preferring a discrete or
// integrated GPU over other adapters.
func Open(width, height int) (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not available", gpucore.ErrContextUnavailable)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %w", gpucore.ErrContextUnavailable, err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: no GPU adapters found", gpucore.ErrContextUnavailable)
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("%w: open device: %w", gpucore.ErrContextUnavailable, err)
	}

	d, err := New(openDev.Device, openDev.Queue, width, height)
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	d.instance = instance
	d.owned = true
	fluid.Logger().Info("wgpu device opened", "adapter", selected.Info.Name)
	return d, nil
}

func (d *Device) init(width, height int) error {
	var err error
	d.quad, err = d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "fluid_quad",
		Size:  uint64(len(gpucore.QuadVertices) * 4),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return &gpucore.ResourceError{Resource: "quad vertex buffer", Err: err}
	}
	vertices := make([]byte, len(gpucore.QuadVertices)*4)
	for i, v := range gpucore.QuadVertices {
		binary.LittleEndian.PutUint32(vertices[i*4:], math.Float32bits(v))
	}
	d.queue.WriteBuffer(d.quad, 0, vertices)

	d.sampler, err = d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "fluid_nearest",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return &gpucore.ResourceError{Resource: "sampler", Err: err}
	}

	d.screen, err = newTarget(d.device, "fluid_screen", width, height, screenFormat)
	if err != nil {
		return &gpucore.ResourceError{Resource: "screen", Width: width, Height: height, Err: err}
	}
	return d.clear(d.screen, gputypes.Color{})
}

// Name returns "wgpu".
func (d *Device) Name() string { return "wgpu" }

// Capabilities returns the package Capabilities.
func (d *Device) Capabilities() gpucore.Capabilities { return Capabilities }

// DrawingBufferSize returns the size of the offscreen default framebuffer.
func (d *Device) DrawingBufferSize() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.screen == nil {
		return 0, 0
	}
	return d.screen.width, d.screen.height
}

func (d *Device) newID() uint64 {
	d.nextID++
	return d.nextID
}

// CreateRenderTarget allocates a float texture usable as attachment and
// sampled input. Linear filtering is refused.
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
	if desc.Width <= 0 || desc.Height <= 0 || desc.Width > maxTextureSize || desc.Height > maxTextureSize {
		return fail(errInvalidSize)
	}
	format, ok := textureFormat(desc.Format)
	if !ok {
		return fail(fmt.Errorf("%w: %s", errUnsupportedFormat, desc.Format))
	}
	if desc.Filter == gpucore.FilterLinear {
		return fail(errNotFilterable)
	}

	t, err := newTarget(d.device, desc.Label, desc.Width, desc.Height, format)
	if err != nil {
		return fail(err)
	}
	if err := d.clear(t, gputypes.Color{}); err != nil {
		t.destroy(d.device)
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

// DestroyRenderTarget releases a render target. Destroying it twice is a
// no-op.
func (d *Device) DestroyRenderTarget(rt gpucore.RenderTarget) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.targets[rt.Texture]
	if !ok {
		return
	}
	t.destroy(d.device)
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

// BindTexture binds tex to a texture unit. InvalidID unbinds the unit.
func (d *Device) BindTexture(unit int, tex gpucore.TextureID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return gpucore.ErrDeviceClosed
	}
	if unit < 0 || unit >= Capabilities.MaxTextureUnits {
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

// CompileProgram validates a WGSL pass and creates its layouts.
func (d *Device) CompileProgram(desc gpucore.ProgramDescriptor) (gpucore.ProgramID, []gpucore.ActiveUniform, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return gpucore.InvalidID, nil, gpucore.ErrDeviceClosed
	}
	p, err := compileProgram(d.device, desc)
	if err != nil {
		return gpucore.InvalidID, nil, err
	}
	id := gpucore.ProgramID(d.newID())
	d.programs[id] = p
	fluid.Logger().Debug("wgpu program compiled", "label", desc.Label, "block", p.layout.Size, "textures", len(p.layout.Textures))

	active := make([]gpucore.ActiveUniform, len(p.uniforms))
	copy(active, p.uniforms)
	return id, active, nil
}

// DestroyProgram releases a program and its pipelines.
func (d *Device) DestroyProgram(id gpucore.ProgramID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.programs[id]
	if !ok {
		return
	}
	if p == d.current {
		d.current = nil
	}
	p.destroy(d.device)
	delete(d.programs, id)
}

// UseProgram makes a program current. Unknown IDs clear the current
// program.
func (d *Device) UseProgram(id gpucore.ProgramID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = d.programs[id]
}

func (d *Device) setUniform(loc gpucore.UniformLocation, f [4]float32, i int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current != nil {
		d.current.set(loc, f, i)
	}
}

// Uniform1f sets a float member of the current program's uniform block.
func (d *Device) Uniform1f(loc gpucore.UniformLocation, v float32) {
	d.setUniform(loc, [4]float32{v}, 0)
}

// Uniform2f sets a vec2 member.
func (d *Device) Uniform2f(loc gpucore.UniformLocation, x, y float32) {
	d.setUniform(loc, [4]float32{x, y}, 0)
}

// Uniform3f sets a vec3 member.
func (d *Device) Uniform3f(loc gpucore.UniformLocation, x, y, z float32) {
	d.setUniform(loc, [4]float32{x, y, z}, 0)
}

// Uniform1i sets an int member or the unit a texture binding samples.
func (d *Device) Uniform1i(loc gpucore.UniformLocation, v int32) {
	d.setUniform(loc, [4]float32{}, v)
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

// Clear fills the bound framebuffer with a color.
func (d *Device) Clear(r, g, b, a float32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	t, err := d.target(d.fb)
	if err != nil {
		return
	}
	if err := d.clear(t, gputypes.Color{R: float64(r), G: float64(g), B: float64(b), A: float64(a)}); err != nil {
		fluid.Logger().Warn("wgpu clear failed", "target", t.label, "err", err)
	}
}

func (d *Device) clear(t *target, color gputypes.Color) error {
	encoder, err := d.beginEncoding("fluid_clear")
	if err != nil {
		return err
	}
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "fluid_clear_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       t.view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: color,
		}},
	})
	rp.End()
	return d.submit(encoder)
}

// DrawQuad records and submits one render pass drawing the quad with the
// current program into the bound framebuffer.
func (d *Device) DrawQuad() error {
	d.mu.Lock()
	defer d.mu.Unlock()

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
	vw, vh := min(d.viewport[0], t.width), min(d.viewport[1], t.height)
	if vw <= 0 || vh <= 0 {
		return nil
	}

	pipeline, err := p.pipeline(d.device, t.format)
	if err != nil {
		return err
	}

	var entries []gputypes.BindGroupEntry
	if len(p.block) > 0 {
		ub, err := d.device.CreateBuffer(&hal.BufferDescriptor{
			Label: p.label + "_uniforms",
			Size:  uint64(len(p.block)),
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return &gpucore.ResourceError{Resource: "uniform buffer " + p.label, Err: err}
		}
		defer d.device.DestroyBuffer(ub)
		d.queue.WriteBuffer(ub, 0, p.block)
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  0,
			Resource: gputypes.BufferBinding{Buffer: ub.NativeHandle(), Offset: 0, Size: uint64(len(p.block))},
		})
	}
	for i, tb := range p.layout.Textures {
		unit := p.units[i]
		if unit < 0 || int(unit) >= Capabilities.MaxTextureUnits {
			return fmt.Errorf("draw %s: %w: %d", p.label, gpucore.ErrInvalidTextureUnit, unit)
		}
		src, ok := d.targets[d.units[unit]]
		if !ok {
			return fmt.Errorf("draw %s: %s samples unit %d with no texture bound", p.label, tb.Name, unit)
		}
		if src == t {
			return fmt.Errorf("draw %s: %s samples the texture being rendered", p.label, tb.Name)
		}
		entries = append(entries,
			gputypes.BindGroupEntry{Binding: tb.Binding, Resource: gputypes.TextureViewBinding{TextureView: src.view.NativeHandle()}},
			gputypes.BindGroupEntry{Binding: tb.SamplerBinding, Resource: gputypes.SamplerBinding{Sampler: d.sampler.NativeHandle()}},
		)
	}

	bindGroup, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   p.label + "_bind",
		Layout:  p.bindLayout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("draw %s: create bind group: %w", p.label, err)
	}
	defer d.device.DestroyBindGroup(bindGroup)

	encoder, err := d.beginEncoding(p.label)
	if err != nil {
		return err
	}
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: p.label + "_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    t.view,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}},
	})
	rp.SetViewport(0, 0, float32(vw), float32(vh), 0, 1)
	rp.SetPipeline(pipeline)
	rp.SetBindGroup(0, bindGroup, nil)
	rp.SetVertexBuffer(0, d.quad, 0)
	rp.Draw(4, 1, 0, 0)
	rp.End()
	return d.submit(encoder)
}

// ReadPixels copies a rectangle of a framebuffer back to the CPU, bottom
// row first. The default framebuffer reads as normalized RGBA8.
func (d *Device) ReadPixels(fb gpucore.FramebufferID, x, y, width, height int) ([]float32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, gpucore.ErrDeviceClosed
	}
	t, err := d.target(fb)
	if err != nil {
		return nil, err
	}
	if x < 0 || y < 0 || width <= 0 || height <= 0 || x+width > t.width || y+height > t.height {
		return nil, fmt.Errorf("wgpu: read %dx%d at (%d,%d) outside %dx%d", width, height, x, y, t.width, t.height)
	}

	encoder, err := d.beginEncoding("fluid_readback")
	if err != nil {
		return nil, err
	}
	staging, pitch, err := t.encodeReadback(d.device, encoder)
	if err != nil {
		encoder.DiscardEncoding()
		return nil, err
	}
	defer d.device.DestroyBuffer(staging)
	if err := d.submit(encoder); err != nil {
		return nil, err
	}

	data, err := d.mapStaging(staging, uint64(pitch)*uint64(t.height))
	if err != nil {
		return nil, fmt.Errorf("wgpu: readback: %w", err)
	}
	return decodeRows(t.format, data, int(pitch), x, y, width, height), nil
}

func (d *Device) beginEncoding(label string) (hal.CommandEncoder, error) {
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	return encoder, nil
}

// mapStaging copies size bytes out of a mapped staging buffer.
func (d *Device) mapStaging(staging hal.Buffer, size uint64) ([]byte, error) {
	mapping, err := d.device.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("map: %w", err)
	}
	data := make([]byte, size)
	copy(data, unsafe.Slice((*byte)(mapping.Ptr), size))
	if err := d.device.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("unmap: %w", err)
	}
	return data, nil
}

// submit ends encoding, submits and waits for completion. A submission
// that does not complete reports ErrDeviceLost.
func (d *Device) submit(encoder hal.CommandEncoder) error {
	cmd, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmd)

	idx, err := d.queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		return fmt.Errorf("%w: submit: %w", gpucore.ErrDeviceLost, err)
	}
	return d.wait(idx)
}

// wait blocks until the queue reports submission idx as completed.
func (d *Device) wait(idx uint64) error {
	if err := d.device.WaitIdle(); err != nil {
		return fmt.Errorf("%w: wait idle: %w", gpucore.ErrDeviceLost, err)
	}
	deadline := time.Now().Add(waitTimeout)
	for d.queue.PollCompleted() < idx {
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: submission %d not completed after %v", gpucore.ErrDeviceLost, idx, waitTimeout)
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}

// Close releases every resource the device created, and the HAL device
// itself when Open created it.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	d.release()
	return nil
}

func (d *Device) release() {
	for id, p := range d.programs {
		p.destroy(d.device)
		delete(d.programs, id)
	}
	for id, t := range d.targets {
		t.destroy(d.device)
		delete(d.targets, id)
	}
	clear(d.framebuffers)
	d.current = nil

	if d.screen != nil {
		d.screen.destroy(d.device)
		d.screen = nil
	}
	if d.sampler != nil {
		d.device.DestroySampler(d.sampler)
		d.sampler = nil
	}
	if d.quad != nil {
		d.device.DestroyBuffer(d.quad)
		d.quad = nil
	}
	if d.owned {
		d.device.Destroy()
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
}
