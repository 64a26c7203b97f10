package fluid

import (
	"errors"
	"fmt"

	"github.com/gogpu/fluid/gpucore"
	"github.com/gogpu/fluid/internal/pipeline"
)

// Simulator runs the fluid passes on a device.
//
// A Simulator exclusively owns its textures and programs. It is not safe for
// concurrent use: the device state it drives (bound program, texture units,
// framebuffer) is global, so all calls must come from one goroutine.
type Simulator struct {
	dev  gpucore.Device
	cfg  gpucore.Config
	opts options

	simRes, dyeRes Resolution
	simW, simH     int
	dyeW, dyeH     int

	progs     *programs
	velocity  *pipeline.PingPongBuffer
	pressure  *pipeline.PingPongBuffer
	dye       *pipeline.PingPongBuffer
	scratch   *pipeline.Texture2D
	obstacles *pipeline.Texture2D

	obstacleColor [3]float32
	lastTime      float64
	closed        bool
}

// New creates a simulator on dev. The simulation fields are sized from the
// device's drawing buffer divided by sim; the dye field by dye.
//
// New negotiates the texel format and filter once, compiles every program
// and allocates every buffer. On failure everything created so far is
// released and the error is returned: ErrContextUnavailable,
// *ShaderCompileError, *ProgramLinkError or *ResourceError.
func New(dev gpucore.Device, sim, dye Resolution, opts ...Option) (*Simulator, error) {
	if dev == nil {
		return nil, errors.New("fluid: nil device")
	}
	if !sim.Valid() || !dye.Valid() {
		return nil, fmt.Errorf("%w: sim=%d dye=%d", ErrInvalidResolution, sim, dye)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := gpucore.NegotiateFormat(dev.Capabilities(), o.format)
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		dev:    dev,
		cfg:    cfg,
		opts:   o,
		simRes: sim,
		dyeRes: dye,
	}
	if err := s.init(); err != nil {
		s.release()
		return nil, err
	}

	Logger().Info("fluid: simulator created",
		"device", dev.Name(),
		"config", cfg.String(),
		"sim", fmt.Sprintf("%dx%d", s.simW, s.simH),
		"dye", fmt.Sprintf("%dx%d", s.dyeW, s.dyeH),
		"obstacles", o.obstacles,
	)
	return s, nil
}

func (s *Simulator) init() error {
	progs, err := compilePrograms(s.dev, s.cfg, s.opts.obstacles)
	if err != nil {
		return err
	}
	s.progs = progs

	s.computeSizes()
	f, filter := s.cfg.Format, s.cfg.Filter

	if s.velocity, err = pipeline.NewPingPongBuffer(s.dev, "velocity", s.simW, s.simH, f, filter); err != nil {
		return err
	}
	if s.pressure, err = pipeline.NewPingPongBuffer(s.dev, "pressure", s.simW, s.simH, f, filter); err != nil {
		return err
	}
	if s.dye, err = pipeline.NewPingPongBuffer(s.dev, "dye", s.dyeW, s.dyeH, f, filter); err != nil {
		return err
	}
	if s.scratch, err = pipeline.NewTexture2D(s.dev, "scratch", s.simW, s.simH, f, filter); err != nil {
		return err
	}
	if !s.opts.obstacles {
		return nil
	}
	if s.obstacles, err = pipeline.NewTexture2D(s.dev, "obstacles", s.dyeW, s.dyeH, f, gpucore.FilterNearest); err != nil {
		return err
	}
	return s.SetObstacle(nil, []float32{0, 0}, []float32{0, 0, 0}, true)
}

// release destroys whatever has been created, in reverse order.
func (s *Simulator) release() {
	if s.obstacles != nil {
		s.obstacles.Destroy()
		s.obstacles = nil
	}
	if s.scratch != nil {
		s.scratch.Destroy()
		s.scratch = nil
	}
	for _, b := range []**pipeline.PingPongBuffer{&s.dye, &s.pressure, &s.velocity} {
		if *b != nil {
			(*b).Destroy()
			*b = nil
		}
	}
	if s.progs != nil {
		s.progs.destroy()
		s.progs = nil
	}
}

func (s *Simulator) computeSizes() {
	w, h := s.dev.DrawingBufferSize()
	s.simW, s.simH = s.simRes.Scale(w), s.simRes.Scale(h)
	s.dyeW, s.dyeH = s.dyeRes.Scale(w), s.dyeRes.Scale(h)
}

// Close releases every texture and program. The device is not closed.
// Close is safe to call more than once.
func (s *Simulator) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.release()
	return nil
}

// Config returns the negotiated device configuration.
func (s *Simulator) Config() gpucore.Config { return s.cfg }

// Device returns the device the simulator draws with.
func (s *Simulator) Device() gpucore.Device { return s.dev }

// Sizes returns the simulation and dye field dimensions in texels.
func (s *Simulator) Sizes() (simW, simH, dyeW, dyeH int) {
	return s.simW, s.simH, s.dyeW, s.dyeH
}

// Resolutions returns the current downscale factors.
func (s *Simulator) Resolutions() (sim, dye Resolution) {
	return s.simRes, s.dyeRes
}

// Resize adapts the fields to the current drawing buffer size and new
// downscale factors. Velocity, pressure and dye are resampled into their
// new textures. Scratch and the obstacle mask are recreated when their size
// changes; a recreated mask is empty and the dye under the old obstacles is
// painted black. Every texture is allocated before any is installed, so a
// failed Resize leaves the simulator as it was.
func (s *Simulator) Resize(sim, dye Resolution) error {
	if s.closed {
		return ErrClosed
	}
	if !sim.Valid() || !dye.Valid() {
		return fmt.Errorf("%w: sim=%d dye=%d", ErrInvalidResolution, sim, dye)
	}
	w, h := s.dev.DrawingBufferSize()
	simW, simH := sim.Scale(w), sim.Scale(h)
	dyeW, dyeH := dye.Scale(w), dye.Scale(h)
	Logger().Debug("fluid: resize", "sim", fmt.Sprintf("%dx%d", simW, simH), "dye", fmt.Sprintf("%dx%d", dyeW, dyeH))

	var (
		staged  []*pipeline.Staged
		scratch *pipeline.Texture2D
		mask    *pipeline.Texture2D
	)
	fail := func(op string, err error) error {
		for _, st := range staged {
			st.Discard()
		}
		if scratch != nil {
			scratch.Destroy()
		}
		if mask != nil {
			mask.Destroy()
		}
		return renderError(op, err)
	}

	cp := s.progs.copy
	for _, r := range []struct {
		op   string
		buf  *pipeline.PingPongBuffer
		w, h int
	}{
		{"resize velocity", s.velocity, simW, simH},
		{"resize pressure", s.pressure, simW, simH},
		{"resize dye", s.dye, dyeW, dyeH},
	} {
		st, err := r.buf.Stage(r.w, r.h, cp)
		if err != nil {
			return fail(r.op, err)
		}
		staged = append(staged, st)
	}

	var err error
	if s.scratch.Width() != simW || s.scratch.Height() != simH {
		scratch, err = pipeline.NewTexture2D(s.dev, "scratch", simW, simH, s.cfg.Format, s.cfg.Filter)
		if err != nil {
			return fail("resize scratch", err)
		}
	}
	if s.obstacles != nil && (s.obstacles.Width() != dyeW || s.obstacles.Height() != dyeH) {
		mask, err = pipeline.NewTexture2D(s.dev, "obstacles", dyeW, dyeH, s.cfg.Format, gpucore.FilterNearest)
		if err != nil {
			return fail("resize obstacles", err)
		}
		if err := s.drawObstacle(mask, nil, []float32{0, 0}, true); err != nil {
			return fail("resize obstacles", err)
		}
	}

	for _, st := range staged {
		st.Commit()
	}
	if scratch != nil {
		s.scratch.Destroy()
		s.scratch = scratch
	}
	s.simRes, s.dyeRes = sim, dye
	s.simW, s.simH, s.dyeW, s.dyeH = simW, simH, dyeW, dyeH

	if mask != nil {
		// The old mask is sampled by uv, so it still lines up with the
		// resampled dye.
		err := s.colorObstacles([3]float32{})
		s.obstacles.Destroy()
		s.obstacles = mask
		if err != nil {
			return renderError("resize obstacles", err)
		}
	}
	return nil
}

// bindTexture binds t to unit and points the sampler uniform at it.
func (s *Simulator) bindTexture(loc gpucore.UniformLocation, t *pipeline.Texture2D, unit int) error {
	u, err := t.BindToUnit(unit)
	if err != nil {
		return err
	}
	s.dev.Uniform1i(loc, u)
	return nil
}

// uniformSize sets a vec2 uniform to the size of t.
func (s *Simulator) uniformSize(loc gpucore.UniformLocation, t *pipeline.Texture2D) {
	w, h := t.Size()
	s.dev.Uniform2f(loc, w, h)
}
