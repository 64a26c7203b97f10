package fluid

import (
	"math"

	"github.com/gogpu/fluid/internal/pipeline"
)

// Frame holds the inputs of one Update call.
type Frame struct {
	// Paused skips the simulation passes; the selected field is still
	// drawn.
	Paused bool

	// Time is the host clock in seconds.
	Time float64

	// Mode selects the field to draw.
	Mode Mode

	// Viscosity damps velocity: each step scales it by 1/(1+Viscosity*dt).
	Viscosity float32

	// Dissipation fades dye the same way.
	Dissipation float32

	// Curl is the vorticity confinement strength, in [0, 1].
	Curl float32

	// Pressure scales the previous pressure field used as the starting
	// guess of the solve.
	Pressure float32

	// Iterations is the requested Jacobi iteration count. Counts below the
	// configured floor are raised to it.
	Iterations int
}

// Update advances the simulation by one step and draws the selected field
// into the default framebuffer.
//
// The step is the time since the previous call, capped at MaxDeltaTime.
// The time is recorded even when the frame is paused. A device failure
// aborts the frame with a *RenderError.
func (s *Simulator) Update(f Frame) error {
	if s.closed {
		return ErrClosed
	}
	dt := float32(math.Min(MaxDeltaTime, f.Time-s.lastTime))
	s.lastTime = f.Time

	if !f.Paused {
		if err := s.step(f, dt); err != nil {
			return err
		}
	}
	return renderError("draw", s.draw(f.Mode))
}

func (s *Simulator) step(f Frame, dt float32) error {
	if err := s.applyVorticity(f.Curl); err != nil {
		return renderError("vorticity", err)
	}
	if err := s.advectVelocity(f.Viscosity, dt); err != nil {
		return renderError("advect velocity", err)
	}
	if err := s.project(f.Pressure, f.Iterations); err != nil {
		return renderError("project", err)
	}
	if s.obstacles != nil {
		if err := s.colorObstacles(s.obstacleColor); err != nil {
			return renderError("obstacle coloring", err)
		}
	}
	if err := s.advectDye(f.Dissipation, dt); err != nil {
		return renderError("advect dye", err)
	}
	if s.obstacles != nil {
		if err := s.colorObstacles(s.obstacleColor); err != nil {
			return renderError("obstacle coloring", err)
		}
	}
	return nil
}

func (s *Simulator) rHalfTexelSize() float32 {
	return 0.5 / float32(s.simRes)
}

// applyVorticity computes the curl into scratch and adds the confinement
// force to velocity.
func (s *Simulator) applyVorticity(strength float32) error {
	c := s.progs.curl
	c.Bind()
	s.dev.Uniform1f(c.rHalfTexelSize, s.rHalfTexelSize())
	s.uniformSize(c.resolution, s.velocity.Read())
	if err := s.bindTexture(c.velocity, s.velocity.Read(), 0); err != nil {
		return err
	}
	if err := pipeline.Blit(s.dev, s.scratch, false); err != nil {
		return err
	}

	v := s.progs.vorticity
	v.Bind()
	s.dev.Uniform1f(v.curlScale, -strength)
	s.dev.Uniform1f(v.rHalfTexelSize, s.rHalfTexelSize())
	s.uniformSize(v.resolution, s.velocity.Read())
	if err := s.bindTexture(v.curl, s.scratch, 0); err != nil {
		return err
	}
	if err := s.bindTexture(v.velocity, s.velocity.Read(), 1); err != nil {
		return err
	}
	if err := pipeline.Blit(s.dev, s.velocity.Write(), false); err != nil {
		return err
	}
	s.velocity.Swap()
	return nil
}

// advect transports quantity along velocity into buf's write texture.
func (s *Simulator) advect(buf *pipeline.PingPongBuffer, coefficient, dt float32) error {
	a := s.progs.advection
	a.Bind()
	s.dev.Uniform1f(a.dissipation, 1/(1+coefficient*dt))
	s.dev.Uniform1f(a.deltaTime, dt)
	s.uniformSize(a.resolution, s.velocity.Read())
	s.uniformSize(a.quantitySize, buf.Read())
	if err := s.bindTexture(a.velocity, s.velocity.Read(), 0); err != nil {
		return err
	}
	unit := 0
	if buf != s.velocity {
		unit = 1
		if err := s.bindTexture(a.quantity, buf.Read(), unit); err != nil {
			return err
		}
	} else {
		s.dev.Uniform1i(a.quantity, 0)
	}
	if s.obstacles != nil {
		if err := s.bindTexture(a.obstacles, s.obstacles, unit+1); err != nil {
			return err
		}
	}
	if err := pipeline.Blit(s.dev, buf.Write(), false); err != nil {
		return err
	}
	buf.Swap()
	return nil
}

func (s *Simulator) advectVelocity(viscosity, dt float32) error {
	return s.advect(s.velocity, viscosity, dt)
}

func (s *Simulator) advectDye(dissipation, dt float32) error {
	return s.advect(s.dye, dissipation, dt)
}

// project removes the divergent part of velocity: divergence into
// scratch, a Jacobi solve for pressure, then the gradient subtraction.
func (s *Simulator) project(pressureFactor float32, iterations int) error {
	d := s.progs.divergence
	d.Bind()
	s.dev.Uniform1f(d.rHalfTexelSize, s.rHalfTexelSize())
	s.uniformSize(d.resolution, s.velocity.Read())
	if err := s.bindTexture(d.velocity, s.velocity.Read(), 0); err != nil {
		return err
	}
	if s.obstacles != nil {
		if err := s.bindTexture(d.obstacles, s.obstacles, 1); err != nil {
			return err
		}
	}
	if err := pipeline.Blit(s.dev, s.scratch, false); err != nil {
		return err
	}

	if err := s.progs.copy.Run(s.pressure.Read(), s.pressure.Write(), pressureFactor, 0, false); err != nil {
		return err
	}
	s.pressure.Swap()

	if err := s.solvePressure(max(iterations, s.opts.iterationFloor)); err != nil {
		return err
	}

	g := s.progs.gradientSubtract
	g.Bind()
	s.dev.Uniform1f(g.rHalfTexelSize, s.rHalfTexelSize())
	s.uniformSize(g.resolution, s.velocity.Read())
	if err := s.bindTexture(g.velocity, s.velocity.Read(), 0); err != nil {
		return err
	}
	if err := s.bindTexture(g.pressure, s.pressure.Read(), 1); err != nil {
		return err
	}
	if s.obstacles != nil {
		if err := s.bindTexture(g.obstacles, s.obstacles, 2); err != nil {
			return err
		}
	}
	if err := pipeline.Blit(s.dev, s.velocity.Write(), false); err != nil {
		return err
	}
	s.velocity.Swap()
	return nil
}

// solvePressure runs n Jacobi iterations of the pressure Poisson equation
// with the divergence in scratch as the right-hand side.
func (s *Simulator) solvePressure(n int) error {
	j := s.progs.jacobi
	j.Bind()
	k := float32(s.simRes)
	s.dev.Uniform1f(j.alpha, -k*k)
	s.dev.Uniform1f(j.rBeta, 0.25)
	s.uniformSize(j.resolution, s.pressure.Read())
	if err := s.bindTexture(j.b, s.scratch, 1); err != nil {
		return err
	}
	if s.obstacles != nil {
		if err := s.bindTexture(j.obstacles, s.obstacles, 2); err != nil {
			return err
		}
	}
	for range n {
		if err := s.bindTexture(j.x, s.pressure.Read(), 0); err != nil {
			return err
		}
		if err := pipeline.Blit(s.dev, s.pressure.Write(), false); err != nil {
			return err
		}
		s.pressure.Swap()
	}
	return nil
}

// colorObstacles forces dye inside the mask to color.
func (s *Simulator) colorObstacles(color [3]float32) error {
	o := s.progs.obstacleColoring
	o.Bind()
	s.dev.Uniform3f(o.color, color[0], color[1], color[2])
	if err := s.bindTexture(o.texture, s.dye.Read(), 0); err != nil {
		return err
	}
	if err := s.bindTexture(o.obstacles, s.obstacles, 1); err != nil {
		return err
	}
	if err := pipeline.Blit(s.dev, s.dye.Write(), false); err != nil {
		return err
	}
	s.dye.Swap()
	return nil
}

// draw copies the selected field into the default framebuffer. Signed
// fields are remapped from [-1, 1] to [0, 1].
func (s *Simulator) draw(mode Mode) error {
	src, factor, offset := s.dye.Read(), float32(1), float32(0)
	switch mode {
	case Velocity:
		src, factor, offset = s.velocity.Read(), 0.5, 0.5
	case Pressure:
		src, factor, offset = s.pressure.Read(), 0.5, 0.5
	}
	return s.progs.copy.Run(src, nil, factor, offset, true)
}
