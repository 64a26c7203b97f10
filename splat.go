package fluid

import "github.com/gogpu/fluid/internal/pipeline"

// Splat adds a Gaussian blob of momentum and color.
//
// radius, position and velocity are in canvas pixels with y up. The blob
// falls off as exp(-d²/radius²) in each field's own texel units, so it
// covers the same canvas area at any resolution. Velocity is added to the
// velocity field scaled to sim texels; color is added to the dye field
// unchanged.
//
// position and velocity need at least two elements and color at least
// three. Shorter slices are a programming error and panic.
func (s *Simulator) Splat(radius float32, position, velocity, color []float32) error {
	if len(position) < 2 || len(velocity) < 2 || len(color) < 3 {
		panic("fluid: Splat needs 2 position, 2 velocity and 3 color components")
	}
	if s.closed {
		return ErrClosed
	}

	k := float32(s.simRes)
	force := [3]float32{velocity[0] / k, velocity[1] / k, 0}
	if err := s.splat(s.velocity, s.simRes, radius, position, force); err != nil {
		return renderError("splat velocity", err)
	}
	tint := [3]float32{color[0], color[1], color[2]}
	if err := s.splat(s.dye, s.dyeRes, radius, position, tint); err != nil {
		return renderError("splat dye", err)
	}
	return nil
}

func (s *Simulator) splat(buf *pipeline.PingPongBuffer, res Resolution, radius float32, position []float32, color [3]float32) error {
	k := float32(res)
	p := s.progs.splat
	p.Bind()
	s.dev.Uniform1f(p.scaledRadius, radius*radius/(k*k))
	s.dev.Uniform2f(p.position, position[0]/k, position[1]/k)
	s.dev.Uniform3f(p.color, color[0], color[1], color[2])
	if err := s.bindTexture(p.texture, buf.Read(), 0); err != nil {
		return err
	}
	if err := pipeline.Blit(s.dev, buf.Write(), false); err != nil {
		return err
	}
	buf.Swap()
	return nil
}

// SetObstacle replaces the obstacle.
//
// The dye inside the previous obstacle is painted black, then the mask is
// redrawn: a disc (isCircle) or an axis-aligned square of half-size radius
// centered on position, both in canvas pixels with y up. A nil radius
// removes the obstacle. color is the dye color forced inside the mask on
// every following frame.
//
// position needs at least two elements and color at least three. It
// returns ErrObstaclesDisabled when the simulator was created without
// obstacles.
func (s *Simulator) SetObstacle(radius *float32, position, color []float32, isCircle bool) error {
	if len(position) < 2 || len(color) < 3 {
		panic("fluid: SetObstacle needs 2 position and 3 color components")
	}
	if s.closed {
		return ErrClosed
	}
	if s.obstacles == nil {
		return ErrObstaclesDisabled
	}

	if err := s.colorObstacles([3]float32{}); err != nil {
		return renderError("obstacle clear", err)
	}
	if err := s.drawObstacle(s.obstacles, radius, position, isCircle); err != nil {
		return renderError("obstacle", err)
	}
	s.obstacleColor = [3]float32{color[0], color[1], color[2]}
	return nil
}

// drawObstacle rewrites every texel of the mask.
func (s *Simulator) drawObstacle(mask *pipeline.Texture2D, radius *float32, position []float32, isCircle bool) error {
	k := float32(s.dyeRes)
	o := s.progs.obstacle
	o.Bind()

	// A negative threshold matches no texel.
	radiusSquared := float32(-1)
	if radius != nil {
		radiusSquared = *radius * *radius / (k * k)
	}
	circle := float32(0)
	if isCircle {
		circle = 1
	}
	s.dev.Uniform1f(o.scaledRadiusSquared, radiusSquared)
	s.dev.Uniform2f(o.position, position[0]/k, position[1]/k)
	s.dev.Uniform1f(o.isCircle, circle)
	return pipeline.Blit(s.dev, mask, false)
}
