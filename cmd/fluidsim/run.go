package main

import (
	"context"
	"fmt"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/fluid"
	"github.com/gogpu/fluid/backend"
	"github.com/gogpu/fluid/choreo"
	"github.com/gogpu/fluid/gpucore"
	"github.com/gogpu/fluid/internal/config"
	"github.com/gogpu/fluid/internal/snapshot"
)

// runner drives one headless simulation.
type runner struct {
	cfg      config.File
	backend  string
	splats   int
	seed     int64
	workers  int
	progress *progress

	// written lists the images saved, in frame order.
	written []string
}

func (r *runner) openDevice() (gpucore.Device, error) {
	opts := backend.Options{Width: r.cfg.Output.Width, Height: r.cfg.Output.Height}
	if r.backend == "" {
		return backend.OpenDefault(opts)
	}
	return backend.Open(r.backend, opts)
}

func (r *runner) run(ctx context.Context) error {
	cfg := r.cfg
	sim, dye, err := cfg.Resolutions()
	if err != nil {
		return err
	}
	field, err := fluid.ParseMode(cfg.Output.Field)
	if err != nil {
		return err
	}
	kind, err := choreo.ParseKind(cfg.Choreography.Kind)
	if err != nil {
		return err
	}

	dev, err := r.openDevice()
	if err != nil {
		return err
	}
	defer dev.Close()

	s, err := fluid.New(dev, sim, dye, fluid.WithObstacles(cfg.Obstacle.Enabled))
	if err != nil {
		return err
	}
	defer s.Close()

	w, h := dev.DrawingBufferSize()
	fluid.Logger().Info("fluidsim: start",
		"backend", dev.Name(), "size", fmt.Sprintf("%dx%d", w, h),
		"sim", sim, "dye", dye, "frames", cfg.Output.Frames, "choreography", kind)

	if cfg.Obstacle.Enabled {
		if err := r.placeObstacle(s, w, h); err != nil {
			return err
		}
	}

	// Encoding runs beside the simulation; reads stay on this goroutine
	// because devices are not shared.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.workers, 1))

	rng := rand.New(rand.NewSource(r.seed))
	spells, spin := cfg.Choreography.Spells(), cfg.Choreography.Spinner()
	frames := cfg.Output.Frames

	for i := 0; i < frames; i++ {
		if err := gctx.Err(); err != nil {
			_ = g.Wait()
			return err
		}

		t := float64(i) / cfg.Output.FPS
		if i == 0 && kind == choreo.None {
			if err := r.strokes(s, rng, w, h); err != nil {
				_ = g.Wait()
				return err
			}
		}
		if !cfg.Simulation.Paused {
			switch kind {
			case choreo.KindSpells:
				err = spells.Apply(s, w, h)
			case choreo.KindSpin:
				err = spin.Apply(s, w, h, t)
			}
			if err != nil {
				_ = g.Wait()
				return err
			}
		}

		if err := s.Update(cfg.Frame(t)); err != nil {
			_ = g.Wait()
			return err
		}
		r.progress.update(i + 1)

		if every := cfg.Output.Every; every > 0 && (i+1)%every == 0 {
			if err := r.export(g, s, field, snapshot.FramePath(cfg.Output.Path, i+1), w, h); err != nil {
				_ = g.Wait()
				return err
			}
		}
	}
	r.progress.done()

	if err := r.export(g, s, field, cfg.Output.Path, w, h); err != nil {
		_ = g.Wait()
		return err
	}
	return g.Wait()
}

// export reads the field now and encodes it on the group.
func (r *runner) export(g *errgroup.Group, s *fluid.Simulator, mode fluid.Mode, path string, w, h int) error {
	f, err := s.ReadField(mode)
	if err != nil {
		return err
	}
	ow := max(int(float64(w)*r.cfg.Output.Scale), 1)
	oh := max(int(float64(h)*r.cfg.Output.Scale), 1)
	r.written = append(r.written, path)
	g.Go(func() error {
		img := snapshot.Scale(snapshot.Image(f, snapshot.Signed(mode)), ow, oh)
		if err := snapshot.Save(path, img); err != nil {
			return err
		}
		fluid.Logger().Debug("fluidsim: wrote", "path", path, "size", fmt.Sprintf("%dx%d", ow, oh))
		return nil
	})
	return nil
}

func (r *runner) placeObstacle(s *fluid.Simulator, w, h int) error {
	o := r.cfg.Obstacle
	radius := o.Radius * float32(min(w, h))
	pos := []float32{o.X * float32(w), o.Y * float32(h)}
	color := config.MustColor(o.Color)
	return s.SetObstacle(&radius, pos, color[:], o.Circle)
}

// strokes drags the pointer across the canvas a few times, the way a user
// would before any choreography runs.
func (r *runner) strokes(s *fluid.Simulator, rng *rand.Rand, w, h int) error {
	pc := r.cfg.Pointer
	color, err := config.ParseColor(pc.Color)
	if err != nil {
		return fmt.Errorf("pointer color: %w", err)
	}
	radius := choreo.Radius(w, h, pc.Radius)
	p := choreo.NewPointer(0, 0)

	for i := 0; i < r.splats; i++ {
		x, y := rng.Float32()*float32(w), rng.Float32()*float32(h)
		p.Down(x, y)
		if pc.RandomColor {
			color = choreo.RandomColor(rng, choreo.DefaultHue, choreo.DefaultSaturation, choreo.DefaultLightness)
		}
		dx, dy := (rng.Float32()*2-1)*float32(w)*0.02, (rng.Float32()*2-1)*float32(h)*0.02
		p.Update(x+dx, y+dy, pc.Strength)
		if p.Moved() {
			if err := s.Splat(radius, p.Position(), p.Velocity(), color[:]); err != nil {
				return err
			}
		}
		p.ResetMove()
		p.Up()
	}
	return nil
}
