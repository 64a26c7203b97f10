package fluid_test

import (
	"errors"
	"math"
	"testing"

	"github.com/gogpu/fluid"
	"github.com/gogpu/fluid/backend/software"
	"github.com/gogpu/fluid/gpucore"
)

func newSimulator(t *testing.T, w, h int, sim, dye fluid.Resolution, opts ...fluid.Option) (*fluid.Simulator, *software.Device) {
	t.Helper()
	dev := software.New(w, h, software.WithWorkers(2))
	t.Cleanup(func() { _ = dev.Close() })
	s, err := fluid.New(dev, sim, dye, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, dev
}

func readField(t *testing.T, s *fluid.Simulator, mode fluid.Mode) *fluid.Field {
	t.Helper()
	f, err := s.ReadField(mode)
	if err != nil {
		t.Fatalf("ReadField(%v): %v", mode, err)
	}
	return f
}

func still(t float64) fluid.Frame {
	return fluid.Frame{Time: t, Mode: fluid.Dye, Pressure: 1}
}

func TestEndToEnd(t *testing.T) {
	s, dev := newSimulator(t, 400, 400, fluid.Four, fluid.Two)

	simW, simH, dyeW, dyeH := s.Sizes()
	if simW != 100 || simH != 100 || dyeW != 200 || dyeH != 200 {
		t.Fatalf("Sizes() = %d,%d,%d,%d; want 100,100,200,200", simW, simH, dyeW, dyeH)
	}

	if err := s.Splat(20, []float32{200, 200}, []float32{0, 0}, []float32{1, 0, 0}); err != nil {
		t.Fatalf("Splat: %v", err)
	}
	if err := s.Update(still(0.0333)); err != nil {
		t.Fatalf("Update: %v", err)
	}

	dye := readField(t, s, fluid.Dye)
	center := dye.At(100, 100)[0]
	// Twice the radius is 40 canvas pixels, 20 dye texels.
	for _, p := range [][2]int{{120, 100}, {80, 100}, {100, 120}, {100, 80}} {
		side := dye.At(p[0], p[1])[0]
		if center < 0.9 || side > center/10 {
			t.Errorf("center red %v, red at %v = %v", center, p, side)
		}
	}

	screen, err := dev.ReadPixels(gpucore.DefaultFramebuffer, 200, 200, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if screen[0] < 0.9 || screen[3] != 1 {
		t.Errorf("screen center = %v", screen)
	}

	full, err := s.ReadScreen()
	if err != nil {
		t.Fatalf("ReadScreen: %v", err)
	}
	if full.Width != 400 || full.Height != 400 || full.At(200, 200)[0] != screen[0] {
		t.Errorf("ReadScreen = %dx%d, center %v", full.Width, full.Height, full.At(200, 200))
	}
}

func TestSplatSemantics(t *testing.T) {
	s, _ := newSimulator(t, 128, 128, fluid.Two, fluid.One)

	if err := s.Splat(8, []float32{64, 64}, []float32{40, -20}, []float32{0.2, 0.4, 0.6}); err != nil {
		t.Fatal(err)
	}

	dye := readField(t, s, fluid.Dye)
	peak := dye.At(64, 64)
	for c, want := range []float32{0.2, 0.4, 0.6} {
		if math.Abs(float64(peak[c]-want)) > 0.01 {
			t.Errorf("dye peak[%d] = %v, want ~%v", c, peak[c], want)
		}
	}
	if far := dye.At(10, 10); far[0] > 1e-6 || far[2] > 1e-6 {
		t.Errorf("dye far from the splat = %v", far)
	}

	// Velocity is stored in sim texels: (40, -20) / 2.
	vel := readField(t, s, fluid.Velocity)
	v := vel.At(32, 32)
	if math.Abs(float64(v[0]-20)) > 1 || math.Abs(float64(v[1]+10)) > 0.5 {
		t.Errorf("velocity peak = %v, want ~(20, -10)", v)
	}
}

func TestSplatPanicsOnShortSlices(t *testing.T) {
	s, _ := newSimulator(t, 32, 32, fluid.Two, fluid.Two)
	defer func() {
		if recover() == nil {
			t.Error("Splat with a 2-element color did not panic")
		}
	}()
	_ = s.Splat(4, []float32{1, 1}, []float32{0, 0}, []float32{1, 0})
}

func TestDeltaTimeIsCapped(t *testing.T) {
	s, _ := newSimulator(t, 64, 64, fluid.Two, fluid.Two)
	if err := s.Splat(6, []float32{32, 32}, []float32{0, 0}, []float32{1, 1, 1}); err != nil {
		t.Fatal(err)
	}
	before := readField(t, s, fluid.Dye).At(16, 16)[0]

	// A 5 s jump must use dt = MaxDeltaTime, fading dye by 1/(1+10*dt).
	f := still(5)
	f.Dissipation = 10
	if err := s.Update(f); err != nil {
		t.Fatal(err)
	}
	got := readField(t, s, fluid.Dye).At(16, 16)[0]
	want := before / (1 + 10*fluid.MaxDeltaTime)
	if math.Abs(float64(got-want)) > 1e-3 {
		t.Errorf("dye after capped step = %v, want %v (uncapped would be %v)", got, want, before/51)
	}
}

func TestPausedFrameRecordsTime(t *testing.T) {
	s, _ := newSimulator(t, 64, 64, fluid.Two, fluid.Two)
	if err := s.Splat(6, []float32{32, 32}, []float32{0, 0}, []float32{1, 1, 1}); err != nil {
		t.Fatal(err)
	}
	before := readField(t, s, fluid.Dye).At(16, 16)[0]

	paused := still(10)
	paused.Paused = true
	paused.Dissipation = 10
	if err := s.Update(paused); err != nil {
		t.Fatal(err)
	}
	if got := readField(t, s, fluid.Dye).At(16, 16)[0]; got != before {
		t.Errorf("paused frame changed dye: %v -> %v", before, got)
	}

	f := still(10.01)
	f.Dissipation = 10
	if err := s.Update(f); err != nil {
		t.Fatal(err)
	}
	got := readField(t, s, fluid.Dye).At(16, 16)[0]
	want := before / (1 + 10*0.01)
	if math.Abs(float64(got-want)) > 1e-3 {
		t.Errorf("dye after 10 ms step = %v, want %v", got, want)
	}
}

func TestJacobiIterationFloor(t *testing.T) {
	drawsFor := func(t *testing.T, iterations int, opts ...fluid.Option) uint64 {
		t.Helper()
		s, dev := newSimulator(t, 32, 32, fluid.Two, fluid.Two, opts...)
		f := still(0.01)
		f.Iterations = iterations
		before := dev.Draws()
		if err := s.Update(f); err != nil {
			t.Fatal(err)
		}
		return dev.Draws() - before
	}

	base := drawsFor(t, fluid.DefaultIterations)
	if got := drawsFor(t, 5); got != base {
		t.Errorf("5 iterations drew %d quads, 20 drew %d", got, base)
	}
	if got := drawsFor(t, 0); got != base {
		t.Errorf("0 iterations drew %d quads, 20 drew %d", got, base)
	}
	if got := drawsFor(t, 25); got != base+5 {
		t.Errorf("25 iterations drew %d quads, want %d", got, base+5)
	}
	if got := drawsFor(t, 5, fluid.WithPressureIterationFloor(30)); got != base+10 {
		t.Errorf("floor 30 drew %d quads, want %d", got, base+10)
	}
}

func TestObstacleReplacementIsTotal(t *testing.T) {
	s, _ := newSimulator(t, 128, 128, fluid.Two, fluid.One)
	r := float32(16)

	if err := s.SetObstacle(&r, []float32{32, 32}, []float32{1, 1, 1}, true); err != nil {
		t.Fatal(err)
	}
	mask, err := s.ReadObstacles()
	if err != nil {
		t.Fatal(err)
	}
	if mask.At(32, 32)[0] != 1 {
		t.Fatal("obstacle center is not solid")
	}
	if mask.At(96, 96)[0] != 0 {
		t.Fatal("far point is solid")
	}

	if err := s.SetObstacle(&r, []float32{96, 96}, []float32{1, 1, 1}, false); err != nil {
		t.Fatal(err)
	}
	mask, _ = s.ReadObstacles()
	if mask.At(32, 32)[0] != 0 {
		t.Error("old obstacle survived replacement")
	}
	if mask.At(96, 96)[0] != 1 {
		t.Error("new obstacle missing")
	}
	// The square covers its corners, a disc would not.
	if mask.At(96+14, 96+14)[0] != 1 {
		t.Error("square obstacle corner is not solid")
	}

	if err := s.SetObstacle(nil, []float32{96, 96}, []float32{0, 0, 0}, true); err != nil {
		t.Fatal(err)
	}
	mask, _ = s.ReadObstacles()
	for i := 0; i < len(mask.Data); i += 4 {
		if mask.Data[i] != 0 {
			t.Fatal("nil radius left solid texels")
		}
	}
}

func TestObstacleColorsDye(t *testing.T) {
	s, _ := newSimulator(t, 64, 64, fluid.Two, fluid.One)
	r := float32(8)
	if err := s.SetObstacle(&r, []float32{32, 32}, []float32{0, 1, 0}, true); err != nil {
		t.Fatal(err)
	}
	if err := s.Update(still(0.01)); err != nil {
		t.Fatal(err)
	}
	dye := readField(t, s, fluid.Dye)
	if got := dye.At(32, 32); got[0] != 0 || got[1] != 1 || got[2] != 0 {
		t.Errorf("dye inside obstacle = %v, want green", got)
	}
	if got := dye.At(2, 2); got[1] != 0 {
		t.Errorf("dye outside obstacle = %v, want untouched", got)
	}

	// Replacing the obstacle paints the old region black.
	if err := s.SetObstacle(nil, []float32{0, 0}, []float32{0, 0, 0}, true); err != nil {
		t.Fatal(err)
	}
	dye = readField(t, s, fluid.Dye)
	if got := dye.At(32, 32); got[1] != 0 {
		t.Errorf("dye inside removed obstacle = %v, want black", got)
	}
}

func TestObstacleBlocksVelocity(t *testing.T) {
	s, _ := newSimulator(t, 64, 64, fluid.Two, fluid.Two)
	r := float32(12)
	if err := s.SetObstacle(&r, []float32{32, 32}, []float32{0, 0, 0}, true); err != nil {
		t.Fatal(err)
	}
	if err := s.Splat(16, []float32{32, 32}, []float32{100, 0}, []float32{1, 1, 1}); err != nil {
		t.Fatal(err)
	}
	if err := s.Update(still(0.01)); err != nil {
		t.Fatal(err)
	}
	v := readField(t, s, fluid.Velocity).At(16, 16)
	if v[0] != 0 || v[1] != 0 {
		t.Errorf("velocity inside obstacle = %v, want zero", v)
	}
}

func TestObstaclesDisabled(t *testing.T) {
	s, _ := newSimulator(t, 32, 32, fluid.Two, fluid.Two, fluid.WithObstacles(false))
	r := float32(4)
	if err := s.SetObstacle(&r, []float32{8, 8}, []float32{1, 1, 1}, true); !errors.Is(err, fluid.ErrObstaclesDisabled) {
		t.Errorf("SetObstacle = %v, want ErrObstaclesDisabled", err)
	}
	if _, err := s.ReadObstacles(); !errors.Is(err, fluid.ErrObstaclesDisabled) {
		t.Errorf("ReadObstacles = %v, want ErrObstaclesDisabled", err)
	}
	if err := s.Splat(4, []float32{16, 16}, []float32{5, 5}, []float32{1, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := s.Update(still(0.01)); err != nil {
		t.Fatalf("Update without obstacles: %v", err)
	}
}

func TestResizePreservesFields(t *testing.T) {
	s, dev := newSimulator(t, 128, 128, fluid.Two, fluid.One)
	if err := s.Splat(24, []float32{64, 64}, []float32{0, 0}, []float32{1, 0, 0}); err != nil {
		t.Fatal(err)
	}

	// Same size: nothing changes.
	before := readField(t, s, fluid.Dye)
	if err := s.Resize(fluid.Two, fluid.One); err != nil {
		t.Fatal(err)
	}
	after := readField(t, s, fluid.Dye)
	if after.Width != before.Width || after.At(64, 64) != before.At(64, 64) {
		t.Error("no-op resize changed the dye field")
	}

	dev.SetDrawingBufferSize(64, 64)
	if err := s.Resize(fluid.Four, fluid.Two); err != nil {
		t.Fatal(err)
	}
	simW, simH, dyeW, dyeH := s.Sizes()
	if simW != 16 || simH != 16 || dyeW != 32 || dyeH != 32 {
		t.Fatalf("Sizes() = %d,%d,%d,%d; want 16,16,32,32", simW, simH, dyeW, dyeH)
	}
	if sim, dye := s.Resolutions(); sim != fluid.Four || dye != fluid.Two {
		t.Errorf("Resolutions() = %v, %v", sim, dye)
	}

	dye := readField(t, s, fluid.Dye)
	if c := dye.At(16, 16)[0]; c < 0.5 {
		t.Errorf("dye center after resize = %v, want content preserved", c)
	}
	if err := s.Update(still(0.01)); err != nil {
		t.Fatalf("Update after resize: %v", err)
	}
}

func TestResizeFailureLeavesSimulatorIntact(t *testing.T) {
	s, dev := newSimulator(t, 64, 64, fluid.Two, fluid.Two)
	if err := s.Splat(8, []float32{32, 32}, []float32{0, 0}, []float32{1, 0, 0}); err != nil {
		t.Fatal(err)
	}

	// The sim fields fit, the dye field does not.
	dev.SetDrawingBufferSize(40000, 16)
	err := s.Resize(fluid.Four, fluid.One)
	var re *fluid.RenderError
	if !errors.As(err, &re) {
		t.Fatalf("Resize = %v, want *RenderError", err)
	}
	if sim, dye := s.Resolutions(); sim != fluid.Two || dye != fluid.Two {
		t.Errorf("Resolutions() = %v, %v after failed resize; want Two, Two", sim, dye)
	}
	simW, simH, dyeW, dyeH := s.Sizes()
	if simW != 32 || simH != 32 || dyeW != 32 || dyeH != 32 {
		t.Errorf("Sizes() = %d,%d,%d,%d after failed resize; want 32,32,32,32", simW, simH, dyeW, dyeH)
	}
	for _, mode := range []fluid.Mode{fluid.Velocity, fluid.Pressure, fluid.Dye} {
		f := readField(t, s, mode)
		if f.Width != 32 || f.Height != 32 {
			t.Errorf("%v field is %dx%d after failed resize; want 32x32", mode, f.Width, f.Height)
		}
	}
	mask, err := s.ReadObstacles()
	if err != nil {
		t.Fatal(err)
	}
	if mask.Width != 32 || mask.Height != 32 {
		t.Errorf("obstacle mask is %dx%d after failed resize; want 32x32", mask.Width, mask.Height)
	}
	if c := readField(t, s, fluid.Dye).At(16, 16)[0]; c < 0.5 {
		t.Errorf("dye center = %v after failed resize, want content kept", c)
	}

	dev.SetDrawingBufferSize(64, 64)
	if err := s.Resize(fluid.Four, fluid.One); err != nil {
		t.Fatalf("Resize after restoring the canvas: %v", err)
	}
	if simW, _, dyeW, _ := s.Sizes(); simW != 16 || dyeW != 64 {
		t.Errorf("Sizes() = %d, %d; want 16, 64", simW, dyeW)
	}
}

func TestResizeClearsOldObstacleTint(t *testing.T) {
	s, _ := newSimulator(t, 64, 64, fluid.Two, fluid.One)
	r := float32(8)
	if err := s.SetObstacle(&r, []float32{32, 32}, []float32{0, 1, 0}, true); err != nil {
		t.Fatal(err)
	}
	if err := s.Update(still(0.01)); err != nil {
		t.Fatal(err)
	}
	if got := readField(t, s, fluid.Dye).At(32, 32); got[1] != 1 {
		t.Fatalf("dye inside obstacle = %v, want green", got)
	}

	if err := s.Resize(fluid.Two, fluid.Two); err != nil {
		t.Fatal(err)
	}
	mask, err := s.ReadObstacles()
	if err != nil {
		t.Fatal(err)
	}
	if mask.Width != 32 || mask.At(16, 16)[0] != 0 {
		t.Errorf("recreated mask is %d wide with center %v; want 32 and empty", mask.Width, mask.At(16, 16))
	}
	dye := readField(t, s, fluid.Dye)
	if got := dye.At(16, 16); got[1] != 0 {
		t.Errorf("dye under the old obstacle = %v, want black", got)
	}
	if err := s.Update(still(0.02)); err != nil {
		t.Fatal(err)
	}
	if got := readField(t, s, fluid.Dye).At(16, 16); got[1] > 0.01 {
		t.Errorf("dye under the old obstacle = %v after Update, want no green", got)
	}
}

func TestResizeInvalid(t *testing.T) {
	s, _ := newSimulator(t, 32, 32, fluid.Two, fluid.Two)
	if err := s.Resize(3, fluid.Two); !errors.Is(err, fluid.ErrInvalidResolution) {
		t.Errorf("Resize(3) = %v, want ErrInvalidResolution", err)
	}
}

func TestDrawModes(t *testing.T) {
	s, dev := newSimulator(t, 32, 32, fluid.Two, fluid.Two)
	for _, mode := range []fluid.Mode{fluid.Velocity, fluid.Pressure} {
		f := still(0.01)
		f.Mode = mode
		f.Paused = true
		if err := s.Update(f); err != nil {
			t.Fatal(err)
		}
		px, err := dev.ReadPixels(gpucore.DefaultFramebuffer, 4, 4, 1, 1)
		if err != nil {
			t.Fatal(err)
		}
		if px[0] != 0.5 || px[1] != 0.5 {
			t.Errorf("%v: zero field drawn as %v, want 0.5", mode, px)
		}
	}
}

func TestNewErrors(t *testing.T) {
	t.Run("invalid resolution", func(t *testing.T) {
		dev := software.New(16, 16)
		defer dev.Close()
		if _, err := fluid.New(dev, 3, fluid.Two); !errors.Is(err, fluid.ErrInvalidResolution) {
			t.Errorf("New = %v, want ErrInvalidResolution", err)
		}
	})
	t.Run("no float targets", func(t *testing.T) {
		dev := software.New(16, 16, software.WithCapabilities(gpucore.Capabilities{MaxTextureUnits: 8}))
		defer dev.Close()
		if _, err := fluid.New(dev, fluid.Two, fluid.Two); !errors.Is(err, fluid.ErrContextUnavailable) {
			t.Errorf("New = %v, want ErrContextUnavailable", err)
		}
	})
	t.Run("nil device", func(t *testing.T) {
		if _, err := fluid.New(nil, fluid.Two, fluid.Two); err == nil {
			t.Error("New(nil) succeeded")
		}
	})
}

func TestNegotiatedConfigurations(t *testing.T) {
	tests := []struct {
		name       string
		caps       gpucore.Capabilities
		opts       []fluid.Option
		wantFormat gpucore.PixelFormat
		wantManual bool
	}{
		{
			name:       "full float linear",
			caps:       software.DefaultCapabilities,
			wantFormat: gpucore.FormatRGBA32F,
		},
		{
			name:       "float without linear",
			caps:       gpucore.Capabilities{FloatRenderable: true, MaxTextureUnits: 16},
			wantFormat: gpucore.FormatRGBA32F,
			wantManual: true,
		},
		{
			name:       "half only",
			caps:       gpucore.Capabilities{HalfFloatRenderable: true, HalfFloatLinear: true, MaxTextureUnits: 16},
			wantFormat: gpucore.FormatRGBA16F,
		},
		{
			name:       "half requested",
			caps:       software.DefaultCapabilities,
			opts:       []fluid.Option{fluid.WithFormat(gpucore.FormatRGBA16F)},
			wantFormat: gpucore.FormatRGBA16F,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := software.New(64, 64, software.WithCapabilities(tt.caps), software.WithWorkers(2))
			defer dev.Close()
			s, err := fluid.New(dev, fluid.Two, fluid.One, tt.opts...)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			defer s.Close()

			cfg := s.Config()
			if cfg.Format != tt.wantFormat || cfg.ManualFiltering != tt.wantManual {
				t.Errorf("Config() = %v", cfg)
			}

			if err := s.Splat(8, []float32{32, 32}, []float32{50, 0}, []float32{1, 0, 0}); err != nil {
				t.Fatal(err)
			}
			for i := 1; i <= 3; i++ {
				if err := s.Update(fluid.DefaultParams().Frame(float64(i)*0.016, fluid.Dye, false)); err != nil {
					t.Fatalf("Update %d: %v", i, err)
				}
			}
			if red := readField(t, s, fluid.Dye).At(32, 32)[0]; red <= 0 || math.IsNaN(float64(red)) {
				t.Errorf("dye center = %v after three frames", red)
			}
		})
	}
}

func TestClose(t *testing.T) {
	s, _ := newSimulator(t, 32, 32, fluid.Two, fluid.Two)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
	if err := s.Update(still(1)); !errors.Is(err, fluid.ErrClosed) {
		t.Errorf("Update after Close = %v, want ErrClosed", err)
	}
	if err := s.Splat(1, []float32{0, 0}, []float32{0, 0}, []float32{0, 0, 0}); !errors.Is(err, fluid.ErrClosed) {
		t.Errorf("Splat after Close = %v, want ErrClosed", err)
	}
	if _, err := s.ReadField(fluid.Dye); !errors.Is(err, fluid.ErrClosed) {
		t.Errorf("ReadField after Close = %v, want ErrClosed", err)
	}
}

func TestRenderErrorOnDeviceFailure(t *testing.T) {
	s, dev := newSimulator(t, 32, 32, fluid.Two, fluid.Two)
	_ = dev.Close()

	err := s.Update(still(0.01))
	var re *fluid.RenderError
	if !errors.As(err, &re) {
		t.Fatalf("Update on closed device = %v, want *RenderError", err)
	}
	if !errors.Is(err, gpucore.ErrDeviceClosed) {
		t.Errorf("RenderError does not wrap ErrDeviceClosed: %v", err)
	}
}

// jet splats a horizontal jet into the middle of a 64x64 canvas.
func jet(t *testing.T, s *fluid.Simulator) {
	t.Helper()
	if err := s.Splat(8, []float32{32, 32}, []float32{60, 0}, []float32{1, 1, 1}); err != nil {
		t.Fatal(err)
	}
}

// divergenceL1 sums |du/dx + dv/dy| over the interior texels of a velocity
// field using central differences.
func divergenceL1(f *fluid.Field) float64 {
	var sum float64
	for y := 1; y < f.Height-1; y++ {
		for x := 1; x < f.Width-1; x++ {
			d := 0.5 * (f.At(x+1, y)[0] - f.At(x-1, y)[0] + f.At(x, y+1)[1] - f.At(x, y-1)[1])
			sum += math.Abs(float64(d))
		}
	}
	return sum
}

func TestViscosityDampsVelocity(t *testing.T) {
	run := func(viscosity float32) *fluid.Field {
		s, _ := newSimulator(t, 64, 64, fluid.Two, fluid.Two, fluid.WithFormat(gpucore.FormatRGBA32F))
		jet(t, s)
		f := still(0.02)
		f.Viscosity = viscosity
		if err := s.Update(f); err != nil {
			t.Fatal(err)
		}
		return readField(t, s, fluid.Velocity)
	}
	free, damped := run(0), run(4)

	// Everything after advection is linear in velocity, so the whole step
	// scales by the damping factor.
	want := 1 / (1 + 4*0.02)
	compared := 0
	for y := range free.Height {
		for x := range free.Width {
			v := free.At(x, y)[0]
			if math.Abs(float64(v)) < 0.05 {
				continue
			}
			compared++
			ratio := float64(damped.At(x, y)[0] / v)
			if math.Abs(ratio-want) > 1e-3 {
				t.Fatalf("damped/free velocity at (%d,%d) = %v, want %v", x, y, ratio, want)
			}
		}
	}
	if compared == 0 {
		t.Fatal("jet left no velocity to compare")
	}
}

func TestCurlChangesVelocity(t *testing.T) {
	run := func(curl float32) *fluid.Field {
		s, _ := newSimulator(t, 64, 64, fluid.Two, fluid.Two, fluid.WithFormat(gpucore.FormatRGBA32F))
		jet(t, s)
		f := still(0.02)
		f.Curl = curl
		if err := s.Update(f); err != nil {
			t.Fatal(err)
		}
		return readField(t, s, fluid.Velocity)
	}
	plain, confined := run(0), run(1)

	var diff float64
	for i := range plain.Data {
		diff = math.Max(diff, math.Abs(float64(plain.Data[i]-confined.Data[i])))
	}
	if diff < 1e-4 {
		t.Errorf("Curl=1 changed velocity by at most %v, want a visible confinement force", diff)
	}
}

func TestProjectionReducesDivergence(t *testing.T) {
	s, _ := newSimulator(t, 64, 64, fluid.Two, fluid.Two, fluid.WithFormat(gpucore.FormatRGBA32F))
	jet(t, s)
	raw := divergenceL1(readField(t, s, fluid.Velocity))
	if raw == 0 {
		t.Fatal("splat produced a divergence-free field")
	}

	f := still(0.001)
	f.Iterations = 60
	if err := s.Update(f); err != nil {
		t.Fatal(err)
	}
	projected := divergenceL1(readField(t, s, fluid.Velocity))
	if projected >= 0.5*raw {
		t.Errorf("divergence after Update = %v, raw splat = %v; want at most half", projected, raw)
	}
}
