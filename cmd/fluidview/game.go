package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gogpu/fluid"
	"github.com/gogpu/fluid/backend"
	"github.com/gogpu/fluid/choreo"
	"github.com/gogpu/fluid/gpucore"
	"github.com/gogpu/fluid/internal/config"
	"github.com/gogpu/fluid/internal/snapshot"
)

// Game adapts the simulator to ebiten's update and draw loop.
type Game struct {
	cfg    config.File
	dev    gpucore.Device
	sim    *fluid.Simulator
	width  int
	height int

	pointer  *choreo.Pointer
	color    [3]float32
	rng      *rand.Rand
	kind     choreo.Kind
	mode     fluid.Mode
	paused   bool
	obstacle bool
	start    time.Time
}

func newGame(cfg config.File, name string) (*Game, error) {
	sim, dye, err := cfg.Resolutions()
	if err != nil {
		return nil, err
	}
	dev, err := backend.Open(name, backend.Options{Width: cfg.Output.Width, Height: cfg.Output.Height})
	if err != nil {
		return nil, err
	}
	s, err := fluid.New(dev, sim, dye)
	if err != nil {
		dev.Close()
		return nil, err
	}

	g := &Game{
		cfg:     cfg,
		dev:     dev,
		sim:     s,
		pointer: choreo.NewPointer(0, 0),
		color:   config.MustColor(cfg.Pointer.Color),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		paused:  cfg.Simulation.Paused,
		start:   time.Now(),
	}
	g.width, g.height = dev.DrawingBufferSize()
	g.kind, _ = choreo.ParseKind(cfg.Choreography.Kind)
	g.mode, _ = fluid.ParseMode(cfg.Simulation.Mode)
	if cfg.Obstacle.Enabled {
		if err := g.toggleObstacle(); err != nil {
			g.close()
			return nil, err
		}
	}
	return g, nil
}

func (g *Game) close() {
	g.sim.Close()
	g.dev.Close()
}

// Update handles input and advances the simulation by one frame.
func (g *Game) Update() error {
	g.handleKeys()
	if err := g.handlePointer(); err != nil {
		return err
	}

	t := time.Since(g.start).Seconds()
	if !g.paused {
		var err error
		switch g.kind {
		case choreo.KindSpells:
			err = g.cfg.Choreography.Spells().Apply(g.sim, g.width, g.height)
		case choreo.KindSpin:
			err = g.cfg.Choreography.Spinner().Apply(g.sim, g.width, g.height, t)
		}
		if err != nil {
			return err
		}
	}

	frame := g.cfg.Simulation.Params.Frame(t, g.mode, g.paused)
	if err := g.sim.Update(frame); err != nil {
		return err
	}
	g.pointer.ResetMove()
	return nil
}

func (g *Game) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	for key, mode := range map[ebiten.Key]fluid.Mode{
		ebiten.Key1: fluid.Dye,
		ebiten.Key2: fluid.Velocity,
		ebiten.Key3: fluid.Pressure,
	} {
		if inpututil.IsKeyJustPressed(key) {
			g.mode = mode
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.kind = (g.kind + 1) % (choreo.KindSpin + 1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.cfg.Pointer.RandomColor = !g.cfg.Pointer.RandomColor
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		if err := g.toggleObstacle(); err != nil {
			fluid.Logger().Warn("fluidview: obstacle", "err", err)
		}
	}
}

// handlePointer feeds the mouse into the pointer. Window coordinates
// have y down; the simulator wants y up.
func (g *Game) handlePointer() error {
	cx, cy := ebiten.CursorPosition()
	x, y := float32(cx), float32(g.height-cy)

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.pointer.Down(x, y)
		if g.cfg.Pointer.RandomColor {
			g.color = choreo.RandomColor(g.rng, choreo.DefaultHue, choreo.DefaultSaturation, choreo.DefaultLightness)
		}
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		g.pointer.Update(x, y, g.cfg.Pointer.Strength)
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		g.pointer.Up()
	}

	if !g.pointer.Moved() {
		return nil
	}
	radius := choreo.Radius(g.width, g.height, g.cfg.Pointer.Radius)
	return g.sim.Splat(radius, g.pointer.Position(), g.pointer.Velocity(), g.color[:])
}

func (g *Game) toggleObstacle() error {
	o := g.cfg.Obstacle
	color := config.MustColor(o.Color)
	pos := []float32{o.X * float32(g.width), o.Y * float32(g.height)}
	if g.obstacle {
		g.obstacle = false
		return g.sim.SetObstacle(nil, pos, color[:], o.Circle)
	}
	radius := o.Radius * float32(min(g.width, g.height))
	if err := g.sim.SetObstacle(&radius, pos, color[:], o.Circle); err != nil {
		return err
	}
	g.obstacle = true
	return nil
}

// Draw copies the default framebuffer to the window.
func (g *Game) Draw(screen *ebiten.Image) {
	f, err := g.sim.ReadScreen()
	if err != nil {
		fluid.Logger().Error("fluidview: read screen", "err", err)
		return
	}
	screen.WritePixels(snapshot.Image(f, false).Pix)

	status := fmt.Sprintf("%s  %s", g.mode, g.kind)
	if g.paused {
		status += "  paused"
	}
	if g.cfg.Pointer.RandomColor {
		status += "  random color"
	}
	ebitenutil.DebugPrint(screen, status)
	if *debugFlag {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("FPS %.1f  TPS %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()), 0, 16)
	}
}

// Layout keeps the logical screen at the canvas size.
func (g *Game) Layout(int, int) (int, int) {
	return g.width, g.height
}
