// Command fluidview shows the fluid simulation in a desktop window.
//
// Drag with the left mouse button to stir the fluid. Keys:
//
//	Space  pause or resume
//	1 2 3  show dye, velocity or pressure
//	C      cycle the choreography (none, spells, spin)
//	O      toggle the preset obstacle
//	R      toggle random pointer colors
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gogpu/fluid"
	"github.com/gogpu/fluid/backend"
	_ "github.com/gogpu/fluid/backend/opencl"
	_ "github.com/gogpu/fluid/backend/software"
	_ "github.com/gogpu/fluid/backend/wgpu"
	"github.com/gogpu/fluid/internal/config"
)

var (
	presetFlag  = flag.String("preset", "", "TOML preset file")
	backendFlag = flag.String("backend", backend.BackendSoftware, "device backend")
	zoomFlag    = flag.Float64("zoom", 1, "window size relative to the canvas")
	debugFlag   = flag.Bool("debug", false, "show the frame rate and verbose logging")
)

func main() {
	flag.Parse()

	level := slog.LevelWarn
	if *debugFlag {
		level = slog.LevelDebug
	}
	fluid.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := config.Default()
	if *presetFlag != "" {
		var err error
		if cfg, err = config.Load(*presetFlag); err != nil {
			log.Fatal(err)
		}
	}

	g, err := newGame(cfg, *backendFlag)
	if err != nil {
		log.Fatalf("fluidview: %v", err)
	}
	defer g.close()

	ebiten.SetWindowSize(int(float64(cfg.Output.Width) * *zoomFlag), int(float64(cfg.Output.Height) * *zoomFlag))
	ebiten.SetWindowTitle("fluid")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
