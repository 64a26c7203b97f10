// Command fluidsim runs the fluid simulation headless and writes snapshots.
//
// A run starts from the defaults or a TOML preset, then applies any flags
// given on the command line:
//
//	fluidsim -preset spells.toml -frames 300 -out frame.png -backend software
//
// With -every N a numbered image is written every N frames in addition to
// the final one.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogpu/fluid"
	"github.com/gogpu/fluid/backend"
	_ "github.com/gogpu/fluid/backend/opencl"
	_ "github.com/gogpu/fluid/backend/software"
	_ "github.com/gogpu/fluid/backend/wgpu"
	"github.com/gogpu/fluid/internal/config"
)

var (
	presetFlag   = flag.String("preset", "", "TOML preset file")
	backendFlag  = flag.String("backend", "", "device backend (default: first available)")
	widthFlag    = flag.Int("width", 0, "canvas width in pixels")
	heightFlag   = flag.Int("height", 0, "canvas height in pixels")
	framesFlag   = flag.Int("frames", 0, "number of frames to simulate")
	fpsFlag      = flag.Float64("fps", 0, "simulated frames per second")
	outFlag      = flag.String("out", "", "output image (png, jpg, gif, tif, bmp)")
	everyFlag    = flag.Int("every", 0, "also write a numbered image every N frames")
	fieldFlag    = flag.String("field", "", "field to export: dye, velocity or pressure")
	scaleFlag    = flag.Float64("scale", 0, "output size relative to the canvas")
	simFlag      = flag.String("sim", "", "simulation downscale factor (1, 2, 4, 8, 16)")
	dyeFlag      = flag.String("dye", "", "dye downscale factor (1, 2, 4, 8, 16)")
	choreoFlag   = flag.String("choreo", "", "choreography: none, spells or spin")
	obstacleFlag = flag.Bool("obstacle", false, "place the preset obstacle")
	splatsFlag   = flag.Int("splats", 5, "random pointer strokes at the start when no choreography runs")
	seedFlag     = flag.Int64("seed", 1, "random seed for the pointer strokes")
	workersFlag  = flag.Int("workers", 2, "concurrent image encoders")
	verboseFlag  = flag.Bool("v", false, "verbose logging")
	printFlag    = flag.Bool("print-preset", false, "print the effective preset and exit")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\nBackends: %v\n\n", os.Args[0], backend.Available())
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelWarn
	if *verboseFlag {
		level = slog.LevelDebug
	}
	fluid.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *printFlag {
		if err := cfg.Encode(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &runner{
		cfg:      cfg,
		backend:  *backendFlag,
		splats:   *splatsFlag,
		seed:     *seedFlag,
		workers:  *workersFlag,
		progress: newProgress(os.Stderr, cfg.Output.Frames),
	}
	if err := r.run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fluidsim: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the preset and overrides it with the flags that were
// set explicitly.
func loadConfig() (config.File, error) {
	cfg := config.Default()
	if *presetFlag != "" {
		var err error
		if cfg, err = config.Load(*presetFlag); err != nil {
			return config.File{}, err
		}
	}

	var err error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Output.Width = *widthFlag
		case "height":
			cfg.Output.Height = *heightFlag
		case "frames":
			cfg.Output.Frames = *framesFlag
		case "fps":
			cfg.Output.FPS = *fpsFlag
		case "out":
			cfg.Output.Path = *outFlag
		case "every":
			cfg.Output.Every = *everyFlag
		case "field":
			cfg.Output.Field = *fieldFlag
		case "scale":
			cfg.Output.Scale = *scaleFlag
		case "choreo":
			cfg.Choreography.Kind = *choreoFlag
		case "obstacle":
			cfg.Obstacle.Enabled = *obstacleFlag
		case "sim":
			cfg.Simulation.SimResolution, err = parseResolution(*simFlag, err)
		case "dye":
			cfg.Simulation.DyeResolution, err = parseResolution(*dyeFlag, err)
		}
	})
	if err != nil {
		return config.File{}, err
	}
	return cfg, cfg.Validate()
}

func parseResolution(s string, prev error) (int, error) {
	r, err := fluid.ParseResolution(s)
	if prev != nil {
		return int(r), prev
	}
	return int(r), err
}
