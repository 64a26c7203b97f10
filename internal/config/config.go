// Package config loads host presets from TOML files.
//
// A preset describes a whole run: simulation resolutions and coefficients,
// the pointer, the scripted choreography, an optional obstacle and the
// output of headless runs. Every key is optional; missing keys keep the
// values of Default.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gogpu/gg"

	"github.com/gogpu/fluid"
	"github.com/gogpu/fluid/choreo"
)

// ErrUnknownKey is returned by Load and Decode for keys no field takes.
var ErrUnknownKey = errors.New("config: unknown key")

// File is a decoded preset.
type File struct {
	Simulation   Simulation   `toml:"simulation"`
	Pointer      Pointer      `toml:"pointer"`
	Choreography Choreography `toml:"choreography"`
	Obstacle     Obstacle     `toml:"obstacle"`
	Output       Output       `toml:"output"`
}

// Simulation sizes the fields and holds the per-frame coefficients.
type Simulation struct {
	SimResolution int    `toml:"sim_resolution"`
	DyeResolution int    `toml:"dye_resolution"`
	Mode          string `toml:"mode"`
	Paused        bool   `toml:"paused"`
	fluid.Params
}

// Pointer configures mouse and touch input.
type Pointer struct {
	Radius      float32 `toml:"radius"`
	Strength    float32 `toml:"strength"`
	Color       string  `toml:"color"`
	RandomColor bool    `toml:"random_color"`
}

// Jet is one jet of the spells choreography.
type Jet struct {
	Color    string  `toml:"color"`
	Radius   float32 `toml:"radius"`
	Strength float32 `toml:"strength"`
	X        float32 `toml:"x"`
	Y        float32 `toml:"y"`
}

// Spin configures the spin choreography.
type Spin struct {
	Color    string  `toml:"color"`
	Radius   float32 `toml:"radius"`
	Strength float32 `toml:"strength"`
	Speed    float32 `toml:"speed"`
	Offset   float32 `toml:"offset"`
	X        float32 `toml:"x"`
	Y        float32 `toml:"y"`
}

// Choreography selects and configures the scripted jets.
type Choreography struct {
	Kind  string `toml:"kind"`
	Left  Jet    `toml:"left"`
	Right Jet    `toml:"right"`
	Spin  Spin   `toml:"spin"`
}

// Obstacle places a solid shape. Radius, X and Y are fractions of the
// smaller canvas side, the width and the height.
type Obstacle struct {
	Enabled bool    `toml:"enabled"`
	Circle  bool    `toml:"circle"`
	Radius  float32 `toml:"radius"`
	X       float32 `toml:"x"`
	Y       float32 `toml:"y"`
	Color   string  `toml:"color"`
}

// Output controls headless runs.
type Output struct {
	Width  int     `toml:"width"`
	Height int     `toml:"height"`
	Frames int     `toml:"frames"`
	FPS    float64 `toml:"fps"`
	Path   string  `toml:"path"`
	Every  int     `toml:"every"`
	Field  string  `toml:"field"`
	Scale  float64 `toml:"scale"`
}

// Default returns the preset the web front-end starts with.
func Default() File {
	return File{
		Simulation: Simulation{
			SimResolution: int(fluid.Four),
			DyeResolution: int(fluid.Two),
			Mode:          fluid.Dye.String(),
			Params:        fluid.DefaultParams(),
		},
		Pointer: Pointer{
			Radius:      0.2,
			Strength:    10,
			Color:       "#2fa1d6",
			RandomColor: true,
		},
		Choreography: Choreography{
			Kind:  choreo.None.String(),
			Left:  Jet{Color: "#d63d2f", Radius: 0.2, Strength: 10, X: 0.05},
			Right: Jet{Color: "#2fa1d6", Radius: 0.2, Strength: 10, X: 0.05},
			Spin:  Spin{Color: "#d63d2f", Radius: 0.2, Strength: 10, Speed: 0.2, Offset: math.Pi, Y: 0.05},
		},
		Obstacle: Obstacle{
			Circle: true,
			Radius: 0.1,
			X:      0.5,
			Y:      0.5,
			Color:  "#000000",
		},
		Output: Output{
			Width:  512,
			Height: 512,
			Frames: 120,
			FPS:    60,
			Path:   "fluid.png",
			Field:  fluid.Dye.String(),
			Scale:  1,
		},
	}
}

// Load reads a preset file over Default.
func Load(path string) (File, error) {
	f := Default()
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return File{}, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := undecoded(md); err != nil {
		return File{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return f, f.Validate()
}

// Decode reads a preset from r over Default.
func Decode(r io.Reader) (File, error) {
	f := Default()
	md, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return File{}, fmt.Errorf("config: %w", err)
	}
	if err := undecoded(md); err != nil {
		return File{}, fmt.Errorf("config: %w", err)
	}
	return f, f.Validate()
}

func undecoded(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(names, ", "))
}

// Encode writes f as TOML.
func (f File) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(f)
}

// Validate checks the values that cannot be clamped silently.
func (f File) Validate() error {
	var errs []error
	if _, _, err := f.Resolutions(); err != nil {
		errs = append(errs, err)
	}
	if _, err := fluid.ParseMode(f.Simulation.Mode); err != nil {
		errs = append(errs, err)
	}
	if _, err := fluid.ParseMode(f.Output.Field); err != nil {
		errs = append(errs, fmt.Errorf("output field: %w", err))
	}
	if _, err := choreo.ParseKind(f.Choreography.Kind); err != nil {
		errs = append(errs, err)
	}
	colors := []struct{ name, value string }{
		{"pointer", f.Pointer.Color},
		{"left jet", f.Choreography.Left.Color},
		{"right jet", f.Choreography.Right.Color},
		{"spin", f.Choreography.Spin.Color},
		{"obstacle", f.Obstacle.Color},
	}
	for _, c := range colors {
		if _, err := ParseColor(c.value); err != nil {
			errs = append(errs, fmt.Errorf("%s color: %w", c.name, err))
		}
	}
	if f.Output.Width <= 0 || f.Output.Height <= 0 {
		errs = append(errs, fmt.Errorf("config: output size %dx%d", f.Output.Width, f.Output.Height))
	}
	if f.Output.Frames < 0 || f.Output.Every < 0 {
		errs = append(errs, errors.New("config: negative frame count"))
	}
	if f.Output.FPS <= 0 {
		errs = append(errs, fmt.Errorf("config: fps %v", f.Output.FPS))
	}
	if f.Output.Scale <= 0 {
		errs = append(errs, fmt.Errorf("config: output scale %v", f.Output.Scale))
	}
	return errors.Join(errs...)
}

// Resolutions returns the sim and dye downscale factors.
func (f File) Resolutions() (sim, dye fluid.Resolution, err error) {
	sim, dye = fluid.Resolution(f.Simulation.SimResolution), fluid.Resolution(f.Simulation.DyeResolution)
	if !sim.Valid() || !dye.Valid() {
		return 0, 0, fmt.Errorf("%w: sim=%d dye=%d", fluid.ErrInvalidResolution, sim, dye)
	}
	return sim, dye, nil
}

// Frame builds the simulator input for time t.
func (f File) Frame(t float64) fluid.Frame {
	mode, _ := fluid.ParseMode(f.Simulation.Mode)
	return f.Simulation.Params.Frame(t, mode, f.Simulation.Paused)
}

// Spells returns the spells choreography.
func (c Choreography) Spells() choreo.Spells {
	return choreo.Spells{Left: c.Left.jet(), Right: c.Right.jet()}
}

func (j Jet) jet() choreo.Jet {
	return choreo.Jet{
		Color:    MustColor(j.Color),
		Radius:   j.Radius,
		Strength: j.Strength,
		XOffset:  j.X,
		YOffset:  j.Y,
	}
}

// Spinner returns the spin choreography.
func (c Choreography) Spinner() choreo.Spin {
	s := c.Spin
	return choreo.Spin{
		Color:    MustColor(s.Color),
		Radius:   s.Radius,
		Strength: s.Strength,
		Speed:    s.Speed,
		Offset:   s.Offset,
		X:        s.X,
		Y:        s.Y,
	}
}

// ParseColor parses "#rgb", "#rrggbb" or the same forms with alpha. The
// alpha channel is ignored.
func ParseColor(s string) ([3]float32, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(h) {
	case 3, 4, 6, 8:
	default:
		return [3]float32{}, fmt.Errorf("config: bad color %q", s)
	}
	for _, r := range h {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return [3]float32{}, fmt.Errorf("config: bad color %q", s)
		}
	}
	c := gg.Hex(h)
	return [3]float32{float32(c.R), float32(c.G), float32(c.B)}, nil
}

// MustColor is ParseColor for values already checked by Validate. Bad
// colors come out black.
func MustColor(s string) [3]float32 {
	c, _ := ParseColor(s)
	return c
}
