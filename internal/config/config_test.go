package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/fluid"
	"github.com/gogpu/fluid/choreo"
)

func sameColor(a, b [3]float32) bool {
	for i := range a {
		if d := a[i] - b[i]; d > 1e-6 || d < -1e-6 {
			return false
		}
	}
	return true
}

func TestDefaultIsValid(t *testing.T) {
	f := Default()
	if err := f.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	sim, dye, err := f.Resolutions()
	if err != nil || sim != fluid.Four || dye != fluid.Two {
		t.Errorf("Resolutions = %v, %v, %v", sim, dye, err)
	}
	if f.Simulation.Params != fluid.DefaultParams() {
		t.Errorf("Params = %+v", f.Simulation.Params)
	}
}

func TestDecodeOverridesDefaults(t *testing.T) {
	const preset = `
[simulation]
sim_resolution = 8
mode = "pressure"
curl = 0.5
iterations = 40

[pointer]
color = "#ff0000"
random_color = false

[choreography]
kind = "spells"

[choreography.left]
strength = 2.5
y = 0.25

[output]
frames = 10
path = "out/frame.jpg"
`
	f, err := Decode(strings.NewReader(preset))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if f.Simulation.SimResolution != 8 || f.Simulation.DyeResolution != 2 {
		t.Errorf("resolutions = %d/%d", f.Simulation.SimResolution, f.Simulation.DyeResolution)
	}
	if f.Simulation.Curl != 0.5 || f.Simulation.Iterations != 40 || f.Simulation.Viscosity != 0.5 {
		t.Errorf("params = %+v", f.Simulation.Params)
	}
	if f.Pointer.RandomColor || f.Pointer.Radius != 0.2 {
		t.Errorf("pointer = %+v", f.Pointer)
	}
	if f.Output.Frames != 10 || f.Output.Width != 512 {
		t.Errorf("output = %+v", f.Output)
	}

	frame := f.Frame(1.5)
	if frame.Mode != fluid.Pressure || frame.Time != 1.5 || frame.Iterations != 40 {
		t.Errorf("Frame = %+v", frame)
	}

	spells := f.Choreography.Spells()
	if spells.Left.Strength != 2.5 || spells.Left.YOffset != 0.25 || spells.Left.XOffset != 0.05 {
		t.Errorf("left jet = %+v", spells.Left)
	}
	if !sameColor(spells.Right.Color, choreo.Blue) {
		t.Errorf("right color = %v, want %v", spells.Right.Color, choreo.Blue)
	}
}

func TestDecodeUnknownKey(t *testing.T) {
	_, err := Decode(strings.NewReader("[simulation]\nvorticity = 1.0\n"))
	if !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("error = %v, want ErrUnknownKey", err)
	}
	if !strings.Contains(err.Error(), "simulation.vorticity") {
		t.Errorf("error %q does not name the key", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*File)
		want   string
	}{
		{"resolution", func(f *File) { f.Simulation.SimResolution = 3 }, "invalid resolution"},
		{"mode", func(f *File) { f.Simulation.Mode = "vorticity" }, "unknown mode"},
		{"field", func(f *File) { f.Output.Field = "curl" }, "output field"},
		{"kind", func(f *File) { f.Choreography.Kind = "wave" }, "unknown choreography"},
		{"color", func(f *File) { f.Obstacle.Color = "#12345" }, "obstacle color"},
		{"size", func(f *File) { f.Output.Width = 0 }, "output size"},
		{"fps", func(f *File) { f.Output.FPS = 0 }, "fps"},
		{"scale", func(f *File) { f.Output.Scale = -1 }, "scale"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Default()
			tt.modify(&f)
			err := f.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    [3]float32
		wantErr bool
	}{
		{"#ffffff", [3]float32{1, 1, 1}, false},
		{"000", [3]float32{}, false},
		{"#f00f", [3]float32{1, 0, 0}, false},
		{"#00ff0080", [3]float32{0, 1, 0}, false},
		{"#gg0000", [3]float32{}, true},
		{"", [3]float32{}, true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if c := MustColor("#2fa1d6"); !sameColor(c, choreo.Blue) {
		t.Errorf("MustColor(#2fa1d6) = %v, want %v", c, choreo.Blue)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	f := Default()
	f.Choreography.Kind = "spin"
	f.Choreography.Spin.Speed = -1.5
	f.Obstacle.Enabled = true

	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "preset.toml")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != f {
		t.Errorf("Load = %+v\nwant %+v", got, f)
	}
	if s := got.Choreography.Spinner(); s.Speed != -1.5 || !sameColor(s.Color, choreo.Red) {
		t.Errorf("Spinner = %+v", s)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("Load of a missing file succeeded")
	}
}
