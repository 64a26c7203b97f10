package fluid

import (
	"errors"
	"testing"

	"github.com/gogpu/fluid/gpucore"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	want := Params{Viscosity: 0.5, Dissipation: 2, Curl: 0.25, Pressure: 0.8, Iterations: 20}
	if p != want {
		t.Errorf("DefaultParams() = %+v, want %+v", p, want)
	}

	f := p.Frame(1.5, Pressure, true)
	if !f.Paused || f.Time != 1.5 || f.Mode != Pressure || f.Curl != 0.25 || f.Iterations != 20 {
		t.Errorf("Frame() = %+v", f)
	}
}

func TestSuggestedIterations(t *testing.T) {
	tests := []struct {
		r    Resolution
		want int
	}{
		{One, 50},
		{Two, 40},
		{Four, 30},
		{Eight, 20},
		{Sixteen, 20},
	}
	for _, tt := range tests {
		if got := SuggestedIterations(tt.r); got != tt.want {
			t.Errorf("SuggestedIterations(%v) = %d, want %d", tt.r, got, tt.want)
		}
	}
}

func TestRenderError(t *testing.T) {
	if renderError("draw", nil) != nil {
		t.Error("renderError(nil) != nil")
	}
	err := renderError("draw", &ResourceError{Resource: "texture", Err: gpucore.ErrDeviceLost})

	var re *RenderError
	if !errors.As(err, &re) || re.Op != "draw" {
		t.Fatalf("errors.As(RenderError) failed: %v", err)
	}
	var res *ResourceError
	if !errors.As(err, &res) {
		t.Error("errors.As did not reach *ResourceError")
	}
	if !errors.Is(err, gpucore.ErrDeviceLost) {
		t.Error("errors.Is did not reach ErrDeviceLost")
	}
	if err.Error() != "fluid: draw: gpucore: allocate texture: gpucore: device lost" {
		t.Errorf("Error() = %q", err.Error())
	}
}
