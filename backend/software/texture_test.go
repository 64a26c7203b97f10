package software

import (
	"math"
	"testing"

	"github.com/gogpu/fluid/gpucore"
)

func ramp(filter gpucore.FilterMode) *texture {
	t := newTexture("ramp", 4, 2, gpucore.FormatRGBA32F, filter)
	for y := range 2 {
		for x := range 4 {
			t.store(x, y, vec4{float32(x), float32(y), 0, 1})
		}
	}
	return t
}

func TestTexture_SampleNearest(t *testing.T) {
	tex := ramp(gpucore.FilterNearest)
	tests := []struct {
		uv   vec2
		want vec4
	}{
		{vec2{0.125, 0.25}, vec4{0, 0, 0, 1}},
		{vec2{0.3, 0.75}, vec4{1, 1, 0, 1}},
		{vec2{-1, -1}, vec4{0, 0, 0, 1}},
		{vec2{2, 2}, vec4{3, 1, 0, 1}},
	}
	for _, tt := range tests {
		if got := tex.sample(tt.uv); got != tt.want {
			t.Errorf("sample(%v) = %v, want %v", tt.uv, got, tt.want)
		}
	}
}

func TestTexture_SampleLinear(t *testing.T) {
	tex := ramp(gpucore.FilterLinear)
	tests := []struct {
		uv   vec2
		want vec4
	}{
		{vec2{0.125, 0.25}, vec4{0, 0, 0, 1}},   // texel center
		{vec2{0.25, 0.25}, vec4{0.5, 0, 0, 1}},  // between x=0 and x=1
		{vec2{0.25, 0.5}, vec4{0.5, 0.5, 0, 1}}, // between rows
		{vec2{0, 0}, vec4{0, 0, 0, 1}},          // clamped edge
	}
	for _, tt := range tests {
		got := tex.sample(tt.uv)
		for c := range got {
			if math.Abs(float64(got[c]-tt.want[c])) > 1e-6 {
				t.Errorf("sample(%v) = %v, want %v", tt.uv, got, tt.want)
				break
			}
		}
	}
}

func TestBilerpMatchesLinear(t *testing.T) {
	nearest := ramp(gpucore.FilterNearest)
	linear := ramp(gpucore.FilterLinear)
	size := vec2{4, 2}
	for _, uv := range []vec2{{0.1, 0.2}, {0.33, 0.6}, {0.5, 0.5}, {0.9, 0.95}} {
		a := bilerp(nearest, uv, size)
		b := linear.sample(uv)
		for c := range a {
			if math.Abs(float64(a[c]-b[c])) > 1e-5 {
				t.Errorf("bilerp(%v) = %v, linear = %v", uv, a, b)
				break
			}
		}
	}
}

