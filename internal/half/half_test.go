package half

import (
	"math"
	"testing"
)

func TestQuantize(t *testing.T) {
	tests := []struct {
		in, want float32
	}{
		{0, 0},
		{1, 1},
		{-2.5, -2.5},
		{65504, 65504},
		{1e6, float32(math.Inf(1))},
		{6.103515625e-05, 6.103515625e-05}, // smallest normal
	}
	for _, tt := range tests {
		if got := Quantize(tt.in); got != tt.want {
			t.Errorf("Quantize(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if got := Quantize(float32(math.NaN())); !math.IsNaN(float64(got)) {
		t.Errorf("Quantize(NaN) = %v", got)
	}
}

func TestEncoding(t *testing.T) {
	tests := []struct {
		in   float32
		bits uint16
	}{
		{0, 0x0000},
		{1, 0x3c00},
		{-2, 0xc000},
		{0.5, 0x3800},
		{65504, 0x7bff},
		{float32(math.Inf(-1)), 0xfc00},
		{5.960464477539063e-08, 0x0001}, // smallest subnormal
	}
	for _, tt := range tests {
		if got := FromFloat32(tt.in); got != tt.bits {
			t.Errorf("FromFloat32(%v) = %#04x, want %#04x", tt.in, got, tt.bits)
		}
		if got := ToFloat32(tt.bits); got != tt.in {
			t.Errorf("ToFloat32(%#04x) = %v, want %v", tt.bits, got, tt.in)
		}
	}
}
