package gpucore

import (
	"errors"
	"testing"
)

func TestNegotiate(t *testing.T) {
	tests := []struct {
		name       string
		caps       Capabilities
		wantFormat PixelFormat
		wantFilter FilterMode
		wantManual bool
	}{
		{
			name:       "float linear",
			caps:       Capabilities{FloatRenderable: true, FloatLinear: true, HalfFloatRenderable: true},
			wantFormat: FormatRGBA32F,
			wantFilter: FilterLinear,
		},
		{
			name:       "float without linear",
			caps:       Capabilities{FloatRenderable: true},
			wantFormat: FormatRGBA32F,
			wantFilter: FilterNearest,
			wantManual: true,
		},
		{
			name:       "half only",
			caps:       Capabilities{HalfFloatRenderable: true, HalfFloatLinear: true, FloatLinear: true},
			wantFormat: FormatRGBA16F,
			wantFilter: FilterLinear,
		},
		{
			name:       "half without linear",
			caps:       Capabilities{HalfFloatRenderable: true, FloatLinear: true},
			wantFormat: FormatRGBA16F,
			wantFilter: FilterNearest,
			wantManual: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Negotiate(tt.caps)
			if err != nil {
				t.Fatalf("Negotiate() error = %v", err)
			}
			if cfg.Format != tt.wantFormat {
				t.Errorf("Format = %v, want %v", cfg.Format, tt.wantFormat)
			}
			if cfg.Filter != tt.wantFilter {
				t.Errorf("Filter = %v, want %v", cfg.Filter, tt.wantFilter)
			}
			if cfg.ManualFiltering != tt.wantManual {
				t.Errorf("ManualFiltering = %v, want %v", cfg.ManualFiltering, tt.wantManual)
			}
			if cfg.TextureUnits != MaxTextureUnits {
				t.Errorf("TextureUnits = %d, want %d", cfg.TextureUnits, MaxTextureUnits)
			}
		})
	}
}

func TestNegotiateUnavailable(t *testing.T) {
	_, err := Negotiate(Capabilities{FloatLinear: true})
	if !errors.Is(err, ErrContextUnavailable) {
		t.Fatalf("Negotiate() error = %v, want ErrContextUnavailable", err)
	}
}

func TestNegotiateFormatPreference(t *testing.T) {
	caps := Capabilities{FloatRenderable: true, HalfFloatRenderable: true, HalfFloatLinear: true, MaxTextureUnits: 16}
	cfg, err := NegotiateFormat(caps, FormatRGBA16F)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Format != FormatRGBA16F || cfg.Filter != FilterLinear {
		t.Errorf("got %v, want rgba16f/linear", cfg)
	}
	if cfg.TextureUnits != 16 {
		t.Errorf("TextureUnits = %d, want 16", cfg.TextureUnits)
	}

	// Unsupported preference falls back.
	cfg, err = NegotiateFormat(Capabilities{FloatRenderable: true}, FormatRGBA16F)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Format != FormatRGBA32F {
		t.Errorf("Format = %v, want rgba32f", cfg.Format)
	}
}

func TestErrorsUnwrap(t *testing.T) {
	base := errors.New("out of memory")
	err := error(&ResourceError{Resource: "texture", Width: 4, Height: 4, Err: base})
	if !errors.Is(err, base) {
		t.Error("ResourceError does not unwrap to its cause")
	}

	var ce *ShaderCompileError
	err = &ShaderCompileError{Label: "copy", Stage: StageFragment, Log: "syntax error"}
	if !errors.As(err, &ce) || ce.Log != "syntax error" {
		t.Errorf("errors.As(ShaderCompileError) failed: %v", err)
	}
}

func TestUniformLocationValid(t *testing.T) {
	if NoLocation.Valid() {
		t.Error("NoLocation.Valid() = true")
	}
	if !UniformLocation(0).Valid() {
		t.Error("UniformLocation(0).Valid() = false")
	}
}
