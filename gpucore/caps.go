package gpucore

import "fmt"

// Capabilities describes what a device can render to and sample from.
type Capabilities struct {
	// Dialect is the shading language the device compiles.
	Dialect Dialect

	// FloatRenderable reports RGBA32F color attachments.
	FloatRenderable bool

	// HalfFloatRenderable reports RGBA16F color attachments.
	HalfFloatRenderable bool

	// FloatLinear reports linear filtering of RGBA32F textures.
	FloatLinear bool

	// HalfFloatLinear reports linear filtering of RGBA16F textures.
	HalfFloatLinear bool

	// MaxTextureUnits is the number of combined texture units. Values
	// above MaxTextureUnits are clamped by Negotiate.
	MaxTextureUnits int
}

// Config is the resolved device configuration the pipeline runs with.
type Config struct {
	Dialect Dialect
	Format  PixelFormat
	Filter  FilterMode

	// ManualFiltering is set when the format cannot be filtered linearly;
	// shaders then interpolate in code from nearest samples.
	ManualFiltering bool

	TextureUnits int
}

// String returns a compact description for logs.
func (c Config) String() string {
	return fmt.Sprintf("%s/%s/%s units=%d manual=%t", c.Dialect, c.Format, c.Filter, c.TextureUnits, c.ManualFiltering)
}

// Negotiate resolves capabilities into a concrete configuration.
//
// Full float targets are preferred over half float. A device that can render
// to neither is unusable and ErrContextUnavailable is returned.
func Negotiate(caps Capabilities) (Config, error) {
	return NegotiateFormat(caps, 0)
}

// NegotiateFormat is Negotiate with a preferred format. A zero or
// unsupported preference falls back to the default order.
func NegotiateFormat(caps Capabilities, prefer PixelFormat) (Config, error) {
	cfg := Config{Dialect: caps.Dialect}

	switch {
	case prefer == FormatRGBA16F && caps.HalfFloatRenderable:
		cfg.Format = FormatRGBA16F
	case prefer == FormatRGBA32F && caps.FloatRenderable:
		cfg.Format = FormatRGBA32F
	case caps.FloatRenderable:
		cfg.Format = FormatRGBA32F
	case caps.HalfFloatRenderable:
		cfg.Format = FormatRGBA16F
	default:
		return Config{}, fmt.Errorf("%w: no renderable float texture format", ErrContextUnavailable)
	}

	linear := caps.FloatLinear
	if cfg.Format == FormatRGBA16F {
		linear = caps.HalfFloatLinear
	}
	if linear {
		cfg.Filter = FilterLinear
	} else {
		cfg.Filter = FilterNearest
		cfg.ManualFiltering = true
	}

	cfg.TextureUnits = caps.MaxTextureUnits
	if cfg.TextureUnits <= 0 || cfg.TextureUnits > MaxTextureUnits {
		cfg.TextureUnits = MaxTextureUnits
	}
	return cfg, nil
}
