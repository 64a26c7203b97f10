package pipeline

import (
	"errors"
	"fmt"

	"github.com/gogpu/fluid/gpucore"
)

var errInvalidSize = errors.New("invalid size")

// Texture2D is a texture attached as the only color attachment of its own
// framebuffer. Size, format and filter are fixed at creation.
type Texture2D struct {
	dev    gpucore.Device
	rt     gpucore.RenderTarget
	width  int
	height int
	format gpucore.PixelFormat
	filter gpucore.FilterMode
}

// NewTexture2D allocates a zero-filled, clamp-to-edge render target.
func NewTexture2D(dev gpucore.Device, label string, width, height int, format gpucore.PixelFormat, filter gpucore.FilterMode) (*Texture2D, error) {
	if width <= 0 || height <= 0 {
		return nil, &gpucore.ResourceError{Resource: "texture " + label, Width: width, Height: height, Err: errInvalidSize}
	}
	rt, err := dev.CreateRenderTarget(gpucore.TextureDescriptor{
		Label:  label,
		Width:  width,
		Height: height,
		Format: format,
		Filter: filter,
	})
	if err != nil {
		var re *gpucore.ResourceError
		if errors.As(err, &re) {
			return nil, err
		}
		return nil, &gpucore.ResourceError{Resource: "texture " + label, Width: width, Height: height, Err: err}
	}
	return &Texture2D{
		dev:    dev,
		rt:     rt,
		width:  width,
		height: height,
		format: format,
		filter: filter,
	}, nil
}

// Width returns the width in texels.
func (t *Texture2D) Width() int { return t.width }

// Height returns the height in texels.
func (t *Texture2D) Height() int { return t.height }

// Size returns the size as floats, the form resolution uniforms take.
func (t *Texture2D) Size() (float32, float32) { return float32(t.width), float32(t.height) }

// Format returns the texel format.
func (t *Texture2D) Format() gpucore.PixelFormat { return t.format }

// Filter returns the sampling filter.
func (t *Texture2D) Filter() gpucore.FilterMode { return t.filter }

// Texture returns the device texture handle.
func (t *Texture2D) Texture() gpucore.TextureID { return t.rt.Texture }

// Framebuffer returns the device framebuffer handle.
func (t *Texture2D) Framebuffer() gpucore.FramebufferID { return t.rt.Framebuffer }

// BindToUnit binds the texture to a texture unit and returns the unit for
// assignment to a sampler uniform.
func (t *Texture2D) BindToUnit(unit int) (int32, error) {
	if unit < 0 || unit >= gpucore.MaxTextureUnits {
		return 0, fmt.Errorf("%w: %d", gpucore.ErrInvalidTextureUnit, unit)
	}
	if err := t.dev.BindTexture(unit, t.rt.Texture); err != nil {
		return 0, err
	}
	return int32(unit), nil
}

// Destroy releases the texture and its framebuffer.
func (t *Texture2D) Destroy() {
	if t.rt.Texture == gpucore.InvalidID {
		return
	}
	t.dev.DestroyRenderTarget(t.rt)
	t.rt = gpucore.RenderTarget{}
}
