package software

import (
	"github.com/gogpu/fluid/gpucore"
	"github.com/gogpu/fluid/internal/half"
)

// texture is RGBA texel storage with row 0 at the bottom, as in GL.
type texture struct {
	label  string
	width  int
	height int
	format gpucore.PixelFormat
	filter gpucore.FilterMode
	texels []float32
}

func newTexture(label string, width, height int, format gpucore.PixelFormat, filter gpucore.FilterMode) *texture {
	return &texture{
		label:  label,
		width:  width,
		height: height,
		format: format,
		filter: filter,
		texels: make([]float32, width*height*4),
	}
}

// fetch returns the texel at (x, y) with clamp-to-edge addressing.
func (t *texture) fetch(x, y int) vec4 {
	x = min(max(x, 0), t.width-1)
	y = min(max(y, 0), t.height-1)
	i := (y*t.width + x) * 4
	return vec4{t.texels[i], t.texels[i+1], t.texels[i+2], t.texels[i+3]}
}

// store writes a texel, rounding to the storage precision.
func (t *texture) store(x, y int, v vec4) {
	i := (y*t.width + x) * 4
	if t.format == gpucore.FormatRGBA16F {
		for c := range v {
			v[c] = half.Quantize(v[c])
		}
	}
	copy(t.texels[i:i+4], v[:])
}

// sample is texture2D with normalized coordinates.
func (t *texture) sample(uv vec2) vec4 {
	s := uv[0] * float32(t.width)
	r := uv[1] * float32(t.height)
	if t.filter == gpucore.FilterNearest {
		return t.fetch(int(floor(s)), int(floor(r)))
	}

	s -= 0.5
	r -= 0.5
	x0, y0 := floor(s), floor(r)
	fx, fy := s-x0, r-y0
	ix, iy := int(x0), int(y0)
	bottom := mix(t.fetch(ix, iy), t.fetch(ix+1, iy), fx)
	top := mix(t.fetch(ix, iy+1), t.fetch(ix+1, iy+1), fx)
	return mix(bottom, top, fy)
}

// bilerp interpolates between the four nearest texel centers in code, the
// way shaders do when the format cannot be filtered by the sampler.
func bilerp(t *texture, uv, size vec2) vec4 {
	s := uv[0]*size[0] - 0.5
	r := uv[1]*size[1] - 0.5
	ix, iy := floor(s), floor(r)
	fx, fy := s-ix, r-iy
	at := func(dx, dy float32) vec4 {
		return t.sample(vec2{(ix + dx) / size[0], (iy + dy) / size[1]})
	}
	return mix(
		mix(at(0.5, 0.5), at(1.5, 0.5), fx),
		mix(at(0.5, 1.5), at(1.5, 1.5), fx),
		fy,
	)
}
