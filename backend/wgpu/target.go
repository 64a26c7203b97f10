package wgpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/fluid/gpucore"
	"github.com/gogpu/fluid/internal/half"
)

// copyPitchAlignment is the row alignment texture-to-buffer copies require.
const copyPitchAlignment = 256

// target is a texture usable both as color attachment and sampled input.
type target struct {
	label   string
	width   int
	height  int
	format  gputypes.TextureFormat
	texture hal.Texture
	view    hal.TextureView
}

func textureFormat(f gpucore.PixelFormat) (gputypes.TextureFormat, bool) {
	switch f {
	case gpucore.FormatRGBA32F:
		return gputypes.TextureFormatRGBA32Float, true
	case gpucore.FormatRGBA16F:
		return gputypes.TextureFormatRGBA16Float, true
	}
	return 0, false
}

func bytesPerTexel(f gputypes.TextureFormat) int {
	switch f {
	case gputypes.TextureFormatRGBA32Float:
		return 16
	case gputypes.TextureFormatRGBA16Float:
		return 8
	default:
		return 4
	}
}

func newTarget(device hal.Device, label string, width, height int, format gputypes.TextureFormat) (*target, error) {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1}, //nolint:gosec // bounded by maxTextureSize
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage: gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding |
			gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: label + "_view"})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("create texture view: %w", err)
	}
	return &target{label: label, width: width, height: height, format: format, texture: tex, view: view}, nil
}

func (t *target) destroy(device hal.Device) {
	if t.view != nil {
		device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.texture != nil {
		device.DestroyTexture(t.texture)
		t.texture = nil
	}
}

// encodeReadback records a copy of the whole texture into a fresh staging
// buffer and returns the buffer and its padded row pitch.
func (t *target) encodeReadback(device hal.Device, encoder hal.CommandEncoder) (hal.Buffer, uint32, error) {
	w, h := uint32(t.width), uint32(t.height) //nolint:gosec // bounded by maxTextureSize
	bytesPerRow := w * uint32(bytesPerTexel(t.format))
	pitch := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)

	staging, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: t.label + "_staging",
		Size:  uint64(pitch) * uint64(h),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("create staging buffer: %w", err)
	}

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.texture,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(t.texture, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: pitch, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: t.texture, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.texture,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
	return staging, pitch, nil
}

// decodeRows converts a rectangle of padded readback rows to RGBA float32.
// Row 0 of the texture is the bottom row in GL terms.
func decodeRows(format gputypes.TextureFormat, data []byte, pitch, x, y, width, height int) []float32 {
	bpt := bytesPerTexel(format)
	out := make([]float32, 0, width*height*4)
	for row := y; row < y+height; row++ {
		line := data[row*pitch+x*bpt:]
		for i := range width * 4 {
			switch format {
			case gputypes.TextureFormatRGBA32Float:
				out = append(out, math.Float32frombits(binary.LittleEndian.Uint32(line[i*4:])))
			case gputypes.TextureFormatRGBA16Float:
				out = append(out, half.ToFloat32(binary.LittleEndian.Uint16(line[i*2:])))
			default:
				out = append(out, float32(line[i])/255)
			}
		}
	}
	return out
}
