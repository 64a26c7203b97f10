package pipeline

import "github.com/gogpu/fluid/gpucore"

// Blit draws the full-screen quad with the bound program into target, or
// into the visible surface when target is nil. The viewport is set to the
// target size; clear fills it with opaque black first.
func Blit(dev gpucore.Device, target *Texture2D, clear bool) error {
	if target == nil {
		w, h := dev.DrawingBufferSize()
		dev.BindFramebuffer(gpucore.DefaultFramebuffer)
		dev.Viewport(w, h)
	} else {
		dev.BindFramebuffer(target.Framebuffer())
		dev.Viewport(target.width, target.height)
	}
	if clear {
		dev.Clear(0, 0, 0, 1)
	}
	return dev.DrawQuad()
}
