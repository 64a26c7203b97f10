package wgpu

import (
	"github.com/gogpu/fluid/backend"
	"github.com/gogpu/fluid/gpucore"
)

func init() {
	backend.Register(backend.BackendWGPU, func(opts backend.Options) (gpucore.Device, error) {
		return Open(opts.Width, opts.Height)
	})
}
