package software

import (
	"github.com/gogpu/fluid/backend"
	"github.com/gogpu/fluid/gpucore"
)

func init() {
	backend.Register(backend.BackendSoftware, func(opts backend.Options) (gpucore.Device, error) {
		return New(opts.Width, opts.Height), nil
	})
}
