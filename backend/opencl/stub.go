//go:build !opencl

package opencl

import (
	"fmt"

	"github.com/gogpu/fluid/gpucore"
)

// Device is unavailable without the opencl build tag.
type Device struct {
	gpucore.Device
}

// Open reports that OpenCL support is not compiled in.
func Open(width, height int) (*Device, error) {
	return nil, fmt.Errorf("%w: OpenCL support is not enabled; rebuild with -tags opencl", gpucore.ErrContextUnavailable)
}
