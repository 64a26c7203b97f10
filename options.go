package fluid

import "github.com/gogpu/fluid/gpucore"

// Option configures a Simulator during creation.
//
// Example:
//
//	sim, err := fluid.New(dev, fluid.Four, fluid.Two,
//	    fluid.WithObstacles(false),
//	    fluid.WithPressureIterationFloor(30),
//	)
type Option func(*options)

type options struct {
	obstacles      bool
	iterationFloor int
	format         gpucore.PixelFormat
}

func defaultOptions() options {
	return options{
		obstacles:      true,
		iterationFloor: DefaultIterations,
	}
}

// WithObstacles enables or disables the obstacle mask. Without it the
// obstacle programs are not compiled, the mask is not allocated and
// SetObstacle returns ErrObstaclesDisabled. Enabled by default.
func WithObstacles(enabled bool) Option {
	return func(o *options) {
		o.obstacles = enabled
	}
}

// WithPressureIterationFloor sets the minimum number of Jacobi iterations
// per frame. Values below 1 are raised to 1.
func WithPressureIterationFloor(n int) Option {
	return func(o *options) {
		o.iterationFloor = max(n, 1)
	}
}

// WithFormat requests a texel format. It is honored when the device can
// render to it; otherwise the negotiated default is used.
func WithFormat(f gpucore.PixelFormat) Option {
	return func(o *options) {
		o.format = f
	}
}
