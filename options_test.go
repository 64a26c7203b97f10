package fluid

import (
	"testing"

	"github.com/gogpu/fluid/gpucore"
)

func TestOptions(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want options
	}{
		{"defaults", nil, options{obstacles: true, iterationFloor: DefaultIterations}},
		{"no obstacles", []Option{WithObstacles(false)}, options{iterationFloor: DefaultIterations}},
		{"floor", []Option{WithPressureIterationFloor(35)}, options{obstacles: true, iterationFloor: 35}},
		{"floor clamped", []Option{WithPressureIterationFloor(-4)}, options{obstacles: true, iterationFloor: 1}},
		{"format", []Option{WithFormat(gpucore.FormatRGBA16F)}, options{obstacles: true, iterationFloor: DefaultIterations, format: gpucore.FormatRGBA16F}},
		{"last wins", []Option{WithObstacles(false), WithObstacles(true)}, options{obstacles: true, iterationFloor: DefaultIterations}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaultOptions()
			for _, opt := range tt.opts {
				opt(&o)
			}
			if o != tt.want {
				t.Errorf("options = %+v, want %+v", o, tt.want)
			}
		})
	}
}
