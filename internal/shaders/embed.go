package shaders

import _ "embed"

// WGSL renditions. Each fragment source is appended to the common vertex
// stage before preprocessing.

//go:embed wgsl/common.wgsl
var wgslCommon string

//go:embed wgsl/advection.wgsl
var advectionWGSL string

//go:embed wgsl/copy.wgsl
var copyWGSL string

//go:embed wgsl/curl.wgsl
var curlWGSL string

//go:embed wgsl/divergence.wgsl
var divergenceWGSL string

//go:embed wgsl/gradient_subtract.wgsl
var gradientSubtractWGSL string

//go:embed wgsl/jacobi.wgsl
var jacobiWGSL string

//go:embed wgsl/splat.wgsl
var splatWGSL string

//go:embed wgsl/vorticity.wgsl
var vorticityWGSL string

//go:embed wgsl/obstacle.wgsl
var obstacleWGSL string

//go:embed wgsl/obstacle_coloring.wgsl
var obstacleColoringWGSL string

var wgslFragments = map[Pass]string{
	Advection:        advectionWGSL,
	Copy:             copyWGSL,
	Curl:             curlWGSL,
	Divergence:       divergenceWGSL,
	GradientSubtract: gradientSubtractWGSL,
	Jacobi:           jacobiWGSL,
	Splat:            splatWGSL,
	Vorticity:        vorticityWGSL,
	Obstacle:         obstacleWGSL,
	ObstacleColoring: obstacleColoringWGSL,
}

// OpenCL C renditions, one kernel per pass named after the pass with
// dashes replaced by underscores.

//go:embed opencl/common.cl
var openclCommon string

//go:embed opencl/advection.cl
var advectionCL string

//go:embed opencl/copy.cl
var copyCL string

//go:embed opencl/curl.cl
var curlCL string

//go:embed opencl/divergence.cl
var divergenceCL string

//go:embed opencl/gradient_subtract.cl
var gradientSubtractCL string

//go:embed opencl/jacobi.cl
var jacobiCL string

//go:embed opencl/splat.cl
var splatCL string

//go:embed opencl/vorticity.cl
var vorticityCL string

//go:embed opencl/obstacle.cl
var obstacleCL string

//go:embed opencl/obstacle_coloring.cl
var obstacleColoringCL string

var openclKernels = map[Pass]string{
	Advection:        advectionCL,
	Copy:             copyCL,
	Curl:             curlCL,
	Divergence:       divergenceCL,
	GradientSubtract: gradientSubtractCL,
	Jacobi:           jacobiCL,
	Splat:            splatCL,
	Vorticity:        vorticityCL,
	Obstacle:         obstacleCL,
	ObstacleColoring: obstacleColoringCL,
}

// KernelName returns the OpenCL kernel name of a pass.
func KernelName(p Pass) string {
	b := []byte(p)
	for i, c := range b {
		if c == '-' {
			b[i] = '_'
		}
	}
	return string(b)
}
