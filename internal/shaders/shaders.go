// Package shaders holds the pass programs of the fluid pipeline in every
// dialect a device can consume, keyed by pass name.
//
// The GLSL ES 1.00 sources are the reference: the WGSL and OpenCL C
// renditions keep their algebra term for term. Optional features are
// selected with preprocessor defines (OBSTACLES, MANUAL_FILTERING). GLSL and
// OpenCL C handle the defines natively; WGSL sources go through [Preprocess].
package shaders

import (
	"fmt"
	"strings"

	"github.com/gogpu/fluid/gpucore"
)

// Pass names a program of the pipeline.
type Pass string

// Pass names.
const (
	Advection        Pass = "advection"
	Copy             Pass = "copy"
	Curl             Pass = "curl"
	Divergence       Pass = "divergence"
	GradientSubtract Pass = "gradient-subtract"
	Jacobi           Pass = "jacobi"
	Splat            Pass = "splat"
	Vorticity        Pass = "vorticity"
	Obstacle         Pass = "obstacle"
	ObstacleColoring Pass = "obstacle-coloring"
)

// Passes lists every fragment pass in a stable order.
var Passes = []Pass{
	Advection, Copy, Curl, Divergence, GradientSubtract,
	Jacobi, Splat, Vorticity, Obstacle, ObstacleColoring,
}

// Uniform names shared between Go code and the shader text.
const (
	UDissipation         = "u_dissipation"
	UDeltaTime           = "u_delta_time"
	UResolution          = "u_resolution"
	UVelocity            = "u_velocity"
	UQuantity            = "u_quantity"
	UQuantitySize        = "u_quantity_size"
	UFactor              = "u_factor"
	UOffset              = "u_offset"
	UTexture             = "u_texture"
	URHalfTexelSize      = "u_r_half_texel_size"
	UPressure            = "u_pressure"
	UAlpha               = "u_alpha"
	URBeta               = "u_r_beta"
	UX                   = "u_x"
	UB                   = "u_b"
	UScaledRadius        = "u_scaled_radius"
	UPosition            = "u_position"
	UColor               = "u_color"
	UCurlScale           = "u_curl_scale"
	UCurl                = "u_curl"
	UObstacles           = "u_obstacles"
	UScaledRadiusSquared = "u_scaled_radius_squared"
	UIsCircle            = "u_is_circle"
)

// Defines.
const (
	DefineObstacles       = "OBSTACLES"
	DefineManualFiltering = "MANUAL_FILTERING"
)

// Source returns the vertex and fragment source of a pass in the given
// dialect with the defines applied.
func Source(d gpucore.Dialect, p Pass, defines ...string) (vertex, fragment string, err error) {
	switch d {
	case gpucore.DialectGLSL100, gpucore.DialectGLSLKernel:
		frag, ok := glslFragments[p]
		if !ok {
			return "", "", fmt.Errorf("shaders: no glsl source for pass %q", p)
		}
		return VertexGLSL, definePrefix(defines) + frag, nil

	case gpucore.DialectWGSL:
		frag, ok := wgslFragments[p]
		if !ok {
			return "", "", fmt.Errorf("shaders: no wgsl source for pass %q", p)
		}
		src := Preprocess(wgslCommon+frag, defines)
		return src, src, nil

	case gpucore.DialectOpenCLC:
		kern, ok := openclKernels[p]
		if !ok {
			return "", "", fmt.Errorf("shaders: no opencl source for pass %q", p)
		}
		return "", definePrefix(defines) + openclCommon + kern, nil

	default:
		return "", "", fmt.Errorf("shaders: unsupported dialect %v", d)
	}
}

func definePrefix(defines []string) string {
	if len(defines) == 0 {
		return ""
	}
	var b strings.Builder
	for _, d := range defines {
		b.WriteString("#define ")
		b.WriteString(d)
		b.WriteByte('\n')
	}
	return b.String()
}

// Preprocess resolves #ifdef, #ifndef, #else and #endif lines against the
// given defines. Directive lines are dropped; nesting is supported.
func Preprocess(src string, defines []string) string {
	defined := make(map[string]bool, len(defines))
	for _, d := range defines {
		defined[d] = true
	}

	var (
		out   strings.Builder
		stack []bool // active state of enclosing blocks
	)
	active := true
	for _, line := range strings.SplitAfter(src, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#ifdef "), strings.HasPrefix(trimmed, "#ifndef "):
			fields := strings.Fields(trimmed)
			cond := len(fields) > 1 && defined[fields[1]]
			if fields[0] == "#ifndef" {
				cond = !cond
			}
			stack = append(stack, active)
			active = active && cond
		case trimmed == "#else":
			if len(stack) > 0 {
				active = stack[len(stack)-1] && !active
			}
		case trimmed == "#endif":
			if len(stack) > 0 {
				active = stack[len(stack)-1]
				stack = stack[:len(stack)-1]
			}
		default:
			if active {
				out.WriteString(line)
			}
		}
	}
	return out.String()
}

// Defines returns the names declared by "#define NAME" lines of src.
func Defines(src string) map[string]bool {
	out := make(map[string]bool)
	for _, line := range strings.Split(src, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == "#define" {
			out[fields[1]] = true
		}
	}
	return out
}
