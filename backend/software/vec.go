package software

import "math"

type vec2 [2]float32

type vec4 [4]float32

func (v vec4) add(o vec4) vec4 {
	return vec4{v[0] + o[0], v[1] + o[1], v[2] + o[2], v[3] + o[3]}
}

func (v vec4) scale(s float32) vec4 {
	return vec4{v[0] * s, v[1] * s, v[2] * s, v[3] * s}
}

func (v vec4) offset(s float32) vec4 {
	return vec4{v[0] + s, v[1] + s, v[2] + s, v[3] + s}
}

// mix is GLSL mix(a, b, t).
func mix(a, b vec4, t float32) vec4 {
	return vec4{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
		a[3] + (b[3]-a[3])*t,
	}
}

func floor(v float32) float32 { return float32(math.Floor(float64(v))) }

func abs(v float32) float32 { return float32(math.Abs(float64(v))) }

func exp(v float32) float32 { return float32(math.Exp(float64(v))) }

func length(x, y float32) float32 {
	return float32(math.Sqrt(float64(x*x + y*y)))
}
