package software

import "github.com/gogpu/fluid/internal/shaders"

// fragment shades one texel. fc is gl_FragCoord.xy and uv the
// interpolated texture coordinate.
type fragment func(fc, uv vec2) vec4

// kernel resolves the inputs of a draw and returns the fragment function.
// Kernels read every uniform they need before returning, which lets
// compileProgram run them in linking mode.
type kernel func(in *inputs) fragment

var kernels = map[shaders.Pass]kernel{
	shaders.Advection:        advection,
	shaders.Copy:             copyKernel,
	shaders.Curl:             curl,
	shaders.Divergence:       divergence,
	shaders.GradientSubtract: gradientSubtract,
	shaders.Jacobi:           jacobi,
	shaders.Splat:            splat,
	shaders.Vorticity:        vorticity,
	shaders.Obstacle:         obstacle,
	shaders.ObstacleColoring: obstacleColoring,
}

// neighbors returns the texture coordinates one texel left, right, below
// and above uv.
func neighbors(uv, res vec2) (l, r, b, t vec2) {
	dx, dy := 1/res[0], 1/res[1]
	return vec2{uv[0] - dx, uv[1]}, vec2{uv[0] + dx, uv[1]},
		vec2{uv[0], uv[1] - dy}, vec2{uv[0], uv[1] + dy}
}

// texelNeighbors is neighbors for gl_FragCoord based lookups.
func texelNeighbors(fc, res vec2) (c, l, r, b, t vec2) {
	at := func(x, y float32) vec2 { return vec2{x / res[0], y / res[1]} }
	return at(fc[0], fc[1]),
		at(fc[0]-1, fc[1]), at(fc[0]+1, fc[1]),
		at(fc[0], fc[1]-1), at(fc[0], fc[1]+1)
}

func solid(obs *texture, uv vec2) bool {
	return obs != nil && obs.sample(uv)[0] > 0.5
}

func advection(in *inputs) fragment {
	dissipation := in.float(shaders.UDissipation)
	dt := in.float(shaders.UDeltaTime)
	res := in.vec2(shaders.UResolution)
	velocity := in.sampler(shaders.UVelocity)
	quantity := in.sampler(shaders.UQuantity)

	manual := in.defined(shaders.DefineManualFiltering)
	var quantitySize vec2
	if manual {
		quantitySize = in.vec2(shaders.UQuantitySize)
	}
	var obstacles *texture
	if in.defined(shaders.DefineObstacles) {
		obstacles = in.sampler(shaders.UObstacles)
	}

	return func(_, uv vec2) vec4 {
		var v vec4
		if manual {
			v = bilerp(velocity, uv, res)
		} else {
			v = velocity.sample(uv)
		}
		pos := vec2{uv[0] - v[0]/res[0]*dt, uv[1] - v[1]/res[1]*dt}

		var out vec4
		if manual {
			out = bilerp(quantity, pos, quantitySize)
		} else {
			out = quantity.sample(pos)
		}
		out = out.scale(dissipation)
		if obstacles != nil {
			out = out.scale(1 - obstacles.sample(uv)[0])
		}
		return out
	}
}

func copyKernel(in *inputs) fragment {
	factor := in.float(shaders.UFactor)
	offset := in.float(shaders.UOffset)
	src := in.sampler(shaders.UTexture)

	return func(_, uv vec2) vec4 {
		return src.sample(uv).scale(factor).offset(offset)
	}
}

func curl(in *inputs) fragment {
	half := in.float(shaders.URHalfTexelSize)
	res := in.vec2(shaders.UResolution)
	velocity := in.sampler(shaders.UVelocity)

	return func(_, uv vec2) vec4 {
		l, r, b, t := neighbors(uv, res)
		xl := velocity.sample(l)[1]
		xr := velocity.sample(r)[1]
		xb := velocity.sample(b)[0]
		xt := velocity.sample(t)[0]
		return vec4{((xt - xb) - (xr - xl)) * half, 0, 0, 0}
	}
}

func divergence(in *inputs) fragment {
	half := in.float(shaders.URHalfTexelSize)
	res := in.vec2(shaders.UResolution)
	velocity := in.sampler(shaders.UVelocity)
	var obstacles *texture
	if in.defined(shaders.DefineObstacles) {
		obstacles = in.sampler(shaders.UObstacles)
	}

	return func(fc, uv vec2) vec4 {
		l, r, b, t := neighbors(uv, res)
		xl := velocity.sample(l)[0]
		xr := velocity.sample(r)[0]
		xb := velocity.sample(b)[1]
		xt := velocity.sample(t)[1]
		c := velocity.sample(uv)

		// Free-slip walls: the neighbor across an edge mirrors the center.
		if fc[0] < 1 {
			xl = -c[0]
		} else if fc[0] > res[0]-1 {
			xr = -c[0]
		}
		if fc[1] < 1 {
			xb = -c[1]
		} else if fc[1] > res[1]-1 {
			xt = -c[1]
		}

		if solid(obstacles, l) {
			xl = -c[0]
		}
		if solid(obstacles, r) {
			xr = -c[0]
		}
		if solid(obstacles, b) {
			xb = -c[1]
		}
		if solid(obstacles, t) {
			xt = -c[1]
		}

		return vec4{(xr - xl + xt - xb) * half, 0, 0, 0}
	}
}

func gradientSubtract(in *inputs) fragment {
	half := in.float(shaders.URHalfTexelSize)
	res := in.vec2(shaders.UResolution)
	velocity := in.sampler(shaders.UVelocity)
	pressure := in.sampler(shaders.UPressure)
	var obstacles *texture
	if in.defined(shaders.DefineObstacles) {
		obstacles = in.sampler(shaders.UObstacles)
	}

	return func(fc, uv vec2) vec4 {
		c, l, r, b, t := texelNeighbors(fc, res)
		xl := pressure.sample(l)[0]
		xr := pressure.sample(r)[0]
		xb := pressure.sample(b)[0]
		xt := pressure.sample(t)[0]

		if obstacles != nil {
			xc := pressure.sample(c)[0]
			if solid(obstacles, l) {
				xl = xc
			}
			if solid(obstacles, r) {
				xr = xc
			}
			if solid(obstacles, b) {
				xb = xc
			}
			if solid(obstacles, t) {
				xt = xc
			}
		}

		v := velocity.sample(uv)
		vx := v[0] - (xr-xl)*half
		vy := v[1] - (xt-xb)*half
		if obstacles != nil {
			fluid := 1 - obstacles.sample(uv)[0]
			vx *= fluid
			vy *= fluid
		}
		return vec4{vx, vy, 0, 0}
	}
}

func jacobi(in *inputs) fragment {
	alpha := in.float(shaders.UAlpha)
	rBeta := in.float(shaders.URBeta)
	res := in.vec2(shaders.UResolution)
	x := in.sampler(shaders.UX)
	bTex := in.sampler(shaders.UB)
	var obstacles *texture
	if in.defined(shaders.DefineObstacles) {
		obstacles = in.sampler(shaders.UObstacles)
	}

	return func(_, uv vec2) vec4 {
		l, r, b, t := neighbors(uv, res)
		xl := x.sample(l)
		xr := x.sample(r)
		xb := x.sample(b)
		xt := x.sample(t)
		xc := x.sample(uv)

		if solid(obstacles, l) {
			xl = xc
		}
		if solid(obstacles, r) {
			xr = xc
		}
		if solid(obstacles, b) {
			xb = xc
		}
		if solid(obstacles, t) {
			xt = xc
		}

		bc := bTex.sample(uv)
		return xl.add(xr).add(xb).add(xt).add(bc.scale(alpha)).scale(rBeta)
	}
}

func splat(in *inputs) fragment {
	radius := in.float(shaders.UScaledRadius)
	pos := in.vec2(shaders.UPosition)
	color := in.vec3(shaders.UColor)
	src := in.sampler(shaders.UTexture)

	return func(fc, uv vec2) vec4 {
		c := src.sample(uv)
		dx, dy := fc[0]-pos[0], fc[1]-pos[1]
		w := exp(-(dx*dx + dy*dy) / radius)
		return vec4{c[0] + color[0]*w, c[1] + color[1]*w, c[2] + color[2]*w, 1}
	}
}

func vorticity(in *inputs) fragment {
	scale := in.float(shaders.UCurlScale)
	half := in.float(shaders.URHalfTexelSize)
	res := in.vec2(shaders.UResolution)
	curlTex := in.sampler(shaders.UCurl)
	velocity := in.sampler(shaders.UVelocity)

	return func(_, uv vec2) vec4 {
		l, r, b, t := neighbors(uv, res)
		xl := abs(curlTex.sample(l)[0])
		xr := abs(curlTex.sample(r)[0])
		xb := abs(curlTex.sample(b)[0])
		xt := abs(curlTex.sample(t)[0])
		xc := curlTex.sample(uv)[0]

		gx := (xt - xb) * half
		gy := (xl - xr) * half
		n := max(length(gx, gy), 0.0001)

		v := velocity.sample(uv)
		return vec4{v[0] + gx/n*xc*scale, v[1] + gy/n*xc*scale, 0, 0}
	}
}

func obstacle(in *inputs) fragment {
	radiusSquared := in.float(shaders.UScaledRadiusSquared)
	pos := in.vec2(shaders.UPosition)
	circle := in.float(shaders.UIsCircle) > 0.5

	return func(fc, _ vec2) vec4 {
		dx, dy := fc[0]-pos[0], fc[1]-pos[1]
		var d float32
		if circle {
			d = dx*dx + dy*dy
		} else {
			d = max(dx*dx, dy*dy)
		}
		if d < radiusSquared {
			return vec4{1, 0, 0, 1}
		}
		return vec4{0, 0, 0, 1}
	}
}

func obstacleColoring(in *inputs) fragment {
	color := in.vec3(shaders.UColor)
	color[3] = 1
	src := in.sampler(shaders.UTexture)
	obstacles := in.sampler(shaders.UObstacles)

	return func(_, uv vec2) vec4 {
		return mix(src.sample(uv), color, obstacles.sample(uv)[0])
	}
}
