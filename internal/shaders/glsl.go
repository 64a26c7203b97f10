package shaders

// VertexGLSL positions the full-screen quad and forwards texture
// coordinates.
const VertexGLSL = `
	precision highp float;

	attribute vec2 a_coordinates;
	attribute vec2 a_uv;
	varying vec2 v_uv;

	void main() {
	    gl_Position = vec4(a_coordinates, 0.0, 1.0);
	    v_uv = a_uv;
	}
`

const advectionGLSL = `
	precision highp float;
	precision highp sampler2D;

	varying vec2 v_uv;

	uniform float u_dissipation;
	uniform float u_delta_time;
	uniform vec2 u_resolution;
	uniform sampler2D u_velocity;
	uniform sampler2D u_quantity;
	#ifdef MANUAL_FILTERING
	uniform vec2 u_quantity_size;
	#endif
	#ifdef OBSTACLES
	uniform sampler2D u_obstacles;
	#endif

	#ifdef MANUAL_FILTERING
	vec4 bilerp(sampler2D sam, vec2 uv, vec2 size) {
	    vec2 st = uv * size - 0.5;
	    vec2 i = floor(st);
	    vec2 f = fract(st);
	    vec4 a = texture2D(sam, (i + vec2(0.5, 0.5)) / size);
	    vec4 b = texture2D(sam, (i + vec2(1.5, 0.5)) / size);
	    vec4 c = texture2D(sam, (i + vec2(0.5, 1.5)) / size);
	    vec4 d = texture2D(sam, (i + vec2(1.5, 1.5)) / size);
	    return mix(mix(a, b, f.x), mix(c, d, f.x), f.y);
	}
	#endif

	void main() {
	#ifdef MANUAL_FILTERING
	    vec2 velocity = bilerp(u_velocity, v_uv, u_resolution).xy / u_resolution;
	    vec2 position = v_uv - velocity * u_delta_time;
	    gl_FragColor = bilerp(u_quantity, position, u_quantity_size) * u_dissipation;
	#else
	    vec2 velocity = texture2D(u_velocity, v_uv).xy / u_resolution;
	    vec2 position = v_uv - velocity * u_delta_time;
	    gl_FragColor = texture2D(u_quantity, position) * u_dissipation;
	#endif
	#ifdef OBSTACLES
	    gl_FragColor *= 1.0 - texture2D(u_obstacles, v_uv).x;
	#endif
	}
`

const copyGLSL = `
	precision highp float;
	precision highp sampler2D;

	varying vec2 v_uv;

	uniform float u_factor;
	uniform float u_offset;
	uniform sampler2D u_texture;

	void main() {
	    gl_FragColor = texture2D(u_texture, v_uv) * u_factor + u_offset;
	}
`

const curlGLSL = `
	precision highp float;
	precision highp sampler2D;

	varying vec2 v_uv;

	uniform float u_r_half_texel_size;
	uniform vec2 u_resolution;
	uniform sampler2D u_velocity;

	void main() {
	    vec2 l = v_uv - vec2(1.0, 0.0) / u_resolution;
	    vec2 r = v_uv + vec2(1.0, 0.0) / u_resolution;
	    vec2 b = v_uv - vec2(0.0, 1.0) / u_resolution;
	    vec2 t = v_uv + vec2(0.0, 1.0) / u_resolution;

	    float x_l = texture2D(u_velocity, l).y;
	    float x_r = texture2D(u_velocity, r).y;
	    float x_b = texture2D(u_velocity, b).x;
	    float x_t = texture2D(u_velocity, t).x;

	    float curl = ((x_t - x_b) - (x_r - x_l)) * u_r_half_texel_size;
	    gl_FragColor = vec4(curl, 0.0, 0.0, 0.0);
	}
`

const divergenceGLSL = `
	precision highp float;
	precision highp sampler2D;

	varying vec2 v_uv;

	uniform float u_r_half_texel_size;
	uniform vec2 u_resolution;
	uniform sampler2D u_velocity;
	#ifdef OBSTACLES
	uniform sampler2D u_obstacles;
	#endif

	void main() {
	    vec2 l = v_uv - vec2(1.0, 0.0) / u_resolution;
	    vec2 r = v_uv + vec2(1.0, 0.0) / u_resolution;
	    vec2 b = v_uv - vec2(0.0, 1.0) / u_resolution;
	    vec2 t = v_uv + vec2(0.0, 1.0) / u_resolution;

	    float x_l = texture2D(u_velocity, l).x;
	    float x_r = texture2D(u_velocity, r).x;
	    float x_b = texture2D(u_velocity, b).y;
	    float x_t = texture2D(u_velocity, t).y;
	    vec2 x_c = texture2D(u_velocity, v_uv).xy;

	    if (gl_FragCoord.x < 1.0) { x_l = -x_c.x; }
	    else if (gl_FragCoord.x > u_resolution.x - 1.0) { x_r = -x_c.x; }

	    if (gl_FragCoord.y < 1.0) { x_b = -x_c.y; }
	    else if (gl_FragCoord.y > u_resolution.y - 1.0) { x_t = -x_c.y; }

	#ifdef OBSTACLES
	    if (texture2D(u_obstacles, l).x > 0.5) { x_l = -x_c.x; }
	    if (texture2D(u_obstacles, r).x > 0.5) { x_r = -x_c.x; }
	    if (texture2D(u_obstacles, b).x > 0.5) { x_b = -x_c.y; }
	    if (texture2D(u_obstacles, t).x > 0.5) { x_t = -x_c.y; }
	#endif

	    float divergence = (x_r - x_l + x_t - x_b) * u_r_half_texel_size;
	    gl_FragColor = vec4(divergence, 0.0, 0.0, 0.0);
	}
`

const gradientSubtractGLSL = `
	precision highp float;
	precision highp sampler2D;

	varying vec2 v_uv;

	uniform float u_r_half_texel_size;
	uniform vec2 u_resolution;
	uniform sampler2D u_velocity;
	uniform sampler2D u_pressure;
	#ifdef OBSTACLES
	uniform sampler2D u_obstacles;
	#endif

	void main() {
	    float x_l = texture2D(u_pressure, (gl_FragCoord.xy - vec2(1.0, 0.0)) / u_resolution).x;
	    float x_r = texture2D(u_pressure, (gl_FragCoord.xy + vec2(1.0, 0.0)) / u_resolution).x;
	    float x_b = texture2D(u_pressure, (gl_FragCoord.xy - vec2(0.0, 1.0)) / u_resolution).x;
	    float x_t = texture2D(u_pressure, (gl_FragCoord.xy + vec2(0.0, 1.0)) / u_resolution).x;

	#ifdef OBSTACLES
	    float x_c = texture2D(u_pressure, gl_FragCoord.xy / u_resolution).x;
	    if (texture2D(u_obstacles, (gl_FragCoord.xy - vec2(1.0, 0.0)) / u_resolution).x > 0.5) { x_l = x_c; }
	    if (texture2D(u_obstacles, (gl_FragCoord.xy + vec2(1.0, 0.0)) / u_resolution).x > 0.5) { x_r = x_c; }
	    if (texture2D(u_obstacles, (gl_FragCoord.xy - vec2(0.0, 1.0)) / u_resolution).x > 0.5) { x_b = x_c; }
	    if (texture2D(u_obstacles, (gl_FragCoord.xy + vec2(0.0, 1.0)) / u_resolution).x > 0.5) { x_t = x_c; }
	#endif

	    vec2 velocity = texture2D(u_velocity, v_uv).xy;
	    velocity -= vec2(x_r - x_l, x_t - x_b) * u_r_half_texel_size;
	#ifdef OBSTACLES
	    velocity *= 1.0 - texture2D(u_obstacles, v_uv).x;
	#endif
	    gl_FragColor = vec4(velocity, 0.0, 0.0);
	}
`

const jacobiGLSL = `
	precision highp float;
	precision highp sampler2D;

	varying vec2 v_uv;

	uniform float u_alpha;
	uniform float u_r_beta;
	uniform vec2 u_resolution;
	uniform sampler2D u_x;
	uniform sampler2D u_b;
	#ifdef OBSTACLES
	uniform sampler2D u_obstacles;
	#endif

	void main() {
	    vec2 l = v_uv - vec2(1.0, 0.0) / u_resolution;
	    vec2 r = v_uv + vec2(1.0, 0.0) / u_resolution;
	    vec2 b = v_uv - vec2(0.0, 1.0) / u_resolution;
	    vec2 t = v_uv + vec2(0.0, 1.0) / u_resolution;

	    vec4 x_l = texture2D(u_x, l);
	    vec4 x_r = texture2D(u_x, r);
	    vec4 x_b = texture2D(u_x, b);
	    vec4 x_t = texture2D(u_x, t);
	    vec4 x_c = texture2D(u_x, v_uv);

	#ifdef OBSTACLES
	    if (texture2D(u_obstacles, l).x > 0.5) { x_l = x_c; }
	    if (texture2D(u_obstacles, r).x > 0.5) { x_r = x_c; }
	    if (texture2D(u_obstacles, b).x > 0.5) { x_b = x_c; }
	    if (texture2D(u_obstacles, t).x > 0.5) { x_t = x_c; }
	#endif

	    vec4 bC = texture2D(u_b, v_uv);
	    gl_FragColor = (x_l + x_r + x_b + x_t + u_alpha * bC) * u_r_beta;
	}
`

const splatGLSL = `
	precision highp float;
	precision highp sampler2D;

	varying vec2 v_uv;

	uniform float u_scaled_radius;
	uniform vec2 u_position;
	uniform vec3 u_color;
	uniform sampler2D u_texture;

	void main() {
	    vec3 color = texture2D(u_texture, v_uv).xyz;
	    vec2 distance = gl_FragCoord.xy - u_position;
	    color += u_color * exp(-dot(distance, distance) / u_scaled_radius);

	    gl_FragColor = vec4(color, 1.0);
	}
`

const vorticityGLSL = `
	precision highp float;
	precision highp sampler2D;

	varying vec2 v_uv;

	uniform float u_curl_scale;
	uniform float u_r_half_texel_size;
	uniform vec2 u_resolution;
	uniform sampler2D u_curl;
	uniform sampler2D u_velocity;

	void main() {
	    vec2 l = v_uv - vec2(1.0, 0.0) / u_resolution;
	    vec2 r = v_uv + vec2(1.0, 0.0) / u_resolution;
	    vec2 b = v_uv - vec2(0.0, 1.0) / u_resolution;
	    vec2 t = v_uv + vec2(0.0, 1.0) / u_resolution;

	    float x_l = abs(texture2D(u_curl, l).x);
	    float x_r = abs(texture2D(u_curl, r).x);
	    float x_b = abs(texture2D(u_curl, b).x);
	    float x_t = abs(texture2D(u_curl, t).x);
	    float x_c = texture2D(u_curl, v_uv).x;

	    // w = curl(u) => only z-component
	    // v = norm(grad(abs(u)))
	    // f = cross(v, w) => swap x- and y-component (and y-component *= -1)
	    vec2 gradient = vec2(x_t - x_b, x_l - x_r) * u_r_half_texel_size;
	    vec2 vorticity = gradient / max(length(gradient), 0.0001);
	    vec2 force = vorticity * x_c * u_curl_scale;

	    vec2 velocity = texture2D(u_velocity, v_uv).xy;
	    gl_FragColor = vec4(velocity + force, 0.0, 0.0);
	}
`

const obstacleGLSL = `
	precision highp float;
	precision highp sampler2D;

	varying vec2 v_uv;

	uniform float u_scaled_radius_squared;
	uniform vec2 u_position;
	uniform float u_is_circle;

	void main() {
	    vec2 d = gl_FragCoord.xy - u_position;
	    float distance_squared = u_is_circle > 0.5 ? dot(d, d) : max(d.x * d.x, d.y * d.y);
	    float solid = distance_squared < u_scaled_radius_squared ? 1.0 : 0.0;
	    gl_FragColor = vec4(solid, 0.0, 0.0, 1.0);
	}
`

const obstacleColoringGLSL = `
	precision highp float;
	precision highp sampler2D;

	varying vec2 v_uv;

	uniform vec3 u_color;
	uniform sampler2D u_texture;
	uniform sampler2D u_obstacles;

	void main() {
	    vec4 color = texture2D(u_texture, v_uv);
	    float solid = texture2D(u_obstacles, v_uv).x;
	    gl_FragColor = mix(color, vec4(u_color, 1.0), solid);
	}
`

var glslFragments = map[Pass]string{
	Advection:        advectionGLSL,
	Copy:             copyGLSL,
	Curl:             curlGLSL,
	Divergence:       divergenceGLSL,
	GradientSubtract: gradientSubtractGLSL,
	Jacobi:           jacobiGLSL,
	Splat:            splatGLSL,
	Vorticity:        vorticityGLSL,
	Obstacle:         obstacleGLSL,
	ObstacleColoring: obstacleColoringGLSL,
}
