package software

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gogpu/fluid/gpucore"
	"github.com/gogpu/fluid/internal/shaders"
)

// ErrUnknownKernel is returned when a program label names no pass the
// device can run.
var ErrUnknownKernel = errors.New("software: unknown kernel")

type uniformValue struct {
	f [4]float32
	i int32
}

type program struct {
	label    string
	kernel   kernel
	defines  map[string]bool
	uniforms []gpucore.ActiveUniform
	byName   map[string]gpucore.ActiveUniform
	values   []uniformValue
}

// compileProgram reflects a GLSL program and links it against the kernel
// its label names.
func compileProgram(desc gpucore.ProgramDescriptor) (*program, error) {
	if strings.TrimSpace(desc.Vertex) == "" {
		return nil, &gpucore.ShaderCompileError{Label: desc.Label, Stage: gpucore.StageVertex, Log: "empty source"}
	}
	if strings.TrimSpace(desc.Fragment) == "" {
		return nil, &gpucore.ShaderCompileError{Label: desc.Label, Stage: gpucore.StageFragment, Log: "empty source"}
	}

	k, ok := kernels[shaders.Pass(desc.Label)]
	if !ok {
		return nil, fmt.Errorf("%w: %w", ErrUnknownKernel, &gpucore.ShaderCompileError{
			Label: desc.Label,
			Stage: gpucore.StageFragment,
			Log:   "no kernel for program " + desc.Label,
		})
	}

	decls, err := shaders.ReflectGLSL(desc.Fragment)
	if err != nil {
		return nil, &gpucore.ShaderCompileError{Label: desc.Label, Stage: gpucore.StageFragment, Log: err.Error()}
	}

	p := &program{
		label:   desc.Label,
		kernel:  k,
		defines: shaders.Defines(desc.Fragment),
		byName:  make(map[string]gpucore.ActiveUniform, len(decls)),
	}
	for i, d := range decls {
		u := gpucore.ActiveUniform{Name: d.Name, Type: d.Type, Location: gpucore.UniformLocation(i)}
		p.uniforms = append(p.uniforms, u)
		p.byName[d.Name] = u
	}
	p.values = make([]uniformValue, len(p.uniforms))

	// Link: every uniform the kernel reads must be declared.
	in := &inputs{prog: p, linking: true}
	k(in)
	if len(in.missing) > 0 {
		sort.Strings(in.missing)
		return nil, &gpucore.ProgramLinkError{
			Label: desc.Label,
			Log:   "undeclared uniforms: " + strings.Join(in.missing, ", "),
		}
	}
	return p, nil
}

func (p *program) set(loc gpucore.UniformLocation, v uniformValue) {
	if !loc.Valid() || int(loc) >= len(p.values) {
		return
	}
	p.values[loc] = v
}

// inputs resolves the uniforms of the current program for one draw. In
// linking mode it only records the names a kernel reads that the program
// does not declare.
type inputs struct {
	prog    *program
	dev     *Device
	target  *texture
	linking bool
	missing []string
	err     error
}

func (in *inputs) value(name string) uniformValue {
	u, ok := in.prog.byName[name]
	if !ok {
		if in.linking {
			in.missing = append(in.missing, name)
		}
		return uniformValue{}
	}
	return in.prog.values[u.Location]
}

func (in *inputs) defined(name string) bool { return in.prog.defines[name] }

func (in *inputs) float(name string) float32 { return in.value(name).f[0] }

func (in *inputs) vec2(name string) vec2 {
	v := in.value(name).f
	return vec2{v[0], v[1]}
}

func (in *inputs) vec3(name string) vec4 {
	v := in.value(name).f
	return vec4{v[0], v[1], v[2], 0}
}

// sampler returns the texture bound to the unit a sampler uniform holds.
func (in *inputs) sampler(name string) *texture {
	v := in.value(name)
	if in.linking || in.err != nil {
		return nil
	}
	unit := int(v.i)
	if unit < 0 || unit >= gpucore.MaxTextureUnits {
		in.err = fmt.Errorf("%w: %s uses unit %d", gpucore.ErrInvalidTextureUnit, name, unit)
		return nil
	}
	tex := in.dev.textures[in.dev.units[unit]]
	switch {
	case tex == nil:
		in.err = fmt.Errorf("software: %s: no texture bound to unit %d", name, unit)
	case tex == in.target:
		in.err = fmt.Errorf("software: %s: texture %q is sampled and rendered in the same draw", name, tex.label)
	}
	return tex
}
