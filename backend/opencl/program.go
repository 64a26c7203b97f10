package opencl

import (
	"fmt"

	"github.com/gogpu/fluid/gpucore"
	"github.com/gogpu/fluid/internal/shaders"
)

// buffer is a float4 texel buffer as the kernels see it: the memory
// object followed by its width, height and linear flag.
type buffer struct {
	mem    any
	width  int32
	height int32
	linear int32
}

type value struct {
	f [4]float32
	i int32
}

// program holds the uniform values of one pass kernel. Locations index
// params, which are in kernel argument order.
type program struct {
	label  string
	kernel string
	params []shaders.KernelParam
	values []value
}

// newProgram reflects the kernel parameters of an OpenCL C pass. The
// kernel is named after the program label.
func newProgram(desc gpucore.ProgramDescriptor) (*program, []gpucore.ActiveUniform, error) {
	kernel := shaders.KernelName(shaders.Pass(desc.Label))
	params, err := shaders.ReflectOpenCL(desc.Fragment, kernel)
	if err != nil {
		return nil, nil, &gpucore.ProgramLinkError{Label: desc.Label, Log: err.Error()}
	}
	p := &program{label: desc.Label, kernel: kernel, params: params, values: make([]value, len(params))}
	uniforms := make([]gpucore.ActiveUniform, len(params))
	for i, kp := range params {
		uniforms[i] = gpucore.ActiveUniform{Name: kp.Name, Type: kp.Type, Location: gpucore.UniformLocation(i)}
	}
	return p, uniforms, nil
}

func (p *program) set(loc gpucore.UniformLocation, v value) {
	if loc.Valid() && int(loc) < len(p.values) {
		p.values[loc] = v
	}
}

// args lays out the kernel arguments for a draw into out. texture resolves
// the buffer bound to a unit.
func (p *program) args(out buffer, texture func(unit int32) (buffer, error)) ([]any, error) {
	args := make([]any, 0, shaders.OutputArgs+len(p.params)*2)
	args = append(args, out.mem, out.width, out.height)
	for i, kp := range p.params {
		if len(args) != kp.ArgIndex {
			return nil, fmt.Errorf("opencl: %s: parameter %s at argument %d, want %d", p.label, kp.Name, len(args), kp.ArgIndex)
		}
		v := p.values[i]
		switch kp.Type {
		case gpucore.UniformFloat:
			args = append(args, v.f[0])
		case gpucore.UniformInt:
			args = append(args, v.i)
		case gpucore.UniformVec2:
			args = append(args, v.f[0], v.f[1])
		case gpucore.UniformVec3:
			args = append(args, v.f[0], v.f[1], v.f[2])
		case gpucore.UniformSampler2D:
			b, err := texture(v.i)
			if err != nil {
				return nil, fmt.Errorf("opencl: %s: %s: %w", p.label, kp.Name, err)
			}
			if b.mem == out.mem {
				return nil, fmt.Errorf("opencl: %s: %s samples the buffer being written", p.label, kp.Name)
			}
			args = append(args, b.mem, b.width, b.height, b.linear)
		default:
			return nil, fmt.Errorf("opencl: %s: parameter %s has unsupported type", p.label, kp.Name)
		}
	}
	return args, nil
}
