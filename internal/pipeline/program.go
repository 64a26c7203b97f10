package pipeline

import (
	"sort"

	"github.com/gogpu/fluid/gpucore"
)

// Program is a linked vertex+fragment pair with its active uniforms.
type Program struct {
	dev      gpucore.Device
	id       gpucore.ProgramID
	label    string
	uniforms map[string]gpucore.ActiveUniform
}

// Compile compiles and links a program and records the location of every
// active uniform by name.
func Compile(dev gpucore.Device, desc gpucore.ProgramDescriptor) (*Program, error) {
	id, active, err := dev.CompileProgram(desc)
	if err != nil {
		return nil, err
	}
	p := &Program{
		dev:      dev,
		id:       id,
		label:    desc.Label,
		uniforms: make(map[string]gpucore.ActiveUniform, len(active)),
	}
	for _, u := range active {
		p.uniforms[u.Name] = u
	}
	return p, nil
}

// Label returns the label the program was compiled with.
func (p *Program) Label() string { return p.label }

// ID returns the device handle of the program.
func (p *Program) ID() gpucore.ProgramID { return p.id }

// Uniform returns the location of an active uniform, or
// gpucore.NoLocation when the program does not use it.
func (p *Program) Uniform(name string) gpucore.UniformLocation {
	if u, ok := p.uniforms[name]; ok {
		return u.Location
	}
	return gpucore.NoLocation
}

// Lookup returns the reflection entry of an active uniform.
func (p *Program) Lookup(name string) (gpucore.ActiveUniform, bool) {
	u, ok := p.uniforms[name]
	return u, ok
}

// Uniforms returns the names of all active uniforms in sorted order.
func (p *Program) Uniforms() []string {
	names := make([]string, 0, len(p.uniforms))
	for name := range p.uniforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bind makes the program current.
func (p *Program) Bind() {
	p.dev.UseProgram(p.id)
}

// Destroy releases the program. The program must not be used afterwards.
func (p *Program) Destroy() {
	if p.id == gpucore.InvalidID {
		return
	}
	p.dev.DestroyProgram(p.id)
	p.id = gpucore.InvalidID
}
