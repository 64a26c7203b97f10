package wgpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/fluid/gpucore"
	"github.com/gogpu/fluid/internal/shaders"
)

// Entry points every pass module exports.
const (
	vertexEntry   = "vs_main"
	fragmentEntry = "fs_main"
)

// program is a compiled pass: its shader module and layouts, one render
// pipeline per target format, and the CPU copy of its uniform block.
//
// Locations [0, len(layout.Fields)) address uniform block members; the
// locations after them address the texture bindings, whose value is the
// texture unit they sample.
type program struct {
	label    string
	layout   shaders.WGSLLayout
	uniforms []gpucore.ActiveUniform
	block    []byte
	units    []int32

	module         hal.ShaderModule
	bindLayout     hal.BindGroupLayout
	pipelineLayout hal.PipelineLayout
	pipelines      map[gputypes.TextureFormat]hal.RenderPipeline
}

// compileProgram validates a WGSL pass with naga and creates its layouts.
// Pipelines are created on first draw into each target format.
func compileProgram(device hal.Device, desc gpucore.ProgramDescriptor) (*program, error) {
	src := desc.Fragment
	if !strings.Contains(src, "fn "+vertexEntry) {
		return nil, &gpucore.ProgramLinkError{Label: desc.Label, Log: "missing vertex entry point " + vertexEntry}
	}
	if !strings.Contains(src, "fn "+fragmentEntry) {
		return nil, &gpucore.ProgramLinkError{Label: desc.Label, Log: "missing fragment entry point " + fragmentEntry}
	}

	layout, err := shaders.ReflectWGSL(src)
	if err != nil {
		return nil, &gpucore.ShaderCompileError{Label: desc.Label, Stage: gpucore.StageFragment, Log: err.Error()}
	}
	if len(layout.Textures) > maxTextureBindings {
		return nil, &gpucore.ProgramLinkError{
			Label: desc.Label,
			Log:   fmt.Sprintf("%d textures exceed the %d sampled texture limit", len(layout.Textures), maxTextureBindings),
		}
	}

	spirv, err := naga.Compile(src)
	if err != nil {
		return nil, &gpucore.ShaderCompileError{Label: desc.Label, Stage: gpucore.StageFragment, Log: err.Error()}
	}

	p := &program{
		label:     desc.Label,
		layout:    layout,
		block:     make([]byte, layout.Size),
		units:     make([]int32, len(layout.Textures)),
		pipelines: make(map[gputypes.TextureFormat]hal.RenderPipeline),
	}
	for i, f := range layout.Fields {
		p.uniforms = append(p.uniforms, gpucore.ActiveUniform{Name: f.Name, Type: f.Type, Location: gpucore.UniformLocation(i)})
	}
	for i, t := range layout.Textures {
		p.uniforms = append(p.uniforms, gpucore.ActiveUniform{
			Name:     t.Name,
			Type:     gpucore.UniformSampler2D,
			Location: gpucore.UniformLocation(len(layout.Fields) + i),
		})
	}

	if err := p.createLayouts(device, spirvWords(spirv)); err != nil {
		p.destroy(device)
		return nil, err
	}
	return p, nil
}

// spirvWords reinterprets little-endian SPIR-V bytes as words.
func spirvWords(b []byte) []uint32 {
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return words
}

func (p *program) createLayouts(device hal.Device, spirv []uint32) error {
	var err error
	p.module, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  p.label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return &gpucore.ShaderCompileError{Label: p.label, Stage: gpucore.StageFragment, Log: err.Error()}
	}

	stages := gputypes.ShaderStageVertex | gputypes.ShaderStageFragment
	var entries []gputypes.BindGroupLayoutEntry
	if p.layout.Size > 0 {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    0,
			Visibility: stages,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		})
	}
	for _, t := range p.layout.Textures {
		entries = append(entries,
			gputypes.BindGroupLayoutEntry{
				Binding:    t.Binding,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeUnfilterableFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			gputypes.BindGroupLayoutEntry{
				Binding:    t.SamplerBinding,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeNonFiltering},
			},
		)
	}

	p.bindLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   p.label + "_bind_layout",
		Entries: entries,
	})
	if err != nil {
		return &gpucore.ProgramLinkError{Label: p.label, Log: "bind group layout: " + err.Error()}
	}

	p.pipelineLayout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            p.label + "_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return &gpucore.ProgramLinkError{Label: p.label, Log: "pipeline layout: " + err.Error()}
	}
	return nil
}

// pipeline returns the render pipeline drawing into format, creating it on
// first use.
func (p *program) pipeline(device hal.Device, format gputypes.TextureFormat) (hal.RenderPipeline, error) {
	if pl, ok := p.pipelines[format]; ok {
		return pl, nil
	}
	pl, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  p.label,
		Layout: p.pipelineLayout,
		Vertex: hal.VertexState{
			Module:     p.module,
			EntryPoint: vertexEntry,
			Buffers: []gputypes.VertexBufferLayout{{
				ArrayStride: gpucore.QuadStride,
				StepMode:    gputypes.VertexStepModeVertex,
				Attributes: []gputypes.VertexAttribute{
					{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
				},
			}},
		},
		Fragment: &hal.FragmentState{
			Module:     p.module,
			EntryPoint: fragmentEntry,
			Targets: []gputypes.ColorTargetState{{
				Format:    format,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleStrip,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return nil, &gpucore.ProgramLinkError{Label: p.label, Log: fmt.Sprintf("render pipeline for %v: %v", format, err)}
	}
	p.pipelines[format] = pl
	return pl, nil
}

// set stores a uniform value. Vector setters write as many components as
// the member has; sampler locations record the texture unit.
func (p *program) set(loc gpucore.UniformLocation, f [4]float32, i int32) {
	if !loc.Valid() {
		return
	}
	n := int(loc)
	if n >= len(p.layout.Fields) {
		if t := n - len(p.layout.Fields); t < len(p.units) {
			p.units[t] = i
		}
		return
	}

	field := p.layout.Fields[n]
	dst := p.block[field.Offset:]
	switch field.Type {
	case gpucore.UniformInt:
		binary.LittleEndian.PutUint32(dst, uint32(i))
	default:
		for c := range components(field.Type) {
			binary.LittleEndian.PutUint32(dst[c*4:], math.Float32bits(f[c]))
		}
	}
}

func components(t gpucore.UniformType) int {
	switch t {
	case gpucore.UniformVec2:
		return 2
	case gpucore.UniformVec3:
		return 3
	case gpucore.UniformVec4:
		return 4
	default:
		return 1
	}
}

func (p *program) destroy(device hal.Device) {
	for format, pl := range p.pipelines {
		device.DestroyRenderPipeline(pl)
		delete(p.pipelines, format)
	}
	if p.pipelineLayout != nil {
		device.DestroyPipelineLayout(p.pipelineLayout)
		p.pipelineLayout = nil
	}
	if p.bindLayout != nil {
		device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.module != nil {
		device.DestroyShaderModule(p.module)
		p.module = nil
	}
}
