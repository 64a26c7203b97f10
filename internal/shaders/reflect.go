package shaders

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gogpu/fluid/gpucore"
)

// Decl is a reflected uniform declaration.
type Decl struct {
	Name string
	Type gpucore.UniformType
}

var glslUniformRe = regexp.MustCompile(`^uniform\s+(?:(?:highp|mediump|lowp)\s+)?(\w+)\s+(\w+)\s*;`)

// ReflectGLSL lists the uniforms a GLSL ES 1.00 unit declares after its own
// #define lines have been applied to #ifdef blocks.
func ReflectGLSL(src string) ([]Decl, error) {
	pre := Preprocess(src, keys(Defines(src)))
	var decls []Decl
	for _, line := range strings.Split(pre, "\n") {
		m := glslUniformRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		typ, ok := glslTypes[m[1]]
		if !ok {
			return nil, fmt.Errorf("shaders: uniform %s has unsupported type %s", m[2], m[1])
		}
		decls = append(decls, Decl{Name: m[2], Type: typ})
	}
	return decls, nil
}

var glslTypes = map[string]gpucore.UniformType{
	"float":     gpucore.UniformFloat,
	"vec2":      gpucore.UniformVec2,
	"vec3":      gpucore.UniformVec3,
	"vec4":      gpucore.UniformVec4,
	"int":       gpucore.UniformInt,
	"bool":      gpucore.UniformInt,
	"sampler2D": gpucore.UniformSampler2D,
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// WGSLField is one member of the uniform block.
type WGSLField struct {
	Name   string
	Type   gpucore.UniformType
	Offset int
}

// WGSLTexture is a texture binding and the sampler bound next to it.
type WGSLTexture struct {
	Name           string
	Binding        uint32
	SamplerBinding uint32
}

// WGSLLayout describes the resources of a preprocessed WGSL program: one
// uniform block at binding 0 and texture/sampler pairs after it.
type WGSLLayout struct {
	Fields   []WGSLField
	Size     int
	Textures []WGSLTexture
}

var (
	wgslStructRe  = regexp.MustCompile(`(?s)struct\s+Params\s*\{(.*?)\}`)
	wgslFieldRe   = regexp.MustCompile(`^(\w+)\s*:\s*([\w<>]+)\s*,?$`)
	wgslTextureRe = regexp.MustCompile(`@group\(0\)\s*@binding\((\d+)\)\s*var\s+(\w+)\s*:\s*texture_2d<f32>\s*;`)
	wgslSamplerRe = regexp.MustCompile(`@group\(0\)\s*@binding\((\d+)\)\s*var\s+(\w+)\s*:\s*sampler\s*;`)
)

// ReflectWGSL computes the uniform block layout (WGSL uniform address
// space alignment rules) and the texture bindings of a WGSL program.
func ReflectWGSL(src string) (WGSLLayout, error) {
	var layout WGSLLayout

	if m := wgslStructRe.FindStringSubmatch(src); m != nil {
		offset, maxAlign := 0, 16
		for _, line := range strings.Split(m[1], "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "//") {
				continue
			}
			f := wgslFieldRe.FindStringSubmatch(line)
			if f == nil {
				return WGSLLayout{}, fmt.Errorf("shaders: cannot parse uniform member %q", line)
			}
			typ, size, align, ok := wgslType(f[2])
			if !ok {
				return WGSLLayout{}, fmt.Errorf("shaders: uniform %s has unsupported type %s", f[1], f[2])
			}
			offset = alignUp(offset, align)
			layout.Fields = append(layout.Fields, WGSLField{Name: f[1], Type: typ, Offset: offset})
			offset += size
		}
		layout.Size = alignUp(offset, maxAlign)
	}

	samplers := make(map[string]uint32)
	for _, m := range wgslSamplerRe.FindAllStringSubmatch(src, -1) {
		b, _ := strconv.ParseUint(m[1], 10, 32)
		samplers[m[2]] = uint32(b)
	}
	for _, m := range wgslTextureRe.FindAllStringSubmatch(src, -1) {
		b, _ := strconv.ParseUint(m[1], 10, 32)
		s, ok := samplers[m[2]+"_sampler"]
		if !ok {
			return WGSLLayout{}, fmt.Errorf("shaders: texture %s has no sampler", m[2])
		}
		layout.Textures = append(layout.Textures, WGSLTexture{Name: m[2], Binding: uint32(b), SamplerBinding: s})
	}
	return layout, nil
}

func wgslType(s string) (typ gpucore.UniformType, size, align int, ok bool) {
	switch s {
	case "f32":
		return gpucore.UniformFloat, 4, 4, true
	case "i32":
		return gpucore.UniformInt, 4, 4, true
	case "vec2<f32>":
		return gpucore.UniformVec2, 8, 8, true
	case "vec3<f32>":
		return gpucore.UniformVec3, 12, 16, true
	case "vec4<f32>":
		return gpucore.UniformVec4, 16, 16, true
	}
	return 0, 0, 0, false
}

func alignUp(v, a int) int {
	return (v + a - 1) / a * a
}

// KernelParam is a uniform of an OpenCL pass kernel and the kernel
// arguments it occupies.
type KernelParam struct {
	Name     string
	Type     gpucore.UniformType
	ArgIndex int
	ArgCount int
}

// OutputArgs is the number of leading arguments (buffer, width, height)
// every pass kernel takes for its render target.
const OutputArgs = 3

var clMacroRe = regexp.MustCompile(`^(VEC2_ARG|VEC3_ARG|TEXTURE_ARG)\((\w+)\)$`)

// ReflectOpenCL lists the uniform parameters of the named kernel.
func ReflectOpenCL(src, kernel string) ([]KernelParam, error) {
	pre := Preprocess(src, keys(Defines(src)))
	head := "__kernel void " + kernel + "("
	start := strings.Index(pre, head)
	if start < 0 {
		return nil, fmt.Errorf("shaders: kernel %s not found", kernel)
	}
	rest := pre[start+len(head):]
	depth, end := 1, -1
	for i, c := range rest {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, fmt.Errorf("shaders: kernel %s has an unterminated parameter list", kernel)
	}

	var (
		params []KernelParam
		arg    int
	)
	for _, raw := range splitTopLevel(rest[:end]) {
		p := strings.Join(strings.Fields(raw), " ")
		switch {
		case p == "":
			continue
		case p == "OUTPUT_ARGS":
			arg += OutputArgs
			continue
		}
		if m := clMacroRe.FindStringSubmatch(p); m != nil {
			kp := KernelParam{Name: m[2], ArgIndex: arg}
			switch m[1] {
			case "VEC2_ARG":
				kp.Type, kp.ArgCount = gpucore.UniformVec2, 2
			case "VEC3_ARG":
				kp.Type, kp.ArgCount = gpucore.UniformVec3, 3
			case "TEXTURE_ARG":
				kp.Type, kp.ArgCount = gpucore.UniformSampler2D, 4
			}
			params = append(params, kp)
			arg += kp.ArgCount
			continue
		}
		fields := strings.Fields(strings.TrimPrefix(p, "const "))
		if len(fields) != 2 {
			return nil, fmt.Errorf("shaders: cannot parse kernel parameter %q", p)
		}
		kp := KernelParam{Name: fields[1], ArgIndex: arg, ArgCount: 1}
		switch fields[0] {
		case "float":
			kp.Type = gpucore.UniformFloat
		case "int":
			kp.Type = gpucore.UniformInt
		default:
			return nil, fmt.Errorf("shaders: kernel parameter %s has unsupported type %s", fields[1], fields[0])
		}
		params = append(params, kp)
		arg++
	}
	return params, nil
}

func splitTopLevel(s string) []string {
	var (
		out   []string
		depth int
		last  int
	)
	for i, c := range s {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[last:i])
				last = i + 1
			}
		}
	}
	return append(out, s[last:])
}
