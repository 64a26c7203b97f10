package opencl

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/fluid/gpucore"
	"github.com/gogpu/fluid/internal/shaders"
)

func compile(t *testing.T, pass shaders.Pass, defines ...string) (*program, map[string]gpucore.UniformLocation) {
	t.Helper()
	_, src, err := shaders.Source(gpucore.DialectOpenCLC, pass, defines...)
	if err != nil {
		t.Fatal(err)
	}
	p, uniforms, err := newProgram(gpucore.ProgramDescriptor{Label: string(pass), Fragment: src})
	if err != nil {
		t.Fatalf("newProgram(%s): %v", pass, err)
	}
	locs := make(map[string]gpucore.UniformLocation, len(uniforms))
	for _, u := range uniforms {
		locs[u.Name] = u.Location
	}
	return p, locs
}

func TestAllPassesReflect(t *testing.T) {
	for _, pass := range shaders.Passes {
		t.Run(string(pass), func(t *testing.T) {
			p, _ := compile(t, pass, shaders.DefineObstacles)
			if p.kernel != shaders.KernelName(pass) {
				t.Errorf("kernel = %q", p.kernel)
			}
		})
	}
}

func TestNewProgramUnknownKernel(t *testing.T) {
	_, src, _ := shaders.Source(gpucore.DialectOpenCLC, shaders.Copy)
	_, _, err := newProgram(gpucore.ProgramDescriptor{Label: "missing", Fragment: src})
	var le *gpucore.ProgramLinkError
	if !errors.As(err, &le) {
		t.Fatalf("error = %v, want *ProgramLinkError", err)
	}
}

func TestArgsLayout(t *testing.T) {
	p, locs := compile(t, shaders.Advection)

	p.set(locs[shaders.UDissipation], value{f: [4]float32{0.9}})
	p.set(locs[shaders.UDeltaTime], value{f: [4]float32{0.016}})
	p.set(locs[shaders.UResolution], value{f: [4]float32{128, 64}})
	p.set(locs[shaders.UVelocity], value{i: 0})
	p.set(locs[shaders.UQuantity], value{i: 1})
	p.set(gpucore.NoLocation, value{i: 7})

	bufs := map[int32]buffer{
		0: {mem: "velocity", width: 128, height: 64, linear: 1},
		1: {mem: "dye", width: 256, height: 128},
	}
	args, err := p.args(buffer{mem: "out", width: 128, height: 64}, func(unit int32) (buffer, error) {
		b, ok := bufs[unit]
		if !ok {
			return buffer{}, errors.New("unbound")
		}
		return b, nil
	})
	if err != nil {
		t.Fatalf("args: %v", err)
	}

	want := []any{
		"out", int32(128), int32(64),
		float32(0.9), float32(0.016),
		float32(128), float32(64),
		"velocity", int32(128), int32(64), int32(1),
		"dye", int32(256), int32(128), int32(0),
	}
	if len(args) != len(want) {
		t.Fatalf("%d args, want %d: %v", len(args), len(want), args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("arg %d = %v (%T), want %v (%T)", i, args[i], args[i], want[i], want[i])
		}
	}
}

func TestArgsErrors(t *testing.T) {
	p, locs := compile(t, shaders.Copy)
	p.set(locs[shaders.UTexture], value{i: 2})

	_, err := p.args(buffer{mem: "out"}, func(int32) (buffer, error) {
		return buffer{}, errors.New("no texture bound to unit 2")
	})
	if err == nil || !strings.Contains(err.Error(), "unit 2") {
		t.Errorf("unbound unit error = %v", err)
	}

	_, err = p.args(buffer{mem: "out"}, func(int32) (buffer, error) {
		return buffer{mem: "out"}, nil
	})
	if err == nil || !strings.Contains(err.Error(), "being written") {
		t.Errorf("feedback error = %v", err)
	}
}
