package shaders

import (
	"strings"
	"testing"

	"github.com/gogpu/fluid/gpucore"
)

func TestSourceAllPasses(t *testing.T) {
	dialects := []gpucore.Dialect{
		gpucore.DialectGLSL100,
		gpucore.DialectGLSLKernel,
		gpucore.DialectWGSL,
		gpucore.DialectOpenCLC,
	}
	for _, d := range dialects {
		for _, p := range Passes {
			t.Run(d.String()+"/"+string(p), func(t *testing.T) {
				_, frag, err := Source(d, p, DefineObstacles)
				if err != nil {
					t.Fatalf("Source() error = %v", err)
				}
				if strings.TrimSpace(frag) == "" {
					t.Fatal("empty fragment source")
				}
			})
		}
	}
}

func TestSourceUnknown(t *testing.T) {
	if _, _, err := Source(gpucore.DialectGLSL100, Pass("bogus")); err == nil {
		t.Error("expected error for unknown pass")
	}
	if _, _, err := Source(gpucore.Dialect(99), Copy); err == nil {
		t.Error("expected error for unknown dialect")
	}
}

func TestPreprocess(t *testing.T) {
	src := "a\n#ifdef X\nb\n#ifdef Y\nc\n#else\nd\n#endif\n#else\ne\n#endif\n#ifndef X\nf\n#endif\ng\n"
	tests := []struct {
		defines []string
		want    string
	}{
		{nil, "a\ne\nf\ng\n"},
		{[]string{"X"}, "a\nb\nd\ng\n"},
		{[]string{"X", "Y"}, "a\nb\nc\ng\n"},
		{[]string{"Y"}, "a\ne\nf\ng\n"},
	}
	for _, tt := range tests {
		if got := Preprocess(src, tt.defines); got != tt.want {
			t.Errorf("Preprocess(%v) = %q, want %q", tt.defines, got, tt.want)
		}
	}
}

func TestReflectGLSL(t *testing.T) {
	_, plain, _ := Source(gpucore.DialectGLSL100, Advection)
	decls, err := ReflectGLSL(plain)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{UDissipation, UDeltaTime, UResolution, UVelocity, UQuantity}
	if len(decls) != len(want) {
		t.Fatalf("got %d uniforms %v, want %v", len(decls), decls, want)
	}
	for i, name := range want {
		if decls[i].Name != name {
			t.Errorf("uniform %d = %s, want %s", i, decls[i].Name, name)
		}
	}

	_, full, _ := Source(gpucore.DialectGLSL100, Advection, DefineObstacles, DefineManualFiltering)
	decls, err = ReflectGLSL(full)
	if err != nil {
		t.Fatal(err)
	}
	names := make(map[string]gpucore.UniformType)
	for _, d := range decls {
		names[d.Name] = d.Type
	}
	if names[UObstacles] != gpucore.UniformSampler2D {
		t.Errorf("u_obstacles type = %v, want sampler2D", names[UObstacles])
	}
	if names[UQuantitySize] != gpucore.UniformVec2 {
		t.Errorf("u_quantity_size type = %v, want vec2", names[UQuantitySize])
	}
}

func TestReflectGLSLUnsupportedType(t *testing.T) {
	if _, err := ReflectGLSL("uniform mat4 u_m;\n"); err == nil {
		t.Error("expected error for mat4 uniform")
	}
}

func TestReflectWGSL(t *testing.T) {
	src, _, err := Source(gpucore.DialectWGSL, Splat)
	if err != nil {
		t.Fatal(err)
	}
	layout, err := ReflectWGSL(src)
	if err != nil {
		t.Fatal(err)
	}
	wantOffsets := map[string]int{UScaledRadius: 0, UPosition: 8, UColor: 16}
	for _, f := range layout.Fields {
		if off, ok := wantOffsets[f.Name]; !ok || off != f.Offset {
			t.Errorf("field %s offset = %d, want %d", f.Name, f.Offset, off)
		}
	}
	if layout.Size != 32 {
		t.Errorf("Size = %d, want 32", layout.Size)
	}
	if len(layout.Textures) != 1 || layout.Textures[0].Name != UTexture ||
		layout.Textures[0].Binding != 1 || layout.Textures[0].SamplerBinding != 2 {
		t.Errorf("Textures = %+v", layout.Textures)
	}
}

func TestReflectWGSLObstacleDefine(t *testing.T) {
	plain, _, _ := Source(gpucore.DialectWGSL, Jacobi)
	full, _, _ := Source(gpucore.DialectWGSL, Jacobi, DefineObstacles)
	a, err := ReflectWGSL(plain)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ReflectWGSL(full)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Textures) != 2 || len(b.Textures) != 3 {
		t.Errorf("texture counts = %d/%d, want 2/3", len(a.Textures), len(b.Textures))
	}
	if strings.Contains(plain, "#ifdef") {
		t.Error("preprocessed WGSL still contains directives")
	}
}

func TestReflectOpenCL(t *testing.T) {
	_, src, err := Source(gpucore.DialectOpenCLC, Splat)
	if err != nil {
		t.Fatal(err)
	}
	params, err := ReflectOpenCL(src, KernelName(Splat))
	if err != nil {
		t.Fatal(err)
	}
	want := []KernelParam{
		{Name: UScaledRadius, Type: gpucore.UniformFloat, ArgIndex: 3, ArgCount: 1},
		{Name: UPosition, Type: gpucore.UniformVec2, ArgIndex: 4, ArgCount: 2},
		{Name: UColor, Type: gpucore.UniformVec3, ArgIndex: 6, ArgCount: 3},
		{Name: UTexture, Type: gpucore.UniformSampler2D, ArgIndex: 9, ArgCount: 4},
	}
	if len(params) != len(want) {
		t.Fatalf("got %+v, want %+v", params, want)
	}
	for i := range want {
		if params[i] != want[i] {
			t.Errorf("param %d = %+v, want %+v", i, params[i], want[i])
		}
	}
}

func TestReflectOpenCLObstacleDefine(t *testing.T) {
	_, plain, _ := Source(gpucore.DialectOpenCLC, GradientSubtract)
	_, full, _ := Source(gpucore.DialectOpenCLC, GradientSubtract, DefineObstacles)
	a, err := ReflectOpenCL(plain, KernelName(GradientSubtract))
	if err != nil {
		t.Fatal(err)
	}
	b, err := ReflectOpenCL(full, KernelName(GradientSubtract))
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != len(a)+1 || b[len(b)-1].Name != UObstacles {
		t.Errorf("obstacle define not reflected: %+v", b)
	}
}

func TestKernelName(t *testing.T) {
	if got := KernelName(ObstacleColoring); got != "obstacle_coloring" {
		t.Errorf("KernelName() = %q", got)
	}
}
