package pipeline

import (
	"github.com/gogpu/fluid/gpucore"
	"github.com/gogpu/fluid/internal/shaders"
)

// CopyProgram is the copy pass with its uniform handles resolved:
// dst = texture(src, uv) * factor + offset.
type CopyProgram struct {
	*Program
	factor  gpucore.UniformLocation
	offset  gpucore.UniformLocation
	texture gpucore.UniformLocation
}

// NewCopyProgram resolves the copy uniforms of a compiled copy program.
func NewCopyProgram(p *Program) *CopyProgram {
	return &CopyProgram{
		Program: p,
		factor:  p.Uniform(shaders.UFactor),
		offset:  p.Uniform(shaders.UOffset),
		texture: p.Uniform(shaders.UTexture),
	}
}

// Run copies src into dst (the visible surface when dst is nil), scaling
// every channel by factor and adding offset.
func (c *CopyProgram) Run(src, dst *Texture2D, factor, offset float32, clear bool) error {
	c.Bind()
	c.dev.Uniform1f(c.factor, factor)
	c.dev.Uniform1f(c.offset, offset)
	unit, err := src.BindToUnit(0)
	if err != nil {
		return err
	}
	c.dev.Uniform1i(c.texture, unit)
	return Blit(c.dev, dst, clear)
}
