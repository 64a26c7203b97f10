package fluid

import (
	"fmt"

	"github.com/gogpu/fluid/gpucore"
	"github.com/gogpu/fluid/internal/pipeline"
)

// Field is a snapshot of a texture, RGBA per texel, bottom row first.
type Field struct {
	Width  int
	Height int
	Data   []float32
}

// At returns the texel at (x, y), with y counted from the bottom.
// Coordinates outside the field are clamped to the edge.
func (f *Field) At(x, y int) [4]float32 {
	x = min(max(x, 0), f.Width-1)
	y = min(max(y, 0), f.Height-1)
	i := (y*f.Width + x) * 4
	return [4]float32{f.Data[i], f.Data[i+1], f.Data[i+2], f.Data[i+3]}
}

// ReadField reads back the current value of a field.
func (s *Simulator) ReadField(mode Mode) (*Field, error) {
	if s.closed {
		return nil, ErrClosed
	}
	var t *pipeline.Texture2D
	switch mode {
	case Dye:
		t = s.dye.Read()
	case Velocity:
		t = s.velocity.Read()
	case Pressure:
		t = s.pressure.Read()
	default:
		return nil, fmt.Errorf("fluid: read field: unknown mode %v", mode)
	}
	return s.readTexture("read "+mode.String(), t)
}

// ReadObstacles reads back the obstacle mask: x is 1 inside solids and 0
// elsewhere.
func (s *Simulator) ReadObstacles() (*Field, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.obstacles == nil {
		return nil, ErrObstaclesDisabled
	}
	return s.readTexture("read obstacles", s.obstacles)
}

// ReadScreen reads back the default framebuffer, which holds the field
// drawn by the last Update.
func (s *Simulator) ReadScreen() (*Field, error) {
	if s.closed {
		return nil, ErrClosed
	}
	w, h := s.dev.DrawingBufferSize()
	data, err := s.dev.ReadPixels(gpucore.DefaultFramebuffer, 0, 0, w, h)
	if err != nil {
		return nil, renderError("read screen", err)
	}
	return &Field{Width: w, Height: h, Data: data}, nil
}

func (s *Simulator) readTexture(op string, t *pipeline.Texture2D) (*Field, error) {
	data, err := s.dev.ReadPixels(t.Framebuffer(), 0, 0, t.Width(), t.Height())
	if err != nil {
		return nil, renderError(op, err)
	}
	return &Field{Width: t.Width(), Height: t.Height(), Data: data}, nil
}
