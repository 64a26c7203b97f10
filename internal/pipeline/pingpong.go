package pipeline

import "github.com/gogpu/fluid/gpucore"

// PingPongBuffer pairs two identical textures: Read holds the current
// value, Write is the target of the next pass. Swap exchanges the roles.
type PingPongBuffer struct {
	dev    gpucore.Device
	label  string
	read   *Texture2D
	write  *Texture2D
	format gpucore.PixelFormat
	filter gpucore.FilterMode
}

// NewPingPongBuffer allocates both textures of a buffer.
func NewPingPongBuffer(dev gpucore.Device, label string, width, height int, format gpucore.PixelFormat, filter gpucore.FilterMode) (*PingPongBuffer, error) {
	b := &PingPongBuffer{dev: dev, label: label, format: format, filter: filter}
	read, write, err := b.allocate(width, height)
	if err != nil {
		return nil, err
	}
	b.read, b.write = read, write
	return b, nil
}

func (b *PingPongBuffer) allocate(width, height int) (read, write *Texture2D, err error) {
	read, err = NewTexture2D(b.dev, b.label+".read", width, height, b.format, b.filter)
	if err != nil {
		return nil, nil, err
	}
	write, err = NewTexture2D(b.dev, b.label+".write", width, height, b.format, b.filter)
	if err != nil {
		read.Destroy()
		return nil, nil, err
	}
	return read, write, nil
}

// Read returns the texture holding the current value.
func (b *PingPongBuffer) Read() *Texture2D { return b.read }

// Write returns the scratch texture the next pass renders into.
func (b *PingPongBuffer) Write() *Texture2D { return b.write }

// Width returns the width of both textures.
func (b *PingPongBuffer) Width() int { return b.read.width }

// Height returns the height of both textures.
func (b *PingPongBuffer) Height() int { return b.read.height }

// Swap exchanges the read and write roles.
func (b *PingPongBuffer) Swap() {
	b.read, b.write = b.write, b.read
}

// Resize reallocates both textures when the size changes. When cp is not
// nil the current content is resampled into the new read texture, so the
// field survives the resize. On failure the old textures stay installed.
func (b *PingPongBuffer) Resize(width, height int, cp *CopyProgram) error {
	st, err := b.Stage(width, height, cp)
	if err != nil {
		return err
	}
	st.Commit()
	return nil
}

// Staged is a reallocated texture pair that is not yet installed. Callers
// resizing several buffers together stage them all and commit only once
// every allocation succeeded. A nil *Staged means the size was unchanged.
type Staged struct {
	buf   *PingPongBuffer
	read  *Texture2D
	write *Texture2D
}

// Stage allocates the textures for a new size and, when cp is not nil,
// resamples the current content into them. The buffer itself is not
// touched until Commit.
func (b *PingPongBuffer) Stage(width, height int, cp *CopyProgram) (*Staged, error) {
	if width == b.read.width && height == b.read.height {
		return nil, nil
	}
	read, write, err := b.allocate(width, height)
	if err != nil {
		return nil, err
	}
	if cp != nil {
		if err := cp.Run(b.read, read, 1, 0, false); err != nil {
			read.Destroy()
			write.Destroy()
			return nil, err
		}
	}
	return &Staged{buf: b, read: read, write: write}, nil
}

// Commit installs the staged pair and destroys the old one.
func (st *Staged) Commit() {
	if st == nil || st.buf == nil {
		return
	}
	b := st.buf
	b.read.Destroy()
	b.write.Destroy()
	b.read, b.write = st.read, st.write
	st.buf = nil
}

// Discard destroys the staged pair. The buffer keeps its textures.
func (st *Staged) Discard() {
	if st == nil || st.buf == nil {
		return
	}
	st.read.Destroy()
	st.write.Destroy()
	st.buf = nil
}

// Destroy releases both textures.
func (b *PingPongBuffer) Destroy() {
	b.read.Destroy()
	b.write.Destroy()
}
