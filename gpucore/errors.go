package gpucore

import (
	"errors"
	"fmt"
)

// Common device errors.
var (
	// ErrContextUnavailable is returned when no usable GPU context or
	// extension set exists.
	ErrContextUnavailable = errors.New("gpucore: no compatible GPU context available")

	// ErrInvalidTextureUnit is returned when binding to a unit at or above
	// MaxTextureUnits.
	ErrInvalidTextureUnit = errors.New("gpucore: invalid texture unit")

	// ErrDeviceLost is returned by draws after the device stopped working.
	ErrDeviceLost = errors.New("gpucore: device lost")

	// ErrDeviceClosed is returned when a closed device is used.
	ErrDeviceClosed = errors.New("gpucore: device closed")

	// ErrUnknownResource is returned when an ID does not name a live
	// resource.
	ErrUnknownResource = errors.New("gpucore: unknown resource")
)

// ShaderCompileError reports a shader unit that failed to compile.
type ShaderCompileError struct {
	Label string
	Stage ShaderStage
	Log   string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("gpucore: compile %s shader %q: %s", e.Stage, e.Label, e.Log)
}

// ProgramLinkError reports a program that failed to link.
type ProgramLinkError struct {
	Label string
	Log   string
}

func (e *ProgramLinkError) Error() string {
	return fmt.Sprintf("gpucore: link program %q: %s", e.Label, e.Log)
}

// ResourceError reports a failed texture, framebuffer or buffer allocation.
type ResourceError struct {
	Resource string
	Width    int
	Height   int
	Err      error
}

func (e *ResourceError) Error() string {
	if e.Width != 0 || e.Height != 0 {
		return fmt.Sprintf("gpucore: allocate %s %dx%d: %v", e.Resource, e.Width, e.Height, e.Err)
	}
	return fmt.Sprintf("gpucore: allocate %s: %v", e.Resource, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }
