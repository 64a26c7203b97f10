package fluid

import (
	"errors"
	"fmt"

	"github.com/gogpu/fluid/gpucore"
)

// Errors shared with the device layer, re-exported so callers need not
// import gpucore to test for them.
var (
	// ErrContextUnavailable is returned by New when the device can render
	// to neither float nor half-float textures.
	ErrContextUnavailable = gpucore.ErrContextUnavailable

	// ErrInvalidTextureUnit is returned when a pass binds a texture to a
	// unit at or above gpucore.MaxTextureUnits.
	ErrInvalidTextureUnit = gpucore.ErrInvalidTextureUnit
)

// Simulator errors.
var (
	// ErrObstaclesDisabled is returned by SetObstacle on a simulator
	// created with WithObstacles(false).
	ErrObstaclesDisabled = errors.New("fluid: obstacles disabled")

	// ErrInvalidResolution is returned for downscale factors other than
	// 1, 2, 4, 8 and 16.
	ErrInvalidResolution = errors.New("fluid: invalid resolution")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("fluid: simulator closed")
)

// Device error types, re-exported for errors.As.
type (
	ShaderCompileError = gpucore.ShaderCompileError
	ProgramLinkError   = gpucore.ProgramLinkError
	ResourceError      = gpucore.ResourceError
)

// RenderError reports a device failure during a frame, splat, obstacle
// update or resize. The operation is aborted; buffers keep the contents
// written by the passes that completed before the failure.
type RenderError struct {
	Op  string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("fluid: %s: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

func renderError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RenderError{Op: op, Err: err}
}
