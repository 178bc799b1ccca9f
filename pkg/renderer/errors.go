package renderer

import "errors"

var (
	// ErrUnknownMaterial is returned by a strict dispatch that traced a path
	// into a material it could not resolve.
	ErrUnknownMaterial = errors.New("renderer: unknown material in scene")
	// ErrInterrupted is returned when the context is cancelled between dispatches
	ErrInterrupted = errors.New("renderer: render interrupted")
	// ErrRenderInProgress is returned when the camera is changed mid-render
	ErrRenderInProgress = errors.New("renderer: render in progress")
	// ErrClosed is returned when rendering is attempted after Close
	ErrClosed = errors.New("renderer: closed")
)
