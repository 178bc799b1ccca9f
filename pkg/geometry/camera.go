package geometry

import (
	"errors"
	"fmt"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// CameraConfig contains the inputs a camera is built from
type CameraConfig struct {
	LookFrom   core.Vec3 // Eye position
	LookAt     core.Vec3 // Point the camera looks at
	VUp        core.Vec3 // Up direction used to build the basis
	Width      int       // Output width in pixels
	Height     int       // Output height in pixels
	NumSamples int       // Samples to accumulate per pixel
}

// Camera maps pixel coordinates to world space rays. The viewport sits at the
// look-at distance and is twice that distance tall, so the vertical field of
// view is fixed. A camera is immutable while a render is in progress.
type Camera struct {
	LookFrom     core.Vec3
	LookAt       core.Vec3
	VUp          core.Vec3
	TopLeftPixel core.Vec3 // World position of the center of pixel (0, 0)
	DeltaU       core.Vec3 // Step between horizontally adjacent pixels
	DeltaV       core.Vec3 // Step between vertically adjacent pixels
	Width        int
	Height       int
	NumSamples   int
}

// ErrDegenerateCamera is returned when the pose cannot produce a basis
var ErrDegenerateCamera = errors.New("camera: degenerate orientation")

// NewCamera builds the viewport basis from the configuration
func NewCamera(config CameraConfig) (*Camera, error) {
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("camera: invalid resolution %dx%d", config.Width, config.Height)
	}
	if config.NumSamples <= 0 {
		return nil, fmt.Errorf("camera: sample count must be positive, got %d", config.NumSamples)
	}
	if !config.LookFrom.IsFinite() || !config.LookAt.IsFinite() || !config.VUp.IsFinite() {
		return nil, fmt.Errorf("%w: non-finite pose", ErrDegenerateCamera)
	}

	imageWidth := float32(config.Width)
	imageHeight := float32(config.Height)
	aspectRatio := imageWidth / imageHeight

	focalLength := config.LookAt.Subtract(config.LookFrom).Length()
	if focalLength == 0 {
		return nil, fmt.Errorf("%w: look-from equals look-at", ErrDegenerateCamera)
	}
	viewportHeight := 2.0 * focalLength
	viewportWidth := viewportHeight * aspectRatio

	// Orthonormal basis: w points backwards, u right, v up
	w := config.LookFrom.Subtract(config.LookAt).Normalize()
	u := config.VUp.Cross(w)
	if u.LengthSquared() == 0 {
		return nil, fmt.Errorf("%w: up vector parallel to view direction", ErrDegenerateCamera)
	}
	u = u.Normalize()
	v := w.Cross(u)

	viewportU := u.Multiply(viewportWidth)
	viewportV := v.Multiply(-viewportHeight)

	deltaU := viewportU.Multiply(1.0 / imageWidth)
	deltaV := viewportV.Multiply(1.0 / imageHeight)

	topLeft := config.LookFrom.
		Subtract(w.Multiply(focalLength)).
		Subtract(viewportU.Multiply(0.5)).
		Subtract(viewportV.Multiply(0.5))
	topLeftPixel := topLeft.Add(deltaU.Multiply(0.5)).Add(deltaV.Multiply(0.5))

	return &Camera{
		LookFrom:     config.LookFrom,
		LookAt:       config.LookAt,
		VUp:          config.VUp,
		TopLeftPixel: topLeftPixel,
		DeltaU:       deltaU,
		DeltaV:       deltaV,
		Width:        config.Width,
		Height:       config.Height,
		NumSamples:   config.NumSamples,
	}, nil
}

// Config returns the configuration the camera was built from
func (c *Camera) Config() CameraConfig {
	return CameraConfig{
		LookFrom:   c.LookFrom,
		LookAt:     c.LookAt,
		VUp:        c.VUp,
		Width:      c.Width,
		Height:     c.Height,
		NumSamples: c.NumSamples,
	}
}

// PixelTarget returns the world space point pixel coordinate (u, v) looks at.
// Integer coordinates address pixel centers.
func (c *Camera) PixelTarget(u, v float32) core.Vec3 {
	return c.TopLeftPixel.Add(c.DeltaU.Multiply(u)).Add(c.DeltaV.Multiply(v))
}

// RayThrough returns the unjittered ray through pixel coordinate (u, v)
func (c *Camera) RayThrough(u, v float32) core.Ray {
	return core.NewRay(c.LookFrom, c.PixelTarget(u, v).Subtract(c.LookFrom))
}

// GetRay returns a primary ray for pixel (x, y) jittered within the pixel
// footprint by [-0.5, 0.5) in both directions. A nil sampler disables jitter.
func (c *Camera) GetRay(x, y int, sampler core.Sampler) core.Ray {
	u, v := float32(x), float32(y)
	if sampler != nil {
		ju, jv := sampler.Get2D()
		u += ju - 0.5
		v += jv - 0.5
	}
	return c.RayThrough(u, v)
}

// Translated returns a new camera with the look-from point moved by delta.
// The look-at point stays fixed, so the orientation follows the target.
func (c *Camera) Translated(delta core.Vec3) (*Camera, error) {
	config := c.Config()
	config.LookFrom = config.LookFrom.Add(delta)
	return NewCamera(config)
}

// Resized returns a new camera with a different output resolution
func (c *Camera) Resized(width, height int) (*Camera, error) {
	config := c.Config()
	config.Width = width
	config.Height = height
	return NewCamera(config)
}
