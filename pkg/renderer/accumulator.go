package renderer

import (
	"fmt"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"golang.org/x/image/math/f32"
)

// Accumulator is the running per-pixel radiance sum across sample
// dispatches. RGB hold the sum and A counts the samples the pixel received.
// During a dispatch each pixel is owned by exactly one worker, so Add needs
// no locking.
type Accumulator struct {
	width, height int
	pixels        []f32.Vec4
	samples       int
}

// NewAccumulator creates a zeroed buffer
func NewAccumulator(width, height int) *Accumulator {
	return &Accumulator{
		width:  width,
		height: height,
		pixels: make([]f32.Vec4, width*height),
	}
}

// Width returns the buffer width in pixels
func (a *Accumulator) Width() int { return a.width }

// Height returns the buffer height in pixels
func (a *Accumulator) Height() int { return a.height }

// Samples returns the number of completed sample dispatches
func (a *Accumulator) Samples() int { return a.samples }

// Add adds one sample's radiance into pixel (x, y)
func (a *Accumulator) Add(x, y int, c core.Vec3) {
	p := &a.pixels[y*a.width+x]
	p[0] += c.X
	p[1] += c.Y
	p[2] += c.Z
	p[3]++
}

// completeSample records that a dispatch covered every pixel
func (a *Accumulator) completeSample() {
	a.samples++
}

// Pixel returns the raw accumulated value of pixel (x, y)
func (a *Accumulator) Pixel(x, y int) f32.Vec4 {
	return a.pixels[y*a.width+x]
}

// Sum returns the accumulated radiance of pixel (x, y)
func (a *Accumulator) Sum(x, y int) core.Vec3 {
	p := a.pixels[y*a.width+x]
	return core.NewVec3(p[0], p[1], p[2])
}

// Resolve returns the mean radiance of pixel (x, y), black before the first sample
func (a *Accumulator) Resolve(x, y int) core.Vec3 {
	if a.samples == 0 {
		return core.Vec3{}
	}
	return a.Sum(x, y).Multiply(1.0 / float32(a.samples))
}

// Reset zeroes the buffer. Called whenever the camera changes.
func (a *Accumulator) Reset() {
	clear(a.pixels)
	a.samples = 0
}

// Snapshot returns a copy of the raw RGBA floats in row-major order
func (a *Accumulator) Snapshot() []float32 {
	out := make([]float32, 0, len(a.pixels)*4)
	for _, p := range a.pixels {
		out = append(out, p[0], p[1], p[2], p[3])
	}
	return out
}

// Restore replaces the buffer contents with a snapshot taken after samples
// dispatches.
func (a *Accumulator) Restore(data []float32, samples int) error {
	if len(data) != len(a.pixels)*4 {
		return fmt.Errorf("accumulator: snapshot has %d floats, need %d for %dx%d",
			len(data), len(a.pixels)*4, a.width, a.height)
	}
	if samples < 0 {
		return fmt.Errorf("accumulator: negative sample count %d", samples)
	}
	for i := range a.pixels {
		a.pixels[i] = f32.Vec4{data[i*4], data[i*4+1], data[i*4+2], data[i*4+3]}
	}
	a.samples = samples
	return nil
}
