package core

import (
	"math/rand"

	"github.com/chewxy/math32"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float32
	Get2D() (float32, float32)
	Get3D() Vec3
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// Get1D returns a random float32 in [0, 1)
func (r *RandomSampler) Get1D() float32 {
	return r.random.Float32()
}

// Get2D returns two random float32 values in [0, 1)
func (r *RandomSampler) Get2D() (float32, float32) {
	return r.random.Float32(), r.random.Float32()
}

// Get3D returns three random float32 values in [0, 1)
func (r *RandomSampler) Get3D() Vec3 {
	return NewVec3(r.random.Float32(), r.random.Float32(), r.random.Float32())
}

// FixedSampler returns the same value for every draw. It turns the kernel
// into a deterministic function of its inputs.
type FixedSampler struct {
	Value float32
}

// Get1D returns the fixed value
func (f FixedSampler) Get1D() float32 { return f.Value }

// Get2D returns the fixed value twice
func (f FixedSampler) Get2D() (float32, float32) { return f.Value, f.Value }

// Get3D returns the fixed value in every component
func (f FixedSampler) Get3D() Vec3 { return NewVec3(f.Value, f.Value, f.Value) }

// SamplePointInUnitSphere generates a random point inside a unit sphere using spherical coordinates
// This avoids rejection sampling by using the inverse CDF method
func SamplePointInUnitSphere(sample Vec3) Vec3 {
	// φ = 2π * u₁ (azimuth)
	// θ = acos(2 * u₂ - 1) (polar angle, cos θ uniform on [-1,1])
	// r = ∛(u₃) to account for volume scaling
	phi := 2 * math32.Pi * sample.X
	cosTheta := max(-1, min(1, 2*sample.Y-1))
	theta := math32.Acos(cosTheta)
	r := math32.Pow(sample.Z, 1.0/3.0)

	sinTheta := math32.Sin(theta)
	return NewVec3(
		r*sinTheta*math32.Cos(phi),
		r*sinTheta*math32.Sin(phi),
		r*cosTheta,
	)
}

// RandomInUnitSphere draws a uniform point inside the unit sphere from the sampler
func RandomInUnitSphere(sampler Sampler) Vec3 {
	return SamplePointInUnitSphere(sampler.Get3D())
}
