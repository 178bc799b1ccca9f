package core

import "math/rand"

// invocationMultiplier spreads neighbouring pixel ids across the state space
// before they are combined with the frame seed.
const invocationMultiplier uint32 = 1099087573

// floatScale maps the top 24 bits of a lane to [0, 1). 24 bits is what a
// float32 mantissa holds exactly, so the result can never round up to 1.
const floatScale = float32(1.0 / (1 << 24))

// PixelRNG is the per-invocation pseudo random stream used by the kernel.
// One value is owned by each pixel for each sample dispatch and is never
// shared. It is a PCG3D style generator: a lane-wise LCG step followed by
// cross-lane multiply mixing and a 16 bit xor-shift.
//
// PixelRNG implements Sampler.
type PixelRNG struct {
	state Vec3U
}

// NewPixelRNG seeds a stream from an invocation id (pixel x, y and an
// optional invocation index) and the frame seed of the current dispatch.
func NewPixelRNG(invocation, frameSeed Vec3U) PixelRNG {
	return PixelRNG{state: Vec3U{
		X: invocation.X*invocationMultiplier ^ frameSeed.X,
		Y: invocation.Y*invocationMultiplier ^ frameSeed.Y,
		Z: invocation.Z*invocationMultiplier ^ frameSeed.Z,
	}}
}

// State returns the current internal state
func (r *PixelRNG) State() Vec3U {
	return r.state
}

func (r *PixelRNG) advance() {
	s := &r.state
	s.X = s.X*1664525 + 1013904223
	s.Y = s.Y*1664525 + 1013904223
	s.Z = s.Z*1664525 + 1013904223

	s.X += s.Y * s.Z
	s.Y += s.Z * s.X
	s.Z += s.X * s.Y

	s.X ^= s.X >> 16
	s.Y ^= s.Y >> 16
	s.Z ^= s.Z >> 16

	s.X += s.Y * s.Z
	s.Y += s.Z * s.X
	s.Z += s.X * s.Y
}

// Uint32 advances the stream and returns the xor of the first two lanes
func (r *PixelRNG) Uint32() uint32 {
	r.advance()
	return r.state.X ^ r.state.Y
}

// Float returns a uniform value in [0, 1)
func (r *PixelRNG) Float() float32 {
	return float32(r.Uint32()>>8) * floatScale
}

// InUnitSphere returns a uniformly distributed point inside the unit sphere
func (r *PixelRNG) InUnitSphere() Vec3 {
	return SamplePointInUnitSphere(r.Get3D())
}

// Get1D returns a uniform value in [0, 1)
func (r *PixelRNG) Get1D() float32 {
	return r.Float()
}

// Get2D returns two uniform values in [0, 1)
func (r *PixelRNG) Get2D() (float32, float32) {
	u := r.Float()
	v := r.Float()
	return u, v
}

// Get3D returns three uniform values in [0, 1)
func (r *PixelRNG) Get3D() Vec3 {
	x := r.Float()
	y := r.Float()
	z := r.Float()
	return NewVec3(x, y, z)
}

// SeedSequence hands out one frame seed per sample dispatch. The X lane is
// the base xor'ed with the dispatch index, so no two seeds of a sequence are
// equal until the index wraps at 2^32.
type SeedSequence struct {
	base Vec3U
	next uint32
}

// NewSeedSequence creates a sequence starting at index 0 from a fixed base
func NewSeedSequence(base Vec3U) *SeedSequence {
	return &SeedSequence{base: base}
}

// NewRandomSeedSequence draws the base from random
func NewRandomSeedSequence(random *rand.Rand) *SeedSequence {
	return NewSeedSequence(Vec3U{X: random.Uint32(), Y: random.Uint32(), Z: random.Uint32()})
}

// Next returns the seed for the next dispatch
func (s *SeedSequence) Next() Vec3U {
	i := s.next
	s.next++
	h := mix32(i)
	return Vec3U{
		X: s.base.X ^ i,
		Y: s.base.Y ^ h,
		Z: s.base.Z ^ mix32(h),
	}
}

// Issued returns how many seeds have been handed out
func (s *SeedSequence) Issued() uint32 {
	return s.next
}

// Reset rewinds the sequence to index 0
func (s *SeedSequence) Reset() {
	s.next = 0
}

// Skip advances the sequence by n seeds, used when resuming a render
func (s *SeedSequence) Skip(n uint32) {
	s.next += n
}

// mix32 is the murmur3 finalizer
func mix32(h uint32) uint32 {
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	return h
}
