package core

import (
	"math/rand"
	"testing"
)

func TestPixelRNG_Deterministic(t *testing.T) {
	invocation := NewVec3U(17, 42, 0)
	seed := NewVec3U(0xdeadbeef, 12345, 987654321)

	a := NewPixelRNG(invocation, seed)
	b := NewPixelRNG(invocation, seed)

	for i := 0; i < 1000; i++ {
		va := a.Float()
		vb := b.Float()
		if va != vb {
			t.Fatalf("Draw %d differs: %f vs %f", i, va, vb)
		}
	}

	pa := a.InUnitSphere()
	pb := b.InUnitSphere()
	if !pa.Equals(pb) {
		t.Errorf("InUnitSphere differs: %v vs %v", pa, pb)
	}
}

func TestPixelRNG_KnownSequence(t *testing.T) {
	// Pin the first draws so the generator cannot drift silently across platforms
	rng := NewPixelRNG(NewVec3U(0, 0, 0), NewVec3U(0, 0, 0))
	first := rng.Uint32()

	again := NewPixelRNG(NewVec3U(0, 0, 0), NewVec3U(0, 0, 0))
	if got := again.Uint32(); got != first {
		t.Fatalf("Expected %d, got %d", first, got)
	}

	// The state after one step from zero is fully determined by the LCG constants
	zero := NewPixelRNG(NewVec3U(0, 0, 0), NewVec3U(0, 0, 0))
	zero.advance()
	s := zero.State()
	var x, y, z uint32 = 1013904223, 1013904223, 1013904223
	x += y * z
	y += z * x
	z += x * y
	x ^= x >> 16
	y ^= y >> 16
	z ^= z >> 16
	x += y * z
	y += z * x
	z += x * y
	if s != (Vec3U{x, y, z}) {
		t.Errorf("Expected state %v, got %v", Vec3U{x, y, z}, s)
	}
}

func TestPixelRNG_Range(t *testing.T) {
	rng := NewPixelRNG(NewVec3U(3, 9, 1), NewVec3U(1, 2, 3))

	var sum float64
	const n = 100000
	for i := 0; i < n; i++ {
		v := rng.Float()
		if v < 0 || v >= 1 {
			t.Fatalf("Draw %d out of [0,1): %f", i, v)
		}
		sum += float64(v)
	}

	mean := sum / n
	if mean < 0.49 || mean > 0.51 {
		t.Errorf("Expected mean near 0.5, got %f", mean)
	}
}

func TestPixelRNG_SeedsDecorrelate(t *testing.T) {
	tests := []struct {
		name string
		a, b PixelRNG
	}{
		{
			name: "neighbouring pixels",
			a:    NewPixelRNG(NewVec3U(10, 10, 0), NewVec3U(5, 5, 5)),
			b:    NewPixelRNG(NewVec3U(11, 10, 0), NewVec3U(5, 5, 5)),
		},
		{
			name: "consecutive frame seeds",
			a:    NewPixelRNG(NewVec3U(10, 10, 0), NewVec3U(5, 5, 5)),
			b:    NewPixelRNG(NewVec3U(10, 10, 0), NewVec3U(6, 5, 5)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			same := 0
			for i := 0; i < 64; i++ {
				if tt.a.Uint32() == tt.b.Uint32() {
					same++
				}
			}
			if same > 1 {
				t.Errorf("Streams too similar: %d of 64 draws identical", same)
			}
		})
	}
}

func TestPixelRNG_InUnitSphere(t *testing.T) {
	rng := NewPixelRNG(NewVec3U(1, 1, 0), NewVec3U(7, 7, 7))
	for i := 0; i < 10000; i++ {
		if p := rng.InUnitSphere(); p.Length() > 1.0+1e-5 {
			t.Fatalf("Point %d outside unit sphere: %v", i, p)
		}
	}
}

func TestSeedSequence_Distinct(t *testing.T) {
	seq := NewRandomSeedSequence(rand.New(rand.NewSource(1)))

	seen := make(map[Vec3U]int)
	for i := 0; i < 5000; i++ {
		seed := seq.Next()
		if prev, ok := seen[seed]; ok {
			t.Fatalf("Seed %v issued for dispatch %d and %d", seed, prev, i)
		}
		seen[seed] = i
	}

	if seq.Issued() != 5000 {
		t.Errorf("Expected 5000 issued seeds, got %d", seq.Issued())
	}
}

func TestSeedSequence_ResetAndSkip(t *testing.T) {
	seq := NewSeedSequence(NewVec3U(1, 2, 3))
	first := seq.Next()
	second := seq.Next()

	seq.Reset()
	if got := seq.Next(); got != first {
		t.Errorf("After reset expected %v, got %v", first, got)
	}

	seq.Reset()
	seq.Skip(1)
	if got := seq.Next(); got != second {
		t.Errorf("After skip expected %v, got %v", second, got)
	}
}
