package core

import (
	"math/rand"
	"testing"
)

func TestSamplePointInUnitSphere_InsideSphere(t *testing.T) {
	random := rand.New(rand.NewSource(42))
	sampler := NewRandomSampler(random)

	for i := 0; i < 10000; i++ {
		p := RandomInUnitSphere(sampler)
		if p.Length() > 1.0+1e-5 {
			t.Fatalf("Sample %d outside unit sphere: %v (length %f)", i, p, p.Length())
		}
	}
}

func TestSamplePointInUnitSphere_Corners(t *testing.T) {
	tests := []struct {
		name     string
		sample   Vec3
		expected Vec3
	}{
		{"north pole", NewVec3(0, 1, 1), NewVec3(0, 0, 1)},
		{"south pole", NewVec3(0, 0, 1), NewVec3(0, 0, -1)},
		{"equator +x", NewVec3(0, 0.5, 1), NewVec3(1, 0, 0)},
		{"center", NewVec3(0.3, 0.7, 0), NewVec3(0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := SamplePointInUnitSphere(tt.sample)
			if p.Subtract(tt.expected).Length() > 1e-5 {
				t.Errorf("Expected %v, got %v", tt.expected, p)
			}
		})
	}
}

func TestSamplePointInUnitSphere_Uniformity(t *testing.T) {
	random := rand.New(rand.NewSource(7))
	sampler := NewRandomSampler(random)

	// For a uniform ball P(r < 0.5) = 0.125 and the mean is the origin
	const n = 200000
	inner := 0
	var sum Vec3
	for i := 0; i < n; i++ {
		p := RandomInUnitSphere(sampler)
		if p.Length() < 0.5 {
			inner++
		}
		sum = sum.Add(p)
	}

	fraction := float64(inner) / n
	if fraction < 0.115 || fraction > 0.135 {
		t.Errorf("Expected ~12.5%% of samples within r<0.5, got %.2f%%", fraction*100)
	}

	mean := sum.Multiply(1.0 / n)
	if mean.Length() > 0.01 {
		t.Errorf("Expected mean near origin, got %v", mean)
	}
}

func TestFixedSampler(t *testing.T) {
	s := FixedSampler{Value: 0.25}
	if s.Get1D() != 0.25 {
		t.Errorf("Get1D: expected 0.25, got %f", s.Get1D())
	}
	u, v := s.Get2D()
	if u != 0.25 || v != 0.25 {
		t.Errorf("Get2D: expected (0.25, 0.25), got (%f, %f)", u, v)
	}
	if !s.Get3D().Equals(NewVec3(0.25, 0.25, 0.25)) {
		t.Errorf("Get3D: unexpected %v", s.Get3D())
	}
}
