package material

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
)

// Metal represents a metallic material with specular reflection
type Metal struct {
	Albedo core.Vec3 // Metal color
	Fuzz   float32   // 0.0 = perfect mirror, 1.0 = very fuzzy
}

// NewMetal creates a new metal material
func NewMetal(albedo core.Vec3, fuzz float32) *Metal {
	// Clamp fuzz to valid range
	if fuzz > 1.0 {
		fuzz = 1.0
	}
	if fuzz < 0.0 {
		fuzz = 0.0
	}
	return &Metal{Albedo: albedo, Fuzz: fuzz}
}

func (m *Metal) Type() Type { return TypeMetal }
func (m *Metal) sealed()    {}

// Validate checks albedo and fuzz ranges
func (m *Metal) Validate() error {
	if err := validateAlbedo(m.Albedo); err != nil {
		return err
	}
	if math32.IsNaN(m.Fuzz) || m.Fuzz < 0 || m.Fuzz > 1 {
		return fmt.Errorf("fuzz %v outside [0, 1]", m.Fuzz)
	}
	return nil
}

// scatter never absorbs: a fuzzed ray that ends up below the surface is
// left to the next intersection test.
func (m *Metal) scatter(rayIn core.Ray, hit geometry.HitRecord, sampler core.Sampler) ScatterResult {
	reflected := reflect(rayIn.Direction.Normalize(), hit.Normal)

	if m.Fuzz > 0 {
		reflected = reflected.Add(core.RandomInUnitSphere(sampler).Multiply(m.Fuzz))
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, reflected),
		Attenuation: m.Albedo,
	}
}
