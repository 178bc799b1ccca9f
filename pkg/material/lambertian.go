package material

import (
	"fmt"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
)

// nearZeroEpsilon is the per-component threshold below which a scatter
// direction is treated as degenerate.
const nearZeroEpsilon = 1e-8

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo core.Vec3 // Per-channel reflectance in [0, 1]
}

// NewLambertian creates a new lambertian material
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

func (l *Lambertian) Type() Type { return TypeLambertian }
func (l *Lambertian) sealed()    {}

// Validate checks the albedo range
func (l *Lambertian) Validate() error {
	return validateAlbedo(l.Albedo)
}

func (l *Lambertian) scatter(hit geometry.HitRecord, sampler core.Sampler) ScatterResult {
	direction := lambertianDirection(hit.Normal, core.RandomInUnitSphere(sampler))
	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction),
		Attenuation: l.Albedo,
	}
}

// lambertianDirection offsets the normal by a point in the unit sphere and
// falls back to the normal when the two cancel out.
func lambertianDirection(normal, offset core.Vec3) core.Vec3 {
	direction := normal.Add(offset)
	if direction.NearZero(nearZeroEpsilon) {
		return normal
	}
	return direction
}

func validateAlbedo(albedo core.Vec3) error {
	if !albedo.IsFinite() {
		return fmt.Errorf("albedo %v is not finite", albedo)
	}
	for _, c := range []float32{albedo.X, albedo.Y, albedo.Z} {
		if c < 0 || c > 1 {
			return fmt.Errorf("albedo %v outside [0, 1]", albedo)
		}
	}
	return nil
}
