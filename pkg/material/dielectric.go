package material

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
)

// Dielectric represents a transparent material like glass that can both reflect and refract
type Dielectric struct {
	RefractIndex float32 // Index of refraction (e.g., 1.5 for glass)
}

// NewDielectric creates a new dielectric material
func NewDielectric(refractIndex float32) *Dielectric {
	return &Dielectric{RefractIndex: refractIndex}
}

func (d *Dielectric) Type() Type { return TypeDielectric }
func (d *Dielectric) sealed()    {}

// Validate requires a positive finite index
func (d *Dielectric) Validate() error {
	if !(d.RefractIndex > 0) || math32.IsInf(d.RefractIndex, 0) {
		return fmt.Errorf("refract index %v must be positive and finite", d.RefractIndex)
	}
	return nil
}

func (d *Dielectric) scatter(rayIn core.Ray, hit geometry.HitRecord, sampler core.Sampler) ScatterResult {
	var refractionRatio float32
	if hit.FrontFace {
		refractionRatio = 1.0 / d.RefractIndex // Entering the material
	} else {
		refractionRatio = d.RefractIndex // Exiting the material
	}

	unitDirection := rayIn.Direction.Normalize()

	cosTheta := min(-unitDirection.Dot(hit.Normal), 1.0)
	sinTheta := math32.Sqrt(1.0 - cosTheta*cosTheta)

	// Total internal reflection
	cannotRefract := refractionRatio*sinTheta > 1.0

	var direction core.Vec3
	if cannotRefract || Reflectance(cosTheta, refractionRatio) > sampler.Get1D() {
		direction = reflect(unitDirection, hit.Normal)
	} else {
		direction = refract(unitDirection, hit.Normal, refractionRatio)
	}

	// Clear glass does not absorb
	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction),
		Attenuation: core.NewVec3(1, 1, 1),
	}
}

// refract calculates the refraction of a unit vector using Snell's law
func refract(uv, n core.Vec3, etaiOverEtat float32) core.Vec3 {
	cosTheta := min(-uv.Dot(n), 1.0)
	rOutPerp := uv.Add(n.Multiply(cosTheta)).Multiply(etaiOverEtat)
	rOutParallel := n.Multiply(-math32.Sqrt(math32.Abs(1.0 - rOutPerp.LengthSquared())))
	return rOutPerp.Add(rOutParallel)
}

// Reflectance calculates the Fresnel reflectance using Schlick's approximation
func Reflectance(cosine, refractionRatio float32) float32 {
	r0 := (1 - refractionRatio) / (1 + refractionRatio)
	r0 = r0 * r0
	return r0 + (1-r0)*math32.Pow(1-cosine, 5)
}
