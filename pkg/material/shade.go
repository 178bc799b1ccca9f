package material

import (
	"fmt"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
)

// Shade dispatches a hit to the material that was struck. A nil material
// yields a terminal SentinelColor result together with ErrUnknownMaterial.
func Shade(m Material, rayIn core.Ray, hit geometry.HitRecord, sampler core.Sampler) (ScatterResult, error) {
	switch m := m.(type) {
	case *Lambertian:
		return m.scatter(hit, sampler), nil
	case *Metal:
		return m.scatter(rayIn, hit, sampler), nil
	case *Dielectric:
		return m.scatter(rayIn, hit, sampler), nil
	case *NormalDebug:
		return m.shade(hit), nil
	default:
		return ScatterResult{Radiance: SentinelColor, Terminal: true},
			fmt.Errorf("%w: %T", ErrUnknownMaterial, m)
	}
}

// reflect calculates the reflection of a vector v off a surface with normal n
func reflect(v, n core.Vec3) core.Vec3 {
	// r = v - 2*dot(v,n)*n
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}
