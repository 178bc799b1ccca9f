package geometry

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// Sphere represents a sphere shape tagged with a material index
type Sphere struct {
	Center     core.Vec3
	Radius     float32
	MaterialID uint32
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float32, materialID uint32) Sphere {
	return Sphere{
		Center:     center,
		Radius:     radius,
		MaterialID: materialID,
	}
}

// Validate checks the sphere can be handed to the kernel
func (s Sphere) Validate() error {
	if !s.Center.IsFinite() {
		return fmt.Errorf("center %v is not finite", s.Center)
	}
	if math32.IsNaN(s.Radius) || math32.IsInf(s.Radius, 0) || s.Radius <= 0 {
		return fmt.Errorf("radius must be positive and finite, got %g", s.Radius)
	}
	return nil
}

// Hit tests if a ray intersects with the sphere. Only roots strictly inside
// (tMin, tMax) are accepted.
func (s Sphere) Hit(ray core.Ray, tMin, tMax float32) (HitRecord, bool) {
	// Vector from ray origin to sphere center
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + 2·halfB·t + c = 0
	a := ray.Direction.LengthSquared()
	if a == 0 {
		return HitRecord{}, false
	}
	halfB := oc.Dot(ray.Direction)
	c := oc.LengthSquared() - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return HitRecord{}, false
	}

	var root float32
	if discriminant == 0 {
		// Tangent ray: a single root
		root = -halfB / a
		if !inOpenRange(root, tMin, tMax) {
			return HitRecord{}, false
		}
	} else {
		sqrtD := math32.Sqrt(discriminant)

		// Try the closer intersection point first
		root = (-halfB - sqrtD) / a
		if !inOpenRange(root, tMin, tMax) {
			root = (-halfB + sqrtD) / a
			if !inOpenRange(root, tMin, tMax) {
				return HitRecord{}, false
			}
		}
	}

	hit := HitRecord{
		T:          root,
		Point:      ray.At(root),
		MaterialID: s.MaterialID,
	}

	// Calculate outward normal (from center to hit point)
	outwardNormal := hit.Point.Subtract(s.Center).Multiply(1.0 / s.Radius)
	hit.SetFaceNormal(ray, outwardNormal)

	return hit, true
}

func inOpenRange(t, tMin, tMax float32) bool {
	return tMin < t && t < tMax
}
