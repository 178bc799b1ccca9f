package geometry

import "github.com/df07/go-sphere-pathtracer/pkg/core"

// HitRecord contains information about a ray-object intersection. It is
// only meaningful right after the intersection test that produced it.
type HitRecord struct {
	Point      core.Vec3 // Point of intersection
	Normal     core.Vec3 // Unit surface normal, always facing against the ray
	T          float32   // Parameter t along the ray
	FrontFace  bool      // Whether the ray origin was outside the surface
	MaterialID uint32    // Index into the scene material list
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}

// Shape interface for objects that can be hit by rays
type Shape interface {
	Hit(ray core.Ray, tMin, tMax float32) (HitRecord, bool)
}
