package geometry

import (
	"github.com/chewxy/math32"
	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// TMin is the lower bound used for every primary and secondary ray. It keeps
// a scattered ray from re-hitting the surface it starts on.
const TMin float32 = 0.001

// TMax is the open upper bound for an unbounded ray
const TMax float32 = math32.MaxFloat32

// World is the list of spheres the kernel traverses. There is no
// acceleration structure: every query scans all spheres.
type World struct {
	Spheres []Sphere
}

// NewWorld creates a world over the given spheres
func NewWorld(spheres []Sphere) *World {
	return &World{Spheres: spheres}
}

// Intersect returns the closest hit with tMin < t < tMax. tMax is tightened
// to each accepted hit so list order never matters.
func (w *World) Intersect(ray core.Ray, tMin, tMax float32) (HitRecord, bool) {
	var closest HitRecord
	closestSoFar := tMax
	hitAnything := false

	for i := range w.Spheres {
		if hit, isHit := w.Spheres[i].Hit(ray, tMin, closestSoFar); isHit {
			hitAnything = true
			closestSoFar = hit.T
			closest = hit
		}
	}

	return closest, hitAnything
}

// Hit implements Shape
func (w *World) Hit(ray core.Ray, tMin, tMax float32) (HitRecord, bool) {
	return w.Intersect(ray, tMin, tMax)
}
