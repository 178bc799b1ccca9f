package scene

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// DefaultMaxBounces is the bounce budget used when a scene does not set one
const DefaultMaxBounces = 50

// Scene contains all the elements needed for rendering: an ordered sphere
// list whose MaterialID fields index into Materials.
type Scene struct {
	Camera     geometry.CameraConfig
	Spheres    []geometry.Sphere
	Materials  []material.Material
	MaxBounces int
}

// New creates an empty scene for the given camera
func New(camera geometry.CameraConfig, maxBounces int) *Scene {
	return &Scene{
		Camera:     camera,
		Spheres:    make([]geometry.Sphere, 0),
		Materials:  make([]material.Material, 0),
		MaxBounces: maxBounces,
	}
}

// AddMaterial appends m unless an identical material is already present and
// returns its index either way.
func (s *Scene) AddMaterial(m material.Material) uint32 {
	for i, existing := range s.Materials {
		if material.Equal(existing, m) {
			return uint32(i)
		}
	}
	s.Materials = append(s.Materials, m)
	return uint32(len(s.Materials) - 1)
}

// AddSphere adds a sphere shaded with m, sharing the material slot with any
// earlier sphere that uses identical parameters.
func (s *Scene) AddSphere(center core.Vec3, radius float32, m material.Material) geometry.Sphere {
	sphere := geometry.NewSphere(center, radius, s.AddMaterial(m))
	s.Spheres = append(s.Spheres, sphere)
	return sphere
}

// World returns the intersection view of the sphere list
func (s *Scene) World() *geometry.World {
	return geometry.NewWorld(s.Spheres)
}

// NewCamera builds the camera described by the scene
func (s *Scene) NewCamera() (*geometry.Camera, error) {
	return geometry.NewCamera(s.Camera)
}

// WithCamera returns a shallow copy of the scene using a different camera
func (s *Scene) WithCamera(camera geometry.CameraConfig) *Scene {
	clone := *s
	clone.Camera = camera
	return &clone
}

// MaterialCounts tallies spheres per material type
func (s *Scene) MaterialCounts() map[material.Type]int {
	counts := make(map[material.Type]int)
	for _, sphere := range s.Spheres {
		if int(sphere.MaterialID) < len(s.Materials) && s.Materials[sphere.MaterialID] != nil {
			counts[s.Materials[sphere.MaterialID].Type()]++
		}
	}
	return counts
}
