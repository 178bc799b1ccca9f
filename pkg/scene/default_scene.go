package scene

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// DefaultCamera looks down -z from the origin at 1200x675 with 10 samples
func DefaultCamera() geometry.CameraConfig {
	return geometry.CameraConfig{
		LookFrom:   core.NewVec3(0, 0, 0),
		LookAt:     core.NewVec3(0, 0, -1),
		VUp:        core.NewVec3(0, 1, 0),
		Width:      1200,
		Height:     675,
		NumSamples: 10,
	}
}

// NewDefaultScene creates a blue diffuse sphere resting on a large yellow
// ground sphere.
func NewDefaultScene() *Scene {
	s := New(DefaultCamera(), DefaultMaxBounces)

	materialCenter := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	materialGround := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))

	s.AddSphere(core.NewVec3(0, 0, -1), 0.5, materialCenter)
	s.AddSphere(core.NewVec3(0, -100.5, -1), 100, materialGround)

	return s
}

// NewMaterialsScene lines up one sphere of each scattering material
func NewMaterialsScene() *Scene {
	camera := DefaultCamera()
	camera.LookFrom = core.NewVec3(0, 0.5, 1.5)
	camera.LookAt = core.NewVec3(0, 0, -1)
	camera.NumSamples = 64
	s := New(camera, DefaultMaxBounces)

	ground := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	center := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	glass := material.NewDielectric(1.5)
	gold := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3)
	silver := material.NewMetal(core.NewVec3(0.8, 0.8, 0.8), 0.0)

	s.AddSphere(core.NewVec3(0, -100.5, -1), 100, ground)
	s.AddSphere(core.NewVec3(0, 0, -1.2), 0.5, center)
	s.AddSphere(core.NewVec3(-1, 0, -1), 0.5, glass)
	// Air bubble inside the glass ball
	s.AddSphere(core.NewVec3(-1, 0, -1), 0.4, material.NewDielectric(1.0/1.5))
	s.AddSphere(core.NewVec3(1, 0, -1), 0.5, gold)
	s.AddSphere(core.NewVec3(0.35, -0.35, -0.55), 0.15, silver)

	return s
}

// NewNormalsScene renders every sphere with the normal visualisation
func NewNormalsScene() *Scene {
	camera := DefaultCamera()
	camera.NumSamples = 4
	s := New(camera, DefaultMaxBounces)

	normals := material.NewNormalDebug()
	s.AddSphere(core.NewVec3(0, 0, -1), 0.5, normals)
	s.AddSphere(core.NewVec3(-1.1, 0, -1.5), 0.4, normals)
	s.AddSphere(core.NewVec3(1.1, 0, -1.5), 0.4, normals)
	s.AddSphere(core.NewVec3(0, -100.5, -1), 100, normals)

	return s
}
