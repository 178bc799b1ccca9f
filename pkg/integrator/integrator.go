package integrator

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// Termination records why a path stopped
type Termination int

const (
	TerminationSky             Termination = iota // Escaped into the sky gradient
	TerminationDebug                              // Hit a NormalDebug surface
	TerminationAbsorbed                           // Ran out of bounces
	TerminationUnknownMaterial                    // Hit a sphere whose material could not be resolved
)

func (t Termination) String() string {
	switch t {
	case TerminationSky:
		return "sky"
	case TerminationDebug:
		return "debug"
	case TerminationAbsorbed:
		return "absorbed"
	case TerminationUnknownMaterial:
		return "unknown_material"
	default:
		return "invalid"
	}
}

// PathResult is the estimate produced by one light path
type PathResult struct {
	Radiance    core.Vec3   // Contribution to add into the pixel
	Throughput  core.Vec3   // Throughput when the path terminated
	Bounces     int         // Surfaces scattered off before termination
	Termination Termination // Why the path stopped
	Err         error       // Set for TerminationUnknownMaterial
}

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// Trace follows one path from ray through the world and returns its radiance
	Trace(ray core.Ray, world *geometry.World, materials []material.Material, sampler core.Sampler) PathResult
}

// SamplePixel traces one jittered primary ray through pixel (x, y)
func SamplePixel(integrator Integrator, camera *geometry.Camera, x, y int, world *geometry.World, materials []material.Material, sampler core.Sampler) PathResult {
	ray := camera.GetRay(x, y, sampler)
	return integrator.Trace(ray, world, materials, sampler)
}
