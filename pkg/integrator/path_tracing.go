package integrator

import (
	"fmt"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// SkyGradient is the background seen by rays that leave the scene
type SkyGradient struct {
	Bottom core.Vec3 // Color looking straight down
	Top    core.Vec3 // Color looking straight up
}

// DefaultSky blends white into a pale blue
var DefaultSky = SkyGradient{
	Bottom: core.NewVec3(1.0, 1.0, 1.0),
	Top:    core.NewVec3(0.5, 0.7, 1.0),
}

// Color returns the gradient color for a ray direction
func (s SkyGradient) Color(direction core.Vec3) core.Vec3 {
	// Normalize the ray direction to get consistent results
	unitDirection := direction.Normalize()

	// Use the y-component to create a gradient (map from -1,1 to 0,1)
	t := 0.5 * (unitDirection.Y + 1.0)

	// Linear interpolation: (1-t)*bottom + t*top
	return s.Bottom.Multiply(1.0 - t).Add(s.Top.Multiply(t))
}

// PathTracingIntegrator implements unidirectional path tracing without
// light sampling. Radiance only comes from the sky.
type PathTracingIntegrator struct {
	MaxBounces int
	Sky        SkyGradient
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(maxBounces int) *PathTracingIntegrator {
	return &PathTracingIntegrator{
		MaxBounces: maxBounces,
		Sky:        DefaultSky,
	}
}

// Trace runs the bounce loop for one path. A path either reaches the sky,
// ends on a terminal material, or is absorbed once MaxBounces surfaces
// have scattered it.
func (pt *PathTracingIntegrator) Trace(ray core.Ray, world *geometry.World, materials []material.Material, sampler core.Sampler) PathResult {
	throughput := core.NewVec3(1, 1, 1)

	for bounce := 0; bounce < pt.MaxBounces; bounce++ {
		hit, isHit := world.Intersect(ray, geometry.TMin, geometry.TMax)
		if !isHit {
			return PathResult{
				Radiance:    throughput.MultiplyVec(pt.Sky.Color(ray.Direction)),
				Throughput:  throughput,
				Bounces:     bounce,
				Termination: TerminationSky,
			}
		}

		result, err := material.Shade(lookupMaterial(materials, hit.MaterialID), ray, hit, sampler)
		if err != nil {
			return PathResult{
				Radiance:    result.Radiance,
				Throughput:  throughput,
				Bounces:     bounce,
				Termination: TerminationUnknownMaterial,
				Err:         fmt.Errorf("material id %d: %w", hit.MaterialID, err),
			}
		}
		if result.Terminal {
			return PathResult{
				Radiance:    result.Radiance,
				Throughput:  throughput,
				Bounces:     bounce,
				Termination: TerminationDebug,
			}
		}

		throughput = throughput.MultiplyVec(result.Attenuation)
		ray = result.Scattered
	}

	return PathResult{
		Throughput:  throughput,
		Bounces:     pt.MaxBounces,
		Termination: TerminationAbsorbed,
	}
}

// lookupMaterial returns nil for ids outside the material list so Shade
// reports them as unknown.
func lookupMaterial(materials []material.Material, id uint32) material.Material {
	if int(id) >= len(materials) {
		return nil
	}
	return materials[id]
}
