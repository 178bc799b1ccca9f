package renderer

import (
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
)

// DispatchStats counts what happened to the paths of one or more sample
// dispatches.
type DispatchStats struct {
	Paths           int           // Paths traced
	Sky             int           // Paths that escaped to the sky
	Debug           int           // Paths ended on a NormalDebug surface
	Absorbed        int           // Paths that ran out of bounces
	UnknownMaterial int           // Paths that hit an unresolvable material
	Bounces         int           // Total scattering events
	Duration        time.Duration // Wall time spent dispatching
}

// record adds one path to the counters
func (s *DispatchStats) record(result integrator.PathResult) {
	s.Paths++
	s.Bounces += result.Bounces
	switch result.Termination {
	case integrator.TerminationSky:
		s.Sky++
	case integrator.TerminationDebug:
		s.Debug++
	case integrator.TerminationAbsorbed:
		s.Absorbed++
	case integrator.TerminationUnknownMaterial:
		s.UnknownMaterial++
	}
}

// Merge adds other into s
func (s *DispatchStats) Merge(other DispatchStats) {
	s.Paths += other.Paths
	s.Sky += other.Sky
	s.Debug += other.Debug
	s.Absorbed += other.Absorbed
	s.UnknownMaterial += other.UnknownMaterial
	s.Bounces += other.Bounces
	s.Duration += other.Duration
}

// AverageBounces returns the mean number of bounces per path
func (s DispatchStats) AverageBounces() float64 {
	if s.Paths == 0 {
		return 0
	}
	return float64(s.Bounces) / float64(s.Paths)
}

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Width, Height   int           // Image size in pixels
	TotalPixels     int           // Total number of pixels rendered
	SamplesPerPixel int           // Completed sample dispatches
	TargetSamples   int           // Samples the camera asks for
	Dispatches      int           // Dispatches issued during this pass
	Paths           DispatchStats // Path counters for this pass
	Elapsed         time.Duration // Wall time of this pass
}

// TotalSamples returns the number of pixel samples accumulated so far
func (s RenderStats) TotalSamples() int {
	return s.TotalPixels * s.SamplesPerPixel
}

// Progress returns the completed fraction of the target sample count
func (s RenderStats) Progress() float64 {
	if s.TargetSamples == 0 {
		return 1
	}
	return min(1, float64(s.SamplesPerPixel)/float64(s.TargetSamples))
}
