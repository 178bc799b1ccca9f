package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
	"github.com/df07/go-sphere-pathtracer/pkg/log"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	TileSize       int            // Size of each tile (64x64 recommended)
	InitialSamples int            // Samples for first pass (1 recommended)
	MaxPasses      int            // Maximum number of passes
	NumWorkers     int            // Number of parallel workers (0 = use CPU count)
	Strict         bool           // Abort when a path hits an unknown material
	Seed           int64          // Base of the frame seed sequence (0 = time based)
	NewSampler     SamplerFactory // Per-pixel random stream (nil = PixelSampler)
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		TileSize:       64,
		InitialSamples: 1,
		MaxPasses:      7,
		NumWorkers:     0,
	}
}

// ProgressiveRaytracer issues sample dispatches until the camera's sample
// count is reached, grouping them into passes that each produce a preview.
type ProgressiveRaytracer struct {
	mu      sync.Mutex
	scene   *scene.Scene
	camera  *geometry.Camera
	config  ProgressiveConfig
	acc     *Accumulator
	kernel  *Kernel
	seeds   *core.SeedSequence
	running atomic.Bool
	logger  log.Logger
}

// NewProgressiveRaytracer validates the scene and prepares a render of it
func NewProgressiveRaytracer(sc *scene.Scene, config ProgressiveConfig, logger log.Logger) (*ProgressiveRaytracer, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if config.MaxPasses <= 0 {
		return nil, fmt.Errorf("renderer: max passes must be positive, got %d", config.MaxPasses)
	}
	if config.InitialSamples <= 0 {
		config.InitialSamples = 1
	}
	if logger == nil {
		logger = log.New("renderer")
	}

	camera, err := sc.NewCamera()
	if err != nil {
		return nil, err
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	pr := &ProgressiveRaytracer{
		scene:  sc,
		config: config,
		seeds:  core.NewRandomSeedSequence(rand.New(rand.NewSource(seed))),
		logger: logger,
	}
	if err := pr.rebuild(camera); err != nil {
		return nil, err
	}
	return pr, nil
}

// rebuild creates a fresh accumulator and kernel for camera
func (pr *ProgressiveRaytracer) rebuild(camera *geometry.Camera) error {
	acc := NewAccumulator(camera.Width, camera.Height)
	kernel, err := NewKernel(camera, pr.scene.World(), pr.scene.Materials,
		integrator.NewPathTracingIntegrator(pr.scene.MaxBounces), acc,
		KernelConfig{
			TileSize:   pr.config.TileSize,
			NumWorkers: pr.config.NumWorkers,
			Strict:     pr.config.Strict,
			NewSampler: pr.config.NewSampler,
		}, pr.logger)
	if err != nil {
		return err
	}

	if pr.kernel != nil {
		pr.kernel.Close()
	}
	pr.camera = camera
	pr.acc = acc
	pr.kernel = kernel
	return nil
}

// getSamplesForPass calculates the target total samples for a given pass
func (pr *ProgressiveRaytracer) getSamplesForPass(passNumber int) int {
	maxSamples := pr.camera.NumSamples

	// Special case: if only 1 pass, use all samples
	if pr.config.MaxPasses == 1 {
		return maxSamples
	}

	// First pass is a quick preview
	if passNumber == 1 {
		return min(pr.config.InitialSamples, maxSamples)
	}

	// Divide remaining samples evenly across remaining passes
	remainingSamples := maxSamples - pr.config.InitialSamples
	remainingPasses := pr.config.MaxPasses - 1
	samplesPerPass := remainingSamples / remainingPasses

	// For the final pass, use all remaining samples
	if passNumber >= pr.config.MaxPasses {
		return maxSamples
	}

	return min(pr.config.InitialSamples+(passNumber-1)*samplesPerPass, maxSamples)
}

// Camera returns the camera of the current render
func (pr *ProgressiveRaytracer) Camera() *geometry.Camera {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.camera
}

// Accumulator returns the buffer the kernel writes to. It must only be read
// while no render is running.
func (pr *ProgressiveRaytracer) Accumulator() *Accumulator {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.acc
}

// Seeds returns the frame seed sequence
func (pr *ProgressiveRaytracer) Seeds() *core.SeedSequence {
	return pr.seeds
}

// Defects returns the unknown material paths traced with the current camera
func (pr *ProgressiveRaytracer) Defects() int64 {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.kernel.Defects()
}

// SetCamera replaces the camera between renders and resets accumulation
func (pr *ProgressiveRaytracer) SetCamera(camera *geometry.Camera) error {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	if pr.running.Load() {
		return ErrRenderInProgress
	}

	pr.logger.Debugf("camera changed to look-from %v, resetting accumulation", camera.LookFrom)
	return pr.rebuild(camera)
}

// MoveCamera translates the look-from point and resets accumulation
func (pr *ProgressiveRaytracer) MoveCamera(delta core.Vec3) error {
	moved, err := pr.Camera().Translated(delta)
	if err != nil {
		return err
	}
	return pr.SetCamera(moved)
}

// Resume restores accumulation from a checkpoint taken after samples
// dispatches. The seed sequence skips the seeds those dispatches used.
func (pr *ProgressiveRaytracer) Resume(data []float32, samples int) error {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	if pr.running.Load() {
		return ErrRenderInProgress
	}

	if err := pr.acc.Restore(data, samples); err != nil {
		return err
	}
	pr.seeds.Reset()
	pr.seeds.Skip(uint32(samples))
	return nil
}

// Running reports whether a progressive render is in flight
func (pr *ProgressiveRaytracer) Running() bool {
	return pr.running.Load()
}

// Close releases the worker pool
func (pr *ProgressiveRaytracer) Close() {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.kernel.Close()
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber int
	Image      *image.RGBA // Nil unless previews were requested or this is the last pass
	Stats      RenderStats
	IsLast     bool
}

// RenderOptions configures progressive rendering behavior
type RenderOptions struct {
	Previews bool // Present an image for every pass, not just the last
}

// RenderPass dispatches samples until the target for passNumber is reached
func (pr *ProgressiveRaytracer) RenderPass(ctx context.Context, passNumber int) (RenderStats, error) {
	start := time.Now()
	target := pr.getSamplesForPass(passNumber)

	stats := RenderStats{
		Width:         pr.camera.Width,
		Height:        pr.camera.Height,
		TotalPixels:   pr.camera.Width * pr.camera.Height,
		TargetSamples: pr.camera.NumSamples,
	}

	for pr.acc.Samples() < target {
		dispatch, err := pr.kernel.Dispatch(ctx, pr.seeds.Next())
		stats.Paths.Merge(dispatch)
		stats.Dispatches++
		if err != nil {
			stats.SamplesPerPixel = pr.acc.Samples()
			stats.Elapsed = time.Since(start)
			return stats, err
		}
	}

	stats.SamplesPerPixel = pr.acc.Samples()
	stats.Elapsed = time.Since(start)
	return stats, nil
}

// RenderProgressive renders with channel-based communication. The pass
// channel is closed when the render completes, fails or is cancelled; at
// most one error is sent on the error channel. Cancellation takes effect
// between dispatches.
func (pr *ProgressiveRaytracer) RenderProgressive(ctx context.Context, options RenderOptions) (<-chan PassResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	errChan := make(chan error, 1)

	// The camera and kernel stay fixed while running is set
	pr.mu.Lock()
	started := pr.running.CompareAndSwap(false, true)
	pr.mu.Unlock()
	if !started {
		errChan <- ErrRenderInProgress
		close(errChan)
		close(passChan)
		return passChan, errChan
	}

	go func() {
		defer close(passChan)
		defer close(errChan)
		defer pr.running.Store(false)

		pr.logger.Infof("Starting progressive rendering: %dx%d, %d samples in up to %d passes using %d workers",
			pr.camera.Width, pr.camera.Height, pr.camera.NumSamples, pr.config.MaxPasses, pr.kernel.NumWorkers())

		for pass := 1; pass <= pr.config.MaxPasses; pass++ {
			target := pr.getSamplesForPass(pass)
			isLast := pass == pr.config.MaxPasses || target >= pr.camera.NumSamples

			// Passes already covered by a resumed checkpoint
			if target <= pr.acc.Samples() && !isLast {
				continue
			}

			stats, err := pr.RenderPass(ctx, pass)
			if err != nil {
				if errors.Is(err, ErrInterrupted) {
					pr.logger.Noticef("Rendering cancelled during pass %d after %d samples", pass, pr.acc.Samples())
				}
				errChan <- err
				return
			}

			pr.logger.Infof("Pass %d completed in %v (%d samples/pixel, %.2f bounces/path)",
				pass, stats.Elapsed, stats.SamplesPerPixel, stats.Paths.AverageBounces())

			result := PassResult{
				PassNumber: pass,
				Stats:      stats,
				IsLast:     isLast,
			}
			if options.Previews || isLast {
				result.Image = Present(pr.acc)
			}

			select {
			case passChan <- result:
			case <-ctx.Done():
				errChan <- fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
				return
			}

			if isLast {
				return
			}
		}
	}()

	return passChan, errChan
}

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID              int             // Unique tile identifier
	Bounds          image.Rectangle // Pixel bounds (x0,y0,x1,y1)
	PassesCompleted int             // Number of dispatches that covered this tile
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int) []*Tile {
	var tiles []*Tile
	tileID := 0

	tilesX := (width + tileSize - 1) / tileSize
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width)
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, &Tile{ID: tileID, Bounds: image.Rect(x0, y0, x1, y1)})
			tileID++
		}
	}

	return tiles
}
