package renderer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
	"github.com/df07/go-sphere-pathtracer/pkg/log"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// SamplerFactory returns the random stream for one pixel of one dispatch
type SamplerFactory func(x, y int, seed core.Vec3U) core.Sampler

// PixelSampler seeds a PixelRNG from the pixel coordinate and the frame seed
func PixelSampler(x, y int, seed core.Vec3U) core.Sampler {
	rng := core.NewPixelRNG(core.NewVec3U(uint32(x), uint32(y), 0), seed)
	return &rng
}

// KernelConfig controls how a dispatch is split and how defects are handled
type KernelConfig struct {
	TileSize   int            // Edge length of a square tile in pixels
	NumWorkers int            // Number of parallel workers (0 = use CPU count)
	Strict     bool           // Fail a dispatch that hit an unknown material
	NewSampler SamplerFactory // Per-pixel random stream (nil = PixelSampler)
}

// Kernel runs one light path per pixel per dispatch and adds the result
// into the accumulator. The camera, world and materials must not change
// while a dispatch is running.
type Kernel struct {
	camera     *geometry.Camera
	world      *geometry.World
	materials  []material.Material
	integrator integrator.Integrator
	acc        *Accumulator
	config     KernelConfig
	tiles      []*Tile
	pool       *WorkerPool
	mu         sync.Mutex // Held for a whole dispatch and by Close
	closed     bool
	defects    atomic.Int64
	logger     log.Logger
}

// NewKernel creates a kernel rendering into acc, which must match the
// camera resolution.
func NewKernel(camera *geometry.Camera, world *geometry.World, materials []material.Material,
	integratorInst integrator.Integrator, acc *Accumulator, config KernelConfig, logger log.Logger) (*Kernel, error) {
	if acc.Width() != camera.Width || acc.Height() != camera.Height {
		return nil, fmt.Errorf("kernel: accumulator is %dx%d, camera is %dx%d",
			acc.Width(), acc.Height(), camera.Width, camera.Height)
	}
	if config.TileSize <= 0 {
		config.TileSize = DefaultProgressiveConfig().TileSize
	}
	if config.NewSampler == nil {
		config.NewSampler = PixelSampler
	}
	if logger == nil {
		logger = log.New("renderer")
	}

	k := &Kernel{
		camera:     camera,
		world:      world,
		materials:  materials,
		integrator: integratorInst,
		acc:        acc,
		config:     config,
		tiles:      NewTileGrid(camera.Width, camera.Height, config.TileSize),
		logger:     logger,
	}
	k.pool = NewWorkerPool(k, len(k.tiles), config.NumWorkers)
	return k, nil
}

// Dispatch traces one sample for every pixel using seed as the frame seed.
// It does not return until every tile is done; ctx is only checked before
// work starts. A closed kernel returns ErrClosed.
func (k *Kernel) Dispatch(ctx context.Context, seed core.Vec3U) (DispatchStats, error) {
	if err := ctx.Err(); err != nil {
		return DispatchStats{}, fmt.Errorf("%w: %w", ErrInterrupted, err)
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return DispatchStats{}, ErrClosed
	}

	start := time.Now()
	k.pool.Start()

	for i, tile := range k.tiles {
		k.pool.SubmitTask(TileTask{Tile: tile, Seed: seed, TaskID: i})
	}

	var stats DispatchStats
	var defect error
	for range k.tiles {
		result, ok := k.pool.GetResult()
		if !ok {
			return stats, fmt.Errorf("worker pool closed unexpectedly")
		}
		k.tiles[result.TaskID].PassesCompleted++
		stats.Merge(result.Stats)
		if defect == nil {
			defect = result.Defect
		}
	}

	k.acc.completeSample()
	stats.Duration = time.Since(start)

	if stats.UnknownMaterial > 0 {
		if k.config.Strict {
			return stats, fmt.Errorf("%w: %d paths (%v)", ErrUnknownMaterial, stats.UnknownMaterial, defect)
		}
		k.logger.Warningf("%d paths hit an unknown material and were painted with the sentinel color: %v",
			stats.UnknownMaterial, defect)
	}

	return stats, nil
}

// renderTile traces one path for every pixel of tile
func (k *Kernel) renderTile(tile *Tile, seed core.Vec3U) (DispatchStats, error) {
	var stats DispatchStats
	var defect error

	bounds := tile.Bounds
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			sampler := k.config.NewSampler(x, y, seed)
			result := integrator.SamplePixel(k.integrator, k.camera, x, y, k.world, k.materials, sampler)
			k.acc.Add(x, y, result.Radiance)
			stats.record(result)
			if result.Err != nil && defect == nil {
				defect = result.Err
			}
		}
	}

	if stats.UnknownMaterial > 0 {
		k.defects.Add(int64(stats.UnknownMaterial))
	}
	return stats, defect
}

// Defects returns the number of unknown material paths traced since the
// kernel was created.
func (k *Kernel) Defects() int64 {
	return k.defects.Load()
}

// NumWorkers returns the size of the worker pool
func (k *Kernel) NumWorkers() int {
	return k.pool.NumWorkers()
}

// Close stops the worker pool once any running dispatch has finished. Later
// dispatches return ErrClosed.
func (k *Kernel) Close() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.closed = true
	k.pool.Stop()
}
