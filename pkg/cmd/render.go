package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/df07/go-sphere-pathtracer/pkg/loaders"
	"github.com/df07/go-sphere-pathtracer/pkg/log"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
	"github.com/df07/go-sphere-pathtracer/pkg/session"
)

// RenderScene renders a scene progressively and writes the final image
func RenderScene(ctx *cli.Context) error {
	setupLogging(ctx)

	sceneID := ctx.String("scene")
	if ctx.NArg() > 0 {
		sceneID = ctx.Args().First()
	}

	sc, err := loaders.LoadScene(sceneID, ctx.String("scenes-dir"))
	if err != nil {
		return err
	}
	sc = applyOverrides(sc, ctx.Int("width"), ctx.Int("height"), ctx.Int("spp"), ctx.Int("max-bounces"))

	config := renderer.DefaultProgressiveConfig()
	config.MaxPasses = ctx.Int("passes")
	config.TileSize = ctx.Int("tile-size")
	config.NumWorkers = ctx.Int("workers")
	config.Strict = ctx.Bool("strict")
	config.Seed = ctx.Int64("seed")
	if config.Seed == 0 {
		config.Seed = time.Now().UnixNano()
	}

	pr, err := renderer.NewProgressiveRaytracer(sc, config, log.New("renderer"))
	if err != nil {
		return err
	}
	defer pr.Close()

	if dir := ctx.String("resume"); dir != "" {
		checkpoint, err := session.LoadCheckpoint(dir)
		if err != nil {
			return err
		}
		if err := checkpoint.Apply(pr); err != nil {
			return err
		}
		logger.Noticef("resuming from %s at %d samples/pixel", dir, checkpoint.Samples)
	}

	var writer *session.Writer
	if root := ctx.String("session"); root != "" {
		camera := pr.Camera()
		writer, _, err = session.NewWriter(root, sceneID, session.Manifest{
			Scene:         sceneID,
			Width:         camera.Width,
			Height:        camera.Height,
			TargetSamples: camera.NumSamples,
			Seed:          config.Seed,
		}, nil)
		if err != nil {
			return err
		}
		defer writer.Close()
		logger.Noticef("recording session in %s", writer.Directory())
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	passes, final, renderErr := runPasses(sigCtx, pr, writer)
	if renderErr != nil && !errors.Is(renderErr, renderer.ErrInterrupted) {
		return renderErr
	}
	if renderErr != nil {
		if writer != nil {
			if err := writer.Checkpoint(pr.Accumulator()); err != nil {
				logger.Warningf("failed to write checkpoint: %v", err)
			}
		}
		if pr.Accumulator().Samples() == 0 {
			return renderErr
		}
		logger.Noticef("render interrupted at %d samples/pixel, saving partial image", pr.Accumulator().Samples())
		final = renderer.Present(pr.Accumulator())
	}

	filename := ctx.String("out")
	if filename == "" {
		filename = defaultOutputPath(sceneID, time.Now())
	}
	if err := savePNG(filename, final); err != nil {
		return err
	}
	logger.Noticef("wrote %s", filename)
	if writer != nil {
		if err := writer.SaveImage(final); err != nil {
			return err
		}
	}

	if defects := pr.Defects(); defects > 0 {
		logger.Warningf("%d paths hit an unknown material", defects)
	}
	displayRenderStats(passes)
	return nil
}

// applyOverrides replaces non-zero camera and bounce settings of sc
func applyOverrides(sc *scene.Scene, width, height, spp, maxBounces int) *scene.Scene {
	camera := sc.Camera
	if width > 0 {
		camera.Width = width
	}
	if height > 0 {
		camera.Height = height
	}
	if spp > 0 {
		camera.NumSamples = spp
	}
	sc = sc.WithCamera(camera)
	if maxBounces > 0 {
		sc.MaxBounces = maxBounces
	}
	return sc
}

// runPasses drains a progressive render, recording every pass in writer when
// one is given
func runPasses(ctx context.Context, pr *renderer.ProgressiveRaytracer, writer *session.Writer) ([]renderer.PassResult, *image.RGBA, error) {
	passChan, errChan := pr.RenderProgressive(ctx, renderer.RenderOptions{})

	var passes []renderer.PassResult
	var final *image.RGBA
	for pass := range passChan {
		passes = append(passes, pass)
		if pass.Image != nil {
			final = pass.Image
		}

		logger.Infof("pass %d: %d/%d samples/pixel (%.0f%%)",
			pass.PassNumber, pass.Stats.SamplesPerPixel, pass.Stats.TargetSamples, pass.Stats.Progress()*100)

		if writer != nil {
			recordPass(writer, pr, pass)
		}
	}

	if err := <-errChan; err != nil {
		return passes, final, err
	}
	return passes, final, nil
}

// recordPass logs a pass and checkpoints the accumulator. The accumulator is
// only stable once the pass has been handed over.
func recordPass(writer *session.Writer, pr *renderer.ProgressiveRaytracer, pass renderer.PassResult) {
	if err := writer.AppendPass(pass); err != nil {
		logger.Warningf("failed to record pass %d: %v", pass.PassNumber, err)
	}
	if err := writer.Checkpoint(pr.Accumulator()); err != nil {
		logger.Warningf("failed to checkpoint pass %d: %v", pass.PassNumber, err)
	}
}

// defaultOutputPath returns output/<scene>/render_<timestamp>.png
func defaultOutputPath(sceneID string, now time.Time) string {
	dir := strings.NewReplacer(":", "-", "/", "-", string(filepath.Separator), "-").Replace(sceneID)
	return filepath.Join("output", dir, fmt.Sprintf("render_%s.png", now.Format("20060102_150405")))
}

func savePNG(filename string, img image.Image) error {
	if img == nil {
		return errors.New("no image was produced")
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("encoding %s: %w", filename, err)
	}
	return file.Close()
}

func displayRenderStats(passes []renderer.PassResult) {
	logger.Noticef("render statistics\n%s", formatRenderStats(passes))
}

func formatRenderStats(passes []renderer.PassResult) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Pass", "Samples/pixel", "Dispatches", "Paths", "Sky", "Debug", "Absorbed", "Unknown", "Bounces/path", "Render time"})

	var total renderer.DispatchStats
	var elapsed time.Duration
	var dispatches int
	for _, pass := range passes {
		stats := pass.Stats
		total.Merge(stats.Paths)
		elapsed += stats.Elapsed
		dispatches += stats.Dispatches
		table.Append([]string{
			fmt.Sprintf("%d", pass.PassNumber),
			fmt.Sprintf("%d/%d", stats.SamplesPerPixel, stats.TargetSamples),
			fmt.Sprintf("%d", stats.Dispatches),
			fmt.Sprintf("%d", stats.Paths.Paths),
			fmt.Sprintf("%d", stats.Paths.Sky),
			fmt.Sprintf("%d", stats.Paths.Debug),
			fmt.Sprintf("%d", stats.Paths.Absorbed),
			fmt.Sprintf("%d", stats.Paths.UnknownMaterial),
			fmt.Sprintf("%.2f", stats.Paths.AverageBounces()),
			stats.Elapsed.Round(time.Millisecond).String(),
		})
	}
	table.SetFooter([]string{"", "TOTAL",
		fmt.Sprintf("%d", dispatches),
		fmt.Sprintf("%d", total.Paths),
		fmt.Sprintf("%d", total.Sky),
		fmt.Sprintf("%d", total.Debug),
		fmt.Sprintf("%d", total.Absorbed),
		fmt.Sprintf("%d", total.UnknownMaterial),
		fmt.Sprintf("%.2f", total.AverageBounces()),
		elapsed.Round(time.Millisecond).String(),
	})

	table.Render()
	return buf.String()
}
