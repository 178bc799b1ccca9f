package cmd

import (
	"github.com/urfave/cli"
)

// NewApp builds the command line interface
func NewApp() *cli.App {
	// -v is taken by the verbosity flag
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "sphere-pathtracer"
	app.Usage = "render sphere scenes using progressive path tracing"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "render",
			Usage:     "render a scene to a PNG file",
			ArgsUsage: "[scene id]",
			Description: `
Render a built-in scene or a scene file found in the scenes directory. File
scenes are addressed as json:<name> or compiled:<name>.

Samples are accumulated over a number of passes. With --session every pass is
logged and the accumulation buffer is checkpointed so an interrupted render can
be continued with --resume.`,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "scene, s",
					Value: "default",
					Usage: "scene id, see the scenes command",
				},
				cli.StringFlag{
					Name:  "scenes-dir",
					Value: "scenes",
					Usage: "directory scanned for scene files",
				},
				cli.IntFlag{
					Name:  "width",
					Usage: "frame width (0 = scene camera)",
				},
				cli.IntFlag{
					Name:  "height",
					Usage: "frame height (0 = scene camera)",
				},
				cli.IntFlag{
					Name:  "spp",
					Usage: "samples per pixel (0 = scene camera)",
				},
				cli.IntFlag{
					Name:  "max-bounces",
					Usage: "bounce budget per path (0 = scene setting)",
				},
				cli.IntFlag{
					Name:  "passes",
					Value: 7,
					Usage: "number of progressive passes",
				},
				cli.IntFlag{
					Name:  "tile-size",
					Value: 64,
					Usage: "tile edge in pixels",
				},
				cli.IntFlag{
					Name:  "workers",
					Usage: "parallel workers (0 = CPU count)",
				},
				cli.Int64Flag{
					Name:  "seed",
					Usage: "frame seed base (0 = time based)",
				},
				cli.BoolFlag{
					Name:  "strict",
					Usage: "fail when a path hits an unknown material",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "image filename (default output/<scene>/render_<timestamp>.png)",
				},
				cli.StringFlag{
					Name:  "session",
					Usage: "directory to record passes and checkpoints under",
				},
				cli.StringFlag{
					Name:  "resume",
					Usage: "session directory whose checkpoint seeds the accumulation",
				},
			},
			Action: RenderScene,
		},
		{
			Name:  "compile",
			Usage: "compile scenes into the binary compressed format",
			Description: `
Each argument is either a JSON scene file, compiled next to the source, or a
scene id, compiled into --out-dir.`,
			ArgsUsage: "scene.json|scene-id ...",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "scenes-dir",
					Value: "scenes",
					Usage: "directory scanned for scene files",
				},
				cli.StringFlag{
					Name:  "out-dir",
					Value: "scenes",
					Usage: "output directory for scenes given by id",
				},
			},
			Action: CompileScenes,
		},
		{
			Name:      "export",
			Usage:     "write a scene as JSON",
			ArgsUsage: "scene-id",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "scenes-dir",
					Value: "scenes",
					Usage: "directory scanned for scene files",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "output file (default stdout)",
				},
			},
			Action: ExportScene,
		},
		{
			Name:  "scenes",
			Usage: "list built-in and file scenes",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "scenes-dir",
					Value: "scenes",
					Usage: "directory scanned for scene files",
				},
			},
			Action: ListScenes,
		},
		{
			Name:  "serve",
			Usage: "serve the interactive websocket viewer",
			Description: `
Configuration is read from TRACER_* environment variables; the flags below
override them when given.`,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "addr",
					Usage: "listen address",
				},
				cli.StringFlag{
					Name:  "scenes-dir",
					Usage: "directory scanned for scene files",
				},
			},
			Action: Serve,
		},
	}
	return app
}
