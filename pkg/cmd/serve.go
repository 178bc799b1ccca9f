package cmd

import (
	"github.com/urfave/cli"

	"github.com/df07/go-sphere-pathtracer/pkg/log"
	"github.com/df07/go-sphere-pathtracer/web/server"
)

// Serve starts the interactive web viewer
func Serve(ctx *cli.Context) error {
	config, err := serveConfig(ctx)
	if err != nil {
		return err
	}

	log.SetLevel(config.LogLevel)
	setupLogging(ctx)

	logger.Noticef("Visit http://localhost%s to start rendering", config.Address)
	return server.NewServer(config, log.New("server")).Start()
}

// serveConfig reads TRACER_* variables and applies the flags given on top
func serveConfig(ctx *cli.Context) (*server.Config, error) {
	config, err := server.LoadConfig()
	if err != nil {
		return nil, err
	}
	if ctx.IsSet("addr") {
		config.Address = ctx.String("addr")
	}
	if ctx.IsSet("scenes-dir") {
		config.ScenesDir = ctx.String("scenes-dir")
	}
	return config, nil
}
