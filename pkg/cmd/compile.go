package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli"

	"github.com/df07/go-sphere-pathtracer/pkg/loaders"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// CompileScenes writes each argument scene in the compiled binary format.
func CompileScenes(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() == 0 {
		return errors.New("missing scene argument")
	}

	for idx := 0; idx < ctx.NArg(); idx++ {
		arg := ctx.Args().Get(idx)
		out, err := compileOne(arg, ctx.String("scenes-dir"), ctx.String("out-dir"))
		if err != nil {
			return fmt.Errorf("%s: %w", arg, err)
		}
		logger.Noticef("compiled %s to %s", arg, out)
	}
	return nil
}

// compileOne compiles a JSON file next to itself, or a scene id into outDir
func compileOne(arg, scenesDir, outDir string) (string, error) {
	var sc *scene.Scene
	var out string
	var err error

	if strings.HasSuffix(arg, scene.JSONExt) {
		sc, err = loaders.LoadSceneJSON(arg)
		out = strings.TrimSuffix(arg, scene.JSONExt) + scene.CompiledExt
	} else {
		sc, err = loaders.LoadScene(arg, scenesDir)
		out = filepath.Join(outDir, sceneBaseName(arg)+scene.CompiledExt)
	}
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return "", err
	}
	if err := loaders.SaveCompiledScene(out, sc); err != nil {
		return "", err
	}
	return out, nil
}

// sceneBaseName strips the source prefix from a scene id
func sceneBaseName(id string) string {
	if _, name, found := strings.Cut(id, ":"); found {
		return name
	}
	return id
}

// ExportScene writes a scene in the JSON scene format
func ExportScene(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("expected exactly one scene id")
	}

	sc, err := loaders.LoadScene(ctx.Args().First(), ctx.String("scenes-dir"))
	if err != nil {
		return err
	}

	out := io.Writer(ctx.App.Writer)
	if filename := ctx.String("out"); filename != "" {
		file, err := os.Create(filename)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}
	return exportScene(out, sc)
}

func exportScene(w io.Writer, sc *scene.Scene) error {
	file, err := loaders.SceneFileFrom(sc)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(file)
}
