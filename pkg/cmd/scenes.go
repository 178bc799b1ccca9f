package cmd

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/df07/go-sphere-pathtracer/pkg/loaders"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// ListScenes prints the built-in scenes and the scene files in the scenes
// directory.
func ListScenes(ctx *cli.Context) error {
	setupLogging(ctx)

	table, err := scenesTable(ctx.String("scenes-dir"))
	if err != nil {
		return err
	}
	_, err = io.WriteString(ctx.App.Writer, table)
	return err
}

func scenesTable(dir string) (string, error) {
	response, err := scene.ListAllScenes(dir)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"ID", "Name", "Group", "Resolution", "Spheres", "Materials"})

	for _, group := range response.Groups {
		for _, info := range group.Scenes {
			sc, err := loaders.LoadScene(info.ID, dir)
			if err != nil {
				logger.Warningf("skipping scene %s: %v", info.ID, err)
				table.Append([]string{info.ID, info.Name, group.Name, "-", "-", "error"})
				continue
			}
			table.Append([]string{
				info.ID,
				info.Name,
				group.Name,
				fmt.Sprintf("%dx%d@%d", sc.Camera.Width, sc.Camera.Height, sc.Camera.NumSamples),
				fmt.Sprintf("%d", len(sc.Spheres)),
				materialSummary(sc),
			})
		}
	}

	table.Render()
	return buf.String(), nil
}

// materialSummary lists sphere counts per material type, e.g. "lambertian:2 metal:1"
func materialSummary(sc *scene.Scene) string {
	var parts []string
	for t, count := range sc.MaterialCounts() {
		parts = append(parts, fmt.Sprintf("%s:%d", t, count))
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}
