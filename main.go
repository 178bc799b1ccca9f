package main

import (
	"fmt"
	"os"

	"github.com/df07/go-sphere-pathtracer/pkg/cmd"
)

func main() {
	app := cmd.NewApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}
