package main

import (
	"fmt"
	"os"

	"github.com/df07/go-sphere-pathtracer/pkg/cmd"
)

// The viewer binary is the serve command of the main CLI
func main() {
	app := cmd.NewApp()
	args := append([]string{os.Args[0], "serve"}, os.Args[1:]...)
	if err := app.Run(args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}
