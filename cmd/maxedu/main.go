package main

import (
	"os"

	"github.com/harshitprakash/max-education-software-sub000/internal/cli/command"
)

func main() {
	app := command.App()

	// Errors are printed by the app's exit handler.
	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}
