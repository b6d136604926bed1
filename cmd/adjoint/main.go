// Package main provides the adjoint command line.
package main

import (
	"fmt"
	"os"

	"github.com/born-ml/adjoint/internal/logging"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"
)

const version = "v0.1.0"

func main() {
	os.Exit(realMain(os.Args[1:]))
}

func realMain(args []string) int {
	ui := &cli.BasicUi{
		Reader:      os.Stdin,
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}
	log := logging.New("adjoint", logging.Options{})

	app := cli.NewCLI("adjoint", version)
	app.Args = args
	app.Commands = commands(ui, log, afero.NewOsFs())

	status, err := app.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing CLI: %s\n", err)
		return 1
	}
	return status
}
