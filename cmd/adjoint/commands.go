package main

import (
	"github.com/born-ml/adjoint/internal/command"
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"
)

// commands returns the factories of every subcommand.
func commands(ui cli.Ui, log hclog.Logger, fs afero.Fs) map[string]cli.CommandFactory {
	meta := command.Meta{
		Ui:      ui,
		Logger:  log,
		Fs:      fs,
		Version: version,
	}
	return map[string]cli.CommandFactory{
		"version": func() (cli.Command, error) {
			return &command.VersionCommand{Meta: meta}, nil
		},
		"price": func() (cli.Command, error) {
			return &command.PriceCommand{Meta: meta}, nil
		},
		"risk": func() (cli.Command, error) {
			return &command.RiskCommand{Meta: meta}, nil
		},
		"calibrate": func() (cli.Command, error) {
			return &command.CalibrateCommand{Meta: meta}, nil
		},
		"runs": func() (cli.Command, error) {
			return &command.RunsCommand{Meta: meta}, nil
		},
	}
}
