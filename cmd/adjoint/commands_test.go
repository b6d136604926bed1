package main

import (
	"sort"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommands(t *testing.T) {
	cmds := commands(cli.NewMockUi(), hclog.NewNullLogger(), afero.NewMemMapFs())

	names := make([]string, 0, len(cmds))
	for name, factory := range cmds {
		names = append(names, name)
		c, err := factory()
		require.NoError(t, err)
		assert.NotEmpty(t, c.Synopsis(), name)
		assert.Contains(t, c.Help(), "Usage: adjoint "+name, name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"calibrate", "price", "risk", "runs", "version"}, names)
}

func TestVersion(t *testing.T) {
	ui := cli.NewMockUi()
	app := cli.NewCLI("adjoint", version)
	app.Args = []string{"version"}
	app.Commands = commands(ui, hclog.NewNullLogger(), afero.NewMemMapFs())

	status, err := app.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, status)
	assert.Contains(t, ui.OutputWriter.String(), "adjoint "+version)
}
