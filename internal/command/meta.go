// Package command implements the subcommands of the adjoint command line.
package command

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/born-ml/adjoint/internal/archive"
	"github.com/born-ml/adjoint/internal/logging"
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"
	"github.com/sugawarayuuta/sonnet"
)

// Meta holds the state shared by all commands.
type Meta struct {
	Ui      cli.Ui
	Logger  hclog.Logger
	Fs      afero.Fs
	Version string
}

func (m *Meta) log() hclog.Logger {
	return logging.OrNull(m.Logger)
}

func (m *Meta) fs() afero.Fs {
	if m.Fs == nil {
		return afero.NewOsFs()
	}
	return m.Fs
}

// flagSet returns a flag set reporting errors through the command's return
// code instead of exiting.
func (m *Meta) flagSet(name string) *flag.FlagSet {
	f := flag.NewFlagSet(name, flag.ContinueOnError)
	f.SetOutput(io.Discard)
	f.Usage = func() {}
	return f
}

// errorf prints an error and returns the failure exit code.
func (m *Meta) errorf(format string, args ...any) int {
	m.Ui.Error(fmt.Sprintf(format, args...))
	return 1
}

// output prints v as JSON.
func (m *Meta) output(v any) int {
	data, err := sonnet.Marshal(v)
	if err != nil {
		return m.errorf("Error encoding output: %s", err)
	}
	m.Ui.Output(string(data))
	return 0
}

// archive saves r to the database at path. An empty path disables archiving.
func (m *Meta) archive(ctx context.Context, path string, r *archive.Run) error {
	if path == "" {
		return nil
	}
	store, err := archive.Open(ctx, path, m.log())
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Save(ctx, r)
}

// floatList is a comma-separated list flag.
type floatList []float64

func (l *floatList) String() string {
	parts := make([]string, len(*l))
	for i, v := range *l {
		parts[i] = formatFloat(v)
	}
	return strings.Join(parts, ",")
}

func (l *floatList) Set(s string) error {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", part)
		}
		out = append(out, v)
	}
	*l = out
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
