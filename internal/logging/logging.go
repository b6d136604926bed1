// Package logging builds the hclog loggers used by the command line and the
// simulation drivers.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// EnvLevel names the environment variable overriding the log level.
const EnvLevel = "ADJOINT_LOG"

// DefaultLevel is used when neither options nor environment set a level.
const DefaultLevel = hclog.Warn

// Options configures New.
type Options struct {
	Level  string    // trace, debug, info, warn, error or off; empty for the environment or default
	Output io.Writer // defaults to os.Stderr
	JSON   bool
}

// New returns a named logger.
func New(name string, opts Options) hclog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      Level(opts.Level),
		Output:     out,
		JSONFormat: opts.JSON,
	})
}

// Level resolves a level name. An empty name falls back to EnvLevel, then to
// DefaultLevel; unknown names resolve to DefaultLevel.
func Level(name string) hclog.Level {
	if name == "" {
		name = os.Getenv(EnvLevel)
	}
	if name == "" {
		return DefaultLevel
	}
	lvl := hclog.LevelFromString(strings.TrimSpace(name))
	if lvl == hclog.NoLevel {
		return DefaultLevel
	}
	return lvl
}

// OrNull returns l, or a logger discarding everything when l is nil.
func OrNull(l hclog.Logger) hclog.Logger {
	if l == nil {
		return hclog.NewNullLogger()
	}
	return l
}
