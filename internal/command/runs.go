package command

import (
	"context"
	"strings"
	"time"

	"github.com/born-ml/adjoint/internal/archive"
)

// RunsCommand lists archived runs.
type RunsCommand struct {
	Meta
}

type runOutput struct {
	ID            string             `json:"id"`
	Kind          string             `json:"kind"`
	CreatedAt     string             `json:"created_at"`
	Value         float64            `json:"value"`
	Inputs        map[string]float64 `json:"inputs,omitempty"`
	Sensitivities map[string]float64 `json:"sensitivities,omitempty"`
}

func (c *RunsCommand) Run(args []string) int {
	var (
		db    string
		limit int
	)
	f := c.flagSet("runs")
	f.StringVar(&db, "archive", "", "")
	f.IntVar(&limit, "limit", 20, "")
	if err := f.Parse(args); err != nil {
		return c.errorf("Error parsing command-line flags: %s\n\n%s", err, c.Help())
	}
	if db == "" {
		return c.errorf("The -archive flag is required\n\n%s", c.Help())
	}

	ctx := context.Background()
	store, err := archive.Open(ctx, db, c.log())
	if err != nil {
		return c.errorf("Error opening archive: %s", err)
	}
	defer store.Close()

	runs, err := store.List(ctx, limit)
	if err != nil {
		return c.errorf("Error listing runs: %s", err)
	}
	out := make([]runOutput, 0, len(runs))
	for _, r := range runs {
		out = append(out, runOutput{
			ID:            r.ID.String(),
			Kind:          r.Kind,
			CreatedAt:     r.CreatedAt.Format(time.RFC3339),
			Value:         r.Value,
			Inputs:        r.Inputs,
			Sensitivities: r.Sensitivities,
		})
	}
	return c.output(out)
}

func (c *RunsCommand) Help() string {
	return strings.TrimSpace(`
Usage: adjoint runs -archive=path [options]

  Lists archived runs, newest first.

Options:

  -archive=path    SQLite archive to read.
  -limit=20        Maximum number of runs; 0 lists all of them.
`)
}

func (c *RunsCommand) Synopsis() string {
	return "List archived runs"
}
