package command

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/born-ml/adjoint/internal/archive"
	"github.com/born-ml/adjoint/internal/autodiff"
	"github.com/born-ml/adjoint/internal/config"
	"github.com/born-ml/adjoint/internal/mc"
)

// RiskCommand runs a Monte-Carlo risk simulation of European calls.
type RiskCommand struct {
	Meta
}

type strikeRisk struct {
	Strike        float64            `json:"strike"`
	Value         float64            `json:"value"`
	Sensitivities map[string]float64 `json:"sensitivities"`
}

type riskOutput struct {
	ID       string       `json:"id,omitempty"`
	Scenario string       `json:"scenario"`
	Paths    int          `json:"paths"`
	Results  []strikeRisk `json:"results"`
}

func (c *RiskCommand) Run(args []string) int {
	var (
		path    string
		flags   = config.Default()
		strikes = floatList(flags.Strikes)
	)
	f := c.flagSet("risk")
	f.StringVar(&path, "config", "", "")
	f.Float64Var(&flags.Spot, "spot", flags.Spot, "")
	f.Float64Var(&flags.Vol, "vol", flags.Vol, "")
	f.Float64Var(&flags.Rate, "rate", flags.Rate, "")
	f.Float64Var(&flags.Maturity, "mat", flags.Maturity, "")
	f.Var(&strikes, "strikes", "")
	f.IntVar(&flags.Paths, "paths", flags.Paths, "")
	f.Uint64Var(&flags.Seed, "seed", flags.Seed, "")
	f.IntVar(&flags.Workers, "workers", flags.Workers, "")
	f.IntVar(&flags.BatchSize, "batch", flags.BatchSize, "")
	f.StringVar(&flags.Archive, "archive", "", "")
	if err := f.Parse(args); err != nil {
		return c.errorf("Error parsing command-line flags: %s\n\n%s", err, c.Help())
	}
	flags.Strikes = strikes

	s := flags
	if path != "" {
		var err error
		if s, err = config.Load(c.fs(), path); err != nil {
			return c.errorf("Error loading scenario: %s", err)
		}
		// Explicit flags override the file.
		f.Visit(func(fl *flag.Flag) { override(&s, flags, fl.Name) })
	}
	if err := s.Validate(); err != nil {
		return c.errorf("Invalid scenario: %s", err)
	}

	out, run, err := c.simulate(context.Background(), s)
	if err != nil {
		return c.errorf("Error running simulation: %s", err)
	}
	if err := c.archive(context.Background(), s.Archive, run); err != nil {
		return c.errorf("Error archiving run: %s", err)
	}
	if s.Archive != "" {
		out.ID = run.ID.String()
	}
	return c.output(out)
}

func override(s *config.Scenario, flags config.Scenario, name string) {
	switch name {
	case "spot":
		s.Spot = flags.Spot
	case "vol":
		s.Vol = flags.Vol
	case "rate":
		s.Rate = flags.Rate
	case "mat":
		s.Maturity = flags.Maturity
	case "strikes":
		s.Strikes = flags.Strikes
	case "paths":
		s.Paths = flags.Paths
	case "seed":
		s.Seed = flags.Seed
	case "workers":
		s.Workers = flags.Workers
	case "batch":
		s.BatchSize = flags.BatchSize
	case "archive":
		s.Archive = flags.Archive
	}
}

// simulate prices the scenario's strikes. A single strike takes the
// single-adjoint path; several strikes share one multi-adjoint sweep per path.
func (c *RiskCommand) simulate(ctx context.Context, s config.Scenario) (*riskOutput, *archive.Run, error) {
	model := mc.GBM{Spot: s.Spot, Vol: s.Vol, Rate: s.Rate, Maturity: s.Maturity}
	cfg := mc.Config{
		Paths:      s.Paths,
		Dim:        1,
		NumPayoffs: len(s.Strikes),
		Seed:       s.Seed,
		Parallel:   s.Parallel(),
		Tape:       autodiff.DefaultConfig(),
		Logger:     c.log(),
	}
	payoff := mc.EuropeanCalls[autodiff.Number](s.Strikes)

	var (
		res *mc.Result
		err error
	)
	if len(s.Strikes) == 1 {
		res, err = mc.Risk(ctx, cfg, model.Params(), payoff)
	} else {
		res, err = mc.RiskMulti(ctx, cfg, model.Params(), payoff)
	}
	if err != nil {
		return nil, nil, err
	}

	out := &riskOutput{Scenario: s.Name, Paths: res.Paths}
	run := &archive.Run{
		Kind:          "risk",
		Value:         res.Values[0],
		Inputs:        named(mc.GBMParams, model.Params()),
		Sensitivities: map[string]float64{},
	}
	for i, k := range s.Strikes {
		sens := named(mc.GBMParams, res.Risks[i])
		out.Results = append(out.Results, strikeRisk{Strike: k, Value: res.Values[i], Sensitivities: sens})
		run.Inputs[fmt.Sprintf("strike_%d", i)] = k
		for name, v := range sens {
			run.Sensitivities[fmt.Sprintf("%s_%d", name, i)] = v
		}
	}
	return out, run, nil
}

func (c *RiskCommand) Help() string {
	return strings.TrimSpace(`
Usage: adjoint risk [options]

  Simulates European calls under a Black-Scholes diffusion and prints their
  values with the derivatives to spot, vol, rate and maturity. Each worker
  records paths on its own tape; several strikes are differentiated together.

Options:

  -config=path     JSON scenario; explicit flags override its fields.
  -spot=100        Initial spot.
  -vol=0.2         Volatility.
  -rate=0          Continuously compounded rate.
  -mat=1           Maturity in years.
  -strikes=100     Comma-separated strikes.
  -paths=100000    Number of paths.
  -seed=1          Generator seed.
  -workers=N       Worker goroutines, defaults to the number of CPUs.
  -batch=1024      Paths per batch.
  -archive=path    Save the run to this SQLite archive.
`)
}

func (c *RiskCommand) Synopsis() string {
	return "Monte-Carlo values and sensitivities"
}
