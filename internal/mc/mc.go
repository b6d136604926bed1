// Package mc runs Monte-Carlo simulations of payoffs written against
// autodiff.Scalar, either for values alone or with sensitivities to the model
// parameters.
//
// Every path draws its Gaussians from a generator seeded with (Seed, path),
// and batch results are combined in batch order, so values do not depend on
// the number of workers. Sensitivities are accumulated per worker tape and
// agree across worker counts up to rounding.
package mc

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/born-ml/adjoint/internal/autodiff"
	"github.com/born-ml/adjoint/internal/logging"
	"github.com/born-ml/adjoint/internal/parallel"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
)

// Payoff computes the payoffs of one path into out from the model parameters
// and the path's Gaussian draws. It must assign every element of out.
type Payoff[T autodiff.Scalar[T]] func(params []T, gauss []float64, out []T)

// Config controls a simulation.
type Config struct {
	Paths      int             // Number of simulated paths.
	Dim        int             // Gaussian draws per path.
	NumPayoffs int             // Length of the payoff vector; defaults to 1.
	Seed       uint64          // Generator seed.
	Parallel   parallel.Config // Workers and batch size.
	Tape       autodiff.Config // Storage of the per-worker tapes.
	Logger     hclog.Logger    // Optional; nil discards.
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs *multierror.Error
	if c.Paths < 1 {
		errs = multierror.Append(errs, fmt.Errorf("paths must be positive, got %d", c.Paths))
	}
	if c.Dim < 1 {
		errs = multierror.Append(errs, fmt.Errorf("dimension must be positive, got %d", c.Dim))
	}
	if c.NumPayoffs < 0 {
		errs = multierror.Append(errs, fmt.Errorf("payoff count must not be negative, got %d", c.NumPayoffs))
	}
	if c.Parallel.BatchSize < 0 {
		errs = multierror.Append(errs, fmt.Errorf("batch size must not be negative, got %d", c.Parallel.BatchSize))
	}
	return errs.ErrorOrNil()
}

func (c Config) payoffs() int {
	return max(c.NumPayoffs, 1)
}

func (c Config) batchSize() int {
	if c.Parallel.BatchSize < 1 {
		return parallel.DefaultConfig().BatchSize
	}
	return c.Parallel.BatchSize
}

// Result holds path averages.
type Result struct {
	Values []float64   // Mean of each payoff.
	Risks  [][]float64 // Risks[i][k] is the derivative of Values[i] to parameter k.
	Paths  int
}

// ErrNoPayoff is returned when a payoff function is missing.
var ErrNoPayoff = errors.New("mc: payoff is nil")

// generator draws the Gaussians of a path.
type generator struct {
	seed uint64
	src  *rand.PCG
	rng  *rand.Rand
	buf  []float64
}

func newGenerator(seed uint64, dim int) *generator {
	src := rand.NewPCG(seed, 0)
	return &generator{seed: seed, src: src, rng: rand.New(src), buf: make([]float64, dim)}
}

// path reseeds the generator for path p and fills the buffer.
func (g *generator) path(p int) []float64 {
	g.src.Seed(g.seed, uint64(p))
	for i := range g.buf {
		g.buf[i] = g.rng.NormFloat64()
	}
	return g.buf
}

// Value simulates payoff in plain floating point.
func Value(ctx context.Context, cfg Config, params []float64, payoff Payoff[autodiff.Float]) (*Result, error) {
	if payoff == nil {
		return nil, ErrNoPayoff
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}
	log := logging.OrNull(cfg.Logger).Named("mc")
	start := time.Now()

	np := cfg.payoffs()
	batches := parallel.Batches(cfg.Paths, cfg.batchSize())
	sums := make([][]float64, len(batches))
	in := autodiff.Floats(params)

	parallel.For(len(batches), func(i int) {
		if ctx.Err() != nil {
			return
		}
		b := batches[i]
		gen := newGenerator(cfg.Seed, cfg.Dim)
		out := make([]autodiff.Float, np)
		sum := make([]float64, np)
		for p := b.Start; p < b.End; p++ {
			clear(out)
			payoff(in, gen.path(p), out)
			for j, v := range out {
				sum[j] += float64(v)
			}
		}
		sums[i] = sum
	}, batchConfig(cfg.Parallel))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Values: reduce(sums, np, cfg.Paths), Paths: cfg.Paths}
	log.Debug("valuation done", "paths", cfg.Paths, "batches", len(batches), "elapsed", time.Since(start))
	return res, nil
}

// batchConfig lets parallel.For fan out over batches: a batch already holds
// enough paths, so the per-item chunk minimum does not apply.
func batchConfig(cfg parallel.Config) parallel.Config {
	cfg.MinChunkSize = 1
	return cfg
}

// reduce adds per-batch sums in batch order and divides by paths.
func reduce(sums [][]float64, n, paths int) []float64 {
	out := make([]float64, n)
	for _, s := range sums {
		for j, v := range s {
			out[j] += v
		}
	}
	for j := range out {
		out[j] /= float64(paths)
	}
	return out
}
