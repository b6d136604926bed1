package mc

import (
	"context"
	"fmt"
	"time"

	"github.com/born-ml/adjoint/internal/autodiff"
	"github.com/born-ml/adjoint/internal/logging"
	"github.com/born-ml/adjoint/internal/parallel"
)

// worker is the state owned by one goroutine of a risk run.
type worker struct {
	tape   *autodiff.Tape
	params []autodiff.Number
	mark   autodiff.Position
	marked int // nodes recorded before the mark
	gen    *generator
	out    []autodiff.Number
}

// newWorker puts the parameters on a fresh tape and marks it, so that every
// path recorded afterwards can be discarded while the parameter adjoints keep
// accumulating.
func newWorker(tcfg autodiff.Config, params []float64, seed uint64, dim, np int) (*worker, error) {
	tape, err := autodiff.NewTape(tcfg)
	if err != nil {
		return nil, err
	}
	xs := autodiff.Constants(params)
	for i := range xs {
		xs[i].PutOnTape(tape)
	}
	tape.Mark()
	return &worker{
		tape:   tape,
		params: xs,
		mark:   tape.MarkPosition(),
		marked: tape.Len(),
		gen:    newGenerator(seed, dim),
		out:    make([]autodiff.Number, np),
	}, nil
}

// run records and propagates the paths of b and returns their payoff sums.
func (w *worker) run(b parallel.Batch, payoff Payoff[autodiff.Number]) []float64 {
	sum := make([]float64, len(w.out))
	multi := w.tape.Multi()
	for p := b.Start; p < b.End; p++ {
		w.tape.RewindToMark()
		clear(w.out)
		payoff(w.params, w.gen.path(p), w.out)
		for j, v := range w.out {
			sum[j] += v.Value()
			// Seeding overwrites an adjoint. A result recorded before the mark
			// gets a node after it so that its seed accumulates through the sweep.
			if v.OnTape() && v.Node() < w.marked {
				w.out[j] = v.AddF(0)
			}
		}
		switch {
		case multi:
			w.tape.PropagateResults(w.out, w.mark)
		case w.out[0].OnTape():
			w.out[0].PropagateToMark()
		}
	}
	return sum
}

// Risk simulates payoff on tapes and returns the values of all payoffs with
// the sensitivities of the first one.
func Risk(ctx context.Context, cfg Config, params []float64, payoff Payoff[autodiff.Number]) (*Result, error) {
	return risk(ctx, cfg, params, payoff, false)
}

// RiskMulti is Risk differentiating every payoff in a single sweep per path.
func RiskMulti(ctx context.Context, cfg Config, params []float64, payoff Payoff[autodiff.Number]) (*Result, error) {
	return risk(ctx, cfg, params, payoff, true)
}

func risk(ctx context.Context, cfg Config, params []float64, payoff Payoff[autodiff.Number], multi bool) (*Result, error) {
	if payoff == nil {
		return nil, ErrNoPayoff
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}
	log := logging.OrNull(cfg.Logger).Named("mc")
	start := time.Now()

	np := cfg.payoffs()
	tcfg := cfg.Tape
	tcfg.Multi = multi
	tcfg.NumResults = 1
	if multi {
		tcfg.NumResults = np
	}
	pcfg := cfg.Parallel
	pcfg.BatchSize = cfg.batchSize()

	pool, err := parallel.NewPool(pcfg, func(int) (*worker, error) {
		return newWorker(tcfg, params, cfg.Seed, cfg.Dim, np)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create workers: %w", err)
	}

	sums := make([][]float64, len(parallel.Batches(cfg.Paths, pcfg.BatchSize)))
	err = pool.Run(ctx, cfg.Paths, func(_ context.Context, w *worker, b parallel.Batch) error {
		sums[b.Index] = w.run(b, payoff)
		log.Trace("batch done", "batch", b.Index, "paths", b.Len())
		return nil
	})
	if err != nil {
		return nil, err
	}

	rows := 1
	if multi {
		rows = np
	}
	risks := make([][]float64, rows)
	for i := range risks {
		risks[i] = make([]float64, len(params))
	}
	for _, w := range pool.Workers() {
		w.tape.PropagateMarkToStart()
		for i := range risks {
			for k, x := range w.params {
				risks[i][k] += x.AdjointAt(i)
			}
		}
	}
	for i := range risks {
		for k := range risks[i] {
			risks[i][k] /= float64(cfg.Paths)
		}
	}

	log.Debug("risk done",
		"paths", cfg.Paths,
		"workers", pool.Size(),
		"multi", multi,
		"elapsed", time.Since(start))
	return &Result{
		Values: reduce(sums, np, cfg.Paths),
		Risks:  risks,
		Paths:  cfg.Paths,
	}, nil
}
