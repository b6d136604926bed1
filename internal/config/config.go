// Package config loads the JSON scenarios driving the command line.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"

	"github.com/born-ml/adjoint/internal/parallel"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"github.com/sugawarayuuta/sonnet"
)

// Scenario describes a Monte-Carlo risk run on European calls under a
// Black-Scholes diffusion.
type Scenario struct {
	Name      string    `json:"name"`
	Spot      float64   `json:"spot"`
	Vol       float64   `json:"vol"`
	Rate      float64   `json:"rate"`
	Maturity  float64   `json:"maturity"`
	Strikes   []float64 `json:"strikes"`
	Paths     int       `json:"paths"`
	Seed      uint64    `json:"seed"`
	Workers   int       `json:"workers"`
	BatchSize int       `json:"batch_size"`
	Archive   string    `json:"archive,omitempty"`
}

// Default returns the scenario used when no file is given.
func Default() Scenario {
	return Scenario{
		Name:      "default",
		Spot:      100,
		Vol:       0.2,
		Maturity:  1,
		Strikes:   []float64{100},
		Paths:     100000,
		Seed:      1,
		Workers:   runtime.NumCPU(),
		BatchSize: 1024,
	}
}

// Load reads a scenario from path on fs. Fields missing from the file keep
// their Default values.
func Load(fs afero.Fs, path string) (Scenario, error) {
	s := Default()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, fmt.Errorf("scenario %q not found: %w", path, err)
		}
		return s, fmt.Errorf("failed to read scenario: %w", err)
	}
	if err := sonnet.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse scenario %q: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("invalid scenario %q: %w", path, err)
	}
	return s, nil
}

// Save writes s to path on fs.
func Save(fs afero.Fs, path string, s Scenario) error {
	data, err := sonnet.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode scenario: %w", err)
	}
	return afero.WriteFile(fs, path, data, 0o644)
}

// Validate reports every invalid field.
func (s Scenario) Validate() error {
	var errs *multierror.Error
	if !(s.Spot > 0) {
		errs = multierror.Append(errs, fmt.Errorf("spot must be positive, got %g", s.Spot))
	}
	if !(s.Vol > 0) {
		errs = multierror.Append(errs, fmt.Errorf("vol must be positive, got %g", s.Vol))
	}
	if math.IsNaN(s.Rate) || math.IsInf(s.Rate, 0) {
		errs = multierror.Append(errs, fmt.Errorf("rate must be finite, got %g", s.Rate))
	}
	if !(s.Maturity > 0) {
		errs = multierror.Append(errs, fmt.Errorf("maturity must be positive, got %g", s.Maturity))
	}
	if len(s.Strikes) == 0 {
		errs = multierror.Append(errs, errors.New("at least one strike is required"))
	}
	for i, k := range s.Strikes {
		if !(k > 0) {
			errs = multierror.Append(errs, fmt.Errorf("strike %d must be positive, got %g", i, k))
		}
	}
	if s.Paths < 1 {
		errs = multierror.Append(errs, fmt.Errorf("paths must be positive, got %d", s.Paths))
	}
	if s.Workers < 0 {
		errs = multierror.Append(errs, fmt.Errorf("workers must not be negative, got %d", s.Workers))
	}
	if s.BatchSize < 1 {
		errs = multierror.Append(errs, fmt.Errorf("batch_size must be positive, got %d", s.BatchSize))
	}
	return errs.ErrorOrNil()
}

// Parallel returns the worker configuration of the scenario.
func (s Scenario) Parallel() parallel.Config {
	if s.Workers < 2 {
		cfg := parallel.Sequential()
		cfg.BatchSize = s.BatchSize
		return cfg
	}
	return parallel.Config{
		Enabled:      true,
		NumWorkers:   s.Workers,
		MinChunkSize: 1,
		BatchSize:    s.BatchSize,
	}
}
