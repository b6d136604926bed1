package autodiff

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Default arena geometry.
const (
	DefaultNodeBlockSize    = 16384
	DefaultDataBlockSize    = 65536
	DefaultAdjointBlockSize = 32768
	DefaultMaxArity         = 64
)

// Config controls the storage layout of a Tape.
//
// The adjoint shape (Multi, NumResults) is tape-scoped: every node recorded
// on the tape carries the same number of adjoints, so a sweep never has to
// look at the node to know how to propagate it.
type Config struct {
	NodeBlockSize    int  // Nodes per arena block.
	DataBlockSize    int  // Local derivatives and parent slots per arena block.
	AdjointBlockSize int  // Multi-adjoint slots per arena block.
	MaxArity         int  // Largest number of operands a single node may record.
	Multi            bool // Record NumResults adjoints per node instead of one.
	NumResults       int  // Number of simultaneous adjoints in multi mode.
}

// DefaultConfig returns a single-adjoint configuration with default block sizes.
func DefaultConfig() Config {
	return Config{
		NodeBlockSize:    DefaultNodeBlockSize,
		DataBlockSize:    DefaultDataBlockSize,
		AdjointBlockSize: DefaultAdjointBlockSize,
		MaxArity:         DefaultMaxArity,
		NumResults:       1,
	}
}

// MultiConfig returns DefaultConfig switched to multi-adjoint mode with n results.
func MultiConfig(n int) Config {
	cfg := DefaultConfig()
	cfg.Multi = true
	cfg.NumResults = n
	return cfg
}

// withDefaults fills zero-valued fields.
func (c Config) withDefaults() Config {
	if c.NodeBlockSize == 0 {
		c.NodeBlockSize = DefaultNodeBlockSize
	}
	if c.DataBlockSize == 0 {
		c.DataBlockSize = DefaultDataBlockSize
	}
	if c.AdjointBlockSize == 0 {
		c.AdjointBlockSize = DefaultAdjointBlockSize
	}
	if c.MaxArity == 0 {
		c.MaxArity = DefaultMaxArity
	}
	if c.NumResults == 0 {
		c.NumResults = 1
	}
	return c
}

// Validate reports every inconsistency in the configuration.
func (c Config) Validate() error {
	var errs *multierror.Error
	if c.NodeBlockSize <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("node block size must be positive, got %d", c.NodeBlockSize))
	}
	if c.DataBlockSize <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("data block size must be positive, got %d", c.DataBlockSize))
	}
	if c.AdjointBlockSize <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("adjoint block size must be positive, got %d", c.AdjointBlockSize))
	}
	if c.MaxArity < 2 {
		errs = multierror.Append(errs, fmt.Errorf("max arity must be at least 2, got %d", c.MaxArity))
	}
	if c.MaxArity > c.DataBlockSize {
		errs = multierror.Append(errs, fmt.Errorf("max arity %d exceeds data block size %d", c.MaxArity, c.DataBlockSize))
	}
	if c.NumResults < 1 {
		errs = multierror.Append(errs, fmt.Errorf("number of results must be at least 1, got %d", c.NumResults))
	}
	if c.NumResults > c.AdjointBlockSize {
		errs = multierror.Append(errs, fmt.Errorf("number of results %d exceeds adjoint block size %d", c.NumResults, c.AdjointBlockSize))
	}
	if !c.Multi && c.NumResults > 1 {
		errs = multierror.Append(errs, fmt.Errorf("%d results require multi-adjoint mode", c.NumResults))
	}
	return errs.ErrorOrNil()
}
