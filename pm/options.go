package pm

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/cwbudde/algo-mwpm/stats/bootstrap"
)

// Configuration errors returned by options and series constructors.
var (
	ErrInvalidOption = errors.New("pm: invalid option")
	ErrInvalidStep   = errors.New("pm: step and averaging length must be >= 1")
)

const (
	defaultConfidence      = 0.95
	defaultTrialMultiplier = 20
)

type config struct {
	confidence      float64
	trials          int // 0 selects trialMultiplier × wavelets
	trialMultiplier int
	up              r3.Vec
	seed            uint64
	workers         int
}

func defaultConfig() config {
	return config{
		confidence:      defaultConfidence,
		trialMultiplier: defaultTrialMultiplier,
		up:              Up,
		seed:            rand.Uint64(),
		workers:         1,
	}
}

func applyOptions(opts []Option) (config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return config{}, err
		}
	}
	return cfg, nil
}

// trialsFor returns the bootstrap trial count for nw contributing wavelets.
func (c config) trialsFor(nw int) int {
	if c.trials > 0 {
		return c.trials
	}
	return max(1, c.trialMultiplier*nw)
}

// Option configures series construction.
type Option func(*config) error

// WithConfidence sets the bootstrap confidence level, strictly inside (0, 1).
func WithConfidence(c float64) Option {
	return func(cfg *config) error {
		if err := bootstrap.ValidateConfidence(c); err != nil {
			return err
		}
		cfg.confidence = c
		return nil
	}
}

// WithTrials fixes the number of bootstrap trials.
func WithTrials(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return fmt.Errorf("%w: %d", bootstrap.ErrInvalidTrials, n)
		}
		cfg.trials = n
		return nil
	}
}

// WithTrialMultiplier sets trials to m times the number of wavelets
// (default 20). Ignored when WithTrials is given.
func WithTrialMultiplier(m int) Option {
	return func(cfg *config) error {
		if m < 1 {
			return fmt.Errorf("%w: trial multiplier %d", ErrInvalidOption, m)
		}
		cfg.trialMultiplier = m
		return nil
	}
}

// WithUp sets the reference direction used to resolve axis signs. The
// vector is normalised.
func WithUp(up r3.Vec) Option {
	return func(cfg *config) error {
		n := r3.Norm(up)
		if !(n > 0) {
			return fmt.Errorf("%w: zero up vector", ErrInvalidOption)
		}
		cfg.up = r3.Scale(1/n, up)
		return nil
	}
}

// WithSeed makes the bootstrap reproducible. Output sample i draws from the
// PCG stream (seed, i).
func WithSeed(seed uint64) Option {
	return func(cfg *config) error {
		cfg.seed = seed
		return nil
	}
}

// WithWorkers sets how many output samples are estimated concurrently.
func WithWorkers(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return fmt.Errorf("%w: %d workers", ErrInvalidOption, n)
		}
		cfg.workers = n
		return nil
	}
}
