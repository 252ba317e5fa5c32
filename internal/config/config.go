// Package config loads the YAML run configuration of the mwpm command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-mwpm/mwt"
	"github.com/cwbudde/algo-mwpm/pm"
)

// ErrInvalid is returned when a loaded configuration fails validation.
var ErrInvalid = errors.New("config: invalid configuration")

const maxFileSize = 1 << 20

// TransformConfig selects the reference multiwavelet engine.
type TransformConfig struct {
	WaveletLength int     `yaml:"wavelet_length"`
	Wavelets      int     `yaml:"wavelets"`
	Cycles        float64 `yaml:"cycles"`
	Decimation    []int   `yaml:"decimation"`
	AntiAlias     *bool   `yaml:"anti_alias"`
}

// Gap is a time interval of bad data whose estimates are zeroed.
type Gap struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

// MotionConfig holds the particle-motion estimation parameters.
// AveragingLength 0 selects sample-by-sample estimation.
type MotionConfig struct {
	Confidence      float64    `yaml:"confidence"`
	Trials          int        `yaml:"trials"`
	TrialMultiplier int        `yaml:"trial_multiplier"`
	Step            int        `yaml:"step"`
	AveragingLength int        `yaml:"averaging_length"`
	Up              [3]float64 `yaml:"up"`
	Seed            *uint64    `yaml:"seed"`
	Workers         int        `yaml:"workers"`
	Gaps            []Gap      `yaml:"gaps"`
}

// InputConfig describes the three-column ASCII input.
type InputConfig struct {
	Path string  `yaml:"path"`
	T0   float64 `yaml:"t0"`
	Dt   float64 `yaml:"dt"`
}

// OutputConfig describes where series are written. An empty Dir writes to
// standard output.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
}

// Config is the root of the YAML file.
type Config struct {
	Transform TransformConfig `yaml:"transform"`
	Motion    MotionConfig    `yaml:"motion"`
	Input     InputConfig     `yaml:"input"`
	Output    OutputConfig    `yaml:"output"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Transform: TransformConfig{
			WaveletLength: 32,
			Wavelets:      3,
			Cycles:        6,
			Decimation:    []int{1, 2, 4, 8},
		},
		Motion: MotionConfig{
			Confidence:      0.95,
			TrialMultiplier: 20,
			Step:            1,
			Up:              [3]float64{0, 0, 1},
			Workers:         1,
		},
		Input:  InputConfig{Dt: 0.01},
		Output: OutputConfig{Prefix: "pm"},
	}
}

// Load reads a YAML file over the defaults, so fields omitted from the
// file keep their default values.
func Load(path string) (*Config, error) {
	clean := filepath.Clean(path)
	info, err := os.Stat(clean)
	if err != nil {
		return nil, fmt.Errorf("stat config: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values the library would otherwise reject later.
func (c *Config) Validate() error {
	t := c.Transform
	if t.WaveletLength < 2 || t.Wavelets < 1 || t.Wavelets >= t.WaveletLength {
		return fmt.Errorf("%w: %d wavelets of length %d", ErrInvalid, t.Wavelets, t.WaveletLength)
	}
	if !(t.Cycles > 0) || t.Cycles >= float64(t.WaveletLength)/2 {
		return fmt.Errorf("%w: %v cycles per %d samples", ErrInvalid, t.Cycles, t.WaveletLength)
	}
	if len(t.Decimation) == 0 {
		return fmt.Errorf("%w: no decimation factors", ErrInvalid)
	}
	for _, d := range t.Decimation {
		if d < 1 {
			return fmt.Errorf("%w: decimation factor %d", ErrInvalid, d)
		}
	}

	m := c.Motion
	if !(m.Confidence > 0 && m.Confidence < 1) {
		return fmt.Errorf("%w: confidence %v", ErrInvalid, m.Confidence)
	}
	if m.Step < 1 || m.AveragingLength < 0 || m.Workers < 1 || m.Trials < 0 || m.TrialMultiplier < 1 {
		return fmt.Errorf("%w: motion parameters %+v", ErrInvalid, m)
	}
	if m.Up == [3]float64{} {
		return fmt.Errorf("%w: zero up vector", ErrInvalid)
	}
	for _, g := range m.Gaps {
		if g.End < g.Start {
			return fmt.Errorf("%w: gap [%v, %v]", ErrInvalid, g.Start, g.End)
		}
	}

	if !(c.Input.Dt > 0) {
		return fmt.Errorf("%w: sample interval %v", ErrInvalid, c.Input.Dt)
	}
	return nil
}

// Engine builds the reference transform engine.
func (t TransformConfig) Engine() (*mwt.Engine, error) {
	basis, err := mwt.NewSineTaperBasis(t.WaveletLength, t.Wavelets, t.Cycles)
	if err != nil {
		return nil, err
	}
	var opts []mwt.Option
	if t.AntiAlias != nil {
		opts = append(opts, mwt.WithAntiAlias(*t.AntiAlias))
	}
	return mwt.NewEngine(basis, t.Decimation, opts...)
}

// Options converts the motion parameters to series options.
func (m MotionConfig) Options() []pm.Option {
	opts := []pm.Option{
		pm.WithConfidence(m.Confidence),
		pm.WithTrialMultiplier(m.TrialMultiplier),
		pm.WithUp(r3.Vec{X: m.Up[0], Y: m.Up[1], Z: m.Up[2]}),
		pm.WithWorkers(m.Workers),
	}
	if m.Trials > 0 {
		opts = append(opts, pm.WithTrials(m.Trials))
	}
	if m.Seed != nil {
		opts = append(opts, pm.WithSeed(*m.Seed))
	}
	return opts
}

// Windows returns the gaps as time windows.
func (m MotionConfig) Windows() []mwt.Window {
	out := make([]mwt.Window, len(m.Gaps))
	for i, g := range m.Gaps {
		out[i] = mwt.Window{Start: g.Start, End: g.End}
	}
	return out
}
