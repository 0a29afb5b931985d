// Package config loads the probe configuration from YAML.
//
//	log:
//	  level: info
//	probe:
//	  timeout: 5s
//	kernel:
//	  cells: 64
//	check:
//	  tolerance: 1e-9
//	  directions: 64
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid")

// Bounds on the kernel tessellation resolution.
const (
	MinCells = 4
	MaxCells = 512
)

// Config is the probe configuration.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Probe  ProbeConfig  `yaml:"probe"`
	Kernel KernelConfig `yaml:"kernel"`
	Check  CheckConfig  `yaml:"check"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type ProbeConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

type KernelConfig struct {
	Cells int `yaml:"cells"` // marching cubes cells along the longest axis
}

type CheckConfig struct {
	Tolerance  float64 `yaml:"tolerance"`  // slack on top of the sampling tolerance
	Directions int     `yaml:"directions"` // lattice directions on top of axes and diagonals
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log:    LogConfig{Level: "info"},
		Probe:  ProbeConfig{Timeout: 5 * time.Second},
		Kernel: KernelConfig{Cells: 64},
		Check:  CheckConfig{Tolerance: 1e-9, Directions: 64},
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes YAML over the defaults and validates the result. Keys
// missing from data keep their default; unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	c := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks every field and returns the first problem found.
func (c Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	if c.Probe.Timeout <= 0 {
		return fmt.Errorf("%w: probe.timeout %s must be positive", ErrInvalid, c.Probe.Timeout)
	}
	if c.Kernel.Cells < MinCells || c.Kernel.Cells > MaxCells {
		return fmt.Errorf("%w: kernel.cells %d outside [%d, %d]", ErrInvalid, c.Kernel.Cells, MinCells, MaxCells)
	}
	if !(c.Check.Tolerance >= 0) {
		return fmt.Errorf("%w: check.tolerance %v must be non-negative", ErrInvalid, c.Check.Tolerance)
	}
	if c.Check.Directions < 0 {
		return fmt.Errorf("%w: check.directions %d must be non-negative", ErrInvalid, c.Check.Directions)
	}
	return nil
}
