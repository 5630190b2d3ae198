package qsim

import (
	"fmt"
	"runtime"

	"github.com/spf13/viper"
)

// MaxAddressableQubits bounds the register size regardless of configuration;
// 2^MaxAddressableQubits amplitudes must fit a single Go slice.
const MaxAddressableQubits = 40

type Config struct {
	// Tolerance used for unitarity checks, zero-probability detection and
	// normalization drift.
	Tolerance float64

	// MaxQubits is the largest register NewStateVector accepts.
	MaxQubits int

	// Workers is the number of goroutines used for repeated execution.
	Workers int

	// GateWorkers splits the group range of a single gate application over
	// this many goroutines once the register reaches ParallelQubits.
	GateWorkers    int
	ParallelQubits int

	// CheckEvery verifies the norm after that many gate steps. Zero disables.
	CheckEvery int

	// Strict turns normalization drift into an error instead of a warning
	// followed by renormalization.
	Strict bool
}

func NewConfig() *Config {
	return &Config{
		Tolerance:      1e-9,
		MaxQubits:      28,
		Workers:        runtime.GOMAXPROCS(0),
		GateWorkers:    1,
		ParallelQubits: 16,
	}
}

/*
LoadConfig builds a Config from defaults, an optional config file and QSIM_*
environment variables, in increasing order of precedence.

Recognised keys:
  - tolerance
  - max_qubits
  - workers
  - gate_workers
  - parallel_qubits
  - check_every
  - strict
*/
func LoadConfig(path string) (*Config, error) {
	return ConfigFromViper(path, viper.New())
}

// ConfigFromViper is LoadConfig on a caller supplied viper instance, so flags
// bound by a front-end take part in the lookup.
func ConfigFromViper(path string, v *viper.Viper) (*Config, error) {
	defaults := NewConfig()

	v.SetEnvPrefix("qsim")
	v.AutomaticEnv()

	v.SetDefault("tolerance", defaults.Tolerance)
	v.SetDefault("max_qubits", defaults.MaxQubits)
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("gate_workers", defaults.GateWorkers)
	v.SetDefault("parallel_qubits", defaults.ParallelQubits)
	v.SetDefault("check_every", defaults.CheckEvery)
	v.SetDefault("strict", defaults.Strict)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	config := &Config{
		Tolerance:      v.GetFloat64("tolerance"),
		MaxQubits:      v.GetInt("max_qubits"),
		Workers:        v.GetInt("workers"),
		GateWorkers:    v.GetInt("gate_workers"),
		ParallelQubits: v.GetInt("parallel_qubits"),
		CheckEvery:     v.GetInt("check_every"),
		Strict:         v.GetBool("strict"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects settings the engine cannot honour.
func (c *Config) Validate() error {
	if c.Tolerance <= 0 || c.Tolerance >= 1 {
		return fmt.Errorf("tolerance must be in (0, 1), got %g", c.Tolerance)
	}
	if c.MaxQubits < 1 || c.MaxQubits > MaxAddressableQubits {
		return fmt.Errorf("%w: max_qubits must be in [1, %d], got %d",
			ErrInvalidSize, MaxAddressableQubits, c.MaxQubits)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.GateWorkers < 1 {
		return fmt.Errorf("gate_workers must be positive, got %d", c.GateWorkers)
	}
	if c.CheckEvery < 0 {
		return fmt.Errorf("check_every must not be negative, got %d", c.CheckEvery)
	}
	return nil
}

func configOrDefault(c *Config) *Config {
	if c == nil {
		return NewConfig()
	}
	return c
}
