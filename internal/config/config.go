package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSites      = 8
	DefaultHidden     = 8
	DefaultChains     = 8
	DefaultSamples    = 256
	DefaultIterations = 200
	DefaultRate       = 0.05
	DefaultCoupling   = 1.0
	DefaultField      = 1.0
	DefaultShift      = 0.01
)

type Config struct {
	Model       string        `yaml:"model"`
	Machine     string        `yaml:"machine"`
	Sampler     string        `yaml:"sampler"`
	Optimizer   string        `yaml:"optimizer"`
	Sites       int           `yaml:"sites"`
	Hidden      int           `yaml:"hidden"`
	Mixing      int           `yaml:"mixing"`
	Chains      int           `yaml:"chains"`
	Samples     int           `yaml:"samples"`
	Iterations  int           `yaml:"iterations"`
	ChunkSize   int           `yaml:"chunk_size"`
	Seed        int64         `yaml:"seed"`
	Periodic    bool          `yaml:"periodic"`
	Lattice     LatticeConfig `yaml:"lattice"`
	OptimParams OptimConfig   `yaml:"optim_params"`
}

type LatticeConfig struct {
	Coupling float64 `yaml:"coupling"`
	Field    float64 `yaml:"field"`
	Decay    float64 `yaml:"decay"` // dissipation rate for open systems
}

type OptimConfig struct {
	Rate     float64 `yaml:"rate"`
	Momentum float64 `yaml:"momentum"`
	Shift    float64 `yaml:"shift"` // sr diagonal shift; 0 disables sr
}

func DefaultConfig() *Config {
	return &Config{
		Model:      "ising",
		Machine:    "rbm",
		Sampler:    "local",
		Optimizer:  "sgd",
		Sites:      DefaultSites,
		Hidden:     DefaultHidden,
		Chains:     DefaultChains,
		Samples:    DefaultSamples,
		Iterations: DefaultIterations,
		Periodic:   true,
		Lattice: LatticeConfig{
			Coupling: DefaultCoupling,
			Field:    DefaultField,
		},
		OptimParams: OptimConfig{
			Rate: DefaultRate,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// GetOptimizerParams flattens the optimizer section for the registry.
func (c *Config) GetOptimizerParams() map[string]float64 {
	return map[string]float64{
		"rate":     c.OptimParams.Rate,
		"momentum": c.OptimParams.Momentum,
		"shift":    c.OptimParams.Shift,
	}
}
