package config

var Presets = map[string]map[string]*Config{
	"ising": {
		"critical": {
			Model: "ising", Machine: "rbm", Sampler: "local", Optimizer: "sgd",
			Sites: 16, Hidden: 16, Chains: 8, Samples: 512, Iterations: 300, Periodic: true,
			Lattice:     LatticeConfig{Coupling: 1.0, Field: 1.0},
			OptimParams: OptimConfig{Rate: 0.02, Shift: 0.01},
		},
		"ordered": {
			Model: "ising", Machine: "rbm", Sampler: "local", Optimizer: "sgd",
			Sites: 16, Hidden: 8, Chains: 8, Samples: 256, Iterations: 200, Periodic: true,
			Lattice:     LatticeConfig{Coupling: 1.0, Field: 0.2},
			OptimParams: OptimConfig{Rate: 0.05},
		},
		"paramagnet": {
			Model: "ising", Machine: "rbm", Sampler: "local", Optimizer: "sgd",
			Sites: 16, Hidden: 8, Chains: 8, Samples: 256, Iterations: 150, Periodic: true,
			Lattice:     LatticeConfig{Coupling: 1.0, Field: 3.0},
			OptimParams: OptimConfig{Rate: 0.05},
		},
	},
	"heisenberg": {
		"chain": {
			Model: "heisenberg", Machine: "rbm", Sampler: "exchange", Optimizer: "sgd",
			Sites: 12, Hidden: 12, Chains: 8, Samples: 512, Iterations: 400, Periodic: true,
			Lattice:     LatticeConfig{Coupling: 1.0},
			OptimParams: OptimConfig{Rate: 0.01, Shift: 0.02},
		},
		"small": {
			Model: "heisenberg", Machine: "jastrow", Sampler: "exchange", Optimizer: "sgd",
			Sites: 8, Chains: 4, Samples: 256, Iterations: 200, Periodic: true,
			Lattice:     LatticeConfig{Coupling: 1.0},
			OptimParams: OptimConfig{Rate: 0.05},
		},
	},
	"lindblad": {
		"weak_dissipation": {
			Model: "lindblad", Machine: "ndm", Sampler: "local", Optimizer: "sgd",
			Sites: 4, Hidden: 4, Mixing: 4, Chains: 8, Samples: 512, Iterations: 400, Periodic: false,
			Lattice:     LatticeConfig{Coupling: 1.0, Field: 0.5, Decay: 0.1},
			OptimParams: OptimConfig{Rate: 0.01},
		},
		"strong_dissipation": {
			Model: "lindblad", Machine: "ndm", Sampler: "local", Optimizer: "sgd",
			Sites: 4, Hidden: 4, Mixing: 4, Chains: 8, Samples: 512, Iterations: 300, Periodic: false,
			Lattice:     LatticeConfig{Coupling: 1.0, Field: 0.5, Decay: 1.0},
			OptimParams: OptimConfig{Rate: 0.02},
		},
	},
}

func GetPreset(model, name string) *Config {
	group, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := group[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets(model string) []string {
	group, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(group))
	for name := range group {
		names = append(names, name)
	}
	return names
}
