// Package automation runs scripted sequences of optimizations: YAML
// scenarios with explicit steps, and linear sweeps of one model
// parameter such as the transverse field or the dissipation rate.
package automation

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/vmclab/internal/config"
	"github.com/san-kum/vmclab/internal/driver"
	"github.com/san-kum/vmclab/internal/experiment"
	"github.com/san-kum/vmclab/internal/storage"
)

// Scenario is a scripted sequence of optimization runs.
type Scenario struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Steps       []config.Config `yaml:"steps"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("automation: scenario %q has no steps", scenario.Name)
	}

	return &scenario, nil
}

// RunScenario executes all steps in order, saving each run when a
// store is provided.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store) ([]*driver.Result, error) {
	results := make([]*driver.Result, 0, len(scenario.Steps))

	for i := range scenario.Steps {
		cfg := scenario.Steps[i]

		exp := experiment.New(&cfg)
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		results = append(results, result)

		if st != nil {
			if _, err := st.Save(&cfg, result); err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
		}
	}

	return results, nil
}

// ParameterSweep varies one model parameter over a linear range and
// optimizes from scratch at every point.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult is the converged energy at one parameter value.
type SweepResult struct {
	ParamValue  float64
	Energy      float64
	ErrorOfMean float64
	Estimators  map[string]float64
}

func RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("automation: sweep needs at least 2 steps, got %d", sweep.NumSteps)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := *sweep.Base
		if err := setSweepParam(&cfg, sweep.ParamName, paramVal); err != nil {
			return nil, err
		}

		exp := experiment.New(&cfg)
		if err := exp.Setup(); err != nil {
			return nil, err
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		sr := SweepResult{ParamValue: paramVal, Estimators: result.Estimators}
		if n := len(result.Energies); n > 0 {
			sr.Energy = real(result.Energies[n-1].Mean)
			sr.ErrorOfMean = result.Energies[n-1].ErrorOfMean
		}
		results = append(results, sr)
	}

	return results, nil
}

func setSweepParam(cfg *config.Config, name string, val float64) error {
	switch name {
	case "field":
		cfg.Lattice.Field = val
	case "coupling":
		cfg.Lattice.Coupling = val
	case "decay":
		cfg.Lattice.Decay = val
	default:
		return fmt.Errorf("automation: unknown sweep parameter: %s", name)
	}
	return nil
}
