package experiment

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/vmclab/internal/config"
)

// GridSearch exhaustively scans hyperparameter combinations and keeps
// the one with the lowest final energy.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("experiment: %d parameter names but %d ranges", len(params), len(ranges))
	}
	for i, name := range params {
		if err := applyParam(&config.Config{}, name, 0); err != nil {
			return nil, err
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("experiment: empty range for parameter %s", name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

func (g *GridSearch) Search(ctx context.Context, base *config.Config) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), base, &best, &bestParams)
	if err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, fmt.Errorf("experiment: no grid point produced a result")
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	best *float64,
	bestParams *map[string]float64,
) error {
	if depth == len(g.paramNames) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		cfg := *base
		for name, val := range current {
			if err := applyParam(&cfg, name, val); err != nil {
				return err
			}
		}

		exp := New(&cfg)
		if err := exp.Setup(); err != nil {
			return err
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return err
		}
		if len(result.Energies) == 0 {
			return nil
		}

		val := real(result.Energies[len(result.Energies)-1].Mean)
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[paramName] = val
		if err := g.searchRecursive(ctx, depth+1, current, base, best, bestParams); err != nil {
			return err
		}
	}
	delete(current, paramName)
	return nil
}

func applyParam(cfg *config.Config, name string, val float64) error {
	switch name {
	case "rate":
		cfg.OptimParams.Rate = val
	case "momentum":
		cfg.OptimParams.Momentum = val
	case "shift":
		cfg.OptimParams.Shift = val
	case "coupling":
		cfg.Lattice.Coupling = val
	case "field":
		cfg.Lattice.Field = val
	case "decay":
		cfg.Lattice.Decay = val
	case "hidden":
		cfg.Hidden = int(val)
	default:
		return fmt.Errorf("experiment: unknown tunable parameter: %s", name)
	}
	return nil
}
