package experiment

import (
	"context"
	"testing"
)

func TestGridSearchValidation(t *testing.T) {
	if _, err := NewGridSearch([]string{"rate"}, nil); err == nil {
		t.Error("expected error for mismatched names and ranges")
	}
	if _, err := NewGridSearch([]string{"bogus"}, [][]float64{{0.1}}); err == nil {
		t.Error("expected error for unknown parameter name")
	}
	if _, err := NewGridSearch([]string{"rate"}, [][]float64{{}}); err == nil {
		t.Error("expected error for empty range")
	}
}

func TestGridSearchFindsBest(t *testing.T) {
	cfg := testConfig()
	cfg.Iterations = 10

	gs, err := NewGridSearch([]string{"rate"}, [][]float64{{0.001, 0.05}})
	if err != nil {
		t.Fatalf("NewGridSearch: %v", err)
	}

	params, bestEnergy, err := gs.Search(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if _, ok := params["rate"]; !ok {
		t.Errorf("best params %v missing rate", params)
	}
	if bestEnergy > 0 {
		t.Errorf("best energy = %v, want negative for this hamiltonian", bestEnergy)
	}
}

func TestGridSearchCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gs, err := NewGridSearch([]string{"rate"}, [][]float64{{0.05}})
	if err != nil {
		t.Fatalf("NewGridSearch: %v", err)
	}
	if _, _, err := gs.Search(ctx, testConfig()); err == nil {
		t.Error("expected error from cancelled context")
	}
}
