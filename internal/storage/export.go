package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/vmclab/internal/config"
	"github.com/san-kum/vmclab/internal/driver"
)

type ExportData struct {
	Model      string             `json:"model"`
	Machine    string             `json:"machine"`
	Optimizer  string             `json:"optimizer"`
	Sites      int                `json:"sites"`
	Seed       int64              `json:"seed"`
	Iterations int                `json:"iterations"`
	Energies   []float64          `json:"energies"`
	Errors     []float64          `json:"errors"`
	Acceptance []float64          `json:"acceptance"`
	Estimators map[string]float64 `json:"estimators"`
}

func buildExport(cfg *config.Config, result *driver.Result) ExportData {
	data := ExportData{
		Model:      cfg.Model,
		Machine:    cfg.Machine,
		Optimizer:  cfg.Optimizer,
		Sites:      cfg.Sites,
		Seed:       cfg.Seed,
		Iterations: result.Iterations,
		Energies:   make([]float64, len(result.Energies)),
		Errors:     make([]float64, len(result.Energies)),
		Acceptance: result.Acceptance,
		Estimators: result.Estimators,
	}
	for i, st := range result.Energies {
		data.Energies[i] = real(st.Mean)
		data.Errors[i] = st.ErrorOfMean
	}
	return data
}

func ExportJSON(path string, cfg *config.Config, result *driver.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeExport(file, cfg, result)
}

func ExportJSONStdout(cfg *config.Config, result *driver.Result) error {
	return writeExport(os.Stdout, cfg, result)
}

func writeExport(w io.Writer, cfg *config.Config, result *driver.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildExport(cfg, result))
}
