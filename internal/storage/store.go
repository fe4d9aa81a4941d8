package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/vmclab/internal/config"
	"github.com/san-kum/vmclab/internal/driver"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Model       string             `json:"model"`
	Machine     string             `json:"machine"`
	Optimizer   string             `json:"optimizer"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Sites       int                `json:"sites"`
	Chains      int                `json:"chains"`
	Samples     int                `json:"samples"`
	Iterations  int                `json:"iterations"`
	FinalEnergy float64            `json:"final_energy"`
	FinalError  float64            `json:"final_error"`
	Estimators  map[string]float64 `json:"estimators"`
}

func (s *Store) Save(cfg *config.Config, result *driver.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", cfg.Model, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Model:      cfg.Model,
		Machine:    cfg.Machine,
		Optimizer:  cfg.Optimizer,
		Timestamp:  time.Now(),
		Seed:       cfg.Seed,
		Sites:      cfg.Sites,
		Chains:     cfg.Chains,
		Samples:    cfg.Samples,
		Iterations: result.Iterations,
		Estimators: result.Estimators,
	}
	if n := len(result.Energies); n > 0 {
		meta.FinalEnergy = real(result.Energies[n-1].Mean)
		meta.FinalError = result.Energies[n-1].ErrorOfMean
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "energies.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := []string{"iteration", "energy", "error", "variance", "tau_corr", "rhat", "acceptance"}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for i, st := range result.Energies {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(real(st.Mean), 'f', 8, 64),
			strconv.FormatFloat(st.ErrorOfMean, 'f', 8, 64),
			strconv.FormatFloat(st.Variance, 'f', 8, 64),
			strconv.FormatFloat(st.TauCorr, 'f', 4, 64),
			strconv.FormatFloat(st.Rhat, 'f', 4, 64),
		}
		if i < len(result.Acceptance) {
			row = append(row, strconv.FormatFloat(result.Acceptance[i], 'f', 4, 64))
		} else {
			row = append(row, "0")
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadEnergies reads back the per-iteration energy trace of a stored run.
func (s *Store) LoadEnergies(runID string) ([]float64, []float64, error) {
	csvPath := filepath.Join(s.baseDir, runID, "energies.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return []float64{}, []float64{}, nil
	}

	energies := make([]float64, 0, len(records)-1)
	errors := make([]float64, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < 3 {
			continue
		}

		e, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		sigma, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			continue
		}
		energies = append(energies, e)
		errors = append(errors, sigma)
	}

	return energies, errors, nil
}
