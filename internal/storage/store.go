package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/mcsim/internal/config"
	"github.com/san-kum/mcsim/internal/mc"
)

const (
	metadataFile = "metadata.json"
	energyFile   = "energy.csv"
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

// MoveStats is the acceptance summary of one move.
type MoveStats struct {
	Name       string  `json:"name"`
	Trials     int     `json:"trials"`
	Accepted   int     `json:"accepted"`
	Acceptance float64 `json:"acceptance"`
}

type RunMetadata struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Timestamp     time.Time          `json:"timestamp"`
	Seed          int64              `json:"seed"`
	MacroSteps    int                `json:"macro_steps"`
	InitialEnergy float64            `json:"initial_energy"`
	FinalEnergy   float64            `json:"final_energy"`
	Drift         float64            `json:"drift"`
	Metrics       map[string]float64 `json:"metrics"`
	Moves         []MoveStats        `json:"moves"`
	Config        *config.Config     `json:"config"`
}

// EnergyRow is one macro step of energy.csv.
type EnergyRow struct {
	Macro  int
	Energy float64
	Active int
}

// Save writes the metadata and the per macro step energies of a run and
// returns its id.
func (s *Store) Save(cfg *config.Config, result *mc.Result) (string, error) {
	name := cfg.Name
	if name == "" {
		name = "run"
	}
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:            runID,
		Name:          name,
		Timestamp:     now,
		Seed:          cfg.Seed,
		MacroSteps:    result.MacroSteps,
		InitialEnergy: result.InitialEnergy,
		FinalEnergy:   result.FinalEnergy,
		Drift:         result.Drift,
		Metrics:       result.Metrics,
		Config:        cfg,
	}
	for _, m := range result.Moves {
		meta.Moves = append(meta.Moves, MoveStats{
			Name:       m.Name,
			Trials:     m.Trials,
			Accepted:   m.Accepted,
			Acceptance: m.Acceptance,
		})
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), &meta); err != nil {
		return "", err
	}
	if err := writeEnergies(filepath.Join(runDir, energyFile), result); err != nil {
		return "", err
	}
	return runID, nil
}

func writeMetadata(path string, meta *RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeEnergies(path string, result *mc.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"macro", "energy", "active"}); err != nil {
		return err
	}
	for i, u := range result.Energies {
		active := 0
		if i < len(result.ActiveCounts) {
			active = result.ActiveCounts[i]
		}
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(u, 'g', -1, 64),
			strconv.Itoa(active),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns the stored runs, oldest first.
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

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadEnergies(runID string) ([]EnergyRow, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, energyFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []EnergyRow{}, nil
	}

	rows := make([]EnergyRow, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != 3 {
			return nil, fmt.Errorf("%s line %d: expected 3 fields, got %d", energyFile, i+2, len(record))
		}
		macro, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", energyFile, i+2, err)
		}
		u, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", energyFile, i+2, err)
		}
		active, err := strconv.Atoi(record[2])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", energyFile, i+2, err)
		}
		rows = append(rows, EnergyRow{Macro: macro, Energy: u, Active: active})
	}
	return rows, nil
}
