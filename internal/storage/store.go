package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/horizon/internal/physics"
	"github.com/san-kum/horizon/internal/sim"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
	particleFile = "particles.csv"
)

// Store keeps one directory per run under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunDir returns the directory of a stored run.
func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	G          float64            `json:"g"`
	Mass       float64            `json:"mass"`
	Tilt       float64            `json:"tilt"`
	Dt         float64            `json:"dt"`
	Steps      int                `json:"steps"`
	Particles  int                `json:"particles"`
	Inner      float64            `json:"inner"`
	Outer      float64            `json:"outer"`
	StepsTaken int                `json:"steps_taken"`
	Live       int                `json:"live"`
	Absorbed   int                `json:"absorbed"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Physics rebuilds the configuration the run was produced with.
func (m *RunMetadata) Physics() physics.Config {
	return physics.Config{
		G:           m.G,
		M:           m.Mass,
		Tilt:        m.Tilt,
		Dt:          m.Dt,
		Steps:       m.Steps,
		N:           m.Particles,
		InnerRadius: m.Inner,
		OuterRadius: m.Outer,
		Seed:        m.Seed,
	}
}

// Save writes metadata, the sampled series and the final particle snapshot
// into a new run directory and returns its id.
func (s *Store) Save(name string, cfg physics.Config, result *sim.Result, samples []Sample) (string, error) {
	runID, runDir, err := s.newRunDir(name)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Name:       name,
		Timestamp:  time.Now(),
		Seed:       cfg.Seed,
		G:          cfg.G,
		Mass:       cfg.M,
		Tilt:       cfg.Tilt,
		Dt:         cfg.Dt,
		Steps:      cfg.Steps,
		Particles:  cfg.N,
		Inner:      cfg.InnerRadius,
		Outer:      cfg.OuterRadius,
		StepsTaken: result.StepsTaken,
		Live:       result.Live,
		Absorbed:   result.Absorbed,
		Metrics:    result.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, samplesFile), func(f *os.File) error {
		return WriteSamplesCSV(f, samples)
	}); err != nil {
		return "", err
	}

	if result.Final != nil {
		if err := writeFile(filepath.Join(runDir, particleFile), func(f *os.File) error {
			return writeSnapshot(f, result.Final)
		}); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) newRunDir(name string) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}

	base := fmt.Sprintf("%s_%d", name, time.Now().Unix())
	runID := base
	for i := 2; ; i++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s_%d", base, i)
	}
}

func writeJSON(path string, v any) error {
	return writeFile(path, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

func writeFile(path string, fn func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// List returns the stored runs, newest first. Directories without readable
// metadata are skipped.
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

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
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
