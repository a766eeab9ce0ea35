package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/horizon/internal/physics"
	"github.com/san-kum/horizon/internal/sim"
)

var particleHeader = []string{"x", "y", "z", "vx", "vy", "vz", "r", "g", "b", "hex"}

func writeSnapshot(w io.Writer, f *sim.Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(particleHeader); err != nil {
		return err
	}
	for i, p := range f.Positions {
		v, c := f.Velocities[i], f.Colors[i]
		row := []string{
			formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z),
			formatFloat(v.X), formatFloat(v.Y), formatFloat(v.Z),
			formatFloat(c.R), formatFloat(c.G), formatFloat(c.B),
			c.Hex(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// LoadSnapshot reads the final particle set of a run back into a frame.
func (s *Store) LoadSnapshot(runID string) (*sim.Frame, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, particleFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(particleHeader)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("run %s: empty %s", runID, particleFile)
	}

	f := &sim.Frame{
		Step: meta.StepsTaken,
		Time: float64(meta.StepsTaken) * meta.Dt,
	}
	if len(records) > 1 {
		n := len(records) - 1
		f.Positions = make([]r3.Vec, 0, n)
		f.Velocities = make([]r3.Vec, 0, n)
		f.Colors = make([]physics.Color, 0, n)
	}
	for i, rec := range records[1:] {
		p := fieldParser{rec: rec}
		f.Positions = append(f.Positions, r3.Vec{X: p.floatAt(0), Y: p.floatAt(1), Z: p.floatAt(2)})
		f.Velocities = append(f.Velocities, r3.Vec{X: p.floatAt(3), Y: p.floatAt(4), Z: p.floatAt(5)})
		f.Colors = append(f.Colors, physics.Color{R: p.floatAt(6), G: p.floatAt(7), B: p.floatAt(8)})
		if p.err != nil {
			return nil, fmt.Errorf("run %s: %s row %d: %w", runID, particleFile, i+2, p.err)
		}
	}
	f.Live = len(f.Positions)
	return f, nil
}
