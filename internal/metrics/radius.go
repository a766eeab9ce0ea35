package metrics

import (
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/horizon/internal/sim"
)

// MeanRadius reports the mean distance of the survivors in the most recent
// frame.
type MeanRadius struct {
	name string
	dist []float64
	last float64
}

func NewMeanRadius() *MeanRadius {
	return &MeanRadius{name: "mean_radius"}
}

func (m *MeanRadius) Name() string { return m.name }

func (m *MeanRadius) Observe(f *sim.Frame) {
	if f.Live == 0 {
		m.last = 0
		return
	}
	m.dist = m.dist[:0]
	for _, p := range f.Positions {
		m.dist = append(m.dist, r3.Norm(p))
	}
	m.last = stat.Mean(m.dist, nil)
}

func (m *MeanRadius) Value() float64 { return m.last }

func (m *MeanRadius) Reset() { m.last = 0 }
