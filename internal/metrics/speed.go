package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/horizon/internal/sim"
)

// MaxSpeed is the largest finite particle speed seen during the run.
type MaxSpeed struct {
	name  string
	speed []float64
	max   float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{name: "max_speed"}
}

func (m *MaxSpeed) Name() string { return m.name }

func (m *MaxSpeed) Observe(f *sim.Frame) {
	m.speed = m.speed[:0]
	for _, v := range f.Velocities {
		if s := r3.Norm(v); !math.IsInf(s, 0) && !math.IsNaN(s) {
			m.speed = append(m.speed, s)
		}
	}
	if len(m.speed) == 0 {
		return
	}
	m.max = math.Max(m.max, floats.Max(m.speed))
}

func (m *MaxSpeed) Value() float64 { return m.max }

func (m *MaxSpeed) Reset() { m.max = 0 }
