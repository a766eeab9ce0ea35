package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/horizon/internal/physics"
	"github.com/san-kum/horizon/internal/sim"
)

// Stats are the aggregates of a single frame.
type Stats struct {
	MeanRadius float64
	MaxSpeed   float64
	Energy     float64
	// AngularMomentum is the magnitude of the summed specific angular
	// momentum.
	AngularMomentum float64
}

// FrameStats computes Stats for f. An empty frame yields zero values.
func FrameStats(f *sim.Frame, gm float64) Stats {
	if f.Live == 0 {
		return Stats{}
	}
	dist := make([]float64, len(f.Positions))
	for i, p := range f.Positions {
		dist[i] = r3.Norm(p)
	}
	speed := make([]float64, len(f.Velocities))
	for i, v := range f.Velocities {
		speed[i] = r3.Norm(v)
	}
	s := frameState(f)
	return Stats{
		MeanRadius:      stat.Mean(dist, nil),
		MaxSpeed:        floats.Max(speed),
		Energy:          physics.SpecificEnergy(s, gm),
		AngularMomentum: r3.Norm(physics.AngularMomentum(s)),
	}
}

// frameState views the frame's particles as a State without copying.
func frameState(f *sim.Frame) *physics.State {
	return &physics.State{Pos: f.Positions, Vel: f.Velocities}
}

func frameEnergy(f *sim.Frame, gm float64) float64 {
	return physics.SpecificEnergy(frameState(f), gm)
}

// Default returns a fresh set of the standard run metrics.
func Default(cfg physics.Config) []sim.Metric {
	return []sim.Metric{
		NewAbsorbedFraction(),
		NewMeanRadius(),
		NewEnergyDrift(cfg.GM()),
		NewMaxSpeed(),
	}
}
