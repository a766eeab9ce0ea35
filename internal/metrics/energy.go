package metrics

import (
	"math"

	"github.com/san-kum/horizon/internal/sim"
)

// EnergyDrift tracks the worst relative change of the survivors' summed
// specific energy between absorptions. Removing particles changes the sum
// without any integration error, so the baseline is re-taken on every frame
// that absorbed something.
type EnergyDrift struct {
	name     string
	gm       float64
	baseline float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift(gm float64) *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
		gm:   gm,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(f *sim.Frame) {
	energy := frameEnergy(f, e.gm)

	if e.samples == 0 || f.Absorbed > 0 {
		e.baseline = energy
	}
	e.samples++

	if e.baseline != 0 {
		drift := math.Abs(energy-e.baseline) / math.Abs(e.baseline)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.baseline = 0
	e.maxDrift = 0
	e.samples = 0
}
