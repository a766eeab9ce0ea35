package metrics

import "github.com/san-kum/horizon/internal/sim"

// AbsorbedFraction is the share of the initial population that crossed r_s.
type AbsorbedFraction struct {
	name     string
	initial  int
	absorbed int
	samples  int
}

func NewAbsorbedFraction() *AbsorbedFraction {
	return &AbsorbedFraction{name: "absorbed_fraction"}
}

func (a *AbsorbedFraction) Name() string { return a.name }

func (a *AbsorbedFraction) Observe(f *sim.Frame) {
	if a.samples == 0 {
		a.initial = f.Live + f.Absorbed
	}
	a.absorbed += f.Absorbed
	a.samples++
}

func (a *AbsorbedFraction) Value() float64 {
	if a.initial == 0 {
		return 0
	}
	return float64(a.absorbed) / float64(a.initial)
}

func (a *AbsorbedFraction) Reset() {
	a.initial = 0
	a.absorbed = 0
	a.samples = 0
}
