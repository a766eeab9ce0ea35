package physics

import (
	"math"

	"github.com/san-kum/horizon/internal/dynamo"
)

const (
	DefaultG           = 1.0
	DefaultM           = 4000.0
	DefaultDt          = 0.002
	DefaultSteps       = 5000
	DefaultParticles   = 3000
	DefaultTiltDegrees = 25.0
	DefaultInnerRadius = 3.0
	DefaultOuterRadius = 25.0
)

// Config is the immutable parameter set of a run. Band edges are given in
// units of the absorption radius.
type Config struct {
	G           float64
	M           float64
	Tilt        float64
	Dt          float64
	Steps       int
	N           int
	InnerRadius float64
	OuterRadius float64
	Seed        int64
	Workers     int
}

func DefaultConfig() Config {
	return Config{
		G:           DefaultG,
		M:           DefaultM,
		Tilt:        Radians(DefaultTiltDegrees),
		Dt:          DefaultDt,
		Steps:       DefaultSteps,
		N:           DefaultParticles,
		InnerRadius: DefaultInnerRadius,
		OuterRadius: DefaultOuterRadius,
	}
}

// Radians converts a tilt given in degrees.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// GM is the gravitational parameter of the central mass.
func (c Config) GM() float64 { return c.G * c.M }

// AbsorptionRadius returns r_s = 2GM.
func (c Config) AbsorptionRadius() float64 { return 2 * c.G * c.M }

func (c Config) MinRadius() float64 { return c.InnerRadius * c.AbsorptionRadius() }
func (c Config) MaxRadius() float64 { return c.OuterRadius * c.AbsorptionRadius() }

// Duration is the simulated time covered by all steps.
func (c Config) Duration() float64 { return float64(c.Steps) * c.Dt }

// Validate reports the first field that cannot produce a run.
func (c Config) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"G", c.G},
		{"M", c.M},
		{"dt", c.Dt},
		{"inner radius", c.InnerRadius},
		{"outer radius", c.OuterRadius},
	}
	for _, chk := range checks {
		if !positiveFinite(chk.value) {
			return dynamo.InvalidConfig(chk.name, "must be positive and finite, got %g", chk.value)
		}
	}
	if c.Steps < 1 {
		return dynamo.InvalidConfig("steps", "must be at least 1, got %d", c.Steps)
	}
	if c.N < 1 {
		return dynamo.InvalidConfig("particles", "must be at least 1, got %d", c.N)
	}
	if c.InnerRadius >= c.OuterRadius {
		return dynamo.InvalidConfig("radial band", "inverted or empty: [%g, %g]", c.InnerRadius, c.OuterRadius)
	}
	if !positiveFinite(c.AbsorptionRadius()) {
		return dynamo.InvalidConfig("absorption radius", "2GM overflows: G=%g M=%g", c.G, c.M)
	}
	if math.IsNaN(c.Tilt) || math.IsInf(c.Tilt, 0) {
		return dynamo.InvalidConfig("tilt", "must be finite, got %g", c.Tilt)
	}
	if c.Workers < 0 {
		return dynamo.InvalidConfig("workers", "must not be negative, got %d", c.Workers)
	}
	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
