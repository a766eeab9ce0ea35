package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/horizon/internal/dynamo"
)

// CircularOrbit returns the position and circular-orbit velocity of a
// particle at radius r and azimuth theta in the tilted disk plane.
func CircularOrbit(cfg Config, r, theta float64) (pos, vel r3.Vec) {
	sinT, cosT := math.Sincos(theta)
	sinTilt, cosTilt := math.Sincos(cfg.Tilt)
	v := math.Sqrt(cfg.GM() / r)

	pos = r3.Vec{
		X: r * cosT,
		Y: r * sinT * cosTilt,
		Z: r * sinT * sinTilt,
	}
	vel = r3.Vec{
		X: -v * sinT,
		Y: v * cosT * cosTilt,
		Z: v * cosT * sinTilt,
	}
	return pos, vel
}

// Seed builds cfg.N particles with radii uniform in the configured band and
// uniform azimuths. All radii are drawn before all angles.
func Seed(cfg Config, rng *dynamo.RNG) *State {
	radii := make([]float64, cfg.N)
	rMin, rMax := cfg.MinRadius(), cfg.MaxRadius()
	for i := range radii {
		radii[i] = rng.Uniform(rMin, rMax)
	}

	s := NewState(cfg.N)
	for _, r := range radii {
		pos, vel := CircularOrbit(cfg, r, rng.Angle())
		s.Add(pos, vel)
	}
	return s
}
