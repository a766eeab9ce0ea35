package physics

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/horizon/internal/dynamo"
)

// Kernel runs the per-step stages and owns their scratch buffers, so
// repeated steps do not allocate. A Kernel is bound to one Config and must
// not be shared between loops.
type Kernel struct {
	gm      float64
	rs      float64
	dt      float64
	workers int

	dist   []float64
	speed  []float64
	colors []Color
	fresh  bool
}

func NewKernel(cfg Config) *Kernel {
	return &Kernel{
		gm:      cfg.GM(),
		rs:      cfg.AbsorptionRadius(),
		dt:      cfg.Dt,
		workers: cfg.Workers,
	}
}

// Integrate advances every particle by one semi-implicit Euler step:
// velocity from the acceleration first, then position from the new velocity.
// Callers guarantee every particle is outside r_s.
func (k *Kernel) Integrate(s *State) {
	gm, dt := k.gm, k.dt
	dynamo.ParallelFor(s.Len(), k.workers, func(start, end int) {
		for i := start; i < end; i++ {
			p := s.Pos[i]
			d := r3.Norm(p)
			d3 := d * d * d
			v := s.Vel[i]
			v.X += -gm * p.X / d3 * dt
			v.Y += -gm * p.Y / d3 * dt
			v.Z += -gm * p.Z / d3 * dt
			s.Vel[i] = v
			s.Pos[i] = r3.Add(p, r3.Scale(dt, v))
		}
	})
	k.fresh = false
}

// Absorb removes particles at or inside r_s, keeping survivors in their
// relative order, and returns how many were removed.
func (k *Kernel) Absorb(s *State) int {
	n := s.Len()
	k.fillDistances(s)

	kept := 0
	for i := 0; i < n; i++ {
		if !(k.dist[i] > k.rs) {
			continue
		}
		if kept != i {
			s.Pos[kept] = s.Pos[i]
			s.Vel[kept] = s.Vel[i]
			k.dist[kept] = k.dist[i]
		}
		kept++
	}
	s.truncate(kept)
	k.dist = k.dist[:kept]
	k.fresh = true
	return n - kept
}

// Distances returns the survivor distances computed by the last Absorb,
// index-aligned with the state. The slice is reused by the next step.
func (k *Kernel) Distances(s *State) []float64 {
	if !k.fresh || len(k.dist) != s.Len() {
		k.fillDistances(s)
		k.fresh = true
	}
	return k.dist
}

func (k *Kernel) fillDistances(s *State) {
	k.dist = resize(k.dist, s.Len())
	dynamo.ParallelFor(s.Len(), k.workers, func(start, end int) {
		for i := start; i < end; i++ {
			k.dist[i] = r3.Norm(s.Pos[i])
		}
	})
}

// HeatColors maps every live particle to a color. The state is not
// modified. The returned slice is reused by the next call.
func (k *Kernel) HeatColors(s *State) []Color {
	n := s.Len()
	dist := k.Distances(s)
	k.speed = resize(k.speed, n)
	dynamo.ParallelFor(n, k.workers, func(start, end int) {
		for i := start; i < end; i++ {
			k.speed[i] = r3.Norm(s.Vel[i])
		}
	})

	maxSpeed := 0.0
	if n > 1 {
		maxSpeed = MaxFinite(k.speed)
	}

	k.colors = resize(k.colors, n)
	rs := k.rs
	dynamo.ParallelFor(n, k.workers, func(start, end int) {
		for i := start; i < end; i++ {
			k.colors[i] = HeatColor(Heat(k.speed[i], maxSpeed), dist[i], rs)
		}
	})
	return k.colors
}

// Step runs Integrate, Absorb and HeatColors in order and returns the number
// of particles removed.
func (k *Kernel) Step(s *State) (removed int, colors []Color) {
	k.Integrate(s)
	removed = k.Absorb(s)
	return removed, k.HeatColors(s)
}
