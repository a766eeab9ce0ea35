package physics

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/horizon/internal/dynamo"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.N = 200
	cfg.Steps = 100
	cfg.Seed = 42
	return cfg
}

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func TestConfig_Derived(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.AbsorptionRadius() != 8000 {
		t.Errorf("AbsorptionRadius() = %f, want 8000", cfg.AbsorptionRadius())
	}
	if cfg.MinRadius() != 24000 || cfg.MaxRadius() != 200000 {
		t.Errorf("band = [%f, %f], want [24000, 200000]", cfg.MinRadius(), cfg.MaxRadius())
	}
	if !near(cfg.Duration(), 10, 1e-12) {
		t.Errorf("Duration() = %f, want 10", cfg.Duration())
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero G", func(c *Config) { c.G = 0 }},
		{"negative M", func(c *Config) { c.M = -1 }},
		{"NaN dt", func(c *Config) { c.Dt = math.NaN() }},
		{"infinite dt", func(c *Config) { c.Dt = math.Inf(1) }},
		{"zero steps", func(c *Config) { c.Steps = 0 }},
		{"zero particles", func(c *Config) { c.N = 0 }},
		{"zero inner radius", func(c *Config) { c.InnerRadius = 0 }},
		{"inverted band", func(c *Config) { c.InnerRadius, c.OuterRadius = 25, 3 }},
		{"empty band", func(c *Config) { c.OuterRadius = c.InnerRadius }},
		{"infinite tilt", func(c *Config) { c.Tilt = math.Inf(-1) }},
		{"negative workers", func(c *Config) { c.Workers = -2 }},
		{"overflowing mass", func(c *Config) { c.G, c.M = 1e300, 1e300 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config rejected: %v", err)
	}
}

func TestCircularOrbit(t *testing.T) {
	cfg := DefaultConfig()
	r := 10 * cfg.AbsorptionRadius()

	for _, theta := range []float64{0, 0.3, math.Pi / 2, 2, math.Pi, 5.5} {
		pos, vel := CircularOrbit(cfg, r, theta)
		if !near(r3.Norm(pos), r, 1e-12) {
			t.Errorf("theta=%f: |pos| = %f, want %f", theta, r3.Norm(pos), r)
		}
		if !near(r3.Norm(vel), math.Sqrt(cfg.GM()/r), 1e-12) {
			t.Errorf("theta=%f: |vel| = %f", theta, r3.Norm(vel))
		}
		if math.Abs(r3.Dot(pos, vel)) > 1e-9*r {
			t.Errorf("theta=%f: velocity not tangential, pos·vel = %g", theta, r3.Dot(pos, vel))
		}
	}
}

func TestCircularOrbit_Tilt(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tilt = math.Pi / 2

	pos, vel := CircularOrbit(cfg, 100, math.Pi/2)
	if math.Abs(pos.Y) > 1e-12 || !near(pos.Z, 100, 1e-12) {
		t.Errorf("edge-on disk should lift sin θ into z, got %+v", pos)
	}
	if math.Abs(vel.Y) > 1e-12 {
		t.Errorf("edge-on disk should have no y velocity, got %+v", vel)
	}
}

func TestSeed(t *testing.T) {
	cfg := testConfig()
	s := Seed(cfg, dynamo.NewRNG(cfg.Seed))

	if s.Len() != cfg.N || len(s.Vel) != cfg.N {
		t.Fatalf("seeded %d/%d particles, want %d", s.Len(), len(s.Vel), cfg.N)
	}
	for i, p := range s.Pos {
		r := r3.Norm(p)
		if r < cfg.MinRadius()*(1-1e-12) || r > cfg.MaxRadius()*(1+1e-12) {
			t.Fatalf("particle %d at r=%f outside band", i, r)
		}
	}

	again := Seed(cfg, dynamo.NewRNG(cfg.Seed))
	for i := range s.Pos {
		if s.Pos[i] != again.Pos[i] || s.Vel[i] != again.Vel[i] {
			t.Fatalf("particle %d differs between identical seeds", i)
		}
	}
}

func TestIntegrate_VelocityBeforePosition(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dt = 1
	k := NewKernel(cfg)
	gm, dt := cfg.GM(), cfg.Dt
	r := 50000.0
	v0 := 0.3

	s := NewState(1)
	s.Add(r3.Vec{X: r}, r3.Vec{Y: v0})
	k.Integrate(s)

	a := gm / (r * r)
	wantVel := r3.Vec{X: -a * dt, Y: v0}
	wantPos := r3.Vec{X: r - a*dt*dt, Y: v0 * dt}

	if !near(s.Vel[0].X, wantVel.X, 1e-12) || s.Vel[0].Y != wantVel.Y || s.Vel[0].Z != 0 {
		t.Errorf("velocity = %+v, want %+v", s.Vel[0], wantVel)
	}
	if !near(s.Pos[0].X, wantPos.X, 1e-15) || !near(s.Pos[0].Y, wantPos.Y, 1e-15) {
		t.Errorf("position = %+v, want %+v", s.Pos[0], wantPos)
	}
	if s.Pos[0].X == r {
		t.Error("position update used the pre-step velocity")
	}
}

func TestAbsorb_StableAndStrict(t *testing.T) {
	cfg := DefaultConfig()
	rs := cfg.AbsorptionRadius()
	k := NewKernel(cfg)

	s := NewState(5)
	s.Add(r3.Vec{X: 3 * rs}, r3.Vec{X: 1})
	s.Add(r3.Vec{X: rs}, r3.Vec{X: 2})
	s.Add(r3.Vec{Y: 2 * rs}, r3.Vec{X: 3})
	s.Add(r3.Vec{Z: 0.5 * rs}, r3.Vec{X: 4})
	s.Add(r3.Vec{X: rs, Y: 1}, r3.Vec{X: 5})

	removed := k.Absorb(s)
	if removed != 2 {
		t.Fatalf("removed %d, want 2", removed)
	}
	want := []float64{1, 3, 5}
	if s.Len() != len(want) || len(s.Vel) != len(want) {
		t.Fatalf("len = %d/%d, want %d", s.Len(), len(s.Vel), len(want))
	}
	for i, w := range want {
		if s.Vel[i].X != w {
			t.Errorf("slot %d holds particle %v, want %v", i, s.Vel[i].X, w)
		}
		if r3.Norm(s.Pos[i]) <= rs {
			t.Errorf("slot %d retained inside r_s", i)
		}
	}

	dist := k.Distances(s)
	for i := range dist {
		if dist[i] != r3.Norm(s.Pos[i]) {
			t.Errorf("distance %d not aligned after compaction", i)
		}
	}
}

func TestAbsorb_AllRemoved(t *testing.T) {
	cfg := DefaultConfig()
	k := NewKernel(cfg)

	s := NewState(2)
	s.Add(r3.Vec{X: 1}, r3.Vec{})
	s.Add(r3.Vec{Y: -1}, r3.Vec{})

	if removed := k.Absorb(s); removed != 2 {
		t.Fatalf("removed %d, want 2", removed)
	}

	removed, colors := k.Step(s)
	if removed != 0 || len(colors) != 0 || s.Len() != 0 {
		t.Errorf("empty step produced removed=%d colors=%d len=%d", removed, len(colors), s.Len())
	}
}

func TestHeatColors_Normalization(t *testing.T) {
	cfg := DefaultConfig()
	rs := cfg.AbsorptionRadius()
	k := NewKernel(cfg)

	s := NewState(2)
	s.Add(r3.Vec{X: 20 * rs}, r3.Vec{Y: 1})
	s.Add(r3.Vec{Y: 20 * rs}, r3.Vec{X: 2})

	colors := k.HeatColors(s)
	want := []Color{{0.5, 0.7, 0.25}, {1, 1, 0.4}}
	for i, w := range want {
		c := colors[i]
		if !near(c.R, w.R, 1e-12) || !near(c.G, w.G, 1e-12) || !near(c.B, w.B, 1e-12) {
			t.Errorf("color %d = %+v, want %+v", i, c, w)
		}
	}
}

func TestHeatColors_Degenerate(t *testing.T) {
	cfg := DefaultConfig()
	rs := cfg.AbsorptionRadius()

	tests := []struct {
		name string
		vels []r3.Vec
	}{
		{"single particle", []r3.Vec{{Y: 3}}},
		{"all at rest", []r3.Vec{{}, {}, {}}},
		{"infinite speed", []r3.Vec{{X: math.Inf(1)}, {}}},
		{"NaN speed", []r3.Vec{{X: math.NaN()}, {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := NewKernel(cfg)
			s := NewState(len(tt.vels))
			for i, v := range tt.vels {
				s.Add(r3.Vec{X: 20 * rs, Y: float64(i)}, v)
			}
			for i, c := range k.HeatColors(s) {
				if c.R != 0 || !near(c.G, 0.4, 1e-12) || !near(c.B, 0.1, 1e-12) {
					t.Errorf("particle %d: color %+v, want zero heat", i, c)
				}
			}
		})
	}
}

func TestHeatColor_GlowAndClamp(t *testing.T) {
	rs := 8000.0

	if g := Glow(1.2*rs, rs); !near(g, 0.3, 1e-15) {
		t.Errorf("Glow at peak = %f, want 0.3", g)
	}
	if g := Glow(1.5*rs, rs); !near(g, 0.3*math.Exp(-1), 1e-12) {
		t.Errorf("Glow one width out = %f", g)
	}

	c := HeatColor(1, 1.2*rs, rs)
	if c.R != 1 || c.G != 1 || !near(c.B, 0.7, 1e-12) {
		t.Errorf("clamped color = %+v, want {1 1 0.7}", c)
	}

	c = HeatColor(0, 1.2*rs, rs)
	if !near(c.R, 0.3, 1e-12) || !near(c.G, 0.7, 1e-12) || !near(c.B, 0.4, 1e-12) {
		t.Errorf("glow-only color = %+v", c)
	}
}

func TestHeat(t *testing.T) {
	tests := []struct {
		speed, max, want float64
	}{
		{1, 2, 0.5},
		{2, 2, 1},
		{3, 2, 1},
		{1, 0, 0},
		{1, -1, 0},
		{1, math.NaN(), 0},
		{1, math.Inf(1), 0},
		{math.NaN(), 2, 0},
	}
	for _, tt := range tests {
		if got := Heat(tt.speed, tt.max); got != tt.want {
			t.Errorf("Heat(%v, %v) = %v, want %v", tt.speed, tt.max, got, tt.want)
		}
	}
}

func TestColor_Hex(t *testing.T) {
	tests := []struct {
		c    Color
		want string
	}{
		{Color{1, 0, 0}, "#ff0000"},
		{Color{0, 0, 0}, "#000000"},
		{Color{1, 1, 1}, "#ffffff"},
	}
	for _, tt := range tests {
		if got := tt.c.Hex(); got != tt.want {
			t.Errorf("%+v.Hex() = %s, want %s", tt.c, got, tt.want)
		}
	}
}

func TestSpecificEnergy_CircularOrbit(t *testing.T) {
	cfg := DefaultConfig()
	r := 6 * cfg.AbsorptionRadius()
	pos, vel := CircularOrbit(cfg, r, 1.1)

	s := NewState(1)
	s.Add(pos, vel)

	if e := SpecificEnergy(s, cfg.GM()); !near(e, -cfg.GM()/(2*r), 1e-12) {
		t.Errorf("SpecificEnergy = %g, want %g", e, -cfg.GM()/(2*r))
	}
	l := AngularMomentum(s)
	if !near(r3.Norm(l), r*math.Sqrt(cfg.GM()/r), 1e-12) {
		t.Errorf("|L| = %g, want %g", r3.Norm(l), r*math.Sqrt(cfg.GM()/r))
	}
}

func TestKernel_WorkerCountDoesNotChangeResults(t *testing.T) {
	cfg := testConfig()
	cfg.N = 5000
	cfg.InnerRadius = 1.05

	serialCfg, parallelCfg := cfg, cfg
	serialCfg.Workers = 1
	parallelCfg.Workers = 4

	a := Seed(serialCfg, dynamo.NewRNG(cfg.Seed))
	b := Seed(parallelCfg, dynamo.NewRNG(cfg.Seed))
	ka, kb := NewKernel(serialCfg), NewKernel(parallelCfg)

	for step := 0; step < 50; step++ {
		ra, ca := ka.Step(a)
		rb, cb := kb.Step(b)
		if ra != rb || a.Len() != b.Len() {
			t.Fatalf("step %d: removed %d vs %d", step, ra, rb)
		}
		for i := range a.Pos {
			if a.Pos[i] != b.Pos[i] || a.Vel[i] != b.Vel[i] || ca[i] != cb[i] {
				t.Fatalf("step %d: particle %d differs between worker counts", step, i)
			}
		}
	}
}

func BenchmarkKernelStep(b *testing.B) {
	cfg := DefaultConfig()
	cfg.N = 3000
	s := Seed(cfg, dynamo.NewRNG(1))
	k := NewKernel(cfg)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k.Step(s)
	}
}

func TestMaxFinite(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		want float64
	}{
		{"empty", nil, 0},
		{"plain", []float64{1, 3, 2}, 3},
		{"skips inf", []float64{1, math.Inf(1), 2}, 2},
		{"skips nan", []float64{math.NaN(), 4}, 4},
		{"all negative", []float64{-1, -2}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxFinite(tt.xs); got != tt.want {
				t.Errorf("MaxFinite(%v) = %v, want %v", tt.xs, got, tt.want)
			}
		})
	}
}
