package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/horizon/internal/dynamo"
	"github.com/san-kum/horizon/internal/physics"
	"github.com/san-kum/horizon/internal/sim"
)

func singleOrbit(cfg physics.Config, radius float64) *physics.State {
	s := physics.NewState(1)
	pos, vel := physics.CircularOrbit(cfg, radius, 0)
	s.Add(pos, vel)
	return s
}

func atRest(radii ...float64) *physics.State {
	s := physics.NewState(len(radii))
	for i, r := range radii {
		angle := float64(i)
		s.Add(r3.Vec{X: r * math.Cos(angle), Y: r * math.Sin(angle)}, r3.Vec{})
	}
	return s
}

var _ = Describe("Loop", func() {
	var (
		ctx context.Context
		cfg physics.Config
		rs  float64
	)

	BeforeEach(func() {
		ctx = context.Background()
		cfg = physics.DefaultConfig()
		rs = cfg.AbsorptionRadius()
	})

	It("rejects an invalid configuration before producing a frame", func() {
		cfg.InnerRadius, cfg.OuterRadius = 25, 3
		l, err := sim.New(cfg)
		Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		Expect(l).To(BeNil())
	})

	Context("with a disk and particles falling from just outside r_s", func() {
		var l *sim.Loop

		BeforeEach(func() {
			cfg.N = 400
			cfg.Seed = 11
			cfg.Dt = 20
			cfg.Steps = 200

			s := physics.Seed(cfg, dynamo.NewRNG(cfg.Seed))
			for i := 0; i < 40; i++ {
				r := rs * (1.01 + 0.001*float64(i))
				s.Add(r3.Vec{Z: r}, r3.Vec{})
			}

			var err error
			l, err = sim.NewFromState(cfg, s)
			Expect(err).NotTo(HaveOccurred())
		})

		It("holds the per-frame invariants for the whole run", func() {
			prevLive := l.Live()
			_, err := l.Run(ctx, func(f *sim.Frame) error {
				Expect(f.Positions).To(HaveLen(f.Live))
				Expect(f.Velocities).To(HaveLen(f.Live))
				Expect(f.Colors).To(HaveLen(f.Live))
				Expect(f.Live).To(BeNumerically("<=", prevLive))
				Expect(prevLive - f.Live).To(Equal(f.Absorbed))
				prevLive = f.Live

				for i, p := range f.Positions {
					Expect(r3.Norm(p)).To(BeNumerically(">", rs), "particle %d at step %d", i, f.Step)
				}
				for _, c := range f.Colors {
					for _, ch := range []float64{c.R, c.G, c.B} {
						Expect(ch).To(And(BeNumerically(">=", 0), BeNumerically("<=", 1)))
					}
				}
				return nil
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(prevLive).To(BeNumerically("<", 440))
			Expect(prevLive).To(BeNumerically(">=", 400))
		})
	})

	It("keeps a circular orbit at 6 r_s bounded", func() {
		cfg.Steps = 10000
		r0 := 6 * rs

		l, err := sim.NewFromState(cfg, singleOrbit(cfg, r0))
		Expect(err).NotTo(HaveOccurred())

		_, err = l.Run(ctx, func(f *sim.Frame) error {
			Expect(f.Live).To(Equal(1))
			Expect(r3.Norm(f.Positions[0])).To(BeNumerically("~", r0, 1e-6*r0))
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("keeps a 6 r_s orbit bounded over full revolutions with a coarse step", func() {
		cfg.Dt = 100
		cfg.Steps = 25000
		r0 := 6 * rs

		l, err := sim.NewFromState(cfg, singleOrbit(cfg, r0))
		Expect(err).NotTo(HaveOccurred())

		worst := 0.0
		_, err = l.Run(ctx, func(f *sim.Frame) error {
			worst = math.Max(worst, math.Abs(r3.Norm(f.Positions[0])-r0))
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(worst).To(BeNumerically("<", 0.01*r0))
	})

	It("keeps a 10 r_s particle alive for 1000 steps within 5% of its radius", func() {
		cfg.Steps = 1000
		r0 := 10 * rs
		Expect(r0).To(Equal(80000.0))

		l, err := sim.NewFromState(cfg, singleOrbit(cfg, r0))
		Expect(err).NotTo(HaveOccurred())

		var last float64
		_, err = l.Run(ctx, func(f *sim.Frame) error {
			Expect(f.Live).To(Equal(1))
			last = r3.Norm(f.Positions[0])
			Expect(last).To(BeNumerically(">", rs))
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(math.Abs(last-r0) / r0).To(BeNumerically("<", 0.05))
	})

	It("absorbs a particle released at rest at 1.01 r_s", func() {
		cfg.Dt = 1
		cfg.Steps = 2000

		l, err := sim.NewFromState(cfg, atRest(1.01*rs))
		Expect(err).NotTo(HaveOccurred())

		absorbedAt := -1
		_, err = l.Run(ctx, func(f *sim.Frame) error {
			if f.Absorbed > 0 {
				absorbedAt = f.Step
			}
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(absorbedAt).To(BeNumerically(">", 1))
		Expect(absorbedAt).To(BeNumerically("<=", 2000))
		Expect(l.Live()).To(BeZero())
	})

	It("keeps stepping an empty population until the configured step count", func() {
		cfg.Dt = 20
		cfg.Steps = 150

		l, err := sim.NewFromState(cfg, atRest(1.01*rs, 1.02*rs))
		Expect(err).NotTo(HaveOccurred())

		frames := 0
		for {
			f, err := l.Next(ctx)
			if errors.Is(err, dynamo.ErrFinished) {
				break
			}
			Expect(err).NotTo(HaveOccurred())
			frames++
			if f.Step > 120 {
				Expect(f.Live).To(BeZero())
				Expect(f.Positions).To(BeEmpty())
				Expect(f.Colors).To(BeEmpty())
			}
		}
		Expect(frames).To(Equal(150))
		Expect(l.Phase()).To(Equal(sim.Finished))
	})

	It("reproduces every frame for an identical config and seed", func() {
		cfg.N = 600
		cfg.Steps = 40
		cfg.Seed = 99
		cfg.Dt = 50

		run := func(workers int) []*sim.Frame {
			c := cfg
			c.Workers = workers
			l, err := sim.New(c)
			Expect(err).NotTo(HaveOccurred())

			var frames []*sim.Frame
			for {
				f, err := l.Next(ctx)
				if errors.Is(err, dynamo.ErrFinished) {
					return frames
				}
				Expect(err).NotTo(HaveOccurred())
				frames = append(frames, f)
			}
		}

		a, b, c := run(1), run(1), run(4)
		Expect(a).To(HaveLen(40))
		Expect(b).To(Equal(a))
		Expect(c).To(Equal(a))
	})
})
