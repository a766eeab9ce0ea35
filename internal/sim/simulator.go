package sim

import (
	"context"

	"github.com/san-kum/horizon/internal/dynamo"
	"github.com/san-kum/horizon/internal/physics"
)

// Loop drives Integrate → Absorb → HeatColors for the configured number of
// steps. It is a single-writer state machine and is NOT safe for concurrent
// use.
type Loop struct {
	cfg       physics.Config
	kernel    *physics.Kernel
	state     *physics.State
	initial   *physics.State
	phase     Phase
	step      int
	absorbed  int
	frame     Frame
	metrics   []Metric
	observers []Observer
}

// New validates cfg and returns a loop that seeds its disk on first use.
func New(cfg physics.Config) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Loop{
		cfg:    cfg,
		kernel: physics.NewKernel(cfg),
	}, nil
}

// NewFromState returns a loop that runs a caller-built population instead of
// seeding one. cfg.N is taken from the state.
func NewFromState(cfg physics.Config, s *physics.State) (*Loop, error) {
	cfg.N = s.Len()
	l, err := New(cfg)
	if err != nil {
		return nil, err
	}
	l.initial = s.Clone()
	return l, nil
}

func (l *Loop) AddMetric(m Metric)     { l.metrics = append(l.metrics, m) }
func (l *Loop) AddObserver(o Observer) { l.observers = append(l.observers, o) }

func (l *Loop) Config() physics.Config { return l.cfg }
func (l *Loop) Phase() Phase           { return l.phase }
func (l *Loop) StepCount() int         { return l.step }

// Live returns the current particle count, or cfg.N before seeding.
func (l *Loop) Live() int {
	if l.state == nil {
		return l.cfg.N
	}
	return l.state.Len()
}

func (l *Loop) seed() {
	if l.state != nil {
		return
	}
	if l.initial != nil {
		l.state = l.initial.Clone()
	} else {
		l.state = physics.Seed(l.cfg, dynamo.NewRNG(l.cfg.Seed))
	}
	for _, m := range l.metrics {
		m.Reset()
	}
}

// Reset discards all progress; the next step reseeds the identical disk.
func (l *Loop) Reset() {
	l.state = nil
	l.phase = Uninitialized
	l.step = 0
	l.absorbed = 0
	l.kernel = physics.NewKernel(l.cfg)
}

func (l *Loop) advance() {
	if l.phase == Uninitialized {
		l.seed()
		l.phase = Running
	}

	removed, colors := l.kernel.Step(l.state)
	l.step++
	l.absorbed += removed
	l.fill(removed, colors)

	for _, m := range l.metrics {
		m.Observe(&l.frame)
	}
	for _, o := range l.observers {
		o.OnFrame(&l.frame)
	}

	if l.step >= l.cfg.Steps {
		l.phase = Finished
	}
}

func (l *Loop) fill(removed int, colors []physics.Color) {
	f := &l.frame
	f.Step = l.step
	f.Time = float64(l.step) * l.cfg.Dt
	f.Live = l.state.Len()
	f.Absorbed = removed
	f.Positions = append(f.Positions[:0], l.state.Pos...)
	f.Velocities = append(f.Velocities[:0], l.state.Vel...)
	f.Colors = append(f.Colors[:0], colors...)
}

// Next performs one step and returns an owned copy of the resulting frame.
// It returns ErrFinished once all configured steps ran. Cancellation is
// only observed before a step starts.
func (l *Loop) Next(ctx context.Context) (*Frame, error) {
	if l.phase == Finished {
		return nil, dynamo.ErrFinished
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.advance()
	return l.frame.Clone(), nil
}

// Run steps until the loop finishes, handing every frame to fn and waiting
// for it to return before the next step. The frame passed to fn is reused;
// fn must copy anything it keeps. A nil fn runs headless.
func (l *Loop) Run(ctx context.Context, fn func(*Frame) error) (*Result, error) {
	for l.phase != Finished {
		select {
		case <-ctx.Done():
			return l.Result(), ctx.Err()
		default:
		}

		l.advance()

		if fn != nil {
			if err := fn(&l.frame); err != nil {
				return l.Result(), &dynamo.SimulationError{Step: l.frame.Step, Time: l.frame.Time, Wrapped: err}
			}
		}
	}
	return l.Result(), nil
}

// Snapshot returns the current particles without stepping. Before the first
// step it seeds the disk and reports step 0.
func (l *Loop) Snapshot() *Frame {
	l.seed()
	f := &Frame{
		Step: l.step,
		Time: float64(l.step) * l.cfg.Dt,
		Live: l.state.Len(),
	}
	f.Positions = append(f.Positions, l.state.Pos...)
	f.Velocities = append(f.Velocities, l.state.Vel...)
	f.Colors = append(f.Colors, l.kernel.HeatColors(l.state)...)
	return f
}

func (l *Loop) Result() *Result {
	r := &Result{
		StepsTaken: l.step,
		Initial:    l.cfg.N,
		Live:       l.Live(),
		Absorbed:   l.absorbed,
		Metrics:    make(map[string]float64, len(l.metrics)),
	}
	for _, m := range l.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
	if l.step > 0 {
		r.Final = l.frame.Clone()
	}
	return r
}
