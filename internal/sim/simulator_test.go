package sim

import (
	"context"
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/horizon/internal/dynamo"
	"github.com/san-kum/horizon/internal/physics"
)

func smallConfig() physics.Config {
	cfg := physics.DefaultConfig()
	cfg.N = 100
	cfg.Steps = 10
	cfg.Seed = 3
	return cfg
}

type countMetric struct {
	frames int
	last   int
}

func (c *countMetric) Name() string     { return "frames" }
func (c *countMetric) Observe(f *Frame) { c.frames++; c.last = f.Live }
func (c *countMetric) Value() float64   { return float64(c.frames) }
func (c *countMetric) Reset()           { c.frames = 0; c.last = 0 }

func TestLoop_InvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Dt = 0
	l, err := New(cfg)
	if !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Fatalf("New() error = %v, want ErrInvalidConfig", err)
	}
	if l != nil {
		t.Error("New() returned a loop for an invalid config")
	}
}

func TestLoop_PhaseTransitions(t *testing.T) {
	l, err := New(smallConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if l.Phase() != Uninitialized {
		t.Fatalf("initial phase = %s", l.Phase())
	}

	ctx := context.Background()
	for i := 1; i <= 10; i++ {
		f, err := l.Next(ctx)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if f.Step != i {
			t.Errorf("frame step = %d, want %d", f.Step, i)
		}
		want := Running
		if i == 10 {
			want = Finished
		}
		if l.Phase() != want {
			t.Errorf("after step %d phase = %s, want %s", i, l.Phase(), want)
		}
	}

	if _, err := l.Next(ctx); !errors.Is(err, dynamo.ErrFinished) {
		t.Errorf("Next after finish = %v, want ErrFinished", err)
	}
}

func TestLoop_NextReturnsOwnedFrames(t *testing.T) {
	l, _ := New(smallConfig())
	ctx := context.Background()

	first, _ := l.Next(ctx)
	saved := first.Positions[0]
	if _, err := l.Next(ctx); err != nil {
		t.Fatal(err)
	}
	if first.Positions[0] != saved {
		t.Error("frame returned by Next was mutated by the following step")
	}
	if len(first.Positions) != first.Live || len(first.Colors) != first.Live || len(first.Velocities) != first.Live {
		t.Error("frame slices are not Live long")
	}
}

func TestLoop_CancelAtStepBoundary(t *testing.T) {
	l, _ := New(smallConfig())
	ctx, cancel := context.WithCancel(context.Background())

	steps := 0
	res, err := l.Run(ctx, func(f *Frame) error {
		steps++
		if steps == 3 {
			cancel()
		}
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
	if res.StepsTaken != 3 {
		t.Errorf("StepsTaken = %d, want 3", res.StepsTaken)
	}
	if res.Final == nil || res.Final.Step != 3 {
		t.Error("final frame is not the last completed step")
	}

	if _, err := l.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Next on cancelled ctx = %v", err)
	}
}

func TestLoop_CallbackError(t *testing.T) {
	l, _ := New(smallConfig())
	sinkErr := errors.New("sink closed")

	_, err := l.Run(context.Background(), func(f *Frame) error {
		if f.Step == 4 {
			return sinkErr
		}
		return nil
	})

	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("Run error = %v, want SimulationError", err)
	}
	if simErr.Step != 4 || !errors.Is(err, sinkErr) {
		t.Errorf("unexpected wrapped error %v at step %d", simErr.Wrapped, simErr.Step)
	}
}

func TestLoop_MetricsAndObservers(t *testing.T) {
	l, _ := New(smallConfig())
	m := &countMetric{}
	l.AddMetric(m)

	seen := 0
	l.AddObserver(ObserverFunc(func(f *Frame) { seen++ }))

	res, err := l.Run(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Metrics["frames"] != 10 || seen != 10 {
		t.Errorf("metric saw %v frames, observer %d, want 10", res.Metrics["frames"], seen)
	}
	if res.Initial != 100 || res.Live+res.Absorbed != res.Initial {
		t.Errorf("population does not balance: %+v", res)
	}
}

func TestLoop_Snapshot(t *testing.T) {
	l, _ := New(smallConfig())
	snap := l.Snapshot()

	if snap.Step != 0 || snap.Live != 100 || len(snap.Colors) != 100 {
		t.Fatalf("snapshot = step %d live %d colors %d", snap.Step, snap.Live, len(snap.Colors))
	}
	if l.Phase() != Uninitialized {
		t.Errorf("Snapshot changed phase to %s", l.Phase())
	}

	f, _ := l.Next(context.Background())
	if moved := r3.Norm(r3.Sub(f.Positions[0], snap.Positions[0])); moved == 0 || moved > 1 {
		t.Errorf("first step moved particle 0 by %g; it should continue from the snapshot", moved)
	}
}

func TestLoop_ResetReplays(t *testing.T) {
	l, _ := New(smallConfig())
	ctx := context.Background()

	a, _ := l.Next(ctx)
	l.Reset()
	if l.Phase() != Uninitialized || l.StepCount() != 0 {
		t.Fatalf("Reset left phase %s step %d", l.Phase(), l.StepCount())
	}
	b, _ := l.Next(ctx)
	for i := range a.Positions {
		if a.Positions[i] != b.Positions[i] {
			t.Fatalf("particle %d differs after Reset", i)
		}
	}
}

func TestNewFromState(t *testing.T) {
	cfg := smallConfig()
	s := physics.NewState(1)
	s.Add(r3.Vec{X: 10 * cfg.AbsorptionRadius()}, r3.Vec{})

	l, err := NewFromState(cfg, s)
	if err != nil {
		t.Fatal(err)
	}
	if l.Config().N != 1 || l.Live() != 1 {
		t.Errorf("N = %d, Live = %d, want 1", l.Config().N, l.Live())
	}

	if _, err := NewFromState(cfg, physics.NewState(0)); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("empty state accepted: %v", err)
	}
}

func TestEnsemble(t *testing.T) {
	cfg := smallConfig()
	e := NewEnsemble(cfg, 4, 10, func() []Metric { return []Metric{&countMetric{}} })

	results, err := e.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results", len(results))
	}
	for i, r := range results {
		if r.StepsTaken != cfg.Steps || r.Metrics["frames"] != float64(cfg.Steps) {
			t.Errorf("run %d: %+v", i, r)
		}
	}
	if results[0].Final.Positions[0] == results[1].Final.Positions[0] {
		t.Error("ensemble runs share a seed")
	}
}
