package sim

import (
	"context"
	"sync"

	"github.com/san-kum/horizon/internal/physics"
)

// Ensemble runs the same configuration over consecutive seeds in parallel.
type Ensemble struct {
	cfg       physics.Config
	numRuns   int
	seedStart int64
	metrics   func() []Metric
}

// NewEnsemble creates an ensemble. metrics, if non-nil, is called once per
// run so that no Metric is shared between goroutines.
func NewEnsemble(cfg physics.Config, numRuns int, seedStart int64, metrics func() []Metric) *Ensemble {
	return &Ensemble{cfg: cfg, numRuns: numRuns, seedStart: seedStart, metrics: metrics}
}

func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfg := e.cfg
			cfg.Seed = e.seedStart + int64(idx)
			cfg.Workers = 1

			l, err := New(cfg)
			if err != nil {
				errs[idx] = err
				return
			}
			if e.metrics != nil {
				for _, m := range e.metrics() {
					l.AddMetric(m)
				}
			}
			results[idx], errs[idx] = l.Run(ctx, nil)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
