package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// LowerUnits lowers units concurrently, bounded by opts.Jobs (GOMAXPROCS
// when not positive). Every unit gets its own environment and engine.
// Results are in input order. Cancellation is checked before each unit
// starts; a unit that has started always runs to completion.
func LowerUnits(ctx context.Context, units []Unit, opts Options) ([]UnitResult, error) {
	if len(units) == 0 {
		return nil, nil
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]UnitResult, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(units)))

	for i, u := range units {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = LowerUnit(gctx, u, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
