// Package parallel partitions a batch of stats documents across a fixed
// worker pool and folds the resulting partial states back together,
// grounded on internal/aggregation/cron_batch_aggregation.go's
// buildPreAggregatesConcurrently: each worker owns an independent local
// accumulator map and results are combined once every worker is done.
// It is a runnable demonstration of the driver's parallel-aggregation
// contract (spec §5), exercised by the batch-agg HTTP endpoint.
package parallel

import (
	"sync"

	"github.com/veridit/jsonb-stats/internal/core/docstat"
	"github.com/veridit/jsonb-stats/internal/core/docstat/entity"
)

const defaultWorkerCount = 10

// BuildEntityState runs agg-from-stats over observations across a fixed
// worker pool, returning the combined (but not yet finalized) entity
// state so callers can keep merging more partial states into it before
// finalizing.
func BuildEntityState(observations []docstat.Stats, workerCount int) (*entity.State, error) {
	if workerCount <= 0 {
		workerCount = defaultWorkerCount
	}
	if len(observations) == 0 {
		return entity.New(), nil
	}
	if workerCount > len(observations) {
		workerCount = len(observations)
	}

	jobs := make(chan docstat.Stats, len(observations))
	type workerResult struct {
		state *entity.State
		err   error
	}
	results := make(chan workerResult, workerCount)

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go func() {
			defer wg.Done()
			local := entity.New()
			for doc := range jobs {
				for name, stat := range doc {
					if err := local.Observe(name, stat); err != nil {
						results <- workerResult{err: err}
						return
					}
				}
			}
			results <- workerResult{state: local}
		}()
	}

	for _, doc := range observations {
		jobs <- doc
	}
	close(jobs)

	wg.Wait()
	close(results)

	merged := entity.New()
	for r := range results {
		if r.err != nil {
			return nil, r.err
		}
		if err := merged.Combine(r.state); err != nil {
			return nil, err
		}
	}
	return merged, nil
}
