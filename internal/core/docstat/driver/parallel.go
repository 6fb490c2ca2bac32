package driver

import (
	"sync"

	"github.com/veridit/jsonb-stats/internal/core/docstat"
	"github.com/veridit/jsonb-stats/internal/core/docstat/entity"
)

const defaultWorkerCount = 10

// ParallelMergeOfAggs is MergeOfAggs scaled out across a fixed worker
// pool: each worker folds its share of aggs into a local state, and the
// results combine into one finalized stats_agg at the end. Mirrors the
// shard-then-merge shape a batch aggregation job uses to fan work out
// across a worker pool and fold per-worker partial results back together.
func ParallelMergeOfAggs(aggs []docstat.StatsAgg, workerCount int) (docstat.StatsAgg, error) {
	if workerCount <= 0 {
		workerCount = defaultWorkerCount
	}
	if len(aggs) == 0 {
		return entity.New().Finalize(), nil
	}
	if workerCount > len(aggs) {
		workerCount = len(aggs)
	}

	jobs := make(chan docstat.StatsAgg, len(aggs))
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
			for agg := range jobs {
				if err := local.MergeAgg(agg); err != nil {
					results <- workerResult{err: err}
					return
				}
			}
			results <- workerResult{state: local}
		}()
	}

	for _, agg := range aggs {
		jobs <- agg
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
	return merged.Finalize(), nil
}
