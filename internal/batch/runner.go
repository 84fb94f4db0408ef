// Package batch dispatches many trend analyses concurrently. The statistical
// engine itself is synchronous and pure; bounding and scheduling the work is
// the caller's concern, and this runner is that caller.
package batch

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"sleeptrend/adapters/stats/regression"
	"sleeptrend/domain/health"
)

// TrendRequest names one series to analyze.
type TrendRequest struct {
	Label  string
	Points []health.TrendPoint
}

// TrendOutcome pairs a request label with its result.
type TrendOutcome struct {
	Label  string
	Result health.TrendResult
}

// Runner executes trend analyses with bounded concurrency.
type Runner struct {
	analyzer *regression.Analyzer
	sem      *semaphore.Weighted
}

// NewRunner creates a runner allowing up to maxConcurrent analyses at once.
func NewRunner(analyzer *regression.Analyzer, maxConcurrent int64) *Runner {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Runner{
		analyzer: analyzer,
		sem:      semaphore.NewWeighted(maxConcurrent),
	}
}

// Run analyzes every request and returns outcomes in request order.
// A cancelled context stops the dispatch of remaining requests; analyses
// already started run to completion.
func (r *Runner) Run(ctx context.Context, requests []TrendRequest) ([]TrendOutcome, error) {
	outcomes := make([]TrendOutcome, len(requests))

	var wg sync.WaitGroup
	for i, req := range requests {
		if err := r.sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return nil, err
		}

		wg.Add(1)
		go func(idx int, req TrendRequest) {
			defer wg.Done()
			defer r.sem.Release(1)
			outcomes[idx] = TrendOutcome{
				Label:  req.Label,
				Result: r.analyzer.AnalyzeTrend(req.Points),
			}
		}(i, req)
	}

	wg.Wait()
	return outcomes, nil
}
