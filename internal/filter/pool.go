// pool.go — Concurrent evaluation of many signatures against one Filter.
package filter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Request pairs a signature with its historical and in-batch timestamps.
type Request struct {
	Signature  string
	Historical []time.Time
	Current    []time.Time
}

// DefaultWorkers bounds model evaluation concurrency when the caller does
// not say otherwise.
const DefaultWorkers = 8

// EvaluateAll runs ShouldAlert for every request on a bounded worker pool
// and returns decisions keyed by signature. If the context is cancelled
// mid-flight, signatures not yet evaluated are marked non-alerting so a
// timed-out run degrades to silence rather than a page storm.
func (f *Filter) EvaluateAll(ctx context.Context, reqs []Request, workers int) map[string]Decision {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	var mu sync.Mutex
	decisions := make(map[string]Decision, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, req := range reqs {
		req := req
		g.Go(func() error {
			select {
			case <-ctx.Done():
				mu.Lock()
				decisions[req.Signature] = Decision{Alert: false, Reason: "evaluation cancelled"}
				mu.Unlock()
				return nil
			default:
			}
			d := f.ShouldAlert(req.Historical, req.Current)
			mu.Lock()
			decisions[req.Signature] = d
			mu.Unlock()
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors

	return decisions
}
