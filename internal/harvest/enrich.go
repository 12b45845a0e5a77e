package harvest

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"outreach-engine/internal/retry"
	"outreach-engine/internal/source"
)

type enrichResult struct {
	entityID string
	enr      source.Enrichment
	err      error
}

// enrichAll resolves profile snapshots for the given entity ids on a
// bounded worker pool. Each lookup has its own timeout and results are
// collected in completion order, so one slow lookup never blocks the
// ones already finished. The batch deadline bounds total wall time;
// whatever hasn't resolved by then is simply absent from the result map.
func enrichAll(ctx context.Context, enricher source.Enricher, ids []string, workers int, perLookup, batch time.Duration, policy retry.Policy) map[string]source.Enrichment {
	out := make(map[string]source.Enrichment, len(ids))
	if len(ids) == 0 {
		return out
	}
	if workers <= 0 {
		workers = 10
	}

	bctx, cancel := context.WithTimeout(ctx, batch)
	defer cancel()

	results := make(chan enrichResult, len(ids))

	var g errgroup.Group
	g.SetLimit(workers)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			var enr source.Enrichment
			err := policy.Do(bctx, "enrich", func(ctx context.Context) error {
				lctx, lcancel := context.WithTimeout(ctx, perLookup)
				defer lcancel()
				var lerr error
				enr, lerr = enricher.Lookup(lctx, id)
				return lerr
			})
			results <- enrichResult{entityID: id, enr: enr, err: err}
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		close(results)
	}()

	for {
		select {
		case <-bctx.Done():
			log.Printf("[harvest] enrichment batch deadline hit; %d/%d resolved", len(out), len(ids))
			return out
		case r, ok := <-results:
			if !ok {
				return out
			}
			if r.err != nil {
				// per-item failure is isolated; the candidate goes
				// through as enrichment-unavailable
				log.Printf("[harvest] enrich %s failed: %v", r.entityID, r.err)
				continue
			}
			out[r.entityID] = r.enr
		}
	}
}
