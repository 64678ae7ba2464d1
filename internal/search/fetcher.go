// Package search executes outbound search queries under the run-wide rate
// and in-flight ceilings, with bounded retry on transient provider errors.
package search

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/sells-group/hpfinder-cli/internal/config"
	"github.com/sells-group/hpfinder-cli/internal/model"
	"github.com/sells-group/hpfinder-cli/internal/resilience"
	"github.com/sells-group/hpfinder-cli/pkg/brave"
)

// Fetcher issues search queries through a provider client. One Fetcher is
// shared by every company pipeline in a run: the provider's rate ceiling is
// a property of the provider, not of any one company.
type Fetcher struct {
	client   brave.Client
	limiter  *rate.Limiter
	inFlight *semaphore.Weighted
	retry    resilience.RetryConfig
}

// NewFetcher creates a Fetcher from the search configuration. The limiter
// rate is the provider ceiling divided by the safety margin; burst of 1
// keeps request spacing even rather than front-loaded.
func NewFetcher(client brave.Client, cfg config.SearchConfig) *Fetcher {
	initial, maxBackoff := cfg.RetryBackoff()
	return &Fetcher{
		client:   client,
		limiter:  rate.NewLimiter(rate.Limit(cfg.EffectiveRate()), 1),
		inFlight: semaphore.NewWeighted(int64(cfg.MaxInFlight)),
		retry: resilience.RetryConfig{
			MaxAttempts:    cfg.MaxAttempts,
			InitialBackoff: initial,
			MaxBackoff:     maxBackoff,
			Multiplier:     cfg.BackoffMultiplier,
			OnRetry:        resilience.RetryLogger("brave", "search"),
		},
	}
}

// Search executes one query and returns its hits in provider order.
// Transient provider errors are retried with exponential backoff; permanent
// errors and exhausted retries surface to the caller unretried.
func (f *Fetcher) Search(ctx context.Context, query model.SearchQuery) ([]model.SearchHit, error) {
	if err := f.inFlight.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer f.inFlight.Release(1)

	results, err := resilience.DoVal(ctx, f.retry, func(ctx context.Context) ([]brave.Result, error) {
		// Each attempt waits for its own rate token so retries of one
		// query cannot starve the shared ceiling.
		if waitErr := f.limiter.Wait(ctx); waitErr != nil {
			return nil, waitErr
		}
		return f.client.Search(ctx, query.Text)
	})
	if err != nil {
		return nil, err
	}

	hits := make([]model.SearchHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, model.SearchHit{
			URL:         r.URL,
			Title:       r.Title,
			Description: r.Description,
			Rank:        r.Rank,
			Query:       query,
		})
	}

	zap.L().Debug("search: query complete",
		zap.String("query", query.Text),
		zap.Int("hits", len(hits)),
	)
	return hits, nil
}
