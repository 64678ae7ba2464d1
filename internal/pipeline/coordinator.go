// Package pipeline drives each company through query generation, search,
// candidate extraction, scoring, and decision, and hands the terminal
// decision to the configured sink.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/hpfinder-cli/internal/config"
	"github.com/sells-group/hpfinder-cli/internal/decision"
	"github.com/sells-group/hpfinder-cli/internal/model"
	"github.com/sells-group/hpfinder-cli/internal/query"
	"github.com/sells-group/hpfinder-cli/internal/resilience"
	"github.com/sells-group/hpfinder-cli/internal/score"
	"github.com/sells-group/hpfinder-cli/internal/store"
)

// Searcher executes one search query.
type Searcher interface {
	Search(ctx context.Context, q model.SearchQuery) ([]model.SearchHit, error)
}

// Extractor resolves one search hit into a candidate.
type Extractor interface {
	Extract(ctx context.Context, hit model.SearchHit) (model.Candidate, error)
}

// Coordinator owns the per-company state machine and the across-company
// concurrency bound.
type Coordinator struct {
	generator *query.Generator
	searcher  Searcher
	extractor Extractor
	scorer    *score.Scorer
	engine    *decision.Engine
	sink      store.Sink
	cfg       config.PipelineConfig
}

// NewCoordinator wires the pipeline stages together. The sink may be nil
// when the caller only wants the returned decisions.
func NewCoordinator(
	generator *query.Generator,
	searcher Searcher,
	extractor Extractor,
	scorer *score.Scorer,
	engine *decision.Engine,
	sink store.Sink,
	cfg config.PipelineConfig,
) *Coordinator {
	return &Coordinator{
		generator: generator,
		searcher:  searcher,
		extractor: extractor,
		scorer:    scorer,
		engine:    engine,
		sink:      sink,
		cfg:       cfg,
	}
}

// Run resolves every company, at most MaxConcurrentCompanies at a time.
// Per-company failures are contained: they come back as Failed decisions,
// never as a run error. The returned slice is index-aligned with the input.
func (c *Coordinator) Run(ctx context.Context, companies []model.Company) ([]model.Decision, error) {
	decisions := make([]model.Decision, len(companies))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.MaxConcurrentCompanies)
	for i, company := range companies {
		g.Go(func() error {
			decisions[i] = c.Resolve(gctx, company)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return decisions, err
	}

	zap.L().Info("pipeline: run complete", zap.Int("companies", len(companies)))
	return decisions, nil
}

// Resolve runs one company through the full state machine and returns its
// terminal decision. Never returns an error and never panics: failures
// become a decision in the Failed state carrying the stage the company
// last reached.
func (c *Coordinator) Resolve(ctx context.Context, company model.Company) (d model.Decision) {
	log := zap.L().With(zap.String("company_id", company.ID), zap.String("name", company.Name))

	stage := model.StatePending
	defer func() {
		if r := recover(); r != nil {
			log.Error("pipeline: company panicked",
				zap.String("stage", string(stage)), zap.Any("panic", r))
			d = c.emit(ctx, model.Decision{
				CompanyID:   company.ID,
				State:       model.StateFailed,
				Disposition: model.DispositionNoResult,
				Error:       fmt.Sprintf("panic during %s: %v", stage, r),
			})
		}
	}()

	queries := c.generator.Generate(company)
	if len(queries) == 0 {
		log.Warn("pipeline: no renderable query templates")
		return c.emit(ctx, model.Decision{
			CompanyID:   company.ID,
			Disposition: model.DispositionNoResult,
			State:       model.StateNoResult,
		})
	}

	stage = model.StateQuerying
	hits, err := c.runQueries(ctx, queries)
	if err != nil {
		log.Error("pipeline: all queries failed",
			zap.String("stage", string(stage)), zap.Error(err))
		return c.emit(ctx, model.Decision{
			CompanyID:   company.ID,
			State:       model.StateFailed,
			Disposition: model.DispositionNoResult,
			Error:       err.Error(),
		})
	}

	stage = model.StateEvaluating
	candidates := c.evaluate(ctx, hits, log)
	if ctx.Err() != nil {
		log.Warn("pipeline: cancelled", zap.String("stage", string(stage)))
		return c.emit(ctx, model.Decision{
			CompanyID:   company.ID,
			State:       model.StateFailed,
			Disposition: model.DispositionNoResult,
			Error:       ctx.Err().Error(),
		})
	}

	stage = model.StateScored
	scored := make([]model.ScoredCandidate, 0, len(candidates))
	for _, cand := range candidates {
		scored = append(scored, c.scorer.Score(company, cand))
	}

	return c.emit(ctx, c.engine.Decide(company, scored))
}

// runQueries executes all of a company's queries concurrently and merges
// their hits, deduplicated by URL in query-then-rank order. Individual
// query failures are tolerated as long as at least one query succeeds.
func (c *Coordinator) runQueries(ctx context.Context, queries []model.SearchQuery) ([]model.SearchHit, error) {
	perQuery := make([][]model.SearchHit, len(queries))
	errs := make([]error, len(queries))

	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// A panicking provider must cost its query, not the process.
			defer func() {
				if r := recover(); r != nil {
					errs[i] = eris.Errorf("query %q panicked: %v", q.Text, r)
				}
			}()
			perQuery[i], errs[i] = c.searcher.Search(ctx, q)
		}()
	}
	wg.Wait()

	seen := make(map[string]bool)
	var merged []model.SearchHit
	var lastErr error
	failures := 0
	for i, hits := range perQuery {
		if errs[i] != nil {
			failures++
			lastErr = errs[i]
			zap.L().Warn("pipeline: query failed",
				zap.String("query", queries[i].Text), zap.Error(errs[i]))
			continue
		}
		for _, hit := range hits {
			key := strings.TrimSuffix(hit.URL, "/")
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, hit)
		}
	}

	if failures == len(queries) {
		return nil, lastErr
	}
	return merged, nil
}

// evaluate resolves hits into candidates. A hit whose page cannot be
// fetched is dropped; the rest of the company's candidates continue.
func (c *Coordinator) evaluate(ctx context.Context, hits []model.SearchHit, log *zap.Logger) []model.Candidate {
	var candidates []model.Candidate
	for _, hit := range hits {
		if ctx.Err() != nil {
			return candidates
		}
		cand, err := c.extractor.Extract(ctx, hit)
		if err != nil {
			if resilience.IsPageFetch(err) {
				log.Warn("pipeline: candidate dropped", zap.String("url", hit.URL), zap.Error(err))
				continue
			}
			log.Warn("pipeline: extraction error", zap.String("url", hit.URL), zap.Error(err))
			continue
		}
		candidates = append(candidates, cand)
	}
	return candidates
}

// emit hands a decision to the sink. Sink failures are logged, not fatal:
// the decision is still returned to the caller.
func (c *Coordinator) emit(ctx context.Context, d model.Decision) model.Decision {
	if c.sink == nil {
		return d
	}
	if err := c.sink.Save(ctx, d); err != nil {
		zap.L().Error("pipeline: sink write failed",
			zap.String("company_id", d.CompanyID), zap.Error(err))
	}
	return d
}
