package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/hpfinder-cli/internal/config"
	"github.com/sells-group/hpfinder-cli/internal/decision"
	"github.com/sells-group/hpfinder-cli/internal/extract"
	"github.com/sells-group/hpfinder-cli/internal/pipeline"
	"github.com/sells-group/hpfinder-cli/internal/query"
	"github.com/sells-group/hpfinder-cli/internal/score"
	"github.com/sells-group/hpfinder-cli/internal/search"
	"github.com/sells-group/hpfinder-cli/internal/store"
	"github.com/sells-group/hpfinder-cli/pkg/brave"
)

// pipelineEnv bundles the wired pipeline and the resources it owns.
type pipelineEnv struct {
	Coordinator *pipeline.Coordinator
	Sink        store.Sink
}

func (e *pipelineEnv) Close() {
	if e.Sink != nil {
		if err := e.Sink.Close(); err != nil {
			zap.L().Warn("close sink", zap.Error(err))
		}
	}
}

// initPipeline wires all pipeline stages from the loaded configuration.
// With withSink false no store is opened and decisions are only returned
// to the caller.
func initPipeline(ctx context.Context, withSink bool) (*pipelineEnv, error) {
	if cfg.Brave.Key == "" {
		return nil, eris.New("brave api key is required (HPFINDER_BRAVE_KEY)")
	}

	templates, err := query.CompileTemplates(cfg.Search.QueryTemplates)
	if err != nil {
		return nil, err
	}

	bl, err := config.LoadBlacklist(cfg.Scoring.BlacklistFile)
	if err != nil {
		return nil, err
	}

	client := brave.NewClient(cfg.Brave.Key,
		brave.WithBaseURL(cfg.Brave.BaseURL),
		brave.WithResultCount(cfg.Brave.ResultsPerQuery),
		brave.WithLocale(cfg.Brave.SearchLang, cfg.Brave.Country),
		brave.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Search.TimeoutSecs) * time.Second,
		}),
	)

	var sink store.Sink
	if withSink {
		sink, err = store.Open(ctx, cfg.Store)
		if err != nil {
			return nil, err
		}
	}

	blacklist := extract.NewBlacklist(bl)
	coordinator := pipeline.NewCoordinator(
		query.NewGenerator(templates),
		search.NewFetcher(client, cfg.Search),
		extract.NewExtractor(extract.NewHTTPFetcher(cfg.Fetch), blacklist, cfg.Scoring),
		score.NewScorer(cfg.Scoring),
		decision.NewEngine(cfg.Scoring.Thresholds),
		sink,
		cfg.Pipeline,
	)

	return &pipelineEnv{Coordinator: coordinator, Sink: sink}, nil
}
