// Package decision selects the winning candidate for a company and maps
// its score to a disposition.
package decision

import (
	"go.uber.org/zap"

	"github.com/sells-group/hpfinder-cli/internal/config"
	"github.com/sells-group/hpfinder-cli/internal/model"
)

// Engine turns scored candidates into a terminal decision.
type Engine struct {
	thresholds config.Thresholds
}

// NewEngine creates an Engine from the decision thresholds.
func NewEngine(thresholds config.Thresholds) *Engine {
	return &Engine{thresholds: thresholds}
}

// Decide picks the best candidate and classifies it. With no candidates
// the company resolves to no_result; that is a terminal outcome, not an
// error. Ties on total score break toward the shallower path, then the
// better search rank, then the earlier candidate.
func (e *Engine) Decide(company model.Company, scored []model.ScoredCandidate) model.Decision {
	if len(scored) == 0 {
		return model.Decision{
			CompanyID:   company.ID,
			Disposition: model.DispositionNoResult,
			State:       model.StateNoResult,
		}
	}

	best := scored[0]
	for _, sc := range scored[1:] {
		if better(sc, best) {
			best = sc
		}
	}

	disposition := e.classify(best.Total)
	// A blacklisted domain never auto-adopts, whatever the weights say.
	if best.Candidate.Blacklisted && disposition != model.DispositionManualReview {
		disposition = model.DispositionManualReview
	}

	decision := model.Decision{
		CompanyID:   company.ID,
		URL:         best.Candidate.FinalURL,
		Score:       best.Total,
		Disposition: disposition,
		QueryUsed:   best.Candidate.Hit.Query.Text,
		Components:  best.Components,
		Similarity:  best.Similarity,
		State:       model.StateDecided,
	}

	zap.L().Info("decision: company resolved",
		zap.String("company_id", company.ID),
		zap.String("url", decision.URL),
		zap.Int("score", decision.Score),
		zap.String("disposition", string(decision.Disposition)),
	)
	return decision
}

func (e *Engine) classify(score int) model.Disposition {
	switch {
	case score >= e.thresholds.AutoAdopt:
		return model.DispositionAutoAdopt
	case score >= e.thresholds.NeedsReview:
		return model.DispositionNeedsReview
	default:
		return model.DispositionManualReview
	}
}

// better reports whether a should replace b as the current best.
func better(a, b model.ScoredCandidate) bool {
	if a.Total != b.Total {
		return a.Total > b.Total
	}
	if a.Candidate.PathDepth != b.Candidate.PathDepth {
		return a.Candidate.PathDepth < b.Candidate.PathDepth
	}
	return a.Candidate.Hit.Rank < b.Candidate.Hit.Rank
}
