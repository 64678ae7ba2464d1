// Package score assigns itemized scores to homepage candidates based on
// URL shape, domain similarity to the company name, and on-page signals.
package score

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/hpfinder-cli/internal/config"
	"github.com/sells-group/hpfinder-cli/internal/model"
)

// exactMatchThreshold is the similarity at which a domain counts as an
// exact rendering of the company name rather than merely similar.
const exactMatchThreshold = 95

// officialKeywords mark a page presenting itself as the official site.
// Matched case-insensitively against the title, meta description, and
// headings.
var officialKeywords = []string{
	"公式", "オフィシャル", "official", "正規", "ホームページ", "home",
}

// Scorer scores candidates for one run. Safe for concurrent use.
type Scorer struct {
	cfg config.ScoringConfig
	sim *Similarity
}

// NewScorer creates a Scorer from the scoring configuration.
func NewScorer(cfg config.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg, sim: NewSimilarity()}
}

// Score computes the itemized score for one candidate. A blacklisted
// domain short-circuits to the reject floor; every other candidate gets
// the full component sum, clamped so no score falls below the floor.
func (s *Scorer) Score(company model.Company, cand model.Candidate) model.ScoredCandidate {
	sc := model.ScoredCandidate{
		Candidate:  cand,
		Components: map[string]int{},
	}

	if cand.Blacklisted {
		sc.Components["blacklisted"] = s.cfg.RejectFloor
		sc.Total = s.cfg.RejectFloor
		return sc
	}

	w := s.cfg.Weights

	if cand.IsTopPage() {
		sc.Components["top_page_bonus"] = w.TopPageBonus
	} else {
		penalty := w.PathDepthPenaltyFactor * cand.PathDepth
		if penalty < w.PathDepthPenaltyFloor {
			penalty = w.PathDepthPenaltyFloor
		}
		sc.Components["path_depth_penalty"] = penalty
	}

	sc.Similarity = s.sim.Best(company.CleanName(), DomainLabel(cand.Domain))
	switch {
	case sc.Similarity >= exactMatchThreshold:
		sc.Components["domain_exact_match"] = w.DomainExactMatch
	case sc.Similarity >= float64(s.cfg.SimilarityThreshold):
		sc.Components["domain_similar_match"] = w.DomainSimilarMatch
	}

	if bonus := s.tldScore(cand.Domain); bonus != 0 {
		sc.Components["tld_bonus"] = bonus
	}

	if hasOfficialKeyword(cand) {
		sc.Components["official_keyword_bonus"] = w.OfficialKeywordBonus
	}

	if cand.Hit.Rank >= 1 && cand.Hit.Rank <= 3 {
		sc.Components["search_rank_bonus"] = w.SearchRankBonus
	}

	if cand.PathPenalized {
		sc.Components["path_keyword_penalty"] = w.PathKeywordPenalty
	}

	for _, v := range sc.Components {
		sc.Total += v
	}
	if sc.Total < s.cfg.RejectFloor {
		sc.Total = s.cfg.RejectFloor
	}

	zap.L().Debug("score: candidate scored",
		zap.String("company_id", company.ID),
		zap.String("domain", cand.Domain),
		zap.Int("total", sc.Total),
		zap.Float64("similarity", sc.Similarity),
	)
	return sc
}

// tldScore rewards Japanese corporate TLDs and the common generic ones.
// A bare .jp (not .co.jp, .or.jp, etc.) draws a small penalty: it is the
// TLD of choice for aggregators and directory sites.
func (s *Scorer) tldScore(domain string) int {
	w := s.cfg.Weights
	switch {
	case strings.HasSuffix(domain, ".co.jp"):
		return w.TLDCoJP
	case strings.HasSuffix(domain, ".com") || strings.HasSuffix(domain, ".net") ||
		strings.HasSuffix(domain, ".org"):
		return w.TLDComNet
	case strings.HasSuffix(domain, ".jp") && !strings.Contains(domain, ".co.jp") &&
		!strings.Contains(domain, ".or.jp") && !strings.Contains(domain, ".ne.jp"):
		return w.DomainJPPenalty
	default:
		return 0
	}
}

func hasOfficialKeyword(cand model.Candidate) bool {
	haystack := strings.ToLower(cand.PageTitle + " " + cand.MetaDescription + " " +
		strings.Join(cand.Headings, " "))
	for _, kw := range officialKeywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}
