package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/hpfinder-cli/internal/config"
	"github.com/sells-group/hpfinder-cli/internal/model"
)

func testEngine() *Engine {
	return NewEngine(config.Thresholds{AutoAdopt: 9, NeedsReview: 6})
}

func scored(url string, total, depth, rank int) model.ScoredCandidate {
	return model.ScoredCandidate{
		Candidate: model.Candidate{
			FinalURL:  url,
			PathDepth: depth,
			Hit:       model.SearchHit{URL: url, Rank: rank, Query: model.SearchQuery{Text: "q"}},
		},
		Total:      total,
		Components: map[string]int{"total": total},
	}
}

func TestDecide_EmptySetIsNoResult(t *testing.T) {
	d := testEngine().Decide(model.Company{ID: "c1"}, nil)
	assert.Equal(t, model.DispositionNoResult, d.Disposition)
	assert.Equal(t, model.StateNoResult, d.State)
	assert.Empty(t, d.URL)
}

func TestDecide_ClassifiesByThresholds(t *testing.T) {
	e := testEngine()
	cases := []struct {
		total int
		want  model.Disposition
	}{
		{12, model.DispositionAutoAdopt},
		{9, model.DispositionAutoAdopt},
		{8, model.DispositionNeedsReview},
		{6, model.DispositionNeedsReview},
		{5, model.DispositionManualReview},
		{-100, model.DispositionManualReview},
	}
	for _, tc := range cases {
		d := e.Decide(model.Company{ID: "c1"}, []model.ScoredCandidate{
			scored("https://sample.co.jp/", tc.total, 0, 1),
		})
		assert.Equal(t, tc.want, d.Disposition, "total %d", tc.total)
		assert.Equal(t, model.StateDecided, d.State)
	}
}

func TestDecide_PicksHighestTotal(t *testing.T) {
	d := testEngine().Decide(model.Company{ID: "c1"}, []model.ScoredCandidate{
		scored("https://a.com/", 7, 0, 1),
		scored("https://b.com/", 11, 0, 2),
		scored("https://c.com/", 3, 0, 3),
	})
	assert.Equal(t, "https://b.com/", d.URL)
	assert.Equal(t, 11, d.Score)
}

func TestDecide_TieBreaksByDepthThenRank(t *testing.T) {
	e := testEngine()

	// Same total: shallower path wins.
	d := e.Decide(model.Company{ID: "c1"}, []model.ScoredCandidate{
		scored("https://deep.com/a/b", 10, 2, 1),
		scored("https://shallow.com/", 10, 0, 5),
	})
	assert.Equal(t, "https://shallow.com/", d.URL)

	// Same total and depth: better search rank wins.
	d = e.Decide(model.Company{ID: "c1"}, []model.ScoredCandidate{
		scored("https://rank4.com/", 10, 0, 4),
		scored("https://rank2.com/", 10, 0, 2),
	})
	assert.Equal(t, "https://rank2.com/", d.URL)

	// Full tie: first seen wins.
	d = e.Decide(model.Company{ID: "c1"}, []model.ScoredCandidate{
		scored("https://first.com/", 10, 0, 1),
		scored("https://second.com/", 10, 0, 1),
	})
	assert.Equal(t, "https://first.com/", d.URL)
}

func TestDecide_BlacklistedNeverAutoAdopts(t *testing.T) {
	sc := scored("https://hotpepper.jp/", 15, 0, 1)
	sc.Candidate.Blacklisted = true

	d := testEngine().Decide(model.Company{ID: "c1"}, []model.ScoredCandidate{sc})
	assert.Equal(t, model.DispositionManualReview, d.Disposition)
}

func TestDecide_Deterministic(t *testing.T) {
	e := testEngine()
	set := []model.ScoredCandidate{
		scored("https://a.com/", 10, 1, 2),
		scored("https://b.com/", 10, 1, 2),
		scored("https://c.com/", 9, 0, 1),
	}

	first := e.Decide(model.Company{ID: "c1"}, set)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, e.Decide(model.Company{ID: "c1"}, set))
	}
}

func TestDecide_CarriesQueryAndComponents(t *testing.T) {
	sc := scored("https://sample.co.jp/", 10, 0, 1)
	sc.Similarity = 97.5

	d := testEngine().Decide(model.Company{ID: "c1"}, []model.ScoredCandidate{sc})
	assert.Equal(t, "q", d.QueryUsed)
	assert.Equal(t, sc.Components, d.Components)
	assert.Equal(t, 97.5, d.Similarity)
	assert.Equal(t, "c1", d.CompanyID)
}
