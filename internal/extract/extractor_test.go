package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/hpfinder-cli/internal/config"
	"github.com/sells-group/hpfinder-cli/internal/model"
	"github.com/sells-group/hpfinder-cli/internal/resilience"
)

func testScoringConfig() config.ScoringConfig {
	return config.ScoringConfig{
		IndexFiles: []string{"index.html", "index.htm", "default.html"},
	}
}

func newTestExtractor(t *testing.T, handler http.Handler) (*Extractor, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	bl := NewBlacklist(&config.BlacklistFile{
		Domains:           []string{"hotpepper.jp"},
		PathKeywords:      []string{"recruit", "blog"},
		SubdomainKeywords: []string{"shop"},
	})
	e := NewExtractor(NewHTTPFetcher(config.FetchConfig{TimeoutSecs: 5}), bl, testScoringConfig())
	return e, srv
}

func TestExtract_ParsesPageSignals(t *testing.T) {
	e, srv := newTestExtractor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head>
			<title>株式会社サンプル 公式サイト</title>
			<meta name="description" content="サンプルの公式ホームページ">
		</head><body><h1>株式会社サンプル</h1><h1></h1></body></html>`))
	}))

	cand, err := e.Extract(context.Background(), model.SearchHit{URL: srv.URL + "/", Rank: 1})
	require.NoError(t, err)
	assert.Equal(t, "株式会社サンプル 公式サイト", cand.PageTitle)
	assert.Equal(t, "サンプルの公式ホームページ", cand.MetaDescription)
	assert.Equal(t, []string{"株式会社サンプル"}, cand.Headings)
	assert.Equal(t, 0, cand.PathDepth)
	assert.True(t, cand.IsTopPage())
}

func TestExtract_PathDepthFromFinalURL(t *testing.T) {
	// The hit URL redirects; depth must come from the terminal location.
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/company/about/profile", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/company/about/profile", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><title>profile</title></html>"))
	})
	e, srv := newTestExtractor(t, mux)

	cand, err := e.Extract(context.Background(), model.SearchHit{URL: srv.URL + "/start"})
	require.NoError(t, err)
	assert.Equal(t, 3, cand.PathDepth)
	assert.Contains(t, cand.FinalURL, "/company/about/profile")
	require.Len(t, cand.RedirectChain, 1)
}

func TestExtract_FetchFailureIsPageFetchError(t *testing.T) {
	e, srv := newTestExtractor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))

	_, err := e.Extract(context.Background(), model.SearchHit{URL: srv.URL + "/"})
	require.Error(t, err)
	assert.True(t, resilience.IsPageFetch(err))
}

func TestExtract_FlagsPenalizedPath(t *testing.T) {
	e, srv := newTestExtractor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><title>x</title></html>"))
	}))

	cand, err := e.Extract(context.Background(), model.SearchHit{URL: srv.URL + "/recruit/company-info"})
	require.NoError(t, err)
	assert.True(t, cand.PathPenalized)
	assert.Equal(t, 2, cand.PathDepth)
}

func TestExtract_NonHTMLSkipsSignalParsing(t *testing.T) {
	e, srv := newTestExtractor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	}))

	cand, err := e.Extract(context.Background(), model.SearchHit{URL: srv.URL + "/brochure.pdf"})
	require.NoError(t, err)
	assert.Empty(t, cand.PageTitle)
}

func TestPathDepth_IndexFilesCountAsRoot(t *testing.T) {
	e := NewExtractor(nil, NewBlacklist(nil), testScoringConfig())

	cases := []struct {
		path  string
		depth int
	}{
		{"/", 0},
		{"", 0},
		{"/index.html", 0},
		{"/INDEX.HTML", 0},
		{"/about", 1},
		{"/about/index.html", 1},
		{"/recruit/company-info", 2},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.depth, e.pathDepth(tc.path), "path %q", tc.path)
	}
}

func TestBlacklist_DomainMatching(t *testing.T) {
	bl := NewBlacklist(&config.BlacklistFile{Domains: []string{"Hotpepper.jp", "www.facebook.com"}})

	assert.True(t, bl.IsDomainBlacklisted("hotpepper.jp"))
	assert.True(t, bl.IsDomainBlacklisted("www.hotpepper.jp"))
	assert.True(t, bl.IsDomainBlacklisted("facebook.com"))
	assert.False(t, bl.IsDomainBlacklisted("sample.co.jp"))
	assert.False(t, bl.IsDomainBlacklisted("beauty.hotpepper.jp.example.com"))
}

func TestBlacklist_SubdomainKeywords(t *testing.T) {
	bl := NewBlacklist(&config.BlacklistFile{SubdomainKeywords: []string{"shop", "store"}})

	assert.True(t, bl.IsSubdomainPenalized("shop.sample.co.jp"))
	assert.False(t, bl.IsSubdomainPenalized("sample.co.jp"))
}

func TestNormalizeDomain(t *testing.T) {
	assert.Equal(t, "sample.co.jp", NormalizeDomain(" WWW.Sample.co.jp "))
}

func TestExtract_InvalidHitURL(t *testing.T) {
	e := NewExtractor(NewHTTPFetcher(config.FetchConfig{TimeoutSecs: 1}), NewBlacklist(nil), testScoringConfig())

	_, err := e.Extract(context.Background(), model.SearchHit{URL: "http://127.0.0.1:1/nope"})
	require.Error(t, err)
	assert.True(t, resilience.IsPageFetch(err))
}

func TestExtract_DomainNormalized(t *testing.T) {
	e, srv := newTestExtractor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><title>x</title></html>"))
	}))

	cand, err := e.Extract(context.Background(), model.SearchHit{URL: srv.URL + "/"})
	require.NoError(t, err)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	assert.Equal(t, u.Hostname(), cand.Domain)
}
