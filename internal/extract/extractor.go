// Package extract resolves search hits into candidate pages: it follows
// each hit to its terminal URL, pulls the page signals the scorer needs,
// and flags blacklisted or penalized locations.
package extract

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/hpfinder-cli/internal/config"
	"github.com/sells-group/hpfinder-cli/internal/model"
	"github.com/sells-group/hpfinder-cli/internal/resilience"
)

// Extractor turns search hits into scored-candidate inputs.
type Extractor struct {
	fetcher    PageFetcher
	blacklist  *Blacklist
	indexFiles map[string]bool
}

// NewExtractor creates an Extractor. Index file names are matched
// case-insensitively against the last path segment when computing depth.
func NewExtractor(fetcher PageFetcher, blacklist *Blacklist, cfg config.ScoringConfig) *Extractor {
	idx := make(map[string]bool, len(cfg.IndexFiles))
	for _, f := range cfg.IndexFiles {
		idx[strings.ToLower(f)] = true
	}
	return &Extractor{fetcher: fetcher, blacklist: blacklist, indexFiles: idx}
}

// Extract fetches one hit and builds a Candidate from its terminal page.
// Fetch failures come back as resilience.PageFetchError so the pipeline can
// drop the single candidate without failing the company.
func (e *Extractor) Extract(ctx context.Context, hit model.SearchHit) (model.Candidate, error) {
	page, err := e.fetcher.Fetch(ctx, hit.URL)
	if err != nil {
		return model.Candidate{}, resilience.NewPageFetchError(hit.URL, err)
	}

	final, err := url.Parse(page.FinalURL)
	if err != nil {
		return model.Candidate{}, resilience.NewPageFetchError(hit.URL, eris.Wrap(err, "extract: parse final url"))
	}

	cand := model.Candidate{
		Hit:           hit,
		FinalURL:      page.FinalURL,
		RedirectChain: page.RedirectChain,
		Domain:        NormalizeDomain(final.Hostname()),
		PathDepth:     e.pathDepth(final.Path),
	}
	cand.Blacklisted = e.blacklist.IsDomainBlacklisted(final.Hostname())
	cand.PathPenalized = e.blacklist.IsPathPenalized(final.Path) ||
		e.blacklist.IsSubdomainPenalized(final.Hostname())

	if isHTML(page.ContentType) {
		e.parseSignals(&cand, page.Body)
	}

	zap.L().Debug("extract: candidate built",
		zap.String("url", hit.URL),
		zap.String("final_url", cand.FinalURL),
		zap.Int("path_depth", cand.PathDepth),
		zap.Bool("blacklisted", cand.Blacklisted),
	)
	return cand, nil
}

// pathDepth counts meaningful path segments. The root path and paths whose
// only segment is an index file name count as depth zero, so
// example.co.jp/index.html is still a top page.
func (e *Extractor) pathDepth(path string) int {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return 0
	}
	segments := strings.Split(trimmed, "/")
	if e.indexFiles[strings.ToLower(segments[len(segments)-1])] {
		segments = segments[:len(segments)-1]
	}
	return len(segments)
}

// parseSignals pulls the title, meta description, and headings out of the
// page body. A body that fails to parse just leaves the signals empty; the
// scorer treats missing signals as absent, not as an error.
func (e *Extractor) parseSignals(cand *model.Candidate, body []byte) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		zap.L().Debug("extract: unparseable body", zap.String("url", cand.FinalURL), zap.Error(err))
		return
	}

	cand.PageTitle = strings.TrimSpace(doc.Find("title").First().Text())
	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		cand.MetaDescription = strings.TrimSpace(desc)
	}
	doc.Find("h1").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			cand.Headings = append(cand.Headings, text)
		}
	})
}

func isHTML(contentType string) bool {
	return contentType == "" ||
		strings.Contains(contentType, "text/html") ||
		strings.Contains(contentType, "application/xhtml")
}
