package extract

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/hpfinder-cli/internal/config"
)

// Page is the result of fetching a candidate URL to its terminal location.
type Page struct {
	FinalURL      string
	RedirectChain []string
	Body          []byte
	ContentType   string
	StatusCode    int
}

// PageFetcher fetches a URL following redirects and exposes the final
// resolved location.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Page, error)
}

// HTTPFetcher implements PageFetcher with net/http.
type HTTPFetcher struct {
	cfg       config.FetchConfig
	transport http.RoundTripper
}

// NewHTTPFetcher creates an HTTPFetcher from the fetch configuration.
func NewHTTPFetcher(cfg config.FetchConfig) *HTTPFetcher {
	if cfg.TimeoutSecs <= 0 {
		cfg.TimeoutSecs = 10
	}
	if cfg.MaxBodyKB <= 0 {
		cfg.MaxBodyKB = 512
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = 10
	}
	return &HTTPFetcher{
		cfg: cfg,
		transport: &http.Transport{
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// Fetch follows redirects to the terminal URL, recording the chain, and
// reads the page body under the configured size cap. A non-2xx terminal
// status is an error: a page that does not render is not a homepage
// candidate.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	var chain []string

	// A fresh client per call keeps the redirect chain capture race-free
	// across concurrent company pipelines; the transport is shared.
	client := &http.Client{
		Timeout:   time.Duration(f.cfg.TimeoutSecs) * time.Second,
		Transport: f.transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= f.cfg.MaxRedirects {
				return eris.Errorf("stopped after %d redirects", f.cfg.MaxRedirects)
			}
			chain = append(chain, req.URL.String())
			return nil
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "extract: create request")
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "extract: fetch page")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, eris.Errorf("extract: status %d from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(f.cfg.MaxBodyKB)*1024))
	if err != nil {
		return nil, eris.Wrap(err, "extract: read body")
	}

	return &Page{
		FinalURL:      resp.Request.URL.String(),
		RedirectChain: chain,
		Body:          body,
		ContentType:   resp.Header.Get("Content-Type"),
		StatusCode:    resp.StatusCode,
	}, nil
}
