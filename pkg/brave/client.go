// Package brave provides a client for the Brave Search web API.
package brave

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/hpfinder-cli/internal/resilience"
)

const defaultBaseURL = "https://api.search.brave.com/res/v1/web/search"

// Client performs Brave Search operations.
type Client interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// Result is a single web search result. Rank is 1-based.
type Result struct {
	URL         string
	Title       string
	Description string
	Rank        int
}

// searchResponse is the wire shape of the Brave web search response.
type searchResponse struct {
	Web struct {
		Results []struct {
			URL         string `json:"url"`
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithResultCount sets the number of results requested per query.
func WithResultCount(n int) Option {
	return func(c *httpClient) {
		c.count = n
	}
}

// WithLocale sets the search language and country parameters.
func WithLocale(lang, country string) Option {
	return func(c *httpClient) {
		c.searchLang = lang
		c.country = country
	}
}

type httpClient struct {
	apiKey     string
	baseURL    string
	count      int
	searchLang string
	country    string
	http       *http.Client
}

// NewClient creates a Brave Search client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		count:      10,
		searchLang: "ja",
		country:    "JP",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Search executes one web search. Transient failures (429, 5xx, network
// errors) come back wrapped as resilience.TransientError; other non-200
// statuses and malformed bodies as resilience.PermanentError. The caller
// owns retry policy.
func (c *httpClient) Search(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(c.count))
	if c.searchLang != "" {
		params.Set("search_lang", c.searchLang)
	}
	if c.country != "" {
		params.Set("country", c.country)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "brave: create request")
	}
	req.Header.Set("X-Subscription-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "brave: send request"), 0)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "brave: read response"), resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		wrapped := eris.Errorf("brave: status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(wrapped, resp.StatusCode)
		}
		return nil, resilience.NewPermanentError(wrapped, resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, resilience.NewPermanentError(eris.Wrap(err, "brave: unmarshal response"), resp.StatusCode)
	}

	results := make([]Result, 0, len(parsed.Web.Results))
	for _, r := range parsed.Web.Results {
		// The provider occasionally returns non-web schemes; keep http(s) only.
		if !strings.HasPrefix(r.URL, "http://") && !strings.HasPrefix(r.URL, "https://") {
			continue
		}
		results = append(results, Result{
			URL:         r.URL,
			Title:       r.Title,
			Description: r.Description,
			Rank:        len(results) + 1,
		})
	}
	return results, nil
}
