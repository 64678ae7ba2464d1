package brave

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/hpfinder-cli/internal/resilience"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", WithBaseURL(srv.URL), WithResultCount(5))
}

func TestSearch_ParsesResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-Subscription-Token"))
		assert.Equal(t, "株式会社サンプル", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("count"))
		assert.Equal(t, "ja", r.URL.Query().Get("search_lang"))
		assert.Equal(t, "JP", r.URL.Query().Get("country"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"web":{"results":[
			{"url":"https://sample.co.jp/","title":"株式会社サンプル 公式","description":"official"},
			{"url":"https://example.com/about","title":"about","description":"d"}
		]}}`))
	})

	results, err := client.Search(context.Background(), "株式会社サンプル")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "https://sample.co.jp/", results[0].URL)
	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, 2, results[1].Rank)
}

func TestSearch_FiltersNonWebSchemes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"web":{"results":[
			{"url":"ftp://files.example.jp/x","title":"t"},
			{"url":"https://sample.co.jp/","title":"t"}
		]}}`))
	})

	results, err := client.Search(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://sample.co.jp/", results[0].URL)
	assert.Equal(t, 1, results[0].Rank)
}

func TestSearch_RateLimitIsTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	})

	_, err := client.Search(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}

func TestSearch_ServerErrorIsTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oops", http.StatusBadGateway)
	})

	_, err := client.Search(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}

func TestSearch_ClientErrorIsPermanent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	})

	_, err := client.Search(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, resilience.IsPermanent(err))
	assert.False(t, resilience.IsTransient(err))
}

func TestSearch_MalformedBodyIsPermanent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"web":`))
	})

	_, err := client.Search(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, resilience.IsPermanent(err))
}

func TestSearch_EmptyResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"web":{"results":[]}}`))
	})

	results, err := client.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, results)
}
