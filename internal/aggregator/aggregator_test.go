package aggregator

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"newsagg/internal/config"
	"newsagg/internal/ingest"
	"newsagg/internal/models"
	"newsagg/internal/providers"
	"newsagg/internal/query"
	"newsagg/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUpstream(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/newsapi", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Query().Get("apiKey") != "news-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok","articles":[
			{"title":"One","author":"A"},{"title":"Two"},{"title":"Three"},{"title":"Four"},{"title":"Five"}]}`)
	})
	mux.HandleFunc("/guardian", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/nytimes", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		fmt.Fprint(w, `not json`)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		time.Sleep(500 * time.Millisecond)
		fmt.Fprint(w, `{"results":[{"title":"late"}]}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &hits
}

func setup(t *testing.T, catalog []config.ProviderConfig, timeout time.Duration) (*Aggregator, storage.Storage) {
	t.Helper()
	store, err := storage.NewStorage(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	for _, p := range catalog {
		_, err := store.CreateSource(context.Background(), p.Name)
		require.NoError(t, err)
	}

	registry, err := providers.NewRegistry(catalog)
	require.NoError(t, err)

	return New(registry, ingest.NewWriter(store, registry, ingest.MaxRecords), timeout), store
}

func TestAggregator_FetchAll(t *testing.T) {
	server, _ := newUpstream(t)
	catalog := []config.ProviderConfig{
		{Name: "Newsapi", Kind: config.KindNewsAPI, Endpoint: server.URL + "/newsapi", APIKey: "news-key"},
		{Name: "The Guardian", Kind: config.KindGuardian, Endpoint: server.URL + "/guardian", APIKey: "g"},
		{Name: "NY Times", Kind: config.KindNYTimes, Endpoint: server.URL + "/nytimes", APIKey: "n"},
	}
	agg, store := setup(t, catalog, 5*time.Second)

	summary := agg.FetchAll(context.Background())

	assert.Equal(t, 3, summary.Providers)
	assert.Equal(t, 2, summary.FailedProviders)
	assert.Equal(t, 3, summary.Created["Newsapi"])
	assert.Equal(t, 0, summary.Created["The Guardian"])
	assert.Equal(t, 3, summary.TotalCreated())
	assert.Contains(t, summary.Errors["The Guardian"], "503")
	assert.Contains(t, summary.Errors, "NY Times")
	assert.False(t, summary.FinishedAt.Before(summary.StartedAt))

	page, err := store.ListArticles(context.Background(), query.Filter{}, models.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
}

func TestAggregator_SkipsProvidersWithoutKey(t *testing.T) {
	server, hits := newUpstream(t)
	catalog := []config.ProviderConfig{
		{Name: "Newsapi", Kind: config.KindNewsAPI, Endpoint: server.URL + "/newsapi"},
	}
	agg, _ := setup(t, catalog, 5*time.Second)

	summary := agg.FetchAll(context.Background())

	assert.Equal(t, 0, summary.Providers)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestAggregator_TimeoutOnlyAffectsSlowProvider(t *testing.T) {
	server, _ := newUpstream(t)
	catalog := []config.ProviderConfig{
		{Name: "Newsapi", Kind: config.KindNewsAPI, Endpoint: server.URL + "/newsapi", APIKey: "news-key"},
		{Name: "NY Times", Kind: config.KindNYTimes, Endpoint: server.URL + "/slow", APIKey: "n"},
	}
	agg, _ := setup(t, catalog, 100*time.Millisecond)

	summary := agg.FetchAll(context.Background())

	assert.Equal(t, 1, summary.FailedProviders)
	assert.Equal(t, 3, summary.Created["Newsapi"])
	assert.Equal(t, 0, summary.Created["NY Times"])
}

func TestAggregator_UnknownSourceReported(t *testing.T) {
	server, _ := newUpstream(t)
	catalog := []config.ProviderConfig{
		{Name: "Newsapi", Kind: config.KindNewsAPI, Endpoint: server.URL + "/newsapi", APIKey: "news-key"},
	}
	store, err := storage.NewStorage(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	registry, err := providers.NewRegistry(catalog)
	require.NoError(t, err)
	agg := New(registry, ingest.NewWriter(store, registry, ingest.MaxRecords), time.Second)

	summary := agg.FetchAll(context.Background())

	assert.Equal(t, 0, summary.FailedProviders)
	assert.Equal(t, 0, summary.Created["Newsapi"])
	assert.Contains(t, summary.Errors["Newsapi"], "not found")
}
