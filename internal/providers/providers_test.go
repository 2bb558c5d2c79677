package providers

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"newsagg/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ingestTime = time.Date(2024, 12, 28, 12, 0, 0, 0, time.UTC)

func TestNewsAPI_NormalizeArticle(t *testing.T) {
	raw := json.RawMessage(`{
		"source": {"id": null, "name": "CNN"},
		"author": "Jane Doe",
		"title": "Election night",
		"description": "What happened",
		"content": "Full text",
		"publishedAt": "2024-12-27T18:30:00Z"
	}`)

	a, err := NewsAPI{}.NormalizeArticle(raw, ingestTime)
	require.NoError(t, err)

	assert.Equal(t, "Election night", a.Title)
	assert.Equal(t, "What happened", a.Description)
	assert.Equal(t, "Full text", a.Content)
	assert.Equal(t, "Jane Doe", a.Author)
	assert.Equal(t, time.Date(2024, 12, 27, 18, 30, 0, 0, time.UTC), a.PublishedAt)
}

func TestNewsAPI_NullFieldsFallBack(t *testing.T) {
	raw := json.RawMessage(`{"title": "Bare", "author": null, "description": null}`)

	a, err := NewsAPI{}.NormalizeArticle(raw, ingestTime)
	require.NoError(t, err)

	assert.Equal(t, NoDescription, a.Description)
	assert.Equal(t, NoContent, a.Content)
	assert.Equal(t, UnknownAuthor, a.Author)
	assert.Equal(t, ingestTime, a.PublishedAt)
}

func TestGuardian_NormalizeArticle(t *testing.T) {
	raw := json.RawMessage(`{
		"webTitle": "Climate talks",
		"webPublicationDate": "2024-12-28T08:00:00Z",
		"fields": {"bodyText": "Body"}
	}`)

	a, err := Guardian{}.NormalizeArticle(raw, ingestTime)
	require.NoError(t, err)

	assert.Equal(t, "Climate talks", a.Title)
	assert.Equal(t, "Body", a.Description)
	assert.Equal(t, "Body", a.Content)
	assert.Equal(t, UnknownAuthor, a.Author)
	assert.Equal(t, time.Date(2024, 12, 28, 8, 0, 0, 0, time.UTC), a.PublishedAt)
}

func TestGuardian_MissingFields(t *testing.T) {
	a, err := Guardian{}.NormalizeArticle(json.RawMessage(`{"webTitle": "No body"}`), ingestTime)
	require.NoError(t, err)

	assert.Equal(t, NoDescription, a.Description)
	assert.Equal(t, NoContent, a.Content)
}

func TestNYTimes_NormalizeArticle(t *testing.T) {
	raw := json.RawMessage(`{
		"title": "Popular story",
		"abstract": "Summary",
		"adx_keywords": "Politics;Elections",
		"byline": "By John Smith",
		"published_date": "2024-12-26"
	}`)

	a, err := NYTimes{}.NormalizeArticle(raw, ingestTime)
	require.NoError(t, err)

	assert.Equal(t, "Summary", a.Description)
	assert.Equal(t, "Politics;Elections", a.Content)
	assert.Equal(t, "By John Smith", a.Author)
	assert.Equal(t, time.Date(2024, 12, 26, 0, 0, 0, 0, time.UTC), a.PublishedAt)
}

func TestNormalize_UnparseableDateUsesIngestTime(t *testing.T) {
	a, err := NYTimes{}.NormalizeArticle(json.RawMessage(`{"title": "x", "published_date": "yesterday"}`), ingestTime)
	require.NoError(t, err)
	assert.Equal(t, ingestTime, a.PublishedAt)
}

func TestNormalize_MissingTitle(t *testing.T) {
	for _, adapter := range []Adapter{NewsAPI{}, Guardian{}, NYTimes{}} {
		_, err := adapter.NormalizeArticle(json.RawMessage(`{"description": "orphan"}`), ingestTime)
		assert.True(t, errors.Is(err, ErrMissingTitle), "kind %s", adapter.Kind())
	}
}

func TestRecords_Envelopes(t *testing.T) {
	tests := []struct {
		adapter Adapter
		body    string
	}{
		{NewsAPI{}, `{"status":"ok","articles":[{"title":"a"},{"title":"b"}]}`},
		{Guardian{}, `{"response":{"status":"ok","results":[{"webTitle":"a"},{"webTitle":"b"}]}}`},
		{NYTimes{}, `{"status":"OK","results":[{"title":"a"},{"title":"b"}]}`},
	}

	for _, tt := range tests {
		records, err := tt.adapter.Records([]byte(tt.body))
		require.NoError(t, err, tt.adapter.Kind())
		assert.Len(t, records, 2, tt.adapter.Kind())
	}

	_, err := NewsAPI{}.Records([]byte("<html>"))
	assert.Error(t, err)
}

func TestQuery_APIKeyParam(t *testing.T) {
	cfg := config.ProviderConfig{APIKey: "secret", Params: map[string]string{"country": "us"}}

	q := NewsAPI{}.Query(cfg)
	assert.Equal(t, "secret", q.Get("apiKey"))
	assert.Equal(t, "us", q.Get("country"))
	assert.Equal(t, "3", q.Get("pageSize"))

	q = NewsAPI{}.Query(config.ProviderConfig{Params: map[string]string{"pageSize": "20"}})
	assert.Equal(t, "20", q.Get("pageSize"))

	q = Guardian{}.Query(cfg)
	assert.Equal(t, "secret", q.Get("api-key"))
	assert.Equal(t, "3", q.Get("page-size"))

	q = NYTimes{}.Query(config.ProviderConfig{})
	assert.Empty(t, q.Get("api-key"))
}

func TestRegistry(t *testing.T) {
	enabled := true
	r, err := NewRegistry([]config.ProviderConfig{
		{Name: "Newsapi", Kind: config.KindNewsAPI, Endpoint: "https://newsapi.org/v2/top-headlines?language=en", APIKey: "k"},
		{Name: "NY Times", Kind: config.KindNYTimes, Endpoint: "https://api.nytimes.com/x.json"},
		{Name: "Local", Kind: config.KindGuardian, Endpoint: "http://localhost/search", Enabled: &enabled},
	})
	require.NoError(t, err)

	a, ok := r.Adapter("NY Times")
	require.True(t, ok)
	assert.Equal(t, config.KindNYTimes, a.Kind())

	_, ok = r.Adapter("Unknown")
	assert.False(t, ok)

	names := []string{}
	for _, p := range r.Enabled() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Newsapi", "Local"}, names)

	u, err := r.RequestURL(r.Providers()[0])
	require.NoError(t, err)
	assert.Equal(t, "https://newsapi.org/v2/top-headlines?apiKey=k&language=en", u)
}

func TestRegistry_Invalid(t *testing.T) {
	_, err := NewRegistry([]config.ProviderConfig{{Name: "x", Kind: "rss"}})
	assert.Error(t, err)

	_, err = NewRegistry([]config.ProviderConfig{
		{Name: "x", Kind: config.KindNewsAPI},
		{Name: "x", Kind: config.KindNYTimes},
	})
	assert.Error(t, err)
}

func TestUpstreamError(t *testing.T) {
	err := &UpstreamError{Provider: "Newsapi", StatusCode: 503}
	assert.Equal(t, "provider Newsapi: unexpected status 503", err.Error())

	cause := errors.New("dial tcp: refused")
	wrapped := &UpstreamError{Provider: "Newsapi", Err: cause}
	assert.ErrorIs(t, wrapped, cause)
}
