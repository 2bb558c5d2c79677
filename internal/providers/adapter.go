package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"newsagg/internal/config"
	"newsagg/internal/models"
)

// Fallbacks for fields a provider omits or sends as null
const (
	NoDescription = "No description available"
	NoContent     = "No content available"
	UnknownAuthor = "Unknown"
)

// ErrMissingTitle is returned for records that cannot be stored without a title
var ErrMissingTitle = errors.New("record has no title")

// Adapter translates one provider's wire format into canonical articles
type Adapter interface {
	Kind() string
	// Query returns the request parameters for one fetch, API key included
	Query(cfg config.ProviderConfig) url.Values
	// Records unwraps the provider envelope into its raw article records
	Records(body []byte) ([]json.RawMessage, error)
	NormalizeArticle(raw json.RawMessage, now time.Time) (models.CanonicalArticle, error)
}

// ForKind returns the adapter for a provider kind
func ForKind(kind string) (Adapter, error) {
	switch strings.ToLower(kind) {
	case config.KindNewsAPI:
		return NewsAPI{}, nil
	case config.KindGuardian:
		return Guardian{}, nil
	case config.KindNYTimes:
		return NYTimes{}, nil
	default:
		return nil, fmt.Errorf("unknown provider kind %q", kind)
	}
}

// UpstreamError reports a provider that could not be fetched or decoded
type UpstreamError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s: unexpected status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// baseQuery merges configured params with the provider's API key parameter
func baseQuery(cfg config.ProviderConfig, keyParam string) url.Values {
	values := url.Values{}
	for k, v := range cfg.Params {
		values.Set(k, v)
	}
	if cfg.APIKey != "" {
		values.Set(keyParam, cfg.APIKey)
	}
	return values
}

func orDefault(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return *value
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTime falls back to now for absent or unparseable timestamps
func parseTime(value *string, now time.Time) time.Time {
	if value == nil {
		return now
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(*value)); err == nil {
			return t.UTC()
		}
	}
	return now
}

func requireTitle(title *string) (string, error) {
	if title == nil || strings.TrimSpace(*title) == "" {
		return "", ErrMissingTitle
	}
	return *title, nil
}
