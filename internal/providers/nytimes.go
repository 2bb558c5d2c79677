package providers

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"newsagg/internal/config"
	"newsagg/internal/models"
)

// NYTimes handles the most-popular API, whose records carry a date-only published_date
type NYTimes struct{}

type nyTimesEnvelope struct {
	Status  string            `json:"status"`
	Results []json.RawMessage `json:"results"`
}

type nyTimesArticle struct {
	Title         *string `json:"title"`
	Abstract      *string `json:"abstract"`
	AdxKeywords   *string `json:"adx_keywords"`
	Byline        *string `json:"byline"`
	PublishedDate *string `json:"published_date"`
}

func (NYTimes) Kind() string { return config.KindNYTimes }

func (NYTimes) Query(cfg config.ProviderConfig) url.Values {
	return baseQuery(cfg, "api-key")
}

func (NYTimes) Records(body []byte) ([]json.RawMessage, error) {
	var env nyTimesEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode nytimes response: %w", err)
	}
	return env.Results, nil
}

func (NYTimes) NormalizeArticle(raw json.RawMessage, now time.Time) (models.CanonicalArticle, error) {
	var a nyTimesArticle
	if err := json.Unmarshal(raw, &a); err != nil {
		return models.CanonicalArticle{}, fmt.Errorf("failed to decode nytimes article: %w", err)
	}

	title, err := requireTitle(a.Title)
	if err != nil {
		return models.CanonicalArticle{}, err
	}

	return models.CanonicalArticle{
		Title:       title,
		Description: orDefault(a.Abstract, NoDescription),
		Content:     orDefault(a.AdxKeywords, NoContent),
		Author:      orDefault(a.Byline, UnknownAuthor),
		PublishedAt: parseTime(a.PublishedDate, now),
	}, nil
}
